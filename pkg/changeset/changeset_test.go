package changeset

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDiffDetectsScalarChanges(t *testing.T) {
	old := map[string]any{"name": "North Branch", "phone": "555-0100", "country": "EC"}
	updated := map[string]any{"name": "North Branch", "phone": "555-0199", "country": "CO"}

	changes := Diff(old, updated)

	assert.Len(t, changes, 2)
	// sorted by field name
	assert.Equal(t, "country", changes[0].Field)
	assert.Equal(t, "EC", changes[0].OldValue)
	assert.Equal(t, "CO", changes[0].NewValue)
	assert.Equal(t, "phone", changes[1].Field)
}

func TestDiffIdenticalSnapshotsIsEmpty(t *testing.T) {
	snap := map[string]any{"name": "Main", "capacity": 100}
	assert.Empty(t, Diff(snap, map[string]any{"name": "Main", "capacity": 100}))
}

func TestDiffReorderedSliceIsNotAChange(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	old := map[string]any{"branch_ids": []uuid.UUID{a, b}}
	updated := map[string]any{"branch_ids": []uuid.UUID{b, a}}

	assert.Empty(t, Diff(old, updated), "reordered ID list must not count as a change")
}

func TestDiffSliceMembershipChange(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	old := map[string]any{"branch_ids": []uuid.UUID{a, b}}
	updated := map[string]any{"branch_ids": []uuid.UUID{a, c}}

	changes := Diff(old, updated)
	assert.Len(t, changes, 1)
	assert.Equal(t, "branch_ids", changes[0].Field)
}

func TestDiffNewKeyReportedFromNil(t *testing.T) {
	changes := Diff(map[string]any{}, map[string]any{"salary": "1200.00"})

	assert.Len(t, changes, 1)
	assert.Nil(t, changes[0].OldValue)
	assert.Equal(t, "1200.00", changes[0].NewValue)
}

func TestDiffMixedSliceTypes(t *testing.T) {
	// string-typed and uuid-typed slices with the same members compare equal
	a := uuid.New()
	old := map[string]any{"ids": []string{a.String()}}
	updated := map[string]any{"ids": []uuid.UUID{a}}

	assert.Empty(t, Diff(old, updated))
}
