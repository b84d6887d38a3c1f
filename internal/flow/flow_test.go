package flow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/errs"
	"backoffice/pkg/changeset"
)

func TestDeleteFlowHappyPath(t *testing.T) {
	f := NewDeleteFlow("North Branch")
	assert.Equal(t, DeleteInitial, f.State())

	f.Continue()
	assert.Equal(t, DeleteWarning, f.State())

	f.Continue()
	assert.Equal(t, DeleteFinal, f.State())

	var committed bool
	err := f.Submit("North Branch", "Sup3rSecret", func(password string) error {
		committed = true
		assert.Equal(t, "Sup3rSecret", password)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, DeleteClosed, f.State())
	assert.Empty(t, f.Err())
}

func TestDeleteFlowNameMismatchStaysOpen(t *testing.T) {
	f := NewDeleteFlow("North Branch")
	f.Continue()
	f.Continue()

	err := f.Submit("north branch", "Sup3rSecret", func(string) error {
		t.Fatal("commit must not run on a name mismatch")
		return nil
	})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Equal(t, DeleteFinal, f.State(), "dialog stays on the final step")
	assert.Equal(t, "name does not match", f.Err())
}

func TestDeleteFlowSubmitBeforeFinalStepRejected(t *testing.T) {
	f := NewDeleteFlow("North Branch")
	f.Continue() // warning, not final

	err := f.Submit("North Branch", "Sup3rSecret", func(string) error { return nil })
	require.Error(t, err)
	assert.Equal(t, DeleteWarning, f.State())
}

func TestDeleteFlowCommitFailureKeepsFinalOpen(t *testing.T) {
	f := NewDeleteFlow("North Branch")
	f.Continue()
	f.Continue()

	commitErr := errs.NewValidation("password does not match")
	err := f.Submit("North Branch", "WrongPass99", func(string) error { return commitErr })
	require.Error(t, err)
	assert.Equal(t, DeleteFinal, f.State())
	assert.Equal(t, "password does not match", f.Err())

	// retry succeeds
	err = f.Submit("North Branch", "Sup3rSecret", func(string) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, DeleteClosed, f.State())
}

func TestDeleteFlowBackAndCancelClearInput(t *testing.T) {
	f := NewDeleteFlow("North Branch")
	f.Continue()
	f.Continue()

	_ = f.Submit("wrong", "whatever123", func(string) error { return nil })
	assert.NotEmpty(t, f.Err())

	f.Back()
	assert.Equal(t, DeleteWarning, f.State())
	assert.Empty(t, f.Err(), "stepping back clears the inline error")

	f.Cancel()
	assert.Equal(t, DeleteClosed, f.State())
}

func editChanges() []changeset.FieldChange {
	return []changeset.FieldChange{{Field: "salary", OldValue: "1000.00", NewValue: "1200.00"}}
}

func TestEditFlowHappyPath(t *testing.T) {
	f := NewEditFlow()

	require.NoError(t, f.OpenReason(editChanges()))
	assert.Equal(t, EditReasonOpen, f.State())
	assert.Len(t, f.Changes(), 1)

	require.NoError(t, f.SubmitReason("annual raise"))
	assert.Equal(t, EditConfirmOpen, f.State())

	var gotReason string
	require.NoError(t, f.SubmitConfirm(func(reason string) error {
		gotReason = reason
		return nil
	}))
	assert.Equal(t, "annual raise", gotReason)
	assert.Equal(t, EditIdle, f.State())
	assert.Empty(t, f.Reason(), "transient state is wiped after success")
}

func TestEditFlowEmptyDiffNeverOpens(t *testing.T) {
	f := NewEditFlow()

	err := f.OpenReason(nil)
	require.ErrorIs(t, err, errs.ErrNoChanges)
	assert.Equal(t, EditIdle, f.State())
}

func TestEditFlowBlankReasonStaysOpen(t *testing.T) {
	f := NewEditFlow()
	require.NoError(t, f.OpenReason(editChanges()))

	err := f.SubmitReason("   ")
	require.Error(t, err)
	assert.Equal(t, EditReasonOpen, f.State())
	assert.Equal(t, "a change reason is required", f.Err())
}

func TestEditFlowBackPreservesReason(t *testing.T) {
	f := NewEditFlow()
	require.NoError(t, f.OpenReason(editChanges()))
	require.NoError(t, f.SubmitReason("annual raise"))

	f.Back()
	assert.Equal(t, EditReasonOpen, f.State())
	assert.Equal(t, "annual raise", f.Reason())
}

func TestEditFlowValidationFailureKeepsConfirmOpen(t *testing.T) {
	f := NewEditFlow()
	require.NoError(t, f.OpenReason(editChanges()))
	require.NoError(t, f.SubmitReason("annual raise"))

	err := f.SubmitConfirm(func(string) error {
		return errs.NewValidation("password does not match")
	})
	require.Error(t, err)
	assert.Equal(t, EditConfirmOpen, f.State(), "a bad password keeps the dialog open for retry")
	assert.Equal(t, "annual raise", f.Reason())
}

func TestEditFlowNonValidationFailureResets(t *testing.T) {
	f := NewEditFlow()
	require.NoError(t, f.OpenReason(editChanges()))
	require.NoError(t, f.SubmitReason("annual raise"))

	err := f.SubmitConfirm(func(string) error {
		return errors.New("connection reset")
	})
	require.Error(t, err)
	assert.Equal(t, EditIdle, f.State())
	assert.Empty(t, f.Reason())
}

func TestEditFlowReopenWhileInProgressRejected(t *testing.T) {
	f := NewEditFlow()
	require.NoError(t, f.OpenReason(editChanges()))

	err := f.OpenReason(editChanges())
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}
