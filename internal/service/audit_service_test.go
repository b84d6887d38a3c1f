package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/model"
)

func TestAuditRecordEmbedsReason(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.audit.Record(ctx, AuditEntry{
		CompanyID:  env.company.ID,
		EntityType: model.EntityBranch,
		EntityID:   "b-1",
		Action:     model.ActionUpdate,
		Old:        map[string]any{"phone": "555-0100"},
		New:        map[string]any{"phone": "555-0200"},
		Reason:     "corrected phone number",
		Context:    env.mctx(),
	})

	logs, total, err := env.audit.List(ctx, env.company.ID, model.EntityBranch, "b-1", 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(logs[0].NewValue), &payload))
	assert.Equal(t, "corrected phone number", payload["change_reason"])
	assert.NotEmpty(t, payload["changed_at"])
	assert.Equal(t, "555-0200", payload["phone"])

	// the old snapshot stays untouched
	payload = nil
	require.NoError(t, json.Unmarshal([]byte(logs[0].OldValue), &payload))
	assert.Equal(t, "555-0100", payload["phone"])
	assert.NotContains(t, payload, "change_reason")
}

func TestAuditRecordWithoutActorShowsSystem(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.audit.Record(ctx, AuditEntry{
		CompanyID:  env.company.ID,
		EntityType: model.EntityWarehouse,
		EntityID:   "w-1",
		Action:     model.ActionCreate,
		New:        map[string]any{"name": "Central Depot"},
		Context:    MutationContext{}, // no actor
	})

	logs, total, err := env.audit.List(ctx, env.company.ID, model.EntityWarehouse, "w-1", 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, "System", logs[0].ActorName)
	assert.Empty(t, logs[0].ActorID)
}

func TestMarshalSnapshot(t *testing.T) {
	assert.Empty(t, marshalSnapshot(nil, "reason", time.Now()))

	raw := marshalSnapshot(map[string]any{"name": "x"}, "", time.Time{})
	assert.JSONEq(t, `{"name":"x"}`, raw)

	raw = marshalSnapshot(map[string]any{"name": "x"}, "because", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, "because", payload["change_reason"])
	assert.Equal(t, "2025-06-01T12:00:00Z", payload["changed_at"])
}
