package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/errs"
)

func intPtr(i int) *int { return &i }

func TestWarehouseCreateLinksBranches(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	b1 := env.createBranch(t, "North Branch")
	b2 := env.createBranch(t, "South Branch")

	w := env.createWarehouse(t, "Central Depot", b1.ID, b2.ID, b1.ID) // duplicate is ignored

	got, err := env.warehouses.Get(ctx, env.company.ID, w.ID.String())
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{b1.ID, b2.ID}, got.BranchIDs)
}

func TestWarehouseCreateRejectsNegativeCapacity(t *testing.T) {
	env := setupEnv(t)

	_, err := env.warehouses.Create(context.Background(), env.company.ID, CreateWarehouseRequest{
		Name:     "Central Depot",
		Capacity: -1,
	}, env.mctx())
	require.Error(t, err)
	fe, ok := errs.AsField(err)
	require.True(t, ok)
	assert.Equal(t, "capacity", fe.Field)
}

func TestWarehouseAssignBranchDuplicate(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	b := env.createBranch(t, "North Branch")
	w := env.createWarehouse(t, "Central Depot", b.ID)

	err := env.warehouses.AssignBranch(ctx, env.company.ID, w.ID.String(), AssignBranchRequest{
		BranchID: b.ID,
	}, env.mctx())
	assert.ErrorIs(t, err, errs.ErrAlreadyAssigned)
}

func TestWarehouseUpdateReconcilesBranches(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	b1 := env.createBranch(t, "North Branch")
	b2 := env.createBranch(t, "South Branch")
	w := env.createWarehouse(t, "Central Depot", b1.ID)

	updated, err := env.warehouses.Update(ctx, env.company.ID, w.ID.String(), UpdateWarehouseRequest{
		Data: WarehousePatch{
			Capacity:  intPtr(750),
			BranchIDs: &[]uuid.UUID{b2.ID},
		},
		Confirmation: confirmAs("Central Depot"),
		Version:      w.Version,
	}, env.mctx())
	require.NoError(t, err)
	assert.Equal(t, 750, updated.Capacity)
	assert.Equal(t, []uuid.UUID{b2.ID}, updated.BranchIDs, "b1 unlinked, b2 linked")
}

func TestWarehouseRemoveBranch(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	b := env.createBranch(t, "North Branch")
	w := env.createWarehouse(t, "Central Depot", b.ID)

	require.NoError(t, env.warehouses.RemoveBranch(ctx, env.company.ID, w.ID.String(), b.ID.String(), env.mctx()))

	err := env.warehouses.RemoveBranch(ctx, env.company.ID, w.ID.String(), b.ID.String(), env.mctx())
	assert.ErrorIs(t, err, errs.ErrNotFound, "removing an absent link is not found")
}

func TestWarehouseDeleteBlockedByLinks(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	b := env.createBranch(t, "North Branch")
	w := env.createWarehouse(t, "Central Depot", b.ID)

	err := env.warehouses.Delete(ctx, env.company.ID, w.ID.String(), DeleteWarehouseRequest{
		Confirmation: confirmAs("Central Depot"),
	}, env.mctx())
	assert.ErrorIs(t, err, errs.ErrHasDependents)

	// unlink, then delete succeeds
	require.NoError(t, env.warehouses.RemoveBranch(ctx, env.company.ID, w.ID.String(), b.ID.String(), env.mctx()))
	require.NoError(t, env.warehouses.Delete(ctx, env.company.ID, w.ID.String(), DeleteWarehouseRequest{
		Confirmation: confirmAs("Central Depot"),
	}, env.mctx()))
}
