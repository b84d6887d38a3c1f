package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/errs"
)

func TestBranchUpdateGuarded(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	b := env.createBranch(t, "North Branch")

	updated, err := env.branches.Update(ctx, env.company.ID, b.ID.String(), UpdateBranchRequest{
		Data:         BranchPatch{Phone: strPtr("555-0100")},
		Confirmation: confirmAs("North Branch"),
		Version:      b.Version,
	}, env.mctx())
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, 2, updated.Version)
}

func TestBranchUpdateStaleVersion(t *testing.T) {
	env := setupEnv(t)

	b := env.createBranch(t, "North Branch")

	_, err := env.branches.Update(context.Background(), env.company.ID, b.ID.String(), UpdateBranchRequest{
		Data:         BranchPatch{Phone: strPtr("555-0100")},
		Confirmation: confirmAs("North Branch"),
		Version:      b.Version + 1,
	}, env.mctx())
	assert.ErrorIs(t, err, errs.ErrVersionConflict)
}

func TestBranchDeleteBlockedByActiveManager(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	b := env.createBranch(t, "North Branch")
	m := env.createManager(t, "Maria", "Lopez", "0912345678")

	_, err := env.managers.Update(ctx, env.company.ID, m.ID.String(), UpdateManagerRequest{
		Data:         ManagerPatch{BranchIDs: &[]uuid.UUID{b.ID}},
		Confirmation: confirmAs("Maria Lopez"),
		Version:      m.Version,
	}, env.mctx())
	require.NoError(t, err)

	err = env.branches.Delete(ctx, env.company.ID, b.ID.String(), DeleteBranchRequest{
		Confirmation: confirmAs("North Branch"),
	}, env.mctx())
	assert.ErrorIs(t, err, errs.ErrHasDependents)
}

func TestBranchDeleteBlockedByWarehouseLink(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	b := env.createBranch(t, "North Branch")
	env.createWarehouse(t, "Central Depot", b.ID)

	err := env.branches.Delete(ctx, env.company.ID, b.ID.String(), DeleteBranchRequest{
		Confirmation: confirmAs("North Branch"),
	}, env.mctx())
	assert.ErrorIs(t, err, errs.ErrHasDependents)
}

func TestBranchDeleteHappyPath(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	b := env.createBranch(t, "North Branch")

	err := env.branches.Delete(ctx, env.company.ID, b.ID.String(), DeleteBranchRequest{
		Confirmation: confirmAs("North Branch"),
	}, env.mctx())
	require.NoError(t, err)

	_, err = env.branches.Get(ctx, env.company.ID, b.ID.String())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestBranchDeleteNameMismatchBlocks(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	b := env.createBranch(t, "North Branch")

	err := env.branches.Delete(ctx, env.company.ID, b.ID.String(), DeleteBranchRequest{
		Confirmation: confirmAs("north branch"),
	}, env.mctx())
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	_, err = env.branches.Get(ctx, env.company.ID, b.ID.String())
	assert.NoError(t, err, "branch must survive a failed confirmation")
}

func TestSetPrimaryWarehouseIsExclusive(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	b := env.createBranch(t, "North Branch")
	w1 := env.createWarehouse(t, "Depot A")
	w2 := env.createWarehouse(t, "Depot B")

	// w1 becomes primary via assignment
	require.NoError(t, env.warehouses.AssignBranch(ctx, env.company.ID, w1.ID.String(), AssignBranchRequest{
		BranchID:  b.ID,
		IsPrimary: true,
	}, env.mctx()))

	link, err := env.assigns.PrimaryWarehouseForBranch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, w1.ID, link.WarehouseID)

	// switching primary to w2 clears w1's flag in the same transaction
	require.NoError(t, env.branches.SetPrimaryWarehouse(ctx, env.company.ID, b.ID.String(), SetPrimaryWarehouseRequest{
		WarehouseID: w2.ID,
	}, env.mctx()))

	link, err = env.assigns.PrimaryWarehouseForBranch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, w2.ID, link.WarehouseID)

	// w1 keeps its link, just not the flag
	exists, err := env.assigns.WarehouseBranchExists(ctx, w1.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSetPrimaryWarehouseCreatesMissingLink(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	b := env.createBranch(t, "North Branch")
	w := env.createWarehouse(t, "Depot A")

	require.NoError(t, env.branches.SetPrimaryWarehouse(ctx, env.company.ID, b.ID.String(), SetPrimaryWarehouseRequest{
		WarehouseID: w.ID,
	}, env.mctx()))

	link, err := env.assigns.PrimaryWarehouseForBranch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, link.WarehouseID)
}
