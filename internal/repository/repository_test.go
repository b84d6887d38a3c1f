package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"backoffice/internal/errs"
	"backoffice/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(
		&model.Company{},
		&model.AdminUser{},
		&model.Manager{},
		&model.Branch{},
		&model.ManagerBranch{},
	)
	require.NoError(t, err, "failed to migrate test database")
	return db
}

func seedManager(t *testing.T, db *gorm.DB, companyID uuid.UUID) *model.Manager {
	t.Helper()
	m := &model.Manager{
		CompanyID: companyID,
		FirstName: "Maria",
		LastName:  "Lopez",
		CI:        "0912345678",
		Email:     "maria@acme.com",
		Country:   "EC",
		IsActive:  true,
		Version:   1,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestUpdateVersionedBumpsVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewManagerRepository(db)
	ctx := context.Background()

	companyID := uuid.New()
	m := seedManager(t, db, companyID)

	m.Phone = "555-0100"
	require.NoError(t, repo.UpdateVersioned(ctx, m, 1))

	got, err := repo.FindByID(ctx, companyID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, "555-0100", got.Phone)
}

func TestUpdateVersionedStaleVersionConflicts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewManagerRepository(db)
	ctx := context.Background()

	companyID := uuid.New()
	m := seedManager(t, db, companyID)

	copy1 := *m
	copy2 := *m

	copy1.Phone = "555-0100"
	require.NoError(t, repo.UpdateVersioned(ctx, &copy1, 1))

	copy2.Phone = "555-0200"
	err := repo.UpdateVersioned(ctx, &copy2, 1)
	assert.ErrorIs(t, err, errs.ErrVersionConflict)

	// the first write is intact
	got, err := repo.FindByID(ctx, companyID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", got.Phone)
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	txManager := NewTransactionManager(db)
	managers := NewManagerRepository(db)
	assigns := NewAssignmentRepository(db)
	ctx := context.Background()

	companyID := uuid.New()
	managerID := uuid.New()

	boom := errors.New("boom")
	err := txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := managers.Create(txCtx, &model.Manager{
			ID: managerID, CompanyID: companyID,
			FirstName: "Maria", LastName: "Lopez",
			CI: "0912345678", Email: "maria@acme.com",
			Version: 1,
		}); err != nil {
			return err
		}
		if err := assigns.AddManagerBranch(txCtx, managerID, uuid.New()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = managers.FindByID(ctx, companyID, managerID)
	assert.ErrorIs(t, err, errs.ErrNotFound, "everything in the failed transaction rolls back")

	ids, err := assigns.ManagerBranchIDs(ctx, managerID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSoftDeleteHidesRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewManagerRepository(db)
	ctx := context.Background()

	companyID := uuid.New()
	m := seedManager(t, db, companyID)

	require.NoError(t, repo.Delete(ctx, companyID, m.ID))

	_, err := repo.FindByID(ctx, companyID, m.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	// row still exists physically
	var count int64
	require.NoError(t, db.Unscoped().Model(&model.Manager{}).Where("id = ?", m.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestClearAndMarkPrimary(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.AutoMigrate(&model.Warehouse{}, &model.WarehouseBranch{}))
	assigns := NewAssignmentRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	w1 := uuid.New()
	w2 := uuid.New()

	require.NoError(t, assigns.AddWarehouseBranch(ctx, w1, branchID, true))
	require.NoError(t, assigns.AddWarehouseBranch(ctx, w2, branchID, false))

	require.NoError(t, assigns.ClearPrimaryForBranch(ctx, branchID))
	require.NoError(t, assigns.MarkPrimary(ctx, w2, branchID))

	link, err := assigns.PrimaryWarehouseForBranch(ctx, branchID)
	require.NoError(t, err)
	assert.Equal(t, w2, link.WarehouseID)
}
