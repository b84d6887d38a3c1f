package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/errs"
)

func strPtr(s string) *string           { return &s }
func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestManagerCreateAndGet(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created := env.createManager(t, "Maria", "Lopez", "0912345678")
	assert.Equal(t, "Maria Lopez", created.FullName)
	assert.Equal(t, 1, created.Version)
	assert.True(t, created.IsActive)

	got, err := env.managers.Get(ctx, env.company.ID, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "0912345678", got.CI)
}

func TestManagerCreateRejectsForeignEmailDomain(t *testing.T) {
	env := setupEnv(t)

	_, err := env.managers.Create(context.Background(), env.company.ID, CreateManagerRequest{
		FirstName: "Maria",
		LastName:  "Lopez",
		CI:        "0912345678",
		Email:     "maria@gmail.com",
		Salary:    decimal.NewFromInt(1000),
		Country:   "EC",
		Password:  "Manag3rPass",
	}, env.mctx())
	require.Error(t, err)
	fe, ok := errs.AsField(err)
	require.True(t, ok)
	assert.Equal(t, "email", fe.Field)
}

func TestManagerCreateRejectsInvalidCIAndSalary(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.managers.Create(ctx, env.company.ID, CreateManagerRequest{
		FirstName: "Maria", LastName: "Lopez",
		CI:    "12345", // EC requires 10 digits
		Email: "maria@acme.com", Salary: decimal.NewFromInt(1000),
		Country: "EC", Password: "Manag3rPass",
	}, env.mctx())
	require.Error(t, err)
	fe, ok := errs.AsField(err)
	require.True(t, ok)
	assert.Equal(t, "ci", fe.Field)

	_, err = env.managers.Create(ctx, env.company.ID, CreateManagerRequest{
		FirstName: "Maria", LastName: "Lopez",
		CI:    "0912345678",
		Email: "maria@acme.com", Salary: decimal.NewFromInt(100), // below EC minimum
		Country: "EC", Password: "Manag3rPass",
	}, env.mctx())
	require.Error(t, err)
	fe, ok = errs.AsField(err)
	require.True(t, ok)
	assert.Equal(t, "salary", fe.Field)
}

func TestManagerCreateDuplicateCI(t *testing.T) {
	env := setupEnv(t)

	env.createManager(t, "Maria", "Lopez", "0912345678")

	_, err := env.managers.Create(context.Background(), env.company.ID, CreateManagerRequest{
		FirstName: "Carlos", LastName: "Paz",
		CI:    "0912345678",
		Email: "carlos@acme.com", Salary: decimal.NewFromInt(1000),
		Country: "EC", Password: "Manag3rPass",
	}, env.mctx())
	assert.ErrorIs(t, err, errs.ErrDuplicateIdentifier)
}

func TestManagerUpdateGuardedHappyPath(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	m := env.createManager(t, "Maria", "Lopez", "0912345678")
	branch := env.createBranch(t, "North Branch")

	updated, err := env.managers.Update(ctx, env.company.ID, m.ID.String(), UpdateManagerRequest{
		Data: ManagerPatch{
			Salary:    decPtr(decimal.NewFromInt(1500)),
			BranchIDs: &[]uuid.UUID{branch.ID},
		},
		Confirmation: confirmAs("Maria Lopez"),
		Version:      m.Version,
	}, env.mctx())
	require.NoError(t, err)
	assert.Equal(t, "1500", updated.Salary)
	assert.Equal(t, 2, updated.Version, "version increments on every write")
	assert.Equal(t, []uuid.UUID{branch.ID}, updated.BranchIDs)

	// audit record carries the change reason
	logs, total, err := env.audit.List(ctx, env.company.ID, "manager", m.ID.String(), 1, 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, total, int64(2), "create + update")
	var reasoned bool
	for _, l := range logs {
		assert.Equal(t, "Root Admin", l.ActorName)
		if l.Action == "UPDATE" {
			assert.Contains(t, l.NewValue, "routine correction")
			reasoned = true
		}
	}
	assert.True(t, reasoned, "the update record must embed the change reason")
}

func TestManagerUpdateNoChanges(t *testing.T) {
	env := setupEnv(t)

	m := env.createManager(t, "Maria", "Lopez", "0912345678")

	_, err := env.managers.Update(context.Background(), env.company.ID, m.ID.String(), UpdateManagerRequest{
		Data:         ManagerPatch{Salary: decPtr(decimal.NewFromInt(1000))}, // same value
		Confirmation: confirmAs("Maria Lopez"),
		Version:      m.Version,
	}, env.mctx())
	assert.ErrorIs(t, err, errs.ErrNoChanges)
}

func TestManagerUpdateRequiresReason(t *testing.T) {
	env := setupEnv(t)

	m := env.createManager(t, "Maria", "Lopez", "0912345678")

	conf := confirmAs("Maria Lopez")
	conf.Reason = "   "
	_, err := env.managers.Update(context.Background(), env.company.ID, m.ID.String(), UpdateManagerRequest{
		Data:         ManagerPatch{Salary: decPtr(decimal.NewFromInt(1500))},
		Confirmation: conf,
		Version:      m.Version,
	}, env.mctx())
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.EqualError(t, err, "a change reason is required")
}

func TestManagerUpdateNameMismatch(t *testing.T) {
	env := setupEnv(t)

	m := env.createManager(t, "Maria", "Lopez", "0912345678")

	conf := confirmAs("maria lopez") // wrong case
	_, err := env.managers.Update(context.Background(), env.company.ID, m.ID.String(), UpdateManagerRequest{
		Data:         ManagerPatch{Salary: decPtr(decimal.NewFromInt(1500))},
		Confirmation: conf,
		Version:      m.Version,
	}, env.mctx())
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.EqualError(t, err, "name does not match")
}

func TestManagerUpdateWrongPassword(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	m := env.createManager(t, "Maria", "Lopez", "0912345678")

	conf := confirmAs("Maria Lopez")
	conf.Password = "WrongPass99"
	_, err := env.managers.Update(ctx, env.company.ID, m.ID.String(), UpdateManagerRequest{
		Data:         ManagerPatch{Salary: decPtr(decimal.NewFromInt(1500))},
		Confirmation: conf,
		Version:      m.Version,
	}, env.mctx())
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.EqualError(t, err, "password does not match")

	// nothing was written
	got, err := env.managers.Get(ctx, env.company.ID, m.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "1000", got.Salary)
	assert.Equal(t, 1, got.Version)
}

func TestManagerUpdateStaleVersion(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	m := env.createManager(t, "Maria", "Lopez", "0912345678")

	// first editor wins
	_, err := env.managers.Update(ctx, env.company.ID, m.ID.String(), UpdateManagerRequest{
		Data:         ManagerPatch{Phone: strPtr("555-0100")},
		Confirmation: confirmAs("Maria Lopez"),
		Version:      m.Version,
	}, env.mctx())
	require.NoError(t, err)

	// second editor still holds version 1
	_, err = env.managers.Update(ctx, env.company.ID, m.ID.String(), UpdateManagerRequest{
		Data:         ManagerPatch{Phone: strPtr("555-0200")},
		Confirmation: confirmAs("Maria Lopez"),
		Version:      m.Version,
	}, env.mctx())
	assert.ErrorIs(t, err, errs.ErrVersionConflict)
}

func TestManagerUpdateReorderedBranchListIsNoChange(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	b1 := env.createBranch(t, "North Branch")
	b2 := env.createBranch(t, "South Branch")
	m := env.createManager(t, "Maria", "Lopez", "0912345678")

	updated, err := env.managers.Update(ctx, env.company.ID, m.ID.String(), UpdateManagerRequest{
		Data:         ManagerPatch{BranchIDs: &[]uuid.UUID{b1.ID, b2.ID}},
		Confirmation: confirmAs("Maria Lopez"),
		Version:      m.Version,
	}, env.mctx())
	require.NoError(t, err)

	// same membership, reversed order: not a change
	_, err = env.managers.Update(ctx, env.company.ID, m.ID.String(), UpdateManagerRequest{
		Data:         ManagerPatch{BranchIDs: &[]uuid.UUID{b2.ID, b1.ID}},
		Confirmation: confirmAs("Maria Lopez"),
		Version:      updated.Version,
	}, env.mctx())
	assert.ErrorIs(t, err, errs.ErrNoChanges)
}

func TestManagerDeleteBlockedByAssignments(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	branch := env.createBranch(t, "North Branch")
	m := env.createManager(t, "Maria", "Lopez", "0912345678")

	_, err := env.managers.Update(ctx, env.company.ID, m.ID.String(), UpdateManagerRequest{
		Data:         ManagerPatch{BranchIDs: &[]uuid.UUID{branch.ID}},
		Confirmation: confirmAs("Maria Lopez"),
		Version:      m.Version,
	}, env.mctx())
	require.NoError(t, err)

	err = env.managers.Delete(ctx, env.company.ID, m.ID.String(), DeleteManagerRequest{
		Confirmation: confirmAs("Maria Lopez"),
	}, env.mctx())
	assert.ErrorIs(t, err, errs.ErrHasDependents)
}

func TestManagerDeleteHappyPath(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	m := env.createManager(t, "Maria", "Lopez", "0912345678")

	err := env.managers.Delete(ctx, env.company.ID, m.ID.String(), DeleteManagerRequest{
		Confirmation: confirmAs("Maria Lopez"),
	}, env.mctx())
	require.NoError(t, err)

	_, err = env.managers.Get(ctx, env.company.ID, m.ID.String())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestManagerSetActive(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	m := env.createManager(t, "Maria", "Lopez", "0912345678")

	got, err := env.managers.SetActive(ctx, env.company.ID, m.ID.String(), false, env.mctx())
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, 2, got.Version)

	// idempotent when the flag already matches
	got, err = env.managers.SetActive(ctx, env.company.ID, m.ID.String(), false, env.mctx())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
}

func TestManagerListSearch(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.createManager(t, "Maria", "Lopez", "0912345678")
	env.createManager(t, "Carlos", "Paz", "0998765432")

	res, total, err := env.managers.List(ctx, env.company.ID, "Maria", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, res, 1)
	assert.Equal(t, "Maria Lopez", res[0].FullName)

	_, total, err = env.managers.List(ctx, env.company.ID, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestManagerTenantIsolation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	m := env.createManager(t, "Maria", "Lopez", "0912345678")

	_, err := env.managers.Get(ctx, uuid.New(), m.ID.String())
	assert.ErrorIs(t, err, errs.ErrNotFound, "another tenant must not see the manager")
}
