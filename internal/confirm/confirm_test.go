package confirm

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"backoffice/internal/errs"
	"backoffice/internal/model"
)

func TestIdentity(t *testing.T) {
	assert.True(t, Identity("Maria Lopez", "Maria Lopez"))
	assert.True(t, Identity("Maria Lopez", "  Maria Lopez  "), "surrounding whitespace is ignored")
	assert.True(t, Identity("  Maria Lopez", "Maria Lopez"))

	assert.False(t, Identity("Maria Lopez", "maria lopez"), "comparison is case-sensitive")
	assert.False(t, Identity("Maria Lopez", "Maria  Lopez"), "interior whitespace is significant")
	assert.False(t, Identity("Maria Lopez", ""))
}

type fakeAdminLookup struct {
	byID    map[uuid.UUID]*model.AdminUser
	byEmail map[string]*model.AdminUser
	first   *model.AdminUser
}

func (f *fakeAdminLookup) FindByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (*model.AdminUser, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, errs.ErrNotFound
}

func (f *fakeAdminLookup) FindByEmail(_ context.Context, _ uuid.UUID, email string) (*model.AdminUser, error) {
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, errs.ErrNotFound
}

func (f *fakeAdminLookup) FirstActiveAdmin(_ context.Context, _ uuid.UUID) (*model.AdminUser, error) {
	if f.first == nil {
		return nil, errs.ErrNotFound
	}
	return f.first, nil
}

func testAdmin(t *testing.T, password string, active bool) *model.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &model.AdminUser{
		ID:           uuid.New(),
		Email:        "admin@acme.com",
		PasswordHash: string(hash),
		IsActive:     active,
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestGatePasswordMatchesActor(t *testing.T) {
	admin := testAdmin(t, "Sup3rSecret", true)
	gate := NewGate(&fakeAdminLookup{byID: map[uuid.UUID]*model.AdminUser{admin.ID: admin}}, quietLogger())

	err := gate.Password(context.Background(), PasswordConfirmation{
		CompanyID: uuid.New(),
		ActorID:   &admin.ID,
		Password:  "Sup3rSecret",
	})
	assert.NoError(t, err)
}

func TestGatePasswordWrongPassword(t *testing.T) {
	admin := testAdmin(t, "Sup3rSecret", true)
	gate := NewGate(&fakeAdminLookup{byID: map[uuid.UUID]*model.AdminUser{admin.ID: admin}}, quietLogger())

	err := gate.Password(context.Background(), PasswordConfirmation{
		CompanyID: uuid.New(),
		ActorID:   &admin.ID,
		Password:  "WrongPass99",
	})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.EqualError(t, err, "password does not match")
}

func TestGatePasswordTooShortSkipsLookup(t *testing.T) {
	// No lookup data at all: a short password must fail before resolution.
	gate := NewGate(&fakeAdminLookup{}, quietLogger())

	err := gate.Password(context.Background(), PasswordConfirmation{
		CompanyID: uuid.New(),
		Password:  "short",
	})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestGatePasswordNoResolvableAccountFailsClosed(t *testing.T) {
	gate := NewGate(&fakeAdminLookup{}, quietLogger())

	err := gate.Password(context.Background(), PasswordConfirmation{
		CompanyID: uuid.New(),
		Password:  "Sup3rSecret",
	})
	require.Error(t, err)
	assert.EqualError(t, err, "password does not match", "missing account must look identical to a wrong password")
}

func TestGatePasswordInactiveAccountRejected(t *testing.T) {
	admin := testAdmin(t, "Sup3rSecret", false)
	gate := NewGate(&fakeAdminLookup{byID: map[uuid.UUID]*model.AdminUser{admin.ID: admin}}, quietLogger())

	err := gate.Password(context.Background(), PasswordConfirmation{
		CompanyID: uuid.New(),
		ActorID:   &admin.ID,
		Password:  "Sup3rSecret",
	})
	assert.Error(t, err)
}

func TestGatePasswordResolvesByEmail(t *testing.T) {
	admin := testAdmin(t, "Sup3rSecret", true)
	gate := NewGate(&fakeAdminLookup{byEmail: map[string]*model.AdminUser{admin.Email: admin}}, quietLogger())

	err := gate.Password(context.Background(), PasswordConfirmation{
		CompanyID:  uuid.New(),
		AdminEmail: admin.Email,
		Password:   "Sup3rSecret",
	})
	assert.NoError(t, err)
}

func TestGatePasswordFallbackToFirstActiveAdmin(t *testing.T) {
	admin := testAdmin(t, "Sup3rSecret", true)
	gate := NewGate(&fakeAdminLookup{first: admin}, quietLogger())

	err := gate.Password(context.Background(), PasswordConfirmation{
		CompanyID: uuid.New(),
		Password:  "Sup3rSecret",
	})
	assert.NoError(t, err)
}
