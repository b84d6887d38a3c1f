package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/errs"
	"backoffice/internal/model"
)

func TestLoginHappyPath(t *testing.T) {
	env := setupEnv(t)

	token, err := env.auth.Login(context.Background(), LoginRequest{
		CompanySlug: "acme",
		Email:       "admin@acme.com",
		Password:    adminPassword,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	cases := []LoginRequest{
		{CompanySlug: "nope", Email: "admin@acme.com", Password: adminPassword},
		{CompanySlug: "acme", Email: "ghost@acme.com", Password: adminPassword},
		{CompanySlug: "acme", Email: "admin@acme.com", Password: "WrongPass99"},
	}
	for _, req := range cases {
		_, err := env.auth.Login(ctx, req)
		require.Error(t, err)
		assert.EqualError(t, err, "invalid email or password", "failure cause must not leak")
	}
}

func TestCreateAdminEnforcesPasswordComplexity(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.auth.CreateAdmin(ctx, env.company.ID, CreateAdminRequest{
		Email:    "second@acme.com",
		FullName: "Second Admin",
		Password: "alllowercase1",
		Role:     model.RoleAdmin,
	})
	require.Error(t, err)
	fe, ok := errs.AsField(err)
	require.True(t, ok)
	assert.Equal(t, "password", fe.Field)

	created, err := env.auth.CreateAdmin(ctx, env.company.ID, CreateAdminRequest{
		Email:    "second@acme.com",
		FullName: "Second Admin",
		Password: "Sup3rSecret",
		Role:     model.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "second@acme.com", created.Email)
}

func TestCreateAdminDuplicateEmail(t *testing.T) {
	env := setupEnv(t)

	_, err := env.auth.CreateAdmin(context.Background(), env.company.ID, CreateAdminRequest{
		Email:    "Admin@acme.com", // normalizes to the seeded account
		FullName: "Clone",
		Password: "Sup3rSecret",
		Role:     model.RoleAdmin,
	})
	require.Error(t, err)
	fe, ok := errs.AsField(err)
	require.True(t, ok)
	assert.Equal(t, "email", fe.Field)
}

func TestCreateAdminRejectsUnknownRole(t *testing.T) {
	env := setupEnv(t)

	_, err := env.auth.CreateAdmin(context.Background(), env.company.ID, CreateAdminRequest{
		Email:    "second@acme.com",
		FullName: "Second Admin",
		Password: "Sup3rSecret",
		Role:     "superuser",
	})
	require.Error(t, err)
	fe, ok := errs.AsField(err)
	require.True(t, ok)
	assert.Equal(t, "role", fe.Field)
}

func TestCompanyCreateSlugRules(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created, err := env.companies.Create(ctx, CreateCompanyRequest{
		Name: "Nueva Empresa", Slug: "Nueva-Empresa", Country: "co",
	})
	require.NoError(t, err)
	assert.Equal(t, "nueva-empresa", created.Slug, "slug is lowercased")
	assert.Equal(t, "CO", created.Country)

	_, err = env.companies.Create(ctx, CreateCompanyRequest{Name: "Bad", Slug: "bad slug"})
	require.Error(t, err)

	_, err = env.companies.Create(ctx, CreateCompanyRequest{Name: "Dup", Slug: "acme"})
	require.Error(t, err)
	fe, ok := errs.AsField(err)
	require.True(t, ok)
	assert.Equal(t, "slug", fe.Field)
}
