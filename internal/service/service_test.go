package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"backoffice/internal/confirm"
	"backoffice/internal/model"
	"backoffice/internal/repository"
)

const adminPassword = "Sup3rSecret"

// testEnv wires the full repository/service stack against an in-memory
// SQLite database, with one company and one active admin seeded.
type testEnv struct {
	db      *gorm.DB
	company *model.Company
	admin   *model.AdminUser

	audits     repository.AuditRepository
	assigns    repository.AssignmentRepository
	managers   ManagerService
	branches   BranchService
	warehouses WarehouseService
	suppliers  SupplierService
	auth       AuthService
	companies  CompanyService
	audit      AuditService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(
		&model.Company{},
		&model.AdminUser{},
		&model.Manager{},
		&model.Branch{},
		&model.Warehouse{},
		&model.Supplier{},
		&model.ManagerBranch{},
		&model.WarehouseBranch{},
		&model.SupplierBranch{},
		&model.SupplierManager{},
		&model.ManagerWarehouse{},
		&model.AuditLog{},
	)
	require.NoError(t, err, "failed to migrate test database")

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	company := &model.Company{
		Name:     "Acme Distribution",
		Slug:     "acme",
		Country:  "EC",
		IsActive: true,
		Version:  1,
	}
	require.NoError(t, db.Create(company).Error)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &model.AdminUser{
		CompanyID:    company.ID,
		Email:        "admin@acme.com",
		FullName:     "Root Admin",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, db.Create(admin).Error)

	txManager := repository.NewTransactionManager(db)
	companyRepo := repository.NewCompanyRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	managerRepo := repository.NewManagerRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	assignRepo := repository.NewAssignmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	gate := confirm.NewGate(adminRepo, log)
	auditService := NewAuditService(auditRepo, nil, log)

	return &testEnv{
		db:         db,
		company:    company,
		admin:      admin,
		audits:     auditRepo,
		assigns:    assignRepo,
		managers:   NewManagerService(managerRepo, companyRepo, assignRepo, gate, txManager, auditService),
		branches:   NewBranchService(branchRepo, warehouseRepo, assignRepo, gate, txManager, auditService),
		warehouses: NewWarehouseService(warehouseRepo, branchRepo, assignRepo, gate, txManager, auditService),
		suppliers:  NewSupplierService(supplierRepo, managerRepo, assignRepo, gate, txManager, auditService),
		auth:       NewAuthService(adminRepo, companyRepo),
		companies:  NewCompanyService(companyRepo),
		audit:      auditService,
	}
}

func (e *testEnv) mctx() MutationContext {
	return MutationContext{ActorID: &e.admin.ID, IP: "127.0.0.1", UserAgent: "test"}
}

// confirmAs builds a valid confirmation envelope for the given display name.
func confirmAs(name string) Confirmation {
	return Confirmation{
		Reason:      "routine correction",
		ConfirmName: name,
		Password:    adminPassword,
	}
}

func (e *testEnv) createManager(t *testing.T, firstName, lastName, ci string) *ManagerResponse {
	t.Helper()
	m, err := e.managers.Create(context.Background(), e.company.ID, CreateManagerRequest{
		FirstName: firstName,
		LastName:  lastName,
		CI:        ci,
		Email:     strings.ToLower(firstName) + "@acme.com",
		Salary:    decimal.NewFromInt(1000),
		Country:   "EC",
		Password:  "Manag3rPass",
	}, e.mctx())
	require.NoError(t, err)
	return m
}

func (e *testEnv) createBranch(t *testing.T, name string) *BranchResponse {
	t.Helper()
	b, err := e.branches.Create(context.Background(), e.company.ID, CreateBranchRequest{
		Name:    name,
		Address: "Av. Principal 100",
		Country: "EC",
	}, e.mctx())
	require.NoError(t, err)
	return b
}

func (e *testEnv) createWarehouse(t *testing.T, name string, branchIDs ...uuid.UUID) *WarehouseResponse {
	t.Helper()
	w, err := e.warehouses.Create(context.Background(), e.company.ID, CreateWarehouseRequest{
		Name:      name,
		Address:   "Zona Industrial 5",
		Capacity:  500,
		BranchIDs: branchIDs,
	}, e.mctx())
	require.NoError(t, err)
	return w
}

func (e *testEnv) createSupplier(t *testing.T, name, taxID string) *SupplierResponse {
	t.Helper()
	s, err := e.suppliers.Create(context.Background(), e.company.ID, CreateSupplierRequest{
		Name:  name,
		TaxID: taxID,
	}, e.mctx())
	require.NoError(t, err)
	return s
}
