package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"backoffice/internal/confirm"
	"backoffice/internal/errs"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/validation"
	"backoffice/pkg/changeset"
	"backoffice/pkg/reconcile"
)

// --- DTOs ---

type CreateManagerRequest struct {
	FirstName    string          `json:"first_name" binding:"required"`
	LastName     string          `json:"last_name" binding:"required"`
	CI           string          `json:"ci" binding:"required"`
	Email        string          `json:"email" binding:"required,email"`
	Phone        string          `json:"phone"`
	Salary       decimal.Decimal `json:"salary"`
	Country      string          `json:"country"`
	Password     string          `json:"password" binding:"required"`
	BranchIDs    []uuid.UUID     `json:"branch_ids"`
	WarehouseIDs []uuid.UUID     `json:"warehouse_ids"`
}

// ManagerPatch carries the editable fields. Pointer fields distinguish "not
// sent" from zero values; nil ID slices leave the relation untouched.
type ManagerPatch struct {
	FirstName    *string          `json:"first_name"`
	LastName     *string          `json:"last_name"`
	Email        *string          `json:"email"`
	Phone        *string          `json:"phone"`
	Salary       *decimal.Decimal `json:"salary"`
	Country      *string          `json:"country"`
	Password     *string          `json:"password"`
	BranchIDs    *[]uuid.UUID     `json:"branch_ids"`
	WarehouseIDs *[]uuid.UUID     `json:"warehouse_ids"`
}

// UpdateManagerRequest is the tagged envelope for a guarded edit: the data
// patch never mixes with the confirmation sideband.
type UpdateManagerRequest struct {
	Data         ManagerPatch `json:"data"`
	Confirmation Confirmation `json:"confirmation"`
	Version      int          `json:"version" binding:"required"`
}

type DeleteManagerRequest struct {
	Confirmation Confirmation `json:"confirmation"`
}

type ManagerResponse struct {
	ID           uuid.UUID   `json:"id"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	FullName     string      `json:"full_name"`
	CI           string      `json:"ci"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Salary       string      `json:"salary"`
	Country      string      `json:"country"`
	IsActive     bool        `json:"is_active"`
	Version      int         `json:"version"`
	BranchIDs    []uuid.UUID `json:"branch_ids"`
	WarehouseIDs []uuid.UUID `json:"warehouse_ids"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// --- Interface ---

type ManagerService interface {
	Create(ctx context.Context, companyID uuid.UUID, req CreateManagerRequest, mctx MutationContext) (*ManagerResponse, error)
	Get(ctx context.Context, companyID uuid.UUID, id string) (*ManagerResponse, error)
	List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]ManagerResponse, int64, error)
	Update(ctx context.Context, companyID uuid.UUID, id string, req UpdateManagerRequest, mctx MutationContext) (*ManagerResponse, error)
	Delete(ctx context.Context, companyID uuid.UUID, id string, req DeleteManagerRequest, mctx MutationContext) error
	SetActive(ctx context.Context, companyID uuid.UUID, id string, active bool, mctx MutationContext) (*ManagerResponse, error)
}

type managerService struct {
	managers  repository.ManagerRepository
	companies repository.CompanyRepository
	assigns   repository.AssignmentRepository
	gate      *confirm.Gate
	txManager repository.TransactionManager
	audit     AuditService
}

// NewManagerService wires the manager business logic.
func NewManagerService(
	managers repository.ManagerRepository,
	companies repository.CompanyRepository,
	assigns repository.AssignmentRepository,
	gate *confirm.Gate,
	txManager repository.TransactionManager,
	audit AuditService,
) ManagerService {
	return &managerService{
		managers:  managers,
		companies: companies,
		assigns:   assigns,
		gate:      gate,
		txManager: txManager,
		audit:     audit,
	}
}

// --- helpers ---

func (s *managerService) toResponse(ctx context.Context, m *model.Manager) (*ManagerResponse, error) {
	branchIDs, err := s.assigns.ManagerBranchIDs(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	warehouseIDs, err := s.assigns.ManagerWarehouseIDs(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return &ManagerResponse{
		ID:           m.ID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		FullName:     m.DisplayName(),
		CI:           m.CI,
		Email:        m.Email,
		Phone:        m.Phone,
		Salary:       m.Salary.String(),
		Country:      m.Country,
		IsActive:     m.IsActive,
		Version:      m.Version,
		BranchIDs:    branchIDs,
		WarehouseIDs: warehouseIDs,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

// managerFlat builds the flat snapshot used for change detection and audit.
// The password hash never appears in it.
func managerFlat(m *model.Manager, branchIDs, warehouseIDs []uuid.UUID) map[string]any {
	return map[string]any{
		"first_name":    m.FirstName,
		"last_name":     m.LastName,
		"email":         m.Email,
		"phone":         m.Phone,
		"salary":        m.Salary.String(),
		"country":       m.Country,
		"branch_ids":    branchIDs,
		"warehouse_ids": warehouseIDs,
	}
}

func (s *managerService) validateFields(companySlug string, m *model.Manager, newPassword string) error {
	if msg := validation.ManagerEmailDomain(m.Email, companySlug); msg != "" {
		return errs.NewField("email", msg)
	}
	if msg := validation.CI(m.Country, m.CI); msg != "" {
		return errs.NewField("ci", msg)
	}
	if msg := validation.Salary(m.Country, m.Salary); msg != "" {
		return errs.NewField("salary", msg)
	}
	if newPassword != "" {
		if msg := validation.PasswordComplexity(newPassword); msg != "" {
			return errs.NewField("password", msg)
		}
	}
	return nil
}

// --- CRUD ---

func (s *managerService) Create(ctx context.Context, companyID uuid.UUID, req CreateManagerRequest, mctx MutationContext) (*ManagerResponse, error) {
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	manager := &model.Manager{
		CompanyID: companyID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		CI:        strings.TrimSpace(req.CI),
		Email:     strings.TrimSpace(req.Email),
		Phone:     req.Phone,
		Salary:    req.Salary,
		Country:   strings.ToUpper(req.Country),
		IsActive:  true,
		Version:   1,
	}

	if err := s.validateFields(company.Slug, manager, req.Password); err != nil {
		return nil, err
	}

	if _, err := s.managers.FindByCI(ctx, companyID, manager.CI); err == nil {
		return nil, fmt.Errorf("%w: ci %s", errs.ErrDuplicateIdentifier, manager.CI)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	manager.Password = string(hashed)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.managers.Create(txCtx, manager); err != nil {
			return err
		}
		for _, branchID := range dedup(req.BranchIDs) {
			if err := s.assigns.AddManagerBranch(txCtx, manager.ID, branchID); err != nil {
				return err
			}
		}
		for _, warehouseID := range dedup(req.WarehouseIDs) {
			if err := s.assigns.AddManagerWarehouse(txCtx, manager.ID, warehouseID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntityManager,
		EntityID:   manager.ID.String(),
		Action:     model.ActionCreate,
		New:        managerFlat(manager, req.BranchIDs, req.WarehouseIDs),
		Context:    mctx,
	})

	return s.toResponse(ctx, manager)
}

func (s *managerService) Get(ctx context.Context, companyID uuid.UUID, id string) (*ManagerResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	manager, err := s.managers.FindByID(ctx, companyID, uid)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, manager)
}

func (s *managerService) List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]ManagerResponse, int64, error) {
	managers, total, err := s.managers.List(ctx, companyID, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]ManagerResponse, 0, len(managers))
	for i := range managers {
		r, err := s.toResponse(ctx, &managers[i])
		if err != nil {
			return nil, 0, err
		}
		res = append(res, *r)
	}
	return res, total, nil
}

// Update runs the full guarded edit workflow: field validation, change
// detection, change-reason requirement, identity + password confirmation,
// then a single transaction for the field update and relation reconciliation.
// The audit record is written after the transaction commits.
func (s *managerService) Update(ctx context.Context, companyID uuid.UUID, id string, req UpdateManagerRequest, mctx MutationContext) (*ManagerResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	manager, err := s.managers.FindByID(ctx, companyID, uid)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if req.Version != manager.Version {
		return nil, errs.ErrVersionConflict
	}

	currentBranches, err := s.assigns.ManagerBranchIDs(ctx, manager.ID)
	if err != nil {
		return nil, err
	}
	currentWarehouses, err := s.assigns.ManagerWarehouseIDs(ctx, manager.ID)
	if err != nil {
		return nil, err
	}
	oldFlat := managerFlat(manager, currentBranches, currentWarehouses)
	oldVersion := manager.Version

	updated := *manager
	newPassword := ""
	applyManagerPatch(&updated, req.Data, &newPassword)

	desiredBranches := currentBranches
	if req.Data.BranchIDs != nil {
		desiredBranches = dedup(*req.Data.BranchIDs)
	}
	desiredWarehouses := currentWarehouses
	if req.Data.WarehouseIDs != nil {
		desiredWarehouses = dedup(*req.Data.WarehouseIDs)
	}

	if err := s.validateFields(company.Slug, &updated, newPassword); err != nil {
		return nil, err
	}

	newFlat := managerFlat(&updated, desiredBranches, desiredWarehouses)
	changes := changeset.Diff(oldFlat, newFlat)
	if len(changes) == 0 && newPassword == "" {
		return nil, errs.ErrNoChanges
	}

	if strings.TrimSpace(req.Confirmation.Reason) == "" {
		return nil, errs.NewValidation("a change reason is required")
	}
	if !confirm.Identity(manager.DisplayName(), req.Confirmation.ConfirmName) {
		return nil, errs.NewValidation("name does not match")
	}
	if err := s.gate.Password(ctx, confirm.PasswordConfirmation{
		CompanyID:  companyID,
		ActorID:    mctx.ActorID,
		AdminEmail: req.Confirmation.AdminEmail,
		Password:   req.Confirmation.Password,
	}); err != nil {
		return nil, err
	}

	if newPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updated.Password = string(hashed)
	}

	branchDelta := reconcile.Diff(currentBranches, desiredBranches)
	warehouseDelta := reconcile.Diff(currentWarehouses, desiredWarehouses)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.managers.UpdateVersioned(txCtx, &updated, oldVersion); err != nil {
			return err
		}
		for _, branchID := range branchDelta.ToAdd {
			exists, err := s.assigns.ManagerBranchExists(txCtx, manager.ID, branchID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := s.assigns.AddManagerBranch(txCtx, manager.ID, branchID); err != nil {
				return err
			}
		}
		for _, branchID := range branchDelta.ToRemove {
			if err := s.assigns.RemoveManagerBranch(txCtx, manager.ID, branchID); err != nil {
				return err
			}
		}
		for _, warehouseID := range warehouseDelta.ToAdd {
			exists, err := s.assigns.ManagerWarehouseExists(txCtx, manager.ID, warehouseID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := s.assigns.AddManagerWarehouse(txCtx, manager.ID, warehouseID); err != nil {
				return err
			}
		}
		for _, warehouseID := range warehouseDelta.ToRemove {
			if err := s.assigns.RemoveManagerWarehouse(txCtx, manager.ID, warehouseID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntityManager,
		EntityID:   manager.ID.String(),
		Action:     model.ActionUpdate,
		Old:        oldFlat,
		New:        newFlat,
		Reason:     req.Confirmation.Reason,
		Context:    mctx,
	})

	return s.toResponse(ctx, &updated)
}

// Delete soft-deletes a manager after the confirmation gate. Dependent
// assignments block deletion; the check runs before the gate and again
// inside the transaction as a guard against races.
func (s *managerService) Delete(ctx context.Context, companyID uuid.UUID, id string, req DeleteManagerRequest, mctx MutationContext) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errs.ErrNotFound
	}
	manager, err := s.managers.FindByID(ctx, companyID, uid)
	if err != nil {
		return err
	}

	count, err := s.assigns.CountManagerAssignments(ctx, manager.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: manager has %d active assignments", errs.ErrHasDependents, count)
	}

	if !confirm.Identity(manager.DisplayName(), req.Confirmation.ConfirmName) {
		return errs.NewValidation("name does not match")
	}
	if err := s.gate.Password(ctx, confirm.PasswordConfirmation{
		CompanyID:  companyID,
		ActorID:    mctx.ActorID,
		AdminEmail: req.Confirmation.AdminEmail,
		Password:   req.Confirmation.Password,
	}); err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		count, err := s.assigns.CountManagerAssignments(txCtx, manager.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: manager has %d active assignments", errs.ErrHasDependents, count)
		}
		return s.managers.Delete(txCtx, companyID, manager.ID)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntityManager,
		EntityID:   manager.ID.String(),
		Action:     model.ActionDelete,
		Old:        managerFlat(manager, nil, nil),
		Reason:     req.Confirmation.Reason,
		Context:    mctx,
	})
	return nil
}

func (s *managerService) SetActive(ctx context.Context, companyID uuid.UUID, id string, active bool, mctx MutationContext) (*ManagerResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	manager, err := s.managers.FindByID(ctx, companyID, uid)
	if err != nil {
		return nil, err
	}
	if manager.IsActive == active {
		return s.toResponse(ctx, manager)
	}

	oldVersion := manager.Version
	manager.IsActive = active
	if err := s.managers.UpdateVersioned(ctx, manager, oldVersion); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntityManager,
		EntityID:   manager.ID.String(),
		Action:     model.ActionUpdate,
		Old:        map[string]any{"is_active": !active},
		New:        map[string]any{"is_active": active},
		Context:    mctx,
	})
	return s.toResponse(ctx, manager)
}

// applyManagerPatch copies set fields from the patch onto the manager. A new
// password is reported back to the caller for hashing, never stored raw.
func applyManagerPatch(m *model.Manager, patch ManagerPatch, newPassword *string) {
	if patch.FirstName != nil {
		m.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		m.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Email != nil {
		m.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Phone != nil {
		m.Phone = *patch.Phone
	}
	if patch.Salary != nil {
		m.Salary = *patch.Salary
	}
	if patch.Country != nil {
		m.Country = strings.ToUpper(*patch.Country)
	}
	if patch.Password != nil && *patch.Password != "" {
		*newPassword = *patch.Password
	}
}

// dedup removes duplicate IDs while preserving order.
func dedup(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
