package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"backoffice/internal/confirm"
	"backoffice/internal/errs"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/changeset"
	"backoffice/pkg/reconcile"
)

// --- DTOs ---

type CreateSupplierRequest struct {
	Name         string      `json:"name" binding:"required"`
	TaxID        string      `json:"tax_id" binding:"required"`
	ContactEmail string      `json:"contact_email"`
	Phone        string      `json:"phone"`
	Country      string      `json:"country"`
	BranchIDs    []uuid.UUID `json:"branch_ids"`
	ManagerIDs   []uuid.UUID `json:"manager_ids"`
}

type SupplierPatch struct {
	Name         *string      `json:"name"`
	TaxID        *string      `json:"tax_id"`
	ContactEmail *string      `json:"contact_email"`
	Phone        *string      `json:"phone"`
	Country      *string      `json:"country"`
	BranchIDs    *[]uuid.UUID `json:"branch_ids"`
	ManagerIDs   *[]uuid.UUID `json:"manager_ids"`
}

type UpdateSupplierRequest struct {
	Data         SupplierPatch `json:"data"`
	Confirmation Confirmation  `json:"confirmation"`
	Version      int           `json:"version" binding:"required"`
}

type DeleteSupplierRequest struct {
	Confirmation Confirmation `json:"confirmation"`
}

type SupplierResponse struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	TaxID        string      `json:"tax_id"`
	ContactEmail string      `json:"contact_email"`
	Phone        string      `json:"phone"`
	Country      string      `json:"country"`
	IsActive     bool        `json:"is_active"`
	Version      int         `json:"version"`
	BranchIDs    []uuid.UUID `json:"branch_ids"`
	ManagerIDs   []uuid.UUID `json:"manager_ids"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// --- Interface ---

type SupplierService interface {
	Create(ctx context.Context, companyID uuid.UUID, req CreateSupplierRequest, mctx MutationContext) (*SupplierResponse, error)
	Get(ctx context.Context, companyID uuid.UUID, id string) (*SupplierResponse, error)
	List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]SupplierResponse, int64, error)
	Update(ctx context.Context, companyID uuid.UUID, id string, req UpdateSupplierRequest, mctx MutationContext) (*SupplierResponse, error)
	Delete(ctx context.Context, companyID uuid.UUID, id string, req DeleteSupplierRequest, mctx MutationContext) error
	SetActive(ctx context.Context, companyID uuid.UUID, id string, active bool, mctx MutationContext) (*SupplierResponse, error)
	AssignManager(ctx context.Context, companyID uuid.UUID, id string, managerID uuid.UUID, mctx MutationContext) error
	RemoveManager(ctx context.Context, companyID uuid.UUID, id, managerID string, mctx MutationContext) error
}

type supplierService struct {
	suppliers repository.SupplierRepository
	managers  repository.ManagerRepository
	assigns   repository.AssignmentRepository
	gate      *confirm.Gate
	txManager repository.TransactionManager
	audit     AuditService
}

// NewSupplierService wires the supplier business logic.
func NewSupplierService(
	suppliers repository.SupplierRepository,
	managers repository.ManagerRepository,
	assigns repository.AssignmentRepository,
	gate *confirm.Gate,
	txManager repository.TransactionManager,
	audit AuditService,
) SupplierService {
	return &supplierService{
		suppliers: suppliers,
		managers:  managers,
		assigns:   assigns,
		gate:      gate,
		txManager: txManager,
		audit:     audit,
	}
}

func (s *supplierService) toResponse(ctx context.Context, sp *model.Supplier) (*SupplierResponse, error) {
	branchIDs, err := s.assigns.SupplierBranchIDs(ctx, sp.ID)
	if err != nil {
		return nil, err
	}
	managerIDs, err := s.assigns.SupplierManagerIDs(ctx, sp.ID)
	if err != nil {
		return nil, err
	}
	return &SupplierResponse{
		ID:           sp.ID,
		Name:         sp.Name,
		TaxID:        sp.TaxID,
		ContactEmail: sp.ContactEmail,
		Phone:        sp.Phone,
		Country:      sp.Country,
		IsActive:     sp.IsActive,
		Version:      sp.Version,
		BranchIDs:    branchIDs,
		ManagerIDs:   managerIDs,
		CreatedAt:    sp.CreatedAt,
		UpdatedAt:    sp.UpdatedAt,
	}, nil
}

func supplierFlat(sp *model.Supplier, branchIDs, managerIDs []uuid.UUID) map[string]any {
	return map[string]any{
		"name":          sp.Name,
		"tax_id":        sp.TaxID,
		"contact_email": sp.ContactEmail,
		"phone":         sp.Phone,
		"country":       sp.Country,
		"branch_ids":    branchIDs,
		"manager_ids":   managerIDs,
	}
}

func validateSupplier(sp *model.Supplier) error {
	if sp.Name == "" {
		return errs.NewField("name", "name is required")
	}
	if strings.TrimSpace(sp.TaxID) == "" {
		return errs.NewField("tax_id", "tax_id is required")
	}
	if sp.ContactEmail != "" {
		if _, err := mail.ParseAddress(sp.ContactEmail); err != nil {
			return errs.NewField("contact_email", "invalid email format")
		}
	}
	return nil
}

func (s *supplierService) Create(ctx context.Context, companyID uuid.UUID, req CreateSupplierRequest, mctx MutationContext) (*SupplierResponse, error) {
	supplier := &model.Supplier{
		CompanyID:    companyID,
		Name:         strings.TrimSpace(req.Name),
		TaxID:        strings.TrimSpace(req.TaxID),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Phone:        req.Phone,
		Country:      strings.ToUpper(req.Country),
		IsActive:     true,
		Version:      1,
	}
	if err := validateSupplier(supplier); err != nil {
		return nil, err
	}

	if _, err := s.suppliers.FindByTaxID(ctx, companyID, supplier.TaxID); err == nil {
		return nil, fmt.Errorf("%w: tax_id %s", errs.ErrDuplicateIdentifier, supplier.TaxID)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.suppliers.Create(txCtx, supplier); err != nil {
			return err
		}
		for _, branchID := range dedup(req.BranchIDs) {
			if err := s.assigns.AddSupplierBranch(txCtx, supplier.ID, branchID); err != nil {
				return err
			}
		}
		for _, managerID := range dedup(req.ManagerIDs) {
			if err := s.assigns.AddSupplierManager(txCtx, supplier.ID, managerID); err != nil {
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
		EntityType: model.EntitySupplier,
		EntityID:   supplier.ID.String(),
		Action:     model.ActionCreate,
		New:        supplierFlat(supplier, req.BranchIDs, req.ManagerIDs),
		Context:    mctx,
	})
	return s.toResponse(ctx, supplier)
}

func (s *supplierService) Get(ctx context.Context, companyID uuid.UUID, id string) (*SupplierResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	supplier, err := s.suppliers.FindByID(ctx, companyID, uid)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, supplier)
}

func (s *supplierService) List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]SupplierResponse, int64, error) {
	suppliers, total, err := s.suppliers.List(ctx, companyID, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		r, err := s.toResponse(ctx, &suppliers[i])
		if err != nil {
			return nil, 0, err
		}
		res = append(res, *r)
	}
	return res, total, nil
}

func (s *supplierService) Update(ctx context.Context, companyID uuid.UUID, id string, req UpdateSupplierRequest, mctx MutationContext) (*SupplierResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	supplier, err := s.suppliers.FindByID(ctx, companyID, uid)
	if err != nil {
		return nil, err
	}
	if req.Version != supplier.Version {
		return nil, errs.ErrVersionConflict
	}

	currentBranches, err := s.assigns.SupplierBranchIDs(ctx, supplier.ID)
	if err != nil {
		return nil, err
	}
	currentManagers, err := s.assigns.SupplierManagerIDs(ctx, supplier.ID)
	if err != nil {
		return nil, err
	}
	oldFlat := supplierFlat(supplier, currentBranches, currentManagers)
	oldVersion := supplier.Version

	updated := *supplier
	if req.Data.Name != nil {
		updated.Name = strings.TrimSpace(*req.Data.Name)
	}
	if req.Data.TaxID != nil {
		updated.TaxID = strings.TrimSpace(*req.Data.TaxID)
	}
	if req.Data.ContactEmail != nil {
		updated.ContactEmail = strings.TrimSpace(*req.Data.ContactEmail)
	}
	if req.Data.Phone != nil {
		updated.Phone = *req.Data.Phone
	}
	if req.Data.Country != nil {
		updated.Country = strings.ToUpper(*req.Data.Country)
	}
	if err := validateSupplier(&updated); err != nil {
		return nil, err
	}

	if updated.TaxID != supplier.TaxID {
		if _, err := s.suppliers.FindByTaxID(ctx, companyID, updated.TaxID); err == nil {
			return nil, fmt.Errorf("%w: tax_id %s", errs.ErrDuplicateIdentifier, updated.TaxID)
		} else if !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
	}

	desiredBranches := currentBranches
	if req.Data.BranchIDs != nil {
		desiredBranches = dedup(*req.Data.BranchIDs)
	}
	desiredManagers := currentManagers
	if req.Data.ManagerIDs != nil {
		desiredManagers = dedup(*req.Data.ManagerIDs)
	}

	newFlat := supplierFlat(&updated, desiredBranches, desiredManagers)
	changes := changeset.Diff(oldFlat, newFlat)
	if len(changes) == 0 {
		return nil, errs.ErrNoChanges
	}

	if strings.TrimSpace(req.Confirmation.Reason) == "" {
		return nil, errs.NewValidation("a change reason is required")
	}
	if !confirm.Identity(supplier.Name, req.Confirmation.ConfirmName) {
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

	branchDelta := reconcile.Diff(currentBranches, desiredBranches)
	managerDelta := reconcile.Diff(currentManagers, desiredManagers)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.suppliers.UpdateVersioned(txCtx, &updated, oldVersion); err != nil {
			return err
		}
		for _, branchID := range branchDelta.ToAdd {
			exists, err := s.assigns.SupplierBranchExists(txCtx, supplier.ID, branchID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := s.assigns.AddSupplierBranch(txCtx, supplier.ID, branchID); err != nil {
				return err
			}
		}
		for _, branchID := range branchDelta.ToRemove {
			if err := s.assigns.RemoveSupplierBranch(txCtx, supplier.ID, branchID); err != nil {
				return err
			}
		}
		for _, managerID := range managerDelta.ToAdd {
			exists, err := s.assigns.SupplierManagerExists(txCtx, supplier.ID, managerID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := s.assigns.AddSupplierManager(txCtx, supplier.ID, managerID); err != nil {
				return err
			}
		}
		for _, managerID := range managerDelta.ToRemove {
			if err := s.assigns.RemoveSupplierManager(txCtx, supplier.ID, managerID); err != nil {
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
		EntityType: model.EntitySupplier,
		EntityID:   supplier.ID.String(),
		Action:     model.ActionUpdate,
		Old:        oldFlat,
		New:        newFlat,
		Reason:     req.Confirmation.Reason,
		Context:    mctx,
	})
	return s.toResponse(ctx, &updated)
}

func (s *supplierService) Delete(ctx context.Context, companyID uuid.UUID, id string, req DeleteSupplierRequest, mctx MutationContext) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errs.ErrNotFound
	}
	supplier, err := s.suppliers.FindByID(ctx, companyID, uid)
	if err != nil {
		return err
	}

	count, err := s.assigns.CountSupplierAssignments(ctx, supplier.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: supplier has %d active assignments", errs.ErrHasDependents, count)
	}

	if !confirm.Identity(supplier.Name, req.Confirmation.ConfirmName) {
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
		count, err := s.assigns.CountSupplierAssignments(txCtx, supplier.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: supplier has %d active assignments", errs.ErrHasDependents, count)
		}
		return s.suppliers.Delete(txCtx, companyID, supplier.ID)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntitySupplier,
		EntityID:   supplier.ID.String(),
		Action:     model.ActionDelete,
		Old:        supplierFlat(supplier, nil, nil),
		Reason:     req.Confirmation.Reason,
		Context:    mctx,
	})
	return nil
}

func (s *supplierService) SetActive(ctx context.Context, companyID uuid.UUID, id string, active bool, mctx MutationContext) (*SupplierResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	supplier, err := s.suppliers.FindByID(ctx, companyID, uid)
	if err != nil {
		return nil, err
	}
	if supplier.IsActive == active {
		return s.toResponse(ctx, supplier)
	}

	oldVersion := supplier.Version
	supplier.IsActive = active
	if err := s.suppliers.UpdateVersioned(ctx, supplier, oldVersion); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntitySupplier,
		EntityID:   supplier.ID.String(),
		Action:     model.ActionUpdate,
		Old:        map[string]any{"is_active": !active},
		New:        map[string]any{"is_active": active},
		Context:    mctx,
	})
	return s.toResponse(ctx, supplier)
}

func (s *supplierService) AssignManager(ctx context.Context, companyID uuid.UUID, id string, managerID uuid.UUID, mctx MutationContext) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errs.ErrNotFound
	}
	supplier, err := s.suppliers.FindByID(ctx, companyID, uid)
	if err != nil {
		return err
	}
	if _, err := s.managers.FindByID(ctx, companyID, managerID); err != nil {
		return err
	}

	exists, err := s.assigns.SupplierManagerExists(ctx, supplier.ID, managerID)
	if err != nil {
		return err
	}
	if exists {
		return errs.ErrAlreadyAssigned
	}
	if err := s.assigns.AddSupplierManager(ctx, supplier.ID, managerID); err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntitySupplier,
		EntityID:   supplier.ID.String(),
		Action:     model.ActionAssign,
		New:        map[string]any{"manager_id": managerID},
		Context:    mctx,
	})
	return nil
}

func (s *supplierService) RemoveManager(ctx context.Context, companyID uuid.UUID, id, managerID string, mctx MutationContext) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errs.ErrNotFound
	}
	mid, err := uuid.Parse(managerID)
	if err != nil {
		return errs.ErrNotFound
	}
	supplier, err := s.suppliers.FindByID(ctx, companyID, uid)
	if err != nil {
		return err
	}

	exists, err := s.assigns.SupplierManagerExists(ctx, supplier.ID, mid)
	if err != nil {
		return err
	}
	if !exists {
		return errs.ErrNotFound
	}
	if err := s.assigns.RemoveSupplierManager(ctx, supplier.ID, mid); err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntitySupplier,
		EntityID:   supplier.ID.String(),
		Action:     model.ActionUnassign,
		Old:        map[string]any{"manager_id": mid},
		Context:    mctx,
	})
	return nil
}
