package service

import (
	"context"
	"fmt"
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

type CreateWarehouseRequest struct {
	Name      string      `json:"name" binding:"required"`
	Address   string      `json:"address"`
	Capacity  int         `json:"capacity"`
	BranchIDs []uuid.UUID `json:"branch_ids"`
}

type WarehousePatch struct {
	Name      *string      `json:"name"`
	Address   *string      `json:"address"`
	Capacity  *int         `json:"capacity"`
	BranchIDs *[]uuid.UUID `json:"branch_ids"`
}

type UpdateWarehouseRequest struct {
	Data         WarehousePatch `json:"data"`
	Confirmation Confirmation   `json:"confirmation"`
	Version      int            `json:"version" binding:"required"`
}

type DeleteWarehouseRequest struct {
	Confirmation Confirmation `json:"confirmation"`
}

// AssignBranchRequest links a warehouse to a branch, optionally flagging the
// link primary for that branch.
type AssignBranchRequest struct {
	BranchID  uuid.UUID `json:"branch_id" binding:"required"`
	IsPrimary bool      `json:"is_primary"`
}

type WarehouseResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Address   string      `json:"address"`
	Capacity  int         `json:"capacity"`
	IsActive  bool        `json:"is_active"`
	Version   int         `json:"version"`
	BranchIDs []uuid.UUID `json:"branch_ids"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// --- Interface ---

type WarehouseService interface {
	Create(ctx context.Context, companyID uuid.UUID, req CreateWarehouseRequest, mctx MutationContext) (*WarehouseResponse, error)
	Get(ctx context.Context, companyID uuid.UUID, id string) (*WarehouseResponse, error)
	List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]WarehouseResponse, int64, error)
	Update(ctx context.Context, companyID uuid.UUID, id string, req UpdateWarehouseRequest, mctx MutationContext) (*WarehouseResponse, error)
	Delete(ctx context.Context, companyID uuid.UUID, id string, req DeleteWarehouseRequest, mctx MutationContext) error
	SetActive(ctx context.Context, companyID uuid.UUID, id string, active bool, mctx MutationContext) (*WarehouseResponse, error)
	AssignBranch(ctx context.Context, companyID uuid.UUID, id string, req AssignBranchRequest, mctx MutationContext) error
	RemoveBranch(ctx context.Context, companyID uuid.UUID, id, branchID string, mctx MutationContext) error
}

type warehouseService struct {
	warehouses repository.WarehouseRepository
	branches   repository.BranchRepository
	assigns    repository.AssignmentRepository
	gate       *confirm.Gate
	txManager  repository.TransactionManager
	audit      AuditService
}

// NewWarehouseService wires the warehouse business logic.
func NewWarehouseService(
	warehouses repository.WarehouseRepository,
	branches repository.BranchRepository,
	assigns repository.AssignmentRepository,
	gate *confirm.Gate,
	txManager repository.TransactionManager,
	audit AuditService,
) WarehouseService {
	return &warehouseService{
		warehouses: warehouses,
		branches:   branches,
		assigns:    assigns,
		gate:       gate,
		txManager:  txManager,
		audit:      audit,
	}
}

func (s *warehouseService) toResponse(ctx context.Context, w *model.Warehouse) (*WarehouseResponse, error) {
	branchIDs, err := s.assigns.WarehouseBranchIDs(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	return &WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		Address:   w.Address,
		Capacity:  w.Capacity,
		IsActive:  w.IsActive,
		Version:   w.Version,
		BranchIDs: branchIDs,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}, nil
}

func warehouseFlat(w *model.Warehouse, branchIDs []uuid.UUID) map[string]any {
	return map[string]any{
		"name":       w.Name,
		"address":    w.Address,
		"capacity":   w.Capacity,
		"branch_ids": branchIDs,
	}
}

func (s *warehouseService) Create(ctx context.Context, companyID uuid.UUID, req CreateWarehouseRequest, mctx MutationContext) (*WarehouseResponse, error) {
	warehouse := &model.Warehouse{
		CompanyID: companyID,
		Name:      strings.TrimSpace(req.Name),
		Address:   req.Address,
		Capacity:  req.Capacity,
		IsActive:  true,
		Version:   1,
	}
	if warehouse.Name == "" {
		return nil, errs.NewField("name", "name is required")
	}
	if req.Capacity < 0 {
		return nil, errs.NewField("capacity", "capacity cannot be negative")
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.warehouses.Create(txCtx, warehouse); err != nil {
			return err
		}
		for _, branchID := range dedup(req.BranchIDs) {
			if err := s.assigns.AddWarehouseBranch(txCtx, warehouse.ID, branchID, false); err != nil {
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
		EntityType: model.EntityWarehouse,
		EntityID:   warehouse.ID.String(),
		Action:     model.ActionCreate,
		New:        warehouseFlat(warehouse, req.BranchIDs),
		Context:    mctx,
	})
	return s.toResponse(ctx, warehouse)
}

func (s *warehouseService) Get(ctx context.Context, companyID uuid.UUID, id string) (*WarehouseResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	warehouse, err := s.warehouses.FindByID(ctx, companyID, uid)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, warehouse)
}

func (s *warehouseService) List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]WarehouseResponse, int64, error) {
	warehouses, total, err := s.warehouses.List(ctx, companyID, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]WarehouseResponse, 0, len(warehouses))
	for i := range warehouses {
		r, err := s.toResponse(ctx, &warehouses[i])
		if err != nil {
			return nil, 0, err
		}
		res = append(res, *r)
	}
	return res, total, nil
}

func (s *warehouseService) Update(ctx context.Context, companyID uuid.UUID, id string, req UpdateWarehouseRequest, mctx MutationContext) (*WarehouseResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	warehouse, err := s.warehouses.FindByID(ctx, companyID, uid)
	if err != nil {
		return nil, err
	}
	if req.Version != warehouse.Version {
		return nil, errs.ErrVersionConflict
	}

	currentBranches, err := s.assigns.WarehouseBranchIDs(ctx, warehouse.ID)
	if err != nil {
		return nil, err
	}
	oldFlat := warehouseFlat(warehouse, currentBranches)
	oldVersion := warehouse.Version

	updated := *warehouse
	if req.Data.Name != nil {
		updated.Name = strings.TrimSpace(*req.Data.Name)
	}
	if req.Data.Address != nil {
		updated.Address = *req.Data.Address
	}
	if req.Data.Capacity != nil {
		updated.Capacity = *req.Data.Capacity
	}
	if updated.Name == "" {
		return nil, errs.NewField("name", "name is required")
	}
	if updated.Capacity < 0 {
		return nil, errs.NewField("capacity", "capacity cannot be negative")
	}

	desiredBranches := currentBranches
	if req.Data.BranchIDs != nil {
		desiredBranches = dedup(*req.Data.BranchIDs)
	}

	newFlat := warehouseFlat(&updated, desiredBranches)
	changes := changeset.Diff(oldFlat, newFlat)
	if len(changes) == 0 {
		return nil, errs.ErrNoChanges
	}

	if strings.TrimSpace(req.Confirmation.Reason) == "" {
		return nil, errs.NewValidation("a change reason is required")
	}
	if !confirm.Identity(warehouse.Name, req.Confirmation.ConfirmName) {
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

	delta := reconcile.Diff(currentBranches, desiredBranches)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.warehouses.UpdateVersioned(txCtx, &updated, oldVersion); err != nil {
			return err
		}
		for _, branchID := range delta.ToAdd {
			exists, err := s.assigns.WarehouseBranchExists(txCtx, warehouse.ID, branchID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := s.assigns.AddWarehouseBranch(txCtx, warehouse.ID, branchID, false); err != nil {
				return err
			}
		}
		for _, branchID := range delta.ToRemove {
			if err := s.assigns.RemoveWarehouseBranch(txCtx, warehouse.ID, branchID); err != nil {
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
		EntityType: model.EntityWarehouse,
		EntityID:   warehouse.ID.String(),
		Action:     model.ActionUpdate,
		Old:        oldFlat,
		New:        newFlat,
		Reason:     req.Confirmation.Reason,
		Context:    mctx,
	})
	return s.toResponse(ctx, &updated)
}

func (s *warehouseService) Delete(ctx context.Context, companyID uuid.UUID, id string, req DeleteWarehouseRequest, mctx MutationContext) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errs.ErrNotFound
	}
	warehouse, err := s.warehouses.FindByID(ctx, companyID, uid)
	if err != nil {
		return err
	}

	count, err := s.assigns.CountWarehouseAssignments(ctx, warehouse.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: warehouse has %d active assignments", errs.ErrHasDependents, count)
	}

	if !confirm.Identity(warehouse.Name, req.Confirmation.ConfirmName) {
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
		count, err := s.assigns.CountWarehouseAssignments(txCtx, warehouse.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: warehouse has %d active assignments", errs.ErrHasDependents, count)
		}
		return s.warehouses.Delete(txCtx, companyID, warehouse.ID)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntityWarehouse,
		EntityID:   warehouse.ID.String(),
		Action:     model.ActionDelete,
		Old:        warehouseFlat(warehouse, nil),
		Reason:     req.Confirmation.Reason,
		Context:    mctx,
	})
	return nil
}

func (s *warehouseService) SetActive(ctx context.Context, companyID uuid.UUID, id string, active bool, mctx MutationContext) (*WarehouseResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	warehouse, err := s.warehouses.FindByID(ctx, companyID, uid)
	if err != nil {
		return nil, err
	}
	if warehouse.IsActive == active {
		return s.toResponse(ctx, warehouse)
	}

	oldVersion := warehouse.Version
	warehouse.IsActive = active
	if err := s.warehouses.UpdateVersioned(ctx, warehouse, oldVersion); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntityWarehouse,
		EntityID:   warehouse.ID.String(),
		Action:     model.ActionUpdate,
		Old:        map[string]any{"is_active": !active},
		New:        map[string]any{"is_active": active},
		Context:    mctx,
	})
	return s.toResponse(ctx, warehouse)
}

// AssignBranch links the warehouse to a branch. Assigning an already linked
// branch is a domain error, not a constraint violation. When the link is
// flagged primary, the branch's previous primary is cleared in the same
// transaction.
func (s *warehouseService) AssignBranch(ctx context.Context, companyID uuid.UUID, id string, req AssignBranchRequest, mctx MutationContext) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errs.ErrNotFound
	}
	warehouse, err := s.warehouses.FindByID(ctx, companyID, uid)
	if err != nil {
		return err
	}
	if _, err := s.branches.FindByID(ctx, companyID, req.BranchID); err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		exists, err := s.assigns.WarehouseBranchExists(txCtx, warehouse.ID, req.BranchID)
		if err != nil {
			return err
		}
		if exists {
			return errs.ErrAlreadyAssigned
		}
		if req.IsPrimary {
			if err := s.assigns.ClearPrimaryForBranch(txCtx, req.BranchID); err != nil {
				return err
			}
		}
		return s.assigns.AddWarehouseBranch(txCtx, warehouse.ID, req.BranchID, req.IsPrimary)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntityWarehouse,
		EntityID:   warehouse.ID.String(),
		Action:     model.ActionAssign,
		New:        map[string]any{"branch_id": req.BranchID, "is_primary": req.IsPrimary},
		Context:    mctx,
	})
	return nil
}

func (s *warehouseService) RemoveBranch(ctx context.Context, companyID uuid.UUID, id, branchID string, mctx MutationContext) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errs.ErrNotFound
	}
	bid, err := uuid.Parse(branchID)
	if err != nil {
		return errs.ErrNotFound
	}
	warehouse, err := s.warehouses.FindByID(ctx, companyID, uid)
	if err != nil {
		return err
	}

	exists, err := s.assigns.WarehouseBranchExists(ctx, warehouse.ID, bid)
	if err != nil {
		return err
	}
	if !exists {
		return errs.ErrNotFound
	}
	if err := s.assigns.RemoveWarehouseBranch(ctx, warehouse.ID, bid); err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntityWarehouse,
		EntityID:   warehouse.ID.String(),
		Action:     model.ActionUnassign,
		Old:        map[string]any{"branch_id": bid},
		Context:    mctx,
	})
	return nil
}
