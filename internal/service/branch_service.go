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
)

// --- DTOs ---

type CreateBranchRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
}

type BranchPatch struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Country *string `json:"country"`
}

type UpdateBranchRequest struct {
	Data         BranchPatch  `json:"data"`
	Confirmation Confirmation `json:"confirmation"`
	Version      int          `json:"version" binding:"required"`
}

type DeleteBranchRequest struct {
	Confirmation Confirmation `json:"confirmation"`
}

type SetPrimaryWarehouseRequest struct {
	WarehouseID uuid.UUID `json:"warehouse_id" binding:"required"`
}

type BranchResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Country   string    `json:"country"`
	IsActive  bool      `json:"is_active"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- Interface ---

type BranchService interface {
	Create(ctx context.Context, companyID uuid.UUID, req CreateBranchRequest, mctx MutationContext) (*BranchResponse, error)
	Get(ctx context.Context, companyID uuid.UUID, id string) (*BranchResponse, error)
	List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]BranchResponse, int64, error)
	Update(ctx context.Context, companyID uuid.UUID, id string, req UpdateBranchRequest, mctx MutationContext) (*BranchResponse, error)
	Delete(ctx context.Context, companyID uuid.UUID, id string, req DeleteBranchRequest, mctx MutationContext) error
	SetActive(ctx context.Context, companyID uuid.UUID, id string, active bool, mctx MutationContext) (*BranchResponse, error)
	// SetPrimaryWarehouse flags one warehouse as primary for the branch,
	// clearing any previous primary in the same transaction.
	SetPrimaryWarehouse(ctx context.Context, companyID uuid.UUID, id string, req SetPrimaryWarehouseRequest, mctx MutationContext) error
}

type branchService struct {
	branches   repository.BranchRepository
	warehouses repository.WarehouseRepository
	assigns    repository.AssignmentRepository
	gate       *confirm.Gate
	txManager  repository.TransactionManager
	audit      AuditService
}

// NewBranchService wires the branch business logic.
func NewBranchService(
	branches repository.BranchRepository,
	warehouses repository.WarehouseRepository,
	assigns repository.AssignmentRepository,
	gate *confirm.Gate,
	txManager repository.TransactionManager,
	audit AuditService,
) BranchService {
	return &branchService{
		branches:   branches,
		warehouses: warehouses,
		assigns:    assigns,
		gate:       gate,
		txManager:  txManager,
		audit:      audit,
	}
}

func toBranchResponse(b *model.Branch) *BranchResponse {
	return &BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   b.Address,
		Phone:     b.Phone,
		Country:   b.Country,
		IsActive:  b.IsActive,
		Version:   b.Version,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func branchFlat(b *model.Branch) map[string]any {
	return map[string]any{
		"name":    b.Name,
		"address": b.Address,
		"phone":   b.Phone,
		"country": b.Country,
	}
}

func (s *branchService) Create(ctx context.Context, companyID uuid.UUID, req CreateBranchRequest, mctx MutationContext) (*BranchResponse, error) {
	branch := &model.Branch{
		CompanyID: companyID,
		Name:      strings.TrimSpace(req.Name),
		Address:   req.Address,
		Phone:     req.Phone,
		Country:   strings.ToUpper(req.Country),
		IsActive:  true,
		Version:   1,
	}
	if branch.Name == "" {
		return nil, errs.NewField("name", "name is required")
	}

	if err := s.branches.Create(ctx, branch); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntityBranch,
		EntityID:   branch.ID.String(),
		Action:     model.ActionCreate,
		New:        branchFlat(branch),
		Context:    mctx,
	})
	return toBranchResponse(branch), nil
}

func (s *branchService) Get(ctx context.Context, companyID uuid.UUID, id string) (*BranchResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	branch, err := s.branches.FindByID(ctx, companyID, uid)
	if err != nil {
		return nil, err
	}
	return toBranchResponse(branch), nil
}

func (s *branchService) List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]BranchResponse, int64, error) {
	branches, total, err := s.branches.List(ctx, companyID, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]BranchResponse, 0, len(branches))
	for i := range branches {
		res = append(res, *toBranchResponse(&branches[i]))
	}
	return res, total, nil
}

func (s *branchService) Update(ctx context.Context, companyID uuid.UUID, id string, req UpdateBranchRequest, mctx MutationContext) (*BranchResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	branch, err := s.branches.FindByID(ctx, companyID, uid)
	if err != nil {
		return nil, err
	}
	if req.Version != branch.Version {
		return nil, errs.ErrVersionConflict
	}

	oldFlat := branchFlat(branch)
	oldVersion := branch.Version

	updated := *branch
	if req.Data.Name != nil {
		updated.Name = strings.TrimSpace(*req.Data.Name)
	}
	if req.Data.Address != nil {
		updated.Address = *req.Data.Address
	}
	if req.Data.Phone != nil {
		updated.Phone = *req.Data.Phone
	}
	if req.Data.Country != nil {
		updated.Country = strings.ToUpper(*req.Data.Country)
	}
	if updated.Name == "" {
		return nil, errs.NewField("name", "name is required")
	}

	newFlat := branchFlat(&updated)
	changes := changeset.Diff(oldFlat, newFlat)
	if len(changes) == 0 {
		return nil, errs.ErrNoChanges
	}

	if strings.TrimSpace(req.Confirmation.Reason) == "" {
		return nil, errs.NewValidation("a change reason is required")
	}
	if !confirm.Identity(branch.Name, req.Confirmation.ConfirmName) {
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

	if err := s.branches.UpdateVersioned(ctx, &updated, oldVersion); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntityBranch,
		EntityID:   branch.ID.String(),
		Action:     model.ActionUpdate,
		Old:        oldFlat,
		New:        newFlat,
		Reason:     req.Confirmation.Reason,
		Context:    mctx,
	})
	return toBranchResponse(&updated), nil
}

// Delete soft-deletes a branch. A branch with active managers or any
// remaining assignment cannot be deleted; the structural checks run before
// the confirmation gate and again inside the delete transaction.
func (s *branchService) Delete(ctx context.Context, companyID uuid.UUID, id string, req DeleteBranchRequest, mctx MutationContext) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errs.ErrNotFound
	}
	branch, err := s.branches.FindByID(ctx, companyID, uid)
	if err != nil {
		return err
	}

	if err := s.checkDeletable(ctx, branch.ID); err != nil {
		return err
	}

	if !confirm.Identity(branch.Name, req.Confirmation.ConfirmName) {
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
		if err := s.checkDeletable(txCtx, branch.ID); err != nil {
			return err
		}
		return s.branches.Delete(txCtx, companyID, branch.ID)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntityBranch,
		EntityID:   branch.ID.String(),
		Action:     model.ActionDelete,
		Old:        branchFlat(branch),
		Reason:     req.Confirmation.Reason,
		Context:    mctx,
	})
	return nil
}

func (s *branchService) checkDeletable(ctx context.Context, branchID uuid.UUID) error {
	employees, err := s.branches.CountActiveManagers(ctx, branchID)
	if err != nil {
		return err
	}
	if employees > 0 {
		return fmt.Errorf("%w: branch has %d active managers", errs.ErrHasDependents, employees)
	}
	assignments, err := s.assigns.CountBranchAssignments(ctx, branchID)
	if err != nil {
		return err
	}
	if assignments > 0 {
		return fmt.Errorf("%w: branch has %d active assignments", errs.ErrHasDependents, assignments)
	}
	return nil
}

func (s *branchService) SetActive(ctx context.Context, companyID uuid.UUID, id string, active bool, mctx MutationContext) (*BranchResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	branch, err := s.branches.FindByID(ctx, companyID, uid)
	if err != nil {
		return nil, err
	}
	if branch.IsActive == active {
		return toBranchResponse(branch), nil
	}

	oldVersion := branch.Version
	branch.IsActive = active
	if err := s.branches.UpdateVersioned(ctx, branch, oldVersion); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntityBranch,
		EntityID:   branch.ID.String(),
		Action:     model.ActionUpdate,
		Old:        map[string]any{"is_active": !active},
		New:        map[string]any{"is_active": active},
		Context:    mctx,
	})
	return toBranchResponse(branch), nil
}

// SetPrimaryWarehouse makes the given warehouse the branch's primary. The
// previous primary flag is cleared first so exactly one link per branch
// carries the flag afterwards; both writes share one transaction.
func (s *branchService) SetPrimaryWarehouse(ctx context.Context, companyID uuid.UUID, id string, req SetPrimaryWarehouseRequest, mctx MutationContext) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errs.ErrNotFound
	}
	branch, err := s.branches.FindByID(ctx, companyID, uid)
	if err != nil {
		return err
	}
	if _, err := s.warehouses.FindByID(ctx, companyID, req.WarehouseID); err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		linked, err := s.assigns.WarehouseBranchExists(txCtx, req.WarehouseID, branch.ID)
		if err != nil {
			return err
		}
		if err := s.assigns.ClearPrimaryForBranch(txCtx, branch.ID); err != nil {
			return err
		}
		if linked {
			return s.assigns.MarkPrimary(txCtx, req.WarehouseID, branch.ID)
		}
		return s.assigns.AddWarehouseBranch(txCtx, req.WarehouseID, branch.ID, true)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		EntityType: model.EntityBranch,
		EntityID:   branch.ID.String(),
		Action:     model.ActionAssign,
		New:        map[string]any{"primary_warehouse_id": req.WarehouseID},
		Context:    mctx,
	})
	return nil
}
