package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"backoffice/internal/errs"
	"backoffice/internal/model"
	"backoffice/internal/repository"
)

// --- DTOs ---

type CreateCompanyRequest struct {
	Name    string `json:"name" binding:"required"`
	Slug    string `json:"slug" binding:"required"`
	Country string `json:"country"`
}

type CompanyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Country   string    `json:"country"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CompanyService manages tenant bootstrap.
type CompanyService interface {
	Create(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*CompanyResponse, error)
	GetBySlug(ctx context.Context, slug string) (*CompanyResponse, error)
	List(ctx context.Context, page, limit int) ([]CompanyResponse, int64, error)
}

type companyService struct {
	companies repository.CompanyRepository
}

// NewCompanyService returns a new instance of CompanyService.
func NewCompanyService(companies repository.CompanyRepository) CompanyService {
	return &companyService{companies: companies}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func toCompanyResponse(c *model.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		Country:   c.Country,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}

func (s *companyService) Create(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, errs.NewField("slug", "slug must be lowercase alphanumeric with optional hyphens")
	}

	if _, err := s.companies.FindBySlug(ctx, slug); err == nil {
		return nil, errs.NewField("slug", "slug already exists")
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	company := &model.Company{
		Name:     strings.TrimSpace(req.Name),
		Slug:     slug,
		Country:  strings.ToUpper(req.Country),
		IsActive: true,
		Version:  1,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

func (s *companyService) Get(ctx context.Context, id uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

func (s *companyService) GetBySlug(ctx context.Context, slug string) (*CompanyResponse, error) {
	company, err := s.companies.FindBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

func (s *companyService) List(ctx context.Context, page, limit int) ([]CompanyResponse, int64, error) {
	companies, total, err := s.companies.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]CompanyResponse, 0, len(companies))
	for i := range companies {
		res = append(res, *toCompanyResponse(&companies[i]))
	}
	return res, total, nil
}
