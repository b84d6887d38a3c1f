package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"backoffice/internal/errs"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/validation"
)

// --- DTOs ---

type LoginRequest struct {
	CompanySlug string `json:"company_slug" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type CreateAdminRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type AdminResponse struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt string    `json:"created_at"`
}

// AuthService handles administrator login and account management.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	CreateAdmin(ctx context.Context, companyID uuid.UUID, req CreateAdminRequest) (*AdminResponse, error)
	GetAdmin(ctx context.Context, companyID uuid.UUID, id string) (*AdminResponse, error)
	ListAdmins(ctx context.Context, companyID uuid.UUID, page, limit int) ([]AdminResponse, int64, error)
}

type authService struct {
	admins    repository.AdminUserRepository
	companies repository.CompanyRepository
}

// NewAuthService returns a new instance of AuthService.
func NewAuthService(admins repository.AdminUserRepository, companies repository.CompanyRepository) AuthService {
	return &authService{admins: admins, companies: companies}
}

func toAdminResponse(u *model.AdminUser) *AdminResponse {
	return &AdminResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	company, err := s.companies.FindBySlug(ctx, strings.ToLower(req.CompanySlug))
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	account, err := s.admins.FindByEmail(ctx, company.ID, strings.ToLower(req.Email))
	if err != nil || !account.IsActive {
		return nil, errors.New("invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		return nil, errors.New("invalid email or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     account.ID.String(),
		"company": company.ID.String(),
		"role":    account.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	return &TokenResponse{Token: tokenString}, nil
}

func (s *authService) CreateAdmin(ctx context.Context, companyID uuid.UUID, req CreateAdminRequest) (*AdminResponse, error) {
	if req.Role != model.RoleAdmin && req.Role != model.RoleManager {
		return nil, errs.NewField("role", "role must be admin or manager")
	}
	if msg := validation.PasswordComplexity(req.Password); msg != "" {
		return nil, errs.NewField("password", msg)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.admins.FindByEmail(ctx, companyID, email); err == nil {
		return nil, errs.NewField("email", "email already exists")
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	account := &model.AdminUser{
		CompanyID:    companyID,
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: string(hashed),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.admins.Create(ctx, account); err != nil {
		return nil, err
	}
	return toAdminResponse(account), nil
}

func (s *authService) GetAdmin(ctx context.Context, companyID uuid.UUID, id string) (*AdminResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	account, err := s.admins.FindByID(ctx, companyID, uid)
	if err != nil {
		return nil, err
	}
	return toAdminResponse(account), nil
}

func (s *authService) ListAdmins(ctx context.Context, companyID uuid.UUID, page, limit int) ([]AdminResponse, int64, error) {
	accounts, total, err := s.admins.List(ctx, companyID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]AdminResponse, 0, len(accounts))
	for i := range accounts {
		res = append(res, *toAdminResponse(&accounts[i]))
	}
	return res, total, nil
}
