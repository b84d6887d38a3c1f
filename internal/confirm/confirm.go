// Package confirm implements the identity + password confirmation gate that
// guards sensitive mutations (delete, salary/contract edits, country change).
package confirm

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"backoffice/internal/errs"
	"backoffice/internal/model"
)

// MinPasswordLen is checked before any database round-trip.
const MinPasswordLen = 8

// Identity compares the typed confirmation name against the principal's
// current display name. Both sides are trimmed; comparison is exact and
// case-sensitive. Must pass before password validation is even attempted.
func Identity(expected, entered string) bool {
	return strings.TrimSpace(expected) == strings.TrimSpace(entered)
}

// AdminLookup resolves administrator accounts for password validation.
type AdminLookup interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.AdminUser, error)
	FindByEmail(ctx context.Context, companyID uuid.UUID, email string) (*model.AdminUser, error)
	FirstActiveAdmin(ctx context.Context, companyID uuid.UUID) (*model.AdminUser, error)
}

// PasswordConfirmation carries the credentials for the gate. Resolution
// order: ActorID, then AdminEmail, then the first active administrator of
// the tenant.
type PasswordConfirmation struct {
	CompanyID  uuid.UUID
	ActorID    *uuid.UUID
	AdminEmail string
	Password   string
}

// Gate validates confirmation passwords against stored admin credentials.
type Gate struct {
	admins AdminLookup
	log    *logrus.Logger
}

// NewGate builds a Gate backed by the given admin lookup.
func NewGate(admins AdminLookup, log *logrus.Logger) *Gate {
	return &Gate{admins: admins, log: log}
}

var errPasswordMismatch = errs.NewValidation("password does not match")

// Password resolves the confirming account and bcrypt-compares the entered
// password. Every failure mode returns the same generic ValidationError so
// callers learn nothing about which lookup step failed.
func (g *Gate) Password(ctx context.Context, req PasswordConfirmation) error {
	if len(strings.TrimSpace(req.Password)) < MinPasswordLen {
		return errPasswordMismatch
	}

	account, via, err := g.resolve(ctx, req)
	if err != nil || account == nil || !account.IsActive {
		return errPasswordMismatch
	}

	if via == "fallback" {
		// The broad-trust fallback must be auditable.
		g.log.WithFields(logrus.Fields{
			"company_id": req.CompanyID,
			"account_id": account.ID,
			"resolved":   via,
		}).Warn("password confirmation fell back to first active administrator")
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		return errPasswordMismatch
	}
	return nil
}

func (g *Gate) resolve(ctx context.Context, req PasswordConfirmation) (*model.AdminUser, string, error) {
	if req.ActorID != nil {
		account, err := g.admins.FindByID(ctx, req.CompanyID, *req.ActorID)
		return account, "actor_id", err
	}
	if req.AdminEmail != "" {
		account, err := g.admins.FindByEmail(ctx, req.CompanyID, req.AdminEmail)
		return account, "admin_email", err
	}
	account, err := g.admins.FirstActiveAdmin(ctx, req.CompanyID)
	return account, "fallback", err
}
