package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/medira-his/medira/internal/rbac"
	"github.com/medira-his/medira/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Authenticate resolves a login identifier (email, or phone number for
// patient accounts) and verifies the secret. It distinguishes an unknown
// identifier from a wrong secret; that distinction exists only at this
// layer, the gates collapse both into 401.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*User, []string, error) {
	identifier = strings.TrimSpace(identifier)

	var user *User
	var err error
	if s.isEmail(identifier) {
		user, err = s.repo.FindByEmail(ctx, identifier)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, nil, shared.ErrPrincipalNotFound
			}
			return nil, nil, err
		}
	} else {
		patient, err := s.repo.FindPatientByPhone(ctx, identifier)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, nil, shared.ErrPrincipalNotFound
			}
			return nil, nil, err
		}
		user, err = s.repo.FindByID(ctx, patient.UserID)
		if err != nil {
			// Broken patient->user link reads the same as no account.
			if errors.Is(err, shared.ErrNotFound) {
				return nil, nil, shared.ErrPrincipalNotFound
			}
			return nil, nil, err
		}
	}

	if !user.IsActive {
		return nil, nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, shared.ErrInvalidCredentials
	}

	return user, rbac.Abilities(user.RoleCode), nil
}

// Principal builds the request principal for a user with the abilities the
// issued token actually carries.
func Principal(u *User, abilities []string) *shared.Principal {
	return &shared.Principal{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		RoleCode:  u.RoleCode,
		RoleName:  u.RoleName,
		BranchID:  u.BranchID,
		Abilities: abilities,
	}
}

func (s *Service) isEmail(identifier string) bool {
	return s.validate.Var(identifier, "email") == nil
}
