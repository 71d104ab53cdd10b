package staff

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/medira-his/medira/internal/platform/httpx"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, form CreateForm) (Member, error) {
	if err := s.validate.Struct(form); err != nil {
		return Member{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return Member{}, err
	}
	return s.repo.Create(ctx, form, string(hash))
}

func (s *Service) List(ctx context.Context, branchID int64, filters ListFilters) ([]Member, int, error) {
	return s.repo.List(ctx, branchID, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Member, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, form UpdateForm) error {
	if err := s.validate.Struct(form); err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	return s.repo.Update(ctx, id, form)
}

// Disable soft-disables the account; this is the default removal path.
func (s *Service) Disable(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, false)
}

func (s *Service) Enable(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, true)
}

// Delete hard-removes the account and profile in one transaction.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
