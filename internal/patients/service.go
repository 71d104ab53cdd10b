package patients

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

// Register creates the patient account. The caller issues the token.
func (s *Service) Register(ctx context.Context, form RegisterForm) (Patient, error) {
	if err := s.validate.Struct(form); err != nil {
		return Patient{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return Patient{}, err
	}
	return s.repo.Register(ctx, form, string(hash))
}

func (s *Service) List(ctx context.Context, branchID int64, filters ListFilters) ([]Patient, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 {
		filters.Limit = 20
	}
	return s.repo.List(ctx, branchID, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, form UpdateForm) error {
	if err := s.validate.Struct(form); err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	return s.repo.Update(ctx, id, form)
}
