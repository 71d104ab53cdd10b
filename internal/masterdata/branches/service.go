package branches

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/medira-his/medira/internal/platform/httpx"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Branch, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Branch, error) {
	if id <= 0 {
		return Branch{}, fmt.Errorf("%w: invalid branch id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form BranchForm) (Branch, error) {
	if err := s.validate.Struct(form); err != nil {
		return Branch{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	return s.repo.Create(ctx, Branch{
		Code:     form.Code,
		Name:     form.Name,
		Division: form.Division,
		Address:  form.Address,
	})
}

func (s *Service) Update(ctx context.Context, id int64, form BranchForm) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid branch id", httpx.ErrValidation)
	}
	if err := s.validate.Struct(form); err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	return s.repo.Update(ctx, id, Branch{
		Code:     form.Code,
		Name:     form.Name,
		Division: form.Division,
		Address:  form.Address,
	})
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid branch id", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}
