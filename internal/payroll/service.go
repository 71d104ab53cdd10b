package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/medira-his/medira/internal/platform/httpx"
)

var ErrAlreadyPaid = errors.New("salary record already paid out")

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Net computes the payable amount. Never negative; deductions cap at base
// plus bonus.
func Net(base, bonus, deduction int64) int64 {
	net := base + bonus - deduction
	if net < 0 {
		return 0
	}
	return net
}

func (s *Service) Create(ctx context.Context, branchID int64, form SalaryForm) (Salary, error) {
	if err := s.validate.Struct(form); err != nil {
		return Salary{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	return s.repo.Create(ctx, Salary{
		UserID:         form.UserID,
		BranchID:       branchID,
		Month:          form.Month,
		BaseCents:      form.BaseCents,
		BonusCents:     form.BonusCents,
		DeductionCents: form.DeductionCents,
		NetCents:       Net(form.BaseCents, form.BonusCents, form.DeductionCents),
	})
}

func (s *Service) List(ctx context.Context, branchID int64, filters ListFilters) ([]Salary, int, error) {
	return s.repo.List(ctx, branchID, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Salary, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, form SalaryForm) error {
	if err := s.validate.Struct(form); err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	return s.repo.Update(ctx, id, Salary{
		BaseCents:      form.BaseCents,
		BonusCents:     form.BonusCents,
		DeductionCents: form.DeductionCents,
		NetCents:       Net(form.BaseCents, form.BonusCents, form.DeductionCents),
	})
}

func (s *Service) MarkPaid(ctx context.Context, id int64) error {
	return s.repo.MarkPaid(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Summary(ctx context.Context, branchID int64, month string) (MonthlySummary, error) {
	if month == "" {
		return MonthlySummary{}, fmt.Errorf("%w: month is required", httpx.ErrValidation)
	}
	return s.repo.Summary(ctx, branchID, month)
}
