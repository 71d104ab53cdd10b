package pharmacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/medira-his/medira/internal/platform/httpx"
)

var ErrInsufficientStock = errors.New("insufficient stock for requested quantity")

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) CreateMedication(ctx context.Context, branchID int64, form MedicationForm) (Medication, error) {
	if err := s.validate.Struct(form); err != nil {
		return Medication{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	return s.repo.CreateMedication(ctx, Medication{
		BranchID:   branchID,
		SKU:        form.SKU,
		Name:       form.Name,
		Unit:       form.Unit,
		PriceCents: form.PriceCents,
		Stock:      form.Stock,
	})
}

func (s *Service) ListMedications(ctx context.Context, branchID int64, filters ListFilters) ([]Medication, int, error) {
	return s.repo.ListMedications(ctx, branchID, filters)
}

func (s *Service) GetMedication(ctx context.Context, id int64) (Medication, error) {
	return s.repo.GetMedication(ctx, id)
}

func (s *Service) UpdateMedication(ctx context.Context, id int64, form MedicationForm) error {
	if err := s.validate.Struct(form); err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	return s.repo.UpdateMedication(ctx, id, Medication{
		SKU:        form.SKU,
		Name:       form.Name,
		Unit:       form.Unit,
		PriceCents: form.PriceCents,
		Stock:      form.Stock,
	})
}

func (s *Service) DeleteMedication(ctx context.Context, id int64) error {
	return s.repo.DeleteMedication(ctx, id)
}

// Sell runs the point-of-sale flow. Duplicate medication lines are merged
// before hitting the stock so a bill can never double-decrement.
func (s *Service) Sell(ctx context.Context, branchID, cashierID int64, form SaleForm) (Sale, error) {
	if err := s.validate.Struct(form); err != nil {
		return Sale{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	sale, err := s.repo.Sell(ctx, branchID, cashierID, form.PatientID, MergeLines(form.Items))
	if err != nil {
		return Sale{}, err
	}
	sale.Total = FormatCents(sale.TotalCents)
	return sale, nil
}

func (s *Service) GetSale(ctx context.Context, id int64) (Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	sale.Total = FormatCents(sale.TotalCents)
	return sale, nil
}

// MergeLines combines repeated medication ids, preserving first-seen order.
func MergeLines(items []SaleItemForm) []SaleItemForm {
	merged := make([]SaleItemForm, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if at, ok := index[item.MedicationID]; ok {
			merged[at].Quantity += item.Quantity
			continue
		}
		index[item.MedicationID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
