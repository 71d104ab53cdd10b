package pharmacy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medira-his/medira/internal/pharmacy"
	"github.com/medira-his/medira/internal/shared"
	_ "github.com/medira-his/medira/testing"
)

type stubPharmacyRepo struct {
	stock     map[int64]int
	prices    map[int64]int64
	soldCalls int
	lastLines []pharmacy.SaleItemForm
}

func newStubPharmacyRepo() *stubPharmacyRepo {
	return &stubPharmacyRepo{stock: map[int64]int{}, prices: map[int64]int64{}}
}

func (s *stubPharmacyRepo) CreateMedication(_ context.Context, m pharmacy.Medication) (pharmacy.Medication, error) {
	m.ID = int64(len(s.stock) + 1)
	s.stock[m.ID] = m.Stock
	s.prices[m.ID] = m.PriceCents
	return m, nil
}

func (s *stubPharmacyRepo) ListMedications(_ context.Context, _ int64, _ pharmacy.ListFilters) ([]pharmacy.Medication, int, error) {
	return nil, 0, nil
}

func (s *stubPharmacyRepo) GetMedication(_ context.Context, id int64) (pharmacy.Medication, error) {
	stock, ok := s.stock[id]
	if !ok {
		return pharmacy.Medication{}, shared.ErrNotFound
	}
	return pharmacy.Medication{ID: id, Stock: stock, PriceCents: s.prices[id]}, nil
}

func (s *stubPharmacyRepo) UpdateMedication(_ context.Context, _ int64, _ pharmacy.Medication) error {
	return nil
}

func (s *stubPharmacyRepo) DeleteMedication(_ context.Context, _ int64) error {
	return nil
}

func (s *stubPharmacyRepo) Sell(_ context.Context, branchID, cashierID int64, patientID *int64, items []pharmacy.SaleItemForm) (pharmacy.Sale, error) {
	s.soldCalls++
	s.lastLines = items
	var total int64
	for _, item := range items {
		if s.stock[item.MedicationID] < item.Quantity {
			return pharmacy.Sale{}, pharmacy.ErrInsufficientStock
		}
	}
	lines := make([]pharmacy.SaleItem, 0, len(items))
	for _, item := range items {
		s.stock[item.MedicationID] -= item.Quantity
		line := s.prices[item.MedicationID] * int64(item.Quantity)
		total += line
		lines = append(lines, pharmacy.SaleItem{
			MedicationID: item.MedicationID,
			Quantity:     item.Quantity,
			UnitCents:    s.prices[item.MedicationID],
			LineCents:    line,
		})
	}
	return pharmacy.Sale{ID: 1, BranchID: branchID, CashierID: cashierID, PatientID: patientID, TotalCents: total, Items: lines}, nil
}

func (s *stubPharmacyRepo) GetSale(_ context.Context, _ int64) (pharmacy.Sale, error) {
	return pharmacy.Sale{}, shared.ErrNotFound
}

func TestFormatCents(t *testing.T) {
	require.Equal(t, "0.50", pharmacy.FormatCents(50))
	require.Equal(t, "12.00", pharmacy.FormatCents(1200))
	require.Equal(t, "1,234,567.89", pharmacy.FormatCents(123456789))
	require.Equal(t, "-3.05", pharmacy.FormatCents(-305))
}

func TestMergeLines(t *testing.T) {
	merged := pharmacy.MergeLines([]pharmacy.SaleItemForm{
		{MedicationID: 1, Quantity: 2},
		{MedicationID: 2, Quantity: 1},
		{MedicationID: 1, Quantity: 3},
	})
	require.Equal(t, []pharmacy.SaleItemForm{
		{MedicationID: 1, Quantity: 5},
		{MedicationID: 2, Quantity: 1},
	}, merged)
}

func TestSellComputesTotal(t *testing.T) {
	repo := newStubPharmacyRepo()
	repo.stock[1] = 10
	repo.prices[1] = 250
	svc := pharmacy.NewService(repo)

	sale, err := svc.Sell(context.Background(), 5, 6, pharmacy.SaleForm{
		Items: []pharmacy.SaleItemForm{{MedicationID: 1, Quantity: 4}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1000, sale.TotalCents)
	require.Equal(t, "10.00", sale.Total)
	require.Equal(t, 6, repo.stock[1])
}

func TestSellRejectsOversell(t *testing.T) {
	repo := newStubPharmacyRepo()
	repo.stock[1] = 3
	repo.prices[1] = 250
	svc := pharmacy.NewService(repo)

	_, err := svc.Sell(context.Background(), 5, 6, pharmacy.SaleForm{
		Items: []pharmacy.SaleItemForm{{MedicationID: 1, Quantity: 4}},
	})
	require.ErrorIs(t, err, pharmacy.ErrInsufficientStock)
	require.Equal(t, 3, repo.stock[1])
}

func TestSellMergesDuplicateLinesBeforeStockCheck(t *testing.T) {
	repo := newStubPharmacyRepo()
	repo.stock[1] = 5
	repo.prices[1] = 100
	svc := pharmacy.NewService(repo)

	_, err := svc.Sell(context.Background(), 5, 6, pharmacy.SaleForm{
		Items: []pharmacy.SaleItemForm{
			{MedicationID: 1, Quantity: 3},
			{MedicationID: 1, Quantity: 3},
		},
	})
	require.ErrorIs(t, err, pharmacy.ErrInsufficientStock)
	require.Len(t, repo.lastLines, 1)
	require.Equal(t, 6, repo.lastLines[0].Quantity)
}
