package pharmacy

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medira-his/medira/internal/platform/db"
	"github.com/medira-his/medira/internal/platform/httpx"
	"github.com/medira-his/medira/internal/shared"
)

type Repository interface {
	CreateMedication(ctx context.Context, m Medication) (Medication, error)
	ListMedications(ctx context.Context, branchID int64, filters ListFilters) ([]Medication, int, error)
	GetMedication(ctx context.Context, id int64) (Medication, error)
	UpdateMedication(ctx context.Context, id int64, m Medication) error
	DeleteMedication(ctx context.Context, id int64) error
	Sell(ctx context.Context, branchID, cashierID int64, patientID *int64, items []SaleItemForm) (Sale, error)
	GetSale(ctx context.Context, id int64) (Sale, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const medicationColumns = `id, branch_id, sku, name, unit, price_cents, stock, created_at, updated_at`

func (r *repository) CreateMedication(ctx context.Context, m Medication) (Medication, error) {
	query := `INSERT INTO medications (branch_id, sku, name, unit, price_cents, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, m.BranchID, m.SKU, m.Name, m.Unit, m.PriceCents, m.Stock).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Medication{}, httpx.ErrDuplicate
		}
		return Medication{}, err
	}
	return m, nil
}

func (r *repository) ListMedications(ctx context.Context, branchID int64, filters ListFilters) ([]Medication, int, error) {
	where := ` FROM medications WHERE branch_id = $1`
	args := []any{branchID}
	argCount := 1

	if filters.Search != "" {
		argCount++
		where += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR sku ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + medicationColumns + where + ` ORDER BY name ASC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Medication
	for rows.Next() {
		var m Medication
		if err := rows.Scan(&m.ID, &m.BranchID, &m.SKU, &m.Name, &m.Unit, &m.PriceCents, &m.Stock, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *repository) GetMedication(ctx context.Context, id int64) (Medication, error) {
	var m Medication
	err := r.db.QueryRow(ctx, `SELECT `+medicationColumns+` FROM medications WHERE id = $1`, id).
		Scan(&m.ID, &m.BranchID, &m.SKU, &m.Name, &m.Unit, &m.PriceCents, &m.Stock, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Medication{}, shared.ErrNotFound
	}
	return m, err
}

func (r *repository) UpdateMedication(ctx context.Context, id int64, m Medication) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE medications SET sku = $1, name = $2, unit = $3, price_cents = $4, stock = $5, updated_at = NOW()
		WHERE id = $6`,
		m.SKU, m.Name, m.Unit, m.PriceCents, m.Stock, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteMedication(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Sell decrements stock and writes the sale with its line items in one
// RepeatableRead transaction. A stock decrement that would go negative
// aborts the whole sale.
func (r *repository) Sell(ctx context.Context, branchID, cashierID int64, patientID *int64, items []SaleItemForm) (Sale, error) {
	var sale Sale
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		lines := make([]SaleItem, 0, len(items))
		var total int64
		for _, item := range items {
			var name string
			var unitCents int64
			err := tx.QueryRow(ctx, `
				UPDATE medications SET stock = stock - $1, updated_at = NOW()
				WHERE id = $2 AND branch_id = $3 AND stock >= $1
				RETURNING name, price_cents`,
				item.Quantity, item.MedicationID, branchID,
			).Scan(&name, &unitCents)
			if errors.Is(err, pgx.ErrNoRows) {
				var exists bool
				if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM medications WHERE id = $1 AND branch_id = $2)`, item.MedicationID, branchID).Scan(&exists); err != nil {
					return err
				}
				if !exists {
					return shared.ErrNotFound
				}
				return ErrInsufficientStock
			}
			if err != nil {
				return err
			}
			lineCents := unitCents * int64(item.Quantity)
			total += lineCents
			lines = append(lines, SaleItem{
				MedicationID: item.MedicationID,
				Name:         name,
				Quantity:     item.Quantity,
				UnitCents:    unitCents,
				LineCents:    lineCents,
			})
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO sales (branch_id, cashier_id, patient_id, total_cents)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
			branchID, cashierID, patientID, total,
		).Scan(&sale.ID, &sale.CreatedAt)
		if err != nil {
			return err
		}
		for i := range lines {
			lines[i].SaleID = sale.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO sale_items (sale_id, medication_id, name, quantity, unit_cents, line_cents)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id`,
				sale.ID, lines[i].MedicationID, lines[i].Name, lines[i].Quantity, lines[i].UnitCents, lines[i].LineCents,
			).Scan(&lines[i].ID)
			if err != nil {
				return err
			}
		}

		sale.BranchID = branchID
		sale.CashierID = cashierID
		sale.PatientID = patientID
		sale.TotalCents = total
		sale.Items = lines
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	return sale, nil
}

func (r *repository) GetSale(ctx context.Context, id int64) (Sale, error) {
	var sale Sale
	var patientID pgtype.Int8
	err := r.db.QueryRow(ctx, `SELECT id, branch_id, cashier_id, patient_id, total_cents, created_at FROM sales WHERE id = $1`, id).
		Scan(&sale.ID, &sale.BranchID, &sale.CashierID, &patientID, &sale.TotalCents, &sale.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, shared.ErrNotFound
	}
	if err != nil {
		return Sale{}, err
	}
	if patientID.Valid {
		v := patientID.Int64
		sale.PatientID = &v
	}

	rows, err := r.db.Query(ctx, `SELECT id, sale_id, medication_id, name, quantity, unit_cents, line_cents FROM sale_items WHERE sale_id = $1 ORDER BY id`, id)
	if err != nil {
		return Sale{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.MedicationID, &item.Name, &item.Quantity, &item.UnitCents, &item.LineCents); err != nil {
			return Sale{}, err
		}
		sale.Items = append(sale.Items, item)
	}
	return sale, rows.Err()
}
