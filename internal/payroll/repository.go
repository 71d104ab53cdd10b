package payroll

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medira-his/medira/internal/platform/httpx"
	"github.com/medira-his/medira/internal/shared"
)

type Repository interface {
	Create(ctx context.Context, s Salary) (Salary, error)
	List(ctx context.Context, branchID int64, filters ListFilters) ([]Salary, int, error)
	Get(ctx context.Context, id int64) (Salary, error)
	Update(ctx context.Context, id int64, s Salary) error
	MarkPaid(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context, branchID int64, month string) (MonthlySummary, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const salaryColumns = `id, user_id, branch_id, month, base_cents, bonus_cents, deduction_cents, net_cents, paid_at, created_at, updated_at`

func (r *repository) Create(ctx context.Context, s Salary) (Salary, error) {
	query := `INSERT INTO salaries (user_id, branch_id, month, base_cents, bonus_cents, deduction_cents, net_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, s.UserID, s.BranchID, s.Month, s.BaseCents, s.BonusCents, s.DeductionCents, s.NetCents).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// One record per user per month.
			return Salary{}, httpx.ErrDuplicate
		}
		return Salary{}, err
	}
	return s, nil
}

func (r *repository) List(ctx context.Context, branchID int64, filters ListFilters) ([]Salary, int, error) {
	where := ` FROM salaries WHERE branch_id = $1`
	args := []any{branchID}
	argCount := 1

	if filters.Month != "" {
		argCount++
		where += ` AND month = $` + strconv.Itoa(argCount)
		args = append(args, filters.Month)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + salaryColumns + where + ` ORDER BY month DESC, user_id ASC`
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

	var out []Salary
	for rows.Next() {
		var s Salary
		var paidAt pgtype.Timestamptz
		if err := rows.Scan(&s.ID, &s.UserID, &s.BranchID, &s.Month, &s.BaseCents, &s.BonusCents, &s.DeductionCents, &s.NetCents, &paidAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if paidAt.Valid {
			t := paidAt.Time
			s.PaidAt = &t
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Salary, error) {
	var s Salary
	var paidAt pgtype.Timestamptz
	err := r.db.QueryRow(ctx, `SELECT `+salaryColumns+` FROM salaries WHERE id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.BranchID, &s.Month, &s.BaseCents, &s.BonusCents, &s.DeductionCents, &s.NetCents, &paidAt, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Salary{}, shared.ErrNotFound
	}
	if err != nil {
		return Salary{}, err
	}
	if paidAt.Valid {
		t := paidAt.Time
		s.PaidAt = &t
	}
	return s, nil
}

func (r *repository) Update(ctx context.Context, id int64, s Salary) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE salaries SET base_cents = $1, bonus_cents = $2, deduction_cents = $3, net_cents = $4, updated_at = NOW()
		WHERE id = $5 AND paid_at IS NULL`,
		s.BaseCents, s.BonusCents, s.DeductionCents, s.NetCents, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM salaries WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound
		}
		return ErrAlreadyPaid
	}
	return nil
}

func (r *repository) MarkPaid(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE salaries SET paid_at = $1, updated_at = NOW() WHERE id = $2 AND paid_at IS NULL`, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM salaries WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound
		}
		return ErrAlreadyPaid
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM salaries WHERE id = $1 AND paid_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM salaries WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound
		}
		return ErrAlreadyPaid
	}
	return nil
}

// Summary aggregates one branch month in a single query.
func (r *repository) Summary(ctx context.Context, branchID int64, month string) (MonthlySummary, error) {
	summary := MonthlySummary{BranchID: branchID, Month: month}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(net_cents), 0), COALESCE(SUM(net_cents) FILTER (WHERE paid_at IS NOT NULL), 0)
		FROM salaries WHERE branch_id = $1 AND month = $2`,
		branchID, month).Scan(&summary.Records, &summary.TotalCents, &summary.PaidCents)
	return summary, err
}
