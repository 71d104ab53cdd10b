package leave

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medira-his/medira/internal/shared"
)

type Repository interface {
	Create(ctx context.Context, req Request) (Request, error)
	List(ctx context.Context, branchID int64, filters ListFilters) ([]Request, int, error)
	Get(ctx context.Context, id int64) (Request, string, error)
	Decide(ctx context.Context, id int64, status string, decidedBy int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const leaveColumns = `l.id, l.user_id, l.branch_id, l.start_date, l.end_date, l.days, l.reason, l.status, l.decided_by, l.decided_at, l.created_at`

func (r *repository) Create(ctx context.Context, req Request) (Request, error) {
	query := `INSERT INTO leave_requests (user_id, branch_id, start_date, end_date, days, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, req.UserID, req.BranchID, req.StartDate, req.EndDate, req.Days, req.Reason, req.Status).
		Scan(&req.ID, &req.CreatedAt)
	return req, err
}

func (r *repository) List(ctx context.Context, branchID int64, filters ListFilters) ([]Request, int, error) {
	where := ` FROM leave_requests l WHERE l.branch_id = $1`
	args := []any{branchID}
	argCount := 1

	if filters.Status != "" {
		argCount++
		where += ` AND l.status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}
	if filters.UserID > 0 {
		argCount++
		where += ` AND l.user_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.UserID)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + leaveColumns + where + ` ORDER BY l.created_at DESC`
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

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, req)
	}
	return out, total, rows.Err()
}

// Get also returns the requester's email for decision notifications.
func (r *repository) Get(ctx context.Context, id int64) (Request, string, error) {
	row := r.db.QueryRow(ctx, `SELECT `+leaveColumns+`, u.email FROM leave_requests l JOIN users u ON u.id = l.user_id WHERE l.id = $1`, id)
	var req Request
	var decidedBy pgtype.Int8
	var decidedAt pgtype.Timestamptz
	var email string
	err := row.Scan(&req.ID, &req.UserID, &req.BranchID, &req.StartDate, &req.EndDate, &req.Days, &req.Reason, &req.Status, &decidedBy, &decidedAt, &req.CreatedAt, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, "", shared.ErrNotFound
	}
	if err != nil {
		return Request{}, "", err
	}
	applyNullable(&req, decidedBy, decidedAt)
	return req, email, nil
}

// Decide flips a pending request; decided requests stay decided.
func (r *repository) Decide(ctx context.Context, id int64, status string, decidedBy int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE leave_requests SET status = $1, decided_by = $2, decided_at = $3
		WHERE id = $4 AND status = $5`,
		status, decidedBy, time.Now(), id, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leave_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound
		}
		return ErrAlreadyDecided
	}
	return nil
}

func scanRequest(rows pgx.Rows) (Request, error) {
	var req Request
	var decidedBy pgtype.Int8
	var decidedAt pgtype.Timestamptz
	err := rows.Scan(&req.ID, &req.UserID, &req.BranchID, &req.StartDate, &req.EndDate, &req.Days, &req.Reason, &req.Status, &decidedBy, &decidedAt, &req.CreatedAt)
	if err != nil {
		return Request{}, err
	}
	applyNullable(&req, decidedBy, decidedAt)
	return req, nil
}

func applyNullable(req *Request, decidedBy pgtype.Int8, decidedAt pgtype.Timestamptz) {
	if decidedBy.Valid {
		v := decidedBy.Int64
		req.DecidedBy = &v
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		req.DecidedAt = &t
	}
}
