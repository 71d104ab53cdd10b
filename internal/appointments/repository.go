package appointments

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medira-his/medira/internal/shared"
)

type Repository interface {
	Book(ctx context.Context, a Appointment) (Appointment, error)
	List(ctx context.Context, branchID int64, filters ListFilters) ([]Appointment, int, error)
	Get(ctx context.Context, id int64) (Appointment, error)
	SetStatus(ctx context.Context, id int64, from, to string) error
	CountForDay(ctx context.Context, doctorID int64, dayStart, dayEnd time.Time) (int, error)
	DayLoad(ctx context.Context, branchID int64, dayStart, dayEnd time.Time) ([]DoctorLoad, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const appointmentColumns = `id, branch_id, patient_id, doctor_id, scheduled_at, status, reason, created_at, updated_at`

func (r *repository) Book(ctx context.Context, a Appointment) (Appointment, error) {
	query := `INSERT INTO appointments (branch_id, patient_id, doctor_id, scheduled_at, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, a.BranchID, a.PatientID, a.DoctorID, a.ScheduledAt, a.Status, a.Reason).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) List(ctx context.Context, branchID int64, filters ListFilters) ([]Appointment, int, error) {
	where := ` FROM appointments WHERE branch_id = $1`
	args := []any{branchID}
	argCount := 1

	if filters.DoctorID > 0 {
		argCount++
		where += ` AND doctor_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.DoctorID)
	}
	if filters.Status != "" {
		argCount++
		where += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}
	if filters.Day != "" {
		argCount++
		where += ` AND scheduled_at::date = $` + strconv.Itoa(argCount)
		args = append(args, filters.Day)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + appointmentColumns + where + ` ORDER BY scheduled_at ASC`
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

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.BranchID, &a.PatientID, &a.DoctorID, &a.ScheduledAt, &a.Status, &a.Reason, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Appointment, error) {
	var a Appointment
	err := r.db.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id).
		Scan(&a.ID, &a.BranchID, &a.PatientID, &a.DoctorID, &a.ScheduledAt, &a.Status, &a.Reason, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, shared.ErrNotFound
	}
	return a, err
}

// SetStatus transitions an appointment only from the expected state; a
// mismatched current status leaves the row untouched.
func (r *repository) SetStatus(ctx context.Context, id int64, from, to string) error {
	tag, err := r.db.Exec(ctx, `UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound
		}
		return ErrBadTransition
	}
	return nil
}

func (r *repository) CountForDay(ctx context.Context, doctorID int64, dayStart, dayEnd time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = $1 AND status = $2 AND scheduled_at >= $3 AND scheduled_at < $4`,
		doctorID, StatusBooked, dayStart, dayEnd).Scan(&count)
	return count, err
}

// DayLoad aggregates booked slots per doctor in a single pass.
func (r *repository) DayLoad(ctx context.Context, branchID int64, dayStart, dayEnd time.Time) ([]DoctorLoad, error) {
	rows, err := r.db.Query(ctx, `
		SELECT doctor_id, COUNT(*) FROM appointments
		WHERE branch_id = $1 AND status = $2 AND scheduled_at >= $3 AND scheduled_at < $4
		GROUP BY doctor_id
		ORDER BY doctor_id`,
		branchID, StatusBooked, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loads []DoctorLoad
	for rows.Next() {
		var l DoctorLoad
		if err := rows.Scan(&l.DoctorID, &l.Booked); err != nil {
			return nil, err
		}
		loads = append(loads, l)
	}
	return loads, rows.Err()
}
