package patients

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medira-his/medira/internal/platform/db"
	"github.com/medira-his/medira/internal/platform/httpx"
	"github.com/medira-his/medira/internal/rbac"
	"github.com/medira-his/medira/internal/shared"
)

type Repository interface {
	Register(ctx context.Context, form RegisterForm, passwordHash string) (Patient, error)
	List(ctx context.Context, branchID int64, filters ListFilters) ([]Patient, int, error)
	Get(ctx context.Context, id int64) (Patient, error)
	Update(ctx context.Context, id int64, form UpdateForm) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const patientColumns = `p.id, p.user_id, u.name, u.email, p.phone, u.branch_id, p.gender, COALESCE(p.birth_date::text, ''), p.address, p.created_at, p.updated_at`

// Register inserts the principal and the patient detail row in one
// transaction so a failed detail insert never leaves an orphaned account.
func (r *repository) Register(ctx context.Context, form RegisterForm, passwordHash string) (Patient, error) {
	var out Patient
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var userID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO users (name, email, password_hash, role_code, role_name, branch_id, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE)
			RETURNING id`,
			form.Name, form.Email, passwordHash, rbac.RolePatient, rbac.RoleName(rbac.RolePatient), form.BranchID,
		).Scan(&userID)
		if err != nil {
			return wrapUnique(err)
		}

		var birthDate any
		if form.BirthDate != "" {
			birthDate = form.BirthDate
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO patients (user_id, phone, gender, birth_date, address)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at`,
			userID, form.Phone, form.Gender, birthDate, form.Address,
		).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
		if err != nil {
			return wrapUnique(err)
		}

		out.UserID = userID
		out.Name = form.Name
		out.Email = form.Email
		out.Phone = form.Phone
		out.BranchID = form.BranchID
		out.Gender = form.Gender
		out.BirthDate = form.BirthDate
		out.Address = form.Address
		return nil
	})
	if err != nil {
		return Patient{}, err
	}
	return out, nil
}

func (r *repository) List(ctx context.Context, branchID int64, filters ListFilters) ([]Patient, int, error) {
	where := ` FROM patients p JOIN users u ON u.id = p.user_id WHERE u.branch_id = $1`
	args := []any{branchID}
	argCount := 1

	if filters.Search != "" {
		argCount++
		where += ` AND (u.name ILIKE $` + strconv.Itoa(argCount) + ` OR p.phone ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + patientColumns + where + ` ORDER BY u.name ASC`
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

	var out []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.BranchID, &p.Gender, &p.BirthDate, &p.Address, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Patient, error) {
	var p Patient
	err := r.db.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients p JOIN users u ON u.id = p.user_id WHERE p.id = $1`, id).
		Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.BranchID, &p.Gender, &p.BirthDate, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Patient{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Update(ctx context.Context, id int64, form UpdateForm) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var birthDate any
		if form.BirthDate != "" {
			birthDate = form.BirthDate
		}
		var userID int64
		err := tx.QueryRow(ctx, `
			UPDATE patients SET phone = $1, gender = $2, birth_date = $3, address = $4, updated_at = NOW()
			WHERE id = $5
			RETURNING user_id`,
			form.Phone, form.Gender, birthDate, form.Address, id,
		).Scan(&userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrNotFound
		}
		if err != nil {
			return wrapUnique(err)
		}
		_, err = tx.Exec(ctx, `UPDATE users SET name = $1, updated_at = NOW() WHERE id = $2`, form.Name, userID)
		return err
	})
}

// wrapUnique maps postgres unique violations onto the duplicate sentinel.
func wrapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.ErrDuplicate
	}
	return err
}
