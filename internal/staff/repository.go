package staff

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
	Create(ctx context.Context, form CreateForm, passwordHash string) (Member, error)
	List(ctx context.Context, branchID int64, filters ListFilters) ([]Member, int, error)
	Get(ctx context.Context, id int64) (Member, error)
	Update(ctx context.Context, id int64, form UpdateForm) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const memberColumns = `u.id, u.name, u.email, u.role_code, u.role_name, COALESCE(u.branch_id, 0),
	COALESCE(sp.specialty, ''), COALESCE(sp.license_no, ''), COALESCE(sp.shift, ''),
	u.is_active, u.created_at, u.updated_at`

// Create inserts the principal and the profile row in one transaction. A
// failure on either side rolls back both, so no orphaned account or profile
// can exist.
func (r *repository) Create(ctx context.Context, form CreateForm, passwordHash string) (Member, error) {
	var m Member
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (name, email, password_hash, role_code, role_name, branch_id, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE)
			RETURNING id, created_at, updated_at`,
			form.Name, form.Email, passwordHash, form.RoleCode, rbac.RoleName(form.RoleCode), form.BranchID,
		).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return wrapUnique(err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO staff_profiles (user_id, specialty, license_no, shift)
			VALUES ($1, $2, $3, $4)`,
			m.ID, form.Specialty, form.LicenseNo, form.Shift)
		return err
	})
	if err != nil {
		return Member{}, err
	}
	m.Name = form.Name
	m.Email = form.Email
	m.RoleCode = form.RoleCode
	m.RoleName = rbac.RoleName(form.RoleCode)
	m.BranchID = form.BranchID
	m.Specialty = form.Specialty
	m.LicenseNo = form.LicenseNo
	m.Shift = form.Shift
	m.IsActive = true
	return m, nil
}

func (r *repository) List(ctx context.Context, branchID int64, filters ListFilters) ([]Member, int, error) {
	where := ` FROM users u LEFT JOIN staff_profiles sp ON sp.user_id = u.id
		WHERE u.branch_id = $1 AND u.role_code <> ` + strconv.Itoa(rbac.RolePatient)
	args := []any{branchID}
	argCount := 1

	if filters.RoleCode > 0 {
		argCount++
		where += ` AND u.role_code = $` + strconv.Itoa(argCount)
		args = append(args, filters.RoleCode)
	}
	if filters.Search != "" {
		argCount++
		where += ` AND (u.name ILIKE $` + strconv.Itoa(argCount) + ` OR u.email ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + memberColumns + where + ` ORDER BY u.name ASC`
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

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.RoleCode, &m.RoleName, &m.BranchID,
			&m.Specialty, &m.LicenseNo, &m.Shift, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Member, error) {
	var m Member
	err := r.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM users u LEFT JOIN staff_profiles sp ON sp.user_id = u.id WHERE u.id = $1 AND u.role_code <> `+strconv.Itoa(rbac.RolePatient), id).
		Scan(&m.ID, &m.Name, &m.Email, &m.RoleCode, &m.RoleName, &m.BranchID,
			&m.Specialty, &m.LicenseNo, &m.Shift, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, shared.ErrNotFound
	}
	return m, err
}

func (r *repository) Update(ctx context.Context, id int64, form UpdateForm) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE users SET name = $1, updated_at = NOW() WHERE id = $2`, form.Name, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO staff_profiles (user_id, specialty, license_no, shift)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id) DO UPDATE SET specialty = $2, license_no = $3, shift = $4`,
			id, form.Specialty, form.LicenseNo, form.Shift)
		return err
	})
}

// SetActive toggles the soft-disable flag. Disabled accounts fail
// authentication but keep their history.
func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the profile and the principal together. Used only where
// removal is required; disabling is the default.
func (r *repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM staff_profiles WHERE user_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func wrapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.ErrDuplicate
	}
	return err
}
