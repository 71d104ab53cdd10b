package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medira-his/medira/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	FindPatientByPhone(ctx context.Context, phone string) (*PatientLink, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role_code, role_name, branch_id, is_active, created_at, updated_at`

// FindByEmail fetches a user by exact email match.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindPatientByPhone fetches the patient row for the phone login path.
func (r *PGRepository) FindPatientByPhone(ctx context.Context, phone string) (*PatientLink, error) {
	var p PatientLink
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, phone FROM patients WHERE phone = $1`, phone).
		Scan(&p.ID, &p.UserID, &p.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var branch pgtype.Int8
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleCode, &u.RoleName, &branch, &u.IsActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if branch.Valid {
		v := branch.Int64
		u.BranchID = &v
	}
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	return &u, nil
}

var _ Repository = (*PGRepository)(nil)
