package repositories

import (
	"context"
	"errors"

	"authhub/internal/models"

	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email, tenantID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type userRepo struct {
	db Database
}

func NewUserRepository(db Database) UserRepository {
	return &userRepo{db: db}
}

// Create inserts the user and fills in the generated id and timestamps.
// Duplicate (tenant_id, email) pairs surface as a unique violation from the
// users_tenant_email_unique constraint; callers map that with
// IsUniqueViolation.
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (tenant_id, email, password_hash, first_name, last_name, is_active, mfa_enabled, mfa_secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		user.TenantID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.IsActive, user.MFAEnabled, user.MFASecret,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, tenant_id, email, password_hash, first_name, last_name, is_active, mfa_enabled, mfa_secret, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.TenantID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.IsActive, &user.MFAEnabled, &user.MFASecret, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email, tenantID string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, tenant_id, email, password_hash, first_name, last_name, is_active, mfa_enabled, mfa_secret, created_at, updated_at
		FROM users
		WHERE tenant_id = $1 AND email = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, email).Scan(
		&user.ID, &user.TenantID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.IsActive, &user.MFAEnabled, &user.MFASecret, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, is_active = $3, mfa_enabled = $4, mfa_secret = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query,
		user.FirstName, user.LastName, user.IsActive, user.MFAEnabled, user.MFASecret, user.ID,
	)
	return err
}
