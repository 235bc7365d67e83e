package repositories

import (
	"context"
	"time"

	"authhub/internal/models"
)

// AttemptRepository is append-only by contract: attempts are recorded and
// queried, never updated or deleted.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.AuthAttempt) error
	RecentFailed(ctx context.Context, email, tenantID string, since time.Time) ([]*models.AuthAttempt, error)
}

type attemptRepo struct {
	db Database
}

func NewAttemptRepository(db Database) AttemptRepository {
	return &attemptRepo{db: db}
}

func (r *attemptRepo) Create(ctx context.Context, attempt *models.AuthAttempt) error {
	query := `
		INSERT INTO auth_attempts (email, tenant_id, success, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		attempt.Email, attempt.TenantID, attempt.Success, attempt.IPAddress, attempt.UserAgent,
	).Scan(&attempt.ID, &attempt.CreatedAt)
}

// RecentFailed returns failed attempts for (email, tenantID) newer than
// since. The cutoff is computed by the caller so the window slides with
// each check.
func (r *attemptRepo) RecentFailed(ctx context.Context, email, tenantID string, since time.Time) ([]*models.AuthAttempt, error) {
	query := `
		SELECT id, email, tenant_id, success, ip_address, user_agent, created_at
		FROM auth_attempts
		WHERE tenant_id = $1 AND email = $2 AND success = false AND created_at > $3
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, email, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*models.AuthAttempt
	for rows.Next() {
		attempt := &models.AuthAttempt{}
		if err := rows.Scan(&attempt.ID, &attempt.Email, &attempt.TenantID, &attempt.Success, &attempt.IPAddress, &attempt.UserAgent, &attempt.CreatedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}
