package repositories

import (
	"context"
	"errors"
	"time"

	"authhub/internal/models"

	"github.com/jackc/pgx/v5"
)

// ErrTokenNotFound is returned by Rotate when the presented token has no
// row, which includes the case where a concurrent rotation already
// consumed it. Exactly one of two concurrent rotations can win.
var ErrTokenNotFound = errors.New("refresh token not found")

type TokenRepository interface {
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (*models.RefreshToken, error)
	Get(ctx context.Context, token string) (*models.RefreshToken, error)
	Rotate(ctx context.Context, oldToken string, userID int64, newToken string, expiresAt time.Time) error
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type tokenRepo struct {
	db Database
}

func NewTokenRepository(db Database) TokenRepository {
	return &tokenRepo{db: db}
}

func (r *tokenRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (*models.RefreshToken, error) {
	rt := &models.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt}
	query := `
		INSERT INTO refresh_tokens (user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, userID, token, expiresAt).Scan(&rt.ID, &rt.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *tokenRepo) Get(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt := &models.RefreshToken{}
	query := `
		SELECT id, user_id, token, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`
	err := r.db.QueryRow(ctx, query, token).Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// Rotate atomically replaces oldToken with newToken. The delete and insert
// run in one transaction and the delete must consume exactly one row, so
// two concurrent rotations of the same token cannot both succeed: the
// loser's DELETE affects zero rows and the transaction rolls back with
// ErrTokenNotFound.
func (r *tokenRepo) Rotate(ctx context.Context, oldToken string, userID int64, newToken string, expiresAt time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, oldToken)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`, userID, newToken, expiresAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *tokenRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

func (r *tokenRepo) DeleteForUser(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

func (r *tokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
