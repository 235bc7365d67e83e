package services

import (
	"context"
	"fmt"
	"time"

	"authhub/internal/models"
	"authhub/internal/repositories"
)

const (
	// maxFailedAttempts failures within lockoutWindow lock the
	// (email, tenant) identity out.
	maxFailedAttempts = 5
	lockoutWindow     = 15 * time.Minute
)

// AttemptLedger records every login attempt and answers lockout checks
// over a sliding window: each IsLocked call re-queries attempts newer than
// now minus the window, so old failures age out on their own.
type AttemptLedger interface {
	Record(ctx context.Context, email, tenantID string, success bool, ipAddress, userAgent *string) error
	IsLocked(ctx context.Context, email, tenantID string) (bool, error)
}

type attemptLedger struct {
	attempts repositories.AttemptRepository
}

func NewAttemptLedger(attempts repositories.AttemptRepository) AttemptLedger {
	return &attemptLedger{attempts: attempts}
}

func (l *attemptLedger) Record(ctx context.Context, email, tenantID string, success bool, ipAddress, userAgent *string) error {
	attempt := &models.AuthAttempt{
		Email:     email,
		TenantID:  tenantID,
		Success:   success,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := l.attempts.Create(ctx, attempt); err != nil {
		return fmt.Errorf("record auth attempt: %w", err)
	}
	return nil
}

func (l *attemptLedger) IsLocked(ctx context.Context, email, tenantID string) (bool, error) {
	since := time.Now().Add(-lockoutWindow)
	failed, err := l.attempts.RecentFailed(ctx, email, tenantID, since)
	if err != nil {
		return false, fmt.Errorf("query recent failed attempts: %w", err)
	}
	return len(failed) >= maxFailedAttempts, nil
}
