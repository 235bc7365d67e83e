package services

import (
	"context"
	"log"

	"authhub/internal/models"
)

// Mailer is the external collaborator notified on password-reset requests.
// Delivery is best-effort and must never influence the caller-visible
// response.
type Mailer interface {
	SendPasswordReset(ctx context.Context, user *models.User) error
}

type logMailer struct{}

// NewLogMailer returns a Mailer that only logs. It stands in until a real
// delivery backend is wired.
func NewLogMailer() Mailer {
	return logMailer{}
}

func (logMailer) SendPasswordReset(ctx context.Context, user *models.User) error {
	log.Printf("authhub: password reset requested for user %d (tenant %s)", user.ID, user.TenantID)
	return nil
}
