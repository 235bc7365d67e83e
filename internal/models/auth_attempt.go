package models

import "time"

// AuthAttempt is an append-only audit record. Rows are never mutated or
// deleted; the lockout window is computed by re-querying recent failures.
type AuthAttempt struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Success   bool      `json:"success" db:"success"`
	IPAddress *string   `json:"ip_address" db:"ip_address"`
	UserAgent *string   `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
