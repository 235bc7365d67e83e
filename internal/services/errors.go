// Package services holds the credential/session lifecycle core: password
// hashing, the attempt ledger, token issuance and rotation, the MFA
// verifier, and the orchestrator that sequences them.
package services

import "errors"

// Externally observable error taxonomy. Internal detail (user missing vs
// inactive vs wrong password, bad signature vs missing row) is collapsed
// into these before anything leaves the service layer.
var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrRateLimited           = errors.New("too many failed attempts")
	ErrTenantNotFound        = errors.New("tenant not found")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrMFANotEnabled         = errors.New("mfa not enabled for this user")
	ErrMFAInvalid            = errors.New("invalid mfa code")
)
