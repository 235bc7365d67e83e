package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"authhub/internal/models"
	"authhub/internal/repositories"
)

// LoginInput carries the credentials plus the request metadata recorded in
// the attempt ledger.
type LoginInput struct {
	Email      string
	Password   string
	TenantID   string
	RememberMe bool
	IPAddress  *string
	UserAgent  *string
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	TenantID  string
	IPAddress *string
	UserAgent *string
}

// AuthResult is a fully issued session: the (redacted-on-serialization)
// user plus an access/refresh pair.
type AuthResult struct {
	User   *models.User
	Tokens *models.TokenPair
}

// LoginResult is either a full session or an MFA detour. When RequiresMFA
// is set, Tokens is nil and TempToken carries the pending-MFA credential.
type LoginResult struct {
	User        *models.User
	Tokens      *models.TokenPair
	RequiresMFA bool
	TempToken   string
}

// AuthService sequences the login/register/MFA/refresh/logout flows:
// attempt-ledger gating first, then credentials, then issuance.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	VerifyMFA(ctx context.Context, code string, userID int64) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email, tenantID string) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

type authService struct {
	users    repositories.UserRepository
	tenants  repositories.TenantRepository
	hasher   PasswordHasher
	ledger   AttemptLedger
	tokens   TokenService
	verifier CodeVerifier
	mailer   Mailer
}

func NewAuthService(
	users repositories.UserRepository,
	tenants repositories.TenantRepository,
	hasher PasswordHasher,
	ledger AttemptLedger,
	tokens TokenService,
	verifier CodeVerifier,
	mailer Mailer,
) AuthService {
	return &authService{
		users:    users,
		tenants:  tenants,
		hasher:   hasher,
		ledger:   ledger,
		tokens:   tokens,
		verifier: verifier,
		mailer:   mailer,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	locked, err := s.ledger.IsLocked(ctx, input.Email, input.TenantID)
	if err != nil {
		return nil, err
	}
	if locked {
		// The rejection is itself recorded as a failed attempt, so the
		// window cannot quietly expire under constant probing.
		if err := s.ledger.Record(ctx, input.Email, input.TenantID, false, input.IPAddress, input.UserAgent); err != nil {
			return nil, err
		}
		return nil, ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, input.Email, input.TenantID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	// Absent and inactive look identical to a bad password from outside.
	if user == nil || !user.IsActive {
		if err := s.ledger.Record(ctx, input.Email, input.TenantID, false, input.IPAddress, input.UserAgent); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		if err := s.ledger.Record(ctx, input.Email, input.TenantID, false, input.IPAddress, input.UserAgent); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	if user.MFAEnabled && user.MFASecret != nil && *user.MFASecret != "" {
		if err := s.ledger.Record(ctx, input.Email, input.TenantID, true, input.IPAddress, input.UserAgent); err != nil {
			return nil, err
		}
		tempToken, err := s.tokens.IssuePendingMFA(user.ID)
		if err != nil {
			return nil, err
		}
		return &LoginResult{User: user, RequiresMFA: true, TempToken: tempToken}, nil
	}

	pair, err := s.tokens.IssuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Record(ctx, input.Email, input.TenantID, true, input.IPAddress, input.UserAgent); err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Tokens: pair}, nil
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	tenant, err := s.tenants.GetByID(ctx, input.TenantID)
	if err != nil {
		return nil, fmt.Errorf("lookup tenant: %w", err)
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}

	existing, err := s.users.GetByEmail(ctx, input.Email, input.TenantID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		TenantID:     input.TenantID,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    optional(input.FirstName),
		LastName:     optional(input.LastName),
		IsActive:     true,
		MFAEnabled:   false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The unique index backs the pre-check: a concurrent registration
		// of the same (email, tenant) loses here, not with a duplicate row.
		if repositories.IsUniqueViolation(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.tokens.IssuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Record(ctx, input.Email, input.TenantID, true, input.IPAddress, input.UserAgent); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: pair}, nil
}

func (s *authService) VerifyMFA(ctx context.Context, code string, userID int64) (*AuthResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !user.MFAEnabled || user.MFASecret == nil || *user.MFASecret == "" {
		return nil, ErrMFANotEnabled
	}

	if !s.verifier.Verify(*user.MFASecret, code) {
		return nil, ErrMFAInvalid
	}

	pair, err := s.tokens.IssuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	userID, err := s.tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !user.IsActive {
		if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
			log.Printf("authhub: revoke refresh token for inactive user failed: %v", err)
		}
		return nil, ErrInvalidOrExpiredToken
	}

	return s.tokens.RotateRefresh(ctx, refreshToken, userID)
}

// Logout deletes the refresh token if present and reports success either
// way.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		log.Printf("authhub: logout token delete failed: %v", err)
	}
	return nil
}

// ForgotPassword always succeeds from the caller's perspective; the
// existence check and the mail dispatch happen after the response shape is
// already decided, off the request path.
func (s *authService) ForgotPassword(ctx context.Context, email, tenantID string) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := s.users.GetByEmail(ctx, email, tenantID)
		if err != nil {
			log.Printf("authhub: forgot password lookup failed: %v", err)
			return
		}
		if user == nil {
			return
		}
		if err := s.mailer.SendPasswordReset(ctx, user); err != nil {
			log.Printf("authhub: password reset mail failed for user %d: %v", user.ID, err)
		}
	}()
	return nil
}

func (s *authService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
