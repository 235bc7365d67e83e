package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"authhub/internal/models"
	"authhub/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// pendingMFATokenTTL bounds the window between a successful password
	// check and the second factor.
	pendingMFATokenTTL = 5 * time.Minute

	tokenIssuer = "authhub"
)

// TokenService mints and validates the three token kinds: stateless access
// tokens, persisted refresh tokens, and the short-lived pending-MFA token.
type TokenService interface {
	// IssuePair mints an access/refresh pair and persists the refresh
	// token for userID.
	IssuePair(ctx context.Context, userID int64) (*models.TokenPair, error)
	// IssuePendingMFA mints the bearer credential proving primary
	// credentials were presented; it is never persisted and is not an
	// access token.
	IssuePendingMFA(userID int64) (string, error)
	// VerifyAccess validates an access token purely cryptographically and
	// returns the user id. Pending-MFA tokens are rejected.
	VerifyAccess(token string) (int64, error)
	// VerifyRefresh checks signature, claim expiry, and the persisted row
	// (all three must agree) and returns the owning user id. On a failed
	// store check the presented token's row, if any, is deleted.
	VerifyRefresh(ctx context.Context, token string) (int64, error)
	// RotateRefresh atomically replaces token with a fresh pair for
	// userID. Exactly one of two concurrent rotations of the same token
	// succeeds; the loser gets ErrInvalidOrExpiredToken.
	RotateRefresh(ctx context.Context, token string, userID int64) (*models.TokenPair, error)
	// Revoke deletes the persisted refresh token if present.
	Revoke(ctx context.Context, token string) error
}

type authClaims struct {
	MFAPending bool `json:"mfa_pending,omitempty"`
	jwt.RegisteredClaims
}

type tokenService struct {
	tokens        repositories.TokenRepository
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(tokens repositories.TokenRepository, accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) TokenService {
	if accessTTL == 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL == 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &tokenService{
		tokens:        tokens,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *tokenService) IssuePair(ctx context.Context, userID int64) (*models.TokenPair, error) {
	access, err := s.signToken(userID, s.accessSecret, s.accessTTL, false)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	expiresAt := time.Now().Add(s.refreshTTL)
	refresh, err := s.signToken(userID, s.refreshSecret, s.refreshTTL, false)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	if _, err := s.tokens.Create(ctx, userID, refresh, expiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *tokenService) IssuePendingMFA(userID int64) (string, error) {
	token, err := s.signToken(userID, s.accessSecret, pendingMFATokenTTL, true)
	if err != nil {
		return "", fmt.Errorf("sign pending mfa token: %w", err)
	}
	return token, nil
}

func (s *tokenService) VerifyAccess(token string) (int64, error) {
	claims, err := s.parseToken(token, s.accessSecret)
	if err != nil {
		return 0, ErrInvalidOrExpiredToken
	}
	// A pending-MFA token only proves the password step; it must never
	// pass as a full access credential.
	if claims.MFAPending {
		return 0, ErrInvalidOrExpiredToken
	}
	return subjectUserID(claims)
}

func (s *tokenService) VerifyRefresh(ctx context.Context, token string) (int64, error) {
	claims, err := s.parseToken(token, s.refreshSecret)
	if err != nil {
		return 0, ErrInvalidOrExpiredToken
	}
	userID, err := subjectUserID(claims)
	if err != nil {
		return 0, err
	}

	stored, err := s.tokens.Get(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("load refresh token: %w", err)
	}
	// Signature and store must agree: a correctly signed token with no
	// matching row (already rotated, revoked, or forged against a stolen
	// key) is invalid. Anything that fails the store check is removed so
	// a possibly compromised token cannot be retried.
	if stored == nil {
		return 0, ErrInvalidOrExpiredToken
	}
	if stored.UserID != userID || stored.ExpiresAt.Before(time.Now()) {
		if err := s.tokens.Delete(ctx, token); err != nil {
			log.Printf("authhub: defensive refresh token delete failed: %v", err)
		}
		return 0, ErrInvalidOrExpiredToken
	}
	return userID, nil
}

func (s *tokenService) RotateRefresh(ctx context.Context, token string, userID int64) (*models.TokenPair, error) {
	access, err := s.signToken(userID, s.accessSecret, s.accessTTL, false)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.signToken(userID, s.refreshSecret, s.refreshTTL, false)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	// Expiry is recomputed from now: refresh lifetime slides with use.
	expiresAt := time.Now().Add(s.refreshTTL)
	err = s.tokens.Rotate(ctx, token, userID, refresh, expiresAt)
	if errors.Is(err, repositories.ErrTokenNotFound) {
		return nil, ErrInvalidOrExpiredToken
	}
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *tokenService) Revoke(ctx context.Context, token string) error {
	return s.tokens.Delete(ctx, token)
}

func (s *tokenService) signToken(userID int64, secret []byte, ttl time.Duration, mfaPending bool) (string, error) {
	now := time.Now()
	claims := authClaims{
		MFAPending: mfaPending,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *tokenService) parseToken(token string, secret []byte) (*authClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &authClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*authClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidOrExpiredToken
	}
	return claims, nil
}

func subjectUserID(claims *authClaims) (int64, error) {
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidOrExpiredToken
	}
	return userID, nil
}
