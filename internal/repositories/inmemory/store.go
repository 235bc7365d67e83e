// Package inmemory implements the repository contracts on mutex-guarded
// maps. It exists for tests and local development; the pgx repositories
// are the production implementation. The check-and-swap operations (user
// creation, token rotation) run under the store lock so the same
// single-winner guarantees hold as with the database constraints.
package inmemory

import (
	"context"
	"strings"
	"sync"
	"time"

	"authhub/internal/models"
	"authhub/internal/repositories"
)

type Store struct {
	mu         sync.Mutex
	users      map[int64]*models.User
	tenants    map[string]*models.Tenant
	tokens     map[string]*models.RefreshToken
	attempts   []*models.AuthAttempt
	nextUserID int64
	nextRowID  int64
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int64]*models.User),
		tenants:    make(map[string]*models.Tenant),
		tokens:     make(map[string]*models.RefreshToken),
		nextUserID: 1,
		nextRowID:  1,
	}
}

func (s *Store) Users() repositories.UserRepository       { return (*userStore)(s) }
func (s *Store) Tenants() repositories.TenantRepository   { return (*tenantStore)(s) }
func (s *Store) Tokens() repositories.TokenRepository     { return (*tokenStore)(s) }
func (s *Store) Attempts() repositories.AttemptRepository { return (*attemptStore)(s) }

type userStore Store

func (s *userStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.TenantID == user.TenantID && strings.EqualFold(existing.Email, user.Email) {
			return repositories.ErrDuplicate
		}
	}
	user.ID = s.nextUserID
	s.nextUserID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (s *userStore) GetByEmail(ctx context.Context, email, tenantID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.TenantID == tenantID && strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *userStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID]
	if !ok {
		return nil
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.IsActive = user.IsActive
	stored.MFAEnabled = user.MFAEnabled
	stored.MFASecret = user.MFASecret
	stored.UpdatedAt = time.Now()
	return nil
}

type tenantStore Store

func (s *tenantStore) Create(ctx context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[tenant.ID]; ok {
		return repositories.ErrDuplicate
	}
	tenant.CreatedAt = time.Now()
	clone := *tenant
	s.tenants[tenant.ID] = &clone
	return nil
}

func (s *tenantStore) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenant, ok := s.tenants[id]
	if !ok {
		return nil, nil
	}
	clone := *tenant
	return &clone, nil
}

func (s *tenantStore) Update(ctx context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tenants[tenant.ID]
	if !ok {
		return nil
	}
	stored.Name = tenant.Name
	stored.Logo = tenant.Logo
	stored.PrimaryColor = tenant.PrimaryColor
	stored.SecondaryColor = tenant.SecondaryColor
	stored.Config = tenant.Config
	return nil
}

func (s *tenantStore) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tenants []*models.Tenant
	for _, tenant := range s.tenants {
		clone := *tenant
		tenants = append(tenants, &clone)
	}
	if offset >= len(tenants) {
		return nil, nil
	}
	tenants = tenants[offset:]
	if limit > 0 && limit < len(tenants) {
		tenants = tenants[:limit]
	}
	return tenants, nil
}

type tokenStore Store

func (s *tokenStore) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt := &models.RefreshToken{
		ID:        s.nextRowID,
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	s.nextRowID++
	s.tokens[token] = rt
	clone := *rt
	return &clone, nil
}

func (s *tokenStore) Get(ctx context.Context, token string) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.tokens[token]
	if !ok {
		return nil, nil
	}
	clone := *rt
	return &clone, nil
}

func (s *tokenStore) Rotate(ctx context.Context, oldToken string, userID int64, newToken string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[oldToken]; !ok {
		return repositories.ErrTokenNotFound
	}
	delete(s.tokens, oldToken)
	s.tokens[newToken] = &models.RefreshToken{
		ID:        s.nextRowID,
		UserID:    userID,
		Token:     newToken,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	s.nextRowID++
	return nil
}

func (s *tokenStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *tokenStore) DeleteForUser(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, rt := range s.tokens {
		if rt.UserID == userID {
			delete(s.tokens, token)
		}
	}
	return nil
}

func (s *tokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	now := time.Now()
	for token, rt := range s.tokens {
		if rt.ExpiresAt.Before(now) {
			delete(s.tokens, token)
			purged++
		}
	}
	return purged, nil
}

type attemptStore Store

func (s *attemptStore) Create(ctx context.Context, attempt *models.AuthAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt.ID = s.nextRowID
	s.nextRowID++
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	clone := *attempt
	s.attempts = append(s.attempts, &clone)
	return nil
}

func (s *attemptStore) RecentFailed(ctx context.Context, email, tenantID string, since time.Time) ([]*models.AuthAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*models.AuthAttempt
	for _, attempt := range s.attempts {
		if attempt.TenantID == tenantID && strings.EqualFold(attempt.Email, email) &&
			!attempt.Success && attempt.CreatedAt.After(since) {
			clone := *attempt
			matched = append(matched, &clone)
		}
	}
	return matched, nil
}
