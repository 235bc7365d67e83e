package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"authhub/internal/models"
	"authhub/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func TestUserStore_DuplicateEmailPerTenant(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first := &models.User{TenantID: "acme", Email: "jo@example.com", PasswordHash: "h", IsActive: true}
	assert.NoError(t, store.Users().Create(ctx, first))

	dup := &models.User{TenantID: "acme", Email: "JO@example.com", PasswordHash: "h", IsActive: true}
	err := store.Users().Create(ctx, dup)
	assert.True(t, repositories.IsUniqueViolation(err))

	// Same email in a different tenant is a different account.
	other := &models.User{TenantID: "globex", Email: "jo@example.com", PasswordHash: "h", IsActive: true}
	assert.NoError(t, store.Users().Create(ctx, other))
	assert.NotEqual(t, first.ID, other.ID)
}

func TestUserStore_ConcurrentDuplicateSingleWinner(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	const registrants = 16
	var wg sync.WaitGroup
	errs := make(chan error, registrants)
	for i := 0; i < registrants; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user := &models.User{TenantID: "acme", Email: "jo@example.com", PasswordHash: "h", IsActive: true}
			errs <- store.Users().Create(ctx, user)
		}()
	}
	wg.Wait()
	close(errs)

	winners := 0
	for err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, repositories.IsUniqueViolation(err))
		}
	}
	assert.Equal(t, 1, winners)
}

func TestTokenStore_ConcurrentRotationSingleWinner(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour)

	_, err := store.Tokens().Create(ctx, 7, "shared-token", expiresAt)
	assert.NoError(t, err)

	const rotators = 16
	var wg sync.WaitGroup
	errs := make(chan error, rotators)
	for i := 0; i < rotators; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.Tokens().Rotate(ctx, "shared-token", 7, fmt.Sprintf("new-token-%d", i), expiresAt)
		}(i)
	}
	wg.Wait()
	close(errs)

	winners := 0
	for err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, repositories.ErrTokenNotFound)
		}
	}
	assert.Equal(t, 1, winners)

	old, err := store.Tokens().Get(ctx, "shared-token")
	assert.NoError(t, err)
	assert.Nil(t, old)
}

func TestTokenStore_DeleteExpiredKeepsLive(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.Tokens().Create(ctx, 7, "stale", time.Now().Add(-time.Minute))
	assert.NoError(t, err)
	_, err = store.Tokens().Create(ctx, 7, "live", time.Now().Add(time.Hour))
	assert.NoError(t, err)

	purged, err := store.Tokens().DeleteExpired(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	live, err := store.Tokens().Get(ctx, "live")
	assert.NoError(t, err)
	assert.NotNil(t, live)
}

func TestAttemptStore_RecentFailedWindow(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	old := &models.AuthAttempt{Email: "jo@example.com", TenantID: "acme", Success: false, CreatedAt: time.Now().Add(-20 * time.Minute)}
	assert.NoError(t, store.Attempts().Create(ctx, old))
	for i := 0; i < 3; i++ {
		assert.NoError(t, store.Attempts().Create(ctx, &models.AuthAttempt{Email: "jo@example.com", TenantID: "acme", Success: false}))
	}
	assert.NoError(t, store.Attempts().Create(ctx, &models.AuthAttempt{Email: "jo@example.com", TenantID: "acme", Success: true}))
	assert.NoError(t, store.Attempts().Create(ctx, &models.AuthAttempt{Email: "jo@example.com", TenantID: "globex", Success: false}))

	attempts, err := store.Attempts().RecentFailed(ctx, "jo@example.com", "acme", time.Now().Add(-15*time.Minute))
	assert.NoError(t, err)
	assert.Len(t, attempts, 3)
}

func TestStore_ClonesDoNotAlias(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	user := &models.User{TenantID: "acme", Email: "jo@example.com", PasswordHash: "h", IsActive: true}
	assert.NoError(t, store.Users().Create(ctx, user))

	got, err := store.Users().GetByID(ctx, user.ID)
	assert.NoError(t, err)
	got.Email = "mutated@example.com"

	again, err := store.Users().GetByID(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "jo@example.com", again.Email)
}
