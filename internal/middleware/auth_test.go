package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"authhub/internal/common"
	"authhub/internal/models"
	"authhub/internal/repositories/inmemory"
	"authhub/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func setupAuth(t *testing.T) (*inmemory.Store, services.TokenService, echo.MiddlewareFunc, *models.User) {
	store := inmemory.NewStore()
	tokens := services.NewTokenService(store.Tokens(), []byte("access-secret"), []byte("refresh-secret"), 0, 0)

	user := &models.User{TenantID: "acme", Email: "jo@example.com", PasswordHash: "h", IsActive: true}
	assert.NoError(t, store.Users().Create(context.Background(), user))

	return store, tokens, RequireAuth(tokens, store.Users()), user
}

func invoke(mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, *models.User, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *models.User
	err := mw(func(c echo.Context) error {
		seen, _ = common.GetUserFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, seen, err
}

func TestRequireAuth_ValidToken(t *testing.T) {
	_, tokens, mw, user := setupAuth(t)

	pair, err := tokens.IssuePair(context.Background(), user.ID)
	assert.NoError(t, err)

	rec, seen, err := invoke(mw, "Bearer "+pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	_, _, mw, _ := setupAuth(t)

	_, _, err := invoke(mw, "")
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	_, _, mw, _ := setupAuth(t)

	_, _, err := invoke(mw, "Token abc")
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireAuth_PendingMFATokenRejected(t *testing.T) {
	_, tokens, mw, user := setupAuth(t)

	temp, err := tokens.IssuePendingMFA(user.ID)
	assert.NoError(t, err)

	_, _, err = invoke(mw, "Bearer "+temp)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireAuth_InactiveUserRejected(t *testing.T) {
	store, tokens, mw, user := setupAuth(t)

	pair, err := tokens.IssuePair(context.Background(), user.ID)
	assert.NoError(t, err)

	user.IsActive = false
	assert.NoError(t, store.Users().Update(context.Background(), user))

	_, _, err = invoke(mw, "Bearer "+pair.AccessToken)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
