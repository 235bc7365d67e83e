package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"unicode"

	"authhub/internal/common"
	"authhub/internal/models"
	"authhub/internal/services"

	"github.com/labstack/echo/v4"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthHandlers exposes the session lifecycle over HTTP. Input validation
// lives here, at the boundary; the service layer only ever sees
// well-formed requests.
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	TenantID   string `json:"tenantId"`
	RememberMe bool   `json:"rememberMe"`
}

// AuthResponse is the issued-session shape shared by login, register, and
// MFA verification. The user's password hash is excluded by the model's
// JSON tags.
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// MFAPendingResponse is returned instead of tokens when the account has a
// second factor enrolled.
type MFAPendingResponse struct {
	RequiresMFA bool   `json:"requiresMFA"`
	TempToken   string `json:"tempToken"`
	Message     string `json:"message"`
}

// Login authenticates primary credentials and either issues tokens or
// branches into the MFA-pending state.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if !emailPattern.MatchString(req.Email) {
		return echo.NewHTTPError(http.StatusBadRequest, "Please enter a valid email address")
	}
	if len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 6 characters")
	}
	if req.TenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tenant ID is required")
	}

	result, err := h.authService.Login(c.Request().Context(), services.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		TenantID:   req.TenantID,
		RememberMe: req.RememberMe,
		IPAddress:  clientIP(c),
		UserAgent:  userAgent(c),
	})
	if err != nil {
		return mapAuthError(err)
	}

	if result.RequiresMFA {
		return c.JSON(http.StatusOK, MFAPendingResponse{
			RequiresMFA: true,
			TempToken:   result.TempToken,
			Message:     "MFA verification required",
		})
	}

	return c.JSON(http.StatusOK, AuthResponse{
		User:         result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	TenantID        string `json:"tenantId"`
}

func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if !emailPattern.MatchString(req.Email) {
		return echo.NewHTTPError(http.StatusBadRequest, "Please enter a valid email address")
	}
	if err := validatePassword(req.Password); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Password != req.ConfirmPassword {
		return echo.NewHTTPError(http.StatusBadRequest, "Passwords don't match")
	}
	if req.FirstName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "First name is required")
	}
	if req.LastName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Last name is required")
	}
	if req.TenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tenant ID is required")
	}

	result, err := h.authService.Register(c.Request().Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		TenantID:  req.TenantID,
		IPAddress: clientIP(c),
		UserAgent: userAgent(c),
	})
	if err != nil {
		return mapAuthError(err)
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		User:         result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

type MFAVerifyRequest struct {
	Code   string `json:"code"`
	UserID int64  `json:"userId"`
}

func (h *AuthHandlers) VerifyMFA(c echo.Context) error {
	var req MFAVerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if len(req.Code) != 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "MFA code must be 6 digits")
	}
	if req.UserID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "User ID is required")
	}

	result, err := h.authService.VerifyMFA(c.Request().Context(), req.Code, req.UserID)
	if err != nil {
		return mapAuthError(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		User:         result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Refresh token is required")
	}

	pair, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return mapAuthError(err)
	}

	return c.JSON(http.StatusOK, pair)
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout is idempotent: it reports success whether or not the token
// existed.
func (h *AuthHandlers) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return mapAuthError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

type ForgotPasswordRequest struct {
	Email    string `json:"email"`
	TenantID string `json:"tenantId"`
}

// ForgotPassword returns the same response whether or not the account
// exists.
func (h *AuthHandlers) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if !emailPattern.MatchString(req.Email) {
		return echo.NewHTTPError(http.StatusBadRequest, "Please enter a valid email address")
	}
	if req.TenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tenant ID is required")
	}

	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email, req.TenantID); err != nil {
		return mapAuthError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "If an account exists, a password reset email has been sent",
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandlers) Me(c echo.Context) error {
	user, ok := common.GetUserFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}

// mapAuthError translates the service taxonomy to transport codes.
// Internal detail stays out of response bodies.
func mapAuthError(err error) error {
	switch {
	case errors.Is(err, services.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many failed attempts. Please try again later.")
	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrTenantNotFound):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tenant")
	case errors.Is(err, services.ErrUserAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, "User already exists")
	case errors.Is(err, services.ErrInvalidOrExpiredToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
	case errors.Is(err, services.ErrMFANotEnabled):
		return echo.NewHTTPError(http.StatusBadRequest, "MFA not enabled for this user")
	case errors.Is(err, services.ErrMFAInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid MFA code")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("Password must be at least 8 characters")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("Password must contain uppercase, lowercase, and number")
	}
	return nil
}

func clientIP(c echo.Context) *string {
	ip := c.RealIP()
	if ip == "" {
		return nil
	}
	return &ip
}

func userAgent(c echo.Context) *string {
	ua := c.Request().UserAgent()
	if ua == "" {
		return nil
	}
	return &ua
}
