package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/froker/lending-system/internal/api/metrics"
	"github.com/froker/lending-system/internal/api/middleware"
	"github.com/froker/lending-system/internal/core/domain"
	"github.com/froker/lending-system/internal/core/ports"
)

const refreshTokenCookie = "refreshToken"

type AuthHandler struct {
	sessions ports.SessionService
}

func NewAuthHandler(sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Register opens a new borrower account.
//
// @Summary      Register a new borrower
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Application details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.sessions.Register(c.Request().Context(), ports.RegisterInput{
		PhoneNumber:   req.PhoneNumber,
		Email:         req.Email,
		Name:          req.Name,
		Password:      req.Password,
		DateOfBirth:   req.DateOfBirth,
		MonthlySalary: req.MonthlySalary,
	})
	if err != nil {
		if errors.Is(err, domain.ErrApplicationRejected) {
			metrics.RegistrationsTotal.WithLabelValues(string(domain.StatusRejected)).Inc()
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(user.Status)).Inc()
	return c.JSON(http.StatusCreated, registerResponse{
		Status:  string(user.Status),
		Message: "user successfully created",
	})
}

// Login authenticates a borrower and opens a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  tokenResponse
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, pair, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	setTokenCookies(c, pair)
	return c.JSON(http.StatusOK, tokenResponse{
		User:         user.Name,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout ends the authenticated user's session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.sessions.Logout(c.Request().Context(), userID); err != nil {
		return err
	}

	clearTokenCookies(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "user logged out successfully"})
}

// Refresh rotates a refresh token into a new token pair. The token comes
// from the session cookie, with a body fallback for non-browser clients.
//
// @Summary      Refresh session tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token (cookie fallback)"
// @Success      200   {object}  tokenResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	incoming := ""
	if cookie, err := c.Cookie(refreshTokenCookie); err == nil {
		incoming = cookie.Value
	}
	if incoming == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			incoming = req.RefreshToken
		}
	}

	pair, err := h.sessions.Refresh(c.Request().Context(), incoming)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("rejected").Inc()
		return err
	}

	metrics.TokenRefreshTotal.WithLabelValues("ok").Inc()
	setTokenCookies(c, pair)
	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// ChangePassword verifies the current password and stores a new one.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Old and new passwords"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  map[string]string
// @Security     BearerAuth
// @Router       /auth/password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.sessions.ChangePassword(c.Request().Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "password successfully changed"})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// setTokenCookies mirrors the token pair into http-only session cookies so
// browser clients never touch the tokens from script.
func setTokenCookies(c echo.Context, pair ports.TokenPair) {
	c.SetCookie(sessionCookie(middleware.AccessTokenCookie, pair.AccessToken, 0))
	c.SetCookie(sessionCookie(refreshTokenCookie, pair.RefreshToken, 0))
}

func clearTokenCookies(c echo.Context) {
	c.SetCookie(sessionCookie(middleware.AccessTokenCookie, "", -1))
	c.SetCookie(sessionCookie(refreshTokenCookie, "", -1))
}

func sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
