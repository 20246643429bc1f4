package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tours-backend/internal/domains/user"
	"tours-backend/internal/shared/crud"
	"tours-backend/internal/shared/middleware"
	"tours-backend/internal/shared/response"
	"tours-backend/internal/shared/utils"
)

const loggedOutValue = "loggedout"

type CookieConfig struct {
	ExpiresInDays int
	// Secure forces the Secure flag; otherwise it follows the request scheme.
	Secure bool
}

// AuthHandler serves signup, login and the password lifecycle.
type AuthHandler struct {
	auth   user.AuthService
	cookie CookieConfig
}

func NewAuthHandler(auth user.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

// ========================================
// SIGNUP / LOGIN / LOGOUT
// ========================================

// Signup handles POST /users/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req user.SignupRequest
	if err := crud.BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	session, err := h.auth.Signup(c.Request.Context(), req, utils.BaseURL(c)+"/me")
	if err != nil {
		response.Fail(c, err)
		return
	}

	h.sendToken(c, http.StatusCreated, session)
}

// Login handles POST /users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := crud.BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, session)
}

// Logout overwrites the jwt cookie with a short-lived dummy value.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, loggedOutValue, 10, "/", "", false, true)
	response.OK(c)
}

// ========================================
// PASSWORD LIFECYCLE
// ========================================

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest
	if err := crud.BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	resetURL := utils.BaseURL(c) + "/api/v1/users/resetPassword"
	if err := h.auth.ForgotPassword(c.Request.Context(), req, resetURL); err != nil {
		response.Fail(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Token sent to email!")
}

// ResetPassword handles PATCH /users/resetPassword/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest
	if err := crud.BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	session, err := h.auth.ResetPassword(c.Request.Context(), c.Param("token"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, session)
}

// UpdatePassword handles PATCH /users/updateMyPassword. Requires Protect.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, user.ErrNotLoggedIn)
		return
	}

	var req user.UpdatePasswordRequest
	if err := crud.BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	session, err := h.auth.UpdatePassword(c.Request.Context(), current.ID, req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, session)
}

// sendToken sets the jwt cookie and writes {status, token, data: {user}}.
func (h *AuthHandler) sendToken(c *gin.Context, status int, session *user.Session) {
	maxAge := h.cookie.ExpiresInDays * 24 * 60 * 60
	secure := h.cookie.Secure || utils.IsSecureRequest(c)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, session.Token, maxAge, "/", "", secure, true)

	response.WithToken(c, status, session.Token, session.User)
}
