package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"tours-backend/internal/domains/user"
	"tours-backend/internal/shared/apperror"
	"tours-backend/internal/shared/response"
)

const (
	ContextKeyUser = "user"
	CookieName     = "jwt"
)

type userCtxKey struct{}

// TokenFromRequest reads a Bearer token, falling back to the jwt cookie.
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

// Protect rejects the request unless it carries a valid token for an active
// user whose password has not changed since the token was issued.
func Protect(auth user.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			response.Fail(c, user.ErrNotLoggedIn)
			return
		}

		u, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Fail(c, err)
			return
		}

		attach(c, u)
		c.Next()
	}
}

// IsLoggedIn attaches the user when the jwt cookie is valid and never fails.
// Rendered pages use it to switch the header between login and account links.
func IsLoggedIn(auth user.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(CookieName)
		if err == nil && cookie != "" {
			if u, err := auth.Authenticate(c.Request.Context(), cookie); err == nil {
				attach(c, u)
			}
		}
		c.Next()
	}
}

// RestrictTo must run after Protect.
func RestrictTo(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok || !u.Role.In(roles...) {
			response.Fail(c, apperror.Forbidden("You do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}

// Require is RestrictTo expressed as a capability.
func Require(capability user.Capability) gin.HandlerFunc {
	return RestrictTo(capability.Roles()...)
}

func CurrentUser(c *gin.Context) (*user.User, bool) {
	v, ok := c.Get(ContextKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok && u != nil
}

// UserFromContext is the request-context counterpart of CurrentUser.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*user.User)
	return u, ok && u != nil
}

func attach(c *gin.Context, u *user.User) {
	c.Set(ContextKeyUser, u)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userCtxKey{}, u))
}
