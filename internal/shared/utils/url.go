package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// IsSecureRequest reports whether the client reached us over TLS, directly
// or through a proxy that sets X-Forwarded-Proto.
func IsSecureRequest(c *gin.Context) bool {
	return c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
}

// BaseURL is scheme://host of the current request, used to build links
// that go out by email.
func BaseURL(c *gin.Context) string {
	scheme := "http"
	if IsSecureRequest(c) {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
