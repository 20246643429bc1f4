package middleware

import (
	"github.com/gin-gonic/gin"

	"tours-backend/internal/shared/utils"
)

const ContextKeyClientIP = "client_ip"

// ClientIP resolves the caller address once so the logger and the rate
// limiter agree on it.
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyClientIP, utils.ExtractClientIP(c))
		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString(ContextKeyClientIP); ip != "" {
		return ip
	}
	return utils.ExtractClientIP(c)
}
