package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tours-backend/internal/shared/response"
)

// Recovery answers 500 for a panicking handler and then calls onPanic,
// which the server uses to shut down: a panic means process state can no
// longer be trusted.
func Recovery(onPanic func(recovered interface{})) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Str("request_id", c.GetString(ContextKeyRequestID)).
					Interface("error", rec).
					Bytes("stack", debug.Stack()).
					Msg("Panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, response.Envelope{
					Status:  response.StatusError,
					Message: "Something went very wrong!",
				})

				if onPanic != nil {
					onPanic(rec)
				}
			}
		}()

		c.Next()
	}
}
