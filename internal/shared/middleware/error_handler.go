package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tours-backend/internal/shared/apperror"
	"tours-backend/internal/shared/response"
)

const genericMessage = "Something went very wrong!"

type ErrorHandlerConfig struct {
	Production bool

	// ErrorTemplate, when set, renders errors of non /api requests as HTML.
	ErrorTemplate string
}

// ErrorHandler turns the last error recorded with c.Error into the response
// envelope. It must be registered before the handlers it covers.
func ErrorHandler(cfg ErrorHandlerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := apperror.Normalize(err)

		if appErr.StatusCode >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("request_id", c.GetString(ContextKeyRequestID)).
				Str("kind", string(appErr.Kind)).
				Str("path", c.Request.URL.Path).
				Msg("Request failed")
		}

		body := response.Envelope{
			Status:  appErr.Status(),
			Message: appErr.Message,
		}
		if cfg.Production {
			if !appErr.Operational {
				body = response.Envelope{Status: response.StatusError, Message: genericMessage}
			}
		} else {
			body.Error = string(appErr.Kind)
			body.Detail = err.Error()
		}

		if cfg.ErrorTemplate != "" && !strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.HTML(appErr.StatusCode, cfg.ErrorTemplate, gin.H{
				"Title":   "Something went wrong!",
				"Message": body.Message,
			})
			return
		}

		c.JSON(appErr.StatusCode, body)
	}
}
