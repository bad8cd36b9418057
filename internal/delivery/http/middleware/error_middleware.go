package middleware

import (
	"net/http"

	"contact-manager-backend/internal/delivery/http/response"
	"contact-manager-backend/pkg/apperror"
	"contact-manager-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler pushed with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if appErr, ok := apperror.As(err); ok {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error(appErr.Message,
					"kind", appErr.Kind,
					"error", appErr.Err,
					"request_id", c.GetString(response.RequestIDKey),
				)
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Detail())
			return
		}

		logger.Log.Error("Unhandled error", "error", err, "request_id", c.GetString(response.RequestIDKey))
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred", err.Error())
	}
}
