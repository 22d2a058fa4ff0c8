package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"bakerypos/internal/core/apperror"
	"bakerypos/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		writeError(c, c.Errors.Last().Err)
	}
}

// writeError renders err as the JSON error body. AppErrors keep their code
// and status; anything else becomes a 500 that only carries the request id.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var body gin.H

	if appErr, ok := apperror.AsAppError(err); ok {
		if appErr.Err != nil {
			logger.Error(c.Request.Context(), "request error",
				"code", appErr.Code,
				"cause", appErr.Err,
			)
		}
		status = appErr.HTTPStatus
		body = gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
			"details": appErr.Details,
		}
	} else {
		logger.Error(c.Request.Context(), "unhandled error",
			"error", err,
		)
		body = gin.H{
			"code":    apperror.CodeInternal,
			"message": "Internal server error",
			"details": map[string]any{
				"request_id": c.GetString("request_id"),
			},
		}
	}

	raw, mErr := json.Marshal(body)
	if mErr != nil {
		c.JSON(status, body)
		return
	}

	// Replays must return exactly what the first call returned.
	failIdempotency(c, status, raw)

	c.Data(status, "application/json; charset=utf-8", raw)
}
