// Package middleware provides HTTP middleware components.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"bakerypos/internal/core/apperror"
	appctx "bakerypos/internal/core/context"
	"bakerypos/pkg/logger"
)

// Recovery turns a handler panic into the standard INTERNAL_ERROR body and
// writes it directly, since ErrorHandler's post-processing is skipped while
// a panic unwinds. http.ErrAbortHandler is re-raised for net/http.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			ctx := c.Request.Context()
			fields := []any{
				"panic", rec,
				"method", c.Request.Method,
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			}
			if user := appctx.GetUser(ctx); user != nil {
				fields = append(fields, "user_id", user.UserID)
			}
			logger.Error(ctx, "panic recovered", fields...)

			appErr := apperror.NewInternal(fmt.Errorf("panic: %v", rec)).
				WithDetail("request_id", c.GetString("request_id"))
			_ = c.Error(appErr)
			c.Abort()
			if !c.Writer.Written() {
				writeError(c, appErr)
			}
		}()
		c.Next()
	}
}
