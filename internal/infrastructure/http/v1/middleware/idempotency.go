package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"bakerypos/internal/core/apperror"
	appctx "bakerypos/internal/core/context"
	"bakerypos/internal/infrastructure/storage/postgres"
	"bakerypos/pkg/logger"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"
const maxIdempotencyBodyBytes = 1 << 20 // 1 MiB

const (
	ctxIdempotencyKey   = "idempotency_key"
	ctxIdempotencyStore = "idempotency_store"
)

// IdempotencyKeeper is the part of postgres.IdempotencyStore the middleware uses.
type IdempotencyKeeper interface {
	AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*postgres.IdempotencyReplay, error)
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, body []byte) error
	FailKey(ctx context.Context, key string, statusCode int, contentType string, body []byte) error
}

// capturingWriter keeps a copy of the response body for replay.
type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency middleware protects against duplicate requests.
// Used for POST/PUT/PATCH operations that should be idempotent.
// Successful responses are stored here; failures are stored by ErrorHandler.
func Idempotency(store IdempotencyKeeper) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to mutating methods
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		userID := appctx.GetUserID(c.Request.Context())

		// Hash request body
		limited := io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1)
		body, _ := io.ReadAll(limited)
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])

		operation := c.Request.Method + " " + c.FullPath()

		replay, err := store.AcquireKey(c.Request.Context(), key, userID, operation, requestHash)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				_ = c.Error(appErr)
				c.Abort()
				return
			}
			_ = c.Error(apperror.NewInternal(err).WithDetail("component", "idempotency"))
			c.Abort()
			return
		}

		if replay != nil {
			c.Header("Idempotent-Replayed", "true")
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		c.Set(ctxIdempotencyKey, key)
		c.Set(ctxIdempotencyStore, store)

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		if len(c.Errors) > 0 || w.Status() >= http.StatusBadRequest {
			return
		}
		if err := store.CompleteKey(c.Request.Context(), key, w.Status(), w.Header().Get("Content-Type"), w.body.Bytes()); err != nil {
			logger.Warn(c.Request.Context(), "idempotency complete failed", "key", key, "error", err)
		}
	}
}

// failIdempotency records an error response against the request's key (best-effort).
func failIdempotency(c *gin.Context, status int, body []byte) {
	key, ok := c.Get(ctxIdempotencyKey)
	if !ok {
		return
	}
	store, ok := c.Get(ctxIdempotencyStore)
	if !ok {
		return
	}
	s, ok := store.(IdempotencyKeeper)
	if !ok || s == nil {
		return
	}
	if err := s.FailKey(c.Request.Context(), key.(string), status, "application/json", body); err != nil {
		logger.Warn(c.Request.Context(), "idempotency fail failed", "key", key, "error", err)
	}
}
