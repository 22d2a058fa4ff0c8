package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsAppError_Wrapped(t *testing.T) {
	base := NewNotFound("order", "42")
	wrapped := fmt.Errorf("load order: %w", base)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
	assert.False(t, IsAppError(errors.New("boom")))
}

func TestTransactionFailed_KeepsCause(t *testing.T) {
	cause := errors.New("insert bill_items: connection reset")
	err := NewTransactionFailed("create bill", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, CodeTransactionFailed, err.Code)
	assert.NotContains(t, err.Message, "connection reset")
}

func TestWithDetail(t *testing.T) {
	err := NewValidation("quantity must be positive").
		WithDetail("field", "quantity").
		WithDetail("line", 2)

	assert.Equal(t, "quantity", err.Details["field"])
	assert.Equal(t, 2, err.Details["line"])
	assert.True(t, HasCode(err, CodeValidation))
}
