package v1

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "bakerypos/internal/core/context"
	"bakerypos/internal/domain/pricing"
	"bakerypos/pkg/logger"
)

type staticValidator map[string]*appctx.UserContext

func (v staticValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if u, ok := v[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid")
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	policy, err := pricing.NewPolicy(pricing.Config{StartHour: 19, Location: time.UTC})
	require.NoError(t, err)

	return NewRouter(RouterConfig{
		Logger: logger.Nop(),
		JWTValidator: staticValidator{
			"cashier": {UserID: "0190a4b2-0000-7000-8000-000000000002", Username: "anna", Role: appctx.RoleCashier},
		},
		Policy:        policy,
		Location:      time.UTC,
		RetryAttempts: 3,
		Version:       "test",
	})
}

func TestRouter_Health(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Access(t *testing.T) {
	r := testRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"bills need a token", http.MethodGet, "/api/v1/bills", "", http.StatusUnauthorized},
		{"orders need a token", http.MethodPost, "/api/v1/orders", "", http.StatusUnauthorized},
		{"cashier cannot create brands", http.MethodPost, "/api/v1/brands", "cashier", http.StatusForbidden},
		{"cashier cannot cancel bills", http.MethodPost, "/api/v1/bills/0190a4b2-0000-7000-8000-00000000000a/cancel", "cashier", http.StatusForbidden},
		{"cashier cannot read reports", http.MethodGet, "/api/v1/reports/daily", "cashier", http.StatusForbidden},
		{"cashier cannot read sales by range", http.MethodGet, "/api/v1/reports/sales", "cashier", http.StatusForbidden},
		{"shop edit needs a token", http.MethodPut, "/api/v1/shop", "", http.StatusUnauthorized},
		{"cashier cannot edit the shop", http.MethodPut, "/api/v1/shop", "cashier", http.StatusForbidden},
		{"cashier cannot see suppliers", http.MethodGet, "/api/v1/suppliers", "cashier", http.StatusForbidden},
		{"cashier cannot add stock", http.MethodPost, "/api/v1/stock", "cashier", http.StatusForbidden},
		{"cashier cannot reduce stock items", http.MethodPost, "/api/v1/stock-items/0190a4b2-0000-7000-8000-00000000000a/reduce", "cashier", http.StatusForbidden},
		{"unknown route", http.MethodGet, "/api/v1/nope", "cashier", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRouter_BadInputNeverReachesStorage(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills", strings.NewReader(`{"items":[]}`))
	req.Header.Set("Authorization", "Bearer cashier")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
