package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/tx/txtest"
	"bakerypos/internal/domain/shop"
)

type shopStore struct{ stored *shop.Profile }

func (s *shopStore) Get(context.Context) (*shop.Profile, error) {
	if s.stored == nil {
		return nil, apperror.NewNotFound("shop profile", "")
	}
	cp := *s.stored
	return &cp, nil
}

func (s *shopStore) Save(_ context.Context, p *shop.Profile) error {
	p.Version++
	cp := *p
	s.stored = &cp
	return nil
}

func shopRouter() *gin.Engine {
	svc := shop.NewService(shop.Config{
		Repo:      &shopStore{},
		Defaults:  shop.Profile{Name: "Corner Bakery", Currency: "Rs."},
		TxManager: txtest.New(),
	})
	h := NewShopHandler(NewBaseHandler(colombo), svc)
	r := newTestEngine()
	r.GET("/shop", h.Get)
	r.PUT("/shop", h.Update)
	return r
}

func TestShopHandler_GetThenUpdate(t *testing.T) {
	r := shopRouter()

	w := doJSON(r, http.MethodGet, "/shop", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got shop.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Corner Bakery", got.Name)
	assert.Equal(t, 0, got.Version)

	w = doJSON(r, http.MethodPut, "/shop", `{"name":" Hill Bakery ","receiptFooter":"See you!"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, "/shop", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Hill Bakery", got.Name)
	assert.Equal(t, "See you!", got.ReceiptFooter)
	assert.Equal(t, "Rs.", got.Currency)
	assert.Equal(t, 1, got.Version)
}

func TestShopHandler_UpdateRejections(t *testing.T) {
	r := shopRouter()

	w := doJSON(r, http.MethodPut, "/shop", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, errorCode(t, w))

	w = doJSON(r, http.MethodPut, "/shop", `{"name":"X","version":4}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeConcurrentModification, errorCode(t, w))
}
