package handlers

import (
	"github.com/gin-gonic/gin"

	"bakerypos/internal/domain/shop"
	"bakerypos/internal/infrastructure/http/v1/dto"
)

// ShopHandler serves the shop profile.
type ShopHandler struct {
	*BaseHandler
	service *shop.Service
}

// NewShopHandler creates a new shop profile handler.
func NewShopHandler(base *BaseHandler, service *shop.Service) *ShopHandler {
	return &ShopHandler{BaseHandler: base, service: service}
}

// Get handles GET /shop
func (h *ShopHandler) Get(c *gin.Context) {
	p, err := h.service.Profile(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Update handles PUT /shop
func (h *ShopHandler) Update(c *gin.Context) {
	var req dto.UpdateShopRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Update(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}
