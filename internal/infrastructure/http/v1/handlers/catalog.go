// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/domain"
	"bakerypos/internal/infrastructure/http/v1/dto"
)

// CatalogService is the part of domain.CatalogService the handler drives.
type CatalogService[T any] interface {
	Create(ctx context.Context, e T) error
	GetByID(ctx context.Context, entityID id.ID) (T, error)
	Update(ctx context.Context, e T) error
	Deactivate(ctx context.Context, entityID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
}

// CatalogHandler provides generic HTTP handlers for catalog entities.
type CatalogHandler[T entity.Validatable, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service    CatalogService[T]
	entityName string

	// Mapper functions
	mapCreateDTO func(dto *CreateDTO) T
	applyUpdate  func(dto *UpdateDTO, existing T)
}

// CatalogHandlerConfig configures the catalog handler.
type CatalogHandlerConfig[T entity.Validatable, CreateDTO any, UpdateDTO any] struct {
	Service      CatalogService[T]
	EntityName   string
	MapCreateDTO func(dto *CreateDTO) T
	ApplyUpdate  func(dto *UpdateDTO, existing T)
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler[T entity.Validatable, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg CatalogHandlerConfig[T, CreateDTO, UpdateDTO],
) *CatalogHandler[T, CreateDTO, UpdateDTO] {
	return &CatalogHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		entityName:   cfg.EntityName,
		mapCreateDTO: cfg.MapCreateDTO,
		applyUpdate:  cfg.ApplyUpdate,
	}
}

// List handles GET /{entity} - list with filtering and pagination.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")
	filter.IncludeInactive = c.Query("includeInactive") == "true"

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result))
}

// Get handles GET /{entity}/:id - get single entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	e, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, e)
}

// Create handles POST /{entity} - create new entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	e := h.mapCreateDTO(&req)

	if err := h.service.Create(c.Request.Context(), e); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, e)
}

// Update handles PUT /{entity}/:id - update existing entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.applyUpdate(&req, existing)

	if err := h.service.Update(ctx, existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, existing)
}

// Delete handles DELETE /{entity}/:id. Catalog rows are deactivated, never removed.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
