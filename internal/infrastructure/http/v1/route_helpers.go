// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	appctx "bakerypos/internal/core/context"
	"bakerypos/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// Every staff member may read; writes are limited to writeRoles.
//
// Usage:
//
//	repo := catalog_repo.NewBrandRepo(cfg.TxManager)
//	service := brand.NewService(repo, cfg.TxManager, cfg.Audit)
//	handler := handlers.NewBrandHandler(baseHandler, service)
//	RegisterCatalogRoutes(rg.Group("/brands"), handler, appctx.RoleAdmin)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, writeRoles ...string) {
	if len(writeRoles) == 0 {
		writeRoles = []string{appctx.RoleAdmin}
	}
	write := middleware.RequireRole(writeRoles...)

	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
	group.POST("", write, handler.Create)
	group.PUT("/:id", write, handler.Update)
	group.DELETE("/:id", write, handler.Delete)
}
