package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/catalogs/brand"
	"bakerypos/internal/domain/catalogs/product"
	"bakerypos/internal/domain/catalogs/stockitem"
	"bakerypos/internal/domain/catalogs/supplier"
	"bakerypos/internal/domain/registers/stock"
	"bakerypos/internal/infrastructure/http/v1/dto"
)

// --- Brand ---

// BrandHandler serves /brands.
type BrandHandler struct {
	*CatalogHandler[*brand.Brand, dto.CreateBrandRequest, dto.UpdateBrandRequest]
	brands *brand.Service
}

// NewBrandHandler creates a brand handler.
func NewBrandHandler(base *BaseHandler, service *brand.Service) *BrandHandler {
	return &BrandHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*brand.Brand, dto.CreateBrandRequest, dto.UpdateBrandRequest]{
			Service:      service,
			EntityName:   "brand",
			MapCreateDTO: (*dto.CreateBrandRequest).ToEntity,
			ApplyUpdate:  (*dto.UpdateBrandRequest).ApplyTo,
		}),
		brands: service,
	}
}

// ProductCounts handles GET /brands/product-counts
func (h *BrandHandler) ProductCounts(c *gin.Context) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 100)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	rows, err := h.brands.ListWithProductCount(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(rows))
}

// --- Product ---

// ProductHandler serves /products and the till catalog.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
	products *product.Service
}

// NewProductHandler creates a product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
			Service:      service,
			EntityName:   "product",
			MapCreateDTO: (*dto.CreateProductRequest).ToEntity,
			ApplyUpdate:  (*dto.UpdateProductRequest).ApplyTo,
		}),
		products: service,
	}
}

// POSCatalog handles GET /pos/catalog
func (h *ProductHandler) POSCatalog(c *gin.Context) {
	catalog, err := h.products.POSCatalog(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, catalog)
}

// --- Stock item ---

// StockItemHandler serves /stock-items.
type StockItemHandler struct {
	*CatalogHandler[*stockitem.StockItem, dto.CreateStockItemRequest, dto.UpdateStockItemRequest]
	items *stockitem.Service
	stock *stock.Service
}

// NewStockItemHandler creates a stock item handler.
func NewStockItemHandler(base *BaseHandler, service *stockitem.Service, stockService *stock.Service) *StockItemHandler {
	return &StockItemHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*stockitem.StockItem, dto.CreateStockItemRequest, dto.UpdateStockItemRequest]{
			Service:      service,
			EntityName:   "stock item",
			MapCreateDTO: (*dto.CreateStockItemRequest).ToEntity,
			ApplyUpdate:  (*dto.UpdateStockItemRequest).ApplyTo,
		}),
		items: service,
		stock: stockService,
	}
}

// Add handles POST /stock-items/:id/add
func (h *StockItemHandler) Add(c *gin.Context) {
	h.move(c, h.stock.AddStockItemQuantity)
}

// Reduce handles POST /stock-items/:id/reduce
func (h *StockItemHandler) Reduce(c *gin.Context) {
	h.move(c, h.stock.ReduceStockItemQuantity)
}

func (h *StockItemHandler) move(c *gin.Context, apply func(ctx context.Context, itemID id.ID, qty types.Quantity) error) {
	ctx := c.Request.Context()

	itemID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.QuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := apply(ctx, itemID, req.Quantity); err != nil {
		h.Error(c, err)
		return
	}

	item, err := h.items.GetByID(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// Low handles GET /stock-items/low?threshold=
func (h *StockItemHandler) Low(c *gin.Context) {
	var threshold *decimal.Decimal
	if raw := c.Query("threshold"); raw != "" {
		t, err := decimal.NewFromString(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid threshold").WithDetail("value", raw))
			return
		}
		threshold = &t
	}

	items, err := h.items.LowStock(c.Request.Context(), threshold)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(items))
}

// --- Supplier ---

// SupplierHandler serves /suppliers CRUD.
type SupplierHandler struct {
	*CatalogHandler[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]
}

// NewSupplierHandler creates a supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	return &SupplierHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]{
			Service:      service,
			EntityName:   "supplier",
			MapCreateDTO: (*dto.CreateSupplierRequest).ToEntity,
			ApplyUpdate:  (*dto.UpdateSupplierRequest).ApplyTo,
		}),
	}
}
