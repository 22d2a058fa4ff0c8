package dto

import (
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/catalogs/brand"
	"bakerypos/internal/domain/catalogs/product"
	"bakerypos/internal/domain/catalogs/stockitem"
	"bakerypos/internal/domain/catalogs/supplier"
)

// --- Brand ---

// CreateBrandRequest is the request body for creating a brand.
type CreateBrandRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateBrandRequest) ToEntity() *brand.Brand {
	b := brand.NewBrand(r.Name)
	b.Description = r.Description
	b.Image = r.Image
	return b
}

// UpdateBrandRequest is the request body for updating a brand.
type UpdateBrandRequest struct {
	Name        string        `json:"name" binding:"required,max=100"`
	Description *string       `json:"description"`
	Image       *string       `json:"image"`
	Status      entity.Status `json:"status" binding:"omitempty,oneof=active inactive"`
	Version     int           `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateBrandRequest) ApplyTo(b *brand.Brand) {
	b.Name = r.Name
	b.Description = r.Description
	b.Image = r.Image
	if r.Status != "" {
		b.Status = r.Status
	}
	b.Version = r.Version
}

// --- Product ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Name             string       `json:"name" binding:"required,max=255"`
	BrandID          *id.ID       `json:"brandId"`
	Price            types.Money  `json:"price"`
	SpecialPrice     *types.Money `json:"specialPrice"`
	IsSpecialPricing bool         `json:"isSpecialPricing"`
	Size             *string      `json:"size"`
	Description      *string      `json:"description"`
	Image            *string      `json:"image"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Name, r.Price)
	p.BrandID = r.BrandID
	p.SpecialPrice = r.SpecialPrice
	p.IsSpecialPricing = r.IsSpecialPricing
	p.Size = r.Size
	p.Description = r.Description
	p.Image = r.Image
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	CreateProductRequest
	Status  entity.Status `json:"status" binding:"omitempty,oneof=active inactive"`
	Version int           `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Name = r.Name
	p.BrandID = r.BrandID
	p.Price = r.Price
	p.SpecialPrice = r.SpecialPrice
	p.IsSpecialPricing = r.IsSpecialPricing
	p.Size = r.Size
	p.Description = r.Description
	p.Image = r.Image
	if r.Status != "" {
		p.Status = r.Status
	}
	p.Version = r.Version
}

// --- Stock item ---

// CreateStockItemRequest is the request body for creating a stock item.
type CreateStockItemRequest struct {
	Name       string         `json:"name" binding:"required,max=255"`
	UnitPrice  types.Money    `json:"unitPrice"`
	Quantity   types.Quantity `json:"quantity"`
	Unit       string         `json:"unit" binding:"max=20"`
	IsSellable bool           `json:"isSellable"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateStockItemRequest) ToEntity() *stockitem.StockItem {
	s := stockitem.NewStockItem(r.Name, r.UnitPrice, r.IsSellable)
	s.Quantity = r.Quantity
	if r.Unit != "" {
		s.Unit = r.Unit
	}
	return s
}

// UpdateStockItemRequest updates the item's details. Quantity moves only
// through the add/reduce endpoints.
type UpdateStockItemRequest struct {
	Name       string        `json:"name" binding:"required,max=255"`
	UnitPrice  types.Money   `json:"unitPrice"`
	Unit       string        `json:"unit" binding:"max=20"`
	IsSellable bool          `json:"isSellable"`
	Status     entity.Status `json:"status" binding:"omitempty,oneof=active inactive"`
	Version    int           `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateStockItemRequest) ApplyTo(s *stockitem.StockItem) {
	s.Name = r.Name
	s.UnitPrice = r.UnitPrice
	s.Unit = r.Unit
	s.IsSellable = r.IsSellable
	if r.Status != "" {
		s.Status = r.Status
	}
	s.Version = r.Version
}

// QuantityRequest moves a stock item's running quantity.
type QuantityRequest struct {
	Quantity types.Quantity `json:"quantity"`
}

// --- Supplier ---

// CreateSupplierRequest is the request body for creating a supplier.
type CreateSupplierRequest struct {
	Name          string  `json:"name" binding:"required,max=255"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.NewSupplier(r.Name)
	s.ContactPerson = r.ContactPerson
	s.Phone = r.Phone
	s.Email = r.Email
	s.Address = r.Address
	return s
}

// UpdateSupplierRequest is the request body for updating a supplier.
type UpdateSupplierRequest struct {
	CreateSupplierRequest
	Status  entity.Status `json:"status" binding:"omitempty,oneof=active inactive"`
	Version int           `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	s.Name = r.Name
	s.ContactPerson = r.ContactPerson
	s.Phone = r.Phone
	s.Email = r.Email
	s.Address = r.Address
	if r.Status != "" {
		s.Status = r.Status
	}
	s.Version = r.Version
}
