package dto

import (
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
)

// StockMovementRequest adds to or reduces a product's daily stock.
type StockMovementRequest struct {
	ProductID id.ID          `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity"`
	Date      string         `json:"date"` // YYYY-MM-DD, defaults to today
}

// StockReportQuery is a date range; both ends are inclusive days.
type StockReportQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}
