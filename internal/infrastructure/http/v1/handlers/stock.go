package handlers

import (
	"github.com/gin-gonic/gin"

	"bakerypos/internal/domain/registers/stock"
	"bakerypos/internal/infrastructure/http/v1/dto"
)

// StockHandler serves /stock, the daily product inventory.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

func (h *StockHandler) movement(c *gin.Context) (*dto.StockMovementRequest, bool) {
	var req dto.StockMovementRequest
	if !h.BindJSON(c, &req) {
		return nil, false
	}
	return &req, true
}

// Add handles POST /stock
func (h *StockHandler) Add(c *gin.Context) {
	req, ok := h.movement(c)
	if !ok {
		return
	}
	day, err := h.ParseDay("date", req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}

	row, err := h.service.AddStock(c.Request.Context(), req.ProductID, req.Quantity, dayOr(day), h.CurrentUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, row)
}

// Reduce handles POST /stock/reduce
func (h *StockHandler) Reduce(c *gin.Context) {
	req, ok := h.movement(c)
	if !ok {
		return
	}
	day, err := h.ParseDay("date", req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.ReduceStock(c.Request.Context(), req.ProductID, req.Quantity, dayOr(day)); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "stock reduced")
}

// Clear handles POST /stock/:id/clear, zeroing one day's balance.
func (h *StockHandler) Clear(c *gin.Context) {
	stockID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	row, err := h.service.ClearStockBalance(c.Request.Context(), stockID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, row)
}

// Current handles GET /stock/current?date=, rows with a positive balance.
func (h *StockHandler) Current(c *gin.Context) {
	day, ok := h.DayQuery(c, "date")
	if !ok {
		return
	}

	rows, err := h.service.CurrentStock(c.Request.Context(), dayOr(day))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(rows))
}

// Day handles GET /stock/day?date=, every row of the day.
func (h *StockHandler) Day(c *gin.Context) {
	day, ok := h.DayQuery(c, "date")
	if !ok {
		return
	}

	rows, err := h.service.DayStock(c.Request.Context(), dayOr(day))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(rows))
}

// ProductHistory handles GET /stock/products/:id/history
func (h *StockHandler) ProductHistory(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	rows, err := h.service.ProductHistory(c.Request.Context(), productID, h.ParseIntQuery(c, "limit", 0))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(rows))
}

// Report handles GET /stock/report?from=&to=
func (h *StockHandler) Report(c *gin.Context) {
	var q dto.StockReportQuery
	if !h.BindQuery(c, &q) {
		return
	}
	from, err := h.ParseDay("from", q.From)
	if err != nil {
		h.Error(c, err)
		return
	}
	to, err := h.ParseDay("to", q.To)
	if err != nil {
		h.Error(c, err)
		return
	}
	rows, err := h.service.StockReport(c.Request.Context(), dayOr(from), dayOr(to))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(rows))
}
