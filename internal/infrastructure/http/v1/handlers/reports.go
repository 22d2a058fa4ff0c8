package handlers

import (
	"github.com/gin-gonic/gin"

	"bakerypos/internal/domain/reports"
	"bakerypos/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves /reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// Daily handles GET /reports/daily?date=
func (h *ReportsHandler) Daily(c *gin.Context) {
	day, ok := h.DayQuery(c, "date")
	if !ok {
		return
	}

	summary, err := h.service.DailySummary(c.Request.Context(), dayOr(day))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// Monthly handles GET /reports/monthly?year=&month=
func (h *ReportsHandler) Monthly(c *gin.Context) {
	var q dto.MonthlyReportQuery
	if !h.BindQuery(c, &q) {
		return
	}

	summary, err := h.service.MonthlySummary(c.Request.Context(), q.Year, q.Month)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// SalesByRange handles GET /reports/sales?from=&to=
func (h *ReportsHandler) SalesByRange(c *gin.Context) {
	from, ok := h.DayQuery(c, "from")
	if !ok {
		return
	}
	to, ok := h.DayQuery(c, "to")
	if !ok {
		return
	}

	r, err := h.service.SalesByRange(c.Request.Context(), dayOr(from), dayOr(to))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// TopItems handles GET /reports/top-items?from=&to=&limit=
func (h *ReportsHandler) TopItems(c *gin.Context) {
	var q dto.TopItemsQuery
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

	items, err := h.service.TopItems(c.Request.Context(), reports.TopItemsFilter{
		From:  dayOr(from),
		To:    dayOr(to),
		Limit: q.Limit,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(items))
}

// OrderStats handles GET /reports/orders?from=&to=
func (h *ReportsHandler) OrderStats(c *gin.Context) {
	from, ok := h.DayQuery(c, "from")
	if !ok {
		return
	}
	to, ok := h.DayQuery(c, "to")
	if !ok {
		return
	}

	stats, err := h.service.OrderStats(c.Request.Context(), dayOr(from), dayOr(to))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(stats))
}

// Dashboard handles GET /reports/dashboard
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}
