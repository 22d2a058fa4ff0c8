package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"bakerypos/internal/core/id"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/documents"
	"bakerypos/internal/domain/documents/bill"
	"bakerypos/internal/infrastructure/http/v1/dto"
)

// BillService is the billing engine as seen by the API.
type BillService interface {
	CreateBill(ctx context.Context, in bill.Input, cashierID *id.ID, opts bill.Options) (*bill.Result, error)
	CancelBill(ctx context.Context, billID id.ID) (bool, error)
	GetBill(ctx context.Context, billID id.ID) (*bill.Bill, error)
	GetByNumber(ctx context.Context, number string) (*bill.Bill, error)
	ListBills(ctx context.Context, filter bill.ListFilter) (domain.ListResult[*bill.Bill], error)
	Receipt(ctx context.Context, billID id.ID) ([]byte, error)
}

// CartPricer resolves till cart lines to priced lines.
type CartPricer interface {
	Price(ctx context.Context, cart []documents.CartLine) ([]documents.LineItem, error)
}

// BillHandler serves /bills.
type BillHandler struct {
	*BaseHandler
	service BillService
	pricer  CartPricer
}

// NewBillHandler creates a bill handler.
func NewBillHandler(base *BaseHandler, service BillService, pricer CartPricer) *BillHandler {
	return &BillHandler{BaseHandler: base, service: service, pricer: pricer}
}

// Create handles POST /bills. Lines are priced now; client prices are ignored.
func (h *BillHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateBillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines, err := h.pricer.Price(ctx, req.Items)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.CreateBill(ctx, req.ToInput(lines), h.CurrentUserID(c), bill.DefaultOptions())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, result)
}

// List handles GET /bills
func (h *BillHandler) List(c *gin.Context) {
	var q dto.BillListQuery
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

	filter := bill.ListFilter{
		From:   from,
		To:     to,
		Status: bill.Status(q.Status),
		Limit:  q.LimitOr(50),
		Offset: q.Offset,
	}
	if q.CashierID != "" {
		cashierID := id.MustParse(q.CashierID)
		filter.CashierID = &cashierID
	}

	result, err := h.service.ListBills(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// Get handles GET /bills/:id
func (h *BillHandler) Get(c *gin.Context) {
	billID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	b, err := h.service.GetBill(c.Request.Context(), billID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, b)
}

// ByNumber handles GET /bills/by-number/:number
func (h *BillHandler) ByNumber(c *gin.Context) {
	b, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, b)
}

// Receipt handles GET /bills/:id/receipt and streams the PDF.
func (h *BillHandler) Receipt(c *gin.Context) {
	billID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	pdf, err := h.service.Receipt(c.Request.Context(), billID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="receipt-`+billID.String()+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Cancel handles POST /bills/:id/cancel. Cancelling twice is not an error.
func (h *BillHandler) Cancel(c *gin.Context) {
	billID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	changed, err := h.service.CancelBill(c.Request.Context(), billID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CancelBillResponse{Cancelled: changed})
}
