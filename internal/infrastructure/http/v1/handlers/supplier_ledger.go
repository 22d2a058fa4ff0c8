package handlers

import (
	"github.com/gin-gonic/gin"

	"bakerypos/internal/domain/registers/supplierledger"
	"bakerypos/internal/infrastructure/http/v1/dto"
)

// SupplierLedgerHandler serves supplier purchases and payments.
type SupplierLedgerHandler struct {
	*BaseHandler
	service *supplierledger.Service
}

// NewSupplierLedgerHandler creates a supplier ledger handler.
func NewSupplierLedgerHandler(base *BaseHandler, service *supplierledger.Service) *SupplierLedgerHandler {
	return &SupplierLedgerHandler{BaseHandler: base, service: service}
}

// AddPayment handles POST /suppliers/:id/payments
func (h *SupplierLedgerHandler) AddPayment(c *gin.Context) {
	supplierID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.SupplierPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in := req.ToInput(supplierID)
	var err error
	if in.Date, err = h.ParseDay("paymentDate", req.PaymentDate); err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.AddPayment(c.Request.Context(), in, h.CurrentUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// Payments handles GET /suppliers/:id/payments
func (h *SupplierLedgerHandler) Payments(c *gin.Context) {
	supplierID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	payments, err := h.service.Payments(c.Request.Context(), supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(payments))
}

// Outstanding handles GET /suppliers/:id/outstanding
func (h *SupplierLedgerHandler) Outstanding(c *gin.Context) {
	supplierID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// Balances handles GET /suppliers/balances
func (h *SupplierLedgerHandler) Balances(c *gin.Context) {
	rows, err := h.service.SuppliersWithBalances(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(rows))
}

// ByDateRange handles GET /supplier-payments?from=&to=
func (h *SupplierLedgerHandler) ByDateRange(c *gin.Context) {
	from, ok := h.DayQuery(c, "from")
	if !ok {
		return
	}
	to, ok := h.DayQuery(c, "to")
	if !ok {
		return
	}

	rows, err := h.service.PaymentsByDateRange(c.Request.Context(), dayOr(from), dayOr(to))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(rows))
}
