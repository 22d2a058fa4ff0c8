package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/documents/order"
	"bakerypos/internal/infrastructure/http/v1/dto"
)

// OrderService is the order engine as seen by the API.
type OrderService interface {
	CreateOrder(ctx context.Context, in order.Input, createdBy *id.ID) (*order.Result, error)
	UpdateStatus(ctx context.Context, orderID id.ID, status order.Status) (*order.Order, error)
	CancelOrder(ctx context.Context, orderID id.ID) (*order.Order, error)
	AddPayment(ctx context.Context, orderID id.ID, amount types.Money) (*order.Order, error)
	GetOrder(ctx context.Context, orderID id.ID) (*order.Order, error)
	PendingOrders(ctx context.Context) ([]*order.Order, error)
	PendingCount(ctx context.Context) (int64, error)
	ListOrders(ctx context.Context, filter order.ListFilter) (domain.ListResult[*order.Order], error)
}

// OrderHandler serves /orders.
type OrderHandler struct {
	*BaseHandler
	service OrderService
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(base *BaseHandler, service OrderService) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in := req.ToInput()
	var err error
	if in.OrderDate, err = h.ParseDay("orderDate", req.OrderDate); err != nil {
		h.Error(c, err)
		return
	}
	if in.DeliveryDate, err = h.ParseDay("deliveryDate", req.DeliveryDate); err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.CreateOrder(c.Request.Context(), in, h.CurrentUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var q dto.OrderListQuery
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

	result, err := h.service.ListOrders(c.Request.Context(), order.ListFilter{
		Status:   order.Status(q.Status),
		From:     from,
		To:       to,
		Customer: q.Customer,
		Limit:    q.LimitOr(50),
		Offset:   q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// Pending handles GET /orders/pending
func (h *OrderHandler) Pending(c *gin.Context) {
	ctx := c.Request.Context()

	orders, err := h.service.PendingOrders(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}
	count, err := h.service.PendingCount(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	if orders == nil {
		orders = []*order.Order{}
	}
	h.OK(c, dto.PendingOrdersResponse{Items: orders, Count: count})
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	o, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// UpdateStatus handles PATCH /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.service.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// AddPayment handles POST /orders/:id/payments
func (h *OrderHandler) AddPayment(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.OrderPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.service.AddPayment(c.Request.Context(), orderID, req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// Cancel handles DELETE /orders/:id. The order is kept as cancelled.
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	o, err := h.service.CancelOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}
