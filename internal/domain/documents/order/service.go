package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/numerator"
	"bakerypos/internal/core/tx"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/documents"
	"bakerypos/internal/domain/documents/bill"
	"bakerypos/pkg/logger"
)

// Service is the order engine.
type Service struct {
	repo          Repository
	bills         BillCreator
	inventory     documents.InventoryReducer
	numerator     numerator.Generator
	txManager     tx.Manager
	audit         domain.Auditor
	events        domain.EventPublisher
	loc           *time.Location
	now           func() time.Time
	retryAttempts int
}

// Config wires the Service.
type Config struct {
	Repo          Repository
	Bills         BillCreator
	Inventory     documents.InventoryReducer
	Numerator     numerator.Generator
	TxManager     tx.Manager
	Audit         domain.Auditor
	Events        domain.EventPublisher
	Location      *time.Location
	Now           func() time.Time
	RetryAttempts int
}

// NewService creates the order engine.
func NewService(cfg Config) *Service {
	s := &Service{
		repo:          cfg.Repo,
		bills:         cfg.Bills,
		inventory:     cfg.Inventory,
		numerator:     cfg.Numerator,
		txManager:     cfg.TxManager,
		audit:         cfg.Audit,
		events:        cfg.Events,
		loc:           cfg.Location,
		now:           cfg.Now,
		retryAttempts: cfg.RetryAttempts,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.retryAttempts <= 0 {
		s.retryAttempts = bill.DefaultRetryAttempts
	}
	return s
}

func (s *Service) today() time.Time {
	return entity.BusinessDay(s.now(), s.loc)
}

// CreateOrder persists a pending order with its lines.
func (s *Service) CreateOrder(ctx context.Context, in Input, createdBy *id.ID) (*Result, error) {
	today := s.today()
	if in.OrderDate == nil {
		in.OrderDate = &today
	}
	if err := in.Validate(ctx); err != nil {
		return nil, err
	}

	lines := documents.CloneLines(in.Lines)
	total := documents.Priced(lines)
	advance := types.RoundMoney(in.AdvanceAmount)

	for attempt := 1; ; attempt++ {
		o := &Order{
			Document:      entity.NewDocument(),
			CustomerName:  in.CustomerName,
			CustomerPhone: in.CustomerPhone,
			OrderDate:     entity.BusinessDay(*in.OrderDate, s.loc),
			DeliveryDate:  in.DeliveryDate,
			TotalAmount:   total,
			AdvanceAmount: advance,
			BalanceAmount: total.Sub(advance),
			Status:        StatusPending,
			PaymentStatus: DerivePaymentStatus(advance, total),
			CreatedBy:     createdBy,
			Lines:         lines,
		}
		o.Notes = in.Notes
		o.CreatedAt = s.now().UTC()
		o.UpdatedAt = o.CreatedAt

		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			number, err := s.numerator.NextNumber(ctx, numerator.DefaultConfig(numerator.PrefixOrder), today)
			if err != nil {
				return fmt.Errorf("generate order number: %w", err)
			}
			o.OrderNumber = number

			if err := s.repo.Create(ctx, o); err != nil {
				return fmt.Errorf("insert order: %w", err)
			}
			if err := s.record(ctx, o.ID, domain.AuditCreate, o); err != nil {
				return err
			}
			return s.publish(ctx, o.ID, domain.EventOrderCreated, resultOf(o))
		})
		if err == nil {
			logger.Info(ctx, "order created",
				"order_id", o.ID,
				"order_number", o.OrderNumber,
				"total", o.TotalAmount.StringFixed(2),
				"payment_status", o.PaymentStatus,
			)
			return resultOf(o), nil
		}

		if apperror.HasCode(err, apperror.CodeNumberConflict) && attempt < s.retryAttempts {
			logger.Warn(ctx, "order number taken, retrying", "order_number", o.OrderNumber, "attempt", attempt)
			if err := s.skipTakenNumbers(ctx, today); err != nil {
				return nil, transactionError("create order", err)
			}
			continue
		}
		return nil, transactionError("create order", err)
	}
}

// skipTakenNumbers moves the day's order counter past every stored order
// number. It runs after the failed transaction rolled back.
func (s *Service) skipTakenNumbers(ctx context.Context, day time.Time) error {
	cfg := numerator.DefaultConfig(numerator.PrefixOrder)
	last, err := s.repo.MaxSequence(ctx, cfg.Stem(day))
	if err != nil {
		return fmt.Errorf("find last order number: %w", err)
	}
	if err := s.numerator.SetNextNumber(ctx, cfg, day, last); err != nil {
		return fmt.Errorf("advance order numbers: %w", err)
	}
	return nil
}

// UpdateStatus moves an order along the workflow. Setting the current
// status again is a successful no-op. Moving to completed reduces
// inventory and synthesizes the bill exactly once.
func (s *Service) UpdateStatus(ctx context.Context, orderID id.ID, status Status) (*Order, error) {
	if !status.IsValid() {
		return nil, apperror.NewInvalidStatus("order", string(status))
	}

	var result *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == status {
			result = o
			return nil
		}
		if !o.Status.CanTransition(status) {
			return apperror.NewInvalidTransition("order", string(o.Status), string(status))
		}

		from := o.Status
		if status == StatusCompleted {
			if err := s.complete(ctx, o); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		o.Status = status
		o.UpdatedAt = s.now().UTC()

		action := domain.AuditStatus
		switch status {
		case StatusCompleted:
			action = domain.AuditComplete
		case StatusCancelled:
			action = domain.AuditCancel
		}
		if err := s.record(ctx, orderID, action, map[string]any{
			"orderNumber": o.OrderNumber,
			"from":        from,
			"to":          status,
		}); err != nil {
			return err
		}
		eventType := domain.EventOrderStatus
		if status == StatusCompleted {
			eventType = domain.EventOrderCompleted
		}
		if err := s.publish(ctx, orderID, eventType, map[string]any{
			"orderId":     orderID,
			"orderNumber": o.OrderNumber,
			"from":        from,
			"to":          status,
		}); err != nil {
			return err
		}

		result = o
		logger.Info(ctx, "order status changed", "order_id", orderID, "from", from, "to", status)
		return nil
	})
	if err != nil {
		return nil, transactionError("update order status", err)
	}
	return result, nil
}

// complete runs inside UpdateStatus' transaction with the order row locked.
func (s *Service) complete(ctx context.Context, o *Order) error {
	if err := documents.ReduceInventory(ctx, s.inventory, o.Lines, s.today()); err != nil {
		return err
	}

	exists, err := s.bills.ExistsByNumber(ctx, o.OrderNumber)
	if err != nil {
		return fmt.Errorf("check completion bill: %w", err)
	}
	if exists {
		logger.Warn(ctx, "completion bill already exists", "order_number", o.OrderNumber)
		return nil
	}

	paid := o.TotalAmount
	_, err = s.bills.CreateBill(ctx, bill.Input{
		DiscountPercent: decimal.Zero,
		PaymentMethod:   bill.PaymentCash,
		AmountPaid:      &paid,
		Notes:           fmt.Sprintf("Order %s completion", o.OrderNumber),
		Lines:           documents.CloneLines(o.Lines),
	}, o.CreatedBy, bill.Options{
		UpdateInventory: false,
		ForcedNumber:    o.OrderNumber,
	})
	if err != nil {
		return fmt.Errorf("create completion bill: %w", err)
	}
	return nil
}

// CancelOrder moves the order to cancelled. Inventory is not restored.
func (s *Service) CancelOrder(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.UpdateStatus(ctx, orderID, StatusCancelled)
}

// AddPayment records an advance payment. Overpayment is accepted and leaves
// a negative balance.
func (s *Service) AddPayment(ctx context.Context, orderID id.ID, amount types.Money) (*Order, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}
	amount = types.RoundMoney(amount)

	var result *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == StatusCancelled {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "cannot add a payment to a cancelled order").
				WithDetail("orderNumber", o.OrderNumber)
		}

		updated, err := s.repo.AddPayment(ctx, orderID, amount)
		if err != nil {
			return fmt.Errorf("add order payment: %w", err)
		}
		updated.Lines = o.Lines

		if err := s.record(ctx, orderID, domain.AuditPayment, map[string]any{
			"amount":        amount,
			"advanceAmount": updated.AdvanceAmount,
			"paymentStatus": updated.PaymentStatus,
		}); err != nil {
			return err
		}
		if err := s.publish(ctx, orderID, domain.EventOrderPayment, map[string]any{
			"orderId":       orderID,
			"amount":        amount,
			"paymentStatus": updated.PaymentStatus,
		}); err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, transactionError("add order payment", err)
	}

	logger.Info(ctx, "order payment added",
		"order_id", orderID,
		"amount", amount.StringFixed(2),
		"payment_status", result.PaymentStatus,
	)
	return result, nil
}

// GetOrder returns an order with its lines.
func (s *Service) GetOrder(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// PendingOrders returns orders still to be produced, earliest due first.
func (s *Service) PendingOrders(ctx context.Context) ([]*Order, error) {
	return s.repo.Pending(ctx)
}

// PendingCount counts orders still to be produced.
func (s *Service) PendingCount(ctx context.Context) (int64, error) {
	return s.repo.PendingCount(ctx)
}

// ListOrders returns a page of orders.
func (s *Service) ListOrders(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return domain.ListResult[*Order]{}, apperror.NewInvalidStatus("order", string(filter.Status))
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) record(ctx context.Context, orderID id.ID, action domain.AuditAction, snapshot any) error {
	if s.audit == nil {
		return nil
	}
	if err := s.audit.Record(ctx, "order", orderID, action, snapshot); err != nil {
		return fmt.Errorf("audit order: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, orderID id.ID, eventType string, payload any) error {
	if s.events == nil {
		return nil
	}
	err := s.events.Publish(ctx, domain.Event{
		AggregateType: "order",
		AggregateID:   orderID,
		EventType:     eventType,
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

func transactionError(operation string, err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewTransactionFailed(operation, err)
}
