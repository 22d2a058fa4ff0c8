package bill

import (
	"context"
	"fmt"
	"time"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/numerator"
	"bakerypos/internal/core/tx"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/documents"
	"bakerypos/pkg/logger"
)

// DefaultRetryAttempts bounds CreateBill retries on a taken bill number.
const DefaultRetryAttempts = 3

// Service is the billing engine.
type Service struct {
	repo          Repository
	inventory     documents.InventoryReducer
	numerator     numerator.Generator
	txManager     tx.Manager
	audit         domain.Auditor
	events        domain.EventPublisher
	receipts      ReceiptRenderer
	loc           *time.Location
	now           func() time.Time
	retryAttempts int
}

// Config wires the Service.
type Config struct {
	Repo          Repository
	Inventory     documents.InventoryReducer
	Numerator     numerator.Generator
	TxManager     tx.Manager
	Audit         domain.Auditor
	Events        domain.EventPublisher
	Receipts      ReceiptRenderer
	Location      *time.Location
	Now           func() time.Time
	RetryAttempts int
}

// NewService creates the billing engine.
func NewService(cfg Config) *Service {
	s := &Service{
		repo:          cfg.Repo,
		inventory:     cfg.Inventory,
		numerator:     cfg.Numerator,
		txManager:     cfg.TxManager,
		audit:         cfg.Audit,
		events:        cfg.Events,
		receipts:      cfg.Receipts,
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
		s.retryAttempts = DefaultRetryAttempts
	}
	return s
}

// CreateBill persists a bill, its lines and (optionally) the inventory
// reductions as one unit. On failure nothing is kept.
func (s *Service) CreateBill(ctx context.Context, in Input, cashierID *id.ID, opts Options) (*Result, error) {
	if err := in.Validate(ctx); err != nil {
		return nil, err
	}

	lines := documents.CloneLines(in.Lines)
	totals := ComputeTotals(lines, in.DiscountPercent)

	amountPaid := totals.Total
	if in.AmountPaid != nil {
		amountPaid = types.RoundMoney(*in.AmountPaid)
	}
	if amountPaid.LessThan(totals.Total) {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "amount paid is less than the bill total").
			WithDetail("total", totals.Total.StringFixed(2)).
			WithDetail("amountPaid", amountPaid.StringFixed(2))
	}

	attempts := s.retryAttempts
	if opts.ForcedNumber != "" {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		b := &Bill{
			Document:        entity.NewDocument(),
			BillNumber:      opts.ForcedNumber,
			Subtotal:        totals.Subtotal,
			DiscountPercent: in.DiscountPercent,
			DiscountAmount:  totals.DiscountAmount,
			Total:           totals.Total,
			PaymentMethod:   in.PaymentMethod,
			AmountPaid:      amountPaid,
			ChangeAmount:    amountPaid.Sub(totals.Total),
			CashierID:       cashierID,
			Status:          StatusCompleted,
			Lines:           lines,
		}
		b.Notes = in.Notes
		b.CreatedAt = s.now().UTC()
		b.UpdatedAt = b.CreatedAt

		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.create(ctx, b, opts)
		})
		if err == nil {
			logger.Info(ctx, "bill created",
				"bill_id", b.ID,
				"bill_number", b.BillNumber,
				"total", b.Total.StringFixed(2),
				"lines", len(b.Lines),
				"update_inventory", opts.UpdateInventory,
			)
			return resultOf(b), nil
		}

		if apperror.HasCode(err, apperror.CodeNumberConflict) && attempt < attempts {
			logger.Warn(ctx, "bill number taken, retrying", "bill_number", b.BillNumber, "attempt", attempt)
			if err := s.skipTakenNumbers(ctx, entity.BusinessDay(b.CreatedAt, s.loc)); err != nil {
				return nil, transactionError("create bill", err)
			}
			continue
		}
		return nil, transactionError("create bill", err)
	}
}

// skipTakenNumbers moves the day's counter past every bill number already
// stored. It runs outside the failed transaction so the move survives its
// rollback.
func (s *Service) skipTakenNumbers(ctx context.Context, day time.Time) error {
	cfg := numerator.DefaultConfig(numerator.PrefixBill)
	last, err := s.repo.MaxSequence(ctx, cfg.Stem(day))
	if err != nil {
		return fmt.Errorf("find last bill number: %w", err)
	}
	if err := s.numerator.SetNextNumber(ctx, cfg, day, last); err != nil {
		return fmt.Errorf("advance bill numbers: %w", err)
	}
	return nil
}

func (s *Service) create(ctx context.Context, b *Bill, opts Options) error {
	day := entity.BusinessDay(b.CreatedAt, s.loc)

	if b.BillNumber == "" {
		number, err := s.numerator.NextNumber(ctx, numerator.DefaultConfig(numerator.PrefixBill), day)
		if err != nil {
			return fmt.Errorf("generate bill number: %w", err)
		}
		b.BillNumber = number
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}

	if opts.UpdateInventory {
		if err := documents.ReduceInventory(ctx, s.inventory, b.Lines, day); err != nil {
			return err
		}
	}

	if err := s.record(ctx, b.ID, domain.AuditCreate, b); err != nil {
		return err
	}
	return s.publish(ctx, domain.Event{
		AggregateType: "bill",
		AggregateID:   b.ID,
		EventType:     domain.EventBillCreated,
		Payload:       resultOf(b),
	})
}

// CancelBill moves a completed bill to cancelled. Inventory is not restored.
// It reports false when the bill was already cancelled.
func (s *Service) CancelBill(ctx context.Context, billID id.ID) (bool, error) {
	var changed bool
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetByID(ctx, billID)
		if err != nil {
			return err
		}
		if b.Status == StatusCancelled {
			return nil
		}

		changed, err = s.repo.UpdateStatus(ctx, billID, StatusCompleted, StatusCancelled)
		if err != nil || !changed {
			return err
		}

		b.Status = StatusCancelled
		if err := s.record(ctx, billID, domain.AuditCancel, map[string]any{
			"billNumber": b.BillNumber,
			"status":     StatusCancelled,
		}); err != nil {
			return err
		}
		return s.publish(ctx, domain.Event{
			AggregateType: "bill",
			AggregateID:   billID,
			EventType:     domain.EventBillCancelled,
			Payload:       map[string]any{"billId": billID, "billNumber": b.BillNumber},
		})
	})
	if err != nil {
		return false, transactionError("cancel bill", err)
	}

	if changed {
		logger.Info(ctx, "bill cancelled", "bill_id", billID)
	}
	return changed, nil
}

// GetBill returns a bill with its lines.
func (s *Service) GetBill(ctx context.Context, billID id.ID) (*Bill, error) {
	return s.repo.GetByID(ctx, billID)
}

// GetByNumber returns a bill by its number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Bill, error) {
	return s.repo.GetByNumber(ctx, number)
}

// ExistsByNumber reports whether a bill with number exists.
func (s *Service) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	return s.repo.ExistsByNumber(ctx, number)
}

// ListBills returns a page of bills.
func (s *Service) ListBills(ctx context.Context, filter ListFilter) (domain.ListResult[*Bill], error) {
	if filter.Status != "" && filter.Status != StatusCompleted && filter.Status != StatusCancelled {
		return domain.ListResult[*Bill]{}, apperror.NewInvalidStatus("bill", string(filter.Status))
	}
	return s.repo.List(ctx, filter)
}

// Receipt renders the printable receipt of a bill.
func (s *Service) Receipt(ctx context.Context, billID id.ID) ([]byte, error) {
	if s.receipts == nil {
		return nil, apperror.NewInternal(fmt.Errorf("receipt renderer not configured"))
	}
	b, err := s.repo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	return s.receipts.Render(ctx, b)
}

func (s *Service) record(ctx context.Context, billID id.ID, action domain.AuditAction, snapshot any) error {
	if s.audit == nil {
		return nil
	}
	if err := s.audit.Record(ctx, "bill", billID, action, snapshot); err != nil {
		return fmt.Errorf("audit bill: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event domain.Event) error {
	if s.events == nil {
		return nil
	}
	if err := s.events.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish %s: %w", event.EventType, err)
	}
	return nil
}

// transactionError keeps AppErrors and hides everything else behind a
// TRANSACTION_FAILED error.
func transactionError(operation string, err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewTransactionFailed(operation, err)
}
