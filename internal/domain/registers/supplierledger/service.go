package supplierledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/tx"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain"
	"bakerypos/pkg/logger"
)

// Service records purchases and payments against suppliers.
type Service struct {
	repo      Repository
	suppliers SupplierChecker
	txManager tx.Manager
	audit     domain.Auditor
	events    domain.EventPublisher
	loc       *time.Location
	now       func() time.Time
}

// Config wires the Service.
type Config struct {
	Repo      Repository
	Suppliers SupplierChecker
	TxManager tx.Manager
	Audit     domain.Auditor
	Events    domain.EventPublisher
	Location  *time.Location
	Now       func() time.Time
}

// NewService creates the supplier ledger service.
func NewService(cfg Config) *Service {
	s := &Service{
		repo:      cfg.Repo,
		suppliers: cfg.Suppliers,
		txManager: cfg.TxManager,
		audit:     cfg.Audit,
		events:    cfg.Events,
		loc:       cfg.Location,
		now:       cfg.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// AddPayment appends a signed entry to the supplier's ledger.
func (s *Service) AddPayment(ctx context.Context, in PaymentInput, createdBy *id.ID) (*Payment, error) {
	if err := in.Validate(ctx); err != nil {
		return nil, err
	}

	date := entity.BusinessDay(s.now(), s.loc)
	if in.Date != nil {
		date = entity.BusinessDay(*in.Date, s.loc)
	}

	p := &Payment{
		ID:              id.New(),
		SupplierID:      in.SupplierID,
		Amount:          types.RoundMoney(in.Amount),
		PaymentDate:     date,
		PaymentMethod:   in.Method,
		ReferenceNumber: optional(in.Reference),
		Notes:           optional(in.Notes),
		CreatedBy:       createdBy,
		CreatedAt:       s.now().UTC(),
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.suppliers.Exists(ctx, in.SupplierID)
		if err != nil {
			return fmt.Errorf("check supplier: %w", err)
		}
		if !ok {
			return apperror.NewNotFound("supplier", in.SupplierID.String())
		}

		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("insert supplier payment: %w", err)
		}

		if s.audit != nil {
			if err := s.audit.Record(ctx, "supplier_payment", p.ID, domain.AuditPayment, p); err != nil {
				return fmt.Errorf("audit supplier payment: %w", err)
			}
		}
		if s.events != nil {
			return s.events.Publish(ctx, domain.Event{
				AggregateType: "supplier",
				AggregateID:   p.SupplierID,
				EventType:     domain.EventSupplierPayment,
				Payload:       p,
			})
		}
		return nil
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewTransactionFailed("add supplier payment", err)
	}

	logger.Info(ctx, "supplier ledger entry added",
		"supplier_id", p.SupplierID,
		"amount", p.Amount.StringFixed(2),
		"purchase", p.IsPurchase(),
	)
	return p, nil
}

// Outstanding returns what the bakery still owes the supplier, never negative.
func (s *Service) Outstanding(ctx context.Context, supplierID id.ID) (types.Money, error) {
	if err := s.requireSupplier(ctx, supplierID); err != nil {
		return types.Money{}, err
	}
	return s.repo.Outstanding(ctx, supplierID)
}

// Summary returns purchases, payments and outstanding for one supplier.
func (s *Service) Summary(ctx context.Context, supplierID id.ID) (Summary, error) {
	if err := s.requireSupplier(ctx, supplierID); err != nil {
		return Summary{}, err
	}
	return s.repo.Summary(ctx, supplierID)
}

// SuppliersWithBalances lists all suppliers with their ledger totals.
func (s *Service) SuppliersWithBalances(ctx context.Context) ([]SupplierBalance, error) {
	return s.repo.SuppliersWithBalances(ctx)
}

// Payments returns the ledger of one supplier.
func (s *Service) Payments(ctx context.Context, supplierID id.ID) ([]*Payment, error) {
	if err := s.requireSupplier(ctx, supplierID); err != nil {
		return nil, err
	}
	return s.repo.Payments(ctx, supplierID)
}

// PaymentsByDateRange returns entries of all suppliers within [from, to].
// Zero bounds default to the first of the current month and today.
func (s *Service) PaymentsByDateRange(ctx context.Context, from, to time.Time) ([]PaymentView, error) {
	today := entity.BusinessDay(s.now(), s.loc)
	if from.IsZero() {
		from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)
	}
	if to.IsZero() {
		to = today
	}
	if to.Before(from) {
		return nil, apperror.NewValidation("date range is inverted").
			WithDetail("from", from.Format(time.DateOnly)).
			WithDetail("to", to.Format(time.DateOnly))
	}
	return s.repo.PaymentsByDateRange(ctx, from, to)
}

func (s *Service) requireSupplier(ctx context.Context, supplierID id.ID) error {
	ok, err := s.suppliers.Exists(ctx, supplierID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewNotFound("supplier", supplierID.String())
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
