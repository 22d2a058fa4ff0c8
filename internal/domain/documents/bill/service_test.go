package bill

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/numerator"
	"bakerypos/internal/core/tx/txtest"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/documents"
)

type memRepo struct {
	mu      sync.Mutex
	bills   map[id.ID]*Bill
	numbers map[string]id.ID
}

func newMemRepo() *memRepo {
	return &memRepo{bills: map[id.ID]*Bill{}, numbers: map[string]id.ID{}}
}

func (m *memRepo) snapshot() func() {
	bills := make(map[id.ID]*Bill, len(m.bills))
	for k, v := range m.bills {
		cp := *v
		bills[k] = &cp
	}
	numbers := make(map[string]id.ID, len(m.numbers))
	for k, v := range m.numbers {
		numbers[k] = v
	}
	return func() {
		m.bills = bills
		m.numbers = numbers
	}
}

func (m *memRepo) Create(_ context.Context, b *Bill) error {
	if _, taken := m.numbers[b.BillNumber]; taken {
		return apperror.NewNumberConflict("bill", b.BillNumber)
	}
	cp := *b
	cp.Lines = documents.CloneLines(b.Lines)
	m.bills[b.ID] = &cp
	m.numbers[b.BillNumber] = b.ID
	return nil
}

func (m *memRepo) GetByID(_ context.Context, billID id.ID) (*Bill, error) {
	b, ok := m.bills[billID]
	if !ok {
		return nil, apperror.NewNotFound("bill", billID.String())
	}
	cp := *b
	return &cp, nil
}

func (m *memRepo) GetByNumber(ctx context.Context, number string) (*Bill, error) {
	billID, ok := m.numbers[number]
	if !ok {
		return nil, apperror.NewNotFound("bill", number)
	}
	return m.GetByID(ctx, billID)
}

func (m *memRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	_, ok := m.numbers[number]
	return ok, nil
}

func (m *memRepo) MaxSequence(_ context.Context, stem string) (int64, error) {
	var last int64
	for number := range m.numbers {
		rest, ok := strings.CutPrefix(number, stem)
		if !ok {
			continue
		}
		if seq, err := strconv.ParseInt(rest, 10, 64); err == nil && seq > last {
			last = seq
		}
	}
	return last, nil
}

func (m *memRepo) UpdateStatus(_ context.Context, billID id.ID, from, to Status) (bool, error) {
	b, ok := m.bills[billID]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (m *memRepo) List(_ context.Context, filter ListFilter) (domain.ListResult[*Bill], error) {
	var items []*Bill
	for _, b := range m.bills {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		items = append(items, b)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].BillNumber > items[j].BillNumber })
	return domain.ListResult[*Bill]{Items: items, TotalCount: int64(len(items))}, nil
}

type reduction struct {
	itemType documents.ItemType
	itemID   id.ID
	qty      types.Quantity
	inTx     bool
}

type fakeInventory struct {
	reductions []reduction
	failOn     id.ID
}

func (f *fakeInventory) ReduceStock(ctx context.Context, productID id.ID, qty types.Quantity, _ time.Time) error {
	if productID == f.failOn {
		return errors.New("stock row locked")
	}
	f.reductions = append(f.reductions, reduction{documents.ItemProduct, productID, qty, txtest.InTx(ctx)})
	return nil
}

func (f *fakeInventory) ReduceStockItemQuantity(ctx context.Context, itemID id.ID, qty types.Quantity) error {
	if itemID == f.failOn {
		return errors.New("stock item locked")
	}
	f.reductions = append(f.reductions, reduction{documents.ItemStockItem, itemID, qty, txtest.InTx(ctx)})
	return nil
}

type recordedEvents struct{ events []domain.Event }

func (r *recordedEvents) Publish(_ context.Context, e domain.Event) error {
	r.events = append(r.events, e)
	return nil
}

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

type fixture struct {
	repo   *memRepo
	inv    *fakeInventory
	tx     *txtest.Manager
	num    *numerator.MockGenerator
	events *recordedEvents
	svc    *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:   newMemRepo(),
		inv:    &fakeInventory{},
		num:    &numerator.MockGenerator{},
		events: &recordedEvents{},
	}
	f.tx = txtest.WithSnapshot(func() func() {
		restoreRepo := f.repo.snapshot()
		restoreNum := f.num.Snapshot()
		reductions := append([]reduction(nil), f.inv.reductions...)
		events := append([]domain.Event(nil), f.events.events...)
		return func() {
			restoreRepo()
			restoreNum()
			f.inv.reductions = reductions
			f.events.events = events
		}
	})
	f.svc = NewService(Config{
		Repo:      f.repo,
		Inventory: f.inv,
		Numerator: f.num,
		TxManager: f.tx,
		Events:    f.events,
		Now:       func() time.Time { return fixedNow },
	})
	return f
}

func line(itemType documents.ItemType, name, qty, price string) documents.LineItem {
	return documents.LineItem{
		ItemType:  itemType,
		ItemID:    id.New(),
		ItemName:  name,
		Quantity:  types.MustMoney(qty),
		UnitPrice: types.MustMoney(price),
	}
}

func money(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func TestCreateBill_TotalsAndInventory(t *testing.T) {
	f := newFixture()
	bread := line(documents.ItemProduct, "Sourdough", "2", "50")
	cola := line(documents.ItemStockItem, "Cola", "1", "30")

	res, err := f.svc.CreateBill(context.Background(), Input{
		PaymentMethod: PaymentCash,
		AmountPaid:    money("200"),
		Lines:         []documents.LineItem{bread, cola},
	}, nil, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "INV-202603140001", res.BillNumber)
	assert.True(t, res.Subtotal.Equal(decimal.NewFromInt(130)))
	assert.True(t, res.Total.Equal(decimal.NewFromInt(130)))
	assert.True(t, res.ChangeAmount.Equal(decimal.NewFromInt(70)))
	require.Len(t, res.Items, 2)
	assert.Equal(t, 1, res.Items[0].LineNumber)
	assert.True(t, res.Items[0].TotalPrice.Equal(decimal.NewFromInt(100)))

	require.Len(t, f.inv.reductions, 2)
	assert.Equal(t, bread.ItemID, f.inv.reductions[0].itemID)
	assert.Equal(t, documents.ItemProduct, f.inv.reductions[0].itemType)
	assert.Equal(t, documents.ItemStockItem, f.inv.reductions[1].itemType)
	assert.True(t, f.inv.reductions[0].inTx)

	stored, err := f.svc.GetBill(context.Background(), res.BillID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Len(t, stored.Lines, 2)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, domain.EventBillCreated, f.events.events[0].EventType)
}

func TestCreateBill_Discount(t *testing.T) {
	f := newFixture()

	res, err := f.svc.CreateBill(context.Background(), Input{
		DiscountPercent: decimal.NewFromInt(10),
		Lines:           []documents.LineItem{line(documents.ItemProduct, "Wedding cake", "1", "1000")},
	}, nil, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, res.DiscountAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, res.Total.Equal(decimal.NewFromInt(900)))
	assert.True(t, res.AmountPaid.Equal(decimal.NewFromInt(900)), "amount paid defaults to total")
	assert.True(t, res.ChangeAmount.IsZero())
}

func TestCreateBill_RollsBackWhenInventoryFails(t *testing.T) {
	f := newFixture()
	ok := line(documents.ItemProduct, "Croissant", "3", "20")
	bad := line(documents.ItemStockItem, "Juice", "1", "25")
	f.inv.failOn = bad.ItemID

	_, err := f.svc.CreateBill(context.Background(), Input{
		Lines: []documents.LineItem{ok, bad},
	}, nil, DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeTransactionFailed))

	assert.Empty(t, f.repo.bills)
	assert.Empty(t, f.inv.reductions)
	assert.Empty(t, f.events.events)
	assert.Equal(t, 1, f.tx.Rollbacks)
}

func TestCreateBill_SkipsInventory(t *testing.T) {
	f := newFixture()

	res, err := f.svc.CreateBill(context.Background(), Input{
		Lines: []documents.LineItem{line(documents.ItemProduct, "Bagel", "1", "15")},
	}, nil, Options{UpdateInventory: false, ForcedNumber: "ORD-202603140007"})
	require.NoError(t, err)

	assert.Equal(t, "ORD-202603140007", res.BillNumber)
	assert.Empty(t, f.inv.reductions)
}

func TestCreateBill_RetriesTakenNumber(t *testing.T) {
	f := newFixture()
	f.repo.numbers["INV-202603140001"] = id.New()

	res, err := f.svc.CreateBill(context.Background(), Input{
		Lines: []documents.LineItem{line(documents.ItemProduct, "Bun", "1", "5")},
	}, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "INV-202603140002", res.BillNumber)
	assert.Equal(t, 1, f.tx.Rollbacks)
}

func TestCreateBill_SkipsPastStoredNumbersAfterRollback(t *testing.T) {
	f := newFixture()
	for _, n := range []string{"INV-202603140001", "INV-202603140002", "INV-202603140003", "ORD-202603140009"} {
		f.repo.numbers[n] = id.New()
	}

	res, err := f.svc.CreateBill(context.Background(), Input{
		Lines: []documents.LineItem{line(documents.ItemProduct, "Bun", "1", "5")},
	}, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "INV-202603140004", res.BillNumber)
	assert.Equal(t, 1, f.tx.Rollbacks)

	next, err := f.svc.CreateBill(context.Background(), Input{
		Lines: []documents.LineItem{line(documents.ItemProduct, "Bun", "1", "5")},
	}, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "INV-202603140005", next.BillNumber)
	assert.Equal(t, 1, f.tx.Rollbacks)
}

func TestCreateBill_GivesUpAfterRetries(t *testing.T) {
	f := newFixture()
	f.num.NextNumberFunc = func(context.Context, numerator.Config, time.Time) (string, error) {
		return "INV-202603140001", nil
	}
	f.repo.numbers["INV-202603140001"] = id.New()

	_, err := f.svc.CreateBill(context.Background(), Input{
		Lines: []documents.LineItem{line(documents.ItemProduct, "Bun", "1", "5")},
	}, nil, DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNumberConflict))
	assert.Equal(t, DefaultRetryAttempts, f.tx.Rollbacks)
}

func TestCreateBill_ForcedNumberIsNotRetried(t *testing.T) {
	f := newFixture()
	f.repo.numbers["ORD-202603140001"] = id.New()

	_, err := f.svc.CreateBill(context.Background(), Input{
		Lines: []documents.LineItem{line(documents.ItemProduct, "Bun", "1", "5")},
	}, nil, Options{ForcedNumber: "ORD-202603140001"})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNumberConflict))
	assert.Equal(t, 1, f.tx.Rollbacks)
}

func TestCreateBill_Validation(t *testing.T) {
	f := newFixture()
	valid := []documents.LineItem{line(documents.ItemProduct, "Bun", "2", "5")}

	tests := []struct {
		name string
		in   Input
		code string
	}{
		{"empty cart", Input{}, apperror.CodeValidation},
		{"discount above 100", Input{DiscountPercent: decimal.NewFromInt(101), Lines: valid}, apperror.CodeValidation},
		{"negative discount", Input{DiscountPercent: decimal.NewFromInt(-1), Lines: valid}, apperror.CodeValidation},
		{"unknown payment", Input{PaymentMethod: "bitcoin", Lines: valid}, apperror.CodeValidation},
		{"underpaid", Input{AmountPaid: money("9.99"), Lines: valid}, apperror.CodeBusinessRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateBill(context.Background(), tt.in, nil, DefaultOptions())
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}
	assert.Zero(t, f.tx.Commits+f.tx.Rollbacks, "validation happens before the transaction")
}

func TestCancelBill(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.CreateBill(ctx, Input{
		Lines: []documents.LineItem{line(documents.ItemProduct, "Bun", "1", "5")},
	}, nil, DefaultOptions())
	require.NoError(t, err)

	changed, err := f.svc.CancelBill(ctx, res.BillID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.svc.CancelBill(ctx, res.BillID)
	require.NoError(t, err)
	assert.False(t, changed)

	b, err := f.svc.GetBill(ctx, res.BillID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)
	assert.Len(t, f.inv.reductions, 1, "cancel does not restore inventory")

	_, err = f.svc.CancelBill(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestListBills_RejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ListBills(context.Background(), ListFilter{Status: "refunded"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStatus))
}

func TestComputeTotals_RoundsHalfUp(t *testing.T) {
	lines := []documents.LineItem{line(documents.ItemProduct, "Cookie", "3", "3.335")}
	totals := ComputeTotals(lines, decimal.NewFromInt(15))

	assert.Equal(t, "10.01", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "1.50", totals.DiscountAmount.StringFixed(2))
	assert.Equal(t, "8.51", totals.Total.StringFixed(2))
}
