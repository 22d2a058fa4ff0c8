package stock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/tx/txtest"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain"
)

type rowKey struct {
	product id.ID
	day     string
}

// memRepo applies the same atomic deltas as the SQL repository.
type memRepo struct {
	rows       map[rowKey]*Stock
	stockItems map[id.ID]types.Quantity
	inTx       []bool
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[rowKey]*Stock{}, stockItems: map[id.ID]types.Quantity{}}
}

func (m *memRepo) AddStock(ctx context.Context, productID id.ID, qty types.Quantity, day time.Time, addedBy *id.ID) (*Stock, error) {
	m.inTx = append(m.inTx, txtest.InTx(ctx))
	k := rowKey{productID, day.Format(time.DateOnly)}
	row, ok := m.rows[k]
	if !ok {
		row = &Stock{ID: id.New(), ProductID: productID, StockDate: day, AddedBy: addedBy}
		m.rows[k] = row
	}
	row.Quantity = row.Quantity.Add(qty)
	row.QuantityBalance = row.QuantityBalance.Add(qty)
	cp := *row
	return &cp, nil
}

func (m *memRepo) ReduceStock(ctx context.Context, productID id.ID, qty types.Quantity, day time.Time) error {
	m.inTx = append(m.inTx, txtest.InTx(ctx))
	k := rowKey{productID, day.Format(time.DateOnly)}
	row, ok := m.rows[k]
	if !ok {
		row = &Stock{ID: id.New(), ProductID: productID, StockDate: day}
		m.rows[k] = row
	}
	row.QuantityBalance = row.QuantityBalance.Sub(qty)
	return nil
}

func (m *memRepo) ClearBalance(_ context.Context, stockID id.ID) (*Stock, error) {
	for _, row := range m.rows {
		if row.ID == stockID {
			row.QuantityBalance = decimal.Zero
			cp := *row
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("stock", stockID.String())
}

func (m *memRepo) AddStockItemQuantity(_ context.Context, itemID id.ID, qty types.Quantity) error {
	cur, ok := m.stockItems[itemID]
	if !ok {
		return apperror.NewNotFound("stock item", itemID.String())
	}
	m.stockItems[itemID] = cur.Add(qty)
	return nil
}

func (m *memRepo) ReduceStockItemQuantity(_ context.Context, itemID id.ID, qty types.Quantity) error {
	cur, ok := m.stockItems[itemID]
	if !ok {
		return apperror.NewNotFound("stock item", itemID.String())
	}
	m.stockItems[itemID] = cur.Sub(qty)
	return nil
}

func (m *memRepo) CurrentStock(context.Context, time.Time) ([]StockView, error) { return nil, nil }
func (m *memRepo) DayStock(context.Context, time.Time) ([]StockView, error)     { return nil, nil }
func (m *memRepo) ProductHistory(context.Context, id.ID, int) ([]Stock, error)  { return nil, nil }
func (m *memRepo) Report(context.Context, time.Time, time.Time) ([]ReportRow, error) {
	return nil, nil
}

type productSet map[id.ID]bool

func (p productSet) Exists(_ context.Context, productID id.ID) (bool, error) {
	return p[productID], nil
}

type recordingPublisher struct {
	events []domain.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e domain.Event) error {
	r.events = append(r.events, e)
	return nil
}

var fixedNow = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

func newService(repo *memRepo, products productSet) (*Service, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewService(Config{
		Repo:      repo,
		Products:  products,
		TxManager: txtest.New(),
		Events:    pub,
		Now:       func() time.Time { return fixedNow },
	}), pub
}

func q(s string) types.Quantity { return types.MustMoney(s) }

func TestAddStock_AccumulatesPerDay(t *testing.T) {
	productID := id.New()
	repo := newMemRepo()
	svc, pub := newService(repo, productSet{productID: true})
	ctx := context.Background()

	_, err := svc.AddStock(ctx, productID, q("20"), time.Time{}, nil)
	require.NoError(t, err)
	row, err := svc.AddStock(ctx, productID, q("5"), time.Time{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "25", row.Quantity.String())
	assert.Equal(t, "25", row.QuantityBalance.String())
	assert.Equal(t, "2026-10-19", row.StockDate.Format(time.DateOnly))
	assert.Len(t, repo.rows, 1)
	assert.Equal(t, []bool{true, true}, repo.inTx)
	require.Len(t, pub.events, 2)
	assert.Equal(t, domain.EventStockAdded, pub.events[0].EventType)
}

func TestAddStock_Validation(t *testing.T) {
	productID := id.New()
	svc, _ := newService(newMemRepo(), productSet{productID: true})

	_, err := svc.AddStock(context.Background(), productID, q("0"), time.Time{}, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.AddStock(context.Background(), id.New(), q("1"), time.Time{}, nil)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReduceStock_NoFloor(t *testing.T) {
	productID := id.New()
	repo := newMemRepo()
	svc, _ := newService(repo, productSet{productID: true})
	ctx := context.Background()

	_, err := svc.AddStock(ctx, productID, q("3"), time.Time{}, nil)
	require.NoError(t, err)
	require.NoError(t, svc.ReduceStock(ctx, productID, q("2"), time.Time{}))
	require.NoError(t, svc.ReduceStock(ctx, productID, q("2"), time.Time{}))

	row := repo.rows[rowKey{productID, "2026-10-19"}]
	assert.Equal(t, "3", row.Quantity.String())
	assert.Equal(t, "-1", row.QuantityBalance.String())
}

func TestReduceStock_WithoutRowForDay(t *testing.T) {
	productID := id.New()
	repo := newMemRepo()
	svc, _ := newService(repo, productSet{productID: true})

	require.NoError(t, svc.ReduceStock(context.Background(), productID, q("1.5"), time.Time{}))

	row := repo.rows[rowKey{productID, "2026-10-19"}]
	require.NotNil(t, row)
	assert.True(t, row.Quantity.IsZero())
	assert.Equal(t, "-1.5", row.QuantityBalance.String())
}

func TestClearStockBalance(t *testing.T) {
	productID := id.New()
	repo := newMemRepo()
	svc, _ := newService(repo, productSet{productID: true})
	ctx := context.Background()

	added, err := svc.AddStock(ctx, productID, q("10"), time.Time{}, nil)
	require.NoError(t, err)

	cleared, err := svc.ClearStockBalance(ctx, added.ID)
	require.NoError(t, err)
	assert.True(t, cleared.QuantityBalance.IsZero())
	assert.Equal(t, "10", cleared.Quantity.String())

	_, err = svc.ClearStockBalance(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestStockItemQuantity(t *testing.T) {
	itemID := id.New()
	repo := newMemRepo()
	repo.stockItems[itemID] = q("1")
	svc, _ := newService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.AddStockItemQuantity(ctx, itemID, q("4")))
	require.NoError(t, svc.ReduceStockItemQuantity(ctx, itemID, q("7")))
	assert.Equal(t, "-2", repo.stockItems[itemID].String())

	err := svc.ReduceStockItemQuantity(ctx, id.New(), q("1"))
	assert.True(t, apperror.IsNotFound(err))

	err = svc.AddStockItemQuantity(ctx, itemID, q("-1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestStockReport_RejectsInvertedRange(t *testing.T) {
	svc, _ := newService(newMemRepo(), nil)
	_, err := svc.StockReport(context.Background(), fixedNow, fixedNow.AddDate(0, 0, -1))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestReduceStock_PropagatesRepoError(t *testing.T) {
	svc := NewService(Config{Repo: failingRepo{newMemRepo()}, TxManager: txtest.New()})
	err := svc.ReduceStock(context.Background(), id.New(), q("1"), time.Time{})
	assert.ErrorContains(t, err, "deadlock")
}

type failingRepo struct{ *memRepo }

func (failingRepo) ReduceStock(context.Context, id.ID, types.Quantity, time.Time) error {
	return errors.New("deadlock detected")
}
