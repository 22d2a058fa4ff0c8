package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerypos/internal/core/apperror"
	appctx "bakerypos/internal/core/context"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/catalogs/brand"
	"bakerypos/internal/domain/documents"
	"bakerypos/internal/domain/documents/bill"
	"bakerypos/internal/domain/documents/order"
	"bakerypos/internal/infrastructure/http/v1/dto"
	"bakerypos/internal/infrastructure/http/v1/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const cashierID = "0190a4b2-0000-7000-8000-000000000002"

var colombo = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Colombo")
	if err != nil {
		panic(err)
	}
	return loc
}()

func newTestEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		ctx := appctx.WithUser(c.Request.Context(), &appctx.UserContext{
			UserID: cashierID, Username: "anna", Role: appctx.RoleCashier,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

// --- Bills ---

type fakePricer struct {
	calls int
	lines []documents.LineItem
	err   error
}

func (f *fakePricer) Price(_ context.Context, cart []documents.CartLine) ([]documents.LineItem, error) {
	f.calls++
	return f.lines, f.err
}

type fakeBills struct {
	BillService

	in        bill.Input
	cashierID *id.ID
	cancelled bool
	filter    bill.ListFilter
}

func (f *fakeBills) CreateBill(_ context.Context, in bill.Input, cashierID *id.ID, _ bill.Options) (*bill.Result, error) {
	f.in = in
	f.cashierID = cashierID
	return &bill.Result{BillID: id.New(), BillNumber: "BILL-202603150001", Total: types.MustMoney("90")}, nil
}

func (f *fakeBills) CancelBill(context.Context, id.ID) (bool, error) {
	if f.cancelled {
		return false, nil
	}
	f.cancelled = true
	return true, nil
}

func (f *fakeBills) ListBills(_ context.Context, filter bill.ListFilter) (domain.ListResult[*bill.Bill], error) {
	f.filter = filter
	return domain.ListResult[*bill.Bill]{Limit: filter.Limit}, nil
}

func billRouter(svc *fakeBills, pricer *fakePricer) *gin.Engine {
	h := NewBillHandler(NewBaseHandler(colombo), svc, pricer)
	r := newTestEngine()
	r.POST("/bills", h.Create)
	r.GET("/bills", h.List)
	r.POST("/bills/:id/cancel", h.Cancel)
	return r
}

func TestBillHandler_Create(t *testing.T) {
	priced := []documents.LineItem{{
		ItemType: documents.ItemProduct, ItemID: id.New(), ItemName: "Tea Bun",
		Quantity: types.MustMoney("2"), UnitPrice: types.MustMoney("50"), TotalPrice: types.MustMoney("100"),
	}}
	svc := &fakeBills{}
	pricer := &fakePricer{lines: priced}

	body := `{"items":[{"itemType":"product","itemId":"` + priced[0].ItemID.String() + `","quantity":"2"}],
		"discountPercent":"10","paymentMethod":"cash","amountPaid":"100"}`
	w := doJSON(billRouter(svc, pricer), http.MethodPost, "/bills", body)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"billNumber":"BILL-202603150001"`)

	assert.Equal(t, 1, pricer.calls)
	assert.Equal(t, priced, svc.in.Lines)
	assert.True(t, svc.in.DiscountPercent.Equal(types.MustMoney("10")))
	assert.Equal(t, bill.PaymentMethod("cash"), svc.in.PaymentMethod)
	require.NotNil(t, svc.in.AmountPaid)
	assert.True(t, svc.in.AmountPaid.Equal(types.MustMoney("100")))
	require.NotNil(t, svc.cashierID)
	assert.Equal(t, cashierID, svc.cashierID.String())
}

func TestBillHandler_Create_Rejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no items", `{"items":[]}`},
		{"unknown payment method", `{"items":[{"itemType":"product","itemId":"` + id.New().String() + `","quantity":"1"}],"paymentMethod":"crypto"}`},
		{"malformed", `{"items":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pricer := &fakePricer{}
			w := doJSON(billRouter(&fakeBills{}, pricer), http.MethodPost, "/bills", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, apperror.CodeValidation, errorCode(t, w))
			assert.Zero(t, pricer.calls)
		})
	}
}

func TestBillHandler_Create_PricingError(t *testing.T) {
	pricer := &fakePricer{err: apperror.NewNotFound("product", "x")}
	svc := &fakeBills{}

	w := doJSON(billRouter(svc, pricer), http.MethodPost, "/bills",
		`{"items":[{"itemType":"product","itemId":"`+id.New().String()+`","quantity":"1"}]}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Nil(t, svc.in.Lines)
}

func TestBillHandler_CancelTwice(t *testing.T) {
	r := billRouter(&fakeBills{}, &fakePricer{})
	path := "/bills/" + id.New().String() + "/cancel"

	w := doJSON(r, http.MethodPost, path, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cancelled":true}`, w.Body.String())

	w = doJSON(r, http.MethodPost, path, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cancelled":false}`, w.Body.String())
}

func TestBillHandler_List(t *testing.T) {
	svc := &fakeBills{}
	r := billRouter(svc, &fakePricer{})

	w := doJSON(r, http.MethodGet, "/bills?from=2026-03-01&to=2026-03-15&status=completed&cashierId="+cashierID, "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"items":[],"totalCount":0,"limit":50,"offset":0}`, w.Body.String())
	require.NotNil(t, svc.filter.From)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, colombo), *svc.filter.From)
	assert.Equal(t, bill.StatusCompleted, svc.filter.Status)
	require.NotNil(t, svc.filter.CashierID)
	assert.Equal(t, cashierID, svc.filter.CashierID.String())

	w = doJSON(r, http.MethodGet, "/bills?from=15-03-2026", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/bills?cashierId=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillHandler_BadID(t *testing.T) {
	w := doJSON(billRouter(&fakeBills{}, &fakePricer{}), http.MethodPost, "/bills/42/cancel", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Orders ---

type fakeOrders struct {
	OrderService

	in     order.Input
	status order.Status
	amount types.Money
}

func (f *fakeOrders) CreateOrder(_ context.Context, in order.Input, _ *id.ID) (*order.Result, error) {
	f.in = in
	return &order.Result{OrderID: id.New(), OrderNumber: "ORD-202603150001", CustomerName: in.CustomerName}, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, orderID id.ID, status order.Status) (*order.Order, error) {
	f.status = status
	o := &order.Order{Status: status}
	o.ID = orderID
	return o, nil
}

func (f *fakeOrders) AddPayment(_ context.Context, _ id.ID, amount types.Money) (*order.Order, error) {
	f.amount = amount
	return &order.Order{}, nil
}

func (f *fakeOrders) PendingOrders(context.Context) ([]*order.Order, error) { return nil, nil }
func (f *fakeOrders) PendingCount(context.Context) (int64, error)           { return 0, nil }

func orderRouter(svc *fakeOrders) *gin.Engine {
	h := NewOrderHandler(NewBaseHandler(colombo), svc)
	r := newTestEngine()
	r.POST("/orders", h.Create)
	r.GET("/orders/pending", h.Pending)
	r.PATCH("/orders/:id/status", h.UpdateStatus)
	r.POST("/orders/:id/payments", h.AddPayment)
	return r
}

func TestOrderHandler_Create_ParsesShopDays(t *testing.T) {
	svc := &fakeOrders{}
	body := `{"customerName":"Nimal","orderDate":"2026-03-15","deliveryDate":"2026-03-18",
		"advanceAmount":"500","items":[{"itemType":"product","itemId":"` + id.New().String() + `",
		"itemName":"Birthday Cake","quantity":"1","unitPrice":"2500","totalPrice":"2500"}]}`

	w := doJSON(orderRouter(svc), http.MethodPost, "/orders", body)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"orderNumber":"ORD-202603150001"`)
	require.NotNil(t, svc.in.OrderDate)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, colombo), *svc.in.OrderDate)
	require.NotNil(t, svc.in.DeliveryDate)
	assert.Equal(t, time.Date(2026, 3, 18, 0, 0, 0, 0, colombo), *svc.in.DeliveryDate)
	require.Len(t, svc.in.Lines, 1)
	assert.Equal(t, "Birthday Cake", svc.in.Lines[0].ItemName)
}

func TestOrderHandler_Create_BadDate(t *testing.T) {
	svc := &fakeOrders{}
	body := `{"customerName":"Nimal","orderDate":"tomorrow","items":[{"itemType":"product","itemId":"` +
		id.New().String() + `","quantity":"1","unitPrice":"1","totalPrice":"1"}]}`

	w := doJSON(orderRouter(svc), http.MethodPost, "/orders", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.in.CustomerName)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	svc := &fakeOrders{}
	r := orderRouter(svc)
	path := "/orders/" + id.New().String() + "/status"

	w := doJSON(r, http.MethodPatch, path, `{"status":"shipped"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.status)

	w = doJSON(r, http.MethodPatch, path, `{"status":"ready"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, order.StatusReady, svc.status)
}

func TestOrderHandler_AddPayment(t *testing.T) {
	svc := &fakeOrders{}

	w := doJSON(orderRouter(svc), http.MethodPost, "/orders/"+id.New().String()+"/payments", `{"amount":"250.50"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.amount.Equal(types.MustMoney("250.50")))
}

func TestOrderHandler_PendingEmpty(t *testing.T) {
	w := doJSON(orderRouter(&fakeOrders{}), http.MethodGet, "/orders/pending", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"count":0}`, w.Body.String())
}

// --- Catalog ---

type fakeBrandService struct {
	brands  map[id.ID]*brand.Brand
	updated *brand.Brand
	filter  domain.ListFilter
}

func (f *fakeBrandService) Create(_ context.Context, b *brand.Brand) error {
	f.brands[b.ID] = b
	return nil
}

func (f *fakeBrandService) GetByID(_ context.Context, brandID id.ID) (*brand.Brand, error) {
	b, ok := f.brands[brandID]
	if !ok {
		return nil, apperror.NewNotFound("brand", brandID.String())
	}
	return b, nil
}

func (f *fakeBrandService) Update(_ context.Context, b *brand.Brand) error {
	f.updated = b
	return nil
}

func (f *fakeBrandService) Deactivate(_ context.Context, brandID id.ID) error {
	if _, ok := f.brands[brandID]; !ok {
		return apperror.NewNotFound("brand", brandID.String())
	}
	return nil
}

func (f *fakeBrandService) List(_ context.Context, filter domain.ListFilter) (domain.ListResult[*brand.Brand], error) {
	f.filter = filter
	items := make([]*brand.Brand, 0, len(f.brands))
	for _, b := range f.brands {
		items = append(items, b)
	}
	return domain.ListResult[*brand.Brand]{Items: items, TotalCount: int64(len(items)), Limit: filter.Limit}, nil
}

func catalogRouter(svc *fakeBrandService) *gin.Engine {
	h := NewCatalogHandler(NewBaseHandler(colombo), CatalogHandlerConfig[*brand.Brand, dto.CreateBrandRequest, dto.UpdateBrandRequest]{
		Service:      svc,
		EntityName:   "brand",
		MapCreateDTO: (*dto.CreateBrandRequest).ToEntity,
		ApplyUpdate:  (*dto.UpdateBrandRequest).ApplyTo,
	})
	r := newTestEngine()
	r.GET("/brands", h.List)
	r.GET("/brands/:id", h.Get)
	r.POST("/brands", h.Create)
	r.PUT("/brands/:id", h.Update)
	r.DELETE("/brands/:id", h.Delete)
	return r
}

func TestCatalogHandler_CreateAndList(t *testing.T) {
	svc := &fakeBrandService{brands: map[id.ID]*brand.Brand{}}
	r := catalogRouter(svc)

	w := doJSON(r, http.MethodPost, "/brands", `{"name":"House Bakery"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"name":"House Bakery"`)
	assert.Len(t, svc.brands, 1)

	w = doJSON(r, http.MethodGet, "/brands?search=house&limit=5&includeInactive=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "house", svc.filter.Search)
	assert.Equal(t, 5, svc.filter.Limit)
	assert.True(t, svc.filter.IncludeInactive)
	assert.Contains(t, w.Body.String(), `"totalCount":1`)

	w = doJSON(r, http.MethodPost, "/brands", `{"description":"no name"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandler_UpdateAndDelete(t *testing.T) {
	b := brand.NewBrand("Sunrise")
	svc := &fakeBrandService{brands: map[id.ID]*brand.Brand{b.ID: b}}
	r := catalogRouter(svc)

	w := doJSON(r, http.MethodPut, "/brands/"+b.ID.String(), `{"name":"Sunrise Rolls","status":"inactive","version":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, svc.updated)
	assert.Equal(t, "Sunrise Rolls", svc.updated.Name)
	assert.Equal(t, "inactive", string(svc.updated.Status))

	w = doJSON(r, http.MethodPut, "/brands/"+b.ID.String(), `{"name":"Sunrise Rolls"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodDelete, "/brands/"+b.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodDelete, "/brands/"+id.New().String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeNotFound, errorCode(t, w))
}

// --- Helpers ---

func TestParseDay(t *testing.T) {
	h := NewBaseHandler(colombo)

	day, err := h.ParseDay("from", " 2026-03-15 ")
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, colombo), *day)

	day, err = h.ParseDay("from", "")
	require.NoError(t, err)
	assert.Nil(t, day)

	_, err = h.ParseDay("from", "2026/03/15")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
