package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embire2/DayResellers-sub000/internal/cache"
	"github.com/embire2/DayResellers-sub000/internal/events"
	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/repository"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// memOrderStore mirrors the conditional transitions of the SQL store.
type memOrderStore struct {
	mu            sync.Mutex
	nextID        int
	orders        map[int]*models.ProductOrder
	userProducts  []*models.UserProduct
	credit        map[int]decimal.Decimal
	charges       []decimal.Decimal
	failProvision bool
	createErr     error
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{orders: map[int]*models.ProductOrder{}, credit: map[int]decimal.Decimal{}}
}

func (m *memOrderStore) Create(_ context.Context, o *models.ProductOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	o.ID = m.nextID
	o.CreatedAt = time.Now()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrderStore) GetByID(_ context.Context, id int) (*models.ProductOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderStore) List(_ context.Context, f repository.OrderFilter) ([]models.ProductOrder, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ProductOrder{}
	for _, o := range m.orders {
		if f.ResellerID != nil && o.ResellerID != *f.ResellerID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (m *memOrderStore) Approve(_ context.Context, id int, p repository.ApproveParams) (*repository.ApproveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if o.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: status is %s", repository.ErrOrderNotPending, o.Status)
	}
	if m.failProvision {
		return nil, &repository.StageError{Stage: repository.StageProvision, Err: errors.New("insert failed")}
	}
	if p.Charge.IsPositive() {
		if m.credit[o.ResellerID].LessThan(p.Charge) {
			return nil, repository.ErrInsufficientCredit
		}
		m.credit[o.ResellerID] = m.credit[o.ResellerID].Sub(p.Charge)
		m.charges = append(m.charges, p.Charge)
	}

	o.Status = models.OrderStatusActive
	up := models.NewUserProductFromOrder(o)
	up.ID = len(m.userProducts) + 1
	m.userProducts = append(m.userProducts, up)
	cp := *o
	return &repository.ApproveResult{Order: &cp, UserProduct: up}, nil
}

func (m *memOrderStore) Reject(_ context.Context, id int, reason string) (*models.ProductOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if o.Status != models.OrderStatusPending {
		return nil, repository.ErrOrderNotPending
	}
	o.Status = models.OrderStatusRejected
	o.RejectionReason = &reason
	cp := *o
	return &cp, nil
}

type memProducts map[int]*models.Product

func (m memProducts) GetByID(_ context.Context, id int) (*models.Product, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

type memClients map[int]*models.Client

func (m memClients) GetByID(_ context.Context, id int) (*models.Client, error) {
	if c, ok := m[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type memUsers map[int]*models.User

func (m memUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.OrderEvent
}

func (r *recordingPublisher) Name() string { return "recording" }

func (r *recordingPublisher) Publish(_ context.Context, ev *events.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

var (
	admin    = Actor{UserID: 1, Role: models.RoleAdmin}
	reseller = Actor{UserID: 3, Role: models.RoleReseller}
	other    = Actor{UserID: 4, Role: models.RoleReseller}
)

type orderFixture struct {
	svc   *OrderService
	store *memOrderStore
	pub   *recordingPublisher
}

func newOrderFixture(chargeOnApproval bool) *orderFixture {
	store := newMemOrderStore()
	pub := &recordingPublisher{}
	products := memProducts{
		9:  {ID: 9, Name: "Fixed LTE 100GB", BasePrice: decimal.NewFromInt(100), Status: models.ProductStatusActive},
		10: {ID: 10, Name: "Retired", BasePrice: decimal.NewFromInt(100), Status: models.ProductStatusInactive},
	}
	clients := memClients{
		5: {ID: 5, ResellerID: 3, Name: "Acme"},
		6: {ID: 6, ResellerID: 4, Name: "Globex"},
	}
	users := memUsers{
		3: {ID: 3, Username: "reseller", Role: models.RoleReseller},
	}
	svc := NewOrderService(store, products, clients, users, pub, chargeOnApproval)
	return &orderFixture{svc: svc, store: store, pub: pub}
}

func str(s string) *string { return &s }

func selfRequest() *SubmitOrderRequest {
	return &SubmitOrderRequest{ClientID: 5, ProductID: 9, ProvisionMethod: "self", SimNumber: str("8927000000000000001")}
}

func (f *orderFixture) pendingOrder(t *testing.T) *models.ProductOrder {
	t.Helper()
	o, err := f.svc.SubmitOrder(context.Background(), reseller, selfRequest())
	require.NoError(t, err)
	return o
}

func TestSubmitOrderSelfProvisioning(t *testing.T) {
	f := newOrderFixture(false)

	o, err := f.svc.SubmitOrder(context.Background(), reseller, selfRequest())
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Equal(t, 3, o.ResellerID)
	assert.Equal(t, []events.EventType{events.OrderSubmitted}, f.pub.types())
}

func TestSubmitOrderRejectsMismatchedPayload(t *testing.T) {
	tests := []struct {
		name string
		req  *SubmitOrderRequest
	}{
		{"self with courier fields", &SubmitOrderRequest{ClientID: 5, ProductID: 9, ProvisionMethod: "self",
			SimNumber: str("8927"), Address: str("12 Long Street"), ContactName: str("Thandi"), ContactPhone: str("+27821234567")}},
		{"self with neither", &SubmitOrderRequest{ClientID: 5, ProductID: 9, ProvisionMethod: "self"}},
		{"self with blank sim", &SubmitOrderRequest{ClientID: 5, ProductID: 9, ProvisionMethod: "self", SimNumber: str("  ")}},
		{"courier missing contact", &SubmitOrderRequest{ClientID: 5, ProductID: 9, ProvisionMethod: "courier", Address: str("12 Long Street")}},
		{"unknown method", &SubmitOrderRequest{ClientID: 5, ProductID: 9, ProvisionMethod: "pigeon", SimNumber: str("8927")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(false)
			_, err := f.svc.SubmitOrder(context.Background(), reseller, tt.req)
			assert.ErrorIs(t, err, utils.ErrValidation)
			assert.Empty(t, f.store.orders)
			assert.Empty(t, f.pub.types())
		})
	}
}

func TestSubmitOrderCourierDefaultsCountry(t *testing.T) {
	f := newOrderFixture(false)
	o, err := f.svc.SubmitOrder(context.Background(), reseller, &SubmitOrderRequest{
		ClientID: 5, ProductID: 9, ProvisionMethod: "courier",
		Address: str("12 Long Street"), ContactName: str("Thandi"), ContactPhone: str("+27821234567"),
	})
	require.NoError(t, err)
	require.NotNil(t, o.Country)
	assert.Equal(t, models.DefaultCountry, *o.Country)
}

func TestSubmitOrderOwnershipAndLookups(t *testing.T) {
	f := newOrderFixture(false)
	ctx := context.Background()

	req := selfRequest()
	req.ClientID = 6
	_, err := f.svc.SubmitOrder(ctx, reseller, req)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	req = selfRequest()
	req.ResellerID = 4
	_, err = f.svc.SubmitOrder(ctx, reseller, req)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	req = selfRequest()
	req.ProductID = 99
	_, err = f.svc.SubmitOrder(ctx, reseller, req)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	req = selfRequest()
	req.ClientID = 99
	_, err = f.svc.SubmitOrder(ctx, reseller, req)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	req = selfRequest()
	req.ProductID = 10
	_, err = f.svc.SubmitOrder(ctx, reseller, req)
	assert.Equal(t, "PRODUCT_INACTIVE", utils.CodeOf(err))

	_, err = f.svc.SubmitOrder(ctx, admin, selfRequest())
	assert.Equal(t, "RESELLER_REQUIRED", utils.CodeOf(err))

	req = selfRequest()
	req.ResellerID = 3
	o, err := f.svc.SubmitOrder(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, 3, o.ResellerID)
}

func TestApproveOrderProvisionsUserProduct(t *testing.T) {
	f := newOrderFixture(false)
	pending := f.pendingOrder(t)

	o, err := f.svc.ApproveOrder(context.Background(), pending.ID, admin)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusActive, o.Status)
	require.Len(t, f.store.userProducts, 1)
	up := f.store.userProducts[0]
	assert.Equal(t, pending.ResellerID, up.UserID)
	assert.Equal(t, pending.ProductID, up.ProductID)
	assert.Equal(t, models.UserProductActive, up.Status)
	assert.Equal(t, *pending.SimNumber, *up.SimNumber)
	assert.Equal(t, models.ProvisionedComment(pending.ID), *up.Comments)

	assert.Equal(t, []events.EventType{events.OrderSubmitted, events.OrderApproved}, f.pub.types())
	assert.Equal(t, up.ID, f.pub.events[1].UserProductID)
}

func TestApproveOrderRequiresAdmin(t *testing.T) {
	f := newOrderFixture(false)
	pending := f.pendingOrder(t)

	_, err := f.svc.ApproveOrder(context.Background(), pending.ID, reseller)
	assert.ErrorIs(t, err, utils.ErrForbidden)
	assert.Equal(t, models.OrderStatusPending, f.store.orders[pending.ID].Status)
	assert.Empty(t, f.store.userProducts)
}

func TestTransitionsFromTerminalStateFail(t *testing.T) {
	f := newOrderFixture(false)
	ctx := context.Background()
	approved := f.pendingOrder(t)
	_, err := f.svc.ApproveOrder(ctx, approved.ID, admin)
	require.NoError(t, err)

	_, err = f.svc.ApproveOrder(ctx, approved.ID, admin)
	assert.ErrorIs(t, err, utils.ErrValidation)
	assert.Equal(t, "INVALID_STATE", utils.CodeOf(err))

	_, err = f.svc.RejectOrder(ctx, approved.ID, admin, "too late")
	assert.Equal(t, "INVALID_STATE", utils.CodeOf(err))

	assert.Len(t, f.store.userProducts, 1)
	assert.Equal(t, models.OrderStatusActive, f.store.orders[approved.ID].Status)
}

func TestApproveMissingOrder(t *testing.T) {
	f := newOrderFixture(false)

	_, err := f.svc.ApproveOrder(context.Background(), 404, admin)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.OrderID)
}

func TestConcurrentApproveProvisionsOnce(t *testing.T) {
	f := newOrderFixture(false)
	pending := f.pendingOrder(t)

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ApproveOrder(context.Background(), pending.ID, admin)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, utils.ErrValidation)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.store.userProducts, 1)
}

func TestApproveProvisionFailureLeavesOrderPending(t *testing.T) {
	f := newOrderFixture(false)
	pending := f.pendingOrder(t)
	f.store.failProvision = true

	_, err := f.svc.ApproveOrder(context.Background(), pending.ID, admin)
	assert.ErrorIs(t, err, utils.ErrPartialProvisioning)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, repository.StageProvision, appErr.Stage)
	assert.Equal(t, pending.ID, appErr.OrderID)
	assert.Equal(t, models.OrderStatusPending, f.store.orders[pending.ID].Status)
}

func TestApproveChargesProRataPrice(t *testing.T) {
	f := newOrderFixture(true)
	f.svc.now = func() time.Time { return time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC) }
	f.store.credit[3] = decimal.NewFromInt(100)
	pending := f.pendingOrder(t)

	_, err := f.svc.ApproveOrder(context.Background(), pending.ID, admin)
	require.NoError(t, err)

	require.Len(t, f.store.charges, 1)
	assert.Equal(t, "54.00", f.store.charges[0].StringFixed(2))
	assert.Equal(t, "46.00", f.store.credit[3].StringFixed(2))
}

func TestApproveChargeUsesBillingZoneDay(t *testing.T) {
	// 23:00 UTC on 31 January is already 1 February in the billing zone.
	now := time.Date(2026, time.January, 31, 23, 0, 0, 0, time.UTC)
	f := newOrderFixture(true)
	f.svc.now = func() time.Time { return now }
	f.store.credit[3] = decimal.NewFromInt(500)
	pending := f.pendingOrder(t)

	quotes := NewQuoteService(memProducts{9: {ID: 9, BasePrice: decimal.NewFromInt(100), Status: models.ProductStatusActive}},
		memUsers{3: {ID: 3, Role: models.RoleReseller}}, &memQuotes{items: map[string]*cache.Quote{}})
	quotes.now = func() time.Time { return now }
	quote, err := quotes.Quote(context.Background(), reseller, 9, QuoteRequest{})
	require.NoError(t, err)
	require.Equal(t, "2026-02-01", quote.ReferenceDate)

	_, err = f.svc.ApproveOrder(context.Background(), pending.ID, admin)
	require.NoError(t, err)

	require.Len(t, f.store.charges, 1)
	assert.Equal(t, "100.00", f.store.charges[0].StringFixed(2))
	assert.Equal(t, quote.FinalPrice.StringFixed(2), f.store.charges[0].StringFixed(2))
}

func TestSubmitOrderReferenceRace(t *testing.T) {
	f := newOrderFixture(false)
	f.store.createErr = repository.ErrInUse

	_, err := f.svc.SubmitOrder(context.Background(), reseller, selfRequest())

	assert.ErrorIs(t, err, utils.ErrValidation)
	assert.Equal(t, "INVALID_REFERENCE", utils.CodeOf(err))
}

func TestApproveInsufficientCreditKeepsOrderPending(t *testing.T) {
	f := newOrderFixture(true)
	f.store.credit[3] = decimal.NewFromInt(1)
	pending := f.pendingOrder(t)

	_, err := f.svc.ApproveOrder(context.Background(), pending.ID, admin)
	assert.ErrorIs(t, err, utils.ErrInsufficientCredit)
	assert.Equal(t, models.OrderStatusPending, f.store.orders[pending.ID].Status)
	assert.Empty(t, f.store.userProducts)
}

func TestRejectOrderRequiresReason(t *testing.T) {
	f := newOrderFixture(false)
	pending := f.pendingOrder(t)

	for _, reason := range []string{"", "   "} {
		_, err := f.svc.RejectOrder(context.Background(), pending.ID, admin, reason)
		assert.ErrorIs(t, err, utils.ErrValidation)
	}
	assert.Equal(t, models.OrderStatusPending, f.store.orders[pending.ID].Status)
}

func TestRejectOrderStoresReason(t *testing.T) {
	f := newOrderFixture(false)
	pending := f.pendingOrder(t)

	_, err := f.svc.RejectOrder(context.Background(), pending.ID, reseller, "no stock")
	assert.ErrorIs(t, err, utils.ErrForbidden)

	o, err := f.svc.RejectOrder(context.Background(), pending.ID, admin, "  SIM out of stock ")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusRejected, o.Status)
	assert.Equal(t, "SIM out of stock", *o.RejectionReason)
	assert.Empty(t, f.store.userProducts)
	assert.Equal(t, []events.EventType{events.OrderSubmitted, events.OrderRejected}, f.pub.types())
}

func TestOrderVisibility(t *testing.T) {
	f := newOrderFixture(false)
	ctx := context.Background()
	pending := f.pendingOrder(t)

	_, err := f.svc.GetOrder(ctx, pending.ID, other)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = f.svc.GetOrder(ctx, pending.ID, admin)
	assert.NoError(t, err)

	own, total, err := f.svc.ListOrders(ctx, other, OrderListRequest{})
	require.NoError(t, err)
	assert.Empty(t, own)
	assert.Zero(t, total)

	all, _, err := f.svc.ListOrders(ctx, admin, OrderListRequest{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, _, err = f.svc.ListOrders(ctx, admin, OrderListRequest{Status: "shipped"})
	assert.ErrorIs(t, err, utils.ErrValidation)
}
