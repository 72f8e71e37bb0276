package services

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/menux-backend/kds"
	"github.com/yeremiapane/menux-backend/locks"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/testutil"
	"github.com/yeremiapane/menux-backend/utils"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

type harness struct {
	db       *gorm.DB
	f        *testutil.Fixture
	clock    *testutil.Clock
	events   *kds.MemorySink
	orders   *OrderService
	payments *PaymentService
	monitor  *PaymentMonitor
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	h := &harness{
		db:      db,
		f:       testutil.Seed(t, db, "alpha"),
		clock:   testutil.NewClock(),
		events:  &kds.MemorySink{},
		monitor: NewPaymentMonitor(),
	}
	h.orders = NewOrderService(db, locks.NewLocalLocker(), kds.NewHub(h.events), WithClock(h.clock.Now))
	h.payments = NewPaymentService(h.orders, h.monitor)
	return h
}

func (h *harness) ctx() context.Context { return context.Background() }

// placeOrder creates a takeaway order for one burger.
func (h *harness) placeOrder(t *testing.T) uuid.UUID {
	t.Helper()
	res, err := h.orders.CreateOrder(h.ctx(), CreateOrderRequest{
		Slug:  h.f.Restaurant.Slug,
		Items: []OrderLineRequest{{MenuItemID: &h.f.Burger.ID, Quantity: intPtr(1)}},
	})
	require.NoError(t, err)
	return res.OrderID
}

func (h *harness) advance(t *testing.T, orderID uuid.UUID, statuses ...models.OrderStatus) {
	t.Helper()
	for _, s := range statuses {
		_, err := h.orders.ChangeOrderStatus(h.ctx(), h.f.Restaurant.ID, orderID, s)
		require.NoError(t, err)
	}
}

func (h *harness) view(t *testing.T, orderID uuid.UUID) *OrderView {
	t.Helper()
	v, err := h.orders.GetOrder(h.ctx(), h.f.Restaurant.ID, orderID)
	require.NoError(t, err)
	return v
}

func historyOf(v *OrderView) []models.OrderStatus {
	var out []models.OrderStatus
	for _, h := range v.StatusHistory {
		out = append(out, h.Status)
	}
	return out
}

func assertInSync(t *testing.T, v *OrderView) {
	t.Helper()
	require.NotNil(t, v.KitchenTicket)
	want, ok := models.KitchenStatusFor(v.Status)
	require.True(t, ok)
	assert.Equal(t, want, v.KitchenTicket.Status, "order %s vs ticket %s", v.Status, v.KitchenTicket.Status)
}

func TestCreateOrderScenarioA(t *testing.T) {
	h := newHarness(t)

	res, err := h.orders.CreateOrder(h.ctx(), CreateOrderRequest{
		Slug:    "ALPHA",
		TableID: &h.f.Table.ID,
		Items: []OrderLineRequest{
			{MenuItemID: &h.f.Burger.ID, Quantity: intPtr(2)},
			{MenuItemID: &h.f.Fries.ID, VariantID: &h.f.Cheesy.ID, Quantity: intPtr(1), Instruction: "extra salt"},
		},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(260).Equal(res.TotalAmount), res.TotalAmount.String())
	assert.True(t, res.PaymentRequired)

	v := h.view(t, res.OrderID)
	assert.Equal(t, models.OrderTypeDineIn, v.OrderType)
	assert.Equal(t, models.OrderStatusPending, v.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, v.PaymentStatus)
	require.NotNil(t, v.TableNumber)
	assert.Equal(t, "T1", *v.TableNumber)
	assert.Len(t, v.Items, 2)
	assert.Equal(t, []models.OrderStatus{models.OrderStatusPending}, historyOf(v))
	require.NotNil(t, v.KitchenTicket)
	assert.Equal(t, models.KitchenStatusNew, v.KitchenTicket.Status)

	sum := decimal.Zero
	for _, it := range v.Items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	assert.True(t, sum.Equal(v.TotalAmount))
	assert.Equal(t, []string{kds.EventOrderCreated}, h.events.Types())
}

func TestCreateOrderFreeOrderNeedsNoPayment(t *testing.T) {
	h := newHarness(t)
	res, err := h.orders.CreateOrder(h.ctx(), CreateOrderRequest{
		Slug:   h.f.Restaurant.Slug,
		RoomID: &h.f.Room.ID,
		Items:  []OrderLineRequest{{MenuItemID: &h.f.Water.ID, Quantity: intPtr(4)}},
	})
	require.NoError(t, err)
	assert.True(t, res.TotalAmount.IsZero())
	assert.False(t, res.PaymentRequired)
	assert.Equal(t, models.OrderTypeRoomService, h.view(t, res.OrderID).OrderType)
}

func TestCreateOrderRejections(t *testing.T) {
	h := newHarness(t)
	other := testutil.Seed(t, h.db, "beta")
	noOnline := testutil.Seed(t, h.db, "offline")
	require.NoError(t, h.db.Model(&noOnline.Subscription).Update("allow_online_orders", false).Error)
	inactiveTable := models.RestaurantTable{RestaurantID: h.f.Restaurant.ID, TableNumber: "T9", Active: true}
	require.NoError(t, h.db.Create(&inactiveTable).Error)
	testutil.Deactivate(t, h.db, &inactiveTable)

	burger := []OrderLineRequest{{MenuItemID: &h.f.Burger.ID, Quantity: intPtr(1)}}
	tests := []struct {
		name string
		req  CreateOrderRequest
		kind utils.ErrorKind
	}{
		{"unknown restaurant", CreateOrderRequest{Slug: "nope", Items: burger}, utils.KindNotFound},
		{"online ordering disabled", CreateOrderRequest{Slug: "offline", Items: []OrderLineRequest{{MenuItemID: &noOnline.Burger.ID, Quantity: intPtr(1)}}}, utils.KindValidation},
		{"table and room", CreateOrderRequest{Slug: "alpha", TableID: &h.f.Table.ID, RoomID: &h.f.Room.ID, Items: burger}, utils.KindValidation},
		{"table of other tenant", CreateOrderRequest{Slug: "alpha", TableID: &other.Table.ID, Items: burger}, utils.KindNotFound},
		{"room of other tenant", CreateOrderRequest{Slug: "alpha", RoomID: &other.Room.ID, Items: burger}, utils.KindNotFound},
		{"inactive table", CreateOrderRequest{Slug: "alpha", TableID: &inactiveTable.ID, Items: burger}, utils.KindValidation},
		{"no items", CreateOrderRequest{Slug: "alpha"}, utils.KindValidation},
		{"missing item id", CreateOrderRequest{Slug: "alpha", Items: []OrderLineRequest{{Quantity: intPtr(1)}}}, utils.KindValidation},
		{"item of other tenant", CreateOrderRequest{Slug: "alpha", Items: []OrderLineRequest{{MenuItemID: &other.Burger.ID, Quantity: intPtr(1)}}}, utils.KindValidation},
		{"sold out", CreateOrderRequest{Slug: "alpha", Items: []OrderLineRequest{{MenuItemID: &h.f.SoldOut.ID, Quantity: intPtr(1)}}}, utils.KindValidation},
		{"negative price", CreateOrderRequest{Slug: "alpha", Items: []OrderLineRequest{{MenuItemID: &h.f.Fries.ID, VariantID: &h.f.Discount.ID, Quantity: intPtr(1)}}}, utils.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.orders.CreateOrder(h.ctx(), tt.req)
			assert.Equal(t, tt.kind, utils.KindOf(err), "err: %v", err)
		})
	}

	var count int64
	require.NoError(t, h.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, h.events.Events())
}

func TestChangeOrderStatusFullLifecycle(t *testing.T) {
	h := newHarness(t)
	id := h.placeOrder(t)

	for _, next := range []models.OrderStatus{
		models.OrderStatusAccepted,
		models.OrderStatusCooking,
		models.OrderStatusReady,
		models.OrderStatusServed,
	} {
		h.clock.Advance(time.Minute)
		v, err := h.orders.ChangeOrderStatus(h.ctx(), h.f.Restaurant.ID, id, next)
		require.NoError(t, err)
		assert.Equal(t, next, v.Status)
		assertInSync(t, v)
	}

	v := h.view(t, id)
	assertValidPath(t, historyOf(v))
	assert.Len(t, v.StatusHistory, 5)
	assert.True(t, v.KitchenTicket.UpdatedAt.After(v.KitchenTicket.CreatedAt))

	_, err := h.orders.ChangeOrderStatus(h.ctx(), h.f.Restaurant.ID, id, models.OrderStatusCancelled)
	assert.Equal(t, utils.KindInvalidTransition, utils.KindOf(err))
}

func TestChangeOrderStatusSameStatusIsNoop(t *testing.T) {
	h := newHarness(t)
	id := h.placeOrder(t)
	h.advance(t, id, models.OrderStatusAccepted)
	before := len(h.events.Events())

	v, err := h.orders.ChangeOrderStatus(h.ctx(), h.f.Restaurant.ID, id, models.OrderStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, []models.OrderStatus{models.OrderStatusPending, models.OrderStatusAccepted}, historyOf(v))
	assert.Len(t, h.events.Events(), before)
}

func TestChangeOrderStatusRejections(t *testing.T) {
	h := newHarness(t)
	other := testutil.Seed(t, h.db, "beta")
	id := h.placeOrder(t)

	_, err := h.orders.ChangeOrderStatus(h.ctx(), h.f.Restaurant.ID, id, models.OrderStatusReady)
	assert.Equal(t, utils.KindInvalidTransition, utils.KindOf(err))

	_, err = h.orders.ChangeOrderStatus(h.ctx(), other.Restaurant.ID, id, models.OrderStatusAccepted)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = h.orders.ChangeOrderStatus(h.ctx(), h.f.Restaurant.ID, id, models.OrderStatus("LOST"))
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	h.advance(t, id, models.OrderStatusCancelled)
	for _, s := range []models.OrderStatus{models.OrderStatusPending, models.OrderStatusAccepted, models.OrderStatusServed} {
		_, err = h.orders.ChangeOrderStatus(h.ctx(), h.f.Restaurant.ID, id, s)
		assert.Equal(t, utils.KindInvalidTransition, utils.KindOf(err), s)
	}
	v := h.view(t, id)
	assert.Equal(t, models.KitchenStatusCancelled, v.KitchenTicket.Status)
	assertValidPath(t, historyOf(v))
}

func TestChangeKitchenStatusDrivesOrder(t *testing.T) {
	h := newHarness(t)
	id := h.placeOrder(t)
	ticketID := h.view(t, id).KitchenTicket.ID

	tv, err := h.orders.ChangeKitchenStatus(h.ctx(), h.f.Restaurant.ID, ticketID, models.KitchenStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.KitchenStatusProcessing, tv.Status)

	for _, k := range []models.KitchenStatus{models.KitchenStatusCooking, models.KitchenStatusReady, models.KitchenStatusServed} {
		_, err := h.orders.ChangeKitchenStatus(h.ctx(), h.f.Restaurant.ID, ticketID, k)
		require.NoError(t, err)
		assertInSync(t, h.view(t, id))
	}

	v := h.view(t, id)
	assert.Equal(t, models.OrderStatusServed, v.Status)
	assertValidPath(t, historyOf(v))
	assert.Len(t, v.StatusHistory, 5)
	assert.Contains(t, h.events.Types(), kds.EventKitchenTicketChanged)
}

func TestChangeKitchenStatusScenarioC(t *testing.T) {
	h := newHarness(t)
	id := h.placeOrder(t)
	h.advance(t, id, models.OrderStatusAccepted)
	before := h.view(t, id)
	require.Equal(t, models.KitchenStatusProcessing, before.KitchenTicket.Status)

	_, err := h.orders.ChangeKitchenStatus(h.ctx(), h.f.Restaurant.ID, before.KitchenTicket.ID, models.KitchenStatusReady)
	assert.Equal(t, utils.KindInvalidTransition, utils.KindOf(err))

	after := h.view(t, id)
	assert.Equal(t, models.OrderStatusAccepted, after.Status)
	assert.Equal(t, models.KitchenStatusProcessing, after.KitchenTicket.Status)
	assert.Equal(t, historyOf(before), historyOf(after))
}

func TestChangeKitchenStatusOtherTenant(t *testing.T) {
	h := newHarness(t)
	other := testutil.Seed(t, h.db, "beta")
	id := h.placeOrder(t)
	ticketID := h.view(t, id).KitchenTicket.ID

	_, err := h.orders.ChangeKitchenStatus(h.ctx(), other.Restaurant.ID, ticketID, models.KitchenStatusProcessing)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestConcurrentTerminalTransitions(t *testing.T) {
	h := newHarness(t)
	id := h.placeOrder(t)
	h.advance(t, id, models.OrderStatusAccepted, models.OrderStatusCooking, models.OrderStatusReady)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		target := models.OrderStatusServed
		if i%2 == 1 {
			target = models.OrderStatusCancelled
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = h.orders.ChangeOrderStatus(context.Background(), h.f.Restaurant.ID, id, target)
		}()
	}
	wg.Wait()

	v := h.view(t, id)
	statuses := historyOf(v)
	assert.Len(t, statuses, 5, "exactly one terminal transition wins")
	assertValidPath(t, statuses)
	assert.Equal(t, statuses[len(statuses)-1], v.Status)
	assertInSync(t, v)
}

func TestListOrdersAndTickets(t *testing.T) {
	h := newHarness(t)
	other := testutil.Seed(t, h.db, "beta")
	first := h.placeOrder(t)
	h.clock.Advance(time.Minute)
	second := h.placeOrder(t)

	views, err := h.orders.ListOrders(h.ctx(), h.f.Restaurant.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second, views[0].ID, "newest first")
	assert.Equal(t, first, views[1].ID)
	assert.Equal(t, "Burger", views[0].Items[0].MenuItemName)

	tickets, err := h.orders.ListKitchenTickets(h.ctx(), h.f.Restaurant.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 2)

	empty, err := h.orders.ListOrders(h.ctx(), other.Restaurant.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetPublicOrder(t *testing.T) {
	h := newHarness(t)
	other := testutil.Seed(t, h.db, "beta")
	res, err := h.orders.CreateOrder(h.ctx(), CreateOrderRequest{
		Slug:    h.f.Restaurant.Slug,
		TableID: &h.f.Table.ID,
		Items:   []OrderLineRequest{{MenuItemID: &h.f.Burger.ID, VariantID: &h.f.Large.ID, Quantity: intPtr(1)}},
	})
	require.NoError(t, err)

	v, err := h.orders.GetPublicOrder(h.ctx(), "alpha", res.OrderID, models.OrderSource{TableID: &h.f.Table.ID})
	require.NoError(t, err)
	assert.Equal(t, h.f.Restaurant.Name, v.RestaurantName)
	assert.Equal(t, 25, v.EstimatedMinutes)
	require.NotNil(t, v.Items[0].VariantName)
	assert.Equal(t, "Large", *v.Items[0].VariantName)
	assert.True(t, decimal.NewFromInt(120).Equal(v.Items[0].Price))

	_, err = h.orders.GetPublicOrder(h.ctx(), "alpha", res.OrderID, models.OrderSource{})
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

	_, err = h.orders.GetPublicOrder(h.ctx(), "beta", res.OrderID, models.OrderSource{TableID: &other.Table.ID})
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	h.advance(t, res.OrderID, models.OrderStatusAccepted, models.OrderStatusCooking)
	v, err = h.orders.GetPublicOrder(h.ctx(), "alpha", res.OrderID, models.OrderSource{TableID: &h.f.Table.ID})
	require.NoError(t, err)
	assert.Equal(t, 10, v.EstimatedMinutes)
	assert.Len(t, v.StatusHistory, 3)
}

func TestEstimatedMinutes(t *testing.T) {
	assert.Equal(t, 20, estimatedMinutes(models.OrderStatusAccepted))
	assert.Equal(t, 0, estimatedMinutes(models.OrderStatusReady))
	assert.Equal(t, 0, estimatedMinutes(models.OrderStatusCancelled))
}
