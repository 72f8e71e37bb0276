package services

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/menux-backend/kds"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/testutil"
	"github.com/yeremiapane/menux-backend/utils"
)

func boolPtr(b bool) *bool { return &b }

// placeTableOrder creates a dine-in order at the fixture's table.
func (h *harness) placeTableOrder(t *testing.T) uuid.UUID {
	t.Helper()
	res, err := h.orders.CreateOrder(h.ctx(), CreateOrderRequest{
		Slug:    h.f.Restaurant.Slug,
		TableID: &h.f.Table.ID,
		Items:   []OrderLineRequest{{MenuItemID: &h.f.Burger.ID, Quantity: intPtr(2)}},
	})
	require.NoError(t, err)
	return res.OrderID
}

func (h *harness) pay(orderID uuid.UUID, mutate func(*PayOrderRequest)) (*PaymentResult, error) {
	req := PayOrderRequest{
		Slug:    h.f.Restaurant.Slug,
		TableID: &h.f.Table.ID,
		Gateway: models.GatewayUPI,
	}
	if mutate != nil {
		mutate(&req)
	}
	return h.payments.RecordPayment(h.ctx(), orderID, req)
}

func TestRecordPaymentScenarioB(t *testing.T) {
	h := newHarness(t)
	id := h.placeTableOrder(t)

	res, err := h.pay(id, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRecordSuccess, res.PaymentRecordStatus)
	assert.Equal(t, models.PaymentStatusPaid, res.OrderPaymentStatus)
	assert.Equal(t, models.OrderStatusAccepted, res.OrderStatus)
	assert.True(t, strings.HasPrefix(res.TransactionID, "upi_"), res.TransactionID)

	v := h.view(t, id)
	assert.Equal(t, models.PaymentStatusPaid, v.PaymentStatus)
	assert.Equal(t, []models.OrderStatus{models.OrderStatusPending, models.OrderStatusAccepted}, historyOf(v))
	assertInSync(t, v)
	require.Len(t, v.Payments, 1)

	assert.Equal(t, []string{
		kds.EventOrderCreated,
		kds.EventOrderPaymentRecorded,
		kds.EventOrderStatusChanged,
	}, h.events.Types())

	_, err = h.pay(id, nil)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
	assert.Len(t, h.view(t, id).Payments, 1, "no second record")

	m := h.payments.Metrics()
	assert.Equal(t, int64(1), m.TotalTransactions)
	assert.Equal(t, int64(1), m.SuccessfulPayments)
	assert.Equal(t, int64(1), m.RejectedAttempts)
}

func TestConcurrentPaymentsRecordOneSuccess(t *testing.T) {
	h := newHarness(t)
	id := h.placeTableOrder(t)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.pay(id, nil)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if utils.KindOf(err) == utils.KindConflict {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 9, conflicts)

	v := h.view(t, id)
	require.Len(t, v.Payments, 1)
	assert.Equal(t, models.PaymentRecordSuccess, v.Payments[0].Status)
	assert.Equal(t, models.PaymentStatusPaid, v.PaymentStatus)
	assert.Equal(t, []models.OrderStatus{models.OrderStatusPending, models.OrderStatusAccepted}, historyOf(v))
	assert.Equal(t, models.KitchenStatusProcessing, v.KitchenTicket.Status)
	assertInSync(t, v)

	m := h.payments.Metrics()
	assert.Equal(t, int64(1), m.SuccessfulPayments)
	assert.Equal(t, int64(9), m.RejectedAttempts)
}

func TestRecordPaymentKeepsLaterStatus(t *testing.T) {
	h := newHarness(t)
	id := h.placeTableOrder(t)
	h.advance(t, id, models.OrderStatusAccepted, models.OrderStatusCooking)
	before := len(h.view(t, id).StatusHistory)

	res, err := h.pay(id, nil)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCooking, res.OrderStatus)
	assert.Len(t, h.view(t, id).StatusHistory, before)
	assert.NotContains(t, h.events.Types()[3:], kds.EventOrderStatusChanged)
}

func TestRecordPaymentLedgerCheck(t *testing.T) {
	h := newHarness(t)
	id := h.placeTableOrder(t)

	// a success record whose order flag was never flipped
	require.NoError(t, h.db.Create(&models.OrderPayment{
		OrderID:       id,
		Gateway:       models.GatewayCash,
		Status:        models.PaymentRecordSuccess,
		TransactionID: "cash_legacy",
		CreatedAt:     h.clock.Now(),
	}).Error)

	_, err := h.pay(id, nil)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
	assert.Equal(t, models.PaymentStatusUnpaid, h.view(t, id).PaymentStatus)
}

func TestRecordPaymentFailedAttempt(t *testing.T) {
	h := newHarness(t)
	id := h.placeTableOrder(t)

	res, err := h.pay(id, func(r *PayOrderRequest) {
		r.SimulateSuccess = boolPtr(false)
		r.Gateway = models.GatewayRazorpay
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRecordFailed, res.PaymentRecordStatus)
	assert.Equal(t, models.PaymentStatusUnpaid, res.OrderPaymentStatus)
	assert.Equal(t, models.OrderStatusPending, res.OrderStatus)
	assert.True(t, strings.HasPrefix(res.TransactionID, "razorpay_"))

	// a failed attempt does not block a later success
	res, err = h.pay(id, func(r *PayOrderRequest) { r.TransactionID = "  txn-42 " })
	require.NoError(t, err)
	assert.Equal(t, "txn-42", res.TransactionID)
	assert.Len(t, h.view(t, id).Payments, 2)

	m := h.payments.Metrics()
	assert.Equal(t, int64(2), m.TotalTransactions)
	assert.Equal(t, int64(1), m.FailedPayments)
	assert.Equal(t, int64(1), m.SuccessfulPayments)
}

func TestRecordPaymentRejections(t *testing.T) {
	h := newHarness(t)
	other := seedOther(t, h).Restaurant.Slug
	id := h.placeTableOrder(t)

	t.Run("unknown gateway", func(t *testing.T) {
		_, err := h.pay(id, func(r *PayOrderRequest) { r.Gateway = "BITCOIN" })
		assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	})
	t.Run("wrong table", func(t *testing.T) {
		_, err := h.pay(id, func(r *PayOrderRequest) { r.TableID = nil; r.RoomID = &h.f.Room.ID })
		assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
	})
	t.Run("other restaurant slug", func(t *testing.T) {
		_, err := h.pay(id, func(r *PayOrderRequest) { r.Slug = other; r.TableID = nil })
		assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	})
	t.Run("unknown order", func(t *testing.T) {
		_, err := h.pay(uuid.New(), nil)
		assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	})

	assert.Empty(t, h.view(t, id).Payments)
	assert.Equal(t, int64(1), h.payments.Metrics().RejectedAttempts)
}

func seedOther(t *testing.T, h *harness) *testutil.Fixture {
	t.Helper()
	return testutil.Seed(t, h.db, "beta")
}

func TestRecordPaymentTerminalOrders(t *testing.T) {
	for _, final := range [][]models.OrderStatus{
		{models.OrderStatusCancelled},
		{models.OrderStatusAccepted, models.OrderStatusCooking, models.OrderStatusReady, models.OrderStatusServed},
	} {
		last := final[len(final)-1]
		t.Run(string(last), func(t *testing.T) {
			h := newHarness(t)
			id := h.placeTableOrder(t)
			h.advance(t, id, final...)

			_, err := h.pay(id, nil)
			assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))
			v := h.view(t, id)
			assert.Empty(t, v.Payments)
			assert.Equal(t, last, v.Status)
		})
	}
}

func TestMarkOrderPaid(t *testing.T) {
	h := newHarness(t)
	id := h.placeTableOrder(t)

	v, err := h.payments.MarkOrderPaid(h.ctx(), h.f.Restaurant.ID, id, models.GatewayCash)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, v.PaymentStatus)
	assert.Equal(t, models.OrderStatusAccepted, v.Status)
	require.Len(t, v.Payments, 1)
	assert.Equal(t, models.GatewayCash, v.Payments[0].Gateway)
	assert.True(t, strings.HasPrefix(v.Payments[0].TransactionID, "cash_"))

	_, err = h.payments.MarkOrderPaid(h.ctx(), h.f.Restaurant.ID, id, models.GatewayCash)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	other := seedOther(t, h)
	_, err = h.payments.MarkOrderPaid(h.ctx(), other.Restaurant.ID, id, models.GatewayCash)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestResolveTransactionID(t *testing.T) {
	assert.Equal(t, "abc", resolveTransactionID(models.GatewayUPI, " abc "))
	id := resolveTransactionID(models.GatewayCash, "   ")
	require.True(t, strings.HasPrefix(id, "cash_"))
	_, err := uuid.Parse(strings.TrimPrefix(id, "cash_"))
	assert.NoError(t, err)
}
