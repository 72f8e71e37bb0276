package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/menux-backend/kds"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/repository"
	"github.com/yeremiapane/menux-backend/utils"
)

func TestAutoCancelScenarioD(t *testing.T) {
	h := newHarness(t)
	old := h.placeOrder(t)
	h.clock.Advance(85 * time.Minute)
	fresh := h.placeOrder(t)
	h.clock.Advance(10 * time.Minute)

	paid := h.placeTableOrder(t)
	_, err := h.pay(paid, nil)
	require.NoError(t, err)

	m := NewAutoCancelMonitor(repository.NewOrderRepository(h.db), h.orders, time.Minute, 90*time.Minute)
	m.Now = h.clock.Now

	n, err := m.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	v := h.view(t, old)
	assert.Equal(t, models.OrderStatusCancelled, v.Status)
	assert.Equal(t, models.KitchenStatusCancelled, v.KitchenTicket.Status)
	assertValidPath(t, historyOf(v))
	assert.Equal(t, models.OrderStatusPending, h.view(t, fresh).Status)
	assert.Contains(t, h.events.Types(), kds.EventOrderAutoCancelled)

	// the paid order is older than the cutoff too once time moves on
	h.clock.Advance(2 * time.Hour)
	n, err = m.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the fresh order")
	assert.Equal(t, models.OrderStatusAccepted, h.view(t, paid).Status)
}

func TestCancelStaleOrderRechecksUnderLock(t *testing.T) {
	h := newHarness(t)
	id := h.placeOrder(t)
	h.advance(t, id, models.OrderStatusAccepted)

	ok, err := h.orders.CancelStaleOrder(context.Background(), h.f.Restaurant.ID, id)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.OrderStatusAccepted, h.view(t, id).Status)
}

type staticFinder struct {
	orders []models.Order
	err    error
}

func (f staticFinder) FindStale(context.Context, models.OrderStatus, models.PaymentStatus, time.Time) ([]models.Order, error) {
	return f.orders, f.err
}

type flakyCanceller struct {
	fail  map[uuid.UUID]bool
	calls []uuid.UUID
}

func (c *flakyCanceller) CancelStaleOrder(_ context.Context, _, orderID uuid.UUID) (bool, error) {
	c.calls = append(c.calls, orderID)
	if c.fail[orderID] {
		return false, errors.New("database is locked")
	}
	return true, nil
}

func TestSweepContinuesPastFailures(t *testing.T) {
	orders := []models.Order{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}
	c := &flakyCanceller{fail: map[uuid.UUID]bool{orders[1].ID: true}}
	m := NewAutoCancelMonitor(staticFinder{orders: orders}, c, 0, 0)

	n, err := m.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, c.calls, 3)
	assert.Equal(t, DefaultAutoCancelInterval, m.Interval)
	assert.Equal(t, DefaultAutoCancelAfter, m.MaxAge)
}

func TestSweepFinderError(t *testing.T) {
	m := NewAutoCancelMonitor(staticFinder{err: errors.New("boom")}, &flakyCanceller{}, time.Minute, time.Hour)
	_, err := m.Sweep(context.Background())
	assert.EqualError(t, err, "boom")
}

func TestAutoCancelMonitorStartStop(t *testing.T) {
	c := &flakyCanceller{}
	m := NewAutoCancelMonitor(staticFinder{}, c, time.Millisecond, time.Hour)

	m.Start()
	time.Sleep(10 * time.Millisecond)
	m.Stop()
	m.Stop()

	// never started
	NewAutoCancelMonitor(staticFinder{}, c, time.Minute, time.Hour).Stop()
}

// slowCanceller cancels its first order only once the sweep's deadline has
// passed, so the sweep stops early with one order cancelled.
type slowCanceller struct{}

func (slowCanceller) CancelStaleOrder(ctx context.Context, _, _ uuid.UUID) (bool, error) {
	<-ctx.Done()
	return true, nil
}

func TestSweepTimeoutKeepsPartialCount(t *testing.T) {
	orders := []models.Order{{ID: uuid.New()}, {ID: uuid.New()}}
	m := NewAutoCancelMonitor(staticFinder{orders: orders}, slowCanceller{}, time.Minute, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	n, err := m.Sweep(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, n)

	hook := test.NewLocal(utils.ErrorLogger)
	m.RunTimeout = 10 * time.Millisecond
	m.runOnce()

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, 1, entry.Data["cancelled"])
	assert.Contains(t, entry.Message, context.DeadlineExceeded.Error())
}
