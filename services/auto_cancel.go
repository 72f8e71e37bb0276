package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/utils"
)

const (
	DefaultAutoCancelInterval = 5 * time.Minute
	DefaultAutoCancelAfter    = 90 * time.Minute
)

type StaleOrderFinder interface {
	FindStale(ctx context.Context, status models.OrderStatus, paymentStatus models.PaymentStatus, before time.Time) ([]models.Order, error)
}

type StaleOrderCanceller interface {
	CancelStaleOrder(ctx context.Context, restaurantID, orderID uuid.UUID) (bool, error)
}

// AutoCancelMonitor periodically cancels PENDING, UNPAID orders older than MaxAge.
type AutoCancelMonitor struct {
	Finder    StaleOrderFinder
	Canceller StaleOrderCanceller
	Interval  time.Duration
	MaxAge    time.Duration
	// RunTimeout bounds a single sweep.
	RunTimeout time.Duration
	Now        func() time.Time
	StopChan   chan struct{}

	done     chan struct{}
	stopOnce sync.Once
}

func NewAutoCancelMonitor(finder StaleOrderFinder, canceller StaleOrderCanceller, interval, maxAge time.Duration) *AutoCancelMonitor {
	if interval <= 0 {
		interval = DefaultAutoCancelInterval
	}
	if maxAge <= 0 {
		maxAge = DefaultAutoCancelAfter
	}
	return &AutoCancelMonitor{
		Finder:     finder,
		Canceller:  canceller,
		Interval:   interval,
		MaxAge:     maxAge,
		RunTimeout: time.Minute,
		Now:        time.Now,
		StopChan:   make(chan struct{}),
	}
}

func (m *AutoCancelMonitor) Start() {
	done := make(chan struct{})
	m.done = done
	go func() {
		defer close(done)
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.runOnce()
			case <-m.StopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Infof("Auto-cancel monitor started (every %s, max age %s)", m.Interval, m.MaxAge)
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (m *AutoCancelMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.StopChan)
		if m.done != nil {
			<-m.done
		}
	})
}

func (m *AutoCancelMonitor) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), m.RunTimeout)
	defer cancel()

	cancelled, err := m.Sweep(ctx)
	if err != nil {
		utils.ErrorLogger.WithField("cancelled", cancelled).Errorf("Auto-cancel sweep failed: %v", err)
		return
	}
	if cancelled > 0 {
		utils.InfoLogger.Infof("Auto-cancelled %d stale orders", cancelled)
	}
}

// Sweep cancels every stale order and returns how many were cancelled. A
// failure on one order is logged and does not stop the others.
func (m *AutoCancelMonitor) Sweep(ctx context.Context) (int, error) {
	cutoff := m.Now().UTC().Add(-m.MaxAge)
	stale, err := m.Finder.FindStale(ctx, models.OrderStatusPending, models.PaymentStatusUnpaid, cutoff)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, order := range stale {
		if ctx.Err() != nil {
			return count, ctx.Err()
		}
		ok, err := m.Canceller.CancelStaleOrder(ctx, order.RestaurantID, order.ID)
		if err != nil {
			utils.ErrorLogger.WithFields(utils.OrderFields(order.RestaurantID, order.ID)).
				WithFields(logrus.Fields{"created_at": order.CreatedAt}).
				Errorf("Auto-cancel failed: %v", err)
			continue
		}
		if ok {
			count++
		}
	}
	return count, nil
}
