// Package locks serializes mutations of a single order across goroutines and,
// with Redis, across service instances.
package locks

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Locker grants exclusive access to one order. The returned unlock func must
// be called exactly once.
type Locker interface {
	Lock(ctx context.Context, orderID uuid.UUID) (unlock func(), err error)
}

type entry struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is an in-process Locker keyed by order id. Entries are dropped
// once nobody holds or waits for them.
type LocalLocker struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{entries: make(map[uuid.UUID]*entry)}
}

func (l *LocalLocker) Lock(ctx context.Context, orderID uuid.UUID) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[orderID]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[orderID] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(orderID, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(orderID, e)
		})
	}, nil
}

func (l *LocalLocker) release(orderID uuid.UUID, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, orderID)
	}
}

