package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultInterval = 30 * time.Second

// FetchFunc loads the latest value
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Params configure a Refresher
type Params[T any] struct {
	Name     string
	Interval time.Duration
	Fetch    FetchFunc[T]
	Logger   *zap.Logger
}

// Refresher polls Fetch on a fixed interval and keeps the latest result.
// A failed fetch clears the value so readers see "no data" instead of an error.
type Refresher[T any] struct {
	name     string
	interval time.Duration
	fetch    FetchFunc[T]
	logger   *zap.Logger

	mu      sync.RWMutex
	latest  T
	ok      bool
	updated time.Time
}

// New builds a refresher. Start must be called to begin polling.
func New[T any](params Params[T]) (*Refresher[T], error) {
	if params.Fetch == nil {
		return nil, fmt.Errorf("fetch func required")
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	name := params.Name
	if name == "" {
		name = "refresh"
	}
	return &Refresher[T]{
		name:     name,
		interval: interval,
		fetch:    params.Fetch,
		logger:   logger.With(zap.String("refresher", name)),
	}, nil
}

// Start fetches once immediately, then on every tick until ctx is cancelled.
// It blocks; run it in its own goroutine.
func (r *Refresher[T]) Start(ctx context.Context) error {
	r.Refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Refresher stopped")
			return ctx.Err()
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh runs one fetch and stores its result
func (r *Refresher[T]) Refresh(ctx context.Context) {
	value, err := r.fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		var zero T
		r.latest, r.ok = zero, false
		r.logger.Debug("Refresh failed", zap.Error(err))
		return
	}
	r.latest, r.ok, r.updated = value, true, time.Now()
}

// Latest returns the last successful value, or false when there is none
func (r *Refresher[T]) Latest() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.ok
}

// UpdatedAt returns when the current value was fetched
func (r *Refresher[T]) UpdatedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updated
}
