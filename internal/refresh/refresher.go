// Package refresh owns the dataset the dashboard serves: it performs the
// initial load and periodically replaces the dataset with a fresh one.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
	"github.com/couchcryptid/irl-covid-dashboard/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// DatasetLoader builds a complete dataset.
type DatasetLoader interface {
	Load(ctx context.Context) (*domain.Dataset, error)
}

// Publisher announces a new dataset downstream.
type Publisher interface {
	Publish(ctx context.Context, ds *domain.Dataset) error
}

// Refresher holds the current dataset and reloads it on an interval.
type Refresher struct {
	loader    DatasetLoader
	publisher Publisher
	clock     clockwork.Clock
	interval  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
	current   atomic.Pointer[domain.Dataset]
}

// New creates a Refresher. publisher may be nil. An interval of zero
// disables periodic reloads.
func New(loader DatasetLoader, publisher Publisher, clock clockwork.Clock, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	return &Refresher{
		loader:    loader,
		publisher: publisher,
		clock:     clock,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
	}
}

// Current returns the dataset being served, or nil before the first load.
func (r *Refresher) Current() *domain.Dataset {
	return r.current.Load()
}

// CheckReadiness returns nil once a dataset has been loaded.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if r.current.Load() == nil {
		return errors.New("no dataset loaded yet")
	}
	return nil
}

// Init performs the first load synchronously. The caller treats an error
// as fatal: there is nothing to serve without a dataset.
func (r *Refresher) Init(ctx context.Context) error {
	ds, err := r.loader.Load(ctx)
	if err != nil {
		return err
	}
	r.swap(ctx, ds)
	return nil
}

// Run reloads the dataset every interval until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	if r.interval <= 0 {
		r.logger.Info("periodic refresh disabled")
		return nil
	}

	r.logger.Info("refresher started", "interval", r.interval)
	r.metrics.RefresherRunning.Set(1)
	defer r.metrics.RefresherRunning.Set(0)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			r.refresh(ctx)
		}
	}
}

// refresh reloads once, retrying failures with exponential backoff until a
// load succeeds or the next tick is due. A failed refresh keeps the
// previous dataset.
func (r *Refresher) refresh(ctx context.Context) {
	deadline := r.clock.Now().Add(r.interval)
	backoff := initialBackoff

	for {
		ds, err := r.loader.Load(ctx)
		if err == nil {
			r.swap(ctx, ds)
			return
		}
		if ctx.Err() != nil {
			return
		}
		r.metrics.RefreshErrors.Inc()
		r.logger.Error("refresh failed, keeping previous dataset", "error", err, "retry_in", backoff)

		if !r.clock.Now().Add(backoff).Before(deadline) {
			return
		}
		if !r.sleep(ctx, backoff) {
			return
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

func (r *Refresher) swap(ctx context.Context, ds *domain.Dataset) {
	prev := r.current.Swap(ds)
	if prev != nil {
		r.logger.Info("dataset replaced", "previous_id", prev.ID, "dataset_id", ds.ID)
	}
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, ds); err != nil {
		r.metrics.SnapshotsPublished.WithLabelValues("error").Inc()
		r.logger.Warn("snapshot publish failed", "dataset_id", ds.ID, "error", err)
		return
	}
	r.metrics.SnapshotsPublished.WithLabelValues("success").Inc()
}

func (r *Refresher) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-r.clock.After(d):
		return true
	}
}
