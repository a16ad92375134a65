package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"estate-browser/models"
	"estate-browser/storage"
	"estate-browser/utils"
)

// ErrFeedUnavailable is returned by Export when the activation did not
// produce a successful feed.
var ErrFeedUnavailable = errors.New("home feed unavailable")

// Exporter activates the aggregator once and hands a successful feed to
// every configured writer.
type Exporter struct {
	agg     *Aggregator
	writers []storage.FeedWriter
	logger  *utils.Logger
	workers int
	now     func() time.Time
}

// NewExporter creates an Exporter writing to the given writers.
func NewExporter(agg *Aggregator, writers []storage.FeedWriter, logger *utils.Logger) *Exporter {
	return &Exporter{agg: agg, writers: writers, logger: logger, workers: len(writers), now: time.Now}
}

// WithWorkers caps how many writers run at once.
func (e *Exporter) WithWorkers(n int) *Exporter {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Export runs one activation. Failed or superseded activations are not
// written. Writers run concurrently; every writer is attempted and their
// errors are joined.
func (e *Exporter) Export(ctx context.Context) (*models.FeedSnapshot, error) {
	state, applied := e.agg.Activate(ctx)
	if !applied {
		return nil, fmt.Errorf("%w: activation superseded", ErrFeedUnavailable)
	}
	if state.Status != models.StatusSuccess {
		return nil, fmt.Errorf("%w: %s", ErrFeedUnavailable, state.Error)
	}

	snap := models.NewFeedSnapshot(uuid.NewString(), state, e.now())
	e.logger.Info("[exporter] Snapshot %s: %d listings → %d writers", snap.ID, len(snap.Rows), len(e.writers))

	var (
		mu   sync.Mutex
		errs []error
	)
	pool := utils.NewWorkerPool(e.workers)
	for _, w := range e.writers {
		w := w
		pool.Submit(func() {
			if err := w.WriteSnapshot(snap); err != nil {
				e.logger.Error("[exporter] %s write failed: %v", w.Name(), err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", w.Name(), err))
				mu.Unlock()
				return
			}
			e.logger.Debug("[exporter] %s wrote snapshot %s", w.Name(), snap.ID)
		})
	}
	pool.Wait()

	return snap, errors.Join(errs...)
}
