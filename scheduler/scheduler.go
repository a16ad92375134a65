// Package scheduler wires up the cron job that periodically exports the
// home feed.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"estate-browser/models"
	"estate-browser/utils"
)

// Exporter is the job run on every tick.
type Exporter interface {
	Export(ctx context.Context) (*models.FeedSnapshot, error)
}

// Scheduler wraps robfig/cron and manages the export loop.
type Scheduler struct {
	cron     *cron.Cron
	exporter Exporter
	logger   *utils.Logger
	spec     string

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// New creates a Scheduler firing on spec, e.g. "@every 6h" or "0 */6 * * *".
func New(exporter Exporter, spec string, logger *utils.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		exporter: exporter,
		logger:   logger,
		spec:     spec,
	}
}

// Start registers the job and starts the scheduler. It also runs one export
// immediately so a snapshot exists without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runExport(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("[scheduler] Cron started — spec: %s", s.spec)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runExport(ctx)
	}()
	return nil
}

// Stop halts the scheduler and waits for running exports to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("[scheduler] Stopped")
}

// runExport skips the tick when the previous export is still running.
func (s *Scheduler) runExport(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("[scheduler] Previous export still running — skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	snap, err := s.exporter.Export(ctx)
	if err != nil {
		s.logger.Error("[scheduler] Export failed: %v", err)
		return
	}
	s.logger.Info("[scheduler] Exported snapshot %s (%d listings)", snap.ID, len(snap.Rows))
}
