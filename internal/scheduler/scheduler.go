package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"equitystek/server/internal/queue"
)

// PropertyLister returns every property id known to the store
type PropertyLister interface {
	ListPropertyIDs(ctx context.Context) ([]int64, error)
}

// Enqueuer accepts batches of property ids for revaluation
type Enqueuer interface {
	Push(ids []int64) error
}

// Scheduler periodically re-enqueues every property so cached valuations
// follow rate recalibrations.
type Scheduler struct {
	lister    PropertyLister
	queue     Enqueuer
	logger    *logrus.Logger
	interval  time.Duration
	batchSize int

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sweeps never overlap
}

// NewScheduler creates a new scheduler. A non-positive interval disables the
// periodic sweep; Sweep can still be called directly.
func NewScheduler(lister PropertyLister, q Enqueuer, interval time.Duration, batchSize int, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	if batchSize < 1 {
		batchSize = 50
	}
	return &Scheduler{
		lister:    lister,
		queue:     q,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
		stopChan:  make(chan struct{}),
	}
}

// Start runs a startup sweep and then one sweep per interval
func (s *Scheduler) Start() {
	if s.interval <= 0 {
		s.logger.Info("Revaluation sweep disabled")
		return
	}
	s.wg.Add(1)
	go s.runScheduler()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.runSweep(ctx, "startup")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runSweep(ctx, "scheduled")
		}
	}
}

func (s *Scheduler) runSweep(ctx context.Context, trigger string) {
	enqueued, err := s.Sweep(ctx)
	fields := logrus.Fields{
		"trigger":  trigger,
		"enqueued": enqueued,
	}
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Error("Revaluation sweep failed")
		return
	}
	s.logger.WithFields(fields).Info("Revaluation sweep completed")
}

// Sweep enqueues every property id in batches and returns how many ids were
// accepted. Batches rejected by a full queue are skipped; the next sweep
// covers them.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	ids, err := s.lister.ListPropertyIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list properties: %w", err)
	}

	enqueued := 0
	for start := 0; start < len(ids); start += s.batchSize {
		end := min(start+s.batchSize, len(ids))
		batch := ids[start:end]

		err := s.queue.Push(batch)
		switch {
		case err == nil:
			enqueued += len(batch)
		case errors.Is(err, queue.ErrQueueFull):
			s.logger.WithFields(logrus.Fields{
				"batch_start": batch[0],
				"batch_size":  len(batch),
			}).Warn("Revaluation queue full, skipping batch")
		default:
			return enqueued, err
		}
	}
	return enqueued, nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}
