package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"equitystek/server/internal/metrics"
	"equitystek/server/internal/queue"
)

// Revaluer recomputes and caches the valuations of a batch of properties.
type Revaluer interface {
	RevalueProperties(ctx context.Context, ids []int64) error
}

type Settings struct {
	MaxRetries int
	RetryDelay time.Duration
}

// BatchProcessor consumes revaluation batches from the queue
type BatchProcessor struct {
	revaluer Revaluer
	logger   *logrus.Logger
	settings Settings
	queue    *queue.RevaluationQueue
	metrics  *metrics.Metrics
	once     sync.Once
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(revaluer Revaluer, q *queue.RevaluationQueue, settings Settings, m *metrics.Metrics, logger *logrus.Logger) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		revaluer: revaluer,
		queue:    q,
		settings: settings,
		metrics:  m,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start subscribes the processor to the queue. Calling it again is a no-op.
func (p *BatchProcessor) Start() {
	p.once.Do(func() {
		p.queue.Subscribe(p.processBatch)
	})
}

// Stop aborts in-flight retries. Handlers invoked after Stop fail fast.
func (p *BatchProcessor) Stop() {
	p.cancel()
}

// processBatch revalues one batch, retrying with a constant delay
func (p *BatchProcessor) processBatch(ids []int64) error {
	started := time.Now()
	attempt := 0

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.settings.RetryDelay), uint64(max(p.settings.MaxRetries, 0))),
		p.ctx,
	)

	err := backoff.RetryNotify(func() error {
		attempt++
		return p.revaluer.RevalueProperties(p.ctx, ids)
	}, policy, func(err error, wait time.Duration) {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"attempt":     attempt,
			"max_retries": p.settings.MaxRetries,
			"retry_in":    wait.String(),
		}).Warn("Revaluation batch failed, retrying")
	})

	p.metrics.ObserveRevaluationBatch(err, time.Since(started))

	if err != nil {
		return fmt.Errorf("failed to process batch after %d attempts: %w", attempt, err)
	}

	p.logger.WithFields(logrus.Fields{
		"batch_size": len(ids),
		"attempts":   attempt,
	}).Info("Successfully revalued batch")
	return nil
}
