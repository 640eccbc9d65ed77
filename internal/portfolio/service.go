// Package portfolio ties the calculators to stored properties, maintenance
// ledgers and subscriptions.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"equitystek/server/internal/domainerr"
	"equitystek/server/internal/metrics"
	"equitystek/server/internal/valuation"
)

// Geocoder resolves an address to latitude and longitude.
type Geocoder interface {
	GeocodeAddress(ctx context.Context, street, postalCode, city string) (float64, float64, error)
}

// Enqueuer schedules properties for background revaluation.
type Enqueuer interface {
	Push(ids []int64) error
}

type Options struct {
	// Geocoder fills in missing coordinates on create; nil disables it
	Geocoder Geocoder
	// Queue receives properties whose ledger changed; nil revalues inline
	Queue   Enqueuer
	Metrics *metrics.Metrics
	Logger  *logrus.Logger
	// Concurrency bounds portfolio-wide valuation fan-out
	Concurrency int
}

type Service struct {
	store       Store
	calc        *valuation.Calculator
	geocoder    Geocoder
	queue       Enqueuer
	metrics     *metrics.Metrics
	logger      *logrus.Logger
	concurrency int
	now         func() time.Time
}

func NewService(store Store, calc *valuation.Calculator, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 8
	}
	return &Service{
		store:       store,
		calc:        calc,
		geocoder:    opts.Geocoder,
		queue:       opts.Queue,
		metrics:     opts.Metrics,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// ValueProperty computes the valuation of a stored property from its current
// ledger and caches the result.
func (s *Service) ValueProperty(ctx context.Context, id int64) (*valuation.Valuation, error) {
	v, err := s.valueProperty(ctx, id)
	warnings := 0
	if v != nil {
		warnings = len(v.Warnings)
	}
	s.metrics.ObserveValuation(err, warnings)
	return v, err
}

func (s *Service) valueProperty(ctx context.Context, id int64) (*valuation.Valuation, error) {
	property, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListMaintenanceByProperty(ctx, id)
	if err != nil {
		return nil, err
	}

	v, err := s.calc.Calculate(toAttributes(property), toEvents(events))
	if err != nil {
		return nil, err
	}

	record := toRecord(v)
	record.ComputedAt = s.now().UTC()
	if err := s.store.SaveValuation(ctx, record); err != nil {
		return nil, err
	}

	if len(v.Warnings) > 0 {
		s.logger.WithFields(logrus.Fields{
			"property_id": id,
			"warnings":    len(v.Warnings),
		}).Warn("Valuation produced clamped values")
	}
	return v, nil
}

// RevalueProperties recomputes and caches the valuations of ids. Properties
// deleted since they were queued, or whose stored data cannot be valued, are
// skipped; any other failure aborts the batch so it can be retried.
func (s *Service) RevalueProperties(ctx context.Context, ids []int64) error {
	skipped := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := s.ValueProperty(ctx, id)
		switch {
		case err == nil:
		case errors.Is(err, domainerr.ErrNotFound), domainerr.IsInvalidInput(err):
			skipped++
			s.logger.WithError(err).WithField("property_id", id).Warn("Skipping property during revaluation")
		default:
			return fmt.Errorf("property %d: %w", id, err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"batch_size": len(ids),
		"skipped":    skipped,
	}).Debug("Revalued properties")
	return nil
}

// scheduleRevaluation hands id to the background queue, or revalues inline
// when no queue is configured or the queue rejects the batch.
func (s *Service) scheduleRevaluation(ctx context.Context, id int64) {
	if s.queue != nil {
		err := s.queue.Push([]int64{id})
		if err == nil {
			return
		}
		s.logger.WithError(err).WithField("property_id", id).Warn("Revaluation queue rejected property, revaluing inline")
	}
	if _, err := s.ValueProperty(ctx, id); err != nil {
		s.logger.WithError(err).WithField("property_id", id).Error("Inline revaluation failed")
	}
}
