package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// RevaluationQueue is an in-memory queue of property id batches waiting to be
// revalued.
type RevaluationQueue struct {
	items    chan []int64
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
	logger   *logrus.Logger
	handlers []func([]int64) error
}

// NewRevaluationQueue creates a queue holding at most bufferSize batches
func NewRevaluationQueue(bufferSize int, logger *logrus.Logger) *RevaluationQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &RevaluationQueue{
		items:    make(chan []int64, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func([]int64) error, 0),
	}
}

// Push adds a batch of property ids to the queue without blocking
func (q *RevaluationQueue) Push(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	// The read lock is held across the send so Close cannot close items under us.
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- ids:
		q.logger.WithField("batch_size", len(ids)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch
func (q *RevaluationQueue) Subscribe(handler func([]int64) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start launches workers goroutines consuming the queue
func (q *RevaluationQueue) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.process()
	}
}

func (q *RevaluationQueue) process() {
	defer q.wg.Done()
	for {
		select {
		case <-q.done:
			return
		case batch, ok := <-q.items:
			if !ok {
				return
			}
			q.processBatch(batch)
		}
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *RevaluationQueue) processBatch(batch []int64) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).WithField("batch_size", len(batch)).Error("Handler failed to process batch")
		}
	}
}

// Close stops the workers and rejects further pushes. Batches still buffered
// are dropped; the periodic sweep picks their properties up again.
func (q *RevaluationQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.done)
	close(q.items)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

// Len returns the current number of batches in the queue
func (q *RevaluationQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *RevaluationQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
