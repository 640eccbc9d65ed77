package queue

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewRevaluationQueue(t *testing.T) {
	q := NewRevaluationQueue(10, logrus.New())
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestRevaluationQueue_Push(t *testing.T) {
	q := NewRevaluationQueue(2, logrus.New())

	// Successful push
	err := q.Push([]int64{1})
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// Empty batches are ignored
	assert.NoError(t, q.Push(nil))
	assert.Equal(t, 1, q.Len())

	// Queue full
	assert.NoError(t, q.Push([]int64{2}))
	err = q.Push([]int64{3})
	assert.Equal(t, ErrQueueFull, err)

	// Closed queue
	q.Close()
	err = q.Push([]int64{4})
	assert.Equal(t, ErrQueueClosed, err)
}

func TestRevaluationQueue_Subscribe(t *testing.T) {
	q := NewRevaluationQueue(10, logrus.New())
	defer q.Close()

	var processed []int64
	var mu sync.Mutex

	q.Subscribe(func(ids []int64) error {
		mu.Lock()
		processed = append(processed, ids...)
		mu.Unlock()
		return nil
	})
	q.Start(1)

	assert.NoError(t, q.Push([]int64{7, 8}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(processed) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []int64{7, 8}, processed)
	mu.Unlock()
}

func TestRevaluationQueue_HandlerErrorDoesNotStopWorkers(t *testing.T) {
	q := NewRevaluationQueue(10, logrus.New())
	defer q.Close()

	var mu sync.Mutex
	batches := 0
	q.Subscribe(func(ids []int64) error {
		mu.Lock()
		batches++
		mu.Unlock()
		return errors.New("boom")
	})
	q.Start(2)

	for i := int64(0); i < 4; i++ {
		assert.NoError(t, q.Push([]int64{i}))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return batches == 4
	}, time.Second, 10*time.Millisecond)
}

func TestRevaluationQueue_Close(t *testing.T) {
	q := NewRevaluationQueue(10, logrus.New())
	q.Start(3)

	// First close
	err := q.Close()
	assert.NoError(t, err)
	assert.True(t, q.IsClosed())

	// Second close is a no-op
	err = q.Close()
	assert.NoError(t, err)
}

func TestRevaluationQueue_ProcessBatch(t *testing.T) {
	q := NewRevaluationQueue(10, logrus.New())
	defer q.Close()

	var wg sync.WaitGroup
	processedBatches := 0
	var mu sync.Mutex

	// Every handler sees every batch
	for i := 0; i < 3; i++ {
		wg.Add(1)
		q.Subscribe(func(ids []int64) error {
			mu.Lock()
			processedBatches++
			mu.Unlock()
			wg.Done()
			return nil
		})
	}
	q.Start(1)

	assert.NoError(t, q.Push([]int64{1}))
	wg.Wait()

	mu.Lock()
	assert.Equal(t, 3, processedBatches)
	mu.Unlock()
}
