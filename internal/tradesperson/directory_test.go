package tradesperson

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equitystek/server/internal/domainerr"
	"equitystek/server/internal/models"
)

type fakeSource struct {
	calls   atomic.Int32
	release chan struct{}
	people  map[int64]string
}

func (f *fakeSource) GetTradesperson(ctx context.Context, id int64) (*models.Tradesperson, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	name, ok := f.people[id]
	if !ok {
		return nil, domainerr.ErrNotFound
	}
	return &models.Tradesperson{ID: id, Name: name}, nil
}

func TestResolveName_Caches(t *testing.T) {
	source := &fakeSource{people: map[int64]string{1: "Ada Plumbing"}}
	dir := NewDirectory(source, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := dir.ResolveName(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, Resolution{Name: "Ada Plumbing"}, res)
	}
	assert.Equal(t, int32(1), source.calls.Load())

	dir.Forget(1)
	_, err := dir.ResolveName(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.calls.Load())
}

func TestResolveName_Unknown(t *testing.T) {
	dir := NewDirectory(&fakeSource{people: map[int64]string{}}, nil)

	_, err := dir.ResolveName(context.Background(), 7)
	assert.ErrorIs(t, err, domainerr.ErrNotFound)
}

func TestResolveName_CollapsesConcurrentLookups(t *testing.T) {
	source := &fakeSource{
		release: make(chan struct{}),
		people:  map[int64]string{3: "Zed Roofing"},
	}
	dir := NewDirectory(source, nil)

	var wg sync.WaitGroup
	results := make([]Resolution, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := dir.ResolveName(context.Background(), 3)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	// Let every caller join the in-flight lookup before it completes.
	time.Sleep(50 * time.Millisecond)
	close(source.release)
	wg.Wait()

	assert.Equal(t, int32(1), source.calls.Load())
	for _, res := range results {
		assert.Equal(t, "Zed Roofing", res.Name)
	}
}

func TestResolveName_PendingWhenContextExpires(t *testing.T) {
	source := &fakeSource{
		release: make(chan struct{}),
		people:  map[int64]string{4: "Bea Electric"},
	}
	dir := NewDirectory(source, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := dir.ResolveName(ctx, 4)
	require.NoError(t, err)
	assert.True(t, res.Pending)
	assert.Empty(t, res.Name)

	close(source.release)
	assert.Eventually(t, func() bool {
		res, err := dir.ResolveName(context.Background(), 4)
		return err == nil && res.Name == "Bea Electric" && !res.Pending
	}, time.Second, 10*time.Millisecond)
}
