package tradesperson

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"equitystek/server/internal/models"
)

// Resolution is the outcome of a name lookup. Pending is set when the caller
// stopped waiting before the lookup finished; the lookup keeps running and a
// later call will see the cached name.
type Resolution struct {
	Name    string `json:"name,omitempty"`
	Pending bool   `json:"pending"`
}

type NameResolver interface {
	ResolveName(ctx context.Context, id int64) (Resolution, error)
}

// Source loads tradesperson records. *database.Database satisfies it.
type Source interface {
	GetTradesperson(ctx context.Context, id int64) (*models.Tradesperson, error)
}

// Directory resolves tradesperson names with a per-instance cache. Concurrent
// lookups for the same id share one call to the source.
type Directory struct {
	source        Source
	logger        *logrus.Logger
	lookupTimeout time.Duration

	group singleflight.Group
	mu    sync.RWMutex
	names map[int64]string
}

func NewDirectory(source Source, logger *logrus.Logger) *Directory {
	if logger == nil {
		logger = logrus.New()
	}
	return &Directory{
		source:        source,
		logger:        logger,
		lookupTimeout: 10 * time.Second,
		names:         make(map[int64]string),
	}
}

func (d *Directory) ResolveName(ctx context.Context, id int64) (Resolution, error) {
	if name, ok := d.cached(id); ok {
		return Resolution{Name: name}, nil
	}

	ch := d.group.DoChan(strconv.FormatInt(id, 10), func() (interface{}, error) {
		// The shared lookup must not die with whichever caller started it.
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.lookupTimeout)
		defer cancel()

		person, err := d.source.GetTradesperson(lookupCtx, id)
		if err != nil {
			return nil, fmt.Errorf("tradesperson %d: %w", id, err)
		}

		d.mu.Lock()
		d.names[id] = person.Name
		d.mu.Unlock()
		return person.Name, nil
	})

	select {
	case <-ctx.Done():
		d.logger.WithField("tradesperson_id", id).Debug("Name lookup still pending")
		return Resolution{Pending: true}, nil
	case res := <-ch:
		if res.Err != nil {
			return Resolution{}, res.Err
		}
		return Resolution{Name: res.Val.(string)}, nil
	}
}

// Forget drops a cached name so the next lookup goes to the source again.
func (d *Directory) Forget(id int64) {
	d.mu.Lock()
	delete(d.names, id)
	d.mu.Unlock()
}

func (d *Directory) cached(id int64) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.names[id]
	return name, ok
}
