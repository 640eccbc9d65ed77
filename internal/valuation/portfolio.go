package valuation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Input pairs a property with its maintenance ledger.
type Input struct {
	Attributes PropertyAttributes
	Events     []MaintenanceEvent
}

// CalculateAll values every input concurrently with at most limit calculations
// in flight. Results keep the order of inputs. The first failure cancels the
// remaining work and is returned.
func (c *Calculator) CalculateAll(ctx context.Context, inputs []Input, limit int) ([]*Valuation, error) {
	results := make([]*Valuation, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := c.Calculate(inputs[i].Attributes, inputs[i].Events)
			if err != nil {
				return fmt.Errorf("property %d: %w", inputs[i].Attributes.PropertyID, err)
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
