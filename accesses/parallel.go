package accesses

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// AnalyzeAll runs NewAccesses on every computation using at most workers
// goroutines (GOMAXPROCS when workers <= 0). Results keep the input order.
// The first failure cancels the remaining work and is returned alone.
func AnalyzeAll(ctx context.Context, comps []Computation, workers int) ([]*Accesses, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]*Accesses, len(comps))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, comp := range comps {
		i, comp := i, comp
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			acc, err := NewAccesses(comp)
			if err != nil {
				return err
			}
			results[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
