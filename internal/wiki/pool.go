package wiki

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Looker is anything that can enrich one (title, author) pair.
type Looker interface {
	Lookup(ctx context.Context, title, author string) Result
}

// ProgressFunc is called once per finished lookup, in completion order.
type ProgressFunc func(done, total int, key Key, r Result)

type completed struct {
	index  int
	result Result
}

// EnrichAll looks up every key with at most workers lookups in flight.
// Results are returned in the order of keys regardless of completion order.
func EnrichAll(ctx context.Context, l Looker, keys []Key, workers int, progress ProgressFunc) []Result {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(keys))
	done := make(chan completed)

	var g errgroup.Group
	g.SetLimit(workers)
	go func() {
		for i, k := range keys {
			g.Go(func() error {
				var r Result
				if err := ctx.Err(); err != nil {
					r = errorResult(err)
				} else {
					r = l.Lookup(ctx, k.Title, k.Author)
				}
				done <- completed{index: i, result: r}
				return nil
			})
		}
		_ = g.Wait()
		close(done)
	}()

	n := 0
	for c := range done {
		results[c.index] = c.result
		n++
		if progress != nil {
			progress(n, len(keys), keys[c.index], c.result)
		}
	}
	return results
}
