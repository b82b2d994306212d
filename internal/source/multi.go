package source

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/spiffcs/contribs/internal/constants"
	"github.com/spiffcs/contribs/internal/log"
	"github.com/spiffcs/contribs/internal/model"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc is called after each source completes.
type ProgressFunc func(name string, count int, done, total int)

// MultiSource fetches several sources concurrently and merges them.
//
// Results are concatenated in source order, not completion order, and a
// contributor ID seen in an earlier source hides later duplicates.
type MultiSource struct {
	sources  []Source
	workers  int
	progress ProgressFunc
}

// MultiOption configures a MultiSource.
type MultiOption func(*MultiSource)

// WithWorkers bounds concurrent fetches.
func WithWorkers(n int) MultiOption {
	return func(m *MultiSource) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithProgress registers a completion callback. It may be called from
// several goroutines at once.
func WithProgress(fn ProgressFunc) MultiOption {
	return func(m *MultiSource) {
		m.progress = fn
	}
}

// NewMultiSource combines sources.
func NewMultiSource(sources []Source, opts ...MultiOption) *MultiSource {
	m := &MultiSource{
		sources: sources,
		workers: constants.DefaultFetchWorkers,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns a summary of the combined sources
func (m *MultiSource) Name() string {
	if len(m.sources) == 1 {
		return m.sources[0].Name()
	}
	return fmt.Sprintf("%d sources", len(m.sources))
}

// Contributors fetches every source. The first error cancels the rest.
func (m *MultiSource) Contributors(ctx context.Context) ([]model.Contributor, error) {
	results := make([][]model.Contributor, len(m.sources))
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i, src := range m.sources {
		g.Go(func() error {
			list, err := src.Contributors(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name(), err)
			}
			results[i] = list

			n := int(done.Add(1))
			log.Debug("source fetched", "source", src.Name(), "count", len(list))
			if m.progress != nil {
				m.progress(src.Name(), len(list), n, len(m.sources))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Merge(results...), nil
}

// Merge concatenates lists in order, keeping the first contributor for each
// non-empty ID. Contributors without an ID are always kept.
func Merge(lists ...[]model.Contributor) []model.Contributor {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	seen := make(map[string]bool, total)
	out := make([]model.Contributor, 0, total)
	for _, l := range lists {
		for _, c := range l {
			if c.ID != "" {
				if seen[c.ID] {
					continue
				}
				seen[c.ID] = true
			}
			out = append(out, c)
		}
	}
	return out
}
