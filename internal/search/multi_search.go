package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	internalErrors "github.com/gcbaptista/gedcom-search/internal/errors"
	"github.com/gcbaptista/gedcom-search/services"
)

// MultiSearch executes multiple named search queries in parallel. The first
// failing query cancels the others and its error is returned. When ctx ends
// early, every query still returns what it scored so far, marked Partial.
func (s *Service) MultiSearch(ctx context.Context, multiQuery services.MultiSearchQuery) (*services.MultiSearchResult, error) {
	startTime := time.Now()

	if len(multiQuery.Queries) == 0 {
		return nil, internalErrors.NewInvalidArgumentError("queries", "at least one query is required")
	}

	seen := make(map[string]bool, len(multiQuery.Queries))
	for i, namedQuery := range multiQuery.Queries {
		if namedQuery.Name == "" {
			return nil, internalErrors.NewInvalidArgumentError(fmt.Sprintf("queries[%d].name", i), "each query must have a non-empty name")
		}
		if seen[namedQuery.Name] {
			return nil, internalErrors.NewInvalidArgumentError(fmt.Sprintf("queries[%d].name", i),
				fmt.Sprintf("duplicate query name '%s'", namedQuery.Name))
		}
		seen[namedQuery.Name] = true
	}

	limit := multiQuery.Limit
	if limit == 0 {
		limit = services.NewSearchQuery("").Limit
	}

	var mu sync.Mutex
	results := make(map[string]services.SearchResult, len(multiQuery.Queries))

	g, gctx := errgroup.WithContext(ctx)
	for _, namedQuery := range multiQuery.Queries {
		namedQuery := namedQuery
		g.Go(func() error {
			result, err := s.Search(gctx, services.SearchQuery{QueryString: namedQuery.Query, Limit: limit})
			if err != nil {
				return fmt.Errorf("error executing query '%s': %w", namedQuery.Name, err)
			}
			mu.Lock()
			results[namedQuery.Name] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	processingTime := time.Since(startTime)

	return &services.MultiSearchResult{
		Results:          results,
		TotalQueries:     len(multiQuery.Queries),
		ProcessingTimeMs: float64(processingTime.Nanoseconds()) / 1e6,
	}, nil
}
