package search

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/gedcom-search/config"
	internalErrors "github.com/gcbaptista/gedcom-search/internal/errors"
	"github.com/gcbaptista/gedcom-search/internal/match"
	"github.com/gcbaptista/gedcom-search/internal/metrics"
	"github.com/gcbaptista/gedcom-search/model"
	"github.com/gcbaptista/gedcom-search/services"
)

// Service implements the search logic over a record provider.
// It fulfills the services.Searcher and services.MultiSearcher interfaces.
type Service struct {
	provider   services.RecordProvider
	weights    *config.WeightModel
	scorer     *match.Scorer
	aggregator *Aggregator
	workers    int
	logger     *zap.Logger
}

// NewService creates a new search Service. workers <= 0 uses one worker per CPU
// and a nil logger discards log output.
func NewService(provider services.RecordProvider, weights *config.WeightModel, scorer *match.Scorer, workers int, logger *zap.Logger) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("record provider cannot be nil")
	}
	if weights == nil {
		return nil, fmt.Errorf("weight model cannot be nil")
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer cannot be nil")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		provider:   provider,
		weights:    weights,
		scorer:     scorer,
		aggregator: NewAggregator(weights),
		workers:    workers,
		logger:     logger,
	}, nil
}

// Weights returns the weight model used for scoring.
func (s *Service) Weights() *config.WeightModel {
	return s.weights
}

// Search scores every record the provider exposes against the query and
// returns the best ones, highest score first. Records with equal scores keep
// provider order.
//
// Records the provider fails to read are reported as warnings and skipped.
// When the context ends or query.MaxRecords is reached, the records scored so
// far are ranked and the result is marked Partial.
func (s *Service) Search(ctx context.Context, query services.SearchQuery) (services.SearchResult, error) {
	startTime := time.Now()

	if query.Limit <= 0 {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return services.SearchResult{}, internalErrors.NewInvalidArgumentError("limit",
			fmt.Sprintf("must be a positive integer, got %d", query.Limit))
	}
	if query.MaxRecords < 0 {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return services.SearchResult{}, internalErrors.NewInvalidArgumentError("max_records",
			fmt.Sprintf("cannot be negative, got %d", query.MaxRecords))
	}

	q := match.NewQuery(query.QueryString)
	result := services.SearchResult{
		Hits:    []services.ScoredResult{},
		Limit:   query.Limit,
		QueryId: uuid.New().String(),
		Tokens:  q.Tokens,
	}

	if q.Empty() {
		result.Took = time.Since(startTime).Milliseconds()
		metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
		return result, nil
	}

	refs, warnings := s.collectRecords()
	if query.MaxRecords > 0 && len(refs) > query.MaxRecords {
		refs = refs[:query.MaxRecords]
		result.Partial = true
	}

	outputs := s.scoreRecords(ctx, q, refs)

	var hits []candidateHit
	for _, out := range outputs {
		hits = append(hits, out.hits...)
		warnings = append(warnings, out.warnings...)
		for recordType, n := range out.scanned {
			result.RecordsScanned += n
			metrics.RecordsScoredTotal.WithLabelValues(string(recordType)).Add(float64(n))
		}
		if out.stopped {
			result.Partial = true
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].result.Score != hits[j].result.Score {
			return hits[i].result.Score > hits[j].result.Score
		}
		return hits[i].seq < hits[j].seq
	})

	result.Total = len(hits)
	if len(hits) > query.Limit {
		hits = hits[:query.Limit]
	}
	for _, hit := range hits {
		result.Hits = append(result.Hits, hit.result)
	}

	if len(warnings) > 0 {
		sort.SliceStable(warnings, func(i, j int) bool { return warnings[i].seq < warnings[j].seq })
		result.Warnings = make([]services.Warning, 0, len(warnings))
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, w.warning)
			metrics.RecordWarningsTotal.WithLabelValues(string(w.warning.RecordType)).Inc()
		}
	}

	took := time.Since(startTime)
	result.Took = took.Milliseconds()
	metrics.SearchDuration.Observe(took.Seconds())

	status := "ok"
	if result.Partial {
		status = "partial"
	}
	metrics.SearchRequestsTotal.WithLabelValues(status).Inc()

	s.logger.Debug("search completed",
		zap.String("query_id", result.QueryId),
		zap.Strings("tokens", result.Tokens),
		zap.Int("total", result.Total),
		zap.Int("records_scanned", result.RecordsScanned),
		zap.Int("warnings", len(result.Warnings)),
		zap.Bool("partial", result.Partial),
		zap.Duration("took", took),
	)

	return result, nil
}

// collectRecords lists every record in provider order. A record type that
// cannot be listed is reported as a warning and skipped.
func (s *Service) collectRecords() ([]recordRef, []recordWarning) {
	var refs []recordRef
	var warnings []recordWarning

	for _, recordType := range s.provider.RecordTypes() {
		ids, err := s.provider.RecordIDs(recordType)
		if err != nil {
			readErr := internalErrors.NewRecordReadError(string(recordType), "", err)
			s.logger.Warn("skipping record type", zap.String("record_type", string(recordType)), zap.Error(readErr))
			warnings = append(warnings, recordWarning{
				warning: services.Warning{RecordType: recordType, Message: readErr.Error()},
				seq:     len(refs),
			})
			continue
		}
		for _, id := range ids {
			refs = append(refs, recordRef{recordType: recordType, id: id, seq: len(refs)})
		}
	}
	return refs, warnings
}

// scoreRecords fans the records out over the workers. Worker w scores every
// record whose position modulo the worker count is w, so each worker owns its
// output and no locking is needed.
func (s *Service) scoreRecords(ctx context.Context, q *match.Query, refs []recordRef) []workerOutput {
	workers := s.workers
	if workers > len(refs) {
		workers = len(refs)
	}
	outputs := make([]workerOutput, workers)
	matchWeights := s.weights.MatchWeights()

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			out := workerOutput{scanned: make(map[model.RecordType]int)}
			for i := w; i < len(refs); i += workers {
				if ctx.Err() != nil {
					out.stopped = true
					break
				}
				ref := refs[i]
				fields, err := s.provider.RecordFields(ref.recordType, ref.id)
				if err != nil {
					readErr := internalErrors.NewRecordReadError(string(ref.recordType), ref.id, err)
					s.logger.Warn("skipping record", zap.String("record_type", string(ref.recordType)),
						zap.String("record_id", ref.id), zap.Error(readErr))
					out.warnings = append(out.warnings, recordWarning{
						warning: services.Warning{RecordType: ref.recordType, RecordID: ref.id, Message: readErr.Error()},
						seq:     ref.seq,
					})
					continue
				}
				out.scanned[ref.recordType]++

				if scored, ok := s.scoreRecord(q, ref.recordType, ref.id, fields, matchWeights); ok {
					out.hits = append(out.hits, candidateHit{result: scored, seq: ref.seq})
				}
			}
			outputs[w] = out
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return outputs
}

// ScoreRecord scores one record against a raw query with the service's
// weights. The boolean is false when the record scores 0.
func (s *Service) ScoreRecord(queryString string, record model.Record) (services.ScoredResult, bool) {
	q := match.NewQuery(queryString)
	if q.Empty() {
		return services.ScoredResult{}, false
	}
	return s.scoreRecord(q, record.Type, record.ID, record.Fields, s.weights.MatchWeights())
}

func (s *Service) scoreRecord(q *match.Query, recordType model.RecordType, id string, fields model.Fields,
	matchWeights config.MatchWeights) (services.ScoredResult, bool) {
	if s.weights.TypeWeight(recordType) <= 0 {
		return services.ScoredResult{}, false
	}

	var matches []services.FieldMatch
	for _, path := range fields.Paths() {
		// Unweighted paths cannot contribute, so their values are never compared.
		if s.weights.FieldWeight(recordType, path) <= 0 {
			continue
		}
		for _, value := range fields[path] {
			r := s.scorer.Score(q, value, matchWeights)
			if r.Score <= 0 {
				continue
			}
			matches = append(matches, services.FieldMatch{
				RecordID:   id,
				FieldPath:  path,
				Strategy:   r.Strategy,
				MatchScore: r.Score,
				Value:      value,
			})
		}
	}

	score, contributing := s.aggregator.Aggregate(recordType, matches)
	if score <= 0 {
		return services.ScoredResult{}, false
	}
	return services.ScoredResult{
		RecordID:      id,
		RecordType:    recordType,
		Score:         score,
		MatchedFields: contributing,
	}, true
}
