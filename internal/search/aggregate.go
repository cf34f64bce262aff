package search

import (
	"sort"

	"github.com/gcbaptista/gedcom-search/config"
	"github.com/gcbaptista/gedcom-search/model"
	"github.com/gcbaptista/gedcom-search/services"
)

// Aggregator turns per-field match scores into a record score.
//
// A record's score is its type weight times the sum, over field paths, of the
// field's match score times the field weight. A path with several values only
// counts its best value. Paths without a configured weight contribute nothing.
type Aggregator struct {
	weights *config.WeightModel
}

// NewAggregator creates an aggregator for a weight model.
func NewAggregator(weights *config.WeightModel) *Aggregator {
	return &Aggregator{weights: weights}
}

// Aggregate returns the record score and the matches that contributed to it,
// ordered by field path. FieldWeight and Contribution are filled in from the
// weight model; values set by the caller are ignored.
func (a *Aggregator) Aggregate(recordType model.RecordType, matches []services.FieldMatch) (float64, []services.FieldMatch) {
	bestByPath := make(map[string]services.FieldMatch, len(matches))
	for _, m := range matches {
		if m.MatchScore <= 0 {
			continue
		}
		fieldWeight := a.weights.FieldWeight(recordType, m.FieldPath)
		if fieldWeight <= 0 {
			continue
		}
		m.FieldWeight = fieldWeight
		m.Contribution = m.MatchScore * fieldWeight
		if current, ok := bestByPath[m.FieldPath]; ok && current.Contribution >= m.Contribution {
			continue
		}
		bestByPath[m.FieldPath] = m
	}

	if len(bestByPath) == 0 {
		return 0, nil
	}

	paths := make([]string, 0, len(bestByPath))
	for path := range bestByPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	contributing := make([]services.FieldMatch, 0, len(paths))
	sum := 0.0
	for _, path := range paths {
		m := bestByPath[path]
		sum += m.Contribution
		contributing = append(contributing, m)
	}

	return a.weights.TypeWeight(recordType) * sum, contributing
}
