// Package match scores a single field value against a search query.
//
// A field is compared with six strategies: exact phrase, all words in any
// order and a fraction of the words, each once on the normalized text and once
// on phonetic codes. The field's score is the best single strategy score; the
// strategies are never summed.
package match

import (
	"strings"
	"sync"

	"github.com/gcbaptista/gedcom-search/config"
	"github.com/gcbaptista/gedcom-search/internal/phonetic"
	"github.com/gcbaptista/gedcom-search/internal/tokenizer"
	"github.com/gcbaptista/gedcom-search/model"
)

// Query is a normalized search query. It is built once per search and shared
// read-only by every field comparison of that search.
type Query struct {
	Original string
	Tokens   []string

	text       string   // tokens joined by single spaces
	uniqTokens []string // tokens without duplicates, first occurrence order

	codesOnce sync.Once
	codes     []string // phonetic code of each token, derived on first use
	uniqCodes []string
}

// NewQuery normalizes raw into a Query.
func NewQuery(raw string) *Query {
	tokens := tokenizer.Normalize(raw)
	return &Query{
		Original:   raw,
		Tokens:     tokens,
		text:       strings.Join(tokens, " "),
		uniqTokens: unique(tokens),
	}
}

// Empty reports whether the query has no tokens.
func (q *Query) Empty() bool {
	return len(q.Tokens) == 0
}

// Text returns the normalized query text.
func (q *Query) Text() string {
	return q.text
}

func (q *Query) phoneticCodes(enc phonetic.Encoder) ([]string, []string) {
	q.codesOnce.Do(func() {
		q.codes = phonetic.EncodeAll(enc, q.Tokens)
		q.uniqCodes = unique(q.codes)
	})
	return q.codes, q.uniqCodes
}

// Result is the outcome of scoring one field value.
type Result struct {
	Score    float64
	Strategy model.Strategy
}

// Scorer compares queries with field values. It holds no mutable state
// besides the encoder, which must be safe for concurrent use.
type Scorer struct {
	encoder phonetic.Encoder
}

// NewScorer creates a scorer that uses enc for phonetic strategies.
func NewScorer(enc phonetic.Encoder) *Scorer {
	return &Scorer{encoder: enc}
}

// Encoder returns the phonetic encoder used by the scorer.
func (s *Scorer) Encoder() phonetic.Encoder {
	return s.encoder
}

// Score returns the best strategy score of fieldValue for the query.
//
// Strategies are evaluated in priority order and a later strategy only
// replaces the current best when it scores strictly higher, so ties report the
// higher-priority strategy. A strategy whose weight cannot beat the current
// best is skipped; that never changes the result because no strategy scores
// above its own weight.
//
// A field that matches no strategy scores 0 with StrategyNone.
func (s *Scorer) Score(q *Query, fieldValue string, weights config.MatchWeights) Result {
	var best Result
	if q.Empty() {
		return best
	}

	fieldTokens := tokenizer.Normalize(fieldValue)
	if len(fieldTokens) == 0 {
		return best
	}
	fieldText := strings.Join(fieldTokens, " ")

	consider := func(strategy model.Strategy, score float64) {
		if score > best.Score {
			best = Result{Score: score, Strategy: strategy}
		}
	}
	worthTrying := func(strategies ...model.Strategy) bool {
		for _, strategy := range strategies {
			if weights[strategy] > best.Score {
				return true
			}
		}
		return false
	}

	// Word strategies
	if worthTrying(model.StrategyExactWords) && strings.Contains(fieldText, q.text) {
		consider(model.StrategyExactWords, weights[model.StrategyExactWords])
	}

	if worthTrying(model.StrategyOutOfOrderWords, model.StrategyPartialWords) {
		matched := 0
		for _, token := range q.uniqTokens {
			if strings.Contains(fieldText, token) {
				matched++
			}
		}
		s.considerRatio(consider, matched, len(q.uniqTokens), weights,
			model.StrategyOutOfOrderWords, model.StrategyPartialWords)
	}

	// Phonetic strategies
	if !worthTrying(model.StrategyExactPhonetic, model.StrategyOutOfOrderPhonetic, model.StrategyPartialPhonetic) {
		return best
	}

	queryCodes, uniqQueryCodes := q.phoneticCodes(s.encoder)
	fieldCodes := phonetic.EncodeAll(s.encoder, fieldTokens)

	if worthTrying(model.StrategyExactPhonetic) && containsSequence(fieldCodes, queryCodes) {
		consider(model.StrategyExactPhonetic, weights[model.StrategyExactPhonetic])
	}

	if worthTrying(model.StrategyOutOfOrderPhonetic, model.StrategyPartialPhonetic) {
		fieldCodeSet := make(map[string]struct{}, len(fieldCodes))
		for _, code := range fieldCodes {
			if code != "" {
				fieldCodeSet[code] = struct{}{}
			}
		}
		matched := 0
		for _, code := range uniqQueryCodes {
			if _, ok := fieldCodeSet[code]; ok {
				matched++
			}
		}
		s.considerRatio(consider, matched, len(uniqQueryCodes), weights,
			model.StrategyOutOfOrderPhonetic, model.StrategyPartialPhonetic)
	}

	return best
}

// considerRatio applies the out-of-order rule (every unit matched) and the
// partial rule (some but not all units matched, weight scaled by the ratio).
func (s *Scorer) considerRatio(consider func(model.Strategy, float64), matched, total int,
	weights config.MatchWeights, allStrategy, partialStrategy model.Strategy) {
	if total == 0 || matched == 0 {
		return
	}
	if matched == total {
		consider(allStrategy, weights[allStrategy])
		return
	}
	consider(partialStrategy, PartialScore(weights[partialStrategy], matched, total))
}

// PartialScore scales weight by matched/total. It is non-decreasing in
// matched for a fixed total.
func PartialScore(weight float64, matched, total int) float64 {
	if total <= 0 || matched <= 0 {
		return 0
	}
	if matched > total {
		matched = total
	}
	return weight * float64(matched) / float64(total)
}

// containsSequence reports whether needle occurs as a contiguous run inside
// haystack. Every position holding needle's first element is tried from left
// to right and the first complete run wins. Empty codes never match, so two
// unencodable tokens are not treated as sounding alike.
func containsSequence(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	first := needle[0]
	if first == "" {
		return false
	}

	for start := 0; start+len(needle) <= len(haystack); start++ {
		if haystack[start] != first {
			continue
		}
		matched := true
		for offset := 1; offset < len(needle); offset++ {
			code := needle[offset]
			if code == "" || haystack[start+offset] != code {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// unique drops repeated entries, keeping the first occurrence. An empty
// phonetic code stays in the result so it counts as an unmatched unit.
func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
