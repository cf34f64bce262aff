package match

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/gedcom-search/config"
	"github.com/gcbaptista/gedcom-search/internal/phonetic"
	"github.com/gcbaptista/gedcom-search/internal/tokenizer"
	"github.com/gcbaptista/gedcom-search/model"
)

// --- Test Helpers ---

func newTestScorer(t *testing.T, algorithm string) *Scorer {
	t.Helper()
	enc, err := phonetic.New(algorithm)
	require.NoError(t, err)
	return NewScorer(enc)
}

// referenceScore evaluates every strategy without skipping and returns the
// maximum, preferring earlier strategies on ties.
func referenceScore(enc phonetic.Encoder, query, value string, weights config.MatchWeights) Result {
	qTokens := tokenizer.Normalize(query)
	vTokens := tokenizer.Normalize(value)
	if len(qTokens) == 0 || len(vTokens) == 0 {
		return Result{}
	}
	qText := tokenizer.Simplify(query)
	vText := tokenizer.Simplify(value)

	candidates := make(map[model.Strategy]float64)
	if containsText(vText, qText) {
		candidates[model.StrategyExactWords] = weights[model.StrategyExactWords]
	}
	uq := unique(qTokens)
	found := 0
	for _, token := range uq {
		if containsText(vText, token) {
			found++
		}
	}
	if found == len(uq) {
		candidates[model.StrategyOutOfOrderWords] = weights[model.StrategyOutOfOrderWords]
	} else if found > 0 {
		candidates[model.StrategyPartialWords] = weights[model.StrategyPartialWords] * float64(found) / float64(len(uq))
	}

	qCodes := phonetic.EncodeAll(enc, qTokens)
	vCodes := phonetic.EncodeAll(enc, vTokens)
	if containsSequence(vCodes, qCodes) {
		candidates[model.StrategyExactPhonetic] = weights[model.StrategyExactPhonetic]
	}
	uc := unique(qCodes)
	found = 0
	for _, code := range uc {
		for _, v := range vCodes {
			if code != "" && code == v {
				found++
				break
			}
		}
	}
	if found == len(uc) {
		candidates[model.StrategyOutOfOrderPhonetic] = weights[model.StrategyOutOfOrderPhonetic]
	} else if found > 0 {
		candidates[model.StrategyPartialPhonetic] = weights[model.StrategyPartialPhonetic] * float64(found) / float64(len(uc))
	}

	var best Result
	for _, strategy := range model.Strategies {
		if score, ok := candidates[strategy]; ok && score > best.Score {
			best = Result{Score: score, Strategy: strategy}
		}
	}
	return best
}

func containsText(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

// --- Test Cases ---

func TestNewQuery(t *testing.T) {
	q := NewQuery("  O'Brien, John! john ")
	assert.Equal(t, []string{"obrien", "john", "john"}, q.Tokens)
	assert.Equal(t, "obrien john john", q.Text())
	assert.Equal(t, []string{"obrien", "john"}, q.uniqTokens)
	assert.False(t, q.Empty())

	assert.True(t, NewQuery(" ,.; ").Empty())
}

func TestScore_Scenarios(t *testing.T) {
	defaults := config.DefaultMatchWeights()

	tests := []struct {
		name         string
		query        string
		value        string
		weights      config.MatchWeights
		wantScore    float64
		wantStrategy model.Strategy
	}{
		{
			name:         "exact phrase",
			query:        "john smith",
			value:        "Mr. John Smith, Jr.",
			weights:      defaults,
			wantScore:    10,
			wantStrategy: model.StrategyExactWords,
		},
		{
			name:         "words out of order",
			query:        "john smith",
			value:        "Smith, John A.",
			weights:      config.MatchWeights{model.StrategyExactWords: 10, model.StrategyOutOfOrderWords: 7, model.StrategyPartialWords: 3, model.StrategyExactPhonetic: 6, model.StrategyOutOfOrderPhonetic: 5, model.StrategyPartialPhonetic: 3},
			wantScore:    7,
			wantStrategy: model.StrategyOutOfOrderWords,
		},
		{
			name:         "sound-alike phrase",
			query:        "jon smith",
			value:        "John Smith",
			weights:      defaults,
			wantScore:    6,
			wantStrategy: model.StrategyExactPhonetic,
		},
		{
			name:         "two of three words",
			query:        "john henry smith",
			value:        "John Smith",
			weights:      defaults,
			wantScore:    2,
			wantStrategy: model.StrategyPartialWords,
		},
		{
			name:         "sound-alike words out of order",
			query:        "jon smyth",
			value:        "Smith, John",
			weights:      defaults,
			wantScore:    5,
			wantStrategy: model.StrategyOutOfOrderPhonetic,
		},
		{
			name:         "duplicate query tokens are ignored",
			query:        "smith smith",
			value:        "Smith, John",
			weights:      defaults,
			wantScore:    7,
			wantStrategy: model.StrategyOutOfOrderWords,
		},
		{
			name:         "substring of a longer word",
			query:        "bost",
			value:        "Boston, Suffolk, Massachusetts",
			weights:      defaults,
			wantScore:    10,
			wantStrategy: model.StrategyExactWords,
		},
		{
			name:         "no match",
			query:        "william",
			value:        "Mary Jones",
			weights:      defaults,
			wantScore:    0,
			wantStrategy: model.StrategyNone,
		},
		{
			name:         "empty field value",
			query:        "john",
			value:        "  ",
			weights:      defaults,
			wantScore:    0,
			wantStrategy: model.StrategyNone,
		},
		{
			name:         "years match as text",
			query:        "1850",
			value:        "12 MAR 1850",
			weights:      defaults,
			wantScore:    10,
			wantStrategy: model.StrategyExactWords,
		},
		{
			name:         "zero weights never match",
			query:        "john smith",
			value:        "John Smith",
			weights:      config.MatchWeights{},
			wantScore:    0,
			wantStrategy: model.StrategyNone,
		},
	}

	for _, algorithm := range []string{phonetic.Soundex, phonetic.Metaphone} {
		scorer := newTestScorer(t, algorithm)
		for _, tt := range tests {
			t.Run(algorithm+"/"+tt.name, func(t *testing.T) {
				got := scorer.Score(NewQuery(tt.query), tt.value, tt.weights)
				assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
				assert.Equal(t, tt.wantStrategy, got.Strategy)
			})
		}
	}
}

func TestScore_TieBreakPrefersHigherPriority(t *testing.T) {
	scorer := newTestScorer(t, phonetic.Soundex)
	equal := config.MatchWeights{}
	for _, strategy := range model.Strategies {
		equal[strategy] = 5
	}

	got := scorer.Score(NewQuery("john smith"), "John Smith", equal)
	assert.Equal(t, Result{Score: 5, Strategy: model.StrategyExactWords}, got)

	got = scorer.Score(NewQuery("john smith"), "Smith John", equal)
	assert.Equal(t, Result{Score: 5, Strategy: model.StrategyOutOfOrderWords}, got)

	// Phonetic-only match, all phonetic strategies tie.
	got = scorer.Score(NewQuery("jon"), "John", equal)
	assert.Equal(t, Result{Score: 5, Strategy: model.StrategyExactPhonetic}, got)
}

func TestScore_PhoneticOutranksWeakWordMatch(t *testing.T) {
	scorer := newTestScorer(t, phonetic.Soundex)
	weights := config.DefaultMatchWeights()

	// partialWords gives 1.5 but exactPhonetic gives 6: the maximum wins.
	got := scorer.Score(NewQuery("jon smith"), "John Smith", weights)
	assert.Equal(t, 6.0, got.Score)

	// With phonetic strategies disabled the partial word score remains.
	weights[model.StrategyExactPhonetic] = 0
	weights[model.StrategyOutOfOrderPhonetic] = 0
	weights[model.StrategyPartialPhonetic] = 0
	got = scorer.Score(NewQuery("jon smith"), "John Smith", weights)
	assert.Equal(t, Result{Score: 1.5, Strategy: model.StrategyPartialWords}, got)
}

func TestScore_MatchesExhaustiveEvaluation(t *testing.T) {
	queries := []string{
		"john smith", "jon smith", "smith", "mary ann jones", "boston 1850",
		"catherine", "smith smith john", "o'brien", "zzz", "robert rupert",
	}
	values := []string{
		"John Smith", "Smith, John A.", "Jon Smyth of Boston", "Mary Anne Jones",
		"Born 12 MAR 1850 in Boston", "Katherine O'Brien", "Robert Rupert",
		"", "the john smith family bible", "Rupert Robert",
	}
	weightSets := []config.MatchWeights{
		config.DefaultMatchWeights(),
		{ // phonetic ranked above words
			model.StrategyExactWords: 4, model.StrategyOutOfOrderWords: 3, model.StrategyPartialWords: 2,
			model.StrategyExactPhonetic: 9, model.StrategyOutOfOrderPhonetic: 8, model.StrategyPartialPhonetic: 7,
		},
		{ // partial weights above their "all" counterparts
			model.StrategyExactWords: 1, model.StrategyOutOfOrderWords: 1, model.StrategyPartialWords: 12,
			model.StrategyExactPhonetic: 1, model.StrategyOutOfOrderPhonetic: 1, model.StrategyPartialPhonetic: 12,
		},
	}

	for _, algorithm := range phonetic.Available() {
		scorer := newTestScorer(t, algorithm)
		for wi, weights := range weightSets {
			for _, query := range queries {
				for _, value := range values {
					name := fmt.Sprintf("%s/w%d/%s|%s", algorithm, wi, query, value)
					want := referenceScore(scorer.Encoder(), query, value, weights)
					got := scorer.Score(NewQuery(query), value, weights)
					assert.Equal(t, want, got, name)
				}
			}
		}
	}
}

func TestScore_BoundedAndDeterministic(t *testing.T) {
	scorer := newTestScorer(t, phonetic.Metaphone)
	weights := config.DefaultMatchWeights()
	maxWeight := config.DefaultWeightModel().MaxMatchWeight()

	pairs := [][2]string{
		{"john smith", "John Smith"},
		{"john smith", "Smith, John"},
		{"a", "a a a a a"},
		{"mary", "Mary, Mary, Mary"},
		{"jon smyth", "John Smith"},
	}
	for _, pair := range pairs {
		first := scorer.Score(NewQuery(pair[0]), pair[1], weights)
		second := scorer.Score(NewQuery(pair[0]), pair[1], weights)
		assert.Equal(t, first, second, "determinism for %v", pair)
		assert.LessOrEqual(t, first.Score, maxWeight, "bounded score for %v", pair)
	}
}

func TestScore_PhoneticCodesDerivedLazily(t *testing.T) {
	scorer := newTestScorer(t, phonetic.Soundex)
	weights := config.DefaultMatchWeights()

	q := NewQuery("john smith")
	scorer.Score(q, "John Smith", weights)
	assert.Nil(t, q.codes, "exact word match at the top weight skips phonetic encoding")

	scorer.Score(q, "Jon Smyth", weights)
	assert.Equal(t, []string{"J500", "S530"}, q.codes)
}

func TestPartialScore_Monotonic(t *testing.T) {
	for total := 1; total <= 6; total++ {
		previous := -1.0
		for matched := 0; matched <= total; matched++ {
			score := PartialScore(3, matched, total)
			assert.GreaterOrEqual(t, score, previous, "matched=%d total=%d", matched, total)
			previous = score
		}
	}
	assert.InDelta(t, 2.0, PartialScore(3, 2, 3), 1e-12)
	assert.Equal(t, 0.0, PartialScore(3, 0, 3))
	assert.Equal(t, 0.0, PartialScore(3, 1, 0))
	assert.Equal(t, 3.0, PartialScore(3, 5, 3))
}

func TestContainsSequence(t *testing.T) {
	tests := []struct {
		name     string
		haystack []string
		needle   []string
		want     bool
	}{
		{"empty needle", []string{"A"}, nil, false},
		{"needle longer than haystack", []string{"A"}, []string{"A", "B"}, false},
		{"single code", []string{"X", "A", "Y"}, []string{"A"}, true},
		{"contiguous at start", []string{"A", "B", "C"}, []string{"A", "B"}, true},
		{"contiguous at end", []string{"C", "A", "B"}, []string{"A", "B"}, true},
		{"first occurrence fails, later succeeds", []string{"A", "C", "A", "B"}, []string{"A", "B"}, true},
		{"repeated first code", []string{"A", "A", "B"}, []string{"A", "B"}, true},
		{"not contiguous", []string{"A", "C", "B"}, []string{"A", "B"}, false},
		{"wrong order", []string{"B", "A"}, []string{"A", "B"}, false},
		{"run truncated by end", []string{"B", "A"}, []string{"A", "B"}, false},
		{"empty codes never match", []string{"", "B"}, []string{"", "B"}, false},
		{"empty code in middle", []string{"A", "", "B"}, []string{"A", "", "B"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsSequence(tt.haystack, tt.needle))
		})
	}
}
