package model

// Strategy names a match strategy of the scorer. The names double as the keys
// of the "match" section of the weight configuration.
type Strategy string

const (
	StrategyNone               Strategy = ""
	StrategyExactWords         Strategy = "exactWords"
	StrategyOutOfOrderWords    Strategy = "outOfOrderWords"
	StrategyPartialWords       Strategy = "partialWords"
	StrategyExactPhonetic      Strategy = "exactPhonetic"
	StrategyOutOfOrderPhonetic Strategy = "outOfOrderPhonetic"
	StrategyPartialPhonetic    Strategy = "partialPhonetic"
)

// Strategies lists every strategy in priority order: exact before
// out-of-order before partial, word matching before phonetic matching.
// When two strategies produce the same score the earlier one is reported.
var Strategies = []Strategy{
	StrategyExactWords,
	StrategyOutOfOrderWords,
	StrategyPartialWords,
	StrategyExactPhonetic,
	StrategyOutOfOrderPhonetic,
	StrategyPartialPhonetic,
}

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	for _, known := range Strategies {
		if s == known {
			return true
		}
	}
	return false
}
