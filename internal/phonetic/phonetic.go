// Package phonetic maps tokens to approximate-pronunciation codes.
//
// Every algorithm implements [Encoder] and is a pure function of its input, so
// callers can swap Soundex for Metaphone (or wrap either in a cache) without
// changing how codes are compared.
package phonetic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	internalErrors "github.com/gcbaptista/gedcom-search/internal/errors"
)

// Algorithm names accepted by New.
const (
	Soundex   = "soundex"
	Metaphone = "metaphone"
	NYSIIS    = "nysiis"
	Phonex    = "phonex"

	// DefaultAlgorithm is used when no algorithm is configured.
	DefaultAlgorithm = Metaphone
)

// Encoder maps a token to a short phonetic code.
type Encoder interface {
	// Encode returns the phonetic code of token. Empty tokens yield "".
	Encode(token string) string
	// Name returns the algorithm name.
	Name() string
}

// algorithm adapts a matchr encoding function to the Encoder interface.
type algorithm struct {
	name   string
	encode func(string) string
}

var algorithms = map[string]func(string) string{
	Soundex: matchr.Soundex,
	Metaphone: func(token string) string {
		primary, _ := matchr.DoubleMetaphone(token)
		return primary
	},
	NYSIIS: matchr.NYSIIS,
	Phonex: matchr.Phonex,
}

// New returns the encoder registered under name.
func New(name string) (Encoder, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultAlgorithm
	}
	fn, ok := algorithms[key]
	if !ok {
		return nil, internalErrors.NewConfigurationError("phonetic_algorithm",
			fmt.Sprintf("unknown algorithm '%s' (available: %s)", name, strings.Join(Available(), ", ")))
	}
	return algorithm{name: key, encode: fn}, nil
}

// Available lists the registered algorithm names in sorted order.
func Available() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a algorithm) Name() string {
	return a.name
}

// Encode returns the code for token. Tokens made only of digits (years, house
// numbers) are returned unchanged: the sound-alike algorithms discard digits,
// which would make every year collide.
// A token the algorithm cannot encode yields "".
func (a algorithm) Encode(token string) (code string) {
	if token == "" {
		return ""
	}
	if isNumeric(token) {
		return token
	}
	defer func() {
		if r := recover(); r != nil {
			code = ""
		}
	}()
	return a.encode(token)
}

// EncodeAll encodes every token in order.
func EncodeAll(enc Encoder, tokens []string) []string {
	codes := make([]string, len(tokens))
	for i, token := range tokens {
		codes[i] = enc.Encode(token)
	}
	return codes
}

func isNumeric(token string) bool {
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return false
		}
	}
	return true
}
