package phonetic

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/gedcom-search/internal/errors"
)

func TestNew(t *testing.T) {
	for _, name := range Available() {
		t.Run(name, func(t *testing.T) {
			enc, err := New(name)
			require.NoError(t, err)
			assert.Equal(t, name, enc.Name())
		})
	}

	t.Run("empty name selects default", func(t *testing.T) {
		enc, err := New("")
		require.NoError(t, err)
		assert.Equal(t, DefaultAlgorithm, enc.Name())
	})

	t.Run("case insensitive", func(t *testing.T) {
		enc, err := New(" Soundex ")
		require.NoError(t, err)
		assert.Equal(t, Soundex, enc.Name())
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := New("caverphone")
		require.Error(t, err)
		assert.True(t, errors.Is(err, internalErrors.ErrConfiguration))
	})
}

func TestEncode_SoundAlikes(t *testing.T) {
	tests := []struct {
		algorithm string
		a, b      string
	}{
		{Soundex, "jon", "john"},
		{Soundex, "smith", "smyth"},
		{Soundex, "robert", "rupert"},
		{Metaphone, "jon", "john"},
		{Metaphone, "smith", "smyth"},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm+"/"+tt.a+"~"+tt.b, func(t *testing.T) {
			enc, err := New(tt.algorithm)
			require.NoError(t, err)
			codeA := enc.Encode(tt.a)
			assert.NotEmpty(t, codeA)
			assert.Equal(t, codeA, enc.Encode(tt.b))
		})
	}
}

func TestEncode_EdgeCases(t *testing.T) {
	for _, name := range Available() {
		enc, err := New(name)
		require.NoError(t, err)

		assert.Equal(t, "", enc.Encode(""), "%s: empty token", name)
		assert.Equal(t, "1850", enc.Encode("1850"), "%s: numeric token", name)
		assert.NotEqual(t, enc.Encode("1850"), enc.Encode("1900"), "%s: distinct years", name)
		assert.Equal(t, enc.Encode("boston"), enc.Encode("boston"), "%s: deterministic", name)
	}
}

func TestEncodeAll(t *testing.T) {
	enc, err := New(Soundex)
	require.NoError(t, err)

	codes := EncodeAll(enc, []string{"john", "smith", "1850"})
	assert.Equal(t, []string{"J500", "S530", "1850"}, codes)
	assert.Empty(t, EncodeAll(enc, nil))
}

func TestCachedEncoder(t *testing.T) {
	inner, err := New(Soundex)
	require.NoError(t, err)

	cached := NewCachedEncoder(inner, 2)
	assert.Equal(t, Soundex, cached.Name())
	assert.Equal(t, inner.Encode("john"), cached.Encode("john"))
	assert.Equal(t, inner.Encode("john"), cached.Encode("john"))
	assert.Equal(t, 1, cached.Len())

	cached.Encode("smith")
	cached.Encode("boston")
	assert.Equal(t, 2, cached.Len(), "cache is bounded by its size")

	assert.Equal(t, "", cached.Encode(""))
	assert.Equal(t, 2, cached.Len(), "empty tokens are not cached")
}

func TestCachedEncoder_DefaultSize(t *testing.T) {
	inner, err := New(Metaphone)
	require.NoError(t, err)
	cached := NewCachedEncoder(inner, 0)
	assert.Equal(t, inner.Encode("william"), cached.Encode("william"))
}

func TestCachedEncoder_Concurrent(t *testing.T) {
	inner, err := New(Metaphone)
	require.NoError(t, err)
	cached := NewCachedEncoder(inner, 64)

	tokens := []string{"john", "smith", "mary", "jones", "boston", "london", "1850"}
	want := EncodeAll(inner, tokens)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				got := EncodeAll(cached, tokens)
				assert.Equal(t, want, got)
			}
		}()
	}
	wg.Wait()
}
