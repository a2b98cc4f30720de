package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexCache_Match(t *testing.T) {
	cache := NewRegexCache(DefaultRegexTimeout)

	tests := []struct {
		name    string
		pattern string
		text    string
		want    bool
		wantErr bool
	}{
		{name: "case insensitive", pattern: "netflix", text: "NETFLIX.COM", want: true},
		{name: "search not anchored", pattern: "EATS", text: "UBER EATS ORDER", want: true},
		{name: "negative lookahead excludes", pattern: "UBER(?!.*EATS)", text: "UBER EATS ORDER", want: false},
		{name: "negative lookahead allows", pattern: "UBER(?!.*EATS)", text: "UBER TRIP", want: true},
		{name: "no match", pattern: "AMAZON", text: "NETFLIX", want: false},
		{name: "invalid pattern", pattern: "[invalid", text: "anything", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cache.Match(tt.pattern, tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegexCache_CachesPatterns(t *testing.T) {
	cache := NewRegexCache(0)

	first, err := cache.Compile("COSTCO")
	require.NoError(t, err)
	second, err := cache.Compile("COSTCO")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())

	_, err = cache.Compile("(")
	assert.Error(t, err)
	_, err = cache.Compile("(")
	assert.Error(t, err)
	assert.Equal(t, 2, cache.Len())
}

func TestRegexCache_ConcurrentUse(t *testing.T) {
	cache := NewRegexCache(DefaultRegexTimeout)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := cache.Match("STARBUCKS", "starbucks store 123")
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}
