package common

import (
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultRegexTimeout bounds a single regex evaluation against a description.
const DefaultRegexTimeout = 100 * time.Millisecond

// RegexCache compiles case-insensitive patterns once per distinct pattern string.
// Compile failures are cached too so a broken pattern is reported without
// being recompiled for every transaction. Safe for concurrent use.
type RegexCache struct {
	entries map[string]regexEntry
	timeout time.Duration
	mu      sync.RWMutex
}

type regexEntry struct {
	re  *regexp2.Regexp
	err error
}

// NewRegexCache creates a cache whose compiled patterns give up after timeout.
// A non-positive timeout disables the budget.
func NewRegexCache(timeout time.Duration) *RegexCache {
	return &RegexCache{
		entries: make(map[string]regexEntry),
		timeout: timeout,
	}
}

// Compile returns the compiled form of pattern.
func (c *RegexCache) Compile(pattern string) (*regexp2.Regexp, error) {
	c.mu.RLock()
	entry, ok := c.entries[pattern]
	c.mu.RUnlock()
	if ok {
		return entry.re, entry.err
	}

	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err == nil && c.timeout > 0 {
		re.MatchTimeout = c.timeout
	}

	c.mu.Lock()
	c.entries[pattern] = regexEntry{re: re, err: err}
	c.mu.Unlock()

	return re, err
}

// Match reports whether pattern matches anywhere in text.
func (c *RegexCache) Match(pattern, text string) (bool, error) {
	re, err := c.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(text)
}

// Len returns the number of distinct patterns seen so far.
func (c *RegexCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
