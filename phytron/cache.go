package phytron

import (
	"time"

	"github.com/benbjohnson/clock"
)

type cacheEntry struct {
	raw string
	at  time.Time
}

// paramCache holds the raw parameter values of one axis. Entries are created
// lazily; a read within timeout of the last refresh never touches the
// transport, an older one triggers exactly one refresh of the parameter's
// group. The cache stores raw wire strings, interpretation happens at the
// accessors.
type paramCache struct {
	clk     clock.Clock
	timeout time.Duration
	entries map[Param]cacheEntry
}

func newParamCache(clk clock.Clock, timeout time.Duration) *paramCache {
	return &paramCache{
		clk:     clk,
		timeout: timeout,
		entries: make(map[Param]cacheEntry),
	}
}

// fresh reports whether p was refreshed within the timeout.
func (c *paramCache) fresh(p Param) (string, bool) {
	e, ok := c.entries[p]
	if !ok {
		return "", false
	}
	if c.clk.Since(e.at) >= c.timeout {
		return "", false
	}
	return e.raw, true
}

// put stores a freshly read raw value.
func (c *paramCache) put(p Param, raw string) {
	c.entries[p] = cacheEntry{raw: raw, at: c.clk.Now()}
}

// peek returns the cached raw value regardless of age.
func (c *paramCache) peek(p Param) (string, bool) {
	e, ok := c.entries[p]
	return e.raw, ok
}
