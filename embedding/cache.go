package embedding

import "sync"

// hotEntry is the last (model, apiVersion) pair that succeeded for a mode.
type hotEntry struct {
	Model   string
	Version APIVersion
}

// modeCache remembers the last successful model/version per auth mode.
// It is a best-effort hint: races cost at most one extra failed attempt,
// so no coordination beyond the map lock is needed.
type modeCache struct {
	mu      sync.RWMutex
	entries map[AuthMode]hotEntry
}

func newModeCache() *modeCache {
	return &modeCache{entries: make(map[AuthMode]hotEntry)}
}

func (c *modeCache) get(mode AuthMode) (hotEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[mode]
	return entry, ok
}

func (c *modeCache) put(mode AuthMode, model string, version APIVersion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[mode] = hotEntry{Model: model, Version: version}
}

func (c *modeCache) clear(mode AuthMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, mode)
}

// defaultHotCache is shared by all clients in the process so that separate
// document and query clients running under the same auth mode converge on
// the same working pair.
var defaultHotCache = newModeCache()
