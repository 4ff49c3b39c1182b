package extract

import "sync"

// Cache is a single-slot store of the last successful response, keyed by
// prompt fingerprint. Concurrent writers race; the last Put wins.
type Cache struct {
	mu       sync.Mutex
	key      string
	response string
	filled   bool
}

// Get returns the cached response if fingerprint matches the slot.
func (c *Cache) Get(fingerprint string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.filled || c.key != fingerprint {
		return "", false
	}
	return c.response, true
}

// Put replaces the slot.
func (c *Cache) Put(fingerprint, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key, c.response, c.filled = fingerprint, response, true
}
