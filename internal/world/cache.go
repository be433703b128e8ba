package world

import (
	"sync"

	"github.com/mvanryn/worldweaver/domain/entities"
)

// Cache holds the most recently reported world snapshot. A new report
// replaces the previous one wholesale: the last reporter wins and there is no
// per-object merge across viewers. Readers never observe a partial update.
type Cache struct {
	mu       sync.RWMutex
	snapshot *entities.WorldSnapshot
}

func NewCache() *Cache {
	return &Cache{}
}

// Install atomically replaces the stored snapshot
func (c *Cache) Install(snapshot entities.WorldSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = &snapshot
}

// Read returns the current snapshot, or ok=false if none has ever been installed
func (c *Cache) Read() (entities.WorldSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return entities.WorldSnapshot{}, false
	}
	return *c.snapshot, true
}
