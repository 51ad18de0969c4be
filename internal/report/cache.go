package report

import (
	"sync"
	"time"

	"github.com/teampulse/pulse-service/internal/cooldown"
	"github.com/teampulse/pulse-service/internal/domain"
)

// cacheTTL is fixed: a preview followed by a send inside the window must
// reuse one remote fetch, and ten minutes comfortably covers that.
const cacheTTL = 10 * time.Minute

// Result is a generated report together with everything delivery needs:
// the rendered text, the issue count and the cooldown status the report
// was built under.
type Result struct {
	Report     *domain.Report
	Rendered   string
	IssueCount int
	Cooldown   cooldown.Status
}

type cacheEntry struct {
	result    *Result
	expiresAt time.Time
}

// Cache keeps generated reports per recipient until they expire. It is
// unbounded by count and sweeps expired entries opportunistically on every
// write; there is no background janitor. State does not survive a restart,
// callers must tolerate cold misses.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry

	now func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached result if present and not yet expired. An entry
// whose deadline has passed is evicted and reported as a miss.
func (c *Cache) Get(userID string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.entries[userID]
	if !found {
		return nil, false
	}

	if !entry.expiresAt.After(c.now()) {
		delete(c.entries, userID)
		return nil, false
	}

	return entry.result, true
}

// Set stores the result with a fresh deadline, then sweeps every expired
// entry in one pass.
func (c *Cache) Set(userID string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[userID] = cacheEntry{
		result:    result,
		expiresAt: now.Add(cacheTTL),
	}

	for id, entry := range c.entries {
		if !entry.expiresAt.After(now) {
			delete(c.entries, id)
		}
	}
}

// Invalidate drops one recipient's entry, if present.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, userID)
}
