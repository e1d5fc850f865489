package cachemem

import (
	"context"
	"sync"
	"time"

	"scoreoracle/internal/domain"
	"scoreoracle/internal/usecase"
)

// Cache is an in-memory, TTL-bounded cache of ledger records keyed by
// subject. The ledger stays the source of truth; a submission for a cached
// subject drops the entry so the next lookup re-reads the ledger.
type Cache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	record    domain.TransactionRecord
	expiresAt time.Time
	hasExpiry bool
}

func New() *Cache {
	return &Cache{
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) Get(ctx context.Context, subject string) (*domain.TransactionRecord, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[subject]
	if !ok {
		return nil, false, nil
	}
	if entry.hasExpiry && c.now().After(entry.expiresAt) {
		delete(c.entries, subject)
		return nil, false, nil
	}
	record := entry.record
	return &record, true, nil
}

func (c *Cache) Put(ctx context.Context, subject string, record domain.TransactionRecord, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cacheEntry{record: record}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries[subject] = entry
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, subject string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, subject)
	return nil
}

var _ usecase.RecordCache = (*Cache)(nil)
