package backend

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Cached decorates a Backend with a TTL cache over its read
// operations. Each wrapped backend owns its cache privately; a single
// mutex serializes lookups, fills, and purges, since concurrent
// logical operations may race against one backend's cache.
//
// Only successful results are cached. Every mutating operation purges
// the whole cache before the underlying call proceeds, so reads issued
// after a mutation can never observe results captured before it, even
// when the mutation itself fails partway.
type Cached struct {
	backend Backend
	ttl     time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	capturedAt time.Time
	packages   []PackageInfo
	updates    []PackageUpdate
}

// NewCached wraps b with a cache whose entries expire after ttl.
// A non-positive ttl disables caching: every read goes to the backend.
func NewCached(b Backend, ttl time.Duration) *Cached {
	return &Cached{
		backend: b,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Unwrap returns the decorated backend.
func (c *Cached) Unwrap() Backend { return c.backend }

func (c *Cached) Tag() string         { return c.backend.Tag() }
func (c *Cached) DisplayName() string { return c.backend.DisplayName() }
func (c *Cached) NeedsSudo() bool     { return c.backend.NeedsSudo() }

func (c *Cached) Initialize(ctx context.Context) error {
	return c.backend.Initialize(ctx)
}

func (c *Cached) Search(ctx context.Context, query string) ([]PackageInfo, error) {
	key := "search\x00" + normalizeQuery(query)
	if pkgs, ok := c.lookupPackages(key); ok {
		return pkgs, nil
	}
	pkgs, err := c.backend.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	c.store(key, cacheEntry{packages: pkgs})
	return pkgs, nil
}

func (c *Cached) Updates(ctx context.Context) ([]PackageUpdate, error) {
	if ups, ok := c.lookupUpdates("updates"); ok {
		return ups, nil
	}
	ups, err := c.backend.Updates(ctx)
	if err != nil {
		return nil, err
	}
	c.store("updates", cacheEntry{updates: ups})
	return ups, nil
}

func (c *Cached) Installed(ctx context.Context) ([]PackageInfo, error) {
	if pkgs, ok := c.lookupPackages("installed"); ok {
		return pkgs, nil
	}
	pkgs, err := c.backend.Installed(ctx)
	if err != nil {
		return nil, err
	}
	c.store("installed", cacheEntry{packages: pkgs})
	return pkgs, nil
}

func (c *Cached) Install(ctx context.Context, packages []string) error {
	c.Purge()
	return c.backend.Install(ctx, packages)
}

func (c *Cached) Remove(ctx context.Context, packages []string) error {
	c.Purge()
	return c.backend.Remove(ctx, packages)
}

func (c *Cached) UpdateSystem(ctx context.Context) error {
	c.Purge()
	return c.backend.UpdateSystem(ctx)
}

// Purge drops every cached entry for this backend.
func (c *Cached) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

func (c *Cached) lookupPackages(key string) ([]PackageInfo, bool) {
	e, ok := c.lookup(key)
	if !ok {
		return nil, false
	}
	// Copy so callers may reorder without corrupting the entry.
	return append([]PackageInfo(nil), e.packages...), true
}

func (c *Cached) lookupUpdates(key string) ([]PackageUpdate, bool) {
	e, ok := c.lookup(key)
	if !ok {
		return nil, false
	}
	return append([]PackageUpdate(nil), e.updates...), true
}

func (c *Cached) lookup(key string) (cacheEntry, bool) {
	if c.ttl <= 0 {
		return cacheEntry{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return cacheEntry{}, false
	}
	if time.Since(e.capturedAt) > c.ttl {
		delete(c.entries, key)
		return cacheEntry{}, false
	}
	return e, true
}

func (c *Cached) store(key string, e cacheEntry) {
	if c.ttl <= 0 {
		return
	}
	e.capturedAt = time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// PurgeAll purges every cache-decorated backend in the registry.
// Backends registered without a cache wrapper are left alone.
func PurgeAll(r *Registry) {
	for _, b := range r.Active() {
		if p, ok := b.(interface{ Purge() }); ok {
			p.Purge()
		}
	}
}
