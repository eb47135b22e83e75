package ledger

import (
	"context"
	"sync"
	"time"
)

// Registry owns one Store per browser session and forgets stores whose
// session has been idle longer than the configured TTL.
type Registry struct {
	mu        sync.Mutex
	stores    map[string]*registryEntry
	ttl       time.Duration
	threshold int
	now       func() time.Time
}

type registryEntry struct {
	store    *Store
	lastSeen time.Time
}

// NewRegistry builds a Registry. A non-positive ttl disables eviction.
func NewRegistry(threshold int, ttl time.Duration) *Registry {
	return &Registry{
		stores:    make(map[string]*registryEntry),
		ttl:       ttl,
		threshold: threshold,
		now:       time.Now,
	}
}

// Get returns the store for sessionID, creating it on first use.
func (r *Registry) Get(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.stores[sessionID]
	if !ok {
		entry = &registryEntry{store: NewStore(r.threshold)}
		r.stores[sessionID] = entry
	}
	entry.lastSeen = r.now()
	return entry.store
}

// Drop discards the store for sessionID.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, sessionID)
}

// Sweep evicts idle stores and returns how many were removed.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for id, entry := range r.stores {
		if entry.lastSeen.Before(cutoff) {
			delete(r.stores, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

type storeContextKey struct{}

// ContextWithStore attaches the session ledger to ctx.
func ContextWithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, store)
}

// StoreFromContext extracts the session ledger.
func StoreFromContext(ctx context.Context) *Store {
	store, _ := ctx.Value(storeContextKey{}).(*Store)
	return store
}
