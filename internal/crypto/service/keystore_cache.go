package service

import (
	"context"
	"sync"
	"time"
)

// CachingKeyStore decorates a KeyStore with a bounded-TTL in-memory cache.
//
// The cache exists to avoid a key store round trip per field. The TTL bounds
// how stale a secret can be after an administrative rotation; Invalidate drops
// a domain's entry immediately when rotation is coordinated in-process. Secrets
// are never written to durable storage by this cache.
type CachingKeyStore struct {
	next KeyStore
	ttl  time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	secret    []byte
	expiresAt time.Time
}

// NewCachingKeyStore wraps a KeyStore with a TTL cache. A non-positive TTL
// disables caching entirely.
func NewCachingKeyStore(next KeyStore, ttl time.Duration) *CachingKeyStore {
	return &CachingKeyStore{
		next:    next,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// GetSecret returns the cached secret for the domain when fresh, otherwise
// delegates to the underlying key store and caches the result.
func (c *CachingKeyStore) GetSecret(ctx context.Context, domain string) ([]byte, error) {
	if c.ttl <= 0 {
		return c.next.GetSecret(ctx, domain)
	}

	c.mu.RLock()
	entry, ok := c.entries[domain]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		// Return a copy so callers can zero their slice without corrupting the cache.
		secret := make([]byte, len(entry.secret))
		copy(secret, entry.secret)
		return secret, nil
	}

	secret, err := c.next.GetSecret(ctx, domain)
	if err != nil {
		return nil, err
	}

	cached := make([]byte, len(secret))
	copy(cached, secret)

	c.mu.Lock()
	c.entries[domain] = cacheEntry{
		secret:    cached,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()

	return secret, nil
}

// CreateSecret delegates to the underlying key store and invalidates the
// domain's cache entry so a newly provisioned secret is visible immediately.
func (c *CachingKeyStore) CreateSecret(ctx context.Context, domain string, material []byte) error {
	if err := c.next.CreateSecret(ctx, domain, material); err != nil {
		return err
	}
	c.Invalidate(domain)
	return nil
}

// Invalidate drops the cached secret for a domain. Must be called when a
// domain's active secret is administratively rotated.
func (c *CachingKeyStore) Invalidate(domain string) {
	c.mu.Lock()
	if entry, ok := c.entries[domain]; ok {
		for i := range entry.secret {
			entry.secret[i] = 0
		}
		delete(c.entries, domain)
	}
	c.mu.Unlock()
}

// Close zeroes and drops every cached secret.
func (c *CachingKeyStore) Close() {
	c.mu.Lock()
	for domain, entry := range c.entries {
		for i := range entry.secret {
			entry.secret[i] = 0
		}
		delete(c.entries, domain)
	}
	c.mu.Unlock()
}
