// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package resolver // import "github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/resolver"

import (
	"context"
	"errors"
	"time"

	"github.com/cespare/xxhash"
	lru "github.com/elastic/go-freelru"
)

// CacheResolver caches resolutions of the wrapped resolver in LRU
// caches with TTL, keeping positive and negative answers apart so they
// can expire independently.
type CacheResolver struct {
	next      Resolver
	hitCache  *lru.ShardedLRU[string, []string]
	missCache *lru.ShardedLRU[string, struct{}]
}

// NewCacheResolver wraps next with hit and miss caches. A size of zero
// disables the corresponding cache.
func NewCacheResolver(
	next Resolver,
	hitCacheSize int,
	hitCacheTTL time.Duration,
	missCacheSize int,
	missCacheTTL time.Duration,
) (*CacheResolver, error) {
	if next == nil {
		return nil, errors.New("next resolver must be provided")
	}

	r := &CacheResolver{
		next: next,
	}

	if hitCacheSize > 0 {
		r.hitCache, _ = lru.NewSharded[string, []string](uint32(hitCacheSize), stringHashFn)
		r.hitCache.SetLifetime(hitCacheTTL)
	}

	if missCacheSize > 0 {
		r.missCache, _ = lru.NewSharded[string, struct{}](uint32(missCacheSize), stringHashFn)
		r.missCache.SetLifetime(missCacheTTL)
	}

	return r, nil
}

// Resolve performs a forward lookup through the caches.
func (r *CacheResolver) Resolve(ctx context.Context, hostname string) ([]string, error) {
	return r.resolveWithCache(ctx, hostname, r.next.Resolve)
}

// Reverse performs a reverse lookup through the caches.
func (r *CacheResolver) Reverse(ctx context.Context, ip string) ([]string, error) {
	return r.resolveWithCache(ctx, ip, r.next.Reverse)
}

// Close purges the caches and closes the wrapped resolver.
func (r *CacheResolver) Close() error {
	if r.hitCache != nil {
		r.hitCache.Purge()
	}
	if r.missCache != nil {
		r.missCache.Purge()
	}
	return r.next.Close()
}

func (r *CacheResolver) resolveWithCache(
	ctx context.Context,
	target string,
	resolveFn func(ctx context.Context, target string) ([]string, error),
) ([]string, error) {
	if r.missCache != nil {
		if _, found := r.missCache.Get(target); found {
			return nil, ErrNoResolution
		}
	}

	if r.hitCache != nil {
		if result, found := r.hitCache.Get(target); found {
			return result, nil
		}
	}

	result, err := resolveFn(ctx, target)

	switch {
	case err == nil:
		if r.hitCache != nil {
			r.hitCache.Add(target, result)
		}
		return result, nil
	case errors.Is(err, ErrNoResolution) ||
		errors.Is(err, ErrNotInHostFiles) ||
		errors.Is(err, ErrNSPermanentFailure):
		// Definitive negative answers are cacheable
		if r.missCache != nil {
			r.missCache.Add(target, struct{}{})
		}
		return nil, err
	default:
		// Retryable errors such as timeouts are never cached
		return nil, err
	}
}

// stringHashFn hashes cache keys for the sharded LRU.
func stringHashFn(s string) uint32 {
	return uint32(xxhash.Sum64String(s))
}
