// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package resolver // import "github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/resolver"

import (
	"context"
	"errors"
)

// ChainResolver runs resolvers in sequence, typically host files first
// and a network resolver last.
type ChainResolver struct {
	resolvers []Resolver
}

func NewChainResolver(resolvers ...Resolver) *ChainResolver {
	return &ChainResolver{
		resolvers: resolvers,
	}
}

// Resolve asks each resolver in turn for a forward resolution.
func (c *ChainResolver) Resolve(ctx context.Context, hostname string) ([]string, error) {
	return c.resolveInSequence(func(r Resolver) ([]string, error) {
		return r.Resolve(ctx, hostname)
	})
}

// Reverse asks each resolver in turn for a reverse resolution.
func (c *ChainResolver) Reverse(ctx context.Context, ip string) ([]string, error) {
	return c.resolveInSequence(func(r Resolver) ([]string, error) {
		return r.Reverse(ctx, ip)
	})
}

// Close closes every resolver in the chain and returns the first error.
func (c *ChainResolver) Close() error {
	var firstErr error
	for _, r := range c.resolvers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// resolveInSequence stops at the first successful resolution or the
// first definitive negative answer. A host file miss falls through to
// the next resolver. If every resolver fails, the last error wins.
func (c *ChainResolver) resolveInSequence(resolverFn func(r Resolver) ([]string, error)) ([]string, error) {
	var lastErr error

	for _, r := range c.resolvers {
		result, err := resolverFn(r)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrNoResolution) || errors.Is(err, ErrNSPermanentFailure) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}
