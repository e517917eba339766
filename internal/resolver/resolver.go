// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolver provides forward and reverse DNS resolution for the
// dnsfilter processor. A Resolver answers hostname->addresses and
// address->hostnames questions; implementations cover the system
// resolver, a directed nameserver, static host files, and caching and
// chaining wrappers around them.
package resolver // import "github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/resolver"

import (
	"context"
	"errors"
)

var (
	// ErrNoResolution indicates a definitive negative answer: the target
	// exists syntactically but has no matching DNS record.
	ErrNoResolution = errors.New("no resolution for target")

	// ErrNotInHostFiles indicates the target is absent from the loaded
	// host files. Unlike ErrNoResolution it is not definitive; a later
	// resolver in a chain may still answer.
	ErrNotInHostFiles = errors.New("target not found in host files")

	// ErrNSPermanentFailure indicates the nameserver returned a
	// non-retryable failure rcode.
	ErrNSPermanentFailure = errors.New("nameserver returned a permanent failure")
)

// Resolver performs forward and reverse DNS lookups. Implementations
// must be safe for concurrent use and must honor cancellation and
// deadlines on the provided context; they do not impose deadlines of
// their own.
type Resolver interface {
	// Resolve looks up the addresses for a hostname.
	Resolve(ctx context.Context, hostname string) ([]string, error)

	// Reverse looks up the hostnames for an IP address.
	Reverse(ctx context.Context, ip string) ([]string, error)

	// Close releases any resources held by the resolver.
	Close() error
}
