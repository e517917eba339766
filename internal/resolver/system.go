// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package resolver // import "github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/resolver"

import (
	"context"
	"errors"
	"net"
)

// SystemResolver resolves through the operating system's configured
// resolution order, which consults local host-alias tables before
// querying the network.
type SystemResolver struct {
	resolver *net.Resolver
}

func NewSystemResolver() *SystemResolver {
	return &SystemResolver{
		resolver: net.DefaultResolver,
	}
}

// Resolve performs a forward lookup (hostname to IPs).
func (r *SystemResolver) Resolve(ctx context.Context, hostname string) ([]string, error) {
	addrs, err := r.resolver.LookupHost(ctx, hostname)
	if err != nil {
		return nil, classifyLookupError(err)
	}
	return addrs, nil
}

// Reverse performs a reverse lookup (IP to hostnames). Trailing root
// dots are stripped from the returned names.
func (r *SystemResolver) Reverse(ctx context.Context, ip string) ([]string, error) {
	names, err := r.resolver.LookupAddr(ctx, ip)
	if err != nil {
		return nil, classifyLookupError(err)
	}

	hostnames := make([]string, 0, len(names))
	for _, name := range names {
		hostnames = append(hostnames, NormalizeHostname(name))
	}
	return hostnames, nil
}

func (*SystemResolver) Close() error {
	return nil
}

// classifyLookupError maps a definitive NXDOMAIN-style answer to
// ErrNoResolution. Timeouts and transport failures pass through so the
// caller can tell retryable errors apart from negative answers.
func classifyLookupError(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return ErrNoResolution
	}
	return err
}
