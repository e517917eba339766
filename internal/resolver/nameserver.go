// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package resolver // import "github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/resolver"

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/miekg/dns"
)

const defaultDNSPort = "53"

// NameserverResolver queries one specific nameserver directly instead
// of going through the system resolution order.
type NameserverResolver struct {
	server string
	client *dns.Client
}

// NewNameserverResolver creates a resolver directed at server, given as
// an IP or host with an optional port. Port 53 is assumed when absent.
func NewNameserverResolver(server string) (*NameserverResolver, error) {
	if server == "" {
		return nil, fmt.Errorf("nameserver must not be empty")
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, defaultDNSPort)
	}

	return &NameserverResolver{
		server: server,
		client: &dns.Client{UDPSize: dns.DefaultMsgSize},
	}, nil
}

// Resolve performs a forward lookup by querying A records, falling back
// to AAAA when no A record exists.
func (r *NameserverResolver) Resolve(ctx context.Context, hostname string) ([]string, error) {
	ips, err := r.query(ctx, dns.Fqdn(hostname), dns.TypeA)
	if errors.Is(err, ErrNoResolution) {
		return r.query(ctx, dns.Fqdn(hostname), dns.TypeAAAA)
	}
	return ips, err
}

// Reverse performs a PTR lookup for the given IP address.
func (r *NameserverResolver) Reverse(ctx context.Context, ip string) ([]string, error) {
	arpa, err := dns.ReverseAddr(ip)
	if err != nil {
		return nil, fmt.Errorf("cannot build reverse name for %q: %w", ip, err)
	}
	return r.query(ctx, arpa, dns.TypePTR)
}

func (*NameserverResolver) Close() error {
	return nil
}

func (r *NameserverResolver) query(ctx context.Context, name string, qtype uint16) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(name, qtype)

	msg, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return nil, err
	}

	switch msg.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, ErrNoResolution
	default:
		return nil, fmt.Errorf("%w: %s", ErrNSPermanentFailure, dns.RcodeToString[msg.Rcode])
	}

	var results []string
	for _, rr := range msg.Answer {
		switch record := rr.(type) {
		case *dns.A:
			results = append(results, record.A.String())
		case *dns.AAAA:
			results = append(results, record.AAAA.String())
		case *dns.PTR:
			results = append(results, NormalizeHostname(record.Ptr))
		}
	}

	if len(results) == 0 {
		return nil, ErrNoResolution
	}
	return results, nil
}
