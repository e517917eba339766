// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package resolver // import "github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/resolver"

import (
	"fmt"
	"net/netip"
	"strings"
)

const (
	maxHostnameLen = 253
	maxLabelLen    = 63
)

// ValidateIP parses s as an IPv4 or IPv6 textual address.
func ValidateIP(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("not a valid IP address %q: %w", s, err)
	}
	return addr, nil
}

// NormalizeHostname lowercases a hostname and strips the trailing root dot.
func NormalizeHostname(hostname string) string {
	return strings.TrimSuffix(strings.ToLower(hostname), ".")
}

// ValidateHostname checks hostname against RFC 1123 label rules and
// returns it unchanged when valid. The input is expected to be
// normalized already.
func ValidateHostname(hostname string) (string, error) {
	if hostname == "" || len(hostname) > maxHostnameLen {
		return hostname, fmt.Errorf("invalid hostname length %d", len(hostname))
	}

	for _, label := range strings.Split(hostname, ".") {
		if label == "" || len(label) > maxLabelLen {
			return hostname, fmt.Errorf("invalid label length in hostname %q", hostname)
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return hostname, fmt.Errorf("label starts or ends with a hyphen in hostname %q", hostname)
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			switch {
			case c >= 'a' && c <= 'z':
			case c >= '0' && c <= '9':
			case c == '-':
			default:
				return hostname, fmt.Errorf("invalid character %q in hostname %q", c, hostname)
			}
		}
	}

	return hostname, nil
}
