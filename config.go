// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package dnsfilterprocessor // import "github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor"

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"go.opentelemetry.io/collector/component"
)

// Action controls how a resolution result is written back to a field.
type Action string

const (
	// ActionAppend keeps the original value and adds the result to it.
	ActionAppend Action = "append"
	// ActionReplace discards the original value.
	ActionReplace Action = "replace"
)

var (
	errNoFields          = errors.New(`at least one of "resolve" or "reverse" must name a field`)
	errEmptyField        = errors.New("field names must not be empty")
	errInvalidAction     = errors.New(`"action" must be "append" or "replace"`)
	errInvalidTimeout    = errors.New(`"timeout" must be positive`)
	errInvalidNameserver = errors.New(`"nameserver" must be an IP address with an optional port`)
	errInvalidCacheSize  = errors.New("cache sizes must not be negative")
	errInvalidCacheTTL   = errors.New("cache TTLs must not be negative")
)

var _ component.Config = (*Config)(nil)

// Config holds the settings of the dnsfilter processor.
type Config struct {
	// Resolve lists record attributes holding hostnames to forward-resolve.
	Resolve []string `mapstructure:"resolve"`

	// Reverse lists record attributes holding IP addresses to reverse-resolve.
	Reverse []string `mapstructure:"reverse"`

	// Action determines whether results replace the original values or
	// are appended alongside them. Defaults to append.
	Action Action `mapstructure:"action"`

	// Nameserver directs lookups at a specific server instead of the
	// system resolution order. Port 53 is assumed when absent.
	Nameserver string `mapstructure:"nameserver"`

	// Timeout bounds each of the resolve and reverse phases per record.
	Timeout time.Duration `mapstructure:"timeout"`

	// MatchedAttribute, when set, names a boolean attribute added to
	// every record that was successfully enriched.
	MatchedAttribute string `mapstructure:"matched_attribute"`

	// Hostfiles lists hosts-format files consulted before any network
	// lookup.
	Hostfiles []string `mapstructure:"hostfiles"`

	// HitCacheSize and HitCacheTTL size the cache of successful
	// resolutions. A size of zero disables the cache.
	HitCacheSize int           `mapstructure:"hit_cache_size"`
	HitCacheTTL  time.Duration `mapstructure:"hit_cache_ttl"`

	// MissCacheSize and MissCacheTTL size the cache of negative
	// answers. A size of zero disables the cache.
	MissCacheSize int           `mapstructure:"miss_cache_size"`
	MissCacheTTL  time.Duration `mapstructure:"miss_cache_ttl"`
}

// Validate checks the processor configuration.
func (c *Config) Validate() error {
	if len(c.Resolve) == 0 && len(c.Reverse) == 0 {
		return errNoFields
	}
	for _, field := range append(append([]string{}, c.Resolve...), c.Reverse...) {
		if field == "" {
			return errEmptyField
		}
	}

	switch c.Action {
	case ActionAppend, ActionReplace:
	default:
		return fmt.Errorf("%w (got %q)", errInvalidAction, c.Action)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("%w (got %s)", errInvalidTimeout, c.Timeout)
	}

	if c.Nameserver != "" {
		host := c.Nameserver
		if h, _, err := net.SplitHostPort(c.Nameserver); err == nil {
			host = h
		}
		if _, err := netip.ParseAddr(host); err != nil {
			return fmt.Errorf("%w (got %q)", errInvalidNameserver, c.Nameserver)
		}
	}

	if c.HitCacheSize < 0 || c.MissCacheSize < 0 {
		return errInvalidCacheSize
	}
	if c.HitCacheTTL < 0 || c.MissCacheTTL < 0 {
		return errInvalidCacheTTL
	}

	return nil
}
