// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package dnsfilterprocessor // import "github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor"

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/collector/component"
	"go.opentelemetry.io/collector/consumer"
	"go.opentelemetry.io/collector/processor"
	"go.opentelemetry.io/collector/processor/processorhelper"

	"github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/metadata"
	"github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/resolver"
)

const (
	defaultTimeout       = 2 * time.Second
	defaultHitCacheSize  = 10000
	defaultHitCacheTTL   = 5 * time.Minute
	defaultMissCacheSize = 10000
	defaultMissCacheTTL  = time.Minute
)

var processorCapabilities = consumer.Capabilities{MutatesData: true}

// NewFactory returns a new factory for the dnsfilter processor.
func NewFactory() processor.Factory {
	return processor.NewFactory(
		metadata.Type,
		createDefaultConfig,
		processor.WithLogs(createLogsProcessor, metadata.LogsStability),
	)
}

func createDefaultConfig() component.Config {
	return &Config{
		Action:        ActionAppend,
		Timeout:       defaultTimeout,
		HitCacheSize:  defaultHitCacheSize,
		HitCacheTTL:   defaultHitCacheTTL,
		MissCacheSize: defaultMissCacheSize,
		MissCacheTTL:  defaultMissCacheTTL,
	}
}

func createLogsProcessor(
	ctx context.Context,
	set processor.Settings,
	cfg component.Config,
	nextConsumer consumer.Logs,
) (processor.Logs, error) {
	oCfg := cfg.(*Config)

	res, err := buildResolver(oCfg, set)
	if err != nil {
		return nil, fmt.Errorf("failed to build resolver: %w", err)
	}

	proc := newDNSFilterProcessor(oCfg, res, set.Logger)
	return processorhelper.NewLogs(
		ctx,
		set,
		cfg,
		nextConsumer,
		proc.processLogs,
		processorhelper.WithCapabilities(processorCapabilities),
		processorhelper.WithShutdown(proc.shutdown))
}

// buildResolver assembles the lookup chain: host files first, then
// either the configured nameserver or the system resolution order, the
// whole chain behind the hit and miss caches.
func buildResolver(cfg *Config, set processor.Settings) (resolver.Resolver, error) {
	var resolvers []resolver.Resolver

	if len(cfg.Hostfiles) > 0 {
		hf, err := resolver.NewHostFileResolver(cfg.Hostfiles, set.Logger)
		if err != nil {
			return nil, err
		}
		resolvers = append(resolvers, hf)
	}

	if cfg.Nameserver != "" {
		ns, err := resolver.NewNameserverResolver(cfg.Nameserver)
		if err != nil {
			return nil, err
		}
		resolvers = append(resolvers, ns)
	} else {
		resolvers = append(resolvers, resolver.NewSystemResolver())
	}

	var res resolver.Resolver = resolver.NewChainResolver(resolvers...)

	if cfg.HitCacheSize > 0 || cfg.MissCacheSize > 0 {
		return resolver.NewCacheResolver(res,
			cfg.HitCacheSize, cfg.HitCacheTTL,
			cfg.MissCacheSize, cfg.MissCacheTTL)
	}
	return res, nil
}
