// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package dnsfilterprocessor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/consumer/consumertest"
	"go.opentelemetry.io/collector/pdata/plog"
	"go.opentelemetry.io/collector/processor/processorhelper"
	"go.opentelemetry.io/collector/processor/processortest"
	"go.uber.org/zap"

	"github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/metadata"
	"github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/resolver"
	"github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/testutil"
)

func newTestConfig(mutate func(*Config)) *Config {
	cfg := createDefaultConfig().(*Config)
	mutate(cfg)
	return cfg
}

func newTestLogs(t *testing.T, attrs map[string]any) plog.Logs {
	t.Helper()

	ld := plog.NewLogs()
	lr := ld.ResourceLogs().AppendEmpty().ScopeLogs().AppendEmpty().LogRecords().AppendEmpty()
	require.NoError(t, lr.Attributes().FromRaw(attrs))
	return ld
}

func recordAttrs(t *testing.T, ld plog.Logs) map[string]any {
	t.Helper()

	require.Equal(t, 1, ld.LogRecordCount())
	return ld.ResourceLogs().At(0).ScopeLogs().At(0).LogRecords().At(0).Attributes().AsRaw()
}

func TestProcessLogsResolve(t *testing.T) {
	testCases := []struct {
		desc     string
		cfg      *Config
		input    map[string]any
		expected map[string]any
	}{
		{
			desc:     "replace scalar hostname",
			cfg:      newTestConfig(func(c *Config) { c.Resolve = []string{"host"}; c.Action = ActionReplace }),
			input:    map[string]any{"host": "example.com"},
			expected: map[string]any{"host": "93.184.216.34"},
		},
		{
			desc:     "append to scalar hostname",
			cfg:      newTestConfig(func(c *Config) { c.Resolve = []string{"host"} }),
			input:    map[string]any{"host": "example.com"},
			expected: map[string]any{"host": []any{"example.com", "93.184.216.34"}},
		},
		{
			desc:     "replace keeps sequence shape",
			cfg:      newTestConfig(func(c *Config) { c.Resolve = []string{"host"}; c.Action = ActionReplace }),
			input:    map[string]any{"host": []any{"example.com"}},
			expected: map[string]any{"host": []any{"93.184.216.34"}},
		},
		{
			desc:     "append to single-element sequence",
			cfg:      newTestConfig(func(c *Config) { c.Resolve = []string{"host"} }),
			input:    map[string]any{"host": []any{"example.com"}},
			expected: map[string]any{"host": []any{"example.com", "93.184.216.34"}},
		},
		{
			desc:     "absent field is a no-op",
			cfg:      newTestConfig(func(c *Config) { c.Resolve = []string{"missing"} }),
			input:    map[string]any{"host": "example.com"},
			expected: map[string]any{"host": "example.com"},
		},
		{
			desc: "matched attribute marks emitted records",
			cfg: newTestConfig(func(c *Config) {
				c.Resolve = []string{"host"}
				c.Action = ActionReplace
				c.MatchedAttribute = "dns.matched"
			}),
			input:    map[string]any{"host": "example.com"},
			expected: map[string]any{"host": "93.184.216.34", "dns.matched": true},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.desc, func(t *testing.T) {
			mockRes := &testutil.MockResolver{}
			mockRes.On("Resolve", mock.Anything, "example.com").Return([]string{"93.184.216.34"}, nil)

			proc := newDNSFilterProcessor(tt.cfg, mockRes, zap.NewNop())
			ld, err := proc.processLogs(context.Background(), newTestLogs(t, tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, recordAttrs(t, ld))
		})
	}
}

func TestProcessLogsReverse(t *testing.T) {
	cfg := newTestConfig(func(c *Config) { c.Reverse = []string{"ip"}; c.Action = ActionReplace })

	mockRes := &testutil.MockResolver{}
	mockRes.On("Reverse", mock.Anything, "93.184.216.34").Return([]string{"example.com"}, nil)

	proc := newDNSFilterProcessor(cfg, mockRes, zap.NewNop())
	ld, err := proc.processLogs(context.Background(), newTestLogs(t, map[string]any{"ip": "93.184.216.34"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ip": "example.com"}, recordAttrs(t, ld))
}

func TestProcessLogsDrop(t *testing.T) {
	testCases := []struct {
		desc       string
		cfg        *Config
		input      map[string]any
		setup      func(*testutil.MockResolver)
		noLookedUp bool
	}{
		{
			desc:  "forward lookup without resolution",
			cfg:   newTestConfig(func(c *Config) { c.Resolve = []string{"host"} }),
			input: map[string]any{"host": "nosuchhost.invalid"},
			setup: func(m *testutil.MockResolver) {
				m.On("Resolve", mock.Anything, "nosuchhost.invalid").Return(nil, resolver.ErrNoResolution)
			},
		},
		{
			desc:  "reverse lookup without PTR record",
			cfg:   newTestConfig(func(c *Config) { c.Reverse = []string{"ip"} }),
			input: map[string]any{"ip": "10.0.0.1"},
			setup: func(m *testutil.MockResolver) {
				m.On("Reverse", mock.Anything, "10.0.0.1").Return(nil, resolver.ErrNoResolution)
			},
		},
		{
			desc:  "lookup succeeding with no results",
			cfg:   newTestConfig(func(c *Config) { c.Resolve = []string{"host"} }),
			input: map[string]any{"host": "example.com"},
			setup: func(m *testutil.MockResolver) {
				m.On("Resolve", mock.Anything, "example.com").Return(nil, nil)
			},
		},
		{
			desc:       "malformed address short-circuits reverse lookup",
			cfg:        newTestConfig(func(c *Config) { c.Reverse = []string{"ip"} }),
			input:      map[string]any{"ip": "not-an-ip"},
			noLookedUp: true,
		},
		{
			desc:       "multi-valued field fails without lookup",
			cfg:        newTestConfig(func(c *Config) { c.Resolve = []string{"host"} }),
			input:      map[string]any{"host": []any{"a.example.com", "b.example.com"}},
			noLookedUp: true,
		},
		{
			desc:       "non-string field fails without lookup",
			cfg:        newTestConfig(func(c *Config) { c.Resolve = []string{"host"} }),
			input:      map[string]any{"host": int64(42)},
			noLookedUp: true,
		},
		{
			desc:  "reverse failure drops despite resolve success",
			cfg:   newTestConfig(func(c *Config) { c.Resolve = []string{"host"}; c.Reverse = []string{"ip"} }),
			input: map[string]any{"host": "example.com", "ip": "10.0.0.1"},
			setup: func(m *testutil.MockResolver) {
				m.On("Resolve", mock.Anything, "example.com").Return([]string{"93.184.216.34"}, nil)
				m.On("Reverse", mock.Anything, "10.0.0.1").Return(nil, resolver.ErrNoResolution)
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.desc, func(t *testing.T) {
			mockRes := &testutil.MockResolver{}
			if tt.setup != nil {
				tt.setup(mockRes)
			}

			proc := newDNSFilterProcessor(tt.cfg, mockRes, zap.NewNop())
			ld, err := proc.processLogs(context.Background(), newTestLogs(t, tt.input))
			assert.ErrorIs(t, err, processorhelper.ErrSkipProcessingData)
			assert.Equal(t, 0, ld.LogRecordCount())

			if tt.noLookedUp {
				mockRes.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
				mockRes.AssertNotCalled(t, "Reverse", mock.Anything, mock.Anything)
			}
		})
	}
}

// stalledResolver blocks until the phase deadline expires.
type stalledResolver struct{}

func (*stalledResolver) Resolve(ctx context.Context, _ string) ([]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (*stalledResolver) Reverse(ctx context.Context, _ string) ([]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (*stalledResolver) Close() error {
	return nil
}

func TestProcessLogsTimeout(t *testing.T) {
	cfg := newTestConfig(func(c *Config) {
		c.Resolve = []string{"host"}
		c.Timeout = 20 * time.Millisecond
	})

	proc := newDNSFilterProcessor(cfg, &stalledResolver{}, zap.NewNop())

	start := time.Now()
	ld, err := proc.processLogs(context.Background(), newTestLogs(t, map[string]any{"host": "example.com"}))
	assert.ErrorIs(t, err, processorhelper.ErrSkipProcessingData)
	assert.Equal(t, 0, ld.LogRecordCount())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestProcessLogsIneligibleRecordPassesThrough(t *testing.T) {
	cfg := newTestConfig(func(c *Config) { c.Resolve = []string{"host"}; c.Action = ActionReplace })

	mockRes := &testutil.MockResolver{}
	proc := newDNSFilterProcessor(cfg, mockRes, zap.NewNop())
	proc.eligible = func(lr plog.LogRecord) bool {
		_, ok := lr.Attributes().Get("enrich")
		return ok
	}

	ld, err := proc.processLogs(context.Background(), newTestLogs(t, map[string]any{"host": "example.com"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"host": "example.com"}, recordAttrs(t, ld))
	mockRes.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestProcessLogsDropsOnlyFailedRecords(t *testing.T) {
	cfg := newTestConfig(func(c *Config) { c.Resolve = []string{"host"}; c.Action = ActionReplace })

	mockRes := &testutil.MockResolver{}
	mockRes.On("Resolve", mock.Anything, "good.example.com").Return([]string{"192.0.2.1"}, nil)
	mockRes.On("Resolve", mock.Anything, "bad.example.com").Return(nil, resolver.ErrNoResolution)

	ld := plog.NewLogs()
	lrs := ld.ResourceLogs().AppendEmpty().ScopeLogs().AppendEmpty().LogRecords()
	lrs.AppendEmpty().Attributes().PutStr("host", "good.example.com")
	lrs.AppendEmpty().Attributes().PutStr("host", "bad.example.com")

	proc := newDNSFilterProcessor(cfg, mockRes, zap.NewNop())
	out, err := proc.processLogs(context.Background(), ld)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"host": "192.0.2.1"}, recordAttrs(t, out))
}

func TestProcessLogsPhaseAbortKeepsEarlierFieldMutations(t *testing.T) {
	// The first field resolves and mutates the working copy, the second
	// fails. The record is dropped, so the partial mutation is never
	// visible downstream.
	cfg := newTestConfig(func(c *Config) { c.Resolve = []string{"first", "second"} })

	mockRes := &testutil.MockResolver{}
	mockRes.On("Resolve", mock.Anything, "first.example.com").Return([]string{"192.0.2.1"}, nil)
	mockRes.On("Resolve", mock.Anything, "second.example.com").Return(nil, resolver.ErrNoResolution)

	proc := newDNSFilterProcessor(cfg, mockRes, zap.NewNop())
	ld, err := proc.processLogs(context.Background(), newTestLogs(t, map[string]any{
		"first":  "first.example.com",
		"second": "second.example.com",
	}))
	assert.ErrorIs(t, err, processorhelper.ErrSkipProcessingData)
	assert.Equal(t, 0, ld.LogRecordCount())
	mockRes.AssertExpectations(t)
}

func TestProcessorEndToEndWithHostfile(t *testing.T) {
	const hostsContent = `
192.0.2.20 example.com
192.0.2.30 another.example.com
`
	cfg := newTestConfig(func(c *Config) {
		c.Resolve = []string{"host"}
		c.Reverse = []string{"ip"}
		c.Action = ActionReplace
		c.Hostfiles = []string{testutil.CreateTempHostFile(t, hostsContent)}
		// Host file misses must not fall through to the network
		c.Nameserver = "192.0.2.53"
		c.Timeout = time.Second
	})

	sink := new(consumertest.LogsSink)
	lp, err := NewFactory().CreateLogs(context.Background(), processortest.NewNopSettings(metadata.Type), cfg, sink)
	require.NoError(t, err)

	ld := newTestLogs(t, map[string]any{
		"host": "example.com",
		"ip":   "192.0.2.30",
	})
	require.NoError(t, lp.ConsumeLogs(context.Background(), ld))
	require.NoError(t, lp.Shutdown(context.Background()))

	allLogs := sink.AllLogs()
	require.Len(t, allLogs, 1)
	assert.Equal(t, map[string]any{
		"host": "192.0.2.20",
		"ip":   "another.example.com",
	}, recordAttrs(t, allLogs[0]))
}
