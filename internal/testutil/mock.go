// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package testutil // import "github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/testutil"

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockResolver implements the resolver.Resolver interface for testing
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, hostname string) ([]string, error) {
	args := m.Called(ctx, hostname)
	return getStrings(args, 0), args.Error(1)
}

func (m *MockResolver) Reverse(ctx context.Context, ip string) ([]string, error) {
	args := m.Called(ctx, ip)
	return getStrings(args, 0), args.Error(1)
}

func (m *MockResolver) Close() error {
	args := m.Called()
	return args.Error(0)
}

func getStrings(args mock.Arguments, index int) []string {
	val := args.Get(index)
	if val == nil {
		return nil
	}
	return val.([]string)
}

// CreateTempHostFile writes content to a hosts-format file in a
// test-scoped temporary directory and returns its path.
func CreateTempHostFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hosts")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
