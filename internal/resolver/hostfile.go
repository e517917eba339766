// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package resolver // import "github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/resolver"

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidHostFilePath indicates a configured host file does not exist.
var ErrInvalidHostFilePath = errors.New("host file does not exist")

// HostFileResolver answers lookups from hosts(5)-format files loaded at
// construction time. A miss returns ErrNotInHostFiles so that a chain
// can fall through to a network resolver.
type HostFileResolver struct {
	hostnameToIPs map[string][]string
	ipToHostnames map[string][]string
	logger        *zap.Logger
}

// NewHostFileResolver loads the given host files. Entries of later
// files are appended to the mappings.
func NewHostFileResolver(paths []string, logger *zap.Logger) (*HostFileResolver, error) {
	if len(paths) == 0 {
		return nil, ErrInvalidHostFilePath
	}

	r := &HostFileResolver{
		hostnameToIPs: make(map[string][]string),
		ipToHostnames: make(map[string][]string),
		logger:        logger,
	}

	for _, path := range paths {
		if err := r.parseHostFile(path); err != nil {
			return nil, err
		}
	}
	dedupValues(r.hostnameToIPs)
	dedupValues(r.ipToHostnames)

	return r, nil
}

func (r *HostFileResolver) parseHostFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrInvalidHostFilePath
		}
		return fmt.Errorf(`failed to open host file "%s": %w`, path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Strip comments
		if idx := strings.Index(line, "#"); idx != -1 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}

		fields := strings.Fields(line)

		// An IP with no hostnames carries no usable mapping
		if len(fields) < 2 {
			continue
		}

		ip := fields[0]
		if _, err := ValidateIP(ip); err != nil {
			r.logger.Debug("Invalid IP address in host file",
				zap.String("path", path),
				zap.Int("line", lineNum),
				zap.String("ip", ip))
			continue
		}

		for _, hostname := range fields[1:] {
			normalized, err := ValidateHostname(NormalizeHostname(hostname))
			if err != nil {
				r.logger.Debug("Invalid hostname in host file",
					zap.String("path", path),
					zap.Int("line", lineNum),
					zap.String("hostname", hostname))
				continue
			}
			r.hostnameToIPs[normalized] = append(r.hostnameToIPs[normalized], ip)
			r.ipToHostnames[ip] = append(r.ipToHostnames[ip], normalized)
		}
	}

	return scanner.Err()
}

// Resolve performs a forward lookup (hostname to IPs) against the
// loaded host files.
func (r *HostFileResolver) Resolve(_ context.Context, hostname string) ([]string, error) {
	if ips, found := r.hostnameToIPs[NormalizeHostname(hostname)]; found {
		return ips, nil
	}
	return nil, ErrNotInHostFiles
}

// Reverse performs a reverse lookup (IP to hostnames) against the
// loaded host files.
func (r *HostFileResolver) Reverse(_ context.Context, ip string) ([]string, error) {
	if hostnames, found := r.ipToHostnames[ip]; found {
		return hostnames, nil
	}
	return nil, ErrNotInHostFiles
}

func (*HostFileResolver) Close() error {
	return nil
}

func dedupValues(mapping map[string][]string) {
	for key, vals := range mapping {
		seen := make(map[string]struct{}, len(vals))
		deduped := vals[:0]
		for _, val := range vals {
			if _, ok := seen[val]; !ok {
				seen[val] = struct{}{}
				deduped = append(deduped, val)
			}
		}
		mapping[key] = deduped
	}
}
