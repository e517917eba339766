// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

//go:generate mdatagen metadata.yaml

// Package dnsfilterprocessor enriches log record attributes with
// forward or reverse DNS resolutions and drops records that cannot be
// resolved.
package dnsfilterprocessor // import "github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor"
