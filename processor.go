// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package dnsfilterprocessor // import "github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor"

import (
	"context"
	"errors"

	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/plog"
	"go.opentelemetry.io/collector/processor/processorhelper"
	"go.uber.org/zap"

	"github.com/open-telemetry/opentelemetry-collector-contrib/processor/dnsfilterprocessor/internal/resolver"
)

var (
	errMultiValuedField = errors.New("field holds more than one value")
	errUnsupportedValue = errors.New("field value is not a string or a single-string slice")
	errNotAnAddress     = errors.New("field value is not an IP address")
)

// phaseKind selects the lookup direction of a field-processing pass.
type phaseKind int

const (
	forwardPhase phaseKind = iota
	reversePhase
)

func (k phaseKind) String() string {
	if k == reversePhase {
		return "reverse"
	}
	return "resolve"
}

type dnsFilterProcessor struct {
	cfg      *Config
	resolver resolver.Resolver
	logger   *zap.Logger

	// eligible gates records into the filter; ineligible records pass
	// through unchanged. Routing belongs to the surrounding pipeline,
	// so every record is eligible unless a test overrides this.
	eligible func(plog.LogRecord) bool
}

func newDNSFilterProcessor(cfg *Config, res resolver.Resolver, logger *zap.Logger) *dnsFilterProcessor {
	return &dnsFilterProcessor{
		cfg:      cfg,
		resolver: res,
		logger:   logger,
		eligible: func(plog.LogRecord) bool { return true },
	}
}

func (p *dnsFilterProcessor) shutdown(context.Context) error {
	return p.resolver.Close()
}

// processLogs enriches each record's configured attributes and removes
// records whose resolve or reverse phase failed.
func (p *dnsFilterProcessor) processLogs(ctx context.Context, ld plog.Logs) (plog.Logs, error) {
	rls := ld.ResourceLogs()
	for i := 0; i < rls.Len(); i++ {
		sls := rls.At(i).ScopeLogs()
		for j := 0; j < sls.Len(); j++ {
			lrs := sls.At(j).LogRecords()
			lrs.RemoveIf(func(lr plog.LogRecord) bool {
				return !p.processRecord(ctx, lr)
			})
		}
		sls.RemoveIf(func(sl plog.ScopeLogs) bool {
			return sl.LogRecords().Len() == 0
		})
	}
	rls.RemoveIf(func(rl plog.ResourceLogs) bool {
		return rl.ScopeLogs().Len() == 0
	})

	if rls.Len() == 0 {
		return ld, processorhelper.ErrSkipProcessingData
	}
	return ld, nil
}

// processRecord reports whether the record stays in the batch. All
// mutations happen on a working copy of the attribute map; the record
// itself only changes after both phases succeeded, so a failed or
// timed-out phase never leaves a partially enriched record behind.
func (p *dnsFilterProcessor) processRecord(ctx context.Context, lr plog.LogRecord) bool {
	if !p.eligible(lr) {
		return true
	}

	working := pcommon.NewMap()
	lr.Attributes().CopyTo(working)

	if len(p.cfg.Resolve) > 0 {
		if err := p.runPhase(ctx, working, p.cfg.Resolve, forwardPhase); err != nil {
			return false
		}
	}
	if len(p.cfg.Reverse) > 0 {
		if err := p.runPhase(ctx, working, p.cfg.Reverse, reversePhase); err != nil {
			return false
		}
	}

	if p.cfg.MatchedAttribute != "" {
		working.PutBool(p.cfg.MatchedAttribute, true)
	}
	working.CopyTo(lr.Attributes())
	return true
}

// runPhase processes the phase's fields in order under one shared
// deadline. The first failing field aborts the remaining ones.
func (p *dnsFilterProcessor) runPhase(ctx context.Context, attrs pcommon.Map, fields []string, kind phaseKind) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	for _, field := range fields {
		if err := p.processField(ctx, attrs, field, kind); err != nil {
			return err
		}
	}
	return nil
}

func (p *dnsFilterProcessor) processField(ctx context.Context, attrs pcommon.Map, field string, kind phaseKind) error {
	val, ok := attrs.Get(field)
	if !ok {
		// Absent fields are skipped rather than failing the record
		return nil
	}

	var candidate string
	wasSlice := false

	switch val.Type() {
	case pcommon.ValueTypeStr:
		candidate = val.Str()
	case pcommon.ValueTypeSlice:
		s := val.Slice()
		switch {
		case s.Len() == 0:
			return nil
		case s.Len() > 1:
			p.logger.Warn("Field holds more than one value, dropping record",
				zap.String("phase", kind.String()),
				zap.String("field", field),
				zap.Int("values", s.Len()))
			return errMultiValuedField
		case s.At(0).Type() != pcommon.ValueTypeStr:
			p.logger.Debug("Field element is not a string, dropping record",
				zap.String("phase", kind.String()),
				zap.String("field", field))
			return errUnsupportedValue
		}
		candidate = s.At(0).Str()
		wasSlice = true
	default:
		p.logger.Debug("Field value type cannot be resolved, dropping record",
			zap.String("phase", kind.String()),
			zap.String("field", field),
			zap.String("type", val.Type().String()))
		return errUnsupportedValue
	}

	if kind == reversePhase {
		if _, err := resolver.ValidateIP(candidate); err != nil {
			p.logger.Debug("Malformed address, dropping record without lookup",
				zap.String("field", field),
				zap.String("value", candidate))
			return errNotAnAddress
		}
	}

	var results []string
	var err error
	if kind == forwardPhase {
		results, err = p.resolver.Resolve(ctx, candidate)
	} else {
		results, err = p.resolver.Reverse(ctx, candidate)
	}
	if err == nil && len(results) == 0 {
		err = resolver.ErrNoResolution
	}
	if err != nil {
		msg := "Lookup failed, dropping record"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "Lookup exceeded the phase timeout, dropping record"
		}
		p.logger.Debug(msg,
			zap.String("phase", kind.String()),
			zap.String("field", field),
			zap.String("value", candidate),
			zap.Error(err))
		return err
	}

	p.applyAction(attrs, field, candidate, results[0], wasSlice)
	return nil
}

// applyAction writes result back to the field. Sequence-shaped fields
// stay sequences; under append a scalar becomes the two-element
// sequence [original, result].
func (p *dnsFilterProcessor) applyAction(attrs pcommon.Map, field, original, result string, wasSlice bool) {
	if p.cfg.Action == ActionReplace {
		if wasSlice {
			attrs.PutEmptySlice(field).AppendEmpty().SetStr(result)
		} else {
			attrs.PutStr(field, result)
		}
		return
	}

	if wasSlice {
		val, _ := attrs.Get(field)
		val.Slice().AppendEmpty().SetStr(result)
		return
	}
	sl := attrs.PutEmptySlice(field)
	sl.AppendEmpty().SetStr(original)
	sl.AppendEmpty().SetStr(result)
}
