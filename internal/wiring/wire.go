// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package wiring

import (
	"open-swarm/internal/hooks"
)

// WireFeatureHooks registers one hook per enabled phase of every enabled
// catalog feature onto registry, and reports the outcome.
func WireFeatureHooks(registry *hooks.Registry, opts Options) (Summary, error) {
	summary := Summary{}
	for _, feature := range Catalog {
		if !opts.isEnabled(feature.ModuleName) {
			summary.SkippedCount++
			continue
		}
		phases := feature.Phases.enabledPhases()
		if len(phases) == 0 {
			summary.SkippedCount++
			continue
		}
		for _, phase := range phases {
			if err := registry.Register(hooks.Registration{
				Module:   feature.ModuleName,
				Phase:    phase,
				Priority: feature.Priority,
				Handler:  opts.handlerFor(feature, phase),
			}); err != nil {
				return summary, err
			}
			summary.TotalHooks++
		}
		summary.WiredCount++
		summary.FeaturesWired = append(summary.FeaturesWired, feature.ModuleName)
	}
	return summary, nil
}

// WiringSummary reports, without mutating any registry, which catalog
// features would be wired and which would be skipped under opts.
type WiringSummary struct {
	WouldWire []string
	WouldSkip []string
}

// GetWiringSummary mirrors WireFeatureHooks' enable/skip decisions without
// registering anything.
func GetWiringSummary(opts Options) WiringSummary {
	var summary WiringSummary
	for _, feature := range Catalog {
		if opts.isEnabled(feature.ModuleName) && len(feature.Phases.enabledPhases()) > 0 {
			summary.WouldWire = append(summary.WouldWire, feature.ModuleName)
		} else {
			summary.WouldSkip = append(summary.WouldSkip, feature.ModuleName)
		}
	}
	return summary
}
