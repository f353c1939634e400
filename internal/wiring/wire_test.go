// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package wiring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"open-swarm/internal/hooks"
)

func totalCatalogPhases() int {
	total := 0
	for _, f := range Catalog {
		total += len(f.Phases.enabledPhases())
	}
	return total
}

func TestWireFeatureHooks_AllEnabled_WiresExactly24Features(t *testing.T) {
	registry := hooks.New(nil)
	summary, err := WireFeatureHooks(registry, Options{})
	require.NoError(t, err)

	assert.Equal(t, 24, summary.WiredCount)
	assert.Equal(t, 0, summary.SkippedCount)
	assert.Equal(t, totalCatalogPhases(), summary.TotalHooks)
	assert.Len(t, summary.FeaturesWired, 24)
}

func TestWireFeatureHooks_SkipsDisabledFeatures(t *testing.T) {
	registry := hooks.New(nil)
	summary, err := WireFeatureHooks(registry, Options{
		Enabled: map[string]bool{"portfolio": true, "agentMemory": true},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.WiredCount)
	assert.Equal(t, 22, summary.SkippedCount)
}

func TestGetWiringSummary_DoesNotMutateRegistry(t *testing.T) {
	registry := hooks.New(nil)
	opts := Options{Enabled: map[string]bool{"portfolio": true}}

	summary := GetWiringSummary(opts)
	assert.Contains(t, summary.WouldWire, "portfolio")
	assert.Contains(t, summary.WouldSkip, "agentMemory")

	assert.Empty(t, registry.GetRegisteredModules(0))
}
