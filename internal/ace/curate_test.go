// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package ace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"open-swarm/internal/playbook"
	"open-swarm/pkg/types"
)

func TestCurate_S1_DedupGate(t *testing.T) {
	store := playbook.New(nil)
	store.UpdatePlaybook("agent-a", []types.PlaybookDelta{
		{Action: types.DeltaAdd, Content: "Always validate user input before processing database queries", Confidence: 0.9},
	})

	result := Curate(store, nil, []types.PlaybookDelta{
		{Action: types.DeltaAdd, Content: "Always validate user input before processing any queries", Confidence: 0.85, HelpfulDelta: 1},
	}, "agent-a")

	assert.Empty(t, result.Applied)
	require.Len(t, result.Rejected, 1)
	assert.Contains(t, result.Rejected[0].Reason, "Duplicate")
	assert.Len(t, store.GetPlaybook("agent-a").Rules, 1)
}

func TestCurate_S2_ScoreGate(t *testing.T) {
	store := playbook.New(nil)
	result := Curate(store, nil, []types.PlaybookDelta{
		{Action: types.DeltaAdd, Content: "low value delta", Confidence: 0.2, HelpfulDelta: 0, HarmfulDelta: 1},
	}, "agent-a")

	assert.Empty(t, result.Applied)
	require.Len(t, result.Rejected, 1)
	assert.Contains(t, result.Rejected[0].Reason, "Score")
}

func TestCurate_S3_Cap(t *testing.T) {
	store := playbook.New(nil)
	deltas := []types.PlaybookDelta{
		{Action: types.DeltaAdd, Content: "rule one about caching strategy", Confidence: 0.9, HelpfulDelta: 1},
		{Action: types.DeltaAdd, Content: "rule two about retry strategy", Confidence: 0.8, HelpfulDelta: 1},
		{Action: types.DeltaAdd, Content: "rule three about logging strategy", Confidence: 0.7, HelpfulDelta: 1},
		{Action: types.DeltaAdd, Content: "rule four about testing strategy", Confidence: 0.6, HelpfulDelta: 1},
		{Action: types.DeltaAdd, Content: "rule five about deployment strategy", Confidence: 0.5, HelpfulDelta: 1},
	}

	result := Curate(store, nil, deltas, "agent-a")

	require.Len(t, result.Applied, 3)
	assert.Equal(t, 0.9, result.Applied[0].Confidence)
	require.Len(t, result.Rejected, 2)
	for _, r := range result.Rejected {
		assert.Contains(t, r.Reason, "Cap reached")
	}
}

type fakeVault struct {
	added []string
}

func (f *fakeVault) AddNode(agent, content string, ruleType types.RuleType, confidence float64, helpfulCount int) (string, error) {
	f.added = append(f.added, content)
	return "node-1", nil
}

func TestCurate_MirrorsGlobalCandidatesToVault(t *testing.T) {
	store := playbook.New(nil)
	vault := &fakeVault{}

	result := Curate(store, vault, []types.PlaybookDelta{
		{Action: types.DeltaAdd, Content: "promotable rule", Confidence: 0.95, HelpfulDelta: 1, IsGlobalCandidate: true},
	}, "agent-a")

	require.Len(t, result.Applied, 1)
	assert.Equal(t, []string{"promotable rule"}, vault.added)
}
