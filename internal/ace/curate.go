// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package ace

import (
	"sort"
	"strings"

	"open-swarm/internal/playbook"
	"open-swarm/pkg/types"
)

const (
	scoreThreshold      = 0.4
	duplicateThreshold  = 0.65
	maxAppliedPerCurate = 3
)

// TasteVault is the external collaborator that global-candidate deltas are
// mirrored into once applied.
type TasteVault interface {
	AddNode(agent, content string, ruleType types.RuleType, confidence float64, helpfulCount int) (string, error)
}

// RejectedDelta pairs a delta with why Curate rejected it.
type RejectedDelta struct {
	Delta  types.PlaybookDelta
	Reason string
}

// CurateResult is Curate's output.
type CurateResult struct {
	Applied     []types.PlaybookDelta
	Rejected    []RejectedDelta
	NewPlaybook *types.Playbook
}

// Curate scores, dedups, and caps deltas before applying survivors to
// store's playbook for agent. vault may be nil; global-candidate deltas are
// only mirrored into it when non-nil.
func Curate(store *playbook.Store, vault TasteVault, deltas []types.PlaybookDelta, agent string) CurateResult {
	scored := make([]types.PlaybookDelta, len(deltas))
	copy(scored, deltas)
	sort.SliceStable(scored, func(i, j int) bool {
		return deltaScore(scored[i]) > deltaScore(scored[j])
	})

	existing := store.GetPlaybook(agent).Rules

	var result CurateResult
	for _, d := range scored {
		if len(result.Applied) >= maxAppliedPerCurate {
			result.Rejected = append(result.Rejected, RejectedDelta{Delta: d, Reason: "Cap reached"})
			continue
		}

		score := deltaScore(d)
		if score < scoreThreshold {
			result.Rejected = append(result.Rejected, RejectedDelta{Delta: d, Reason: "Score too low"})
			continue
		}

		if isDuplicate(d.Content, existing, duplicateThreshold) {
			result.Rejected = append(result.Rejected, RejectedDelta{Delta: d, Reason: "Duplicate"})
			continue
		}

		newPb := store.UpdatePlaybook(agent, []types.PlaybookDelta{d})
		existing = newPb.Rules
		result.Applied = append(result.Applied, d)
		result.NewPlaybook = newPb

		if d.IsGlobalCandidate && vault != nil {
			_, _ = vault.AddNode(agent, d.Content, d.Type, d.Confidence, d.HelpfulDelta)
		}
	}

	if result.NewPlaybook == nil {
		result.NewPlaybook = store.GetPlaybook(agent)
	}
	return result
}

func deltaScore(d types.PlaybookDelta) float64 {
	score := float64(d.HelpfulDelta)*0.6 + d.Confidence*0.4 - float64(d.HarmfulDelta)*0.3
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// isDuplicate reports whether content is Jaccard-similar (over
// whitespace-tokenized word sets) to any existing rule's content, at or
// above threshold.
func isDuplicate(content string, existing []types.PlaybookRule, threshold float64) bool {
	tokens := tokenSet(content)
	for _, r := range existing {
		if jaccardSimilarity(tokens, tokenSet(r.Content)) >= threshold {
			return true
		}
	}
	return false
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		set[f] = true
	}
	return set
}

func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
