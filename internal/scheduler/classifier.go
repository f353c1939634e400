// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package scheduler

import "strings"

const (
	weightKeywordOverlap     = 0.5
	weightExamplePhrase      = 0.3
	weightDescriptionOverlap = 0.2
)

// AgentSpec describes one agent's classification profile.
type AgentSpec struct {
	Name           string
	Specialty      []string
	ExamplePhrases []string
	Description    string
}

// Classification is the best-match result of ClassifyTask.
type Classification struct {
	AgentName  string
	Confidence float64
}

// ClassifyTask scores each agent by keyword overlap with its specialty,
// example-phrase overlap, and description-token overlap against text, then
// returns the best match with its score normalized against the sum of every
// agent's raw score. Ties are broken by declaration order in agents.
func ClassifyTask(text string, agents []AgentSpec) (Classification, bool) {
	if len(agents) == 0 {
		return Classification{}, false
	}

	taskTokens := tokenize(text)

	scores := make([]float64, len(agents))
	var total float64
	for i, a := range agents {
		score := weightKeywordOverlap*overlapRatio(taskTokens, tokenizeAll(a.Specialty)) +
			weightExamplePhrase*overlapRatio(taskTokens, tokenizeAll(a.ExamplePhrases)) +
			weightDescriptionOverlap*overlapRatio(taskTokens, tokenize(a.Description))
		scores[i] = score
		total += score
	}

	bestIdx := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[bestIdx] {
			bestIdx = i
		}
	}

	confidence := 0.0
	if total > 0 {
		confidence = scores[bestIdx] / total
	}
	return Classification{AgentName: agents[bestIdx].Name, Confidence: confidence}, true
}

func tokenize(s string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		set[f] = true
	}
	return set
}

func tokenizeAll(items []string) map[string]bool {
	set := make(map[string]bool)
	for _, s := range items {
		for tok := range tokenize(s) {
			set[tok] = true
		}
	}
	return set
}

// overlapRatio is the fraction of a's tokens also present in b, 0 when a is
// empty.
func overlapRatio(a, b map[string]bool) float64 {
	if len(a) == 0 {
		return 0
	}
	matched := 0
	for tok := range a {
		if b[tok] {
			matched++
		}
	}
	return float64(matched) / float64(len(a))
}
