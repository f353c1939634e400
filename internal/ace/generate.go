// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package ace implements the Generate/Reflect/Curate learning loop: inject
// playbook context under a token budget before a task runs, extract
// candidate rule deltas from the outcome afterward, and gate those deltas
// before they reach the playbook store.
package ace

import (
	"fmt"
	"math"
	"strings"

	"open-swarm/internal/playbook"
	"open-swarm/pkg/types"
)

const (
	maxRulesForContext    = 10
	charsPerTokenEstimate = 4
)

// GenerateResult is Generate's output.
type GenerateResult struct {
	PlaybookContext string
	AppliedRuleIDs  []string
}

// AnalyzeTask assembles a playbook-context block for task under agent,
// pulling up to 10 active rules and trimming from the tail until the
// estimated token count fits tokenBudget. Included rule ids are recorded
// via store.IncrementApplied.
func AnalyzeTask(store *playbook.Store, task types.Task, agent string, tokenBudget int) GenerateResult {
	pb := store.GetPlaybook(agent)
	taskContext := task.Title + " " + task.Description
	rules := store.GetActiveRules(agent, taskContext, maxRulesForContext)

	for n := len(rules); n >= 0; n-- {
		block := renderBlock(agent, pb.Version, rules[:n])
		if estimateTokens(block) <= tokenBudget {
			ids := make([]string, n)
			for i := 0; i < n; i++ {
				ids[i] = rules[i].ID
			}
			if n > 0 {
				store.IncrementApplied(agent, ids)
			}
			return GenerateResult{PlaybookContext: block, AppliedRuleIDs: ids}
		}
	}

	// Even the empty block does not fit; emit the minimal form regardless.
	return GenerateResult{PlaybookContext: `<playbook_context rules_applied="0"></playbook_context>`}
}

func renderBlock(agent string, version int, rules []types.PlaybookRule) string {
	if len(rules) == 0 {
		return `<playbook_context rules_applied="0"></playbook_context>`
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<playbook_context agent=\"%s\" version=\"%d\" rules_applied=\"%d\">\n", agent, version, len(rules))
	for _, r := range rules {
		fmt.Fprintf(&b, "- [%s, confidence: %.2f] %s\n", r.Type, r.Confidence, r.Content)
	}
	b.WriteString("</playbook_context>")
	return b.String()
}

func estimateTokens(s string) int {
	return int(math.Ceil(float64(len(s)) / charsPerTokenEstimate))
}
