// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package ace

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"open-swarm/pkg/types"
)

const maxDeltasFromReflect = 5

// Outcome summarizes a completed task for Reflect's prompt.
type Outcome struct {
	Success   bool
	Output    string
	GateScore *float64
}

// LLM is the inexpensive-model collaborator Reflect sends its prompt to.
// Kept separate from executor.Runner: Reflect's calls are cheap,
// single-turn classification calls rather than full task executions.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ReflectOnOutcome composes a reflection prompt from task/outcome/playbook,
// sends it to llm, and parses the response into a capped, filtered list of
// PlaybookDelta. Any failure to reach the model or to parse its response
// degrades to an empty list; Reflect never propagates an error to its
// caller, per the parse-fault policy.
func ReflectOnOutcome(ctx context.Context, llm LLM, task types.Task, outcome Outcome, pb *types.Playbook) []types.PlaybookDelta {
	prompt := buildReflectionPrompt(task, outcome, pb)

	raw, err := llm.Complete(ctx, prompt)
	if err != nil {
		return nil
	}

	deltas, err := parseDeltas(raw)
	if err != nil {
		return nil
	}

	filtered := deltas[:0]
	for _, d := range deltas {
		if d.Confidence < 0.5 {
			continue
		}
		filtered = append(filtered, d)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Confidence > filtered[j].Confidence
	})

	if len(filtered) > maxDeltasFromReflect {
		filtered = filtered[:maxDeltasFromReflect]
	}
	return filtered
}

func buildReflectionPrompt(task types.Task, outcome Outcome, pb *types.Playbook) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n%s\n\n", task.Title, task.Description)
	fmt.Fprintf(&b, "Outcome: success=%v\n%s\n", outcome.Success, outcome.Output)
	if outcome.GateScore != nil {
		fmt.Fprintf(&b, "Gate score: %.2f\n", *outcome.GateScore)
	}
	if pb != nil {
		fmt.Fprintf(&b, "\nCurrent playbook version %d with %d rules.\n", pb.Version, len(pb.Rules))
	}
	b.WriteString("\nReturn a JSON array of playbook deltas describing what should change.")
	return b.String()
}

// parseDeltas unwraps a fenced code block if present, then unmarshals a
// JSON array of PlaybookDelta.
func parseDeltas(raw string) ([]types.PlaybookDelta, error) {
	unfenced := unwrapFence(raw)
	var deltas []types.PlaybookDelta
	if err := json.Unmarshal([]byte(unfenced), &deltas); err != nil {
		return nil, err
	}
	return deltas, nil
}

func unwrapFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	lines = lines[1:]
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
