// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package types

import "time"

// RuleType classifies a PlaybookRule.
type RuleType string

const (
	RuleStrategy RuleType = "Strategy"
	RulePattern  RuleType = "Pattern"
	RuleMistake  RuleType = "Mistake"
)

// RuleSource identifies where a rule originated.
type RuleSource string

const (
	SourceLearned RuleSource = "learned"
	SourceGlobal  RuleSource = "global"
	SourceManual  RuleSource = "manual"
)

// PlaybookRule is a single learned rule within an agent's playbook.
type PlaybookRule struct {
	ID                string     `json:"id"`
	Content           string     `json:"content"`
	Type              RuleType   `json:"type"`
	Confidence        float64    `json:"confidence"`
	Source            RuleSource `json:"source"`
	AppliedCount      int        `json:"appliedCount"`
	SuccessCount      int        `json:"successCount"`
	HelpfulCount      int        `json:"helpfulCount"`
	HarmfulCount      int        `json:"harmfulCount"`
	Tags              []string   `json:"tags,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	IsGlobalCandidate bool       `json:"isGlobalCandidate"`
}

// SuccessRate is successCount / max(1, appliedCount), the empirical success
// rate used by the active-rule relevance score (spec §4.D).
func (r *PlaybookRule) SuccessRate() float64 {
	applied := r.AppliedCount
	if applied < 1 {
		applied = 1
	}
	return float64(r.SuccessCount) / float64(applied)
}

// Playbook is the per-agent ordered rule set.
type Playbook struct {
	AgentName         string         `json:"agentName"`
	ID                string         `json:"id"`
	Version           int            `json:"version"`
	Rules             []PlaybookRule `json:"rules"`
	TotalTasksApplied int            `json:"totalTasksApplied"`
	SuccessRate       float64        `json:"successRate"`
	TaskTypes         []string       `json:"taskTypes,omitempty"`
	LastUpdated       time.Time      `json:"lastUpdated"`
}

// DeltaAction is the kind of change a PlaybookDelta proposes.
type DeltaAction string

const (
	DeltaAdd    DeltaAction = "add"
	DeltaUpdate DeltaAction = "update"
	DeltaRemove DeltaAction = "remove"
)

// PlaybookDelta is a proposed change to a playbook, produced by Reflect and
// consumed by Curate.
type PlaybookDelta struct {
	ID                string      `json:"id"`
	Action            DeltaAction `json:"action"`
	RuleID            string      `json:"ruleId,omitempty"`
	Content           string      `json:"content"`
	Type              RuleType    `json:"type"`
	Confidence        float64     `json:"confidence"`
	HelpfulDelta      int         `json:"helpfulDelta"`
	HarmfulDelta      int         `json:"harmfulDelta"`
	IsGlobalCandidate bool        `json:"isGlobalCandidate"`
	Reason            string      `json:"reason,omitempty"`
}
