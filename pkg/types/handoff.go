// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package types

import "time"

// HandoffPayload is the envelope carried from one agent to the next,
// including any module-state slots collected by the Handoff Context Bus.
type HandoffPayload struct {
	FromAgent string            `json:"fromAgent"`
	ToAgent   string            `json:"toAgent"`
	TaskID    string            `json:"taskId"`
	BuildID   string            `json:"buildId"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`

	TaskOutput     string   `json:"taskOutput,omitempty"`
	TaskDurationMs int64    `json:"taskDurationMs,omitempty"`
	ACEScore       *float64 `json:"aceScore,omitempty"`

	// ModuleState holds one entry per registered collector slot, keyed
	// "module/slot".
	ModuleState map[string]any `json:"moduleState,omitempty"`
}
