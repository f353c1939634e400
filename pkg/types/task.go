// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package types provides shared domain types used across Open Swarm.
//
// This package contains core types that are shared between different
// packages to break circular dependencies. Types here should be:
// - Pure data structures (no behavior beyond small invariant helpers)
// - Serializable (JSON/YAML tags where persisted)
// - Dependency-free: no imports from internal packages
package types

import "time"

// TaskStatus is the lifecycle state of a Task.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskReady   TaskStatus = "ready"
	TaskRunning TaskStatus = "running"
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
	TaskBlocked TaskStatus = "blocked"
)

// CanTransitionTo reports whether moving from s to next is a legal status
// transition. failed -> ready is only legal when the caller has already
// checked attempts < maxRetries; this helper enforces shape, not the retry
// budget.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch s {
	case TaskPending:
		return next == TaskReady
	case TaskReady:
		return next == TaskRunning
	case TaskRunning:
		return next == TaskDone || next == TaskFailed
	case TaskFailed:
		return next == TaskReady
	case TaskDone, TaskBlocked:
		return false
	default:
		return false
	}
}

// TaskOutput is an artifact reference produced by a completed task.
type TaskOutput struct {
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Task is a single unit of work in a PRD.
type Task struct {
	ID           string     `json:"id" yaml:"id"`
	Title        string     `json:"title" yaml:"title"`
	Description  string     `json:"description" yaml:"description"`
	Agent        string     `json:"agent" yaml:"agent"`
	Phase        int        `json:"phase" yaml:"phase"`
	Dependencies []string   `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Status       TaskStatus `json:"status" yaml:"status"`
	Attempts     int        `json:"attempts" yaml:"attempts"`
	Output       *TaskOutput `json:"output,omitempty" yaml:"output,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" yaml:"createdAt"`

	// Name and Command are kept for compatibility with the pkg/dag
	// Temporal-backed execution backend, which schedules tasks by name and
	// runs a shell command per task rather than invoking the opaque LLM
	// executor. Both are optional; when empty, ID/Agent drive execution via
	// the default in-process scheduler.
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Command string `json:"command,omitempty" yaml:"command,omitempty"`
	Deps    []string `json:"deps,omitempty" yaml:"deps,omitempty"`
}

// PRDMeta carries PRD-level identification.
type PRDMeta struct {
	Name string `json:"name" yaml:"name"`
}

// PRD is the declarative, ordered task list that drives one build.
type PRD struct {
	Meta   PRDMeta `json:"meta" yaml:"meta"`
	Tasks  []Task  `json:"tasks" yaml:"tasks"`
	Status string  `json:"status,omitempty" yaml:"status,omitempty"`
}

// TaskByID returns the task with the given id, if present.
func (p *PRD) TaskByID(id string) (Task, bool) {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Validate checks the structural invariants from spec §3/§6.1: unique ids,
// and every dependency id resolves to a task in the PRD.
func (p *PRD) Validate() error {
	seen := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if t.ID == "" {
			return &ValidationError{Reason: "task id must not be empty"}
		}
		if seen[t.ID] {
			return &ValidationError{Reason: "duplicate task id: " + t.ID}
		}
		seen[t.ID] = true
	}
	for _, t := range p.Tasks {
		for _, dep := range t.Dependencies {
			if !seen[dep] {
				return &ValidationError{Reason: "task " + t.ID + " depends on unknown task " + dep}
			}
		}
	}
	return nil
}

// ValidationError represents a structural PRD load-time error (spec §6.1:
// "missing required fields is a load-time error").
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "prd validation: " + e.Reason
}
