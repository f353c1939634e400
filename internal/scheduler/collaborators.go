// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package scheduler

// EventStore is the optional session-event collaborator (spec §6.3).
type EventStore interface {
	Emit(event string, payload any)
	GetState() (sessionID string)
}

// GitWorkflowHandle is returned by GitWorkflow.InitWorkflow.
type GitWorkflowHandle struct {
	Branch      string
	CommitPhase func(phase int) error
	Finalize    func() error
}

// GitWorkflow is the optional git-branching collaborator (spec §6.3).
type GitWorkflow interface {
	InitWorkflow(name string) (GitWorkflowHandle, error)
}

// RemoteSync is the optional remote build-tracking collaborator (spec §6.3).
type RemoteSync interface {
	StartBuild(buildID, prdID string)
	LogTask(taskID string, result TaskOutcome)
	LogExecution(taskID string, durationMs int64)
	LogLearning(agent string, deltaCount int)
	CompleteBuild(success bool)
}

// TaskOutcome is the normalized per-task result RemoteSync.LogTask receives.
type TaskOutcome struct {
	Success    bool
	Output     string
	DurationMs int64
	Error      string
}
