// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package types

// ============================================================================
// DAG WORKFLOW TYPES
// ============================================================================

// DAGWorkflowInput defines input for the Temporal-backed DAG execution
// backend (pkg/dag). It contains the tasks to execute in dependency order,
// using each Task's Name/Deps/Command fields rather than the default
// in-process scheduler's ID/Dependencies/agent-executor path.
type DAGWorkflowInput struct {
	// WorkflowID is the unique identifier for this workflow execution
	WorkflowID string

	// Branch is the git branch to execute tasks on
	Branch string

	// Tasks is the list of all tasks to execute in the DAG
	Tasks []Task
}
