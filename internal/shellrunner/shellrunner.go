// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package shellrunner implements one concrete executor.Runner: a task whose
// PRD entry carries a shell Command (the pkg/dag compatibility fields on
// pkg/types.Task) runs that command via bitfield/script instead of calling
// out to an LLM. This is the default Runner cmd/build-orchestrator wires up
// for PRDs that describe deterministic build steps rather than open-ended
// agent prompts.
package shellrunner

import (
	"context"
	"fmt"

	"github.com/bitfield/script"

	"open-swarm/internal/executor"
	"open-swarm/pkg/types"
)

// Runner executes a task's Command against the shell, looking the command up
// by TaskID in the bound PRD. Tasks with no Command produce a no-op success
// so PRDs can mix shell steps with pure-prompt agent steps.
type Runner struct {
	prd *types.PRD
}

// New constructs a Runner bound to prd.
func New(prd *types.PRD) *Runner {
	return &Runner{prd: prd}
}

// Run implements executor.Runner.
func (r *Runner) Run(ctx context.Context, req executor.RunRequest) (executor.RunResponse, error) {
	task, ok := r.prd.TaskByID(req.TaskID)
	if !ok || task.Command == "" {
		return executor.RunResponse{Text: req.Prompt}, nil
	}

	output, err := script.Exec(task.Command).String()
	if err != nil {
		return executor.RunResponse{}, fmt.Errorf("shell command failed: %w", err)
	}
	return executor.RunResponse{Text: output}, nil
}
