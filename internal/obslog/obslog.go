// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package obslog wraps log/slog with build/task-scoped logger factories, the
// same structured-logging idiom pkg/coordinator and pkg/agent use directly,
// but pre-populated with the identifiers every orchestrator subsystem needs
// on every line: build id, task id, phase, and hook module.
package obslog

import "log/slog"

// ForBuild returns a logger with buildId and prdId attached to every record.
func ForBuild(base *slog.Logger, buildID, prdID string) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With("build.id", buildID, "prd.id", prdID)
}

// ForTask returns a logger scoped to a single task within a build.
func ForTask(base *slog.Logger, buildID, taskID, agent string) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With("build.id", buildID, "task.id", taskID, "agent", agent)
}

// ForHook returns a logger scoped to a single lifecycle hook module.
func ForHook(base *slog.Logger, module string, phase string) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With("hook.module", module, "phase", phase)
}
