// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package scheduler implements the Task Scheduler & Build Driver: phase
// layering with a per-phase concurrency cap, per-task lifecycle
// transitions with retry/backoff, and the build-level start/complete
// lifecycle that fires hooks through the Registry and feeds the Handoff
// Context Bus. The wave-execution/semaphore/Kahn's-algorithm idiom is
// carried over from the teacher's internal/orchestration.Coordinator,
// regrounded on Task/Phase/hook semantics instead of flat AgentConfig
// dependency waves.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"open-swarm/internal/ace"
	"open-swarm/internal/executor"
	"open-swarm/internal/gates"
	"open-swarm/internal/handoff"
	"open-swarm/internal/hooks"
	"open-swarm/internal/obslog"
	"open-swarm/internal/playbook"
	"open-swarm/internal/promptassembler"
	"open-swarm/pkg/agent"
	"open-swarm/pkg/types"
)

const (
	defaultConcurrency = 4
	defaultMaxRetries  = 3
	defaultTaskTimeout = 5 * time.Minute
)

// Dependencies wires the scheduler to the other Open Swarm subsystems. Only
// Hooks, Handoffs, Executor, and Assembler are required; the rest are
// optional and skipped silently when nil.
type Dependencies struct {
	Hooks      *hooks.Registry
	Handoffs   *handoff.Bus
	Executor   *executor.Executor
	Assembler  *promptassembler.Assembler
	Playbooks  *playbook.Store
	Gates      *gates.GateChain
	EventStore EventStore
	GitFlow    GitWorkflow
	Remote     RemoteSync
	Roster     *agent.Manager
	Logger     *slog.Logger
}

func (d *Dependencies) applyDefaults() {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
}

// Config controls scheduling behavior independent of the wired subsystems.
type Config struct {
	Concurrency int
	MaxRetries  int
	TaskTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = defaultTaskTimeout
	}
}

// Scheduler drives one build's tasks through their lifecycle.
type Scheduler struct {
	deps   Dependencies
	config Config
}

// New constructs a Scheduler bound to deps and config.
func New(deps Dependencies, config Config) *Scheduler {
	deps.applyDefaults()
	config.applyDefaults()
	return &Scheduler{deps: deps, config: config}
}

// BuildHandle is the opaque result of StartBuild, threaded through
// RunBuild and CompleteBuild.
type BuildHandle struct {
	BuildID           string
	PRDID             string
	StartedAt         time.Time
	GitFlow           *GitWorkflowHandle
	InjectedPlaybooks map[string]string
}

// StartBuild mints a build id, starts the optional GitFlow and Remote
// collaborators when they are wired, and fires onBeforeBuild with options.
func (s *Scheduler) StartBuild(ctx context.Context, prd *types.PRD, options map[string]any) *BuildHandle {
	handle := &BuildHandle{
		BuildID:           uuid.NewString(),
		PRDID:             prd.Meta.Name,
		StartedAt:         time.Now(),
		InjectedPlaybooks: make(map[string]string),
	}

	buildLog := obslog.ForBuild(s.deps.Logger, handle.BuildID, handle.PRDID)
	buildLog.Info("build started", "taskCount", len(prd.Tasks))

	if s.deps.GitFlow != nil {
		if gf, err := s.deps.GitFlow.InitWorkflow(prd.Meta.Name); err == nil {
			handle.GitFlow = &gf
		} else {
			buildLog.Warn("git workflow init failed", "error", err)
		}
	}
	if s.deps.Remote != nil {
		s.deps.Remote.StartBuild(handle.BuildID, handle.PRDID)
	}

	s.deps.Hooks.ExecutePhase(ctx, types.OnBeforeBuild, types.BuildContext{
		BuildID:   handle.BuildID,
		PRDID:     handle.PRDID,
		PRDName:   prd.Meta.Name,
		StartedAt: handle.StartedAt,
		Options:   options,
	})

	return handle
}

// CompleteBuild tallies prd's final task statuses, fires onBuildComplete,
// and notifies the optional remote-sync/git-workflow/event-store
// collaborators.
func (s *Scheduler) CompleteBuild(ctx context.Context, prd *types.PRD, handle *BuildHandle, aceScores []float64) types.BuildResult {
	result := types.BuildResult{
		BuildID:         handle.BuildID,
		PRDID:           handle.PRDID,
		TotalTasks:      len(prd.Tasks),
		TotalDurationMs: time.Since(handle.StartedAt).Milliseconds(),
	}
	for _, t := range prd.Tasks {
		switch t.Status {
		case types.TaskDone:
			result.SuccessfulTasks++
		case types.TaskFailed:
			result.FailedTasks++
		}
	}
	if len(aceScores) > 0 {
		var sum float64
		for _, v := range aceScores {
			sum += v
		}
		result.AverageACEScore = sum / float64(len(aceScores))
	}

	allDone := result.FailedTasks == 0 && result.SuccessfulTasks == result.TotalTasks
	buildLog := obslog.ForBuild(s.deps.Logger, handle.BuildID, handle.PRDID)
	buildLog.Info("build complete", "successful", result.SuccessfulTasks, "failed", result.FailedTasks)

	s.deps.Hooks.ExecutePhase(ctx, types.OnBuildComplete, result)

	if s.deps.Remote != nil {
		s.deps.Remote.CompleteBuild(allDone)
	}
	if allDone && handle.GitFlow != nil && handle.GitFlow.Finalize != nil {
		if err := handle.GitFlow.Finalize(); err != nil {
			buildLog.Warn("git workflow finalize failed", "error", err)
		}
	}
	if s.deps.EventStore != nil {
		s.deps.EventStore.Emit("session_end", result)
	}

	return result
}

// reflectLLM is a narrow seam for wiring ACE's Reflect/Curate
// stages from a build driver that otherwise only knows about executor.Runner.
type reflectLLM struct {
	exec *executor.Executor
}

func (r reflectLLM) Complete(ctx context.Context, prompt string) (string, error) {
	res, err := r.exec.Execute(ctx, &executor.Request{TaskID: "ace-reflect", Prompt: prompt})
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// RunACELearning runs Reflect then Curate for one task outcome against
// agent's playbook, returning the applied delta count. vault may be nil.
func (s *Scheduler) RunACELearning(ctx context.Context, task types.Task, outcome ace.Outcome, vault ace.TasteVault) int {
	if s.deps.Playbooks == nil || s.deps.Executor == nil {
		return 0
	}
	pb := s.deps.Playbooks.GetPlaybook(task.Agent)
	deltas := ace.ReflectOnOutcome(ctx, reflectLLM{exec: s.deps.Executor}, task, outcome, pb)
	if len(deltas) == 0 {
		return 0
	}
	result := ace.Curate(s.deps.Playbooks, vault, deltas, task.Agent)
	return len(result.Applied)
}
