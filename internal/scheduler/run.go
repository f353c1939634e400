// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package scheduler

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"open-swarm/internal/executor"
	"open-swarm/internal/handoff"
	"open-swarm/internal/obslog"
	"open-swarm/internal/orcherrors"
	"open-swarm/internal/promptassembler"
	"open-swarm/internal/telemetry"
	"open-swarm/pkg/agent"
	"open-swarm/pkg/types"
)

const backoffBase = 500 * time.Millisecond

// RunResult is RunBuild's summary output.
type RunResult struct {
	ACEScores []float64
}

// RunBuild executes every task in prd to a terminal state, phase by phase.
// Phases run in ascending order and are strict barriers: no task in phase
// n+1 starts until every task in phase n is terminal. Within a phase,
// independent tasks (whose dependencies are not in the same phase group)
// run concurrently in batches capped at the configured concurrency.
func (s *Scheduler) RunBuild(ctx context.Context, prd *types.PRD, handle *BuildHandle, assembleOpts promptassembler.Options) RunResult {
	phases := groupByPhase(prd.Tasks)

	var result RunResult
	var lastAgent string
	for _, phaseIDs := range phases {
		s.runPhase(ctx, prd, handle, phaseIDs, assembleOpts, &result, &lastAgent)
		if ctx.Err() != nil {
			break
		}
	}
	return result
}

func groupByPhase(tasks []types.Task) [][]string {
	byPhase := make(map[int][]string)
	for _, t := range tasks {
		byPhase[t.Phase] = append(byPhase[t.Phase], t.ID)
	}
	phaseNums := make([]int, 0, len(byPhase))
	for p := range byPhase {
		phaseNums = append(phaseNums, p)
	}
	sort.Ints(phaseNums)

	out := make([][]string, 0, len(phaseNums))
	for _, p := range phaseNums {
		out = append(out, byPhase[p])
	}
	return out
}

func (s *Scheduler) runPhase(ctx context.Context, prd *types.PRD, handle *BuildHandle, phaseIDs []string, assembleOpts promptassembler.Options, result *RunResult, lastAgent *string) {
	remaining := make(map[string]bool, len(phaseIDs))
	for _, id := range phaseIDs {
		remaining[id] = true
	}

	for len(remaining) > 0 {
		if ctx.Err() != nil {
			return
		}

		batch := s.readyBatch(prd, remaining)
		if len(batch) == 0 {
			// No progress possible: mark remaining tasks blocked so the
			// build can still report a final status for them.
			for id := range remaining {
				idx := indexOf(prd.Tasks, id)
				if idx >= 0 {
					prd.Tasks[idx].Status = types.TaskBlocked
				}
			}
			return
		}

		s.runBatch(ctx, prd, handle, batch, assembleOpts, result, lastAgent)
		for _, id := range batch {
			delete(remaining, id)
		}
	}
}

// readyBatch returns up to Concurrency task ids from remaining whose
// dependencies are all terminal-done, capped so a task depending on a
// same-phase task only becomes eligible once that dependency completes.
func (s *Scheduler) readyBatch(prd *types.PRD, remaining map[string]bool) []string {
	var ready []string
	for id := range remaining {
		idx := indexOf(prd.Tasks, id)
		if idx < 0 {
			continue
		}
		task := prd.Tasks[idx]
		if task.Status != types.TaskPending && task.Status != types.TaskReady {
			continue
		}
		if allDepsDone(prd, task.Dependencies) {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)
	if len(ready) > s.config.Concurrency {
		ready = ready[:s.config.Concurrency]
	}
	return ready
}

func allDepsDone(prd *types.PRD, deps []string) bool {
	for _, dep := range deps {
		t, ok := prd.TaskByID(dep)
		if !ok || t.Status != types.TaskDone {
			return false
		}
	}
	return true
}

func indexOf(tasks []types.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Scheduler) runBatch(ctx context.Context, prd *types.PRD, handle *BuildHandle, batch []string, assembleOpts promptassembler.Options, result *RunResult, lastAgent *string) {
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, id := range batch {
		idx := indexOf(prd.Tasks, id)
		if idx < 0 {
			continue
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			aceScore, handoffAgent := s.runTask(ctx, prd, handle, idx, assembleOpts)

			mu.Lock()
			if aceScore != nil {
				result.ACEScores = append(result.ACEScores, *aceScore)
			}
			if handoffAgent != "" && *lastAgent != "" && handoffAgent != *lastAgent {
				s.fireHandoff(ctx, handle, *lastAgent, handoffAgent, prd.Tasks[idx].ID)
			}
			if handoffAgent != "" {
				*lastAgent = handoffAgent
			}
			mu.Unlock()
		}(idx)
	}
	wg.Wait()
}

// runTask drives one task through ready -> running -> done/failed,
// returning its ACE score (if any) and the agent name to compare against
// the previous task for a handoff.
func (s *Scheduler) runTask(ctx context.Context, prd *types.PRD, handle *BuildHandle, idx int, assembleOpts promptassembler.Options) (*float64, string) {
	task := &prd.Tasks[idx]
	task.Status = types.TaskRunning

	ctx, span := telemetry.StartSpan(ctx, "scheduler", "run_task",
		trace.WithAttributes(telemetry.BuildTaskAttrs(handle.BuildID, task.ID, task.Phase)...))
	defer span.End()

	taskLog := obslog.ForTask(s.deps.Logger, handle.BuildID, task.ID, task.Agent)
	taskLog.Info("task started", "attempt", task.Attempts+1)

	s.deps.Hooks.ExecutePhase(ctx, types.OnBeforeTask, types.TaskContext{TaskID: task.ID, AgentName: task.Agent})

	if s.deps.Roster != nil && task.Agent != "" {
		_ = s.deps.Roster.Register(agent.Agent{
			Name:            task.Agent,
			TaskDescription: task.Description,
			LastActive:      time.Now().Format(time.RFC3339),
		})
	}

	prompt := ""
	if s.deps.Assembler != nil {
		prompt = s.deps.Assembler.Assemble(*task, *prd, assembleOpts)
	}

	taskCtx, cancel := context.WithTimeout(ctx, s.config.TaskTimeout)
	defer cancel()

	start := time.Now()
	execResult, _ := s.deps.Executor.Execute(taskCtx, &executor.Request{
		TaskID:      task.ID,
		AgentName:   task.Agent,
		Description: task.Description,
		Prompt:      prompt,
	})
	durationMs := time.Since(start).Milliseconds()

	if s.deps.Roster != nil && task.Agent != "" {
		_ = s.deps.Roster.Update(agent.Agent{
			Name:            task.Agent,
			TaskDescription: task.Description,
			LastActive:      time.Now().Format(time.RFC3339),
		})
	}

	if execResult.Success && s.deps.Gates != nil {
		if gateErr := s.deps.Gates.Execute(taskCtx); gateErr != nil {
			execResult.Success = false
			execResult.ErrorMessage = gateErr.Error()
			execResult.ErrorKind = orcherrors.Retryable
		}
	}

	if execResult.Success {
		task.Status = types.TaskDone
		task.Output = &types.TaskOutput{Summary: execResult.Output}
		taskLog.Info("task done", "durationMs", durationMs)

		s.deps.Hooks.ExecutePhase(ctx, types.OnAfterTask, types.TaskResult{
			TaskID:     task.ID,
			AgentName:  task.Agent,
			Success:    true,
			Output:     execResult.Output,
			DurationMs: durationMs,
		})
		if s.deps.Remote != nil {
			s.deps.Remote.LogTask(task.ID, TaskOutcome{Success: true, Output: execResult.Output, DurationMs: durationMs})
			s.deps.Remote.LogExecution(task.ID, durationMs)
		}
		return nil, task.Agent
	}

	task.Attempts++
	retryable := execResult.ErrorKind != orcherrors.ContractViolation
	if task.Attempts < s.config.MaxRetries && retryable {
		task.Status = types.TaskReady
		backoff := time.Duration(math.Pow(2, float64(task.Attempts))) * backoffBase
		taskLog.Warn("task failed, retrying", "attempt", task.Attempts, "backoff", backoff, "error", execResult.ErrorMessage)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
		}
		return s.runTask(ctx, prd, handle, idx, assembleOpts)
	}

	task.Status = types.TaskFailed
	taskLog.Error("task failed permanently", "error", execResult.ErrorMessage)
	span.SetStatus(codes.Error, execResult.ErrorMessage)
	s.deps.Hooks.ExecutePhase(ctx, types.OnTaskError, types.ErrorContext{TaskID: task.ID, Error: execResult.ErrorMessage})
	if s.deps.Remote != nil {
		s.deps.Remote.LogTask(task.ID, TaskOutcome{Success: false, Error: execResult.ErrorMessage, DurationMs: durationMs})
	}
	return nil, ""
}

func (s *Scheduler) fireHandoff(ctx context.Context, handle *BuildHandle, fromAgent, toAgent, taskID string) {
	if s.deps.Handoffs == nil {
		s.deps.Hooks.ExecutePhase(ctx, types.OnHandoff, types.HandoffContext{FromAgent: fromAgent, ToAgent: toAgent, TaskID: taskID})
		return
	}
	payload := s.deps.Handoffs.BuildPayload(ctx, handoff.BuildParams{
		FromAgent: fromAgent,
		ToAgent:   toAgent,
		TaskID:    taskID,
		BuildID:   handle.BuildID,
	})
	s.deps.Hooks.ExecutePhase(ctx, types.OnHandoff, types.HandoffContext{FromAgent: fromAgent, ToAgent: toAgent, TaskID: taskID, Payload: payload})
	s.deps.Handoffs.Receive(ctx, payload)
}
