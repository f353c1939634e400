// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"open-swarm/internal/executor"
	"open-swarm/internal/handoff"
	"open-swarm/internal/hooks"
	"open-swarm/internal/promptassembler"
	"open-swarm/pkg/types"
)

type scriptedRunner struct {
	mu       sync.Mutex
	failures map[string]int
}

func (r *scriptedRunner) Run(ctx context.Context, req executor.RunRequest) (executor.RunResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures[req.TaskID] > 0 {
		r.failures[req.TaskID]--
		return executor.RunResponse{}, fmt.Errorf("transient failure")
	}
	return executor.RunResponse{Text: "output for " + req.TaskID}, nil
}

type stubTemplates struct{}

func (stubTemplates) Load(agent string) (string, bool) { return "", false }

func newTestScheduler(runner executor.Runner, concurrency int) (*Scheduler, *hooks.Registry, *handoff.Bus) {
	hookRegistry := hooks.New(nil)
	handoffBus := handoff.New(nil)
	exec := executor.New(runner, executor.Config{})
	assembler := promptassembler.New(stubTemplates{})

	sched := New(Dependencies{
		Hooks:     hookRegistry,
		Handoffs:  handoffBus,
		Executor:  exec,
		Assembler: assembler,
	}, Config{Concurrency: concurrency, MaxRetries: 2})
	return sched, hookRegistry, handoffBus
}

func TestRunBuild_ExecutesPhasesInOrderAndMarksTasksDone(t *testing.T) {
	runner := &scriptedRunner{failures: map[string]int{}}
	sched, hookRegistry, _ := newTestScheduler(runner, 4)

	var beforeOrder, afterOrder []string
	var mu sync.Mutex
	require.NoError(t, hookRegistry.Register(hooks.Registration{
		Module: "test", Phase: types.OnBeforeTask, Priority: 1,
		Handler: func(ctx context.Context, payload any) error {
			mu.Lock()
			defer mu.Unlock()
			beforeOrder = append(beforeOrder, payload.(types.TaskContext).TaskID)
			return nil
		},
	}))
	require.NoError(t, hookRegistry.Register(hooks.Registration{
		Module: "test", Phase: types.OnAfterTask, Priority: 1,
		Handler: func(ctx context.Context, payload any) error {
			mu.Lock()
			defer mu.Unlock()
			afterOrder = append(afterOrder, payload.(types.TaskResult).TaskID)
			return nil
		},
	}))

	prd := &types.PRD{Tasks: []types.Task{
		{ID: "t1", Phase: 0, Agent: "a"},
		{ID: "t2", Phase: 1, Agent: "a", Dependencies: []string{"t1"}},
	}}

	handle := sched.StartBuild(context.Background(), prd, nil)
	sched.RunBuild(context.Background(), prd, handle, promptassembler.Options{})

	assert.Equal(t, types.TaskDone, prd.Tasks[0].Status)
	assert.Equal(t, types.TaskDone, prd.Tasks[1].Status)
	assert.Equal(t, []string{"t1", "t2"}, beforeOrder)
	assert.Equal(t, []string{"t1", "t2"}, afterOrder)
}

func TestRunBuild_RunsIndependentTasksWithinPhaseConcurrently(t *testing.T) {
	runner := &scriptedRunner{failures: map[string]int{}}
	sched, _, _ := newTestScheduler(runner, 4)

	prd := &types.PRD{Tasks: []types.Task{
		{ID: "a", Phase: 0, Agent: "x"},
		{ID: "b", Phase: 0, Agent: "x"},
		{ID: "c", Phase: 0, Agent: "x"},
	}}

	handle := sched.StartBuild(context.Background(), prd, nil)
	sched.RunBuild(context.Background(), prd, handle, promptassembler.Options{})

	for _, task := range prd.Tasks {
		assert.Equal(t, types.TaskDone, task.Status)
	}
}

func TestRunBuild_RetriesRetryableFailureThenSucceeds(t *testing.T) {
	runner := &scriptedRunner{failures: map[string]int{"t1": 1}}
	sched, _, _ := newTestScheduler(runner, 4)

	prd := &types.PRD{Tasks: []types.Task{{ID: "t1", Phase: 0, Agent: "a"}}}

	handle := sched.StartBuild(context.Background(), prd, nil)
	sched.RunBuild(context.Background(), prd, handle, promptassembler.Options{})

	assert.Equal(t, types.TaskDone, prd.Tasks[0].Status)
	assert.Equal(t, 1, prd.Tasks[0].Attempts)
}

func TestRunBuild_FailsAfterExhaustingRetries(t *testing.T) {
	runner := &scriptedRunner{failures: map[string]int{"t1": 10}}
	sched, hookRegistry, _ := newTestScheduler(runner, 4)

	var errored bool
	require.NoError(t, hookRegistry.Register(hooks.Registration{
		Module: "test", Phase: types.OnTaskError, Priority: 1,
		Handler: func(ctx context.Context, payload any) error {
			errored = true
			return nil
		},
	}))

	prd := &types.PRD{Tasks: []types.Task{{ID: "t1", Phase: 0, Agent: "a"}}}
	handle := sched.StartBuild(context.Background(), prd, nil)
	sched.RunBuild(context.Background(), prd, handle, promptassembler.Options{})

	assert.Equal(t, types.TaskFailed, prd.Tasks[0].Status)
	assert.True(t, errored)
	assert.Equal(t, 2, prd.Tasks[0].Attempts)
}

func TestRunBuild_ContractViolationDoesNotRetry(t *testing.T) {
	runner := &scriptedRunner{failures: map[string]int{}}
	sched, _, _ := newTestScheduler(runner, 4)

	prd := &types.PRD{Tasks: []types.Task{{ID: "", Phase: 0, Agent: "a"}}}
	handle := sched.StartBuild(context.Background(), prd, nil)
	sched.RunBuild(context.Background(), prd, handle, promptassembler.Options{})

	assert.Equal(t, types.TaskFailed, prd.Tasks[0].Status)
	assert.Equal(t, 1, prd.Tasks[0].Attempts)
}

func TestRunBuild_BlocksTasksWithUnresolvableDependencyCycle(t *testing.T) {
	runner := &scriptedRunner{failures: map[string]int{}}
	sched, _, _ := newTestScheduler(runner, 4)

	prd := &types.PRD{Tasks: []types.Task{
		{ID: "a", Phase: 0, Agent: "x", Dependencies: []string{"b"}},
		{ID: "b", Phase: 0, Agent: "x", Dependencies: []string{"a"}},
	}}

	handle := sched.StartBuild(context.Background(), prd, nil)
	sched.RunBuild(context.Background(), prd, handle, promptassembler.Options{})

	assert.Equal(t, types.TaskBlocked, prd.Tasks[0].Status)
	assert.Equal(t, types.TaskBlocked, prd.Tasks[1].Status)
}

func TestStartBuild_MintsDistinctBuildIDs(t *testing.T) {
	runner := &scriptedRunner{failures: map[string]int{}}
	sched, _, _ := newTestScheduler(runner, 4)

	prd := &types.PRD{Tasks: nil, Meta: types.PRDMeta{Name: "demo"}}
	h1 := sched.StartBuild(context.Background(), prd, nil)
	h2 := sched.StartBuild(context.Background(), prd, nil)

	assert.NotEqual(t, h1.BuildID, h2.BuildID)
}

func TestCompleteBuild_TalliesStatusesAndFiresHook(t *testing.T) {
	runner := &scriptedRunner{failures: map[string]int{}}
	sched, hookRegistry, _ := newTestScheduler(runner, 4)

	var got types.BuildResult
	require.NoError(t, hookRegistry.Register(hooks.Registration{
		Module: "test", Phase: types.OnBuildComplete, Priority: 1,
		Handler: func(ctx context.Context, payload any) error {
			got = payload.(types.BuildResult)
			return nil
		},
	}))

	prd := &types.PRD{Tasks: []types.Task{
		{ID: "t1", Status: types.TaskDone},
		{ID: "t2", Status: types.TaskFailed},
	}}
	handle := sched.StartBuild(context.Background(), prd, nil)
	result := sched.CompleteBuild(context.Background(), prd, handle, []float64{0.8, 0.6})

	assert.Equal(t, 2, result.TotalTasks)
	assert.Equal(t, 1, result.SuccessfulTasks)
	assert.Equal(t, 1, result.FailedTasks)
	assert.InDelta(t, 0.7, result.AverageACEScore, 0.001)
	assert.Equal(t, result.BuildID, got.BuildID)
}
