// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"open-swarm/pkg/types"
)

func TestRegister_RejectsInvalidPhase(t *testing.T) {
	r := New(nil)
	err := r.Register(Registration{
		Module: "ace", Phase: types.HookPhase(99), Handler: func(ctx context.Context, p any) error { return nil },
	})
	require.Error(t, err)
}

func TestRegister_RejectsMissingHandler(t *testing.T) {
	r := New(nil)
	err := r.Register(Registration{Module: "ace", Phase: types.OnBeforeTask})
	require.Error(t, err)
}

func TestExecutePhase_RunsInPriorityOrder(t *testing.T) {
	r := New(nil)
	var order []string

	require.NoError(t, r.Register(Registration{
		Module: "second", Phase: types.OnBeforeTask, Priority: 20,
		Handler: func(ctx context.Context, p any) error { order = append(order, "second"); return nil },
	}))
	require.NoError(t, r.Register(Registration{
		Module: "first", Phase: types.OnBeforeTask, Priority: 10,
		Handler: func(ctx context.Context, p any) error { order = append(order, "first"); return nil },
	}))

	faults := r.ExecutePhase(context.Background(), types.OnBeforeTask, types.TaskContext{TaskID: "t1"})
	assert.Empty(t, faults)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestExecutePhase_IsolatesHandlerFaults(t *testing.T) {
	r := New(nil)
	ran := false

	require.NoError(t, r.Register(Registration{
		Module: "broken", Phase: types.OnAfterTask, Priority: 1,
		Handler: func(ctx context.Context, p any) error { return errors.New("boom") },
	}))
	require.NoError(t, r.Register(Registration{
		Module: "healthy", Phase: types.OnAfterTask, Priority: 2,
		Handler: func(ctx context.Context, p any) error { ran = true; return nil },
	}))

	faults := r.ExecutePhase(context.Background(), types.OnAfterTask, types.TaskResult{TaskID: "t1"})
	require.Len(t, faults, 1)
	assert.Equal(t, "broken", faults[0].Module)
	assert.True(t, ran)
}

func TestExecutePhase_IsolatesHandlerPanic(t *testing.T) {
	r := New(nil)
	require.NoError(t, r.Register(Registration{
		Module: "panics", Phase: types.OnBeforeBuild, Priority: 1,
		Handler: func(ctx context.Context, p any) error { panic("unexpected") },
	}))

	faults := r.ExecutePhase(context.Background(), types.OnBeforeBuild, types.BuildContext{BuildID: "b1"})
	require.Len(t, faults, 1)
	assert.Equal(t, "panics", faults[0].Module)
}

func TestUnregister_RemovesAcrossAllPhases(t *testing.T) {
	r := New(nil)
	handler := func(ctx context.Context, p any) error { return nil }
	require.NoError(t, r.Register(Registration{Module: "memory", Phase: types.OnBeforeTask, Handler: handler}))
	require.NoError(t, r.Register(Registration{Module: "memory", Phase: types.OnAfterTask, Handler: handler}))

	r.Unregister("memory")

	assert.Empty(t, r.GetRegisteredModules(types.OnBeforeTask))
	assert.Empty(t, r.GetRegisteredModules(types.OnAfterTask))
}

func TestGetRegisteredModules_PreservesExecutionOrder(t *testing.T) {
	r := New(nil)
	handler := func(ctx context.Context, p any) error { return nil }
	require.NoError(t, r.Register(Registration{Module: "b", Phase: types.OnHandoff, Priority: 5, Handler: handler}))
	require.NoError(t, r.Register(Registration{Module: "a", Phase: types.OnHandoff, Priority: 1, Handler: handler}))

	assert.Equal(t, []string{"a", "b"}, r.GetRegisteredModules(types.OnHandoff))
}
