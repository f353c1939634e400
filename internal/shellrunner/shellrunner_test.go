// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package shellrunner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"open-swarm/internal/executor"
	"open-swarm/pkg/types"
)

func TestRun_ExecutesTaskCommand(t *testing.T) {
	prd := &types.PRD{Tasks: []types.Task{
		{ID: "t1", Command: "echo hello-from-shell"},
	}}
	runner := New(prd)

	resp, err := runner.Run(context.Background(), executor.RunRequest{TaskID: "t1"})

	require.NoError(t, err)
	assert.Contains(t, resp.Text, "hello-from-shell")
}

func TestRun_NoCommandEchoesPrompt(t *testing.T) {
	prd := &types.PRD{Tasks: []types.Task{{ID: "t1"}}}
	runner := New(prd)

	resp, err := runner.Run(context.Background(), executor.RunRequest{TaskID: "t1", Prompt: "do the thing"})

	require.NoError(t, err)
	assert.Equal(t, "do the thing", resp.Text)
}

func TestRun_UnknownTaskIDEchoesPrompt(t *testing.T) {
	prd := &types.PRD{Tasks: nil}
	runner := New(prd)

	resp, err := runner.Run(context.Background(), executor.RunRequest{TaskID: "missing", Prompt: "fallback"})

	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Text)
}

func TestRun_FailingCommandReturnsError(t *testing.T) {
	prd := &types.PRD{Tasks: []types.Task{{ID: "t1", Command: "exit 1"}}}
	runner := New(prd)

	_, err := runner.Run(context.Background(), executor.RunRequest{TaskID: "t1"})

	assert.Error(t, err)
}
