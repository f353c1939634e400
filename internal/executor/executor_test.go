// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"open-swarm/internal/orcherrors"
)

type fakeRunner struct {
	resp RunResponse
	err  error
}

func (f *fakeRunner) Run(ctx context.Context, req RunRequest) (RunResponse, error) {
	return f.resp, f.err
}

func TestExecute_Success(t *testing.T) {
	runner := &fakeRunner{resp: RunResponse{Text: "done", FilesModified: []string{"a.go"}, SessionID: "s1"}}
	exec := New(runner, Config{})

	result, err := exec.Execute(context.Background(), &Request{TaskID: "t1", Prompt: "do the thing"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "done", result.Output)
	assert.Equal(t, []string{"a.go"}, result.FilesModified)
	assert.Equal(t, 1, result.Turns)
}

func TestExecute_ValidationFailure(t *testing.T) {
	exec := New(&fakeRunner{}, Config{})

	result, err := exec.Execute(context.Background(), &Request{TaskID: "", Prompt: "x"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "taskId")
	assert.Equal(t, orcherrors.ContractViolation, result.ErrorKind)
}

func TestExecute_PromptTooLong(t *testing.T) {
	exec := New(&fakeRunner{}, Config{})
	result, err := exec.Execute(context.Background(), &Request{TaskID: "t1", Prompt: strings.Repeat("x", maxPromptLength+1)})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "exceeds maximum length")
}

func TestExecute_RunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("connection reset")}
	exec := New(runner, Config{})

	result, err := exec.Execute(context.Background(), &Request{TaskID: "t1", Prompt: "x"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "connection reset")
	assert.Equal(t, orcherrors.Retryable, result.ErrorKind)
}

func TestExecute_AppliesDefaultTimeout(t *testing.T) {
	exec := New(&fakeRunner{resp: RunResponse{Text: "ok"}}, Config{Timeout: 0})
	assert.Equal(t, defaultTimeout, exec.config.Timeout)
	assert.Equal(t, defaultMaxTurns, exec.config.MaxTurns)
}

func TestExecute_RespectsCallerDeadline(t *testing.T) {
	exec := New(&fakeRunner{resp: RunResponse{Text: "ok"}}, Config{Timeout: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	result, err := exec.Execute(ctx, &Request{TaskID: "t1", Prompt: "x"})
	require.NoError(t, err)
	assert.True(t, result.Success)
}
