// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package executor runs a single task prompt through an opaque agent
// collaborator and normalizes the result into a TaskResult. The concrete
// LLM/tool provider behind Runner is out of scope for this module: callers
// supply their own Runner implementation (an HTTP client, a CLI wrapper,
// whatever fronts their chosen model), and this package owns only the
// timeout, validation, and turn-accounting idiom around that call.
package executor

import (
	"context"
	"fmt"
	"time"

	"open-swarm/internal/orcherrors"
)

// Runner is the opaque collaborator the executor drives. Implementations
// typically wrap an LLM API client or a local CLI agent process.
type Runner interface {
	Run(ctx context.Context, req RunRequest) (RunResponse, error)
}

// RunRequest is a single prompt turn sent to a Runner.
type RunRequest struct {
	TaskID    string
	AgentName string
	Prompt    string
	SessionID string
}

// RunResponse is a Runner's raw reply to a RunRequest.
type RunResponse struct {
	Text          string
	FilesModified []string
	SessionID     string
}

// Config controls executor behavior independent of the Runner.
type Config struct {
	MaxTurns int
	Timeout  time.Duration
}

const (
	defaultMaxTurns = 10
	defaultTimeout  = 5 * time.Minute
	maxPromptLength = 10000
)

func (c *Config) applyDefaults() {
	if c.MaxTurns <= 0 {
		c.MaxTurns = defaultMaxTurns
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Executor runs tasks against a Runner, enforcing a timeout and a turn cap.
type Executor struct {
	runner Runner
	config Config
}

// New constructs an Executor bound to runner.
func New(runner Runner, config Config) *Executor {
	config.applyDefaults()
	return &Executor{runner: runner, config: config}
}

// Request describes one task execution.
type Request struct {
	TaskID      string
	AgentName   string
	Description string
	Prompt      string
	SessionID   string
}

// Validate checks that req is well formed before it reaches the Runner.
func (r *Request) Validate() error {
	if r.TaskID == "" {
		return orcherrors.New(orcherrors.ContractViolation, "executor", "", "taskId is required")
	}
	if r.Prompt == "" {
		return orcherrors.New(orcherrors.ContractViolation, "executor", r.TaskID, "prompt is required")
	}
	if len(r.Prompt) > maxPromptLength {
		return orcherrors.New(orcherrors.ContractViolation, "executor", r.TaskID,
			fmt.Sprintf("prompt exceeds maximum length of %d characters", maxPromptLength))
	}
	return nil
}

// Result is the normalized outcome of an Execute call.
type Result struct {
	Success       bool
	Output        string
	FilesModified []string
	Turns         int
	SessionID     string
	ErrorMessage  string
	// ErrorKind classifies ErrorMessage so callers (the scheduler's retry
	// logic) can tell a contract violation, which is never retried, from a
	// transient runner failure, which is. Empty on success.
	ErrorKind orcherrors.Kind
}

// Execute validates req, applies the configured timeout, and runs it
// through the bound Runner. Execution failures are reported in Result
// rather than as a returned error, mirroring the caller's expectation that
// a failed task is a normal scheduler outcome, not an executor bug.
func (e *Executor) Execute(ctx context.Context, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		kind, _ := orcherrors.KindOf(err)
		return &Result{Success: false, ErrorMessage: err.Error(), ErrorKind: kind}, nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	turn := 1
	if turn > e.config.MaxTurns {
		return &Result{
			Success:      false,
			ErrorMessage: fmt.Sprintf("exceeded maximum turns (%d)", e.config.MaxTurns),
			ErrorKind:    orcherrors.Retryable,
			Turns:        turn,
		}, nil
	}

	resp, err := e.runner.Run(ctx, RunRequest{
		TaskID:    req.TaskID,
		AgentName: req.AgentName,
		Prompt:    req.Prompt,
		SessionID: req.SessionID,
	})
	if err != nil {
		kind, ok := orcherrors.KindOf(err)
		if !ok {
			kind = orcherrors.Retryable
		}
		return &Result{
			Success:      false,
			ErrorMessage: fmt.Sprintf("run failed: %v", err),
			ErrorKind:    kind,
			Turns:        turn,
		}, nil
	}

	return &Result{
		Success:       true,
		Output:        resp.Text,
		FilesModified: resp.FilesModified,
		Turns:         turn,
		SessionID:     resp.SessionID,
	}, nil
}
