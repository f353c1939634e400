// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package handoff implements the Handoff Context Bus: modules register a
// collector (run when a handoff payload is built) and/or a restorer (run
// when a payload is received), each under a module/slot key. Collector and
// restorer faults are isolated, mirroring the hook registry's fault
// isolation so one module's broken collector never blocks a handoff.
package handoff

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"open-swarm/pkg/types"
)

// CollectorFunc builds this module's slot of a handoff payload. Returning
// (nil, nil) leaves the slot absent.
type CollectorFunc func(ctx context.Context, fromAgent, toAgent, taskID string) (any, error)

// RestorerFunc consumes this module's slot from a received payload.
type RestorerFunc func(ctx context.Context, state any) error

type registration struct {
	module string
	slot   string
	fn     any
}

// Bus is the handoff context bus. The registration lists are built at
// wiring time and read thereafter, so a coarse mutex protects the whole
// bus rather than per-slot locks.
type Bus struct {
	mu         sync.RWMutex
	collectors []registration
	restorers  []registration
	logger     *slog.Logger
}

// New constructs an empty Bus.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// RegisterCollector binds fn under module/slot, to run on every BuildPayload
// call.
func (b *Bus) RegisterCollector(module, slot string, fn CollectorFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.collectors = append(b.collectors, registration{module: module, slot: slot, fn: fn})
}

// RegisterRestorer binds fn under module/slot, to run on Receive only when
// that slot is populated in the payload.
func (b *Bus) RegisterRestorer(module, slot string, fn RestorerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.restorers = append(b.restorers, registration{module: module, slot: slot, fn: fn})
}

func slotKey(module, slot string) string {
	return module + "/" + slot
}

// BuildParams describes the handoff a payload is being assembled for.
type BuildParams struct {
	FromAgent      string
	ToAgent        string
	TaskID         string
	BuildID        string
	Metadata       map[string]string
	TaskOutput     string
	TaskDurationMs int64
	ACEScore       *float64
}

// BuildPayload runs every registered collector in registration order and
// assembles the resulting HandoffPayload. A collector that errors or
// returns a nil state simply leaves its slot absent; other collectors still
// run.
func (b *Bus) BuildPayload(ctx context.Context, params BuildParams) types.HandoffPayload {
	b.mu.RLock()
	collectors := make([]registration, len(b.collectors))
	copy(collectors, b.collectors)
	b.mu.RUnlock()

	payload := types.HandoffPayload{
		FromAgent:      params.FromAgent,
		ToAgent:        params.ToAgent,
		TaskID:         params.TaskID,
		BuildID:        params.BuildID,
		Timestamp:      time.Now(),
		Metadata:       params.Metadata,
		TaskOutput:     params.TaskOutput,
		TaskDurationMs: params.TaskDurationMs,
		ACEScore:       params.ACEScore,
	}

	for _, reg := range collectors {
		fn, ok := reg.fn.(CollectorFunc)
		if !ok {
			continue
		}
		state, err := b.runCollector(ctx, fn, params)
		if err != nil {
			b.logger.Warn("handoff collector failed", "module", reg.module, "slot", reg.slot, "error", err)
			continue
		}
		if state == nil {
			continue
		}
		if payload.ModuleState == nil {
			payload.ModuleState = make(map[string]any)
		}
		payload.ModuleState[slotKey(reg.module, reg.slot)] = state
	}
	return payload
}

func (b *Bus) runCollector(ctx context.Context, fn CollectorFunc, params BuildParams) (state any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("collector panic: %v", rec)
		}
	}()
	return fn(ctx, params.FromAgent, params.ToAgent, params.TaskID)
}

// ReceiveResult reports which restorers ran and which failed.
type ReceiveResult struct {
	RestoredModules []string
	Errors          map[string]error
}

// Receive runs every registered restorer whose slot is populated in
// payload, in registration order. Restorer errors are captured into
// result.Errors without aborting other restorers.
func (b *Bus) Receive(ctx context.Context, payload types.HandoffPayload) ReceiveResult {
	b.mu.RLock()
	restorers := make([]registration, len(b.restorers))
	copy(restorers, b.restorers)
	b.mu.RUnlock()

	result := ReceiveResult{Errors: make(map[string]error)}
	for _, reg := range restorers {
		key := slotKey(reg.module, reg.slot)
		state, present := payload.ModuleState[key]
		if !present {
			continue
		}
		fn, ok := reg.fn.(RestorerFunc)
		if !ok {
			continue
		}
		if err := b.runRestorer(ctx, fn, state); err != nil {
			b.logger.Warn("handoff restorer failed", "module", reg.module, "slot", reg.slot, "error", err)
			result.Errors[key] = err
			continue
		}
		result.RestoredModules = append(result.RestoredModules, key)
	}
	return result
}

func (b *Bus) runRestorer(ctx context.Context, fn RestorerFunc, state any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("restorer panic: %v", rec)
		}
	}()
	return fn(ctx, state)
}
