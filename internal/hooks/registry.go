// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package hooks implements the lifecycle hook registry: modules register
// handlers against one of the six build-lifecycle phases, and the build
// driver fires each phase's handlers in priority order, isolating faults so
// one module's failure never aborts the phase for the rest.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"open-swarm/internal/orcherrors"
	"open-swarm/pkg/types"
)

// Handler is a single registered lifecycle callback. Exactly one of the
// payload fields on the call site is populated for a given phase; handlers
// type-assert or take the phase-specific argument passed to them.
type Handler func(ctx context.Context, payload any) error

// Registration is one module's hook binding for a single phase.
type Registration struct {
	Module   string
	Phase    types.HookPhase
	Priority int
	Handler  Handler
}

// FaultRecord captures a hook handler failure for later inspection. Hook
// faults never propagate as build-aborting errors; they are isolated here.
type FaultRecord struct {
	Module string
	Phase  types.HookPhase
	Err    error
}

// Registry holds all registered hooks and runs them phase by phase.
type Registry struct {
	mu      sync.RWMutex
	byPhase map[types.HookPhase][]Registration
	logger  *slog.Logger
}

// New constructs an empty Registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byPhase: make(map[types.HookPhase][]Registration),
		logger:  logger,
	}
}

// Register binds handler to phase for module, ordered by priority
// (lower priority numbers run first; ties broken by registration order).
func (r *Registry) Register(reg Registration) error {
	if !reg.Phase.IsValid() {
		return orcherrors.New(orcherrors.ContractViolation, "hooks", reg.Module, "invalid hook phase")
	}
	if reg.Module == "" {
		return orcherrors.New(orcherrors.ContractViolation, "hooks", "", "module name is required")
	}
	if reg.Handler == nil {
		return orcherrors.New(orcherrors.ContractViolation, "hooks", reg.Module, "handler is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPhase[reg.Phase] = append(r.byPhase[reg.Phase], reg)
	sort.SliceStable(r.byPhase[reg.Phase], func(i, j int) bool {
		return r.byPhase[reg.Phase][i].Priority < r.byPhase[reg.Phase][j].Priority
	})
	return nil
}

// Unregister removes every hook module registered for module, across all
// phases.
func (r *Registry) Unregister(module string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for phase, regs := range r.byPhase {
		kept := regs[:0]
		for _, reg := range regs {
			if reg.Module != module {
				kept = append(kept, reg)
			}
		}
		r.byPhase[phase] = kept
	}
}

// GetRegisteredModules returns the distinct module names registered for
// phase, in execution order.
func (r *Registry) GetRegisteredModules(phase types.HookPhase) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var modules []string
	for _, reg := range r.byPhase[phase] {
		if !seen[reg.Module] {
			seen[reg.Module] = true
			modules = append(modules, reg.Module)
		}
	}
	return modules
}

// HooksForPhase returns the sorted registrations for phase, in the exact
// order ExecutePhase would invoke them.
func (r *Registry) HooksForPhase(phase types.HookPhase) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Registration, len(r.byPhase[phase]))
	copy(out, r.byPhase[phase])
	return out
}

// ExecutePhase runs every handler registered for phase, in priority order,
// passing payload to each. A handler that returns an error is recorded as a
// FaultRecord and execution continues with the next handler: hook faults are
// isolated per spec, never aborting the phase for other modules.
func (r *Registry) ExecutePhase(ctx context.Context, phase types.HookPhase, payload any) []FaultRecord {
	r.mu.RLock()
	regs := make([]Registration, len(r.byPhase[phase]))
	copy(regs, r.byPhase[phase])
	r.mu.RUnlock()

	var faults []FaultRecord
	for _, reg := range regs {
		if err := r.runOne(ctx, reg, payload); err != nil {
			r.logger.Error("hook fault", "module", reg.Module, "phase", phase.String(), "error", err)
			faults = append(faults, FaultRecord{Module: reg.Module, Phase: phase, Err: err})
		}
	}
	return faults
}

func (r *Registry) runOne(ctx context.Context, reg Registration, payload any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = orcherrors.New(orcherrors.HookFault, "hooks", reg.Module, fmt.Sprintf("panic: %v", rec))
		}
	}()
	if hookErr := reg.Handler(ctx, payload); hookErr != nil {
		return orcherrors.Wrap(orcherrors.HookFault, "hooks", reg.Module, "hook handler failed", hookErr)
	}
	return nil
}
