// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package wiring binds the closed catalog of orchestrator features onto a
// hook registry. Each feature declares the lifecycle phases it cares about;
// wiring turns enabled features into concrete hook registrations.
package wiring

import (
	"context"

	"open-swarm/internal/hooks"
	"open-swarm/pkg/types"
)

// PhaseFlags marks which of the six lifecycle phases a feature wires into.
type PhaseFlags struct {
	OnBeforeBuild   bool
	OnBeforeTask    bool
	OnAfterTask     bool
	OnTaskError     bool
	OnHandoff       bool
	OnBuildComplete bool
}

func (f PhaseFlags) enabledPhases() []types.HookPhase {
	var phases []types.HookPhase
	if f.OnBeforeBuild {
		phases = append(phases, types.OnBeforeBuild)
	}
	if f.OnBeforeTask {
		phases = append(phases, types.OnBeforeTask)
	}
	if f.OnAfterTask {
		phases = append(phases, types.OnAfterTask)
	}
	if f.OnTaskError {
		phases = append(phases, types.OnTaskError)
	}
	if f.OnHandoff {
		phases = append(phases, types.OnHandoff)
	}
	if f.OnBuildComplete {
		phases = append(phases, types.OnBuildComplete)
	}
	return phases
}

// Feature is one entry in the closed catalog: a module name, a globally
// unique priority in [1,200], and which phases it wires into.
type Feature struct {
	ModuleName string
	Priority   int
	Phases     PhaseFlags
}

// Catalog is the closed list of the 24 orchestrator features. Order is the
// declared catalog order, used to break classifier and wiring ties.
var Catalog = []Feature{
	{ModuleName: "portfolio", Priority: 10, Phases: PhaseFlags{OnBeforeBuild: true, OnBuildComplete: true}},
	{ModuleName: "agentMemory", Priority: 15, Phases: PhaseFlags{OnBeforeTask: true, OnAfterTask: true}},
	{ModuleName: "wellbeing", Priority: 20, Phases: PhaseFlags{OnAfterTask: true, OnTaskError: true}},
	{ModuleName: "advancedRecovery", Priority: 25, Phases: PhaseFlags{OnTaskError: true}},
	{ModuleName: "advancedInit", Priority: 30, Phases: PhaseFlags{OnBeforeBuild: true}},
	{ModuleName: "orchestration", Priority: 35, Phases: PhaseFlags{OnBeforeTask: true, OnAfterTask: true, OnHandoff: true}},
	{ModuleName: "autonomousTesting", Priority: 40, Phases: PhaseFlags{OnAfterTask: true}},
	{ModuleName: "health", Priority: 45, Phases: PhaseFlags{OnBeforeBuild: true, OnBuildComplete: true}},
	{ModuleName: "environment", Priority: 50, Phases: PhaseFlags{OnBeforeBuild: true}},
	{ModuleName: "debug", Priority: 55, Phases: PhaseFlags{OnBeforeTask: true, OnAfterTask: true, OnTaskError: true}},
	{ModuleName: "codeReview", Priority: 60, Phases: PhaseFlags{OnAfterTask: true}},
	{ModuleName: "migration", Priority: 65, Phases: PhaseFlags{OnBeforeBuild: true}},
	{ModuleName: "debt", Priority: 70, Phases: PhaseFlags{OnAfterTask: true, OnBuildComplete: true}},
	{ModuleName: "dependencyManagement", Priority: 75, Phases: PhaseFlags{OnBeforeTask: true}},
	{ModuleName: "productionFeedback", Priority: 80, Phases: PhaseFlags{OnBuildComplete: true}},
	{ModuleName: "healthDashboard", Priority: 85, Phases: PhaseFlags{OnBeforeBuild: true, OnAfterTask: true, OnBuildComplete: true}},
	{ModuleName: "accessibility", Priority: 90, Phases: PhaseFlags{OnAfterTask: true}},
	{ModuleName: "generativeUI", Priority: 95, Phases: PhaseFlags{OnAfterTask: true}},
	{ModuleName: "modelRouting", Priority: 100, Phases: PhaseFlags{OnBeforeTask: true}},
	{ModuleName: "workflowEngine", Priority: 110, Phases: PhaseFlags{OnBeforeBuild: true, OnHandoff: true, OnBuildComplete: true}},
	{ModuleName: "infiniteMemory", Priority: 115, Phases: PhaseFlags{OnAfterTask: true, OnBuildComplete: true}},
	{ModuleName: "cinematicObservability", Priority: 120, Phases: PhaseFlags{OnBeforeBuild: true, OnBeforeTask: true, OnAfterTask: true, OnTaskError: true, OnHandoff: true, OnBuildComplete: true}},
	{ModuleName: "aiModelDatabase", Priority: 125, Phases: PhaseFlags{OnBeforeTask: true}},
	{ModuleName: "crdtCollaboration", Priority: 130, Phases: PhaseFlags{OnHandoff: true}},
}

// HandlerFactory builds the hooks.Handler that a catalog feature should run
// for a given phase. Callers supply one when a feature's effect needs
// access to live collaborators (memory store, playbook store, ...); the
// zero-value factory yields a no-op handler.
type HandlerFactory func(feature Feature, phase types.HookPhase) hooks.Handler

func noopHandler(ctx context.Context, payload any) error { return nil }

// Options controls which catalog features are enabled and supplies the
// handler factory used to build their hook bodies.
type Options struct {
	Enabled map[string]bool
	Factory HandlerFactory
}

func (o Options) isEnabled(moduleName string) bool {
	if o.Enabled == nil {
		return true
	}
	return o.Enabled[moduleName]
}

func (o Options) handlerFor(feature Feature, phase types.HookPhase) hooks.Handler {
	if o.Factory == nil {
		return noopHandler
	}
	return o.Factory(feature, phase)
}

// Summary reports the outcome of a wiring pass.
type Summary struct {
	WiredCount    int
	SkippedCount  int
	TotalHooks    int
	FeaturesWired []string
}
