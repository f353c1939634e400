// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Command build-orchestrator drives a PRD file through the full scheduler:
// phase-layered task execution, lifecycle hooks, handoff payloads, and ACE
// learning, end to end against a single YAML task list.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"open-swarm/internal/ace"
	"open-swarm/internal/config"
	"open-swarm/internal/executor"
	"open-swarm/internal/handoff"
	"open-swarm/internal/hooks"
	"open-swarm/internal/playbook"
	"open-swarm/internal/promptassembler"
	"open-swarm/internal/scheduler"
	"open-swarm/internal/shellrunner"
	"open-swarm/pkg/agent"
	"open-swarm/pkg/types"
)

const version = "0.1.0"

func main() {
	fmt.Printf("Open Swarm Build Orchestrator v%s\n", version)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	if len(os.Args) < 2 {
		fmt.Println("Usage: build-orchestrator <prd.yaml>")
		os.Exit(1)
	}

	prd, err := loadPRD(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to load PRD: %v", err)
	}
	if err := prd.Validate(); err != nil {
		log.Fatalf("Invalid PRD: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("no project config found, using orchestrator defaults", "error", err)
		cfg = &config.Config{}
	}
	oc := cfg.Orchestrator

	for i := range prd.Tasks {
		prd.Tasks[i].Status = types.TaskPending
	}

	sched := scheduler.New(scheduler.Dependencies{
		Hooks:     hooks.New(nil),
		Handoffs:  handoff.New(nil),
		Executor:  executor.New(shellrunner.New(prd), executor.Config{}),
		Assembler: promptassembler.New(agentTemplateDir(".claude/agents")),
		Playbooks: playbook.New(nil),
		Roster:    agent.NewManager(prd.Meta.Name),
	}, scheduler.Config{
		Concurrency: oc.Scheduler.Concurrency,
		MaxRetries:  oc.Scheduler.MaxRetries,
		TaskTimeout: oc.Scheduler.TaskTimeout,
	})

	ctx := context.Background()
	handle := sched.StartBuild(ctx, prd, nil)

	fmt.Printf("\n▶ Build %s started (%d tasks)\n", handle.BuildID, len(prd.Tasks))

	runResult := sched.RunBuild(ctx, prd, handle, promptassembler.Options{})

	for _, task := range prd.Tasks {
		if task.Status != types.TaskDone {
			continue
		}
		deltaCount := sched.RunACELearning(ctx, task, ace.Outcome{Success: true}, nil)
		if deltaCount > 0 {
			fmt.Printf("  learned %d playbook rule(s) from %s\n", deltaCount, task.ID)
		}
	}

	result := sched.CompleteBuild(ctx, prd, handle, runResult.ACEScores)

	fmt.Println("\n📊 Build Summary")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Total tasks:      %d\n", result.TotalTasks)
	fmt.Printf("Successful:       %d\n", result.SuccessfulTasks)
	fmt.Printf("Failed:           %d\n", result.FailedTasks)
	fmt.Printf("Duration:         %dms\n", result.TotalDurationMs)
	if result.AverageACEScore > 0 {
		fmt.Printf("Avg ACE score:    %.2f\n", result.AverageACEScore)
	}

	if result.FailedTasks > 0 {
		os.Exit(1)
	}
}

func loadPRD(path string) (*types.PRD, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var prd types.PRD
	if err := yaml.Unmarshal(data, &prd); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &prd, nil
}

// agentTemplateDir loads a per-agent prompt template from dir/<agent>.md, if
// present. Missing files and a missing directory are both a normal cache
// miss, not an error: promptassembler.Assemble tolerates an absent template.
type agentTemplateDir string

func (d agentTemplateDir) Load(agentName string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(string(d), agentName+".md"))
	if err != nil {
		return "", false
	}
	return string(data), true
}
