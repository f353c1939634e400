// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package promptassembler composes the final prompt handed to a task's
// executor: a fixed header, inlined dependency outputs, and a sequence of
// optional context blocks. The section-by-section strings.Builder idiom and
// the file-load-with-fallback behavior follow internal/prompts' review
// builders and its LoadFileContent helper, generalized from code-review
// prompts to task-execution prompts.
package promptassembler

import (
	"fmt"
	"os"
	"strings"
	"time"

	"open-swarm/internal/filelock"
	"open-swarm/pkg/types"
)

// ToolRegistry exposes the tool catalog for agentic-mode prompts.
type ToolRegistry interface {
	ToolDescriptions() []string
}

// MessageBus is the inter-agent communication collaborator (spec §6.3).
type MessageBus interface {
	GetMessagesFor(agent string) []string
}

// RepoContextProvider is the optional repository-context collaborator.
type RepoContextProvider interface {
	RepoContext(query string) (string, bool)
}

// MemoryContextProvider supplies a rendered memory-context block for a task.
type MemoryContextProvider interface {
	MemoryContext(task types.Task) (string, bool)
}

// Options configures one Assemble call.
type Options struct {
	AgenticMode   bool
	ToolRegistry  ToolRegistry
	MessageBus    MessageBus
	RepoProvider  RepoContextProvider
	MemoryContext MemoryContextProvider
	// Locks serializes reads of a dependency task's output file, following
	// the same guarded-resource idiom internal/filelock applies to writes.
	Locks *filelock.MemoryRegistry
	// PlaybookContext is the ACE playbook-context block (4.E), rendered by
	// the caller and tracked by task id.
	PlaybookContext map[string]string
}

// Assembler builds task prompts from a template set and the PRD.
type Assembler struct {
	templates TemplateLoader
}

// TemplateLoader resolves an agent's named template.
type TemplateLoader interface {
	Load(agentName string) (string, bool)
}

// New constructs an Assembler backed by templates.
func New(templates TemplateLoader) *Assembler {
	return &Assembler{templates: templates}
}

// Assemble builds the final prompt for task within prd, honoring opts. Every
// optional input is tolerated silently when absent.
func (a *Assembler) Assemble(task types.Task, prd types.PRD, opts Options) string {
	var sb strings.Builder

	if tmpl, ok := a.templates.Load(task.Agent); ok {
		sb.WriteString(tmpl)
		sb.WriteString("\n\n")
	}
	if opts.AgenticMode {
		sb.WriteString(agenticInstructions(opts.ToolRegistry))
	}

	writeHeader(&sb, task)
	writeDependencies(&sb, task, prd, opts.Locks)

	if opts.RepoProvider != nil {
		if text, ok := opts.RepoProvider.RepoContext(task.Description); ok && text != "" {
			sb.WriteString("## Repository Context\n")
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
	}

	if opts.MemoryContext != nil {
		if text, ok := opts.MemoryContext.MemoryContext(task); ok && text != "" {
			sb.WriteString("## Memory Context\n")
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
	}

	if pb, ok := opts.PlaybookContext[task.ID]; ok && pb != "" {
		sb.WriteString("## Playbook Context\n")
		sb.WriteString(pb)
		sb.WriteString("\n\n")
	}

	if opts.MessageBus != nil {
		if msgs := opts.MessageBus.GetMessagesFor(task.Agent); len(msgs) > 0 {
			sb.WriteString("## Inter-Agent Communication\n")
			for _, m := range msgs {
				sb.WriteString("- ")
				sb.WriteString(m)
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString(footer())
	return sb.String()
}

func writeHeader(sb *strings.Builder, task types.Task) {
	sb.WriteString("# Task\n")
	sb.WriteString(fmt.Sprintf("- **ID**: %s\n", task.ID))
	sb.WriteString(fmt.Sprintf("- **Description**: %s\n", task.Description))
	sb.WriteString(fmt.Sprintf("- **Agent**: %s\n", task.Agent))
	sb.WriteString(fmt.Sprintf("- **Phase**: %d\n\n", task.Phase))
}

func writeDependencies(sb *strings.Builder, task types.Task, prd types.PRD, locks *filelock.MemoryRegistry) {
	if len(task.Dependencies) == 0 {
		return
	}
	sb.WriteString("## Dependency Outputs\n\n")
	for _, depID := range task.Dependencies {
		dep, found := prd.TaskByID(depID)
		sb.WriteString(fmt.Sprintf("### %s\n", depID))
		switch {
		case !found:
			sb.WriteString("NOT FOUND\n\n")
		case dep.Status != types.TaskDone:
			sb.WriteString(fmt.Sprintf("(status: %s)\n\n", dep.Status))
		default:
			sb.WriteString(dependencyOutput(dep, locks))
		}
	}
}

func dependencyOutput(dep types.Task, locks *filelock.MemoryRegistry) string {
	if dep.Output == nil || dep.Output.Path == "" {
		return "(No output file found)\n\n"
	}
	read := func() string {
		content, err := os.ReadFile(dep.Output.Path)
		if err != nil {
			return "(No output file found)\n\n"
		}
		return fmt.Sprintf("```\n%s\n```\n\n", string(content))
	}
	if locks == nil {
		return read()
	}
	holder := "promptassembler:" + dep.ID
	req := filelock.LockRequest{Path: dep.Output.Path, Holder: holder, Exclusive: false, TTL: 30 * time.Second}
	result, err := locks.Acquire(req)
	if err != nil || !result.Granted {
		return read()
	}
	defer locks.Release(dep.Output.Path, holder)
	return read()
}

func agenticInstructions(registry ToolRegistry) string {
	var sb strings.Builder
	sb.WriteString("## Tool Catalog\n")
	if registry != nil {
		for _, desc := range registry.ToolDescriptions() {
			sb.WriteString("- ")
			sb.WriteString(desc)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n## ReAct Usage\n")
	sb.WriteString("Wrap tool calls as `<tool_call name=\"...\">{...}</tool_call>`.\n")
	sb.WriteString("Wrap the final answer as `<final_output>...</final_output>`.\n")
	sb.WriteString("End with a confidence value between 0.0 and 1.0 as `<confidence>0.0</confidence>`.\n\n")
	return sb.String()
}

func footer() string {
	return "## Instructions\nComplete the task described above. Follow the playbook and repository context when present.\n"
}
