// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package promptassembler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"open-swarm/internal/filelock"
	"open-swarm/pkg/types"
)

type stubTemplates struct {
	templates map[string]string
}

func (s stubTemplates) Load(agent string) (string, bool) {
	t, ok := s.templates[agent]
	return t, ok
}

func TestAssemble_EmitsFixedHeaderAndFooter(t *testing.T) {
	a := New(stubTemplates{})
	prd := types.PRD{}
	task := types.Task{ID: "t1", Description: "do the thing", Agent: "coder", Phase: 1}

	out := a.Assemble(task, prd, Options{})
	assert.Contains(t, out, "# Task")
	assert.Contains(t, out, "t1")
	assert.Contains(t, out, "do the thing")
	assert.Contains(t, out, "## Instructions")
}

func TestAssemble_DependencyNotFound(t *testing.T) {
	a := New(stubTemplates{})
	task := types.Task{ID: "t2", Dependencies: []string{"missing"}}
	out := a.Assemble(task, types.PRD{}, Options{})
	assert.Contains(t, out, "NOT FOUND")
}

func TestAssemble_DependencyNotDoneEmitsStatus(t *testing.T) {
	a := New(stubTemplates{})
	prd := types.PRD{Tasks: []types.Task{{ID: "dep1", Status: types.TaskRunning}}}
	task := types.Task{ID: "t2", Dependencies: []string{"dep1"}}

	out := a.Assemble(task, prd, Options{})
	assert.Contains(t, out, "status: running")
}

func TestAssemble_DependencyDoneInlinesOutput(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")
	require := assert.New(t)
	require.NoError(os.WriteFile(outPath, []byte("the output"), 0o644))

	a := New(stubTemplates{})
	prd := types.PRD{Tasks: []types.Task{
		{ID: "dep1", Status: types.TaskDone, Output: &types.TaskOutput{Path: outPath}},
	}}
	task := types.Task{ID: "t2", Dependencies: []string{"dep1"}}

	out := a.Assemble(task, prd, Options{})
	assert.Contains(t, out, "the output")
}

func TestAssemble_DependencyDoneMissingFile(t *testing.T) {
	a := New(stubTemplates{})
	prd := types.PRD{Tasks: []types.Task{
		{ID: "dep1", Status: types.TaskDone, Output: &types.TaskOutput{Path: "/nonexistent/path"}},
	}}
	task := types.Task{ID: "t2", Dependencies: []string{"dep1"}}

	out := a.Assemble(task, prd, Options{})
	assert.Contains(t, out, "(No output file found)")
}

func TestAssemble_DependencyReadUsesLockRegistry(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")
	assert.NoError(t, os.WriteFile(outPath, []byte("locked output"), 0o644))

	locks := filelock.NewMemoryRegistry()
	a := New(stubTemplates{})
	prd := types.PRD{Tasks: []types.Task{
		{ID: "dep1", Status: types.TaskDone, Output: &types.TaskOutput{Path: outPath}},
	}}
	task := types.Task{ID: "t2", Dependencies: []string{"dep1"}}

	out := a.Assemble(task, prd, Options{Locks: locks})
	assert.Contains(t, out, "locked output")
	assert.Empty(t, locks.Check(outPath))
}

func TestAssemble_AgenticModeAddsToolCatalogAndReActInstructions(t *testing.T) {
	a := New(stubTemplates{})
	task := types.Task{ID: "t1"}
	out := a.Assemble(task, types.PRD{}, Options{AgenticMode: true})
	assert.Contains(t, out, "Tool Catalog")
	assert.Contains(t, out, "<confidence>")
}

type stubMessageBus struct{ msgs []string }

func (s stubMessageBus) GetMessagesFor(agent string) []string { return s.msgs }

func TestAssemble_IncludesOptionalBlocksWhenPresent(t *testing.T) {
	a := New(stubTemplates{templates: map[string]string{"coder": "You are the coder agent."}})
	task := types.Task{ID: "t1", Agent: "coder"}

	out := a.Assemble(task, types.PRD{}, Options{
		MessageBus:      stubMessageBus{msgs: []string{"hello from peer"}},
		PlaybookContext: map[string]string{"t1": "<playbook_context></playbook_context>"},
	})

	assert.Contains(t, out, "You are the coder agent.")
	assert.Contains(t, out, "hello from peer")
	assert.Contains(t, out, "playbook_context")
}

func TestAssemble_ToleratesAllOptionalInputsMissing(t *testing.T) {
	a := New(stubTemplates{})
	task := types.Task{ID: "t1"}
	assert.NotPanics(t, func() {
		a.Assemble(task, types.PRD{}, Options{})
	})
}
