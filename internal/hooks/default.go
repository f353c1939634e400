// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package hooks

import "sync"

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns the process-wide default Registry, constructing it on
// first use. Production code should prefer explicit construction via New
// and pass the Registry through the dependency graph; Default exists for
// test scaffolding that needs a process-wide seam.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = New(nil)
	}
	return defaultRegistry
}

// ResetDefault discards the process-wide default Registry so the next call
// to Default starts from a clean slate. Intended for test teardown only.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = nil
}
