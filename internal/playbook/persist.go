// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package playbook

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"open-swarm/internal/schema"
	"open-swarm/pkg/types"
)

const playbookSchemaVersion = 1

// FilePersister writes each agent's playbook as a schema-enveloped JSON
// document under dir, one file per agent.
type FilePersister struct {
	dir    string
	logger *slog.Logger
}

// NewFilePersister constructs a FilePersister rooted at dir. The directory
// is created lazily on first Save.
func NewFilePersister(dir string, logger *slog.Logger) *FilePersister {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilePersister{dir: dir, logger: logger}
}

func (p *FilePersister) pathFor(agent string) string {
	return filepath.Join(p.dir, fmt.Sprintf("%s.json", agent))
}

// Save writes pb's envelope to disk. Failures are logged and returned;
// Store.UpdatePlaybook discards the error, so a failed save never aborts
// the build.
func (p *FilePersister) Save(pb types.Playbook) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		p.logger.Warn("playbook persistence disabled: mkdir failed", "dir", p.dir, "error", err)
		return err
	}
	data, err := schema.Marshal(playbookSchemaVersion, pb)
	if err != nil {
		p.logger.Warn("playbook marshal failed", "agent", pb.AgentName, "error", err)
		return err
	}
	if err := os.WriteFile(p.pathFor(pb.AgentName), data, 0o644); err != nil {
		p.logger.Warn("playbook write failed", "agent", pb.AgentName, "error", err)
		return err
	}
	return nil
}

// Load reads agent's envelope from disk. Any read, schema-version, or
// checksum failure returns (nil, nil): load errors degrade to a cache miss
// rather than crashing the process, per the persistence-fault policy.
func (p *FilePersister) Load(agent string) (*types.Playbook, error) {
	data, err := os.ReadFile(p.pathFor(agent))
	if err != nil {
		return nil, nil
	}
	var pb types.Playbook
	if err := schema.Unmarshal(data, playbookSchemaVersion, &pb); err != nil {
		p.logger.Warn("playbook load rejected", "agent", agent, "error", err)
		return nil, nil
	}
	return &pb, nil
}
