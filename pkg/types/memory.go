// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package types

import "time"

// FragmentType classifies a MemoryFragment.
type FragmentType string

const (
	FragmentEpisodic  FragmentType = "episodic"
	FragmentProcedural FragmentType = "procedural"
	FragmentSemantic  FragmentType = "semantic"
)

// Provenance records where a fragment came from.
type Provenance struct {
	AgentID string            `json:"agentId"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// MemoryFragment is a unit of Hindsight memory.
type MemoryFragment struct {
	ID             string       `json:"id"`
	Content        string       `json:"content"`
	Type           FragmentType `json:"type"`
	Namespace      string       `json:"namespace"`
	AgentID        string       `json:"agentId"`
	ProjectID      string       `json:"projectId"`
	Embedding      []float64    `json:"embedding"`
	Relevance      float64      `json:"relevance"`
	Confidence     float64      `json:"confidence"`
	AccessCount    int          `json:"accessCount"`
	IsArchived     bool         `json:"isArchived"`
	IsPinned       bool         `json:"isPinned"`
	Tags           []string     `json:"tags,omitempty"`
	ExpiresAt      *time.Time   `json:"expiresAt,omitempty"`
	Provenance     Provenance   `json:"provenance"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	LastAccessedAt time.Time    `json:"lastAccessedAt"`
}

// Namespace builds the "projectId:agentId" namespace key used throughout
// Hindsight Memory queries.
func Namespace(projectID, agentID string) string {
	return projectID + ":" + agentID
}
