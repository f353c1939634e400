// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package memory

import (
	"time"

	"github.com/google/uuid"

	"open-swarm/internal/orcherrors"
	"open-swarm/internal/schema"
	"open-swarm/pkg/types"
)

const fragmentSchemaVersion = 1

// Service is the Hindsight Memory entry point: namespace-scoped reads and
// writes backed by a MemoryStorage adapter, plus serialization and bulk
// export/import for persistence.
type Service struct {
	storage MemoryStorage
}

// NewService wraps storage as the Hindsight Memory entry point.
func NewService(storage MemoryStorage) *Service {
	return &Service{storage: storage}
}

// WriteInput carries the caller-supplied fields for a new or updated
// fragment; ID, CreatedAt, and Namespace are filled in by Write when absent.
type WriteInput struct {
	ID         string
	Content    string
	Type       types.FragmentType
	ProjectID  string
	AgentID    string
	Embedding  []float64
	Relevance  float64
	Confidence float64
	Tags       []string
	IsPinned   bool
	ExpiresAt  *time.Time
	Provenance types.Provenance
}

// Write stores a fragment for input, minting an ID and namespace if needed.
func (s *Service) Write(input WriteInput) types.MemoryFragment {
	now := time.Now()
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}

	relevance := input.Relevance
	if relevance == 0 {
		relevance = 1.0
	}

	existingCreatedAt := now
	if existing, ok := s.storage.Read(id); ok {
		existingCreatedAt = existing.CreatedAt
	}

	frag := types.MemoryFragment{
		ID:             id,
		Content:        input.Content,
		Type:           input.Type,
		Namespace:      types.Namespace(input.ProjectID, input.AgentID),
		AgentID:        input.AgentID,
		ProjectID:      input.ProjectID,
		Embedding:      input.Embedding,
		Relevance:      relevance,
		Confidence:     input.Confidence,
		Tags:           input.Tags,
		IsPinned:       input.IsPinned,
		ExpiresAt:      input.ExpiresAt,
		Provenance:     input.Provenance,
		CreatedAt:      existingCreatedAt,
		UpdatedAt:      now,
		LastAccessedAt: now,
	}
	_ = s.storage.Write(frag)
	return frag
}

// BulkWrite applies Write to every element of inputs, returning the stored
// fragments in the same order.
func (s *Service) BulkWrite(inputs []WriteInput) []types.MemoryFragment {
	out := make([]types.MemoryFragment, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, s.Write(in))
	}
	return out
}

// Read fetches a fragment by id and bumps its access bookkeeping.
func (s *Service) Read(id string) (*types.MemoryFragment, bool) {
	frag, ok := s.storage.Read(id)
	if !ok {
		return nil, false
	}
	frag.AccessCount++
	frag.LastAccessedAt = time.Now()
	_ = s.storage.Write(*frag)
	return frag, true
}

// BulkRead fetches every present fragment among ids, bumping access
// bookkeeping for each.
func (s *Service) BulkRead(ids []string) []types.MemoryFragment {
	out := make([]types.MemoryFragment, 0, len(ids))
	for _, id := range ids {
		if frag, ok := s.Read(id); ok {
			out = append(out, *frag)
		}
	}
	return out
}

// Delete removes the fragment with id.
func (s *Service) Delete(id string) bool {
	return s.storage.Delete(id)
}

// Query returns fragments matching filter, scoped to namespace.
func (s *Service) Query(projectID, agentID string, filter Filter) []types.MemoryFragment {
	filter.Namespace = types.Namespace(projectID, agentID)
	return s.storage.Query(filter)
}

// SearchByVector ranks fragments in the projectID:agentID namespace against
// query, returning the topK highest-ranked results at or above threshold and
// bumping access bookkeeping for every returned fragment.
func (s *Service) SearchByVector(projectID, agentID string, query []float64, topK int, threshold *float64) ([]ScoredFragment, error) {
	ns := types.Namespace(projectID, agentID)
	results, err := s.storage.SearchByVector(query, topK, &Filter{Namespace: ns}, threshold)
	if err != nil {
		return nil, err
	}
	for i := range results {
		frag := results[i].Fragment
		frag.AccessCount++
		frag.LastAccessedAt = time.Now()
		_ = s.storage.Write(frag)
		results[i].Fragment = frag
	}
	return results, nil
}

// fragmentEnvelope is the serialized-on-disk shape for a single fragment.
type fragmentEnvelope struct {
	Fragment types.MemoryFragment `json:"fragment"`
}

// SerializeFragment encodes fragment into a checksummed schema envelope.
func SerializeFragment(fragment types.MemoryFragment) ([]byte, error) {
	return schema.Marshal(fragmentSchemaVersion, fragmentEnvelope{Fragment: fragment})
}

// DeserializeFragment decodes a fragment previously produced by
// SerializeFragment, rejecting schema-version mismatches and checksum
// tampering as a PersistenceFault.
func DeserializeFragment(data []byte) (types.MemoryFragment, error) {
	var env fragmentEnvelope
	if err := schema.Unmarshal(data, fragmentSchemaVersion, &env); err != nil {
		return types.MemoryFragment{}, orcherrors.Wrap(orcherrors.PersistenceFault, "memory", "", "deserialize fragment", err)
	}
	return env.Fragment, nil
}

// exportEnvelope is the serialized-on-disk shape for a full export.
type exportEnvelope struct {
	Fragments []types.MemoryFragment `json:"fragments"`
}

// ExportAll serializes every fragment in the backing storage into a single
// checksummed envelope.
func (s *Service) ExportAll() ([]byte, error) {
	return schema.Marshal(fragmentSchemaVersion, exportEnvelope{Fragments: s.storage.ExportAll()})
}

// ImportAll replaces the backing storage's contents with the fragments
// encoded in data, previously produced by ExportAll.
func (s *Service) ImportAll(data []byte) error {
	var env exportEnvelope
	if err := schema.Unmarshal(data, fragmentSchemaVersion, &env); err != nil {
		return orcherrors.Wrap(orcherrors.PersistenceFault, "memory", "", "import fragments", err)
	}
	return s.storage.ImportAll(env.Fragments)
}
