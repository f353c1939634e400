// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package playbook implements the per-agent rule store: a cached playbook
// per agent, atomic delta application with version increments, and a
// relevance-ranked view of active rules for prompt assembly. The
// mutex-guarded in-memory map mirrors the teacher's filelock.MemoryRegistry
// idiom; persistence below it follows the schema envelope in
// internal/schema.
package playbook

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"open-swarm/pkg/types"
)

const maxActiveRules = 10

// Store is the single-writer-per-agent, mutex-guarded playbook registry.
type Store struct {
	mu        sync.RWMutex
	playbooks map[string]*types.Playbook
	persist   Persister
}

// Persister writes and loads a single agent's playbook. A nil Persister
// disables persistence entirely.
type Persister interface {
	Save(playbook types.Playbook) error
	Load(agent string) (*types.Playbook, error)
}

// New constructs a Store. persist may be nil to run purely in-memory.
func New(persist Persister) *Store {
	return &Store{
		playbooks: make(map[string]*types.Playbook),
		persist:   persist,
	}
}

// GetPlaybook returns the cached playbook for agent, loading it from the
// persister on first access (if configured) and otherwise creating an empty
// version-0 playbook. Persistence load failures never crash the process:
// they are treated as a cache miss and a fresh playbook is created.
func (s *Store) GetPlaybook(agent string) *types.Playbook {
	s.mu.RLock()
	if pb, ok := s.playbooks[agent]; ok {
		s.mu.RUnlock()
		return pb
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if pb, ok := s.playbooks[agent]; ok {
		return pb
	}

	var pb *types.Playbook
	if s.persist != nil {
		if loaded, err := s.persist.Load(agent); err == nil && loaded != nil {
			pb = loaded
		}
	}
	if pb == nil {
		pb = &types.Playbook{AgentName: agent, ID: uuid.NewString(), Version: 0, LastUpdated: time.Now()}
	}
	s.playbooks[agent] = pb
	return pb
}

// UpdatePlaybook applies deltas atomically to agent's playbook and
// increments version by exactly one, regardless of how many deltas were
// applied. Persistence failures are logged by the caller's persister and
// never abort the update.
func (s *Store) UpdatePlaybook(agent string, deltas []types.PlaybookDelta) *types.Playbook {
	s.mu.Lock()
	defer s.mu.Unlock()

	pb := s.getLocked(agent)
	for _, delta := range deltas {
		switch delta.Action {
		case types.DeltaAdd:
			s.applyAdd(pb, delta)
		case types.DeltaUpdate:
			s.applyUpdate(pb, delta)
		case types.DeltaRemove:
			s.applyRemove(pb, delta)
		}
	}
	pb.Version++
	pb.LastUpdated = time.Now()

	if s.persist != nil {
		_ = s.persist.Save(*pb)
	}
	return pb
}

func (s *Store) getLocked(agent string) *types.Playbook {
	if pb, ok := s.playbooks[agent]; ok {
		return pb
	}
	pb := &types.Playbook{AgentName: agent, ID: uuid.NewString(), Version: 0, LastUpdated: time.Now()}
	s.playbooks[agent] = pb
	return pb
}

func (s *Store) applyAdd(pb *types.Playbook, delta types.PlaybookDelta) {
	rule := types.PlaybookRule{
		ID:                uuid.NewString(),
		Content:           delta.Content,
		Type:              delta.Type,
		Confidence:        delta.Confidence,
		Source:            types.SourceLearned,
		IsGlobalCandidate: delta.IsGlobalCandidate,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	pb.Rules = append(pb.Rules, rule)
}

func (s *Store) applyUpdate(pb *types.Playbook, delta types.PlaybookDelta) {
	for i := range pb.Rules {
		if pb.Rules[i].ID != delta.RuleID {
			continue
		}
		r := &pb.Rules[i]
		if delta.Content != "" {
			r.Content = delta.Content
		}
		r.HelpfulCount += delta.HelpfulDelta
		r.HarmfulCount += delta.HarmfulDelta
		r.UpdatedAt = time.Now()
		return
	}
}

func (s *Store) applyRemove(pb *types.Playbook, delta types.PlaybookDelta) {
	kept := pb.Rules[:0]
	for _, r := range pb.Rules {
		if r.ID != delta.RuleID {
			kept = append(kept, r)
		}
	}
	pb.Rules = kept
}

// GetActiveRules returns up to limit rules for agent ordered by relevance
// against taskContext: a weighted sum of keyword overlap, tag overlap,
// confidence, and empirical success rate. Ties break by UpdatedAt
// descending.
func (s *Store) GetActiveRules(agent, taskContext string, limit int) []types.PlaybookRule {
	if limit <= 0 || limit > maxActiveRules {
		limit = maxActiveRules
	}
	pb := s.GetPlaybook(agent)

	s.mu.RLock()
	rules := make([]types.PlaybookRule, len(pb.Rules))
	copy(rules, pb.Rules)
	s.mu.RUnlock()

	taskTokens := tokenize(taskContext)
	type scored struct {
		rule  types.PlaybookRule
		score float64
	}
	scoredRules := make([]scored, 0, len(rules))
	for _, r := range rules {
		scoredRules = append(scoredRules, scored{rule: r, score: relevanceScore(r, taskTokens)})
	}

	sort.SliceStable(scoredRules, func(i, j int) bool {
		if scoredRules[i].score != scoredRules[j].score {
			return scoredRules[i].score > scoredRules[j].score
		}
		return scoredRules[i].rule.UpdatedAt.After(scoredRules[j].rule.UpdatedAt)
	})

	if len(scoredRules) > limit {
		scoredRules = scoredRules[:limit]
	}
	out := make([]types.PlaybookRule, len(scoredRules))
	for i, sr := range scoredRules {
		out[i] = sr.rule
	}
	return out
}

func relevanceScore(r types.PlaybookRule, taskTokens map[string]bool) float64 {
	contentTokens := tokenize(r.Content)
	keywordOverlap := jaccard(contentTokens, taskTokens)

	tagTokens := make(map[string]bool, len(r.Tags))
	for _, tag := range r.Tags {
		tagTokens[strings.ToLower(tag)] = true
	}
	tagOverlap := jaccard(tagTokens, taskTokens)

	return keywordOverlap*0.35 + tagOverlap*0.15 + r.Confidence*0.25 + r.SuccessRate()*0.25
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		tokens[f] = true
	}
	return tokens
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// IncrementApplied increments appliedCount for each rule in ruleIDs.
// Unknown ids are ignored; calls are idempotent per invocation (each call
// increments by exactly one per named rule).
func (s *Store) IncrementApplied(agent string, ruleIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pb := s.getLocked(agent)
	ids := toSet(ruleIDs)
	for i := range pb.Rules {
		if ids[pb.Rules[i].ID] {
			pb.Rules[i].AppliedCount++
		}
	}
}

// RecordSuccess increments successCount for each rule in ruleIDs. Unknown
// ids are ignored.
func (s *Store) RecordSuccess(agent string, ruleIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pb := s.getLocked(agent)
	ids := toSet(ruleIDs)
	for i := range pb.Rules {
		if ids[pb.Rules[i].ID] {
			pb.Rules[i].SuccessCount++
		}
	}
}

// RecordTaskApplied increments agent's TotalTasksApplied counter.
func (s *Store) RecordTaskApplied(agent string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pb := s.getLocked(agent)
	pb.TotalTasksApplied++
}

// GetGlobalCandidates returns rules eligible for promotion to the global
// playbook: source != global, confidence >= 0.85, appliedCount >= 5, and an
// empirical success rate >= 0.6.
func (s *Store) GetGlobalCandidates(agent string) []types.PlaybookRule {
	pb := s.GetPlaybook(agent)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []types.PlaybookRule
	for _, r := range pb.Rules {
		if r.Source == types.SourceGlobal {
			continue
		}
		if r.Confidence < 0.85 || r.AppliedCount < 5 {
			continue
		}
		if float64(r.SuccessCount)/float64(r.AppliedCount) < 0.6 {
			continue
		}
		candidates = append(candidates, r)
	}
	return candidates
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
