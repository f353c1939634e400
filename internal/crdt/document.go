// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package crdt implements the collaboration core: vector-clock documents
// with conflict detection, last-writer-wins resolution for non-concurrent
// updates, bounded history, and parallel-universe forking. The per-document
// mutex follows the same guarded-map idiom as internal/filelock's
// MemoryRegistry, scoped down to one lock per document rather than one
// global lock.
package crdt

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"open-swarm/internal/orcherrors"
	"open-swarm/pkg/types"
)

const defaultHistoryLimit = 500

// Session is a live join of a peer into a document.
type Session struct {
	ID     string
	DocID  string
	PeerID string
}

// Store holds every document known to this process, each guarded by its own
// per-document lock.
type Store struct {
	mu           sync.RWMutex
	docs         map[string]*documentState
	historyLimit int
}

type documentState struct {
	mu  sync.Mutex
	doc types.CRDTDocument
	// conflicts is keyed by conflictId, separate from the document's
	// serialized node state.
	conflicts map[string]types.CRDTConflict
}

// New constructs an empty Store. historyLimit <= 0 falls back to the default
// of 500 operations retained per document.
func New(historyLimit int) *Store {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Store{
		docs:         make(map[string]*documentState),
		historyLimit: historyLimit,
	}
}

// CreateDocument creates a fresh document of the given type, with version 1
// and empty nodes/history/peers.
func (s *Store) CreateDocument(docType string) types.CRDTDocument {
	doc := types.CRDTDocument{
		ID:            uuid.NewString(),
		Type:          docType,
		Nodes:         make(map[string]types.CRDTNode),
		History:       nil,
		Peers:         make(map[string]bool),
		DepartedPeers: make(map[string]time.Time),
		Version:       1,
		LastModified:  time.Now(),
	}

	s.mu.Lock()
	s.docs[doc.ID] = &documentState{doc: doc, conflicts: make(map[string]types.CRDTConflict)}
	s.mu.Unlock()
	return doc
}

func (s *Store) get(docID string) (*documentState, error) {
	s.mu.RLock()
	st, ok := s.docs[docID]
	s.mu.RUnlock()
	if !ok {
		return nil, orcherrors.New(orcherrors.ContractViolation, "crdt", docID, "document not found")
	}
	return st, nil
}

// JoinSession adds peerId to docId's peer set (idempotent) and returns a
// live session.
func (s *Store) JoinSession(docID, peerID string) (Session, error) {
	st, err := s.get(docID)
	if err != nil {
		return Session{}, err
	}
	st.mu.Lock()
	st.doc.Peers[peerID] = true
	st.mu.Unlock()

	return Session{ID: uuid.NewString(), DocID: docID, PeerID: peerID}, nil
}

// LeaveSession records peerId's departure timestamp against docId without
// removing it from the peer set, preserving an audit trail of who has ever
// joined.
func (s *Store) LeaveSession(docID, peerID string) error {
	st, err := s.get(docID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.doc.DepartedPeers[peerID] = time.Now()
	return nil
}

// ApplyResult reports what ApplyChange actually did.
type ApplyResult struct {
	Applied  bool
	Conflict *types.CRDTConflict
	Reason   string
}

// ApplyChange applies op to docId. Insert onto an occupied node is rejected
// without mutation. Update with a vector clock concurrent with the node's
// current clock raises a conflict record and leaves the node untouched;
// otherwise it applies last-writer-wins by timestamp. Delete removes the
// node if present. Every accepted op is appended to history (evicting the
// oldest entry once the store's historyLimit is exceeded) and increments
// the document version.
func (s *Store) ApplyChange(docID string, op types.CRDTOperation) (ApplyResult, error) {
	st, err := s.get(docID)
	if err != nil {
		return ApplyResult{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	switch op.Type {
	case types.CRDTInsert:
		if _, exists := st.doc.Nodes[op.TargetNodeID]; exists {
			return ApplyResult{Applied: false, Reason: "node already exists"}, nil
		}
		st.doc.Nodes[op.TargetNodeID] = types.CRDTNode{
			Content:     op.Payload,
			LastWriter:  op.PeerID,
			VectorClock: op.VectorClock.Clone(),
		}

	case types.CRDTUpdate:
		existing, exists := st.doc.Nodes[op.TargetNodeID]
		if !exists {
			return ApplyResult{Applied: false, Reason: "node does not exist"}, nil
		}
		if existing.VectorClock.ConcurrentWith(op.VectorClock) {
			conflict := types.CRDTConflict{
				DocID:      docID,
				ConflictID: uuid.NewString(),
				NodeID:     op.TargetNodeID,
				Operations: []types.CRDTOperation{op},
			}
			st.conflicts[conflict.ConflictID] = conflict
			s.appendHistoryLocked(st, op)
			return ApplyResult{Applied: false, Conflict: &conflict, Reason: "concurrent update"}, nil
		}
		st.doc.Nodes[op.TargetNodeID] = types.CRDTNode{
			Content:     op.Payload,
			LastWriter:  op.PeerID,
			VectorClock: op.VectorClock.Clone(),
		}

	case types.CRDTDelete:
		if _, exists := st.doc.Nodes[op.TargetNodeID]; !exists {
			return ApplyResult{Applied: false, Reason: "node does not exist"}, nil
		}
		delete(st.doc.Nodes, op.TargetNodeID)

	default:
		return ApplyResult{}, orcherrors.New(orcherrors.ContractViolation, "crdt", docID, "unknown operation type")
	}

	s.appendHistoryLocked(st, op)
	st.doc.Version++
	st.doc.LastModified = time.Now()
	return ApplyResult{Applied: true}, nil
}

func (s *Store) appendHistoryLocked(st *documentState, op types.CRDTOperation) {
	st.doc.History = append(st.doc.History, op)
	if len(st.doc.History) > s.historyLimit {
		evict := len(st.doc.History) - s.historyLimit
		st.doc.History = st.doc.History[evict:]
		st.doc.HistoryEvicted += int64(evict)
	}
}

// GetConflicts returns all open conflict records for docId.
func (s *Store) GetConflicts(docID string) ([]types.CRDTConflict, error) {
	st, err := s.get(docID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]types.CRDTConflict, 0, len(st.conflicts))
	for _, c := range st.conflicts {
		out = append(out, c)
	}
	return out, nil
}

// ResolveConflict removes conflictId's marker and sets the node's content to
// resolution.
func (s *Store) ResolveConflict(docID, conflictID, resolution string) error {
	st, err := s.get(docID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	conflict, ok := st.conflicts[conflictID]
	if !ok {
		return orcherrors.New(orcherrors.ContractViolation, "crdt", conflictID, "conflict not found")
	}

	node := st.doc.Nodes[conflict.NodeID]
	node.Content = resolution
	st.doc.Nodes[conflict.NodeID] = node
	delete(st.conflicts, conflictID)
	st.doc.Version++
	st.doc.LastModified = time.Now()
	return nil
}

// ForkParallelUniverse deep-copies docId's nodes, history, and peers into a
// fresh document; subsequent changes to either document are isolated.
func (s *Store) ForkParallelUniverse(docID, label string) (types.CRDTDocument, error) {
	st, err := s.get(docID)
	if err != nil {
		return types.CRDTDocument{}, err
	}

	st.mu.Lock()
	forked := types.CRDTDocument{
		ID:            uuid.NewString(),
		Type:          st.doc.Type,
		Nodes:         make(map[string]types.CRDTNode, len(st.doc.Nodes)),
		History:       append([]types.CRDTOperation(nil), st.doc.History...),
		Peers:         make(map[string]bool, len(st.doc.Peers)),
		DepartedPeers: make(map[string]time.Time, len(st.doc.DepartedPeers)),
		Version:       st.doc.Version,
		LastModified:  time.Now(),
	}
	for id, n := range st.doc.Nodes {
		forked.Nodes[id] = types.CRDTNode{Content: n.Content, LastWriter: n.LastWriter, VectorClock: n.VectorClock.Clone()}
	}
	for p := range st.doc.Peers {
		forked.Peers[p] = true
	}
	for p, t := range st.doc.DepartedPeers {
		forked.DepartedPeers[p] = t
	}
	st.mu.Unlock()

	if label != "" {
		forked.Type = st.doc.Type + ":" + label
	}

	newConflicts := make(map[string]types.CRDTConflict)
	s.mu.Lock()
	s.docs[forked.ID] = &documentState{doc: forked, conflicts: newConflicts}
	s.mu.Unlock()
	return forked, nil
}

// GetDocument returns a snapshot of docId's current state.
func (s *Store) GetDocument(docID string) (types.CRDTDocument, error) {
	st, err := s.get(docID)
	if err != nil {
		return types.CRDTDocument{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.doc, nil
}
