package graph

import (
	"encoding/json"
	"fmt"

	"github.com/agenthands/ontoscope/internal/core/model"
)

// Snapshot produces a structural deep copy of the graph. The primary
// strategy is a field-by-field clone; if that panics (it should not, but
// an unrecordable mutation cannot be undone safely, so we keep a second
// strategy) a JSON round trip is attempted before giving up with
// ErrCloneFailure. Callers must abort their mutation on error.
func (s *Store) Snapshot() (snap model.GraphSnapshot, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	defer func() {
		if r := recover(); r != nil {
			snap, err = s.snapshotViaJSON()
		}
	}()
	snap = model.GraphSnapshot{
		Nodes: make(map[string]model.Node, len(s.nodes)),
		Order: make([]string, len(s.order)),
		Edges: make([]model.Edge, 0, len(s.edges)),
	}
	copy(snap.Order, s.order)
	for id, n := range s.nodes {
		snap.Nodes[id] = n.Clone()
	}
	for _, e := range s.edges {
		snap.Edges = append(snap.Edges, e.Clone())
	}
	return snap, nil
}

func (s *Store) snapshotViaJSON() (model.GraphSnapshot, error) {
	raw := model.GraphSnapshot{
		Nodes: make(map[string]model.Node, len(s.nodes)),
		Order: s.order,
		Edges: make([]model.Edge, 0, len(s.edges)),
	}
	for id, n := range s.nodes {
		raw.Nodes[id] = *n
	}
	for _, e := range s.edges {
		raw.Edges = append(raw.Edges, *e)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return model.GraphSnapshot{}, fmt.Errorf("%w: %v", model.ErrCloneFailure, err)
	}
	var snap model.GraphSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.GraphSnapshot{}, fmt.Errorf("%w: %v", model.ErrCloneFailure, err)
	}
	return snap, nil
}

// Restore replaces the live graph with the snapshot's contents. The
// snapshot itself stays untouched, so it can be restored again.
func (s *Store) Restore(snap model.GraphSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = make(map[string]*model.Node, len(snap.Nodes))
	s.order = make([]string, len(snap.Order))
	copy(s.order, snap.Order)
	for id, n := range snap.Nodes {
		c := n.Clone()
		s.nodes[id] = &c
	}
	s.edges = make([]*model.Edge, 0, len(snap.Edges))
	for _, e := range snap.Edges {
		c := e.Clone()
		s.edges = append(s.edges, &c)
	}
}
