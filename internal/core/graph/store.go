package graph

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/agenthands/ontoscope/internal/core/model"
)

// Store owns the in-memory graph of one domain. Every mutator maintains
// the referential invariant: each edge's endpoints exist in the node map.
// All methods are safe for concurrent use; callers that need a mutation
// paired atomically with its ledger record serialize at the workspace
// level on top of this.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]*model.Node
	order []string // node ids in insertion order
	edges []*model.Edge

	UUIDGenerator func() string
}

func NewStore() *Store {
	return &Store{
		nodes:         make(map[string]*model.Node),
		UUIDGenerator: func() string { return uuid.New().String() },
	}
}

func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (model.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return model.Node{}, false
	}
	return n.Clone(), true
}

// NodeByLabel returns the first node whose label matches case-insensitively.
func (s *Store) NodeByLabel(label string) (model.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if strings.EqualFold(s.nodes[id].Label, label) {
			return s.nodes[id].Clone(), true
		}
	}
	return model.Node{}, false
}

// Nodes returns copies of all nodes in insertion order.
func (s *Store) Nodes() []model.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// Edges returns copies of all edges.
func (s *Store) Edges() []model.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, e.Clone())
	}
	return out
}

func (s *Store) Edge(id string) (model.Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.edges {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return model.Edge{}, false
}

// AddNode inserts a node, synthesizing an id when absent. Label
// uniqueness is deliberately not enforced here; only suggestion
// application and EditNode reject duplicates.
func (s *Store) AddNode(n model.Node) (model.Node, error) {
	if n.Label == "" {
		return model.Node{}, fmt.Errorf("add node: empty label")
	}
	if n.ID == "" {
		n.ID = s.UUIDGenerator()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[n.ID]; exists {
		return model.Node{}, fmt.Errorf("add node %s: id already present", n.ID)
	}
	if n.Kind == "" {
		n.Kind = model.NodeKindClass
	}
	if n.Properties == nil {
		n.Properties = []string{}
	}
	c := n.Clone()
	s.nodes[c.ID] = &c
	s.order = append(s.order, c.ID)
	return c, nil
}

// NodePatch carries optional field updates for EditNode.
type NodePatch struct {
	Label       *string         `json:"label,omitempty"`
	Kind        *model.NodeKind `json:"kind,omitempty"`
	Description *string         `json:"description,omitempty"`
	Properties  *[]string       `json:"properties,omitempty"`
	Position    *model.Position `json:"position,omitempty"`
}

// EditNode applies a patch. A label change that collides with another
// node's label (case-insensitive) is rejected before anything mutates.
func (s *Store) EditNode(id string, patch NodePatch) (model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return model.Node{}, fmt.Errorf("edit node %s: %w", id, model.ErrNodeNotFound)
	}
	if patch.Label != nil {
		for otherID, other := range s.nodes {
			if otherID != id && strings.EqualFold(other.Label, *patch.Label) {
				return model.Node{}, fmt.Errorf("edit node %s: label %q: %w", id, *patch.Label, model.ErrDuplicateNodeName)
			}
		}
		n.Label = *patch.Label
	}
	if patch.Kind != nil {
		n.Kind = *patch.Kind
	}
	if patch.Description != nil {
		n.Description = *patch.Description
	}
	if patch.Properties != nil {
		props := make([]string, len(*patch.Properties))
		copy(props, *patch.Properties)
		n.Properties = props
	}
	if patch.Position != nil {
		n.Position = *patch.Position
	}
	n.IsModified = true
	return n.Clone(), nil
}

// DeleteNode removes the node and cascades to every incident edge.
func (s *Store) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("delete node %s: %w", id, model.ErrNodeNotFound)
	}
	delete(s.nodes, id)
	for i, nid := range s.order {
		if nid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.SourceID != id && e.TargetID != id {
			kept = append(kept, e)
		}
	}
	s.edges = kept
	return nil
}

// AddEdge inserts an edge. Self-loops are rejected. An edge duplicating
// an existing (source, target, label) triple is silently dropped: the
// second return is false and the error nil. That is the de-duplication
// policy, not a validation failure.
func (s *Store) AddEdge(e model.Edge) (model.Edge, bool, error) {
	if e.SourceID == e.TargetID {
		return model.Edge{}, false, fmt.Errorf("add edge %s->%s: %w", e.SourceID, e.TargetID, model.ErrSelfLoop)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[e.SourceID]; !ok {
		return model.Edge{}, false, fmt.Errorf("add edge: source %s: %w", e.SourceID, model.ErrNodeNotFound)
	}
	if _, ok := s.nodes[e.TargetID]; !ok {
		return model.Edge{}, false, fmt.Errorf("add edge: target %s: %w", e.TargetID, model.ErrNodeNotFound)
	}
	// De-duplication matches the exact (source, target, label) triple;
	// labels that differ only in case are distinct relationships.
	for _, existing := range s.edges {
		if existing.SourceID == e.SourceID && existing.TargetID == e.TargetID &&
			existing.Label == e.Label {
			return existing.Clone(), false, nil
		}
	}
	if e.ID == "" {
		e.ID = s.UUIDGenerator()
	}
	if e.Kind == "" {
		e.Kind = model.EdgeKindRelationship
	}
	if e.Cardinality == "" {
		e.Cardinality = model.OneToMany
	}
	c := e.Clone()
	s.edges = append(s.edges, &c)
	return c, true, nil
}

func (s *Store) DeleteEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.edges {
		if e.ID == id {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete edge %s: %w", id, model.ErrEdgeNotFound)
}

// SetEdgeProperties overwrites an edge's property list and flags it
// modified. Used by the enhancement suggestion path.
func (s *Store) SetEdgeProperties(id string, props []string) (model.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.edges {
		if e.ID == id {
			cp := make([]string, len(props))
			copy(cp, props)
			e.Properties = cp
			e.IsModified = true
			return e.Clone(), nil
		}
	}
	return model.Edge{}, fmt.Errorf("set edge properties %s: %w", id, model.ErrEdgeNotFound)
}

// MaxX returns the largest node x coordinate, 0 for an empty graph.
func (s *Store) MaxX() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max float64
	for _, n := range s.nodes {
		if n.Position.X > max {
			max = n.Position.X
		}
	}
	return max
}

// PropertyCount sums the property list lengths across all nodes.
func (s *Store) PropertyCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, n := range s.nodes {
		total += len(n.Properties)
	}
	return total
}
