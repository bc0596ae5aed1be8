package model

import "sync"

type SuggestionKind string

const (
	SuggestionOntologyClass SuggestionKind = "ontology_class"
	SuggestionProperty      SuggestionKind = "property"
	SuggestionRelationship  SuggestionKind = "relationship"
	SuggestionEnhancement   SuggestionKind = "enhancement"
)

// Suggestion is an AI-proposed ontology change. Structured fields take
// precedence when set; the free-text Implementation is the fallback the
// applier parses when a generator only produced prose.
type Suggestion struct {
	ID             string         `json:"id"`
	Kind           SuggestionKind `json:"type"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Confidence     float64        `json:"confidence,omitempty"`
	Implementation string         `json:"implementation,omitempty"`
	Rationale      string         `json:"rationale,omitempty"`
	Tags           []string       `json:"tags,omitempty"`

	// Structured implementation details.
	ClassName        string      `json:"class_name,omitempty"`
	Properties       []string    `json:"properties,omitempty"`
	PropertyName     string      `json:"property_name,omitempty"`
	SourceNode       string      `json:"source_node,omitempty"`
	TargetNode       string      `json:"target_node,omitempty"`
	RelationshipName string      `json:"relationship_name,omitempty"`
	Cardinality      Cardinality `json:"cardinality,omitempty"`
}

// AppliedSet tracks which suggestion ids have already been applied.
// A suggestion leaves the set again when its application is undone.
// Safe for concurrent use.
type AppliedSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewAppliedSet() *AppliedSet {
	return &AppliedSet{ids: make(map[string]struct{})}
}

func (s *AppliedSet) Add(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

func (s *AppliedSet) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *AppliedSet) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

func (s *AppliedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
