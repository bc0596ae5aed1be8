package model

import "time"

type MutationKind string

const (
	MutationLoadGraph       MutationKind = "load_graph"
	MutationAddNode         MutationKind = "add_node"
	MutationEditNode        MutationKind = "edit_node"
	MutationDeleteNode      MutationKind = "delete_node"
	MutationAddEdge         MutationKind = "add_edge"
	MutationDeleteEdge      MutationKind = "delete_edge"
	MutationConnect         MutationKind = "connect"
	MutationApplySuggestion MutationKind = "apply_suggestion"
)

// GraphSnapshot is an immutable deep copy of a graph taken before and
// after each mutation. It shares no slices or maps with the live graph.
type GraphSnapshot struct {
	Nodes map[string]Node `json:"nodes"`
	Order []string        `json:"order"`
	Edges []Edge          `json:"edges"`
}

type ChangeRecord struct {
	ID           int64         `json:"id"`
	Kind         MutationKind  `json:"kind"`
	Timestamp    time.Time     `json:"timestamp"`
	Before       GraphSnapshot `json:"-"`
	After        GraphSnapshot `json:"-"`
	SuggestionID string        `json:"suggestion_id,omitempty"`
}
