// Package render defines the contract between the graph core and the
// drawing surface. The core hands the renderer plain node/edge lists and
// highlight requests; the renderer reports pointer events back. Force
// simulation, layout and actual drawing live entirely on the other side
// of this interface.
package render

import (
	"context"

	"github.com/agenthands/ontoscope/internal/core/model"
)

// HighlightBucket classifies why an element is highlighted.
type HighlightBucket string

const (
	HighlightNew             HighlightBucket = "new"
	HighlightModified        HighlightBucket = "modified"
	HighlightCandidateHigh   HighlightBucket = "candidate-high"
	HighlightCandidateMedium HighlightBucket = "candidate-medium"
	HighlightCandidateLow    HighlightBucket = "candidate-low"
)

// CandidateBucket maps a scorer confidence tier to a highlight bucket.
func CandidateBucket(b model.ConfidenceBucket) HighlightBucket {
	switch b {
	case model.BucketHigh:
		return HighlightCandidateHigh
	case model.BucketMedium:
		return HighlightCandidateMedium
	default:
		return HighlightCandidateLow
	}
}

type FrameNode struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"`
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  int     `json:"size"`
	Color string  `json:"color,omitempty"`
}

type FrameEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
	Label  string `json:"label"`
}

// GhostLine is the transient pointer-tracking line shown while dragging
// a connection. It is never a persisted edge.
type GhostLine struct {
	SourceID string  `json:"source_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type Frame struct {
	Generation uint64      `json:"generation"`
	Layout     string      `json:"layout"`
	Nodes      []FrameNode `json:"nodes"`
	Edges      []FrameEdge `json:"edges"`
	Ghost      *GhostLine  `json:"ghost,omitempty"`
}

type Highlight struct {
	NodeID string          `json:"node_id,omitempty"`
	EdgeID string          `json:"edge_id,omitempty"`
	Bucket HighlightBucket `json:"bucket"`
}

type Renderer interface {
	Draw(ctx context.Context, frame Frame) error
	Highlight(ctx context.Context, h Highlight) error
	ClearHighlights(ctx context.Context) error
}

// EventHandler receives pointer events from the drawing surface. Nil
// callbacks are skipped.
type EventHandler struct {
	NodeClicked func(nodeID string)
	DragStart   func(nodeID string, x, y float64)
	DragMove    func(x, y float64)
	DragEnd     func(targetNodeID string) // empty id: released over empty space
	Cancel      func()
}

func nodeColor(kind model.NodeKind) string {
	switch kind {
	case model.NodeKindClass:
		return "#4A90D9"
	case model.NodeKindProperty:
		return "#7CB342"
	case model.NodeKindInstance:
		return "#F4A742"
	case model.NodeKindRelationship:
		return "#AB69C6"
	default:
		return "#9E9E9E"
	}
}

// BuildFrame converts graph contents into the renderer data contract.
// Node size scales with the property count.
func BuildFrame(nodes []model.Node, edges []model.Edge) Frame {
	f := Frame{Layout: "force"}
	for _, n := range nodes {
		f.Nodes = append(f.Nodes, FrameNode{
			ID:    n.ID,
			Kind:  string(n.Kind),
			Label: n.Label,
			X:     n.Position.X,
			Y:     n.Position.Y,
			Size:  1 + len(n.Properties),
			Color: nodeColor(n.Kind),
		})
	}
	for _, e := range edges {
		f.Edges = append(f.Edges, FrameEdge{
			ID:     e.ID,
			Source: e.SourceID,
			Target: e.TargetID,
			Kind:   string(e.Kind),
			Label:  e.Label,
		})
	}
	return f
}
