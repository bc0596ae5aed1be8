package model

type NodeKind string

const (
	NodeKindClass        NodeKind = "class"
	NodeKindProperty     NodeKind = "property"
	NodeKindInstance     NodeKind = "instance"
	NodeKindRelationship NodeKind = "relationship"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Node struct {
	ID          string   `json:"id"`
	Kind        NodeKind `json:"kind"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Properties  []string `json:"properties"`
	Position    Position `json:"position"`

	// Transient editor flags, not persisted.
	IsNew      bool `json:"is_new,omitempty"`
	IsModified bool `json:"is_modified,omitempty"`
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	c := n
	if n.Properties != nil {
		c.Properties = make([]string, len(n.Properties))
		copy(c.Properties, n.Properties)
	}
	return c
}
