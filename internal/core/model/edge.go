package model

import "strings"

type EdgeKind string

const (
	EdgeKindRelationship EdgeKind = "relationship"
	EdgeKindProperty     EdgeKind = "property"
	EdgeKindInheritance  EdgeKind = "inheritance"
	EdgeKindComposition  EdgeKind = "composition"
	EdgeKindAggregation  EdgeKind = "aggregation"
)

type Cardinality string

const (
	OneToOne   Cardinality = "one-to-one"
	OneToMany  Cardinality = "one-to-many"
	ManyToOne  Cardinality = "many-to-one"
	ManyToMany Cardinality = "many-to-many"

	// Attributed marks a relationship that carries its own attributes
	// (e.g. an order line with a quantity).
	Attributed Cardinality = "attributed"
)

// ParseCardinality normalizes the short forms used by external snapshots
// ("1:N", "N:1", "N:M", "1:1") as well as the canonical long forms.
func ParseCardinality(s string) Cardinality {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1:1", "one-to-one":
		return OneToOne
	case "1:n", "1:m", "one-to-many":
		return OneToMany
	case "n:1", "m:1", "many-to-one":
		return ManyToOne
	case "n:m", "m:n", "many-to-many":
		return ManyToMany
	case "attributed":
		return Attributed
	default:
		return OneToMany
	}
}

type Edge struct {
	ID          string      `json:"id"`
	SourceID    string      `json:"source"`
	TargetID    string      `json:"target"`
	Kind        EdgeKind    `json:"kind"`
	Label       string      `json:"label"`
	Cardinality Cardinality `json:"cardinality,omitempty"`
	Description string      `json:"description,omitempty"`
	Properties  []string    `json:"properties,omitempty"`

	// Transient editor flag, not persisted.
	IsNew      bool `json:"is_new,omitempty"`
	IsModified bool `json:"is_modified,omitempty"`
}

// Clone returns a deep copy of the edge.
func (e Edge) Clone() Edge {
	c := e
	if e.Properties != nil {
		c.Properties = make([]string, len(e.Properties))
		copy(c.Properties, e.Properties)
	}
	return c
}
