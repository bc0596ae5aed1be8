package model

import "time"

type DomainStatus string

const (
	DomainDraft      DomainStatus = "draft"
	DomainActive     DomainStatus = "active"
	DomainProduction DomainStatus = "production"
	DomainArchived   DomainStatus = "archived"
)

// Domain is a named ontology scope. Each domain owns exactly one graph;
// switching the active domain swaps the whole graph, never merges.
type Domain struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Status      DomainStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type OntologyStats struct {
	TotalDomains       int `json:"total_domains"`
	TotalEntities      int `json:"total_entities"`
	TotalRelationships int `json:"total_relationships"`
	TotalProperties    int `json:"total_properties"`
}
