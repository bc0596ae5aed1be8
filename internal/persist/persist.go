// Package persist is the backend persistence boundary. Mutations are
// local-first: the in-memory graph commits before any of these calls run,
// and a persistence failure is reported but never rolls the local
// mutation back.
package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthands/ontoscope/internal/core/model"
	"github.com/agenthands/ontoscope/internal/driver"
)

type EntityRecord struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	Description   string   `json:"description"`
	Properties    []string `json:"properties"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	IsAISuggested bool     `json:"is_ai_suggested"`
}

type RelationshipRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	Description    string `json:"description"`
	SourceEntityID string `json:"source_entity_id"`
	TargetEntityID string `json:"target_entity_id"`
	Cardinality    string `json:"cardinality"`
	IsAISuggested  bool   `json:"is_ai_suggested"`
}

type Store struct {
	Driver driver.GraphDriver

	Now func() time.Time
}

func NewStore(d driver.GraphDriver) *Store {
	return &Store{
		Driver: d,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) CreateEntity(ctx context.Context, domainID string, rec EntityRecord) error {
	params := map[string]interface{}{
		"uuid":            rec.ID,
		"name":            rec.Name,
		"domain_id":       domainID,
		"kind":            rec.Kind,
		"description":     rec.Description,
		"properties":      rec.Properties,
		"x":               rec.X,
		"y":               rec.Y,
		"is_ai_suggested": rec.IsAISuggested,
		"created_at":      s.Now(),
	}
	if _, err := s.Driver.ExecuteQuery(ctx, driver.SaveEntityQuery, params); err != nil {
		return fmt.Errorf("create entity %s: %w: %v", rec.ID, model.ErrPersistenceRequestFailed, err)
	}
	return nil
}

func (s *Store) CreateRelationship(ctx context.Context, domainID string, rec RelationshipRecord) error {
	params := map[string]interface{}{
		"uuid":             rec.ID,
		"name":             rec.Name,
		"domain_id":        domainID,
		"kind":             rec.Kind,
		"description":      rec.Description,
		"source_entity_id": rec.SourceEntityID,
		"target_entity_id": rec.TargetEntityID,
		"cardinality":      rec.Cardinality,
		"is_ai_suggested":  rec.IsAISuggested,
		"created_at":       s.Now(),
	}
	if _, err := s.Driver.ExecuteQuery(ctx, driver.SaveRelationshipQuery, params); err != nil {
		return fmt.Errorf("create relationship %s: %w: %v", rec.ID, model.ErrPersistenceRequestFailed, err)
	}
	return nil
}

func (s *Store) DeleteEntity(ctx context.Context, domainID, entityID string) error {
	params := map[string]interface{}{"uuid": entityID, "domain_id": domainID}
	if _, err := s.Driver.ExecuteQuery(ctx, driver.DeleteEntityQuery, params); err != nil {
		return fmt.Errorf("delete entity %s: %w: %v", entityID, model.ErrPersistenceRequestFailed, err)
	}
	return nil
}

func (s *Store) DeleteRelationship(ctx context.Context, domainID, relationshipID string) error {
	params := map[string]interface{}{"uuid": relationshipID, "domain_id": domainID}
	if _, err := s.Driver.ExecuteQuery(ctx, driver.DeleteRelationshipQuery, params); err != nil {
		return fmt.Errorf("delete relationship %s: %w: %v", relationshipID, model.ErrPersistenceRequestFailed, err)
	}
	return nil
}

// ListDomain loads the persisted entities and relationships of a domain.
func (s *Store) ListDomain(ctx context.Context, domainID string) ([]EntityRecord, []RelationshipRecord, error) {
	params := map[string]interface{}{"domain_id": domainID}

	entRes, err := s.Driver.ExecuteQuery(ctx, driver.GetDomainEntitiesQuery, params)
	if err != nil {
		return nil, nil, fmt.Errorf("list domain %s: %w: %v", domainID, model.ErrPersistenceRequestFailed, err)
	}
	var entities []EntityRecord
	for _, rec := range entRes.Records {
		e := EntityRecord{}
		if v, ok := rec.Get("uuid"); ok {
			e.ID, _ = v.(string)
		}
		if v, ok := rec.Get("name"); ok {
			e.Name, _ = v.(string)
		}
		if v, ok := rec.Get("kind"); ok {
			e.Kind, _ = v.(string)
		}
		if v, ok := rec.Get("description"); ok {
			e.Description, _ = v.(string)
		}
		if v, ok := rec.Get("properties"); ok {
			if list, ok := v.([]interface{}); ok {
				for _, item := range list {
					if str, ok := item.(string); ok {
						e.Properties = append(e.Properties, str)
					}
				}
			}
		}
		if v, ok := rec.Get("x"); ok {
			e.X, _ = v.(float64)
		}
		if v, ok := rec.Get("y"); ok {
			e.Y, _ = v.(float64)
		}
		entities = append(entities, e)
	}

	relRes, err := s.Driver.ExecuteQuery(ctx, driver.GetDomainRelationshipsQuery, params)
	if err != nil {
		return nil, nil, fmt.Errorf("list domain %s: %w: %v", domainID, model.ErrPersistenceRequestFailed, err)
	}
	var relationships []RelationshipRecord
	for _, rec := range relRes.Records {
		r := RelationshipRecord{}
		if v, ok := rec.Get("uuid"); ok {
			r.ID, _ = v.(string)
		}
		if v, ok := rec.Get("name"); ok {
			r.Name, _ = v.(string)
		}
		if v, ok := rec.Get("kind"); ok {
			r.Kind, _ = v.(string)
		}
		if v, ok := rec.Get("cardinality"); ok {
			r.Cardinality, _ = v.(string)
		}
		if v, ok := rec.Get("description"); ok {
			r.Description, _ = v.(string)
		}
		if v, ok := rec.Get("source_entity_id"); ok {
			r.SourceEntityID, _ = v.(string)
		}
		if v, ok := rec.Get("target_entity_id"); ok {
			r.TargetEntityID, _ = v.(string)
		}
		relationships = append(relationships, r)
	}

	return entities, relationships, nil
}
