package graph

import (
	"encoding/json"
	"fmt"

	"github.com/agenthands/ontoscope/internal/core/model"
)

// Grid placement defaults for nodes arriving without a position.
const (
	gridColumns  = 4
	gridSpacingX = 250
	gridSpacingY = 150
	gridOriginX  = 100
	gridOriginY  = 100
)

func gridPosition(index int) model.Position {
	return model.Position{
		X: gridOriginX + float64(index%gridColumns)*gridSpacingX,
		Y: gridOriginY + float64(index/gridColumns)*gridSpacingY,
	}
}

type canonicalNodeData struct {
	Label       string   `json:"label"`
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Properties  []string `json:"properties"`
}

type canonicalNode struct {
	ID       string             `json:"id"`
	Data     *canonicalNodeData `json:"data"`
	Position *model.Position    `json:"position"`

	// Flat-shape fields, present when data is absent.
	Label       string   `json:"label"`
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Properties  []string `json:"properties"`
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
}

type canonicalEdge struct {
	ID   string `json:"id"`
	Src  string `json:"source"`
	Tgt  string `json:"target"`
	Data *struct {
		Label       string `json:"label"`
		Kind        string `json:"kind"`
		Cardinality string `json:"cardinality"`
		Description string `json:"description"`
	} `json:"data"`
	Label       string `json:"label"`
	Kind        string `json:"kind"`
	Cardinality string `json:"cardinality"`
	Description string `json:"description"`
}

type nodeEdgeShape struct {
	Nodes []canonicalNode `json:"nodes"`
	Edges []canonicalEdge `json:"edges"`
}

type entityShape struct {
	Entities []struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Type        string          `json:"type"`
		Description string          `json:"description"`
		Properties  []entityProp    `json:"properties"`
		Position    *model.Position `json:"position"`
	} `json:"entities"`
	Relationships []struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		Type           string `json:"type"`
		SourceEntityID string `json:"source_entity_id"`
		TargetEntityID string `json:"target_entity_id"`
		Cardinality    string `json:"cardinality"`
		Description    string `json:"description"`
	} `json:"relationships"`
}

// entityProp tolerates both a bare string and an object with a name.
type entityProp struct {
	Name string
}

func (p *entityProp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Name = s
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.Name = obj.Name
	return nil
}

// Load normalizes one of three external snapshot shapes into the store,
// replacing its whole contents: (a) node/edge lists with nested data
// fields, (b) flat node/edge lists with top-level labels, (c) an
// entity/relationship shape. Anything else fails with ErrInvalidGraphShape
// and leaves the store untouched.
func (s *Store) Load(raw []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("load: %w: %v", model.ErrInvalidGraphShape, err)
	}

	if _, ok := probe["entities"]; ok {
		return s.loadEntityShape(raw)
	}
	if _, ok := probe["nodes"]; ok {
		return s.loadNodeEdgeShape(raw)
	}
	return fmt.Errorf("load: %w: expected nodes/edges or entities/relationships keys", model.ErrInvalidGraphShape)
}

func (s *Store) loadNodeEdgeShape(raw []byte) error {
	var shape nodeEdgeShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return fmt.Errorf("load: %w: %v", model.ErrInvalidGraphShape, err)
	}

	fresh := NewStore()
	fresh.UUIDGenerator = s.UUIDGenerator
	for i, rn := range shape.Nodes {
		n := model.Node{ID: rn.ID}
		if rn.Data != nil {
			n.Label = rn.Data.Label
			n.Kind = model.NodeKind(rn.Data.Kind)
			n.Description = rn.Data.Description
			n.Properties = rn.Data.Properties
		} else {
			n.Label = rn.Label
			n.Kind = model.NodeKind(rn.Kind)
			n.Description = rn.Description
			n.Properties = rn.Properties
		}
		if n.Label == "" {
			return fmt.Errorf("load: node %d: %w: missing label", i, model.ErrInvalidGraphShape)
		}
		switch {
		case rn.Position != nil:
			n.Position = *rn.Position
		case rn.X != nil && rn.Y != nil:
			n.Position = model.Position{X: *rn.X, Y: *rn.Y}
		default:
			n.Position = gridPosition(i)
		}
		if _, err := fresh.AddNode(n); err != nil {
			return fmt.Errorf("load: %w: %v", model.ErrInvalidGraphShape, err)
		}
	}
	for _, re := range shape.Edges {
		e := model.Edge{ID: re.ID, SourceID: re.Src, TargetID: re.Tgt}
		if re.Data != nil {
			e.Label = re.Data.Label
			e.Kind = model.EdgeKind(re.Data.Kind)
			e.Description = re.Data.Description
			if re.Data.Cardinality != "" {
				e.Cardinality = model.ParseCardinality(re.Data.Cardinality)
			}
		} else {
			e.Label = re.Label
			e.Kind = model.EdgeKind(re.Kind)
			e.Description = re.Description
			if re.Cardinality != "" {
				e.Cardinality = model.ParseCardinality(re.Cardinality)
			}
		}
		if _, _, err := fresh.AddEdge(e); err != nil {
			return fmt.Errorf("load: %w: %v", model.ErrInvalidGraphShape, err)
		}
	}

	s.adopt(fresh)
	return nil
}

func (s *Store) loadEntityShape(raw []byte) error {
	var shape entityShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return fmt.Errorf("load: %w: %v", model.ErrInvalidGraphShape, err)
	}

	fresh := NewStore()
	fresh.UUIDGenerator = s.UUIDGenerator
	for i, ent := range shape.Entities {
		if ent.Name == "" {
			return fmt.Errorf("load: entity %d: %w: missing name", i, model.ErrInvalidGraphShape)
		}
		props := make([]string, 0, len(ent.Properties))
		for _, p := range ent.Properties {
			if p.Name != "" {
				props = append(props, p.Name)
			}
		}
		n := model.Node{
			ID:          ent.ID,
			Label:       ent.Name,
			Kind:        model.NodeKindClass,
			Description: ent.Description,
			Properties:  props,
		}
		// Entity exports carry source-level types (table, view, ...);
		// only pass through the ones that are graph node kinds.
		switch k := model.NodeKind(ent.Type); k {
		case model.NodeKindClass, model.NodeKindProperty, model.NodeKindInstance, model.NodeKindRelationship:
			n.Kind = k
		}
		if ent.Position != nil {
			n.Position = *ent.Position
		} else {
			n.Position = gridPosition(i)
		}
		if _, err := fresh.AddNode(n); err != nil {
			return fmt.Errorf("load: %w: %v", model.ErrInvalidGraphShape, err)
		}
	}
	for _, rel := range shape.Relationships {
		e := model.Edge{
			ID:          rel.ID,
			SourceID:    rel.SourceEntityID,
			TargetID:    rel.TargetEntityID,
			Label:       rel.Name,
			Kind:        model.EdgeKindRelationship,
			Description: rel.Description,
		}
		if rel.Type != "" {
			e.Kind = model.EdgeKind(rel.Type)
		}
		if rel.Cardinality != "" {
			e.Cardinality = model.ParseCardinality(rel.Cardinality)
		}
		if _, _, err := fresh.AddEdge(e); err != nil {
			return fmt.Errorf("load: %w: %v", model.ErrInvalidGraphShape, err)
		}
	}

	s.adopt(fresh)
	return nil
}

func (s *Store) adopt(fresh *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = fresh.nodes
	s.order = fresh.order
	s.edges = fresh.edges
}
