package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/ontoscope/internal/core/model"
)

func TestLoadNodeEdgeShapeNestedData(t *testing.T) {
	s := testStore()
	raw := `{
		"nodes": [
			{"id": "n1", "data": {"label": "Customer", "kind": "class", "properties": ["id", "name"]}, "position": {"x": 40, "y": 60}},
			{"id": "n2", "data": {"label": "Order", "kind": "class"}}
		],
		"edges": [
			{"id": "e1", "source": "n1", "target": "n2", "data": {"label": "places_order", "cardinality": "1:N"}}
		]
	}`

	err := s.Load([]byte(raw))

	assert.NoError(t, err)
	assert.Equal(t, 2, s.NodeCount())
	assert.Equal(t, 1, s.EdgeCount())

	customer, ok := s.Node("n1")
	assert.True(t, ok)
	assert.Equal(t, "Customer", customer.Label)
	assert.Equal(t, model.Position{X: 40, Y: 60}, customer.Position)

	// Missing position falls back to grid placement by index.
	order, _ := s.Node("n2")
	assert.Equal(t, model.Position{X: 100 + 250, Y: 100}, order.Position)

	edge, ok := s.Edge("e1")
	assert.True(t, ok)
	assert.Equal(t, "places_order", edge.Label)
	assert.Equal(t, model.OneToMany, edge.Cardinality)
}

func TestLoadNodeEdgeShapeFlat(t *testing.T) {
	s := testStore()
	raw := `{
		"nodes": [
			{"id": "n1", "label": "Customer", "kind": "class", "x": 10, "y": 20},
			{"id": "n2", "label": "Order"}
		],
		"edges": [
			{"source": "n1", "target": "n2", "label": "places_order"}
		]
	}`

	err := s.Load([]byte(raw))

	assert.NoError(t, err)
	customer, _ := s.Node("n1")
	assert.Equal(t, model.Position{X: 10, Y: 20}, customer.Position)
	assert.Equal(t, 1, s.EdgeCount())
}

func TestLoadEntityShape(t *testing.T) {
	s := testStore()
	raw := `{
		"entities": [
			{"id": "ent1", "name": "Customer", "type": "class", "properties": ["id", {"name": "email"}]},
			{"id": "ent2", "name": "Order", "type": "table", "properties": []}
		],
		"relationships": [
			{"id": "rel1", "name": "places_order", "source_entity_id": "ent1", "target_entity_id": "ent2", "cardinality": "one-to-many"}
		]
	}`

	err := s.Load([]byte(raw))

	assert.NoError(t, err)
	customer, _ := s.Node("ent1")
	assert.Equal(t, []string{"id", "email"}, customer.Properties)

	// Foreign source types collapse to the class kind.
	order, _ := s.Node("ent2")
	assert.Equal(t, model.NodeKindClass, order.Kind)

	edge, _ := s.Edge("rel1")
	assert.Equal(t, model.OneToMany, edge.Cardinality)
}

func TestLoadInvalidShape(t *testing.T) {
	s := testStore()
	s.AddNode(model.Node{Label: "Keep"})

	for _, raw := range []string{
		`not json at all`,
		`{"something_else": []}`,
		`{"nodes": [{"id": "n1"}]}`,
	} {
		err := s.Load([]byte(raw))
		assert.ErrorIs(t, err, model.ErrInvalidGraphShape, "input: %s", raw)
	}

	// A failed load never clobbers the existing graph.
	assert.Equal(t, 1, s.NodeCount())
}

func TestLoadReplacesPreviousGraph(t *testing.T) {
	s := testStore()
	s.AddNode(model.Node{Label: "Old"})

	err := s.Load([]byte(`{"nodes": [{"id": "n1", "label": "New"}], "edges": []}`))

	assert.NoError(t, err)
	assert.Equal(t, 1, s.NodeCount())
	_, ok := s.NodeByLabel("Old")
	assert.False(t, ok)
}
