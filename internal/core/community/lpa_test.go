package community

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/ontoscope/internal/core/model"
)

func n(id string) model.Node {
	return model.Node{ID: id, Kind: model.NodeKindClass, Label: id}
}

func e(src, tgt string) model.Edge {
	return model.Edge{SourceID: src, TargetID: tgt, Label: "relates_to"}
}

func TestDetectSeparatesDisconnectedClusters(t *testing.T) {
	nodes := []model.Node{n("a"), n("b"), n("c"), n("x"), n("y"), n("z")}
	edges := []model.Edge{
		e("a", "b"), e("b", "c"), e("a", "c"),
		e("x", "y"), e("y", "z"), e("x", "z"),
	}

	d := NewLabelPropagationDetector()
	communities, err := d.Detect(nodes, edges)

	assert.NoError(t, err)
	assert.Len(t, communities, 2)
	sizes := []int{len(communities[0]), len(communities[1])}
	assert.ElementsMatch(t, []int{3, 3}, sizes)
}

func TestDetectDropsSingletons(t *testing.T) {
	nodes := []model.Node{n("a"), n("b"), n("lonely")}
	edges := []model.Edge{e("a", "b")}

	d := NewLabelPropagationDetector()
	communities, err := d.Detect(nodes, edges)

	assert.NoError(t, err)
	assert.Len(t, communities, 1)
	assert.Len(t, communities[0], 2)
}

func TestDetectEmptyGraph(t *testing.T) {
	d := NewLabelPropagationDetector()

	communities, err := d.Detect(nil, nil)

	assert.NoError(t, err)
	assert.Nil(t, communities)
}

func TestDetectIgnoresEdgesWithUnknownEndpoints(t *testing.T) {
	nodes := []model.Node{n("a"), n("b")}
	edges := []model.Edge{e("a", "b"), e("a", "ghost")}

	d := NewLabelPropagationDetector()
	communities, err := d.Detect(nodes, edges)

	assert.NoError(t, err)
	assert.Len(t, communities, 1)
}

func TestAssignProducesStableClusterIndices(t *testing.T) {
	nodes := []model.Node{n("a"), n("b"), n("x"), n("y")}
	edges := []model.Edge{e("a", "b"), e("x", "y")}

	got := Assign(NewDetector(), nodes, edges)

	assert.Len(t, got, 4)
	// Clusters are numbered by their smallest member id.
	assert.Equal(t, got["a"], got["b"])
	assert.Equal(t, got["x"], got["y"])
	assert.Equal(t, 0, got["a"])
	assert.Equal(t, 1, got["x"])
}

func TestAssignOmitsSingletons(t *testing.T) {
	nodes := []model.Node{n("a"), n("b"), n("alone")}
	edges := []model.Edge{e("a", "b")}

	got := Assign(NewDetector(), nodes, edges)

	_, present := got["alone"]
	assert.False(t, present)
	assert.Len(t, got, 2)
}
