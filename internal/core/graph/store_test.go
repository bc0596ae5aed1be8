package graph

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/ontoscope/internal/core/model"
)

func testStore() *Store {
	s := NewStore()
	n := 0
	s.UUIDGenerator = func() string {
		n++
		return fmt.Sprintf("uuid-%d", n)
	}
	return s
}

func TestAddNodeSynthesizesID(t *testing.T) {
	s := testStore()

	created, err := s.AddNode(model.Node{Label: "Customer", Kind: model.NodeKindClass})

	assert.NoError(t, err)
	assert.Equal(t, "uuid-1", created.ID)
	assert.Equal(t, 1, s.NodeCount())
}

func TestDeleteNodeCascadesToEdges(t *testing.T) {
	s := testStore()
	a, _ := s.AddNode(model.Node{Label: "Customer"})
	b, _ := s.AddNode(model.Node{Label: "Order"})
	c, _ := s.AddNode(model.Node{Label: "Product"})
	s.AddEdge(model.Edge{SourceID: a.ID, TargetID: b.ID, Label: "places_order"})
	s.AddEdge(model.Edge{SourceID: b.ID, TargetID: c.ID, Label: "contains"})

	err := s.DeleteNode(b.ID)

	assert.NoError(t, err)
	assert.Equal(t, 2, s.NodeCount())
	// Both incident edges went with the node.
	assert.Equal(t, 0, s.EdgeCount())
}

func TestAddEdgeRejectsSelfLoop(t *testing.T) {
	s := testStore()
	a, _ := s.AddNode(model.Node{Label: "Customer"})

	_, _, err := s.AddEdge(model.Edge{SourceID: a.ID, TargetID: a.ID, Label: "knows"})

	assert.ErrorIs(t, err, model.ErrSelfLoop)
	assert.Equal(t, 0, s.EdgeCount())
}

func TestAddEdgeRejectsUnknownEndpoint(t *testing.T) {
	s := testStore()
	a, _ := s.AddNode(model.Node{Label: "Customer"})

	_, _, err := s.AddEdge(model.Edge{SourceID: a.ID, TargetID: "missing", Label: "places_order"})

	assert.ErrorIs(t, err, model.ErrNodeNotFound)
}

func TestAddEdgeDuplicateIsSilentNoOp(t *testing.T) {
	s := testStore()
	a, _ := s.AddNode(model.Node{Label: "Customer"})
	b, _ := s.AddNode(model.Node{Label: "Order"})

	first, added, err := s.AddEdge(model.Edge{SourceID: a.ID, TargetID: b.ID, Label: "places_order"})
	assert.NoError(t, err)
	assert.True(t, added)

	second, added, err := s.AddEdge(model.Edge{SourceID: a.ID, TargetID: b.ID, Label: "places_order"})
	assert.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, s.EdgeCount())

	// Same endpoints with a different label is a distinct edge.
	_, added, err = s.AddEdge(model.Edge{SourceID: a.ID, TargetID: b.ID, Label: "cancels_order"})
	assert.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 2, s.EdgeCount())
}

func TestEditNodeRejectsDuplicateLabel(t *testing.T) {
	s := testStore()
	s.AddNode(model.Node{Label: "Customer"})
	b, _ := s.AddNode(model.Node{Label: "Order"})

	label := "customer" // case-insensitive collision
	_, err := s.EditNode(b.ID, NodePatch{Label: &label})

	assert.ErrorIs(t, err, model.ErrDuplicateNodeName)
	current, _ := s.Node(b.ID)
	assert.Equal(t, "Order", current.Label)
}

func TestEditNodeMarksModified(t *testing.T) {
	s := testStore()
	a, _ := s.AddNode(model.Node{Label: "Customer"})

	desc := "A paying customer"
	updated, err := s.EditNode(a.ID, NodePatch{Description: &desc})

	assert.NoError(t, err)
	assert.True(t, updated.IsModified)
	assert.Equal(t, desc, updated.Description)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := testStore()
	ids := make([]string, 0, 4)
	for _, label := range []string{"Customer", "Order", "Product", "Invoice"} {
		n, err := s.AddNode(model.Node{Label: label, Properties: []string{"id"}})
		assert.NoError(t, err)
		ids = append(ids, n.ID)
	}
	s.AddEdge(model.Edge{SourceID: ids[0], TargetID: ids[1], Label: "places_order"})
	s.AddEdge(model.Edge{SourceID: ids[1], TargetID: ids[2], Label: "contains"})
	s.AddEdge(model.Edge{SourceID: ids[1], TargetID: ids[3], Label: "billed_by"})

	snap, err := s.Snapshot()
	assert.NoError(t, err)

	assert.NoError(t, s.DeleteNode(ids[1]))
	assert.Equal(t, 3, s.NodeCount())
	assert.Equal(t, 0, s.EdgeCount())

	s.Restore(snap)

	assert.Equal(t, 4, s.NodeCount())
	assert.Equal(t, 3, s.EdgeCount())
	order, ok := s.Node(ids[1])
	assert.True(t, ok)
	assert.Equal(t, "Order", order.Label)
}

func TestSnapshotIsIsolatedFromLiveGraph(t *testing.T) {
	s := testStore()
	a, _ := s.AddNode(model.Node{Label: "Customer", Properties: []string{"id"}})

	snap, err := s.Snapshot()
	assert.NoError(t, err)

	props := []string{"id", "name", "email"}
	_, err = s.EditNode(a.ID, NodePatch{Properties: &props})
	assert.NoError(t, err)

	assert.Equal(t, []string{"id"}, snap.Nodes[a.ID].Properties)
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := testStore()
	a, _ := s.AddNode(model.Node{Label: "Customer", Properties: []string{"id"}})

	got, _ := s.Node(a.ID)
	got.Properties[0] = "mutated"
	got.Label = "Mutated"

	fresh, _ := s.Node(a.ID)
	assert.Equal(t, "Customer", fresh.Label)
	assert.Equal(t, []string{"id"}, fresh.Properties)
}

func TestPropertyCount(t *testing.T) {
	s := testStore()
	s.AddNode(model.Node{Label: "Customer", Properties: []string{"id", "name"}})
	s.AddNode(model.Node{Label: "Order", Properties: []string{"id"}})

	assert.Equal(t, 3, s.PropertyCount())
}

func TestAddEdgeLabelCaseIsSignificant(t *testing.T) {
	s := testStore()
	a, _ := s.AddNode(model.Node{Label: "Customer"})
	b, _ := s.AddNode(model.Node{Label: "Order"})

	_, added, err := s.AddEdge(model.Edge{SourceID: a.ID, TargetID: b.ID, Label: "places_order"})
	assert.NoError(t, err)
	assert.True(t, added)

	// Only the exact (source, target, label) triple de-duplicates.
	_, added, err = s.AddEdge(model.Edge{SourceID: a.ID, TargetID: b.ID, Label: "Places_Order"})
	assert.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 2, s.EdgeCount())
}

func TestStoreConcurrentMutation(t *testing.T) {
	s := NewStore()
	base, _ := s.AddNode(model.Node{Label: "Hub"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := s.AddNode(model.Node{Label: fmt.Sprintf("Entity%d", i)})
			if err != nil {
				t.Error(err)
				return
			}
			if _, _, err := s.AddEdge(model.Edge{SourceID: base.ID, TargetID: n.ID, Label: fmt.Sprintf("links_%d", i)}); err != nil {
				t.Error(err)
			}
			s.Nodes()
			if _, err := s.Snapshot(); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 51, s.NodeCount())
	assert.Equal(t, 50, s.EdgeCount())
}
