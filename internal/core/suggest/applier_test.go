package suggest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/ontoscope/internal/core/graph"
	"github.com/agenthands/ontoscope/internal/core/model"
	"github.com/agenthands/ontoscope/internal/render"
)

func newTestApplier(t *testing.T) (*Applier, *graph.Store, *graph.Ledger) {
	t.Helper()
	store := graph.NewStore()
	n := 0
	gen := func() string {
		n++
		return fmt.Sprintf("uuid-%d", n)
	}
	store.UUIDGenerator = gen
	applied := model.NewAppliedSet()
	ledger := graph.NewLedger(store, applied)
	a := NewApplier(store, ledger, applied, &recordingNotifier{}, nil)
	a.UUIDGenerator = gen
	return a, store, ledger
}

func TestApplyClassSuggestionStructuredFields(t *testing.T) {
	a, store, ledger := newTestApplier(t)
	ctx := context.Background()

	applied, err := a.Apply(ctx, model.Suggestion{
		ID:         "cls_001",
		Kind:       model.SuggestionOntologyClass,
		Title:      "Add Customer Entity",
		ClassName:  "Customer",
		Properties: []string{"email", "customer_id"},
	})

	assert.NoError(t, err)
	assert.True(t, applied)
	node, ok := store.NodeByLabel("Customer")
	assert.True(t, ok)
	assert.Equal(t, []string{"email", "customer_id"}, node.Properties)
	assert.True(t, node.IsNew)
	assert.Equal(t, 1, ledger.Len())
	assert.True(t, a.Applied.Has("cls_001"))
}

func TestApplyClassSuggestionDerivesLabelFromTitle(t *testing.T) {
	a, store, _ := newTestApplier(t)

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:             "cls_002",
		Kind:           model.SuggestionOntologyClass,
		Title:          "Add Order Entity",
		Implementation: "Create a class with fields [order_id, order_date, total_amount, status]",
	})

	assert.NoError(t, err)
	assert.True(t, applied)
	node, ok := store.NodeByLabel("Order")
	assert.True(t, ok)
	assert.Equal(t, []string{"order_id", "order_date", "total_amount", "status"}, node.Properties)
}

func TestApplyClassSuggestionDefaultProperties(t *testing.T) {
	a, store, _ := newTestApplier(t)

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:    "cls_003",
		Kind:  model.SuggestionOntologyClass,
		Title: "Add Supplier Entity",
	})

	assert.NoError(t, err)
	assert.True(t, applied)
	node, _ := store.NodeByLabel("Supplier")
	assert.Equal(t, []string{"id", "created_date"}, node.Properties)
}

func TestApplyClassSuggestionDuplicateName(t *testing.T) {
	a, store, ledger := newTestApplier(t)
	store.AddNode(model.Node{Label: "Customer"})

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:    "cls_001",
		Kind:  model.SuggestionOntologyClass,
		Title: "Add Customer Entity",
	})

	assert.ErrorIs(t, err, model.ErrDuplicateNodeName)
	assert.False(t, applied)
	assert.Equal(t, 1, store.NodeCount())
	assert.Equal(t, 0, ledger.Len())
	assert.False(t, a.Applied.Has("cls_001"))
}

func TestApplyAlreadyAppliedIsNoOp(t *testing.T) {
	a, store, ledger := newTestApplier(t)
	ctx := context.Background()
	s := model.Suggestion{
		ID:        "cls_001",
		Kind:      model.SuggestionOntologyClass,
		ClassName: "Customer",
	}

	applied, err := a.Apply(ctx, s)
	assert.NoError(t, err)
	assert.True(t, applied)

	applied, err = a.Apply(ctx, s)
	assert.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 1, store.NodeCount())
	assert.Equal(t, 1, ledger.Len())
}

func TestUndoReleasesSuggestionForReapply(t *testing.T) {
	a, store, ledger := newTestApplier(t)
	ctx := context.Background()
	s := model.Suggestion{
		ID:        "cls_001",
		Kind:      model.SuggestionOntologyClass,
		ClassName: "Customer",
	}

	applied, err := a.Apply(ctx, s)
	assert.NoError(t, err)
	assert.True(t, applied)

	rec := ledger.UndoLast()
	assert.NotNil(t, rec)
	assert.Equal(t, "cls_001", rec.SuggestionID)
	assert.Equal(t, 0, store.NodeCount())
	assert.False(t, a.Applied.Has("cls_001"))

	applied, err = a.Apply(ctx, s)
	assert.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 1, store.NodeCount())
}

func TestApplyPropertySuggestion(t *testing.T) {
	a, store, _ := newTestApplier(t)
	customer, _ := store.AddNode(model.Node{Label: "Customer", Properties: []string{"id"}})

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:             "prop_001",
		Kind:           model.SuggestionProperty,
		TargetNode:     customer.ID,
		Implementation: "Add LoyaltyStatus to the customer entity",
	})

	assert.NoError(t, err)
	assert.True(t, applied)
	updated, _ := store.Node(customer.ID)
	assert.Equal(t, []string{"id", "LoyaltyStatus"}, updated.Properties)
	assert.True(t, updated.IsModified)
}

func TestApplyPropertySuggestionFallsBackToFirstNode(t *testing.T) {
	a, store, _ := newTestApplier(t)
	first, _ := store.AddNode(model.Node{Label: "Customer"})
	store.AddNode(model.Node{Label: "Order"})

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:           "prop_002",
		Kind:         model.SuggestionProperty,
		PropertyName: "loyalty_status",
	})

	assert.NoError(t, err)
	assert.True(t, applied)
	updated, _ := store.Node(first.ID)
	assert.Contains(t, updated.Properties, "loyalty_status")
}

func TestApplyPropertyAlreadyPresent(t *testing.T) {
	a, store, ledger := newTestApplier(t)
	customer, _ := store.AddNode(model.Node{Label: "Customer", Properties: []string{"loyalty_status"}})

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:           "prop_003",
		Kind:         model.SuggestionProperty,
		TargetNode:   customer.ID,
		PropertyName: "Loyalty_Status",
	})

	assert.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 0, ledger.Len())
}

func TestApplyPropertyUnparseableName(t *testing.T) {
	a, store, _ := newTestApplier(t)
	store.AddNode(model.Node{Label: "Customer"})

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:             "prop_004",
		Kind:           model.SuggestionProperty,
		Implementation: "make things better somehow",
	})

	assert.NoError(t, err)
	assert.False(t, applied)
}

func TestApplyRelationshipSuggestion(t *testing.T) {
	a, store, _ := newTestApplier(t)
	c, _ := store.AddNode(model.Node{Label: "Customer"})
	o, _ := store.AddNode(model.Node{Label: "Order"})

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:               "rel_001",
		Kind:             model.SuggestionRelationship,
		SourceNode:       "Customer",
		TargetNode:       "Order",
		RelationshipName: "places_order",
		Cardinality:      model.OneToMany,
	})

	assert.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 1, store.EdgeCount())
	edges := store.Edges()
	assert.Equal(t, c.ID, edges[0].SourceID)
	assert.Equal(t, o.ID, edges[0].TargetID)
	assert.Equal(t, "places_order", edges[0].Label)
}

func TestApplyRelationshipUnresolvableEndpoints(t *testing.T) {
	a, store, _ := newTestApplier(t)
	store.AddNode(model.Node{Label: "Customer"})

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:         "rel_002",
		Kind:       model.SuggestionRelationship,
		SourceNode: "Customer",
		TargetNode: "Ghost",
	})

	assert.ErrorIs(t, err, model.ErrUnresolvableSuggestionEndpoints)
	assert.False(t, applied)
	assert.Equal(t, 0, store.EdgeCount())
}

func TestApplyRelationshipQuantityImpliesAttributed(t *testing.T) {
	a, store, _ := newTestApplier(t)
	store.AddNode(model.Node{Label: "Order"})
	store.AddNode(model.Node{Label: "Product"})

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:          "rel_003",
		Kind:        model.SuggestionRelationship,
		SourceNode:  "Order",
		TargetNode:  "Product",
		Description: "Orders contain products with a quantity per line",
	})

	assert.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, model.Attributed, store.Edges()[0].Cardinality)
}

func TestApplyRelationshipDuplicateIsNoOp(t *testing.T) {
	a, store, ledger := newTestApplier(t)
	c, _ := store.AddNode(model.Node{Label: "Customer"})
	o, _ := store.AddNode(model.Node{Label: "Order"})
	store.AddEdge(model.Edge{SourceID: c.ID, TargetID: o.ID, Label: "places_order"})

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:               "rel_004",
		Kind:             model.SuggestionRelationship,
		SourceNode:       c.ID,
		TargetNode:       o.ID,
		RelationshipName: "places_order",
	})

	assert.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 1, store.EdgeCount())
	assert.Equal(t, 0, ledger.Len())
}

func TestApplyEnhancementAddsQuantityProperties(t *testing.T) {
	a, store, _ := newTestApplier(t)
	o, _ := store.AddNode(model.Node{Label: "Order"})
	p, _ := store.AddNode(model.Node{Label: "Product"})
	created, _, _ := store.AddEdge(model.Edge{SourceID: o.ID, TargetID: p.ID, Label: "contains_product"})

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:          "enh_001",
		Kind:        model.SuggestionEnhancement,
		Description: "The contains_product relationship should carry quantity details per line",
	})

	assert.NoError(t, err)
	assert.True(t, applied)
	edge, _ := store.Edge(created.ID)
	assert.Equal(t, []string{"quantity", "unit_price", "discount"}, edge.Properties)
}

func TestApplyEnhancementWithoutMatchingEdge(t *testing.T) {
	a, store, _ := newTestApplier(t)
	store.AddNode(model.Node{Label: "Order"})

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:          "enh_002",
		Kind:        model.SuggestionEnhancement,
		Description: "Track quantity on the ships_to relationship",
	})

	assert.NoError(t, err)
	assert.False(t, applied)
}

func TestApplyUnknownKind(t *testing.T) {
	a, _, _ := newTestApplier(t)

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:   "x_001",
		Kind: model.SuggestionKind("mystery"),
	})

	assert.ErrorIs(t, err, model.ErrInvalidSuggestionType)
	assert.False(t, applied)
}

func TestApplyRedrawsAndHighlightsAffectedElements(t *testing.T) {
	a, store, _ := newTestApplier(t)
	renderer := &stubRenderer{}
	a.Scheduler = render.NewScheduler(renderer, 1, 0, nil)
	a.HighlightDecay = 5 * time.Millisecond

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:        "cls_010",
		Kind:      model.SuggestionOntologyClass,
		Title:     "Add Warehouse Entity",
		ClassName: "Warehouse",
	})

	assert.NoError(t, err)
	assert.True(t, applied)

	node, ok := store.NodeByLabel("Warehouse")
	assert.True(t, ok)
	assert.Len(t, renderer.frames, 1)
	assert.Len(t, renderer.highlights, 1)
	assert.Equal(t, node.ID, renderer.highlights[0].NodeID)
	assert.Equal(t, render.HighlightNew, renderer.highlights[0].Bucket)

	// The highlight decays on its own after the configured window.
	assert.Eventually(t, func() bool { return renderer.clearCount() > 0 }, time.Second, 5*time.Millisecond)
}

func TestApplyEnhancementHighlightsModifiedEdge(t *testing.T) {
	a, store, _ := newTestApplier(t)
	renderer := &stubRenderer{}
	a.Scheduler = render.NewScheduler(renderer, 1, 0, nil)

	src, _ := store.AddNode(model.Node{Label: "Order"})
	tgt, _ := store.AddNode(model.Node{Label: "Product"})
	edge, _, _ := store.AddEdge(model.Edge{SourceID: src.ID, TargetID: tgt.ID, Label: "contains_product"})

	applied, err := a.Apply(context.Background(), model.Suggestion{
		ID:          "enh_010",
		Kind:        model.SuggestionEnhancement,
		Title:       "Track order quantities",
		Description: "The contains_product relationship should carry quantity details",
	})

	assert.NoError(t, err)
	assert.True(t, applied)
	assert.Len(t, renderer.highlights, 1)
	assert.Equal(t, edge.ID, renderer.highlights[0].EdgeID)
	assert.Equal(t, render.HighlightModified, renderer.highlights[0].Bucket)
}
