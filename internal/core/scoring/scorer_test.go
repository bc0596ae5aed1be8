package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/ontoscope/internal/core/model"
)

func node(id, label string) model.Node {
	return model.Node{ID: id, Kind: model.NodeKindClass, Label: label}
}

func TestScoreDirectPattern(t *testing.T) {
	customer := node("c1", "Customer")
	order := node("o1", "Order")

	got := Score(customer, []model.Node{customer, order})

	assert.Len(t, got, 1)
	assert.Equal(t, "o1", got[0].TargetNodeID)
	assert.Equal(t, "places_order", got[0].RelationshipName)
	assert.Equal(t, model.OneToMany, got[0].Cardinality)
	assert.Equal(t, 95, got[0].Confidence)
	assert.Equal(t, model.BucketHigh, model.Bucket(got[0].Confidence))
}

func TestScoreReversePattern(t *testing.T) {
	order := node("o1", "Order")
	customer := node("c1", "Customer")

	got := Score(order, []model.Node{order, customer})

	assert.Len(t, got, 1)
	assert.Equal(t, "placed_by", got[0].RelationshipName)
	assert.Equal(t, model.ManyToOne, got[0].Cardinality)
	assert.Equal(t, 85, got[0].Confidence)
}

func TestScoreFuzzyFallback(t *testing.T) {
	customer := node("c1", "Customer")
	profile := node("p1", "CustomerProfile")

	got := Score(customer, []model.Node{customer, profile})

	assert.Len(t, got, 1)
	assert.Equal(t, "relates_to", got[0].RelationshipName)
	// "customer" inside "customerprofile": similarity 8/15, scaled by 60.
	assert.Equal(t, 32, got[0].Confidence)
	assert.Contains(t, got[0].Reasoning, "semantically similar terms")
}

func TestScoreNoMatchForUnrelatedLabels(t *testing.T) {
	customer := node("c1", "Customer")
	nebula := node("n1", "Nebula")

	got := Score(customer, []model.Node{customer, nebula})

	assert.Empty(t, got)
}

func TestScoreFirstRuleWins(t *testing.T) {
	// "CustomerOrder" vs "Order" hits the direct customer/order pattern
	// before the fuzzy rule can fire on the shared "order" token.
	hybrid := node("h1", "CustomerOrder")
	order := node("o1", "Order")

	got := Score(hybrid, []model.Node{hybrid, order})

	assert.Len(t, got, 1)
	assert.Equal(t, "places_order", got[0].RelationshipName)
	assert.Equal(t, 95, got[0].Confidence)
}

func TestScoreSortsDescending(t *testing.T) {
	customer := node("c1", "Customer")
	others := []model.Node{
		customer,
		node("p1", "CustomerProfile"), // fuzzy, 32
		node("o1", "Order"),           // direct, 95
		node("i1", "Invoice"),         // direct, 90
	}

	got := Score(customer, others)

	assert.Len(t, got, 3)
	assert.Equal(t, "o1", got[0].TargetNodeID)
	assert.Equal(t, "i1", got[1].TargetNodeID)
	assert.Equal(t, "p1", got[2].TargetNodeID)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Confidence, got[i].Confidence)
	}
}

func TestScoreSkipsSelf(t *testing.T) {
	customer := node("c1", "Customer")

	got := Score(customer, []model.Node{customer})

	assert.Empty(t, got)
}

func TestBucketBoundaries(t *testing.T) {
	assert.Equal(t, model.BucketHigh, model.Bucket(80))
	assert.Equal(t, model.BucketMedium, model.Bucket(79))
	assert.Equal(t, model.BucketMedium, model.Bucket(60))
	assert.Equal(t, model.BucketLow, model.Bucket(59))
	assert.Equal(t, model.BucketLow, model.Bucket(50))
	assert.Equal(t, model.BucketNone, model.Bucket(49))
}
