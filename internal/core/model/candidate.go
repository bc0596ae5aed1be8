package model

type ConfidenceBucket string

const (
	BucketHigh   ConfidenceBucket = "high"
	BucketMedium ConfidenceBucket = "medium"
	BucketLow    ConfidenceBucket = "low"
	BucketNone   ConfidenceBucket = ""
)

// Candidate is a scored proposal that an edge should connect the scored
// node to TargetNodeID. Candidates are recomputed on demand, never stored.
type Candidate struct {
	TargetNodeID     string      `json:"target_node_id"`
	RelationshipName string      `json:"relationship_name"`
	Cardinality      Cardinality `json:"cardinality"`
	Confidence       int         `json:"confidence"`
	Reasoning        string      `json:"reasoning"`
}

// Bucket maps a numeric confidence to its presentation tier. Values below
// 50 are still returned by the scorer but have no tier; filtering them is
// the caller's call.
func Bucket(confidence int) ConfidenceBucket {
	switch {
	case confidence >= 80:
		return BucketHigh
	case confidence >= 60:
		return BucketMedium
	case confidence >= 50:
		return BucketLow
	default:
		return BucketNone
	}
}
