// Package community clusters ontology graphs for visualization grouping.
package community

import (
	"sort"

	"github.com/agenthands/ontoscope/internal/core/model"
)

type Detector interface {
	Detect(nodes []model.Node, edges []model.Edge) ([][]model.Node, error)
}

func NewDetector() Detector {
	return NewLabelPropagationDetector()
}

// Assign flattens detected clusters into a node-id to cluster-index map.
// Nodes outside any cluster (singletons) are absent from the map.
// Cluster indices are stable for a given graph: clusters are ordered by
// their lexicographically smallest member.
func Assign(d Detector, nodes []model.Node, edges []model.Edge) map[string]int {
	communities, err := d.Detect(nodes, edges)
	if err != nil || len(communities) == 0 {
		return nil
	}

	keys := make([]string, len(communities))
	byKey := make(map[string][]model.Node, len(communities))
	for i, cluster := range communities {
		min := cluster[0].ID
		for _, n := range cluster[1:] {
			if n.ID < min {
				min = n.ID
			}
		}
		keys[i] = min
		byKey[min] = cluster
	}
	sort.Strings(keys)

	assignment := make(map[string]int)
	for idx, key := range keys {
		for _, n := range byKey[key] {
			assignment[n.ID] = idx
		}
	}
	return assignment
}
