package community

import (
	"sort"

	"github.com/agenthands/ontoscope/internal/core/model"
)

// LabelPropagationDetector groups ontology nodes into clusters with the
// Label Propagation Algorithm (LPA). Clusters feed the visualization
// payload so densely connected parts of the ontology render together.
type LabelPropagationDetector struct {
	MaxIterations int
}

func NewLabelPropagationDetector() *LabelPropagationDetector {
	return &LabelPropagationDetector{
		MaxIterations: 20,
	}
}

func (d *LabelPropagationDetector) Detect(nodes []model.Node, edges []model.Edge) ([][]model.Node, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	// Undirected weighted adjacency; parallel edges strengthen the tie.
	adj := make(map[string]map[string]int)
	nodeMap := make(map[string]model.Node)

	for _, n := range nodes {
		nodeMap[n.ID] = n
		adj[n.ID] = make(map[string]int)
	}

	for _, e := range edges {
		if _, ok := nodeMap[e.SourceID]; !ok {
			continue
		}
		if _, ok := nodeMap[e.TargetID]; !ok {
			continue
		}
		adj[e.SourceID][e.TargetID]++
		adj[e.TargetID][e.SourceID]++
	}

	// Each node starts in its own cluster.
	labels := make(map[string]string)
	nodeIDs := make([]string, len(nodes))
	for i, n := range nodes {
		labels[n.ID] = n.ID
		nodeIDs[i] = n.ID
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changeCount := 0

		for _, u := range nodeIDs {
			neighbors := adj[u]
			if len(neighbors) == 0 {
				continue
			}

			labelCounts := make(map[string]int)
			maxCount := 0
			for v, weight := range neighbors {
				label := labels[v]
				labelCounts[label] += weight
				if labelCounts[label] > maxCount {
					maxCount = labelCounts[label]
				}
			}

			var ties []string
			for label, count := range labelCounts {
				if count == maxCount {
					ties = append(ties, label)
				}
			}

			// Lexicographically largest label wins ties, so runs are
			// deterministic.
			sort.Strings(ties)
			bestLabel := ties[len(ties)-1]

			if labels[u] != bestLabel {
				labels[u] = bestLabel
				changeCount++
			}
		}

		if changeCount == 0 {
			break
		}
	}

	clusters := make(map[string][]model.Node)
	for id, label := range labels {
		if node, ok := nodeMap[id]; ok {
			clusters[label] = append(clusters[label], node)
		}
	}

	var communities [][]model.Node
	for _, cluster := range clusters {
		if len(cluster) >= 2 {
			communities = append(communities, cluster)
		}
	}

	return communities, nil
}
