// Package scoring ranks plausible relationships between a node and a set
// of candidate targets. Scoring is pure and stateless: the same labels
// always produce the same candidates.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/agenthands/ontoscope/internal/core/model"
)

// DisplayLimit is how many candidates callers are expected to surface.
// The scorer itself returns everything; presentation filtering is the
// caller's responsibility.
const DisplayLimit = 5

// fuzzyThreshold is the minimum token similarity for the fallback rule.
const fuzzyThreshold = 0.3

// Score ranks every other node as a connection candidate for node.
// Exactly one rule applies per pair, in priority order: direct pattern
// match, reverse pattern match, fuzzy label similarity. Results are
// sorted by descending confidence.
func Score(node model.Node, others []model.Node) []model.Candidate {
	var out []model.Candidate
	for _, other := range others {
		if other.ID == node.ID {
			continue
		}
		if c, ok := scorePair(node, other); ok {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

func scorePair(node, other model.Node) (model.Candidate, bool) {
	a := strings.ToLower(node.Label)
	b := strings.ToLower(other.Label)

	for _, p := range relationPatterns {
		if strings.Contains(a, p.wordA) && strings.Contains(b, p.wordB) {
			return model.Candidate{
				TargetNodeID:     other.ID,
				RelationshipName: p.name,
				Cardinality:      p.cardinality,
				Confidence:       p.confidence,
				Reasoning:        fmt.Sprintf("%q and %q match the %s/%s relationship pattern", node.Label, other.Label, p.wordA, p.wordB),
			}, true
		}
	}
	for _, p := range relationPatterns {
		if strings.Contains(a, p.wordB) && strings.Contains(b, p.wordA) {
			return model.Candidate{
				TargetNodeID:     other.ID,
				RelationshipName: reverseName(p.name),
				Cardinality:      reverseCardinality(p.cardinality),
				Confidence:       clamp(p.confidence - 10),
				Reasoning:        fmt.Sprintf("%q and %q match the %s/%s pattern in reverse order", node.Label, other.Label, p.wordA, p.wordB),
			}, true
		}
	}

	if sim := labelSimilarity(node.Label, other.Label); sim > fuzzyThreshold {
		return model.Candidate{
			TargetNodeID:     other.ID,
			RelationshipName: genericRelationName,
			Cardinality:      model.OneToMany,
			Confidence:       clamp(int(math.Round(sim * 60))),
			Reasoning:        fmt.Sprintf("%q and %q have semantically similar terms (similarity %.2f)", node.Label, other.Label, sim),
		}, true
	}
	return model.Candidate{}, false
}

// labelSimilarity is the maximum containment similarity over all token
// pairs of the two labels. Exact token match scores 1.0, substring
// containment the length ratio shorter/longer, anything else 0.
func labelSimilarity(a, b string) float64 {
	tokensA := tokenize(a)
	tokensB := tokenize(b)
	var best float64
	for _, ta := range tokensA {
		for _, tb := range tokensB {
			if s := tokenSimilarity(ta, tb); s > best {
				best = s
			}
		}
	}
	return best
}

func tokenSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if strings.Contains(longer, shorter) {
		return float64(len(shorter)) / float64(len(longer))
	}
	return 0
}

// tokenize splits on non-alphanumeric boundaries and drops tokens of two
// characters or fewer.
func tokenize(label string) []string {
	fields := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	var out []string
	for _, f := range fields {
		if len(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}

func clamp(confidence int) int {
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}
