package retrieval

import (
	"math"
	"sort"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// cosineSimilarity computes dot(a,b) / (|a| * |b|) in float64.
// Returns 0 when either vector has zero norm or the lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rankTopN scores every candidate against the query and returns the
// topN best. The sort is stable, so candidates with equal scores keep
// their input order.
func rankTopN(candidates []domain.Attraction, query []float32, topN int) []domain.ScoredAttraction {
	scored := make([]domain.ScoredAttraction, len(candidates))
	for i, c := range candidates {
		scored[i] = domain.ScoredAttraction{
			Attraction: c,
			Score:      cosineSimilarity(query, c.Embedding),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topN < len(scored) {
		scored = scored[:topN]
	}
	return scored
}
