// Package retrieval ranks stored attractions against a query vector.
package retrieval

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// Service fetches candidates and ranks them by cosine similarity.
type Service struct {
	source AttractionSource
}

// New creates a retrieval service.
func New(source AttractionSource) *Service {
	return &Service{source: source}
}

// Retrieve returns the topN attractions most similar to the query
// vector, best first. An empty candidate set yields an empty result,
// not an error; the answer then comes from the model alone.
func (s *Service) Retrieve(
	ctx context.Context, query []float32, topN int,
) ([]domain.ScoredAttraction, error) {
	candidates, err := s.source.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return rankTopN(candidates, query, topN), nil
}
