package retrieval

import (
	"context"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// AttractionSource supplies the candidate set for ranking.
type AttractionSource interface {
	FetchAll(ctx context.Context) ([]domain.Attraction, error)
}
