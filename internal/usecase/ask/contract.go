package ask

import (
	"context"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// Embedder vectorizes the user query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Retriever ranks stored attractions against a query vector.
type Retriever interface {
	Retrieve(ctx context.Context, query []float32, topN int) ([]domain.ScoredAttraction, error)
}

// Completer generates the answer from the assembled prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (domain.CompletionResult, error)
}
