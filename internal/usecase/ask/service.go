// Package ask orchestrates question answering: embed the query, rank
// stored attractions, build the prompt, call the model.
package ask

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/prompt"
)

// Service answers free-text travel questions.
type Service struct {
	embed    Embedder
	retrieve Retriever
	complete Completer
	prompts  *prompt.Builder
	maxTopN  int
}

// New creates an ask service. maxTopN bounds the number of attractions
// a single request may pull into the prompt.
func New(
	embed Embedder, retrieve Retriever, complete Completer,
	prompts *prompt.Builder, maxTopN int,
) *Service {
	return &Service{
		embed:    embed,
		retrieve: retrieve,
		complete: complete,
		prompts:  prompts,
		maxTopN:  maxTopN,
	}
}

// Ask runs the full flow for one question and returns the model's
// answer. The query is trimmed before use so cache keys and prompts
// stay stable across whitespace variants. Token usage is reported via
// the collector in ctx, if any.
func (s *Service) Ask(ctx context.Context, query string, topN int) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: query must not be empty", domain.ErrInvalidQuery)
	}
	if topN < 1 || topN > s.maxTopN {
		return "", fmt.Errorf("%w: top_n must be between 1 and %d", domain.ErrInvalidQuery, s.maxTopN)
	}

	embRes, err := s.embed.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(embRes.TotalTokens)

	hits, err := s.retrieve.Retrieve(ctx, embRes.Embedding, topN)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}

	answer, err := s.complete.Complete(ctx, s.prompts.Build(query, hits))
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	domain.UsageFromContext(ctx).AddCompletionTokens(answer.CompletionTokens)

	return answer.Text, nil
}
