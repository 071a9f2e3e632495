package domain

import "context"

type requestUsageKey struct{}

// RequestUsage collects upstream token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the
// service; the service writes after each upstream call; the handler reads
// it back for response headers.
type RequestUsage struct {
	EmbeddingTokens  int
	CompletionTokens int
	EmbeddingUsed    bool // true if embedding ran, even on a cache hit with 0 tokens
}

// NewContextWithUsage returns a context with an attached usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *RequestUsage) {
	u := &RequestUsage{}
	return context.WithValue(ctx, requestUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *RequestUsage {
	u, _ := ctx.Value(requestUsageKey{}).(*RequestUsage)
	return u
}

// AddEmbeddingTokens records tokens consumed by the query embedding call.
func (u *RequestUsage) AddEmbeddingTokens(n int) {
	if u != nil {
		u.EmbeddingTokens += n
		u.EmbeddingUsed = true
	}
}

// AddCompletionTokens records tokens consumed by the chat completion call.
func (u *RequestUsage) AddCompletionTokens(n int) {
	if u != nil {
		u.CompletionTokens += n
	}
}
