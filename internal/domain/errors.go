package domain

import "errors"

var (
	// ErrInvalidQuery signals a rejected request: empty query text or top_n out of range.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrStoreUnavailable signals an unreachable attraction datastore.
	ErrStoreUnavailable = errors.New("attraction store unavailable")
	// ErrStoreData signals a malformed stored attraction record.
	ErrStoreData = errors.New("invalid stored attraction record")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrQuotaExceeded signals an exhausted token budget.
	ErrQuotaExceeded = errors.New("token budget exceeded")
	// ErrLLMAuth signals rejected LLM credentials.
	ErrLLMAuth = errors.New("llm authentication failed")
	// ErrLLMUnavailable signals an unreachable LLM provider.
	ErrLLMUnavailable = errors.New("llm provider unavailable")
	// ErrLLMResponse signals an empty or malformed LLM response.
	ErrLLMResponse = errors.New("empty or malformed llm response")
)
