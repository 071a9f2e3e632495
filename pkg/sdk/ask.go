package wayfarer

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// AskOption adjusts a single Ask call.
type AskOption interface {
	applyAsk(*askConfig)
}

type askOptionFunc func(*askConfig)

func (f askOptionFunc) applyAsk(c *askConfig) { f(c) }

type askConfig struct {
	topN int
}

// WithTopN sets how many attractions this question pulls into the prompt
// context, overriding the server default.
func WithTopN(n int) AskOption {
	return askOptionFunc(func(c *askConfig) { c.topN = n })
}

// Answer carries the generated reply and the token usage behind it.
// Token counts come from the response headers and read zero when the
// server omits them (for example on an embedding cache hit).
type Answer struct {
	Text             string
	EmbeddingTokens  int
	CompletionTokens int
}

type askBody struct {
	Query string `json:"query"`
	TopN  *int   `json:"top_n,omitempty"`
}

type askResult struct {
	Answer string `json:"answer"`
}

// Ask answers a free-text travel question using the attractions stored
// on the server as context.
func (c *Client) Ask(ctx context.Context, query string, opts ...AskOption) (_ Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	cfg := &askConfig{}
	for _, o := range opts {
		o.applyAsk(cfg)
	}

	body := askBody{Query: query}
	if cfg.topN > 0 {
		body.TopN = &cfg.topN
	}

	var res askResult
	hdr, err := c.doJSON(ctx, http.MethodPost, "/ask", body, &res)
	if err != nil {
		return Answer{}, err
	}

	return Answer{
		Text:             res.Answer,
		EmbeddingTokens:  headerInt(hdr, "X-Embedding-Tokens"),
		CompletionTokens: headerInt(hdr, "X-Completion-Tokens"),
	}, nil
}

func headerInt(h http.Header, key string) int {
	n, _ := strconv.Atoi(h.Get(key))
	return n
}
