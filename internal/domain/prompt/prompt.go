// Package prompt renders the LLM prompt from a user query and the
// retrieved attractions. Rendering is pure: identical inputs produce
// byte-identical output.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// DefaultTemplate is the built-in prompt. A replacement template may be
// supplied via retrieval.prompt_template_path; it must contain the
// {user_query} and {context_intro} placeholders.
const DefaultTemplate = `You are a helpful assistant specializing in travel and attractions. The user has asked the following question:

User query:
"""{user_query}"""

{context_intro}

IMPORTANT: Use ONLY the attractions provided in the database information above to answer the user's query. Do not add additional attractions, locations, or destinations that are not listed in the database.

If the database contains relevant attractions, focus your answer exclusively on those. You may provide helpful context about the attractions (such as general travel tips or cultural information), but do not introduce new destinations or attractions that are not in the database.

If no relevant attractions were found in the database, you may provide a brief general answer, but clearly state that no specific attractions were found in the database.
`

const contextIntro = "Here are some relevant attractions from the database, ranked by similarity:"

const emptyContextIntro = "No relevant attractions were retrieved from the database. " +
	"Please answer based only on the user's query and your general knowledge about travel and attractions."

// Builder renders prompts from a fixed template.
type Builder struct {
	template string
}

// NewBuilder creates a Builder. An empty template selects DefaultTemplate.
func NewBuilder(template string) *Builder {
	if template == "" {
		template = DefaultTemplate
	}
	return &Builder{template: template}
}

// Build renders the prompt for the given query and ranked attractions.
// Hits with an empty id or no renderable fields are skipped; an empty hit
// set produces the no-context variant that asks the model for a general
// answer with a disclaimer.
func (b *Builder) Build(query string, hits []domain.ScoredAttraction) string {
	blocks := make([]string, 0, len(hits))
	for _, h := range hits {
		text := h.Attraction.ContextText()
		if h.Attraction.ID == "" || text == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Attraction ID: %s\n%s\n---", h.Attraction.ID, text))
	}

	intro := emptyContextIntro
	if len(blocks) > 0 {
		intro = contextIntro + "\n\n" + strings.Join(blocks, "\n\n")
	}

	// Single-pass substitution: placeholder-like text inside the query or
	// the attraction fields must not be expanded.
	out := strings.NewReplacer(
		"{user_query}", query,
		"{context_intro}", intro,
	).Replace(b.template)

	return strings.TrimSpace(out)
}
