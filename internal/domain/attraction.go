package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Attraction is a single stored travel attraction with its precomputed
// embedding. Records are written by the loader and immutable at request time.
type Attraction struct {
	ID          string
	Name        string
	City        string
	Category    string
	Location    string // "City, Country", used only in the embedding composition
	Address     string
	Price       float64
	Currency    string
	OpenHours   string
	Description string
	Embedding   []float32
}

// ContextText renders the attraction as a text block for the LLM prompt.
// Empty fields are omitted. Every stored record carries a price (0 means
// free admission), so the price line is always present; a missing currency
// falls back to USD.
func (a Attraction) ContextText() string {
	var parts []string

	if a.Name != "" {
		if a.City != "" {
			parts = append(parts, fmt.Sprintf("Attraction: %s in %s", a.Name, a.City))
		} else {
			parts = append(parts, "Attraction: "+a.Name)
		}
	}
	if a.Category != "" {
		parts = append(parts, "Type: "+a.Category)
	}
	if a.Address != "" {
		parts = append(parts, "Address: "+a.Address)
	}

	currency := a.Currency
	if currency == "" {
		currency = "USD"
	}
	parts = append(parts, fmt.Sprintf("Price: %s %s", strconv.FormatFloat(a.Price, 'f', -1, 64), currency))

	if a.OpenHours != "" {
		parts = append(parts, "Opening Hours: "+a.OpenHours)
	}
	if a.Description != "" {
		parts = append(parts, "Description: "+a.Description)
	}

	return strings.Join(parts, "\n")
}

// EmbeddingText is the ingest-time composition the stored vectors were
// computed from. Changing it invalidates every stored embedding.
func (a Attraction) EmbeddingText() string {
	return a.Name + a.Category + a.Location + a.OpenHours
}

// ScoredAttraction is an attraction with its cosine similarity to a query.
type ScoredAttraction struct {
	Attraction
	Score float64
}
