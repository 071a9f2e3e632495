// Package attraction persists attraction records as Redis hashes and
// serves them back as ranking candidates.
package attraction

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/wayfarer/internal/db"
	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// store is the consumer interface for attraction records (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo reads and writes attraction hashes.
type Repo struct {
	store store
	dim   int
}

// New creates a repository. dim is the embedding dimensionality every
// stored record must carry.
func New(s store, dim int) *Repo {
	return &Repo{store: s, dim: dim}
}

// FetchAll loads every stored attraction. Keys are sorted before the
// bulk read so the returned order is stable across calls; ranking
// relies on that order to break score ties deterministically.
func (r *Repo) FetchAll(ctx context.Context) ([]domain.Attraction, error) {
	keys, err := r.store.Scan(ctx, attractionKeyPattern())
	if err != nil {
		return nil, fmt.Errorf("scan attractions: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch attractions: %w: %w", domain.ErrStoreUnavailable, err)
	}

	out := make([]domain.Attraction, 0, len(keys))
	for i, fields := range hashes {
		if len(fields) == 0 {
			// Key expired or was deleted between SCAN and HGETALL.
			continue
		}
		a, err := parseHashFields(attractionID(keys[i]), fields)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w: %w", keys[i], domain.ErrStoreData, err)
		}
		if len(a.Embedding) != r.dim {
			return nil, fmt.Errorf("parse %s: %w: embedding has %d dimensions, want %d",
				keys[i], domain.ErrStoreData, len(a.Embedding), r.dim)
		}
		out = append(out, a)
	}
	return out, nil
}

// Put writes attractions in a single pipelined call. Records with an
// embedding of the wrong dimensionality are rejected before anything
// is sent.
func (r *Repo) Put(ctx context.Context, attractions []domain.Attraction) error {
	if len(attractions) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(attractions))
	for _, a := range attractions {
		if a.ID == "" {
			return fmt.Errorf("put attraction %q: empty id", a.Name)
		}
		if len(a.Embedding) != r.dim {
			return fmt.Errorf("put attraction %s: embedding has %d dimensions, want %d",
				a.ID, len(a.Embedding), r.dim)
		}
		items = append(items, db.HashSetItem{
			Key:    attractionKey(a.ID),
			Fields: buildHashFields(a),
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store attractions: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
