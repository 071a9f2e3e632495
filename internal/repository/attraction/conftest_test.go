package attraction

import (
	"context"
	"testing"

	"github.com/kailas-cloud/wayfarer/internal/db"
	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// mockStore implements the store interface with overridable functions.
type mockStore struct {
	hsetMultiFn    func(ctx context.Context, items []db.HashSetItem) error
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

const testDim = 4

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testDim), ms
}

func testVector(dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(i) * 0.001
	}
	return v
}

func testAttraction(id string) domain.Attraction {
	return domain.Attraction{
		ID:        id,
		Name:      "Eiffel Tower",
		City:      "Paris",
		Category:  "landmark",
		Location:  "Paris, France",
		Address:   "5 Avenue Anatole, Paris, 75007, France",
		Price:     28.3,
		Currency:  "EUR",
		OpenHours: "09:00-23:45",
		Embedding: testVector(testDim),
	}
}
