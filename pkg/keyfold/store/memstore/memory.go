// Package memstore is the in-memory result store, for tests and one-shot
// runs that do not need persistence.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/consolidate"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/store"
)

type resultKey struct {
	title, brand, productType string
}

type memStore struct {
	mu       sync.RWMutex
	results  map[resultKey]store.Result
	runs     map[string]store.Run
	products map[string]map[string]consolidate.Product
}

// New creates an empty in-memory store.
func New() store.Store {
	return &memStore{
		results:  make(map[resultKey]store.Result),
		runs:     make(map[string]store.Run),
		products: make(map[string]map[string]consolidate.Product),
	}
}

func (m *memStore) Close() error { return nil }

func (m *memStore) PutResult(_ context.Context, r store.Result) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[resultKey{r.Title, r.Brand, r.ProductType}] = r
	return nil
}

func (m *memStore) GetResult(_ context.Context, title, brand, productType string) (store.Result, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[resultKey{title, brand, productType}]
	return r, ok, nil
}

func (m *memStore) ResultsByRun(_ context.Context, runID string, limit int) ([]store.Result, error) {
	if limit <= 0 {
		limit = 1000
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []store.Result
	for _, r := range m.results {
		if r.RunID == runID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) PutRun(_ context.Context, r store.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[r.ID] = r
	return nil
}

func (m *memStore) GetRun(_ context.Context, id string) (store.Run, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runs[id]
	return r, ok, nil
}

func (m *memStore) PutProducts(_ context.Context, runID string, products []*consolidate.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byKey := m.products[runID]
	if byKey == nil {
		byKey = make(map[string]consolidate.Product)
		m.products[runID] = byKey
	}
	for _, p := range products {
		cp := *p
		cp.Popularity = copyMap(p.Popularity)
		cp.MSV = copyMap(p.MSV)
		byKey[p.Key] = cp
	}
	return nil
}

func (m *memStore) ProductsByRun(_ context.Context, runID string, limit int) ([]*consolidate.Product, error) {
	if limit <= 0 {
		limit = 10000
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*consolidate.Product
	for _, p := range m.products[runID] {
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyMap(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *memStore) Runs(_ context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 100
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]store.Run, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
