// Package store persists classification and keyword results so repeated
// runs over the same exports skip work already done. Results are keyed by
// the (title, brand, product type) triple; runs group the results of one
// batch invocation.
package store

import (
	"context"
	"time"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/classify"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/consolidate"
)

// Result sources.
const (
	SourceLocal = "local"
	SourceLLM   = "llm"
)

// Result is one cached classification and keyword outcome.
type Result struct {
	Title       string
	Brand       string
	ProductType string
	Path        classify.Path
	Keyword     string
	Source      string
	RunID       string
	CreatedAt   time.Time
}

// Run records one batch invocation.
type Run struct {
	ID          string
	ProductType string
	Records     int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Store is the persistence interface for results and runs.
type Store interface {
	Close() error

	PutResult(ctx context.Context, r Result) error
	GetResult(ctx context.Context, title, brand, productType string) (Result, bool, error)
	ResultsByRun(ctx context.Context, runID string, limit int) ([]Result, error)

	PutRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	Runs(ctx context.Context, limit int) ([]Run, error)

	// Master table rows, grouped by the run that produced them.
	PutProducts(ctx context.Context, runID string, products []*consolidate.Product) error
	ProductsByRun(ctx context.Context, runID string, limit int) ([]*consolidate.Product, error)
}
