// Package keyfold is the facade over the retail consolidation core:
// taxonomy-driven category classification, search keyword extraction and
// batch processing, with an optional result store in front of the work.
package keyfold

import (
	"context"
	"time"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/batch"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/classify"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/consolidate"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/extract"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/store"
)

// Engine ties the classifier, the extractor and the result store together.
type Engine struct {
	classifier *classify.Classifier
	extractor  extract.Strategy
	store      store.Store
	workers    int
}

// Options configures an Engine. Classifier and Extractor are required for
// the operations that use them; Store is optional and enables result
// caching across runs.
type Options struct {
	Classifier *classify.Classifier
	Extractor  extract.Strategy
	Store      store.Store
	Workers    int
}

// New creates an Engine.
func New(opts Options) *Engine {
	return &Engine{
		classifier: opts.Classifier,
		extractor:  opts.Extractor,
		store:      opts.Store,
		workers:    opts.Workers,
	}
}

// Close shuts the engine down, closing the store when one is attached.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Classify assigns one title to a category path.
func (e *Engine) Classify(title, productType string) (classify.Result, error) {
	return e.classifier.Classify(title, productType)
}

// Extract derives the search keyword for one record.
func (e *Engine) Extract(ctx context.Context, rec extract.Record) (string, error) {
	return e.extractor.Extract(ctx, rec)
}

// RunResult is the outcome of a batch run.
type RunResult struct {
	RunID    string
	Outcomes []batch.Outcome
	// Cached counts records answered from the store without recomputation.
	Cached int
}

// Process classifies and extracts every record with the worker pool. With
// a store attached, records already resolved are answered from cache and
// fresh outcomes are written back under a new run ID.
func (e *Engine) Process(ctx context.Context, records []extract.Record) (RunResult, error) {
	result := RunResult{RunID: batch.NewRunID()}
	started := time.Now().UTC()

	outcomes := make([]batch.Outcome, len(records))
	var pending []extract.Record
	var pendingIdx []int

	for i, rec := range records {
		if e.store != nil {
			cached, ok, err := e.store.GetResult(ctx, rec.Title, rec.Brand, rec.ProductType)
			if err != nil {
				return result, err
			}
			if ok {
				outcomes[i] = batch.Outcome{Index: i, Path: cached.Path, Keyword: cached.Keyword}
				result.Cached++
				continue
			}
		}
		pending = append(pending, rec)
		pendingIdx = append(pendingIdx, i)
	}

	if len(pending) > 0 {
		proc := &batch.Processor{
			Classifier: e.classifier,
			Extractor:  e.extractor,
			Workers:    e.workers,
		}
		for j, out := range proc.Run(ctx, pending) {
			i := pendingIdx[j]
			out.Index = i
			outcomes[i] = out

			if e.store != nil && out.Err == nil {
				rec := records[i]
				err := e.store.PutResult(ctx, store.Result{
					Title:       rec.Title,
					Brand:       rec.Brand,
					ProductType: rec.ProductType,
					Path:        out.Path,
					Keyword:     out.Keyword,
					Source:      store.SourceLocal,
					RunID:       result.RunID,
				})
				if err != nil {
					return result, err
				}
			}
		}
	}

	result.Outcomes = outcomes
	if e.store != nil {
		err := e.store.PutRun(ctx, store.Run{
			ID:         result.RunID,
			Records:    len(records),
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
		})
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// Consolidate unions monthly snapshots into the master product table,
// classifying each product when a classifier is configured.
func (e *Engine) Consolidate(snapshots []consolidate.Snapshot, productType string) ([]*consolidate.Product, error) {
	return consolidate.Consolidate(snapshots, e.classifier, productType)
}

// SaveProducts persists a consolidated table under the run ID. Without a
// store this is a no-op.
func (e *Engine) SaveProducts(ctx context.Context, runID string, products []*consolidate.Product) error {
	if e.store == nil {
		return nil
	}
	return e.store.PutProducts(ctx, runID, products)
}
