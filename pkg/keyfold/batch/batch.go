// Package batch drives classification and keyword extraction over whole
// product files: a bounded worker pool for the deterministic passes and
// rate-limited LLM batches for the fallback passes. Item failures stay
// per-item; a run always produces one outcome per input record.
package batch

import (
	"context"
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/classify"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/extract"
)

// IDs identify batch runs in logs and the result store.
var entropy = ulid.Monotonic(rand.Reader, 0)

// NewRunID returns a sortable unique run identifier.
func NewRunID() string {
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// Outcome is the per-record result of a run. Err is set when that record
// failed; sibling records are unaffected.
type Outcome struct {
	Index   int
	Path    classify.Path
	Keyword string
	Err     error
}

// Processor runs the deterministic pipeline over record slices with a
// bounded worker pool.
type Processor struct {
	Classifier *classify.Classifier
	Extractor  extract.Strategy
	Workers    int
}

const defaultWorkers = 8

// Run classifies and extracts every record. Outcomes are returned in input
// order. Cancelling the context stops dispatch; records not yet processed
// get the context error as their outcome.
func (p *Processor) Run(ctx context.Context, records []extract.Record) []Outcome {
	workers := p.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(records) {
		workers = len(records)
	}

	outcomes := make([]Outcome, len(records))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = p.process(ctx, i, records[i])
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := range records {
		select {
		case <-ctx.Done():
			break dispatch
		case indexes <- i:
			dispatched++
		}
	}
	close(indexes)
	wg.Wait()

	// Records never dispatched carry the cancellation error.
	for i := dispatched; i < len(records); i++ {
		outcomes[i] = Outcome{Index: i, Err: ctx.Err()}
	}
	return outcomes
}

func (p *Processor) process(ctx context.Context, i int, rec extract.Record) Outcome {
	out := Outcome{Index: i}

	if p.Classifier != nil {
		res, err := p.Classifier.Classify(rec.Title, rec.ProductType)
		if err != nil {
			out.Err = err
			return out
		}
		out.Path = res.Path
	}
	if p.Extractor != nil {
		kw, err := p.Extractor.Extract(ctx, rec)
		if err != nil {
			out.Err = err
			return out
		}
		out.Keyword = kw
	}
	return out
}
