package batch

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/shelfmetrics/keyfold/internal/llm"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/extract"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/internalerr"
)

// ChatClient is the LLM surface the batch strategies need.
type ChatClient interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

const defaultBatchSize = 20

var _ extract.Strategy = (*Keyworder)(nil)

// Keyworder generates search keywords through an LLM in rate-limited
// batches. Model output passes the same word-cap validation as the local
// extractor; invalid or missing answers fail only their own item.
type Keyworder struct {
	Client    ChatClient
	Limiter   *rate.Limiter
	BatchSize int
	MaxWords  int
}

// ExtractBatch produces one outcome per record, in input order. A quota
// error aborts the remaining batches; every unprocessed record carries it.
func (k *Keyworder) ExtractBatch(ctx context.Context, recs []extract.Record) []Outcome {
	outcomes := make([]Outcome, len(recs))
	maxWords := k.MaxWords
	if maxWords <= 0 {
		maxWords = extract.MaxWords
	}

	for start := 0; start < len(recs); start += k.batchSize() {
		end := start + k.batchSize()
		if end > len(recs) {
			end = len(recs)
		}

		if err := k.wait(ctx); err != nil {
			k.failRemaining(outcomes, recs, start, err)
			return outcomes
		}

		items := make([]llm.BatchItem, 0, end-start)
		for i := start; i < end; i++ {
			items = append(items, llm.BatchItem{
				ID:    strconv.Itoa(i),
				Title: recs[i].Title,
				Brand: recs[i].Brand,
				Type:  recs[i].ProductType,
			})
		}

		system, user := llm.KeywordPrompt(items)
		reply, err := k.Client.Chat(ctx, system, user)
		if errors.Is(err, llm.ErrQuotaExceeded) || ctx.Err() != nil {
			k.failRemaining(outcomes, recs, start, err)
			return outcomes
		}

		answers := map[string]string{}
		if err == nil {
			answers, err = llm.ParseBatchResponse(reply)
		}
		for i := start; i < end; i++ {
			outcomes[i] = k.itemOutcome(i, recs[i], answers, err, maxWords)
		}
	}
	return outcomes
}

func (k *Keyworder) itemOutcome(i int, rec extract.Record, answers map[string]string, batchErr error, maxWords int) Outcome {
	out := Outcome{Index: i}
	if batchErr != nil {
		out.Err = &internalerr.KeywordGenerationError{Title: rec.Title, Reason: batchErr.Error()}
		return out
	}
	kw, ok := answers[strconv.Itoa(i)]
	if !ok {
		out.Err = &internalerr.KeywordGenerationError{Title: rec.Title, Reason: "no answer for item"}
		return out
	}
	if err := extract.ValidateKeyword(kw, maxWords); err != nil {
		out.Err = &internalerr.KeywordGenerationError{Title: rec.Title, Reason: err.Error()}
		return out
	}
	out.Keyword = kw
	return out
}

// Extract implements extract.Strategy for a single record, so the LLM
// path is interchangeable with the local extractor.
func (k *Keyworder) Extract(ctx context.Context, rec extract.Record) (string, error) {
	out := k.ExtractBatch(ctx, []extract.Record{rec})[0]
	return out.Keyword, out.Err
}

func (k *Keyworder) failRemaining(outcomes []Outcome, recs []extract.Record, from int, err error) {
	if err == nil {
		err = context.Canceled
	}
	for i := from; i < len(recs); i++ {
		outcomes[i] = Outcome{Index: i, Err: fmt.Errorf("batch aborted: %w", err)}
	}
}

func (k *Keyworder) batchSize() int {
	if k.BatchSize > 0 {
		return k.BatchSize
	}
	return defaultBatchSize
}

func (k *Keyworder) wait(ctx context.Context) error {
	if k.Limiter == nil {
		return nil
	}
	return k.Limiter.Wait(ctx)
}

// CategoryOutcome is one record's category-fallback result.
type CategoryOutcome struct {
	Index    int
	Category string
	Err      error
}

// Categorizer resolves "Other" classifications through an LLM. Answers
// must come verbatim from the allowed category list; the caller strips
// "Other" from that list so the model has to commit.
type Categorizer struct {
	Client    ChatClient
	Limiter   *rate.Limiter
	BatchSize int
}

// ClassifyBatch returns one outcome per record, in input order.
func (c *Categorizer) ClassifyBatch(ctx context.Context, productType string, allowed []string, recs []extract.Record) []CategoryOutcome {
	outcomes := make([]CategoryOutcome, len(recs))
	permitted := make(map[string]struct{}, len(allowed))
	for _, cat := range allowed {
		if cat != "Other" {
			permitted[cat] = struct{}{}
		}
	}

	size := c.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}

	for start := 0; start < len(recs); start += size {
		end := start + size
		if end > len(recs) {
			end = len(recs)
		}

		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				for i := start; i < len(recs); i++ {
					outcomes[i] = CategoryOutcome{Index: i, Err: err}
				}
				return outcomes
			}
		}

		items := make([]llm.BatchItem, 0, end-start)
		for i := start; i < end; i++ {
			items = append(items, llm.BatchItem{
				ID:    strconv.Itoa(i),
				Title: recs[i].Title,
				Brand: recs[i].Brand,
			})
		}

		system, user := llm.CategoryPrompt(productType, allowed, items)
		reply, err := c.Client.Chat(ctx, system, user)
		if errors.Is(err, llm.ErrQuotaExceeded) || ctx.Err() != nil {
			for i := start; i < len(recs); i++ {
				outcomes[i] = CategoryOutcome{Index: i, Err: fmt.Errorf("batch aborted: %w", err)}
			}
			return outcomes
		}

		answers := map[string]string{}
		if err == nil {
			answers, err = llm.ParseBatchResponse(reply)
		}
		for i := start; i < end; i++ {
			outcomes[i] = categoryOutcome(i, answers, permitted, err)
		}
	}
	return outcomes
}

// ValidationOutcome is one record's second-opinion result: the model's
// suggested category held against the assignment under review.
type ValidationOutcome struct {
	Index     int
	Assigned  string
	Suggested string
	Agrees    bool
	Err       error
}

// ValidateBatch re-classifies already-assigned records and reports whether
// the model agrees with each assignment. recs and assigned are parallel
// slices; a record whose second opinion cannot be obtained carries the
// error and no verdict.
func (c *Categorizer) ValidateBatch(ctx context.Context, productType string, allowed []string, recs []extract.Record, assigned []string) ([]ValidationOutcome, error) {
	if len(recs) != len(assigned) {
		return nil, fmt.Errorf("validate: %d records but %d assignments: %w",
			len(recs), len(assigned), internalerr.ErrInvalidInput)
	}

	classified := c.ClassifyBatch(ctx, productType, allowed, recs)
	outcomes := make([]ValidationOutcome, len(recs))
	for i, co := range classified {
		outcomes[i] = ValidationOutcome{
			Index:     i,
			Assigned:  assigned[i],
			Suggested: co.Category,
			Agrees:    co.Err == nil && co.Category == assigned[i],
			Err:       co.Err,
		}
	}
	return outcomes, nil
}

func categoryOutcome(i int, answers map[string]string, permitted map[string]struct{}, batchErr error) CategoryOutcome {
	out := CategoryOutcome{Index: i}
	if batchErr != nil {
		out.Err = batchErr
		return out
	}
	cat, ok := answers[strconv.Itoa(i)]
	if !ok {
		out.Err = fmt.Errorf("no answer for item %d: %w", i, internalerr.ErrNotFound)
		return out
	}
	if _, listed := permitted[cat]; !listed {
		out.Err = fmt.Errorf("answer %q not in allowed category list: %w", cat, internalerr.ErrInvalidInput)
		return out
	}
	out.Category = cat
	return out
}
