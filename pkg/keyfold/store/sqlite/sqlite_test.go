package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/classify"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/consolidate"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/store"
)

func openTemp(t *testing.T) store.Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "keyfold.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestResultUpsert(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	in := store.Result{
		Title:       "Smirnoff Vodka 70cl",
		Brand:       "Smirnoff",
		ProductType: "Alcoholic Beverages",
		Path:        classify.Path{Level1: "Spirits", Level2: "Vodka", Level3: "Other"},
		Keyword:     "Smirnoff Vodka",
		Source:      store.SourceLocal,
		RunID:       "run-1",
	}
	if err := s.PutResult(ctx, in); err != nil {
		t.Fatalf("PutResult: %v", err)
	}

	got, ok, err := s.GetResult(ctx, in.Title, in.Brand, in.ProductType)
	if err != nil || !ok {
		t.Fatalf("GetResult: ok=%v err=%v", ok, err)
	}
	if got.Path != in.Path || got.Keyword != in.Keyword || got.Source != store.SourceLocal {
		t.Errorf("got %+v, want %+v", got, in)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not persisted")
	}

	// Same key updates in place.
	in.Keyword = "Smirnoff Red Vodka"
	in.Source = store.SourceLLM
	if err := s.PutResult(ctx, in); err != nil {
		t.Fatalf("PutResult update: %v", err)
	}
	got, _, _ = s.GetResult(ctx, in.Title, in.Brand, in.ProductType)
	if got.Keyword != "Smirnoff Red Vodka" || got.Source != store.SourceLLM {
		t.Errorf("update lost: %+v", got)
	}

	results, err := s.ResultsByRun(ctx, "run-1", 0)
	if err != nil {
		t.Fatalf("ResultsByRun: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results for run, want 1", len(results))
	}
}

func TestGetResultMissing(t *testing.T) {
	s := openTemp(t)
	_, ok, err := s.GetResult(context.Background(), "Absent", "", "Pets")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if ok {
		t.Error("missing result reported present")
	}
}

func TestProductRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	in := []*consolidate.Product{{
		Key:             "corona extra",
		Title:           "Corona Extra",
		Brand:           "Corona",
		Path:            classify.Path{Level1: "Beer", Level2: "Lager", Level3: "Other"},
		MaxPrice:        "54.99",
		Availability:    "In Stock",
		Keyword:         "Corona Extra Lager",
		Popularity:      map[string]float64{"Jun": 2, "Jul": 1},
		MSV:             map[string]float64{"Jun 2024": 1200},
		PeakSeasonality: "Jun",
	}}
	if err := s.PutProducts(ctx, "run-1", in); err != nil {
		t.Fatalf("PutProducts: %v", err)
	}

	got, err := s.ProductsByRun(ctx, "run-1", 0)
	if err != nil {
		t.Fatalf("ProductsByRun: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d products, want 1", len(got))
	}
	p := got[0]
	if p.Path != in[0].Path || p.Keyword != in[0].Keyword {
		t.Errorf("got %+v, want %+v", p, in[0])
	}
	if p.Popularity["Jul"] != 1 || p.MSV["Jun 2024"] != 1200 {
		t.Errorf("JSON columns lost: %v / %v", p.Popularity, p.MSV)
	}

	other, err := s.ProductsByRun(ctx, "run-2", 0)
	if err != nil {
		t.Fatalf("ProductsByRun: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("foreign run returned %d products", len(other))
	}
}

func TestRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	started := time.Now().UTC().Truncate(time.Second)
	run := store.Run{
		ID:          "01HZXW0000000000000000TEST",
		ProductType: "Pets",
		Records:     150,
		StartedAt:   started,
		FinishedAt:  started.Add(2 * time.Minute),
	}
	if err := s.PutRun(ctx, run); err != nil {
		t.Fatalf("PutRun: %v", err)
	}

	got, ok, err := s.GetRun(ctx, run.ID)
	if err != nil || !ok {
		t.Fatalf("GetRun: ok=%v err=%v", ok, err)
	}
	if got.Records != 150 || !got.StartedAt.Equal(started) {
		t.Errorf("got %+v, want %+v", got, run)
	}

	runs, err := s.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Errorf("runs = %+v", runs)
	}
}
