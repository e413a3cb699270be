package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/classify"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/consolidate"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/store"
)

func TestResultRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	in := store.Result{
		Title:       "Corona Extra 24x355ml",
		Brand:       "Corona",
		ProductType: "Alcoholic Beverages",
		Path:        classify.Path{Level1: "Beer", Level2: "Lager", Level3: "Other"},
		Keyword:     "Corona Extra Lager",
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
	if got.Keyword != in.Keyword || got.Path != in.Path {
		t.Errorf("got %+v, want %+v", got, in)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be stamped on put")
	}

	_, ok, err = s.GetResult(ctx, "Absent", "", in.ProductType)
	if err != nil || ok {
		t.Errorf("missing result: ok=%v err=%v", ok, err)
	}
}

func TestPutResultOverwrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	base := store.Result{Title: "T", Brand: "B", ProductType: "Pets", Keyword: "First"}
	if err := s.PutResult(ctx, base); err != nil {
		t.Fatal(err)
	}
	base.Keyword = "Second"
	if err := s.PutResult(ctx, base); err != nil {
		t.Fatal(err)
	}

	got, _, _ := s.GetResult(ctx, "T", "B", "Pets")
	if got.Keyword != "Second" {
		t.Errorf("Keyword = %q, want overwrite", got.Keyword)
	}
}

func TestResultsByRun(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	for _, r := range []store.Result{
		{Title: "B Item", ProductType: "Pets", RunID: "run-1"},
		{Title: "A Item", ProductType: "Pets", RunID: "run-1"},
		{Title: "Other Run", ProductType: "Pets", RunID: "run-2"},
	} {
		if err := s.PutResult(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ResultsByRun(ctx, "run-1", 0)
	if err != nil {
		t.Fatalf("ResultsByRun: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].Title != "A Item" || got[1].Title != "B Item" {
		t.Errorf("results not ordered by title: %v, %v", got[0].Title, got[1].Title)
	}
}

func TestProductsByRun(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	products := []*consolidate.Product{
		{Key: "stella artois", Title: "Stella Artois", Popularity: map[string]float64{"Jun": 1}},
		{Key: "corona extra", Title: "Corona Extra", MSV: map[string]float64{"Jun 2024": 500}},
	}
	if err := s.PutProducts(ctx, "run-1", products); err != nil {
		t.Fatalf("PutProducts: %v", err)
	}

	// Mutating the caller's maps must not touch the stored copies.
	products[0].Popularity["Jun"] = 99

	got, err := s.ProductsByRun(ctx, "run-1", 0)
	if err != nil {
		t.Fatalf("ProductsByRun: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d products, want 2", len(got))
	}
	if got[0].Key != "corona extra" || got[1].Key != "stella artois" {
		t.Errorf("products not ordered by key: %v, %v", got[0].Key, got[1].Key)
	}
	if got[1].Popularity["Jun"] != 1 {
		t.Errorf("stored product aliased caller's map: %v", got[1].Popularity)
	}
}

func TestRuns(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	old := store.Run{ID: "run-old", StartedAt: time.Now().Add(-time.Hour)}
	recent := store.Run{ID: "run-new", Records: 42, StartedAt: time.Now()}
	for _, r := range []store.Run{old, recent} {
		if err := s.PutRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, ok, err := s.GetRun(ctx, "run-new")
	if err != nil || !ok {
		t.Fatalf("GetRun: ok=%v err=%v", ok, err)
	}
	if got.Records != 42 {
		t.Errorf("Records = %d", got.Records)
	}

	runs, err := s.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-new" {
		t.Errorf("runs not newest first: %+v", runs)
	}
}
