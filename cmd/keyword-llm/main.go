package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/time/rate"

	"github.com/shelfmetrics/keyfold/internal/llm"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/batch"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/classify"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/config"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/extract"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/store"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/store/sqlite"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/taxonomy"
)

func main() {
	var (
		configPath   = flag.String("config", "", "Configuration YAML with an llm section (required)")
		inPath       = flag.String("in", "", "Product export workbook (required)")
		productType  = flag.String("type", "", "Product type (required)")
		mode         = flag.String("mode", "keywords", "Pass to run: keywords, categories or validate")
		taxonomyPath = flag.String("taxonomy", "", "Taxonomy workbook (required for --mode categories and validate)")
		dbPath       = flag.String("db", "", "Result cache database (optional)")
		outPath      = flag.String("out", "", "Output workbook (required)")
	)
	flag.Parse()

	if *configPath == "" {
		log.Fatal("--config required")
	}
	if *inPath == "" {
		log.Fatal("--in required")
	}
	if *productType == "" {
		log.Fatal("--type required")
	}
	if *outPath == "" {
		log.Fatal("--out required")
	}
	if *mode != "keywords" && *mode != "categories" && *mode != "validate" {
		log.Fatalf("Unknown --mode %q", *mode)
	}
	if *mode != "keywords" && *taxonomyPath == "" {
		log.Fatalf("--taxonomy required for --mode %s", *mode)
	}

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if cfg.LLM.BaseURL == "" || cfg.LLM.Model == "" {
		log.Fatal("Configuration needs llm.base_url and llm.model")
	}
	apiKey := ""
	if cfg.LLM.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.LLM.APIKeyEnv)
		if apiKey == "" {
			log.Fatalf("Environment variable %s is not set", cfg.LLM.APIKeyEnv)
		}
	}

	client := &llm.Client{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  apiKey,
		Model:   cfg.LLM.Model,
	}
	var limiter *rate.Limiter
	if cfg.LLM.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.LLM.RequestsPerMinute/60), 1)
	}
	snap, err := config.LoadMonthlyExport(*inPath, "")
	if err != nil {
		log.Fatal("Failed to read export:", err)
	}
	records := make([]extract.Record, len(snap.Rows))
	for i, row := range snap.Rows {
		records[i] = extract.Record{
			Title:       row.Title,
			Brand:       row.Brand,
			ProductType: *productType,
		}
	}

	var st store.Store
	if *dbPath != "" {
		st, err = sqlite.Open(ctx, *dbPath)
		if err != nil {
			log.Fatal("Failed to open database:", err)
		}
		defer st.Close()
	}
	runID := batch.NewRunID()

	switch *mode {
	case "keywords":
		runKeywords(ctx, cfg, client, limiter, st, runID, *productType, *outPath, records)
	case "categories":
		runCategories(ctx, cfg, client, limiter, st, runID, *productType, *taxonomyPath, *outPath, records)
	case "validate":
		runValidate(ctx, cfg, client, limiter, runID, *productType, *taxonomyPath, *outPath, records)
	}
}

func runKeywords(ctx context.Context, cfg *config.File, client *llm.Client, limiter *rate.Limiter,
	st store.Store, runID, productType, outPath string, records []extract.Record) {

	keyworder := &batch.Keyworder{
		Client:    client,
		Limiter:   limiter,
		BatchSize: cfg.LLM.BatchSize,
		MaxWords:  cfg.Extract.MaxWords,
	}
	log.Printf("Generating keywords for %d products", len(records))

	outcomes := keyworder.ExtractBatch(ctx, records)

	failures := 0
	for i, out := range outcomes {
		if out.Err != nil {
			failures++
			log.Printf("Keyword failed for %q: %v", records[i].Title, out.Err)
			continue
		}
		if st != nil {
			err := st.PutResult(ctx, store.Result{
				Title:       records[i].Title,
				Brand:       records[i].Brand,
				ProductType: productType,
				Keyword:     out.Keyword,
				Source:      store.SourceLLM,
				RunID:       runID,
			})
			if err != nil {
				log.Fatal("Failed to store result:", err)
			}
		}
	}

	if err := writeKeywords(outPath, records, outcomes); err != nil {
		log.Fatal("Failed to write keyword workbook:", err)
	}
	log.Printf("Run %s: %d keywords, %d failures, written to %s",
		runID, len(records)-failures, failures, outPath)
}

func runCategories(ctx context.Context, cfg *config.File, client *llm.Client, limiter *rate.Limiter,
	st store.Store, runID, productType, taxonomyPath, outPath string, records []extract.Record) {

	loader := config.Loader{TaxonomyPath: taxonomyPath}
	components, err := loader.Load()
	if err != nil {
		log.Fatal("Failed to load taxonomy:", err)
	}
	allowed, err := components.Index.Paths(productType)
	if err != nil {
		log.Fatal("Failed to list categories:", err)
	}

	categorizer := &batch.Categorizer{
		Client:    client,
		Limiter:   limiter,
		BatchSize: cfg.LLM.BatchSize,
	}
	log.Printf("Resolving categories for %d products against %d paths",
		len(records), len(allowed))

	outcomes := categorizer.ClassifyBatch(ctx, productType, allowed, records)

	failures := 0
	for i, out := range outcomes {
		if out.Err != nil {
			failures++
			log.Printf("Category failed for %q: %v", records[i].Title, out.Err)
			continue
		}
		if st != nil {
			err := st.PutResult(ctx, store.Result{
				Title:       records[i].Title,
				Brand:       records[i].Brand,
				ProductType: productType,
				Path:        pathFromCategory(out.Category),
				Source:      store.SourceLLM,
				RunID:       runID,
			})
			if err != nil {
				log.Fatal("Failed to store result:", err)
			}
		}
	}

	if err := writeCategories(outPath, records, outcomes); err != nil {
		log.Fatal("Failed to write category workbook:", err)
	}
	log.Printf("Run %s: %d categories, %d failures, written to %s",
		runID, len(records)-failures, failures, outPath)
}

// runValidate classifies every record locally, then asks the model for a
// second opinion and reports where the two disagree.
func runValidate(ctx context.Context, cfg *config.File, client *llm.Client, limiter *rate.Limiter,
	runID, productType, taxonomyPath, outPath string, records []extract.Record) {

	loader := config.Loader{TaxonomyPath: taxonomyPath}
	components, err := loader.Load()
	if err != nil {
		log.Fatal("Failed to load taxonomy:", err)
	}
	allowed, err := components.Index.Paths(productType)
	if err != nil {
		log.Fatal("Failed to list categories:", err)
	}

	assigned := make([]string, len(records))
	for i, rec := range records {
		res, err := components.Classifier.Classify(rec.Title, productType)
		if err != nil {
			log.Fatalf("Failed to classify %q: %v", rec.Title, err)
		}
		assigned[i] = res.CategoryPath
	}

	categorizer := &batch.Categorizer{
		Client:    client,
		Limiter:   limiter,
		BatchSize: cfg.LLM.BatchSize,
	}
	log.Printf("Validating %d assignments against %d paths", len(records), len(allowed))

	outcomes, err := categorizer.ValidateBatch(ctx, productType, allowed, records, assigned)
	if err != nil {
		log.Fatal("Validation failed:", err)
	}

	disagreements, failures := 0, 0
	for i, out := range outcomes {
		switch {
		case out.Err != nil:
			failures++
			log.Printf("Validation failed for %q: %v", records[i].Title, out.Err)
		case !out.Agrees:
			disagreements++
		}
	}

	if err := writeValidation(outPath, records, outcomes); err != nil {
		log.Fatal("Failed to write validation workbook:", err)
	}
	log.Printf("Run %s: %d agreed, %d disagreed, %d failures, written to %s",
		runID, len(records)-disagreements-failures, disagreements, failures, outPath)
}

func pathFromCategory(category string) classify.Path {
	levels := strings.Split(category, taxonomy.Separator)
	path := classify.Path{Level1: levels[0], Level2: classify.Other, Level3: classify.Other}
	if len(levels) > 1 {
		path.Level2 = levels[1]
	}
	if len(levels) > 2 {
		path.Level3 = levels[2]
	}
	return path
}

func writeCategories(path string, records []extract.Record, outcomes []batch.CategoryOutcome) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Categories"
	f.SetSheetName("Sheet1", sheet)

	header := []any{"Product Title", "Product Brand", "Category Path", "Error"}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, rec := range records {
		errText := ""
		if outcomes[i].Err != nil {
			errText = outcomes[i].Err.Error()
		}
		row := []any{rec.Title, rec.Brand, outcomes[i].Category, errText}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeValidation(path string, records []extract.Record, outcomes []batch.ValidationOutcome) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Validation"
	f.SetSheetName("Sheet1", sheet)

	header := []any{"Product Title", "Product Brand", "Assigned Category", "Suggested Category", "Agrees", "Error"}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, rec := range records {
		errText := ""
		if outcomes[i].Err != nil {
			errText = outcomes[i].Err.Error()
		}
		row := []any{rec.Title, rec.Brand, outcomes[i].Assigned, outcomes[i].Suggested, outcomes[i].Agrees, errText}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeKeywords(path string, records []extract.Record, outcomes []batch.Outcome) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Keywords"
	f.SetSheetName("Sheet1", sheet)

	header := []any{"Product Title", "Product Brand", "Product Keyword", "Error"}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, rec := range records {
		errText := ""
		if outcomes[i].Err != nil {
			errText = outcomes[i].Err.Error()
		}
		row := []any{rec.Title, rec.Brand, outcomes[i].Keyword, errText}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
