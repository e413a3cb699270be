package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/shelfmetrics/keyfold/pkg/keyfold"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/config"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/consolidate"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/extract"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/store/sqlite"
)

func main() {
	var (
		configPath   = flag.String("config", "", "Configuration YAML (optional)")
		taxonomyPath = flag.String("taxonomy", "", "Taxonomy workbook (required)")
		exportsDir   = flag.String("exports", "", "Directory of monthly export workbooks, Jan.xlsx through Dec.xlsx (required)")
		productType  = flag.String("type", "", "Product type, e.g. \"Alcoholic Beverages\" (required)")
		msvPath      = flag.String("msv", "", "Monthly search volume workbook (optional)")
		dbPath       = flag.String("db", "", "Result cache database (optional)")
		outPath      = flag.String("out", "", "Output master workbook (required)")
		workers      = flag.Int("workers", 8, "Worker pool size")
	)
	flag.Parse()

	if *taxonomyPath == "" {
		log.Fatal("--taxonomy required")
	}
	if *exportsDir == "" {
		log.Fatal("--exports required")
	}
	if *productType == "" {
		log.Fatal("--type required")
	}
	if *outPath == "" {
		log.Fatal("--out required")
	}

	ctx := context.Background()

	loader := config.Loader{
		ConfigPath:   *configPath,
		TaxonomyPath: *taxonomyPath,
	}
	components, err := loader.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	opts := keyfold.Options{
		Classifier: components.Classifier,
		Extractor:  components.Extractor,
		Workers:    *workers,
	}
	if *dbPath != "" {
		st, err := sqlite.Open(ctx, *dbPath)
		if err != nil {
			log.Fatal("Failed to open database:", err)
		}
		opts.Store = st
	}
	engine := keyfold.New(opts)
	defer engine.Close()

	// Read whichever monthly exports exist.
	var snapshots []consolidate.Snapshot
	for _, month := range consolidate.Months {
		path := filepath.Join(*exportsDir, month+".xlsx")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		snap, err := config.LoadMonthlyExport(path, month)
		if err != nil {
			log.Fatalf("Failed to read %s export: %v", month, err)
		}
		snapshots = append(snapshots, snap)
		log.Printf("Loaded %s: %d rows", month, len(snap.Rows))
	}
	if len(snapshots) == 0 {
		log.Fatal("No monthly exports found in", *exportsDir)
	}

	products, err := engine.Consolidate(snapshots, *productType)
	if err != nil {
		log.Fatal("Consolidation failed:", err)
	}
	log.Printf("Consolidated %d products", len(products))

	// Keyword pass over the consolidated set.
	records := make([]extract.Record, len(products))
	for i, p := range products {
		records[i] = extract.Record{
			Title:       p.Title,
			Brand:       p.Brand,
			ProductType: *productType,
		}
	}
	result, err := engine.Process(ctx, records)
	if err != nil {
		log.Fatal("Keyword extraction failed:", err)
	}
	failures := 0
	for i, out := range result.Outcomes {
		if out.Err != nil {
			failures++
			log.Printf("Keyword failed for %q: %v", products[i].Title, out.Err)
			continue
		}
		products[i].Keyword = out.Keyword
	}
	log.Printf("Run %s: %d keywords, %d cached, %d failures",
		result.RunID, len(records)-failures, result.Cached, failures)

	if *msvPath != "" {
		msv, err := config.LoadMSVWorkbook(*msvPath)
		if err != nil {
			log.Fatal("Failed to read MSV workbook:", err)
		}
		consolidate.MergeMSV(products, msv)
		log.Printf("Merged MSV for %d keys", len(msv))
	}

	if err := engine.SaveProducts(ctx, result.RunID, products); err != nil {
		log.Fatal("Failed to persist products:", err)
	}

	if err := config.WriteMaster(*outPath, products); err != nil {
		log.Fatal("Failed to write master workbook:", err)
	}
	log.Printf("Master workbook written to %s", *outPath)
}
