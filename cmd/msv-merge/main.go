package main

import (
	"flag"
	"log"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/config"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/consolidate"
)

func main() {
	outPath := flag.String("out", "", "Output merged MSV workbook (required)")
	flag.Parse()

	if *outPath == "" {
		log.Fatal("--out required")
	}
	if flag.NArg() == 0 {
		log.Fatal("At least one input MSV workbook required")
	}

	// Later workbooks override earlier ones per month column.
	merged := make(map[string]map[string]float64)
	for _, path := range flag.Args() {
		msv, err := config.LoadMSVWorkbook(path)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}
		for key, volumes := range msv {
			dst := merged[key]
			if dst == nil {
				dst = make(map[string]float64)
				merged[key] = dst
			}
			for col, v := range volumes {
				dst[col] = v
			}
		}
		log.Printf("Merged %s: %d keys", path, len(msv))
	}

	if err := writeMerged(*outPath, merged); err != nil {
		log.Fatal("Failed to write merged workbook:", err)
	}
	log.Printf("Merged MSV for %d keys written to %s", len(merged), *outPath)
}

func writeMerged(path string, merged map[string]map[string]float64) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "MSV"
	f.SetSheetName("Sheet1", sheet)

	// Only the month columns that actually carry data.
	present := map[string]bool{}
	for _, volumes := range merged {
		for col := range volumes {
			present[col] = true
		}
	}
	var cols []string
	for _, col := range consolidate.MSVColumns() {
		if present[col] {
			cols = append(cols, col)
		}
	}

	header := make([]any, 0, len(cols)+1)
	header = append(header, "Product Key")
	for _, col := range cols {
		header = append(header, col)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		row := make([]any, 0, len(cols)+1)
		row = append(row, key)
		for _, col := range cols {
			if v, ok := merged[key][col]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
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
