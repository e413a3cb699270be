package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/consolidate"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/internalerr"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/taxonomy"
)

// Header spellings accepted for each taxonomy level. Older sheets use the
// Main/Sub/Additional naming.
var levelHeaders = [3][]string{
	{"Level 1", "Main Category"},
	{"Level 2", "Sub Category"},
	{"Level 3", "Additional Category 1"},
}

// LoadTaxonomyWorkbook reads every sheet of a taxonomy workbook. Sheet
// names are the product types; each data row carries up to three category
// levels.
func LoadTaxonomyWorkbook(path string) ([]taxonomy.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open taxonomy workbook: %w", err)
	}
	defer f.Close()

	var out []taxonomy.Row
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		idx := [3]int{-1, -1, -1}
		for col, header := range rows[0] {
			header = strings.TrimSpace(header)
			for level, names := range levelHeaders {
				for _, name := range names {
					if strings.EqualFold(header, name) {
						idx[level] = col
					}
				}
			}
		}
		if idx[0] < 0 {
			return nil, fmt.Errorf("sheet %q has no level 1 column: %w",
				sheet, internalerr.ErrInvalidConfig)
		}

		for _, row := range rows[1:] {
			r := taxonomy.Row{ProductType: strings.TrimSpace(sheet)}
			r.Level1 = cell(row, idx[0])
			r.Level2 = cell(row, idx[1])
			r.Level3 = cell(row, idx[2])
			if r.Level1 == "" {
				continue
			}
			out = append(out, r)
		}
	}
	return out, nil
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Export column headers, with their accepted spellings.
var exportHeaders = map[string][]string{
	"title":        {"Product Title", "Title"},
	"brand":        {"Product Brand", "Brand"},
	"rank":         {"Popularity rank", "Popularity Rank", "Product Popularity"},
	"price":        {"Price range max.", "Price Range Max", "Max Price"},
	"availability": {"Availability"},
}

// LoadMonthlyExport reads one month's product export from the first sheet
// of a workbook.
func LoadMonthlyExport(path, month string) (consolidate.Snapshot, error) {
	snap := consolidate.Snapshot{Month: month}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return snap, fmt.Errorf("open export %s: %w", month, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return snap, fmt.Errorf("export %s has no sheets: %w", month, internalerr.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return snap, fmt.Errorf("read export %s: %w", month, err)
	}
	if len(rows) < 2 {
		return snap, nil
	}

	cols := map[string]int{}
	for col, header := range rows[0] {
		header = strings.TrimSpace(header)
		for key, names := range exportHeaders {
			for _, name := range names {
				if strings.EqualFold(header, name) {
					if _, taken := cols[key]; !taken {
						cols[key] = col
					}
				}
			}
		}
	}
	titleCol, ok := cols["title"]
	if !ok {
		return snap, fmt.Errorf("export %s has no product title column: %w",
			month, internalerr.ErrInvalidInput)
	}

	for _, row := range rows[1:] {
		r := consolidate.Row{
			Title:        cell(row, titleCol),
			Brand:        cell(row, colOr(cols, "brand")),
			MaxPrice:     cell(row, colOr(cols, "price")),
			Availability: cell(row, colOr(cols, "availability")),
		}
		if r.Title == "" {
			continue
		}
		if rank := cell(row, colOr(cols, "rank")); rank != "" {
			if v, err := strconv.ParseFloat(rank, 64); err == nil {
				r.Rank, r.HasRank = v, true
			}
		}
		snap.Rows = append(snap.Rows, r)
	}
	return snap, nil
}

func colOr(cols map[string]int, key string) int {
	if col, ok := cols[key]; ok {
		return col
	}
	return -1
}

var msvColumn = regexp.MustCompile(`^(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{4}$`)

// LoadMSVWorkbook reads a monthly-search-volume workbook into a map of
// product key to month column to volume. The join column is "Product Key"
// when present, otherwise "Product Title" run through the product key
// normalization.
func LoadMSVWorkbook(path string) (map[string]map[string]float64, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open msv workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("msv workbook has no sheets: %w", internalerr.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read msv workbook: %w", err)
	}
	if len(rows) < 2 {
		return map[string]map[string]float64{}, nil
	}

	keyCol, titleKey := -1, false
	monthCols := map[int]string{}
	for col, header := range rows[0] {
		header = strings.TrimSpace(header)
		switch {
		case strings.EqualFold(header, "Product Key"):
			keyCol, titleKey = col, false
		case strings.EqualFold(header, "Product Title") && keyCol < 0:
			keyCol, titleKey = col, true
		case msvColumn.MatchString(header):
			monthCols[col] = header
		}
	}
	if keyCol < 0 {
		return nil, fmt.Errorf("msv workbook needs a Product Key or Product Title column: %w",
			internalerr.ErrInvalidInput)
	}

	out := make(map[string]map[string]float64)
	for _, row := range rows[1:] {
		key := cell(row, keyCol)
		if titleKey {
			key = consolidate.ProductKey(key)
		}
		if key == "" {
			continue
		}
		volumes := out[key]
		if volumes == nil {
			volumes = make(map[string]float64)
			out[key] = volumes
		}
		for col, name := range monthCols {
			raw := strings.ReplaceAll(cell(row, col), ",", "")
			if raw == "" {
				continue
			}
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				volumes[name] = v
			}
		}
	}
	return out, nil
}
