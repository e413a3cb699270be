package config

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/consolidate"
)

const masterSheet = "Master"

// WriteMaster writes the consolidated master table to a workbook. Column
// layout is fixed: identity and pricing first, then the monthly popularity
// ranks, the monthly search volumes, and the derived peak columns.
func WriteMaster(path string, products []*consolidate.Product) error {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", masterSheet)

	headers := []string{
		"Product Title", "Product Max Price",
		"Level 1 Category", "Level 2 Category", "Level 3 Category",
		"Product Keyword", "Product Keyword Avg MSV",
		"Product Brand", "Availability",
	}
	for _, m := range consolidate.Months {
		headers = append(headers, "Product Popularity "+m)
	}
	msvCols := consolidate.MSVColumns()
	headers = append(headers, msvCols...)
	headers = append(headers, "Peak Seasonality", "Peak Popularity")

	if err := writeRow(f, 1, toAny(headers)); err != nil {
		return err
	}

	for i, p := range products {
		row := []any{
			p.Title, p.MaxPrice,
			p.Path.Level1, p.Path.Level2, p.Path.Level3,
			p.Keyword, avgMSV(p.MSV),
			p.Brand, p.Availability,
		}
		for _, m := range consolidate.Months {
			if rank, ok := p.Popularity[m]; ok {
				row = append(row, rank)
			} else {
				row = append(row, nil)
			}
		}
		for _, col := range msvCols {
			if v, ok := p.MSV[col]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		row = append(row, p.PeakSeasonality, p.PeakPopularity)

		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save master workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(masterSheet, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func avgMSV(msv map[string]float64) any {
	if len(msv) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range msv {
		sum += v
	}
	return sum / float64(len(msv))
}
