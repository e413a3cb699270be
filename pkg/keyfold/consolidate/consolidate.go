// Package consolidate merges monthly product export snapshots into one
// master table: a union of products keyed by normalized title, December
// pricing and availability, per-month popularity ranks and the derived
// peak columns.
package consolidate

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/classify"
)

// Months is the snapshot month order.
var Months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MSVYears are the years carried as monthly search volume columns.
var MSVYears = []int{2023, 2024, 2025}

var keyCleaner = regexp.MustCompile(`[^a-z0-9\s]`)

// ProductKey normalizes a title for cross-month matching: lowercase,
// alphanumeric and spaces only, whitespace collapsed.
func ProductKey(title string) string {
	key := strings.ToLower(title)
	key = keyCleaner.ReplaceAllString(key, "")
	return strings.Join(strings.Fields(key), " ")
}

// Row is one product line from a monthly export.
type Row struct {
	Title        string
	Brand        string
	Rank         float64
	HasRank      bool
	MaxPrice     string
	Availability string
}

// Snapshot is one month's export.
type Snapshot struct {
	Month string
	Rows  []Row
}

// Product is one consolidated master-table line.
type Product struct {
	Key             string
	Title           string
	Brand           string
	Path            classify.Path
	MaxPrice        string
	Availability    string
	Popularity      map[string]float64
	PeakPopularity  string
	Keyword         string
	MSV             map[string]float64
	PeakSeasonality string
}

// Defaults for products absent from the December snapshot.
const (
	PriceUnavailable = "N/A"
	PotentialGap     = "Potential Gap"
)

// Consolidate unions the snapshots into the master table. The first
// occurrence of a product key wins its title and brand; December supplies
// price and availability; every snapshot contributes its popularity rank.
// When a classifier is given, each product gets its category path.
func Consolidate(snapshots []Snapshot, classifier *classify.Classifier, productType string) ([]*Product, error) {
	byKey := make(map[string]*Product)
	var order []string

	for _, snap := range snapshots {
		for _, row := range snap.Rows {
			key := ProductKey(row.Title)
			if key == "" {
				continue
			}
			p, ok := byKey[key]
			if !ok {
				p = &Product{
					Key:        key,
					Title:      row.Title,
					Brand:      row.Brand,
					Popularity: make(map[string]float64),
					MSV:        make(map[string]float64),
				}
				byKey[key] = p
				order = append(order, key)
			}
			if row.HasRank {
				if _, seen := p.Popularity[snap.Month]; !seen {
					p.Popularity[snap.Month] = row.Rank
				}
			}
			if snap.Month == "Dec" {
				if p.MaxPrice == "" && strings.TrimSpace(row.MaxPrice) != "" {
					p.MaxPrice = row.MaxPrice
				}
				if p.Availability == "" && strings.TrimSpace(row.Availability) != "" {
					p.Availability = row.Availability
				}
			}
		}
	}

	products := make([]*Product, 0, len(order))
	for _, key := range order {
		p := byKey[key]
		if p.MaxPrice == "" {
			p.MaxPrice = PriceUnavailable
		}
		if p.Availability == "" {
			p.Availability = PotentialGap
		}
		p.PeakPopularity = PeakPopularity(p.Popularity)

		if classifier != nil {
			res, err := classifier.Classify(p.Title, productType)
			if err != nil {
				return nil, err
			}
			p.Path = res.Path
		}
		products = append(products, p)
	}
	return products, nil
}

// PeakPopularity names the months with stable popularity among the four
// best-ranked months. Lower rank means more popular. Fewer than three
// ranked months yields an empty string; when the top four have no months
// within one standard deviation of their mean, the single best month is
// returned. Output is best first, comma-separated.
func PeakPopularity(ranks map[string]float64) string {
	type monthRank struct {
		month string
		pos   int
		rank  float64
	}
	var ranked []monthRank
	for i, m := range Months {
		if r, ok := ranks[m]; ok {
			ranked = append(ranked, monthRank{month: m, pos: i, rank: r})
		}
	}
	if len(ranked) < 3 {
		return ""
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].rank != ranked[j].rank {
			return ranked[i].rank < ranked[j].rank
		}
		return ranked[i].pos < ranked[j].pos
	})
	top := ranked
	if len(top) > 4 {
		top = top[:4]
	}

	mean := 0.0
	for _, mr := range top {
		mean += mr.rank
	}
	mean /= float64(len(top))
	variance := 0.0
	for _, mr := range top {
		d := mr.rank - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(top)))

	var stable []string
	for _, mr := range top {
		if math.Abs(mr.rank-mean) <= stddev {
			stable = append(stable, mr.month)
		}
	}
	if len(stable) == 0 {
		return ranked[0].month
	}
	return strings.Join(stable, ", ")
}

// MSVColumns lists the monthly search volume column names, "Jan 2023"
// through "Dec 2025".
func MSVColumns() []string {
	cols := make([]string, 0, len(MSVYears)*len(Months))
	for _, year := range MSVYears {
		for _, m := range Months {
			cols = append(cols, m+" "+strconv.Itoa(year))
		}
	}
	return cols
}

// MergeMSV attaches monthly search volumes (column name to value, keyed by
// product key) and computes each product's peak seasonality.
func MergeMSV(products []*Product, msv map[string]map[string]float64) {
	for _, p := range products {
		if volumes, ok := msv[p.Key]; ok {
			for col, v := range volumes {
				p.MSV[col] = v
			}
		}
		p.PeakSeasonality = PeakSeasonality(p.MSV)
	}
}

// PeakSeasonality names the months with the highest search volume: of the
// four biggest months, those within one standard deviation below their
// mean, ordered by volume, year stripped. No volumes yields "".
func PeakSeasonality(msv map[string]float64) string {
	type colVol struct {
		col string
		pos int
		vol float64
	}
	var vols []colVol
	for i, col := range MSVColumns() {
		if v, ok := msv[col]; ok {
			vols = append(vols, colVol{col: col, pos: i, vol: v})
		}
	}
	if len(vols) == 0 {
		return ""
	}

	sort.Slice(vols, func(i, j int) bool {
		if vols[i].vol != vols[j].vol {
			return vols[i].vol > vols[j].vol
		}
		return vols[i].pos < vols[j].pos
	})
	top := vols
	if len(top) > 4 {
		top = top[:4]
	}
	if len(top) < 2 {
		return monthName(top[0].col)
	}

	mean := 0.0
	for _, cv := range top {
		mean += cv.vol
	}
	mean /= float64(len(top))
	variance := 0.0
	for _, cv := range top {
		d := cv.vol - mean
		variance += d * d
	}
	threshold := mean - math.Sqrt(variance/float64(len(top)))

	var peaks []string
	for _, cv := range top {
		if cv.vol >= threshold {
			peaks = append(peaks, monthName(cv.col))
		}
	}
	return strings.Join(peaks, ", ")
}

func monthName(col string) string {
	name, _, _ := strings.Cut(col, " ")
	return name
}
