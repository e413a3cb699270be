// Package classify assigns product titles to three-level category paths.
// Matching is keyword-driven against the taxonomy index: the longest
// matching keyword wins, with ties going to the broader category. Level 1
// always gets a value; levels 2 and 3 fall back to "Other".
package classify

import (
	"regexp"
	"strings"
	"sync"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/accessory"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/internalerr"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/taxonomy"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/textnorm"
)

// Other fills category levels that no keyword resolved.
const Other = "Other"

// Uncategorized is the level-1 label for product types with no configured
// default.
const Uncategorized = "Uncategorized"

// Path is a resolved three-level category assignment.
type Path struct {
	Level1 string
	Level2 string
	Level3 string
}

// Result carries the assignment plus the match that produced it. An empty
// CategoryPath means nothing matched and Path holds the defaults.
type Result struct {
	Path         Path
	CategoryPath string
	Keyword      string
}

// Matched reports whether a taxonomy keyword produced the assignment.
func (r Result) Matched() bool { return r.CategoryPath != "" }

// Labels maps product types to their default level-1 category. Level 1 is
// never "Other": unmatched titles land on the product type's base label.
type Labels map[string]string

// For returns the default level-1 label for a product type.
func (l Labels) For(productType string) (string, error) {
	if label, ok := l[productType]; ok {
		return label, nil
	}
	return "", &internalerr.UnknownProductTypeError{ProductType: productType}
}

// DefaultLabels returns the built-in default level-1 labels.
func DefaultLabels() Labels {
	return Labels{
		"Alcoholic Beverages": "Alcoholic Beverages",
		"Pets":                "Pet Supplies",
		"Electronics":         "Electronics",
		"F&F (Later)":         "Food & Beverages",
		"Party & Celebration": "Party Supplies",
		"Toys":                "Toys & Games",
		"Baby & Toddler":      "Baby Products",
		"Health & Beauty":     "Health & Beauty",
		"Sporting Goods":      "Sports & Fitness",
		"Home & Garden":       "Home & Living",
		"Luggage & Bags":      "Luggage & Bags",
		"Furniture":           "Furniture",
		"Cameras & Optics":    "Cameras & Photography",
		"Hardware":            "Hardware & Tools",
	}
}

// Classifier resolves titles against a taxonomy index, filtered through
// accessory disambiguation. Safe for concurrent use.
type Classifier struct {
	index    *taxonomy.Index
	disamb   *accessory.Disambiguator
	variants *textnorm.Variants
	labels   Labels
}

// New creates a classifier. Nil disamb, variants or labels select the
// defaults; index is required.
func New(index *taxonomy.Index, disamb *accessory.Disambiguator, variants *textnorm.Variants, labels Labels) *Classifier {
	if disamb == nil {
		disamb = accessory.DefaultDisambiguator()
	}
	if variants == nil {
		variants = textnorm.DefaultVariants()
	}
	if labels == nil {
		labels = DefaultLabels()
	}
	return &Classifier{index: index, disamb: disamb, variants: variants, labels: labels}
}

// Classify assigns the title to a category path for the product type.
//
// The title is normalized before matching: accents fold to ASCII,
// possessives lose their apostrophes, the result is lowercased and
// spelling variants are canonicalized. Accessory signals then filter the
// eligible categories, and every remaining category's keywords are tried
// as whole-word matches.
// The longest matching keyword wins; on equal length the broader category
// (fewer path levels) wins. A blank title or a title with no match gets
// the product type's default level-1 label with "Other" below it.
//
// An UnknownProductTypeError is returned only when the product type has
// neither taxonomy entries nor a default label.
func (c *Classifier) Classify(title, productType string) (Result, error) {
	pt := c.index.Resolve(productType)

	cats, catErr := c.index.Categories(productType)
	if catErr != nil {
		label, err := c.labels.For(pt)
		if err != nil {
			return Result{}, err
		}
		return Result{Path: Path{Level1: label, Level2: Other, Level3: Other}}, nil
	}

	titleLower := strings.ToLower(textnorm.FoldAccents(title))
	titleLower = textnorm.StripPossessives(titleLower)
	titleLower = c.variants.Apply(titleLower)
	if strings.TrimSpace(titleLower) == "" {
		return Result{Path: c.defaultPath(pt)}, nil
	}

	flags := c.disamb.Evaluate(pt, titleLower)

	var best *taxonomy.Category
	var bestKeyword string

	for _, cat := range cats {
		if !c.disamb.Permits(pt, flags, cat.Path) {
			continue
		}
		// Keywords are ordered longest first; the first hit is the
		// category's strongest claim.
		for _, kw := range cat.Keywords {
			if !matchWord(titleLower, kw) {
				continue
			}
			switch {
			case len(kw) > len(bestKeyword):
				best, bestKeyword = cat, kw
			case len(kw) == len(bestKeyword) && best != nil && cat.Specificity() < best.Specificity():
				best, bestKeyword = cat, kw
			}
			break
		}
	}

	if best == nil {
		return Result{Path: c.defaultPath(pt)}, nil
	}

	path := Path{Level1: best.Levels[0], Level2: Other, Level3: Other}
	if len(best.Levels) > 1 {
		path.Level2 = best.Levels[1]
	}
	if len(best.Levels) > 2 {
		path.Level3 = best.Levels[2]
	}
	return Result{Path: path, CategoryPath: best.Path, Keyword: bestKeyword}, nil
}

func (c *Classifier) defaultPath(productType string) Path {
	label, err := c.labels.For(productType)
	if err != nil {
		label = Uncategorized
	}
	return Path{Level1: label, Level2: Other, Level3: Other}
}

// Word-boundary patterns per keyword, compiled once. Taxonomies are small
// and stable, so the cache never needs eviction.
var (
	patternMu sync.RWMutex
	patterns  = make(map[string]*regexp.Regexp)
)

func matchWord(title, keyword string) bool {
	patternMu.RLock()
	re, ok := patterns[keyword]
	patternMu.RUnlock()
	if !ok {
		re = regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
		patternMu.Lock()
		patterns[keyword] = re
		patternMu.Unlock()
	}
	return re.MatchString(title)
}
