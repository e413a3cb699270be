// Package extract derives short search keywords from noisy retail product
// titles. The local extractor is deterministic and rule-based: strip
// commercial noise, then assemble brand + differentiators + product type
// under a hard word cap. An LLM-backed strategy can stand in behind the
// same interface; its output passes the same validation.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/internalerr"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/textnorm"
)

// MaxWords is the default keyword length cap.
const MaxWords = 4

// Record is one product awaiting keyword extraction.
type Record struct {
	Title       string
	Brand       string
	ProductType string
	Merchant    string
}

// Strategy produces a search keyword for a product record. Implementations
// must respect the word cap; an empty keyword is a valid result for a title
// that is entirely noise.
type Strategy interface {
	Extract(ctx context.Context, rec Record) (string, error)
}

// ValidateKeyword checks a keyword against the contract: non-empty and at
// most maxWords words. Used on LLM output before acceptance.
func ValidateKeyword(keyword string, maxWords int) error {
	words := strings.Fields(keyword)
	if len(words) == 0 {
		return fmt.Errorf("empty keyword: %w", internalerr.ErrInvalidInput)
	}
	if len(words) > maxWords {
		return fmt.Errorf("keyword %q has %d words, cap is %d: %w",
			keyword, len(words), maxWords, internalerr.ErrInvalidInput)
	}
	return nil
}

// Config tunes the local extractor. Zero values select the defaults.
type Config struct {
	MaxWords int
	// KeepAgeToken retains collapsed age tokens ("16yr") as ordinary
	// differentiators. When false the age token survives only as a last
	// resort, when no other differentiator remains.
	KeepAgeToken bool
	Vocabulary   *textnorm.Vocabulary
	ProductTypes []string
	Descriptors  []string
}

// Extractor is the deterministic, rule-based strategy. Safe for concurrent
// use; all state is immutable after construction.
type Extractor struct {
	maxWords     int
	keepAge      bool
	stripper     *textnorm.NoiseStripper
	strip        *textnorm.Stoplist
	connectives  *textnorm.Stoplist
	productTypes []productTypeWord
}

type productTypeWord struct {
	word string
	re   *regexp.Regexp
}

// New builds an extractor from the config.
func New(cfg Config) *Extractor {
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = MaxWords
	}
	vocab := textnorm.DefaultVocabulary()
	if cfg.Vocabulary != nil {
		vocab = *cfg.Vocabulary
	}
	types := cfg.ProductTypes
	if types == nil {
		types = defaultProductTypeWords
	}
	descriptors := cfg.Descriptors
	if descriptors == nil {
		descriptors = defaultDescriptorWords
	}

	// The full strip set: everything the vocabulary removes plus the
	// descriptor words, consulted again at differentiator selection.
	strip := textnorm.NewStoplist(descriptors)
	for _, list := range [][]string{vocab.Gift, vocab.Multipack, vocab.Promo} {
		for _, w := range list {
			strip.Add(w)
		}
	}

	e := &Extractor{
		maxWords:    cfg.MaxWords,
		keepAge:     cfg.KeepAgeToken,
		stripper:    textnorm.NewNoiseStripper(vocab),
		strip:       strip,
		connectives: textnorm.NewStoplist(connectiveWords),
	}
	for _, w := range types {
		e.productTypes = append(e.productTypes, productTypeWord{
			word: w,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`),
		})
	}
	return e
}

// Default returns an extractor with the built-in configuration.
func Default() *Extractor {
	return New(Config{})
}

var (
	pipeTail  = regexp.MustCompile(`\|.*$`)
	ageToken  = regexp.MustCompile(`(?i)^\d+yr$`)
	titleCase = cases.Title(language.English)
)

// Extract derives the search keyword for one record. The context is unused;
// the extractor performs no I/O.
func (e *Extractor) Extract(_ context.Context, rec Record) (string, error) {
	brandWords := e.cleanBrand(rec.Brand)
	cleaned := e.preprocess(rec.Title, rec.Merchant)

	productType := e.findProductType(cleaned)

	brandSet := textnorm.NewStoplist(brandWords)
	var differentiators []string
	var age string
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) < 3 || e.connectives.Has(tok) {
			continue
		}
		if brandSet.Has(tok) {
			continue
		}
		if tok == productType {
			continue
		}
		if e.strip.Has(tok) {
			continue
		}
		if ageToken.MatchString(tok) {
			if e.keepAge {
				differentiators = append(differentiators, tok)
			} else if age == "" {
				age = tok
			}
			continue
		}
		differentiators = append(differentiators, tok)
	}
	// Default age policy: the token earns its place only when nothing else
	// differentiates the product.
	if age != "" && len(differentiators) == 0 {
		differentiators = append(differentiators, age)
	}

	parts := make([]string, 0, e.maxWords)
	if len(brandWords) > 2 {
		brandWords = brandWords[:2]
	}
	parts = append(parts, brandWords...)

	slots := e.maxWords - len(parts)
	if productType != "" {
		slots--
	}
	for _, d := range differentiators {
		if slots <= 0 {
			break
		}
		parts = append(parts, d)
		slots--
	}
	if productType != "" && len(parts) < e.maxWords {
		parts = append(parts, productType)
	}

	parts = textnorm.Deduplicate(parts)
	if len(parts) > e.maxWords {
		parts = parts[:e.maxWords]
	}
	if len(parts) == 0 {
		return "", nil
	}
	return titleCase.String(strings.Join(parts, " ")), nil
}

// preprocess runs the full noise-stripping pipeline, returning lowercase
// deduplicated text.
func (e *Extractor) preprocess(title, merchant string) string {
	s := textnorm.FoldAccents(title)
	s = textnorm.StripMarkup(s)
	s = strings.ToLower(s)

	if merchant != "" {
		s = strings.ReplaceAll(s, strings.ToLower(strings.TrimSpace(merchant)), " ")
	}

	s = textnorm.CollapseAgeStatements(s)
	s = textnorm.StripSizeUnits(s)
	s = textnorm.StripABV(s)
	s = textnorm.StripVintageYears(s)
	s = pipeTail.ReplaceAllString(s, " ")
	s = textnorm.StripAsides(s)
	s = textnorm.StripPossessives(s)
	s = e.stripper.Strip(s)

	tokens := textnorm.Deduplicate(strings.Fields(s))
	return strings.Join(tokens, " ")
}

// cleanBrand folds and trims the brand to at most two significant words.
func (e *Extractor) cleanBrand(brand string) []string {
	if brand == "" {
		return nil
	}
	s := textnorm.FoldAccents(brand)
	s = textnorm.StripPossessives(s)

	var out []string
	for _, w := range strings.Fields(s) {
		if len(w) <= 2 || e.connectives.Has(w) {
			continue
		}
		out = append(out, w)
		if len(out) == 2 {
			break
		}
	}
	return out
}

// findProductType returns the first product-type word present in the text.
// List order is the priority order.
func (e *Extractor) findProductType(text string) string {
	for _, pt := range e.productTypes {
		if pt.re.MatchString(text) {
			return pt.word
		}
	}
	return ""
}
