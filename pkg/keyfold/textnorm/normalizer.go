// Package textnorm provides the shared text-normalization primitives used by
// classification and keyword extraction. Every operation is total over
// arbitrary input and idempotent: applying it twice yields the same result
// as applying it once.
package textnorm

import (
	"strings"
	"unicode"

	xhtml "golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldOverrides handles letters that do not decompose into base + combining
// mark, so NFD stripping alone would leave them untouched.
var foldOverrides = strings.NewReplacer(
	"ß", "ss", "ẞ", "SS",
	"ø", "o", "Ø", "O",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
)

// FoldAccents maps accented Latin letters to their unaccented equivalents
// (é→e, ñ→n, ç→c). Letters are always replaced, never deleted: "Rosé"
// becomes "Rose", not "Ros".
func FoldAccents(s string) string {
	s = foldOverrides.Replace(s)

	// The chain is stateful, so build it per call.
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, s)
	if err != nil {
		// Total function: malformed input passes through unchanged.
		return s
	}
	return folded
}

var apostrophes = strings.NewReplacer("'", "", "’", "", "‘", "", "`", "", "ʼ", "")

// StripPossessives removes apostrophes so possessives stay one token
// ("Daniel's" → "Daniels"), then replaces remaining separator punctuation
// (&, pipes, commas, brackets) with spaces and collapses the result.
func StripPossessives(s string) string {
	s = apostrophes.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return CollapseWhitespace(b.String())
}

// StripMarkup drops embedded HTML tags and decodes entities. Scraped export
// feeds occasionally carry markup inside product titles.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	tok := xhtml.NewTokenizer(strings.NewReader(s))
	for {
		tt := tok.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		if tt == xhtml.TextToken {
			b.Write(tok.Text())
		}
	}
	return CollapseWhitespace(b.String())
}

// CollapseWhitespace trims the string and squeezes internal whitespace runs
// into single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Variants maps spelling variants onto a canonical form so that
// whisky/whiskey or moisturiser/moisturizer match the same keywords.
type Variants struct {
	canonical map[string]string
}

// NewVariants creates an empty variant table.
func NewVariants() *Variants {
	return &Variants{canonical: make(map[string]string)}
}

// DefaultVariants returns the spelling pairs the retail corpus needs.
// The first form of each pair is canonical.
func DefaultVariants() *Variants {
	v := NewVariants()
	v.AddPair("whisky", "whiskey")
	v.AddPair("moisturiser", "moisturizer")
	v.AddPair("doughnut", "donut")
	v.AddPair("yoghurt", "yogurt")
	return v
}

// AddPair registers variant as an alternate spelling of canonical.
func (v *Variants) AddPair(canonical, variant string) {
	v.canonical[strings.ToLower(variant)] = strings.ToLower(canonical)
}

// Canonical returns the canonical spelling of word, or word itself when no
// variant is registered. Case-insensitive; the result is lowercase.
func (v *Variants) Canonical(word string) string {
	w := strings.ToLower(word)
	if c, ok := v.canonical[w]; ok {
		return c
	}
	return w
}

// Apply rewrites every registered variant inside s to its canonical form,
// preserving the rest of the string. Matching is case-insensitive and
// operates on whole words.
func (v *Variants) Apply(s string) string {
	if len(v.canonical) == 0 {
		return s
	}
	words := strings.Fields(s)
	for i, w := range words {
		lw := strings.ToLower(w)
		if c, ok := v.canonical[lw]; ok {
			words[i] = c
		}
	}
	return strings.Join(words, " ")
}

// Forms returns every registered spelling of word, canonical form first.
// A word with no variants returns just itself.
func (v *Variants) Forms(word string) []string {
	w := strings.ToLower(word)
	canon := w
	if c, ok := v.canonical[w]; ok {
		canon = c
	}
	forms := []string{canon}
	for variant, c := range v.canonical {
		if c == canon && variant != canon {
			forms = append(forms, variant)
		}
	}
	return forms
}
