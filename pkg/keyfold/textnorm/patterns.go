package textnorm

import (
	"regexp"
	"strings"
)

// Size, volume and multipack quantity formats. Ordered so the compound
// "24x330ml" style patterns run before the bare unit patterns.
var sizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcase\s+of\s+\d+\b`),
	regexp.MustCompile(`(?i)\d+\s*x\s*\d+\s*[a-z]*`),
	regexp.MustCompile(`(?i)\b\d+x\b`),
	regexp.MustCompile(`(?i)\bx\s*\d+\b`),
	regexp.MustCompile(`(?i)\d+\s*(?:ml|cl|ltr|lt|l)\b`),
	regexp.MustCompile(`(?i)\d+\s*litres?\b`),
	regexp.MustCompile(`(?i)\d+\s*(?:kg|g|oz|lbs?)\b`),
	regexp.MustCompile(`(?i)\d+\s*pack\b`),
	regexp.MustCompile(`(?i)\d+\s*bottles?\b`),
	regexp.MustCompile(`(?i)\d+\s*cans?\b`),
	regexp.MustCompile(`(?i)\d+\s*miniatures?\b`),
}

// ABV, vol and proof statements.
var abvPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*%\s*(?:abv|vol)\b`),
	regexp.MustCompile(`\d+(?:\.\d+)?\s*%`),
	regexp.MustCompile(`(?i)\b\d+\s*proof\b`),
}

// Calendar years 1900-2099, standalone tokens only so brand tokens like
// "1800 Tequila" embedded in longer words survive.
var yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// Age statements in their hyphen and space variants.
var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(\d+)\s*-?\s*years?\s*-?\s*old\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s*yo\b`),
}

// The short form produced by CollapseAgeStatements.
var shortAgePattern = regexp.MustCompile(`(?i)\b\d+yr\b`)

// Barcode-length digit runs and bracketed asides.
var (
	longDigits  = regexp.MustCompile(`\d{5,}`)
	parenthetic = regexp.MustCompile(`\((?:[^)]*)\)`)
	bracketed   = regexp.MustCompile(`\[(?:[^\]]*)\]`)
)

// StripSizeUnits removes volume, weight and multipack quantity formats.
func StripSizeUnits(s string) string {
	for _, re := range sizePatterns {
		s = re.ReplaceAllString(s, " ")
	}
	return CollapseWhitespace(s)
}

// StripABV removes alcohol strength and proof statements.
func StripABV(s string) string {
	for _, re := range abvPatterns {
		s = re.ReplaceAllString(s, " ")
	}
	return CollapseWhitespace(s)
}

// StripVintageYears removes standalone 4-digit calendar years (1900-2099).
func StripVintageYears(s string) string {
	return CollapseWhitespace(yearPattern.ReplaceAllString(s, " "))
}

// CollapseAgeStatements rewrites "16 Year Old" and "16yo" to the short
// "16yr" form. Already-collapsed input passes through unchanged.
func CollapseAgeStatements(s string) string {
	for _, re := range agePatterns {
		s = re.ReplaceAllString(s, "${1}yr")
	}
	return s
}

// DropAgeStatements removes age statements entirely, including the short
// "16yr" form produced by CollapseAgeStatements.
func DropAgeStatements(s string) string {
	for _, re := range agePatterns {
		s = re.ReplaceAllString(s, " ")
	}
	s = shortAgePattern.ReplaceAllString(s, " ")
	return CollapseWhitespace(s)
}

// Vocabulary holds the configurable word and phrase lists stripped as
// commercial noise. Composition differs between deployments, so callers
// supply it; DefaultVocabulary covers the retail export corpus.
type Vocabulary struct {
	Gift      []string `yaml:"gift"`
	Multipack []string `yaml:"multipack"`
	Promo     []string `yaml:"promo"`
	Retailers []string `yaml:"retailers"`
}

// DefaultVocabulary returns the built-in commercial-noise lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Gift: []string{
			"gift", "gifts", "giftset", "gift set", "gift box", "gift pack",
			"giftbox", "giftpack", "hamper", "hampers", "present", "presents",
			"personalised", "personalized", "customised", "customized",
			"engraved", "engraving", "custom", "bespoke",
		},
		Multipack: []string{
			"mixed case", "tasting set", "case", "cases", "mixed", "selection",
			"variety", "assortment", "multipack", "multi", "tasting", "sampler",
			"bundle", "combo", "collection", "set", "sets", "duo", "trio",
			"pack", "packs",
		},
		Promo: []string{
			"limited edition", "black friday", "cyber monday", "special offer",
			"offer", "deal", "discount", "save", "buy", "shop", "bestseller",
			"sale", "special", "exclusive", "limited", "edition", "free",
			"delivery", "shipping", "clearance", "reduced", "promo",
			"promotion", "luxury", "new",
		},
		Retailers: []string{
			"laithwaites", "waitrose", "tesco", "sainsburys", "asda",
			"morrisons", "aldi", "lidl", "ocado", "amazon", "majestic",
			"oddbins", "greene king", "whisky exchange", "master of malt",
			"wine society", "cellar direct", "online", "store",
		},
	}
}

// NoiseStripper removes a Vocabulary from text. Multi-word entries are
// matched as whole phrases before single words are filtered token-wise.
type NoiseStripper struct {
	phrases []*regexp.Regexp
	words   map[string]struct{}
}

// NewNoiseStripper compiles a stripper for the given vocabulary.
func NewNoiseStripper(v Vocabulary) *NoiseStripper {
	ns := &NoiseStripper{words: make(map[string]struct{})}
	for _, list := range [][]string{v.Gift, v.Multipack, v.Promo, v.Retailers} {
		for _, entry := range list {
			entry = strings.ToLower(strings.TrimSpace(entry))
			if entry == "" {
				continue
			}
			if strings.Contains(entry, " ") {
				ns.phrases = append(ns.phrases,
					regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(entry)+`\b`))
				continue
			}
			ns.words[entry] = struct{}{}
		}
	}
	return ns
}

// Strip removes every vocabulary phrase and word from s as whole tokens.
func (ns *NoiseStripper) Strip(s string) string {
	for _, re := range ns.phrases {
		s = re.ReplaceAllString(s, " ")
	}
	kept := make([]string, 0, 8)
	for _, w := range strings.Fields(s) {
		if _, noisy := ns.words[strings.ToLower(strings.Trim(w, ".,;:!?"))]; noisy {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

var defaultStripper = NewNoiseStripper(DefaultVocabulary())

// StripAsides removes parenthetical and bracketed asides plus
// barcode-length digit runs.
func StripAsides(s string) string {
	s = parenthetic.ReplaceAllString(s, " ")
	s = bracketed.ReplaceAllString(s, " ")
	s = longDigits.ReplaceAllString(s, " ")
	return CollapseWhitespace(s)
}

// StripCommercialNoise removes sizes, ABV, vintage years, barcodes,
// bracketed asides and the default gift/promo/retailer vocabulary.
// Age statements are left alone; callers apply their own age policy.
func StripCommercialNoise(s string) string {
	s = StripAsides(s)
	s = StripSizeUnits(s)
	s = StripABV(s)
	s = StripVintageYears(s)
	s = defaultStripper.Strip(s)
	return CollapseWhitespace(s)
}
