package extract

import (
	"context"
	"strings"
	"testing"
)

func extractOne(t *testing.T, e *Extractor, rec Record) string {
	t.Helper()
	kw, err := e.Extract(context.Background(), rec)
	if err != nil {
		t.Fatalf("Extract(%q): %v", rec.Title, err)
	}
	return kw
}

func TestExtractBrandAgeAndType(t *testing.T) {
	e := Default()
	kw := extractOne(t, e, Record{
		Title: "Balvenie 12 Year Old The Sweet Toast of American Oak Single Malt Whisky",
		Brand: "Balvenie",
	})

	words := strings.Fields(kw)
	if len(words) == 0 || len(words) > 4 {
		t.Fatalf("keyword %q has %d words", kw, len(words))
	}
	lower := strings.ToLower(kw)
	if !strings.Contains(lower, "balvenie") {
		t.Errorf("brand missing from %q", kw)
	}
	if !strings.Contains(lower, "whisky") {
		t.Errorf("product type missing from %q", kw)
	}
}

func TestExtractDropsSizeTokens(t *testing.T) {
	e := Default()
	kw := extractOne(t, e, Record{
		Title: "Blantons Single Barrel Bourbon 750ml",
		Brand: "Blantons",
	})

	if strings.Contains(strings.ToLower(kw), "750") {
		t.Errorf("size token leaked into %q", kw)
	}
	if n := len(strings.Fields(kw)); n > 4 {
		t.Errorf("keyword %q exceeds word cap with %d words", kw, n)
	}
	if !strings.Contains(strings.ToLower(kw), "bourbon") {
		t.Errorf("product type missing from %q", kw)
	}
}

func TestExtractStripsGiftLanguage(t *testing.T) {
	e := Default()
	kw := extractOne(t, e, Record{
		Title: "Personalised Luxury Grey Goose Vodka Hamper Gift",
		Brand: "Grey Goose",
	})

	allowed := map[string]bool{"grey": true, "goose": true, "vodka": true}
	for _, w := range strings.Fields(strings.ToLower(kw)) {
		if !allowed[w] {
			t.Errorf("unexpected token %q in %q", w, kw)
		}
	}
	if !strings.Contains(strings.ToLower(kw), "grey goose") {
		t.Errorf("brand missing from %q", kw)
	}
}

func TestExtractFoldsAccents(t *testing.T) {
	e := Default()
	kw := extractOne(t, e, Record{
		Title: "Tread Softly Rosé Wine",
		Brand: "Tread Softly",
	})

	lower := strings.ToLower(kw)
	if !strings.Contains(lower, "rose") {
		t.Errorf("accent fold lost the varietal: %q", kw)
	}
	if strings.Contains(lower, "ros ") || strings.HasSuffix(lower, "ros") {
		t.Errorf("accented letter dropped instead of replaced: %q", kw)
	}
}

func TestExtractBrandOnce(t *testing.T) {
	e := Default()
	kw := extractOne(t, e, Record{
		Title: "Edmunds Cocktails 1L Edmunds Strawberry Daiquiri Cocktail",
		Brand: "Edmunds",
	})

	count := 0
	for _, w := range strings.Fields(strings.ToLower(kw)) {
		if w == "edmunds" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("brand appears %d times in %q, want exactly once", count, kw)
	}
}

func TestExtractBrandCapTwoWords(t *testing.T) {
	e := Default()
	kw := extractOne(t, e, Record{
		Title: "Moët & Chandon Brut Imperial Champagne",
		Brand: "Moët & Chandon Champagne Company",
	})

	lower := strings.ToLower(kw)
	if !strings.HasPrefix(lower, "moet chandon") {
		t.Errorf("brand should fold to its first two significant words: %q", kw)
	}
	if n := len(strings.Fields(kw)); n > 4 {
		t.Errorf("keyword %q exceeds word cap", kw)
	}
}

func TestExtractMerchantStripped(t *testing.T) {
	e := Default()
	kw := extractOne(t, e, Record{
		Title:    "Greene King Bonkers Conkers Ale",
		Brand:    "Bonkers Conkers",
		Merchant: "Greene King",
	})

	lower := strings.ToLower(kw)
	if strings.Contains(lower, "greene") || strings.Contains(lower, "king") {
		t.Errorf("merchant leaked into %q", kw)
	}
	if !strings.Contains(lower, "ale") {
		t.Errorf("product type missing from %q", kw)
	}
}

func TestExtractAgeTokenPolicies(t *testing.T) {
	title := "Lagavulin 16 Year Old Single Malt Whisky"

	// Default policy: the age token fills in only when it is the sole
	// remaining differentiator, which it is here after descriptor
	// stripping.
	kw := extractOne(t, Default(), Record{Title: title, Brand: "Lagavulin"})
	if !strings.Contains(strings.ToLower(kw), "16yr") {
		t.Errorf("sole-differentiator age token missing from %q", kw)
	}

	// With other differentiators present the default drops the age token.
	kw = extractOne(t, Default(), Record{
		Title: "Glenfiddich 12 Year Old Orchard Experiment Whisky",
		Brand: "Glenfiddich",
	})
	if strings.Contains(strings.ToLower(kw), "12yr") {
		t.Errorf("age token should yield to real differentiators: %q", kw)
	}

	// KeepAgeToken retains it as an ordinary differentiator.
	keep := New(Config{KeepAgeToken: true})
	kw = extractOne(t, keep, Record{
		Title: "Glenfiddich 12 Year Old Orchard Experiment Whisky",
		Brand: "Glenfiddich",
	})
	if !strings.Contains(strings.ToLower(kw), "12yr") {
		t.Errorf("KeepAgeToken should retain the age token: %q", kw)
	}
}

func TestExtractEmptyAndNoiseTitles(t *testing.T) {
	e := Default()

	if kw := extractOne(t, e, Record{Title: ""}); kw != "" {
		t.Errorf("empty title produced %q", kw)
	}
	if kw := extractOne(t, e, Record{Title: "Special Offer Gift Set Sale"}); kw != "" {
		t.Errorf("all-noise title produced %q, want empty", kw)
	}
}

func TestExtractNeverExceedsCap(t *testing.T) {
	e := Default()
	titles := []string{
		"Very Long Craft Independent Brewery Double Dry Hopped Hazy India Pale Ale Special Release",
		"Château Margaux Grand Vin Premier Cru Classé Red Wine 2015 750ml Gift Box",
		"12345 67890",
	}
	for _, title := range titles {
		kw := extractOne(t, e, Record{Title: title, Brand: "Some Brand Name Here"})
		if n := len(strings.Fields(kw)); n > 4 {
			t.Errorf("Extract(%q) = %q: %d words", title, kw, n)
		}
	}
}

func TestValidateKeyword(t *testing.T) {
	if err := ValidateKeyword("Grey Goose Vodka", 4); err != nil {
		t.Errorf("valid keyword rejected: %v", err)
	}
	if err := ValidateKeyword("", 4); err == nil {
		t.Error("empty keyword accepted")
	}
	if err := ValidateKeyword("one two three four five", 4); err == nil {
		t.Error("over-cap keyword accepted")
	}
}
