package classify

import (
	"errors"
	"testing"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/internalerr"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/taxonomy"
)

func beveragesIndex() *taxonomy.Index {
	x := taxonomy.NewIndex(nil)
	x.AddAlias("BWS", "Alcoholic Beverages")
	x.AddRows([]taxonomy.Row{
		{ProductType: "Alcoholic Beverages", Level1: "Spirits", Level2: "Whisky", Level3: "Single Malt"},
		{ProductType: "Alcoholic Beverages", Level1: "Spirits", Level2: "Whisky", Level3: "Bourbon"},
		{ProductType: "Alcoholic Beverages", Level1: "Spirits", Level2: "Vodka"},
		{ProductType: "Alcoholic Beverages", Level1: "Beer", Level2: "Lager"},
		{ProductType: "Alcoholic Beverages", Level1: "Wine", Level2: "Red Wine"},
		{ProductType: "Alcoholic Beverages", Level1: "Wine", Level2: "Rose Wine"},
	})
	x.ApplyBoosts(taxonomy.DefaultBoosts())
	return x
}

func TestClassifyBourbonBeatsGenericWhisky(t *testing.T) {
	c := New(beveragesIndex(), nil, nil, nil)

	res, err := c.Classify("Jim Beam Bourbon", "Alcoholic Beverages")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Path.Level3 != "Bourbon" {
		t.Errorf("Level3 = %q, want Bourbon (got path %+v via %q)",
			res.Path.Level3, res.Path, res.Keyword)
	}
}

func TestClassifyNoMatchUsesDefaultLevel1(t *testing.T) {
	c := New(beveragesIndex(), nil, nil, nil)

	res, err := c.Classify("Unrecognizable Gibberish Product Xyz123", "Alcoholic Beverages")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	want := Path{Level1: "Alcoholic Beverages", Level2: Other, Level3: Other}
	if res.Path != want {
		t.Errorf("Path = %+v, want %+v", res.Path, want)
	}
	if res.Matched() {
		t.Error("gibberish title should not report a match")
	}
}

func TestClassifyLevel1NeverOther(t *testing.T) {
	c := New(beveragesIndex(), nil, nil, nil)
	titles := []string{
		"", "   ", "Johnnie Walker Black Label", "12345", "何かの製品",
	}
	for _, title := range titles {
		res, err := c.Classify(title, "Alcoholic Beverages")
		if err != nil {
			t.Fatalf("Classify(%q): %v", title, err)
		}
		if res.Path.Level1 == Other || res.Path.Level1 == "" {
			t.Errorf("Classify(%q).Level1 = %q, must never be Other or empty",
				title, res.Path.Level1)
		}
	}
}

func TestClassifySpellingVariant(t *testing.T) {
	c := New(beveragesIndex(), nil, nil, nil)

	// "whiskey" canonicalizes to "whisky" before matching.
	res, err := c.Classify("Jameson Irish Whiskey", "Alcoholic Beverages")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Path.Level2 != "Whisky" {
		t.Errorf("Level2 = %q, want Whisky (path %+v)", res.Path.Level2, res.Path)
	}
}

func TestClassifyPossessiveTitle(t *testing.T) {
	c := New(beveragesIndex(), nil, nil, nil)

	// "Jack Daniel's" must reach the "jack daniels" brand keyword: the
	// apostrophe is stripped before matching.
	res, err := c.Classify("Jack Daniel's Old No.7 Tennessee Whiskey", "Alcoholic Beverages")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Path.Level3 != "Bourbon" {
		t.Errorf("Level3 = %q, want Bourbon (path %+v via %q)",
			res.Path.Level3, res.Path, res.Keyword)
	}
	if res.Keyword != "jack daniels" {
		t.Errorf("Keyword = %q, want the brand keyword", res.Keyword)
	}
}

func TestClassifyAccentedTitle(t *testing.T) {
	c := New(beveragesIndex(), nil, nil, nil)

	// "Rosé" folds to "rose" before matching, so the full "rose wine"
	// phrase beats the bare "wine" keyword.
	res, err := c.Classify("Tread Softly Rosé Wine", "Alcoholic Beverages")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Path.Level2 != "Rose Wine" {
		t.Errorf("Level2 = %q, want Rose Wine (path %+v via %q)",
			res.Path.Level2, res.Path, res.Keyword)
	}
}

func TestClassifyAlias(t *testing.T) {
	c := New(beveragesIndex(), nil, nil, nil)

	res, err := c.Classify("Smirnoff Red Label", "BWS")
	if err != nil {
		t.Fatalf("Classify via alias: %v", err)
	}
	if res.Path.Level2 != "Vodka" {
		t.Errorf("Level2 = %q, want Vodka", res.Path.Level2)
	}
}

func TestClassifyUnknownProductType(t *testing.T) {
	c := New(beveragesIndex(), nil, nil, nil)

	_, err := c.Classify("Anything", "Cursed Artifacts")
	if err == nil {
		t.Fatal("expected error for product type with no taxonomy and no default")
	}
	var unknown *internalerr.UnknownProductTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownProductTypeError, got %T", err)
	}
}

func TestClassifyDefaultLabelWithoutTaxonomy(t *testing.T) {
	// "Furniture" has a default label but no taxonomy rows here: graceful
	// default, not an error.
	c := New(beveragesIndex(), nil, nil, nil)

	res, err := c.Classify("Oak Dining Table", "Furniture")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Path.Level1 != "Furniture" || res.Path.Level2 != Other {
		t.Errorf("Path = %+v, want default Furniture/Other/Other", res.Path)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := New(beveragesIndex(), nil, nil, nil)

	first, err := c.Classify("Glenfiddich 12yr Single Malt", "Alcoholic Beverages")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := c.Classify("Glenfiddich 12yr Single Malt", "Alcoholic Beverages")
		if again.Path != first.Path {
			t.Fatalf("run %d: path %+v differs from %+v", i, again.Path, first.Path)
		}
	}
}

// Equal-length keyword matches resolve to the broader category. This is
// deliberate policy, not a bug: a brand keyword of the same length as a
// broad category keyword loses to the broad category.
func TestClassifyTieBreakPrefersBroaderCategory(t *testing.T) {
	x := taxonomy.NewIndex(nil)
	x.AddRows([]taxonomy.Row{
		{ProductType: "Alcoholic Beverages", Level1: "Beer"},
		{ProductType: "Alcoholic Beverages", Level1: "Spirits", Level2: "Liqueur", Level3: "Cream Liqueur"},
	})
	// Same 4-char keyword length on both sides of the tie.
	x.AddKeywords("Alcoholic Beverages", "Beer", []string{"malt"})
	x.AddKeywords("Alcoholic Beverages", "Spirits > Liqueur > Cream Liqueur", []string{"milk"})

	c := New(x, nil, nil, nil)
	res, err := c.Classify("malt and milk special", "Alcoholic Beverages")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Path.Level1 != "Beer" {
		t.Errorf("tie should land on the broader category, got %+v", res.Path)
	}
	if res.Keyword != "malt" {
		t.Errorf("Keyword = %q, want the winning category's keyword", res.Keyword)
	}
}

func TestClassifyAccessoryFilter(t *testing.T) {
	x := taxonomy.NewIndex(nil)
	x.AddRows([]taxonomy.Row{
		{ProductType: "Electronics", Level1: "Electronics", Level2: "Smartphones"},
		{ProductType: "Electronics", Level1: "Electronics", Level2: "Phone Accessories", Level3: "Phone Cases"},
	})
	x.ApplyBoosts(taxonomy.DefaultBoosts())

	c := New(x, nil, nil, nil)
	res, err := c.Classify("iPhone 15 Pro Silicone Case", "Electronics")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Path.Level3 != "Phone Cases" {
		t.Errorf("accessory title landed on %+v, want Phone Cases", res.Path)
	}
}
