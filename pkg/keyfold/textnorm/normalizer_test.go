package textnorm

import (
	"reflect"
	"strings"
	"testing"
)

func TestFoldAccentsReplacesNotDeletes(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Tread Softly Rosé Wine", "Tread Softly Rose Wine"},
		{"Château Margaux", "Chateau Margaux"},
		{"Piña Colada", "Pina Colada"},
		{"Weißbier", "Weissbier"},
		{"Smørrebrød", "Smorrebrod"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}
	for _, c := range cases {
		got := FoldAccents(c.in)
		if got != c.want {
			t.Errorf("FoldAccents(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFoldAccentsIdempotent(t *testing.T) {
	in := "Crème Brûlée Liqueur"
	once := FoldAccents(in)
	twice := FoldAccents(once)
	if once != twice {
		t.Errorf("not idempotent: first %q, second %q", once, twice)
	}
}

// Every operation in the package is idempotent on its own output.
func TestStripOperationsIdempotent(t *testing.T) {
	ops := []struct {
		name string
		fn   func(string) string
	}{
		{"FoldAccents", FoldAccents},
		{"StripPossessives", StripPossessives},
		{"StripMarkup", StripMarkup},
		{"StripSizeUnits", StripSizeUnits},
		{"StripABV", StripABV},
		{"StripVintageYears", StripVintageYears},
		{"StripAsides", StripAsides},
		{"CollapseAgeStatements", CollapseAgeStatements},
		{"DropAgeStatements", DropAgeStatements},
		{"StripCommercialNoise", StripCommercialNoise},
		{"CollapseWhitespace", CollapseWhitespace},
	}
	inputs := []string{
		"Jack Daniel's Old No.7 Tennessee Whiskey 70cl 40% ABV (Gift Box)",
		"Château Margaux 2019 Grand Vin 750ml",
		"Glenfiddich 12 Year Old Single Malt 24x330ml [Limited Edition]",
		"Personalised Rosé Hamper 5011007003005",
		"",
	}
	for _, op := range ops {
		for _, in := range inputs {
			once := op.fn(in)
			if twice := op.fn(once); twice != once {
				t.Errorf("%s(%q): not idempotent, first %q then %q",
					op.name, in, once, twice)
			}
		}
	}
}

// The composed pipeline is idempotent too: normalizing an
// already-normalized title returns the identical string.
func TestPipelineIdempotent(t *testing.T) {
	v := DefaultVariants()
	normalize := func(s string) string {
		s = StripMarkup(s)
		s = FoldAccents(s)
		s = StripPossessives(s)
		s = CollapseAgeStatements(s)
		s = StripCommercialNoise(s)
		s = v.Apply(strings.ToLower(s))
		return strings.Join(Deduplicate(Tokenize(s)), " ")
	}
	inputs := []string{
		"Jack Daniel's Old No.7 Tennessee Whiskey 70cl (Gift Box)",
		"Château Margaux 2019 Grand Vin 750ml",
		"Glenfiddich 12 Year Old Single Malt Whisky 24x330ml [Limited Edition]",
		"Personalised Rosé Gift Hamper 5011007003005",
		"Smirnoff Vodka Strawberry Vodka 70cl",
		"",
	}
	for _, in := range inputs {
		once := normalize(in)
		if twice := normalize(once); twice != once {
			t.Errorf("normalize(%q): not idempotent, first %q then %q", in, once, twice)
		}
	}
}

func TestStripPossessives(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Jack Daniel's Tennessee Whiskey", "Jack Daniels Tennessee Whiskey"},
		{"Gordon’s Gin", "Gordons Gin"},
		{"Beer & Cider | Mixed", "Beer Cider Mixed"},
		{"Long-Life Milk", "Long-Life Milk"},
	}
	for _, c := range cases {
		got := StripPossessives(c.in)
		if got != c.want {
			t.Errorf("StripPossessives(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStripMarkup(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"<b>Bold</b> Lager", "Bold Lager"},
		{"Gin &amp; Tonic", "Gin & Tonic"},
		{"no markup here", "no markup here"},
	}
	for _, c := range cases {
		got := StripMarkup(c.in)
		if got != c.want {
			t.Errorf("StripMarkup(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  too   many\tspaces \n here ")
	want := "too many spaces here"
	if got != want {
		t.Errorf("CollapseWhitespace = %q, want %q", got, want)
	}
}

func TestVariantsApply(t *testing.T) {
	v := DefaultVariants()

	got := v.Apply("irish whiskey cream liqueur")
	want := "irish whisky cream liqueur"
	if got != want {
		t.Errorf("Apply = %q, want %q", got, want)
	}

	// Canonical form passes through unchanged.
	if again := v.Apply(got); again != got {
		t.Errorf("Apply not idempotent: %q then %q", got, again)
	}
}

func TestVariantsForms(t *testing.T) {
	v := DefaultVariants()

	forms := v.Forms("whiskey")
	if len(forms) != 2 || forms[0] != "whisky" {
		t.Errorf("Forms(whiskey) = %v, want canonical whisky first plus variant", forms)
	}

	solo := v.Forms("vodka")
	if !reflect.DeepEqual(solo, []string{"vodka"}) {
		t.Errorf("Forms(vodka) = %v, want just the word", solo)
	}
}
