package taxonomy

import (
	"regexp"
	"strings"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/textnorm"
)

// Words too broad to match a category on their own. "Dark Rum" should not
// match every rum product via its "rum" token; only the full phrase and the
// distinctive words qualify. Single-word category names are exempt.
var defaultGenericWords = []string{
	"rum", "wine", "beer", "whisky", "whiskey", "vodka", "gin", "tequila",
	"brandy", "cognac", "liqueur", "spirits", "champagne", "cider",
	"food", "supplies", "accessories", "toys", "furniture", "clothing",
	"camera", "lenses", "bag", "bags", "bottle", "bottles",
	"baby", "dog", "cat", "pet", "kitten", "puppy", "infant", "toddler",
	"premium", "classic", "special", "original", "traditional", "standard",
	"basic", "regular", "flavoured", "mixed", "dry", "wet", "fresh",
	"frozen", "canned", "bottled", "organic", "natural", "adult",
	"american", "european", "asian", "french", "italian", "spanish", "german",
	"irish", "scottish", "english", "japanese", "chinese", "mexican",
	"samsung", "sony", "lg", "apple", "panasonic", "philips",
	"small", "medium", "large", "extra", "pack", "set", "kit",
	"and", "for", "the", "with", "&", "new", "pro", "plus", "max", "ultra",
}

var nameCleaner = regexp.MustCompile(`[^a-z0-9\s&-]`)

// Deriver turns a category name into its match keywords.
type Deriver struct {
	generic  *textnorm.Stoplist
	variants *textnorm.Variants
}

// NewDeriver builds a deriver with the given exclusion list and spelling
// variants. Nil arguments select the defaults.
func NewDeriver(generic *textnorm.Stoplist, variants *textnorm.Variants) *Deriver {
	if generic == nil {
		generic = textnorm.NewStoplist(defaultGenericWords)
	}
	if variants == nil {
		variants = textnorm.DefaultVariants()
	}
	return &Deriver{generic: generic, variants: variants}
}

// DefaultDeriver returns a deriver with the built-in lists.
func DefaultDeriver() *Deriver {
	return NewDeriver(nil, nil)
}

// Derive extracts match keywords from a category name:
//
//   - the full lowercased name, always;
//   - for multi-word names, every contiguous bigram plus each word longer
//     than three characters that is not on the generic list;
//   - for single-word names, the word itself even when generic, since it
//     is the only identifier the category has.
//
// Every keyword with a registered spelling variant contributes all of its
// forms. Order is deterministic and duplicates are removed.
func (d *Deriver) Derive(name string) []string {
	cleaned := nameCleaner.ReplaceAllString(strings.ToLower(name), "")
	cleaned = textnorm.CollapseWhitespace(cleaned)
	if cleaned == "" {
		return nil
	}

	words := strings.Fields(cleaned)
	var raw []string
	raw = append(raw, cleaned)

	if len(words) > 1 {
		for i := 0; i+1 < len(words); i++ {
			raw = append(raw, words[i]+" "+words[i+1])
		}
		for _, w := range words {
			if len(w) > 3 && !d.generic.Has(w) {
				raw = append(raw, w)
			}
		}
	} else if len(words[0]) > 2 {
		raw = append(raw, words[0])
	}

	var out []string
	for _, kw := range raw {
		out = append(out, kw)
		if spelled := d.variants.Apply(kw); spelled != kw {
			out = append(out, spelled)
		}
		if !strings.Contains(kw, " ") {
			for _, form := range d.variants.Forms(kw) {
				out = append(out, form)
			}
		}
	}
	return mergeKeywords(nil, out)
}

// BoostRule appends extra keywords to categories whose path contains any of
// the Contains substrings, or equals Exact when set. Boosts carry the brand
// and synonym vocabulary that category names alone cannot express.
type BoostRule struct {
	Contains []string `yaml:"contains,omitempty"`
	Exact    string   `yaml:"exact,omitempty"`
	Keywords []string `yaml:"keywords"`
}

func (r BoostRule) matches(path string) bool {
	if r.Exact != "" {
		return path == r.Exact
	}
	for _, sub := range r.Contains {
		if strings.Contains(path, sub) {
			return true
		}
	}
	return false
}

// BoostSet maps product types to their boost rules.
type BoostSet map[string][]BoostRule

// DefaultAliases returns the legacy product type names and the canonical
// sheet names they map to.
func DefaultAliases() map[string]string {
	return map[string]string{
		"BWS": "Alcoholic Beverages",
	}
}

// DefaultBoosts returns the built-in brand and synonym boosts for the
// retail taxonomy sheets.
func DefaultBoosts() BoostSet {
	return BoostSet{
		"Electronics": {
			{Contains: []string{"Smartphones"}, Keywords: []string{
				"iphone", "galaxy s", "galaxy z", "galaxy a", "samsung galaxy",
				"pixel", "oneplus", "xiaomi", "oppo", "vivo", "realme", "nokia",
				"motorola", "smartphone", "smartphones", "mobile phone", "5g phone"}},
			{Contains: []string{"Video Game Consoles", "Home Consoles"}, Keywords: []string{
				"playstation", "xbox", "nintendo", "switch", "ps4", "ps5"}},
			{Contains: []string{"Gaming Controllers", "Gamepads"}, Keywords: []string{
				"controller", "controllers", "gamepad", "gamepads", "joystick",
				"joysticks", "dualsense", "dualshock"}},
			{Contains: []string{"Phone Cases"}, Keywords: []string{
				"case", "cases", "cover", "covers", "phone case"}},
			{Contains: []string{"Chargers & Cables"}, Keywords: []string{
				"charger", "chargers", "cable", "cables", "usb-c cable"}},
			{Contains: []string{"Screen Protectors"}, Keywords: []string{
				"protector", "protectors", "screen protector", "tempered glass"}},
			{Contains: []string{"Smart TVs", "Televisions"}, Keywords: []string{
				"smart tv", "television", "tv", "qled", "oled", "led tv",
				"55 inch", "65 inch", "75 inch", "inch tv"}},
			{Contains: []string{"Laptops"}, Keywords: []string{
				"macbook", "thinkpad", "dell", "hp", "asus", "lenovo"}},
			{Contains: []string{"Tablets"}, Keywords: []string{
				"ipad", "galaxy tab", "surface"}},
			{Contains: []string{"DSLR", "Mirrorless"}, Keywords: []string{
				"canon", "nikon", "sony", "fujifilm", "panasonic"}},
			{Exact: "Cameras", Keywords: []string{
				"canon", "nikon", "sony", "fujifilm", "panasonic"}},
		},
		"Pets": {
			{Contains: []string{"Dog Food"}, Keywords: []string{
				"pedigree", "purina", "royal canin", "hills", "kibble",
				"dry food", "wet food", "puppy", "adult dog"}},
			{Contains: []string{"Cat Food"}, Keywords: []string{
				"whiskas", "fancy feast", "felix", "purina", "kitten",
				"adult cat", "wet food", "dry food"}},
			{Contains: []string{"Dog Toys"}, Keywords: []string{
				"kong", "chew toy", "ball", "rope toy", "plush toy"}},
			{Contains: []string{"Cat Toys"}, Keywords: []string{
				"feather", "mouse toy", "laser", "catnip"}},
			{Contains: []string{"Cat Furniture", "Scratching", "Cat Tree"}, Keywords: []string{
				"scratching post", "cat tree", "cat tower", "scratch post",
				"climbing", "sisal", "cat condo"}},
			{Contains: []string{"Fish", "Aquarium"}, Keywords: []string{
				"tank", "aqua one", "filter", "heater", "pump"}},
			{Contains: []string{"Collars", "Leashes"}, Keywords: []string{
				"collar", "leash", "lead", "harness"}},
		},
		"Alcoholic Beverages": {
			{Contains: []string{"Lager"}, Keywords: []string{
				"heineken", "corona", "budweiser", "carlsberg", "stella"}},
			{Contains: []string{"IPA", "Pale Ale"}, Keywords: []string{
				"ipa", "pale ale", "xpa", "hop"}},
			{Contains: []string{"Ale"}, Keywords: []string{"ale"}},
			{Contains: []string{"Red Wine"}, Keywords: []string{
				"shiraz", "cabernet", "merlot", "pinot noir"}},
			{Contains: []string{"White Wine"}, Keywords: []string{
				"chardonnay", "sauvignon blanc", "riesling", "pinot gris"}},
			{Contains: []string{"Bourbon"}, Keywords: []string{
				"bourbon", "jim beam", "jack daniels", "makers mark", "wild turkey"}},
			{Contains: []string{"Vodka"}, Keywords: []string{
				"smirnoff", "absolut", "grey goose"}},
			{Contains: []string{"Whisky"}, Keywords: []string{
				"johnnie walker", "jameson", "chivas", "glenfiddich"}},
			{Contains: []string{"Rum"}, Keywords: []string{
				"bacardi", "captain morgan", "malibu"}},
			{Contains: []string{"Gin"}, Keywords: []string{
				"tanqueray", "bombay sapphire", "hendricks"}},
		},
		"Toys": {
			{Contains: []string{"Building", "LEGO"}, Keywords: []string{
				"lego", "building blocks", "construction", "bricks"}},
			{Contains: []string{"Action Figures"}, Keywords: []string{
				"figure", "figurine", "collectible"}},
			{Contains: []string{"Dolls"}, Keywords: []string{
				"barbie", "doll", "dollhouse"}},
			{Contains: []string{"Board Games"}, Keywords: []string{
				"monopoly", "scrabble", "chess", "game"}},
			{Contains: []string{"Puzzles"}, Keywords: []string{
				"jigsaw", "puzzle", "1000 piece"}},
		},
		"Baby & Toddler": {
			{Contains: []string{"Nappies"}, Keywords: []string{
				"pampers", "huggies", "nappy", "nappies", "diaper", "diapers",
				"baby dry", "pull-up", "newborn"}},
			{Contains: []string{"Weaning"}, Keywords: []string{
				"formula", "baby food", "puree", "infant formula", "baby formula",
				"powder", "milk powder", "weaning"}},
			{Contains: []string{"Bottles", "Feeding"}, Keywords: []string{
				"bottle", "bottles", "sippy cup", "feeding", "anti-colic", "formula"}},
			{Contains: []string{"Pushchairs", "Travel System"}, Keywords: []string{
				"stroller", "strollers", "pram", "prams", "pushchair", "buggy",
				"lightweight", "compact", "travel system"}},
			{Contains: []string{"Car Seats"}, Keywords: []string{
				"car seat", "car seats", "carseat", "infant seat", "safety seat",
				"convertible car seat", "isofix"}},
			{Contains: []string{"Carriers", "Slings"}, Keywords: []string{
				"carrier", "baby carrier", "sling", "baby sling", "wrap",
				"structured carrier"}},
		},
		"Health & Beauty": {
			{Contains: []string{"Shampoo"}, Keywords: []string{
				"shampoo", "hair wash", "cleansing"}},
			{Contains: []string{"Conditioner"}, Keywords: []string{
				"conditioner", "hair conditioner", "treatment"}},
			{Contains: []string{"Moisturizer", "Moisturiser"}, Keywords: []string{
				"moisturizer", "moisturiser", "cream", "lotion"}},
			{Contains: []string{"Cleanser"}, Keywords: []string{
				"cleanser", "face wash", "cleansing"}},
			{Contains: []string{"Lipstick"}, Keywords: []string{
				"lipstick", "lip", "matte", "gloss"}},
			{Contains: []string{"Foundation"}, Keywords: []string{
				"foundation", "base", "coverage"}},
			{Contains: []string{"Perfume", "Cologne"}, Keywords: []string{
				"perfume", "cologne", "fragrance", "eau de"}},
		},
		"Sporting Goods": {
			{Contains: []string{"Dumbbells", "Weights"}, Keywords: []string{
				"dumbbell", "weight", "kettlebell"}},
			{Contains: []string{"Treadmills"}, Keywords: []string{
				"treadmill", "running machine"}},
			{Contains: []string{"Exercise Bikes"}, Keywords: []string{
				"exercise bike", "stationary bike", "spin bike"}},
			{Contains: []string{"Football"}, Keywords: []string{
				"soccer", "football", "ball"}},
			{Contains: []string{"Basketball"}, Keywords: []string{
				"basketball", "hoop", "ball"}},
			{Contains: []string{"Tennis"}, Keywords: []string{
				"tennis", "racket", "racquet", "ball"}},
			{Contains: []string{"Activewear", "Sports Clothing"}, Keywords: []string{
				"nike", "adidas", "under armour", "puma", "reebok"}},
			{Contains: []string{"Running Shoes", "Athletic Shoes", "Trainers"}, Keywords: []string{
				"running shoes", "trainers", "sneakers", "air max", "nike"}},
		},
	}
}
