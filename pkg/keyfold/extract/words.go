package extract

// Product-type words anchor the extracted keyword: one of these, when
// present, always takes the final slot. Order decides which wins when a
// title names several ("Rose Wine" resolves to "wine"), so the list is a
// slice, not a set.
var defaultProductTypeWords = []string{
	"whisky", "whiskey", "bourbon", "scotch", "vodka", "gin", "rum",
	"brandy", "cognac", "tequila", "mezcal", "liqueur", "liquor",
	"wine", "champagne", "prosecco", "cava", "port", "sherry", "vermouth",
	"beer", "lager", "ale", "stout", "ipa", "porter", "pilsner",
	"cider", "sour", "rose", "red", "white", "sparkling",
	"cocktail", "mixer", "tonic", "bitters",
}

// Descriptors that do not help search: style and quality adjectives that
// appear across unrelated products.
var defaultDescriptorWords = []string{
	"premium", "classic", "original", "reserve", "select", "finest",
	"superior", "deluxe", "ultra", "super", "blend", "blended",
	"pure", "natural", "organic", "craft", "artisan", "traditional",
	"handcrafted", "smallbatch", "single", "malt", "grain", "cask",
	"strength", "cuvee", "brut", "imperial", "royal", "grand", "cru",
	"luxury", "the", "barrel", "sweet", "toast", "american", "oak",
}

// Connectives dropped from title tokens before selection.
var connectiveWords = []string{"the", "and", "for", "with", "of"}
