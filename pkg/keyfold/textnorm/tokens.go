package textnorm

import (
	"strings"

	"github.com/kljensen/snowball"
)

// Tokenize splits text on whitespace, trimming stray punctuation from token
// edges. Empty input yields no tokens.
func Tokenize(s string) []string {
	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?-")
		if f == "" {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// stemKey reduces a token to its comparison key: lowercase plus an English
// snowball stem so plural and inflected repeats collapse to one key
// ("cocktail"/"cocktails", "berry"/"berries"). Stemming failures fall back
// to the lowercase form.
func stemKey(word string) string {
	w := strings.ToLower(word)
	stemmed, err := snowball.Stem(w, "english", false)
	if err != nil || stemmed == "" {
		return w
	}
	return stemmed
}

// Deduplicate removes tokens that repeat an earlier token, comparing
// case-insensitively and by stem so "Vodka Strawberry Vodka" keeps one
// "Vodka". First occurrence and original order are preserved.
func Deduplicate(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		key := stemKey(tok)
		if _, dup := seen[lower]; dup {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[lower] = struct{}{}
		seen[key] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// Stoplist is a case-insensitive word set. Composition is caller-supplied
// configuration: classification uses a broad generic-word list, extraction
// a narrower descriptor list.
type Stoplist struct {
	terms map[string]struct{}
}

// NewStoplist builds a stoplist from the given terms.
func NewStoplist(terms []string) *Stoplist {
	s := &Stoplist{terms: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// Has reports whether word is in the stoplist.
func (s *Stoplist) Has(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.terms[strings.ToLower(word)]
	return ok
}

// Add inserts a word.
func (s *Stoplist) Add(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word != "" {
		s.terms[word] = struct{}{}
	}
}

// Remove deletes a word.
func (s *Stoplist) Remove(word string) {
	delete(s.terms, strings.ToLower(word))
}

// All returns every stoplist term.
func (s *Stoplist) All() []string {
	out := make([]string, 0, len(s.terms))
	for t := range s.terms {
		out = append(out, t)
	}
	return out
}

// FilterStopwords removes tokens present in the stoplist, preserving order.
// A nil stoplist filters nothing.
func FilterStopwords(tokens []string, stops *Stoplist) []string {
	if stops == nil {
		return tokens
	}
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if stops.Has(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}
