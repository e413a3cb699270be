// Package taxonomy holds the three-level category tree and the keyword
// index derived from it. Categories arrive as flat rows (one per leaf path,
// typically read from a workbook sheet per product type) and are indexed
// per product type with keywords derived from the category names.
package taxonomy

import (
	"sort"
	"strings"
	"sync"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/internalerr"
)

// Separator joins category levels into a path string.
const Separator = " > "

// Row is one taxonomy entry as read from a source sheet. Level2 and Level3
// may be empty; Level1 must not be.
type Row struct {
	ProductType string
	Level1      string
	Level2      string
	Level3      string
}

// Category is an indexed category at some level of the tree. Path carries
// the full ancestry ("Beer > Lager" for a level-2 entry) and Keywords the
// match terms derived from the final level's name plus any boosts.
type Category struct {
	Path     string
	Levels   []string
	Keywords []string
}

// Specificity counts the path separators: 0 for a level-1 category, 2 for
// a full three-level path.
func (c *Category) Specificity() int {
	return strings.Count(c.Path, Separator)
}

// Leaf returns the final level's name.
func (c *Category) Leaf() string {
	return c.Levels[len(c.Levels)-1]
}

// Index maps product types to their categories and match keywords. Safe for
// concurrent readers; mutations take the write lock and invalidate the
// per-type sorted cache.
type Index struct {
	mu      sync.RWMutex
	deriver *Deriver
	aliases map[string]string
	byType  map[string]map[string]*Category
	sorted  map[string][]*Category
}

// NewIndex creates an empty index. A nil deriver gets the default
// generic-word exclusions and spelling variants.
func NewIndex(d *Deriver) *Index {
	if d == nil {
		d = DefaultDeriver()
	}
	return &Index{
		deriver: d,
		aliases: make(map[string]string),
		byType:  make(map[string]map[string]*Category),
		sorted:  make(map[string][]*Category),
	}
}

// AddAlias maps an alternate product type name onto a canonical one, e.g.
// the legacy "BWS" onto "Alcoholic Beverages".
func (x *Index) AddAlias(from, to string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.aliases[from] = to
}

// Resolve returns the canonical product type for name.
func (x *Index) Resolve(name string) string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.resolveLocked(name)
}

func (x *Index) resolveLocked(name string) string {
	if canonical, ok := x.aliases[name]; ok {
		return canonical
	}
	return name
}

// AddRow indexes one taxonomy row. Each populated level produces its own
// category entry so matching can cascade from specific to broad: the row
// (Beer, Lager, Pale Lager) yields "Beer", "Beer > Lager" and
// "Beer > Lager > Pale Lager". Keywords accumulate when paths repeat
// across rows.
func (x *Index) AddRow(r Row) {
	l1 := strings.TrimSpace(r.Level1)
	if l1 == "" {
		return
	}
	l2 := strings.TrimSpace(r.Level2)
	l3 := strings.TrimSpace(r.Level3)

	x.mu.Lock()
	defer x.mu.Unlock()

	pt := x.resolveLocked(strings.TrimSpace(r.ProductType))
	cats := x.byType[pt]
	if cats == nil {
		cats = make(map[string]*Category)
		x.byType[pt] = cats
	}

	x.addLevelLocked(cats, []string{l1})
	if l2 != "" {
		x.addLevelLocked(cats, []string{l1, l2})
		if l3 != "" {
			x.addLevelLocked(cats, []string{l1, l2, l3})
		}
	}
	delete(x.sorted, pt)
}

// AddRows indexes a batch of rows.
func (x *Index) AddRows(rows []Row) {
	for _, r := range rows {
		x.AddRow(r)
	}
}

func (x *Index) addLevelLocked(cats map[string]*Category, levels []string) {
	path := strings.Join(levels, Separator)
	derived := x.deriver.Derive(levels[len(levels)-1])
	if cat, ok := cats[path]; ok {
		cat.Keywords = mergeKeywords(cat.Keywords, derived)
		return
	}
	cats[path] = &Category{
		Path:     path,
		Levels:   append([]string(nil), levels...),
		Keywords: derived,
	}
}

// AddKeywords appends extra match keywords to an existing category path.
// Unknown paths are ignored; boosts only refine what the sheet defines.
func (x *Index) AddKeywords(productType, path string, keywords []string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	pt := x.resolveLocked(productType)
	cat, ok := x.byType[pt][path]
	if !ok {
		return
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(strings.TrimSpace(kw))
	}
	cat.Keywords = mergeKeywords(cat.Keywords, lowered)
	delete(x.sorted, pt)
}

// ApplyBoosts walks every category of every product type named in the set
// and appends the matching rules' keywords.
func (x *Index) ApplyBoosts(set BoostSet) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for productType, rules := range set {
		pt := x.resolveLocked(productType)
		cats := x.byType[pt]
		if cats == nil {
			continue
		}
		for path, cat := range cats {
			for _, rule := range rules {
				if rule.matches(path) {
					cat.Keywords = mergeKeywords(cat.Keywords, rule.Keywords)
				}
			}
		}
		delete(x.sorted, pt)
	}
}

// Categories returns the product type's categories ordered most specific
// first, with ties broken by path for determinism. Keywords within each
// category come longest first, the order matching wants them in. The slice
// is cached until the next mutation; callers must not modify it.
func (x *Index) Categories(productType string) ([]*Category, error) {
	x.mu.RLock()
	pt := x.resolveLocked(productType)
	if cached, ok := x.sorted[pt]; ok {
		x.mu.RUnlock()
		return cached, nil
	}
	x.mu.RUnlock()

	x.mu.Lock()
	defer x.mu.Unlock()
	if cached, ok := x.sorted[pt]; ok {
		return cached, nil
	}

	cats := x.byType[pt]
	if len(cats) == 0 {
		return nil, &internalerr.TaxonomyLoadError{ProductType: productType}
	}

	out := make([]*Category, 0, len(cats))
	for _, cat := range cats {
		sort.SliceStable(cat.Keywords, func(i, j int) bool {
			if len(cat.Keywords[i]) != len(cat.Keywords[j]) {
				return len(cat.Keywords[i]) > len(cat.Keywords[j])
			}
			return cat.Keywords[i] < cat.Keywords[j]
		})
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].Specificity(), out[j].Specificity()
		if si != sj {
			return si > sj
		}
		return out[i].Path < out[j].Path
	})
	x.sorted[pt] = out
	return out, nil
}

// Paths returns every category path for the product type, broadest first.
// This is the allowed-answer list handed to LLM fallback prompts.
func (x *Index) Paths(productType string) ([]string, error) {
	cats, err := x.Categories(productType)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(cats))
	for i, cat := range cats {
		paths[len(cats)-1-i] = cat.Path
	}
	return paths, nil
}

// ProductTypes lists the canonical product types present in the index.
func (x *Index) ProductTypes() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	types := make([]string, 0, len(x.byType))
	for pt := range x.byType {
		types = append(types, pt)
	}
	sort.Strings(types)
	return types
}

// Has reports whether the product type (or an alias of it) is indexed.
func (x *Index) Has(productType string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.byType[x.resolveLocked(productType)]
	return ok
}

// Invalidate drops the sorted cache for one product type. Rebuild is lazy,
// on the next Categories call.
func (x *Index) Invalidate(productType string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.sorted, x.resolveLocked(productType))
}

// InvalidateAll drops every cached ordering.
func (x *Index) InvalidateAll() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.sorted = make(map[string][]*Category)
}

func mergeKeywords(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(extra))
	for _, kw := range existing {
		seen[kw] = struct{}{}
	}
	for _, kw := range extra {
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		existing = append(existing, kw)
	}
	return existing
}
