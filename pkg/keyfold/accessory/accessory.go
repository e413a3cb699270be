// Package accessory disambiguates main products from their accessories
// before category matching. A phone case naming an iPhone must land in
// phone accessories, not smartphones; dog food naming a bowl on the label
// must not land in feeding accessories. Signals are declarative tables so
// new product domains add rules without touching the evaluation code.
package accessory

import "strings"

// Signal is one named detection rule. It fires when any Terms substring
// occurs in the lowercased title and, when Supporting is non-empty, at
// least one Supporting substring occurs as well. A fired NotSignal
// suppresses it. Allow and Deny then constrain which category paths stay
// eligible while the signal is active: with Allow set, only paths
// containing one of its substrings survive; Deny removes paths containing
// any of its substrings.
type Signal struct {
	Name       string   `yaml:"name"`
	Terms      []string `yaml:"terms"`
	Supporting []string `yaml:"supporting,omitempty"`
	NotSignal  string   `yaml:"not_signal,omitempty"`
	Allow      []string `yaml:"allow,omitempty"`
	Deny       []string `yaml:"deny,omitempty"`
}

func containsAny(title string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(title, t) {
			return true
		}
	}
	return false
}

// Flags is the set of signal names that fired for a title.
type Flags map[string]bool

// Table is an ordered list of signals. Order matters: a signal naming an
// earlier one in NotSignal sees that signal's result.
type Table struct {
	Signals []Signal `yaml:"signals"`
}

// Evaluate fires the table's signals against a lowercased title.
func (t *Table) Evaluate(titleLower string) Flags {
	flags := make(Flags, len(t.Signals))
	for _, sig := range t.Signals {
		if !containsAny(titleLower, sig.Terms) {
			continue
		}
		if len(sig.Supporting) > 0 && !containsAny(titleLower, sig.Supporting) {
			continue
		}
		if sig.NotSignal != "" && flags[sig.NotSignal] {
			continue
		}
		flags[sig.Name] = true
	}
	return flags
}

// Permits reports whether a category path stays eligible under the fired
// flags. With no flags fired every path is eligible.
func (t *Table) Permits(flags Flags, categoryPath string) bool {
	for _, sig := range t.Signals {
		if !flags[sig.Name] {
			continue
		}
		if len(sig.Allow) > 0 && !pathContainsAny(categoryPath, sig.Allow) {
			return false
		}
		if len(sig.Deny) > 0 && pathContainsAny(categoryPath, sig.Deny) {
			return false
		}
	}
	return true
}

func pathContainsAny(path string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(path, s) {
			return true
		}
	}
	return false
}

// Disambiguator selects the signal table for a product type, falling back
// to a shared table for types without their own.
type Disambiguator struct {
	tables   map[string]*Table
	fallback *Table
}

// NewDisambiguator creates a disambiguator with the given fallback table.
// A nil fallback means product types without a table fire no signals.
func NewDisambiguator(fallback *Table) *Disambiguator {
	return &Disambiguator{tables: make(map[string]*Table), fallback: fallback}
}

// SetTable installs a product type's signal table.
func (d *Disambiguator) SetTable(productType string, t *Table) {
	d.tables[productType] = t
}

// TableFor returns the product type's table, or the fallback.
func (d *Disambiguator) TableFor(productType string) *Table {
	if t, ok := d.tables[productType]; ok {
		return t
	}
	return d.fallback
}

// Evaluate fires the product type's signals against a lowercased title.
func (d *Disambiguator) Evaluate(productType, titleLower string) Flags {
	t := d.TableFor(productType)
	if t == nil {
		return Flags{}
	}
	return t.Evaluate(titleLower)
}

// Permits reports whether the category path stays eligible for the title's
// flags under the product type's table.
func (d *Disambiguator) Permits(productType string, flags Flags, categoryPath string) bool {
	t := d.TableFor(productType)
	if t == nil {
		return true
	}
	return t.Permits(flags, categoryPath)
}

// Built-in signal names.
const (
	SignalPhoneAccessory  = "phone-accessory"
	SignalController      = "controller"
	SignalCameraAccessory = "camera-accessory"
	SignalMainCamera      = "main-camera"
	SignalPetFood         = "pet-food"
	SignalPetAccessory    = "pet-accessory"
)

// DefaultTable returns the built-in signals covering phones, gaming
// controllers, cameras and pet products. The combined table is safe as a
// shared fallback: signals only bite when their terms occur, and the
// allow/deny substrings only occur in the relevant sheets' category names.
func DefaultTable() *Table {
	return &Table{Signals: []Signal{
		{
			Name: SignalPhoneAccessory,
			Terms: []string{"case", "cover", "charger", "cable", "screen protector",
				"protector", "adapter", "holder", "stand", "mount", "bag"},
			Supporting: []string{"iphone", "galaxy", "pixel", "oneplus", "xiaomi",
				"oppo", "vivo", "nokia"},
			Allow: []string{"Phone Accessories", "Phone Cases"},
		},
		{
			Name:  SignalController,
			Terms: []string{"controller", "gamepad", "joystick"},
			Allow: []string{"Controller", "Gamepad"},
		},
		{
			Name: SignalCameraAccessory,
			Terms: []string{"camera bag", "camera case", "tripod", "filter",
				"strap", "lens cap", "memory card"},
			Allow: []string{"Accessories", "Bags", "Tripod"},
		},
		{
			Name: SignalMainCamera,
			Terms: []string{"canon", "nikon", "sony", "fujifilm", "panasonic",
				"olympus"},
			Supporting: []string{"camera"},
			NotSignal:  SignalCameraAccessory,
			Deny:       []string{"Accessories", "Bags", "Tripod"},
		},
		{
			Name:  SignalPetFood,
			Terms: []string{"food", "treats", "kibble", "wet food", "dry food"},
			Allow: []string{"Food", "Treats"},
		},
		{
			Name:      SignalPetAccessory,
			Terms:     []string{"collar", "leash", "lead", "harness", "bed", "bowl", "toy"},
			NotSignal: SignalPetFood,
			Deny:      []string{"Food"},
		},
	}}
}

// DefaultDisambiguator returns a disambiguator using the built-in table as
// fallback for every product type.
func DefaultDisambiguator() *Disambiguator {
	return NewDisambiguator(DefaultTable())
}
