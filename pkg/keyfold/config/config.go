// Package config loads the YAML configuration and the taxonomy workbook,
// and assembles the classification and extraction components from them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/accessory"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/internalerr"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/taxonomy"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/textnorm"
)

// File is the top-level YAML configuration. Every section is optional;
// empty sections select the built-in defaults.
type File struct {
	// Word lists.
	GenericWords []string             `yaml:"generic_words"`
	Descriptors  []string             `yaml:"descriptors"`
	ProductTypes []string             `yaml:"product_type_words"`
	Vocabulary   *textnorm.Vocabulary `yaml:"vocabulary"`

	// Spelling variants, canonical form to its alternates.
	Variants map[string][]string `yaml:"variants"`

	// Product type aliases and default level-1 labels.
	Aliases map[string]string `yaml:"aliases"`
	Labels  map[string]string `yaml:"default_labels"`

	// Category keyword boosts and accessory signal tables.
	Boosts  taxonomy.BoostSet           `yaml:"boosts"`
	Signals map[string]*accessory.Table `yaml:"signal_tables"`

	Extract ExtractConfig `yaml:"extract"`
	LLM     LLMConfig     `yaml:"llm"`
}

// ExtractConfig tunes keyword extraction.
type ExtractConfig struct {
	MaxWords     int  `yaml:"max_words"`
	KeepAgeToken bool `yaml:"keep_age_token"`
}

// LLMConfig configures the fallback model endpoint. The API key is read
// from the named environment variable, never from the file.
type LLMConfig struct {
	BaseURL           string  `yaml:"base_url"`
	Model             string  `yaml:"model"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	BatchSize         int     `yaml:"batch_size"`
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
}

// Load reads and validates a configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.Extract.MaxWords < 0 {
		return fmt.Errorf("extract.max_words must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	if f.LLM.BatchSize < 0 {
		return fmt.Errorf("llm.batch_size must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	for canonical, variants := range f.Variants {
		if canonical == "" || len(variants) == 0 {
			return fmt.Errorf("variants need a canonical form and at least one alternate: %w",
				internalerr.ErrInvalidConfig)
		}
	}
	for name, table := range f.Signals {
		if table == nil {
			return fmt.Errorf("signal table %q is empty: %w", name, internalerr.ErrInvalidConfig)
		}
		for _, sig := range table.Signals {
			if sig.Name == "" || len(sig.Terms) == 0 {
				return fmt.Errorf("signal table %q has a rule without name or terms: %w",
					name, internalerr.ErrInvalidConfig)
			}
		}
	}
	return nil
}

// BuildVariants returns the configured spelling variants, or the defaults.
func (f *File) BuildVariants() *textnorm.Variants {
	if len(f.Variants) == 0 {
		return textnorm.DefaultVariants()
	}
	v := textnorm.NewVariants()
	for canonical, alternates := range f.Variants {
		for _, alt := range alternates {
			v.AddPair(canonical, alt)
		}
	}
	return v
}

// BuildDisambiguator returns the configured accessory disambiguator, with
// the built-in table as fallback.
func (f *File) BuildDisambiguator() *accessory.Disambiguator {
	d := accessory.DefaultDisambiguator()
	for productType, table := range f.Signals {
		d.SetTable(productType, table)
	}
	return d
}
