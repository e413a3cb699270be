package config

import (
	"fmt"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/accessory"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/classify"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/extract"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/taxonomy"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/textnorm"
)

// Loader assembles the classification and extraction components from a
// configuration file and a taxonomy workbook. Both paths are optional: an
// empty ConfigPath uses the built-in defaults, an empty TaxonomyPath
// yields an index with no categories, where classification falls back to
// the default labels.
type Loader struct {
	ConfigPath   string
	TaxonomyPath string
}

// Components is the assembled working set.
type Components struct {
	File          *File
	Index         *taxonomy.Index
	Classifier    *classify.Classifier
	Extractor     *extract.Extractor
	Disambiguator *accessory.Disambiguator
}

// Load reads the configuration and taxonomy and wires the components.
func (l Loader) Load() (*Components, error) {
	cfg := &File{}
	if l.ConfigPath != "" {
		loaded, err := Load(l.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return l.build(cfg)
}

func (l Loader) build(cfg *File) (*Components, error) {
	variants := cfg.BuildVariants()

	var generic *textnorm.Stoplist
	if len(cfg.GenericWords) > 0 {
		generic = textnorm.NewStoplist(cfg.GenericWords)
	}
	index := taxonomy.NewIndex(taxonomy.NewDeriver(generic, variants))

	for from, to := range taxonomy.DefaultAliases() {
		index.AddAlias(from, to)
	}
	for from, to := range cfg.Aliases {
		index.AddAlias(from, to)
	}

	if l.TaxonomyPath != "" {
		rows, err := LoadTaxonomyWorkbook(l.TaxonomyPath)
		if err != nil {
			return nil, fmt.Errorf("load taxonomy: %w", err)
		}
		index.AddRows(rows)
	}

	boosts := cfg.Boosts
	if len(boosts) == 0 {
		boosts = taxonomy.DefaultBoosts()
	}
	index.ApplyBoosts(boosts)

	labels := classify.DefaultLabels()
	for productType, label := range cfg.Labels {
		labels[productType] = label
	}

	disamb := cfg.BuildDisambiguator()
	classifier := classify.New(index, disamb, variants, labels)
	extractor := extract.New(extract.Config{
		MaxWords:     cfg.Extract.MaxWords,
		KeepAgeToken: cfg.Extract.KeepAgeToken,
		Vocabulary:   cfg.Vocabulary,
		ProductTypes: cfg.ProductTypes,
		Descriptors:  cfg.Descriptors,
	})

	return &Components{
		File:          cfg,
		Index:         index,
		Classifier:    classifier,
		Extractor:     extractor,
		Disambiguator: disamb,
	}, nil
}
