// Package morph decomposes tokens into compositional spans and classifies
// them against a versioned, data-driven rule table. Both operations are pure
// functions of the raw string and the loaded vocabulary.
package morph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/epilectrik/voynich-sub016/internal/model"
)

// ClassRule maps a decomposition shape to a functional class. A rule with an
// empty Prefix belongs to the closed no-prefix family and keys off the
// middle/suffix combination instead.
type ClassRule struct {
	Tag      model.ClassTag `yaml:"tag"`
	Prefix   string         `yaml:"prefix,omitempty"`   // Required prefix span, literal
	Middles  []string       `yaml:"middles,omitempty"`  // Accepted middles (empty = any)
	Suffixes []string       `yaml:"suffixes,omitempty"` // Accepted suffixes (empty = any)
	Priority int            `yaml:"priority"`           // Lower wins when several rules match
}

// Vocabulary is the fixed morphological component vocabulary plus the class
// rule table. It is versioned data loaded once at startup and never mutated.
type Vocabulary struct {
	Version      int         `yaml:"version"`
	Articulators []string    `yaml:"articulators"`
	Prefixes     []string    `yaml:"prefixes"`
	Suffixes     []string    `yaml:"suffixes"`
	Classes      []ClassRule `yaml:"classes"`
}

// LoadVocabulary reads and validates a vocabulary file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	return &v, nil
}

// Validate checks internal consistency of the vocabulary.
func (v *Vocabulary) Validate() error {
	if v.Version < 1 {
		return fmt.Errorf("missing or invalid version")
	}
	if len(v.Prefixes) == 0 {
		return fmt.Errorf("empty prefix family")
	}
	if len(v.Suffixes) == 0 {
		return fmt.Errorf("empty suffix family")
	}
	if err := noDuplicates("prefix", v.Prefixes); err != nil {
		return err
	}
	if err := noDuplicates("suffix", v.Suffixes); err != nil {
		return err
	}
	if err := noDuplicates("articulator", v.Articulators); err != nil {
		return err
	}

	prefixSet := toSet(v.Prefixes)
	tags := make(map[model.ClassTag]bool)
	for i, r := range v.Classes {
		if r.Tag == model.Unclassified {
			return fmt.Errorf("class rule %d: empty tag", i)
		}
		if tags[r.Tag] {
			return fmt.Errorf("duplicate class tag %q", r.Tag)
		}
		tags[r.Tag] = true
		if r.Prefix != "" && !prefixSet[r.Prefix] {
			return fmt.Errorf("class %q requires prefix %q which is not in the prefix family", r.Tag, r.Prefix)
		}
	}
	return nil
}

func noDuplicates(kind string, items []string) error {
	seen := make(map[string]bool, len(items))
	for _, s := range items {
		if s == "" {
			return fmt.Errorf("empty %s entry", kind)
		}
		if seen[s] {
			return fmt.Errorf("duplicate %s %q", kind, s)
		}
		seen[s] = true
	}
	return nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}
