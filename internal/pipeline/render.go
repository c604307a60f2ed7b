package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// WriteJSON renders the full report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText renders a human-readable digest of the report.
func (r *Report) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Tokens: %d (%d types, %.1f%% unclassified, %.1f%% uncertain)\n",
		r.Overall.Tokens, r.Overall.Types,
		100*r.Overall.UnclassifiedFraction, 100*r.Overall.UncertainFraction)
	fmt.Fprintf(w, "Vocabulary version: %d\n", r.VocabularyVersion)

	for _, name := range sortedKeys(r.Corpora) {
		s := r.Corpora[name]
		fmt.Fprintf(w, "Corpus %s: %d tokens, %d classified\n", name, s.Tokens, s.Classified)
	}
	for _, name := range sortedKeys(r.Sections) {
		s := r.Sections[name]
		fmt.Fprintf(w, "Section %s: %d tokens, %d classified\n", name, s.Tokens, s.Classified)
	}

	for _, c := range r.Comparisons {
		if c.Error != "" {
			fmt.Fprintf(w, "%s: skipped (%s)\n", c.Name, c.Error)
			continue
		}
		fmt.Fprintf(w, "%s: %s p=%.4g effect=%.3f (n=%d/%d)\n",
			c.Name, c.Result.Method, c.Result.PValue, c.Result.EffectSize,
			c.Result.NA, c.Result.NB)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
