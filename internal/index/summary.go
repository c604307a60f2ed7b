package index

import "github.com/epilectrik/voynich-sub016/internal/model"

// Summary is the per-stratum accounting every report must carry. The
// unclassified fraction is first-class: silently excluding unclassified
// tokens would bias downstream findings.
type Summary struct {
	Tokens               int                    `json:"tokens"`                 // Token count in the stratum
	Types                int                    `json:"types"`                  // Distinct raw strings
	Classified           int                    `json:"classified"`             // Tokens with a class
	UnclassifiedFraction float64                `json:"unclassified_fraction"`  // 0..1
	UncertainFraction    float64                `json:"uncertain_fraction"`     // Transcriber-flagged tokens
	ClassCounts          map[model.ClassTag]int `json:"class_counts,omitempty"` // Frequency per class
	UnclassifiedByReason map[string]int         `json:"unclassified_by_reason,omitempty"`
}

// Summary computes counts and class frequencies for a stratum.
func (ix *Index) Summary(spec Spec) Summary {
	s := Summary{
		ClassCounts:          make(map[model.ClassTag]int),
		UnclassifiedByReason: make(map[string]int),
	}
	types := make(map[string]bool)
	uncertain := 0

	for _, e := range ix.Select(spec) {
		s.Tokens++
		types[e.Token.Raw] = true
		if e.Token.Uncertain {
			uncertain++
		}
		if e.Class.Class.IsClassified() {
			s.Classified++
			s.ClassCounts[e.Class.Class]++
		} else {
			s.UnclassifiedByReason[e.Class.Reason.String()]++
		}
	}

	s.Types = len(types)
	if s.Tokens > 0 {
		s.UnclassifiedFraction = float64(s.Tokens-s.Classified) / float64(s.Tokens)
		s.UncertainFraction = float64(uncertain) / float64(s.Tokens)
	}
	return s
}
