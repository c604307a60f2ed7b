package model

// Decomposition is a token's split into articulator/prefix/middle/suffix
// spans. Concatenating the present spans in order reproduces the raw string
// exactly; the middle may be empty.
type Decomposition struct {
	Raw         string `json:"raw"`
	Articulator string `json:"articulator,omitempty"` // Optional leading articulator
	Prefix      string `json:"prefix,omitempty"`      // Matched prefix span
	Middle      string `json:"middle"`                // Remainder between prefix and suffix
	Suffix      string `json:"suffix,omitempty"`      // Matched suffix span
	Ambiguous   bool   `json:"ambiguous,omitempty"`   // A competing split of equal specificity existed
}

// Reconstruct concatenates the spans in order.
func (d Decomposition) Reconstruct() string {
	return d.Articulator + d.Prefix + d.Middle + d.Suffix
}

// Bare reports whether no prefix, suffix, or articulator matched and the
// whole token fell through to the middle.
func (d Decomposition) Bare() bool {
	return d.Articulator == "" && d.Prefix == "" && d.Suffix == ""
}

// Specificity is the number of characters assigned to non-middle spans.
// Higher is more specific; the decomposer maximizes this.
func (d Decomposition) Specificity() int {
	return len(d.Articulator) + len(d.Prefix) + len(d.Suffix)
}
