package model

// ClassTag names a functional class from the closed catalog loaded from the
// vocabulary file. The empty tag is the "unclassified" sentinel.
type ClassTag string

// Unclassified is the sentinel for tokens no rule matched. It is a valid,
// expected, frequent outcome, not an error.
const Unclassified ClassTag = ""

// IsClassified reports whether the tag names a real class.
func (c ClassTag) IsClassified() bool { return c != Unclassified }

// UnclassifiedReason explains why a token received no class. Downstream
// analyses audit the unclassified fraction by reason.
type UnclassifiedReason int

const (
	ReasonClassified    UnclassifiedReason = iota // Token was classified
	ReasonNoPrefixRoute                           // No rule keyed on the token's prefix (or absent prefix)
	ReasonNoMiddleMatch                           // Prefix route exists but middle matched no refinement
	ReasonNoSuffixRoute                           // Prefix and middle matched but suffix ruled out all candidates
)

func (r UnclassifiedReason) String() string {
	switch r {
	case ReasonClassified:
		return "classified"
	case ReasonNoPrefixRoute:
		return "no_prefix_route"
	case ReasonNoMiddleMatch:
		return "no_middle_match"
	case ReasonNoSuffixRoute:
		return "no_suffix_route"
	default:
		return "unknown"
	}
}

// Classification pairs a decomposed token with its assigned class (or the
// unclassified sentinel plus the reason).
type Classification struct {
	Class  ClassTag           `json:"class"`
	Reason UnclassifiedReason `json:"reason,omitempty"`
}
