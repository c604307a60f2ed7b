package model

import "time"

// Tier is the evidentiary tier of a constraint. Lower is stronger.
type Tier int

const (
	TierLocked        Tier = 0 // Locked/structural: directly observable, not revisable
	TierFalsification Tier = 1 // A hypothesis ruled out
	TierInference     Tier = 2 // Structural inference from statistical evidence
	TierArgued        Tier = 3 // Speculative but argued
	TierSpeculation   Tier = 4 // Pure speculation
)

func (t Tier) String() string {
	switch t {
	case TierLocked:
		return "locked"
	case TierFalsification:
		return "falsification"
	case TierInference:
		return "inference"
	case TierArgued:
		return "argued"
	case TierSpeculation:
		return "speculation"
	default:
		return "unknown"
	}
}

// Lifecycle is the state of a constraint record. Revised and retracted are
// terminal; revision spawns a new active record rather than reopening the
// old one.
type Lifecycle string

const (
	LifecycleProposed  Lifecycle = "proposed"
	LifecycleActive    Lifecycle = "active"
	LifecycleRevised   Lifecycle = "revised"
	LifecycleRetracted Lifecycle = "retracted"
)

// Terminal reports whether the state admits no further transitions.
func (l Lifecycle) Terminal() bool {
	return l == LifecycleRevised || l == LifecycleRetracted
}

// RefRelation names how one constraint relates to another.
type RefRelation string

const (
	RelSupersedes    RefRelation = "supersedes"
	RelExtends       RefRelation = "extends"
	RelRevises       RefRelation = "revises"
	RelConflictsWith RefRelation = "conflicts_with"
)

// ConstraintRef is a cross-reference from one constraint to another.
type ConstraintRef struct {
	ID       int         `json:"id"`
	Relation RefRelation `json:"relation"`
}

// ConstraintRecord is one accepted research finding. Records are append-only:
// revision appends a superseding record and flips the old record's state, the
// original statement text is never edited.
type ConstraintRecord struct {
	ID        int             `json:"id"`                  // Monotonically increasing, never reused
	Statement string          `json:"statement"`           // Free-text finding, preserved verbatim
	Tier      Tier            `json:"tier"`                // Evidentiary tier
	Scope     []string        `json:"scope,omitempty"`     // Corpus partitions/sections it applies to
	Evidence  []string        `json:"evidence,omitempty"`  // Source test identifiers
	Refs      []ConstraintRef `json:"refs,omitempty"`      // Cross-referenced constraints
	State     Lifecycle       `json:"state"`               // Lifecycle state
	Reason    string          `json:"reason,omitempty"`    // Required for revised/retracted records
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// InScope reports whether the record applies to the given scope tag. A
// record with no scope tags applies everywhere.
func (c ConstraintRecord) InScope(tag string) bool {
	if len(c.Scope) == 0 {
		return true
	}
	for _, s := range c.Scope {
		if s == tag {
			return true
		}
	}
	return false
}
