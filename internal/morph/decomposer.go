package morph

import (
	"strings"

	"github.com/epilectrik/voynich-sub016/internal/cache"
	"github.com/epilectrik/voynich-sub016/internal/model"
)

// Articulator acceptance policies. The default only peels an articulator
// when doing so yields a strictly better prefix match, which prevents
// spurious over-segmentation.
const (
	PolicyRequireBetterPrefix = "require-better-prefix"
	PolicyAlways              = "always"
)

// Decomposer produces the unique best-match decomposition of a raw token
// under the loaded vocabulary. Decompose is total: every input yields
// exactly one decomposition, with the all-middle bare split as the
// universal fallback.
type Decomposer struct {
	vocab  *Vocabulary
	policy string
	memo   *cache.Memo // nil when memoization is disabled
}

// NewDecomposer creates a decomposer over the given vocabulary.
func NewDecomposer(vocab *Vocabulary, cfg model.MorphConfig) *Decomposer {
	policy := cfg.ArticulatorPolicy
	if policy == "" {
		policy = PolicyRequireBetterPrefix
	}
	d := &Decomposer{vocab: vocab, policy: policy}
	if cfg.CacheEnabled {
		d.memo = cache.NewMemo()
	}
	return d
}

// Decompose splits raw into articulator/prefix/middle/suffix spans.
// The result is deterministic and reconstructs raw exactly.
func (d *Decomposer) Decompose(raw string) model.Decomposition {
	if d.memo != nil {
		if dec, ok := d.memo.Decomposition(raw); ok {
			return dec
		}
	}
	dec := d.decompose(raw)
	if d.memo != nil {
		d.memo.SetDecomposition(raw, dec)
	}
	return dec
}

// Memo exposes the decomposer's memo store so the classifier can share it.
func (d *Decomposer) Memo() *cache.Memo {
	return d.memo
}

func (d *Decomposer) decompose(raw string) model.Decomposition {
	base := d.splitBody(raw)
	base.Raw = raw

	// Try peeling an articulator from the very front. Articulators are
	// checked in vocabulary order; the first acceptable peel wins.
	for _, a := range d.vocab.Articulators {
		if !strings.HasPrefix(raw, a) || len(raw) <= len(a) {
			continue
		}
		alt := d.splitBody(raw[len(a):])
		if alt.Prefix == "" {
			continue
		}
		if d.policy == PolicyRequireBetterPrefix && len(alt.Prefix) <= len(base.Prefix) {
			continue
		}
		alt.Raw = raw
		alt.Articulator = a
		return alt
	}
	return base
}

// splitBody finds the (prefix, middle, suffix) split of body maximizing the
// number of characters in non-middle spans. Ties: the longer prefix wins
// over the longer suffix; remaining ties fall to vocabulary file order,
// which is canonical and versioned. The empty split is always a candidate,
// so every body has a valid (possibly bare) result.
func (d *Decomposer) splitBody(body string) model.Decomposition {
	best := model.Decomposition{Middle: body}
	bestScore := 0
	ambiguous := false

	prefixes := append([]string{""}, d.vocab.Prefixes...)
	suffixes := append([]string{""}, d.vocab.Suffixes...)

	for _, p := range prefixes {
		if p != "" && !strings.HasPrefix(body, p) {
			continue
		}
		rest := body[len(p):]
		for _, s := range suffixes {
			if s != "" && (!strings.HasSuffix(rest, s) || len(s) > len(rest)) {
				continue
			}
			score := len(p) + len(s)
			if score == 0 {
				continue
			}
			switch {
			case score > bestScore:
				best = model.Decomposition{Prefix: p, Middle: rest[:len(rest)-len(s)], Suffix: s}
				bestScore = score
				ambiguous = false
			case score == bestScore:
				// Equal specificity: prefix match wins over suffix match;
				// among equals the earlier vocabulary entry keeps the slot.
				if len(p) > len(best.Prefix) {
					best = model.Decomposition{Prefix: p, Middle: rest[:len(rest)-len(s)], Suffix: s}
				}
				ambiguous = true
			}
		}
	}

	best.Ambiguous = ambiguous
	return best
}
