package morph

import (
	"sort"

	"github.com/epilectrik/voynich-sub016/internal/cache"
	"github.com/epilectrik/voynich-sub016/internal/model"
)

// Classifier assigns a decomposed token zero or one functional class from
// the rule table. Classification is prefix-first: a token can only receive a
// prefix-keyed class when its prefix span literally equals the rule's
// required prefix. Tokens with no matching rule are Unclassified, a valid
// and frequent outcome that must be counted, never dropped.
type Classifier struct {
	byPrefix map[string][]ClassRule // Candidate rules per literal prefix
	noPrefix []ClassRule            // Closed no-prefix family, keyed on middle/suffix
	memo     *cache.Memo            // nil when memoization is disabled
}

// NewClassifier builds a classifier from the vocabulary's rule table. Pass
// the decomposer's memo to share one store, or nil to disable memoization.
func NewClassifier(vocab *Vocabulary, memo *cache.Memo) *Classifier {
	c := &Classifier{
		byPrefix: make(map[string][]ClassRule),
		memo:     memo,
	}
	for _, r := range vocab.Classes {
		if r.Prefix == "" {
			c.noPrefix = append(c.noPrefix, r)
		} else {
			c.byPrefix[r.Prefix] = append(c.byPrefix[r.Prefix], r)
		}
	}
	// Priority order decides ties between candidate rules; file order breaks
	// equal priorities. SliceStable preserves the latter.
	for p := range c.byPrefix {
		rules := c.byPrefix[p]
		sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
	}
	sort.SliceStable(c.noPrefix, func(i, j int) bool { return c.noPrefix[i].Priority < c.noPrefix[j].Priority })
	return c
}

// Classify maps a decomposition to a functional class, or to Unclassified
// with the reason the lookup failed.
func (c *Classifier) Classify(d model.Decomposition) model.Classification {
	if c.memo != nil {
		if cl, ok := c.memo.Classification(d.Raw); ok {
			return cl
		}
	}
	cl := c.classify(d)
	if c.memo != nil {
		c.memo.SetClassification(d.Raw, cl)
	}
	return cl
}

func (c *Classifier) classify(d model.Decomposition) model.Classification {
	candidates := c.noPrefix
	if d.Prefix != "" {
		candidates = c.byPrefix[d.Prefix]
	}
	if len(candidates) == 0 {
		return model.Classification{Class: model.Unclassified, Reason: model.ReasonNoPrefixRoute}
	}

	middleMatched := false
	for _, r := range candidates {
		if !matches(r.Middles, d.Middle) {
			continue
		}
		middleMatched = true
		if !matches(r.Suffixes, d.Suffix) {
			continue
		}
		return model.Classification{Class: r.Tag, Reason: model.ReasonClassified}
	}
	if !middleMatched {
		return model.Classification{Class: model.Unclassified, Reason: model.ReasonNoMiddleMatch}
	}
	return model.Classification{Class: model.Unclassified, Reason: model.ReasonNoSuffixRoute}
}

// matches reports whether value is accepted by the rule's span list. An
// empty list accepts any value.
func matches(accepted []string, value string) bool {
	if len(accepted) == 0 {
		return true
	}
	for _, a := range accepted {
		if a == value {
			return true
		}
	}
	return false
}
