// Package index builds read-only queryable indices over a finalized token
// stream. Tokens are immutable, so the index is built eagerly once and
// shared across a whole analysis run; selection is deterministic and returns
// tokens in original corpus order.
package index

import (
	"github.com/epilectrik/voynich-sub016/internal/model"
	"github.com/epilectrik/voynich-sub016/internal/morph"
)

// RegimeUnlabeled marks folios with no regime overlay entry.
const RegimeUnlabeled = -1

// Entry is one indexed token with its derived decomposition and class.
// This is the triple every downstream phase consumes.
type Entry struct {
	Token         model.Token          `json:"token"`
	Decomposition model.Decomposition  `json:"decomposition"`
	Class         model.Classification `json:"class"`
	Bucket        model.PositionBucket `json:"bucket"`
}

// Spec names a stratum: any combination of grouping keys. Zero values mean
// "any". Two scripts computing the same Spec always get identical subsets.
type Spec struct {
	Corpus      model.Partition      `json:"corpus,omitempty"`
	Section     model.Section        `json:"section,omitempty"`
	Folio       string               `json:"folio,omitempty"`
	Bucket      model.PositionBucket `json:"bucket,omitempty"`
	Transcriber string               `json:"transcriber,omitempty"`
	Class       model.ClassTag       `json:"class,omitempty"`
	Regime      *int                 `json:"regime,omitempty"` // nil matches every regime
}

// RegimeIs is a convenience for building Specs with a regime constraint.
func RegimeIs(n int) *int {
	return &n
}

// Index is the stratification engine. Build once, query read-only.
type Index struct {
	entries []Entry // Original corpus order

	byCorpus  map[model.Partition][]int
	bySection map[model.Section][]int
	byFolio   map[string][]int
	byBucket  map[model.PositionBucket][]int
	byTag     map[string][]int // transcriber

	regimes map[string]int // Folio label overlay, joined at query time
}

// Build decomposes and classifies every token and constructs the inverted
// indices. The stream must be final: the index never observes later edits.
func Build(tokens []model.Token, dec *morph.Decomposer, cls *morph.Classifier) *Index {
	ix := &Index{
		entries:   make([]Entry, 0, len(tokens)),
		byCorpus:  make(map[model.Partition][]int),
		bySection: make(map[model.Section][]int),
		byFolio:   make(map[string][]int),
		byBucket:  make(map[model.PositionBucket][]int),
		byTag:     make(map[string][]int),
		regimes:   make(map[string]int),
	}

	lineLengths := lineLengths(tokens)
	for _, t := range tokens {
		d := dec.Decompose(t.Raw)
		e := Entry{
			Token:         t,
			Decomposition: d,
			Class:         cls.Classify(d),
			Bucket:        bucketOf(t.Word, lineLengths[lineKey{t.Folio, t.Line, t.Transcriber}]),
		}
		i := len(ix.entries)
		ix.entries = append(ix.entries, e)
		ix.byCorpus[t.Corpus] = append(ix.byCorpus[t.Corpus], i)
		ix.bySection[t.Section] = append(ix.bySection[t.Section], i)
		ix.byFolio[t.Folio] = append(ix.byFolio[t.Folio], i)
		ix.byBucket[e.Bucket] = append(ix.byBucket[e.Bucket], i)
		ix.byTag[t.Transcriber] = append(ix.byTag[t.Transcriber], i)
	}
	return ix
}

// ApplyRegimes joins externally computed per-folio cluster labels into the
// index as an overlay. No re-indexing happens; the overlay is consulted at
// query time, so labels can be replaced between phases.
func (ix *Index) ApplyRegimes(labels map[string]int) {
	ix.regimes = make(map[string]int, len(labels))
	for folio, regime := range labels {
		ix.regimes[folio] = regime
	}
}

// Regime returns the overlay label for a folio, or RegimeUnlabeled.
func (ix *Index) Regime(folio string) int {
	if r, ok := ix.regimes[folio]; ok {
		return r
	}
	return RegimeUnlabeled
}

// Len returns the total number of indexed tokens.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Select returns the stratum's entries in original corpus order.
func (ix *Index) Select(spec Spec) []Entry {
	var out []Entry
	for _, i := range ix.candidates(spec) {
		if ix.match(ix.entries[i], spec) {
			out = append(out, ix.entries[i])
		}
	}
	return out
}

// Count returns the stratum size without materializing the subset.
func (ix *Index) Count(spec Spec) int {
	n := 0
	for _, i := range ix.candidates(spec) {
		if ix.match(ix.entries[i], spec) {
			n++
		}
	}
	return n
}

// Folios returns the distinct folios in the stratum, in first-seen order.
func (ix *Index) Folios(spec Spec) []string {
	seen := make(map[string]bool)
	var out []string
	for _, i := range ix.candidates(spec) {
		e := ix.entries[i]
		if !ix.match(e, spec) || seen[e.Token.Folio] {
			continue
		}
		seen[e.Token.Folio] = true
		out = append(out, e.Token.Folio)
	}
	return out
}

// candidates picks the smallest posting list among the spec's single-key
// constraints; the remaining keys are checked by match. Posting lists hold
// indices in corpus order, so iteration order is stable.
func (ix *Index) candidates(spec Spec) []int {
	best := []int(nil)
	have := false
	consider := func(list []int, ok bool) {
		if !ok {
			return
		}
		if !have || len(list) < len(best) {
			best = list
			have = true
		}
	}
	if spec.Corpus != "" {
		consider(ix.byCorpus[spec.Corpus], true)
	}
	if spec.Section != "" {
		consider(ix.bySection[spec.Section], true)
	}
	if spec.Folio != "" {
		consider(ix.byFolio[spec.Folio], true)
	}
	if spec.Bucket != "" {
		consider(ix.byBucket[spec.Bucket], true)
	}
	if spec.Transcriber != "" {
		consider(ix.byTag[spec.Transcriber], true)
	}
	if have {
		return best
	}
	all := make([]int, len(ix.entries))
	for i := range all {
		all[i] = i
	}
	return all
}

func (ix *Index) match(e Entry, spec Spec) bool {
	if spec.Corpus != "" && e.Token.Corpus != spec.Corpus {
		return false
	}
	if spec.Section != "" && e.Token.Section != spec.Section {
		return false
	}
	if spec.Folio != "" && e.Token.Folio != spec.Folio {
		return false
	}
	if spec.Bucket != "" && e.Bucket != spec.Bucket {
		return false
	}
	if spec.Transcriber != "" && e.Token.Transcriber != spec.Transcriber {
		return false
	}
	if spec.Class != model.Unclassified && e.Class.Class != spec.Class {
		return false
	}
	if spec.Regime != nil && ix.Regime(e.Token.Folio) != *spec.Regime {
		return false
	}
	return true
}

type lineKey struct {
	folio       string
	line        int
	transcriber string
}

// lineLengths counts words per physical line so buckets can be derived.
func lineLengths(tokens []model.Token) map[lineKey]int {
	lengths := make(map[lineKey]int)
	for _, t := range tokens {
		k := lineKey{t.Folio, t.Line, t.Transcriber}
		if t.Word+1 > lengths[k] {
			lengths[k] = t.Word + 1
		}
	}
	return lengths
}

// bucketOf derives the coarse line position. First and last positions are
// their own buckets; interior positions split into terciles.
func bucketOf(word, lineLen int) model.PositionBucket {
	if word == 0 {
		return model.BucketFirst
	}
	if word == lineLen-1 {
		return model.BucketLast
	}
	interior := lineLen - 2
	rel := word - 1
	switch {
	case rel*3 < interior:
		return model.BucketEarly
	case rel*3 < 2*interior:
		return model.BucketMid
	default:
		return model.BucketLate
	}
}
