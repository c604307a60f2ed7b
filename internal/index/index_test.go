package index

import (
	"fmt"
	"testing"

	"github.com/epilectrik/voynich-sub016/internal/model"
	"github.com/epilectrik/voynich-sub016/internal/morph"
)

func testMorph(t *testing.T) (*morph.Decomposer, *morph.Classifier) {
	t.Helper()
	v := &morph.Vocabulary{
		Version:      1,
		Articulators: []string{"y"},
		Prefixes:     []string{"qo", "ch", "da"},
		Suffixes:     []string{"aiin", "dy", "y"},
		Classes: []morph.ClassRule{
			{Tag: "QO-DY", Prefix: "qo", Suffixes: []string{"dy"}, Priority: 10},
			{Tag: "CH-DY", Prefix: "ch", Suffixes: []string{"dy"}, Priority: 10},
			{Tag: "AIIN", Middles: []string{"d"}, Suffixes: []string{"aiin"}, Priority: 20},
		},
	}
	if err := v.Validate(); err != nil {
		t.Fatalf("test vocabulary invalid: %v", err)
	}
	d := morph.NewDecomposer(v, model.MorphConfig{CacheEnabled: true})
	return d, morph.NewClassifier(v, d.Memo())
}

// lineTokens builds one transcription line's tokens in word order.
func lineTokens(folio string, line int, corpus model.Partition, section model.Section, raws ...string) []model.Token {
	toks := make([]model.Token, len(raws))
	for i, raw := range raws {
		toks[i] = model.Token{
			Raw:         raw,
			Corpus:      corpus,
			Section:     section,
			Folio:       folio,
			Line:        line,
			Word:        i,
			Transcriber: "H",
		}
	}
	return toks
}

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	var tokens []model.Token
	// 11 folios: f1..f6 in corpus B (biological), f7..f11 in corpus A (herbal).
	for i := 1; i <= 11; i++ {
		folio := fmt.Sprintf("f%d", i)
		corpus, section := model.PartitionB, model.SectionBio
		if i > 6 {
			corpus, section = model.PartitionA, model.SectionHerbal
		}
		tokens = append(tokens, lineTokens(folio, 1, corpus, section,
			"qokedy", "chedy", "daiin", "qokedy")...)
	}
	d, c := testMorph(t)
	return Build(tokens, d, c)
}

func TestBuildAndCount(t *testing.T) {
	ix := buildTestIndex(t)

	if ix.Len() != 44 {
		t.Fatalf("Len = %d, want 44", ix.Len())
	}
	if n := ix.Count(Spec{Corpus: model.PartitionB}); n != 24 {
		t.Errorf("corpus B count = %d, want 24", n)
	}
	if n := ix.Count(Spec{Section: model.SectionHerbal}); n != 20 {
		t.Errorf("herbal count = %d, want 20", n)
	}
	if n := ix.Count(Spec{Folio: "f3"}); n != 4 {
		t.Errorf("folio f3 count = %d, want 4", n)
	}
	if n := ix.Count(Spec{Class: "QO-DY"}); n != 22 {
		t.Errorf("QO-DY count = %d, want 22", n)
	}
	if n := ix.Count(Spec{Corpus: model.PartitionB, Class: "QO-DY"}); n != 12 {
		t.Errorf("corpus B QO-DY count = %d, want 12", n)
	}
}

func TestSelectCorpusOrder(t *testing.T) {
	ix := buildTestIndex(t)

	entries := ix.Select(Spec{Folio: "f1"})
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	for i, e := range entries {
		if e.Token.Word != i {
			t.Errorf("entry %d has word index %d; order not preserved", i, e.Token.Word)
		}
	}

	// Same spec, same subset, every time.
	again := ix.Select(Spec{Folio: "f1"})
	for i := range entries {
		if entries[i].Token.Raw != again[i].Token.Raw || entries[i].Token.Word != again[i].Token.Word {
			t.Fatalf("entry %d differs between identical selections", i)
		}
	}
}

func TestPositionBuckets(t *testing.T) {
	d, c := testMorph(t)
	tokens := lineTokens("f1", 1, model.PartitionB, model.SectionBio,
		"qokedy", "chedy", "daiin", "chedy", "qokedy")
	ix := Build(tokens, d, c)

	want := []model.PositionBucket{
		model.BucketFirst, model.BucketEarly, model.BucketMid,
		model.BucketLate, model.BucketLast,
	}
	entries := ix.Select(Spec{})
	for i, e := range entries {
		if e.Bucket != want[i] {
			t.Errorf("word %d bucket = %q, want %q", i, e.Bucket, want[i])
		}
	}

	if n := ix.Count(Spec{Bucket: model.BucketFirst}); n != 1 {
		t.Errorf("first-bucket count = %d, want 1", n)
	}
}

func TestPositionBucketsShortLines(t *testing.T) {
	tests := []struct {
		lineLen int
		want    []model.PositionBucket
	}{
		{1, []model.PositionBucket{model.BucketFirst}},
		{2, []model.PositionBucket{model.BucketFirst, model.BucketLast}},
		{3, []model.PositionBucket{model.BucketFirst, model.BucketEarly, model.BucketLast}},
	}
	for _, tt := range tests {
		for w, want := range tt.want {
			if got := bucketOf(w, tt.lineLen); got != want {
				t.Errorf("bucketOf(%d, %d) = %q, want %q", w, tt.lineLen, got, want)
			}
		}
	}
}

func TestRegimeOverlay(t *testing.T) {
	ix := buildTestIndex(t)

	// Unlabeled folios match no regime constraint.
	if n := ix.Count(Spec{Regime: RegimeIs(0)}); n != 0 {
		t.Errorf("count before overlay = %d, want 0", n)
	}
	if r := ix.Regime("f1"); r != RegimeUnlabeled {
		t.Errorf("Regime(f1) = %d, want %d", r, RegimeUnlabeled)
	}

	// Label f1..f4 as regime 0, f5..f8 as regime 1; f9..f11 stay unlabeled.
	labels := map[string]int{
		"f1": 0, "f2": 0, "f3": 0, "f4": 0,
		"f5": 1, "f6": 1, "f7": 1, "f8": 1,
	}
	ix.ApplyRegimes(labels)

	if n := ix.Count(Spec{Regime: RegimeIs(0)}); n != 16 {
		t.Errorf("regime 0 count = %d, want 16", n)
	}
	if n := ix.Count(Spec{Regime: RegimeIs(1)}); n != 16 {
		t.Errorf("regime 1 count = %d, want 16", n)
	}
	if n := ix.Count(Spec{Regime: RegimeIs(RegimeUnlabeled)}); n != 12 {
		t.Errorf("unlabeled count = %d, want 12", n)
	}

	// Regime crosses the corpus split; combined constraints intersect.
	if n := ix.Count(Spec{Corpus: model.PartitionA, Regime: RegimeIs(1)}); n != 8 {
		t.Errorf("corpus A regime 1 count = %d, want 8", n)
	}

	folios := ix.Folios(Spec{Regime: RegimeIs(1)})
	if len(folios) != 4 || folios[0] != "f5" || folios[3] != "f8" {
		t.Errorf("regime 1 folios = %v", folios)
	}
}

func TestApplyRegimesReplacesOverlay(t *testing.T) {
	ix := buildTestIndex(t)
	ix.ApplyRegimes(map[string]int{"f1": 0})
	before := ix.Count(Spec{Regime: RegimeIs(0)})

	// Relabeling between phases needs no rebuild.
	ix.ApplyRegimes(map[string]int{"f1": 0, "f2": 0, "f3": 0})
	after := ix.Count(Spec{Regime: RegimeIs(0)})

	if before != 4 || after != 12 {
		t.Errorf("counts before/after relabel = %d/%d, want 4/12", before, after)
	}
	if r := ix.Regime("f1"); r != 0 {
		t.Errorf("Regime(f1) = %d after relabel, want 0", r)
	}
}

func TestSummary(t *testing.T) {
	d, c := testMorph(t)
	tokens := lineTokens("f1", 1, model.PartitionB, model.SectionBio,
		"qokedy", "qokedy", "chedy", "shedy", "xxxx")
	tokens[4].Uncertain = true
	ix := Build(tokens, d, c)

	s := ix.Summary(Spec{})
	if s.Tokens != 5 {
		t.Fatalf("Tokens = %d, want 5", s.Tokens)
	}
	if s.Types != 4 {
		t.Errorf("Types = %d, want 4", s.Types)
	}
	if s.Classified != 3 {
		t.Errorf("Classified = %d, want 3", s.Classified)
	}
	if want := 2.0 / 5.0; s.UnclassifiedFraction != want {
		t.Errorf("UnclassifiedFraction = %v, want %v", s.UnclassifiedFraction, want)
	}
	if want := 1.0 / 5.0; s.UncertainFraction != want {
		t.Errorf("UncertainFraction = %v, want %v", s.UncertainFraction, want)
	}
	if s.ClassCounts["QO-DY"] != 2 || s.ClassCounts["CH-DY"] != 1 {
		t.Errorf("ClassCounts = %v", s.ClassCounts)
	}
	if len(s.UnclassifiedByReason) == 0 {
		t.Error("UnclassifiedByReason is empty")
	}
}

func TestSummaryEmptyStratum(t *testing.T) {
	ix := buildTestIndex(t)
	s := ix.Summary(Spec{Folio: "f99"})
	if s.Tokens != 0 || s.UnclassifiedFraction != 0 || s.UncertainFraction != 0 {
		t.Errorf("empty stratum summary = %+v", s)
	}
}
