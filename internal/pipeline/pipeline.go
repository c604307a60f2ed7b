// Package pipeline orchestrates a full analysis run: read transcription
// sources, build the stratification index, compute per-stratum summaries,
// and run the standard corpus comparison battery. The pipeline is glue;
// every number in the report comes from the index and the stats harness.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/epilectrik/voynich-sub016/internal/corpus"
	"github.com/epilectrik/voynich-sub016/internal/index"
	"github.com/epilectrik/voynich-sub016/internal/model"
	"github.com/epilectrik/voynich-sub016/internal/morph"
	"github.com/epilectrik/voynich-sub016/internal/stats"
	"github.com/epilectrik/voynich-sub016/internal/worker"
)

// Pipeline wires the reader, the morphological layer, the index, and the
// stats harness under one configuration.
type Pipeline struct {
	cfg     *model.Config
	vocab   *morph.Vocabulary
	reader  *corpus.Reader
	dec     *morph.Decomposer
	cls     *morph.Classifier
	harness *stats.Harness
}

// New creates a pipeline, loading the vocabulary from configuration.
func New(cfg *model.Config) (*Pipeline, error) {
	vocab, err := morph.LoadVocabulary(cfg.Morph.VocabularyPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	dec := morph.NewDecomposer(vocab, cfg.Morph)
	return &Pipeline{
		cfg:     cfg,
		vocab:   vocab,
		reader:  corpus.NewReader(cfg.Corpus),
		dec:     dec,
		cls:     morph.NewClassifier(vocab, dec.Memo()),
		harness: stats.NewHarness(cfg.Stats),
	}, nil
}

// Comparison is one battery entry: a named test over two strata. A test
// refusing to run (undersized stratum) records the refusal instead of a
// number.
type Comparison struct {
	Name   string           `json:"name"`
	Result model.TestResult `json:"result"`
	Error  string           `json:"error,omitempty"`
}

// Report is the complete output of one analysis run.
type Report struct {
	GeneratedAt       time.Time                `json:"generated_at"`
	Sources           []string                 `json:"sources"`
	VocabularyVersion int                      `json:"vocabulary_version"`
	Overall           index.Summary            `json:"overall"`
	Corpora           map[string]index.Summary `json:"corpora"`
	Sections          map[string]index.Summary `json:"sections,omitempty"`
	Comparisons       []Comparison             `json:"comparisons,omitempty"`
}

// Run reads the sources, builds the index, and produces the report.
func (p *Pipeline) Run(ctx context.Context, sources ...string) (*Report, error) {
	ix, err := p.BuildIndex(sources...)
	if err != nil {
		return nil, err
	}
	return p.Analyze(ctx, ix, sources), nil
}

// BuildIndex reads the sources and builds the stratification index. Exposed
// separately so callers can apply a regime overlay before analysis.
func (p *Pipeline) BuildIndex(sources ...string) (*index.Index, error) {
	tokens, err := p.reader.ReadFiles(sources...)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	return index.Build(tokens, p.dec, p.cls), nil
}

// Analyze computes summaries and runs the comparison battery over a built
// index. The battery runs concurrently; report order is fixed.
func (p *Pipeline) Analyze(ctx context.Context, ix *index.Index, sources []string) *Report {
	rep := &Report{
		GeneratedAt:       time.Now().UTC(),
		Sources:           sources,
		VocabularyVersion: p.vocab.Version,
		Overall:           ix.Summary(index.Spec{}),
		Corpora:           make(map[string]index.Summary),
		Sections:          make(map[string]index.Summary),
	}

	for _, part := range []model.Partition{model.PartitionA, model.PartitionB} {
		if s := ix.Summary(index.Spec{Corpus: part}); s.Tokens > 0 {
			rep.Corpora[string(part)] = s
		}
	}
	for _, sec := range []model.Section{
		model.SectionHerbal, model.SectionAstro, model.SectionBio,
		model.SectionPharma, model.SectionStars, model.SectionCosmo,
		model.SectionText,
	} {
		if s := ix.Summary(index.Spec{Section: sec}); s.Tokens > 0 {
			rep.Sections[string(sec)] = s
		}
	}

	pool := worker.NewPool(runtime.NumCPU())
	outcomes := pool.Run(ctx, p.battery(ix))
	for _, o := range outcomes {
		c := Comparison{Name: o.Name, Result: o.Result}
		if o.Err != nil {
			c.Error = o.Err.Error()
			c.Result = model.TestResult{}
		}
		rep.Comparisons = append(rep.Comparisons, c)
	}
	return rep
}

// battery is the standard cross-corpus comparison set. Each task reads the
// shared index read-only and owns its result, so they run in parallel.
func (p *Pipeline) battery(ix *index.Index) []worker.Task {
	specA := index.Spec{Corpus: model.PartitionA}
	specB := index.Spec{Corpus: model.PartitionB}

	return []worker.Task{
		worker.TaskFunc{
			TaskName: "class_distribution_a_vs_b",
			Fn: func(ctx context.Context) (model.TestResult, error) {
				sa, sb := ix.Summary(specA), ix.Summary(specB)
				res, err := p.harness.ChiSquare(classCounts(sa), classCounts(sb))
				if err != nil {
					return res, err
				}
				// Class-count tests exclude unclassified tokens; the report
				// must say how many.
				if total := sa.Tokens + sb.Tokens; total > 0 {
					res.ExcludedFraction = float64(total-sa.Classified-sb.Classified) / float64(total)
				}
				return res, nil
			},
		},
		worker.TaskFunc{
			TaskName: "token_length_a_vs_b",
			Fn: func(ctx context.Context) (model.TestResult, error) {
				return p.harness.MannWhitney(tokenLengths(ix, specA), tokenLengths(ix, specB))
			},
		},
		worker.TaskFunc{
			TaskName: "line_first_vs_last_length",
			Fn: func(ctx context.Context) (model.TestResult, error) {
				first := tokenLengths(ix, index.Spec{Bucket: model.BucketFirst})
				last := tokenLengths(ix, index.Spec{Bucket: model.BucketLast})
				return p.harness.Permutation(first, last, stats.Mean)
			},
		},
	}
}

func classCounts(s index.Summary) map[string]int {
	out := make(map[string]int, len(s.ClassCounts))
	for tag, n := range s.ClassCounts {
		out[string(tag)] = n
	}
	return out
}

func tokenLengths(ix *index.Index, spec index.Spec) []float64 {
	entries := ix.Select(spec)
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = float64(len(e.Token.Raw))
	}
	return out
}
