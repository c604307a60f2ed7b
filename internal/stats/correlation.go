package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/epilectrik/voynich-sub016/internal/model"
)

// Correlation computes Pearson or Spearman correlation between paired
// samples, with a permutation p-value (one sample shuffled against the
// other), so small n stays valid without distributional assumptions.
func (h *Harness) Correlation(xs, ys []float64, kind string) (model.TestResult, error) {
	if len(xs) != len(ys) {
		return model.TestResult{}, fmt.Errorf("correlation: paired samples differ in length (%d vs %d)", len(xs), len(ys))
	}
	if err := h.checkN("correlation_"+kind, len(xs)); err != nil {
		return model.TestResult{}, err
	}

	var corr func(a, b []float64) float64
	switch kind {
	case "pearson":
		corr = func(a, b []float64) float64 { return stat.Correlation(a, b, nil) }
	case "spearman":
		corr = func(a, b []float64) float64 {
			return stat.Correlation(ranks(a), ranks(b), nil)
		}
	default:
		return model.TestResult{}, fmt.Errorf("correlation: unknown kind %q", kind)
	}

	obs := corr(xs, ys)
	iters := h.resamples()
	rng := h.rng()
	shuffled := append([]float64{}, ys...)
	exceed := 0
	for it := 0; it < iters; it++ {
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		if math.Abs(corr(xs, shuffled)) >= math.Abs(obs) {
			exceed++
		}
	}

	return model.TestResult{
		Test:       "correlation_" + kind,
		Method:     "permutation",
		Statistic:  obs,
		PValue:     float64(1+exceed) / float64(1+iters),
		EffectSize: obs,
		NA:         len(xs),
		NB:         len(ys),
		Resamples:  iters,
		Seed:       h.cfg.Seed,
	}, nil
}

// ranks converts values to midranks for Spearman correlation.
func ranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return xs[idx[i]] < xs[idx[j]] })

	out := make([]float64, len(xs))
	i := 0
	for i < len(idx) {
		j := i
		for j < len(idx) && xs[idx[j]] == xs[idx[i]] {
			j++
		}
		midrank := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			out[idx[k]] = midrank
		}
		i = j
	}
	return out
}
