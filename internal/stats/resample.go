package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/epilectrik/voynich-sub016/internal/model"
)

// Metric reduces a sample to one number (mean, median, type-token ratio...).
type Metric func(xs []float64) float64

// Mean is the default metric.
func Mean(xs []float64) float64 {
	return stat.Mean(xs, nil)
}

// Median computes the sample median without mutating the input.
func Median(xs []float64) float64 {
	s := append([]float64{}, xs...)
	sort.Float64s(s)
	n := len(s)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// Permutation tests whether metric differs between xs and ys by shuffling
// group membership. Two-sided; the observed difference is the statistic.
func (h *Harness) Permutation(xs, ys []float64, metric Metric) (model.TestResult, error) {
	if err := h.checkN("permutation", len(xs)); err != nil {
		return model.TestResult{}, err
	}
	if err := h.checkN("permutation", len(ys)); err != nil {
		return model.TestResult{}, err
	}
	if metric == nil {
		metric = Mean
	}

	obs := metric(xs) - metric(ys)
	pooled := append(append([]float64{}, xs...), ys...)
	iters := h.resamples()
	rng := h.rng()
	exceed := 0
	for it := 0; it < iters; it++ {
		rng.Shuffle(len(pooled), func(i, j int) { pooled[i], pooled[j] = pooled[j], pooled[i] })
		d := metric(pooled[:len(xs)]) - metric(pooled[len(xs):])
		if math.Abs(d) >= math.Abs(obs) {
			exceed++
		}
	}

	return model.TestResult{
		Test:       "permutation",
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

// Bootstrap estimates a percentile confidence interval for metric over xs.
// The point estimate is the statistic; the p-value tests H0: metric == 0 by
// the fraction of resamples crossing zero (two-sided).
func (h *Harness) Bootstrap(xs []float64, metric Metric, confidence float64) (model.TestResult, error) {
	if err := h.checkN("bootstrap", len(xs)); err != nil {
		return model.TestResult{}, err
	}
	if metric == nil {
		metric = Mean
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}

	obs := metric(xs)
	iters := h.resamples()
	rng := h.rng()
	estimates := make([]float64, iters)
	sample := make([]float64, len(xs))
	opposite := 0
	for it := 0; it < iters; it++ {
		for i := range sample {
			sample[i] = xs[rng.Intn(len(xs))]
		}
		estimates[it] = metric(sample)
		if (obs >= 0 && estimates[it] <= 0) || (obs < 0 && estimates[it] >= 0) {
			opposite++
		}
	}
	sort.Float64s(estimates)

	alpha := (1 - confidence) / 2
	lo := estimates[int(alpha*float64(iters))]
	hi := estimates[min(iters-1, int((1-alpha)*float64(iters)))]

	return model.TestResult{
		Test:       "bootstrap",
		Method:     "bootstrap",
		Statistic:  obs,
		PValue:     math.Min(1, 2*float64(opposite)/float64(iters)),
		EffectSize: obs,
		NA:         len(xs),
		Resamples:  iters,
		Seed:       h.cfg.Seed,
		CILow:      lo,
		CIHigh:     hi,
	}, nil
}
