package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/epilectrik/voynich-sub016/internal/model"
)

// exactThreshold is the combined sample size below which Mann-Whitney
// switches from the normal approximation to the permutation variant.
const exactThreshold = 30

// MannWhitney tests whether xs and ys come from the same distribution by
// rank. Small combined samples use the permutation variant; larger samples
// use the normal approximation with tie correction. Effect size is the
// rank-biserial correlation.
func (h *Harness) MannWhitney(xs, ys []float64) (model.TestResult, error) {
	if err := h.checkN("mann_whitney", len(xs)); err != nil {
		return model.TestResult{}, err
	}
	if err := h.checkN("mann_whitney", len(ys)); err != nil {
		return model.TestResult{}, err
	}

	u, tieSum := uStatistic(xs, ys)
	nA, nB := float64(len(xs)), float64(len(ys))
	res := model.TestResult{
		Test:       "mann_whitney",
		Statistic:  u,
		EffectSize: 1 - 2*u/(nA*nB), // Rank-biserial correlation
		NA:         len(xs),
		NB:         len(ys),
	}

	if len(xs)+len(ys) <= exactThreshold {
		iters := h.resamples()
		pooled := append(append([]float64{}, xs...), ys...)
		rng := h.rng()
		obsDev := math.Abs(u - nA*nB/2)
		exceed := 0
		for it := 0; it < iters; it++ {
			rng.Shuffle(len(pooled), func(i, j int) { pooled[i], pooled[j] = pooled[j], pooled[i] })
			pu, _ := uStatistic(pooled[:len(xs)], pooled[len(xs):])
			if math.Abs(pu-nA*nB/2) >= obsDev {
				exceed++
			}
		}
		res.Method = "permutation"
		res.Resamples = iters
		res.Seed = h.cfg.Seed
		res.PValue = float64(1+exceed) / float64(1+iters)
		return res, nil
	}

	// Normal approximation with tie correction.
	n := nA + nB
	mu := nA * nB / 2
	sigma := math.Sqrt(nA * nB / 12 * ((n + 1) - tieSum/(n*(n-1))))
	if sigma == 0 {
		// All values identical: no evidence of difference.
		res.Method = "asymptotic"
		res.PValue = 1
		return res, nil
	}
	z := (u - mu) / sigma
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	res.Method = "asymptotic"
	res.Statistic = u
	res.PValue = 2 * norm.CDF(-math.Abs(z))
	return res, nil
}

// uStatistic computes the Mann-Whitney U for the first sample using
// midranks, and the tie-correction sum Σ(t³-t).
func uStatistic(xs, ys []float64) (u, tieSum float64) {
	type obs struct {
		v     float64
		first bool
	}
	all := make([]obs, 0, len(xs)+len(ys))
	for _, v := range xs {
		all = append(all, obs{v, true})
	}
	for _, v := range ys {
		all = append(all, obs{v, false})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].v < all[j].v })

	rankSumX := 0.0
	i := 0
	for i < len(all) {
		j := i
		for j < len(all) && all[j].v == all[i].v {
			j++
		}
		t := float64(j - i)
		midrank := float64(i+j+1) / 2 // Average of 1-based ranks i+1..j
		for k := i; k < j; k++ {
			if all[k].first {
				rankSumX += midrank
			}
		}
		if t > 1 {
			tieSum += t*t*t - t
		}
		i = j
	}

	nA := float64(len(xs))
	u = rankSumX - nA*(nA+1)/2
	return u, tieSum
}
