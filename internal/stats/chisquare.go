package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/epilectrik/voynich-sub016/internal/model"
)

// minExpectedCell is the classic threshold below which the asymptotic
// chi-square approximation is invalid and the harness switches to the
// permutation variant.
const minExpectedCell = 5.0

// ChiSquare tests whether two strata draw categories from the same
// distribution. countsA and countsB are category frequency tables (e.g.,
// class counts from index.Summary). When every expected cell is large
// enough the asymptotic test runs; otherwise the permutation variant takes
// over, so small-sample strata degrade gracefully.
func (h *Harness) ChiSquare(countsA, countsB map[string]int) (model.TestResult, error) {
	cats, obsA, obsB, nA, nB := alignCounts(countsA, countsB)
	if err := h.checkN("chi_square", nA); err != nil {
		return model.TestResult{}, err
	}
	if err := h.checkN("chi_square", nB); err != nil {
		return model.TestResult{}, err
	}
	if len(cats) < 2 {
		return model.TestResult{}, &InsufficientDataError{Test: "chi_square", N: len(cats), Min: 2}
	}

	stat, minExpected := chiSquareStat(obsA, obsB)
	n := nA + nB
	res := model.TestResult{
		Test:       "chi_square",
		Statistic:  stat,
		EffectSize: math.Sqrt(stat / float64(n)), // Cramér's V for a 2-row table
		NA:         nA,
		NB:         nB,
	}

	if minExpected >= minExpectedCell {
		df := float64(len(cats) - 1)
		res.Method = "asymptotic"
		res.PValue = 1 - distuv.ChiSquared{K: df}.CDF(stat)
		return res, nil
	}

	// Permutation variant: shuffle group membership over the pooled
	// category sequence and recompute the statistic.
	iters := h.resamples()
	pool := poolCategories(obsA, obsB)
	rng := h.rng()
	exceed := 0
	for it := 0; it < iters; it++ {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		permA := make([]int, len(cats))
		permB := make([]int, len(cats))
		for i, c := range pool {
			if i < nA {
				permA[c]++
			} else {
				permB[c]++
			}
		}
		s, _ := chiSquareStat(permA, permB)
		if s >= stat {
			exceed++
		}
	}
	res.Method = "permutation"
	res.Resamples = iters
	res.Seed = h.cfg.Seed
	res.PValue = float64(1+exceed) / float64(1+iters)
	return res, nil
}

// alignCounts unions the two category sets into a stable sorted order.
func alignCounts(countsA, countsB map[string]int) (cats []string, obsA, obsB []int, nA, nB int) {
	seen := make(map[string]bool)
	for c := range countsA {
		seen[c] = true
	}
	for c := range countsB {
		seen[c] = true
	}
	cats = make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	obsA = make([]int, len(cats))
	obsB = make([]int, len(cats))
	for i, c := range cats {
		obsA[i] = countsA[c]
		obsB[i] = countsB[c]
		nA += obsA[i]
		nB += obsB[i]
	}
	return cats, obsA, obsB, nA, nB
}

// chiSquareStat computes the statistic for a 2-row contingency table and
// returns the smallest expected cell alongside it.
func chiSquareStat(obsA, obsB []int) (stat, minExpected float64) {
	nA, nB := 0, 0
	for i := range obsA {
		nA += obsA[i]
		nB += obsB[i]
	}
	total := float64(nA + nB)
	minExpected = math.Inf(1)
	for i := range obsA {
		col := float64(obsA[i] + obsB[i])
		if col == 0 {
			continue
		}
		expA := col * float64(nA) / total
		expB := col * float64(nB) / total
		if expA < minExpected {
			minExpected = expA
		}
		if expB < minExpected {
			minExpected = expB
		}
		stat += (float64(obsA[i])-expA)*(float64(obsA[i])-expA)/expA +
			(float64(obsB[i])-expB)*(float64(obsB[i])-expB)/expB
	}
	return stat, minExpected
}

// poolCategories flattens both observation rows into one sequence of
// category indices (group A first).
func poolCategories(obsA, obsB []int) []int {
	var pool []int
	for cat, n := range obsA {
		for i := 0; i < n; i++ {
			pool = append(pool, cat)
		}
	}
	for cat, n := range obsB {
		for i := 0; i < n; i++ {
			pool = append(pool, cat)
		}
	}
	return pool
}
