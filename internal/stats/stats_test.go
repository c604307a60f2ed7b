package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/epilectrik/voynich-sub016/internal/model"
)

func testHarness() *Harness {
	return NewHarness(model.StatsConfig{
		MinSampleSize: 5,
		Resamples:     500,
		MaxResamples:  20000,
		Seed:          7,
	})
}

func seq(lo, hi float64) []float64 {
	var out []float64
	for v := lo; v <= hi; v++ {
		out = append(out, v)
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestInsufficientData(t *testing.T) {
	h := NewHarness(model.StatsConfig{MinSampleSize: 10, Resamples: 100, MaxResamples: 100, Seed: 1})
	small := []float64{1, 2, 3}
	big := seq(1, 20)

	tests := []struct {
		name string
		run  func() error
	}{
		{"chi_square", func() error {
			_, err := h.ChiSquare(map[string]int{"a": 2, "b": 1}, map[string]int{"a": 10, "b": 10})
			return err
		}},
		{"mann_whitney", func() error {
			_, err := h.MannWhitney(small, big)
			return err
		}},
		{"permutation", func() error {
			_, err := h.Permutation(small, big, Mean)
			return err
		}},
		{"bootstrap", func() error {
			_, err := h.Bootstrap(small, Mean, 0.95)
			return err
		}},
		{"correlation", func() error {
			_, err := h.Correlation(small, small, "pearson")
			return err
		}},
	}

	for _, tt := range tests {
		err := tt.run()
		var ie *InsufficientDataError
		if !errors.As(err, &ie) {
			t.Errorf("%s: err = %v, want InsufficientDataError", tt.name, err)
			continue
		}
		if ie.N != 3 || ie.Min != 10 {
			t.Errorf("%s: error reports n=%d min=%d, want n=3 min=10", tt.name, ie.N, ie.Min)
		}
	}
}

func TestChiSquareEqualDistributions(t *testing.T) {
	h := testHarness()
	counts := map[string]int{"QO-DY": 50, "CH-DY": 50}
	res, err := h.ChiSquare(counts, counts)
	if err != nil {
		t.Fatalf("ChiSquare: %v", err)
	}
	if res.Method != "asymptotic" {
		t.Errorf("Method = %q, want asymptotic", res.Method)
	}
	if res.Statistic != 0 {
		t.Errorf("Statistic = %v, want 0", res.Statistic)
	}
	if res.PValue < 0.99 {
		t.Errorf("PValue = %v for identical distributions", res.PValue)
	}
	if res.NA != 100 || res.NB != 100 {
		t.Errorf("sample sizes = %d/%d, want 100/100", res.NA, res.NB)
	}
}

func TestChiSquareSkewedDistributions(t *testing.T) {
	h := testHarness()
	res, err := h.ChiSquare(
		map[string]int{"QO-DY": 90, "CH-DY": 10},
		map[string]int{"QO-DY": 10, "CH-DY": 90},
	)
	if err != nil {
		t.Fatalf("ChiSquare: %v", err)
	}
	if res.Method != "asymptotic" {
		t.Errorf("Method = %q, want asymptotic", res.Method)
	}
	if res.PValue > 0.001 {
		t.Errorf("PValue = %v for strongly skewed distributions", res.PValue)
	}
	if res.EffectSize <= 0.5 {
		t.Errorf("EffectSize = %v, want a large effect", res.EffectSize)
	}
}

func TestChiSquareSmallCellsUsePermutation(t *testing.T) {
	h := testHarness()
	res, err := h.ChiSquare(
		map[string]int{"a": 6, "b": 1},
		map[string]int{"a": 1, "b": 6},
	)
	if err != nil {
		t.Fatalf("ChiSquare: %v", err)
	}
	if res.Method != "permutation" {
		t.Errorf("Method = %q, want permutation for small expected cells", res.Method)
	}
	if res.Resamples != 500 || res.Seed != 7 {
		t.Errorf("resampling provenance = %d iters seed %d, want 500/7", res.Resamples, res.Seed)
	}
	if res.PValue <= 0 || res.PValue > 0.1 {
		t.Errorf("PValue = %v, want small but nonzero", res.PValue)
	}
}

func TestChiSquareSingleCategory(t *testing.T) {
	h := testHarness()
	_, err := h.ChiSquare(map[string]int{"a": 20}, map[string]int{"a": 20})
	var ie *InsufficientDataError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want InsufficientDataError for one category", err)
	}
}

func TestMannWhitneyShifted(t *testing.T) {
	h := testHarness()
	res, err := h.MannWhitney(seq(1, 20), seq(31, 50))
	if err != nil {
		t.Fatalf("MannWhitney: %v", err)
	}
	if res.Method != "asymptotic" {
		t.Errorf("Method = %q, want asymptotic above the exact threshold", res.Method)
	}
	if res.PValue > 0.001 {
		t.Errorf("PValue = %v for fully separated samples", res.PValue)
	}
	// Every x ranks below every y: U = 0, rank-biserial = 1.
	if res.Statistic != 0 || res.EffectSize != 1 {
		t.Errorf("U = %v, effect = %v; want 0 and 1", res.Statistic, res.EffectSize)
	}
}

func TestMannWhitneyAllTied(t *testing.T) {
	h := testHarness()
	res, err := h.MannWhitney(repeat(5, 16), repeat(5, 16))
	if err != nil {
		t.Fatalf("MannWhitney: %v", err)
	}
	if res.PValue != 1 {
		t.Errorf("PValue = %v for identical constant samples, want 1", res.PValue)
	}
}

func TestMannWhitneySmallSamplePermutation(t *testing.T) {
	h := testHarness()
	res, err := h.MannWhitney([]float64{1, 2, 3, 4, 5}, []float64{10, 11, 12, 13, 14})
	if err != nil {
		t.Fatalf("MannWhitney: %v", err)
	}
	if res.Method != "permutation" {
		t.Errorf("Method = %q, want permutation at or below the exact threshold", res.Method)
	}
	if res.PValue > 0.05 {
		t.Errorf("PValue = %v for fully separated small samples", res.PValue)
	}

	// Same configuration, same result.
	again, err := testHarness().MannWhitney([]float64{1, 2, 3, 4, 5}, []float64{10, 11, 12, 13, 14})
	if err != nil {
		t.Fatalf("MannWhitney rerun: %v", err)
	}
	if res.PValue != again.PValue {
		t.Errorf("permutation p differs across runs: %v vs %v", res.PValue, again.PValue)
	}
}

func TestPermutationMeanDifference(t *testing.T) {
	h := testHarness()
	xs := []float64{1, 2, 1, 2, 1, 2, 1, 2}
	ys := []float64{9, 10, 9, 10, 9, 10, 9, 10}

	res, err := h.Permutation(xs, ys, Mean)
	if err != nil {
		t.Fatalf("Permutation: %v", err)
	}
	if res.PValue > 0.01 {
		t.Errorf("PValue = %v for widely separated means", res.PValue)
	}
	if res.Statistic >= 0 {
		t.Errorf("Statistic = %v, want negative mean difference", res.Statistic)
	}

	same, err := h.Permutation(xs, xs, Mean)
	if err != nil {
		t.Fatalf("Permutation: %v", err)
	}
	if same.PValue < 0.5 {
		t.Errorf("PValue = %v for identical groups, want close to 1", same.PValue)
	}
}

func TestPermutationDeterministic(t *testing.T) {
	xs, ys := seq(1, 10), seq(5, 14)
	first, err := testHarness().Permutation(xs, ys, Median)
	if err != nil {
		t.Fatal(err)
	}
	second, err := testHarness().Permutation(xs, ys, Median)
	if err != nil {
		t.Fatal(err)
	}
	if first.PValue != second.PValue || first.Statistic != second.Statistic {
		t.Errorf("same seed gave different results: %+v vs %+v", first, second)
	}
}

func TestBootstrapConfidenceInterval(t *testing.T) {
	h := testHarness()
	xs := []float64{9, 10, 11, 10, 9, 11, 10, 10, 9, 11}

	res, err := h.Bootstrap(xs, Mean, 0.95)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if res.Statistic != Mean(xs) {
		t.Errorf("Statistic = %v, want point estimate %v", res.Statistic, Mean(xs))
	}
	if res.CILow >= res.CIHigh {
		t.Errorf("CI = [%v, %v]", res.CILow, res.CIHigh)
	}
	if res.CILow > res.Statistic || res.CIHigh < res.Statistic {
		t.Errorf("CI [%v, %v] excludes the point estimate %v", res.CILow, res.CIHigh, res.Statistic)
	}
	// All observations are near 10; no resample crosses zero.
	if res.PValue != 0 {
		t.Errorf("PValue = %v, want 0", res.PValue)
	}

	again, err := testHarness().Bootstrap(xs, Mean, 0.95)
	if err != nil {
		t.Fatal(err)
	}
	if res.CILow != again.CILow || res.CIHigh != again.CIHigh {
		t.Errorf("same seed gave different CIs: [%v, %v] vs [%v, %v]",
			res.CILow, res.CIHigh, again.CILow, again.CIHigh)
	}
}

func TestResampleIterationCap(t *testing.T) {
	h := NewHarness(model.StatsConfig{
		MinSampleSize: 5,
		Resamples:     100000,
		MaxResamples:  200,
		Seed:          1,
	})
	res, err := h.Permutation(seq(1, 10), seq(1, 10), Mean)
	if err != nil {
		t.Fatalf("Permutation: %v", err)
	}
	if res.Resamples != 200 {
		t.Errorf("Resamples = %d, want capped at 200", res.Resamples)
	}
}

func TestCorrelation(t *testing.T) {
	h := testHarness()
	xs := seq(1, 12)
	linear := make([]float64, len(xs))
	cubed := make([]float64, len(xs))
	for i, v := range xs {
		linear[i] = 3*v + 1
		cubed[i] = v * v * v
	}

	res, err := h.Correlation(xs, linear, "pearson")
	if err != nil {
		t.Fatalf("Correlation pearson: %v", err)
	}
	if math.Abs(res.Statistic-1) > 1e-9 {
		t.Errorf("pearson r = %v for a linear relation, want 1", res.Statistic)
	}
	if res.PValue > 0.01 {
		t.Errorf("pearson PValue = %v", res.PValue)
	}

	// Monotone but nonlinear: Spearman sees a perfect relation.
	sp, err := h.Correlation(xs, cubed, "spearman")
	if err != nil {
		t.Fatalf("Correlation spearman: %v", err)
	}
	if math.Abs(sp.Statistic-1) > 1e-9 {
		t.Errorf("spearman rho = %v for a monotone relation, want 1", sp.Statistic)
	}
}

func TestCorrelationErrors(t *testing.T) {
	h := testHarness()
	if _, err := h.Correlation(seq(1, 10), seq(1, 9), "pearson"); err == nil {
		t.Error("mismatched lengths accepted")
	}
	if _, err := h.Correlation(seq(1, 10), seq(1, 10), "kendall"); err == nil {
		t.Error("unknown correlation kind accepted")
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		xs   []float64
		want float64
	}{
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
		{[]float64{5}, 5},
	}
	for _, tt := range tests {
		if got := Median(tt.xs); got != tt.want {
			t.Errorf("Median(%v) = %v, want %v", tt.xs, got, tt.want)
		}
	}
}
