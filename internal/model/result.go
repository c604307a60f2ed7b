package model

// TestResult is the uniform record every statistical test returns. The
// excluded fraction must be reported alongside the result: silently dropping
// unclassified tokens would bias findings.
type TestResult struct {
	Test             string  `json:"test"`                        // Test name (e.g., "chi_square")
	Method           string  `json:"method"`                      // asymptotic, permutation, bootstrap, exact
	Statistic        float64 `json:"statistic"`                   // Test statistic
	PValue           float64 `json:"p_value"`                     // Two-tailed unless noted
	EffectSize       float64 `json:"effect_size"`                 // Test-specific effect size
	NA               int     `json:"n_a"`                         // Size of first sample
	NB               int     `json:"n_b,omitempty"`               // Size of second sample (0 for one-sample tests)
	Resamples        int     `json:"resamples,omitempty"`         // Iterations used by resampling variants
	Seed             int64   `json:"seed,omitempty"`              // RNG seed for resampling variants
	ExcludedFraction float64 `json:"excluded_fraction,omitempty"` // Share of tokens excluded (e.g., unclassified)
	CILow            float64 `json:"ci_low,omitempty"`            // Bootstrap confidence interval
	CIHigh           float64 `json:"ci_high,omitempty"`
}
