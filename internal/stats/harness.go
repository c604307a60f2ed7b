// Package stats is a thin harness of standard hypothesis tests operating on
// index-produced subsets. Tests are purely computational and return the
// uniform model.TestResult record. Resampling variants are deterministic:
// the RNG seed and iteration cap come from configuration.
package stats

import (
	"fmt"
	"math/rand"

	"github.com/epilectrik/voynich-sub016/internal/model"
)

// InsufficientDataError means a stratum is too small for the requested test.
// The caller chooses a different test or aggregation level; the harness
// never returns a numerically unstable p-value instead.
type InsufficientDataError struct {
	Test string
	N    int
	Min  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: sample size %d below configured minimum %d", e.Test, e.N, e.Min)
}

// Harness runs the standard tests with one shared configuration.
type Harness struct {
	cfg model.StatsConfig
}

// NewHarness creates a harness. Zero config fields fall back to defaults.
func NewHarness(cfg model.StatsConfig) *Harness {
	def := model.DefaultConfig().Stats
	if cfg.MinSampleSize <= 0 {
		cfg.MinSampleSize = def.MinSampleSize
	}
	if cfg.Resamples <= 0 {
		cfg.Resamples = def.Resamples
	}
	if cfg.MaxResamples <= 0 {
		cfg.MaxResamples = def.MaxResamples
	}
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	return &Harness{cfg: cfg}
}

// resamples bounds the iteration count so worst-case runtime is
// deterministic even when configuration asks for more.
func (h *Harness) resamples() int {
	if h.cfg.Resamples > h.cfg.MaxResamples {
		return h.cfg.MaxResamples
	}
	return h.cfg.Resamples
}

// rng returns a fresh deterministic source; every test seeds its own so
// test order never changes results.
func (h *Harness) rng() *rand.Rand {
	return rand.New(rand.NewSource(h.cfg.Seed))
}

// checkN guards the configured minimum sample size.
func (h *Harness) checkN(test string, n int) error {
	if n < h.cfg.MinSampleSize {
		return &InsufficientDataError{Test: test, N: n, Min: h.cfg.MinSampleSize}
	}
	return nil
}
