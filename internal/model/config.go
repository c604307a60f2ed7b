package model

// Config holds all configuration for the analysis substrate.
// Hierarchy (highest to lowest priority): CLI flags, VOYN_* environment
// variables, config file, defaults.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus" mapstructure:"corpus"`
	Morph    MorphConfig    `yaml:"morph" mapstructure:"morph"`
	Stats    StatsConfig    `yaml:"stats" mapstructure:"stats"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
}

// CorpusConfig controls transcription reading.
type CorpusConfig struct {
	Transcriber      string `yaml:"transcriber" mapstructure:"transcriber"`             // Preferred transcriber tag ("" = all passes)
	IncludeUncertain bool   `yaml:"include_uncertain" mapstructure:"include_uncertain"` // Keep tokens flagged uncertain
}

// MorphConfig controls decomposition and classification.
type MorphConfig struct {
	VocabularyPath    string `yaml:"vocabulary_path" mapstructure:"vocabulary_path"`       // Versioned vocabulary/rule-table file
	CacheEnabled      bool   `yaml:"cache_enabled" mapstructure:"cache_enabled"`           // Memoize per distinct raw string
	ArticulatorPolicy string `yaml:"articulator_policy" mapstructure:"articulator_policy"` // require-better-prefix (default) or always
}

// StatsConfig controls the statistics harness.
type StatsConfig struct {
	MinSampleSize int   `yaml:"min_sample_size" mapstructure:"min_sample_size"` // Below this, tests refuse to run
	Resamples     int   `yaml:"resamples" mapstructure:"resamples"`             // Default permutation/bootstrap iterations
	MaxResamples  int   `yaml:"max_resamples" mapstructure:"max_resamples"`     // Hard iteration cap
	Seed          int64 `yaml:"seed" mapstructure:"seed"`                       // RNG seed for reproducible resampling
}

// RegistryConfig controls the constraint registry store.
type RegistryConfig struct {
	Path         string `yaml:"path" mapstructure:"path"`                   // JSONL constraint log
	SequencePath string `yaml:"sequence_path" mapstructure:"sequence_path"` // Id reservation file
}

// OutputConfig controls output behavior.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Transcriber:      "",
			IncludeUncertain: true,
		},
		Morph: MorphConfig{
			VocabularyPath:    "data/vocabulary.yaml",
			CacheEnabled:      true,
			ArticulatorPolicy: "require-better-prefix",
		},
		Stats: StatsConfig{
			MinSampleSize: 10,
			Resamples:     5000,
			MaxResamples:  20000,
			Seed:          1,
		},
		Registry: RegistryConfig{
			Path:         "registry/constraints.jsonl",
			SequencePath: "registry/sequence",
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
