package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/epilectrik/voynich-sub016/internal/model"
	"github.com/epilectrik/voynich-sub016/internal/pipeline"
)

var (
	strataVocab       string
	strataTranscriber string
	strataSeed        int64
	strataResamples   int
	strataJSON        bool
)

// strataCmd represents the strata command
var strataCmd = &cobra.Command{
	Use:   "strata <source...>",
	Short: "Run the stratified analysis battery over transcription sources",
	Long: `Strata reads the sources, builds the index, computes per-corpus and
per-section summaries, and runs the standard cross-corpus comparison
battery (class distribution, token length, line-position effects).

Resampling tests are reproducible: the seed is part of the report.

Example:
  voyn strata data/interlinear.txt
  voyn strata data/*.txt --seed 42 --json > report.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStrata,
}

func init() {
	rootCmd.AddCommand(strataCmd)

	strataCmd.Flags().StringVar(&strataVocab, "vocabulary", "", "vocabulary file (default from config)")
	strataCmd.Flags().StringVar(&strataTranscriber, "transcriber", "", "restrict to one transcriber tag")
	strataCmd.Flags().Int64Var(&strataSeed, "seed", 0, "resampling seed (default from config)")
	strataCmd.Flags().IntVar(&strataResamples, "resamples", 0, "resampling iterations (default from config)")
	strataCmd.Flags().BoolVar(&strataJSON, "json", false, "emit the full report as JSON")
}

func runStrata(cmd *cobra.Command, args []string) error {
	cfg := model.DefaultConfig()
	cfg.Corpus.Transcriber = strataTranscriber
	if strataVocab != "" {
		cfg.Morph.VocabularyPath = strataVocab
	}
	if strataSeed != 0 {
		cfg.Stats.Seed = strataSeed
	}
	if strataResamples > 0 {
		cfg.Stats.Resamples = strataResamples
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	rep, err := p.Run(cmd.Context(), args...)
	if err != nil {
		return err
	}

	if strataJSON {
		return rep.WriteJSON(os.Stdout)
	}
	return rep.WriteText(os.Stdout)
}
