package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/epilectrik/voynich-sub016/internal/corpus"
	"github.com/epilectrik/voynich-sub016/internal/index"
	"github.com/epilectrik/voynich-sub016/internal/model"
	"github.com/epilectrik/voynich-sub016/internal/morph"
)

var (
	vocabPath   string
	transcriber string
	folioFilter string
	corpusPart  string
	sectionTag  string
)

// tokensCmd represents the tokens command
var tokensCmd = &cobra.Command{
	Use:   "tokens <source...>",
	Short: "Read transcription sources and summarize the token stream",
	Long: `Tokens parses one or more interlinear transcription files, builds the
corpus index, and prints per-stratum counts: tokens, distinct types, class
frequencies, and the unclassified fraction.

Example:
  voyn tokens data/interlinear.txt
  voyn tokens data/*.txt --transcriber H --corpus B --section B`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&vocabPath, "vocabulary", "", "vocabulary file (default from config)")
	tokensCmd.Flags().StringVar(&transcriber, "transcriber", "", "restrict to one transcriber tag")
	tokensCmd.Flags().StringVar(&folioFilter, "folio", "", "restrict to one folio")
	tokensCmd.Flags().StringVar(&corpusPart, "corpus", "", "restrict to corpus partition (A or B)")
	tokensCmd.Flags().StringVar(&sectionTag, "section", "", "restrict to one section tag")
}

func runTokens(cmd *cobra.Command, args []string) error {
	cfg := model.DefaultConfig()
	cfg.Corpus.Transcriber = transcriber
	if vocabPath != "" {
		cfg.Morph.VocabularyPath = vocabPath
	}

	ix, err := buildIndex(cfg, args)
	if err != nil {
		return err
	}

	spec := index.Spec{
		Corpus:  model.Partition(corpusPart),
		Section: model.Section(sectionTag),
		Folio:   folioFilter,
	}
	sum := ix.Summary(spec)

	fmt.Printf("Tokens:        %d\n", sum.Tokens)
	fmt.Printf("Types:         %d\n", sum.Types)
	fmt.Printf("Classified:    %d\n", sum.Classified)
	fmt.Printf("Unclassified:  %.1f%%\n", sum.UnclassifiedFraction*100)
	fmt.Printf("Uncertain:     %.1f%%\n", sum.UncertainFraction*100)
	if verbose {
		fmt.Println()
		for tag, n := range sum.ClassCounts {
			fmt.Printf("  %-16s %d\n", tag, n)
		}
		for reason, n := range sum.UnclassifiedByReason {
			fmt.Printf("  [%s] %d\n", reason, n)
		}
	}
	return nil
}

// buildIndex wires reader, decomposer, and classifier for the CLI commands.
func buildIndex(cfg *model.Config, sources []string) (*index.Index, error) {
	vocab, err := morph.LoadVocabulary(cfg.Morph.VocabularyPath)
	if err != nil {
		return nil, err
	}
	dec := morph.NewDecomposer(vocab, cfg.Morph)
	cls := morph.NewClassifier(vocab, dec.Memo())

	reader := corpus.NewReader(cfg.Corpus)
	tokens, err := reader.ReadFiles(sources...)
	if err != nil {
		return nil, err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Read %d tokens from %d source(s)\n", len(tokens), len(sources))
	}
	return index.Build(tokens, dec, cls), nil
}
