package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epilectrik/voynich-sub016/internal/model"
	"github.com/epilectrik/voynich-sub016/internal/morph"
)

// decomposeCmd represents the decompose command
var decomposeCmd = &cobra.Command{
	Use:   "decompose <token...>",
	Short: "Decompose and classify one or more tokens",
	Long: `Decompose splits each token into articulator/prefix/middle/suffix spans
under the configured vocabulary and reports the assigned functional class,
or the reason the token is unclassified.

Example:
  voyn decompose qokedy chedy daiin`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecompose,
}

func init() {
	rootCmd.AddCommand(decomposeCmd)

	decomposeCmd.Flags().StringVar(&vocabPath, "vocabulary", "", "vocabulary file (default from config)")
}

func runDecompose(cmd *cobra.Command, args []string) error {
	cfg := model.DefaultConfig()
	if vocabPath != "" {
		cfg.Morph.VocabularyPath = vocabPath
	}

	vocab, err := morph.LoadVocabulary(cfg.Morph.VocabularyPath)
	if err != nil {
		return err
	}
	dec := morph.NewDecomposer(vocab, cfg.Morph)
	cls := morph.NewClassifier(vocab, dec.Memo())

	for _, raw := range args {
		d := dec.Decompose(raw)
		c := cls.Classify(d)

		fmt.Printf("%s\n", raw)
		if d.Articulator != "" {
			fmt.Printf("  articulator: %s\n", d.Articulator)
		}
		fmt.Printf("  prefix:      %q\n", d.Prefix)
		fmt.Printf("  middle:      %q\n", d.Middle)
		fmt.Printf("  suffix:      %q\n", d.Suffix)
		if d.Ambiguous {
			fmt.Printf("  note:        competing split of equal specificity (tie-break applied)\n")
		}
		if c.Class.IsClassified() {
			fmt.Printf("  class:       %s\n", c.Class)
		} else {
			fmt.Printf("  class:       unclassified (%s)\n", c.Reason)
		}
	}
	return nil
}
