package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epilectrik/voynich-sub016/internal/model"
	"github.com/epilectrik/voynich-sub016/internal/registry"
)

var (
	registryPath string
	sequencePath string
	activeOnly   bool
	scopeFilter  string
	tierCeiling  int
	regTier      int
	regScope     []string
	regEvidence  []string
	regSupersede int
	retractWhy   string
)

// registryCmd groups the constraint registry commands
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect and update the constraint registry",
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List constraint records",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		f := registry.Filter{Scope: scopeFilter, ActiveOnly: activeOnly}
		if tierCeiling >= 0 {
			t := model.Tier(tierCeiling)
			f.MaxTier = &t
		}
		for _, rec := range reg.Query(f) {
			fmt.Printf("#%d [%s/%s] %s\n", rec.ID, rec.Tier, rec.State, rec.Statement)
			if rec.Reason != "" {
				fmt.Printf("    reason: %s\n", rec.Reason)
			}
			for _, ref := range rec.Refs {
				fmt.Printf("    %s #%d\n", ref.Relation, ref.ID)
			}
		}
		return nil
	},
}

var registryRegisterCmd = &cobra.Command{
	Use:   "register <statement>",
	Short: "Register a new constraint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		id, err := reg.Register(args[0], model.Tier(regTier), regScope, regEvidence, regSupersede)
		if err != nil {
			return err
		}
		fmt.Printf("registered constraint %d\n", id)
		return nil
	},
}

var registryRetractCmd = &cobra.Command{
	Use:   "retract <id>",
	Short: "Retract a constraint (state change; the record is preserved)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid constraint id %q", args[0])
		}
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		if err := reg.Retract(id, retractWhy); err != nil {
			return err
		}
		fmt.Printf("retracted constraint %d\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registryCmd)
	registryCmd.AddCommand(registryListCmd)
	registryCmd.AddCommand(registryRegisterCmd)
	registryCmd.AddCommand(registryRetractCmd)

	registryCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "constraint log path (default from config)")
	registryCmd.PersistentFlags().StringVar(&sequencePath, "sequence", "", "id sequence directory (default from config)")

	registryListCmd.Flags().BoolVar(&activeOnly, "active", false, "only active records")
	registryListCmd.Flags().StringVar(&scopeFilter, "scope", "", "only records covering this scope tag")
	registryListCmd.Flags().IntVar(&tierCeiling, "max-tier", -1, "inclusive tier ceiling (0=locked .. 4=speculation)")

	registryRegisterCmd.Flags().IntVar(&regTier, "tier", int(model.TierSpeculation), "evidentiary tier (0=locked .. 4=speculation)")
	registryRegisterCmd.Flags().StringSliceVar(&regScope, "scope", nil, "scope tags (corpus partitions/sections)")
	registryRegisterCmd.Flags().StringSliceVar(&regEvidence, "evidence", nil, "source test identifiers")
	registryRegisterCmd.Flags().IntVar(&regSupersede, "supersedes", 0, "id of the constraint this one revises")

	registryRetractCmd.Flags().StringVar(&retractWhy, "reason", "", "non-empty retraction reason (required)")
}

func openRegistry() (*registry.Registry, error) {
	cfg := model.DefaultConfig()
	if registryPath != "" {
		cfg.Registry.Path = registryPath
	}
	if sequencePath != "" {
		cfg.Registry.SequencePath = sequencePath
	}
	return registry.Open(cfg.Registry)
}
