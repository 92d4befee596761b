package main

import (
	"github.com/spf13/cobra"

	tonnage "github.com/rearc-data/fred-truck-tonnage"
	"github.com/rearc-data/fred-truck-tonnage/internal/comparator"
	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch every variant and upload the ones that changed",
	Long: `Fetch the .xls and .csv variants concurrently, upload each one whose content
differs from the stored object and print the asset sources to republish.

An empty list means nothing changed.

Examples:
  # Sync and print the asset list as JSON
  tonnage sync

  # Only list the variants that actually changed, as YAML
  tonnage sync --changed-only --output yaml

  # Upload both variants regardless of the stored copies
  tonnage sync --force
`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringP("output", "o", formatJSON, "Output format: json or yaml")
	syncCmd.Flags().Bool("changed-only", false, "List only the variants that changed")
	syncCmd.Flags().Bool("force", false, "Treat every variant as changed")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("output")
	if err := checkFormat(format); err != nil {
		return err
	}

	var opts []tonnagetypes.Option
	if changedOnly, _ := cmd.Flags().GetBool("changed-only"); changedOnly {
		opts = append(opts, tonnage.WithChangedOnly())
	}
	if force, _ := cmd.Flags().GetBool("force"); force {
		opts = append(opts, tonnage.WithComparator(comparator.Force{}))
	}

	syncer, closer, err := newSyncer(cmd, opts...)
	if err != nil {
		return err
	}
	defer closer.Close()

	assets, err := syncer.Sync(cmd.Context())
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), format, assets)
}
