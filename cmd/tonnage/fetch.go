package main

import (
	"github.com/spf13/cobra"

	"github.com/rearc-data/fred-truck-tonnage/internal/validation"
	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and sync a single variant",
	Long: `Fetch one variant, upload it when it changed and print the result.

Examples:
  tonnage fetch --variant .csv
  tonnage fetch --variant .xls --output yaml
`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("variant", "", "Variant to fetch: .xls or .csv")
	fetchCmd.Flags().StringP("output", "o", formatJSON, "Output format: json or yaml")
	_ = fetchCmd.MarkFlagRequired("variant")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("output")
	if err := checkFormat(format); err != nil {
		return err
	}

	raw, _ := cmd.Flags().GetString("variant")
	variant := tonnagetypes.Variant(raw)
	if err := validation.ValidateVariant(variant); err != nil {
		return err
	}

	syncer, closer, err := newSyncer(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	result, err := syncer.FetchAndSync(cmd.Context(), variant)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), format, result)
}
