package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rearc-data/fred-truck-tonnage/internal/validation"
	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Print the destination key of a variant",
	Long: `Print the object key a variant is stored under for the configured dataset.
No network access is made.

Example:
  DATASET_NAME=TRUCKD11 STORAGE_BUCKET=my-bucket tonnage key --variant .csv
  # TRUCKD11/dataset/TRUCKD11.csv
`,
	Args: cobra.NoArgs,
	RunE: runKey,
}

func init() {
	keyCmd.Flags().String("variant", "", "Variant: .xls or .csv (all variants when omitted)")
	rootCmd.AddCommand(keyCmd)
}

func runKey(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	variants := tonnagetypes.Variants()
	if raw, _ := cmd.Flags().GetString("variant"); raw != "" {
		variants = []tonnagetypes.Variant{tonnagetypes.Variant(raw)}
	}

	for _, variant := range variants {
		if err := validation.ValidateVariant(variant); err != nil {
			return err
		}
		key := tonnagetypes.DestinationKey(cfg.DatasetName, variant)
		if err := validation.ValidateObjectKey(key); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
	}
	return nil
}
