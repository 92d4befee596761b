// Command tonnage mirrors the FRED truck tonnage series into S3.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	tonnage "github.com/rearc-data/fred-truck-tonnage"
	"github.com/rearc-data/fred-truck-tonnage/config"
	"github.com/rearc-data/fred-truck-tonnage/errors"
	"github.com/rearc-data/fred-truck-tonnage/internal/logging"
	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

var rootCmd = &cobra.Command{
	Use:   "tonnage",
	Short: "Mirror the FRED truck tonnage series into S3",
	Long: `Download the TRUCKD11 series from FRED in every format variant, upload the
variants whose content changed and print the asset sources to republish.

Configuration comes from the environment:
  DATASET_NAME     dataset name, also the key prefix (required)
  STORAGE_BUCKET   destination bucket (required)
  TONNAGE_*        optional overrides, see --help of each command`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Optional YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file, rotated by size")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", errors.CodeOf(err), err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration named by the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	return config.Load(configFile)
}

// newSyncer builds a Syncer from the environment. The returned closer flushes
// the log file.
func newSyncer(cmd *cobra.Command, extra ...tonnagetypes.Option) (*tonnage.Syncer, io.Closer, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		level, _ = cmd.Flags().GetString("log-level")
	}
	logFile := cfg.LogFile
	if cmd.Flags().Changed("log-file") {
		logFile, _ = cmd.Flags().GetString("log-file")
	}

	logger, closer, err := logging.Setup(level, logFile)
	if err != nil {
		return nil, nil, err
	}

	opts := append(cfg.Options(logger), extra...)
	syncer, err := tonnage.New(cmd.Context(), cfg.Syncer(), opts...)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return syncer, closer, nil
}
