// Package config loads the process configuration from the environment and an
// optional YAML file.
//
// Environment variables take precedence over the file. The dataset name and
// the storage bucket are required; the older DATA_SET_NAME and S3_BUCKET names
// are still accepted.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	tonnage "github.com/rearc-data/fred-truck-tonnage"
	"github.com/rearc-data/fred-truck-tonnage/errors"
	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

// Configuration keys. Each is bound to the environment variables in envNames.
const (
	KeyDatasetName    = "dataset_name"
	KeyBucket         = "storage_bucket"
	KeyTempDir        = "temp_dir"
	KeyBaseURL        = "base_url"
	KeySeriesID       = "series_id"
	KeyTimeout        = "timeout"
	KeyS3Endpoint     = "s3_endpoint"
	KeyForcePathStyle = "s3_force_path_style"
	KeyRegion         = "region"
	KeyLogLevel       = "log_level"
	KeyLogFile        = "log_file"
)

var envNames = map[string][]string{
	KeyDatasetName:    {"DATASET_NAME", "DATA_SET_NAME"},
	KeyBucket:         {"STORAGE_BUCKET", "S3_BUCKET"},
	KeyTempDir:        {"TONNAGE_TEMP_DIR"},
	KeyBaseURL:        {"TONNAGE_BASE_URL"},
	KeySeriesID:       {"TONNAGE_SERIES_ID"},
	KeyTimeout:        {"TONNAGE_TIMEOUT"},
	KeyS3Endpoint:     {"TONNAGE_S3_ENDPOINT"},
	KeyForcePathStyle: {"TONNAGE_S3_FORCE_PATH_STYLE"},
	KeyRegion:         {"AWS_REGION", "AWS_DEFAULT_REGION"},
	KeyLogLevel:       {"TONNAGE_LOG_LEVEL"},
	KeyLogFile:        {"TONNAGE_LOG_FILE"},
}

// Config is the resolved process configuration.
type Config struct {
	DatasetName string
	Bucket      string
	TempDir     string

	BaseURL  string
	SeriesID string
	Timeout  time.Duration

	S3Endpoint       string
	S3ForcePathStyle bool
	Region           string

	LogLevel string
	LogFile  string
}

// Load reads the configuration. configFile may be empty.
func Load(configFile string) (*Config, error) {
	return load(viper.New(), configFile)
}

func load(v *viper.Viper, configFile string) (*Config, error) {
	for key, names := range envNames {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, errors.NewError("config", err)
		}
	}

	v.SetDefault(KeyLogLevel, "info")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewError("config", err).WithMessage("read " + configFile)
		}
	}

	cfg := &Config{
		DatasetName:      strings.TrimSpace(v.GetString(KeyDatasetName)),
		Bucket:           strings.TrimSpace(v.GetString(KeyBucket)),
		TempDir:          v.GetString(KeyTempDir),
		BaseURL:          v.GetString(KeyBaseURL),
		SeriesID:         v.GetString(KeySeriesID),
		S3Endpoint:       v.GetString(KeyS3Endpoint),
		S3ForcePathStyle: v.GetBool(KeyForcePathStyle),
		Region:           v.GetString(KeyRegion),
		LogLevel:         v.GetString(KeyLogLevel),
		LogFile:          v.GetString(KeyLogFile),
	}

	timeout, err := parseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return nil, errors.NewError("config", fmt.Errorf("%w: %s: %v", errors.ErrInvalidInput, KeyTimeout, err))
	}
	cfg.Timeout = timeout

	if cfg.DatasetName == "" {
		return nil, errors.NewError("config", errors.ErrMissingConfig).WithMessage("DATASET_NAME is not set")
	}
	if cfg.Bucket == "" {
		return nil, errors.NewError("config", errors.ErrMissingConfig).WithMessage("STORAGE_BUCKET is not set")
	}

	return cfg, nil
}

// parseTimeout accepts a Go duration ("90s") or a whole number of seconds.
// Empty means the default.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("must be positive, got %d", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

// Syncer returns the required sync configuration.
func (c *Config) Syncer() tonnagetypes.Config {
	return tonnagetypes.Config{
		DatasetName: c.DatasetName,
		Bucket:      c.Bucket,
		TempDir:     c.TempDir,
	}
}

// Options translates the optional settings into Syncer options.
func (c *Config) Options(logger *slog.Logger) []tonnagetypes.Option {
	opts := []tonnagetypes.Option{tonnage.WithLogger(logger)}

	if c.Region != "" {
		opts = append(opts, tonnage.WithRegion(c.Region))
	}
	if c.S3Endpoint != "" {
		opts = append(opts, tonnage.WithEndpoint(c.S3Endpoint))
	}
	if c.S3ForcePathStyle {
		opts = append(opts, tonnage.WithForcePathStyle(true))
	}
	if c.BaseURL != "" {
		opts = append(opts, tonnage.WithBaseURL(c.BaseURL))
	}
	if c.SeriesID != "" {
		opts = append(opts, tonnage.WithSeriesID(c.SeriesID))
	}
	if c.Timeout > 0 {
		opts = append(opts, tonnage.WithTimeout(c.Timeout))
	}
	return opts
}
