package tonnage

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/rearc-data/fred-truck-tonnage/errors"
	"github.com/rearc-data/fred-truck-tonnage/internal/comparator"
	"github.com/rearc-data/fred-truck-tonnage/internal/fetch"
	"github.com/rearc-data/fred-truck-tonnage/internal/s3api"
	"github.com/rearc-data/fred-truck-tonnage/internal/upload"
	"github.com/rearc-data/fred-truck-tonnage/internal/validation"
	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

// DefaultTimeout bounds a single request to the remote source.
const DefaultTimeout = 60 * time.Second

// Syncer fetches the dataset variants and mirrors them into the bucket.
//
// A Syncer holds no per-run state and is safe for concurrent use, but two
// concurrent runs for the same dataset share local filenames and object keys.
type Syncer struct {
	// s3Client is the object store used for fingerprint lookups and uploads
	s3Client s3api.S3API

	cfg tonnagetypes.Config

	fetcher    *fetch.Fetcher
	comparator tonnagetypes.FingerprintComparator
	uploader   *upload.Uploader

	// fs holds the transient local files
	fs billy.Filesystem

	changedOnly bool

	// logger is nil when logging is disabled
	logger *slog.Logger
}

// New creates a Syncer backed by an S3 client built from the default AWS
// credential chain and the supplied options.
//
// The configuration is validated before anything else; a missing dataset name
// or bucket fails with errors.ErrMissingConfig.
//
// Example:
//
//	syncer, err := tonnage.New(ctx, cfg,
//	    tonnage.WithRegion("us-east-1"),
//	    tonnage.WithTimeout(30*time.Second),
//	)
func New(ctx context.Context, cfg tonnagetypes.Config, opts ...tonnagetypes.Option) (*Syncer, error) {
	if err := validation.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	clientCfg := defaultClientConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}

	var awsCfg aws.Config
	if clientCfg.CustomAWSConfig != nil {
		awsCfg = *clientCfg.CustomAWSConfig
	} else {
		var err error
		awsCfg, err = config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		awsCfg.Region = clientCfg.Region
	} else if awsCfg.Region == "" {
		awsCfg.Region = "us-east-1"
	}

	if clientCfg.MaxRetries > 0 {
		awsCfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)
	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if clientCfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(clientCfg.Endpoint)
		})
	}

	return newSyncer(s3.NewFromConfig(awsCfg, s3Opts...), cfg, clientCfg), nil
}

// NewWithClient creates a Syncer with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, cfg tonnagetypes.Config, opts ...tonnagetypes.Option) (*Syncer, error) {
	if err := validation.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	clientCfg := defaultClientConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}

	return newSyncer(s3Client, cfg, clientCfg), nil
}

func defaultClientConfig() *tonnagetypes.ClientConfig {
	return &tonnagetypes.ClientConfig{
		MaxRetries: 3,
		BaseURL:    fetch.DefaultBaseURL,
		SeriesID:   fetch.DefaultSeriesID,
		Timeout:    DefaultTimeout,
		PartSize:   comparator.DefaultPartSize,
	}
}

func newSyncer(s3Client s3api.S3API, cfg tonnagetypes.Config, clientCfg *tonnagetypes.ClientConfig) *Syncer {
	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		if cfg.TempDir == "" {
			cfg.TempDir = os.TempDir()
		}
		filesystem = osfs.New(cfg.TempDir)
	}

	httpClient := clientCfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: clientCfg.Timeout}
	}

	cmp := clientCfg.Comparator
	if cmp == nil {
		etag := comparator.NewETagComparator(filesystem)
		etag.PartSize = clientCfg.PartSize
		cmp = etag
	}

	return &Syncer{
		s3Client:    s3Client,
		cfg:         cfg,
		fetcher:     fetch.New(httpClient, clientCfg.BaseURL, clientCfg.SeriesID),
		comparator:  cmp,
		uploader:    upload.New(s3Client, filesystem),
		fs:          filesystem,
		changedOnly: clientCfg.ChangedOnly,
		logger:      clientCfg.Logger,
	}
}

// Config returns the configuration the Syncer was created with.
func (s *Syncer) Config() tonnagetypes.Config {
	return s.cfg
}

// SourceURL returns the remote resource locator for variant.
func (s *Syncer) SourceURL(variant tonnagetypes.Variant) string {
	return s.fetcher.URL(variant)
}

// DestinationKey returns the object key variant is stored under.
func (s *Syncer) DestinationKey(variant tonnagetypes.Variant) string {
	return tonnagetypes.DestinationKey(s.cfg.DatasetName, variant)
}

// LocalPath returns the transient file variant is downloaded to.
func (s *Syncer) LocalPath(variant tonnagetypes.Variant) string {
	return s.fs.Join(s.fs.Root(), tonnagetypes.Filename(s.cfg.DatasetName, variant))
}
