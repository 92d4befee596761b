package tonnage

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"

	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the region from the credential chain, or us-east-1.
func WithRegion(region string) tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
func WithForcePathStyle(forcePathStyle bool) tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithMaxRetries sets the AWS SDK's maximum attempts for S3 calls.
// Requests to the remote source are never retried.
func WithMaxRetries(maxRetries int) tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithBaseURL overrides the URL the variant extension is appended to.
func WithBaseURL(baseURL string) tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		c.BaseURL = baseURL
	}
}

// WithSeriesID overrides the series selected by the query suffix.
func WithSeriesID(seriesID string) tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		c.SeriesID = seriesID
	}
}

// WithTimeout bounds each request to the remote source. Default is 60s.
// Ignored when WithHTTPClient is used.
func WithTimeout(timeout time.Duration) tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithHTTPClient sets the client used for the remote source.
func WithHTTPClient(client *http.Client) tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		c.HTTPClient = client
	}
}

// WithFilesystem sets the filesystem transient files are written to.
// It takes precedence over Config.TempDir.
func WithFilesystem(fs billy.Filesystem) tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		c.Filesystem = fs
	}
}

// WithComparator replaces the default ETag comparator.
func WithComparator(comparator tonnagetypes.FingerprintComparator) tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		c.Comparator = comparator
	}
}

// WithPartSize sets the part size used to recompute multipart ETags.
// Default is 8MB.
func WithPartSize(partSize int64) tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithChangedOnly limits the changed-asset list to the variants that
// actually changed. By default every variant's asset source is listed as soon
// as any variant changed.
func WithChangedOnly() tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		c.ChangedOnly = true
	}
}

// WithLogger configures the Syncer with a logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) tonnagetypes.Option {
	return func(c *tonnagetypes.ClientConfig) {
		c.Logger = logger
	}
}
