// Package tonnagetypes provides shared type definitions for the dataset sync.
package tonnagetypes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-billy/v5"
)

// Variant selects which rendering of the dataset is fetched. It is the file
// extension appended to the source URL and to the local filename.
type Variant string

// Supported format variants
const (
	// VariantXLS is the Excel rendering of the series
	VariantXLS Variant = ".xls"

	// VariantCSV is the comma-separated rendering of the series
	VariantCSV Variant = ".csv"
)

// Variants returns every supported variant in enumeration order.
// The order defines the order of the changed-asset list.
func Variants() []Variant {
	return []Variant{VariantXLS, VariantCSV}
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	return string(v)
}

// DatasetNamespace is the key segment between the dataset name and the filename.
const DatasetNamespace = "dataset"

// Filename returns the local filename for a variant of the named dataset.
func Filename(datasetName string, variant Variant) string {
	return datasetName + string(variant)
}

// DestinationKey returns the object key a variant of the named dataset is stored under.
//
//	DestinationKey("TRUCKD11", VariantCSV) == "TRUCKD11/dataset/TRUCKD11.csv"
func DestinationKey(datasetName string, variant Variant) string {
	return datasetName + "/" + DatasetNamespace + "/" + Filename(datasetName, variant)
}

// AssetSource names a stored object for the downstream publishing step.
// Field names match the asset source shape used by dataset revision APIs.
type AssetSource struct {
	Bucket string `json:"Bucket" yaml:"Bucket"`
	Key    string `json:"Key" yaml:"Key"`
}

// FetchResult is the outcome of one fetch-and-sync call.
type FetchResult struct {
	// Variant is the format variant that was fetched
	Variant Variant `json:"variant" yaml:"variant"`

	// Changed reports whether the fetched content differed from the stored copy
	Changed bool `json:"changed" yaml:"changed"`

	// AssetSource is where the variant's content now resides
	AssetSource AssetSource `json:"asset_source" yaml:"asset_source"`

	// Size is the number of bytes downloaded
	Size int64 `json:"size" yaml:"size"`

	// ETag is the entity tag returned by the upload; empty when nothing was uploaded
	ETag string `json:"etag,omitempty" yaml:"etag,omitempty"`

	// Duration is how long the call took
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Config is the required, process-wide configuration of a sync.
type Config struct {
	// DatasetName prefixes the local filename and the destination key
	DatasetName string

	// Bucket is the destination container
	Bucket string

	// TempDir is the directory transient files are written to.
	// Defaults to os.TempDir() when empty and no filesystem is supplied.
	TempDir string
}

// HeadObjectAPI is the slice of the S3 API a fingerprint comparator needs.
type HeadObjectAPI interface {
	HeadObject(
		ctx context.Context,
		params *s3.HeadObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.HeadObjectOutput, error)
}

// FingerprintComparator decides whether a local file differs from the object
// currently stored under bucket/key.
type FingerprintComparator interface {
	HasChanged(ctx context.Context, api HeadObjectAPI, bucket, key, localPath string) (bool, error)
}

// Configuration types for functional options

// ClientConfig holds configuration for the Syncer.
type ClientConfig struct {
	// AWS
	Region          string
	Endpoint        string
	MaxRetries      int
	ForcePathStyle  bool
	CustomAWSConfig *aws.Config

	// Remote source
	BaseURL    string
	SeriesID   string
	Timeout    time.Duration
	HTTPClient *http.Client

	// Sync behaviour
	Filesystem  billy.Filesystem
	Comparator  FingerprintComparator
	PartSize    int64
	ChangedOnly bool

	Logger *slog.Logger
}

// Option is a functional option for configuring the Syncer.
type Option func(*ClientConfig)
