// Package errors provides error types for the dataset sync.
//
// Three families are defined: RetrievalError for failures talking to the
// remote data source, AggregationError for a broken result invariant in the
// coordinator, and Error for object store and local file operations.
// Sentinels can be matched with errors.Is.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a storage or local file operation error with context about
// the operation that failed.
type Error struct {
	// Op is the operation that failed (e.g., "upload", "compare", "persist")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("tonnage.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("tonnage.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("tonnage.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("tonnage.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// RetrievalKind distinguishes a rejected request from an unreachable source.
type RetrievalKind string

const (
	// RetrievalHTTP means the source answered with a non-success status.
	RetrievalHTTP RetrievalKind = "HTTP"

	// RetrievalTransport means the request never produced a response
	// (DNS, connection, timeout or cancellation).
	RetrievalTransport RetrievalKind = "Transport"
)

// RetrievalError reports that one format variant could not be fetched.
type RetrievalError struct {
	Kind    RetrievalKind
	Variant string
	URL     string

	// StatusCode is set for RetrievalHTTP.
	StatusCode int

	// Reason is set for RetrievalTransport.
	Reason string

	Err error
}

func (e *RetrievalError) Error() string {
	if e.Kind == RetrievalHTTP {
		return fmt.Sprintf("retrieve %s: HTTP %d %s", e.Variant, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("retrieve %s: transport: %s", e.Variant, e.Reason)
}

// Unwrap returns the underlying transport error, if any.
func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a RetrievalError for a non-success response.
func NewHTTPError(variant, url string, statusCode int) *RetrievalError {
	return &RetrievalError{
		Kind:       RetrievalHTTP,
		Variant:    variant,
		URL:        url,
		StatusCode: statusCode,
	}
}

// NewTransportError creates a RetrievalError for a request that failed before
// a response was received.
func NewTransportError(variant, url string, err error) *RetrievalError {
	return &RetrievalError{
		Kind:    RetrievalTransport,
		Variant: variant,
		URL:     url,
		Reason:  err.Error(),
		Err:     err,
	}
}

// AggregationError reports that a positive change count produced an empty
// asset list. It indicates a defect in the coordinator.
type AggregationError struct {
	Changed int
	Results int
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate: %d of %d variants changed but no asset sources were produced", e.Changed, e.Results)
}

// Sentinel errors for common failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrMissingConfig indicates a required configuration value is not set
	ErrMissingConfig = errors.New("tonnage: missing configuration")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("tonnage: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("tonnage: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("tonnage: invalid object key")

	// ErrInvalidVariant indicates an unknown format variant
	ErrInvalidVariant = errors.New("tonnage: invalid variant")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("tonnage: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("tonnage: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("tonnage: access denied")
)

// IsRetrievalError reports whether err wraps a RetrievalError.
func IsRetrievalError(err error) bool {
	var target *RetrievalError
	return errors.As(err, &target)
}

// IsAggregationError reports whether err wraps an AggregationError.
func IsAggregationError(err error) bool {
	var target *AggregationError
	return errors.As(err, &target)
}

// IsMissingConfig reports whether err indicates missing configuration.
func IsMissingConfig(err error) bool {
	return errors.Is(err, ErrMissingConfig)
}

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}
