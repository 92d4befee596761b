package errors

import "errors"

// ErrorCode classifies a failure for callers that need a stable, serialisable
// category rather than an error chain.
type ErrorCode string

const (
	// CodeNotFound indicates a requested object or bucket does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeForbidden indicates the credentials lack permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates required configuration is missing or invalid.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeRetrieval indicates the remote data source rejected the request.
	CodeRetrieval ErrorCode = "RETRIEVAL_FAILED"

	// CodeNetwork indicates the remote data source could not be reached.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeStorage indicates an object store or local file operation failed.
	CodeStorage ErrorCode = "STORAGE_ERROR"

	// CodeInternal indicates a logic defect, such as a broken aggregation invariant.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unclassified error.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// CodeOf returns the ErrorCode that best describes err.
// A nil error yields the empty code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var retrievalErr *RetrievalError
	if errors.As(err, &retrievalErr) {
		if retrievalErr.Kind == RetrievalHTTP {
			return CodeRetrieval
		}
		return CodeNetwork
	}

	if IsAggregationError(err) {
		return CodeInternal
	}

	switch {
	case errors.Is(err, ErrMissingConfig):
		return CodeInvalidConfig
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidBucketName),
		errors.Is(err, ErrInvalidObjectKey),
		errors.Is(err, ErrInvalidVariant):
		return CodeInvalidInput
	case errors.Is(err, ErrObjectNotFound), errors.Is(err, ErrBucketNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAccessDenied):
		return CodeForbidden
	}

	var opErr *Error
	if errors.As(err, &opErr) {
		return CodeStorage
	}

	return CodeUnknown
}
