// Package validation checks configuration and derived names before any
// network activity takes place.
package validation

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/rearc-data/fred-truck-tonnage/errors"
	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

// ValidateConfig checks that the required configuration is present and usable.
// Missing values are reported as errors.ErrMissingConfig.
func ValidateConfig(cfg tonnagetypes.Config) error {
	if cfg.DatasetName == "" {
		return errors.NewError("validateConfig", errors.ErrMissingConfig).
			WithMessage("dataset name is not set")
	}
	if cfg.Bucket == "" {
		return errors.NewError("validateConfig", errors.ErrMissingConfig).
			WithMessage("storage bucket is not set")
	}
	if err := ValidateDatasetName(cfg.DatasetName); err != nil {
		return err
	}
	return ValidateBucketName(cfg.Bucket)
}

// ValidateDatasetName validates a dataset name. The name becomes both a local
// filename and the first segment of an object key, so it must be a single
// path element.
func ValidateDatasetName(name string) error {
	if name == "" {
		return errors.NewError("validateDatasetName", errors.ErrInvalidInput).
			WithMessage("dataset name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.NewError("validateDatasetName", errors.ErrInvalidInput).
			WithMessage("dataset name must be a single path element")
	}
	if hasControlCharacters(name) {
		return errors.NewError("validateDatasetName", errors.ErrInvalidInput).
			WithMessage("dataset name cannot contain control characters")
	}
	return nil
}

// ValidateVariant rejects variants outside the supported set.
func ValidateVariant(variant tonnagetypes.Variant) error {
	for _, v := range tonnagetypes.Variants() {
		if v == variant {
			return nil
		}
	}
	return errors.NewError("validateVariant", errors.ErrInvalidVariant).
		WithMessage("unsupported variant " + string(variant))
}

// ValidateBucketName validates that a bucket name is DNS-compliant according to AWS S3 rules.
// Returns ErrInvalidBucketName if the bucket name is invalid.
func ValidateBucketName(bucket string) error {
	invalid := func(msg string) error {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage(msg)
	}

	if len(bucket) < 3 || len(bucket) > 63 {
		return invalid("bucket name must be between 3 and 63 characters long")
	}

	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return invalid("bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	first, last := bucket[0], bucket[len(bucket)-1]
	if first == '-' || first == '.' || last == '-' || last == '.' {
		return invalid("bucket name cannot start or end with a hyphen or dot")
	}

	if isIPAddress(bucket) {
		return invalid("bucket name cannot be formatted as an IP address")
	}

	if strings.Contains(bucket, "..") || strings.Contains(bucket, "--") {
		return invalid("bucket name cannot contain two adjacent periods or hyphens")
	}

	return nil
}

// ValidateObjectKey validates that an object key is valid according to AWS S3 rules.
// This includes preventing path traversal attacks and ensuring valid characters.
func ValidateObjectKey(key string) error {
	invalid := func(msg string) error {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage(msg)
	}

	if key == "" {
		return invalid("object key cannot be empty")
	}

	if hasPathTraversal(key) {
		return invalid("object key cannot contain path traversal sequences")
	}

	// S3 supports up to 1024 bytes
	if len(key) > 1024 {
		return invalid("object key cannot exceed 1024 characters")
	}

	if hasControlCharacters(key) {
		return invalid("object key cannot contain control characters")
	}

	return nil
}

func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

// isIPAddress checks if a string is formatted as an IP address
func isIPAddress(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}

	for _, part := range parts {
		if len(part) == 0 {
			return true
		}
		num := 0
		for _, char := range part {
			if char < '0' || char > '9' {
				return false
			}
			num = num*10 + int(char-'0')
		}
		if num > 255 {
			return false
		}
	}

	return true
}

func hasPathTraversal(key string) bool {
	if strings.Contains(key, "..") {
		return true
	}

	cleaned := filepath.ToSlash(filepath.Clean(key))
	if strings.HasPrefix(cleaned, "/") {
		return true
	}

	// Windows-style absolute paths
	if len(cleaned) >= 3 && cleaned[1] == ':' && cleaned[2] == '/' {
		return true
	}

	return false
}

func hasControlCharacters(s string) bool {
	for _, char := range s {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
