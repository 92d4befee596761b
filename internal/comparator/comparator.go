// Package comparator decides whether a freshly downloaded file differs from
// the copy already held in the object store.
//
// The default strategy compares the local content hash against the stored
// object's ETag. Single-part uploads carry the hex MD5 of the body as ETag;
// multipart uploads carry the MD5 of the concatenated part digests followed by
// "-<parts>", which is reproduced locally with the configured part size.
package comparator

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/go-git/go-billy/v5"

	tonnageerrors "github.com/rearc-data/fred-truck-tonnage/errors"
	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

// DefaultPartSize matches the chunk size S3 transfer managers use for
// multipart uploads (8MB).
const DefaultPartSize int64 = 8 * 1024 * 1024

// ETagComparator compares a local file's MD5 (or multipart ETag) with the
// stored object's ETag.
type ETagComparator struct {
	// FS is the filesystem the local path is resolved against
	FS billy.Filesystem

	// PartSize is used to recompute multipart ETags
	PartSize int64
}

// NewETagComparator creates a comparator reading local files from fs.
func NewETagComparator(fs billy.Filesystem) *ETagComparator {
	return &ETagComparator{
		FS:       fs,
		PartSize: DefaultPartSize,
	}
}

// HasChanged implements tonnagetypes.FingerprintComparator.
// A missing object counts as changed.
func (c *ETagComparator) HasChanged(
	ctx context.Context,
	api tonnagetypes.HeadObjectAPI,
	bucket, key, localPath string,
) (bool, error) {
	info, err := c.FS.Stat(localPath)
	if err != nil {
		return false, tonnageerrors.NewError("compare", err).WithMessage("stat local file")
	}

	head, err := api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		converted := convertHeadError(err)
		if tonnageerrors.IsObjectNotFound(converted) {
			return true, nil
		}
		return false, tonnageerrors.NewObjectError("compare", bucket, key, converted)
	}

	if head.ContentLength != nil && *head.ContentLength != info.Size() {
		return true, nil
	}

	etag := strings.Trim(aws.ToString(head.ETag), `"`)
	if etag == "" {
		return true, nil
	}

	local, err := c.localETag(localPath, etag)
	if err != nil {
		return false, tonnageerrors.NewObjectError("compare", bucket, key, err)
	}

	return local != etag, nil
}

// localETag computes the ETag the local file would have if uploaded the same
// way as the stored object.
func (c *ETagComparator) localETag(localPath, remoteETag string) (string, error) {
	if _, parts, ok := strings.Cut(remoteETag, "-"); ok {
		if _, err := strconv.Atoi(parts); err != nil {
			return "", fmt.Errorf("malformed multipart ETag %q", remoteETag)
		}
		return c.multipartETag(localPath)
	}
	return c.md5Hex(localPath)
}

func (c *ETagComparator) md5Hex(localPath string) (string, error) {
	file, err := c.FS.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file for MD5 computation: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to compute MD5: %w", err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

func (c *ETagComparator) multipartETag(localPath string) (string, error) {
	partSize := c.PartSize
	if partSize <= 0 {
		partSize = DefaultPartSize
	}

	file, err := c.FS.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file for ETag computation: %w", err)
	}
	defer file.Close()

	var digests []byte
	parts := 0
	for {
		hash := md5.New()
		n, err := io.CopyN(hash, file, partSize)
		if n > 0 {
			digests = append(digests, hash.Sum(nil)...)
			parts++
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to compute part MD5: %w", err)
		}
	}

	sum := md5.Sum(digests)
	return hex.EncodeToString(sum[:]) + "-" + strconv.Itoa(parts), nil
}

// convertHeadError maps HeadObject API errors onto sentinels.
func convertHeadError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return fmt.Errorf("%w: %v", tonnageerrors.ErrObjectNotFound, err)
		case "NoSuchBucket":
			return fmt.Errorf("%w: %v", tonnageerrors.ErrBucketNotFound, err)
		case "Forbidden", "AccessDenied":
			return fmt.Errorf("%w: %v", tonnageerrors.ErrAccessDenied, err)
		}
	}
	return err
}

// Force reports every file as changed.
type Force struct{}

// HasChanged implements tonnagetypes.FingerprintComparator.
func (Force) HasChanged(context.Context, tonnagetypes.HeadObjectAPI, string, string, string) (bool, error) {
	return true, nil
}

// Func adapts an ordinary function to tonnagetypes.FingerprintComparator.
type Func func(ctx context.Context, api tonnagetypes.HeadObjectAPI, bucket, key, localPath string) (bool, error)

// HasChanged calls f.
func (f Func) HasChanged(
	ctx context.Context,
	api tonnagetypes.HeadObjectAPI,
	bucket, key, localPath string,
) (bool, error) {
	return f(ctx, api, bucket, key, localPath)
}

var (
	_ tonnagetypes.FingerprintComparator = (*ETagComparator)(nil)
	_ tonnagetypes.FingerprintComparator = Force{}
	_ tonnagetypes.FingerprintComparator = Func(nil)
)
