// Package upload writes a local file to the object store, replacing any
// existing object under the same key.
package upload

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"

	"github.com/rearc-data/fred-truck-tonnage/errors"
	"github.com/rearc-data/fred-truck-tonnage/internal/s3api"
	"github.com/rearc-data/fred-truck-tonnage/internal/validation"
)

// DefaultContentType is used when neither content sniffing nor the file
// extension identify the content.
const DefaultContentType = "application/octet-stream"

// Result contains the result of an upload.
type Result struct {
	// Key is the S3 object key that was uploaded
	Key string

	// Size is the size of the uploaded object in bytes
	Size int64

	// ETag is the S3 entity tag for the uploaded object
	ETag string

	// VersionID is the version ID if versioning is enabled
	VersionID string

	// Duration is how long the upload took
	Duration time.Duration
}

// Uploader handles S3 uploads of local files.
type Uploader struct {
	s3Client s3api.S3API
	fs       billy.Filesystem
}

// New creates a new Uploader reading local files from fs.
func New(s3Client s3api.S3API, fs billy.Filesystem) *Uploader {
	return &Uploader{
		s3Client: s3Client,
		fs:       fs,
	}
}

// UploadFile uploads localPath to bucket/key with a single PutObject.
// The request carries Content-MD5, so S3 rejects a body corrupted in transit,
// and the stored ETag equals the file's MD5 for later comparisons.
func (u *Uploader) UploadFile(ctx context.Context, bucket, key, localPath string) (*Result, error) {
	if bucket == "" {
		return nil, errors.NewError("upload", errors.ErrInvalidInput).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, errors.NewObjectError("upload", bucket, key, err)
	}

	startTime := time.Now()

	data, err := u.readFile(localPath)
	if err != nil {
		return nil, errors.NewObjectError("upload", bucket, key, err)
	}

	sum := md5.Sum(data)
	size := int64(len(data))

	output, err := u.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(DetectContentType(localPath, data)),
		ContentMD5:    aws.String(base64.StdEncoding.EncodeToString(sum[:])),
	})
	if err != nil {
		return nil, errors.NewObjectError("upload", bucket, key, err)
	}

	return &Result{
		Key:       key,
		Size:      size,
		ETag:      strings.Trim(aws.ToString(output.ETag), `"`),
		VersionID: aws.ToString(output.VersionId),
		Duration:  time.Since(startTime),
	}, nil
}

func (u *Uploader) readFile(localPath string) ([]byte, error) {
	file, err := u.fs.Open(localPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

// DetectContentType sniffs data with mimetype and falls back to the
// extension of path when sniffing is inconclusive.
func DetectContentType(path string, data []byte) string {
	if mt := mimetype.Detect(data); mt != nil && !mt.Is(DefaultContentType) {
		return mt.String()
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return DefaultContentType
}
