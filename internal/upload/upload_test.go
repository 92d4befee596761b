package upload

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tonnageerrors "github.com/rearc-data/fred-truck-tonnage/errors"
	"github.com/rearc-data/fred-truck-tonnage/internal/testutil"
)

func TestUploader_UploadFile(t *testing.T) {
	content := "DATE,TRUCKD11\n2024-01-01,115.3\n2024-02-01,116.0\n"
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "TRUCKD11.csv", []byte(content), 0o644))

	calls := 0
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			calls++
			assert.Equal(t, "rearc-data", aws.ToString(params.Bucket))
			assert.Equal(t, "TRUCKD11/dataset/TRUCKD11.csv", aws.ToString(params.Key))
			assert.Equal(t, int64(len(content)), aws.ToInt64(params.ContentLength))
			assert.True(t, strings.HasPrefix(aws.ToString(params.ContentType), "text/csv"))

			sum := md5.Sum([]byte(content))
			assert.Equal(t, base64.StdEncoding.EncodeToString(sum[:]), aws.ToString(params.ContentMD5))

			body, err := io.ReadAll(params.Body)
			require.NoError(t, err)
			assert.Equal(t, content, string(body))

			return &s3.PutObjectOutput{ETag: aws.String(`"etag-123"`), VersionId: aws.String("v1")}, nil
		},
	}

	result, err := New(mock, fs).UploadFile(context.Background(), "rearc-data", "TRUCKD11/dataset/TRUCKD11.csv", "TRUCKD11.csv")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "etag-123", result.ETag)
	assert.Equal(t, "v1", result.VersionID)
	assert.Equal(t, int64(len(content)), result.Size)
}

func TestUploader_UploadFileErrors(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "f.csv", []byte("a,b\n1,2\n"), 0o644))

	tests := []struct {
		name      string
		bucket    string
		key       string
		path      string
		putErr    error
		errIs     error
		wantCalls int
	}{
		{name: "empty bucket", bucket: "", key: "k/f.csv", path: "f.csv", errIs: tonnageerrors.ErrInvalidInput},
		{name: "invalid key", bucket: "b-1", key: "../f.csv", path: "f.csv", errIs: tonnageerrors.ErrInvalidObjectKey},
		{name: "missing file", bucket: "b-1", key: "k/f.csv", path: "nope.csv"},
		{name: "put failure", bucket: "b-1", key: "k/f.csv", path: "f.csv", putErr: errors.New("SlowDown"), wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			mock := &testutil.MockS3Client{
				PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
					calls++
					return nil, tt.putErr
				},
			}

			_, err := New(mock, fs).UploadFile(context.Background(), tt.bucket, tt.key, tt.path)
			require.Error(t, err)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestDetectContentType(t *testing.T) {
	assert.True(t, strings.HasPrefix(DetectContentType("x.csv", []byte("a,b,c\n1,2,3\n4,5,6\n")), "text/csv"))
	assert.Equal(t, "application/json", DetectContentType("x.json", []byte{0x00, 0x01, 0x02}))
	assert.Equal(t, DefaultContentType, DetectContentType("x", []byte{0x00, 0x01, 0x02}))
}
