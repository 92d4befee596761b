package comparator

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tonnageerrors "github.com/rearc-data/fred-truck-tonnage/errors"
	"github.com/rearc-data/fred-truck-tonnage/internal/testutil"
	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

const (
	testBucket = "rearc-data"
	testKey    = "TRUCKD11/dataset/TRUCKD11.csv"
	testPath   = "TRUCKD11.csv"
)

func setupTestFile(t *testing.T, content string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, testPath, []byte(content), 0o644))
	return fs
}

func computeMD5String(content string) string {
	hash := md5.Sum([]byte(content))
	return hex.EncodeToString(hash[:])
}

func headReturning(etag string, size int64) *testutil.MockS3Client {
	return &testutil.MockS3Client{
		HeadObjectFunc: func(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			return &s3.HeadObjectOutput{
				ETag:          aws.String(etag),
				ContentLength: aws.Int64(size),
			}, nil
		},
	}
}

func TestETagComparator(t *testing.T) {
	content := "DATE,TRUCKD11\n2024-01-01,115.3\n"
	size := int64(len(content))

	tests := []struct {
		name    string
		api     *testutil.MockS3Client
		changed bool
	}{
		{
			name:    "same MD5 quoted",
			api:     headReturning(`"`+computeMD5String(content)+`"`, size),
			changed: false,
		},
		{
			name:    "same MD5 unquoted",
			api:     headReturning(computeMD5String(content), size),
			changed: false,
		},
		{
			name:    "same size different MD5",
			api:     headReturning(`"`+computeMD5String("DATE,TRUCKD11\n2024-01-01,999.9\n")+`"`, size),
			changed: true,
		},
		{
			name:    "different size",
			api:     headReturning(`"`+computeMD5String(content)+`"`, size+1),
			changed: true,
		},
		{
			name:    "empty ETag",
			api:     headReturning("", size),
			changed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp := NewETagComparator(setupTestFile(t, content))

			changed, err := comp.HasChanged(context.Background(), tt.api, testBucket, testKey, testPath)
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestETagComparator_HeadRequest(t *testing.T) {
	var gotBucket, gotKey string
	api := &testutil.MockS3Client{
		HeadObjectFunc: func(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			gotBucket = aws.ToString(params.Bucket)
			gotKey = aws.ToString(params.Key)
			return &s3.HeadObjectOutput{ETag: aws.String(computeMD5String("x")), ContentLength: aws.Int64(1)}, nil
		},
	}

	comp := NewETagComparator(setupTestFile(t, "x"))
	changed, err := comp.HasChanged(context.Background(), api, testBucket, testKey, testPath)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, testBucket, gotBucket)
	assert.Equal(t, testKey, gotKey)
}

func TestETagComparator_MissingObject(t *testing.T) {
	notFoundErrors := []error{
		&types.NotFound{Message: aws.String("Not Found")},
		&types.NoSuchKey{},
		&smithy.GenericAPIError{Code: "NotFound"},
		fmt.Errorf("operation error S3: HeadObject: %w", &smithy.GenericAPIError{Code: "NoSuchKey"}),
	}

	for _, headErr := range notFoundErrors {
		t.Run(fmt.Sprintf("%T", headErr), func(t *testing.T) {
			api := &testutil.MockS3Client{
				HeadObjectFunc: func(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
					return nil, headErr
				},
			}

			comp := NewETagComparator(setupTestFile(t, "content"))
			changed, err := comp.HasChanged(context.Background(), api, testBucket, testKey, testPath)

			require.NoError(t, err)
			assert.True(t, changed, "a missing object must count as changed")
		})
	}
}

func TestETagComparator_HeadErrors(t *testing.T) {
	tests := []struct {
		name     string
		headErr  error
		sentinel error
	}{
		{name: "access denied", headErr: &smithy.GenericAPIError{Code: "Forbidden"}, sentinel: tonnageerrors.ErrAccessDenied},
		{name: "no bucket", headErr: &smithy.GenericAPIError{Code: "NoSuchBucket"}, sentinel: tonnageerrors.ErrBucketNotFound},
		{name: "other", headErr: errors.New("connection reset"), sentinel: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &testutil.MockS3Client{
				HeadObjectFunc: func(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
					return nil, tt.headErr
				},
			}

			comp := NewETagComparator(setupTestFile(t, "content"))
			changed, err := comp.HasChanged(context.Background(), api, testBucket, testKey, testPath)

			require.Error(t, err)
			assert.False(t, changed)
			assert.Contains(t, err.Error(), testKey)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestETagComparator_MissingLocalFile(t *testing.T) {
	comp := NewETagComparator(memfs.New())

	_, err := comp.HasChanged(context.Background(), &testutil.MockS3Client{}, testBucket, testKey, testPath)
	require.Error(t, err)
}

func TestETagComparator_Multipart(t *testing.T) {
	content := "abcdefghij"

	var digests []byte
	for _, part := range []string{"abcd", "efgh", "ij"} {
		sum := md5.Sum([]byte(part))
		digests = append(digests, sum[:]...)
	}
	sum := md5.Sum(digests)
	multipart := hex.EncodeToString(sum[:]) + "-3"

	t.Run("matching", func(t *testing.T) {
		comp := NewETagComparator(setupTestFile(t, content))
		comp.PartSize = 4

		changed, err := comp.HasChanged(context.Background(), headReturning(`"`+multipart+`"`, int64(len(content))), testBucket, testKey, testPath)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("different part size", func(t *testing.T) {
		comp := NewETagComparator(setupTestFile(t, content))
		comp.PartSize = 5

		changed, err := comp.HasChanged(context.Background(), headReturning(`"`+multipart+`"`, int64(len(content))), testBucket, testKey, testPath)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("malformed", func(t *testing.T) {
		comp := NewETagComparator(setupTestFile(t, content))

		_, err := comp.HasChanged(context.Background(), headReturning(`"abc-x"`, int64(len(content))), testBucket, testKey, testPath)
		require.Error(t, err)
	})
}

func TestETagComparator_AgainstMemoryStore(t *testing.T) {
	store := testutil.NewMemoryS3()
	comp := NewETagComparator(setupTestFile(t, "v1"))

	changed, err := comp.HasChanged(context.Background(), store, testBucket, testKey, testPath)
	require.NoError(t, err)
	assert.True(t, changed)

	store.Seed(testBucket, testKey, []byte("v1"))
	changed, err = comp.HasChanged(context.Background(), store, testBucket, testKey, testPath)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestForceAndFunc(t *testing.T) {
	changed, err := Force{}.HasChanged(context.Background(), nil, "", "", "")
	require.NoError(t, err)
	assert.True(t, changed)

	calls := 0
	f := Func(func(ctx context.Context, api tonnagetypes.HeadObjectAPI, bucket, key, localPath string) (bool, error) {
		calls++
		return key == testKey, nil
	})
	changed, err = f.HasChanged(context.Background(), nil, testBucket, testKey, testPath)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, calls)
}
