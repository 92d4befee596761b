// Package testutil provides test utilities and mocks for S3 operations.
// This package is internal and should only be used for testing within this module.
package testutil

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/rearc-data/fred-truck-tonnage/internal/s3api"
)

// MockS3Client is a mock implementation of the S3API interface for testing.
// It allows customization of each S3 operation through function fields.
type MockS3Client struct {
	PutObjectFunc  func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObjectFunc func(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// PutObject mocks the S3 PutObject operation.
func (m *MockS3Client) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{}, nil
}

// HeadObject mocks the S3 HeadObject operation.
func (m *MockS3Client) HeadObject(
	ctx context.Context,
	params *s3.HeadObjectInput,
	optFns ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	if m.HeadObjectFunc != nil {
		return m.HeadObjectFunc(ctx, params, optFns...)
	}
	return &s3.HeadObjectOutput{}, nil
}

// StoredObject is an object held by MemoryS3.
type StoredObject struct {
	Body         []byte
	ContentType  string
	ContentMD5   string
	ETag         string
	LastModified time.Time
}

// MemoryS3 is an in-memory, concurrency-safe S3API with S3-like ETag
// semantics. It records every PutObject call.
type MemoryS3 struct {
	mu      sync.Mutex
	objects map[string]*StoredObject
	puts    []string

	// HeadErr, when set, is returned by every HeadObject call.
	HeadErr error

	// PutErr, when set, is returned by every PutObject call.
	PutErr error
}

// NewMemoryS3 creates an empty in-memory store.
func NewMemoryS3() *MemoryS3 {
	return &MemoryS3{objects: make(map[string]*StoredObject)}
}

func objectID(bucket, key string) string {
	return bucket + "/" + key
}

// Seed stores body under bucket/key without recording a put.
func (m *MemoryS3) Seed(bucket, key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectID(bucket, key)] = &StoredObject{
		Body:         body,
		ETag:         quotedMD5(body),
		LastModified: time.Now(),
	}
}

// Object returns the stored object, if any.
func (m *MemoryS3) Object(bucket, key string) (*StoredObject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[objectID(bucket, key)]
	return obj, ok
}

// Puts returns the "bucket/key" of every PutObject call in call order.
func (m *MemoryS3) Puts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.puts...)
}

// PutObject stores the request body.
func (m *MemoryS3) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	if m.PutErr != nil {
		return nil, m.PutErr
	}

	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	obj := &StoredObject{
		Body:         body,
		ContentType:  aws.ToString(params.ContentType),
		ContentMD5:   aws.ToString(params.ContentMD5),
		ETag:         quotedMD5(body),
		LastModified: time.Now(),
	}

	id := objectID(aws.ToString(params.Bucket), aws.ToString(params.Key))

	m.mu.Lock()
	m.objects[id] = obj
	m.puts = append(m.puts, id)
	m.mu.Unlock()

	return &s3.PutObjectOutput{ETag: aws.String(obj.ETag)}, nil
}

// HeadObject returns the stored object's metadata or a NotFound error.
func (m *MemoryS3) HeadObject(
	_ context.Context,
	params *s3.HeadObjectInput,
	_ ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	if m.HeadErr != nil {
		return nil, m.HeadErr
	}

	obj, ok := m.Object(aws.ToString(params.Bucket), aws.ToString(params.Key))
	if !ok {
		return nil, &types.NotFound{Message: aws.String("Not Found")}
	}

	return &s3.HeadObjectOutput{
		ETag:          aws.String(obj.ETag),
		ContentLength: aws.Int64(int64(len(obj.Body))),
		ContentType:   aws.String(obj.ContentType),
		LastModified:  aws.Time(obj.LastModified),
	}, nil
}

func quotedMD5(body []byte) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%x", md5.Sum(body)))
}

// Ensure the mocks implement s3api.S3API interface
var (
	_ s3api.S3API = (*MockS3Client)(nil)
	_ s3api.S3API = (*MemoryS3)(nil)
)
