//go:build integration
// +build integration

package tonnage_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tonnage "github.com/rearc-data/fred-truck-tonnage"
	"github.com/rearc-data/fred-truck-tonnage/internal/testutil"
	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

// TestIntegrationSync runs the full sync against LocalStack.
func TestIntegrationSync(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, s3Client := testutil.SetupLocalStackTest(t)

	bucketName := testutil.GenerateTestBucketName("tonnage")
	testutil.CreateTestBucket(t, s3Client, bucketName)

	csvBody := []byte("observation_date,TRUCKD11\n2024-01-01,115.3\n")
	xlsBody := []byte("not really a spreadsheet")
	src := testutil.NewSourceServer(t, map[string]testutil.SourceResponse{
		".xls": {Body: xlsBody},
		".csv": {Body: csvBody},
	})

	awsCfg, err := container.AWSConfig(ctx)
	require.NoError(t, err)

	cfg := tonnagetypes.Config{
		DatasetName: "TRUCKD11",
		Bucket:      bucketName,
		TempDir:     t.TempDir(),
	}

	syncer, err := tonnage.New(ctx, cfg,
		tonnage.WithAWSConfig(&awsCfg),
		tonnage.WithEndpoint(container.Endpoint()),
		tonnage.WithForcePathStyle(true),
		tonnage.WithBaseURL(src.BaseURL()),
	)
	require.NoError(t, err)

	t.Run("first run uploads both variants", func(t *testing.T) {
		assets, err := syncer.Sync(ctx)
		require.NoError(t, err)
		assert.Equal(t, []tonnagetypes.AssetSource{
			{Bucket: bucketName, Key: "TRUCKD11/dataset/TRUCKD11.xls"},
			{Bucket: bucketName, Key: "TRUCKD11/dataset/TRUCKD11.csv"},
		}, assets)

		out, err := s3Client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucketName),
			Key:    aws.String("TRUCKD11/dataset/TRUCKD11.csv"),
		})
		require.NoError(t, err)
		defer out.Body.Close()

		stored, err := io.ReadAll(out.Body)
		require.NoError(t, err)
		assert.Equal(t, csvBody, stored)
	})

	t.Run("second run detects no change", func(t *testing.T) {
		assets, err := syncer.Sync(ctx)
		require.NoError(t, err)
		assert.Empty(t, assets)
	})

	t.Run("changed object is replaced", func(t *testing.T) {
		_, err := s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucketName),
			Key:    aws.String("TRUCKD11/dataset/TRUCKD11.xls"),
			Body:   bytes.NewReader(make([]byte, 32)),
		})
		require.NoError(t, err)

		changedOnly, err := tonnage.NewWithClient(s3Client, cfg,
			tonnage.WithBaseURL(src.BaseURL()),
			tonnage.WithFilesystem(osfs.New(cfg.TempDir)),
			tonnage.WithChangedOnly(),
		)
		require.NoError(t, err)

		assets, err := changedOnly.Sync(ctx)
		require.NoError(t, err)
		assert.Equal(t, []tonnagetypes.AssetSource{
			{Bucket: bucketName, Key: "TRUCKD11/dataset/TRUCKD11.xls"},
		}, assets)
	})
}
