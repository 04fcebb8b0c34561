package minio

import (
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lloyd/blobstore"
)

func TestStore_Keys(t *testing.T) {
	s := NewStore(nil, "bucket", "reports/")

	assert.Equal(t, "reports/run/iteration-001.csv", s.key("run/iteration-001.csv"))
	assert.Equal(t, "run/iteration-001.csv", s.relative("reports/run/iteration-001.csv"))
	assert.Equal(t, "", s.relative("reports/"))

	flat := NewStore(nil, "bucket", "")
	assert.Equal(t, "snapshot.json", flat.key("snapshot.json"))
}

func TestContentType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"iteration-001.csv", "text/csv"},
		{"snapshot.json", "application/json"},
		{"iteration-001.csv.zst", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentType(tt.name))
		})
	}
}

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	endpoint := "localhost:9000"
	bucket := "test-lloyd"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	if _, err = client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("Point,X,Y\n1,0.0000,0.0000\n")
	require.NoError(t, store.Put(ctx, "run/iteration-001.csv", data))

	got, err := store.Get(ctx, "run/iteration-001.csv")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	w, err := store.Create(ctx, "run/snapshot.json")
	require.NoError(t, err)
	_, err = w.Write([]byte(`{"state":"converged"}`))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	names, err := store.List(ctx, "run/")
	require.NoError(t, err)
	assert.Equal(t, []string{"run/iteration-001.csv", "run/snapshot.json"}, names)

	require.NoError(t, store.Delete(ctx, "run/iteration-001.csv"))
	require.NoError(t, store.Delete(ctx, "run/snapshot.json"))

	_, err = store.Get(ctx, "run/iteration-001.csv")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
