package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BlobClient implements object storage access against one container.
type BlobClient struct {
	client    *minio.Client
	container string
}

// BlobConfig holds storage connection settings.
type BlobConfig struct {
	Endpoint  string // host[:port], no scheme
	AccessKey string
	SecretKey string
	Container string
	UseSSL    bool
}

// NewBlobClient creates a storage client and verifies the container exists.
func NewBlobClient(ctx context.Context, cfg BlobConfig) (*BlobClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Container)
	if err != nil {
		return nil, fmt.Errorf("failed to check container existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("container %q does not exist", cfg.Container)
	}

	return &BlobClient{client: client, container: cfg.Container}, nil
}

// Endpoint returns the resolved storage endpoint URL.
func (b *BlobClient) Endpoint() string {
	return b.client.EndpointURL().String()
}

// Get opens the object at key for reading. The caller must close it.
func (b *BlobClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.container, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return obj, nil
}

// Put writes the object at key, replacing any existing object. Overwrite is
// unconditional so re-running a handler on the same file is safe.
func (b *BlobClient) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string, metadata map[string]string) error {
	_, err := b.client.PutObject(ctx, b.container, key, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

// Copy initiates a server-side copy of srcKey to dstKey within the container.
func (b *BlobClient) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := b.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: b.container, Object: dstKey},
		minio.CopySrcOptions{Bucket: b.container, Object: srcKey},
	)
	if err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", srcKey, dstKey, err)
	}
	return nil
}

// Stat reports whether the object at key exists.
func (b *BlobClient) Stat(ctx context.Context, key string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.container, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	return true, nil
}

// Remove deletes the object at key.
func (b *BlobClient) Remove(ctx context.Context, key string) error {
	if err := b.client.RemoveObject(ctx, b.container, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

// List returns up to limit object names from the container, for diagnostics.
func (b *BlobClient) List(ctx context.Context, limit int) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var names []string
	for obj := range b.client.ListObjects(ctx, b.container, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		names = append(names, obj.Key)
		if len(names) >= limit {
			break
		}
	}
	return names, nil
}
