package publish

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/relnote/relnote/pkg/relconfig"
)

// MinioStore implements ObjectStore for MinIO and any S3-compatible
// endpoint.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the configured endpoint. Credentials come
// from the environment variables the config names, falling back to
// RELNOTE_ACCESS_KEY and RELNOTE_SECRET_KEY.
func NewMinioStore(cfg *relconfig.PublishConfig) (*MinioStore, error) {
	accessEnv := cfg.AccessKeyEnv
	if accessEnv == "" {
		accessEnv = "RELNOTE_ACCESS_KEY"
	}

	secretEnv := cfg.SecretKeyEnv
	if secretEnv == "" {
		secretEnv = "RELNOTE_SECRET_KEY"
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv(accessEnv), os.Getenv(secretEnv), ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}

	return nil
}

func (s *MinioStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, obj.Err)
		}

		keys = append(keys, obj.Key)
	}

	return keys, nil
}
