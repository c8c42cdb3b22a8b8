package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"bloomforge/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const minioScheme = "minio://"

// Minio stores files as objects named <sessionID>/<name> in one bucket.
type Minio struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewMinio connects to the endpoint and creates the bucket when missing.
func NewMinio(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*Minio, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio health check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("Created storage bucket", zap.String("bucket", cfg.Bucket))
	}
	return &Minio{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Save uploads data and returns a minio://bucket/object reference.
func (m *Minio) Save(ctx context.Context, sessionID, name string, data []byte, contentType string) (string, error) {
	obj, err := objectName(sessionID, name)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = m.client.PutObject(ctx, m.bucket, obj, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", obj, err)
	}
	return minioScheme + m.bucket + "/" + obj, nil
}

func (m *Minio) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	obj, err := m.object(ref)
	if err != nil {
		return nil, err
	}
	return m.client.GetObject(ctx, m.bucket, obj, minio.GetObjectOptions{})
}

// Delete removes a single object. Removing a missing key succeeds.
func (m *Minio) Delete(ctx context.Context, ref string) error {
	obj, err := m.object(ref)
	if err != nil {
		return err
	}
	if err := m.client.RemoveObject(ctx, m.bucket, obj, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", obj, err)
	}
	return nil
}

func (m *Minio) object(ref string) (string, error) {
	obj := strings.TrimPrefix(ref, minioScheme+m.bucket+"/")
	if obj == ref && strings.HasPrefix(ref, minioScheme) {
		return "", fmt.Errorf("object %q is not in bucket %s", ref, m.bucket)
	}
	return obj, nil
}

// DeleteSession removes every object under the session prefix.
func (m *Minio) DeleteSession(ctx context.Context, sessionID string) error {
	prefix, err := objectName(sessionID, "x")
	if err != nil {
		return err
	}
	prefix = strings.TrimSuffix(prefix, "x")

	removed := 0
	for info := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return fmt.Errorf("list %s: %w", prefix, info.Err)
		}
		if err := m.client.RemoveObject(ctx, m.bucket, info.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove %s: %w", info.Key, err)
		}
		removed++
	}
	m.logger.Debug("Deleted session objects", zap.String("session_id", sessionID), zap.Int("count", removed))
	return nil
}
