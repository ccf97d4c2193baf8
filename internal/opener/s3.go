package opener

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/joseph-ayodele/credit-report-kz/internal/common"
)

type S3Client interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// NewS3Client connects to the object store described by cfg.
func NewS3Client(cfg common.S3Config) (*minio.Client, error) {
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
}

type S3Opener struct {
	Client S3Client
	logger *slog.Logger
}

func NewS3Opener(cli S3Client, logger *slog.Logger) *S3Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Opener{Client: cli, logger: logger}
}

func (s *S3Opener) OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, Meta, error) {
	s.logger.Debug("s3 open start", "bucket", bucket, "key", key)
	st, err := s.Client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		s.logger.Warn("s3 stat failed", "bucket", bucket, "key", key, "error", err)
		return nil, Meta{}, fmt.Errorf("s3 stat: %w", err)
	}
	obj, err := s.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		s.logger.Warn("s3 get failed", "bucket", bucket, "key", key, "error", err)
		return nil, Meta{}, fmt.Errorf("s3 get: %w", err)
	}
	s.logger.Debug("s3 open ok", "content_type", st.ContentType, "size", st.Size, "etag", st.ETag)
	return obj, Meta{
		Source:      "s3",
		Name:        path.Base(key),
		ContentType: st.ContentType,
		Size:        st.Size,
		Bucket:      bucket,
		Key:         key,
	}, nil
}
