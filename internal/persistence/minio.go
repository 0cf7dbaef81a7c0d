package persistence

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/pticket/helpdesk/internal/config"
)

// NewMinio builds a MinIO client for attachment storage and ensures the
// bucket exists. Returns nil when no endpoint is configured so attachment
// features degrade gracefully in development.
func NewMinio(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		logger.Warn("MINIO_ENDPOINT not provided; attachment storage disabled")
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		logger.Warn("unable to check attachment bucket", zap.Error(err))
		return client, nil
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			logger.Warn("unable to create attachment bucket", zap.Error(err))
		}
	}

	logger.Info("connected to object storage", zap.String("bucket", cfg.Bucket))
	return client, nil
}
