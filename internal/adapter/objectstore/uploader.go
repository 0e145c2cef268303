package objectstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/water-quality-etl/internal/config"
	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const csvContentType = "text/csv; charset=utf-8"

// objectAPI is the subset of *minio.Client used by Uploader.
type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucket, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Uploader mirrors the CSV artifact to an S3-compatible bucket after each
// run, for dashboards hosted away from the ETL host.
// It implements pipeline.Publisher.
type Uploader struct {
	client objectAPI
	bucket string
	key    string
	logger *slog.Logger

	bucketMu sync.Mutex
	bucketOK bool
}

// NewUploader creates an Uploader from the object store settings.
func NewUploader(cfg config.ObjectStoreConfig, logger *slog.Logger) (*Uploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return &Uploader{client: client, bucket: cfg.Bucket, key: cfg.Key, logger: logger}, nil
}

// Name identifies the publisher in logs and metrics.
func (u *Uploader) Name() string {
	return "objectstore"
}

// Publish uploads the run's artifact, creating the bucket on first use.
func (u *Uploader) Publish(ctx context.Context, summary domain.RunSummary) error {
	if err := u.ensureBucket(ctx); err != nil {
		return err
	}

	info, err := u.client.FPutObject(ctx, u.bucket, u.key, summary.Artifact, minio.PutObjectOptions{
		ContentType:  csvContentType,
		UserMetadata: map[string]string{"run-id": summary.ID},
	})
	if err != nil {
		return fmt.Errorf("upload %s to %s/%s: %w", summary.Artifact, u.bucket, u.key, err)
	}

	u.logger.Info("artifact mirrored", "bucket", u.bucket, "key", u.key, "size", info.Size, "etag", info.ETag)
	return nil
}

func (u *Uploader) ensureBucket(ctx context.Context) error {
	u.bucketMu.Lock()
	defer u.bucketMu.Unlock()
	if u.bucketOK {
		return nil
	}

	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", u.bucket, err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", u.bucket, err)
		}
		u.logger.Info("bucket created", "bucket", u.bucket)
	}
	u.bucketOK = true
	return nil
}
