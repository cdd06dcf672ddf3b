package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStoreConfig holds S3-compatible storage settings. Uploads are
// optional: when the config is incomplete the pipeline keeps artifacts
// local only.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// ObjectStoreConfigFromEnv reads CROWELM_S3_* settings.
func ObjectStoreConfigFromEnv() ObjectStoreConfig {
	return ObjectStoreConfig{
		Endpoint:  os.Getenv("CROWELM_S3_ENDPOINT"),
		AccessKey: os.Getenv("CROWELM_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("CROWELM_S3_SECRET_KEY"),
		Bucket:    os.Getenv("CROWELM_S3_BUCKET"),
		Region:    os.Getenv("CROWELM_S3_REGION"),
		UseSSL:    os.Getenv("CROWELM_S3_USE_SSL") == "true",
	}
}

// Enabled reports whether enough settings are present to upload.
func (c ObjectStoreConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

// Uploader mirrors run artifacts into an S3-compatible bucket.
type Uploader struct {
	client *minio.Client
	bucket string
}

// NewUploader connects to the configured object store.
func NewUploader(cfg ObjectStoreConfig) (*Uploader, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("object store config incomplete")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &Uploader{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the artifact bucket when it does not exist yet.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists check: %w", err)
	}
	if exists {
		return nil
	}
	if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	return nil
}

// Upload copies one artifact file under runs/{runID}/ and returns the
// object key.
func (u *Uploader) Upload(ctx context.Context, runID, path string) (string, error) {
	key := objectKey(runID, path)
	_, err := u.client.FPutObject(ctx, u.bucket, key, path, minio.PutObjectOptions{
		ContentType: contentTypeFor(path),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filepath.Base(path), err)
	}
	return key, nil
}

func objectKey(runID, path string) string {
	return fmt.Sprintf("runs/%s/%s", runID, filepath.Base(path))
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdb":
		return "chemical/x-pdb"
	case ".md":
		return "text/markdown"
	case ".json":
		return "application/json"
	case ".html":
		return "text/html"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
