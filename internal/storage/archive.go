package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Archiver stores uploaded workbooks and returns where they live
type Archiver interface {
	Archive(ctx context.Context, kind string, runID uuid.UUID, filename string, data []byte) (string, error)
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinIOArchiver keeps source workbooks in an S3 compatible bucket
type MinIOArchiver struct {
	client  objectPutter
	bucket  string
	baseURL string
	logger  *logrus.Entry
}

// NewMinIOArchiver connects to MinIO and creates the bucket when missing
func NewMinIOArchiver(ctx context.Context, cfg MinIOConfig, logger *logrus.Logger) (*MinIOArchiver, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio endpoint and bucket are required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinIOArchiver{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: client.EndpointURL().String(),
		logger:  logger.WithField("component", "archive"),
	}, nil
}

func (a *MinIOArchiver) Archive(ctx context.Context, kind string, runID uuid.UUID, filename string, data []byte) (string, error) {
	name := ObjectName(kind, runID, filename)

	info, err := a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeFor(filename),
	})
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"bucket": a.bucket,
		"object": name,
		"size":   info.Size,
	}).Debug("Archived source workbook")

	return strings.TrimRight(a.baseURL, "/") + "/" + a.bucket + "/" + name, nil
}

// ObjectName places a workbook under imports/<kind>/<run id>/
func ObjectName(kind string, runID uuid.UUID, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return path.Join("imports", kind, runID.String(), base)
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return "text/csv"
	case ".xlsm":
		return "application/vnd.ms-excel.sheet.macroEnabled.12"
	default:
		return xlsxContentType
	}
}

// NoopArchiver is used when object storage is not configured
type NoopArchiver struct{}

func (NoopArchiver) Archive(ctx context.Context, kind string, runID uuid.UUID, filename string, data []byte) (string, error) {
	return "", nil
}
