package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain/repositories"
)

// S3Config holds settings for an S3 compatible audio archive
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

// ValidateS3Config validates the S3Config
func ValidateS3Config(config S3Config) error {
	if config.Endpoint == "" {
		return fmt.Errorf("S3 endpoint is required")
	}
	if config.Bucket == "" {
		return fmt.Errorf("S3 bucket is required")
	}
	if config.AccessKey == "" || config.SecretKey == "" {
		return fmt.Errorf("S3 access key and secret key are required")
	}
	return nil
}

// NewS3ConfigFromEnv reads the S3_* environment variables
func NewS3ConfigFromEnv() S3Config {
	config := S3Config{
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		Bucket:    os.Getenv("S3_BUCKET"),
		Region:    os.Getenv("S3_REGION"),
		Prefix:    os.Getenv("S3_PREFIX"),
		UseSSL:    true,
	}
	if v := os.Getenv("S3_USE_SSL"); v != "" {
		if useSSL, err := strconv.ParseBool(v); err == nil {
			config.UseSSL = useSSL
		}
	}
	return config
}

// objectPutter is the part of *minio.Client the archive needs
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Archive stores synthesized audio in an S3 compatible bucket
type S3Archive struct {
	client objectPutter
	bucket string
	prefix string
	host   string
	logger *zap.Logger
}

var _ repositories.AudioArchive = (*S3Archive)(nil)

// NewS3Archive connects to the bucket and verifies it exists
func NewS3Archive(ctx context.Context, config S3Config, logger *zap.Logger) (*S3Archive, error) {
	if err := ValidateS3Config(config); err != nil {
		return nil, err
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", config.Bucket)
	}

	scheme := "https"
	if !config.UseSSL {
		scheme = "http"
	}

	logger.Info("Using S3 audio archive",
		zap.String("endpoint", config.Endpoint),
		zap.String("bucket", config.Bucket))

	return newS3Archive(client, config.Bucket, config.Prefix, fmt.Sprintf("%s://%s", scheme, config.Endpoint), logger), nil
}

func newS3Archive(client objectPutter, bucket, prefix, host string, logger *zap.Logger) *S3Archive {
	return &S3Archive{
		client: client,
		bucket: bucket,
		prefix: prefix,
		host:   host,
		logger: logger,
	}
}

// Save uploads data and returns the object URL
func (s *S3Archive) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	objectName := filepath.ToSlash(filepath.Join(s.prefix, key))

	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"uploaded-at": time.Now().Format(time.RFC3339)},
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	s.logger.Debug("Archived audio to S3", zap.String("object", objectName), zap.Int("bytes", len(data)))

	return fmt.Sprintf("%s/%s/%s", s.host, s.bucket, url.PathEscape(objectName)), nil
}
