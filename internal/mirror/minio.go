// Package mirror copies finished transcripts to an S3 compatible bucket.
package mirror

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/voxjob/transcriber/internal/store"
	"github.com/voxjob/transcriber/internal/store/model"
)

const defaultBucket = "transcripts"

var contentTypes = map[model.ArtifactKind]string{
	model.ArtifactKindText:     "text/plain; charset=utf-8",
	model.ArtifactKindSubtitle: "application/x-subrip",
	model.ArtifactKindCaption:  "text/vtt",
}

// objectClient is the part of *minio.Client the mirror needs.
type objectClient interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucket, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type MinioOpts func(c *minioConfig)

type minioConfig struct {
	endpoint        string
	bucket          string
	accessKey       string
	secretAccessKey string
	prefix          string
	useSSL          bool
}

func WithEndpoint(endpoint string) MinioOpts {
	return func(c *minioConfig) {
		c.endpoint = endpoint
	}
}

func WithBucket(bucket string) MinioOpts {
	return func(c *minioConfig) {
		if bucket != "" {
			c.bucket = bucket
		}
	}
}

func WithCredentials(accessKey, secretAccessKey string) MinioOpts {
	return func(c *minioConfig) {
		c.accessKey = accessKey
		c.secretAccessKey = secretAccessKey
	}
}

// WithPrefix puts every object under prefix inside the bucket.
func WithPrefix(prefix string) MinioOpts {
	return func(c *minioConfig) {
		c.prefix = prefix
	}
}

func WithSSL(useSSL bool) MinioOpts {
	return func(c *minioConfig) {
		c.useSSL = useSSL
	}
}

func newConfig(opts ...MinioOpts) *minioConfig {
	cfg := &minioConfig{
		bucket: defaultBucket,
	}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// MinioMirror uploads the artifacts of a job to <prefix>/<job id>/<filename>.
type MinioMirror struct {
	cfg       *minioConfig
	client    objectClient
	artifacts store.Artifact
}

func NewMinioMirror(artifacts store.Artifact, opts ...MinioOpts) (*MinioMirror, error) {
	cfg := newConfig(opts...)
	if cfg.endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}

	minioClient, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, err
	}

	return &MinioMirror{cfg: cfg, client: minioClient, artifacts: artifacts}, nil
}

func newMirror(client objectClient, artifacts store.Artifact, opts ...MinioOpts) *MinioMirror {
	return &MinioMirror{cfg: newConfig(opts...), client: client, artifacts: artifacts}
}

// EnsureBucket creates the bucket when it is missing.
func (m *MinioMirror) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.cfg.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", m.cfg.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.cfg.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket %s: %w", m.cfg.bucket, err)
	}
	zap.S().Named("minio_mirror").Infow("bucket created", "bucket", m.cfg.bucket)
	return nil
}

// MirrorJob uploads every artifact currently in dir and returns how many were sent.
func (m *MinioMirror) MirrorJob(ctx context.Context, id uuid.UUID, dir string) (int, error) {
	artifacts, err := m.artifacts.List(ctx, id)
	if err != nil {
		return 0, err
	}

	for i, a := range artifacts {
		object := m.objectName(id, a.Filename)
		if _, err := m.client.FPutObject(ctx, m.cfg.bucket, object, filepath.Join(dir, a.Filename), minio.PutObjectOptions{
			ContentType: contentTypes[a.Kind],
		}); err != nil {
			return i, fmt.Errorf("uploading %s: %w", object, err)
		}
	}
	return len(artifacts), nil
}

func (m *MinioMirror) objectName(id uuid.UUID, filename string) string {
	return path.Join(m.cfg.prefix, id.String(), filename)
}
