// Package s3 provides an uploader for S3-compatible backends.
package s3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	commonS3 "github.com/hibare/GoCommon/v2/pkg/aws/s3"
	"github.com/hibare/dbkeeper/internal/config"
)

// ErrNotInitialized is returned when Upload is called before a successful Init.
var ErrNotInitialized = errors.New("s3 client not initialized")

// S3 implements the storage uploader for S3-compatible storage backends.
type S3 struct {
	s3  commonS3.ClientIface
	cfg *config.Config
}

// Init prepares the S3 storage by establishing a session.
func (s *S3) Init(ctx context.Context) error {
	s3, err := commonS3.NewClient(ctx, commonS3.Options{
		Endpoint:  s.cfg.S3.Endpoint,
		Region:    s.cfg.S3.Region,
		AccessKey: s.cfg.S3.AccessKey,
		SecretKey: s.cfg.S3.SecretKey,
	})
	if err != nil {
		return err
	}

	s.s3 = s3

	return nil
}

// Name returns the name of the storage backend (e.g., "s3 (bucket)").
func (s *S3) Name() string {
	return fmt.Sprintf("%s (%s)", config.TargetS3, s.cfg.S3.Bucket)
}

// Upload uploads a local file under <prefix>/<instance id>/ and returns the object key.
func (s *S3) Upload(ctx context.Context, localPath string) (string, error) {
	if s.s3 == nil {
		return "", ErrNotInitialized
	}

	prefix := s.s3.BuildKey(s.cfg.S3.Prefix, s.cfg.App.InstanceID)

	slog.DebugContext(ctx, "Uploading file to S3", "file", localPath, "bucket", s.cfg.S3.Bucket, "key_prefix", prefix)
	key, err := s.s3.UploadFile(ctx, s.cfg.S3.Bucket, prefix, localPath)
	if err != nil {
		return "", err
	}
	return key, nil
}

// NewS3Storage creates a new S3 uploader with the provided configuration.
func NewS3Storage(cfg *config.Config) *S3 {
	return &S3{
		cfg: cfg,
	}
}
