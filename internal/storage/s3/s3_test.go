package s3

import (
	"context"
	"testing"

	"github.com/hibare/dbkeeper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3_Name(t *testing.T) {
	s := NewS3Storage(&config.Config{S3: config.S3Config{Bucket: "db-backups"}})
	assert.Equal(t, "s3 (db-backups)", s.Name())
}

func TestS3_Upload_NotInitialized(t *testing.T) {
	s := NewS3Storage(&config.Config{S3: config.S3Config{Bucket: "db-backups"}})
	_, err := s.Upload(context.Background(), "backup-1.db")
	require.ErrorIs(t, err, ErrNotInitialized)
}
