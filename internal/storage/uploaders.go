package storage

import (
	"fmt"

	"github.com/hibare/dbkeeper/internal/config"
	"github.com/hibare/dbkeeper/internal/storage/gdrive"
	"github.com/hibare/dbkeeper/internal/storage/s3"
	"github.com/hibare/dbkeeper/internal/storage/yadisk"
)

// Target pairs an uploader with the kind of destination it serves.
type Target struct {
	Kind     config.TargetKind
	Uploader UploaderIface
}

// NewTargets builds one uploader per enabled target in cfg.
func NewTargets(cfg *config.Config) ([]Target, error) {
	var targets []Target
	for _, t := range cfg.Targets() {
		var u UploaderIface
		switch tc := t.(type) {
		case config.GoogleDriveConfig:
			u = gdrive.NewGoogleDrive(tc)
		case config.YandexDiskConfig:
			u = yadisk.NewYandexDisk(tc, cfg.Backup.UploadTimeout)
		case config.S3Config:
			u = s3.NewS3Storage(cfg)
		default:
			return nil, fmt.Errorf("unsupported upload target %q", t.Kind())
		}
		targets = append(targets, Target{Kind: t.Kind(), Uploader: u})
	}
	return targets, nil
}
