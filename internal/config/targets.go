package config

import "fmt"

// DefaultYandexAPIURL is the Yandex Disk REST API root.
const DefaultYandexAPIURL = "https://cloud-api.yandex.net/v1/disk"

// TargetKind identifies a remote backend variant.
type TargetKind string

const (
	// TargetGoogleDrive uploads to a Google Drive folder with a service account.
	TargetGoogleDrive TargetKind = "google-drive"

	// TargetYandexDisk uploads to Yandex Disk through its two-phase upload API.
	TargetYandexDisk TargetKind = "yandex-disk"

	// TargetS3 uploads to an S3-compatible bucket.
	TargetS3 TargetKind = "s3"
)

// Target is one enabled upload destination carrying its own typed credentials.
type Target interface {
	Kind() TargetKind
	Validate() error
}

// GoogleDriveConfig holds the Drive backend parameters.
type GoogleDriveConfig struct {
	Enabled         bool
	FolderID        string
	CredentialsPath string
}

// Kind implements Target.
func (GoogleDriveConfig) Kind() TargetKind { return TargetGoogleDrive }

// Validate implements Target.
func (g GoogleDriveConfig) Validate() error {
	if g.FolderID == "" {
		return fmt.Errorf("%w: GOOGLE_DRIVE_FOLDER_ID", ErrMissingValue)
	}
	if g.CredentialsPath == "" {
		return fmt.Errorf("%w: GOOGLE_CREDENTIALS_PATH", ErrMissingValue)
	}
	return nil
}

// YandexDiskConfig holds the Disk backend parameters.
type YandexDiskConfig struct {
	Enabled bool
	Token   string
	Path    string
	APIURL  string
}

// Kind implements Target.
func (YandexDiskConfig) Kind() TargetKind { return TargetYandexDisk }

// Validate implements Target.
func (y YandexDiskConfig) Validate() error {
	if y.Token == "" {
		return fmt.Errorf("%w: YANDEX_TOKEN", ErrMissingValue)
	}
	if y.APIURL == "" {
		return fmt.Errorf("%w: YANDEX_API_URL", ErrMissingValue)
	}
	return nil
}

// S3Config holds the S3 backend parameters.
type S3Config struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

// Kind implements Target.
func (S3Config) Kind() TargetKind { return TargetS3 }

// Validate implements Target.
func (s S3Config) Validate() error {
	if s.Bucket == "" {
		return fmt.Errorf("%w: S3_BUCKET", ErrMissingValue)
	}
	if s.Region == "" && s.Endpoint == "" {
		return fmt.Errorf("%w: S3_REGION or S3_ENDPOINT", ErrMissingValue)
	}
	return nil
}

// Targets returns the enabled upload destinations in a fixed order.
func (c *Config) Targets() []Target {
	var targets []Target
	if c.GoogleDrive.Enabled {
		targets = append(targets, c.GoogleDrive)
	}
	if c.YandexDisk.Enabled {
		targets = append(targets, c.YandexDisk)
	}
	if c.S3.Enabled {
		targets = append(targets, c.S3)
	}
	return targets
}
