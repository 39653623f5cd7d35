// Package config loads the application configuration from a dotenv file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hibare/dbkeeper/internal/constants"
	"github.com/spf13/viper"
)

var (
	// ErrMissingValue is returned when an enabled feature lacks a required key.
	ErrMissingValue = errors.New("missing required configuration value")

	// ErrInvalidValue is returned when a key holds an unusable value.
	ErrInvalidValue = errors.New("invalid configuration value")
)

// AppConfig holds process wide settings.
type AppConfig struct {
	InstanceID string
	EnvFile    string
}

// SourceConfig describes the database file being snapshotted.
type SourceConfig struct {
	Path string
}

// BackupConfig controls snapshot naming, retention and upload behaviour.
type BackupConfig struct {
	Dir               string
	Extension         string
	RetentionCount    int
	UploadTimeout     time.Duration
	UploadConcurrency int
	LockStaleAfter    time.Duration
	Schedule          string
}

// LoggerConfig controls the two log files.
type LoggerConfig struct {
	Dir       string
	Level     string
	MaxSizeMB int
}

// NotifiersConfig holds notification settings.
type NotifiersConfig struct {
	Enabled bool
	Discord DiscordNotifierConfig
}

// DiscordNotifierConfig holds Discord webhook settings.
type DiscordNotifierConfig struct {
	Enabled bool
	Webhook string
}

// Config is constructed once at start-up and passed by pointer to every component.
type Config struct {
	App         AppConfig
	Source      SourceConfig
	Backup      BackupConfig
	Logger      LoggerConfig
	GoogleDrive GoogleDriveConfig
	YandexDisk  YandexDiskConfig
	S3          S3Config
	Notifiers   NotifiersConfig
}

func setDefaults(v *viper.Viper) {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = constants.ProgramIdentifier
	}

	v.SetDefault("instance_id", hostname)
	v.SetDefault("db_path", "data.db")
	v.SetDefault("backup_dir", "backups")
	v.SetDefault("backup_extension", "db")
	v.SetDefault("backup_retention_count", constants.DefaultRetentionCount)
	v.SetDefault("upload_timeout", 10*time.Minute)
	v.SetDefault("upload_concurrency", 0)
	v.SetDefault("lock_stale_after", 6*time.Hour)
	v.SetDefault("schedule_cron", constants.DefaultSchedule)
	v.SetDefault("log_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_max_size_mb", 50)
	v.SetDefault("google_drive_enabled", false)
	v.SetDefault("google_drive_folder_id", "")
	v.SetDefault("google_credentials_path", "")
	v.SetDefault("yandex_disk_enabled", false)
	v.SetDefault("yandex_token", "")
	v.SetDefault("yandex_disk_path", "/backups")
	v.SetDefault("yandex_api_url", DefaultYandexAPIURL)
	v.SetDefault("s3_enabled", false)
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_region", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_prefix", "")
	v.SetDefault("notifiers_enabled", false)
	v.SetDefault("discord_enabled", false)
	v.SetDefault("discord_webhook", "")
}

// Load reads envFile (if present) and overlays the process environment on top of it.
// A missing envFile is not an error; every key then comes from the environment or its default.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file %s: %w", envFile, err)
		}
	}

	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			InstanceID: v.GetString("instance_id"),
			EnvFile:    envFile,
		},
		Source: SourceConfig{
			Path: v.GetString("db_path"),
		},
		Backup: BackupConfig{
			Dir:               v.GetString("backup_dir"),
			Extension:         v.GetString("backup_extension"),
			RetentionCount:    v.GetInt("backup_retention_count"),
			UploadTimeout:     v.GetDuration("upload_timeout"),
			UploadConcurrency: v.GetInt("upload_concurrency"),
			LockStaleAfter:    v.GetDuration("lock_stale_after"),
			Schedule:          v.GetString("schedule_cron"),
		},
		Logger: LoggerConfig{
			Dir:       v.GetString("log_dir"),
			Level:     v.GetString("log_level"),
			MaxSizeMB: v.GetInt("log_max_size_mb"),
		},
		GoogleDrive: GoogleDriveConfig{
			Enabled:         v.GetBool("google_drive_enabled"),
			FolderID:        v.GetString("google_drive_folder_id"),
			CredentialsPath: v.GetString("google_credentials_path"),
		},
		YandexDisk: YandexDiskConfig{
			Enabled: v.GetBool("yandex_disk_enabled"),
			Token:   v.GetString("yandex_token"),
			Path:    v.GetString("yandex_disk_path"),
			APIURL:  v.GetString("yandex_api_url"),
		},
		S3: S3Config{
			Enabled:   v.GetBool("s3_enabled"),
			Endpoint:  v.GetString("s3_endpoint"),
			Region:    v.GetString("s3_region"),
			AccessKey: v.GetString("s3_access_key"),
			SecretKey: v.GetString("s3_secret_key"),
			Bucket:    v.GetString("s3_bucket"),
			Prefix:    v.GetString("s3_prefix"),
		},
		Notifiers: NotifiersConfig{
			Enabled: v.GetBool("notifiers_enabled"),
			Discord: DiscordNotifierConfig{
				Enabled: v.GetBool("discord_enabled"),
				Webhook: v.GetString("discord_webhook"),
			},
		},
	}

	if cfg.Logger.Dir == "" {
		cfg.Logger.Dir = cfg.Backup.Dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	if c.Source.Path == "" {
		return fmt.Errorf("%w: DB_PATH", ErrMissingValue)
	}
	if c.Backup.Dir == "" {
		return fmt.Errorf("%w: BACKUP_DIR", ErrMissingValue)
	}
	if c.Backup.Extension == "" {
		return fmt.Errorf("%w: BACKUP_EXTENSION", ErrMissingValue)
	}
	if c.Backup.RetentionCount < 0 {
		return fmt.Errorf("%w: BACKUP_RETENTION_COUNT must not be negative, got %d", ErrInvalidValue, c.Backup.RetentionCount)
	}
	if c.Backup.UploadTimeout <= 0 {
		return fmt.Errorf("%w: UPLOAD_TIMEOUT must be positive, got %s", ErrInvalidValue, c.Backup.UploadTimeout)
	}
	if c.Backup.UploadConcurrency < 0 {
		return fmt.Errorf("%w: UPLOAD_CONCURRENCY must not be negative, got %d", ErrInvalidValue, c.Backup.UploadConcurrency)
	}

	for _, t := range c.Targets() {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%s: %w", t.Kind(), err)
		}
	}

	if c.Notifiers.Enabled && c.Notifiers.Discord.Enabled && c.Notifiers.Discord.Webhook == "" {
		return fmt.Errorf("%w: DISCORD_WEBHOOK", ErrMissingValue)
	}

	return nil
}

// LockPath returns the path of the advisory run lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.Backup.Dir, constants.LockFileName)
}
