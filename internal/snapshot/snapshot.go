// Package snapshot takes point-in-time copies of the source database file.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hibare/dbkeeper/internal/config"
	"github.com/hibare/dbkeeper/internal/constants"
)

var (
	// ErrSourceUnavailable is returned when the source database cannot be opened for reading.
	ErrSourceUnavailable = errors.New("source database unavailable")

	// ErrCopyFailed is returned when the snapshot could not be written completely.
	ErrCopyFailed = errors.New("snapshot copy failed")
)

// Snapshot is one immutable copy of the source database.
// ModTime is read back from the filesystem after the copy, never derived from the name.
type Snapshot struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// FromFileInfo builds a Snapshot from a path and its stat result.
func FromFileInfo(path string, info os.FileInfo) Snapshot {
	return Snapshot{
		Path:    path,
		Name:    filepath.Base(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// FileName returns the snapshot name for the given creation time and extension.
func FileName(t time.Time, ext string) string {
	return constants.SnapshotPrefix + strconv.FormatInt(t.UnixMilli(), 10) + "." + strings.TrimPrefix(ext, ".")
}

// IsSnapshotName reports whether name follows the snapshot naming convention.
func IsSnapshotName(name, ext string) bool {
	return strings.HasPrefix(name, constants.SnapshotPrefix) &&
		strings.HasSuffix(name, "."+strings.TrimPrefix(ext, "."))
}

// TakerIface defines the interface for snapshot creation.
// revive:disable-next-line exported
type TakerIface interface {
	Take(ctx context.Context) (*Snapshot, error)
}

// Taker copies the configured source file into the backup directory.
type Taker struct {
	source    string
	backupDir string
	ext       string
	now       func() time.Time
}

// Take copies the source into a new timestamped file and returns it once the data
// has been flushed to disk. A failed copy leaves no file behind.
func (t *Taker) Take(ctx context.Context) (*Snapshot, error) {
	if err := os.MkdirAll(t.backupDir, 0750); err != nil {
		return nil, fmt.Errorf("%w: creating backup directory %s: %w", ErrCopyFailed, t.backupDir, err)
	}

	in, err := os.Open(t.source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer in.Close()

	if info, sErr := in.Stat(); sErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, sErr)
	} else if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceUnavailable, t.source)
	}

	dst := filepath.Join(t.backupDir, FileName(t.now(), t.ext))
	slog.DebugContext(ctx, "Copying database", "source", t.source, "destination", dst)

	if err := copyTo(in, dst); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCopyFailed, err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCopyFailed, err)
	}

	snap := FromFileInfo(dst, info)
	slog.InfoContext(ctx, "Snapshot created", "file", snap.Path, "size", snap.Size)
	return &snap, nil
}

// copyTo writes r into a new file at dst and syncs it before returning.
// The file is removed again if any step fails.
func copyTo(r io.Reader, dst string) (err error) {
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, r); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return err
	}
	return out.Close()
}

// NewTaker creates a new Taker for the source and backup directory in cfg.
func NewTaker(cfg *config.Config) *Taker {
	return &Taker{
		source:    cfg.Source.Path,
		backupDir: cfg.Backup.Dir,
		ext:       cfg.Backup.Extension,
		now:       time.Now,
	}
}
