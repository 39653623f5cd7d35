// Package retention keeps the local snapshot directory within its configured size.
package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/hibare/dbkeeper/internal/config"
	"github.com/hibare/dbkeeper/internal/snapshot"
)

// DeleteError records a snapshot that could not be removed.
type DeleteError struct {
	File  string
	Cause error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("error deleting snapshot %s: %v", e.File, e.Cause)
}

func (e *DeleteError) Unwrap() error { return e.Cause }

// Report summarises one pruning pass.
type Report struct {
	Kept    []snapshot.Snapshot
	Deleted []snapshot.Snapshot
	Failed  []*DeleteError
}

// PrunerIface defines the interface for retention operations.
// revive:disable-next-line exported
type PrunerIface interface {
	List(ctx context.Context) ([]snapshot.Snapshot, error)
	Prune(ctx context.Context) (*Report, error)
}

// Pruner deletes the oldest snapshots beyond the configured count.
type Pruner struct {
	dir    string
	ext    string
	keep   int
	remove func(string) error
}

// List returns the retention set ordered oldest first by modification time.
// Entries with equal times keep the order of the directory listing.
func (p *Pruner) List(ctx context.Context) ([]snapshot.Snapshot, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("error reading backup directory %s: %w", p.dir, err)
	}

	snaps := make([]snapshot.Snapshot, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !snapshot.IsSnapshotName(entry.Name(), p.ext) {
			continue
		}
		info, iErr := entry.Info()
		if iErr != nil {
			if errors.Is(iErr, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("error reading snapshot %s: %w", entry.Name(), iErr)
		}
		snaps = append(snaps, snapshot.FromFileInfo(filepath.Join(p.dir, entry.Name()), info))
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].ModTime.Before(snaps[j].ModTime)
	})

	slog.DebugContext(ctx, "Found snapshots", "count", len(snaps), "dir", p.dir)
	return snaps, nil
}

// Prune deletes the oldest snapshots so that at most the configured count remain.
// A failed deletion is logged and recorded; the remaining candidates are still attempted.
func (p *Pruner) Prune(ctx context.Context) (*Report, error) {
	snaps, err := p.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	if len(snaps) <= p.keep {
		slog.InfoContext(ctx, "No snapshots to delete", "count", len(snaps), "retention", p.keep)
		report.Kept = snaps
		return report, nil
	}

	cut := len(snaps) - p.keep
	report.Kept = snaps[cut:]
	slog.InfoContext(ctx, "Found snapshots to delete", "count", cut, "retention", p.keep)

	for _, snap := range snaps[:cut] {
		if rErr := p.remove(snap.Path); rErr != nil {
			dErr := &DeleteError{File: snap.Name, Cause: rErr}
			slog.ErrorContext(ctx, "Error deleting snapshot", "file", snap.Name, "error", rErr)
			report.Failed = append(report.Failed, dErr)
			continue
		}
		slog.InfoContext(ctx, "Deleted old snapshot", "file", snap.Name)
		report.Deleted = append(report.Deleted, snap)
	}

	return report, nil
}

// NewPruner creates a new Pruner for the backup directory in cfg.
func NewPruner(cfg *config.Config) *Pruner {
	return &Pruner{
		dir:    cfg.Backup.Dir,
		ext:    cfg.Backup.Extension,
		keep:   cfg.Backup.RetentionCount,
		remove: os.Remove,
	}
}
