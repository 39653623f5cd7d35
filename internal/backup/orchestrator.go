package backup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibare/dbkeeper/internal/config"
	"github.com/hibare/dbkeeper/internal/notifiers"
	"github.com/hibare/dbkeeper/internal/retention"
	"github.com/hibare/dbkeeper/internal/snapshot"
	"github.com/hibare/dbkeeper/internal/storage"
	"golang.org/x/sync/errgroup"
)

// Report describes what one run did.
type Report struct {
	States   []State
	Snapshot *snapshot.Snapshot
	Uploads  []storage.Result
	Prune    *retention.Report
	PruneErr error
}

// State returns the state the run ended in.
func (r *Report) State() State {
	if len(r.States) == 0 {
		return StateIdle
	}
	return r.States[len(r.States)-1]
}

// FailedUploads returns the results of targets that did not receive the snapshot.
func (r *Report) FailedUploads() []storage.Result {
	var failed []storage.Result
	for _, u := range r.Uploads {
		if !u.OK() {
			failed = append(failed, u)
		}
	}
	return failed
}

// Orchestrator sequences snapshot, uploads and pruning for one run.
type Orchestrator struct {
	taker       snapshot.TakerIface
	targets     []storage.Target
	pruner      retention.PrunerIface
	notify      notifiers.NotifierStoreIface
	lock        *RunLock
	timeout     time.Duration
	concurrency int
}

func (o *Orchestrator) transition(ctx context.Context, report *Report, next State) {
	slog.DebugContext(ctx, "Backup state changed", "from", report.State().String(), "to", next.String())
	report.States = append(report.States, next)
}

// Run executes one orchestration run. It returns an error only when the run was
// aborted; upload and deletion failures are recorded in the report and logged.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	// Once started, a run always reaches Done or Aborted.
	ctx = context.WithoutCancel(ctx)

	report := &Report{States: []State{StateIdle}}
	o.transition(ctx, report, StateSnapshotting)

	if o.lock != nil {
		release, err := o.lock.Acquire()
		if err != nil {
			return o.abort(ctx, report, err)
		}
		defer func() {
			if rErr := release(); rErr != nil {
				slog.ErrorContext(ctx, "Failed to release run lock", "error", rErr)
			}
		}()
	}

	snap, err := o.taker.Take(ctx)
	if err != nil {
		return o.abort(ctx, report, err)
	}
	report.Snapshot = snap

	o.transition(ctx, report, StateUploading)
	report.Uploads = o.upload(ctx, snap.Path)

	o.transition(ctx, report, StatePruning)
	report.Prune, report.PruneErr = o.pruner.Prune(ctx)
	if report.PruneErr != nil {
		slog.ErrorContext(ctx, "Error pruning old snapshots", "error", report.PruneErr)
	}

	o.transition(ctx, report, StateDone)
	slog.InfoContext(ctx, "Backup completed",
		"snapshot", snap.Name,
		"targets", len(report.Uploads),
		"failed_uploads", len(report.FailedUploads()),
	)
	o.notifyDone(ctx, report)

	return report, nil
}

func (o *Orchestrator) abort(ctx context.Context, report *Report, err error) (*Report, error) {
	o.transition(ctx, report, StateAborted)
	slog.ErrorContext(ctx, "Backup aborted", "error", err)
	if o.notify != nil {
		if nErr := o.notify.NotifyBackupFailure(ctx, err); nErr != nil && !errors.Is(nErr, notifiers.ErrNotifiersDisabled) {
			slog.ErrorContext(ctx, "Failed to send NotifyBackupFailure", "error", nErr)
		}
	}
	return report, err
}

// upload sends the snapshot to every target concurrently and waits for all of them.
// Results are returned in target order.
func (o *Orchestrator) upload(ctx context.Context, localPath string) []storage.Result {
	results := make([]storage.Result, len(o.targets))
	if len(o.targets) == 0 {
		slog.InfoContext(ctx, "No upload targets enabled")
		return results
	}

	var g errgroup.Group
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}

	for i, target := range o.targets {
		g.Go(func() error {
			results[i] = o.uploadOne(ctx, target, localPath)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (o *Orchestrator) uploadOne(ctx context.Context, target storage.Target, localPath string) storage.Result {
	name := target.Uploader.Name()
	result := storage.Result{Target: name, Kind: target.Kind}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	remoteID, err := func() (string, error) {
		if err := target.Uploader.Init(ctx); err != nil {
			return "", err
		}
		slog.InfoContext(ctx, "Uploading snapshot", "file", localPath, "target", name)
		return target.Uploader.Upload(ctx, localPath)
	}()
	result.Duration = time.Since(start)

	if err != nil {
		result.Err = &storage.UploadError{Target: name, Cause: err}
		slog.ErrorContext(ctx, "Snapshot upload failed", "target", name, "file", localPath, "duration", result.Duration, "error", err)
		return result
	}

	result.RemoteID = remoteID
	slog.InfoContext(ctx, "Snapshot uploaded", "target", name, "location", remoteID, "duration", result.Duration)
	return result
}

func (o *Orchestrator) notifyDone(ctx context.Context, report *Report) {
	if o.notify == nil {
		return
	}

	if nErr := o.notify.NotifyBackupSuccess(ctx, report.Snapshot.Name, report.Uploads); nErr != nil && !errors.Is(nErr, notifiers.ErrNotifiersDisabled) {
		slog.ErrorContext(ctx, "Failed to send NotifyBackupSuccess", "error", nErr)
	}

	var pruneErrs []error
	if report.PruneErr != nil {
		pruneErrs = append(pruneErrs, report.PruneErr)
	}
	if report.Prune != nil {
		for _, dErr := range report.Prune.Failed {
			pruneErrs = append(pruneErrs, dErr)
		}
	}
	if len(pruneErrs) == 0 {
		return
	}
	if nErr := o.notify.NotifyBackupDeleteFailure(ctx, errors.Join(pruneErrs...)); nErr != nil && !errors.Is(nErr, notifiers.ErrNotifiersDisabled) {
		slog.ErrorContext(ctx, "Failed to send NotifyBackupDeleteFailure", "error", nErr)
	}
}

// NewOrchestrator wires the run stages. notify may be nil.
func NewOrchestrator(
	cfg *config.Config,
	taker snapshot.TakerIface,
	targets []storage.Target,
	pruner retention.PrunerIface,
	notify notifiers.NotifierStoreIface,
) *Orchestrator {
	return &Orchestrator{
		taker:       taker,
		targets:     targets,
		pruner:      pruner,
		notify:      notify,
		lock:        NewRunLock(cfg.LockPath(), cfg.Backup.LockStaleAfter),
		timeout:     cfg.Backup.UploadTimeout,
		concurrency: cfg.Backup.UploadConcurrency,
	}
}
