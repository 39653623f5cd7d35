// Package storage defines the interface for remote upload backends.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/hibare/dbkeeper/internal/config"
)

// UploaderIface defines a remote backend that receives one snapshot per run.
// revive:disable-next-line exported
type UploaderIface interface {
	// Init prepares the backend (e.g., loads credentials, establishes session)
	Init(context.Context) error

	// Upload uploads a local file and returns the remote identifier
	Upload(context.Context, string) (string, error)

	// Name returns the name of the backend (e.g., "google-drive", "s3 (bucket)")
	Name() string
}

// UploadError is the outcome of a failed upload to one target.
type UploadError struct {
	Target string
	Cause  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload to %s failed: %v", e.Target, e.Cause)
}

func (e *UploadError) Unwrap() error { return e.Cause }

// Result is the outcome of one upload attempt. Exactly one of RemoteID and Err is set.
type Result struct {
	Target   string
	Kind     config.TargetKind
	RemoteID string
	Err      *UploadError
	Duration time.Duration
}

// OK reports whether the upload succeeded.
func (r Result) OK() bool { return r.Err == nil }
