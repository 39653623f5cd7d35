// Package constants holds application wide constants.
package constants

const (
	// ProgramIdentifier is the name used in logs, notifications and generated files.
	ProgramIdentifier = "dbkeeper"

	// SnapshotPrefix is the file name prefix of every snapshot in the backup directory.
	SnapshotPrefix = "backup-"

	// SnapshotContentType is the media type sent to remote backends.
	SnapshotContentType = "application/x-sqlite3"

	// LockFileName is the advisory run lock created inside the backup directory.
	LockFileName = ".dbkeeper.lock"

	// ErrorLogFile receives error level records only.
	ErrorLogFile = "errors.log"

	// OutputLogFile receives every record at or above the configured level.
	OutputLogFile = "output.log"

	// DefaultEnvFile is the configuration file read by every command.
	DefaultEnvFile = ".env"

	// ProcessFileName is the process manager descriptor written by init.
	ProcessFileName = "process.yml"

	// DefaultRetentionCount is the number of local snapshots kept.
	DefaultRetentionCount = 24

	// DefaultSchedule runs a backup every six hours.
	DefaultSchedule = "0 */6 * * *"
)

// Version is set at build time.
var Version = "dev"
