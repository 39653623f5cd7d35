// Package backup coordinates one orchestration run: snapshot, upload, prune.
package backup

// State is a step of an orchestration run.
type State int

// Run states. Aborted is reachable only from Snapshotting.
const (
	StateIdle State = iota
	StateSnapshotting
	StateUploading
	StatePruning
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSnapshotting:
		return "snapshotting"
	case StateUploading:
		return "uploading"
	case StatePruning:
		return "pruning"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}
