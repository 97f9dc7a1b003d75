package bundle

import "errors"

var (
	// ErrRemoteUnavailable is returned when the manifest or archive cannot
	// be fetched. Background pollers retry; the installed bundle keeps
	// serving.
	ErrRemoteUnavailable = errors.New("bundle service unreachable")

	// ErrCorruptArchive is returned when a downloaded archive cannot be
	// extracted or lacks the entry document. The archive is discarded and
	// the previously installed bundle is left untouched.
	ErrCorruptArchive = errors.New("bundle archive is corrupt")

	// ErrSyncInProgress is returned when a manual sync trigger arrives
	// while a sync is already running.
	ErrSyncInProgress = errors.New("bundle sync already in progress")
)
