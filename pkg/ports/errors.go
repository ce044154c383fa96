package ports

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceUnavailable is returned when no usable render surface exists.
	ErrResourceUnavailable = errors.New("render surface unavailable")

	// ErrFileNotFound is returned when a media path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileUnreadable is returned when a media file exists but cannot be loaded.
	ErrFileUnreadable = errors.New("file unreadable")

	// ErrBackendCallFailed is returned when a backend call reports failure.
	ErrBackendCallFailed = errors.New("backend call failed")

	// ErrStaleSeek is returned when a seek finished after a newer one was requested.
	ErrStaleSeek = errors.New("seek superseded")

	// ErrBackendInit is returned when the backend cannot be initialized.
	ErrBackendInit = errors.New("backend initialization failed")

	// ErrExportInProgress is returned when an export is already running.
	ErrExportInProgress = errors.New("export already in progress")

	// ErrNoExport is returned when there is no export to act on.
	ErrNoExport = errors.New("no export running")

	// ErrUnknownAdjustment is returned for an adjustment name that does not exist.
	ErrUnknownAdjustment = errors.New("unknown adjustment")

	// ErrUnsupportedFormat is returned for a media or export format that is not handled.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// BackendError describes a failed backend call.
type BackendError struct {
	Op   string
	Path string
	Err  error
}

func (e *BackendError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the cause and ErrBackendCallFailed to errors.Is.
func (e *BackendError) Unwrap() []error {
	return []error{ErrBackendCallFailed, e.Err}
}
