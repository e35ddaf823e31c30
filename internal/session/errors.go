package session

import "errors"

var (
	// ErrPermissionRequired is returned by operations that need camera
	// access before the permission probe has succeeded.
	ErrPermissionRequired = errors.New("camera permission has not been granted")

	// ErrPermissionResolved is returned by Acquire after the one-time
	// permission probe has already run.
	ErrPermissionResolved = errors.New("camera permission already resolved")

	// ErrAlreadyCaptured is returned by Capture while a frame is held.
	ErrAlreadyCaptured = errors.New("a frame is already captured")

	// ErrNotCaptured is returned by operations that need a held frame.
	ErrNotCaptured = errors.New("no frame captured")

	// ErrAnalysisInFlight is returned by Analyze while a previous request
	// is still pending.
	ErrAnalysisInFlight = errors.New("analysis already in flight")

	// ErrNoResults is returned by ToggleDetail before results exist.
	ErrNoResults = errors.New("no analysis results available")

	// ErrFaceIndexOutOfRange is returned by ToggleDetail for an index
	// outside the current result set.
	ErrFaceIndexOutOfRange = errors.New("face index out of range")
)
