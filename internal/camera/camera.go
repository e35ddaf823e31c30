package camera

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied means the camera refused access. Terminal for the
	// session; remediation happens outside the application.
	ErrPermissionDenied = errors.New("camera permission denied")

	// ErrDeviceUnavailable means the camera was granted but could not deliver
	// a frame (unreachable, unplugged, busy).
	ErrDeviceUnavailable = errors.New("camera device unavailable")

	// ErrEmptyFrame means the camera answered with no image data.
	ErrEmptyFrame = errors.New("camera returned an empty frame")
)

// Constraints are resolution and frame-rate hints passed to the device.
// Devices may deliver a different mode; these are preferences, not demands.
type Constraints struct {
	Width     int
	Height    int
	FrameRate int
}

// DefaultConstraints returns the capture hints used when none are configured.
func DefaultConstraints() Constraints {
	return Constraints{
		Width:     1280,
		Height:    720,
		FrameRate: 60,
	}
}

// Camera is the platform capture boundary: a probe that verifies access
// without keeping the device open, and a grab that extracts the current
// frame as an encoded still image.
type Camera interface {
	// Probe checks that the camera is accessible and releases it
	// immediately. Returns ErrPermissionDenied or ErrDeviceUnavailable.
	Probe(ctx context.Context) error

	// Grab returns the current frame as encoded still-image bytes.
	Grab(ctx context.Context) ([]byte, error)
}
