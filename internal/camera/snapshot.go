package camera

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// SnapshotConfig holds the configuration for a Snapshot camera.
type SnapshotConfig struct {
	// BaseURL of the camera's still-frame endpoint, e.g. "http://cam:8080".
	// Frames are fetched from BaseURL + "/snapshot".
	BaseURL     string
	Timeout     time.Duration
	Constraints Constraints
}

// DefaultSnapshotConfig returns a SnapshotConfig with sensible defaults.
func DefaultSnapshotConfig() SnapshotConfig {
	return SnapshotConfig{
		BaseURL:     "http://localhost:8080",
		Timeout:     10 * time.Second,
		Constraints: DefaultConstraints(),
	}
}

// Snapshot is a Camera backed by an IP-camera style HTTP still-frame
// endpoint. Each Grab is one GET; the device is never held open between
// calls, so the live preview surface remains the only long-lived owner.
type Snapshot struct {
	httpClient *http.Client
	config     SnapshotConfig
}

// NewSnapshot creates a Snapshot camera.
func NewSnapshot(config SnapshotConfig) *Snapshot {
	return &Snapshot{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// Probe fetches one frame and discards it, verifying access without keeping
// any handle. A 401/403 maps to ErrPermissionDenied; everything else that
// fails maps to ErrDeviceUnavailable.
func (s *Snapshot) Probe(ctx context.Context) error {
	_, err := s.fetch(ctx)
	return err
}

// Grab returns the camera's current frame as encoded image bytes.
func (s *Snapshot) Grab(ctx context.Context) ([]byte, error) {
	return s.fetch(ctx)
}

func (s *Snapshot) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.snapshotURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read frame: %v", ErrDeviceUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: camera returned status %d", ErrPermissionDenied, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: camera returned status %d", ErrDeviceUnavailable, resp.StatusCode)
	}

	if len(body) == 0 {
		return nil, ErrEmptyFrame
	}

	return body, nil
}

// snapshotURL builds the still-frame URL with the constraint hints as query
// parameters, mirroring how capture constraints are passed to the device.
func (s *Snapshot) snapshotURL() string {
	q := url.Values{}
	if c := s.config.Constraints; c != (Constraints{}) {
		q.Set("width", strconv.Itoa(c.Width))
		q.Set("height", strconv.Itoa(c.Height))
		q.Set("fps", strconv.Itoa(c.FrameRate))
	}
	u := s.config.BaseURL + "/snapshot"
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}
