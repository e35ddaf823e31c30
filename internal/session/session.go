package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/saturnino-fabrica-de-software/facecap/internal/camera"
	"github.com/saturnino-fabrica-de-software/facecap/internal/detect"
	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
)

// Permission is the outcome of the one-time camera permission probe.
type Permission string

const (
	PermissionUnknown Permission = "unknown"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Phase is the capture lifecycle state.
type Phase string

const (
	// PhaseLive means the camera preview is streaming and no frame is held.
	PhaseLive Phase = "live"
	// PhaseCaptured means a frozen frame is held for review or analysis.
	PhaseCaptured Phase = "captured"
)

// NoFaceExpanded is the ExpandedFace value when no detail panel is open.
const NoFaceExpanded = -1

const fallbackAnalyzeMessage = "Failed to process face attributes"

// Detector sends a captured frame for face analysis.
type Detector interface {
	Detect(ctx context.Context, image []byte) (*detect.Response, error)
}

// Session drives a single capture-analyze-review interaction: probe the
// camera once, hold at most one captured frame, keep at most one analysis
// request in flight, and expose the latest results for review. All methods
// are safe for concurrent use.
type Session struct {
	mu            sync.Mutex
	logger        *slog.Logger
	camera        camera.Camera
	detector      Detector
	notifications *NotificationCenter

	permission       Permission
	permissionReason string

	captured bool
	image    []byte

	// generation identifies the currently held frame. Every capture and
	// retake bumps it, so an analysis response carrying an older value is
	// discarded instead of being applied to a frame it never saw.
	generation uint64

	analyzing     bool
	cancelAnalyze context.CancelFunc

	analyzed  bool
	faces     []domain.FaceRecord
	imageInfo domain.ImageInfo
	expanded  int
}

// New creates an idle session. The permission probe has not run and no
// frame is held.
func New(logger *slog.Logger, cam camera.Camera, det Detector, notifications *NotificationCenter) *Session {
	if notifications == nil {
		notifications = NewNotificationCenter(DefaultNotificationTTL)
	}
	return &Session{
		logger:        logger,
		camera:        cam,
		detector:      det,
		notifications: notifications,
		permission:    PermissionUnknown,
		expanded:      NoFaceExpanded,
	}
}

// Acquire runs the one-time camera permission probe. The first call decides
// the session's permission for good: a denial is terminal and subsequent
// calls return ErrPermissionResolved without probing again.
func (s *Session) Acquire(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.permission != PermissionUnknown {
		return ErrPermissionResolved
	}

	if err := s.camera.Probe(ctx); err != nil {
		s.permission = PermissionDenied
		s.permissionReason = err.Error()
		s.logger.Warn("camera permission denied", "error", err)
		s.notifications.Post(domain.NotificationError, "Unable to access the camera")
		return fmt.Errorf("acquiring camera: %w", err)
	}

	s.permission = PermissionGranted
	s.logger.Info("camera acquired")
	return nil
}

// Capture grabs the current preview frame and freezes it for review.
// A device failure leaves the session live and posts an error notification.
func (s *Session) Capture(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.permission != PermissionGranted {
		return ErrPermissionRequired
	}
	if s.captured {
		return ErrAlreadyCaptured
	}

	frame, err := s.camera.Grab(ctx)
	if err != nil {
		s.logger.Error("frame grab failed", "error", err)
		s.notifications.Post(domain.NotificationError, "Failed to capture a frame from the camera")
		return fmt.Errorf("capturing frame: %w", err)
	}

	s.generation++
	s.captured = true
	s.image = frame
	s.resetResultsLocked()
	s.notifications.Dismiss()
	s.logger.Info("frame captured", "bytes", len(frame))
	return nil
}

// Retake discards the held frame and returns to the live preview. Any
// in-flight analysis is cancelled, and a response that still arrives for
// the discarded frame is dropped.
func (s *Session) Retake() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.captured {
		return ErrNotCaptured
	}

	s.generation++
	if s.cancelAnalyze != nil {
		s.cancelAnalyze()
		s.cancelAnalyze = nil
	}
	s.analyzing = false
	s.captured = false
	s.image = nil
	s.resetResultsLocked()
	s.notifications.Dismiss()
	s.logger.Info("frame discarded")
	return nil
}

// Analyze submits the held frame for face analysis. At most one request is
// in flight per session; the call returns as soon as the request is
// dispatched and the outcome lands asynchronously as results plus a
// notification.
func (s *Session) Analyze(ctx context.Context) error {
	s.mu.Lock()

	if !s.captured {
		s.mu.Unlock()
		return ErrNotCaptured
	}
	if s.analyzing {
		s.mu.Unlock()
		return ErrAnalysisInFlight
	}

	gen := s.generation
	image := s.image
	s.analyzing = true
	// Prior results stay on screen while the new request runs. A failed
	// re-analysis leaves them untouched; only a fresh capture or retake
	// clears them.
	s.notifications.Dismiss()

	// The request outlives the caller, so it gets its own context. Retake
	// cancels it through cancelAnalyze.
	reqCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelAnalyze = cancel
	s.mu.Unlock()

	go func() {
		defer cancel()
		resp, err := s.detector.Detect(reqCtx, image)
		s.finishAnalysis(gen, resp, err)
	}()

	return nil
}

// finishAnalysis applies an analysis outcome if the frame it was requested
// for is still the one on screen.
func (s *Session) finishAnalysis(gen uint64, resp *detect.Response, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("stale analysis response discarded", "generation", gen)
		return
	}

	s.analyzing = false
	s.cancelAnalyze = nil

	if err != nil {
		s.logger.Error("analysis failed", "error", err)
		s.notifications.Post(domain.NotificationError, displayError(err))
		return
	}

	s.analyzed = true
	s.faces = resp.Faces
	s.imageInfo = resp.ImageInfo
	s.expanded = NoFaceExpanded

	if len(resp.Faces) == 0 {
		s.notifications.Post(domain.NotificationWarning, "No faces detected in the image")
		return
	}
	s.notifications.Post(domain.NotificationSuccess, fmt.Sprintf("Detected %d face(s)", len(resp.Faces)))
}

// ToggleDetail expands the detail panel for face i, collapsing whichever
// panel was open. Toggling the already expanded face collapses it.
func (s *Session) ToggleDetail(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.analyzed {
		return ErrNoResults
	}
	if i < 0 || i >= len(s.faces) {
		return ErrFaceIndexOutOfRange
	}

	if s.expanded == i {
		s.expanded = NoFaceExpanded
	} else {
		s.expanded = i
	}
	return nil
}

// DismissNotification clears the active notification, if any.
func (s *Session) DismissNotification() {
	s.notifications.Dismiss()
}

// Snapshot is a point-in-time view of the session for rendering.
type Snapshot struct {
	Permission   Permission           `json:"permission"`
	Phase        Phase                `json:"phase"`
	Analyzing    bool                 `json:"analyzing"`
	Analyzed     bool                 `json:"analyzed"`
	Faces        []domain.FaceRecord  `json:"faces"`
	ImageInfo    domain.ImageInfo     `json:"imageInfo"`
	ExpandedFace int                  `json:"expandedFace"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

// State returns the current session snapshot.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	phase := PhaseLive
	if s.captured {
		phase = PhaseCaptured
	}

	faces := make([]domain.FaceRecord, len(s.faces))
	copy(faces, s.faces)

	return Snapshot{
		Permission:   s.permission,
		Phase:        phase,
		Analyzing:    s.analyzing,
		Analyzed:     s.analyzed,
		Faces:        faces,
		ImageInfo:    s.imageInfo,
		ExpandedFace: s.expanded,
		Notification: s.notifications.Current(),
	}
}

// CapturedImage returns a copy of the held frame, or nil when live.
func (s *Session) CapturedImage() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.captured {
		return nil
	}
	img := make([]byte, len(s.image))
	copy(img, s.image)
	return img
}

func (s *Session) resetResultsLocked() {
	s.analyzed = false
	s.faces = nil
	s.imageInfo = domain.ImageInfo{}
	s.expanded = NoFaceExpanded
}

// displayError picks the user-facing message for a failed analysis: the
// server's own message when it sent one, then the transport diagnostic,
// then a generic fallback when neither carries text.
func displayError(err error) string {
	var svcErr *detect.ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.Message != "" {
			return svcErr.Message
		}
		return fallbackAnalyzeMessage
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallbackAnalyzeMessage
}
