package kiosk

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facecap/internal/session"
)

// CaptureSession is the session surface the kiosk endpoints drive.
type CaptureSession interface {
	Acquire(ctx context.Context) error
	Capture(ctx context.Context) error
	Retake() error
	Analyze(ctx context.Context) error
	ToggleDetail(i int) error
	DismissNotification()
	State() session.Snapshot
	CapturedImage() []byte
}

// SessionHandler exposes a single capture session over HTTP for the
// kiosk front end.
type SessionHandler struct {
	session CaptureSession
}

func NewSessionHandler(sess CaptureSession) *SessionHandler {
	return &SessionHandler{session: sess}
}

// GetState GET /session - current session snapshot
func (h *SessionHandler) GetState(c *fiber.Ctx) error {
	return c.JSON(h.session.State())
}

// Acquire POST /session/acquire - run the one-time camera permission probe
func (h *SessionHandler) Acquire(c *fiber.Ctx) error {
	if err := h.session.Acquire(c.Context()); err != nil {
		return err
	}
	return c.JSON(h.session.State())
}

// Capture POST /session/capture - freeze the current preview frame
func (h *SessionHandler) Capture(c *fiber.Ctx) error {
	if err := h.session.Capture(c.Context()); err != nil {
		return err
	}
	return c.JSON(h.session.State())
}

// Retake POST /session/retake - discard the held frame and go live again
func (h *SessionHandler) Retake(c *fiber.Ctx) error {
	if err := h.session.Retake(); err != nil {
		return err
	}
	return c.JSON(h.session.State())
}

// Analyze POST /session/analyze - submit the held frame for analysis.
// Returns as soon as the request is dispatched; results land in the
// snapshot once the analysis finishes.
func (h *SessionHandler) Analyze(c *fiber.Ctx) error {
	if err := h.session.Analyze(c.Context()); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(h.session.State())
}

// ToggleFace POST /session/faces/:index/toggle - expand or collapse the
// detail panel for one face
func (h *SessionHandler) ToggleFace(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "face index must be an integer")
	}
	if err := h.session.ToggleDetail(index); err != nil {
		return err
	}
	return c.JSON(h.session.State())
}

// DismissNotification POST /session/notification/dismiss - clear the
// active notification
func (h *SessionHandler) DismissNotification(c *fiber.Ctx) error {
	h.session.DismissNotification()
	return c.JSON(h.session.State())
}

// GetFrame GET /session/frame - the held frame as a JPEG
func (h *SessionHandler) GetFrame(c *fiber.Ctx) error {
	frame := h.session.CapturedImage()
	if frame == nil {
		return session.ErrNotCaptured
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(frame)
}
