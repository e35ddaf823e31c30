package kiosk

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/saturnino-fabrica-de-software/facecap/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facecap/internal/camera"
	"github.com/saturnino-fabrica-de-software/facecap/internal/session"
)

// Router serves the kiosk session endpoints.
type Router struct {
	app     *fiber.App
	logger  *slog.Logger
	session CaptureSession
}

func NewRouter(logger *slog.Logger, sess CaptureSession) *Router {
	app := fiber.New(fiber.Config{
		AppName:      "Face Capture Kiosk",
		ErrorHandler: errorHandler(logger),
	})
	return &Router{
		app:     app,
		logger:  logger,
		session: sess,
	}
}

// Setup registers middleware and routes.
func (r *Router) Setup() {
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
	}))

	h := NewSessionHandler(r.session)

	r.app.Get("/session", h.GetState)
	r.app.Get("/session/frame", h.GetFrame)
	r.app.Post("/session/acquire", h.Acquire)
	r.app.Post("/session/capture", h.Capture)
	r.app.Post("/session/retake", h.Retake)
	r.app.Post("/session/analyze", h.Analyze)
	r.app.Post("/session/faces/:index/toggle", h.ToggleFace)
	r.app.Post("/session/notification/dismiss", h.DismissNotification)
}

// App returns the underlying fiber application.
func (r *Router) App() *fiber.App {
	return r.app
}

// Listen starts the HTTP server.
func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown gracefully stops the HTTP server.
func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}

// errorHandler maps session lifecycle errors onto HTTP statuses with the
// same flat {"error": "..."} payload the detection API uses.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiberErr.Message,
			})
		}

		status := statusForSessionError(err)
		if status == fiber.StatusInternalServerError {
			logger.Error("unhandled kiosk error",
				slog.Any("error", err),
				slog.String("path", c.Path()),
			)
			return c.Status(status).JSON(fiber.Map{
				"error": "An unexpected error occurred",
			})
		}

		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

func statusForSessionError(err error) int {
	switch {
	case errors.Is(err, session.ErrPermissionRequired),
		errors.Is(err, camera.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, camera.ErrDeviceUnavailable),
		errors.Is(err, camera.ErrEmptyFrame):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, session.ErrPermissionResolved),
		errors.Is(err, session.ErrAlreadyCaptured),
		errors.Is(err, session.ErrNotCaptured),
		errors.Is(err, session.ErrAnalysisInFlight),
		errors.Is(err, session.ErrNoResults):
		return fiber.StatusConflict
	case errors.Is(err, session.ErrFaceIndexOutOfRange):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
