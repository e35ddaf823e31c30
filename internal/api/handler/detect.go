package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/saturnino-fabrica-de-software/facecap/internal/audit"
	"github.com/saturnino-fabrica-de-software/facecap/internal/cache"
	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
	"github.com/saturnino-fabrica-de-software/facecap/internal/imaging"
)

const (
	// maxImageSize bounds the decoded payload (10MB)
	maxImageSize = 10 * 1024 * 1024
)

// FaceAnalyzer extracts face attribute records from an image
type FaceAnalyzer interface {
	AnalyzeFaces(ctx context.Context, image []byte) ([]domain.FaceRecord, error)
}

// UsageTracker records detection traffic
type UsageTracker interface {
	TrackDetection(ctx context.Context, facesFound int, failed bool)
}

// ResultCache stores analysis results keyed by image hash
type ResultCache interface {
	Get(ctx context.Context, key string) ([]domain.FaceRecord, error)
	Put(ctx context.Context, key string, faces []domain.FaceRecord) error
}

// DetectRequest is the analysis request payload. Image is base64, with or
// without a data URL prefix.
type DetectRequest struct {
	Image string `json:"image"`
}

// DetectResponse is the analysis result payload
type DetectResponse struct {
	Faces     []domain.FaceRecord `json:"faces"`
	ImageInfo domain.ImageInfo    `json:"imageInfo"`
	FaceCount int                 `json:"faceCount"`
}

// DetectHandler handles face analysis requests
type DetectHandler struct {
	analyzer      FaceAnalyzer
	usageTracker  UsageTracker
	auditLogger   audit.Logger
	logger        *slog.Logger
	providerName  string
	thumbnailSize int
	cache         ResultCache
}

// NewDetectHandler creates a new DetectHandler instance
func NewDetectHandler(analyzer FaceAnalyzer, usageTracker UsageTracker, auditLogger audit.Logger, logger *slog.Logger, providerName string) *DetectHandler {
	return &DetectHandler{
		analyzer:      analyzer,
		usageTracker:  usageTracker,
		auditLogger:   auditLogger,
		logger:        logger,
		providerName:  providerName,
		thumbnailSize: imaging.DefaultThumbnailSize,
	}
}

// WithCache enables result caching. Safe to skip; the handler then always
// calls the provider.
func (h *DetectHandler) WithCache(cache ResultCache) *DetectHandler {
	h.cache = cache
	return h
}

// trackUsage records the outcome asynchronously (best-effort)
func (h *DetectHandler) trackUsage(facesFound int, failed bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.usageTracker.TrackDetection(ctx, facesFound, failed)
	}()
}

func (h *DetectHandler) logAudit(c *fiber.Ctx, eventType audit.EventType, success bool, err error, faceCount, imageBytes int) {
	requestID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)

	event := audit.Event{
		RequestID:  requestID,
		EventType:  eventType,
		Provider:   h.providerName,
		Success:    success,
		FaceCount:  faceCount,
		ImageBytes: imageBytes,
		IPAddress:  c.IP(),
	}
	if err != nil {
		event.Error = err.Error()
	}

	_ = h.auditLogger.Log(c.Context(), event)
}

// Detect POST /api/detect - analyze faces in a base64-encoded image
func (h *DetectHandler) Detect(c *fiber.Ctx) error {
	var req DetectRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if strings.TrimSpace(req.Image) == "" {
		h.logAudit(c, audit.EventImageRejected, false, domain.ErrNoImageProvided, 0, 0)
		return domain.ErrNoImageProvided
	}

	image, err := decodeImagePayload(req.Image)
	if err != nil {
		h.logAudit(c, audit.EventImageRejected, false, err, 0, 0)
		return domain.ErrInvalidImage.WithError(err)
	}

	if len(image) > maxImageSize {
		h.logAudit(c, audit.EventImageRejected, false, domain.ErrImageTooLarge, 0, len(image))
		return domain.ErrImageTooLarge
	}

	imageInfo, err := imaging.Dimensions(image)
	if err != nil {
		h.logAudit(c, audit.EventImageRejected, false, err, 0, len(image))
		return domain.ErrInvalidImage.WithError(err)
	}

	var cacheKey string
	if h.cache != nil {
		cacheKey = cache.Key(image)
		if faces, err := h.cache.Get(c.Context(), cacheKey); err == nil {
			h.trackUsage(len(faces), false)
			h.logAudit(c, audit.EventFacesAnalyzed, true, nil, len(faces), len(image))
			return c.JSON(DetectResponse{
				Faces:     faces,
				ImageInfo: imageInfo,
				FaceCount: len(faces),
			})
		}
	}

	faces, err := h.analyzer.AnalyzeFaces(c.Context(), image)
	if err != nil {
		h.trackUsage(0, true)
		h.logAudit(c, audit.EventAnalysisFailed, false, err, 0, len(image))
		return mapAnalyzerError(err)
	}

	h.attachThumbnails(image, faces)

	h.trackUsage(len(faces), false)
	h.logAudit(c, audit.EventFacesAnalyzed, true, nil, len(faces), len(image))

	if faces == nil {
		faces = []domain.FaceRecord{}
	}
	if h.cache != nil {
		if err := h.cache.Put(c.Context(), cacheKey, faces); err != nil {
			h.logger.Warn("result cache write failed", "error", err)
		}
	}
	return c.JSON(DetectResponse{
		Faces:     faces,
		ImageInfo: imageInfo,
		FaceCount: len(faces),
	})
}

// attachThumbnails crops a thumbnail per face. A face whose crop fails
// keeps a nil thumbnail rather than failing the response.
func (h *DetectHandler) attachThumbnails(image []byte, faces []domain.FaceRecord) {
	for i := range faces {
		thumb, err := imaging.Thumbnail(image, faces[i].BoundingBox, h.thumbnailSize)
		if err != nil {
			h.logger.Warn("thumbnail generation failed",
				"error", err,
				"face_index", faces[i].FaceIndex,
			)
			continue
		}
		faces[i].Thumbnail = thumb
	}
}

// decodeImagePayload accepts plain base64 or a data URL
// (data:image/jpeg;base64,...).
func decodeImagePayload(payload string) ([]byte, error) {
	if idx := strings.Index(payload, ";base64,"); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(payload)
}

// mapAnalyzerError keeps domain errors as-is and folds provider transport
// failures into a 503.
func mapAnalyzerError(err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return domain.ErrProviderUnavailable.WithError(err)
}
