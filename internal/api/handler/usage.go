package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
	"github.com/saturnino-fabrica-de-software/facecap/internal/usage"
)

const (
	defaultSummaryDays = 7
	maxSummaryDays     = 90
)

// UsageReader aggregates recorded detection counters
type UsageReader interface {
	SummaryForDays(ctx context.Context, days int) (*usage.Summary, error)
}

// UsageHandler exposes detection traffic counters
type UsageHandler struct {
	reader UsageReader
	logger *slog.Logger
}

func NewUsageHandler(reader UsageReader, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{reader: reader, logger: logger}
}

// GetUsage GET /api/usage?days=7 - per-day detection counters
func (h *UsageHandler) GetUsage(c *fiber.Ctx) error {
	days := c.QueryInt("days", defaultSummaryDays)
	if days <= 0 || days > maxSummaryDays {
		return fiber.NewError(fiber.StatusBadRequest, "days must be between 1 and 90")
	}

	summary, err := h.reader.SummaryForDays(c.Context(), days)
	if err != nil {
		h.logger.Error("failed to read usage summary", "error", err)
		return domain.ErrInternal.WithError(err)
	}

	return c.JSON(summary)
}
