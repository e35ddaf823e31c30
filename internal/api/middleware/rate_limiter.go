package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
)

// DetectLimiter bounds detection requests per client address
type DetectLimiter interface {
	CheckDetectLimit(ctx context.Context, clientIP string, limit int) error
}

// RateLimit rejects requests over the per-client budget with a 429.
// Limiter failures other than an exceeded budget let the request through;
// the limiter is protection, not a dependency.
func RateLimit(limiter DetectLimiter, limit int, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := limiter.CheckDetectLimit(c.Context(), c.IP(), limit)
		if err != nil {
			if errors.Is(err, domain.ErrRateLimited) {
				return err
			}
			logger.Warn("rate limit check failed", "error", err)
		}
		return c.Next()
	}
}
