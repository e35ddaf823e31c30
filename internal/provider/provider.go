package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
)

// FaceAnalyzer extracts per-face attribute records from an encoded image.
// Implementations return an empty slice when no faces are present; that is
// not an error.
type FaceAnalyzer interface {
	AnalyzeFaces(ctx context.Context, image []byte) ([]domain.FaceRecord, error)
}
