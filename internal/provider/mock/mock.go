// Package mock provides a deterministic FaceAnalyzer for development and
// tests. It never calls out to a cloud provider.
package mock

import (
	"bytes"
	"context"
	"crypto/sha256"

	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
	"github.com/saturnino-fabrica-de-software/facecap/internal/provider"
)

// minImageSize rejects payloads too small to be a real frame.
const minImageSize = 1000

// NoFaceMarker at the start of an image makes the mock report zero faces,
// which keeps the empty result path reachable in development.
var NoFaceMarker = []byte("noface:")

// Provider implements provider.FaceAnalyzer with canned attributes derived
// from the image hash, so the same frame always yields the same answer.
type Provider struct{}

var _ provider.FaceAnalyzer = (*Provider)(nil)

// New creates a mock analyzer.
func New() *Provider {
	return &Provider{}
}

// AnalyzeFaces returns one synthetic face for any plausible image, with
// attributes derived from the image hash.
func (p *Provider) AnalyzeFaces(ctx context.Context, image []byte) ([]domain.FaceRecord, error) {
	if bytes.HasPrefix(image, NoFaceMarker) {
		return []domain.FaceRecord{}, nil
	}
	if len(image) < minImageSize {
		return nil, domain.ErrInvalidImage
	}

	hash := sha256.Sum256(image)

	gender := "Male"
	if hash[1]%2 == 0 {
		gender = "Female"
	}
	emotions := []string{"Happy", "Calm", "Surprised", "Sad"}

	face := domain.FaceRecord{
		FaceIndex: 0,
		Age:       20 + int(hash[2]%40),
		Gender:    gender,
		Emotion:   emotions[int(hash[3])%len(emotions)],
		Liveness:  domain.LivenessReal,
		Mask: domain.Mask{
			Status:     domain.MaskStatusNoMask,
			Confidence: 0.98,
		},
		BoundingBox: domain.BoundingBox{
			Left:   0.1,
			Top:    0.1,
			Width:  0.8,
			Height: 0.8,
		},
	}

	return []domain.FaceRecord{face}, nil
}
