package face

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/facecap/internal/config"
	"github.com/saturnino-fabrica-de-software/facecap/internal/provider"
	"github.com/saturnino-fabrica-de-software/facecap/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/facecap/internal/provider/rekognition"
)

// ProviderType defines supported face analysis provider types
type ProviderType string

const (
	// ProviderTypeMock is the deterministic in-process provider (dev/test)
	ProviderTypeMock ProviderType = "mock"
	// ProviderTypeRekognition is the AWS Rekognition provider (cloud, for prod)
	ProviderTypeRekognition ProviderType = "rekognition"
)

// NewFaceAnalyzer creates a FaceAnalyzer instance based on configuration.
//
// Environment variables:
//   - PROVIDER_TYPE: "mock" or "rekognition" (default: "mock")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID: AWS credentials (via AWS SDK credential chain)
//   - AWS_SECRET_ACCESS_KEY: AWS credentials (via AWS SDK credential chain)
func NewFaceAnalyzer(ctx context.Context, cfg *config.Config) (provider.FaceAnalyzer, error) {
	providerType := ProviderType(cfg.ProviderType)

	switch providerType {
	case ProviderTypeRekognition:
		return createRekognitionAnalyzer(ctx, cfg)

	case ProviderTypeMock, "":
		// Default to the mock for dev/test environments
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s)",
			cfg.ProviderType, ProviderTypeMock, ProviderTypeRekognition)
	}
}

// createRekognitionAnalyzer creates an AWS Rekognition analyzer instance
func createRekognitionAnalyzer(ctx context.Context, cfg *config.Config) (provider.FaceAnalyzer, error) {
	rekogConfig := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rekogConfig.Region = cfg.AWSRegion
	}

	prov, err := rekognition.NewProvider(ctx, rekogConfig)
	if err != nil {
		return nil, fmt.Errorf("create rekognition provider: %w", err)
	}

	return prov, nil
}
