package rekognition

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/smithy-go"
)

const (
	errCodeAccessDenied            = "AccessDeniedException"
	errCodeInvalidParameter        = "InvalidParameterException"
	errCodeThrottling              = "ThrottlingException"
	errCodeProvisionedRateExceeded = "ProvisionedThroughputExceededException"
)

// API is the subset of the Rekognition service used by the analyzer.
// Declared here so tests can substitute a mock.
type API interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
	DetectProtectiveEquipment(ctx context.Context, params *rekognition.DetectProtectiveEquipmentInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectProtectiveEquipmentOutput, error)
}

// Client wraps the AWS Rekognition client
type Client struct {
	api    API
	config Config
}

// NewClient creates a new Rekognition client with the provided configuration
// It uses the AWS default credential chain to authenticate
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		api:    rekognition.NewFromConfig(awsCfg),
		config: cfg,
	}, nil
}

// newClientWithAPI builds a client around an existing API implementation.
func newClientWithAPI(api API, cfg Config) *Client {
	return &Client{api: api, config: cfg}
}

// mapAPIError translates AWS error codes into package sentinels where a
// caller can act on them.
func mapAPIError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeAccessDenied:
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.ErrorMessage())
		case errCodeThrottling, errCodeProvisionedRateExceeded:
			return fmt.Errorf("%w: %s", ErrThrottled, apiErr.ErrorMessage())
		}
	}
	return err
}
