package rekognition

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
)

// mockAPI is a mock implementation of the API interface for testing
type mockAPI struct {
	detectFacesFunc               func(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
	detectProtectiveEquipmentFunc func(ctx context.Context, params *rekognition.DetectProtectiveEquipmentInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectProtectiveEquipmentOutput, error)
}

func (m *mockAPI) DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	if m.detectFacesFunc != nil {
		return m.detectFacesFunc(ctx, params, optFns...)
	}
	return &rekognition.DetectFacesOutput{}, nil
}

func (m *mockAPI) DetectProtectiveEquipment(ctx context.Context, params *rekognition.DetectProtectiveEquipmentInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectProtectiveEquipmentOutput, error) {
	if m.detectProtectiveEquipmentFunc != nil {
		return m.detectProtectiveEquipmentFunc(ctx, params, optFns...)
	}
	return &rekognition.DetectProtectiveEquipmentOutput{}, nil
}

// newTestProvider builds a Provider backed by the mock API.
func newTestProvider(api API, cfg Config) *Provider {
	return &Provider{client: newClientWithAPI(api, cfg)}
}
