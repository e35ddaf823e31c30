package rekognition

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
)

var testImage = bytes.Repeat([]byte("jpeg"), 100)

// liveDetail returns a face detail that passes the passive liveness checks.
func liveDetail() types.FaceDetail {
	return types.FaceDetail{
		AgeRange: &types.AgeRange{Low: aws.Int32(25), High: aws.Int32(35)},
		Gender:   &types.Gender{Value: types.GenderTypeMale, Confidence: aws.Float32(99)},
		Emotions: []types.Emotion{
			{Type: types.EmotionNameCalm, Confidence: aws.Float32(40)},
			{Type: types.EmotionNameHappy, Confidence: aws.Float32(92)},
		},
		EyesOpen: &types.EyeOpen{Value: true, Confidence: aws.Float32(95)},
		Pose:     &types.Pose{Yaw: aws.Float32(5), Pitch: aws.Float32(-3), Roll: aws.Float32(1)},
		Quality:  &types.ImageQuality{Brightness: aws.Float32(80), Sharpness: aws.Float32(90)},
		BoundingBox: &types.BoundingBox{
			Left: aws.Float32(0.1), Top: aws.Float32(0.2),
			Width: aws.Float32(0.3), Height: aws.Float32(0.4),
		},
	}
}

func TestProvider_AnalyzeFaces(t *testing.T) {
	t.Run("maps rekognition attributes to a face record", func(t *testing.T) {
		api := &mockAPI{
			detectFacesFunc: func(_ context.Context, params *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
				assert.Equal(t, testImage, params.Image.Bytes)
				assert.Equal(t, []types.Attribute{types.AttributeAll}, params.Attributes)
				return &rekognition.DetectFacesOutput{
					FaceDetails: []types.FaceDetail{liveDetail()},
				}, nil
			},
			detectProtectiveEquipmentFunc: func(_ context.Context, params *rekognition.DetectProtectiveEquipmentInput, _ ...func(*rekognition.Options)) (*rekognition.DetectProtectiveEquipmentOutput, error) {
				require.NotNil(t, params.SummarizationAttributes)
				return &rekognition.DetectProtectiveEquipmentOutput{
					Persons: []types.ProtectiveEquipmentPerson{
						{
							BodyParts: []types.ProtectiveEquipmentBodyPart{
								{
									Name:       types.BodyPartFace,
									Confidence: aws.Float32(99),
									EquipmentDetections: []types.EquipmentDetection{
										{
											Type:           types.ProtectiveEquipmentTypeFaceCover,
											Confidence:     aws.Float32(92),
											CoversBodyPart: &types.CoversBodyPart{Value: true, Confidence: aws.Float32(92)},
										},
									},
								},
							},
						},
					},
				}, nil
			},
		}
		p := newTestProvider(api, DefaultConfig())

		faces, err := p.AnalyzeFaces(context.Background(), testImage)
		require.NoError(t, err)
		require.Len(t, faces, 1)

		face := faces[0]
		assert.Equal(t, 0, face.FaceIndex)
		assert.Equal(t, 30, face.Age)
		assert.Equal(t, "Male", face.Gender)
		assert.Equal(t, "Happy", face.Emotion)
		assert.Equal(t, domain.LivenessReal, face.Liveness)
		assert.Equal(t, domain.MaskStatusMask, face.Mask.Status)
		assert.InDelta(t, 0.92, face.Mask.Confidence, 0.001)
		assert.InDelta(t, 0.1, face.BoundingBox.Left, 0.001)
		assert.InDelta(t, 0.4, face.BoundingBox.Height, 0.001)
	})

	t.Run("faces without a matched person get an unknown mask", func(t *testing.T) {
		api := &mockAPI{
			detectFacesFunc: func(_ context.Context, _ *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
				return &rekognition.DetectFacesOutput{
					FaceDetails: []types.FaceDetail{liveDetail(), liveDetail()},
				}, nil
			},
			detectProtectiveEquipmentFunc: func(_ context.Context, _ *rekognition.DetectProtectiveEquipmentInput, _ ...func(*rekognition.Options)) (*rekognition.DetectProtectiveEquipmentOutput, error) {
				return &rekognition.DetectProtectiveEquipmentOutput{
					Persons: []types.ProtectiveEquipmentPerson{
						{
							BodyParts: []types.ProtectiveEquipmentBodyPart{
								{Name: types.BodyPartFace, Confidence: aws.Float32(97)},
							},
						},
					},
				}, nil
			},
		}
		p := newTestProvider(api, DefaultConfig())

		faces, err := p.AnalyzeFaces(context.Background(), testImage)
		require.NoError(t, err)
		require.Len(t, faces, 2)

		assert.Equal(t, domain.MaskStatusNoMask, faces[0].Mask.Status)
		assert.InDelta(t, 0.97, faces[0].Mask.Confidence, 0.001)
		assert.Equal(t, domain.MaskStatusUnknown, faces[1].Mask.Status)
		assert.Equal(t, 1, faces[1].FaceIndex)
	})

	t.Run("equipment detection failure degrades masks to unknown", func(t *testing.T) {
		api := &mockAPI{
			detectFacesFunc: func(_ context.Context, _ *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
				return &rekognition.DetectFacesOutput{
					FaceDetails: []types.FaceDetail{liveDetail()},
				}, nil
			},
			detectProtectiveEquipmentFunc: func(_ context.Context, _ *rekognition.DetectProtectiveEquipmentInput, _ ...func(*rekognition.Options)) (*rekognition.DetectProtectiveEquipmentOutput, error) {
				return nil, errors.New("ppe unavailable")
			},
		}
		p := newTestProvider(api, DefaultConfig())

		faces, err := p.AnalyzeFaces(context.Background(), testImage)
		require.NoError(t, err)
		require.Len(t, faces, 1)
		assert.Equal(t, domain.MaskStatusUnknown, faces[0].Mask.Status)
	})

	t.Run("closed eyes and poor quality read as fake", func(t *testing.T) {
		detail := liveDetail()
		detail.EyesOpen = &types.EyeOpen{Value: false, Confidence: aws.Float32(90)}
		detail.Quality = &types.ImageQuality{Brightness: aws.Float32(20), Sharpness: aws.Float32(15)}

		api := &mockAPI{
			detectFacesFunc: func(_ context.Context, _ *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
				return &rekognition.DetectFacesOutput{FaceDetails: []types.FaceDetail{detail}}, nil
			},
		}
		p := newTestProvider(api, DefaultConfig())

		faces, err := p.AnalyzeFaces(context.Background(), testImage)
		require.NoError(t, err)
		assert.Equal(t, domain.LivenessFake, faces[0].Liveness)
	})

	t.Run("missing attributes read as unknown liveness", func(t *testing.T) {
		detail := liveDetail()
		detail.EyesOpen = nil

		api := &mockAPI{
			detectFacesFunc: func(_ context.Context, _ *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
				return &rekognition.DetectFacesOutput{FaceDetails: []types.FaceDetail{detail}}, nil
			},
		}
		p := newTestProvider(api, DefaultConfig())

		faces, err := p.AnalyzeFaces(context.Background(), testImage)
		require.NoError(t, err)
		assert.Equal(t, domain.LivenessUnknown, faces[0].Liveness)
	})

	t.Run("no faces is an empty result without an equipment call", func(t *testing.T) {
		ppeCalled := false
		api := &mockAPI{
			detectProtectiveEquipmentFunc: func(_ context.Context, _ *rekognition.DetectProtectiveEquipmentInput, _ ...func(*rekognition.Options)) (*rekognition.DetectProtectiveEquipmentOutput, error) {
				ppeCalled = true
				return &rekognition.DetectProtectiveEquipmentOutput{}, nil
			},
		}
		p := newTestProvider(api, DefaultConfig())

		faces, err := p.AnalyzeFaces(context.Background(), testImage)
		require.NoError(t, err)
		assert.Empty(t, faces)
		assert.NotNil(t, faces)
		assert.False(t, ppeCalled)
	})

	t.Run("access denied maps to credentials error", func(t *testing.T) {
		api := &mockAPI{
			detectFacesFunc: func(_ context.Context, _ *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
				return nil, &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "nope"}
			},
		}
		p := newTestProvider(api, DefaultConfig())

		_, err := p.AnalyzeFaces(context.Background(), testImage)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("invalid parameter maps to invalid image", func(t *testing.T) {
		api := &mockAPI{
			detectFacesFunc: func(_ context.Context, _ *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
				return nil, &smithy.GenericAPIError{Code: "InvalidParameterException", Message: "bad image"}
			},
		}
		p := newTestProvider(api, DefaultConfig())

		_, err := p.AnalyzeFaces(context.Background(), testImage)
		assert.ErrorIs(t, err, domain.ErrInvalidImage)
	})

	t.Run("throttling maps to the throttled sentinel", func(t *testing.T) {
		api := &mockAPI{
			detectFacesFunc: func(_ context.Context, _ *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
				return nil, &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}
			},
		}
		p := newTestProvider(api, DefaultConfig())

		_, err := p.AnalyzeFaces(context.Background(), testImage)
		assert.ErrorIs(t, err, ErrThrottled)
	})

	t.Run("rejects images outside the size bounds", func(t *testing.T) {
		p := newTestProvider(&mockAPI{}, DefaultConfig())

		_, err := p.AnalyzeFaces(context.Background(), []byte("tiny"))
		assert.ErrorIs(t, err, domain.ErrInvalidImage)

		_, err = p.AnalyzeFaces(context.Background(), make([]byte, maxImageSize+1))
		assert.ErrorIs(t, err, domain.ErrImageTooLarge)
	})
}
