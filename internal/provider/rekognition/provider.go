package rekognition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
	"github.com/saturnino-fabrica-de-software/facecap/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// Provider implements provider.FaceAnalyzer using AWS Rekognition. Face
// attributes come from DetectFaces, mask detection from
// DetectProtectiveEquipment, and liveness from a passive heuristic over the
// reported quality, pose and eye state.
type Provider struct {
	client *Client
}

var _ provider.FaceAnalyzer = (*Provider)(nil)

// NewProvider creates a Rekognition-backed analyzer
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return &Provider{client: client}, nil
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", domain.ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", domain.ErrImageTooLarge, len(image), maxImageSize)
	}
	return nil
}

// AnalyzeFaces detects faces and their attributes in an image.
// Returns an empty slice if no faces are detected (not an error).
func (p *Provider) AnalyzeFaces(ctx context.Context, image []byte) ([]domain.FaceRecord, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := p.client.api.DetectFaces(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == errCodeInvalidParameter {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidImage, apiErr.ErrorMessage())
		}
		return nil, fmt.Errorf("detect faces: %w", mapAPIError(err))
	}

	if len(output.FaceDetails) == 0 {
		return []domain.FaceRecord{}, nil
	}

	masks := p.detectMasks(ctx, image, len(output.FaceDetails))

	faces := make([]domain.FaceRecord, 0, len(output.FaceDetails))
	for i, detail := range output.FaceDetails {
		face := domain.FaceRecord{
			FaceIndex:   i,
			Age:         midpointAge(detail.AgeRange),
			Gender:      genderValue(detail.Gender),
			Emotion:     topEmotion(detail.Emotions),
			Liveness:    p.livenessStatus(detail),
			Mask:        masks[i],
			BoundingBox: boundingBox(detail.BoundingBox),
		}
		faces = append(faces, face)
	}

	return faces, nil
}

// detectMasks runs protective equipment detection and returns one mask
// verdict per face, matched by person order. A failed call degrades to
// Unknown for every face rather than failing the whole analysis.
func (p *Provider) detectMasks(ctx context.Context, image []byte, faceCount int) []domain.Mask {
	masks := make([]domain.Mask, faceCount)
	for i := range masks {
		masks[i] = domain.Mask{Status: domain.MaskStatusUnknown}
	}

	input := &rekognition.DetectProtectiveEquipmentInput{
		Image: &types.Image{
			Bytes: image,
		},
		SummarizationAttributes: &types.ProtectiveEquipmentSummarizationAttributes{
			MinConfidence:          aws.Float32(p.client.config.MaskMinConfidence),
			RequiredEquipmentTypes: []types.ProtectiveEquipmentType{types.ProtectiveEquipmentTypeFaceCover},
		},
	}

	output, err := p.client.api.DetectProtectiveEquipment(ctx, input)
	if err != nil {
		return masks
	}

	for i, person := range output.Persons {
		if i >= faceCount {
			break
		}
		masks[i] = maskFromPerson(person)
	}
	return masks
}

// maskFromPerson reads the face cover verdict for one detected person.
func maskFromPerson(person types.ProtectiveEquipmentPerson) domain.Mask {
	for _, part := range person.BodyParts {
		if part.Name != types.BodyPartFace {
			continue
		}
		for _, eq := range part.EquipmentDetections {
			if eq.Type != types.ProtectiveEquipmentTypeFaceCover {
				continue
			}
			status := domain.MaskStatusNoMask
			if eq.CoversBodyPart != nil && eq.CoversBodyPart.Value {
				status = domain.MaskStatusMask
			}
			confidence := 0.0
			if eq.Confidence != nil {
				confidence = float64(*eq.Confidence) / 100.0
			}
			return domain.Mask{Status: status, Confidence: confidence}
		}
		// Face seen but no cover detected on it.
		confidence := 0.0
		if part.Confidence != nil {
			confidence = float64(*part.Confidence) / 100.0
		}
		return domain.Mask{Status: domain.MaskStatusNoMask, Confidence: confidence}
	}
	return domain.Mask{Status: domain.MaskStatusUnknown}
}

// livenessStatus scores a passive liveness heuristic: open eyes, a frame
// roughly facing the camera and decent image quality. Faces missing the
// needed attributes come back Unknown.
func (p *Provider) livenessStatus(detail types.FaceDetail) string {
	if detail.EyesOpen == nil || detail.Pose == nil || detail.Quality == nil {
		return domain.LivenessUnknown
	}

	score := 0.0

	if detail.EyesOpen.Value {
		score += 0.4
	}

	if facingCamera(detail.Pose) {
		score += 0.3
	}

	if qualityScore(detail.Quality) >= 0.5 {
		score += 0.3
	}

	threshold := p.client.config.LivenessThreshold
	if threshold <= 0 {
		threshold = DefaultConfig().LivenessThreshold
	}

	if score >= threshold {
		return domain.LivenessReal
	}
	return domain.LivenessFake
}

// facingCamera accepts poses within 45 degrees of straight-on.
func facingCamera(pose *types.Pose) bool {
	const maxAngle = 45.0
	yaw := 0.0
	pitch := 0.0
	if pose.Yaw != nil {
		yaw = float64(*pose.Yaw)
	}
	if pose.Pitch != nil {
		pitch = float64(*pose.Pitch)
	}
	return yaw > -maxAngle && yaw < maxAngle && pitch > -maxAngle && pitch < maxAngle
}

// qualityScore normalizes brightness and sharpness to 0-1, weighting
// sharpness more heavily since it matters most for attribute extraction.
func qualityScore(quality *types.ImageQuality) float64 {
	brightness := 0.0
	sharpness := 0.0
	if quality.Brightness != nil {
		brightness = float64(*quality.Brightness) / 100.0
	}
	if quality.Sharpness != nil {
		sharpness = float64(*quality.Sharpness) / 100.0
	}
	return brightness*0.3 + sharpness*0.7
}

// midpointAge collapses the Rekognition age range to a single number.
func midpointAge(ageRange *types.AgeRange) int {
	if ageRange == nil || ageRange.Low == nil || ageRange.High == nil {
		return 0
	}
	return int(*ageRange.Low+*ageRange.High) / 2
}

func genderValue(gender *types.Gender) string {
	if gender == nil {
		return ""
	}
	return string(gender.Value)
}

// topEmotion picks the highest-confidence emotion and renders it in the
// "Happy" form the review surface expects.
func topEmotion(emotions []types.Emotion) string {
	var best *types.Emotion
	for i := range emotions {
		e := &emotions[i]
		if e.Confidence == nil {
			continue
		}
		if best == nil || *e.Confidence > *best.Confidence {
			best = e
		}
	}
	if best == nil {
		return ""
	}
	name := string(best.Type)
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}

func boundingBox(box *types.BoundingBox) domain.BoundingBox {
	if box == nil {
		return domain.BoundingBox{}
	}
	out := domain.BoundingBox{}
	if box.Left != nil {
		out.Left = float64(*box.Left)
	}
	if box.Top != nil {
		out.Top = float64(*box.Top)
	}
	if box.Width != nil {
		out.Width = float64(*box.Width)
	}
	if box.Height != nil {
		out.Height = float64(*box.Height)
	}
	return out
}
