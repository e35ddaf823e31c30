package rekognition

// Config holds configuration for the AWS Rekognition analyzer
type Config struct {
	// Region is the AWS region where Rekognition will be called (e.g., "us-east-1")
	Region string

	// LivenessThreshold is the minimum heuristic score for a face to be
	// reported as Real. Range 0-1.
	LivenessThreshold float64

	// MaskMinConfidence is the minimum detection confidence (0-100) passed
	// to DetectProtectiveEquipment.
	MaskMinConfidence float32
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:            "us-east-1",
		LivenessThreshold: 0.7,
		MaskMinConfidence: 80,
	}
}
