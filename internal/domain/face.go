package domain

// Mask describes the mask-wearing state of a detected face.
type Mask struct {
	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"`
}

// Valid reports whether the mask confidence is inside [0, 1].
func (m Mask) Valid() bool {
	return m.Confidence >= 0 && m.Confidence <= 1
}

// BoundingBox locates a face inside the source image.
// Coordinates are relative to the image dimensions (0.0 to 1.0).
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FaceRecord is one detected face with its analyzed attributes.
//
// FaceIndex is unique and stable within a single analysis response only.
// Two consecutive analyses of the same physical face may yield different
// indexes; providers assign them in response order starting at zero.
type FaceRecord struct {
	FaceIndex   int         `json:"faceIndex"`
	Thumbnail   []byte      `json:"face"` // JPEG crop, base64-encoded on the wire
	Age         int         `json:"age"`
	Gender      string      `json:"gender"`
	Liveness    string      `json:"liveness"`
	Emotion     string      `json:"emotion"`
	Mask        Mask        `json:"mask"`
	BoundingBox BoundingBox `json:"boundingBox"`
}

// ImageInfo carries the dimensions of the analyzed source image.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Liveness labels. A face is either judged live or a likely spoof; anything
// the provider cannot judge is Unknown.
const (
	LivenessReal    = "Real"
	LivenessFake    = "Fake"
	LivenessUnknown = "Unknown"
)

// Mask status labels.
const (
	MaskStatusMask    = "Mask"
	MaskStatusNoMask  = "No Mask"
	MaskStatusUnknown = "Unknown"
)
