package detect

import (
	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
)

// Request for POST /api/detect
type Request struct {
	Image string `json:"image"` // base64 encoded still image
}

// Response from POST /api/detect
type Response struct {
	Faces     []domain.FaceRecord `json:"faces"`
	ImageInfo domain.ImageInfo    `json:"imageInfo"`
	FaceCount int                 `json:"faceCount"`
}

// errorResponse is the error payload shape of the detection service.
type errorResponse struct {
	Error string `json:"error"`
}
