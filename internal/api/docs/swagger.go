package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// FaceRecordData represents one analyzed face
type FaceRecordData struct {
	FaceIndex int    `json:"faceIndex" example:"0"`
	Face      string `json:"face" example:"/9j/4AAQSkZJRg..."`
	Age       int    `json:"age" example:"30"`
	Gender    string `json:"gender" example:"Male"`
	Liveness  string `json:"liveness" example:"Real"`
	Emotion   string `json:"emotion" example:"Happy"`
}

// ImageInfoData represents the analyzed image's dimensions
type ImageInfoData struct {
	Width  int `json:"width" example:"1280"`
	Height int `json:"height" example:"720"`
}

// DetectRequestBody is the analysis request payload
type DetectRequestBody struct {
	Image string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQ..."`
}

// DetectResponseBody is the analysis result payload
type DetectResponseBody struct {
	Faces     []FaceRecordData `json:"faces"`
	ImageInfo ImageInfoData    `json:"imageInfo"`
	FaceCount int              `json:"faceCount" example:"1"`
}

// UsageSummaryData aggregates detection counters
type UsageSummaryData struct {
	From       string `json:"from" example:"2026-02-22T00:00:00Z"`
	To         string `json:"to" example:"2026-03-01T00:00:00Z"`
	Detections int    `json:"detections" example:"42"`
	FacesFound int    `json:"faces_found" example:"61"`
	Failures   int    `json:"failures" example:"3"`
}

// ErrorResponse is the flat error payload
type ErrorResponse struct {
	Error string `json:"error" example:"No image provided"`
}

// HealthData is the health probe payload
type HealthData struct {
	Status string `json:"status" example:"ok"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Face Detection API",
		Version:     "v0.1.0",
		Description: "Detects faces in a still frame and returns per-face attributes: age, gender, emotion, mask and passive liveness",
		Host:        "localhost:3001",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /api/detect - Analyze faces
		endpoint.New(
			endpoint.POST,
			"/api/detect",
			endpoint.WithTags("Detection"),
			endpoint.WithSummary("Analyze faces in an image"),
			endpoint.WithDescription("Accepts a base64-encoded image (plain or data URL) and returns one record per detected face, including a cropped thumbnail."),
			endpoint.WithBody(DetectRequestBody{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DetectResponseBody{}, "200", "Analysis completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Error: "No image provided"}, "400", "Bad Request"),
				response.New(ErrorResponse{Error: "Image too large"}, "413", "Payload Too Large"),
				response.New(ErrorResponse{Error: "Invalid image data"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Error: "Too many requests"}, "429", "Too Many Requests"),
				response.New(ErrorResponse{Error: "Face analysis provider unavailable"}, "503", "Service Unavailable"),
			}),
		),

		// GET /api/usage - Detection counters
		endpoint.New(
			endpoint.GET,
			"/api/usage",
			endpoint.WithTags("Usage"),
			endpoint.WithSummary("Detection traffic counters"),
			endpoint.WithDescription("Aggregated per-day counters for the requested window."),
			endpoint.WithParams(
				parameter.IntParam("days", parameter.Query, parameter.WithDescription("Window size in days (1-90, default: 7)")),
			),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UsageSummaryData{}, "200", "Usage summary"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Error: "days must be between 1 and 90"}, "400", "Bad Request"),
			}),
		),

		// GET /health - Liveness probe
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Service liveness"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthData{}, "200", "Service is up"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)
	return sw
}
