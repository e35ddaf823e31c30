package rekognition

import "errors"

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrThrottled indicates that AWS throttled the request
	ErrThrottled = errors.New("rekognition request throttled")
)
