package detect

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidResponse = errors.New("invalid response from detection service")
	ErrImageTooLarge   = errors.New("image exceeds maximum payload size")
	ErrEmptyImage      = errors.New("empty image payload")
)

// ServiceError is a non-success answer from the detection service. Message
// carries the server-supplied diagnostic when the error payload had one,
// otherwise a generic status description.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("detection service returned status %d: %s", e.StatusCode, e.Message)
}
