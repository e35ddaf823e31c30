package usage

import (
	"time"

	"github.com/google/uuid"
)

// DailyUsage is one day of detection counters
type DailyUsage struct {
	ID         uuid.UUID `json:"id"`
	Date       time.Time `json:"date"`
	Detections int       `json:"detections"`
	FacesFound int       `json:"faces_found"`
	Failures   int       `json:"failures"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Summary aggregates counters over a reporting period
type Summary struct {
	From       time.Time    `json:"from"`
	To         time.Time    `json:"to"`
	Detections int          `json:"detections"`
	FacesFound int          `json:"faces_found"`
	Failures   int          `json:"failures"`
	Days       []DailyUsage `json:"days,omitempty"`
}
