package usage

import (
	"context"
	"log/slog"
	"time"
)

// Tracker records detection traffic as daily counters. Tracking is best
// effort: a failed write is logged and does not surface to the request
// that triggered it.
type Tracker struct {
	repo   *Repository
	logger *slog.Logger
}

func NewTracker(repo *Repository, logger *slog.Logger) *Tracker {
	return &Tracker{repo: repo, logger: logger}
}

// TrackDetection records one analysis request and how many faces it found.
func (t *Tracker) TrackDetection(ctx context.Context, facesFound int, failed bool) {
	day := time.Now().UTC().Truncate(24 * time.Hour)

	if err := t.repo.IncrementDaily(ctx, day, "detections", 1); err != nil {
		t.logger.Error("failed to track detection", "error", err)
	}

	if facesFound > 0 {
		if err := t.repo.IncrementDaily(ctx, day, "faces_found", facesFound); err != nil {
			t.logger.Error("failed to track faces found", "error", err)
		}
	}

	if failed {
		if err := t.repo.IncrementDaily(ctx, day, "failures", 1); err != nil {
			t.logger.Error("failed to track failure", "error", err)
		}
	}
}

// SummaryForDays aggregates the last n days of counters, including the
// per-day breakdown.
func (t *Tracker) SummaryForDays(ctx context.Context, days int) (*Summary, error) {
	if days <= 0 {
		days = 1
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	totals, err := t.repo.AggregatePeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}

	records, err := t.repo.GetRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &Summary{
		From:       start,
		To:         end,
		Detections: totals.Detections,
		FacesFound: totals.FacesFound,
		Failures:   totals.Failures,
		Days:       records,
	}, nil
}

// NoopTracker satisfies the tracking surface when no database is
// configured.
type NoopTracker struct{}

func (NoopTracker) TrackDetection(_ context.Context, _ int, _ bool) {}
