package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facecap/internal/audit"
)

func newCaptureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func TestSlogLogger_Log(t *testing.T) {
	t.Run("emits the event with identifiers filled in", func(t *testing.T) {
		logger, buf := newCaptureLogger()
		auditLogger := audit.NewSlogLogger(logger)

		err := auditLogger.Log(context.Background(), audit.Event{
			EventType:  audit.EventFacesAnalyzed,
			Provider:   "rekognition",
			Success:    true,
			FaceCount:  2,
			ImageBytes: 4096,
			RequestID:  "req-1",
		})
		require.NoError(t, err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

		assert.Equal(t, "audit_event", entry["msg"])
		assert.Equal(t, "audit", entry["component"])
		assert.Equal(t, string(audit.EventFacesAnalyzed), entry["event_type"])
		assert.Equal(t, "rekognition", entry["provider"])
		assert.Equal(t, true, entry["success"])
		assert.Equal(t, float64(2), entry["face_count"])

		eventID, err := uuid.Parse(entry["event_id"].(string))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, eventID)
	})

	t.Run("keeps a caller-supplied id and timestamp", func(t *testing.T) {
		logger, buf := newCaptureLogger()
		auditLogger := audit.NewSlogLogger(logger)

		id := uuid.New()
		ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		err := auditLogger.Log(context.Background(), audit.Event{
			ID:        id,
			Timestamp: ts,
			EventType: audit.EventAnalysisFailed,
			Provider:  "mock",
			Error:     "image too small",
		})
		require.NoError(t, err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, id.String(), entry["event_id"])

		var event audit.Event
		require.NoError(t, json.Unmarshal([]byte(entry["event_data"].(string)), &event))
		assert.Equal(t, ts, event.Timestamp)
		assert.Equal(t, "image too small", event.Error)
	})
}

func TestNoOpLogger(t *testing.T) {
	var logger audit.NoOpLogger
	assert.NoError(t, logger.Log(context.Background(), audit.Event{EventType: audit.EventImageRejected}))
}
