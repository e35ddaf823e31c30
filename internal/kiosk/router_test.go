package kiosk

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facecap/internal/camera"
	"github.com/saturnino-fabrica-de-software/facecap/internal/detect"
	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
	"github.com/saturnino-fabrica-de-software/facecap/internal/session"
)

type fakeDetector struct {
	resp *detect.Response
	err  error
}

func (f *fakeDetector) Detect(context.Context, []byte) (*detect.Response, error) {
	return f.resp, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(cam camera.Camera, det session.Detector) *Router {
	sess := session.New(testLogger(), cam, det, nil)
	r := NewRouter(testLogger(), sess)
	r.Setup()
	return r
}

func do(t *testing.T, app *fiber.App, method, path string) (int, []byte) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(method, path, nil), 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func snapshotFrom(t *testing.T, data []byte) session.Snapshot {
	t.Helper()
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	return snap
}

// waitAnalyzed polls the state endpoint until the async analysis lands
func waitAnalyzed(t *testing.T, app *fiber.App) session.Snapshot {
	t.Helper()

	var snap session.Snapshot
	require.Eventually(t, func() bool {
		_, data := do(t, app, fiber.MethodGet, "/session")
		snap = snapshotFrom(t, data)
		return !snap.Analyzing
	}, 2*time.Second, 10*time.Millisecond)
	return snap
}

func TestRouter_SessionLifecycle(t *testing.T) {
	det := &fakeDetector{resp: &detect.Response{
		Faces: []domain.FaceRecord{
			{FaceIndex: 0, Age: 28, Gender: "Male", Emotion: "Calm"},
			{FaceIndex: 1, Age: 41, Gender: "Female", Emotion: "Happy"},
		},
		ImageInfo: domain.ImageInfo{Width: 640, Height: 480},
		FaceCount: 2,
	}}
	r := newTestRouter(camera.NewStatic([]byte("frame")), det)
	app := r.App()

	status, data := do(t, app, fiber.MethodGet, "/session")
	require.Equal(t, fiber.StatusOK, status)
	snap := snapshotFrom(t, data)
	assert.Equal(t, session.PermissionUnknown, snap.Permission)
	assert.Equal(t, session.PhaseLive, snap.Phase)

	status, data = do(t, app, fiber.MethodPost, "/session/acquire")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, session.PermissionGranted, snapshotFrom(t, data).Permission)

	status, data = do(t, app, fiber.MethodPost, "/session/capture")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, session.PhaseCaptured, snapshotFrom(t, data).Phase)

	status, _ = do(t, app, fiber.MethodPost, "/session/analyze")
	require.Equal(t, fiber.StatusAccepted, status)

	snap = waitAnalyzed(t, app)
	require.True(t, snap.Analyzed)
	require.Len(t, snap.Faces, 2)
	require.NotNil(t, snap.Notification)
	assert.Equal(t, "Detected 2 face(s)", snap.Notification.Message)
	assert.Equal(t, session.NoFaceExpanded, snap.ExpandedFace)

	status, data = do(t, app, fiber.MethodPost, "/session/faces/1/toggle")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, snapshotFrom(t, data).ExpandedFace)

	status, data = do(t, app, fiber.MethodPost, "/session/faces/1/toggle")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, session.NoFaceExpanded, snapshotFrom(t, data).ExpandedFace)

	status, data = do(t, app, fiber.MethodPost, "/session/notification/dismiss")
	require.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, snapshotFrom(t, data).Notification)

	status, data = do(t, app, fiber.MethodPost, "/session/retake")
	require.Equal(t, fiber.StatusOK, status)
	snap = snapshotFrom(t, data)
	assert.Equal(t, session.PhaseLive, snap.Phase)
	assert.Empty(t, snap.Faces)
	assert.False(t, snap.Analyzed)
}

func TestRouter_ErrorMapping(t *testing.T) {
	t.Run("capture before permission", func(t *testing.T) {
		r := newTestRouter(camera.NewStatic([]byte("frame")), &fakeDetector{})

		status, data := do(t, r.App(), fiber.MethodPost, "/session/capture")
		assert.Equal(t, fiber.StatusForbidden, status)
		assert.JSONEq(t, `{"error": "camera permission has not been granted"}`, string(data))
	})

	t.Run("denied camera probe", func(t *testing.T) {
		r := newTestRouter(camera.NewStaticDenied(camera.ErrPermissionDenied), &fakeDetector{})
		app := r.App()

		status, _ := do(t, app, fiber.MethodPost, "/session/acquire")
		assert.Equal(t, fiber.StatusForbidden, status)

		// the probe runs once; a second acquire conflicts
		status, data := do(t, app, fiber.MethodPost, "/session/acquire")
		assert.Equal(t, fiber.StatusConflict, status)
		assert.JSONEq(t, `{"error": "camera permission already resolved"}`, string(data))

		_, stateData := do(t, app, fiber.MethodGet, "/session")
		snap := snapshotFrom(t, stateData)
		assert.Equal(t, session.PermissionDenied, snap.Permission)
		require.NotNil(t, snap.Notification)
		assert.Equal(t, "Unable to access the camera", snap.Notification.Message)
	})

	t.Run("double capture conflicts", func(t *testing.T) {
		r := newTestRouter(camera.NewStatic([]byte("frame")), &fakeDetector{})
		app := r.App()

		do(t, app, fiber.MethodPost, "/session/acquire")
		do(t, app, fiber.MethodPost, "/session/capture")

		status, _ := do(t, app, fiber.MethodPost, "/session/capture")
		assert.Equal(t, fiber.StatusConflict, status)
	})

	t.Run("analyze without a frame conflicts", func(t *testing.T) {
		r := newTestRouter(camera.NewStatic([]byte("frame")), &fakeDetector{})
		app := r.App()

		do(t, app, fiber.MethodPost, "/session/acquire")

		status, data := do(t, app, fiber.MethodPost, "/session/analyze")
		assert.Equal(t, fiber.StatusConflict, status)
		assert.JSONEq(t, `{"error": "no frame captured"}`, string(data))
	})

	t.Run("grab failure surfaces as unavailable", func(t *testing.T) {
		cam := camera.NewStatic([]byte("frame"))
		r := newTestRouter(cam, &fakeDetector{})
		app := r.App()

		do(t, app, fiber.MethodPost, "/session/acquire")
		cam.FailGrab(camera.ErrDeviceUnavailable)

		status, _ := do(t, app, fiber.MethodPost, "/session/capture")
		assert.Equal(t, fiber.StatusServiceUnavailable, status)

		// the session stays live and recovers once the device is back
		cam.FailGrab(nil)
		status, _ = do(t, app, fiber.MethodPost, "/session/capture")
		assert.Equal(t, fiber.StatusOK, status)
	})

	t.Run("toggle out of range", func(t *testing.T) {
		det := &fakeDetector{resp: &detect.Response{
			Faces:     []domain.FaceRecord{{FaceIndex: 0}},
			FaceCount: 1,
		}}
		r := newTestRouter(camera.NewStatic([]byte("frame")), det)
		app := r.App()

		do(t, app, fiber.MethodPost, "/session/acquire")
		do(t, app, fiber.MethodPost, "/session/capture")
		do(t, app, fiber.MethodPost, "/session/analyze")
		waitAnalyzed(t, app)

		status, _ := do(t, app, fiber.MethodPost, "/session/faces/5/toggle")
		assert.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("toggle before results conflicts", func(t *testing.T) {
		r := newTestRouter(camera.NewStatic([]byte("frame")), &fakeDetector{})

		status, _ := do(t, r.App(), fiber.MethodPost, "/session/faces/0/toggle")
		assert.Equal(t, fiber.StatusConflict, status)
	})

	t.Run("non-integer face index", func(t *testing.T) {
		r := newTestRouter(camera.NewStatic([]byte("frame")), &fakeDetector{})

		status, data := do(t, r.App(), fiber.MethodPost, "/session/faces/first/toggle")
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.JSONEq(t, `{"error": "face index must be an integer"}`, string(data))
	})
}

func TestRouter_GetFrame(t *testing.T) {
	cam := camera.NewStatic([]byte("jpeg-bytes"))
	r := newTestRouter(cam, &fakeDetector{})
	app := r.App()

	status, _ := do(t, app, fiber.MethodGet, "/session/frame")
	assert.Equal(t, fiber.StatusConflict, status, "no frame held yet")

	do(t, app, fiber.MethodPost, "/session/acquire")
	do(t, app, fiber.MethodPost, "/session/capture")

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/session/frame", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get(fiber.HeaderContentType))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), body)
}
