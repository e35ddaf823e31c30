package camera

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Grab(t *testing.T) {
	frame := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}

	tests := []struct {
		name         string
		serverStatus int
		serverBody   []byte
		wantErr      error
	}{
		{
			name:         "successful grab",
			serverStatus: http.StatusOK,
			serverBody:   frame,
			wantErr:      nil,
		},
		{
			name:         "forbidden maps to permission denied",
			serverStatus: http.StatusForbidden,
			serverBody:   []byte("no"),
			wantErr:      ErrPermissionDenied,
		},
		{
			name:         "unauthorized maps to permission denied",
			serverStatus: http.StatusUnauthorized,
			serverBody:   nil,
			wantErr:      ErrPermissionDenied,
		},
		{
			name:         "server error maps to device unavailable",
			serverStatus: http.StatusInternalServerError,
			serverBody:   nil,
			wantErr:      ErrDeviceUnavailable,
		},
		{
			name:         "empty body is an empty frame",
			serverStatus: http.StatusOK,
			serverBody:   nil,
			wantErr:      ErrEmptyFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/snapshot", r.URL.Path)
				assert.Equal(t, "1280", r.URL.Query().Get("width"))
				assert.Equal(t, "720", r.URL.Query().Get("height"))
				assert.Equal(t, "60", r.URL.Query().Get("fps"))

				w.WriteHeader(tt.serverStatus)
				if tt.serverBody != nil {
					_, _ = w.Write(tt.serverBody)
				}
			}))
			defer server.Close()

			config := DefaultSnapshotConfig()
			config.BaseURL = server.URL

			cam := NewSnapshot(config)
			got, err := cam.Grab(context.Background())

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, frame, got)
		})
	}
}

func TestSnapshot_ProbeReleasesDevice(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte{0x01})
	}))
	defer server.Close()

	config := DefaultSnapshotConfig()
	config.BaseURL = server.URL

	cam := NewSnapshot(config)
	require.NoError(t, cam.Probe(context.Background()))

	// One request, fully consumed; no connection stays pinned to the device.
	assert.Equal(t, 1, requests)
}

func TestSnapshot_UnreachableHost(t *testing.T) {
	config := DefaultSnapshotConfig()
	config.BaseURL = "http://127.0.0.1:1"
	config.Timeout = 500 * time.Millisecond

	cam := NewSnapshot(config)
	_, err := cam.Grab(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestStatic(t *testing.T) {
	frame := []byte("jpeg-bytes")
	cam := NewStatic(frame)

	require.NoError(t, cam.Probe(context.Background()))

	got, err := cam.Grab(context.Background())
	require.NoError(t, err)
	assert.Equal(t, frame, got)

	// Returned frames are copies; mutating one must not corrupt the source.
	got[0] = 'X'
	again, err := cam.Grab(context.Background())
	require.NoError(t, err)
	assert.Equal(t, frame, again)

	cam.FailGrab(ErrDeviceUnavailable)
	_, err = cam.Grab(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestStatic_Denied(t *testing.T) {
	cam := NewStaticDenied(ErrPermissionDenied)
	err := cam.Probe(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
