package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/rangefinder/lidar"
	"github.com/mklimuk/rangefinder/register"
	"github.com/mklimuk/rangefinder/snsctx"
)

func newTestServer(distance lidar.DistanceBehaviorFunc, velocity lidar.VelocityBehaviorFunc) *Server {
	return New(lidar.NewMockRangefinder(distance, velocity), Config{Listen: ":0", Version: "1.0.0-test"})
}

func constant(v int) func(context.Context) (int, error) {
	return func(context.Context) (int, error) { return v, nil }
}

func failing(err error) func(context.Context) (int, error) {
	return func(context.Context) (int, error) { return 0, err }
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestDistance(t *testing.T) {
	s := newTestServer(constant(523), constant(0))
	w := get(t, s, "/distance")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var cm int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cm))
	assert.Equal(t, 523, cm)
}

func TestVelocity(t *testing.T) {
	s := newTestServer(constant(0), constant(-3))
	w := get(t, s, "/velocity")
	require.Equal(t, http.StatusOK, w.Code)
	var v int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, -3, v)
}

func TestStatus(t *testing.T) {
	s := newTestServer(constant(0), constant(0))
	w := get(t, s, "/status")
	require.Equal(t, http.StatusOK, w.Code)
	var st lidar.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.True(t, st.Healthy)
	assert.False(t, st.Busy)
}

func TestHealth(t *testing.T) {
	s := newTestServer(constant(0), constant(0))
	w := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "1.0.0-test", resp["version"])
}

func TestIndex(t *testing.T) {
	s := newTestServer(constant(0), constant(0))
	w := get(t, s, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<title>Rangefinder</title>")

	assert.Equal(t, http.StatusNotFound, get(t, s, "/missing").Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(constant(0), constant(0))
	req := httptest.NewRequest(http.MethodPost, "/distance", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   register.Kind
	}{
		{
			name:   "busy timeout",
			err:    &register.TimeoutError{Register: "ACQ_COMMAND", MaxCount: 999, CountDelay: 10 * time.Millisecond},
			status: http.StatusGatewayTimeout,
			kind:   register.KindTimeout,
		},
		{
			name:   "transport",
			err:    errors.New("bus read from 62 failed"),
			status: http.StatusInternalServerError,
			kind:   register.KindTransport,
		},
		{
			name:   "permission",
			err:    register.ErrPermissionDenied,
			status: http.StatusInternalServerError,
			kind:   register.KindPermissionDenied,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(failing(tt.err), constant(0))
			w := get(t, s, "/distance")
			assert.Equal(t, tt.status, w.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body.Error)
			assert.Equal(t, tt.err.Error(), body.Message)
		})
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(constant(1), constant(0))
	w := get(t, s, "/distance")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/distance", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func TestSerialisedSensorAccess(t *testing.T) {
	var inFlight, overlap atomic.Int32
	distance := func(context.Context) (int, error) {
		if inFlight.Add(1) > 1 {
			overlap.Add(1)
		}
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
		return 10, nil
	}
	s := newTestServer(distance, constant(0))
	ts := httptest.NewServer(s)
	defer ts.Close()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			resp, err := http.Get(ts.URL + "/distance")
			if err == nil {
				_ = resp.Body.Close()
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.Zero(t, overlap.Load())
}

func TestServe_Shutdown(t *testing.T) {
	s := newTestServer(constant(7), constant(0))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRequestID_ReachesSensor(t *testing.T) {
	var seen string
	distance := func(ctx context.Context) (int, error) {
		seen = snsctx.RequestID(ctx)
		return 1, nil
	}
	s := newTestServer(distance, constant(0))
	req := httptest.NewRequest(http.MethodGet, "/distance", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	s.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "req-1", seen)
}
