package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/client/models"
	"github.com/dmitrijs2005/gophdrop/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func selected(name string, data []byte) *models.SelectedFile {
	return &models.SelectedFile{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: "text/plain",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestUpload_SendsMultipartAndParsesAck(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 64*1024)

	var gotName, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		f, hdr, err := r.FormFile(common.UploadFormField)
		require.NoError(t, err)
		defer f.Close()
		gotName = hdr.Filename
		gotType = hdr.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(f)
		writeJSON(w, http.StatusOK, map[string]string{"path": "1700-a.txt", "publicUrl": "http://cdn/uploads/1700-a.txt"})
	}))
	defer srv.Close()

	c, err := NewHTTPClient(srv.URL, srv.URL, "")
	require.NoError(t, err)
	defer c.Close()

	var mu sync.Mutex
	accepted := 0
	var samples []int64
	ack, err := c.Upload(context.Background(), selected("a.txt", payload), UploadHooks{
		OnAccepted: func() { mu.Lock(); accepted++; mu.Unlock() },
		OnProgress: func(sent, total int64) {
			mu.Lock()
			defer mu.Unlock()
			assert.EqualValues(t, len(payload), total)
			samples = append(samples, sent)
		},
	})
	require.NoError(t, err)
	require.Equal(t, &models.UploadAck{Path: "1700-a.txt", PublicURL: "http://cdn/uploads/1700-a.txt"}, ack)

	assert.Equal(t, "a.txt", gotName)
	assert.Equal(t, "text/plain", gotType)
	assert.Equal(t, payload, gotBody)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, accepted)
	require.NotEmpty(t, samples)
	assert.EqualValues(t, len(payload), samples[len(samples)-1])
	for i := 1; i < len(samples); i++ {
		assert.GreaterOrEqual(t, samples[i], samples[i-1])
	}
}

func TestUpload_FallsBackToURLField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		writeJSON(w, http.StatusOK, map[string]string{"path": "p", "url": "http://x/p"})
	}))
	defer srv.Close()

	c, _ := NewHTTPClient(srv.URL, srv.URL, "")
	ack, err := c.Upload(context.Background(), selected("p", []byte("1")), UploadHooks{})
	require.NoError(t, err)
	assert.Equal(t, "http://x/p", ack.PublicURL)
}

func TestUpload_ResponseClassification(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		body    string
		wantIs  []error
		wantNot []error
		wantMsg string
	}{
		{
			name:    "bucket missing",
			code:    http.StatusInternalServerError,
			body:    `{"error":"Bucket not found"}`,
			wantIs:  []error{common.ErrBackendRejection, common.ErrTargetNotFound},
			wantNot: []error{common.ErrAccessPolicyDenied},
			wantMsg: "Bucket not found",
		},
		{
			name:    "row level security",
			code:    http.StatusBadRequest,
			body:    `{"error":"new row violates row-level security policy"}`,
			wantIs:  []error{common.ErrBackendRejection, common.ErrAccessPolicyDenied},
			wantNot: []error{common.ErrTargetNotFound},
		},
		{
			name:    "forbidden without body",
			code:    http.StatusForbidden,
			body:    ``,
			wantIs:  []error{common.ErrBackendRejection, common.ErrAccessPolicyDenied},
			wantMsg: "Forbidden",
		},
		{
			name:    "unknown rejection",
			code:    http.StatusBadRequest,
			body:    `{"error":"No file provided"}`,
			wantIs:  []error{common.ErrBackendRejection},
			wantNot: []error{common.ErrTargetNotFound, common.ErrAccessPolicyDenied},
			wantMsg: "No file provided",
		},
		{
			name:   "2xx carrying an error message",
			code:   http.StatusOK,
			body:   `{"message":"bucket is private"}`,
			wantIs: []error{common.ErrBackendRejection, common.ErrTargetNotFound},
		},
		{
			name:    "2xx with invalid json",
			code:    http.StatusOK,
			body:    `<html>`,
			wantIs:  []error{common.ErrMalformedResponse},
			wantNot: []error{common.ErrBackendRejection},
		},
		{
			name:   "2xx without path",
			code:   http.StatusOK,
			body:   `{"publicUrl":"http://x"}`,
			wantIs: []error{common.ErrMalformedResponse},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.WriteHeader(tt.code)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c, err := NewHTTPClient(srv.URL, srv.URL, "")
			require.NoError(t, err)

			_, err = c.Upload(context.Background(), selected("f", []byte("data")), UploadHooks{})
			require.Error(t, err)
			for _, target := range tt.wantIs {
				assert.ErrorIs(t, err, target)
			}
			for _, target := range tt.wantNot {
				assert.NotErrorIs(t, err, target)
			}
			if tt.wantMsg != "" {
				var be *BackendError
				require.True(t, errors.As(err, &be))
				assert.Equal(t, tt.wantMsg, be.Message)
				assert.Equal(t, tt.code, be.StatusCode)
			}
		})
	}
}

func TestUpload_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := NewHTTPClient(url, url, "")
	_, err := c.Upload(context.Background(), selected("f", []byte("data")), UploadHooks{})
	require.ErrorIs(t, err, common.ErrNetwork)
	assert.NotErrorIs(t, err, common.ErrBackendRejection)
}

func TestUpload_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, _ := NewHTTPClient(srv.URL, srv.URL, "")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.Upload(ctx, selected("f", []byte("data")), UploadHooks{})
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, common.ErrNetwork)
}

func TestUpload_OpenFailure(t *testing.T) {
	c, _ := NewHTTPClient("http://unused", "http://unused", "")
	file := &models.SelectedFile{Name: "f", Size: 1, Open: func() (io.ReadCloser, error) {
		return nil, errors.New("permission denied")
	}}
	_, err := c.Upload(context.Background(), file, UploadHooks{})
	require.ErrorContains(t, err, "permission denied")
}

func TestUpload_ShortBodyAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.Copy(io.Discard, r.Body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"path": "1-f"})
	}))
	defer srv.Close()

	c, err := NewHTTPClient(srv.URL, srv.URL, "")
	require.NoError(t, err)
	defer c.Close()

	file := selected("f", []byte("data"))
	file.Size = 10

	_, err = c.Upload(context.Background(), file, UploadHooks{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "file changed during upload")
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "ok", code: http.StatusOK, body: `{"data":[{"name":"p"}]}`},
		{name: "missing object", code: http.StatusInternalServerError, body: `{"error":"Object not found"}`, wantErr: common.ErrBackendRejection, wantMsg: "Object not found"},
		{name: "non json failure", code: http.StatusBadGateway, body: `oops`, wantErr: common.ErrBackendRejection, wantMsg: "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "application/json", r.Header.Get("Content-Type"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.code)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c, _ := NewHTTPClient(srv.URL, srv.URL, "")
			err := c.Delete(context.Background(), "1700-a.txt")
			assert.Equal(t, map[string]string{"path": "1700-a.txt"}, got)

			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			var be *BackendError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.wantMsg, be.Message)
		})
	}
}

func TestDelete_EmptyPath(t *testing.T) {
	c, _ := NewHTTPClient("http://unused", "http://unused", "")
	require.ErrorIs(t, c.Delete(context.Background(), "  "), common.ErrInvalidInput)
}

func startHealthServer(t *testing.T, st healthpb.HealthCheckResponse_ServingStatus) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", st)
	healthpb.RegisterHealthServer(srv, hs)

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return lis.Addr().String()
}

func TestPing(t *testing.T) {
	t.Run("serving", func(t *testing.T) {
		c, err := NewHTTPClient("", "", startHealthServer(t, healthpb.HealthCheckResponse_SERVING))
		require.NoError(t, err)
		defer c.Close()
		require.NoError(t, c.Ping(context.Background()))
	})

	t.Run("not serving", func(t *testing.T) {
		c, err := NewHTTPClient("", "", startHealthServer(t, healthpb.HealthCheckResponse_NOT_SERVING))
		require.NoError(t, err)
		defer c.Close()
		require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
	})

	t.Run("no address", func(t *testing.T) {
		c, err := NewHTTPClient("", "", "")
		require.NoError(t, err)
		require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
	})
}

func TestMapError(t *testing.T) {
	c := &HTTPClient{}

	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.Unavailable, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.DeadlineExceeded, "x")))
	require.NoError(t, c.mapError(nil))
	require.ErrorContains(t, c.mapError(errors.New("plain")), "rpc error:")
}
