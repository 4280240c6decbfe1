package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/client/models"
	"github.com/dmitrijs2005/gophdrop/internal/common"
	"github.com/dmitrijs2005/gophdrop/internal/netx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const maxResponseBody = 1 << 20

// HTTPClient talks to the upload gateway over HTTP and checks its liveness
// through the gRPC health service.
type HTTPClient struct {
	uploadURL  string
	deleteURL  string
	healthAddr string

	httpClient *http.Client
	conn       *grpc.ClientConn
	health     healthpb.HealthClient
}

// NewHTTPClient builds a client for the given endpoints. healthAddr may be
// empty, in which case Ping always reports ErrUnavailable.
func NewHTTPClient(uploadURL, deleteURL, healthAddr string) (*HTTPClient, error) {
	c := &HTTPClient{
		uploadURL:  uploadURL,
		deleteURL:  deleteURL,
		healthAddr: healthAddr,
		httpClient: &http.Client{},
	}
	if err := c.initHealthClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *HTTPClient) initHealthClient() error {
	if c.healthAddr == "" {
		return nil
	}
	conn, err := grpc.NewClient(c.healthAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("health client: %w", err)
	}
	c.conn = conn
	c.health = healthpb.NewHealthClient(conn)
	return nil
}

func (c *HTTPClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	if c.health == nil {
		return ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return c.mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// gatewayResponse covers both success and error bodies of the gateway.
type gatewayResponse struct {
	Path      string `json:"path"`
	PublicURL string `json:"publicUrl"`
	URL       string `json:"url"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

func (r gatewayResponse) errorMessage() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}

// Upload streams file as a multipart form to the upload endpoint.
//
// A transport failure matches common.ErrNetwork, a rejection is a
// *BackendError, and a 2xx body that cannot be used matches
// common.ErrMalformedResponse. Cancelling ctx returns ctx.Err().
func (c *HTTPClient) Upload(ctx context.Context, file *models.SelectedFile, hooks UploadHooks) (*models.UploadAck, error) {
	if file == nil || file.Open == nil {
		return nil, common.ErrInvalidInput
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Name, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	body := netx.NewProgressReader(src, file.Size, hooks.OnProgress)

	written := make(chan struct{})
	go func() {
		defer close(written)
		defer src.Close()
		pw.CloseWithError(writeMultipart(mw, file, body, hooks.OnAccepted))
	}()
	defer func() {
		pr.Close()
		<-written
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, pr)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	return decodeUploadResponse(resp)
}

// writeMultipart writes the form into a pipe. The part header write returns
// only once the transport has read it, which is when onAccepted fires. A body
// that yields a different byte count than file.Size aborts the request.
func writeMultipart(mw *multipart.Writer, file *models.SelectedFile, body *netx.ProgressReader, onAccepted func()) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, common.UploadFormField, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if onAccepted != nil {
		onAccepted()
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	if n := body.BytesRead(); n != file.Size {
		return fmt.Errorf("%s: read %d of %d bytes, file changed during upload", file.Name, n, file.Size)
	}
	return mw.Close()
}

func decodeUploadResponse(resp *http.Response) (*models.UploadAck, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", common.ErrNetwork, err)
	}

	var body gatewayResponse
	decodeErr := json.Unmarshal(raw, &body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := body.errorMessage()
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if msg == "" {
			msg = fmt.Sprintf("Status %d", resp.StatusCode)
		}
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedResponse, decodeErr)
	}
	if msg := body.errorMessage(); msg != "" {
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: msg}
	}
	if body.Path == "" {
		return nil, fmt.Errorf("%w: missing path", common.ErrMalformedResponse)
	}

	publicURL := body.PublicURL
	if publicURL == "" {
		publicURL = body.URL
	}
	return &models.UploadAck{Path: body.Path, PublicURL: publicURL}, nil
}

// Delete asks the gateway to remove the object stored under path.
func (c *HTTPClient) Delete(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return common.ErrInvalidInput
	}

	payload, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.deleteURL, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return nil
	}

	var body gatewayResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	msg := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		msg = body.errorMessage()
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &BackendError{StatusCode: resp.StatusCode, Message: msg}
}
