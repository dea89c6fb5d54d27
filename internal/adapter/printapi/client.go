// Package printapi is the Go client for the printdesk HTTP API. It is used by
// the bulkwatch CLI and carries no session state: every call takes the
// credential explicitly.
package printapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/printware/printdesk/internal/domain/model"
	"github.com/printware/printdesk/internal/poller"
)

// ErrMissingCredential short-circuits authenticated calls before any request
// is made.
var ErrMissingCredential = errors.New("missing credential")

// Credential is an opaque auth token obtained from Login.
type Credential string

const authCookie = "printdesk_token"

// TransportError reports a non-success HTTP status without an API message.
type TransportError struct {
	StatusCode int
}

func (e TransportError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// APIError carries the server-side failure message from the response envelope.
type APIError struct {
	Message string
}

func (e APIError) Error() string {
	return e.Message
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// BulkStatusPayload mirrors the bulk order status JSON served by the API.
type BulkStatusPayload struct {
	BulkOrderID     string `json:"bulk_order_id"`
	Status          string `json:"status"`
	OrderNumber     string `json:"order_number"`
	DistinctDesigns int    `json:"distinct_designs"`
	TotalCopies     int    `json:"total_copies"`
	ParentOrderID   *int64 `json:"parent_order_id,omitempty"`
	FailureReason   string `json:"failure_reason,omitempty"`
}

func (p *BulkStatusPayload) toModel() *model.BulkStatus {
	return &model.BulkStatus{
		BulkOrderID:     p.BulkOrderID,
		Status:          model.BulkOrderStatus(p.Status),
		OrderNumber:     p.OrderNumber,
		DistinctDesigns: p.DistinctDesigns,
		TotalCopies:     p.TotalCopies,
		ParentOrderID:   p.ParentOrderID,
		FailureReason:   p.FailureReason,
	}
}

type authRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// HTTPClient talks to a printdesk server.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates the API client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("server url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (c *HTTPClient) endpoint(parts ...string) string {
	u := *c.baseURL
	u.Path = path.Join(append([]string{u.Path}, parts...)...)
	return u.String()
}

// Login authenticates and returns the session credential.
func (c *HTTPClient) Login(ctx context.Context, login, password string) (Credential, error) {
	payload, err := json.Marshal(authRequest{Login: login, Password: password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/user/login"), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", TransportError{StatusCode: resp.StatusCode}
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == authCookie {
			return Credential(cookie.Value), nil
		}
	}
	return "", errors.New("login response missing auth cookie")
}

// UploadBulk submits a composite manifest file and returns the initial
// UPLOADED snapshot.
func (c *HTTPClient) UploadBulk(ctx context.Context, cred Credential, filename string, manifest io.Reader) (*model.BulkStatus, error) {
	if cred == "" {
		return nil, ErrMissingCredential
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("manifest", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, manifest); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/bulk-orders/upload"), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req, cred)

	return c.doBulkStatus(req)
}

// BulkStatus fetches the current snapshot of one bulk order.
func (c *HTTPClient) BulkStatus(ctx context.Context, cred Credential, bulkOrderID string) (*model.BulkStatus, error) {
	if cred == "" {
		return nil, ErrMissingCredential
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/bulk-orders/", bulkOrderID, "/status"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req, cred)

	return c.doBulkStatus(req)
}

// CancelBulk requests cancellation; a record already in a terminal state comes
// back unchanged.
func (c *HTTPClient) CancelBulk(ctx context.Context, cred Credential, bulkOrderID string) (*model.BulkStatus, error) {
	if cred == "" {
		return nil, ErrMissingCredential
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/bulk-orders/", bulkOrderID, "/cancel"), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req, cred)

	return c.doBulkStatus(req)
}

// StatusFetcher binds client, credential and subject into a poller fetch
// function.
func (c *HTTPClient) StatusFetcher(cred Credential, bulkOrderID string) poller.FetchFunc {
	return func(ctx context.Context) (*model.BulkStatus, error) {
		return c.BulkStatus(ctx, cred, bulkOrderID)
	}
}

func (c *HTTPClient) authorize(req *http.Request, cred Credential) {
	req.AddCookie(&http.Cookie{Name: authCookie, Value: string(cred)})
}

func (c *HTTPClient) doBulkStatus(req *http.Request) (*model.BulkStatus, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if jsonErr := json.Unmarshal(raw, &env); jsonErr != nil || (resp.StatusCode >= 300 && env.Message == "") {
		if resp.StatusCode >= 300 {
			return nil, TransportError{StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("decode response: %w", jsonErr)
	}
	if !env.Success {
		return nil, APIError{Message: env.Message}
	}

	var payload BulkStatusPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("decode bulk status: %w", err)
	}
	return payload.toModel(), nil
}
