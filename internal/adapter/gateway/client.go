package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/printware/printdesk/internal/usecase"
)

// ErrReferenceUnknown indicates the gateway doesn't know the checkout reference.
var ErrReferenceUnknown = errors.New("checkout reference unknown")

// HTTPGateway implements usecase.PaymentGateway over the external provider's
// HTTP API.
type HTTPGateway struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type initializeRequest struct {
	OrderNumber string  `json:"order_number"`
	Amount      float64 `json:"amount"`
}

type initializeResponse struct {
	Reference   string  `json:"reference"`
	CheckoutURL string  `json:"checkout_url"`
	Amount      float64 `json:"amount"`
}

type verifyResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// NewHTTPGateway creates the payment gateway client with default timeout.
func NewHTTPGateway(baseURL string, logger *slog.Logger) (*HTTPGateway, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &HTTPGateway{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Initialize opens a checkout session for the given order and amount.
func (g *HTTPGateway) Initialize(ctx context.Context, orderNumber string, amount float64) (*usecase.CheckoutSession, error) {
	payload, err := json.Marshal(initializeRequest{OrderNumber: orderNumber, Amount: amount})
	if err != nil {
		return nil, err
	}

	endpoint := *g.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/checkout")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		g.logger.Error("gateway initialize failed",
			slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("gateway error: %s", resp.Status)
	}

	var data initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	return &usecase.CheckoutSession{
		Reference:   data.Reference,
		CheckoutURL: data.CheckoutURL,
		Amount:      data.Amount,
	}, nil
}

// Verify asks the gateway whether the checkout reference was paid. It returns
// false without error for an explicit failed/abandoned checkout; transport and
// unknown-reference problems come back as errors.
func (g *HTTPGateway) Verify(ctx context.Context, reference string) (bool, error) {
	endpoint := *g.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/checkout/", reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var data verifyResponse
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return false, err
		}
		return data.Status == "paid", nil
	case http.StatusNotFound:
		return false, ErrReferenceUnknown
	default:
		body, _ := io.ReadAll(resp.Body)
		g.logger.Error("gateway verify failed",
			slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return false, fmt.Errorf("gateway error: %s", resp.Status)
	}
}
