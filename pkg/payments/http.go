package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	methodAddress = "address"
	methodContact = "contact"
	methodEmail   = "email"
)

// HTTPClient talks to a wallet runtime over its JSON API.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// HTTPClientOption configures an HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(c *http.Client) HTTPClientOption {
	return func(h *HTTPClient) {
		h.httpClient = c
	}
}

// WithAPIKey sets the bearer token sent to the wallet runtime.
func WithAPIKey(key string) HTTPClientOption {
	return func(h *HTTPClient) {
		h.apiKey = key
	}
}

// NewHTTPClient creates a wallet client for the runtime at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPClientOption) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("payments: base URL is required")
	}

	h := &HTTPClient{
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// SendToAddress pays a blockchain wallet address.
func (h *HTTPClient) SendToAddress(ctx context.Context, address string, req Request) (*Receipt, error) {
	return h.send(ctx, methodAddress, address, req)
}

// SendToContact pays a saved contact by name.
func (h *HTTPClient) SendToContact(ctx context.Context, contact string, req Request) (*Receipt, error) {
	return h.send(ctx, methodContact, contact, req)
}

// SendToEmail pays a recipient identified by email.
func (h *HTTPClient) SendToEmail(ctx context.Context, email string, req Request) (*Receipt, error) {
	return h.send(ctx, methodEmail, email, req)
}

type sendPayload struct {
	Method      string  `json:"method"`
	Destination string  `json:"destination"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Memo        string  `json:"memo,omitempty"`
}

func (h *HTTPClient) send(ctx context.Context, method, destination string, req Request) (*Receipt, error) {
	if destination == "" {
		return nil, fmt.Errorf("payments: destination is required")
	}

	body, err := json.Marshal(sendPayload{
		Method:      method,
		Destination: destination,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Memo:        req.Memo,
	})
	if err != nil {
		return nil, fmt.Errorf("payments: failed to marshal request: %w", err)
	}

	url := h.baseURL + "/payments"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payments: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payments: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrDeclined, string(detail))
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payments: wallet returned status %d: %s", resp.StatusCode, string(detail))
	}

	var receipt Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("payments: failed to decode receipt: %w", err)
	}
	return &receipt, nil
}
