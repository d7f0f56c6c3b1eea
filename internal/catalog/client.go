// Package catalog is the client for the remote booking API: categories,
// insert-print types, the print price matrix, program availability and
// payment submission. Payloads are loosely typed and decoded defensively;
// the availability payload is handed to the availability package raw.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ignite/insert-planner/internal/domain"
	"github.com/ignite/insert-planner/internal/pkg/httpretry"
)

// Config holds catalog API connection settings.
type Config struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Client is the booking API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a booking API client with retrying transport.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: 30 * time.Second,
		}, 3),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// doRequest performs an authenticated request against the booking API.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// Categories returns the advertising category catalog. Entry names arrive
// under any of category/name/label/title depending on API generation.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/v1/categories", nil)
	if err != nil {
		return nil, err
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	var out []domain.Category
	for _, entry := range raw {
		id := stringField(entry, "id")
		if id == "" {
			continue
		}
		out = append(out, domain.Category{
			ID:   id,
			Name: firstString(entry, "category", "name", "label", "title"),
		})
	}
	return out, nil
}

// PrintTypes returns the insert-print format catalog.
func (c *Client) PrintTypes(ctx context.Context) ([]domain.PrintType, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/v1/insert-print-types", nil)
	if err != nil {
		return nil, err
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode print types: %w", err)
	}

	var out []domain.PrintType
	for _, entry := range raw {
		id := firstString(entry, "id", "code")
		if id == "" {
			continue
		}
		out = append(out, domain.PrintType{
			ID:   id,
			Name: firstString(entry, "name", "label"),
		})
	}
	return out, nil
}

// PrintPriceMatrix fetches the quantity-threshold → unit-price schedule
// for a print format. Thresholds arrive as JSON object keys; keys that
// don't parse as integers are dropped.
func (c *Client) PrintPriceMatrix(ctx context.Context, format string) (map[int]float64, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/v1/print-price-matrix/"+url.PathEscape(format), nil)
	if err != nil {
		return nil, err
	}

	var raw map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode print price matrix: %w", err)
	}

	schedule := make(map[int]float64, len(raw))
	for key, price := range raw {
		threshold, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		schedule[threshold] = price
	}
	return schedule, nil
}

// AvailabilityRequest asks for availability across a set of channels.
type AvailabilityRequest struct {
	ChannelIDs []string `json:"channel_ids"`
	CategoryID string   `json:"category_id"`
	CampaignID string   `json:"campaign_id,omitempty"`
}

// Availability fetches the raw availability payload for the given
// channels. The shape varies by API generation, so the caller normalizes
// it rather than this client decoding to structs.
func (c *Client) Availability(ctx context.Context, req AvailabilityRequest) (interface{}, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/v1/availability", req)
	if err != nil {
		return nil, err
	}

	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode availability: %w", err)
	}
	return raw, nil
}

// PaymentRequest submits a campaign's total for processing.
type PaymentRequest struct {
	CampaignID string  `json:"campaign_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Method     string  `json:"method"`
	Token      string  `json:"token"`
}

// PaymentReceipt is the processor's acknowledgement.
type PaymentReceipt struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// SubmitPayment hands the campaign total to the payment processor. No
// business-level retry: a failure surfaces once and the user re-triggers.
func (c *Client) SubmitPayment(ctx context.Context, req PaymentRequest) (*PaymentReceipt, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/v1/payments", req)
	if err != nil {
		return nil, err
	}

	var receipt PaymentReceipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("decode payment receipt: %w", err)
	}
	return &receipt, nil
}

func stringField(obj map[string]interface{}, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// firstString probes aliases in priority order and returns the first
// non-empty value.
func firstString(obj map[string]interface{}, aliases ...string) string {
	for _, alias := range aliases {
		if s := stringField(obj, alias); s != "" {
			return s
		}
	}
	return ""
}
