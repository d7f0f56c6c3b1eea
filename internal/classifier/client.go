// Package classifier is the client for the external ML category
// classifier. The classifier looks at a campaign's uploaded art sample and
// predicts which advertising category it belongs to; the wizard compares
// that against the advertiser's self-declared category.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ignite/insert-planner/internal/pkg/httpretry"
)

// Config holds classifier service connection settings.
type Config struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Prediction is the classifier's verdict for one campaign.
type Prediction struct {
	CategoryID string  `json:"category_id"`
	Confidence float64 `json:"confidence"`
}

// Client calls the classifier service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a classifier client. Classification runs a model, so
// the timeout is generous.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: 120 * time.Second,
		}, 2),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// Classify asks the model to categorize the campaign's uploaded art file.
func (c *Client) Classify(ctx context.Context, campaignID, artFileKey string) (*Prediction, error) {
	payload := map[string]string{
		"campaign_id":  campaignID,
		"art_file_key": artFileKey,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/classify", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classify request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read classify response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("classifier error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var pred Prediction
	if err := json.Unmarshal(respBody, &pred); err != nil {
		return nil, fmt.Errorf("decode prediction: %w", err)
	}
	if pred.CategoryID == "" {
		return nil, fmt.Errorf("classifier returned no category")
	}
	return &pred, nil
}
