package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL points at the public ipapi.co endpoint.
const DefaultBaseURL = "https://ipapi.co"

const defaultTimeout = 10 * time.Second

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client resolves country codes via an ipapi.co style JSON endpoint.
type Client struct {
	baseURL string
	client  HTTPDoer
}

// NewClient builds client. Empty baseURL uses the public service; nil doer uses a
// default http.Client with a timeout.
func NewClient(baseURL string, client HTTPDoer) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type lookupResponse struct {
	CountryCode string `json:"country_code"`
}

// CountryCode looks up the country for the given IP. An empty IP asks the service
// about the caller itself.
func (c *Client) CountryCode(ctx context.Context, ip string) (string, error) {
	path := "/json/"
	if trimmed := strings.TrimSpace(ip); trimmed != "" {
		path = "/" + trimmed + "/json/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("geoip: unexpected status %d", resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("geoip: decode response: %w", err)
	}
	if payload.CountryCode == "" {
		return "", errors.New("geoip: response missing country_code")
	}
	return payload.CountryCode, nil
}
