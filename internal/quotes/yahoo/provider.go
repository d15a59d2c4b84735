// Package yahoo reads daily closes from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Provider fetches chart data over HTTP
type Provider struct {
	baseURL string
	client  *http.Client
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*decimal.Decimal `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// NewProvider returns a Provider. An empty baseURL uses the public endpoint.
func NewProvider(baseURL string) *Provider {
	resolved := strings.TrimRight(baseURL, "/")
	if resolved == "" {
		resolved = defaultBaseURL
	}
	return &Provider{
		baseURL: resolved,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// DailyCloses returns the non-null daily closes for the last months, oldest first
func (p *Provider) DailyCloses(ctx context.Context, code string, months int) ([]decimal.Decimal, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("yahoo: empty code")
	}
	if months <= 0 {
		months = 1
	}

	endpoint, err := url.Parse(p.baseURL + "/v8/finance/chart/" + url.PathEscape(code))
	if err != nil {
		return nil, err
	}
	query := endpoint.Query()
	query.Set("range", fmt.Sprintf("%dmo", months))
	query.Set("interval", "1d")
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (carteira-dashboard)")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("yahoo error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("yahoo: failed to decode chart for %s: %w", code, err)
	}
	if e := payload.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo error: %s: %s", e.Code, e.Description)
	}

	var closes []decimal.Decimal
	for _, result := range payload.Chart.Result {
		for _, q := range result.Indicators.Quote {
			for _, c := range q.Close {
				if c == nil {
					continue
				}
				closes = append(closes, *c)
			}
		}
	}
	return closes, nil
}
