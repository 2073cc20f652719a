package ratefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnavailable covers an unreachable feed or a non-200 response. Callers
// treat it as rate-not-found for the affected date only.
var ErrUnavailable = errors.New("rate feed unavailable")

// Rate is one currency entry from the daily feed. The feed quotes Rate base
// units per Quantity units of the currency.
type Rate struct {
	Code     string          `json:"code"`
	Quantity int             `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
}

type dayRecord struct {
	Date       string `json:"date"`
	Currencies []Rate `json:"currencies"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RatesForDate fetches the full set of daily rates for one calendar date.
func (c *Client) RatesForDate(ctx context.Context, date time.Time) ([]Rate, error) {
	url := fmt.Sprintf("%s?date=%s", c.baseURL, date.Format("2006-01-02"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	var records []dayRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty feed response", ErrUnavailable)
	}
	return records[0].Currencies, nil
}
