package pricing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTimeout  = 30 * time.Second
	maxErrorBody    = 4 << 10
	maxResponseBody = 16 << 20
)

// APIError is a non-2xx response from the pricing API. The body is
// truncated; it exists for log lines, not for parsing.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pricing api: status %d: %s", e.StatusCode, e.Body)
}

// Client calls the upstream pricing API.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

// FetchPrices requests the price listing for one procedure in one metro
// area and returns the raw response payload.
func (c *Client) FetchPrices(ctx context.Context, procedureID, metroSlug, priceType string) ([]byte, error) {
	q := url.Values{}
	q.Set("metro", metroSlug)
	q.Set("price_type", priceType)
	u := fmt.Sprintf("%s/v1/procedures/%s/prices?%s", c.baseURL, url.PathEscape(procedureID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build pricing request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pricing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read pricing response: %w", err)
	}

	c.log.Debug().
		Str("procedure_id", procedureID).
		Str("metro", metroSlug).
		Str("price_type", priceType).
		Int("bytes", len(payload)).
		Str("duration", time.Since(start).String()).
		Msg("pricing api fetch")
	return payload, nil
}
