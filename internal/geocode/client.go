package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public Nominatim search endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	resultLimit    = 5
	requestTimeout = 5 * time.Second
)

// Client queries a Nominatim-compatible geocoding API. The upstream enforces a
// one-request-per-second policy, so every call waits on the shared limiter first.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewClient creates a geocoding client for the given base URL. The userAgent is
// mandatory for the public Nominatim instance.
func NewClient(baseURL, userAgent string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		log:        log.With().Str("component", "geocode").Logger(),
	}
}

// Search resolves a free-text place query to structured results via
// GET /search?q=...&format=json&addressdetails=1. Cancellation of ctx is
// reported as the context error so callers can distinguish an abort from a
// genuine upstream failure.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("addressdetails", "1")
	params.Add("limit", fmt.Sprint(resultLimit))

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("geocode: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Msg("geocoding upstream error")
		return nil, fmt.Errorf("geocode: upstream status %d", resp.StatusCode)
	}

	var results []Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("geocode: failed to decode payload: %w", err)
	}

	return results, nil
}
