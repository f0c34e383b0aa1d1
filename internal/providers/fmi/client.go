package fmi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
)

// API Docs: https://en.ilmatieteenlaitos.fi/open-data-manual-fmi-wfs-services
// Sample request: https://opendata.fmi.fi/wfs?service=WFS&version=2.0.0&request=GetFeature&storedquery_id=fmi::observations::weather::simple&parameters=t2m,ws_10min&latest=true
const (
	DefaultBaseURL = "https://opendata.fmi.fi/wfs"
	DefaultTimeout = 30 * time.Second
)

// maxErrorBody caps how much of an error response is copied into the error
const maxErrorBody = 512

// ErrUpstreamStatus is returned when the service answers with a non-2xx status
var ErrUpstreamStatus = errors.New("upstream returned non-success status")

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a client that accepts gzip encoded responses and gives
// up on a request after timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return NewClientWithHTTPClient(&http.Client{
		Timeout:   timeout,
		Transport: gzhttp.Transport(http.DefaultTransport),
	}, baseURL, logger)
}

// NewClientWithHTTPClient creates a client around an existing http.Client
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger.With("component", "fmi-client"),
	}
}

// GetFeature runs a stored query and returns the wfs:member elements of the response
func (c *Client) GetFeature(ctx context.Context, query StoredQuery) ([]Member, error) {
	u, err := c.featureURL(query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug("fetching FMI stored query", "storedquery_id", query.ID, "url", u)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to fetch FMI stored query",
			"storedquery_id", query.ID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("FMI WFS returned error",
			"storedquery_id", query.ID,
			"status_code", resp.StatusCode,
			"response_body", string(body),
		)
		return nil, fmt.Errorf("%w: fetch returned status %d: %s", ErrUpstreamStatus, resp.StatusCode, string(body))
	}

	members, err := ParseMembers(resp.Body)
	if err != nil {
		c.logger.Error("failed to parse FMI response",
			"storedquery_id", query.ID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	c.logger.Debug("successfully fetched FMI stored query",
		"storedquery_id", query.ID,
		"member_count", len(members),
		"duration", time.Since(start),
	)

	return members, nil
}

func (c *Client) featureURL(query StoredQuery) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("service", "WFS")
	q.Set("version", "2.0.0")
	q.Set("request", "GetFeature")
	q.Set("storedquery_id", query.ID)
	if len(query.Parameters) > 0 {
		q.Set("parameters", strings.Join(query.Parameters, ","))
	}
	for key, values := range query.Extra {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// IsTimeout reports whether err was caused by the request deadline expiring
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
