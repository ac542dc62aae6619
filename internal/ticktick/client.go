package ticktick

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/ticktick-mcp/internal/instrumentation"
	"github.com/teemow/ticktick-mcp/internal/logging"
)

// userAgent is sent with every request; the open API rejects some default agents.
const userAgent = "curl/8.7.1"

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 10 << 20

// TokenSource supplies bearer tokens. Refresh is called with the token the API
// rejected and returns its replacement.
type TokenSource interface {
	ValidToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context, rejected string) (string, error)
}

// Client calls the TickTick open API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
	location   *time.Location
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithMetrics enables API operation metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithLocation sets the user time zone used to normalize naive dates.
func WithLocation(loc *time.Location) Option {
	return func(cl *Client) { cl.location = loc }
}

// NewClient returns a client for the API at baseURL, for example
// https://api.ticktick.com/open/v1.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
		location:   time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the user time zone.
func (c *Client) Location() *time.Location {
	return c.location
}

// do performs one API operation, decoding a JSON response into out when out
// is non-nil. A 401 triggers one token refresh and one retry.
func (c *Client) do(ctx context.Context, service, operation, method, path string, body, out any) error {
	ctx, span := instrumentation.StartTickTickAPISpan(ctx, service, operation,
		attribute.String("http.method", method),
		attribute.String("http.route", instrumentation.NormalizeAPIPath(path)),
	)
	defer span.End()

	start := time.Now()
	err := c.roundTrip(ctx, method, path, body, out)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	if c.metrics != nil {
		c.metrics.RecordAPICall(ctx, service, operation, path, status, duration)
	}

	c.logger.Debug("ticktick API call",
		logging.Operation(service+"."+operation),
		"method", method,
		"route", instrumentation.NormalizeAPIPath(path),
		"duration", duration,
		logging.Err(err))
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
	}

	token, err := c.tokens.ValidToken(ctx)
	if err != nil {
		return err
	}

	status, respBody, err := c.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		unauthorized := newRemoteAPIError(method, path, status, respBody)
		c.logger.Info("access token rejected, refreshing", "route", instrumentation.NormalizeAPIPath(path))

		token, err = c.tokens.Refresh(ctx, token)
		if err != nil {
			return errors.WithSecondaryError(err, unauthorized)
		}
		status, respBody, err = c.send(ctx, method, path, payload, token)
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		return newRemoteAPIError(method, path, status, respBody)
	}
	if status == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "failed to decode response of %s %s", method, path)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "ticktick API %s %s failed", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, nil, errors.Wrapf(err, "failed to read response of %s %s", method, path)
	}
	return resp.StatusCode, data, nil
}
