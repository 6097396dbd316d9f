package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000/api"

// RequestIDHeader carries the per-call request ID.
const RequestIDHeader = "X-Request-ID"

const tracerName = "github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/platform/api"

// Caller is the subset of the client used by provider adapters and the
// assistant backend. It is satisfied by *Client.
type Caller interface {
	Get(ctx context.Context, operation, path string, query url.Values, out any) error
	Post(ctx context.Context, operation, path string, body, out any) error
}

// Client talks JSON to the console backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     logr.Logger
	tracer     trace.Tracer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets a bearer token sent with every request.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the HTTP timeout. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d, Transport: c.httpClient.Transport}
	}
}

// WithLogger sets the logger used for request tracing at V(1).
func WithLogger(l logr.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logr.Discard(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL all paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET request and decodes the JSON answer into out.
func (c *Client) Get(ctx context.Context, operation, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, operation, path, query, nil, out)
}

// Post issues a POST request with body encoded as JSON and decodes the answer into out.
// A json.RawMessage body is sent as-is.
func (c *Client) Post(ctx context.Context, operation, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, operation, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, operation, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, operation, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
			attribute.String("cloudweave.request_id", requestID),
		))
	defer func() {
		result := "success"
		if err != nil {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		recordAPICallMetric(operation, result, time.Since(start).Seconds())
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, merr := encodeBody(body)
		if merr != nil {
			return fmt.Errorf("failed to encode %s request: %w", operation, merr)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.V(1).Info("api request", "operation", operation, "method", method, "path", path, "requestID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", operation, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", operation, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	c.logger.V(1).Info("api response", "operation", operation, "status", resp.StatusCode,
		"requestID", requestID, "elapsed", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(operation, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

func encodeBody(body any) ([]byte, error) {
	if raw, ok := body.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return nil, fmt.Errorf("body is not valid JSON")
		}
		return raw, nil
	}
	return json.Marshal(body)
}
