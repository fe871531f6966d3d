package easyship

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-easyship/core"
	"github.com/goliatone/go-easyship/transport"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// APIVersion prefixes the versioned endpoints of the public API.
const APIVersion = "2023-01"

// Client sends authenticated requests to the Easyship API. Responses are
// returned raw; non-2xx statuses also produce an *APIError.
type Client struct {
	mu        sync.RWMutex
	token     string
	host      string
	userAgent string
	timeout   time.Duration
	maxBody   int64
	adapter   core.TransportAdapter
	logger    core.Logger
	metrics   core.MetricsRecorder
}

type ClientOption func(*Client)

func WithAPIHost(host string) ClientOption {
	return func(c *Client) {
		if host = strings.TrimSpace(host); host != "" {
			c.host = host
		}
	}
}

// WithHTTPClient swaps the HTTP client used by the default REST transport.
func WithHTTPClient(doer transport.HTTPDoer) ClientOption {
	return func(c *Client) {
		if doer != nil {
			c.adapter = transport.NewRESTAdapter(doer)
		}
	}
}

func WithTransport(adapter core.TransportAdapter) ClientOption {
	return func(c *Client) {
		if adapter != nil {
			c.adapter = adapter
		}
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(userAgent)
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithMaxResponseBodyBytes(limit int64) ClientOption {
	return func(c *Client) {
		if limit > 0 {
			c.maxBody = limit
		}
	}
}

func WithClientLogger(logger core.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithClientMetrics(recorder core.MetricsRecorder) ClientOption {
	return func(c *Client) {
		if recorder != nil {
			c.metrics = recorder
		}
	}
}

func NewClient(token string, opts ...ClientOption) *Client {
	client := &Client{
		token:     token,
		host:      core.DefaultAPIHost,
		userAgent: "go-easyship",
		maxBody:   core.DefaultMaxResponseBodyBytes,
		logger:    glog.Nop(),
		metrics:   core.NopMetricsRecorder{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.adapter == nil {
		client.adapter = transport.NewRESTAdapter(nil)
	}
	return client
}

// NewClientFromRuntime builds a client from the runtime's api config, logger
// and metrics. Options are applied last.
func NewClientFromRuntime(runtime *core.Runtime, opts ...ClientOption) *Client {
	cfg := runtime.Config().API
	base := []ClientOption{
		WithAPIHost(cfg.Host),
		WithUserAgent(cfg.UserAgent),
		WithTimeout(cfg.Timeout),
		WithMaxResponseBodyBytes(cfg.MaxResponseBodyBytes),
		WithClientLogger(runtime.Logger("easyship.client")),
		WithClientMetrics(runtime.Metrics()),
	}
	return NewClient(cfg.Token, append(base, opts...)...)
}

// SetAPIHost points the client at another host, such as a sandbox.
func (c *Client) SetAPIHost(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.host = strings.TrimSpace(host)
}

func (c *Client) APIHost() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.host
}

func (c *Client) SetHTTPClient(doer transport.HTTPDoer) {
	if doer == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adapter = transport.NewRESTAdapter(doer)
}

// BuildURI joins host and path with exactly one slash.
func BuildURI(host string, path string) string {
	return strings.TrimRight(host, "/") + "/" + strings.TrimLeft(path, "/")
}

// Request sends method to endpoint on the configured host. GET payloads are
// encoded into the query string and other payloads into a JSON body. An
// empty payload sends neither.
func (c *Client) Request(ctx context.Context, method string, endpoint string, payload Params) (res core.TransportResponse, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	c.mu.RLock()
	host, token, adapter := c.host, c.token, c.adapter
	c.mu.RUnlock()

	uri := BuildURI(host, endpoint)
	startedAt := time.Now()
	fields := map[string]any{"method": method, "endpoint": endpoint}
	defer func() {
		if res.StatusCode != 0 {
			fields["status_code"] = res.StatusCode
		}
		core.NewObserver(c.logger, c.metrics).Observe(ctx, startedAt, "api_request", err, fields)
	}()

	if strings.TrimSpace(endpoint) == "" {
		return core.TransportResponse{}, clientError("easyship: endpoint is required",
			goerrors.CategoryBadInput, http.StatusBadRequest, nil)
	}

	req := core.TransportRequest{
		Method:               method,
		URL:                  uri,
		Headers:              c.headers(token),
		Timeout:              c.timeout,
		MaxResponseBodyBytes: c.maxBody,
	}
	if len(payload) > 0 {
		if method == http.MethodGet {
			req.Query = EncodeQuery(payload)
		} else {
			body, marshalErr := json.Marshal(payload)
			if marshalErr != nil {
				return core.TransportResponse{}, goerrors.Wrap(marshalErr, goerrors.CategoryBadInput,
					"easyship: encode request payload").
					WithCode(http.StatusBadRequest).
					WithTextCode(core.ErrorBadInput)
			}
			req.Body = body
		}
	}

	res, err = adapter.Do(ctx, req)
	if err != nil {
		return res, err
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return res, &APIError{
			Method:     method,
			URL:        uri,
			StatusCode: res.StatusCode,
			Body:       res.Body,
		}
	}
	return res, nil
}

func (c *Client) headers(token string) map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + token,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	}
	if c.userAgent != "" {
		headers["User-Agent"] = c.userAgent
	}
	return headers
}
