package feed

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client provides access to the Irish Rail realtime API.
type Client struct {
	url       string
	namespace string
	http      *resty.Client
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// DefaultTimeout applies when no positive timeout is configured.
const DefaultTimeout = 30 * time.Second

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new feed client. The base URL doubles as the XML namespace.
func NewClient(baseURL, positionsPath string, opts ...ClientOption) *Client {
	c := &Client{
		url:       baseURL + positionsPath,
		namespace: baseURL,
		http:      resty.New(),
		logger:    slog.Default(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	c.http.
		SetRetryCount(0).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/xml").
		SetLogger(restyLogger{c.logger})

	return c
}

// WithTimeout sets the HTTP request timeout. Zero keeps the default.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client. Its own Timeout is replaced by the
// client timeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc)
	}
}

// WithNamespace overrides the XML namespace expected on vehicle fields.
func WithNamespace(ns string) ClientOption {
	return func(c *Client) {
		c.namespace = ns
	}
}

// WithClock sets the source of poll timestamps.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// URL returns the positions endpoint.
func (c *Client) URL() string {
	return c.url
}

// restyLogger routes resty's internal messages through slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
