package connector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/modxel/internal/infrastructure/logging"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/modxel/internal/store"
)

// Request outcomes reported to metrics
const (
	outcomeOK           = "ok"
	outcomeUnauthorized = "unauthorized"
	outcomeRejected     = "rejected"
	outcomeHTTPError    = "http_error"
	outcomeTransport    = "transport_error"
	outcomeDecode       = "decode_error"
	outcomeCircuitOpen  = "circuit_open"
)

// SessionStore is the part of the settings store the client needs
type SessionStore interface {
	String(key string) string
	Set(key string, value any)
	Persist() error
}

// Options configures the client
type Options struct {
	ConnectorPath     string
	LoginPath         string
	SessionCookie     string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	// BreakerFailures opens the circuit breaker after that many consecutive
	// transport failures. Zero leaves the breaker off, so every request is
	// sent.
	BreakerFailures int
	BreakerCooldown time.Duration
}

// DefaultOptions returns the stock MODX connector layout
func DefaultOptions() Options {
	return Options{
		ConnectorPath: "/connectors/index.php",
		LoginPath:     "/connectors/",
		SessionCookie: "PHPSESSID",
		UserAgent:     "modxel/1.0",
		Timeout:       30 * time.Second,
		Burst:         1,
	}
}

// Client issues authenticated connector requests
type Client struct {
	resty   *resty.Client
	store   SessionStore
	limiter *rate.Limiter
	breaker *resilience.Breaker
	opts    Options
	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer

	// serializes cookie rotation against concurrent requests
	mu sync.Mutex
}

// New creates a client reading and rotating session state through s
func New(s SessionStore, opts Options, logger *logging.Logger, metrics *monitoring.Metrics) *Client {
	defaults := DefaultOptions()
	if opts.ConnectorPath == "" {
		opts.ConnectorPath = defaults.ConnectorPath
	}
	if opts.LoginPath == "" {
		opts.LoginPath = defaults.LoginPath
	}
	if opts.SessionCookie == "" {
		opts.SessionCookie = defaults.SessionCookie
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	// Pooled transport only; each request is sent exactly once
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json")
	restyClient.SetTransport(retryClient.HTTPClient.Transport)
	// The session cookie lives in the store, never in a jar
	restyClient.SetCookieJar(nil)

	return &Client{
		resty:   restyClient,
		store:   s,
		limiter: newLimiter(opts.RequestsPerSecond, opts.Burst),
		breaker: newBreaker(opts, logger, metrics),
		opts:    opts,
		logger:  logger.Named("connector"),
		metrics: metrics,
	}
}

// newBreaker returns nil unless a failure threshold is configured
func newBreaker(opts Options, logger *logging.Logger, metrics *monitoring.Metrics) *resilience.Breaker {
	if opts.BreakerFailures <= 0 {
		return nil
	}
	return resilience.New("connector", resilience.Settings{
		Threshold: opts.BreakerFailures,
		Cooldown:  opts.BreakerCooldown,
		IsFailure: resilience.TransportFailure,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.SetBreakerState(name, int(to))
		},
	})
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// WithTracer records every request as a span of the caller's trace
func (c *Client) WithTracer(tracer *tracing.Tracer) *Client {
	c.tracer = tracer
	return c
}

// Options returns the effective options
func (c *Client) Options() Options {
	return c.opts
}

// Breaker exposes the transport circuit breaker, nil when disabled
func (c *Client) Breaker() *resilience.Breaker {
	return c.breaker
}

// Call posts action to the connector endpoint
func (c *Client) Call(ctx context.Context, action string, params url.Values) (*Envelope, error) {
	return c.Request(ctx, c.opts.ConnectorPath, action, params)
}

// Login posts security/login to the login endpoint of address. The address
// is not stored; the caller saves it once the login succeeds.
func (c *Client) Login(ctx context.Context, address string, params url.Values) (*Envelope, error) {
	return c.send(ctx, address, c.opts.LoginPath, "security/login", params)
}

// Request posts action with params to path under the stored base URL.
// Exactly one HTTP request is issued.
func (c *Client) Request(ctx context.Context, path, action string, params url.Values) (*Envelope, error) {
	return c.send(ctx, c.store.String(store.KeyServerAddress), path, action, params)
}

func (c *Client) send(ctx context.Context, base, path, action string, params url.Values) (*Envelope, error) {
	span, ctx := c.tracer.StartSpan(ctx, action)
	env, err := c.request(ctx, span, base, path, action, params)
	span.SetError(err)
	c.tracer.Finish(span)
	return env, err
}

func (c *Client) request(ctx context.Context, span *tracing.Span, base, path, action string, params url.Values) (*Envelope, error) {
	if base == "" {
		return nil, ErrNoServerConfigured
	}

	endpoint, err := resolve(base, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	cookie := c.store.String(store.KeyServerSession)
	token := c.store.String(store.KeyServerToken)

	form := make(url.Values, len(params)+2)
	for k, v := range params {
		form[k] = append([]string(nil), v...)
	}
	form.Set("action", action)
	form.Set("HTTP_MODAUTH", token)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	req := c.resty.R().
		SetContext(ctx).
		SetFormDataFromValues(form)
	if cookie != "" {
		req.SetHeader("Cookie", cookie)
	}
	if token != "" {
		req.SetHeader("modAuth", token)
	}

	start := time.Now()
	resp, err := resilience.Do(c.breaker, func() (*resty.Response, error) {
		return req.Post(endpoint)
	})
	elapsed := time.Since(start)
	if err != nil {
		outcome := outcomeTransport
		if errors.Is(err, resilience.ErrCircuitOpen) {
			outcome = outcomeCircuitOpen
		}
		c.metrics.RecordRequest(action, outcome, elapsed)
		c.logger.Debug("request failed",
			zap.String("action", action),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	if err := c.rotate(resp.Cookies()); err != nil {
		c.logger.Warn("failed to persist session cookie", zap.Error(err))
	}

	status := resp.StatusCode()
	span.SetTag("status", strconv.Itoa(status))
	c.logger.Debug("request completed",
		zap.String("action", action),
		zap.Int("status", status),
		zap.Duration("duration", elapsed))

	if status == http.StatusUnauthorized {
		c.metrics.RecordRequest(action, outcomeUnauthorized, elapsed)
		return nil, ErrUnauthorized
	}
	if status < 200 || status > 299 {
		c.metrics.RecordRequest(action, outcomeHTTPError, elapsed)
		return nil, &HTTPError{Action: action, Status: status}
	}

	env, err := DecodeEnvelope(resp.Body())
	if err != nil {
		c.metrics.RecordRequest(action, outcomeDecode, elapsed)
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	if !env.Success {
		if env.Code() == "401" {
			c.metrics.RecordRequest(action, outcomeUnauthorized, elapsed)
			return nil, ErrUnauthorized
		}
		c.metrics.RecordRequest(action, outcomeRejected, elapsed)
		return nil, &APIError{Action: action, Message: env.FirstMessage(), Envelope: env}
	}

	c.metrics.RecordRequest(action, outcomeOK, elapsed)
	return env, nil
}

// rotate stores the session cookie carried by a response, if any
func (c *Client) rotate(cookies []*http.Cookie) error {
	for _, ck := range cookies {
		if ck.Name != c.opts.SessionCookie {
			continue
		}
		value := ck.Name + "=" + ck.Value

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.store.String(store.KeyServerSession) == value {
			return nil
		}
		c.store.Set(store.KeyServerSession, value)
		c.metrics.IncSessionRotated()
		return c.store.Persist()
	}
	return nil
}

func resolve(base, path string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server address %q: %w", base, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return "", fmt.Errorf("invalid server address %q", base)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid connector path %q: %w", path, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}
