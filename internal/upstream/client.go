// Package upstream fetches the external JSON document relayed on the data route.
package upstream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/isometry/traffic-dash/internal/helpers"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 10 << 20
)

// Client performs one GET per Fetch against a fixed URL. It holds no per-request state and is safe for concurrent use.
type Client struct {
	url          string
	timeout      time.Duration
	maxBodyBytes int64
	httpClient   *http.Client
	logger       *slog.Logger
	degraded     *rate.Sometimes
}

// New returns a Client for the configured URL. The URL must be absolute http or https.
func New(opts ...Option) (*Client, error) {
	_inst := &Client{
		timeout:      defaultTimeout,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.httpClient == nil {
		_inst.httpClient = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	_inst.degraded = helpers.OnceAMinute()

	u, err := url.Parse(_inst.url)
	if err != nil {
		return nil, errors.Wrap(err, "invalid upstream URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, errors.Errorf("invalid upstream URL %q: want an absolute http(s) URL", _inst.url)
	}
	return _inst, nil
}

// URL returns the fetched endpoint.
func (c *Client) URL() string {
	return c.url
}

// Fetch issues a single GET and returns the body once it is known to be JSON.
// The fetch is abandoned when ctx is done or the client timeout elapses. Failures are *Error.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	logger := c.logger.With("url", c.url)

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, c.fail(logger, &Error{Kind: KindUnreachable, Err: errors.Wrap(err, "failed to build request")})
	}
	req.Header.Set("Accept", helpers.ContentTypeJSON)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(logger, &Error{Kind: classify(ctx, err), Err: errors.Wrap(err, "request failed")})
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, c.fail(logger, &Error{Kind: KindStatus, StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, c.fail(logger, &Error{Kind: classify(ctx, err), Err: errors.Wrap(err, "failed to read body")})
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, c.fail(logger, &Error{Kind: KindMalformed, Err: errors.Errorf("body exceeds %d bytes", c.maxBodyBytes)})
	}
	if !json.Valid(body) {
		return nil, c.fail(logger, &Error{
			Kind: KindMalformed,
			Err:  errors.Errorf("body is not JSON: %q", helpers.Truncate(string(body), 64)),
		})
	}

	logger.Debug("fetched upstream", slog.Int("bytes", len(body)), slog.Duration("elapsed", time.Since(start)))
	return body, nil
}

func (c *Client) fail(logger *slog.Logger, err *Error) *Error {
	logger = logger.With(slog.String("kind", err.Kind.String()), slog.Any("error", err))
	if err.Kind == KindCanceled {
		logger.Debug("upstream fetch abandoned")
		return err
	}
	logger.Debug("upstream fetch failed")
	c.degraded.Do(func() {
		logger.Warn("upstream is failing")
	})
	return err
}

// classify tells a caller that went away apart from a deadline and from a transport failure.
func classify(parent context.Context, err error) Kind {
	if errors.Is(parent.Err(), context.Canceled) {
		return KindCanceled
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return KindTimeout
	}
	return KindUnreachable
}
