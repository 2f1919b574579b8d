package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/isometry/traffic-dash/internal/handler"
	"github.com/isometry/traffic-dash/internal/models"
	"github.com/isometry/traffic-dash/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetcherFunc func(ctx context.Context) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context) ([]byte, error) { return f(ctx) }

func returning(body string, err error) fetcherFunc {
	return func(context.Context) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		return []byte(body), nil
	}
}

var testAssets = fstest.MapFS{
	"script.js":  {Data: []byte(`fetch("/data")`)},
	"index.html": {Data: []byte("<!doctype html>")},
}

func newHandler(t *testing.T, f handler.Fetcher) *handler.Handler {
	t.Helper()
	h, err := handler.NewHandler(handler.WithUpstream(f), handler.WithAssets(testAssets))
	require.NoError(t, err)
	return h
}

func TestNewHandler(t *testing.T) {
	_, err := handler.NewHandler(handler.WithAssets(testAssets))
	assert.Error(t, err)

	_, err = handler.NewHandler(handler.WithUpstream(returning("{}", nil)))
	assert.Error(t, err)

	h, err := handler.NewHandler(
		handler.WithUpstream(returning("{}", nil)),
		handler.WithAssets(testAssets),
		handler.WithDataPath("/api/traffic"),
		handler.WithStaticPrefix("/assets"),
		handler.WithLambdaPayloadType("lambda-url"))
	require.NoError(t, err)
	assert.Equal(t, "/api/traffic", h.DataPath())
	assert.Equal(t, "/assets/", h.StaticPrefix())
	assert.Equal(t, "lambda-url", h.GetLambdaPayloadType())
}

func TestData(t *testing.T) {
	testCases := []struct {
		Name       string
		Fetcher    handler.Fetcher
		StatusCode int
		Body       string
		Contains   string
	}{
		{
			Name:       "passthrough",
			Fetcher:    returning(`{"k": "v"}`, nil),
			StatusCode: http.StatusOK,
			Body:       `{"k": "v"}`,
		},
		{
			Name:       "unreachable",
			Fetcher:    returning("", &upstream.Error{Kind: upstream.KindUnreachable, Err: errors.New("connection refused")}),
			StatusCode: http.StatusBadGateway,
			Contains:   "connection refused",
		},
		{
			Name:       "malformed",
			Fetcher:    returning("", &upstream.Error{Kind: upstream.KindMalformed, Err: errors.New("body is not JSON")}),
			StatusCode: http.StatusBadGateway,
			Contains:   "body is not JSON",
		},
		{
			Name:       "timeout",
			Fetcher:    returning("", &upstream.Error{Kind: upstream.KindTimeout, Err: context.DeadlineExceeded}),
			StatusCode: http.StatusGatewayTimeout,
			Contains:   "upstream timeout",
		},
		{
			Name:       "untyped_error",
			Fetcher:    returning("", errors.New("boom")),
			StatusCode: http.StatusBadGateway,
			Contains:   "boom",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			response := newHandler(t, tc.Fetcher).Data(context.Background())

			assert.Equal(t, tc.StatusCode, response.StatusCode)
			assert.Equal(t, "application/json", response.Headers["Content-Type"])
			if tc.Body != "" {
				assert.Equal(t, tc.Body, response.Body)
			}
			if tc.Contains != "" {
				assert.Contains(t, response.Body, `"message":"upstream request failed"`)
				assert.Contains(t, response.Body, tc.Contains)
			}
		})
	}
}

func TestServeData(t *testing.T) {
	h := newHandler(t, returning(`{"k": "v"}`, nil))

	rw := httptest.NewRecorder()
	h.ServeData(rw, httptest.NewRequest(http.MethodGet, "/data", nil))
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, `{"k": "v"}`, rw.Body.String())
	assert.Equal(t, "application/json", rw.Header().Get("Content-Type"))
}

func TestServeDataClientGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := newHandler(t, fetcherFunc(func(ctx context.Context) ([]byte, error) {
		cancel()
		<-ctx.Done()
		return nil, &upstream.Error{Kind: upstream.KindCanceled, Err: ctx.Err()}
	}))

	rw := httptest.NewRecorder()
	h.ServeData(rw, httptest.NewRequest(http.MethodGet, "/data", nil).WithContext(ctx))
	assert.False(t, rw.Flushed)
	assert.Empty(t, rw.Body.String())
}

func TestProcess(t *testing.T) {
	h := newHandler(t, returning(`[{"GEO":"FR"}]`, nil))

	testCases := []struct {
		Name       string
		Request    models.Request
		StatusCode int
		Body       string
		Allow      string
	}{
		{
			Name:       "data",
			Request:    models.Request{Method: http.MethodGet, Path: "/data"},
			StatusCode: http.StatusOK,
			Body:       `[{"GEO":"FR"}]`,
		},
		{
			Name:       "data_post",
			Request:    models.Request{Method: http.MethodPost, Path: "/data"},
			StatusCode: http.StatusMethodNotAllowed,
			Allow:      http.MethodGet,
		},
		{
			Name:       "static",
			Request:    models.Request{Method: http.MethodGet, Path: "/static/script.js"},
			StatusCode: http.StatusOK,
			Body:       `fetch("/data")`,
		},
		{
			Name:       "static_missing",
			Request:    models.Request{Method: http.MethodGet, Path: "/static/missing.js"},
			StatusCode: http.StatusNotFound,
		},
		{
			Name:       "static_traversal",
			Request:    models.Request{Method: http.MethodGet, Path: "/static/../index.html"},
			StatusCode: http.StatusNotFound,
		},
		{
			Name:       "static_root",
			Request:    models.Request{Method: http.MethodGet, Path: "/static/"},
			StatusCode: http.StatusNotFound,
		},
		{
			Name:       "unknown",
			Request:    models.Request{Method: http.MethodGet, Path: "/"},
			StatusCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			response := h.Process(context.Background(), tc.Request)

			assert.Equal(t, tc.StatusCode, response.StatusCode)
			if tc.Body != "" {
				assert.Equal(t, tc.Body, response.Body)
			}
			if tc.Allow != "" {
				assert.Equal(t, tc.Allow, response.Headers["Allow"])
			}
		})
	}
}
