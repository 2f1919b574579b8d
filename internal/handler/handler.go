// Package handler implements the data relay and static asset routes independently of the transport.
package handler

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/isometry/traffic-dash/internal/assets"
	"github.com/isometry/traffic-dash/internal/helpers"
	"github.com/isometry/traffic-dash/internal/models"
	"github.com/isometry/traffic-dash/internal/upstream"
	"github.com/pkg/errors"
)

const (
	defaultDataPath     = "/data"
	defaultStaticPrefix = "/static/"
)

// Fetcher retrieves the upstream JSON document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Option is a function that applies an option to a Handler.
type Option func(*Handler)

// Handler serves the data relay and the static assets. It is immutable once built.
type Handler struct {
	logger            *slog.Logger
	upstream          Fetcher
	assets            fs.FS
	dataPath          string
	staticPrefix      string
	lambdaPayloadType string
}

// NewHandler builds a Handler. An upstream Fetcher and an asset source are required.
func NewHandler(options ...Option) (*Handler, error) {
	_inst := &Handler{
		logger:       helpers.NewNoopLogger(),
		dataPath:     defaultDataPath,
		staticPrefix: defaultStaticPrefix,
	}
	for _, opt := range options {
		opt(_inst)
	}

	if _inst.upstream == nil {
		return nil, errors.New("an upstream fetcher is required")
	}
	if _inst.assets == nil {
		return nil, errors.New("an asset source is required")
	}
	if !strings.HasSuffix(_inst.staticPrefix, "/") {
		_inst.staticPrefix += "/"
	}
	return _inst, nil
}

// Data relays the upstream document. The body is passed through untouched on success;
// failures are reported as a JSON envelope with a 5xx status.
func (h *Handler) Data(ctx context.Context) models.Response {
	body, err := h.upstream.Fetch(ctx)
	if err != nil {
		statusCode := http.StatusBadGateway
		var upstreamErr *upstream.Error
		if errors.As(err, &upstreamErr) {
			statusCode = upstreamErr.HTTPStatus()
		}
		h.logger.Info("upstream request failed", slog.Int("status", statusCode), slog.Any("error", err))
		return helpers.ErrorResponse(statusCode, "upstream request failed", err)
	}
	return models.Response{
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": helpers.ContentTypeJSON},
		StatusCode: http.StatusOK,
	}
}

// ServeData is the HTTP handler of the data route.
func (h *Handler) ServeData(w http.ResponseWriter, r *http.Request) {
	response := h.Data(r.Context())
	if r.Context().Err() != nil {
		h.logger.Debug("client went away before the upstream answered", slog.Any("requestor", r.RemoteAddr))
		return
	}
	helpers.WriteHTTP(response, w)
}

// Static returns the HTTP handler of the static asset prefix.
func (h *Handler) Static() http.Handler {
	return assets.Handler(h.staticPrefix, h.assets, h.logger.With("component", "assets"))
}

// Process dispatches a transport-neutral request to the matching route.
func (h *Handler) Process(ctx context.Context, req models.Request) models.Response {
	logger := h.logger.With(slog.String("method", req.Method), slog.String("path", req.Path))
	logger.Debug("processing request...")

	isData := req.Path == h.dataPath
	isStatic := strings.HasPrefix(req.Path, h.staticPrefix)
	if !isData && !isStatic {
		logger.Info("no route")
		return helpers.ErrorResponse(http.StatusNotFound, http.StatusText(http.StatusNotFound), nil)
	}
	if req.Method != http.MethodGet {
		logger.Info("rejecting request", "reason", "method not allowed")
		response := helpers.ErrorResponse(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), nil)
		response.Headers["Allow"] = http.MethodGet
		return response
	}

	if isData {
		return h.Data(ctx)
	}

	response, err := assets.Read(ctx, h.assets, strings.TrimPrefix(req.Path, h.staticPrefix))
	switch {
	case err == nil:
		return response
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("asset not found")
		return helpers.ErrorResponse(http.StatusNotFound, http.StatusText(http.StatusNotFound), nil)
	default:
		logger.Error("failed to read asset", slog.Any("error", err))
		return helpers.ErrorResponse(http.StatusInternalServerError, "failed to read asset", err)
	}
}

// DataPath returns the route of the data relay.
func (h *Handler) DataPath() string {
	return h.dataPath
}

// StaticPrefix returns the URL prefix of the static assets, with a trailing slash.
func (h *Handler) StaticPrefix() string {
	return h.staticPrefix
}

// GetLambdaPayloadType returns the API Gateway payload format the lambda runtime answers with.
func (h *Handler) GetLambdaPayloadType() string {
	return h.lambdaPayloadType
}
