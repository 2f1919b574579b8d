// Package runtime exposes the handler over net/http and over AWS Lambda events.
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gorilla/mux"
	"github.com/isometry/traffic-dash/internal/handler"
	"github.com/isometry/traffic-dash/internal/helpers"
	"github.com/isometry/traffic-dash/internal/middleware"
	"github.com/isometry/traffic-dash/internal/models"
	"github.com/pkg/errors"
)

// Supported lambda payload types.
const (
	PayloadAPIGatewayV1 = "api-gateway-v1"
	PayloadAPIGatewayV2 = "api-gateway-v2"
	PayloadLambdaURL    = "lambda-url"
)

type Option func(*Runtime)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

type Runtime struct {
	*handler.Handler
	logger *slog.Logger
	router http.Handler
}

// NewRuntime creates a new runtime instance
func NewRuntime(handler *handler.Handler, opts ...Option) *Runtime {
	_inst := &Runtime{Handler: handler}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.router = _inst.newRouter()
	return _inst
}

func (r *Runtime) newRouter() http.Handler {
	router := mux.NewRouter()
	// Paths are kept verbatim so that traversal attempts reach the asset handler and get rejected there.
	router.SkipClean(true)
	router.Methods(http.MethodGet).Path(r.DataPath()).HandlerFunc(r.ServeData)
	router.Methods(http.MethodGet, http.MethodHead).PathPrefix(r.StaticPrefix()).Handler(r.Static())
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		helpers.RespondHTTP(models.Response{Body: http.StatusText(http.StatusNotFound), StatusCode: http.StatusNotFound}, nil, w)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.logger.Debug("rejecting HTTP request...", slog.Any("requestor", req.RemoteAddr), "reason", "method not allowed", slog.Any("method", req.Method))
		helpers.RespondHTTP(models.Response{Body: http.StatusText(http.StatusMethodNotAllowed), StatusCode: http.StatusMethodNotAllowed}, nil, w)
	})

	return middleware.Chain(
		middleware.Panic(r.logger),
		middleware.RequestLog(r.logger),
		middleware.SecureHeaders(),
	)(router)
}

// ServeHTTP is the HTTP handler for the runtime
func (r *Runtime) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(resp, req)
}

// HandleEvent is the Lambda handler for the runtime
func (r *Runtime) HandleEvent(ctx context.Context, payload json.RawMessage) (any, error) {
	payloadType := r.GetLambdaPayloadType()
	r.logger.Debug("received lambda event", slog.String("payloadType", payloadType))

	var req models.Request
	rawPath := false
	switch payloadType {
	case PayloadAPIGatewayV1:
		var e events.APIGatewayProxyRequest
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, errors.Wrap(err, "failed to decode API Gateway v1 event")
		}
		req = models.Request{Method: e.HTTPMethod, Path: e.Path, Headers: e.Headers}
	case PayloadAPIGatewayV2:
		var e events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, errors.Wrap(err, "failed to decode API Gateway v2 event")
		}
		req = models.Request{Method: e.RequestContext.HTTP.Method, Path: e.RawPath, Headers: e.Headers}
		rawPath = true
	case PayloadLambdaURL:
		var e events.LambdaFunctionURLRequest
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, errors.Wrap(err, "failed to decode Lambda function URL event")
		}
		req = models.Request{Method: e.RequestContext.HTTP.Method, Path: e.RawPath, Headers: e.Headers}
		rawPath = true
	default:
		return nil, fmt.Errorf("unsupported lambda payload type: %s", payloadType)
	}

	var result models.Response
	if path, err := decodePath(req.Path, rawPath); err != nil {
		r.logger.Info("rejecting event", slog.String("path", req.Path), slog.Any("error", err))
		result = helpers.ErrorResponse(http.StatusBadRequest, "malformed request path", err)
	} else {
		req.Path = path
		result = r.Handler.Process(ctx, req)
	}
	r.logger.Info("handled event", slog.String("method", req.Method), slog.String("path", req.Path), slog.Int("status", result.StatusCode))

	switch payloadType {
	case PayloadAPIGatewayV1:
		return events.APIGatewayProxyResponse{
			Body:            result.Body,
			Headers:         result.Headers,
			StatusCode:      result.StatusCode,
			IsBase64Encoded: result.Base64,
		}, nil
	case PayloadAPIGatewayV2:
		return events.APIGatewayV2HTTPResponse{
			Body:            result.Body,
			Headers:         result.Headers,
			StatusCode:      result.StatusCode,
			IsBase64Encoded: result.Base64,
		}, nil
	default:
		return events.LambdaFunctionURLResponse{
			Body:            result.Body,
			Headers:         result.Headers,
			StatusCode:      result.StatusCode,
			IsBase64Encoded: result.Base64,
		}, nil
	}
}

// decodePath unescapes the still-encoded path of v2 and function URL events,
// so that routing and the asset ".." check see what net/http would.
func decodePath(p string, raw bool) (string, error) {
	if !raw {
		return p, nil
	}
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return "", errors.Wrap(err, "invalid path escape")
	}
	return decoded, nil
}
