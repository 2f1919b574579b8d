package handler

import (
	"io/fs"
	"log/slog"
)

// WithLogger sets the logger instance for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithUpstream sets the fetcher of the relayed document.
func WithUpstream(f Fetcher) Option {
	return func(h *Handler) {
		h.upstream = f
	}
}

// WithAssets sets the static asset source.
func WithAssets(src fs.FS) Option {
	return func(h *Handler) {
		h.assets = src
	}
}

// WithDataPath sets the route of the data relay.
func WithDataPath(path string) Option {
	return func(h *Handler) {
		if path != "" {
			h.dataPath = path
		}
	}
}

// WithStaticPrefix sets the URL prefix of the static assets.
func WithStaticPrefix(prefix string) Option {
	return func(h *Handler) {
		if prefix != "" {
			h.staticPrefix = prefix
		}
	}
}

// WithLambdaPayloadType sets the lambda payload type for a Handler instance.
func WithLambdaPayloadType(payloadType string) Option {
	return func(h *Handler) {
		h.lambdaPayloadType = payloadType
	}
}
