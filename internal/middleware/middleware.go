// Package middleware implements a simple middleware pattern for http handlers,
// along with the middlewares wrapped around every route.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/isometry/traffic-dash/internal/helpers"
	"github.com/isometry/traffic-dash/internal/models"
)

// A Middleware is a func that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain creates a new Middleware that applies a sequence of Middlewares, so
// that they execute in the given order when handling an http request.
//
// In other words, Chain(m1, m2)(handler) = m1(m2(handler))
func Chain(middlewares ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := range middlewares {
			h = middlewares[len(middlewares)-1-i](h)
		}
		return h
	}
}

// Panic returns a middleware that answers 500 on any panic originating from the delegate handler.
func Panic(logger *slog.Logger) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if e := recover(); e != nil {
					if e == http.ErrAbortHandler {
						panic(e)
					}
					logger.Error("recovered from panic", slog.Any("panic", e), slog.String("path", r.URL.Path))
					helpers.RespondHTTP(models.Response{
						Body:       http.StatusText(http.StatusInternalServerError),
						StatusCode: http.StatusInternalServerError,
					}, nil, w)
				}
			}()
			h.ServeHTTP(w, r)
		})
	}
}

// StatusClientClosedRequest is logged for requests whose client went away before anything was written.
const StatusClientClosedRequest = 499

// RequestLog returns a middleware that logs each request once it has been answered.
// 5xx responses are logged as errors, 4xx as warnings.
func RequestLog(logger *slog.Logger) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			w2 := &responseWriter{ResponseWriter: w}
			h.ServeHTTP(w2, r)

			status := w2.status()
			level := slog.LevelDebug
			switch {
			case w2.code == 0 && errors.Is(r.Context().Err(), context.Canceled):
				status = StatusClientClosedRequest
				level = slog.LevelInfo
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "handled request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("requestor", r.RemoteAddr),
				slog.Int("status", status),
				slog.Int("bytes", w2.written),
				slog.Duration("latency", time.Since(start)))
		})
	}
}

// SecureHeaders prevents MIME sniffing and frame embedding on every response.
func SecureHeaders() Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "deny")
			h.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter

	code    int
	written int
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.code == 0 {
		rw.code = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.code == 0 {
		rw.code = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

func (rw *responseWriter) status() int {
	if rw.code == 0 {
		return http.StatusOK
	}
	return rw.code
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
