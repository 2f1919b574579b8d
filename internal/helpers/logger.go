package helpers

import (
	"io"
	"log/slog"
)

// NewNoopLogger returns a logger discarding every record. Components default to it when no logger is injected.
func NewNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
