/**
 * Copyright 2025 Adobe. All rights reserved.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License. You may obtain a copy
 * of the License at http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under
 * the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR REPRESENTATIONS
 * OF ANY KIND, either express or implied. See the License for the specific language
 * governing permissions and limitations under the License.
 */

// Package log provides structured logging for the console web tests and the runner
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

type Level = slog.Level

const (
	LevelDebug Level = slog.LevelDebug
	LevelInfo  Level = slog.LevelInfo
	LevelWarn  Level = slog.LevelWarn
	LevelError Level = slog.LevelError
)

const otelScope = "console-webtests"

var (
	loggerMu sync.RWMutex
	logger   *slog.Logger

	otelHandler *otelslog.Handler
)

func init() {
	_ = Initialize(DefaultConfig())
}

// Config of the logger
type Config struct {
	Level        string    `json:"level"`         // Log level (debug, info, warn, error)
	Format       string    `json:"format"`        // Output format (console, json)
	UseTimestamp bool      `json:"use_timestamp"` // Include timestamp in console logs
	OtelEnabled  bool      `json:"otel_enabled"`  // Duplicate records to the OpenTelemetry log provider
	Output       io.Writer `json:"-"`             // Stdout when nil
}

// DefaultConfig returns default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:        "info",
		Format:       "console",
		UseTimestamp: true,
	}
}

// ParseLevel converts string level to slog.Level
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level %q", levelStr)
	}
}

// Initialize sets up the global logger with the given configuration
func Initialize(config *Config) error {
	level, err := ParseLevel(config.Level)
	if err != nil {
		return err
	}

	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch config.Format {
	case "console", "":
		consoleHandler := NewConsoleHandler(output, opts)
		consoleHandler.SetUseTimestamp(config.UseTimestamp)
		handler = consoleHandler
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		return fmt.Errorf("invalid log format %q", config.Format)
	}

	loggerMu.Lock()
	logger = slog.New(handler)
	otelHandler = nil
	loggerMu.Unlock()

	if config.OtelEnabled {
		return SetupOtelIntegration()
	}

	return nil
}

// SetupOtelIntegration duplicates log records to the global OpenTelemetry logger provider
// Called by monitoring when the log exporter is ready
func SetupOtelIntegration() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logger == nil {
		return errors.New("logger is not initialized")
	}
	if otelHandler == nil {
		otelHandler = otelslog.NewHandler(otelScope)
		logger = slog.New(&multiHandler{
			handlers: []slog.Handler{logger.Handler(), otelHandler},
		})
	}
	return nil
}

// multiHandler combines multiple slog.Handler implementations
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Logger returns the current global logger
func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// WithFunc provides a way to identify package and function executed
func WithFunc(pack, fun string) *slog.Logger {
	return Logger().With("pack", pack, "func", fun)
}
