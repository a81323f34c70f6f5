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

// Package monitoring exports traces and logs of the web test runs over OTLP
package monitoring

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	otellog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/gwconsole/console-webtests/lib/log"
)

const tracerName = "console-webtests"

// Config defines monitoring configuration
type Config struct {
	Enabled        bool    `json:"enabled" toml:"enabled"`
	OTLPEndpoint   string  `json:"otlp_endpoint" toml:"otlp_endpoint" validate:"required_if=Enabled true"`
	ServiceName    string  `json:"service_name" toml:"service_name"`
	ServiceVersion string  `json:"service_version" toml:"service_version"`
	RunID          string  `json:"-" toml:"-"`
	SampleRate     float64 `json:"sample_rate" toml:"sample_rate" validate:"gte=0,lte=1"`
	EnableTracing  bool    `json:"enable_tracing" toml:"enable_tracing"`
	EnableLogs     bool    `json:"enable_logs" toml:"enable_logs"`
}

// DefaultConfig returns default monitoring configuration
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		OTLPEndpoint:   "localhost:4317",
		ServiceName:    tracerName,
		ServiceVersion: "dev",
		SampleRate:     1.0,
		EnableTracing:  true,
		EnableLogs:     true,
	}
}

// Monitor keeps the providers to flush them on shutdown
type Monitor struct {
	config        Config
	conn          *grpc.ClientConn
	shutdownFuncs []func(context.Context) error
}

// Initialize sets up OpenTelemetry export, returns a no-op Monitor when disabled
func Initialize(ctx context.Context, config Config) (*Monitor, error) {
	logger := log.WithFunc("monitoring", "Initialize")
	m := &Monitor{config: config}
	if !config.Enabled {
		logger.Debug("Monitoring: Disabled")
		return m, nil
	}

	logger.Info("Monitoring: Initializing OpenTelemetry...", "endpoint", config.OTLPEndpoint)

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
		attribute.String("webtests.run_id", config.RunID),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	m.conn, err = grpc.NewClient(config.OTLPEndpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}
	m.shutdownFuncs = append(m.shutdownFuncs, func(context.Context) error { return m.conn.Close() })

	if config.EnableTracing {
		traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(m.conn))
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tracerProvider := trace.NewTracerProvider(
			trace.WithBatcher(traceExporter),
			trace.WithResource(res),
			trace.WithSampler(trace.TraceIDRatioBased(config.SampleRate)),
		)
		otel.SetTracerProvider(tracerProvider)
		otel.SetTextMapPropagator(propagation.TraceContext{})
		// Providers are flushed before the connection is closed
		m.shutdownFuncs = append([]func(context.Context) error{tracerProvider.Shutdown}, m.shutdownFuncs...)
		logger.Info("Monitoring: Tracing initialized")
	}

	if config.EnableLogs {
		logExporter, err := otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(m.conn))
		if err != nil {
			return nil, fmt.Errorf("failed to create log exporter: %w", err)
		}
		loggerProvider := otellog.NewLoggerProvider(
			otellog.WithProcessor(otellog.NewBatchProcessor(logExporter)),
			otellog.WithResource(res),
		)
		global.SetLoggerProvider(loggerProvider)
		m.shutdownFuncs = append([]func(context.Context) error{loggerProvider.Shutdown}, m.shutdownFuncs...)
		if err := log.SetupOtelIntegration(); err != nil {
			return nil, err
		}
		logger.Info("Monitoring: Logging initialized")
	}

	return m, nil
}

// StartSpan starts a span on the global tracer provider, no-op when tracing is not set up
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, oteltrace.WithAttributes(attrs...))
}

// IsEnabled returns whether monitoring is enabled
func (m *Monitor) IsEnabled() bool {
	return m.config.Enabled
}

// Shutdown flushes and closes the exporters
func (m *Monitor) Shutdown(ctx context.Context) error {
	var errs []error
	for _, shutdown := range m.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	m.shutdownFuncs = nil
	return errors.Join(errs...)
}
