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

package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(level slog.Level) (*bytes.Buffer, *slog.Logger) {
	var buf bytes.Buffer
	handler := NewConsoleHandler(&buf, &slog.HandlerOptions{Level: level})
	handler.SetUseColor(false)
	return &buf, slog.New(handler)
}

func TestConsoleHandler_BasicFormat(t *testing.T) {
	buf, logger := newTestLogger(slog.LevelDebug)

	logger.Info("test message")
	output := buf.String()

	if !strings.HasPrefix(output, "[") || !strings.Contains(output, "]") {
		t.Errorf("Expected timestamp in brackets, got: %s", output)
	}
	if !strings.Contains(output, "INF test message") {
		t.Errorf("Expected 'INF test message', got: %s", output)
	}
}

func TestConsoleHandler_NoTimestamp(t *testing.T) {
	buf, logger := newTestLogger(slog.LevelInfo)
	logger.Handler().(*ConsoleHandler).SetUseTimestamp(false)

	logger.Info("plain")
	if got := buf.String(); got != "INF plain\n" {
		t.Errorf("Expected 'INF plain', got: %q", got)
	}
}

func TestConsoleHandler_DebugTimestamp(t *testing.T) {
	buf, logger := newTestLogger(slog.LevelDebug)

	logger.Debug("debug message")
	stamp := strings.SplitN(buf.String(), "]", 2)[0]

	if !strings.Contains(stamp, ".") {
		t.Errorf("Debug timestamp should include milliseconds, got: %s", stamp)
	}
}

func TestConsoleHandler_Attributes(t *testing.T) {
	buf, logger := newTestLogger(slog.LevelInfo)

	logger.Info("test", "key1", "value1", "key2", 42, "key3", "with space")
	output := buf.String()

	for _, want := range []string{"key1=value1", "key2=42", `key3="with space"`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q, got: %s", want, output)
		}
	}
}

func TestConsoleHandler_PackFunc(t *testing.T) {
	buf, logger := newTestLogger(slog.LevelInfo)

	logger.With("pack", "console", "func", "CreateRoute").Info("Console: Route created", "name", "test-route")
	output := buf.String()

	if !strings.Contains(output, "Console: Route created console.CreateRoute name=test-route") {
		t.Errorf("Expected pack.func after message, got: %s", output)
	}
	if strings.Contains(output, "pack=") || strings.Contains(output, "func=") {
		t.Errorf("pack/func should not be printed as attributes, got: %s", output)
	}
}

func TestConsoleHandler_Groups(t *testing.T) {
	buf, logger := newTestLogger(slog.LevelInfo)

	logger.WithGroup("request").WithGroup("user").Info("test",
		slog.Group("profile", "name", "john", "age", 30),
		"status", "active",
	)
	output := buf.String()

	for _, want := range []string{"request.user.profile.name=john", "request.user.profile.age=30", "request.user.status=active"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q, got: %s", want, output)
		}
	}
}

func TestConsoleHandler_WithAttrsInGroup(t *testing.T) {
	buf, logger := newTestLogger(slog.LevelInfo)

	logger.With("run", "abc").WithGroup("scenario").With("name", "create").Info("test")
	output := buf.String()

	if !strings.Contains(output, "run=abc") || !strings.Contains(output, "scenario.name=create") {
		t.Errorf("Unexpected attributes: %s", output)
	}
}

func TestConsoleHandler_Levels(t *testing.T) {
	buf, logger := newTestLogger(slog.LevelDebug)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d", len(lines))
	}
	for i, lvl := range []string{"DBG", "INF", "WRN", "ERR"} {
		if !strings.Contains(lines[i], lvl) {
			t.Errorf("Expected %s level, got: %s", lvl, lines[i])
		}
	}
}

func TestConsoleHandler_ColorDisabled(t *testing.T) {
	buf, logger := newTestLogger(slog.LevelInfo)

	logger.Error("test message")
	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("Expected no color codes, got: %s", buf.String())
	}
}

func TestConsoleHandler_ReplaceAttr(t *testing.T) {
	var buf bytes.Buffer
	handler := NewConsoleHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "token" {
				return slog.String("token", "***")
			}
			return a
		},
	})
	slog.New(handler).Info("test", "token", "secret", "public", "data")

	if !strings.Contains(buf.String(), "token=***") || !strings.Contains(buf.String(), "public=data") {
		t.Errorf("Unexpected output: %s", buf.String())
	}
}

func TestConsoleHandler_Enabled(t *testing.T) {
	handler := NewConsoleHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Info should be disabled when level is Warn")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("Error should be enabled when level is Warn")
	}
}

func TestInitialize_JSON(t *testing.T) {
	t.Cleanup(func() { _ = Initialize(DefaultConfig()) })

	var buf bytes.Buffer
	if err := Initialize(&Config{Level: "debug", Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Unable to initialize: %v", err)
	}
	WithFunc("config", "Load").Debug("Config: Loaded", "path", "webtests.yml")

	output := buf.String()
	for _, want := range []string{`"msg":"Config: Loaded"`, `"pack":"config"`, `"func":"Load"`, `"path":"webtests.yml"`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %s in: %s", want, output)
		}
	}
}

func TestInitialize_Invalid(t *testing.T) {
	if err := Initialize(&Config{Level: "loud"}); err == nil {
		t.Error("Expected error for invalid level")
	}
	if err := Initialize(&Config{Level: "info", Format: "xml"}); err == nil {
		t.Error("Expected error for invalid format")
	}
}
