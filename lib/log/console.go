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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorGray   = "\033[90m"
	ColorRed    = "\033[91m"
	ColorYellow = "\033[93m"
	ColorBlue   = "\033[94m"
	ColorCyan   = "\033[96m"
	ColorDim    = "\033[2m"
)

// ConsoleHandler is a slog.Handler printing one human readable line per record:
//
//	[260118/142501+00] INF Console: Service created console.CreateService name=test-service
type ConsoleHandler struct {
	opts   *slog.HandlerOptions
	writer io.Writer
	mu     *sync.Mutex

	useColor     bool
	useTimestamp bool
	isDebugLevel bool

	pack   string
	fun    string
	attrs  []slog.Attr // already prefixed with the groups active at With time
	prefix string
	groups []string
}

// NewConsoleHandler creates a new ConsoleHandler, color is enabled when w is a terminal
func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *ConsoleHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	return &ConsoleHandler{
		opts:         opts,
		writer:       w,
		mu:           &sync.Mutex{},
		useColor:     isTerminal(w),
		useTimestamp: true,
		isDebugLevel: opts.Level != nil && opts.Level.Level() <= slog.LevelDebug,
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SetUseColor enables or disables color output
func (h *ConsoleHandler) SetUseColor(useColor bool) {
	h.useColor = useColor
}

// SetUseTimestamp enables or disables the timestamp prefix
func (h *ConsoleHandler) SetUseTimestamp(useTimestamp bool) {
	h.useTimestamp = useTimestamp
}

// Enabled reports whether the handler handles records at the given level
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats and writes the record
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	if h.useTimestamp {
		format := "060102/150405-07"
		if h.isDebugLevel {
			format = "060102/150405.000-07"
		}
		buf.WriteString(h.colorize(ColorGray, "["+r.Time.Format(format)+"]"))
		buf.WriteByte(' ')
	}

	buf.WriteString(h.colorizeLevel(r.Level, formatLevel(r.Level)))
	buf.WriteByte(' ')
	buf.WriteString(h.colorizeLevel(r.Level, r.Message))

	pack, fun := h.pack, h.fun
	var recAttrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "pack":
			pack = a.Value.String()
		case "func":
			fun = a.Value.String()
		default:
			recAttrs = append(recAttrs, a)
		}
		return true
	})
	if pack != "" && fun != "" {
		buf.WriteByte(' ')
		buf.WriteString(h.colorize(ColorDim, pack+"."+fun))
	}

	for _, a := range h.attrs {
		h.appendAttr(&buf, "", a)
	}
	for _, a := range recAttrs {
		h.appendAttr(&buf, h.prefix, a)
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, buf.String())
	return err
}

func (h *ConsoleHandler) appendAttr(buf *strings.Builder, prefix string, attr slog.Attr) {
	if h.opts.ReplaceAttr != nil && attr.Value.Kind() != slog.KindGroup {
		attr = h.opts.ReplaceAttr(h.groups, attr)
	}
	if attr.Equal(slog.Attr{}) || attr.Key == "" && attr.Value.Kind() != slog.KindGroup {
		return
	}

	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix += attr.Key + "."
		}
		for _, a := range attr.Value.Group() {
			h.appendAttr(buf, groupPrefix, a)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(prefix)
	buf.WriteString(attr.Key)
	buf.WriteByte('=')
	buf.WriteString(formatValue(attr.Value))
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	default:
		s := fmt.Sprintf("%+v", v.Any())
		if strings.ContainsAny(s, " \t\n") {
			return strconv.Quote(s)
		}
		return s
	}
}

func formatLevel(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DBG"
	case level < slog.LevelWarn:
		return "INF"
	case level < slog.LevelError:
		return "WRN"
	default:
		return "ERR"
	}
}

func (h *ConsoleHandler) colorize(color, text string) string {
	if !h.useColor {
		return text
	}
	return color + text + ColorReset
}

func (h *ConsoleHandler) colorizeLevel(level slog.Level, text string) string {
	switch {
	case level < slog.LevelInfo:
		return h.colorize(ColorCyan, text)
	case level < slog.LevelWarn:
		return h.colorize(ColorBlue, text)
	case level < slog.LevelError:
		return h.colorize(ColorYellow, text)
	default:
		return h.colorize(ColorRed, text)
	}
}

func (h *ConsoleHandler) clone() *ConsoleHandler {
	h2 := *h
	h2.attrs = append([]slog.Attr(nil), h.attrs...)
	h2.groups = append([]string(nil), h.groups...)
	return &h2
}

// WithAttrs returns a new ConsoleHandler with the given attributes
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := h.clone()
	for _, a := range attrs {
		switch a.Key {
		case "pack":
			h2.pack = a.Value.String()
		case "func":
			h2.fun = a.Value.String()
		default:
			if h.prefix != "" {
				a = slog.Attr{Key: strings.TrimSuffix(h.prefix, "."), Value: slog.GroupValue(a)}
			}
			h2.attrs = append(h2.attrs, a)
		}
	}
	return h2
}

// WithGroup returns a new ConsoleHandler prefixing the following attributes with name
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.groups = append(h2.groups, name)
	h2.prefix = h.prefix + name + "."
	return h2
}
