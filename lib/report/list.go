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

package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Colors for terminal output
const (
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
)

// ListWriter prints every top level test as a block when it completes
type ListWriter struct {
	Out       io.Writer
	Color     bool
	Timestamp bool
	// Filter is one of "", "all", "failed", "passed", "non-failed", "non-passed"
	Filter string
}

func includeTest(test *Result, filter string) bool {
	switch filter {
	case "non-failed":
		return test.Status != StatusFail
	case "non-passed":
		return test.Status != StatusPass
	case "failed":
		return test.Status == StatusFail
	case "passed":
		return test.Status == StatusPass
	}
	return true
}

func (w *ListWriter) status(s Status) (string, string) {
	icon, text, color := "⏭️", "SKIP", colorYellow
	switch s {
	case StatusPass:
		icon, text, color = "✅", "PASS", colorGreen
	case StatusFail, StatusRunning:
		icon, text, color = "❌", "FAIL", colorRed
	}
	if w.Color {
		text = color + text + colorReset
	}
	return icon, text
}

func (w *ListWriter) printf(ts string, format string, args ...any) {
	if w.Timestamp && ts != "" {
		fmt.Fprintf(w.Out, "[%s]", ts)
	}
	fmt.Fprintf(w.Out, format, args...)
}

// WriteTest prints the test block with the output and the subtests in the order they happened
func (w *ListWriter) WriteTest(pkg *Package, test *Result) {
	if !includeTest(test, w.Filter) {
		return
	}
	icon, status := w.status(test.Status)

	pkgName := "📦 " + pkg.Name
	if w.Color {
		pkgName = colorBlue + "📦" + colorReset + " " + colorBold + pkg.Name + colorReset
	}
	w.printf(stamp(test.StartTime), "╒━ %s %s (%s) - %.3fs (%s)\n", icon, test.Name, status, test.Elapsed, pkgName)
	w.writeBody(test, 1)
	w.printf(stamp(test.EndTime), "╘━ %s %s (%s) - %.3fs\n\n", icon, test.Name, status, test.Elapsed)
}

func (w *ListWriter) writeBody(test *Result, indent int) {
	indentStr := strings.Repeat(" │", indent)
	sub := 0
	for _, line := range test.Output {
		for sub < len(test.Subtests) && test.Subtests[sub].StartTime.Before(line.Time) {
			w.writeSubtest(test.Subtests[sub], indent)
			sub++
		}
		w.printf(stamp(line.Time), "%s %s", indentStr, line.Text)
	}
	for ; sub < len(test.Subtests); sub++ {
		w.writeSubtest(test.Subtests[sub], indent)
	}
}

func (w *ListWriter) writeSubtest(test *Result, indent int) {
	indentStr := strings.Repeat(" │", indent)
	icon, status := w.status(test.Status)
	w.printf(stamp(test.StartTime), "%s ┍━ RUN %s\n", indentStr, test.Short())
	w.writeBody(test, indent+1)
	w.printf(stamp(test.EndTime), "%s ┕━ %s %s: %s (%.3fs)\n", indentStr, icon, status, test.Short(), test.Elapsed)
}

// WritePackageOutput prints the output of failed packages not attached to any test
func (w *ListWriter) WritePackageOutput(pkg *Package) {
	if pkg.Status != StatusFail || len(pkg.Output) == 0 {
		return
	}
	_, status := w.status(StatusFail)
	w.printf("", "╒━ 📦 %s (%s)\n", pkg.Name, status)
	for _, line := range pkg.Output {
		w.printf(stamp(line.Time), " │ %s", line.Text)
	}
	w.printf("", "╘━ 📦 %s\n\n", pkg.Name)
}

// WriteSummary prints the totals and the failed tests
func (w *ListWriter) WriteSummary(s Summary) {
	counts := []struct {
		n     int
		label string
		color string
	}{
		{s.Passed, "passed", colorGreen},
		{s.Failed, "failed", colorRed},
		{s.Skipped, "skipped", colorYellow},
	}
	fmt.Fprintf(w.Out, "\n📊 Summary: %d tests total", s.Total)
	for _, c := range counts {
		if w.Color {
			if c.n > 0 {
				fmt.Fprintf(w.Out, ", %s%d %s%s", c.color, c.n, c.label, colorReset)
			}
			continue
		}
		fmt.Fprintf(w.Out, ", %d %s", c.n, c.label)
	}
	fmt.Fprintf(w.Out, " in %.3fs\n", s.Elapsed)

	failed := append(append([]string{}, s.FailedTests...), s.FailedPackages...)
	if len(failed) > 0 {
		fmt.Fprintf(w.Out, "❌ Failed tests:\n")
		for _, name := range failed {
			if w.Color {
				fmt.Fprintf(w.Out, "  %s%s%s\n", colorRed, name, colorReset)
			} else {
				fmt.Fprintf(w.Out, "  %s\n", name)
			}
		}
	}
}

func stamp(t time.Time) string {
	return t.Format("15:04:05.000")
}
