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

package helper

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"testing"

	"github.com/playwright-community/playwright-go"

	"github.com/gwconsole/console-webtests/lib/config"
	"github.com/gwconsole/console-webtests/lib/console"
	"github.com/gwconsole/console-webtests/lib/report"
	"github.com/gwconsole/console-webtests/lib/ui"
)

// traceAttempt tells if the trace has to be recorded for the attempt, attempts start with 0
func traceAttempt(policy string, attempt int) bool {
	switch policy {
	case config.TraceOn, config.TraceRetainOnFailure:
		return true
	case config.TraceOnFirstRetry:
		return attempt == 1
	}
	return false
}

// keepTrace tells if the recorded trace is saved when the attempt is over
func keepTrace(policy string, attempt int, failed bool) bool {
	if policy == config.TraceRetainOnFailure {
		return failed
	}
	return traceAttempt(policy, attempt)
}

// Session is the isolated browser context and page of one scenario attempt
type Session struct {
	tb      testing.TB
	cfg     *config.Config
	attempt int
	dir     string

	context playwright.BrowserContext
	page    playwright.Page
	console *console.Console
	tracing bool

	// Automatic screenshots numbering
	stepMu sync.Mutex
	step   int
}

// NewSession creates a fresh context with video recording and the trace if the policy
// asks for it on this attempt
func (b *Browser) NewSession(tb testing.TB, attempt int) (*Session, error) {
	tb.Helper()
	s := &Session{
		tb:      tb,
		cfg:     b.cfg,
		attempt: attempt,
		dir:     captureDir(b.cfg.CaptureDir, tb.Name(), attempt),
	}

	var err error
	s.context, err = b.browser.NewContext(playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
		RecordVideo: &playwright.RecordVideo{
			Dir: makeDir(s.dir, "video"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("Helper: Could not create new context: %w", err)
	}
	s.context.SetDefaultTimeout(b.cfg.ActionTimeout.Milliseconds())
	s.context.SetDefaultNavigationTimeout(b.cfg.NavigationTimeout.Milliseconds())

	if traceAttempt(b.cfg.Trace, attempt) {
		err = s.context.Tracing().Start(playwright.TracingStartOptions{
			Screenshots: playwright.Bool(true),
			Snapshots:   playwright.Bool(true),
			Sources:     playwright.Bool(true),
		})
		if err != nil {
			s.context.Close()
			return nil, fmt.Errorf("Helper: Could not start tracing: %w", err)
		}
		s.tracing = true
	}

	if s.page, err = s.context.NewPage(); err != nil {
		s.context.Close()
		return nil, fmt.Errorf("Helper: Could not create page: %w", err)
	}
	s.console = console.New(ui.NewPlaywrightPage(s.page), b.cfg)
	return s, nil
}

// Console returns the workflows bound to the page of the session
func (s *Session) Console() *console.Console {
	return s.console
}

// Screenshot takes a screenshot with automatic naming, the failure ones are attached to the report
func (s *Session) Screenshot(phase string) {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	s.step++
	filename := fmt.Sprintf("%02d-%s-%s.png", s.step, path.Base(s.tb.Name()), phase)
	out := ensureDir(s.dir, "screenshots", filename)
	if _, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(out),
		FullPage: playwright.Bool(true),
	}); err != nil {
		s.tb.Logf("WARNING: Could not take screenshot %s: %v", filename, err)
		return
	}
	if phase == "failure" {
		s.attach("screenshot", out)
	}
}

func (s *Session) attach(kind, filePath string) {
	if abs, err := filepath.Abs(filePath); err == nil {
		filePath = abs
	}
	s.tb.Logf("INFO: %s", report.AttachmentLine(kind, filePath))
}

// Close saves the trace and the video of a failed attempt and drops the captures of a passed one
func (s *Session) Close(failed bool) {
	s.tb.Helper()

	if s.tracing {
		if keepTrace(s.cfg.Trace, s.attempt, failed) {
			out := ensureDir(s.dir, "trace.zip")
			if err := s.context.Tracing().Stop(out); err != nil {
				s.tb.Logf("WARNING: Could not save trace: %v", err)
			} else {
				s.attach("trace", out)
			}
		} else if err := s.context.Tracing().Stop(); err != nil {
			s.tb.Logf("WARNING: Could not stop tracing: %v", err)
		}
	}

	video := s.page.Video()
	// The video is written when the context is closed
	if err := s.context.Close(); err != nil {
		s.tb.Logf("WARNING: Could not close context: %v", err)
	}

	if failed {
		if video != nil {
			if videoPath, err := video.Path(); err == nil {
				s.attach("video", videoPath)
			}
		}
		s.tb.Logf("INFO: Keeping captures for checking: %s", s.dir)
		return
	}
	os.RemoveAll(filepath.Join(s.dir, "video"))
	os.RemoveAll(filepath.Join(s.dir, "screenshots"))
	// Stays when the trace is kept
	os.Remove(s.dir)
}
