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

// Package helper runs the console scenarios in real browsers with playwright
package helper

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/playwright-community/playwright-go"

	"github.com/gwconsole/console-webtests/lib/config"
	"github.com/gwconsole/console-webtests/lib/log"
)

// Browser is the playwright driver with the launched browser, shared by the scenarios of a suite
type Browser struct {
	cfg *config.Config

	pw      *playwright.Playwright
	browser playwright.Browser
	name    string
}

// LaunchBrowser starts playwright and launches the configured browser
func LaunchBrowser(cfg *config.Config) (*Browser, error) {
	logger := log.WithFunc("helper", "LaunchBrowser").With("browser", cfg.Browser, "headless", cfg.Headless)

	var err error
	b := &Browser{cfg: cfg, name: cfg.Browser}
	if b.pw, err = playwright.Run(); err != nil {
		return nil, fmt.Errorf("Helper: Could not start Playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch b.name {
	case "firefox":
		browserType = b.pw.Firefox
	case "webkit":
		browserType = b.pw.WebKit
	default:
		browserType = b.pw.Chromium
	}

	// By default tests are running headless, HEADFUL env shows the browser
	b.browser, err = browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		b.pw.Stop()
		return nil, fmt.Errorf("Helper: Could not launch %s: %w", b.name, err)
	}
	logger.Debug("Helper: Browser launched", "version", b.browser.Version())
	return b, nil
}

// Close stops the browser and the driver
func (b *Browser) Close() error {
	if err := b.browser.Close(); err != nil {
		b.pw.Stop()
		return fmt.Errorf("Helper: Could not close browser: %w", err)
	}
	if err := b.pw.Stop(); err != nil {
		return fmt.Errorf("Helper: Could not stop Playwright: %w", err)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// captureDir is the dir of the scenario attempt: <capture_dir>/<test name>/attempt-<N>
func captureDir(root, testName string, attempt int) string {
	return filepath.Join(root, unsafeChars.ReplaceAllString(testName, "_"), fmt.Sprintf("attempt-%d", attempt))
}

// ensureDir creates the parent dirs of the path and returns it
func ensureDir(paths ...string) string {
	out := filepath.Join(paths...)
	os.MkdirAll(filepath.Dir(out), 0o755)
	return out
}

// makeDir creates the dir and returns it
func makeDir(paths ...string) string {
	out := filepath.Join(paths...)
	os.MkdirAll(out, 0o755)
	return out
}

// lazyBrowser launches the browser on the first scenario that needs it, the browser
// lives till the cleanup of the owner test
type lazyBrowser struct {
	once    sync.Once
	browser *Browser
	err     error
}

func (l *lazyBrowser) get(owner testing.TB, cfg *config.Config) (*Browser, error) {
	l.once.Do(func() {
		if l.browser, l.err = LaunchBrowser(cfg); l.err != nil {
			return
		}
		owner.Cleanup(func() {
			if err := l.browser.Close(); err != nil {
				owner.Errorf("ERROR: %v", err)
			}
		})
	})
	return l.browser, l.err
}
