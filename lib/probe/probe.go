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

// Package probe checks from plain HTTP that the console is served before starting browsers
package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gwconsole/console-webtests/lib/log"
)

// AppContainer is where the console application mounts itself
const AppContainer = "#app, #root"

// Result of the check
type Result struct {
	URL    string
	Status int
	Title  string
	// HasApp tells if the document contains the application container
	HasApp  bool
	Elapsed time.Duration
}

// Check requests the console root and parses the returned document.
// Transport errors and http error statuses are returned as errors, a document without
// the application container is not an error: the result just tells about it.
func Check(ctx context.Context, baseURL string, timeout time.Duration) (*Result, error) {
	logger := log.WithFunc("probe", "Check").With("url", baseURL)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("Probe: Unable to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Probe: Console is not reachable: %w", err)
	}
	defer resp.Body.Close()

	res := &Result{URL: baseURL, Status: resp.StatusCode, Elapsed: time.Since(start)}
	if resp.StatusCode >= http.StatusBadRequest {
		return res, fmt.Errorf("Probe: Console responded with status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return res, fmt.Errorf("Probe: Unable to parse console document: %w", err)
	}
	res.Title = strings.TrimSpace(doc.Find("title").First().Text())
	res.HasApp = doc.Find(AppContainer).Length() > 0

	logger.Debug("Probe: Console responded", "status", res.Status, "title", res.Title, "has_app", res.HasApp, "elapsed", res.Elapsed)
	return res, nil
}
