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
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gwconsole/console-webtests/lib/log"
)

//go:embed templates
var templates embed.FS

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

// Files of the html report
const (
	IndexFile       = "index.html"
	SummaryFile     = "summary.yml"
	AttachmentsDir  = "attachments"
	attachmentRegex = `Attachment (\w+): (\S+)\s*$`
)

var attachmentRe = regexp.MustCompile(attachmentRegex)

// AttachmentLine formats the log line the html report picks the captured files from
func AttachmentLine(kind, filePath string) string {
	return fmt.Sprintf("Attachment %s: %s", kind, filePath)
}

type htmlAttachment struct {
	Kind string
	Href string
}

type htmlTest struct {
	Name        string
	Short       string
	Status      Status
	Indent      int
	Elapsed     float64
	Output      string
	Attachments []htmlAttachment
}

type htmlPackage struct {
	Name   string
	Status Status
	Output string
	Tests  []htmlTest
}

type htmlReport struct {
	Title     string
	Generated string
	Summary   Summary
	Packages  []htmlPackage
}

// WriteHTML writes index.html and summary.yml into the dir and copies the attached
// captures next to them, so the report can be opened from disk or served
func WriteHTML(dir, title string, c *Collector) error {
	logger := log.WithFunc("report", "WriteHTML").With("dir", dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("Report: Unable to create report dir: %w", err)
	}

	data := htmlReport{
		Title:     title,
		Generated: time.Now().Format("2006-01-02 15:04:05"),
		Summary:   c.Summary(),
	}
	for _, pkg := range c.Packages {
		hp := htmlPackage{Name: pkg.Name, Status: pkg.Status}
		if pkg.Status == StatusFail {
			hp.Output = formatOutput(pkg.Output, 0, false)
		}
		for _, test := range pkg.Tests {
			hp.Tests = appendTests(hp.Tests, dir, test, 0)
		}
		data.Packages = append(data.Packages, hp)
	}

	f, err := os.Create(filepath.Join(dir, IndexFile))
	if err != nil {
		return fmt.Errorf("Report: Unable to create index: %w", err)
	}
	defer f.Close()
	if err := indexTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("Report: Unable to render index: %w", err)
	}

	summary, err := yaml.Marshal(data.Summary)
	if err != nil {
		return fmt.Errorf("Report: Unable to marshal summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SummaryFile), summary, 0o644); err != nil {
		return fmt.Errorf("Report: Unable to write summary: %w", err)
	}

	logger.Info("Report: HTML report is written", "index", filepath.Join(dir, IndexFile))
	return nil
}

func appendTests(out []htmlTest, dir string, test *Result, depth int) []htmlTest {
	ht := htmlTest{
		Name:    test.Name,
		Short:   test.Short(),
		Status:  test.Status,
		Indent:  depth * 2,
		Elapsed: test.Elapsed,
		Output:  formatOutput(test.Output, 0, false),
	}
	for _, line := range test.Output {
		m := attachmentRe.FindStringSubmatch(strings.TrimSpace(line.Text))
		if m == nil {
			continue
		}
		href, err := copyAttachment(dir, test.Name, m[2])
		if err != nil {
			log.WithFunc("report", "appendTests").Warn("Report: Unable to copy attachment", "path", m[2], "err", err)
			continue
		}
		ht.Attachments = append(ht.Attachments, htmlAttachment{Kind: m[1], Href: href})
	}
	out = append(out, ht)
	for _, sub := range test.Subtests {
		out = appendTests(out, dir, sub, depth+1)
	}
	return out
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// copyAttachment places the file under attachments/<test> and returns the relative link
func copyAttachment(dir, testName, src string) (string, error) {
	testDir := unsafeChars.ReplaceAllString(testName, "_")
	name := filepath.Base(src)
	dstDir := filepath.Join(dir, AttachmentsDir, testDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", err
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()
	out, err := os.Create(filepath.Join(dstDir, name))
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return "", err
	}
	return path.Join(AttachmentsDir, testDir, name), nil
}

// ReadSummary loads summary.yml of the written report
func ReadSummary(dir string) (*Summary, error) {
	data, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("Report: Unable to parse summary: %w", err)
	}
	return &s, nil
}
