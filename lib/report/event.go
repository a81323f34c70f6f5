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

// Package report turns the `go test -json` event stream of a run into the html, junit and
// list reports
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/gwconsole/console-webtests/lib/log"
)

// Event is a single event of `go test -json`
type Event struct {
	Time    string  `json:"Time"`
	Action  string  `json:"Action"`
	Package string  `json:"Package"`
	Test    string  `json:"Test"`
	Output  string  `json:"Output"`
	Elapsed float64 `json:"Elapsed"`
}

// Line is an output line with the time it was printed
type Line struct {
	Time time.Time
	Text string
}

// Status of a test
type Status string

const (
	StatusRunning Status = "running"
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusSkip    Status = "skip"
)

// Result is a test or subtest with its output
type Result struct {
	Package   string
	Name      string
	Status    Status
	StartTime time.Time
	EndTime   time.Time
	Elapsed   float64
	Output    []Line
	Subtests  []*Result
	Parent    *Result
}

// Short name without the parent prefix
func (r *Result) Short() string {
	if i := strings.LastIndex(r.Name, "/"); i >= 0 && r.Parent != nil {
		return r.Name[i+1:]
	}
	return r.Name
}

// Leaves returns the result itself or all its deepest subtests, scenarios are the leaves
func (r *Result) Leaves() []*Result {
	if len(r.Subtests) == 0 {
		return []*Result{r}
	}
	var out []*Result
	for _, s := range r.Subtests {
		out = append(out, s.Leaves()...)
	}
	return out
}

// Package keeps the tests of a package in the order they started
type Package struct {
	Name   string
	Status Status
	// Output not attached to any test: build errors, panics in TestMain
	Output []Line
	Tests  []*Result

	index map[string]*Result
}

// Collector accumulates the events of a run
type Collector struct {
	Started  time.Time
	Packages []*Package

	index map[string]*Package
	// onTest is called when a top level test completes
	onTest func(pkg *Package, test *Result)
}

// NewCollector creates an empty collector, onTest could be nil
func NewCollector(onTest func(pkg *Package, test *Result)) *Collector {
	return &Collector{
		Started: time.Now(),
		index:   make(map[string]*Package),
		onTest:  onTest,
	}
}

// Consume reads the events till the end of the stream.
// Lines which are not json events are kept as package-less output, go test prints them
// when the build fails.
func (c *Collector) Consume(in io.Reader) error {
	logger := log.WithFunc("report", "Consume")
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			logger.Debug("Report: Not a test event", "line", scanner.Text())
			c.Add(Event{Action: "output", Output: scanner.Text() + "\n"})
			continue
		}
		c.Add(event)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("Report: Error reading test events: %w", err)
	}
	return nil
}

// Add processes one event
func (c *Collector) Add(event Event) {
	pkg := c.pkg(event.Package)
	if event.Test == "" {
		c.packageEvent(pkg, event)
		return
	}
	switch event.Action {
	case "run":
		c.runTest(pkg, event)
	case "output":
		c.addOutput(pkg, event)
	case "pass", "fail", "skip":
		c.completeTest(pkg, event)
	}
}

func (c *Collector) pkg(name string) *Package {
	if pkg, ok := c.index[name]; ok {
		return pkg
	}
	pkg := &Package{Name: name, Status: StatusRunning, index: make(map[string]*Result)}
	c.index[name] = pkg
	c.Packages = append(c.Packages, pkg)
	return pkg
}

func (c *Collector) packageEvent(pkg *Package, event Event) {
	switch event.Action {
	case "output", "build-output":
		pkg.Output = append(pkg.Output, Line{Time: parseTime(event.Time), Text: event.Output})
	case "pass", "skip":
		pkg.Status = Status(event.Action)
	case "fail", "build-fail":
		pkg.Status = StatusFail
		// Tests interrupted by a panic or a timeout never report their result
		for _, t := range pkg.index {
			if t.Status == StatusRunning {
				t.Status = StatusFail
			}
		}
	}
}

func (c *Collector) runTest(pkg *Package, event Event) {
	if _, ok := pkg.index[event.Test]; ok {
		return
	}
	test := &Result{
		Package:   event.Package,
		Name:      event.Test,
		Status:    StatusRunning,
		StartTime: parseTime(event.Time),
	}
	pkg.index[event.Test] = test
	if i := strings.LastIndex(event.Test, "/"); i >= 0 {
		if parent, ok := pkg.index[event.Test[:i]]; ok {
			test.Parent = parent
			parent.Subtests = append(parent.Subtests, test)
			return
		}
	}
	pkg.Tests = append(pkg.Tests, test)
}

// Markers of the verbose output, the result tree shows the same information
var skipPrefixes = []string{"=== RUN ", "=== PAUSE ", "=== CONT ", "=== NAME ", "--- PASS: ", "--- FAIL: ", "--- SKIP: "}

func (c *Collector) addOutput(pkg *Package, event Event) {
	trimmed := strings.TrimLeft(event.Output, " ")
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return
		}
	}
	test, ok := pkg.index[event.Test]
	if !ok {
		return
	}
	test.Output = append(test.Output, Line{Time: parseTime(event.Time), Text: event.Output})
}

func (c *Collector) completeTest(pkg *Package, event Event) {
	test, ok := pkg.index[event.Test]
	if !ok {
		return
	}
	test.Status = Status(event.Action)
	test.EndTime = parseTime(event.Time)
	test.Elapsed = event.Elapsed
	if test.Parent == nil && c.onTest != nil {
		c.onTest(pkg, test)
	}
}

// Failed tells if any test or package failed, skips are not failures
func (c *Collector) Failed() bool {
	for _, pkg := range c.Packages {
		if pkg.Status == StatusFail {
			return true
		}
		for _, t := range pkg.index {
			if t.Status == StatusFail {
				return true
			}
		}
	}
	return false
}

// Summary of the run
type Summary struct {
	Started time.Time `yaml:"started"`
	Elapsed float64   `yaml:"elapsed"`
	Total   int       `yaml:"total"`
	Passed  int       `yaml:"passed"`
	Failed  int       `yaml:"failed"`
	Skipped int       `yaml:"skipped"`

	FailedTests  []string `yaml:"failed_tests,omitempty"`
	SkippedTests []string `yaml:"skipped_tests,omitempty"`
	// FailedPackages lists packages failed without a failing test, like on a build error
	FailedPackages []string `yaml:"failed_packages,omitempty"`
}

// Summary counts the leaf tests of every package
func (c *Collector) Summary() Summary {
	s := Summary{Started: c.Started}
	for _, pkg := range c.Packages {
		pkgFailed := false
		for _, test := range pkg.Tests {
			s.Elapsed += test.Elapsed
			for _, leaf := range test.Leaves() {
				s.Total++
				switch leaf.Status {
				case StatusPass:
					s.Passed++
				case StatusSkip:
					s.Skipped++
					s.SkippedTests = append(s.SkippedTests, pkg.Name+":"+leaf.Name)
				default:
					s.Failed++
					pkgFailed = true
					s.FailedTests = append(s.FailedTests, pkg.Name+":"+leaf.Name)
				}
			}
		}
		if pkg.Status == StatusFail && !pkgFailed {
			s.FailedPackages = append(s.FailedPackages, pkg.Name)
		}
	}
	sort.Strings(s.FailedPackages)
	return s
}

func parseTime(timeStr string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, timeStr); err == nil {
		return t
	}
	return time.Now()
}
