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
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gwconsole/console-webtests/lib/log"
)

// Report formats
const (
	FormatHTML  = "html"
	FormatJUnit = "junit"
	FormatList  = "list"
)

// JUnitFile is the name of the junit report in the report dir
const JUnitFile = "junit.xml"

// Options of the Reporter
type Options struct {
	Format string
	Dir    string
	Title  string

	// Out receives the streamed list of tests, nothing is streamed when nil
	Out       io.Writer
	Color     bool
	Timestamp bool
	Filter    string
	// Truncate limits the output of junit cases to N lines
	Truncate int
}

// Reporter streams the tests as they complete and writes the report at the end
type Reporter struct {
	opts Options
	list *ListWriter
	col  *Collector
}

// New creates the reporter
func New(opts Options) *Reporter {
	r := &Reporter{opts: opts}
	var onTest func(*Package, *Result)
	if opts.Out != nil {
		r.list = &ListWriter{Out: opts.Out, Color: opts.Color, Timestamp: opts.Timestamp, Filter: opts.Filter}
		onTest = r.list.WriteTest
	}
	r.col = NewCollector(onTest)
	return r
}

// Consume processes the event stream till the end
func (r *Reporter) Consume(in io.Reader) error {
	return r.col.Consume(in)
}

// Finish writes the report in the configured format and prints the summary
func (r *Reporter) Finish() error {
	logger := log.WithFunc("report", "Finish").With("format", r.opts.Format)
	summary := r.col.Summary()
	if r.list != nil {
		for _, pkg := range r.col.Packages {
			r.list.WritePackageOutput(pkg)
		}
		r.list.WriteSummary(summary)
	}

	switch r.opts.Format {
	case FormatHTML:
		return WriteHTML(r.opts.Dir, r.opts.Title, r.col)
	case FormatJUnit:
		if err := os.MkdirAll(r.opts.Dir, 0o755); err != nil {
			return fmt.Errorf("Report: Unable to create report dir: %w", err)
		}
		f, err := os.Create(filepath.Join(r.opts.Dir, JUnitFile))
		if err != nil {
			return fmt.Errorf("Report: Unable to create junit report: %w", err)
		}
		defer f.Close()
		if err := WriteJUnit(f, r.col, JUnitOptions{Filter: r.opts.Filter, Truncate: r.opts.Truncate, Timestamp: r.opts.Timestamp}); err != nil {
			return fmt.Errorf("Report: Unable to write junit report: %w", err)
		}
		logger.Info("Report: JUnit report is written", "path", f.Name())
	case FormatList, "":
	default:
		return fmt.Errorf("Report: Unknown format %q", r.opts.Format)
	}
	return nil
}

// Failed tells if the run has to exit with non-zero status
func (r *Reporter) Failed() bool {
	return r.col.Failed()
}

// Handler serves the report directory
func Handler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, req)
		log.WithFunc("report", "Handler").Debug("Report: Served", "path", req.URL.Path, "elapsed", time.Since(start))
	})
}
