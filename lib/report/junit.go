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
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
)

// JUnitTestSuite represents a JUnit XML test suite
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents a JUnit XML test case
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Classname string        `xml:"classname,attr"`
	Name      string        `xml:"name,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a JUnit XML failure
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// JUnitSkipped marks a skipped test case
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitOptions controls the content of the cases
type JUnitOptions struct {
	Filter    string
	Truncate  int
	Timestamp bool
}

// WriteJUnit writes one suite per package, every test and subtest is a case
func WriteJUnit(w io.Writer, c *Collector, opts JUnitOptions) error {
	var suites []*JUnitTestSuite
	for _, pkg := range c.Packages {
		suite := &JUnitTestSuite{
			Name:      pkg.Name,
			Timestamp: c.Started.Format(time.RFC3339),
		}
		for _, test := range pkg.Tests {
			addCases(suite, pkg.Name, test, opts)
		}
		if pkg.Status == StatusFail && suite.Failures == 0 {
			suite.Errors++
			suite.Tests++
			suite.TestCases = append(suite.TestCases, JUnitTestCase{
				Classname: pkg.Name,
				Name:      "package",
				Failure: &JUnitFailure{
					Message: "Package failed",
					Type:    "error",
					Content: formatOutput(pkg.Output, opts.Truncate, opts.Timestamp),
				},
			})
		}
		if len(suite.TestCases) > 0 {
			suites = append(suites, suite)
		}
	}

	writer := bufio.NewWriter(w)
	fmt.Fprintf(writer, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(writer, "<testsuites>\n")
	for _, suite := range suites {
		suiteXML, err := xml.MarshalIndent(suite, "  ", "    ")
		if err != nil {
			return err
		}
		writer.Write(suiteXML)
		fmt.Fprintf(writer, "\n")
	}
	fmt.Fprintf(writer, "</testsuites>\n")
	return writer.Flush()
}

func addCases(suite *JUnitTestSuite, pkgName string, test *Result, opts JUnitOptions) {
	if includeTest(test, opts.Filter) {
		tc := JUnitTestCase{
			Classname: pkgName,
			Name:      test.Name,
			Time:      test.Elapsed,
			SystemOut: formatOutput(test.Output, opts.Truncate, opts.Timestamp),
		}
		switch test.Status {
		case StatusFail, StatusRunning:
			suite.Failures++
			tc.Failure = &JUnitFailure{
				Message: "Test failed",
				Type:    "failure",
				Content: lastLines(test.Output, 20),
			}
		case StatusSkip:
			suite.Skipped++
			tc.Skipped = &JUnitSkipped{Message: strings.TrimSpace(lastLines(test.Output, 1))}
		}
		suite.TestCases = append(suite.TestCases, tc)
		suite.Tests++
		suite.Time += test.Elapsed
	}
	for _, sub := range test.Subtests {
		addCases(suite, pkgName, sub, opts)
	}
}

func formatOutput(output []Line, truncate int, addTimestamp bool) string {
	if len(output) == 0 {
		return ""
	}
	var b strings.Builder
	for _, line := range output {
		if addTimestamp {
			fmt.Fprintf(&b, "[%s] ", stamp(line.Time))
		}
		b.WriteString(line.Text)
	}
	out := b.String()

	if truncate > 0 {
		lines := strings.Split(out, "\n")
		if len(lines) > truncate {
			// Keeping only beginning and end lines
			begin := lines[:truncate/2]
			end := lines[len(lines)-truncate/2:]
			out = strings.Join(begin, "\n") + "\n\n... (truncated) ...\n\n" + strings.Join(end, "\n")
		}
	}
	return out
}

func lastLines(output []Line, n int) string {
	if len(output) > n {
		output = output[len(output)-n:]
	}
	return formatOutput(output, 0, false)
}
