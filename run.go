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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gwconsole/console-webtests/lib/config"
	"github.com/gwconsole/console-webtests/lib/log"
	"github.com/gwconsole/console-webtests/lib/probe"
	"github.com/gwconsole/console-webtests/lib/report"
	"github.com/gwconsole/console-webtests/lib/util"
)

// ResolvedConfigFile is written into the report dir and passed to the test process
const ResolvedConfigFile = "webtests-config.json"

// scenariosPackage is where the browser scenarios live
const scenariosPackage = "./webtests/..."

type reportFlags struct {
	format    string
	dir       string
	filter    string
	truncate  int
	timestamp bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.format, "reporter", "", "report format (html, junit, list), overrides the config")
	flags.StringVar(&f.dir, "report-dir", "", "where to write the report, overrides the config")
	flags.StringVar(&f.filter, "filter", "", "filter the listed tests (failed, passed, non-failed, non-passed, all)")
	flags.IntVar(&f.truncate, "truncate", 0, "truncate junit test output to N lines")
	flags.BoolVar(&f.timestamp, "stdout-timestamp", false, "add timestamps to the listed output")
}

func (f *reportFlags) reporter(cfg *config.Config) *report.Reporter {
	if f.format != "" {
		cfg.Reporter = f.format
	}
	if f.dir != "" {
		cfg.ReportDir = f.dir
	}
	return report.New(report.Options{
		Format:    cfg.Reporter,
		Dir:       cfg.ReportDir,
		Title:     "Console webtests: " + cfg.BaseURL,
		Out:       os.Stdout,
		Color:     stdoutIsTerminal(),
		Timestamp: f.timestamp,
		Filter:    f.filter,
		Truncate:  f.truncate,
	})
}

func newRunCmd() *cobra.Command {
	var rf reportFlags
	var runPattern string
	cmd := &cobra.Command{
		Use:   "run [-- go test args]",
		Short: "Run the browser scenarios and write the report",
		RunE: func(_ *cobra.Command, args []string) error {
			logger := log.WithFunc("main", "run")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rep := rf.reporter(cfg)

			// Not fatal: scenarios skip themselves when the console is unreachable
			if res, err := probe.Check(context.Background(), cfg.BaseURL, cfg.NavigationTimeout.Std()); err != nil {
				logger.Warn("Run: Console preflight failed, scenarios will be skipped", "url", cfg.BaseURL, "err", err)
			} else if !res.HasApp {
				logger.Warn("Run: Console document has no application container", "url", cfg.BaseURL)
			}

			resolved, err := writeResolvedConfig(cfg)
			if err != nil {
				return err
			}

			goArgs := testArgs(cfg, runPattern, args)
			logger.Info("Run: Starting scenarios", "args", goArgs, "config", resolved)
			exitFailed, err := runGoTest(goArgs, resolved, rep)
			if err != nil {
				return err
			}
			if err := rep.Finish(); err != nil {
				return err
			}
			if exitFailed || rep.Failed() {
				return errTestsFailed
			}
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&runPattern, "run", "", "run only the scenarios matching the go test -run pattern")
	return cmd
}

func newReportCmd() *cobra.Command {
	var rf reportFlags
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the report from `go test -json` output read on stdin",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rep := rf.reporter(cfg)
			if err := rep.Consume(os.Stdin); err != nil {
				return err
			}
			if err := rep.Finish(); err != nil {
				return err
			}
			if rep.Failed() {
				return errTestsFailed
			}
			return nil
		},
	}
	rf.register(cmd)
	return cmd
}

// writeResolvedConfig stores the config for the test process, the dirs are made absolute
// because go test runs the package in its own dir
func writeResolvedConfig(cfg *config.Config) (string, error) {
	resolved := *cfg
	var err error
	if resolved.CaptureDir, err = filepath.Abs(cfg.CaptureDir); err != nil {
		return "", err
	}
	if resolved.ReportDir, err = filepath.Abs(cfg.ReportDir); err != nil {
		return "", err
	}
	out := filepath.Join(resolved.ReportDir, ResolvedConfigFile)
	if err := resolved.WriteFile(out); err != nil {
		return "", fmt.Errorf("Run: Unable to write resolved config: %w", err)
	}
	return out, nil
}

// testArgs builds the go test command line, the retries are done by the scenarios themselves
func testArgs(cfg *config.Config, runPattern string, extra []string) []string {
	args := []string{"test", "-json", "-count=1", "-timeout=30m"}
	if cfg.Workers > 0 {
		args = append(args, "-parallel", strconv.Itoa(cfg.Workers))
	}
	if runPattern != "" {
		args = append(args, "-run", runPattern)
	}
	args = append(args, extra...)
	return append(args, scenariosPackage)
}

// runGoTest streams the events of the test process into the reporter, reports if the
// process exited with error
func runGoTest(args []string, cfgFile string, rep *report.Reporter) (bool, error) {
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), config.EnvConfig+"="+cfgFile)
	stderr := &util.LineLogger{Logger: log.WithFunc("main", "runGoTest"), Level: slog.LevelWarn, Prefix: "go test: "}
	defer stderr.Close()
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return false, err
	}
	if err := cmd.Start(); err != nil {
		return false, fmt.Errorf("Run: Unable to start go test: %w", err)
	}

	consumeErr := rep.Consume(stdout)
	// Drain the rest so the process is not blocked on a full pipe
	io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()
	if consumeErr != nil {
		return false, consumeErr
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return false, fmt.Errorf("Run: go test failed: %w", waitErr)
	}
	if exitErr != nil && !rep.Failed() {
		// Exited with error without reporting a failed test, like on a broken build
		log.WithFunc("main", "runGoTest").Error("Run: go test exited with error", "code", exitErr.ExitCode())
	}
	return exitErr != nil, nil
}
