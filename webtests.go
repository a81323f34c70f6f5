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

// Starting point for the console-webtests cmd
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gwconsole/console-webtests/lib/config"
	"github.com/gwconsole/console-webtests/lib/log"
	"github.com/gwconsole/console-webtests/lib/probe"
	"github.com/gwconsole/console-webtests/lib/report"
)

// Set by the build with -ldflags "-X main.version=..."
var version = "dev"

// errTestsFailed makes the process exit with non-zero status without printing usage
var errTestsFailed = errors.New("some scenarios failed")

// Values of the persistent flags
var (
	cfgPath      string
	baseURL      string
	logVerbosity string
	logTimestamp bool
)

func main() {
	cmd := &cobra.Command{
		Use:          "console-webtests",
		Short:        "Gateway admin console web tests",
		Long:         `Runs the browser scenarios against the gateway admin console and reports the results`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(_ /*cmd*/ *cobra.Command, _ /*args*/ []string) (err error) {
			logCfg := log.DefaultConfig()
			logCfg.Level = logVerbosity
			logCfg.UseTimestamp = logTimestamp
			return log.Initialize(logCfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cfgPath, "cfg", "c", "", "yaml, json or toml configuration file")
	flags.StringVarP(&baseURL, "base-url", "u", "", "root address of the console, overrides the config and BASE_URL env")
	flags.StringVarP(&logVerbosity, "verbosity", "v", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&logTimestamp, "timestamp", true, "prepend timestamps for each log line")
	flags.Lookup("timestamp").NoOptDefVal = "false"

	cmd.AddCommand(newRunCmd(), newReportCmd(), newCheckCmd(), newInstallCmd(), newShowReportCmd())

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the configuration: defaults, file, env and then the flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the console is served",
		RunE: func(_ *cobra.Command, _ []string) error {
			logger := log.WithFunc("main", "check")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			res, err := probe.Check(context.Background(), cfg.BaseURL, cfg.NavigationTimeout.Std())
			if err != nil {
				logger.Error("Check: Console is not available", "url", cfg.BaseURL, "err", err)
				return err
			}
			if !res.HasApp {
				logger.Warn("Check: Document has no application container", "url", res.URL, "container", probe.AppContainer)
			}
			fmt.Printf("%s: status %d, title %q, app container %v, %s\n", res.URL, res.Status, res.Title, res.HasApp, res.Elapsed.Round(time.Millisecond))
			return nil
		},
	}
}

func newInstallCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the playwright driver and the configured browser",
		RunE: func(_ *cobra.Command, _ []string) error {
			logger := log.WithFunc("main", "install")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			browsers := []string{cfg.Browser}
			if all {
				browsers = []string{"chromium", "firefox", "webkit"}
			}
			logger.Info("Install: Installing playwright", "browsers", browsers)
			if err := playwright.Install(&playwright.RunOptions{Browsers: browsers, Verbose: logVerbosity == "debug"}); err != nil {
				return fmt.Errorf("Install: Unable to install playwright: %w", err)
			}
			logger.Info("Install: Done")
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "install all the supported browsers")
	return cmd
}

func newShowReportCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "show-report [dir]",
		Short: "Serve the html report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			logger := log.WithFunc("main", "show-report")
			dir := ""
			if len(args) > 0 {
				dir = args[0]
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				dir = cfg.ReportDir
			}
			if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("ShowReport: No report found: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			srv := &http.Server{Addr: addr, Handler: report.Handler(dir), ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			logger.Info("ShowReport: Serving report, press Ctrl+C to stop", "url", "http://"+addr+"/", "dir", dir)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9323", "address to serve the report on")
	return cmd
}
