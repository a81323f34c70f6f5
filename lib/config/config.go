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

// Package config holds the run configuration of the console web tests
package config

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/gwconsole/console-webtests/lib/log"
	"github.com/gwconsole/console-webtests/lib/monitoring"
	"github.com/gwconsole/console-webtests/lib/util"
)

// EnvConfig names the file the test process reads the configuration from
const EnvConfig = "WEBTESTS_CONFIG"

// Trace capture policies
const (
	TraceOff             = "off"
	TraceOn              = "on"
	TraceOnFirstRetry    = "on-first-retry"
	TraceRetainOnFailure = "retain-on-failure"
)

// Config is loaded once before any scenario and is not changed afterwards
type Config struct {
	BaseURL   string `json:"base_url" toml:"base_url" validate:"required,url"`
	Workspace string `json:"workspace" toml:"workspace" validate:"required,excludesall=/?#"`

	ExpectTimeout     util.Duration `json:"expect_timeout" toml:"expect_timeout" validate:"gt=0"`
	NavigationTimeout util.Duration `json:"navigation_timeout" toml:"navigation_timeout" validate:"gt=0"`
	ActionTimeout     util.Duration `json:"action_timeout" toml:"action_timeout" validate:"gt=0"`
	VisibilityTimeout util.Duration `json:"visibility_timeout" toml:"visibility_timeout" validate:"gt=0"`
	EntryTimeout      util.Duration `json:"entry_timeout" toml:"entry_timeout" validate:"gt=0"`
	SettleDelay       util.Duration `json:"settle_delay" toml:"settle_delay" validate:"gte=0"`
	RenderDelay       util.Duration `json:"render_delay" toml:"render_delay" validate:"gte=0"`

	Retries       int  `json:"retries" toml:"retries" validate:"gte=0,lte=10"`
	Workers       int  `json:"workers" toml:"workers" validate:"gte=0"`
	FullyParallel bool `json:"fully_parallel" toml:"fully_parallel"`

	Browser  string `json:"browser" toml:"browser" validate:"oneof=chromium firefox webkit"`
	Headless bool   `json:"headless" toml:"headless"`

	Reporter   string `json:"reporter" toml:"reporter" validate:"oneof=html junit list"`
	ReportDir  string `json:"report_dir" toml:"report_dir" validate:"required"`
	CaptureDir string `json:"capture_dir" toml:"capture_dir" validate:"required"`
	Trace      string `json:"trace" toml:"trace" validate:"oneof=off on on-first-retry retain-on-failure"`

	LogLevel   string            `json:"log_level" toml:"log_level" validate:"oneof=debug info warn error"`
	Monitoring monitoring.Config `json:"monitoring" toml:"monitoring"`
}

// IsCI tells if the run happens under a CI pipeline
func IsCI() bool {
	v, ok := os.LookupEnv("CI")
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		// Pipelines set it to their own name sometimes, empty is still unset
		return v != ""
	}
	return b
}

// DefaultConfig returns the configuration used when nothing is set, CI env changes
// the retries and workers defaults
func DefaultConfig() *Config {
	cfg := &Config{
		BaseURL:   "http://localhost:8002/",
		Workspace: "default",

		ExpectTimeout:     util.Duration(20 * time.Second),
		NavigationTimeout: util.Duration(10 * time.Second),
		ActionTimeout:     util.Duration(5 * time.Second),
		VisibilityTimeout: util.Duration(time.Second),
		EntryTimeout:      util.Duration(5 * time.Second),
		SettleDelay:       util.Duration(time.Second),
		RenderDelay:       util.Duration(time.Second),

		Browser:  "chromium",
		Headless: true,

		Reporter:   "html",
		ReportDir:  "webtests-report",
		CaptureDir: "webtests-results",
		Trace:      TraceOnFirstRetry,

		LogLevel:   "info",
		Monitoring: monitoring.DefaultConfig(),
	}
	if IsCI() {
		cfg.Retries = 2
		cfg.Workers = 1
	}
	return cfg
}

// Load builds the configuration: defaults, then the file (if any), then env overrides
func Load(cfgPath string) (*Config, error) {
	logger := log.WithFunc("config", "Load")

	cfg := DefaultConfig()
	if err := cfg.ReadConfigFile(cfgPath); err != nil {
		return nil, fmt.Errorf("Config: Unable to read config file %q: %w", cfgPath, err)
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Config: Loaded", "path", cfgPath, "base_url", cfg.BaseURL, "browser", cfg.Browser, "retries", cfg.Retries)
	return cfg, nil
}

// LoadFromEnv is used by the test process, the file is named by WEBTESTS_CONFIG
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv(EnvConfig))
}

// ReadConfigFile merges the file into the config, the format is detected by extension
func (c *Config) ReadConfigFile(cfgPath string) error {
	if cfgPath == "" {
		return nil
	}

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(cfgPath)) {
	case ".toml":
		return toml.Unmarshal(data, c)
	case ".yml", ".yaml", ".json", "":
		return yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(cfgPath))
	}
}

// ApplyEnv overrides the values with the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv("BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("BROWSER"); v != "" {
		c.Browser = v
	}
	if os.Getenv("HEADFUL") != "" {
		c.Headless = false
	}
}

// Validate checks the values are usable
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("Config: Invalid configuration: %w", err)
	}
	return nil
}

// WriteFile stores the config as yaml, or as json when the path ends with .json
func (c *Config) WriteFile(cfgPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if strings.ToLower(filepath.Ext(cfgPath)) == ".json" {
		if data, err = yaml.YAMLToJSON(data); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(cfgPath, data, 0o644)
}

// URL resolves the path elements against the base URL
func (c *Config) URL(elem ...string) string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return strings.TrimSuffix(c.BaseURL, "/") + "/" + path.Join(elem...)
	}
	u.Path = path.Join(append([]string{"/", u.Path}, elem...)...)
	return u.String()
}

// ListURL is the list view of the resource kind ("services", "routes") in the workspace
func (c *Config) ListURL(kind string) string {
	return c.URL(c.Workspace, kind)
}
