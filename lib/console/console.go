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

// Package console drives the admin console of the gateway: the lifecycle hook and the
// resource creation workflows. Every call goes through the explicitly passed page of the
// scenario session.
package console

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gwconsole/console-webtests/lib/config"
	"github.com/gwconsole/console-webtests/lib/ui"
)

var validate = validator.New()

// Console is the session handle the workflows run on
type Console struct {
	page ui.Page
	cfg  *config.Config
}

// New binds the workflows to the page of one scenario session
func New(page ui.Page, cfg *config.Config) *Console {
	return &Console{page: page, cfg: cfg}
}

// Service is an upstream destination of the gateway
type Service struct {
	Name string `validate:"required,max=128"`
	URL  string `validate:"required,url"`
}

// Validate checks the descriptor before touching the UI
func (s Service) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("Console: Invalid service %q: %w", s.Name, err)
	}
	return nil
}

// Route binds an inbound path and protocol to a Service
type Route struct {
	Name     string `validate:"required,max=128"`
	Path     string `validate:"required,startswith=/"`
	Protocol string `validate:"required,oneof=http https grpc grpcs ws wss"`
	// Service is the display name of the parent service, it has to exist already
	Service string `validate:"required"`
}

// Validate checks the descriptor before touching the UI
func (r Route) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("Console: Invalid route %q: %w", r.Name, err)
	}
	return nil
}

// exactText matches the whole text of an element ignoring surrounding whitespace
func exactText(s string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*` + regexp.QuoteMeta(s) + `\s*$`)
}

// isCreateView tells if the url points to a resource creation form
func isCreateView(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.TrimSuffix(u.Path, "/"), "/create")
}

// Locators of the console views
var (
	selAppRoot = ui.CSS("#app, #root")
	selModalOK = ui.CSS(`[role="dialog"] button, .modal button`).HasText(regexp.MustCompile(`(?i)^\s*ok\s*$`))

	selNewService  = ui.CSS("a, button").HasText(regexp.MustCompile(`(?i)(new|add|create)\s+(gateway\s+)?service`))
	selServiceName = ui.CSS(`input[name*="name" i]`)
	selServiceURL  = ui.CSS(`input[name*="url" i]`)
	selSave        = ui.Role("button", regexp.MustCompile(`(?i)save`))

	selAddRoute = ui.CSS("a, button").HasText(regexp.MustCompile(`(?i)(add|new|create)\s+(a\s+)?route`))

	selRouteNameTestID = ui.TestID("route-form-name")
	selRoutePathTestID = ui.TestID("route-form-paths-input-1")
	selTextInputs      = ui.CSS(`input[type="text"], input:not([type])`)
	selRouteNameAttr   = ui.CSS(`input[name*="name" i]`)
	selRoutePathAttr   = ui.CSS(`input[name*="path" i], input[placeholder*="path" i]`)

	selProtocolSelect   = ui.CSS(`select[name*="protocol" i]`)
	selProtocolCombobox = ui.Role("combobox", regexp.MustCompile(`(?i)protocol`))
	selProtocolInput    = ui.CSS(`input[name*="protocol" i]`)

	selServiceSelect   = ui.CSS(`select[name*="service" i]`)
	selServicePicker   = ui.TestID("route-form-service-id")
	selServiceCombobox = ui.Role("combobox", regexp.MustCompile(`(?i)service`))

	selSubmitRole = ui.Role("button", regexp.MustCompile(`(?i)^\s*(save|create|submit)\b`))
	selSubmitText = ui.CSS(`button, [type="submit"]`).HasText(regexp.MustCompile(`(?i)save|create|submit`))
)

// option of an opened combobox or picker
func selOption(label *regexp.Regexp) ui.Selector {
	return ui.CSS(`[role="option"], .select-item`).HasText(label)
}

// listed identifier of a resource in a list view
func selListed(name string) ui.Selector {
	return ui.Text(exactText(name))
}
