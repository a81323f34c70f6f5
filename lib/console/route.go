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

package console

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/gwconsole/console-webtests/lib/log"
	"github.com/gwconsole/console-webtests/lib/ui"
)

// DefaultProtocol is used when the route does not set one
const DefaultProtocol = "http"

type inputKind int

const (
	otherInput inputKind = iota
	nameInput
	pathInput
)

// classifyInput sorts a text input of the route form by its name and placeholder:
// anything mentioning a path is the path field, an unlabeled input or one mentioning
// a name is the name field
func classifyInput(name, placeholder string) inputKind {
	attrs := strings.ToLower(strings.TrimSpace(name + " " + placeholder))
	switch {
	case strings.Contains(attrs, "path"):
		return pathInput
	case attrs == "" || strings.Contains(attrs, "name"):
		return nameInput
	}
	return otherInput
}

// formScan keeps the first visible input of every kind found on the route form
type formScan struct {
	done   bool
	inputs map[inputKind]ui.Element
}

func (s *formScan) scan(p ui.Page) error {
	if s.done {
		return nil
	}
	s.done = true
	s.inputs = make(map[inputKind]ui.Element)
	els, err := p.All(selTextInputs)
	if err != nil {
		return err
	}
	for _, el := range els {
		if visible, err := el.Visible(); err != nil || !visible {
			if ui.IsDriverError(err) {
				return err
			}
			continue
		}
		name, err := el.Attr("name")
		if err != nil {
			return err
		}
		placeholder, err := el.Attr("placeholder")
		if err != nil {
			return err
		}
		kind := classifyInput(name, placeholder)
		if _, ok := s.inputs[kind]; !ok && kind != otherInput {
			s.inputs[kind] = el
		}
	}
	return nil
}

// strategy filling the first scanned input of the kind
func (s *formScan) fill(kind inputKind, value string) ui.Strategy {
	return ui.Strategy{Name: "input scan", Run: func(p ui.Page) (bool, error) {
		if err := s.scan(p); err != nil {
			return false, err
		}
		el, ok := s.inputs[kind]
		if !ok {
			return false, nil
		}
		return true, el.Fill(value)
	}}
}

// CreateRoute opens the route creation form of the parent service, fills it and submits.
// The form layout differs between console versions, so every field has a list of
// strategies to locate it.
func (c *Console) CreateRoute(r Route) error {
	if r.Protocol == "" {
		r.Protocol = DefaultProtocol
	}
	logger := log.WithFunc("console", "CreateRoute").With("route", r.Name, "service", r.Service)
	if err := r.Validate(); err != nil {
		return err
	}

	if err := c.openRouteForm(logger, r.Service); err != nil {
		return err
	}
	if err := c.fillRouteIdentity(logger, r); err != nil {
		return err
	}
	if err := c.selectProtocol(logger, r.Protocol); err != nil {
		return err
	}
	if err := c.bindService(logger, r.Service); err != nil {
		return err
	}

	act := c.cfg.ActionTimeout.Std()
	out, err := ui.FirstOf(c.page,
		ui.OnVisible("submit by role", selSubmitRole, act, ui.Click),
		ui.OnVisible("submit by text", selSubmitText, act, ui.Click),
	)
	if err != nil {
		return err
	}
	if !out.Found {
		return out.Err("route submit control")
	}
	logger.Debug("Console: Submitted route form", "by", out.By)
	if err := c.settle(); err != nil {
		return err
	}
	return c.ExpectListed("routes", r.Name)
}

// openRouteForm tries the add-route control of the service detail view first and
// navigates to the creation view directly otherwise
func (c *Console) openRouteForm(logger *slog.Logger, service string) error {
	nav := c.cfg.NavigationTimeout.Std()
	entry := c.cfg.EntryTimeout.Std()
	out, err := ui.FirstOf(c.page,
		ui.Strategy{Name: "service detail", Run: func(p ui.Page) (bool, error) {
			if err := p.Goto(c.cfg.ListURL("services"), nav); err != nil {
				return false, err
			}
			link := p.First(selListed(service))
			if err := link.WaitVisible(entry); err != nil {
				return false, err
			}
			if err := link.Click(); err != nil {
				return false, err
			}
			add := p.First(selAddRoute)
			if err := add.WaitVisible(entry); err != nil {
				return false, err
			}
			return true, add.Click()
		}},
		ui.Strategy{Name: "direct", Run: func(p ui.Page) (bool, error) {
			return true, p.Goto(c.cfg.URL(c.cfg.Workspace, "routes", "create"), nav)
		}},
	)
	if err != nil {
		return err
	}
	for _, miss := range out.Misses {
		logger.Debug("Console: Entry strategy missed", "err", miss)
	}
	if !out.Found {
		return out.Err("route creation view")
	}
	logger.Debug("Console: Opened route creation view", "by", out.By)
	if err := c.page.WaitForNetworkIdle(nav); err != nil {
		return fmt.Errorf("Console: Route creation view did not settle: %w", err)
	}
	return nil
}

func (c *Console) fillRouteIdentity(logger *slog.Logger, r Route) error {
	vis := c.cfg.VisibilityTimeout.Std()
	scan := &formScan{}
	fields := []struct {
		field  string
		value  string
		testID ui.Selector
		kind   inputKind
		attr   ui.Selector
	}{
		{"name", r.Name, selRouteNameTestID, nameInput, selRouteNameAttr},
		{"path", r.Path, selRoutePathTestID, pathInput, selRoutePathAttr},
	}
	for _, f := range fields {
		out, err := ui.FirstOf(c.page,
			ui.OnVisible("test id", f.testID, vis, ui.Fill(f.value)),
			scan.fill(f.kind, f.value),
			ui.OnVisible("attribute", f.attr, vis, ui.Fill(f.value)),
		)
		if err != nil {
			return err
		}
		if !out.Found {
			logger.Warn("Console: Route form field not found", "field", f.field, "err", out.Err(f.field))
			continue
		}
		logger.Debug("Console: Filled route form field", "field", f.field, "by", out.By)
	}
	return nil
}

// selectProtocol is optional, the console may default to the protocol already
func (c *Console) selectProtocol(logger *slog.Logger, protocol string) error {
	vis := c.cfg.VisibilityTimeout.Std()
	out, err := ui.FirstOf(c.page,
		ui.OnVisible("native select", selProtocolSelect, vis, func(el ui.Element) error {
			return el.Select(protocol)
		}),
		ui.OnVisible("combobox", selProtocolCombobox, vis, func(el ui.Element) error {
			if err := el.Click(); err != nil {
				return err
			}
			return c.pickOption(optionLabel(protocol), vis)
		}),
		ui.OnVisible("plain input", selProtocolInput, vis, ui.Fill(protocol)),
	)
	if err != nil {
		return err
	}
	if !out.Found {
		logger.Debug("Console: Protocol control not found, keeping the default", "err", out.Err("protocol"))
		return nil
	}
	logger.Debug("Console: Selected protocol", "protocol", protocol, "by", out.By)
	return nil
}

// bindService is optional, the form opened from the service detail view is already bound
func (c *Console) bindService(logger *slog.Logger, service string) error {
	vis := c.cfg.VisibilityTimeout.Std()
	pick := func(el ui.Element) error {
		if err := el.Click(); err != nil {
			return err
		}
		return c.pickOption(optionLabel(service), vis)
	}
	out, err := ui.FirstOf(c.page,
		ui.OnVisible("native select", selServiceSelect, vis, func(el ui.Element) error {
			return el.Select(service)
		}),
		ui.OnVisible("picker", selServicePicker, vis, pick),
		ui.OnVisible("combobox", selServiceCombobox, vis, pick),
	)
	if err != nil {
		return err
	}
	if !out.Found {
		logger.Debug("Console: Service picker not found", "err", out.Err("service picker"))
		return nil
	}
	logger.Debug("Console: Bound route to service", "by", out.By)
	return nil
}

// optionLabel matches the whole option label, "test-service" never picks "test-service-2"
func optionLabel(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*` + regexp.QuoteMeta(label) + `\s*$`)
}

// pickOption clicks the option of the opened dropdown
func (c *Console) pickOption(label *regexp.Regexp, timeout time.Duration) error {
	opt := c.page.First(selOption(label))
	if err := opt.WaitVisible(timeout); err != nil {
		return err
	}
	return opt.Click()
}
