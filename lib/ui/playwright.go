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

package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

type pwPage struct {
	page playwright.Page
}

// NewPlaywrightPage wraps the playwright page
func NewPlaywrightPage(page playwright.Page) Page {
	return &pwPage{page: page}
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// driverErr marks errors of a terminated session, everything else is returned as is
func driverErr(err error) error {
	if err != nil && errors.Is(err, playwright.ErrTargetClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return err
}

func (p *pwPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   ms(timeout),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		if err = driverErr(err); errors.Is(err, ErrClosed) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
	}
	return nil
}

func (p *pwPage) WaitForNetworkIdle(timeout time.Duration) error {
	return driverErr(p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: ms(timeout),
	}))
}

func (p *pwPage) Pause(d time.Duration) {
	p.page.WaitForTimeout(float64(d.Milliseconds()))
}

func (p *pwPage) URL() string {
	return p.page.URL()
}

func (p *pwPage) locator(sel Selector) playwright.Locator {
	switch sel.Kind {
	case ByRole:
		opts := playwright.PageGetByRoleOptions{}
		if sel.Name != nil {
			opts.Name = sel.Name
		}
		return p.page.GetByRole(playwright.AriaRole(sel.Query), opts)
	case ByTestID:
		return p.page.GetByTestId(sel.Query)
	case ByText:
		return p.page.GetByText(sel.Name)
	default:
		loc := p.page.Locator(sel.Query)
		if sel.Name != nil {
			loc = loc.Filter(playwright.LocatorFilterOptions{HasText: sel.Name})
		}
		return loc
	}
}

func (p *pwPage) First(sel Selector) Element {
	return &pwElement{loc: p.locator(sel).First(), sel: sel}
}

func (p *pwPage) All(sel Selector) ([]Element, error) {
	locs, err := p.locator(sel).All()
	if err != nil {
		return nil, driverErr(err)
	}
	out := make([]Element, len(locs))
	for i, loc := range locs {
		out[i] = &pwElement{loc: loc, sel: sel}
	}
	return out, nil
}

type pwElement struct {
	loc playwright.Locator
	sel Selector
}

func (e *pwElement) WaitVisible(timeout time.Duration) error {
	err := e.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
	if err != nil && errors.Is(err, playwright.ErrTimeout) {
		return NotVisible(e.sel, timeout)
	}
	return driverErr(err)
}

func (e *pwElement) Visible() (bool, error) {
	visible, err := e.loc.IsVisible()
	return visible, driverErr(err)
}

func (e *pwElement) Fill(value string) error {
	return driverErr(e.loc.Fill(value))
}

func (e *pwElement) Click() error {
	return driverErr(e.loc.Click())
}

func (e *pwElement) Select(value string) error {
	_, err := e.loc.SelectOption(playwright.SelectOptionValues{Values: playwright.StringSlice(value)})
	if err == nil || errors.Is(err, playwright.ErrTargetClosed) {
		return driverErr(err)
	}
	// The option could be addressed by its visible label instead of the value
	_, err = e.loc.SelectOption(playwright.SelectOptionValues{Labels: playwright.StringSlice(value)})
	return driverErr(err)
}

func (e *pwElement) Attr(name string) (string, error) {
	val, err := e.loc.GetAttribute(name)
	return val, driverErr(err)
}
