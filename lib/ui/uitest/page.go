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

// Package uitest provides an in-memory ui.Page to test the workflows without a browser
package uitest

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gwconsole/console-webtests/lib/ui"
)

// Element is the state of one fake element
type Element struct {
	Shown    bool
	Value    string
	Selected string
	Attrs    map[string]string
	// Options limits the values Select accepts, any value is accepted when empty
	Options []string

	FillErr  error
	ClickErr error

	// OnClick is executed after the click is registered, used to simulate navigation
	OnClick func(p *Page) error

	Clicks int
}

// Visible creates a shown element with the given attributes as key, value pairs
func Visible(attrs ...string) *Element {
	el := &Element{Shown: true, Attrs: map[string]string{}}
	for i := 0; i+1 < len(attrs); i += 2 {
		el.Attrs[attrs[i]] = attrs[i+1]
	}
	return el
}

// Hidden creates an element which is present but not shown
func Hidden(attrs ...string) *Element {
	el := Visible(attrs...)
	el.Shown = false
	return el
}

// Page is a scriptable ui.Page
type Page struct {
	url      string
	elements map[string][]*Element
	gotoFail map[string]error
	onGoto   map[string]func(p *Page)

	// IdleErr is returned by WaitForNetworkIdle
	IdleErr error
	// Closed makes every call fail with ui.ErrClosed
	Closed bool

	// Calls keeps the interactions in order: "goto <url>", "fill <sel>=<value>", "click <sel>"...
	Calls []string
}

// NewPage creates an empty page
func NewPage() *Page {
	return &Page{
		elements: make(map[string][]*Element),
		gotoFail: make(map[string]error),
		onGoto:   make(map[string]func(p *Page)),
	}
}

// Add registers elements for the selector, in document order
func (p *Page) Add(sel ui.Selector, els ...*Element) *Page {
	p.elements[sel.String()] = append(p.elements[sel.String()], els...)
	return p
}

// Element returns the registered element or nil
func (p *Page) Element(sel ui.Selector, idx int) *Element {
	els := p.elements[sel.String()]
	if idx < len(els) {
		return els[idx]
	}
	return nil
}

// FailGoto makes navigation to the url fail
func (p *Page) FailGoto(url string, err error) {
	p.gotoFail[url] = err
}

// OnGoto runs fn when the url is navigated to, used to render the view
func (p *Page) OnGoto(url string, fn func(p *Page)) {
	p.onGoto[url] = fn
}

// SetURL changes the current url without navigation, like client side routing does
func (p *Page) SetURL(url string) {
	p.url = url
}

// Called tells if the call was registered
func (p *Page) Called(call string) bool {
	return slices.Contains(p.Calls, call)
}

// CallIndex returns position of the call or -1
func (p *Page) CallIndex(call string) int {
	return slices.Index(p.Calls, call)
}

func (p *Page) record(format string, args ...any) {
	p.Calls = append(p.Calls, fmt.Sprintf(format, args...))
}

func (p *Page) closed() error {
	if p.Closed {
		return fmt.Errorf("%w: page closed", ui.ErrClosed)
	}
	return nil
}

func (p *Page) Goto(url string, _ time.Duration) error {
	if err := p.closed(); err != nil {
		return err
	}
	p.record("goto %s", url)
	if err, ok := p.gotoFail[url]; ok {
		return fmt.Errorf("%w: %s: %w", ui.ErrNavigation, url, err)
	}
	p.url = url
	if fn, ok := p.onGoto[url]; ok {
		fn(p)
	}
	return nil
}

func (p *Page) WaitForNetworkIdle(_ time.Duration) error {
	if err := p.closed(); err != nil {
		return err
	}
	p.record("idle")
	return p.IdleErr
}

func (p *Page) Pause(d time.Duration) {
	p.record("pause %s", d)
}

func (p *Page) URL() string {
	return p.url
}

func (p *Page) First(sel ui.Selector) ui.Element {
	return &handle{p: p, sel: sel}
}

func (p *Page) All(sel ui.Selector) ([]ui.Element, error) {
	if err := p.closed(); err != nil {
		return nil, err
	}
	els := p.elements[sel.String()]
	out := make([]ui.Element, len(els))
	for i := range els {
		out[i] = &handle{p: p, sel: sel, idx: i}
	}
	return out, nil
}

// handle resolves the element at the moment of the call, as the playwright locators do
type handle struct {
	p   *Page
	sel ui.Selector
	idx int
}

var errDetached = errors.New("element is not attached to the page")

func (h *handle) resolve() (*Element, error) {
	if err := h.p.closed(); err != nil {
		return nil, err
	}
	el := h.p.Element(h.sel, h.idx)
	if el == nil {
		return nil, fmt.Errorf("%s: %w", h.sel, errDetached)
	}
	return el, nil
}

func (h *handle) WaitVisible(timeout time.Duration) error {
	el, err := h.resolve()
	if errors.Is(err, errDetached) || err == nil && !el.Shown {
		return ui.NotVisible(h.sel, timeout)
	}
	return err
}

func (h *handle) Visible() (bool, error) {
	el, err := h.resolve()
	if errors.Is(err, errDetached) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return el.Shown, nil
}

func (h *handle) Fill(value string) error {
	el, err := h.resolve()
	if err != nil {
		return err
	}
	if el.FillErr != nil {
		return el.FillErr
	}
	el.Value = value
	h.p.record("fill %s=%s", h.sel, value)
	return nil
}

func (h *handle) Click() error {
	el, err := h.resolve()
	if err != nil {
		return err
	}
	if el.ClickErr != nil {
		return el.ClickErr
	}
	el.Clicks++
	h.p.record("click %s", h.sel)
	if el.OnClick != nil {
		return el.OnClick(h.p)
	}
	return nil
}

func (h *handle) Select(value string) error {
	el, err := h.resolve()
	if err != nil {
		return err
	}
	if len(el.Options) > 0 && !slices.Contains(el.Options, value) {
		return fmt.Errorf("option %q not found in %s", value, h.sel)
	}
	el.Selected = value
	h.p.record("select %s=%s", h.sel, value)
	return nil
}

func (h *handle) Attr(name string) (string, error) {
	el, err := h.resolve()
	if err != nil {
		return "", err
	}
	return el.Attrs[name], nil
}
