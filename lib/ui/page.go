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

// Package ui is the narrow browser surface the console workflows are written against
package ui

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	// ErrNotVisible means the locator did not resolve to a visible element within the timeout
	ErrNotVisible = errors.New("element not visible")
	// ErrNavigation means the browser rejected or failed a direct navigation
	ErrNavigation = errors.New("navigation failed")
	// ErrClosed means the browser session is gone, nothing can recover from it
	ErrClosed = errors.New("browser session closed")
	// ErrNotFound means none of the candidate strategies matched
	ErrNotFound = errors.New("no strategy matched")
)

// Kind of the selector
type Kind int

const (
	ByCSS Kind = iota
	ByRole
	ByTestID
	ByText
)

// Selector is a rule identifying zero or more elements in the rendered page
type Selector struct {
	Kind  Kind
	Query string
	// Name filters role selectors by accessible name and css selectors by contained text
	Name *regexp.Regexp
}

// CSS selects by css selector
func CSS(query string) Selector {
	return Selector{Kind: ByCSS, Query: query}
}

// Role selects by aria role and optionally accessible name
func Role(role string, name *regexp.Regexp) Selector {
	return Selector{Kind: ByRole, Query: role, Name: name}
}

// TestID selects by the data-testid attribute
func TestID(id string) Selector {
	return Selector{Kind: ByTestID, Query: id}
}

// Text selects elements by their text
func Text(re *regexp.Regexp) Selector {
	return Selector{Kind: ByText, Name: re}
}

// HasText narrows the css selector to elements containing the matching text
func (s Selector) HasText(re *regexp.Regexp) Selector {
	s.Name = re
	return s
}

// String is stable and used as a key by the test pages
func (s Selector) String() string {
	var out string
	switch s.Kind {
	case ByRole:
		out = "role=" + s.Query
	case ByTestID:
		out = "testid=" + s.Query
	case ByText:
		return "text=" + s.Name.String()
	default:
		out = "css=" + s.Query
	}
	if s.Name != nil {
		out += " name=" + s.Name.String()
	}
	return out
}

// Page is the browser page of one session
type Page interface {
	// Goto navigates and waits for the load, failures wrap ErrNavigation
	Goto(url string, timeout time.Duration) error
	// WaitForNetworkIdle waits until no requests are in flight
	WaitForNetworkIdle(timeout time.Duration) error
	// Pause blocks for a fixed amount of time
	Pause(d time.Duration)
	// URL of the current document
	URL() string
	// First returns the first element matching the selector, it is resolved lazily
	First(sel Selector) Element
	// All returns the elements currently matching the selector in document order
	All(sel Selector) ([]Element, error)
}

// Element is a lazily resolved element of the page
type Element interface {
	// WaitVisible fails with ErrNotVisible when the element is not shown within the timeout
	WaitVisible(timeout time.Duration) error
	// Visible checks visibility right now without waiting
	Visible() (bool, error)
	Fill(value string) error
	Click() error
	// Select picks the option of a native select by value or label
	Select(value string) error
	// Attr returns the attribute value or "" when missing
	Attr(name string) (string, error)
}

// NotVisible wraps ErrNotVisible with the selector
func NotVisible(sel Selector, timeout time.Duration) error {
	return fmt.Errorf("%w: %s within %s", ErrNotVisible, sel, timeout)
}

// IsDriverError tells if the error comes from a broken session instead of page content
func IsDriverError(err error) bool {
	return errors.Is(err, ErrClosed)
}
