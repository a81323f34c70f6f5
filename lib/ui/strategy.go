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
)

// Strategy is one way of getting something done on the page
// Run returns false when the strategy does not apply to the current page
type Strategy struct {
	Name string
	Run  func(p Page) (bool, error)
}

// Outcome is the tagged result of FirstOf
type Outcome struct {
	Found bool
	// By is the name of the strategy that succeeded
	By string
	// Misses keeps the errors of the strategies tried before, for diagnostics
	Misses []error
}

// Err returns ErrNotFound with the misses attached when nothing matched
func (o Outcome) Err(what string) error {
	if o.Found {
		return nil
	}
	if len(o.Misses) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("%w: %s: %w", ErrNotFound, what, errors.Join(o.Misses...))
}

// FirstOf runs the strategies in order and stops at the first one that succeeds
// Errors of a strategy count as a miss, only driver errors abort the evaluation
func FirstOf(p Page, strategies ...Strategy) (Outcome, error) {
	var out Outcome
	for _, s := range strategies {
		ok, err := s.Run(p)
		if err != nil {
			if IsDriverError(err) {
				return out, err
			}
			out.Misses = append(out.Misses, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		if ok {
			out.Found = true
			out.By = s.Name
			return out, nil
		}
	}
	return out, nil
}

// OnVisible builds a strategy applying the action to the first element of the selector
// when it becomes visible within the timeout
func OnVisible(name string, sel Selector, timeout time.Duration, action func(el Element) error) Strategy {
	return Strategy{
		Name: name,
		Run: func(p Page) (bool, error) {
			el := p.First(sel)
			if err := el.WaitVisible(timeout); err != nil {
				if errors.Is(err, ErrNotVisible) {
					return false, nil
				}
				return false, err
			}
			if err := action(el); err != nil {
				return false, err
			}
			return true, nil
		},
	}
}

// Click is the most common action for OnVisible
func Click(el Element) error {
	return el.Click()
}

// Fill returns the action filling the value
func Fill(value string) func(el Element) error {
	return func(el Element) error {
		return el.Fill(value)
	}
}
