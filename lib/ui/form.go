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
	"time"
)

// FillIfVisible fills the first element of the selector only if it is visible within the window
// A missing or hidden element is not an error, the returned bool tells if the value was written
func FillIfVisible(p Page, sel Selector, value string, window time.Duration) (bool, error) {
	el := p.First(sel)
	if err := el.WaitVisible(window); err != nil {
		if errors.Is(err, ErrNotVisible) {
			return false, nil
		}
		return false, err
	}
	if err := el.Fill(value); err != nil {
		return false, err
	}
	return true, nil
}
