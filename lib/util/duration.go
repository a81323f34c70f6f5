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

package util

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a simple wrapper to add serialization functions
// Numbers are treated as milliseconds, strings are parsed as go durations
type Duration time.Duration

// Std returns the standard library representation
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Milliseconds is the unit playwright timeouts are expressed in
func (d Duration) Milliseconds() float64 {
	return float64(time.Duration(d).Milliseconds())
}

// String formats the duration the same way time.Duration does
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON represents Duration as JSON string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON parses JSON number (ms) or string as Duration
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value * float64(time.Millisecond)))
		return nil
	case string:
		return d.StoreStringDuration(value)
	default:
		return fmt.Errorf("incorrect duration type")
	}
}

// MarshalText is used by the toml encoder
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText is used by the toml decoder
func (d *Duration) UnmarshalText(b []byte) error {
	return d.StoreStringDuration(string(b))
}

// StoreStringDuration parses a duration string into a duration
// Example: "20s", "1500ms", "1m30s" or "20000" (milliseconds)
func (d *Duration) StoreStringDuration(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("empty duration")
	}

	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		*d = Duration(time.Duration(ms * float64(time.Millisecond)))
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)

	return nil
}
