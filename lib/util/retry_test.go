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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_retry_counter_stops_on_success(t *testing.T) {
	var attempts []int
	err := Retry(&Counter{Count: 3}, func(attempt int) error {
		attempts = append(attempts, attempt)
		if attempt < 1 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, attempts)
}

func Test_retry_counter_returns_last_error(t *testing.T) {
	calls := 0
	err := Retry(&Counter{Count: 3, Wait: time.Millisecond}, func(attempt int) error {
		calls++
		return errors.New("attempt failed")
	})
	require.EqualError(t, err, "attempt failed")
	assert.Equal(t, 3, calls)
}

func Test_retry_counter_zero(t *testing.T) {
	calls := 0
	err := Retry(&Counter{Count: 0}, func(int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}

func Test_retry_timer_bounded(t *testing.T) {
	start := time.Now()
	calls := 0
	err := Retry(&Timer{Timeout: 50 * time.Millisecond, Wait: 10 * time.Millisecond}, func(int) error {
		calls++
		return errors.New("still waiting")
	})
	require.Error(t, err)
	assert.GreaterOrEqual(t, calls, 2)
	assert.Less(t, time.Since(start), time.Second)
}
