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
	"testing"
	"time"
)

var (
	TestDurationParseString = [][2]string{
		{`0s`, `0s`},
		{`0`, `0s`},
		{`20000`, `20s`},
		{`1500`, `1.5s`},
		{`10s`, `10s`},
		{`1500ms`, `1.5s`},
		{`1m30s`, `1m30s`},
		{` 2s `, `2s`},
		{`-1s`, `-1s`},
	}
)

// Verify all the inputs will be parsed correctly
func Test_duration_parse_string(t *testing.T) {
	for _, testcase := range TestDurationParseString {
		t.Run(fmt.Sprintf("Testing `%s`", testcase[0]), func(t *testing.T) {
			out := Duration(0)
			err := out.StoreStringDuration(testcase[0])
			if time.Duration(out).String() != testcase[1] {
				t.Fatalf("Duration(`%s`) = `%s`, %v; want: `%s`", testcase[0], time.Duration(out), err, testcase[1])
			}
		})
	}
}

func Test_duration_parse_invalid(t *testing.T) {
	for _, in := range []string{``, `abc`, `10 parsecs`} {
		out := Duration(0)
		if err := out.StoreStringDuration(in); err == nil {
			t.Fatalf("Duration(`%s`) expected to fail, got %s", in, out)
		}
	}
}

func Test_duration_json(t *testing.T) {
	var v struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": 20000, "b": "3s"}`), &v); err != nil {
		t.Fatalf("Unable to unmarshal: %v", err)
	}
	if v.A.Std() != 20*time.Second || v.B.Std() != 3*time.Second {
		t.Fatalf("Unexpected values: a=%s b=%s", v.A, v.B)
	}
	if v.A.Milliseconds() != 20000 {
		t.Fatalf("Unexpected milliseconds: %v", v.A.Milliseconds())
	}

	data, err := json.Marshal(v.B)
	if err != nil || string(data) != `"3s"` {
		t.Fatalf("Unexpected marshal result: %s, %v", data, err)
	}

	if err := json.Unmarshal([]byte(`{"a": true}`), &v); err == nil {
		t.Fatalf("Bool duration should not be accepted")
	}
}
