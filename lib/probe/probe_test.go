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

package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/"
}

func Test_check(t *testing.T) {
	t.Run("console served", func(t *testing.T) {
		url := serve(t, http.StatusOK, `<html><head><title> Kong Manager </title></head><body><div id="app"></div></body></html>`)

		res, err := Check(context.Background(), url, time.Second)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, "Kong Manager", res.Title)
		assert.True(t, res.HasApp)
	})

	t.Run("no container", func(t *testing.T) {
		url := serve(t, http.StatusOK, `<html><body><h1>It works!</h1></body></html>`)

		res, err := Check(context.Background(), url, time.Second)
		require.NoError(t, err)
		assert.False(t, res.HasApp)
	})

	t.Run("error status", func(t *testing.T) {
		url := serve(t, http.StatusBadGateway, `bad gateway`)

		res, err := Check(context.Background(), url, time.Second)
		assert.Error(t, err)
		require.NotNil(t, res)
		assert.Equal(t, http.StatusBadGateway, res.Status)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := Check(context.Background(), url, time.Second)
		assert.Error(t, err)
	})
}
