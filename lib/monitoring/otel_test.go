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

package monitoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func Test_disabled_monitor_is_noop(t *testing.T) {
	m, err := Initialize(context.Background(), DefaultConfig())
	require.NoError(t, err)
	assert.False(t, m.IsEnabled())

	ctx, span := StartSpan(context.Background(), "scenario", attribute.String("scenario", "create service"))
	require.NotNil(t, ctx)
	span.End()

	assert.NoError(t, m.Shutdown(context.Background()))
}
