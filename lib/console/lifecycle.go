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

package console

import (
	"errors"
	"fmt"

	"github.com/gwconsole/console-webtests/lib/log"
	"github.com/gwconsole/console-webtests/lib/ui"
)

// ErrUnreachable means the console did not come up, scenarios skip instead of failing
var ErrUnreachable = errors.New("target UI unreachable")

// Prepare opens the console root, waits for the application to render and dismisses
// the welcome modal if one is shown
func (c *Console) Prepare() error {
	logger := log.WithFunc("console", "Prepare").With("url", c.cfg.URL())
	nav := c.cfg.NavigationTimeout.Std()

	logger.Debug("Console: Opening root view")
	if err := c.page.Goto(c.cfg.URL(), nav); err != nil {
		if ui.IsDriverError(err) {
			return err
		}
		logger.Warn("Console: Root view is not reachable", "err", err)
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	if err := c.page.First(selAppRoot).WaitVisible(nav); err != nil {
		if ui.IsDriverError(err) {
			return err
		}
		logger.Warn("Console: Application container did not render", "err", err)
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	c.page.Pause(c.cfg.RenderDelay.Std())

	out, err := ui.FirstOf(c.page,
		ui.OnVisible("modal ok", selModalOK, c.cfg.VisibilityTimeout.Std(), ui.Click),
	)
	if err != nil {
		return err
	}
	if out.Found {
		logger.Debug("Console: Dismissed modal dialog")
	}
	return nil
}
