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
	"time"

	"github.com/gwconsole/console-webtests/lib/log"
	"github.com/gwconsole/console-webtests/lib/ui"
	"github.com/gwconsole/console-webtests/lib/util"
)

var errStillCreating = errors.New("still on the creation view")

// settlePoll is the interval of checking if the console left the creation view
const settlePoll = 100 * time.Millisecond

// CreateService opens the service creation view, fills the form and saves it
// Missing name or url fields are not an error, the list assertion is the authority
func (c *Console) CreateService(svc Service) error {
	logger := log.WithFunc("console", "CreateService").With("service", svc.Name)
	if err := svc.Validate(); err != nil {
		return err
	}

	createURL := c.cfg.URL(c.cfg.Workspace, "services", "create")
	out, err := ui.FirstOf(c.page,
		ui.Strategy{Name: "direct", Run: func(p ui.Page) (bool, error) {
			return true, p.Goto(createURL, c.cfg.NavigationTimeout.Std())
		}},
		ui.OnVisible("new service control", selNewService, c.cfg.ActionTimeout.Std(), ui.Click),
	)
	if err != nil {
		return err
	}
	if !out.Found {
		return out.Err("service creation view")
	}
	for _, miss := range out.Misses {
		logger.Debug("Console: Entry strategy missed", "err", miss)
	}
	logger.Debug("Console: Opened service creation view", "by", out.By)

	if err := c.page.WaitForNetworkIdle(c.cfg.NavigationTimeout.Std()); err != nil {
		return fmt.Errorf("Console: Service creation view did not settle: %w", err)
	}

	vis := c.cfg.VisibilityTimeout.Std()
	named, err := ui.FillIfVisible(c.page, selServiceName, svc.Name, vis)
	if err != nil {
		return err
	}
	addressed, err := ui.FillIfVisible(c.page, selServiceURL, svc.URL, vis)
	if err != nil {
		return err
	}
	if !named || !addressed {
		logger.Warn("Console: Service form is incomplete", "name_filled", named, "url_filled", addressed)
	}

	if err := c.page.First(selSave).Click(); err != nil {
		return fmt.Errorf("Console: Unable to activate save control: %w", err)
	}
	return c.settle()
}

// settle waits for the network and then for the console to leave the creation view,
// bounded by the settle delay. Staying on the view is left for the list assertion to catch.
func (c *Console) settle() error {
	if err := c.page.WaitForNetworkIdle(c.cfg.NavigationTimeout.Std()); err != nil {
		return fmt.Errorf("Console: Submission did not settle: %w", err)
	}
	err := util.Retry(&util.Timer{Timeout: c.cfg.SettleDelay.Std(), Wait: settlePoll}, func(int) error {
		if isCreateView(c.page.URL()) {
			return errStillCreating
		}
		return nil
	})
	if err != nil {
		log.WithFunc("console", "settle").Debug("Console: Still on creation view after settle delay", "url", c.page.URL())
	}
	return nil
}

// ExpectListed opens the list view of the kind and waits for the name to be shown
func (c *Console) ExpectListed(kind, name string) error {
	listURL := c.cfg.ListURL(kind)
	log.WithFunc("console", "ExpectListed").Debug("Console: Checking list view", "url", listURL, "name", name)
	if err := c.page.Goto(listURL, c.cfg.NavigationTimeout.Std()); err != nil {
		return err
	}
	if err := c.page.WaitForNetworkIdle(c.cfg.NavigationTimeout.Std()); err != nil {
		return fmt.Errorf("Console: List view of %s did not settle: %w", kind, err)
	}
	if err := c.page.First(selListed(name)).WaitVisible(c.cfg.ExpectTimeout.Std()); err != nil {
		return fmt.Errorf("Console: %q is not listed in %s: %w", name, kind, err)
	}
	return nil
}
