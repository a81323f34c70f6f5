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

package helper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gwconsole/console-webtests/lib/config"
	"github.com/gwconsole/console-webtests/lib/console"
	"github.com/gwconsole/console-webtests/lib/log"
	"github.com/gwconsole/console-webtests/lib/monitoring"
	"github.com/gwconsole/console-webtests/lib/util"
)

// ScenarioFunc is the body of a scenario, it runs after the lifecycle hook on a fresh session
type ScenarioFunc func(c *console.Console) error

// attemptSession is the page of one scenario attempt, *Session is the browser one
type attemptSession interface {
	Console() *console.Console
	Screenshot(phase string)
	Close(failed bool)
}

// sessionFactory opens the session of the attempt for the scenario subtest
type sessionFactory func(t testing.TB, attempt int) (attemptSession, error)

// Suite is a named group of scenarios sharing one browser
type Suite struct {
	t      *testing.T
	cfg    *config.Config
	serial bool

	browser    lazyBrowser
	newSession sessionFactory

	mu         sync.Mutex
	failedName string
}

// NewSuite creates the group on the test, serial groups run the scenarios in declaration
// order and skip the rest after the first failure
func NewSuite(t *testing.T, cfg *config.Config, serial bool) *Suite {
	s := &Suite{t: t, cfg: cfg, serial: serial}
	s.newSession = s.browserSession
	return s
}

// browserSession launches the shared browser on first use and opens a new context on it
func (s *Suite) browserSession(t testing.TB, attempt int) (attemptSession, error) {
	b, err := s.browser.get(s.t, s.cfg)
	if err != nil {
		return nil, err
	}
	sess, err := b.NewSession(t, attempt)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Suite) failed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failedName
}

func (s *Suite) markFailed(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failedName == "" {
		s.failedName = name
	}
}

// Scenario runs the scenario as a subtest, retrying failed attempts up to the configured retries
func (s *Suite) Scenario(name string, fn ScenarioFunc) bool {
	return s.t.Run(name, func(t *testing.T) {
		s.run(t, name, fn)
	})
}

func (s *Suite) run(t testing.TB, name string, fn ScenarioFunc) {
	if failed := s.failed(); s.serial && failed != "" {
		t.Skipf("Skipping after failed scenario %q", failed)
	}
	if pt, ok := t.(interface{ Parallel() }); ok && !s.serial && s.cfg.FullyParallel {
		pt.Parallel()
	}

	res := runAttempts(s.cfg.Retries, func(attempt int) error {
		return s.attempt(t, attempt, fn)
	})
	switch {
	case res.unreachable:
		// Nothing to test when the console is not there, this is not a failure
		t.Skip(console.ErrUnreachable.Error())
	case res.err != nil:
		s.markFailed(name)
		t.Fatalf("ERROR: Scenario %q failed after %d attempt(s): %v", name, res.attempts, res.err)
	case res.attempts > 1:
		t.Logf("WARNING: Scenario %q is flaky, passed on attempt %d", name, res.attempts)
	}
}

// attemptResult is the outcome of the attempts loop
type attemptResult struct {
	attempts    int
	unreachable bool
	err         error
}

// runAttempts runs the attempt once and then up to retries more times while it fails.
// The unreachable console stops the loop immediately.
func runAttempts(retries int, attempt func(n int) error) attemptResult {
	var res attemptResult
	res.err = util.Retry(&util.Counter{Count: retries + 1}, func(n int) error {
		res.attempts = n + 1
		err := attempt(n)
		if errors.Is(err, console.ErrUnreachable) {
			res.unreachable = true
			return nil
		}
		return err
	})
	return res
}

func (s *Suite) attempt(t testing.TB, attempt int, fn ScenarioFunc) (err error) {
	t.Helper()
	logger := log.WithFunc("helper", "attempt").With("scenario", t.Name(), "attempt", attempt)

	_, span := monitoring.StartSpan(context.Background(), "scenario",
		attribute.String("scenario", t.Name()),
		attribute.Int("attempt", attempt),
		attribute.String("browser", s.cfg.Browser),
		attribute.String("run_id", s.cfg.Monitoring.RunID),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if attempt > 0 {
		t.Logf("WARNING: Retrying scenario, attempt %d of %d", attempt+1, s.cfg.Retries+1)
	}
	sess, err := s.newSession(t, attempt)
	if err != nil {
		return err
	}
	failed := true
	defer func() { sess.Close(failed) }()

	if err = sess.Console().Prepare(); err != nil {
		if errors.Is(err, console.ErrUnreachable) {
			logger.Warn("Helper: Console is unreachable", "err", err)
			failed = false
		}
		return err
	}
	sess.Screenshot("start")

	if err = fn(sess.Console()); err != nil {
		t.Logf("ERROR: Attempt %d failed: %v", attempt+1, err)
		sess.Screenshot("failure")
		return fmt.Errorf("attempt %d: %w", attempt+1, err)
	}
	sess.Screenshot("end")
	failed = false
	logger.Debug("Helper: Scenario attempt passed")
	return nil
}
