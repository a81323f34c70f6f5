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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwconsole/console-webtests/lib/config"
	"github.com/gwconsole/console-webtests/lib/ui"
	"github.com/gwconsole/console-webtests/lib/ui/uitest"
	"github.com/gwconsole/console-webtests/lib/util"
)

const base = "http://console.test/"

func newConsole(t *testing.T) (*Console, *uitest.Page) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BaseURL = base
	cfg.SettleDelay = 0
	cfg.RenderDelay = util.Duration(5 * time.Millisecond)
	require.NoError(t, cfg.Validate())
	p := uitest.NewPage()
	return New(p, cfg), p
}

func Test_prepare(t *testing.T) {
	t.Run("dismisses modal", func(t *testing.T) {
		c, p := newConsole(t)
		p.Add(selAppRoot, uitest.Visible())
		p.Add(selModalOK, uitest.Visible())

		require.NoError(t, c.Prepare())
		assert.Equal(t, "goto "+base, p.Calls[0])
		assert.True(t, p.Called("pause 5ms"))
		assert.Equal(t, 1, p.Element(selModalOK, 0).Clicks)
	})

	t.Run("no modal", func(t *testing.T) {
		c, p := newConsole(t)
		p.Add(selAppRoot, uitest.Visible())
		p.Add(selModalOK, uitest.Hidden())

		require.NoError(t, c.Prepare())
		assert.Equal(t, 0, p.Element(selModalOK, 0).Clicks)
	})

	t.Run("unreachable", func(t *testing.T) {
		c, p := newConsole(t)
		p.FailGoto(base, errors.New("net::ERR_CONNECTION_REFUSED"))

		err := c.Prepare()
		assert.ErrorIs(t, err, ErrUnreachable)
		assert.ErrorIs(t, err, ui.ErrNavigation)
	})

	t.Run("app not rendered", func(t *testing.T) {
		c, _ := newConsole(t)

		err := c.Prepare()
		assert.ErrorIs(t, err, ErrUnreachable)
		assert.ErrorIs(t, err, ui.ErrNotVisible)
	})

	t.Run("closed session is not unreachable", func(t *testing.T) {
		c, p := newConsole(t)
		p.Closed = true

		err := c.Prepare()
		assert.ErrorIs(t, err, ui.ErrClosed)
		assert.NotErrorIs(t, err, ErrUnreachable)
	})
}

func Test_create_service(t *testing.T) {
	svc := Service{Name: "test-service", URL: "http://example.com:80"}
	createURL := base + "default/services/create"

	t.Run("direct entry", func(t *testing.T) {
		c, p := newConsole(t)
		p.Add(selServiceName, uitest.Visible())
		p.Add(selServiceURL, uitest.Visible())
		p.Add(selSave, &uitest.Element{Shown: true, OnClick: func(p *uitest.Page) error {
			p.SetURL(base + "default/services/1234")
			return nil
		}})

		require.NoError(t, c.CreateService(svc))
		assert.Equal(t, "goto "+createURL, p.Calls[0])
		assert.Equal(t, "test-service", p.Element(selServiceName, 0).Value)
		assert.Equal(t, "http://example.com:80", p.Element(selServiceURL, 0).Value)
		assert.Less(t, p.CallIndex("fill "+selServiceURL.String()+"=http://example.com:80"), p.CallIndex("click "+selSave.String()))
		assert.False(t, p.Called("click "+selNewService.String()))
	})

	t.Run("new service control fallback", func(t *testing.T) {
		c, p := newConsole(t)
		p.FailGoto(createURL, errors.New("404"))
		p.Add(selNewService, uitest.Visible())
		p.Add(selServiceName, uitest.Visible())
		p.Add(selServiceURL, uitest.Visible())
		p.Add(selSave, uitest.Visible())

		require.NoError(t, c.CreateService(svc))
		assert.Equal(t, 1, p.Element(selNewService, 0).Clicks)
		assert.Equal(t, 1, p.Element(selSave, 0).Clicks)
	})

	t.Run("no entry", func(t *testing.T) {
		c, p := newConsole(t)
		p.FailGoto(createURL, errors.New("404"))

		err := c.CreateService(svc)
		assert.ErrorIs(t, err, ui.ErrNotFound)
		assert.ErrorIs(t, err, ui.ErrNavigation)
	})

	t.Run("missing fields are skipped", func(t *testing.T) {
		c, p := newConsole(t)
		p.Add(selServiceURL, uitest.Visible())
		p.Add(selSave, uitest.Visible())

		require.NoError(t, c.CreateService(svc))
		assert.Equal(t, "http://example.com:80", p.Element(selServiceURL, 0).Value)
		assert.Equal(t, 1, p.Element(selSave, 0).Clicks)
	})

	t.Run("missing save control", func(t *testing.T) {
		c, p := newConsole(t)
		p.Add(selServiceName, uitest.Visible())
		p.Add(selServiceURL, uitest.Visible())

		assert.Error(t, c.CreateService(svc))
	})

	t.Run("invalid descriptor", func(t *testing.T) {
		c, p := newConsole(t)

		assert.Error(t, c.CreateService(Service{Name: "test-service", URL: "not a url"}))
		assert.Empty(t, p.Calls)
	})
}

// routeView adds the controls every route test needs: the submit button and the listed route
func routeView(p *uitest.Page) {
	p.Add(selSubmitRole, uitest.Visible())
	p.Add(selListed("test-route"), uitest.Visible())
}

func Test_create_route(t *testing.T) {
	r := Route{Name: "test-route", Path: "/test-path", Protocol: "http", Service: "test-service"}
	servicesURL := base + "default/services"
	createURL := base + "default/routes/create"

	t.Run("test id fields", func(t *testing.T) {
		c, p := newConsole(t)
		routeView(p)
		p.Add(selRouteNameTestID, uitest.Visible())
		p.Add(selRoutePathTestID, uitest.Visible())
		p.Add(selProtocolSelect, &uitest.Element{Shown: true, Options: []string{"http", "https"}})
		p.Add(selServiceSelect, uitest.Visible())

		require.NoError(t, c.CreateRoute(r))
		assert.Equal(t, "test-route", p.Element(selRouteNameTestID, 0).Value)
		assert.Equal(t, "/test-path", p.Element(selRoutePathTestID, 0).Value)
		assert.Equal(t, "http", p.Element(selProtocolSelect, 0).Selected)
		assert.Equal(t, "test-service", p.Element(selServiceSelect, 0).Selected)
		assert.Equal(t, 1, p.Element(selSubmitRole, 0).Clicks)
		assert.True(t, p.Called("goto "+createURL))
		assert.Equal(t, "goto "+base+"default/routes", p.Calls[len(p.Calls)-2])
	})

	t.Run("entry from service detail", func(t *testing.T) {
		c, p := newConsole(t)
		routeView(p)
		p.Add(selRouteNameTestID, uitest.Visible())
		p.Add(selRoutePathTestID, uitest.Visible())
		p.OnGoto(servicesURL, func(p *uitest.Page) {
			p.Add(selListed("test-service"), uitest.Visible())
		})
		p.Add(selAddRoute, uitest.Visible())

		require.NoError(t, c.CreateRoute(r))
		assert.Equal(t, 1, p.Element(selListed("test-service"), 0).Clicks)
		assert.Equal(t, 1, p.Element(selAddRoute, 0).Clicks)
		assert.False(t, p.Called("goto "+createURL))
	})

	t.Run("input scan", func(t *testing.T) {
		c, p := newConsole(t)
		routeView(p)
		p.Add(selTextInputs,
			uitest.Hidden(),
			uitest.Visible("name", "hosts"),
			uitest.Visible("placeholder", "/api/path"),
			uitest.Visible(),
			uitest.Visible("name", "route-name"),
		)

		require.NoError(t, c.CreateRoute(r))
		assert.Empty(t, p.Element(selTextInputs, 0).Value)
		assert.Empty(t, p.Element(selTextInputs, 1).Value)
		assert.Equal(t, "/test-path", p.Element(selTextInputs, 2).Value)
		assert.Equal(t, "test-route", p.Element(selTextInputs, 3).Value)
		assert.Empty(t, p.Element(selTextInputs, 4).Value)
	})

	t.Run("attribute fallback", func(t *testing.T) {
		c, p := newConsole(t)
		routeView(p)
		p.Add(selTextInputs, uitest.Visible("name", "hosts"))
		p.Add(selRouteNameAttr, uitest.Visible())
		p.Add(selRoutePathAttr, uitest.Visible())

		require.NoError(t, c.CreateRoute(r))
		assert.Equal(t, "test-route", p.Element(selRouteNameAttr, 0).Value)
		assert.Equal(t, "/test-path", p.Element(selRoutePathAttr, 0).Value)
	})

	t.Run("combobox protocol and service picker", func(t *testing.T) {
		c, p := newConsole(t)
		routeView(p)
		p.Add(selRouteNameTestID, uitest.Visible())
		p.Add(selRoutePathTestID, uitest.Visible())
		p.Add(selProtocolSelect, &uitest.Element{Shown: true, Options: []string{"grpc"}})
		p.Add(selProtocolCombobox, uitest.Visible())
		protoOpt := selOption(optionLabel("http"))
		p.Add(protoOpt, uitest.Visible())
		p.Add(selServicePicker, uitest.Visible())
		svcOpt := selOption(optionLabel("test-service"))
		p.Add(svcOpt, uitest.Visible())

		require.NoError(t, c.CreateRoute(r))
		assert.Empty(t, p.Element(selProtocolSelect, 0).Selected)
		assert.Equal(t, 1, p.Element(selProtocolCombobox, 0).Clicks)
		assert.Equal(t, 1, p.Element(protoOpt, 0).Clicks)
		assert.Equal(t, 1, p.Element(selServicePicker, 0).Clicks)
		assert.Equal(t, 1, p.Element(svcOpt, 0).Clicks)
	})

	t.Run("service picker skips longer names", func(t *testing.T) {
		c, p := newConsole(t)
		routeView(p)
		p.Add(selRouteNameTestID, uitest.Visible())
		p.Add(selRoutePathTestID, uitest.Visible())
		p.Add(selProtocolInput, uitest.Visible())
		p.Add(selServicePicker, uitest.Visible())
		otherOpt := selOption(optionLabel("test-service-2"))
		p.Add(otherOpt, uitest.Visible())

		// The route is still created, the service stays unbound
		require.NoError(t, c.CreateRoute(r))
		assert.Equal(t, 1, p.Element(selServicePicker, 0).Clicks)
		assert.Zero(t, p.Element(otherOpt, 0).Clicks)
	})

	t.Run("default protocol", func(t *testing.T) {
		c, p := newConsole(t)
		routeView(p)
		p.Add(selRouteNameTestID, uitest.Visible())
		p.Add(selRoutePathTestID, uitest.Visible())
		p.Add(selProtocolInput, uitest.Visible())

		noProto := r
		noProto.Protocol = ""
		require.NoError(t, c.CreateRoute(noProto))
		assert.Equal(t, "http", p.Element(selProtocolInput, 0).Value)
	})

	t.Run("submit by text", func(t *testing.T) {
		c, p := newConsole(t)
		p.Add(selListed("test-route"), uitest.Visible())
		p.Add(selSubmitText, uitest.Visible())

		require.NoError(t, c.CreateRoute(r))
		assert.Equal(t, 1, p.Element(selSubmitText, 0).Clicks)
	})

	t.Run("no submit control", func(t *testing.T) {
		c, p := newConsole(t)
		p.Add(selRouteNameTestID, uitest.Visible())

		err := c.CreateRoute(r)
		assert.ErrorIs(t, err, ui.ErrNotFound)
		assert.False(t, p.Called("goto "+base+"default/routes"))
	})

	t.Run("not listed", func(t *testing.T) {
		c, p := newConsole(t)
		p.Add(selSubmitRole, uitest.Visible())

		err := c.CreateRoute(r)
		assert.ErrorIs(t, err, ui.ErrNotVisible)
	})

	t.Run("closed session aborts", func(t *testing.T) {
		c, p := newConsole(t)
		p.Closed = true

		assert.ErrorIs(t, c.CreateRoute(r), ui.ErrClosed)
	})

	t.Run("invalid descriptor", func(t *testing.T) {
		c, p := newConsole(t)

		assert.Error(t, c.CreateRoute(Route{Name: "test-route", Path: "no-slash", Service: "test-service"}))
		assert.Empty(t, p.Calls)
	})
}

func Test_option_label(t *testing.T) {
	re := optionLabel("test-service")
	assert.True(t, re.MatchString("test-service"))
	assert.True(t, re.MatchString("  Test-Service\n"))
	assert.False(t, re.MatchString("test-service-2"))
	assert.False(t, re.MatchString("my-test-service"))
	assert.False(t, optionLabel("a.b").MatchString("axb"))
}

func Test_classify_input(t *testing.T) {
	for _, tc := range []struct {
		name, placeholder string
		want              inputKind
	}{
		{"", "", nameInput},
		{"name", "", nameInput},
		{"", "Enter a unique name", nameInput},
		{"paths[0]", "", pathInput},
		{"", "/api/path", pathInput},
		{"hosts", "example.com", otherInput},
		{"pathName", "", pathInput},
	} {
		assert.Equal(t, tc.want, classifyInput(tc.name, tc.placeholder), "%q %q", tc.name, tc.placeholder)
	}
}

func Test_expect_listed(t *testing.T) {
	c, p := newConsole(t)
	p.Add(selListed("test-service"), uitest.Visible())

	require.NoError(t, c.ExpectListed("services", "test-service"))
	assert.Equal(t, "goto "+base+"default/services", p.Calls[0])

	err := c.ExpectListed("services", "other-service")
	assert.ErrorIs(t, err, ui.ErrNotVisible)
	assert.Contains(t, err.Error(), "other-service")
}

func Test_is_create_view(t *testing.T) {
	assert.True(t, isCreateView(base+"default/routes/create"))
	assert.True(t, isCreateView(base+"default/routes/create/?tab=1"))
	assert.False(t, isCreateView(base+"default/routes/1234"))
	assert.False(t, isCreateView(""))
}
