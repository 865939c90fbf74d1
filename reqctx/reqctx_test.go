// Copyright (C) 2026-Present CloudFoundry.org Foundation, Inc. All rights reserved.
//
// This program and the accompanying materials are made available under
// the terms of the under the Apache License, Version 2.0 (the "License”);
// you may not use this file except in compliance with the License.
//
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the
// License for the specific language governing permissions and limitations
// under the License.

package reqctx_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"webcheck/reqctx"
)

func value(v string, _ bool) string {
	return v
}

var _ = Describe("Context", func() {
	var host reqctx.Host

	BeforeEach(func() {
		host = reqctx.Host{
			Software:       "webcheck/1.2.3",
			DocumentRoot:   "/srv/www",
			ScriptFilename: "/usr/local/bin/webcheck",
			RuntimeVersion: "go1.23.0",
			Capabilities:   []string{"webcheck", "gopkg.in/yaml.v3"},
			Now:            time.Unix(1791000000, 0),
		}
	})

	Describe("New", func() {
		It("copies its inputs", func() {
			query := map[string]string{"q": "hello"}
			server := map[string]string{"HTTP_HOST": "example.com"}

			ctx := reqctx.New(query, nil, server, host)
			query["q"] = "changed"
			server["HTTP_HOST"] = "changed"
			host.Capabilities[0] = "changed"

			Expect(value(ctx.Query("q"))).To(Equal("hello"))
			Expect(value(ctx.Server("HTTP_HOST"))).To(Equal("example.com"))
			Expect(ctx.Capabilities()).To(Equal([]string{"webcheck", "gopkg.in/yaml.v3"}))
		})

		It("does not hand out its own capability slice", func() {
			ctx := reqctx.New(nil, nil, nil, host)
			caps := ctx.Capabilities()
			caps[0] = "changed"

			Expect(ctx.Capabilities()[0]).To(Equal("webcheck"))
		})
	})

	Describe("FromRequest", func() {
		It("reads query parameters by presence", func() {
			req := httptest.NewRequest(http.MethodGet, "/?ping&q=one&q=two", nil)

			ctx := reqctx.FromRequest(req, host)

			Expect(ctx.HasQuery("ping")).To(BeTrue())
			Expect(value(ctx.Query("ping"))).To(Equal(""))
			Expect(value(ctx.Query("q"))).To(Equal("one"))
			Expect(ctx.HasQuery("missing")).To(BeFalse())
		})

		It("reads posted form fields but not query fields into the form", func() {
			req := httptest.NewRequest(http.MethodPost, "/?q=from-query", strings.NewReader("msg=hello+world"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			ctx := reqctx.FromRequest(req, host)

			msg, ok := ctx.Form("msg")
			Expect(ok).To(BeTrue())
			Expect(msg).To(Equal("hello world"))

			_, ok = ctx.Form("q")
			Expect(ok).To(BeFalse())
		})

		It("treats a malformed body as no form input", func() {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("msg=%zz"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			ctx := reqctx.FromRequest(req, host)

			_, ok := ctx.Form("msg")
			Expect(ok).To(BeFalse())
		})

		It("builds the server metadata", func() {
			req := httptest.NewRequest(http.MethodGet, "http://example.com:8080/?q=1", nil)
			req.RemoteAddr = "203.0.113.9:54321"
			req.Header.Set("User-Agent", "curl/8.0")
			req.Header.Set("X-Forwarded-For", "198.51.100.1")
			req = req.WithContext(context.WithValue(req.Context(), http.LocalAddrContextKey,
				&net.TCPAddr{IP: net.ParseIP("10.0.0.5"), Port: 8080}))

			ctx := reqctx.FromRequest(req, host)

			Expect(value(ctx.Server("SERVER_SOFTWARE"))).To(Equal("webcheck/1.2.3"))
			Expect(value(ctx.Server("HTTP_HOST"))).To(Equal("example.com:8080"))
			Expect(value(ctx.Server("SERVER_NAME"))).To(Equal("example.com"))
			Expect(value(ctx.Server("SERVER_ADDR"))).To(Equal("10.0.0.5"))
			Expect(value(ctx.Server("SERVER_PORT"))).To(Equal("8080"))
			Expect(value(ctx.Server("REMOTE_ADDR"))).To(Equal("203.0.113.9"))
			Expect(value(ctx.Server("REMOTE_PORT"))).To(Equal("54321"))
			Expect(value(ctx.Server("REQUEST_METHOD"))).To(Equal("GET"))
			Expect(value(ctx.Server("QUERY_STRING"))).To(Equal("q=1"))
			Expect(value(ctx.Server("DOCUMENT_ROOT"))).To(Equal("/srv/www"))
			Expect(value(ctx.Server("SCRIPT_FILENAME"))).To(Equal("/usr/local/bin/webcheck"))
			Expect(value(ctx.Server("REQUEST_TIME"))).To(Equal("1791000000"))
			Expect(value(ctx.Server("HTTP_USER_AGENT"))).To(Equal("curl/8.0"))
			Expect(value(ctx.Server("HTTP_X_FORWARDED_FOR"))).To(Equal("198.51.100.1"))
		})

		It("leaves out metadata it cannot determine", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = ""
			req.RemoteAddr = ""

			ctx := reqctx.FromRequest(req, reqctx.Host{})

			for _, key := range []string{"HTTP_HOST", "SERVER_NAME", "SERVER_ADDR", "REMOTE_ADDR", "SERVER_SOFTWARE", "REQUEST_TIME"} {
				_, ok := ctx.Server(key)
				Expect(ok).To(BeFalse(), key)
			}
			Expect(ctx.ServerOr("SERVER_ADDR", "n/a")).To(Equal("n/a"))
		})

		It("lists the metadata keys in order", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			keys := reqctx.FromRequest(req, host).ServerKeys()

			Expect(keys).NotTo(BeEmpty())
			for i := 1; i < len(keys); i++ {
				Expect(keys[i-1] < keys[i]).To(BeTrue())
			}
		})

		It("exposes the host facts", func() {
			ctx := reqctx.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil), host)

			Expect(ctx.RuntimeVersion()).To(Equal("go1.23.0"))
			Expect(ctx.Now()).To(Equal(time.Unix(1791000000, 0)))
		})
	})
})
