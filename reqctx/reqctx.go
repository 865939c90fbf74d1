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

// Package reqctx holds the per-request view of query parameters, posted form
// fields and server metadata. A Context is built once per request and is not
// modified afterwards.
package reqctx

import (
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Host carries facts about the serving process rather than the request.
type Host struct {
	Software       string
	DocumentRoot   string
	ScriptFilename string
	RuntimeVersion string
	Capabilities   []string
	Now            time.Time
}

type Context struct {
	query  map[string]string
	form   map[string]string
	server map[string]string
	host   Host
}

func New(query, form, server map[string]string, host Host) *Context {
	host.Capabilities = append([]string(nil), host.Capabilities...)

	return &Context{
		query:  copyMap(query),
		form:   copyMap(form),
		server: copyMap(server),
		host:   host,
	}
}

// FromRequest builds a Context from an incoming request. Malformed query
// strings or bodies are not errors: whatever could be parsed is kept.
func FromRequest(r *http.Request, host Host) *Context {
	query, _ := url.ParseQuery(r.URL.RawQuery)

	_ = r.ParseForm()

	return New(firstValues(query), firstValues(r.PostForm), serverVars(r, host), host)
}

func (c *Context) Query(key string) (string, bool) {
	v, ok := c.query[key]
	return v, ok
}

// HasQuery reports whether key was present in the query string, even with an
// empty value.
func (c *Context) HasQuery(key string) bool {
	_, ok := c.query[key]
	return ok
}

func (c *Context) Form(key string) (string, bool) {
	v, ok := c.form[key]
	return v, ok
}

func (c *Context) Server(key string) (string, bool) {
	v, ok := c.server[key]
	return v, ok
}

// ServerOr returns the server variable or fallback when it is missing or
// empty.
func (c *Context) ServerOr(key, fallback string) string {
	if v, ok := c.server[key]; ok && v != "" {
		return v
	}
	return fallback
}

func (c *Context) ServerKeys() []string {
	keys := make([]string, 0, len(c.server))
	for k := range c.server {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Context) RuntimeVersion() string {
	return c.host.RuntimeVersion
}

func (c *Context) Capabilities() []string {
	return append([]string(nil), c.host.Capabilities...)
}

func (c *Context) Now() time.Time {
	return c.host.Now
}

func serverVars(r *http.Request, host Host) map[string]string {
	vars := map[string]string{
		"SERVER_SOFTWARE": host.Software,
		"SERVER_PROTOCOL": r.Proto,
		"REQUEST_METHOD":  r.Method,
		"REQUEST_URI":     r.RequestURI,
		"QUERY_STRING":    r.URL.RawQuery,
		"DOCUMENT_ROOT":   host.DocumentRoot,
		"SCRIPT_FILENAME": host.ScriptFilename,
	}

	if !host.Now.IsZero() {
		vars["REQUEST_TIME"] = strconv.FormatInt(host.Now.Unix(), 10)
	}

	if r.Host != "" {
		vars["HTTP_HOST"] = r.Host
		vars["SERVER_NAME"] = stripPort(r.Host)
	}

	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok && addr != nil {
		ip, port := splitHostPort(addr.String())
		vars["SERVER_ADDR"] = ip
		vars["SERVER_PORT"] = port
	}

	if r.RemoteAddr != "" {
		ip, port := splitHostPort(r.RemoteAddr)
		vars["REMOTE_ADDR"] = ip
		vars["REMOTE_PORT"] = port
	}

	for name, values := range r.Header {
		key := "HTTP_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		if key == "HTTP_HOST" {
			continue
		}
		vars[key] = strings.Join(values, ", ")
	}

	for k, v := range vars {
		if v == "" {
			delete(vars, k)
		}
	}

	return vars
}

func splitHostPort(addr string) (string, string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, ""
	}
	return host, port
}

func stripPort(hostport string) string {
	host, _ := splitHostPort(hostport)
	return host
}

func firstValues(values url.Values) map[string]string {
	m := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			m[k] = vs[0]
		} else {
			m[k] = ""
		}
	}
	return m
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
