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

package presenters

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"webcheck/reqctx"
	"webcheck/sysfeat"
	"webcheck/writeprobe"
)

const (
	// DefaultCapabilitySample is how many capability names are shown when the
	// page does not ask for a specific number.
	DefaultCapabilitySample = 8

	TimeLayout = "2006-01-02 15:04:05 MST"

	notAvailable   = "n/a"
	truncationMark = ", …"
)

//go:embed page.html.tmpl
var pageTemplate string

var page = template.Must(template.New("page").Parse(pageTemplate))

// Page is everything needed to render the diagnostic page.
type Page struct {
	Request  *reqctx.Context
	Probe    writeprobe.Result
	ProbeDir string
	Features *sysfeat.Features
	Location *time.Location

	// Number of capability names to show. Zero or less means
	// DefaultCapabilitySample.
	CapabilitySample int
}

func RenderPong(w io.Writer) error {
	_, err := io.WriteString(w, "pong")
	return err
}

// RenderPage writes the HTML diagnostic page. All dynamic values are escaped
// by html/template.
func RenderPage(w io.Writer, p Page) error {
	return page.Execute(w, newPageView(p))
}

// SampleNames returns the first n names in order and whether any were left
// out.
func SampleNames(names []string, n int) ([]string, bool) {
	if n <= 0 {
		n = DefaultCapabilitySample
	}

	if len(names) <= n {
		return names, false
	}

	return names[:n], true
}

func FormatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(TimeLayout)
}

// DumpServer renders the server metadata one `[KEY] => value` per line,
// sorted by key.
func DumpServer(ctx *reqctx.Context) string {
	var buf bytes.Buffer
	for _, key := range ctx.ServerKeys() {
		value, _ := ctx.Server(key)
		fmt.Fprintf(&buf, "[%s] => %s\n", key, value)
	}
	return buf.String()
}

type echo struct {
	Present bool
	Value   string
}

type pageView struct {
	RuntimeVersion string
	Software       string
	Host           string
	ServerName     string
	ServerAddr     string
	ClientAddr     string
	Now            string

	ProbeSucceeded bool
	ProbeFailed    bool
	ProbeDir       string

	Posted echo
	Query  echo

	DocumentRoot   string
	ScriptFilename string
	Hostname       string
	TempMount      string
	TempFree       string
	CgroupMode     string
	Capabilities   string

	ServerDump string
}

func newPageView(p Page) pageView {
	ctx := p.Request
	if ctx == nil {
		ctx = reqctx.New(nil, nil, nil, reqctx.Host{})
	}

	features := p.Features
	if features == nil {
		features = &sysfeat.Features{}
	}

	v := pageView{
		RuntimeVersion: orNA(ctx.RuntimeVersion()),
		Software:       ctx.ServerOr("SERVER_SOFTWARE", notAvailable),
		Host:           ctx.ServerOr("HTTP_HOST", notAvailable),
		ServerName:     ctx.ServerOr("SERVER_NAME", notAvailable),
		ServerAddr:     ctx.ServerOr("SERVER_ADDR", notAvailable),
		ClientAddr:     ctx.ServerOr("REMOTE_ADDR", notAvailable),
		Now:            FormatTime(ctx.Now(), p.Location),

		ProbeSucceeded: p.Probe == writeprobe.Succeeded,
		ProbeFailed:    p.Probe == writeprobe.Failed,
		ProbeDir:       p.ProbeDir,

		DocumentRoot:   ctx.ServerOr("DOCUMENT_ROOT", ""),
		ScriptFilename: ctx.ServerOr("SCRIPT_FILENAME", ""),
		Hostname:       orNA(features.Hostname),
		TempMount:      describeMount(features.TempMount),
		TempFree:       orNA(features.TempFree),
		CgroupMode:     orNA(features.CgroupMode),
		Capabilities:   describeCapabilities(ctx.Capabilities(), p.CapabilitySample),

		ServerDump: DumpServer(ctx),
	}

	if msg, ok := ctx.Form("msg"); ok {
		v.Posted = echo{Present: true, Value: msg}
	}

	if q, ok := ctx.Query("q"); ok {
		v.Query = echo{Present: true, Value: q}
	}

	return v
}

func describeCapabilities(names []string, n int) string {
	shown, truncated := SampleNames(names, n)

	s := strings.Join(shown, ", ")
	if truncated {
		s += truncationMark
	}
	return s
}

func describeMount(m sysfeat.Mount) string {
	if m.Mountpoint == "" {
		return notAvailable
	}

	mode := "rw"
	if m.ReadOnly {
		mode = "ro"
	}

	return fmt.Sprintf("%s (%s, %s)", m.Mountpoint, orNA(m.FSType), mode)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
