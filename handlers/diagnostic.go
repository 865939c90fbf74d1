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

package handlers

import (
	"bytes"
	"net/http"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"

	"webcheck/presenters"
	"webcheck/reqctx"
	"webcheck/sysfeat"
	"webcheck/writeprobe"
)

const (
	pingParam = "ping"

	contentTypeText = "text/plain; charset=UTF-8"
	contentTypeHTML = "text/html; charset=UTF-8"
)

//go:generate mockgen -destination=mock_handlers/mocks.go -package=mock_handlers webcheck/handlers Prober

type Prober interface {
	Probe() writeprobe.Result
	Dir() string
}

type Options struct {
	Location         *time.Location
	CapabilitySample int

	// Features looks up host features for the probed directory. Defaults to
	// sysfeat.Fetch.
	Features func(tempDir string) *sysfeat.Features
}

// Diagnostic serves the diagnostic page on every path and method. A request
// with a ping query parameter gets a plain "pong" and nothing else runs.
type Diagnostic struct {
	logger lager.Logger
	clock  clock.Clock
	prober Prober
	host   reqctx.Host
	opts   Options
}

func NewDiagnostic(
	logger lager.Logger,
	clock clock.Clock,
	prober Prober,
	host reqctx.Host,
	opts Options,
) *Diagnostic {
	if opts.Features == nil {
		opts.Features = sysfeat.Fetch
	}

	return &Diagnostic{
		logger: logger,
		clock:  clock,
		prober: prober,
		host:   host,
		opts:   opts,
	}
}

func (d *Diagnostic) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := d.logger.Session("request", lager.Data{
		"method": r.Method,
		"path":   r.URL.Path,
		"remote": r.RemoteAddr,
	})

	if r.URL.Query().Has(pingParam) {
		logger.Debug("ping")
		d.pong(w)
		return
	}

	result := d.prober.Probe()

	host := d.host
	host.Now = d.clock.Now()

	page := presenters.Page{
		Request:          reqctx.FromRequest(r, host),
		Probe:            result,
		ProbeDir:         d.prober.Dir(),
		Features:         d.opts.Features(d.prober.Dir()),
		Location:         d.opts.Location,
		CapabilitySample: d.opts.CapabilitySample,
	}

	var buf bytes.Buffer
	if err := presenters.RenderPage(&buf, page); err != nil {
		logger.Error("failed-to-render-page", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Error("failed-to-write-response", err)
		return
	}

	logger.Info("rendered")
}

func (d *Diagnostic) pong(w http.ResponseWriter) {
	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(http.StatusOK)
	_ = presenters.RenderPong(w)
}
