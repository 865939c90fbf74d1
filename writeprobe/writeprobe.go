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

// Package writeprobe checks whether the process can create files in a
// directory by writing and then removing a uniquely named file.
package writeprobe

import (
	"fmt"
	"os"
	"time"

	"code.cloudfoundry.org/clock"
	securejoin "github.com/cyphar/filepath-securejoin"
	uuid "github.com/satori/go.uuid"
)

const filePrefix = "webcheck_write_test_"

// Result is the outcome of a single probe.
type Result int

const (
	// NotAttempted means no probe ran for the request.
	NotAttempted Result = iota
	Succeeded
	Failed
)

func (r Result) String() string {
	switch r {
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	default:
		return "Not attempted"
	}
}

type Option func(*Prober)

// WithRemover replaces os.Remove as the function used to clean up the probe
// file.
func WithRemover(remove func(string) error) Option {
	return func(p *Prober) {
		p.remove = remove
	}
}

// WithWriter replaces os.WriteFile as the function used to create the probe
// file.
func WithWriter(write func(string, []byte, os.FileMode) error) Option {
	return func(p *Prober) {
		p.write = write
	}
}

func WithNamer(name func() string) Option {
	return func(p *Prober) {
		p.name = name
	}
}

type Prober struct {
	dir   string
	clock clock.Clock

	name   func() string
	write  func(string, []byte, os.FileMode) error
	remove func(string) error
}

// New creates a Prober for dir. If dir is empty then os.TempDir() is used.
func New(dir string, clock clock.Clock, opts ...Option) *Prober {
	if dir == "" {
		dir = os.TempDir()
	}

	p := &Prober{
		dir:    dir,
		clock:  clock,
		name:   FileName,
		write:  os.WriteFile,
		remove: os.Remove,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// FileName returns a probe file name which is unique per call.
func FileName() string {
	return fmt.Sprintf("%s%s.txt", filePrefix, uuid.NewV4().String())
}

func (p *Prober) Dir() string {
	return p.dir
}

// Probe writes a file into the probe directory and removes it again. It
// never returns an error: any failure to create the file, including a panic
// from an injected function, is reported as Failed. A failure to remove the
// file afterwards is ignored.
func (p *Prober) Probe() (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Failed
		}
	}()

	path, err := securejoin.SecureJoin(p.dir, p.name())
	if err != nil {
		return Failed
	}

	content := fmt.Sprintf("Hello from webcheck at %s", p.clock.Now().Format(time.RFC3339))
	if err := p.write(path, []byte(content), 0600); err != nil {
		return Failed
	}

	p.cleanup(path)

	return Succeeded
}

func (p *Prober) cleanup(path string) {
	defer func() {
		_ = recover()
	}()

	_ = p.remove(path)
}
