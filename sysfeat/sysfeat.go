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

// Package sysfeat fetches information about the host system and the running
// binary which is shown on the diagnostic page. Nothing in here fails: any
// fact which cannot be determined is left empty.
package sysfeat

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/moby/sys/mountinfo"
)

// Features contains information about the host system.
type Features struct {
	Hostname string
	OS       string
	Arch     string
	NumCPU   int

	// One of "v2", "hybrid" or "v1" on Linux, empty elsewhere.
	CgroupMode string

	TempMount Mount
	// Human readable free space in the temp directory, e.g. "1.5G".
	TempFree string
}

// Mount describes the filesystem a path lives on.
type Mount struct {
	Mountpoint string
	FSType     string
	ReadOnly   bool
}

func Fetch(tempDir string) *Features {
	hostname, _ := os.Hostname()

	f := &Features{
		Hostname:   hostname,
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
		CgroupMode: cgroupMode(),
	}

	if tempDir == "" {
		return f
	}

	if m, ok := mountFor(tempDir); ok {
		f.TempMount = m
	}

	if free, ok := freeBytes(tempDir); ok {
		f.TempFree = bytefmt.ByteSize(free)
	}

	return f
}

// Capabilities lists the modules compiled into the running binary: the main
// module first, then its dependencies in build order.
func Capabilities() []string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	var names []string
	if info.Main.Path != "" {
		names = append(names, info.Main.Path)
	}

	for _, dep := range info.Deps {
		if dep.Replace != nil {
			dep = dep.Replace
		}
		names = append(names, dep.Path)
	}

	return names
}

func mountFor(path string) (Mount, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Mount{}, false
	}

	mounts, err := mountinfo.GetMounts(mountinfo.ParentsFilter(abs))
	if err != nil || len(mounts) == 0 {
		return Mount{}, false
	}

	deepest := mounts[0]
	for _, m := range mounts[1:] {
		if len(m.Mountpoint) >= len(deepest.Mountpoint) {
			deepest = m
		}
	}

	return Mount{
		Mountpoint: deepest.Mountpoint,
		FSType:     deepest.FSType,
		ReadOnly:   hasOption(deepest.Options, "ro"),
	}, true
}

func hasOption(options, want string) bool {
	for _, opt := range strings.Split(options, ",") {
		if opt == want {
			return true
		}
	}
	return false
}
