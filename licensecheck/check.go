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

// Package licensecheck finds Go source files which are missing the project's
// license header.
package licensecheck

import (
	"os"
	"path/filepath"
	"strings"
)

// The check strings should be near the top of the file.
const headerWindow = 512

var checks = []string{
	"Copyright",
	"CloudFoundry.org Foundation, Inc.",
	"www.apache.org",
}

// Generated code is not expected to carry the header.
var exceptions = []string{
	"mock_",
	"fake_",
}

// Check walks directory and returns the Go files which do not carry the
// license header. Directories starting with "_" or "." and testdata
// directories are skipped, as the go tool does.
func Check(directory string) ([]string, error) {
	var incompleteFiles []string

	err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != directory && ignoredDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) != ".go" {
			return nil
		}

		for _, exception := range exceptions {
			if strings.HasPrefix(filepath.Base(path), exception) || strings.Contains(path, "/"+exception) {
				return nil
			}
		}

		bs, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if len(bs) > headerWindow {
			bs = bs[:headerWindow]
		}

		for _, check := range checks {
			if !strings.Contains(string(bs), check) {
				incompleteFiles = append(incompleteFiles, path)
				break
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return incompleteFiles, nil
}

func ignoredDir(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "testdata" || name == "vendor"
}
