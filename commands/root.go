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

package commands

import (
	"errors"
	"io"
	"os"
	"runtime"

	"code.cloudfoundry.org/lager/v3"
	"github.com/spf13/cobra"

	"webcheck/config"
	"webcheck/reqctx"
	"webcheck/sysfeat"
)

var (
	logger      lager.Logger
	configPath  string
	showVersion bool
)

func init() {
	RootCmd.PersistentFlags().BoolVar(&showVersion, "version", false, "print webcheck version")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")
}

var RootCmd = &cobra.Command{
	Long:              "A diagnostic web page which checks that the server can run and write to temporary storage",
	RunE:              root,
	Short:             "A diagnostic web page",
	SilenceErrors:     true,
	Use:               "webcheck",
	PersistentPreRunE: rootPre,
}

func rootPre(cmd *cobra.Command, _ []string) error {
	if showVersion {
		version(cmd, []string{})
		os.Exit(0)
	}

	return nil
}

func root(cmd *cobra.Command, _ []string) error {
	_ = cmd.Usage()
	return errors.New("must specify a command")
}

// loadConfig reads the config file given with --config, or returns the
// defaults when no file was given.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}

	return config.Parse(configPath)
}

func setupLogger(out io.Writer, cfg *config.Config) error {
	level, err := cfg.MinLogLevel()
	if err != nil {
		return err
	}

	logger = lager.NewLogger("webcheck")
	logger.RegisterSink(lager.NewPrettySink(out, level))

	return nil
}

func hostInfo(cfg *config.Config) reqctx.Host {
	docRoot := cfg.DocumentRoot
	if docRoot == "" {
		docRoot, _ = os.Getwd()
	}

	script, _ := os.Executable()

	return reqctx.Host{
		Software:       "webcheck/" + versionString(),
		DocumentRoot:   docRoot,
		ScriptFilename: script,
		RuntimeVersion: runtime.Version(),
		Capabilities:   sysfeat.Capabilities(),
	}
}
