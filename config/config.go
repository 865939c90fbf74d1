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

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"code.cloudfoundry.org/lager/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListen           = ":8080"
	DefaultTimezone         = "America/Monterrey"
	DefaultCapabilitySample = 8
	DefaultLogLevel         = "info"
)

type Config struct {
	Listen           string `yaml:"listen"`
	Timezone         string `yaml:"timezone"`
	TempDir          string `yaml:"temp_dir"`
	DocumentRoot     string `yaml:"document_root"`
	CapabilitySample int    `yaml:"capability_sample"`
	LogLevel         string `yaml:"log_level"`

	location *time.Location
}

func Default() *Config {
	return &Config{
		Listen:           DefaultListen,
		Timezone:         DefaultTimezone,
		CapabilitySample: DefaultCapabilitySample,
		LogLevel:         DefaultLogLevel,
	}
}

// Parse reads a YAML config file. Keys missing from the file keep their
// default values.
func Parse(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := Default()

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("invalid config: listen")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid config: timezone %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.CapabilitySample < 0 {
		return fmt.Errorf("invalid config: capability_sample must not be negative, got %d", c.CapabilitySample)
	}

	if _, err := c.MinLogLevel(); err != nil {
		return err
	}

	return nil
}

// Location returns the display timezone. Validate must have been called for
// anything other than the default.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		if loc, err := time.LoadLocation(c.Timezone); err == nil {
			c.location = loc
		} else {
			return time.Local
		}
	}
	return c.location
}

func (c *Config) MinLogLevel() (lager.LogLevel, error) {
	level, err := lager.LogLevelFromString(c.LogLevel)
	if err != nil {
		return lager.INFO, fmt.Errorf("invalid config: log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
