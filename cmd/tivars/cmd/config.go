// Copyright 2026 The ti-tools Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adambyle/ti-tools/vars"
)

// cliConfig holds resolved defaults for all commands. Explicit flags always
// override these values.
type cliConfig struct {
	Mode    vars.ReadMode
	Workers int
	Color   bool
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		Mode:    vars.ReadModeError,
		Workers: 0,
		Color:   true,
	}
}

// fileConfig mirrors the TOML config file layout.
type fileConfig struct {
	Mode    string `toml:"mode"`
	Workers int    `toml:"workers"`
	Color   bool   `toml:"color"`
}

// loadConfig reads defaults from the given TOML file on top of the built-in
// defaults. An empty path returns the built-in defaults. Only keys actually
// present in the file override anything.
func loadConfig(path string) (cliConfig, error) {
	cfg := defaultCLIConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cliConfig{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("mode") {
		mode, err := vars.ParseReadMode(strings.TrimSpace(raw.Mode))
		if err != nil {
			return cliConfig{}, fmt.Errorf("config mode: %w", err)
		}
		cfg.Mode = mode
	}

	if meta.IsDefined("workers") {
		if raw.Workers < 1 {
			return cliConfig{}, fmt.Errorf(
				"config workers: must be positive, got %d",
				raw.Workers,
			)
		}
		cfg.Workers = raw.Workers
	}

	if meta.IsDefined("color") {
		cfg.Color = raw.Color
	}

	return cfg, nil
}
