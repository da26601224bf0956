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
	"os"
	"path/filepath"
	"time"

	"github.com/adambyle/ti-tools/vars"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	// cfg holds defaults merged from the optional config file; individual
	// commands consult it when their own flags weren't set.
	cfg cliConfig

	logger zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tivars",
	Short: "Inspect, verify, and repair TI calculator variable files",
	Long: `tivars works with the fixed-layout container format used by TI-83/84
calculator variable files: an 11-byte device signature, a 42-byte comment
region, the declared variable length, the variable payload, and a trailing
checksum over the payload bytes.

Structural problems (wrong signature, stale length, bad checksum) can be
reported, repaired, or ignored per field depending on the read mode.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cfgFile)
		if err != nil {
			return err
		}
		logger = newLogger(verbose, cfg.Color)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"TOML config file with command defaults",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"enable debug logging",
	)
}

func newLogger(verbose bool, color bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}
	return zerolog.New(output).With().Timestamp().Logger().Level(level)
}

// kindFromPath resolves the variable kind from a file path's extension.
func kindFromPath(path string) vars.Kind {
	return vars.KindByExtension(filepath.Ext(path))
}

// resolveMode returns the command's --mode flag if set, falling back to the
// config file default.
func resolveMode(cmd *cobra.Command) (vars.ReadMode, error) {
	if cmd.Flags().Changed("mode") {
		s, err := cmd.Flags().GetString("mode")
		if err != nil {
			return 0, err
		}
		return vars.ParseReadMode(s)
	}
	return cfg.Mode, nil
}

// resolveWorkers returns the command's --workers flag if set, falling back to
// the config file default. Zero means the pipeline picks its own default.
func resolveWorkers(cmd *cobra.Command) (int, error) {
	if cmd.Flags().Changed("workers") {
		return cmd.Flags().GetInt("workers")
	}
	return cfg.Workers, nil
}
