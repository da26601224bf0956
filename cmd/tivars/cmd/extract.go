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
	"os"

	"github.com/adambyle/ti-tools/vars"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Write a file's variable payload bytes",
	Long: `Extract decodes a variable file and writes the bare payload region, without
the container header and checksum, to --output or standard output.

The read mode controls how strict the decode is; "fix" salvages payloads out
of files with stale lengths or checksums.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		mode, err := resolveMode(cmd)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		f, err := vars.NewFileFromBytesWithPayload(
			data,
			vars.NewFileReadOptions(mode),
			vars.RawPayloadDecoder(kindFromPath(path)),
		)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		payload := f.Variable().Bytes()

		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		if output == "" {
			_, err := os.Stdout.Write(payload)
			return err
		}

		if err := os.WriteFile(output, payload, 0o644); err != nil {
			return err
		}
		fmt.Printf("%s: %d payload bytes written to %s\n", path, len(payload), output)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "write payload bytes here (default stdout)")
	extractCmd.Flags().String(
		"mode",
		"error",
		"read mode for structural checks (error|fix|ignore)",
	)
	rootCmd.AddCommand(extractCmd)
}
