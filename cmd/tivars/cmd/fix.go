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
	"bytes"
	"fmt"
	"os"

	"github.com/adambyle/ti-tools/vars"
	"github.com/spf13/cobra"
)

var fixCmd = &cobra.Command{
	Use:   "fix <file>",
	Short: "Repair a variable file's structural fields",
	Long: `Fix reads a file with every structural check in fix mode, so a wrong
signature, stale declared length, or bad checksum is repaired from the actual
payload bytes. The repaired encoding replaces the file unless --output names
a different destination.

Files whose regions are missing entirely (truncated below the fixed header)
cannot be repaired.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		if output == "" {
			output = path
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		f, err := vars.NewFileFromBytesWithPayload(
			data,
			vars.NewFileReadOptions(vars.ReadModeFix),
			vars.RawPayloadDecoder(kindFromPath(path)),
		)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		repaired := f.Bytes()
		if bytes.Equal(repaired, data) && output == path {
			fmt.Printf("%s: already canonical\n", path)
			return nil
		}

		if err := os.WriteFile(output, repaired, 0o644); err != nil {
			return err
		}

		if bytes.Equal(repaired, data) {
			fmt.Printf("%s: already canonical, copied to %s\n", path, output)
		} else {
			fmt.Printf("%s: repaired, %d bytes written to %s\n", path, len(repaired), output)
		}
		return nil
	},
}

func init() {
	fixCmd.Flags().StringP("output", "o", "", "write the repaired file here instead of in place")
	rootCmd.AddCommand(fixCmd)
}
