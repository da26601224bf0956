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
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <out>",
	Short: "Build a variable file around raw payload bytes",
	Long: `Create wraps the payload bytes read from --payload in a fresh container:
device signature, comment, derived length field, and checksum. The variable
kind names the payload's type on the calculator and defaults to the kind
matching the output path's extension.

Example:
  tivars create --payload quad.bin --comment "Quadratic solver" QUAD.8xp`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := args[0]

		payloadPath, err := cmd.Flags().GetString("payload")
		if err != nil {
			return err
		}
		payload, err := os.ReadFile(payloadPath)
		if err != nil {
			return err
		}

		kind := kindFromPath(out)
		if cmd.Flags().Changed("kind") {
			name, err := cmd.Flags().GetString("kind")
			if err != nil {
				return err
			}
			kind = vars.KindByName(name)
			if kind == vars.KindUnknown {
				return fmt.Errorf("unknown variable kind %q", name)
			}
		}

		f, err := vars.NewFile(vars.NewRaw(kind, payload))
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("comment") {
			text, err := cmd.Flags().GetString("comment")
			if err != nil {
				return err
			}
			padded, err := cmd.Flags().GetBool("padded")
			if err != nil {
				return err
			}
			f.SetComment(text, !padded)
		}

		if err := os.WriteFile(out, f.Bytes(), 0o644); err != nil {
			return err
		}

		fmt.Printf(
			"created %s: kind %s, %s, checksum 0x%04x\n",
			out,
			kind,
			humanize.IBytes(uint64(f.Size())),
			f.Checksum(),
		)
		return nil
	},
}

func init() {
	createCmd.Flags().String("payload", "", "file holding the raw payload bytes (required)")
	createCmd.Flags().String("kind", "", "variable kind name (default from output extension)")
	createCmd.Flags().String("comment", "", "comment region text")
	createCmd.Flags().Bool(
		"padded",
		false,
		"with --comment, space-pad the comment instead of zero-terminating it",
	)
	_ = createCmd.MarkFlagRequired("payload")
	rootCmd.AddCommand(createCmd)
}
