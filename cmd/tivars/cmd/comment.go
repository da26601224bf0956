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

var commentCmd = &cobra.Command{
	Use:   "comment <file>",
	Short: "Show or rewrite a file's comment region",
	Long: `Comment prints the comment region text. With --set the region is rewritten
(zero-terminated by default, space-padded with --padded) and the file saved
back in canonical form, which also repairs any stale length or checksum.

The comment region holds raw bytes; --raw shows its length and termination
form along with the quoted bytes, which works even when the region is not
valid UTF-8.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("set") {
			text, err := cmd.Flags().GetString("set")
			if err != nil {
				return err
			}
			padded, err := cmd.Flags().GetBool("padded")
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

			f.SetComment(text, !padded)
			if err := os.WriteFile(path, f.Bytes(), 0o644); err != nil {
				return err
			}

			got, _ := f.Comment().Text(true)
			fmt.Printf("%s: comment set to %q\n", path, got)
			return nil
		}

		// Reads tolerate structural problems in other regions; the comment
		// bytes are present whenever the fixed header is.
		opts := vars.NewFileReadOptions(vars.ReadModeIgnore)
		opts.VariableLength = vars.ReadModeFix
		f, err := vars.NewFileFromBytesWithPayload(
			data,
			opts,
			vars.RawPayloadDecoder(kindFromPath(path)),
		)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		comment := f.Comment()

		raw, err := cmd.Flags().GetBool("raw")
		if err != nil {
			return err
		}
		if raw {
			form := "padded"
			if comment.IsZeroTerminated() {
				form = "zero-terminated"
			}
			fmt.Printf("length: %d\n", comment.Length())
			fmt.Printf("form:   %s\n", form)
			fmt.Printf("bytes:  %q\n", string(comment[:]))
			return nil
		}

		text, err := comment.Text(true)
		if err != nil {
			return fmt.Errorf("%s: %w (use --raw to view the bytes)", path, err)
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	commentCmd.Flags().String("set", "", "replace the comment with this text")
	commentCmd.Flags().Bool(
		"padded",
		false,
		"with --set, space-pad the comment instead of zero-terminating it",
	)
	commentCmd.Flags().Bool("raw", false, "show the undecoded comment region")
	rootCmd.AddCommand(commentCmd)
}
