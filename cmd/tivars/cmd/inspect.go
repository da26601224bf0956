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
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/adambyle/ti-tools/vars"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type inspectReport struct {
	Path             string `json:"path"`
	Size             int64  `json:"size"`
	SignatureValid   bool   `json:"signature_valid"`
	Kind             string `json:"kind"`
	Comment          string `json:"comment"`
	CommentValidUTF8 bool   `json:"comment_valid_utf8"`
	ZeroTerminated   bool   `json:"comment_zero_terminated"`
	CommentLength    int    `json:"comment_length"`
	DeclaredLength   uint16 `json:"declared_length"`
	ActualLength     int    `json:"actual_length"`
	StoredChecksum   string `json:"stored_checksum"`
	ComputedChecksum string `json:"computed_checksum"`
	Digest           string `json:"digest"`
	Valid            bool   `json:"valid"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the structure of a variable file",
	Long: `Inspect reads a variable file as tolerantly as possible and reports every
region: signature validity, comment text and form, declared versus actual
variable length, stored versus computed checksum, and the payload digest.

Inspect never repairs anything; use the fix command for that.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := buildInspectReport(args[0])
		if err != nil {
			return err
		}

		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}
		if asJSON {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		printInspectReport(report)
		return nil
	},
}

func buildInspectReport(path string) (*inspectReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// The raw declared length is read directly so it can be reported even
	// when the tolerant decode below has to clamp a truncated region.
	var declared uint16
	if len(data) >= vars.HeaderSize {
		declared = binary.LittleEndian.Uint16(data[vars.VariableLengthOffset:])
	}
	available := len(data) - vars.HeaderSize - vars.ChecksumSize

	opts := vars.NewFileReadOptions(vars.ReadModeIgnore)
	opts.VariableLength = vars.ReadModeFix
	f, err := vars.NewFileFromBytesWithPayload(
		data,
		opts,
		vars.RawPayloadDecoder(kindFromPath(path)),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	comment := f.Comment()
	commentText, commentErr := comment.Text(true)

	variableBytes := f.Variable().Bytes()
	storedChecksum := f.Checksum()
	computedChecksum := vars.ComputeChecksum(variableBytes)
	signatureValid := f.Signature() == vars.FileSignature

	return &inspectReport{
		Path:             path,
		Size:             int64(len(data)),
		SignatureValid:   signatureValid,
		Kind:             kindFromPath(path).Name,
		Comment:          commentText,
		CommentValidUTF8: commentErr == nil,
		ZeroTerminated:   comment.IsZeroTerminated(),
		CommentLength:    comment.Length(),
		DeclaredLength:   declared,
		ActualLength:     available,
		StoredChecksum:   fmt.Sprintf("0x%04x", storedChecksum),
		ComputedChecksum: fmt.Sprintf("0x%04x", computedChecksum),
		Digest:           f.Variable().Digest().String(),
		Valid: signatureValid &&
			int(declared) == available &&
			storedChecksum == computedChecksum,
	}, nil
}

func printInspectReport(r *inspectReport) {
	fmt.Printf("file:       %s\n", r.Path)
	fmt.Printf(
		"size:       %s (%d bytes)\n",
		humanize.IBytes(uint64(r.Size)),
		r.Size,
	)

	if r.SignatureValid {
		fmt.Printf("signature:  ok\n")
	} else {
		fmt.Printf("signature:  MISMATCH\n")
	}

	fmt.Printf("kind:       %s\n", r.Kind)

	form := "padded"
	if r.ZeroTerminated {
		form = "zero-terminated"
	}
	if r.CommentValidUTF8 {
		fmt.Printf("comment:    %q (%s, %d bytes)\n", r.Comment, form, r.CommentLength)
	} else {
		fmt.Printf("comment:    invalid UTF-8 (%s, %d bytes)\n", form, r.CommentLength)
	}

	if int(r.DeclaredLength) == r.ActualLength {
		fmt.Printf("length:     declared %d, actual %d\n", r.DeclaredLength, r.ActualLength)
	} else {
		fmt.Printf(
			"length:     declared %d, actual %d (MISMATCH)\n",
			r.DeclaredLength,
			r.ActualLength,
		)
	}

	if r.StoredChecksum == r.ComputedChecksum {
		fmt.Printf("checksum:   stored %s, computed %s\n", r.StoredChecksum, r.ComputedChecksum)
	} else {
		fmt.Printf(
			"checksum:   stored %s, computed %s (MISMATCH)\n",
			r.StoredChecksum,
			r.ComputedChecksum,
		)
	}

	fmt.Printf("digest:     %s\n", r.Digest)

	if r.Valid {
		fmt.Printf("status:     valid\n")
	} else {
		fmt.Printf("status:     invalid\n")
	}
}

func init() {
	inspectCmd.Flags().Bool("json", false, "emit the report as JSON")
	rootCmd.AddCommand(inspectCmd)
}
