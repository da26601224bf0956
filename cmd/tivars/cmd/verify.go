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
	"time"

	"github.com/adambyle/ti-tools/pipeline"
	"github.com/adambyle/ti-tools/vars"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <path>...",
	Short: "Batch-verify variable files",
	Long: `Verify decodes every given file (directories are walked recursively) and
prints a per-file result line. The read mode decides how strict the check is:
"error" rejects any structural mismatch, "fix" accepts anything repairable,
and "ignore" accepts whatever is physically present.

The exit status is 1 when any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := resolveMode(cmd)
		if err != nil {
			return err
		}
		workers, err := resolveWorkers(cmd)
		if err != nil {
			return err
		}

		paths, err := collectVariableFiles(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no variable files found")
		}

		logger.Debug().
			Int("files", len(paths)).
			Str("mode", mode.String()).
			Int("workers", workers).
			Msg("starting verification")

		p := pipeline.NewFilePipeline(
			pipeline.WithDecodeWorkers(workers),
			pipeline.WithReadOptions(vars.NewFileReadOptions(mode)),
		)

		ctx := cmd.Context()
		if err := p.Start(ctx); err != nil {
			return err
		}

		start := time.Now()

		// Feed from a separate goroutine so backpressure on the submit
		// queue can't deadlock against result consumption below.
		go func() {
			for _, path := range paths {
				if err := p.Submit(ctx, path); err != nil {
					logger.Debug().Err(err).Msg("submit stopped")
					return
				}
			}
		}()

		var failed int
		var totalBytes uint64
		for i := 0; i < len(paths); i++ {
			item := <-p.Results()
			if item == nil {
				break
			}
			if err := item.DecodeError(); err != nil {
				failed++
				fmt.Printf("FAIL %v\n", err)
				continue
			}
			totalBytes += uint64(len(item.Data()))
			fmt.Printf("ok   %s\n", item.Path())
		}
		elapsed := time.Since(start)

		if err := p.Stop(); err != nil {
			return err
		}

		fmt.Printf(
			"verified %d files in %s: %d ok, %d failed (%s)\n",
			len(paths),
			elapsed.Round(time.Millisecond),
			len(paths)-failed,
			failed,
			humanize.IBytes(totalBytes),
		)

		if failed > 0 {
			return fmt.Errorf("%d of %d files failed verification", failed, len(paths))
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().String(
		"mode",
		"error",
		"read mode for structural checks (error|fix|ignore)",
	)
	verifyCmd.Flags().Int("workers", 0, "decode worker count (0 = auto)")
	rootCmd.AddCommand(verifyCmd)
}
