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
	"path/filepath"

	"github.com/adambyle/ti-tools/catalog"
	"github.com/adambyle/ti-tools/pipeline"
	"github.com/adambyle/ti-tools/vars"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Catalog a tree of variable files",
	Long: `Scan walks a directory tree, decodes every variable file it recognizes by
extension, and writes a CBOR manifest of per-file metadata: kind, sizes,
checksum, comment, and a digest of the payload bytes. Files that fail to
decode are skipped with a warning.

Entries whose payload digests collide are reported as duplicates.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]

		info, err := os.Stat(root)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", root)
		}

		mode, err := resolveMode(cmd)
		if err != nil {
			return err
		}
		workers, err := resolveWorkers(cmd)
		if err != nil {
			return err
		}
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}

		paths, err := collectVariableFiles([]string{root})
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no variable files found under %s", root)
		}

		logger.Debug().
			Int("files", len(paths)).
			Str("mode", mode.String()).
			Msg("scanning")

		cat := catalog.NewCatalog()

		// The collect stage runs on a single goroutine in submission order,
		// so the catalog needs no locking here.
		p := pipeline.NewFilePipeline(
			pipeline.WithDecodeWorkers(workers),
			pipeline.WithReadOptions(vars.NewFileReadOptions(mode)),
			pipeline.WithCollectFunc(func(item *pipeline.FileItem) error {
				rel, err := filepath.Rel(root, item.Path())
				if err != nil {
					rel = item.Path()
				}
				return cat.AddFile(filepath.ToSlash(rel), item.File())
			}),
		)

		ctx := cmd.Context()
		if err := p.Start(ctx); err != nil {
			return err
		}

		go func() {
			for _, path := range paths {
				if err := p.Submit(ctx, path); err != nil {
					logger.Debug().Err(err).Msg("submit stopped")
					return
				}
			}
		}()

		var skipped int
		var totalBytes uint64
		for i := 0; i < len(paths); i++ {
			item := <-p.Results()
			if item == nil {
				break
			}
			if err := item.DecodeError(); err != nil {
				skipped++
				logger.Warn().Err(err).Msg("skipping file")
				continue
			}
			if err := item.CollectError(); err != nil {
				skipped++
				logger.Warn().Err(err).Str("path", item.Path()).Msg("skipping file")
				continue
			}
			totalBytes += uint64(len(item.Data()))
		}

		if err := p.Stop(); err != nil {
			return err
		}

		if err := cat.WriteFile(output); err != nil {
			return err
		}

		duplicates := cat.Duplicates()
		for _, group := range duplicates {
			fmt.Printf("duplicate payload %s:\n", group[0].Digest[:12])
			for _, entry := range group {
				fmt.Printf("  %s\n", entry.Path)
			}
		}

		fmt.Printf(
			"cataloged %d files (%s) into %s",
			cat.Len(),
			humanize.IBytes(totalBytes),
			output,
		)
		if skipped > 0 {
			fmt.Printf(", %d skipped", skipped)
		}
		if len(duplicates) > 0 {
			fmt.Printf(", %d duplicate groups", len(duplicates))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	scanCmd.Flags().StringP("output", "o", "catalog.cbor", "manifest output path")
	scanCmd.Flags().String(
		"mode",
		"error",
		"read mode for structural checks (error|fix|ignore)",
	)
	scanCmd.Flags().Int("workers", 0, "decode worker count (0 = auto)")
	rootCmd.AddCommand(scanCmd)
}
