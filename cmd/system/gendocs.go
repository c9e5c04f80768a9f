package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

const docsFrontMatter = `---
title: %q
generated: %s
---

`

// NewGenDocsCommand writes one Markdown page per command, for the operator
// runbook.
func NewGenDocsCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "gendocs",
		Short: "Generate Markdown reference pages for the oilcall CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(outDir)
			if err != nil {
				return fmt.Errorf("resolve %q: %w", outDir, err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create docs directory %q: %w", abs, err)
			}

			stamp := time.Now().UTC().Format(time.DateOnly)
			prepend := func(filename string) string {
				title := strings.ReplaceAll(strings.TrimSuffix(filepath.Base(filename), ".md"), "_", " ")
				return fmt.Sprintf(docsFrontMatter, title, stamp)
			}
			link := func(name string) string { return "./" + name }

			root := cmd.Root()
			root.DisableAutoGenTag = true
			if err := doc.GenMarkdownTreeCustom(root, abs, prepend, link); err != nil {
				return fmt.Errorf("generate CLI docs: %w", err)
			}
			cmd.Printf("CLI docs written to %s\n", abs)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "outdir", "docs/cli", "output directory")
	return cmd
}
