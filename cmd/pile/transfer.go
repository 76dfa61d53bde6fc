package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/pile/internal/exporter"
	"github.com/nikbrunner/pile/internal/importer"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var folderTags bool

	cmd := &cobra.Command{
		Use:   "import <file.html>",
		Short: "Import bookmarks from a browser HTML export",
		Long: `Imports a Netscape bookmark file as exported by browsers and most
bookmarking services. TAGS attributes and descriptions are kept; URLs that
are already saved are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open file: %w", err)
				}
				defer file.Close()

				imported, err := importer.ParseHTMLBookmarks(file, importer.Options{FolderTags: folderTags})
				if err != nil {
					return fmt.Errorf("parse HTML: %w", err)
				}

				existing, err := e.repo.Fetch(ctx)
				if err != nil {
					return err
				}
				added, skipped := importer.Merge(existing, imported)

				// Oldest first so the newest import ends up in front.
				saved := 0
				for _, b := range importer.OldestFirst(added) {
					if _, err := e.repo.Add(ctx, b); err != nil {
						return fmt.Errorf("imported %d of %d: %w", saved, len(added), err)
					}
					saved++
				}

				green.Printf("Imported %d bookmarks", saved)
				if skipped > 0 {
					faint.Printf(" (%d duplicates skipped)", skipped)
				}
				fmt.Println()
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&folderTags, "folder-tags", true, "tag bookmarks with their folder names")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Export bookmarks to a browser compatible HTML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath := ""
			if len(args) == 1 {
				outputPath = args[0]
			}
			if outputPath == "" {
				var err error
				if outputPath, err = exporter.DefaultExportPath(); err != nil {
					return fmt.Errorf("default export path: %w", err)
				}
			}

			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				all, err := e.repo.Fetch(ctx)
				if err != nil {
					return err
				}
				if err := os.WriteFile(outputPath, []byte(exporter.ExportHTML(all)), 0o644); err != nil {
					return fmt.Errorf("write file: %w", err)
				}
				green.Printf("Exported %d bookmarks to %s\n", len(all), outputPath)
				return nil
			})
		},
	}
}
