package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cli/browser"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/picker"
	"github.com/nikbrunner/pile/internal/search"
	"github.com/nikbrunner/pile/internal/tags"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var tag string
	var unread bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookmarks, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				all, err := e.repo.Fetch(ctx)
				if err != nil {
					return err
				}
				bookmarks := tags.Filter(all, strings.ToLower(tag))
				if unread {
					var kept []model.Bookmark
					for _, b := range bookmarks {
						if !b.IsRead {
							kept = append(kept, b)
						}
					}
					bookmarks = kept
				}

				if len(bookmarks) == 0 {
					faint.Println("No bookmarks.")
					return nil
				}

				t := newTable("ID", "Title", "Tags", "Added", "Read")
				for _, b := range bookmarks {
					read := ""
					if b.IsRead {
						read = "✓"
					}
					t.Row(b.ID, b.Title, model.FormatTags(b.Tags), b.Created().Format("2006-01-02"), read)
				}
				fmt.Println(t.Render())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only bookmarks carrying this tag")
	cmd.Flags().BoolVarP(&unread, "unread", "u", false, "only unread bookmarks")
	return cmd
}

func newTagsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "Show how often each tag is used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				all, err := e.repo.Fetch(ctx)
				if err != nil {
					return err
				}
				counts := tags.Aggregate(all)
				if len(counts) == 0 {
					faint.Println("No tags.")
					return nil
				}

				t := newTable("Tag", "Count", "Size")
				for _, tc := range counts {
					t.Row(tc.Tag, strconv.Itoa(tc.Count), tags.SizeOf(tc.Count).String())
				}
				fmt.Println(t.Render())
				return nil
			})
		},
	}
}

func newReadCmd(opts *rootOptions, isRead bool) *cobra.Command {
	use, short, verb := "read <id>", "Mark a bookmark as read", "read"
	if !isRead {
		use, short, verb = "unread <id>", "Mark a bookmark as unread", "unread"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				b, err := e.findBookmark(ctx, args[0])
				if err != nil {
					return err
				}
				if err := e.repo.SetReadStatus(ctx, b.ID, isRead); err != nil {
					return err
				}
				green.Printf("Marked %s: ", verb)
				fmt.Println(b.Title)
				return nil
			})
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				b, err := e.findBookmark(ctx, args[0])
				if err != nil {
					return err
				}

				if !yes {
					confirmed := false
					err := huh.NewConfirm().
						Title("Delete " + b.Title + "?").
						Affirmative("Delete").
						Negative("Keep").
						Value(&confirmed).
						Run()
					if errors.Is(err, huh.ErrUserAborted) || (err == nil && !confirmed) {
						faint.Println("Kept.")
						return nil
					}
					if err != nil {
						return err
					}
				}

				if err := e.repo.Remove(ctx, b.ID); err != nil {
					return err
				}
				green.Print("Deleted: ")
				fmt.Println(b.Title)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search, pick a result and open it",
		Long: `Fuzzy search over titles, tags and URLs. A single match opens directly;
several matches open a picker. Prefix the query with # to list a tag.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				all, err := e.repo.Fetch(ctx)
				if err != nil {
					return err
				}

				results := search.Bookmarks(all, query)
				if len(results) == 0 {
					faint.Printf("No bookmarks found for '%s'\n", query)
					return nil
				}

				selected, err := pick(results, query)
				if err != nil || selected == nil {
					return err
				}

				if printOnly {
					fmt.Println(selected.URL)
					return nil
				}
				return openBookmark(*selected)
			})
		},
	}

	cmd.Flags().BoolVarP(&printOnly, "print", "p", false, "print the URL instead of opening it")
	return cmd
}

// pick returns the only result, or lets the user choose among several.
// A nil bookmark means the user cancelled.
func pick(results []search.Result, query string) (*model.Bookmark, error) {
	if len(results) == 1 {
		b := results[0].Bookmark
		return &b, nil
	}

	final, err := tea.NewProgram(picker.New(results, query)).Run()
	if err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}
	p := final.(picker.Picker)
	if p.Cancelled() {
		return nil, nil
	}
	return p.SelectedBookmark(), nil
}

func newOpenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Open a bookmark in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				b, err := e.findBookmark(ctx, args[0])
				if err != nil {
					return err
				}
				return openBookmark(b)
			})
		},
	}
}

func openBookmark(b model.Bookmark) error {
	cyan.Print("Opening: ")
	fmt.Println(b.Title)
	if err := browser.OpenURL(b.URL); err != nil {
		return fmt.Errorf("open %s: %w", b.URL, err)
	}
	return nil
}
