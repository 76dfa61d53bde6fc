package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/pile/internal/linkcheck"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var concurrency int
	var timeout time.Duration
	var prune bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report bookmarks whose links are dead or unreachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				all, err := e.repo.Fetch(ctx)
				if err != nil {
					return err
				}

				checkOpts := linkcheck.Options{
					Concurrency:    e.cfg.Check.Concurrency,
					Timeout:        e.cfg.Check.Timeout.Duration,
					ExcludeDomains: e.cfg.Check.ExcludeDomains,
					OnProgress: func(completed, total int) {
						fmt.Fprintf(os.Stderr, "\rChecked %d/%d", completed, total)
					},
				}
				if concurrency > 0 {
					checkOpts.Concurrency = concurrency
				}
				if timeout > 0 {
					checkOpts.Timeout = timeout
				}

				failed := linkcheck.Failed(linkcheck.Check(ctx, all, checkOpts))
				fmt.Fprintln(os.Stderr)

				if len(failed) == 0 {
					green.Printf("All %d links are healthy\n", len(all))
					return nil
				}

				t := newTable("ID", "Title", "Status", "Reason")
				for _, r := range failed {
					reason := r.Error
					if r.StatusCode != 0 {
						reason = fmt.Sprintf("HTTP %d", r.StatusCode)
					}
					t.Row(r.Bookmark.ID, r.Bookmark.Title, r.Status.String(), reason)
				}
				fmt.Println(t.Render())
				red.Printf("%d of %d links failed\n", len(failed), len(all))

				if !prune {
					return nil
				}
				return pruneFailed(ctx, e, failed)
			})
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel requests (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per request timeout (default from config)")
	cmd.Flags().BoolVar(&prune, "prune", false, "pick failed bookmarks to delete afterwards")
	return cmd
}

// pruneFailed lets the user select failed bookmarks and deletes them.
func pruneFailed(ctx context.Context, e *env, failed []linkcheck.Result) error {
	options := make([]huh.Option[string], len(failed))
	for i, r := range failed {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s)", r.Bookmark.Title, r.Status), r.Bookmark.ID)
	}

	var ids []string
	err := huh.NewMultiSelect[string]().
		Title("Delete which bookmarks?").
		Options(options...).
		Value(&ids).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := e.repo.Remove(ctx, id); err != nil {
			return err
		}
	}
	green.Printf("Deleted %d bookmarks\n", len(ids))
	return nil
}
