package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/scrape"
	"github.com/nikbrunner/pile/internal/suggest"
)

type addOptions struct {
	url         string
	title       string
	description string
	tags        string
	suggest     bool
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	add := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add [url]",
		Short: "Add a bookmark",
		Long: `Adds a bookmark. Without a URL an interactive form asks for the fields.

A missing title is taken from the page. With --suggest (or when confirmed in
the form) AI suggested tags are merged into yours and an empty description
is filled in.

Example:
  pile add https://go.dev --tags "go lang" --suggest`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				add.url = args[0]
			}
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				return runAdd(ctx, e, add, len(args) == 0)
			})
		},
	}

	cmd.Flags().StringVarP(&add.title, "title", "t", "", "title (default: the page title)")
	cmd.Flags().StringVarP(&add.description, "description", "d", "", "description")
	cmd.Flags().StringVar(&add.tags, "tags", "", `space separated tags, e.g. "go cli"`)
	cmd.Flags().BoolVarP(&add.suggest, "suggest", "s", false, "merge AI tag and description suggestions")
	return cmd
}

func runAdd(ctx context.Context, e *env, add *addOptions, interactive bool) error {
	svc := suggest.NewFromConfig(ctx, e.cfg.AI, e.logger.Named("suggest"))

	if interactive {
		if err := addForm(add, svc.Enabled()).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
	}
	if err := validateURL(add.url); err != nil {
		return err
	}

	add.url = strings.TrimSpace(add.url)
	add.title = strings.TrimSpace(add.title)
	if add.title == "" {
		add.title = pageTitle(ctx, e, add.url)
	}

	if add.suggest {
		if !svc.Enabled() {
			return errors.New("AI suggestions need an API key (ai.apiKey or GEMINI_API_KEY)")
		}
		all, err := e.repo.Fetch(ctx)
		if err != nil {
			return err
		}
		result := svc.Suggest(ctx, suggest.Request{
			URL:          add.url,
			Title:        add.title,
			Description:  add.description,
			ExistingTags: suggest.ExistingTags(all),
		})
		if len(result.Tags) > 0 {
			faint.Println("Suggested tags:", strings.Join(result.Tags, " "))
		}
		add.tags, add.description = suggest.Merge(add.tags, add.description, result)
	}

	b := model.NewBookmark(model.NewBookmarkParams{
		URL:         add.url,
		Title:       add.title,
		Description: strings.TrimSpace(add.description),
		Tags:        model.ParseTags(add.tags),
	})
	saved, err := e.repo.Add(ctx, b)
	if err != nil {
		return err
	}

	green.Print("Added: ")
	fmt.Printf("%s %s\n", saved.Title, faint.Sprint(saved.ID))
	if len(saved.Tags) > 0 {
		cyan.Println(model.FormatTags(saved.Tags))
	}
	return nil
}

func addForm(add *addOptions, aiEnabled bool) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("URL").
			Value(&add.url).
			Validate(validateURL),
		huh.NewInput().
			Title("Title").
			Description("Leave empty to use the page title").
			Value(&add.title),
		huh.NewText().
			Title("Description").
			Value(&add.description),
		huh.NewInput().
			Title("Tags").
			Description("Space separated").
			Value(&add.tags),
	}
	if aiEnabled {
		fields = append(fields, huh.NewConfirm().
			Title("Ask AI for tags?").
			Value(&add.suggest))
	}
	return huh.NewForm(huh.NewGroup(fields...))
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("a URL is required")
	}
	if _, err := url.Parse(s); err != nil {
		return fmt.Errorf("unable to parse url %q: %w", s, err)
	}
	return nil
}

// pageTitle fetches the page title, falling back to the URL itself.
func pageTitle(ctx context.Context, e *env, rawURL string) string {
	page, err := scrape.NewFetcher(e.cfg.AI.FetchTimeout.Duration, e.cfg.AI.MaxContentChars).Fetch(ctx, rawURL)
	if err != nil {
		e.logger.Debug("title lookup failed", zap.String("url", rawURL), zap.Error(err))
		return rawURL
	}
	if t := strings.TrimSpace(page.Title); t != "" {
		return t
	}
	return rawURL
}
