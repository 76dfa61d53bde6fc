package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cli/browser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nikbrunner/pile/internal/config"
	"github.com/nikbrunner/pile/internal/logging"
	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/repository"
	"github.com/nikbrunner/pile/internal/session"
	"github.com/nikbrunner/pile/internal/storage"
	"github.com/nikbrunner/pile/internal/suggest"
	"github.com/nikbrunner/pile/internal/tui"
)

type rootOptions struct {
	configPath string
	memory     bool
}

// env is everything a command needs, opened once per invocation.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	adapter storage.Adapter
	repo    *repository.Repository
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pile",
		Short: "A personal bookmark pile for the terminal",
		Long: `pile keeps links with titles, descriptions and tags.

Without a subcommand it opens the interactive browser. Bookmarks live in a
local file unless a remote database is configured (remote.url and
remote.key, or PILE_REMOTE_URL and PILE_REMOTE_KEY).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, runTUI)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (default ~/.config/pile/config.json)")
	cmd.PersistentFlags().BoolVar(&opts.memory, "memory", false, "use a throwaway in-memory store seeded with samples")

	cmd.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newReadCmd(opts, true),
		newReadCmd(opts, false),
		newDeleteCmd(opts),
		newTagsCmd(opts),
		newSearchCmd(opts),
		newOpenCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newCheckCmd(opts),
	)
	return cmd
}

// withEnv loads config, logger and store, runs fn and closes them again.
func withEnv(ctx context.Context, opts *rootOptions, fn func(context.Context, *env) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	path := opts.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return fmt.Errorf("config path: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	var adapter storage.Adapter
	if opts.memory {
		var records []storage.Record
		for _, b := range model.SeedBookmarks() {
			records = append(records, storage.RecordFromBookmark(b))
		}
		adapter = storage.NewMemoryStorage(records...)
	} else {
		adapter, err = storage.Open(ctx, cfg, logger.Named("storage"))
		if err != nil {
			return err
		}
	}
	if c, ok := adapter.(storage.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				logger.Warn("close store", zap.Error(err))
			}
		}()
	}

	e := &env{
		cfg:     cfg,
		logger:  logger,
		adapter: adapter,
		repo:    repository.New(adapter, logger.Named("repository")),
	}
	return fn(ctx, e)
}

func runTUI(ctx context.Context, e *env) error {
	// Keep xdg-open chatter off the alt screen.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	notices := tui.NewNotices()
	ctrl := session.New(e.repo, notices, e.logger.Named("session"))
	ctrl.Load(ctx)

	app := tui.NewApp(tui.AppParams{
		Controller: ctrl,
		Notices:    notices,
		Suggest:    suggest.NewFromConfig(ctx, e.cfg.AI, e.logger.Named("suggest")),
		Context:    ctx,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}

// findBookmark loads the collection and looks up id.
func (e *env) findBookmark(ctx context.Context, id string) (model.Bookmark, error) {
	all, err := e.repo.Fetch(ctx)
	if err != nil {
		return model.Bookmark{}, err
	}
	b := all.GetByID(id)
	if b == nil {
		return model.Bookmark{}, fmt.Errorf("no bookmark with id %q", id)
	}
	return *b, nil
}
