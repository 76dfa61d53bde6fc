// Package suggest asks a language model for tags and a description for a
// bookmark. Failures never reach the caller: they are logged and turn
// into an empty suggestion.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/nikbrunner/pile/internal/config"
	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/scrape"
)

// ErrNoAPIKey is reported when no credential is configured.
var ErrNoAPIKey = errors.New("no AI API key configured")

// Request describes the bookmark being saved.
type Request struct {
	URL          string
	Title        string
	Description  string
	ExistingTags []string // tags already in the collection, preferred when they fit
}

// Result is the model's answer.
type Result struct {
	Tags                 []string `json:"tags"`
	SuggestedDescription string   `json:"suggestedDescription,omitempty"`
}

// Empty returns the result used whenever a suggestion fails.
func Empty() Result {
	return Result{Tags: []string{}}
}

// Provider turns a prompt into JSON matching {tags, suggestedDescription}.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// PageFetcher downloads page content for the prompt.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*scrape.Page, error)
}

// Service produces suggestions. The zero provider means AI is disabled.
type Service struct {
	provider Provider
	fetcher  PageFetcher
	cache    *expirable.LRU[string, Result]
	logger   *zap.Logger
}

// Options configures a Service.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
	Logger    *zap.Logger
}

// New creates a Service. provider may be nil; fetcher may be nil to skip
// page content.
func New(provider Provider, fetcher PageFetcher, opts Options) *Service {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		fetcher:  fetcher,
		cache:    expirable.NewLRU[string, Result](opts.CacheSize, nil, opts.CacheTTL),
		logger:   opts.Logger,
	}
}

// NewFromConfig builds the provider named in cfg. Without an API key the
// service is disabled rather than failing.
func NewFromConfig(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := Options{CacheSize: cfg.CacheSize, CacheTTL: cfg.CacheTTL.Duration, Logger: logger}
	fetcher := scrape.NewFetcher(cfg.FetchTimeout.Duration, cfg.MaxContentChars)

	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Warn("AI API key not set, suggestions disabled")
		return New(nil, fetcher, opts)
	}

	var (
		provider Provider
		err      error
	)
	switch strings.ToLower(cfg.Provider) {
	case "anthropic":
		provider = NewAnthropic(cfg.APIKey, cfg.Model)
	default:
		provider, err = NewGemini(ctx, cfg.APIKey, cfg.Model)
	}
	if err != nil {
		logger.Error("create AI provider", zap.Error(&SuggestionError{Stage: StageConfig, Err: err}))
		return New(nil, fetcher, opts)
	}
	return New(provider, fetcher, opts)
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s.provider != nil
}

// Suggest returns tags and a description for req. It never fails: any
// error is logged and yields Empty().
func (s *Service) Suggest(ctx context.Context, req Request) Result {
	if strings.TrimSpace(req.URL) == "" && strings.TrimSpace(req.Title) == "" {
		return Empty()
	}
	if s.provider == nil {
		s.logger.Debug("suggestion skipped", zap.Error(&SuggestionError{Stage: StageConfig, Err: ErrNoAPIKey}))
		return Empty()
	}

	key := cacheKey(req)
	if cached, ok := s.cache.Get(key); ok {
		return cached
	}

	result, err := s.suggest(ctx, req)
	if err != nil {
		s.logger.Error("AI suggestion failed", zap.String("url", req.URL), zap.Error(err))
		return Empty()
	}
	s.cache.Add(key, result)
	return result
}

func (s *Service) suggest(ctx context.Context, req Request) (Result, error) {
	var page *scrape.Page
	if s.fetcher != nil && strings.HasPrefix(req.URL, "http") {
		p, err := s.fetcher.Fetch(ctx, req.URL)
		if err != nil {
			// Reduced input, not a failure.
			s.logger.Warn("page fetch failed", zap.Error(&SuggestionError{Stage: StageFetch, Err: err}))
		} else {
			page = p
		}
	}

	text, err := s.provider.Generate(ctx, BuildPrompt(req, page))
	if err != nil {
		return Result{}, &SuggestionError{Stage: StageGenerate, Err: err}
	}

	result, err := decodeResult(text)
	if err != nil {
		return Result{}, &SuggestionError{Stage: StageDecode, Err: err}
	}
	return result, nil
}

func decodeResult(text string) (Result, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var r Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &r); err != nil {
		return Result{}, err
	}
	r.Tags = model.NormalizeTags(r.Tags)
	r.SuggestedDescription = strings.TrimSpace(r.SuggestedDescription)
	return r, nil
}

func cacheKey(req Request) string {
	return req.URL + "\x00" + req.Title + "\x00" + req.Description
}
