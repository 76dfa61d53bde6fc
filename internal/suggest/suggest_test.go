package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/pile/internal/config"
	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/scrape"
)

type fakeProvider struct {
	reply   string
	err     error
	calls   int
	prompts []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

type fakeFetcher struct {
	page *scrape.Page
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*scrape.Page, error) {
	f.urls = append(f.urls, rawURL)
	return f.page, f.err
}

func TestSuggest_UsesPageContent(t *testing.T) {
	provider := &fakeProvider{reply: `{"tags":["Postgres","indexing","postgres"],"suggestedDescription":" A guide. "}`}
	fetcher := &fakeFetcher{page: &scrape.Page{Title: "PG", MetaDescription: "meta", Content: "B-tree body"}}
	s := New(provider, fetcher, Options{})

	got := s.Suggest(context.Background(), Request{URL: "https://pg.example", Title: "pg"})

	assert.DeepEqual(t, got.Tags, []string{"postgres", "indexing"})
	assert.Equal(t, got.SuggestedDescription, "A guide.")
	assert.Check(t, is.Contains(provider.prompts[0], "B-tree body"))
	assert.Check(t, is.Contains(provider.prompts[0], "Scraped Meta Description: meta"))
}

func TestSuggest_NoCredentials(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := New(nil, fetcher, Options{})

	got := s.Suggest(context.Background(), Request{URL: "https://x"})
	assert.DeepEqual(t, got, Empty())
	assert.Assert(t, !s.Enabled())
	assert.Equal(t, len(fetcher.urls), 0)
}

func TestSuggest_NeedsURLOrTitle(t *testing.T) {
	provider := &fakeProvider{reply: `{"tags":["x"]}`}
	s := New(provider, nil, Options{})

	got := s.Suggest(context.Background(), Request{Description: "only a description"})
	assert.DeepEqual(t, got, Empty())
	assert.Equal(t, provider.calls, 0)
}

func TestSuggest_FetchOnlyForHTTP(t *testing.T) {
	provider := &fakeProvider{reply: `{"tags":["notes"]}`}
	fetcher := &fakeFetcher{}
	s := New(provider, fetcher, Options{})

	got := s.Suggest(context.Background(), Request{URL: "file:///notes.txt", Title: "Notes"})
	assert.DeepEqual(t, got.Tags, []string{"notes"})
	assert.Equal(t, len(fetcher.urls), 0)
	assert.Check(t, is.Contains(provider.prompts[0], contentUnavailable))
}

func TestSuggest_FetchFailureStillSuggests(t *testing.T) {
	provider := &fakeProvider{reply: `{"tags":["go"]}`}
	fetcher := &fakeFetcher{err: errors.New("timeout")}
	s := New(provider, fetcher, Options{})

	got := s.Suggest(context.Background(), Request{URL: "https://go.dev"})
	assert.DeepEqual(t, got.Tags, []string{"go"})
	assert.Check(t, is.Contains(provider.prompts[0], contentUnavailable))
}

func TestSuggest_FailuresBecomeEmpty(t *testing.T) {
	tests := []struct {
		name      string
		provider  *fakeProvider
		wantStage Stage
	}{
		{name: "generate", provider: &fakeProvider{err: errors.New("quota")}, wantStage: StageGenerate},
		{name: "decode", provider: &fakeProvider{reply: "not json"}, wantStage: StageDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			s := New(tt.provider, nil, Options{Logger: zap.New(core)})

			got := s.Suggest(context.Background(), Request{URL: "https://x"})
			assert.DeepEqual(t, got, Empty())
			assert.Equal(t, logs.Len(), 1)

			entry := logs.All()[0]
			err, ok := entry.ContextMap()["error"].(string)
			assert.Assert(t, ok)
			assert.Check(t, is.Contains(err, "suggestion "+string(tt.wantStage)))
		})
	}
}

func TestSuggest_Caches(t *testing.T) {
	provider := &fakeProvider{reply: `{"tags":["a"]}`}
	s := New(provider, nil, Options{})
	req := Request{URL: "https://a", Title: "A"}

	s.Suggest(context.Background(), req)
	s.Suggest(context.Background(), req)
	assert.Equal(t, provider.calls, 1)

	s.Suggest(context.Background(), Request{URL: "https://a", Title: "Other"})
	assert.Equal(t, provider.calls, 2)
}

func TestSuggest_FailuresNotCached(t *testing.T) {
	provider := &fakeProvider{err: errors.New("down")}
	s := New(provider, nil, Options{})
	req := Request{URL: "https://a"}

	s.Suggest(context.Background(), req)
	provider.err = nil
	provider.reply = `{"tags":["b"]}`

	got := s.Suggest(context.Background(), req)
	assert.DeepEqual(t, got.Tags, []string{"b"})
}

func TestDecodeResult_Fenced(t *testing.T) {
	r, err := decodeResult("```json\n{\"tags\":[\"x\"],\"suggestedDescription\":null}\n```")
	assert.NilError(t, err)
	assert.DeepEqual(t, r.Tags, []string{"x"})
	assert.Equal(t, r.SuggestedDescription, "")
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		tags     string
		desc     string
		result   Result
		wantTags string
		wantDesc string
	}{
		{
			name:     "existing first, unique",
			tags:     "go web",
			result:   Result{Tags: []string{"web", "backend"}},
			wantTags: "go web backend",
		},
		{
			name:     "fills empty description",
			result:   Result{Tags: []string{"a"}, SuggestedDescription: "Suggested."},
			wantTags: "a",
			wantDesc: "Suggested.",
		},
		{
			name:     "keeps typed description",
			desc:     "Mine.",
			result:   Result{SuggestedDescription: "Suggested."},
			wantDesc: "Mine.",
		},
		{
			name:     "no tags leaves input untouched",
			tags:     "  spaced   input ",
			result:   Empty(),
			wantTags: "  spaced   input ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTags, gotDesc := Merge(tt.tags, tt.desc, tt.result)
			assert.Equal(t, gotTags, tt.wantTags)
			assert.Equal(t, gotDesc, tt.wantDesc)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(Request{URL: "https://x", ExistingTags: []string{"go", "rust"}}, nil)

	assert.Check(t, is.Contains(p, "User URL: https://x"))
	assert.Check(t, is.Contains(p, "User Title: N/A"))
	assert.Check(t, is.Contains(p, contentUnavailable))
	assert.Check(t, is.Contains(p, "Existing tags: go, rust"))
	assert.Assert(t, !strings.HasPrefix(p, "\t"))
}

func TestExistingTags(t *testing.T) {
	got := ExistingTags(model.Collection{
		{ID: "1", Tags: []string{"b", "a"}},
		{ID: "2", Tags: []string{"b"}},
	})
	assert.DeepEqual(t, got, []string{"b", "a"})
}

func TestAnthropic_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Check(t, is.Equal(r.Header.Get("x-api-key"), "key"))
		body, _ := io.ReadAll(r.Body)
		var req apiRequest
		assert.Check(t, json.Unmarshal(body, &req))
		assert.Check(t, is.Equal(req.Model, haikuModel))
		assert.Check(t, req.OutputFormat != nil)

		w.Write([]byte(`{"content":[{"type":"text","text":"{\"tags\":[\"go\"],\"suggestedDescription\":\"\"}"}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	a := NewAnthropic("key", "")
	a.url = srv.URL

	text, err := a.Generate(context.Background(), "prompt")
	assert.NilError(t, err)
	r, err := decodeResult(text)
	assert.NilError(t, err)
	assert.DeepEqual(t, r.Tags, []string{"go"})
}

func TestAnthropic_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := NewAnthropic("key", "")
	a.url = srv.URL

	_, err := a.Generate(context.Background(), "prompt")
	assert.Assert(t, errors.Is(err, ErrAPIRequest))

	_, err = NewAnthropic("", "").Generate(context.Background(), "prompt")
	assert.Assert(t, errors.Is(err, ErrNoAPIKey))
}

func TestGemini_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Check(t, is.Contains(r.URL.Path, "gemini-2.5-flash:generateContent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"tags\":[\"ai\"]}"}]}}]}`))
	}))
	defer srv.Close()

	g, err := newGemini(context.Background(), "key", "", srv.URL)
	assert.NilError(t, err)

	text, err := g.Generate(context.Background(), "prompt")
	assert.NilError(t, err)
	assert.Equal(t, text, `{"tags":["ai"]}`)

	_, err = NewGemini(context.Background(), "", "")
	assert.Assert(t, errors.Is(err, ErrNoAPIKey))
}

func TestNewFromConfig_WithoutKey(t *testing.T) {
	cfg := config.Default(t.TempDir())
	s := NewFromConfig(context.Background(), cfg.AI, nil)
	assert.Assert(t, !s.Enabled())

	cfg.AI.Provider = "anthropic"
	cfg.AI.APIKey = "k"
	s = NewFromConfig(context.Background(), cfg.AI, nil)
	assert.Assert(t, s.Enabled())
	assert.Equal(t, s.provider.Name(), "anthropic")
}
