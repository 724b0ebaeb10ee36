package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func templateIDs(templates []model.Template) []string {
	ids := make([]string, 0, len(templates))
	for _, tpl := range templates {
		ids = append(ids, tpl.ID)
	}
	return ids
}

func TestLoadEmbeddedBuiltins(t *testing.T) {
	c := New(WithLogger(quietLogger()))
	templates := c.Load(context.Background())

	want := []string{"default", "code-review", "bug-report"}
	if diff := cmp.Diff(want, templateIDs(templates)); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if templates[0].Name != "Default Template" {
		t.Fatalf("unexpected default name %q", templates[0].Name)
	}
	if strings.HasPrefix(templates[0].Content, "---") {
		t.Fatalf("header leaked into content: %q", templates[0].Content)
	}
	if c.Degraded() != nil {
		t.Fatalf("unexpected degraded state: %v", c.Degraded())
	}
}

func TestLoadStopsAtFirstFailureAndFallsBack(t *testing.T) {
	loader := LoaderFunc(func(_ context.Context, src Source) ([]byte, error) {
		switch src.Location() {
		case "a.md":
			return []byte("---\nname: A\n---\n{{x}}"), nil
		case "b.md":
			return nil, errors.New("network down")
		default:
			return []byte("---\nname: C\n---\n{{y}}"), nil
		}
	})

	c := New(
		WithLogger(quietLogger()),
		WithLoader(loader),
		WithResolver(func(name string) Source { return SourceFromFS(name) }),
		WithManifest("a.md", "b.md", "c.md"),
	)
	templates := c.Load(context.Background())

	want := []string{"a", DefaultTemplateID}
	if diff := cmp.Diff(want, templateIDs(templates)); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultTemplate(), templates[1]); diff != "" {
		t.Fatalf("fallback mismatch (-want +got):\n%s", diff)
	}
	if c.Degraded() == nil {
		t.Fatalf("expected degraded error")
	}
}

func TestLoadFallsBackOnMissingName(t *testing.T) {
	loader := LoaderFunc(func(context.Context, Source) ([]byte, error) {
		return []byte("---\ntitle: nope\n---\nbody"), nil
	})
	c := New(WithLogger(quietLogger()), WithLoader(loader), WithManifest("broken.md"))

	templates := c.Load(context.Background())
	if diff := cmp.Diff([]string{DefaultTemplateID}, templateIDs(templates)); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDoesNotDuplicateDefault(t *testing.T) {
	loader := LoaderFunc(func(_ context.Context, src Source) ([]byte, error) {
		if strings.HasSuffix(src.Location(), "default.md") {
			return []byte("---\nname: Default\n---\n{{x}}"), nil
		}
		return nil, errors.New("boom")
	})
	c := New(WithLogger(quietLogger()), WithLoader(loader))

	templates := c.Load(context.Background())
	if diff := cmp.Diff([]string{"default"}, templateIDs(templates)); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if templates[0].Name != "Default" {
		t.Fatalf("expected the loaded default to win, got %q", templates[0].Name)
	}
}

func TestCustomTemplatesLifecycle(t *testing.T) {
	ctx := context.Background()
	prefs := store.NewPreferences(store.NewMemory())
	seq := 0
	c := New(
		WithLogger(quietLogger()),
		WithPreferences(prefs),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("%04d", seq)
		}),
	)

	tpl, err := c.AddCustom(ctx, "  <b>My</b> Template ", "  Hello {{who}}  ")
	if err != nil {
		t.Fatalf("add custom: %v", err)
	}
	want := model.Template{ID: "custom-0001", Name: "My Template", Content: "Hello {{who}}", Custom: true}
	if diff := cmp.Diff(want, tpl); diff != "" {
		t.Fatalf("template mismatch (-want +got):\n%s", diff)
	}

	all, err := c.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"default", "code-review", "bug-report", "custom-0001"}, templateIDs(all)); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	found, err := c.Find(ctx, "custom-0001")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Name != "My Template" {
		t.Fatalf("unexpected template %+v", found)
	}

	if err := c.DeleteCustom(ctx, "custom-0001"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Find(ctx, "custom-0001"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := c.DeleteCustom(ctx, "custom-0001"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected not found deleting twice, got %v", err)
	}
}

func TestAddCustomValidation(t *testing.T) {
	ctx := context.Background()
	c := New(WithLogger(quietLogger()))

	if _, err := c.AddCustom(ctx, "   ", "content"); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := c.AddCustom(ctx, "<script>alert(1)</script>", "content"); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected markup-only name to be rejected, got %v", err)
	}
	if _, err := c.AddCustom(ctx, "&lt;script&gt;alert(1)&lt;/script&gt;", "{{x}}"); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected entity-encoded markup to be rejected, got %v", err)
	}
	if _, err := c.AddCustom(ctx, "Name", "\n\t "); !errors.Is(err, ErrContentRequired) {
		t.Fatalf("expected ErrContentRequired, got %v", err)
	}
	if _, err := c.AddCustom(ctx, "Name", "https://gist.github.com/u/abc"); !errors.Is(err, ErrGistUnavailable) {
		t.Fatalf("expected ErrGistUnavailable, got %v", err)
	}
}

func TestAddCustomStripsEncodedMarkup(t *testing.T) {
	ctx := context.Background()
	c := New(WithLogger(quietLogger()))

	cases := map[string]string{
		"&lt;b&gt;Release&lt;/b&gt; notes":          "Release notes",
		"&amp;lt;i&amp;gt;Nested&amp;lt;/i&amp;gt;": "Nested",
		"R&amp;D plan":                              "R&D plan",
		"Q&A":                                       "Q&A",
	}
	for input, want := range cases {
		tpl, err := c.AddCustom(ctx, input, "{{x}}")
		if err != nil {
			t.Fatalf("add %q: %v", input, err)
		}
		if tpl.Name != want {
			t.Fatalf("name for %q: want %q, got %q", input, want, tpl.Name)
		}
	}
}

type stubFetcher struct {
	content string
	err     error
	url     string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	s.url = url
	return s.content, s.err
}

func TestAddCustomImportsGist(t *testing.T) {
	ctx := context.Background()
	fetcher := &stubFetcher{content: "Review {{field \"text array\" \"Files\"}}"}
	c := New(WithLogger(quietLogger()), WithGistFetcher(fetcher))

	tpl, err := c.AddCustom(ctx, "From Gist", "https://gist.github.com/octocat/abc123")
	if err != nil {
		t.Fatalf("add custom: %v", err)
	}
	if tpl.Content != fetcher.content {
		t.Fatalf("expected gist content, got %q", tpl.Content)
	}
	if fetcher.url != "https://gist.github.com/octocat/abc123" {
		t.Fatalf("unexpected fetch url %q", fetcher.url)
	}

	failing := New(WithLogger(quietLogger()), WithGistFetcher(&stubFetcher{err: errors.New("offline")}))
	if _, err := failing.AddCustom(ctx, "x", "https://gist.github.com/octocat/abc123"); err == nil {
		t.Fatalf("expected gist error")
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	c := New(WithLogger(quietLogger()))
	got, err := c.Search(context.Background(), "REVIEW")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if diff := cmp.Diff([]string{"code-review"}, templateIDs(got)); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}

	all, _ := c.Search(context.Background(), "")
	if len(all) != 3 {
		t.Fatalf("expected empty query to match all, got %d", len(all))
	}
}

func TestWatchRequiresDirectory(t *testing.T) {
	if err := New().Watch(context.Background()); !errors.Is(err, ErrWatchUnsupported) {
		t.Fatalf("expected ErrWatchUnsupported, got %v", err)
	}
}

func TestWatchReloadsDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("one.md", "---\nname: One\n---\n{{a}}")

	fileLoader := LoaderFunc(func(_ context.Context, src Source) ([]byte, error) {
		return os.ReadFile(src.Location())
	})
	reloaded := make(chan []model.Template, 4)
	c := New(
		WithLogger(quietLogger()),
		WithLoader(fileLoader),
		WithDirectory(dir),
		WithManifest("one.md"),
		WithReloadHook(func(templates []model.Template) {
			select {
			case reloaded <- templates:
			default:
			}
		}),
	)
	if got := c.Load(context.Background()); got[0].Name != "One" {
		t.Fatalf("unexpected initial load %+v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Watch(ctx) }()
	time.Sleep(100 * time.Millisecond)

	write("one.md", "---\nname: One Updated\n---\n{{a}}")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case templates := <-reloaded:
			if len(templates) == 1 && templates[0].Name == "One Updated" {
				return
			}
		case <-deadline:
			t.Fatalf("reload not observed")
		}
	}
}
