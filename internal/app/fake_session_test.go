package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"pyblog-news-parser/internal/browser"
	"pyblog-news-parser/internal/config"
)

// fakeSession эмулирует путь python.org → /blogs/ → блог и архив из нескольких страниц.
// Пустая строка в pages означает страницу без контейнера постов.
type fakeSession struct {
	mu sync.Mutex

	url       string
	clicks    map[string]string // локатор → URL после клика
	container string
	next      browser.Locator
	nextErr   error
	pages     []string
	page      int
	missing   map[string]bool

	htmlCalls   int
	closeCount  int
	screenshots []string
	activations []string
}

func newFakeSession(cfg *config.Config, landing string, next browser.Locator, pages ...string) *fakeSession {
	return &fakeSession{
		clicks: map[string]string{
			browser.XPath(cfg.Navigation.NewsLinkXPath).String(): "https://www.python.org/blogs/",
			browser.XPath(cfg.Navigation.MoreLinkXPath).String(): landing,
		},
		container: ".blog-posts",
		next:      next,
		pages:     pages,
		missing:   map[string]bool{},
	}
}

func (f *fakeSession) opener() browser.Opener {
	return func(ctx context.Context) (browser.Session, error) {
		return f, nil
	}
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
	return nil
}

func (f *fakeSession) URL(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, nil
}

func (f *fakeSession) Title(ctx context.Context) (string, error) {
	return "Welcome to Python.org", nil
}

func (f *fakeSession) HTML(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.htmlCalls++
	return f.currentPage(), nil
}

func (f *fakeSession) WaitFor(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if loc.By == browser.ByCSS && loc.Value == f.container {
		if strings.Contains(f.currentPage(), "blog-posts") {
			return nil
		}
		return fmt.Errorf("wait for %s: %w", loc, context.DeadlineExceeded)
	}
	if _, ok := f.clicks[loc.String()]; ok && !f.missing[loc.String()] {
		return nil
	}
	return fmt.Errorf("wait for %s: %w", loc, context.DeadlineExceeded)
}

func (f *fakeSession) WaitURL(ctx context.Context, match func(string) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if match(f.url) {
		return nil
	}
	return fmt.Errorf("url stayed at %s: %w", f.url, context.DeadlineExceeded)
}

func (f *fakeSession) Activate(ctx context.Context, loc browser.Locator, opts browser.ActivateOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activations = append(f.activations, loc.String())

	if target, ok := f.clicks[loc.String()]; ok {
		f.url = target
		return nil
	}
	if loc == f.next {
		if f.nextErr != nil {
			return f.nextErr
		}
		if f.page+1 >= len(f.pages) {
			return fmt.Errorf("%s: %w", loc, browser.ErrNotFound)
		}
		f.page++
		return nil
	}
	return fmt.Errorf("%s: %w", loc, browser.ErrNotFound)
}

func (f *fakeSession) Screenshot(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screenshots = append(f.screenshots, path)
	return os.WriteFile(path, []byte("png"), 0o644)
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCount++
	return nil
}

func (f *fakeSession) currentPage() string {
	if f.page < len(f.pages) {
		return f.pages[f.page]
	}
	return ""
}

type dateGroup struct {
	date   string
	titles []string
}

func group(date string, titles ...string) dateGroup {
	return dateGroup{date: date, titles: titles}
}

// desktopListing собирает страницу архива в десктопной вёрстке Blogger
func desktopListing(groups ...dateGroup) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="blog-posts hfeed">`)
	for _, g := range groups {
		b.WriteString(`<div class="date-outer">`)
		if g.date != "" {
			fmt.Fprintf(&b, `<h2 class="date-header"><span>%s</span></h2>`, g.date)
		}
		b.WriteString(`<div class="date-posts">`)
		for _, t := range g.titles {
			fmt.Fprintf(&b, `<div class="post-outer"><h3 class="post-title entry-title"><a href="#">%s</a></h3></div>`, t)
		}
		b.WriteString(`</div></div>`)
	}
	b.WriteString(`</div><a class="blog-pager-older-link older-posts" href="#">Older Posts</a></body></html>`)
	return b.String()
}

// mobileListing: то же для мобильной вёрстки (?m=1)
func mobileListing(groups ...dateGroup) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="blog-posts">`)
	for _, g := range groups {
		b.WriteString(`<div class="date-posts">`)
		if g.date != "" {
			fmt.Fprintf(&b, `<div class="date-header"><span>%s</span></div>`, g.date)
		}
		for _, t := range g.titles {
			fmt.Fprintf(&b, `<div class="mobile-post-outer"><a href="#"><h3 class="post-title">%s</h3></a></div>`, t)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div><a id="blog-pager-older-link" href="#">More posts</a></body></html>`)
	return b.String()
}
