package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// defaultPlaywrightTimeout используется, если у ctx нет дедлайна
const defaultPlaywrightTimeout = 30 * time.Second

// PlaywrightSession: Session поверх playwright-go (Chromium)
type PlaywrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

// OpenPlaywright запускает драйвер playwright и Chromium с одной страницей
func OpenPlaywright(ctx context.Context, opts Options) (*PlaywrightSession, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("browser: start playwright: %w", err)
	}
	s := &PlaywrightSession{pw: pw}

	args := make([]string, 0, len(opts.ExtraFlags)+1)
	if opts.NoSandbox {
		args = append(args, "--no-sandbox")
	}
	for _, f := range opts.ExtraFlags {
		args = append(args, "--"+f)
	}

	launchOptions := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     args,
		Timeout:  msFloat(remaining(ctx, defaultPlaywrightTimeout)),
	}
	if opts.ChromePath != "" {
		launchOptions.ExecutablePath = playwright.String(opts.ChromePath)
	}

	b, err := pw.Chromium.Launch(launchOptions)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("browser: launch chromium: %w", err)
	}
	s.browser = b

	ctxOptions := playwright.BrowserNewContextOptions{}
	if opts.UserAgent != "" {
		ctxOptions.UserAgent = playwright.String(opts.UserAgent)
	}
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		ctxOptions.Viewport = &playwright.Size{Width: opts.WindowWidth, Height: opts.WindowHeight}
	}

	bctx, err := b.NewContext(ctxOptions)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("browser: new context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	s.page = page

	return s, nil
}

func (s *PlaywrightSession) Navigate(ctx context.Context, url string) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   msFloat(remaining(ctx, defaultPlaywrightTimeout)),
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, wrapTimeout(ctx, err))
	}
	return nil
}

func (s *PlaywrightSession) URL(ctx context.Context) (string, error) {
	return s.page.URL(), nil
}

func (s *PlaywrightSession) Title(ctx context.Context) (string, error) {
	title, err := s.page.Title()
	if err != nil {
		return "", fmt.Errorf("browser: page title: %w", err)
	}
	return title, nil
}

func (s *PlaywrightSession) HTML(ctx context.Context) (string, error) {
	html, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("browser: get html: %w", err)
	}
	return html, nil
}

func (s *PlaywrightSession) WaitFor(ctx context.Context, loc Locator) error {
	err := s.locator(loc).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: msFloat(remaining(ctx, defaultPlaywrightTimeout)),
	})
	if err != nil {
		return fmt.Errorf("browser: wait for %s: %w", loc, wrapTimeout(ctx, err))
	}
	return nil
}

func (s *PlaywrightSession) WaitURL(ctx context.Context, match func(string) bool) error {
	err := s.page.WaitForURL(match, playwright.PageWaitForURLOptions{
		Timeout:   msFloat(remaining(ctx, defaultPlaywrightTimeout)),
		WaitUntil: playwright.WaitUntilStateCommit,
	})
	if err != nil {
		return fmt.Errorf("url condition not met (last url %q): %w", s.page.URL(), wrapTimeout(ctx, err))
	}
	return nil
}

func (s *PlaywrightSession) Activate(ctx context.Context, loc Locator, opts ActivateOptions) error {
	l := s.locator(loc)

	count, err := l.Count()
	if err != nil {
		return fmt.Errorf("browser: find %s: %w", loc, err)
	}
	if count == 0 {
		return fmt.Errorf("browser: %s: %w", loc, ErrNotFound)
	}

	timeout := msFloat(remaining(ctx, defaultPlaywrightTimeout))

	if opts.ScrollIntoView {
		if err := l.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{Timeout: timeout}); err != nil {
			return fmt.Errorf("browser: scroll into view %s: %w", loc, err)
		}
		if err := sleepCtx(ctx, opts.Settle); err != nil {
			return err
		}
	}

	if opts.Force {
		if _, err := l.Evaluate("el => el.click()", nil); err != nil {
			return fmt.Errorf("browser: script click %s: %w", loc, err)
		}
		return nil
	}

	if err := l.Click(playwright.LocatorClickOptions{Timeout: timeout}); err != nil {
		return fmt.Errorf("browser: click %s: %w", loc, wrapTimeout(ctx, err))
	}
	return nil
}

func (s *PlaywrightSession) Screenshot(ctx context.Context, path string) error {
	if _, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	}); err != nil {
		return fmt.Errorf("browser: screenshot: %w", err)
	}
	return nil
}

func (s *PlaywrightSession) Close() error {
	var errs []error
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
		s.browser = nil
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
		s.pw = nil
	}
	return errors.Join(errs...)
}

func (s *PlaywrightSession) locator(loc Locator) playwright.Locator {
	if loc.By == ByXPath {
		return s.page.Locator("xpath=" + loc.Value).First()
	}
	return s.page.Locator("css=" + loc.cssSelector()).First()
}

// wrapTimeout подменяет таймаут playwright на context.DeadlineExceeded,
// чтобы вызывающий код одинаково обрабатывал оба движка
func wrapTimeout(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%v: %w", err, ctxErr)
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%v: %w", err, context.DeadlineExceeded)
	}
	return err
}

func msFloat(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
