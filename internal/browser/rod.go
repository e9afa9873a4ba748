package browser

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

// RodSession: Session поверх go-rod (Chrome DevTools Protocol)
type RodSession struct {
	browser *rod.Browser
	page    *rod.Page
	lnch    *launcher.Launcher
}

// OpenRod запускает локальный Chrome и открывает одну вкладку
func OpenRod(ctx context.Context, opts Options) (*RodSession, error) {
	// Процесс браузера не привязан к ctx прогона: после отмены его ещё нужно
	// закрыть и снять скриншот. ctx ограничивает только вызовы на странице.
	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox)

	if opts.ChromePath != "" {
		l = l.Bin(opts.ChromePath)
	}
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		l = l.Set(flags.Flag("window-size"), strconv.Itoa(opts.WindowWidth)+","+strconv.Itoa(opts.WindowHeight))
	}
	// Десктопный UA, иначе блог может отдать мобильную версию
	if opts.UserAgent != "" {
		l = l.Set(flags.Flag("user-agent"), opts.UserAgent)
	}
	for _, f := range opts.ExtraFlags {
		l = l.Set(flags.Flag(f))
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	if err := ctx.Err(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	s := &RodSession{browser: b, lnch: l}

	page, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	s.page = page

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("browser: set user agent: %w", err)
		}
	}
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.WindowWidth,
			Height:            opts.WindowHeight,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("browser: set viewport: %w", err)
		}
	}

	return s, nil
}

func (s *RodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("browser: wait load %s: %w", url, err)
	}
	return nil
}

func (s *RodSession) URL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("browser: page info: %w", err)
	}
	return info.URL, nil
}

func (s *RodSession) Title(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("browser: page info: %w", err)
	}
	return info.Title, nil
}

func (s *RodSession) HTML(ctx context.Context) (string, error) {
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("browser: get html: %w", err)
	}
	return html, nil
}

func (s *RodSession) WaitFor(ctx context.Context, loc Locator) error {
	if _, err := s.element(ctx, loc); err != nil {
		return fmt.Errorf("browser: wait for %s: %w", loc, err)
	}
	return nil
}

func (s *RodSession) WaitURL(ctx context.Context, match func(string) bool) error {
	return pollURL(ctx, func() (string, error) { return s.URL(ctx) }, match)
}

func (s *RodSession) Activate(ctx context.Context, loc Locator, opts ActivateOptions) error {
	el, err := s.find(ctx, loc)
	if err != nil {
		return err
	}

	if opts.ScrollIntoView {
		if err := el.ScrollIntoView(); err != nil {
			return fmt.Errorf("browser: scroll into view %s: %w", loc, err)
		}
		if err := sleepCtx(ctx, opts.Settle); err != nil {
			return err
		}
	}

	if opts.Force {
		if _, err := el.Eval(`() => this.click()`); err != nil {
			return fmt.Errorf("browser: script click %s: %w", loc, err)
		}
		return nil
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("browser: click %s: %w", loc, err)
	}
	return nil
}

func (s *RodSession) Screenshot(ctx context.Context, path string) error {
	data, err := s.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("browser: screenshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("browser: write screenshot: %w", err)
	}
	return nil
}

// Close закрывает браузер и чистит временный профиль лаунчера
func (s *RodSession) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
	return err
}

// element ждёт появления элемента (rod повторяет поиск до отмены ctx)
func (s *RodSession) element(ctx context.Context, loc Locator) (*rod.Element, error) {
	p := s.page.Context(ctx)
	if loc.By == ByXPath {
		return p.ElementX(loc.Value)
	}
	return p.Element(loc.cssSelector())
}

// find ищет элемент без ожидания
func (s *RodSession) find(ctx context.Context, loc Locator) (*rod.Element, error) {
	p := s.page.Context(ctx)

	var (
		has bool
		el  *rod.Element
		err error
	)
	if loc.By == ByXPath {
		has, el, err = p.HasX(loc.Value)
	} else {
		has, el, err = p.Has(loc.cssSelector())
	}
	if err != nil {
		return nil, fmt.Errorf("browser: find %s: %w", loc, err)
	}
	if !has {
		return nil, fmt.Errorf("browser: %s: %w", loc, ErrNotFound)
	}
	return el, nil
}
