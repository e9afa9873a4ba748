package app

import (
	"context"
	"fmt"
	"strings"

	"pyblog-news-parser/internal/browser"
	"pyblog-news-parser/internal/config"
)

type navStep struct {
	name string
	run  func(ctx context.Context, env *RunEnv) error
}

// Navigator проводит сессию по цепочке python.org → News → /blogs/ → more → блог
type Navigator struct {
	cfg   *config.Config
	steps []navStep
}

func NewNavigator(cfg *config.Config) *Navigator {
	n := &Navigator{cfg: cfg}
	n.steps = []navStep{
		{name: "open root", run: n.openRoot},
		{name: "news link", run: n.clickNewsLink},
		{name: "news index", run: n.waitNewsIndex},
		{name: "more link", run: n.clickMoreLink},
		{name: "blog landing", run: n.waitBlog},
	}
	return n
}

// Run выполняет шаги строго по порядку и возвращает URL блога.
// Любой таймаут фатален, повторов нет.
func (n *Navigator) Run(ctx context.Context, env *RunEnv) (string, error) {
	for _, step := range n.steps {
		stepCtx, cancel := env.bounded(ctx)
		err := step.run(stepCtx, env)
		cancel()
		if err != nil {
			return "", fmt.Errorf("navigation step %q: %w", step.name, err)
		}
	}

	landing, err := env.Session.URL(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read landing url: %w", err)
	}

	env.Logger.Info("Blog reached", "url", landing)
	return landing, nil
}

func (n *Navigator) openRoot(ctx context.Context, env *RunEnv) error {
	if err := env.Session.Navigate(ctx, n.cfg.Navigation.RootURL); err != nil {
		return err
	}

	title, err := env.Session.Title(ctx)
	if err != nil {
		env.Logger.Warn("Failed to read page title", "error", err.Error())
	}
	env.Logger.Info("Root page opened", "url", n.cfg.Navigation.RootURL, "title", title)
	return nil
}

func (n *Navigator) clickNewsLink(ctx context.Context, env *RunEnv) error {
	loc := browser.XPath(n.cfg.Navigation.NewsLinkXPath)

	env.Logger.Info("Clicking news link", "locator", loc.String())
	if err := env.Session.WaitFor(ctx, loc); err != nil {
		return err
	}
	// Клик скриптом, ссылку может перекрывать оверлей
	return env.Session.Activate(ctx, loc, browser.ActivateOptions{Force: true})
}

func (n *Navigator) waitNewsIndex(ctx context.Context, env *RunEnv) error {
	fragment := n.cfg.Navigation.NewsPathFragment
	if err := env.Session.WaitURL(ctx, func(u string) bool { return strings.Contains(u, fragment) }); err != nil {
		return err
	}

	current, _ := env.Session.URL(ctx)
	env.Logger.Info("News index opened", "url", current)
	return nil
}

func (n *Navigator) clickMoreLink(ctx context.Context, env *RunEnv) error {
	loc := browser.XPath(n.cfg.Navigation.MoreLinkXPath)

	env.Logger.Info("Clicking more link", "locator", loc.String())
	if err := env.Session.WaitFor(ctx, loc); err != nil {
		return err
	}
	return env.Session.Activate(ctx, loc, browser.ActivateOptions{
		ScrollIntoView: true,
		Settle:         n.cfg.GetScrollSettle(),
	})
}

func (n *Navigator) waitBlog(ctx context.Context, env *RunEnv) error {
	return env.Session.WaitURL(ctx, func(u string) bool {
		return matchesAnyDomain(u, n.cfg.Navigation.BlogDomains)
	})
}

func matchesAnyDomain(u string, domains []string) bool {
	for _, d := range domains {
		if d != "" && strings.Contains(u, d) {
			return true
		}
	}
	return false
}
