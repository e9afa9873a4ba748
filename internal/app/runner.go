package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pyblog-news-parser/internal/browser"
	"pyblog-news-parser/internal/config"
	"pyblog-news-parser/internal/export"
	"pyblog-news-parser/internal/normalize"
	"pyblog-news-parser/internal/observability"
	"pyblog-news-parser/internal/scraper"
)

// failureCaptureTimeout: на скриншот после ошибки, когда ctx прогона уже может быть отменён
const failureCaptureTimeout = 10 * time.Second

type RunResult struct {
	LandingURL string
	Variant    scraper.Variant
	Records    []scraper.PostRecord
	Stats      *PaginationStats
	Artifacts  []string
}

// Runner владеет сессией браузера на весь прогон
type Runner struct {
	cfg          *config.Config
	logger       *observability.Logger
	open         browser.Opener
	profiles     scraper.Profiles
	normalizer   *normalize.Normalizer
	navigator    *Navigator
	orchestrator *Orchestrator
	sinks        []export.Sink
	transfer     *export.Transfer
}

func NewRunner(
	cfg *config.Config,
	logger *observability.Logger,
	open browser.Opener,
	profiles scraper.Profiles,
	sinks []export.Sink,
	transfer *export.Transfer,
) *Runner {
	n := normalize.NewNormalizer(cfg)
	return &Runner{
		cfg:          cfg,
		logger:       logger,
		open:         open,
		profiles:     profiles,
		normalizer:   n,
		navigator:    NewNavigator(cfg),
		orchestrator: NewOrchestrator(cfg, browser.NewPacer(cfg.GetPageSettle()), n),
		sinks:        sinks,
		transfer:     transfer,
	}
}

// Run: открыть сессию → навигация → вариант → пагинация → экспорт.
// Сессия закрывается ровно один раз на любом пути; при ошибке снимается скриншот.
func (r *Runner) Run(ctx context.Context) (res *RunResult, err error) {
	sess, err := r.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser session: %w", err)
	}
	r.logger.Info("Browser session opened", "engine", r.cfg.Browser.Engine)

	release := r.releaseOnce(sess)
	defer release()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("unexpected panic: %v", p)
		}
		if err != nil {
			r.captureFailure(sess)
		}
	}()

	env := &RunEnv{
		Session: sess,
		Logger:  r.logger,
		Timeout: r.cfg.GetWaitTimeout(),
	}

	res = &RunResult{}

	res.LandingURL, err = r.navigator.Run(ctx, env)
	if err != nil {
		return res, err
	}

	res.Variant = scraper.DetectVariant(res.LandingURL, r.cfg.Navigation.MobileDomain)
	r.logger.Info("Site variant detected", "variant", res.Variant.String(), "url", res.LandingURL)

	scr := scraper.NewScraper(r.profiles.For(res.Variant), r.cfg.Output.UnknownDate, r.normalizer)

	records, stats, err := r.orchestrator.Paginate(ctx, env, scr)
	res.Stats = stats
	if err != nil {
		return res, err
	}
	res.Records = records.Records()

	r.logger.Info("Collection finished", "total_records", len(res.Records))

	if len(res.Records) == 0 {
		r.logger.Warn("No records collected, output not written")
		return res, nil
	}

	if err := r.export(ctx, res); err != nil {
		return res, err
	}
	return res, nil
}

func (r *Runner) export(ctx context.Context, res *RunResult) error {
	for _, sink := range r.sinks {
		if err := sink.Export(ctx, res.Records); err != nil {
			return fmt.Errorf("export to %s: %w", sink.Name(), err)
		}
		r.logger.Info("Records exported", "sink", sink.Name(), "count", len(res.Records))

		if csvSink, ok := sink.(*export.CSVSink); ok {
			res.Artifacts = append(res.Artifacts, csvSink.Path())
		}
	}

	if r.transfer.Enabled() && len(res.Artifacts) > 0 {
		copied, err := r.transfer.Push(res.Artifacts...)
		if err != nil {
			r.logger.Warn("Transfer failed", "error", err.Error())
			return nil
		}
		r.logger.Info("Artifacts transferred", "files", copied)
	}
	return nil
}

// captureFailure снимает скриншот текущего состояния; его ошибка только логируется
func (r *Runner) captureFailure(sess browser.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), failureCaptureTimeout)
	defer cancel()

	path := r.cfg.Output.ScreenshotPath
	if err := sess.Screenshot(ctx, path); err != nil {
		r.logger.Error("Failed to capture error screenshot", "path", path, "error", err.Error())
		return
	}
	r.logger.Info("Error screenshot saved", "path", path)

	if r.transfer.Enabled() {
		if _, err := r.transfer.Push(path); err != nil {
			r.logger.Warn("Transfer of screenshot failed", "error", err.Error())
		}
	}
}

func (r *Runner) releaseOnce(sess browser.Session) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := sess.Close(); err != nil {
				r.logger.Warn("Failed to close browser session", "error", err.Error())
				return
			}
			r.logger.Info("Browser session closed")
		})
	}
}
