package app

import (
	"context"
	"errors"
	"fmt"

	"pyblog-news-parser/internal/browser"
	"pyblog-news-parser/internal/config"
	"pyblog-news-parser/internal/normalize"
	"pyblog-news-parser/internal/scraper"
)

type Orchestrator struct {
	cfg        *config.Config
	pacer      *browser.Pacer
	normalizer *normalize.Normalizer
}

func NewOrchestrator(
	cfg *config.Config,
	pacer *browser.Pacer,
	n *normalize.Normalizer,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		pacer:      pacer,
		normalizer: n,
	}
}

type PaginationStats struct {
	TotalPages    int
	TotalRecords  int
	StoppedReason string
}

// Paginate обходит архив блога: ждёт список постов, разбирает, дедуплицирует,
// жмёт "Older Posts". Останов по лимиту страниц, по странице без новых записей
// (кроме первой) или по отсутствию кнопки: это штатное завершение, не ошибка.
func (o *Orchestrator) Paginate(ctx context.Context, env *RunEnv, scr *scraper.Scraper) (*scraper.RecordSet, *PaginationStats, error) {
	profile := scr.Profile()
	maxPages := o.cfg.Pagination.MaxPages
	logger := env.Logger

	logger.Info("Starting pagination",
		"max_pages", maxPages,
		"container", profile.ListContainer,
		"next_page", profile.NextPage.String(),
	)

	records := scraper.NewRecordSet()
	stats := &PaginationStats{}

	for pageIdx := 0; pageIdx < maxPages; pageIdx++ {
		pageNum := pageIdx + 1
		pageLog := logger.With("page", pageNum)
		pageLog.Info("Processing page")

		// Даём странице загрузиться после клика
		if err := o.pacer.Wait(ctx); err != nil {
			stats.StoppedReason = fmt.Sprintf("cancelled at page %d", pageNum)
			return records, stats, err
		}

		html, err := o.loadListing(ctx, env, profile)
		if err != nil {
			stats.StoppedReason = fmt.Sprintf("load error at page %d: %v", pageNum, err)
			return records, stats, fmt.Errorf("page %d: %w", pageNum, err)
		}

		found, err := scr.ParseListing(html)
		if err != nil {
			stats.StoppedReason = fmt.Sprintf("parse error at page %d: %v", pageNum, err)
			return records, stats, fmt.Errorf("page %d: %w", pageNum, err)
		}

		newOnPage := 0
		for _, rec := range found {
			if !records.Add(rec) {
				continue
			}
			newOnPage++
			pageLog.Info("Found post",
				"date", rec.Date,
				"title", o.normalizer.TruncatePreview(rec.Title),
			)
		}

		stats.TotalPages++
		stats.TotalRecords = records.Len()

		pageLog.Info("Page analysis",
			"entries", len(found),
			"new_records", newOnPage,
			"total_records", records.Len(),
		)

		// Ни одной новой записи: считаем, что дошли до конца архива
		if newOnPage == 0 && pageIdx > 0 {
			stats.StoppedReason = fmt.Sprintf("no new records on page %d", pageNum)
			pageLog.Info("Stopping: no new records")
			break
		}

		if pageIdx == maxPages-1 {
			stats.StoppedReason = fmt.Sprintf("reached max pages (%d)", maxPages)
			break
		}

		if err := o.nextPage(ctx, env, profile); err != nil {
			stats.StoppedReason = fmt.Sprintf("no next page after page %d", pageNum)
			if errors.Is(err, browser.ErrNotFound) {
				pageLog.Info("Older posts control not found")
			} else {
				pageLog.Warn("Older posts control could not be activated",
					"error", err.Error(),
				)
			}
			break
		}

		logger.Info("Moving to next page", "page", pageNum+1)
	}

	logger.Info("Pagination completed",
		"total_pages", stats.TotalPages,
		"total_records", stats.TotalRecords,
		"reason", stats.StoppedReason,
	)

	return records, stats, nil
}

// loadListing ждёт контейнер постов (таймаут фатален) и возвращает разметку
func (o *Orchestrator) loadListing(ctx context.Context, env *RunEnv, profile scraper.Profile) (string, error) {
	waitCtx, cancel := env.bounded(ctx)
	defer cancel()

	if err := env.Session.WaitFor(waitCtx, browser.CSS(profile.ListContainer)); err != nil {
		return "", fmt.Errorf("wait for post list: %w", err)
	}

	html, err := env.Session.HTML(waitCtx)
	if err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	return html, nil
}

func (o *Orchestrator) nextPage(ctx context.Context, env *RunEnv, profile scraper.Profile) error {
	actCtx, cancel := env.bounded(ctx)
	defer cancel()

	if err := env.Session.Activate(actCtx, profile.NextPage, browser.ActivateOptions{}); err != nil {
		return err
	}
	o.pacer.Mark()
	return nil
}
