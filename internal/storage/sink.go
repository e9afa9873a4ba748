package storage

import (
	"context"
	"fmt"

	"pyblog-news-parser/internal/checksum"
	"pyblog-news-parser/internal/observability"
	"pyblog-news-parser/internal/scraper"
)

// RecordSink зеркалирует набор записей в Repository
type RecordSink struct {
	repo       Repository
	dateParser *scraper.DateParser
	hasher     *checksum.Generator
	logger     *observability.Logger
}

func NewRecordSink(repo Repository, dp *scraper.DateParser, logger *observability.Logger) *RecordSink {
	return &RecordSink{
		repo:       repo,
		dateParser: dp,
		hasher:     checksum.NewGenerator(),
		logger:     logger,
	}
}

func (s *RecordSink) Name() string { return "mssql" }

func (s *RecordSink) Export(ctx context.Context, records []scraper.PostRecord) error {
	if err := s.repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	inserted, updated := 0, 0
	for i, rec := range records {
		row := s.toRow(i, rec)

		isNew, err := s.repo.UpsertPost(ctx, row)
		if err != nil {
			return fmt.Errorf("failed to upsert %q: %w", rec.Title, err)
		}
		if isNew {
			inserted++
		} else {
			updated++
		}
	}

	total, err := s.repo.CountPosts(ctx)
	if err != nil {
		s.logger.Warn("Failed to count stored posts", "error", err.Error())
	}

	s.logger.Info("Records stored",
		"sink", s.Name(),
		"inserted", inserted,
		"updated", updated,
		"total_in_table", total,
	)
	return nil
}

func (s *RecordSink) toRow(seq int, rec scraper.PostRecord) *PostRow {
	row := &PostRow{
		TitleKey:    s.hasher.TitleKey(rec.Title),
		Title:       rec.Title,
		DateLabel:   rec.Date,
		SequenceNum: seq,
		CheckSum:    s.hasher.GenerateRecordHash(rec.Title, rec.Date),
	}

	postDate, err := s.dateParser.Parse(rec.Date)
	if err != nil {
		s.logger.Debug("Date label not parsed",
			"title", rec.Title,
			"date_raw", rec.Date,
			"error", err.Error(),
		)
		return row
	}
	row.PostDate = &postDate
	return row
}
