package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultUnknownDate подставляется, если у группы нет заголовка с датой
const DefaultUnknownDate = "unknown date"

// TextCleaner нормализует текст узлов (NBSP, пробелы)
type TextCleaner interface {
	CleanText(s string) string
}

type Scraper struct {
	profile     Profile
	unknownDate string
	cleaner     TextCleaner
}

func NewScraper(profile Profile, unknownDate string, cleaner TextCleaner) *Scraper {
	if unknownDate == "" {
		unknownDate = DefaultUnknownDate
	}
	return &Scraper{
		profile:     profile,
		unknownDate: unknownDate,
		cleaner:     cleaner,
	}
}

func (s *Scraper) Profile() Profile {
	return s.profile
}

// ParseListing разбирает страницу архива и возвращает записи в порядке появления.
// Записи без заголовка пропускаются; дубликаты здесь не отсеиваются.
func (s *Scraper) ParseListing(html string) ([]PostRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var records []PostRecord

	doc.Find(s.profile.DateGroups).Each(func(_ int, group *goquery.Selection) {
		date := s.text(group.Find(s.profile.DateLabel).First())
		if date == "" {
			date = s.unknownDate
		}

		group.Find(s.profile.Entries).Each(func(_ int, entry *goquery.Selection) {
			titleSel := entry.Find(s.profile.Title).First()
			if titleSel.Length() == 0 {
				return
			}
			title := s.text(titleSel)
			if title == "" {
				return // Пропуск если нет title
			}
			records = append(records, PostRecord{Date: date, Title: title})
		})
	})

	return records, nil
}

func (s *Scraper) text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	text := sel.Text()
	if s.cleaner != nil {
		return s.cleaner.CleanText(text)
	}
	return strings.TrimSpace(text)
}
