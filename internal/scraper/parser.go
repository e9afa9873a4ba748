package scraper

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// Форматы заголовков дат Blogger (PC и мобильная версия)
	dateLayouts = []string{
		"Monday, January 2, 2006",
		"Monday, January 02, 2006",
		"Mon, January 2, 2006",
		"Monday, 2 January 2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2 January 2006",
		"2 Jan 2006",
		"2006-01-02",
		"1/2/2006",
	}

	spacesRe  = regexp.MustCompile(`\s+`)
	ordinalRe = regexp.MustCompile(`(\d{1,2})(st|nd|rd|th)\b`)
)

type DateParser struct {
	unknownDate string
}

func NewDateParser(unknownDate string) *DateParser {
	if unknownDate == "" {
		unknownDate = DefaultUnknownDate
	}
	return &DateParser{unknownDate: unknownDate}
}

// Parse парсит метку даты блога и возвращает time.Time (UTC, 00:00:00)
func (dp *DateParser) Parse(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(spacesRe.ReplaceAllString(dateStr, " "))
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	if dateStr == dp.unknownDate {
		return time.Time{}, fmt.Errorf("date label is unknown")
	}

	// "October 14th, 2025" → "October 14, 2025"
	dateStr = ordinalRe.ReplaceAllString(dateStr, "$1")

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, dateStr)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}
