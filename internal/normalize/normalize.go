package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"pyblog-news-parser/internal/config"
)

var spacesRe = regexp.MustCompile(`\s+`)

type Normalizer struct {
	cfg *config.Config
}

func NewNormalizer(cfg *config.Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// CleanText приводит текст узла (заголовок, дата) к одной строке
func (n *Normalizer) CleanText(text string) string {
	if n.cfg.Normalize.TrimNBSP {
		// Заменяем NBSP (\u00A0) на обычный пробел
		text = strings.ReplaceAll(text, "\u00A0", " ")
	}

	if n.cfg.Normalize.CollapseSpaces {
		text = spacesRe.ReplaceAllString(text, " ")
	}

	return strings.TrimSpace(text)
}

// TruncatePreview обрезает текст до maxPreviewChars символов (для логов)
func (n *Normalizer) TruncatePreview(text string) string {
	limit := n.cfg.Normalize.MaxPreviewChars
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	truncated := string(runes[:limit-1])
	// Находим последний пробел перед лимитом
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		return truncated[:lastSpace] + "…"
	}

	return truncated + "…"
}
