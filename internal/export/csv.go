package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"pyblog-news-parser/internal/scraper"
)

// utf8BOM: маркер порядка байт, чтобы Excel открыл файл как UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{"post date", "title"}

// Sink: получатель итогового набора записей
type Sink interface {
	Name() string
	Export(ctx context.Context, records []scraper.PostRecord) error
}

// CSVSink пишет записи в CSV с BOM
type CSVSink struct {
	path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Path() string { return s.path }

func (s *CSVSink) Export(ctx context.Context, records []scraper.PostRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteCSV(s.path, records)
}

// WriteCSV записывает файл целиком: сначала во временный, затем rename
func WriteCSV(path string, records []scraper.PostRecord) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	buf := bufio.NewWriter(tmp)
	if _, err := buf.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	w := csv.NewWriter(buf)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write([]string{rec.Date, rec.Title}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move csv into place: %w", err)
	}
	return nil
}
