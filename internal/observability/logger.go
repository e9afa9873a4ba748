package observability

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger: тонкая обёртка над zerolog с вызовами вида Info(msg, "key", value, ...)
type Logger struct {
	zl   zerolog.Logger
	file io.Closer
}

// NewLogger пишет в консоль и, если задан logPath, в ротируемый JSON файл
func NewLogger(logPath, logLevel string) *Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || logLevel == "" {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339

	console := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	l := &Logger{}
	var out io.Writer = console

	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			// Логгера ещё нет, пишем через стандартный log
			log.Printf("Warning: failed to create log dir, file logging disabled: %v", err)
			logPath = ""
		}
	}

	if logPath != "" {
		rotator := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(console, rotator)
		l.file = rotator
	}

	l.zl = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return l
}

// NewNopLogger ничего не пишет (для тестов)
func NewNopLogger() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With возвращает дочерний логгер с постоянными полями
func (l *Logger) With(fields ...interface{}) *Logger {
	return &Logger{
		zl:   l.zl.With().Fields(fields).Logger(),
		file: l.file,
	}
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.zl.Info().Fields(fields).Msg(msg)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.zl.Error().Fields(fields).Msg(msg)
}

// Close закрывает файл логов
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
