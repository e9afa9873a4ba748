package app

import (
	"context"
	"time"

	"pyblog-news-parser/internal/browser"
	"pyblog-news-parser/internal/observability"
)

// RunEnv: явное окружение прогона, передаётся в каждый шаг
type RunEnv struct {
	Session browser.Session
	Logger  *observability.Logger
	Timeout time.Duration
}

// bounded ограничивает одно ожидание таймаутом прогона
func (e *RunEnv) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.Timeout)
}
