package browser

import (
	"context"
	"fmt"
	"time"
)

const pollInterval = 250 * time.Millisecond

// pollURL опрашивает текущий URL, пока match не вернёт true или ctx не истечёт
func pollURL(ctx context.Context, current func() (string, error), match func(string) bool) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var last string
	for {
		u, err := current()
		if err == nil {
			last = u
			if match(u) {
				return nil
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return fmt.Errorf("url condition not met (last url %q): %w", last, ctx.Err())
		}
	}
}

// sleepCtx: time.Sleep с учётом отмены
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// remaining возвращает оставшееся до дедлайна время или fallback
func remaining(ctx context.Context, fallback time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return fallback
	}
	d := time.Until(deadline)
	if d < 0 {
		return 0
	}
	return d
}
