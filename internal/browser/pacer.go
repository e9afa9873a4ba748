package browser

import (
	"context"
	"sync"
	"time"
)

// Pacer выдерживает минимальный интервал между переходами страниц
type Pacer struct {
	interval time.Duration
	last     time.Time
	mu       sync.Mutex
	now      func() time.Time
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{
		interval: interval,
		now:      time.Now,
	}
}

// Mark фиксирует момент перехода
func (p *Pacer) Mark() {
	p.mu.Lock()
	p.last = p.now()
	p.mu.Unlock()
}

// Wait блокирует до истечения интервала с последнего Mark
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	if p.last.IsZero() || p.interval <= 0 {
		p.mu.Unlock()
		return nil
	}
	waitTime := p.interval - p.now().Sub(p.last)
	p.mu.Unlock()

	if waitTime <= 0 {
		return nil
	}

	select {
	case <-time.After(waitTime):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
