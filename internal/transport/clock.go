// Package transport содержит периодический такт, который двигает состояние воспроизведения
package transport

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultPeriod номинальный период такта
	DefaultPeriod = 5 * time.Millisecond
	// HistorySize количество интервалов, по которым считается средний период
	HistorySize = 100
)

// Clock периодический такт с учетом фактического среднего периода
type Clock struct {
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	history []time.Time
}

// NewClock создает такт с заданным номинальным периодом
func NewClock(period time.Duration) *Clock {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Clock{
		period:  period,
		now:     time.Now,
		history: make([]time.Time, 0, HistorySize+1),
	}
}

// Period возвращает номинальный период
func (c *Clock) Period() time.Duration {
	return c.period
}

// Mark фиксирует срабатывание такта и возвращает средний наблюдаемый период
func (c *Clock) Mark() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = append(c.history, c.now())
	if len(c.history) > HistorySize+1 {
		// Сдвигаем окно, не наращивая массив
		copy(c.history, c.history[len(c.history)-HistorySize-1:])
		c.history = c.history[:HistorySize+1]
	}
	return c.averageLocked()
}

// Average возвращает средний наблюдаемый период
func (c *Clock) Average() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.averageLocked()
}

// Reset очищает историю срабатываний
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = c.history[:0]
}

func (c *Clock) averageLocked() time.Duration {
	n := len(c.history)
	if n < 2 {
		return c.period
	}
	return c.history[n-1].Sub(c.history[0]) / time.Duration(n-1)
}

// Run вызывает fn на каждом такте до отмены контекста. Следующий такт
// планируется только после завершения fn, поэтому такты не перекрываются.
func (c *Clock) Run(ctx context.Context, fn func(average time.Duration)) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			average := c.Mark()
			fn(average)
			timer.Reset(c.period)
		}
	}
}
