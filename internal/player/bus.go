package player

import (
	"math"
	"sync/atomic"

	"github.com/gopxl/beep"
)

const (
	// Порог ограничителя, -1 dBFS
	limiterThreshold = 0.891
	// Время восстановления усиления ограничителя, в секундах
	limiterRelease = 0.25
)

// bus общая шина: смешивает сессии воспроизведения, ограничивает пики
// и считает выведенные кадры. Счетчик кадров служит часами воспроизведения.
type bus struct {
	mixer    beep.Mixer // изменяется только под блокировкой выхода
	rate     beep.SampleRate
	frames   atomic.Int64
	detached atomic.Bool

	gain    float64
	release float64
}

func newBus(rate beep.SampleRate) *bus {
	return &bus{
		rate:    rate,
		gain:    1,
		release: 1 - math.Exp(-1/(limiterRelease*float64(rate))),
	}
}

// Stream реализует beep.Streamer. Пока шина подключена, поток не иссякает.
func (b *bus) Stream(samples [][2]float64) (int, bool) {
	if b.detached.Load() {
		return 0, false
	}

	n, _ := b.mixer.Stream(samples)
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}

	for i := range samples {
		peak := math.Max(math.Abs(samples[i][0]), math.Abs(samples[i][1]))
		gain := b.gain + (1-b.gain)*b.release
		if peak*gain > limiterThreshold {
			gain = limiterThreshold / peak
		}
		b.gain = gain
		samples[i][0] *= b.gain
		samples[i][1] *= b.gain
	}

	b.frames.Add(int64(len(samples)))
	return len(samples), true
}

// Err реализует beep.Streamer
func (b *bus) Err() error {
	return nil
}

// Now возвращает время шины в секундах
func (b *bus) Now() float64 {
	return float64(b.frames.Load()) / float64(b.rate)
}

// detach отключает шину: выход удалит ее при следующем чтении
func (b *bus) detach() {
	b.detached.Store(true)
}
