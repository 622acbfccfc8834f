// Package player содержит движок микширования: фоновую дорожку и дорожки вокала,
// громкость которых меняется по ходу песни
package player

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"golang.org/x/sync/errgroup"

	"github.com/hazadus/go-remixer/internal/data"
	"github.com/hazadus/go-remixer/internal/segment"
)

// ErrNotLoaded возвращается, если песня еще не загружена
var ErrNotLoaded = errors.New("песня не загружена")

// State состояние плеера
type State int

const (
	// Idle - ничего не загружено
	Idle State = iota
	// Loading - идет загрузка дорожек
	Loading
	// Ready - дорожки загружены, позиция в начале или задана перемоткой
	Ready
	// Playing - идет воспроизведение
	Playing
	// Paused - воспроизведение приостановлено
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Loading:
		return "Loading"
	case Ready:
		return "Ready"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Settings параметры плеера
type Settings struct {
	MasterVolume    float64 // Громкость фона и общий уровень вокала
	ResampleQuality int     // Качество передискретизации beep, 1..64
}

// Player управляет воспроизведением фоновой дорожки и дорожек вокала
type Player struct {
	out      Output
	settings Settings

	mutex   sync.RWMutex
	state   State
	bus     *bus
	rate    beep.SampleRate
	backing *beep.Buffer
	vocals  []*beep.Buffer
	session *session

	offset     float64 // позиция на момент запуска сессии или паузы, в секундах
	startFrame int64   // кадр шины на момент запуска сессии
	gains      []float64
}

// NewPlayer создает новый экземпляр плеера
func NewPlayer(out Output, settings Settings) *Player {
	if settings.MasterVolume <= 0 {
		settings.MasterVolume = 0.8
	}
	if settings.ResampleQuality <= 0 {
		settings.ResampleQuality = 4
	}
	return &Player{out: out, settings: settings}
}

// Load загружает и декодирует фон и все дорожки вокала параллельно.
// Ошибка любой дорожки отменяет загрузку целиком.
func (p *Player) Load(ctx context.Context, opener Opener, detail *data.SongDetail) error {
	p.Unload()

	p.mutex.Lock()
	p.state = Loading
	p.mutex.Unlock()

	backing, vocals, err := p.fetchAll(ctx, opener, detail)
	if err != nil {
		p.mutex.Lock()
		p.state = Idle
		p.mutex.Unlock()
		return err
	}

	rate, err := p.out.Init(backing.Format().SampleRate)
	if err != nil {
		p.mutex.Lock()
		p.state = Idle
		p.mutex.Unlock()
		return err
	}

	backing = resample(backing, rate, p.settings.ResampleQuality)
	for i := range vocals {
		vocals[i] = resample(vocals[i], rate, p.settings.ResampleQuality)
	}

	b := newBus(rate)

	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.rate = rate
	p.backing = backing
	p.vocals = vocals
	p.bus = b
	p.offset = 0
	p.gains = make([]float64, len(vocals))
	p.state = Ready
	p.out.Play(b)

	log.Printf("загружено: фон %.1f с, вокал %d, частота %d Гц", p.durationLocked(), len(vocals), rate)
	return nil
}

func (p *Player) fetchAll(ctx context.Context, opener Opener, detail *data.SongDetail) (*beep.Buffer, []*beep.Buffer, error) {
	var backing *beep.Buffer
	vocals := make([]*beep.Buffer, len(detail.Vocals))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buf, err := fetch(ctx, opener, detail.BGM)
		backing = buf
		return err
	})
	for i, ref := range detail.Vocals {
		g.Go(func() error {
			buf, err := fetch(ctx, opener, ref)
			vocals[i] = buf
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return backing, vocals, nil
}

// Play начинает воспроизведение с текущей позиции
func (p *Player) Play() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	switch p.state {
	case Playing:
		return nil
	case Ready, Paused:
	default:
		return ErrNotLoaded
	}

	p.out.Lock()
	p.attachLocked()
	p.out.Unlock()
	p.state = Playing
	return nil
}

// Pause приостанавливает воспроизведение, повторный вызов ничего не делает
func (p *Player) Pause() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.state != Playing {
		return
	}
	p.out.Lock()
	p.offset = p.positionLocked()
	p.disposeLocked()
	p.out.Unlock()
	p.state = Paused
}

// Stop останавливает воспроизведение и возвращает позицию в начало
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stopInternal()
}

// stopInternal внутренний метод остановки (должен вызываться под мьютексом)
func (p *Player) stopInternal() {
	switch p.state {
	case Playing, Paused:
		p.out.Lock()
		p.disposeLocked()
		p.out.Unlock()
	case Ready:
	default:
		return
	}
	p.offset = 0
	for i := range p.gains {
		p.gains[i] = 0
	}
	p.state = Ready
}

// Seek переходит к позиции pos, ограниченной длительностью песни.
// Во время воспроизведения сессия пересоздается с новой позиции.
func (p *Player) Seek(pos float64) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	switch p.state {
	case Ready, Paused, Playing:
	default:
		return ErrNotLoaded
	}

	pos = clamp(pos, 0, p.durationLocked())
	if p.state != Playing {
		p.offset = pos
		return nil
	}

	p.out.Lock()
	p.disposeLocked()
	p.offset = pos
	p.attachLocked()
	p.out.Unlock()
	return nil
}

// UpdateGains выставляет громкость вокала по отрезку, активному чуть впереди
// позиции t: на половину среднего периода такта
func (p *Player) UpdateGains(t float64, average time.Duration, segments []segment.Segment) []float64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	gains := make([]float64, len(p.vocals))
	if index, ok := segment.ActiveAt(segments, t+average.Seconds()/2); ok {
		copy(gains, segment.Gains(segments[index], p.settings.MasterVolume))
	}
	p.gains = gains

	if p.session != nil {
		p.out.Lock()
		p.session.setGains(gains)
		p.out.Unlock()
	}
	return append([]float64(nil), gains...)
}

// Gains возвращает последние выставленные громкости вокала
func (p *Player) Gains() []float64 {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return append([]float64(nil), p.gains...)
}

// Ended сообщает, что фон доигран до конца
func (p *Player) Ended() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if p.state != Playing || p.session == nil {
		return false
	}
	return p.session.ended.Load() || p.positionLocked() >= p.durationLocked()
}

// Position возвращает текущую позицию в секундах
func (p *Player) Position() float64 {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.positionLocked()
}

// Duration возвращает длительность фоновой дорожки в секундах
func (p *Player) Duration() float64 {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.durationLocked()
}

// State возвращает состояние плеера
func (p *Player) State() State {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.state
}

// IsPlaying возвращает true, если идет воспроизведение
func (p *Player) IsPlaying() bool {
	return p.State() == Playing
}

// Unload останавливает воспроизведение, отключает шину и освобождает буферы
func (p *Player) Unload() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.stopInternal()
	if p.bus != nil {
		p.out.Lock()
		p.bus.detach()
		p.out.Unlock()
		p.bus = nil
	}
	p.backing = nil
	p.vocals = nil
	p.gains = nil
	p.offset = 0
	p.state = Idle
}

// attachLocked создает сессию с позиции offset и подключает ее к шине
// (под мьютексом и блокировкой выхода)
func (p *Player) attachLocked() {
	from := int(math.Round(p.offset * float64(p.rate)))
	s := newSession(from, p.settings.MasterVolume, p.backing, p.vocals)
	p.bus.mixer.Add(s)
	p.startFrame = p.bus.frames.Load()
	p.session = s
	log.Printf("сессия %s: старт с %.3f с", s.id, p.offset)
}

// disposeLocked отключает текущую сессию (под мьютексом и блокировкой выхода)
func (p *Player) disposeLocked() {
	if p.session == nil {
		return
	}
	p.session.dispose()
	log.Printf("сессия %s: остановлена", p.session.id)
	p.session = nil
}

func (p *Player) positionLocked() float64 {
	if p.state != Playing || p.bus == nil {
		return p.offset
	}
	elapsed := float64(p.bus.frames.Load()-p.startFrame) / float64(p.rate)
	return clamp(p.offset+elapsed, 0, p.durationLocked())
}

func (p *Player) durationLocked() float64 {
	if p.backing == nil || p.rate == 0 {
		return 0
	}
	return float64(p.backing.Len()) / float64(p.rate)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
