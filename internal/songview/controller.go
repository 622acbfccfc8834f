// Package songview связывает каталог, плеер, разбивку на отрезки и окно
// масштабирования в одно состояние экрана песни
package songview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hazadus/go-remixer/internal/catalog"
	"github.com/hazadus/go-remixer/internal/data"
	"github.com/hazadus/go-remixer/internal/player"
	"github.com/hazadus/go-remixer/internal/segment"
	"github.com/hazadus/go-remixer/internal/timeline"
	"github.com/hazadus/go-remixer/internal/transport"
)

// Catalog источник описаний песен и аудио
type Catalog interface {
	player.Opener
	Find(ctx context.Context, slug string) (*data.SongInfo, error)
	Detail(ctx context.Context, slug string) (*data.SongDetail, error)
}

// Settings параметры экрана песни
type Settings struct {
	TickInterval time.Duration
	ZoomWidth    float64
	Rand         *rand.Rand // nil - случайный источник по времени
}

// Snapshot состояние экрана песни для отрисовки
type Snapshot struct {
	Info        data.SongInfo
	Singers     []string
	State       player.State
	Position    float64
	Duration    float64
	Window      timeline.Window
	Dragging    timeline.DragMode
	Segments    []segment.Segment
	Gains       []float64
	Active      int // индекс активного отрезка, -1 если его нет
	AverageTick time.Duration
	Err         error
}

// Controller управляет экраном одной песни
type Controller struct {
	catalog  Catalog
	player   *player.Player
	settings Settings

	mutex   sync.Mutex
	info    data.SongInfo
	detail  *data.SongDetail
	model   *segment.Model
	zoom    *timeline.Zoom
	clock   *transport.Clock
	current float64
	gains   []float64
	active  int
	err     error

	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// New создает контроллер экрана песни
func New(catalog Catalog, p *player.Player, settings Settings) *Controller {
	if settings.ZoomWidth <= 0 {
		settings.ZoomWidth = timeline.DefaultWidth
	}
	return &Controller{
		catalog:  catalog,
		player:   p,
		settings: settings,
		zoom:     timeline.NewZoom(0, settings.ZoomWidth),
		clock:    transport.NewClock(settings.TickInterval),
		active:   -1,
	}
}

// IsRedirect сообщает, что ошибка означает переход к списку песен
func IsRedirect(err error) bool {
	return errors.Is(err, catalog.ErrInvalidSlug) || errors.Is(err, catalog.ErrSongNotFound)
}

// Open находит песню, загружает дорожки и запускает такт воспроизведения.
// Для неизвестной песни возвращает ошибку, для которой IsRedirect истинно.
func (c *Controller) Open(ctx context.Context, slug string) error {
	info, err := c.catalog.Find(ctx, slug)
	if err != nil {
		if !IsRedirect(err) {
			c.setError(err)
		}
		return err
	}
	detail, err := c.catalog.Detail(ctx, slug)
	if err != nil {
		if !IsRedirect(err) {
			c.setError(err)
		}
		return err
	}

	c.mutex.Lock()
	c.info = *info
	c.detail = detail
	c.model = segment.NewModel(detail, c.settings.Rand)
	c.gains = make([]float64, detail.SingerCount())
	c.mutex.Unlock()

	log.Printf("загрузка песни %s: вокал %d, отрезков %d", slug, len(detail.Vocals), len(detail.Segments))
	if err := c.player.Load(ctx, c.catalog, detail); err != nil {
		err = fmt.Errorf("ошибка загрузки песни %q: %w", slug, err)
		c.setError(err)
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		c.player.Unload()
		return nil
	}
	c.zoom.SetDuration(c.player.Duration())

	tickCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		c.clock.Run(tickCtx, c.tick)
	}(c.done)
	return nil
}

func (c *Controller) setError(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.err = err
	log.Printf("ошибка экрана песни: %v", err)
}

// tick обрабатывает один такт: конец песни, позицию, окно и громкость вокала
func (c *Controller) tick(average time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.model == nil {
		return
	}
	if c.player.Ended() {
		c.player.Stop()
	}

	prev := c.current
	c.current = c.player.Position()
	c.zoom.Follow(prev, c.current)

	segments := c.model.Segments()
	if c.player.IsPlaying() {
		c.gains = c.player.UpdateGains(c.current, average, segments)
	} else {
		c.gains = c.player.Gains()
	}
	if index, ok := segment.ActiveAt(segments, c.current); ok {
		c.active = index
	} else {
		c.active = -1
	}
}

// Play запускает воспроизведение
func (c *Controller) Play() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.player.Play()
}

// Pause приостанавливает воспроизведение
func (c *Controller) Pause() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.player.Pause()
}

// Stop останавливает воспроизведение и возвращает позицию в начало
func (c *Controller) Stop() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.player.Stop()
}

// TogglePlay переключает воспроизведение и паузу
func (c *Controller) TogglePlay() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.player.IsPlaying() {
		c.player.Pause()
		return nil
	}
	return c.player.Play()
}

// Seek переходит к позиции и при необходимости центрирует на ней окно
func (c *Controller) Seek(pos float64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.seekLocked(pos)
}

func (c *Controller) seekLocked(pos float64) error {
	if err := c.player.Seek(pos); err != nil {
		return err
	}
	c.current = c.player.Position()
	c.zoom.Recenter(c.current)
	return nil
}

// SeekOverview переходит к позиции по доле ширины обзорной шкалы
func (c *Controller) SeekOverview(fraction float64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.seekLocked(c.zoom.TimeAt(fraction))
}

// SeekZoom переходит к позиции по доле ширины детальной шкалы
func (c *Controller) SeekZoom(fraction float64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.seekLocked(c.zoom.ZoomTimeAt(fraction))
}

// Nudge сдвигает позицию на delta секунд
func (c *Controller) Nudge(delta float64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.seekLocked(c.current + delta)
}

// BeginDrag начинает перетаскивание окна или его границы
func (c *Controller) BeginDrag(mode timeline.DragMode) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.zoom.BeginDrag(mode)
}

// DragTo применяет перетаскивание к доле ширины обзорной шкалы
func (c *Controller) DragTo(fraction float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.zoom.DragTo(fraction)
}

// EndDrag завершает перетаскивание
func (c *Controller) EndDrag() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.zoom.EndDrag()
}

// PanBy сдвигает окно на долю его ширины
func (c *Controller) PanBy(fraction float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.zoom.PanBy(fraction)
}

// Resize расширяет или сужает окно на delta секунд, двигая правую границу.
// Если правая граница упирается в конец песни, расширение идет влево.
func (c *Controller) Resize(delta float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	window := c.zoom.Window()
	c.zoom.MoveEnd(window.End + delta)
	if delta > 0 && c.zoom.Window().End == window.End {
		c.zoom.MoveStart(window.Start - delta)
	}
}

// ApplyPreset применяет предустановку к разбивке
func (c *Controller) ApplyPreset(preset segment.Preset) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.model == nil {
		return player.ErrNotLoaded
	}
	return c.model.Apply(preset)
}

// Toggle переключает слышимость исполнителя в отрезке
func (c *Controller) Toggle(segmentIndex, singerIndex int) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.model == nil {
		return player.ErrNotLoaded
	}
	return c.model.Toggle(segmentIndex, singerIndex)
}

// Snapshot возвращает копию состояния для отрисовки
func (c *Controller) Snapshot() Snapshot {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	snapshot := Snapshot{
		Info:        c.info,
		State:       c.player.State(),
		Position:    c.current,
		Duration:    c.zoom.Duration(),
		Window:      c.zoom.Window(),
		Dragging:    c.zoom.Dragging(),
		Gains:       append([]float64(nil), c.gains...),
		Active:      c.active,
		AverageTick: c.clock.Average(),
		Err:         c.err,
	}
	if c.detail != nil {
		snapshot.Singers = append([]string(nil), c.detail.Artists...)
	}
	if c.model != nil {
		snapshot.Segments = segment.Clone(c.model.Segments())
	}
	return snapshot
}

// Close останавливает такт, дожидается его завершения и выгружает песню.
// Повторный вызов ничего не делает.
func (c *Controller) Close() {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return
	}
	c.closed = true
	cancel, done := c.cancel, c.done
	c.mutex.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	c.player.Unload()
}
