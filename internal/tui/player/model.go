// Package player содержит модель экрана песни для TUI: шкалы исполнителей,
// окно масштабирования и управление воспроизведением
package player

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-remixer/internal/player"
	"github.com/hazadus/go-remixer/internal/segment"
	"github.com/hazadus/go-remixer/internal/songview"
	"github.com/hazadus/go-remixer/internal/timeline"
	"github.com/hazadus/go-remixer/internal/tui/jump"
	"github.com/hazadus/go-remixer/internal/utils"
)

// Период опроса состояния для перерисовки
const pollInterval = 50 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5f87ff"))

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	statusStyle = lipgloss.NewStyle().
			Bold(true)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)

	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaf00"))
	markerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)

	singerColors = []lipgloss.Color{"#ff5f87", "#5fd7ff", "#afff5f", "#ffd75f", "#d787ff", "#5fffaf", "#ff875f", "#8787ff"}
)

// Controller операции экрана песни
type Controller interface {
	Open(ctx context.Context, slug string) error
	Snapshot() songview.Snapshot
	TogglePlay() error
	Stop()
	Seek(pos float64) error
	SeekOverview(fraction float64) error
	SeekZoom(fraction float64) error
	Nudge(delta float64) error
	BeginDrag(mode timeline.DragMode)
	DragTo(fraction float64)
	EndDrag()
	PanBy(fraction float64)
	Resize(delta float64)
	ApplyPreset(preset segment.Preset) error
	Toggle(segmentIndex, singerIndex int) error
	Close()
}

// GoBackMsg отправляется для возврата к списку песен
type GoBackMsg struct{}

// RedirectMsg отправляется, если песню открыть нельзя и нужно вернуться к списку
type RedirectMsg struct {
	Slug string
	Err  error
}

// openedMsg результат открытия песни
type openedMsg struct {
	err error
}

// pollMsg сигнал перерисовки; id отсекает опрос от прежних экранов
type pollMsg struct {
	id int
}

var nextModelID int

// Model представляет модель экрана песни
type Model struct {
	id         int
	slug       string
	controller Controller
	snapshot   songview.Snapshot

	loading bool
	spinner spinner.Model
	jump    *jump.Model
	keys    keyMap
	help    help.Model

	singer int // выбранный исполнитель
	cursor int // выбранный отрезок
	drag   timeline.DragMode
	status string

	width  int
	height int
}

// NewModel создает модель экрана песни
func NewModel(slug string, controller Controller) *Model {
	nextModelID++

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Model{
		id:         nextModelID,
		slug:       slug,
		controller: controller,
		loading:    true,
		spinner:    s,
		keys:       defaultKeyMap(),
		help:       help.New(),
		width:      80,
	}
}

// Init запускает загрузку песни и опрос состояния
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.open(), m.poll())
}

func (m *Model) open() tea.Cmd {
	return func() tea.Msg {
		return openedMsg{err: m.controller.Open(context.Background(), m.slug)}
	}
}

func (m *Model) poll() tea.Cmd {
	id := m.id
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollMsg{id: id}
	})
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case openedMsg:
		m.loading = false
		m.snapshot = m.controller.Snapshot()
		if songview.IsRedirect(msg.err) {
			slug := m.slug
			return m, func() tea.Msg {
				return RedirectMsg{Slug: slug, Err: msg.err}
			}
		}
		return m, nil

	case pollMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.snapshot = m.controller.Snapshot()
		m.clampSelection()
		return m, m.poll()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case jump.SubmitMsg:
		m.jump = nil
		m.report(m.controller.Seek(msg.Position))
		return m, nil

	case jump.CancelMsg:
		m.jump = nil
		return m, nil

	case tea.MouseMsg:
		if m.ready() {
			m.handleMouse(msg)
			m.snapshot = m.controller.Snapshot()
		}
		return m, nil

	case tea.KeyMsg:
		if m.jump != nil {
			var cmd tea.Cmd
			m.jump, cmd = m.jump.Update(msg)
			return m, cmd
		}
		cmd := m.handleKey(msg)
		m.snapshot = m.controller.Snapshot()
		return m, cmd
	}

	return m, nil
}

// ready сообщает, что песня загружена и с ней можно работать
func (m *Model) ready() bool {
	return !m.loading && m.snapshot.Err == nil && m.snapshot.Duration > 0
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return func() tea.Msg { return GoBackMsg{} }
	}
	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}
	if !m.ready() {
		return nil
	}

	singers := len(m.snapshot.Singers)
	segments := len(m.snapshot.Segments)

	switch {
	case key.Matches(msg, m.keys.PlayPause):
		m.report(m.controller.TogglePlay())
	case key.Matches(msg, m.keys.Stop):
		m.controller.Stop()
	case key.Matches(msg, m.keys.Back):
		m.report(m.controller.Nudge(-5))
	case key.Matches(msg, m.keys.Forward):
		m.report(m.controller.Nudge(5))
	case key.Matches(msg, m.keys.SingerUp):
		m.singer = max(0, m.singer-1)
	case key.Matches(msg, m.keys.SingerDn):
		m.singer = max(0, min(singers-1, m.singer+1))
	case key.Matches(msg, m.keys.SegPrev):
		m.cursor = max(0, m.cursor-1)
		m.revealCursor()
	case key.Matches(msg, m.keys.SegNext):
		m.cursor = max(0, min(segments-1, m.cursor+1))
		m.revealCursor()
	case key.Matches(msg, m.keys.Toggle):
		m.report(m.controller.Toggle(m.cursor, m.singer))
	case key.Matches(msg, m.keys.Solo):
		m.applyPreset(segment.Preset{Mode: segment.Solo, Singer: m.singer})
	case key.Matches(msg, m.keys.Clear):
		m.applyPreset(segment.Preset{Mode: segment.Clear})
	case key.Matches(msg, m.keys.Default):
		m.applyPreset(segment.Preset{Mode: segment.Default})
	case key.Matches(msg, m.keys.Shuffle1):
		m.applyPreset(segment.Preset{Mode: segment.ShuffleMarkov})
	case key.Matches(msg, m.keys.Shuffle2):
		m.applyPreset(segment.Preset{Mode: segment.ShuffleIndependent})
	case key.Matches(msg, m.keys.Shuffle3):
		m.applyPreset(segment.Preset{Mode: segment.ShufflePermute})
	case key.Matches(msg, m.keys.PanLeft):
		m.controller.PanBy(-0.5)
	case key.Matches(msg, m.keys.PanRight):
		m.controller.PanBy(0.5)
	case key.Matches(msg, m.keys.Narrow):
		m.controller.Resize(-5)
	case key.Matches(msg, m.keys.Widen):
		m.controller.Resize(5)
	case key.Matches(msg, m.keys.Jump):
		m.jump = jump.NewModel(m.snapshot.Position, m.snapshot.Duration)
		return m.jump.Init()
	}
	return nil
}

// revealCursor сдвигает окно к выбранному отрезку, если он не виден
func (m *Model) revealCursor() {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Segments) {
		return
	}
	seg := m.snapshot.Segments[m.cursor]
	window := m.snapshot.Window
	if seg.End < window.Start || seg.Start > window.End {
		m.controller.PanBy((seg.Start - window.Start) / window.Width())
	}
}

func (m *Model) applyPreset(preset segment.Preset) {
	if err := m.controller.ApplyPreset(preset); err != nil {
		m.report(err)
		return
	}
	m.status = "✨ " + preset.Mode.String()
}

// report показывает ошибку операции в строке состояния
func (m *Model) report(err error) {
	if err != nil {
		m.status = "⚠️ " + err.Error()
	}
}

func (m *Model) clampSelection() {
	if n := len(m.snapshot.Singers); m.singer >= n {
		m.singer = max(0, n-1)
	}
	if n := len(m.snapshot.Segments); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

func (m *Model) layout() layout {
	return newLayout(m.width, len(m.snapshot.Singers))
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	l := m.layout()
	f, inside := l.fraction(msg.X)

	switch msg.Action {
	case tea.MouseActionRelease:
		if m.drag != timeline.DragNone {
			m.controller.EndDrag()
			m.drag = timeline.DragNone
		}
		return

	case tea.MouseActionMotion:
		if m.drag != timeline.DragNone {
			m.controller.DragTo(f)
		}
		return

	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			return
		}
	}

	overviewSinger, onOverviewRow := l.overviewRow(msg.Y)
	zoomSinger, onZoomRow := l.zoomRow(msg.Y)

	switch {
	case msg.Y == l.overviewRuler():
		m.report(m.controller.SeekOverview(f))

	case onOverviewRow:
		m.toggleAt(f*m.snapshot.Duration, overviewSinger)

	case msg.Y == l.zoomBar():
		mode := l.handleAt(msg.X, m.snapshot.Window, m.snapshot.Duration)
		m.controller.BeginDrag(mode)
		m.drag = mode
		// Нажатие вне окна сразу переносит окно к указателю
		if mode == timeline.DragBar && !m.snapshot.Window.Contains(f*m.snapshot.Duration) {
			m.controller.DragTo(f)
		}

	case msg.Y == l.zoomRuler():
		m.report(m.controller.SeekZoom(f))

	case onZoomRow:
		window := m.snapshot.Window
		m.toggleAt(window.Start+window.Width()*f, zoomSinger)
	}
}

// toggleAt выбирает и переключает ячейку исполнителя в отрезке под временем t
func (m *Model) toggleAt(t float64, singer int) {
	index, ok := segment.ActiveAt(m.snapshot.Segments, t)
	if !ok {
		return
	}
	m.singer = singer
	m.cursor = index
	m.report(m.controller.Toggle(index, singer))
}

// View отображает модель
func (m *Model) View() string {
	s := m.snapshot

	if s.Err != nil {
		return fmt.Sprintf(
			"%s\n\n%s\n\n%s",
			titleStyle.Render("❌ Ошибка загрузки песни"),
			errorStyle.Render(s.Err.Error()),
			controlsStyle.Render("Нажмите 'q' или 'esc' для возврата"),
		)
	}
	if m.loading || s.Duration == 0 {
		return fmt.Sprintf("%s Загрузка песни %s...", m.spinner.View(), m.slug)
	}

	l := m.layout()
	lines := make([]string, 0, headerLines+2*l.singers+8)

	// Заголовок
	lines = append(lines,
		titleStyle.Render(fmt.Sprintf("🎵 %s", s.Info.Title))+" "+trackInfoStyle.Render("🎤 "+s.Info.Artist),
		m.statusLine(),
		"",
	)

	// Обзорная шкала всей песни
	lines = append(lines, m.gutter("", false)+m.ruler(l, 0, s.Duration))
	for i := range s.Singers {
		lines = append(lines, m.gutter(s.Singers[i], i == m.singer)+m.singerRow(l, i, 0, s.Duration, false))
	}
	lines = append(lines, m.gutter("", false)+m.zoomBar(l))
	lines = append(lines, "")

	// Детальная шкала окна
	window := s.Window
	label := fmt.Sprintf("%s-%s", utils.FormatClock(window.Start), utils.FormatClock(window.End))
	lines = append(lines, m.gutter(label, false)+m.ruler(l, window.Start, window.End))
	for i := range s.Singers {
		lines = append(lines, m.gutter(s.Singers[i], i == m.singer)+m.singerRow(l, i, window.Start, window.End, true))
	}

	lines = append(lines, "")
	if m.jump != nil {
		lines = append(lines, m.jump.View())
	} else {
		lines = append(lines, controlsStyle.Render(m.status))
	}
	lines = append(lines, m.help.View(m.keys))

	return strings.Join(lines, "\n")
}

func (m *Model) statusLine() string {
	s := m.snapshot
	icon := "⏹️"
	switch s.State {
	case player.Playing:
		icon = "▶️"
	case player.Paused:
		icon = "⏸️"
	}
	line := fmt.Sprintf("%s %s  %s / %s", icon, formatStatus(s.State),
		utils.FormatClock(s.Position), utils.FormatClock(s.Duration))
	if s.Active >= 0 {
		line += fmt.Sprintf("  отрезок %d/%d", s.Active+1, len(s.Segments))
	}
	return statusStyle.Render(line)
}

// gutter рисует колонку с подписью строки
func (m *Model) gutter(label string, selected bool) string {
	text := utils.TruncateString(label, gutterWidth-2)
	prefix := "  "
	if selected {
		prefix = "> "
	}
	text = fmt.Sprintf("%-*s", gutterWidth-2, text)
	if selected {
		return prefix + statusStyle.Render(text)
	}
	return prefix + trackInfoStyle.Render(text)
}

// ruler рисует шкалу времени от from до to с отметкой позиции
func (m *Model) ruler(l layout, from, to float64) string {
	pos := m.snapshot.Position
	marker := -1
	if to > from && pos >= from && pos <= to {
		marker = l.column((pos - from) / (to - from))
	}

	var b strings.Builder
	for c := 0; c < l.width; c++ {
		if c == marker {
			b.WriteString(markerStyle.Render("●"))
		} else {
			b.WriteString(dimStyle.Render("─"))
		}
	}
	return b.String()
}

// singerRow рисует строку исполнителя: █ - поет, ░ - молчит в отрезке
func (m *Model) singerRow(l layout, singer int, from, to float64, zoomed bool) string {
	color := singerColors[singer%len(singerColors)]
	onStyle := lipgloss.NewStyle().Foreground(color)

	var b strings.Builder
	for c := 0; c < l.width; c++ {
		t := from + (to-from)*(float64(c)+0.5)/float64(l.width)
		index, ok := segment.ActiveAt(m.snapshot.Segments, t)
		if !ok {
			b.WriteString(dimStyle.Render("·"))
			continue
		}

		cell := dimStyle.Render("░")
		if m.snapshot.Segments[index].Flags[singer] {
			cell = onStyle.Render("█")
		}
		if zoomed && singer == m.singer && index == m.cursor {
			cell = selectedStyle.Render(cell)
		}
		b.WriteString(cell)
	}
	return b.String()
}

// zoomBar рисует положение окна на обзорной шкале
func (m *Model) zoomBar(l layout) string {
	s := m.snapshot
	startCol := l.column(s.Window.Start / s.Duration)
	endCol := l.column(s.Window.End / s.Duration)

	var b strings.Builder
	for c := 0; c < l.width; c++ {
		switch {
		case c == startCol:
			b.WriteString(barStyle.Render("["))
		case c == endCol:
			b.WriteString(barStyle.Render("]"))
		case c > startCol && c < endCol:
			b.WriteString(barStyle.Render("═"))
		default:
			b.WriteString(dimStyle.Render("·"))
		}
	}
	return b.String()
}

// Close освобождает контроллер песни
func (m *Model) Close() {
	if m.controller != nil {
		m.controller.Close()
	}
}

func formatStatus(state player.State) string {
	switch state {
	case player.Playing:
		return "Воспроизведение"
	case player.Paused:
		return "Пауза"
	default:
		return "Остановлено"
	}
}
