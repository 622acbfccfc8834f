// Package songlist содержит модель экрана списка песен для TUI
package songlist

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-remixer/internal/data"
	"github.com/hazadus/go-remixer/internal/utils"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	quitTextStyle     = lipgloss.NewStyle().Margin(1, 0, 2, 4)
	noticeStyle       = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("214"))
	errorStyle        = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("196")).Bold(true)
)

// Lister источник списка песен
type Lister interface {
	List(ctx context.Context) (data.Catalog, error)
}

// SongSelectedMsg отправляется при выборе песни
type SongSelectedMsg struct {
	Song data.SongInfo
}

// songsLoadedMsg результат загрузки списка
type songsLoadedMsg struct {
	songs data.Catalog
	err   error
}

// songItem реализует интерфейс list.Item для песни
type songItem struct {
	song data.SongInfo
}

func (i songItem) FilterValue() string {
	return fmt.Sprintf("%s %s", i.song.Artist, i.song.Title)
}

// songItemDelegate реализует отображение элементов списка
type songItemDelegate struct{}

func (d songItemDelegate) Height() int                             { return 1 }
func (d songItemDelegate) Spacing() int                            { return 0 }
func (d songItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d songItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(songItem)
	if !ok {
		return
	}

	// Исполнитель | Название | Идентификатор
	str := fmt.Sprintf("%-24s %-40s %s",
		utils.TruncateString(i.song.Artist, 24),
		utils.TruncateString(i.song.Title, 40),
		i.song.Slug)

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет модель экрана списка песен
type Model struct {
	list     list.Model
	lister   Lister
	spinner  spinner.Model
	loading  bool
	err      error
	notice   string
	quitting bool
}

// NewModel создает новую модель списка песен
func NewModel(lister Lister) *Model {
	l := list.New(nil, songItemDelegate{}, 0, 0)
	l.Title = "Песни"
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Model{
		list:    l,
		lister:  lister,
		spinner: s,
		loading: true,
	}
}

// Init запускает загрузку списка
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// SetNotice задает сообщение над списком, например о неизвестной песне
func (m *Model) SetNotice(notice string) {
	m.notice = notice
}

// Reload перезагружает список песен
func (m *Model) Reload() tea.Cmd {
	m.loading = true
	m.err = nil
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		songs, err := m.lister.List(context.Background())
		return songsLoadedMsg{songs: songs, err: err}
	}
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4) // Оставляем место для уведомления и справки
		return m, nil

	case songsLoadedMsg:
		m.loading = false
		m.err = msg.err
		items := make([]list.Item, len(msg.songs))
		for i, s := range msg.songs {
			items[i] = songItem{song: s}
		}
		return m, m.list.SetItems(items)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		// Во время ввода фильтра клавиши принадлежат списку
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "r":
			return m, m.Reload()

		case "enter":
			if item, ok := m.list.SelectedItem().(songItem); ok {
				m.notice = ""
				return m, func() tea.Msg {
					return SongSelectedMsg{Song: item.song}
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	if m.quitting {
		return quitTextStyle.Render("До свидания!")
	}

	var b strings.Builder
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	if m.loading {
		b.WriteString(quitTextStyle.Render(m.spinner.View() + " Загрузка списка песен..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("❌ " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Enter: открыть • r: обновить • q: выход"))
	return b.String()
}
