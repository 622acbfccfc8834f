// Package app содержит основную логику TUI приложения
package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-remixer/internal/player"
	"github.com/hazadus/go-remixer/internal/songview"
	tuiPlayer "github.com/hazadus/go-remixer/internal/tui/player"
	"github.com/hazadus/go-remixer/internal/tui/songlist"
)

// ScreenType определяет тип текущего экрана
type ScreenType int

// Константы для типов экранов
const (
	// SongListScreen - экран списка песен
	SongListScreen ScreenType = iota
	// SongScreen - экран песни
	SongScreen
)

// Catalog источник списка песен, их описаний и аудио
type Catalog interface {
	songlist.Lister
	songview.Catalog
}

// ControllerFactory создает контроллер для нового экрана песни
type ControllerFactory func() tuiPlayer.Controller

// MainModel представляет главную модель TUI
type MainModel struct {
	currentScreen ScreenType
	songList      *songlist.Model
	songModel     *tuiPlayer.Model
	newController ControllerFactory
	startSlug     string
	size          *tea.WindowSizeMsg
}

// NewMainModel создает главную модель. Все экраны песен используют один плеер.
// Если startSlug не пуст, сразу открывается экран этой песни.
func NewMainModel(catalog Catalog, engine *player.Player, settings songview.Settings, startSlug string) *MainModel {
	factory := func() tuiPlayer.Controller {
		return songview.New(catalog, engine, settings)
	}
	return NewMainModelWithFactory(catalog, factory, startSlug)
}

// NewMainModelWithFactory создает главную модель с заданной фабрикой контроллеров
func NewMainModelWithFactory(lister songlist.Lister, factory ControllerFactory, startSlug string) *MainModel {
	m := &MainModel{
		currentScreen: SongListScreen,
		songList:      songlist.NewModel(lister),
		newController: factory,
		startSlug:     startSlug,
	}
	if startSlug != "" {
		m.currentScreen = SongScreen
		m.songModel = tuiPlayer.NewModel(startSlug, factory())
	}
	return m
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	// Список загружается и при старте с экрана песни: к нему можно вернуться
	if m.songModel != nil {
		return tea.Batch(m.songList.Init(), m.songModel.Init())
	}
	return m.songList.Init()
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.closeSong()
			return m, tea.Quit
		}

	case songlist.SongSelectedMsg:
		return m, m.openSong(msg.Song.Slug)

	case tuiPlayer.GoBackMsg:
		m.closeSong()
		m.currentScreen = SongListScreen
		return m, nil

	case tuiPlayer.RedirectMsg:
		m.closeSong()
		m.currentScreen = SongListScreen
		m.songList.SetNotice(fmt.Sprintf("⚠️ Песня %q не найдена", msg.Slug))
		return m, nil

	case tea.WindowSizeMsg:
		m.size = &msg
		// Размер нужен обоим экранам: экран песни создается позже списка
		var listCmd, songCmd tea.Cmd
		m.songList, listCmd = m.songList.Update(msg)
		if m.songModel != nil {
			_, songCmd = m.songModel.Update(msg)
		}
		return m, tea.Batch(listCmd, songCmd)
	}

	// Передаем сообщение активной модели
	var cmd tea.Cmd
	switch m.currentScreen {
	case SongListScreen:
		m.songList, cmd = m.songList.Update(msg)
	case SongScreen:
		if m.songModel != nil {
			_, cmd = m.songModel.Update(msg)
		}
	}
	return m, cmd
}

// openSong переключается на экран песни
func (m *MainModel) openSong(slug string) tea.Cmd {
	m.closeSong()
	m.currentScreen = SongScreen
	m.songModel = tuiPlayer.NewModel(slug, m.newController())
	if m.size != nil {
		m.songModel.Update(*m.size)
	}
	return m.songModel.Init()
}

func (m *MainModel) closeSong() {
	if m.songModel != nil {
		m.songModel.Close()
		m.songModel = nil
	}
}

// CurrentScreen возвращает активный экран
func (m *MainModel) CurrentScreen() ScreenType {
	return m.currentScreen
}

// View отображает интерфейс
func (m *MainModel) View() string {
	switch m.currentScreen {
	case SongListScreen:
		return m.songList.View()

	case SongScreen:
		if m.songModel != nil {
			return m.songModel.View()
		}
		return "Ошибка: модель песни не инициализирована"

	default:
		return "Неизвестный экран"
	}
}

// Close закрывает ресурсы главной модели
func (m *MainModel) Close() {
	m.closeSong()
}
