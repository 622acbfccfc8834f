// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-remixer/internal/config"
	"github.com/hazadus/go-remixer/internal/player"
	"github.com/hazadus/go-remixer/internal/songview"
	"github.com/hazadus/go-remixer/internal/tui/app"
)

// DebugLogFile файл журнала при запуске с --debug
const DebugLogFile = "remixer-debug.log"

// Options параметры запуска TUI
type Options struct {
	StartSlug string // песня, открываемая сразу; пусто - список песен
	Debug     bool   // писать журнал в DebugLogFile
}

// App представляет основное TUI приложение
type App struct {
	config  *config.Config
	catalog app.Catalog
	output  player.Output
	options Options
}

// NewApp создает новый экземпляр TUI приложения с выводом звука на динамики
func NewApp(cfg *config.Config, catalog app.Catalog, options Options) *App {
	return NewAppWithOutput(cfg, catalog, player.NewSpeakerOutput(cfg.SpeakerBuffer()), options)
}

// NewAppWithOutput создает TUI приложение с заданным выводом звука
func NewAppWithOutput(cfg *config.Config, catalog app.Catalog, output player.Output, options Options) *App {
	return &App{
		config:  cfg,
		catalog: catalog,
		output:  output,
		options: options,
	}
}

// newMainModel создает главную модель с общим плеером для всех экранов песен
func (tuiApp *App) newMainModel() *app.MainModel {
	engine := player.NewPlayer(tuiApp.output, player.Settings{
		MasterVolume:    tuiApp.config.MasterVolume,
		ResampleQuality: tuiApp.config.ResampleQuality,
	})
	settings := songview.Settings{
		TickInterval: tuiApp.config.TickInterval(),
		ZoomWidth:    tuiApp.config.ZoomWidth,
	}
	return app.NewMainModel(tuiApp.catalog, engine, settings, tuiApp.options.StartSlug)
}

// Run запускает TUI приложение
func (tuiApp *App) Run() error {
	// Вывод журнала поверх интерфейса портит экран
	if tuiApp.options.Debug {
		f, err := tea.LogToFile(DebugLogFile, "remixer")
		if err != nil {
			return fmt.Errorf("ошибка открытия журнала: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	model := tuiApp.newMainModel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()

	// Останавливаем воспроизведение после завершения программы
	model.Close()

	return err
}
