package main

import (
	"github.com/spf13/cobra"

	"github.com/hazadus/go-remixer/internal/tui"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch TUI (Terminal User Interface)",
		Long:  `Launch the interactive terminal user interface: pick a song from the catalog and remix it.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI("")
		},
	}
}

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "play [slug]",
		Short: "Open a song by its slug",
		Long: `Open the song view for the given slug directly.
An unknown slug brings you to the song list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.launchTUI(args[0])
		},
	}
}

func (app *Application) launchTUI(startSlug string) error {
	if err := app.loadConfig(); err != nil {
		return err
	}

	client, err := app.catalog()
	if err != nil {
		return err
	}

	tuiApp := tui.NewApp(app.Config, client, tui.Options{
		StartSlug: startSlug,
		Debug:     app.Debug,
	})
	return tuiApp.Run()
}
