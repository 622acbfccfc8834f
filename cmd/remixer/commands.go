package main

import (
	"context"

	"github.com/spf13/cobra"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "remixer",
		Short: "A terminal player for remixing multi-singer vocal recordings",
		Long: `A terminal player that mixes a backing track with isolated vocal stems.
Choose which singers are audible in every segment of the song, shuffle them or solo one.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&app.ConfigPath, "config", app.ConfigPath, "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "write a debug log while the TUI is running")

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createListCommand(ctx))
	rootCmd.AddCommand(app.createPlayCommand())
	rootCmd.AddCommand(app.createTUICommand())
	rootCmd.AddCommand(app.createPublishCommand(ctx))
	rootCmd.AddCommand(app.createUnpublishCommand(ctx))

	return rootCmd
}
