package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-remixer/internal/utils"
)

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all songs in the catalog",
		Long:  `Display the songs listed in list.json of the configured catalog.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := app.loadConfig(); err != nil {
				return err
			}
			return app.listSongs(ctx)
		},
	}
}

func (app *Application) listSongs(ctx context.Context) error {
	client, err := app.catalog()
	if err != nil {
		return err
	}

	songs, err := client.List(ctx)
	if err != nil {
		return err
	}

	if len(songs) == 0 {
		fmt.Println("📚 Каталог пуст. Опубликуйте песню с помощью команды 'publish'.")
		return nil
	}

	fmt.Printf("📚 Найдено песен: %d\n\n", len(songs))

	// Выводим заголовок таблицы
	fmt.Printf("%-30s %-40s %-30s\n", "Исполнитель", "Название", "Идентификатор")
	fmt.Println(strings.Repeat("-", 100))

	for _, song := range songs {
		fmt.Printf("%-30s %-40s %-30s\n",
			utils.TruncateString(song.Artist, 28),
			utils.TruncateString(song.Title, 38),
			song.Slug)
	}

	fmt.Println()
	fmt.Println("💡 Используйте 'remixer play [идентификатор]' для воспроизведения песни")
	return nil
}
