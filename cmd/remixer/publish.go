package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-remixer/internal/metadata"
	"github.com/hazadus/go-remixer/internal/uploader"
	"github.com/hazadus/go-remixer/internal/utils"
)

// createPublishCommand создает команду publish с привязкой к экземпляру приложения
func (app *Application) createPublishCommand(ctx context.Context) *cobra.Command {
	var opts uploader.Options

	cmd := &cobra.Command{
		Use:   "publish [bundle dir]",
		Short: "Upload a song bundle to S3 storage",
		Long: `Upload a song bundle directory to S3 storage and add it to list.json.
The directory name is the song slug; it must contain {slug}.json and the audio files it references.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Создаем контекст с таймаутом для загрузки (10 минут)
			uploadCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			return app.publish(uploadCtx, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "song title for the catalog")
	cmd.Flags().StringVar(&opts.Artist, "artist", "", "song artist for the catalog")
	cmd.Flags().StringVar(&opts.YouTubeURL, "youtube", "", "reference YouTube video for the title and artist")

	return cmd
}

func (app *Application) publish(ctx context.Context, dir string, opts uploader.Options) error {
	if err := app.loadConfig(); err != nil {
		return err
	}

	storage, err := app.storage()
	if err != nil {
		return err
	}

	service := uploader.NewService(storage, metadata.NewExtractor(), app.Config.AwsPrefix)

	fmt.Printf("📤 Публикуем пакет песни:\n")
	fmt.Printf("   Каталог: %s\n", dir)
	fmt.Printf("   Бакет: %s\n", app.Config.AwsBucketName)
	fmt.Println()

	startTime := time.Now()
	opts.OnProgress = func(file string, bytesRead, total int64) {
		percentage := 100.0
		if total > 0 {
			percentage = float64(bytesRead) / float64(total) * 100
		}
		speed := float64(bytesRead) / time.Since(startTime).Seconds()

		fmt.Printf("\r📊 %s: %.1f%% | %s / %s | %s/s",
			file,
			percentage,
			humanize.Bytes(uint64(bytesRead)),
			humanize.Bytes(uint64(total)),
			humanize.Bytes(uint64(speed)))
		if bytesRead == total {
			fmt.Println()
			startTime = time.Now()
		}
	}

	result, err := service.Publish(ctx, dir, opts)
	if err != nil {
		return fmt.Errorf("ошибка публикации: %w", err)
	}

	fmt.Printf("\n✅ Песня опубликована: %s - %s (%s)\n", result.Info.Artist, result.Info.Title, result.Info.Slug)
	for _, file := range result.Files {
		fmt.Printf("   %-30s %10s %8s\n",
			utils.TruncateString(file.Name, 30),
			humanize.Bytes(uint64(file.Size)),
			utils.FormatClock(file.Duration))
	}
	fmt.Printf("   Описание: %s\n", result.DetailURL)
	return nil
}

// createUnpublishCommand создает команду unpublish с привязкой к экземпляру приложения
func (app *Application) createUnpublishCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "unpublish [slug]",
		Short: "Remove a song bundle from S3 storage",
		Long:  `Delete all objects of a song bundle from S3 storage and remove it from list.json.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.unpublish(ctx, args[0])
		},
	}
}

func (app *Application) unpublish(ctx context.Context, slug string) error {
	if err := app.loadConfig(); err != nil {
		return err
	}

	storage, err := app.storage()
	if err != nil {
		return err
	}

	service := uploader.NewService(storage, metadata.NewExtractor(), app.Config.AwsPrefix)

	fmt.Printf("🗑️  Снимаем с публикации: %s\n", slug)
	deleted, err := service.Unpublish(ctx, slug)
	if err != nil {
		return fmt.Errorf("ошибка снятия с публикации: %w", err)
	}

	fmt.Printf("✅ Удалено объектов: %d, запись каталога удалена\n", deleted)
	return nil
}
