package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazadus/go-remixer/internal/catalog"
	"github.com/hazadus/go-remixer/internal/config"
	"github.com/hazadus/go-remixer/internal/s3"
	"github.com/hazadus/go-remixer/internal/uploader"
)

// Application хранит состояние приложения, общее для всех команд
type Application struct {
	Config     *config.Config
	ConfigPath string
	Debug      bool

	// Storage хранилище для публикации; если не задано, создается из конфигурации
	Storage uploader.Storage
}

// NewApplication создает приложение с путем к конфигурации по умолчанию
func NewApplication() *Application {
	return &Application{ConfigPath: config.DefaultPath}
}

// loadConfig загружает конфигурацию, если она еще не загружена
func (app *Application) loadConfig() error {
	if app.Config != nil {
		return nil
	}
	cfg, err := config.LoadConfig(app.ConfigPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	app.Config = cfg
	return nil
}

// catalog создает клиент каталога по адресу из конфигурации
func (app *Application) catalog() (*catalog.Client, error) {
	client, err := catalog.New(app.Config.CatalogURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента каталога: %w", err)
	}
	return client, nil
}

// storage возвращает хранилище для публикации
func (app *Application) storage() (uploader.Storage, error) {
	if app.Storage != nil {
		return app.Storage, nil
	}
	if !app.Config.HasStorage() {
		return nil, fmt.Errorf("не заданы параметры хранилища: aws_bucket_name, aws_access_key, aws_secret_key в %s", app.ConfigPath)
	}

	storage, err := s3.NewStorage(&s3.Config{
		Region:     app.Config.AwsRegion,
		AccessKey:  app.Config.AwsAccessKey,
		SecretKey:  app.Config.AwsSecretKey,
		Endpoint:   app.Config.AwsEndpoint,
		BucketName: app.Config.AwsBucketName,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания хранилища S3: %w", err)
	}
	app.Storage = storage
	return storage, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApplication()
	if err := app.createRootCommand(ctx).Execute(); err != nil {
		// cobra уже вывел ошибку
		stop()
		os.Exit(1)
	}
}
