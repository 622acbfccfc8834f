// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath путь к файлу конфигурации по умолчанию
const DefaultPath = "~/.remixer"

// Значения по умолчанию
const (
	DefaultCatalogURL      = "https://remixer.hazadus.ru/songs/"
	DefaultMasterVolume    = 0.8
	DefaultTickIntervalMs  = 5
	DefaultZoomWidth       = 30.0
	DefaultSpeakerBufferMs = 100
	DefaultResampleQuality = 4
)

// Config структура для хранения конфигурации приложения
type Config struct {
	CatalogURL      string  `yaml:"catalog_url"`
	MasterVolume    float64 `yaml:"master_volume"`
	TickIntervalMs  int     `yaml:"tick_interval_ms"`
	ZoomWidth       float64 `yaml:"zoom_width"`
	SpeakerBufferMs int     `yaml:"speaker_buffer_ms"`
	ResampleQuality int     `yaml:"resample_quality"`

	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`
	AwsPrefix     string `yaml:"aws_prefix"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		CatalogURL:      DefaultCatalogURL,
		MasterVolume:    DefaultMasterVolume,
		TickIntervalMs:  DefaultTickIntervalMs,
		ZoomWidth:       DefaultZoomWidth,
		SpeakerBufferMs: DefaultSpeakerBufferMs,
		ResampleQuality: DefaultResampleQuality,
	}
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Если файла нет, используются значения по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := strings.Replace(filePath, "~", home, 1)

	config := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("ошибка разбора yaml: %w", err)
	}

	// Каталог может лежать в домашней папке пользователя
	if strings.HasPrefix(config.CatalogURL, "~") {
		config.CatalogURL = strings.Replace(config.CatalogURL, "~", home, 1)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if c.CatalogURL == "" {
		return errors.New("не задан адрес каталога catalog_url")
	}
	if c.MasterVolume <= 0 || c.MasterVolume > 1 {
		return fmt.Errorf("master_volume должен быть в диапазоне (0, 1], получено %v", c.MasterVolume)
	}
	if c.TickIntervalMs <= 0 {
		return fmt.Errorf("tick_interval_ms должен быть положительным, получено %d", c.TickIntervalMs)
	}
	if c.ZoomWidth < 1 {
		return fmt.Errorf("zoom_width должен быть не меньше 1 секунды, получено %v", c.ZoomWidth)
	}
	if c.SpeakerBufferMs <= 0 {
		return fmt.Errorf("speaker_buffer_ms должен быть положительным, получено %d", c.SpeakerBufferMs)
	}
	if c.ResampleQuality < 1 || c.ResampleQuality > 64 {
		return fmt.Errorf("resample_quality должен быть в диапазоне 1..64, получено %d", c.ResampleQuality)
	}
	return nil
}

// TickInterval возвращает период такта воспроизведения
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// SpeakerBuffer возвращает размер буфера динамиков
func (c *Config) SpeakerBuffer() time.Duration {
	return time.Duration(c.SpeakerBufferMs) * time.Millisecond
}

// HasStorage сообщает, заданы ли параметры хранилища S3
func (c *Config) HasStorage() bool {
	return c.AwsBucketName != "" && c.AwsAccessKey != "" && c.AwsSecretKey != ""
}
