// Package uploader публикует пакеты песен в хранилище и ведет каталог list.json
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hazadus/go-remixer/internal/catalog"
	"github.com/hazadus/go-remixer/internal/data"
	"github.com/hazadus/go-remixer/internal/metadata"
	"github.com/hazadus/go-remixer/internal/s3"
	"github.com/hazadus/go-remixer/internal/streaming"
)

// ErrNotPublished возвращается при снятии с публикации неизвестной песни
var ErrNotPublished = errors.New("песня не опубликована")

// Storage хранилище объектов
type Storage interface {
	Upload(ctx context.Context, reader io.Reader, key, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// MetadataExtractor источник сведений о дорожках и песне
type MetadataExtractor interface {
	SingerName(filePath string) string
	GetFileInfo(filePath string) (*metadata.FileInfo, error)
	LookupVideo(ctx context.Context, url string) (metadata.SongInfo, error)
}

// ProgressFunc сообщает о прогрессе загрузки файла
type ProgressFunc func(file string, bytesRead, total int64)

// Options параметры публикации
type Options struct {
	Title      string
	Artist     string
	YouTubeURL string // видео, из которого берутся незаданные название и исполнитель
	OnProgress ProgressFunc
}

// FileResult результат загрузки одного файла
type FileResult struct {
	Name     string
	Size     int64
	Duration float64 // в секундах
	URL      string
}

// PublishResult содержит результат публикации
type PublishResult struct {
	Info      data.SongInfo
	DetailURL string
	Files     []FileResult
}

// Service управляет публикацией пакетов песен
type Service struct {
	storage   Storage
	extractor MetadataExtractor
	prefix    string
}

// NewService создает новый сервис публикации. Объекты размещаются под prefix.
func NewService(storage Storage, extractor MetadataExtractor, prefix string) *Service {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Service{
		storage:   storage,
		extractor: extractor,
		prefix:    prefix,
	}
}

// Publish загружает пакет песни из каталога dir: описание {slug}.json и
// аудиофайлы, на которые оно ссылается. Идентификатор песни - имя каталога.
func (s *Service) Publish(ctx context.Context, dir string, opts Options) (*PublishResult, error) {
	slug := filepath.Base(filepath.Clean(dir))
	if !catalog.ValidSlug(slug) {
		return nil, fmt.Errorf("%q: %w", slug, catalog.ErrInvalidSlug)
	}

	detail, err := s.readDetail(dir, slug)
	if err != nil {
		return nil, err
	}

	info, err := s.songInfo(ctx, slug, detail, opts)
	if err != nil {
		return nil, err
	}

	result := &PublishResult{Info: info}
	refs := append([]string{detail.BGM}, detail.Vocals...)
	for _, ref := range refs {
		file, err := s.uploadFile(ctx, dir, slug, ref, opts.OnProgress)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, *file)
	}

	body, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации описания: %w", err)
	}
	result.DetailURL, err = s.storage.Upload(ctx, bytes.NewReader(body), s.key(slug, slug+".json"), "application/json")
	if err != nil {
		return nil, err
	}

	if err := s.updateCatalog(ctx, func(c data.Catalog) (data.Catalog, error) {
		return c.Upsert(info), nil
	}); err != nil {
		return nil, err
	}

	log.Printf("Опубликована песня %s: %d файлов", slug, len(result.Files))
	return result, nil
}

// Unpublish удаляет объекты пакета песни и ее запись в каталоге
func (s *Service) Unpublish(ctx context.Context, slug string) (int, error) {
	if !catalog.ValidSlug(slug) {
		return 0, fmt.Errorf("%q: %w", slug, catalog.ErrInvalidSlug)
	}

	keys, err := s.storage.List(ctx, s.key(slug)+"/")
	if err != nil {
		return 0, err
	}
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			return 0, err
		}
	}

	listed := false
	if err := s.updateCatalog(ctx, func(c data.Catalog) (data.Catalog, error) {
		c, listed = c.Remove(slug)
		return c, nil
	}); err != nil {
		return len(keys), err
	}

	if !listed && len(keys) == 0 {
		return 0, fmt.Errorf("%q: %w", slug, ErrNotPublished)
	}
	return len(keys), nil
}

// readDetail читает описание песни и дополняет недостающие имена исполнителей
func (s *Service) readDetail(dir, slug string) (*data.SongDetail, error) {
	raw, err := os.ReadFile(filepath.Join(dir, slug+".json"))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения описания песни: %w", err)
	}

	detail := &data.SongDetail{}
	if err := json.Unmarshal(raw, detail); err != nil {
		return nil, fmt.Errorf("ошибка разбора описания песни: %w", err)
	}

	// Имена исполнителей можно не указывать: они берутся из тегов дорожек
	if len(detail.Artists) == 0 {
		for _, ref := range detail.Vocals {
			detail.Artists = append(detail.Artists, s.extractor.SingerName(filepath.Join(dir, filepath.FromSlash(ref))))
		}
	}

	if err := detail.Validate(); err != nil {
		return nil, err
	}
	for _, ref := range append([]string{detail.BGM}, detail.Vocals...) {
		if !isBundleRef(ref) {
			return nil, fmt.Errorf("%w: ссылка %q ведет за пределы пакета", data.ErrInvalidDetail, ref)
		}
	}
	return detail, nil
}

// songInfo формирует запись каталога из параметров, видео и описания песни
func (s *Service) songInfo(ctx context.Context, slug string, detail *data.SongDetail, opts Options) (data.SongInfo, error) {
	info := data.SongInfo{Title: opts.Title, Artist: opts.Artist, Slug: slug}

	if opts.YouTubeURL != "" && (info.Title == "" || info.Artist == "") {
		video, err := s.extractor.LookupVideo(ctx, opts.YouTubeURL)
		if err != nil {
			return data.SongInfo{}, err
		}
		if info.Title == "" {
			info.Title = video.Title
		}
		if info.Artist == "" {
			info.Artist = video.Artist
		}
	}

	if info.Title == "" {
		info.Title = slug
	}
	if info.Artist == "" {
		info.Artist = strings.Join(detail.Artists, ", ")
	}
	return info, nil
}

func (s *Service) uploadFile(ctx context.Context, dir, slug, ref string, onProgress ProgressFunc) (*FileResult, error) {
	filePath := filepath.Join(dir, filepath.FromSlash(ref))

	fileInfo, err := s.extractor.GetFileInfo(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о файле %s: %w", ref, err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	// Создаем reader с отслеживанием прогресса
	var reader io.Reader = file
	if onProgress != nil {
		reader = &ProgressReader{
			Reader: file,
			Size:   fileInfo.Size,
			OnProgress: func(bytesRead int64) {
				onProgress(ref, bytesRead, fileInfo.Size)
			},
		}
	}

	url, err := s.storage.Upload(ctx, reader, s.key(slug, ref), contentType(ref))
	if err != nil {
		return nil, err
	}

	return &FileResult{
		Name:     ref,
		Size:     fileInfo.Size,
		Duration: fileInfo.Duration.Seconds(),
		URL:      url,
	}, nil
}

// updateCatalog читает list.json, изменяет его и записывает обратно
func (s *Service) updateCatalog(ctx context.Context, update func(data.Catalog) (data.Catalog, error)) error {
	key := s.prefix + catalog.ListFile

	songs := data.Catalog{}
	raw, err := s.storage.Download(ctx, key)
	switch {
	case errors.Is(err, s3.ErrNotFound):
		// Первая публикация: каталога еще нет
	case err != nil:
		return err
	default:
		if songs, err = data.DecodeCatalog(bytes.NewReader(raw)); err != nil {
			return err
		}
	}

	if songs, err = update(songs); err != nil {
		return err
	}

	body, err := json.MarshalIndent(songs, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации каталога: %w", err)
	}
	if _, err := s.storage.Upload(ctx, bytes.NewReader(body), key, "application/json"); err != nil {
		return err
	}
	return nil
}

func (s *Service) key(parts ...string) string {
	return s.prefix + path.Join(parts...)
}

// isBundleRef сообщает, что ссылка указывает на файл внутри пакета
func isBundleRef(ref string) bool {
	if ref == "" || streaming.IsRemote(ref) || strings.HasPrefix(ref, "file://") {
		return false
	}
	clean := path.Clean(filepath.ToSlash(ref))
	return !path.IsAbs(clean) && clean != ".." && !strings.HasPrefix(clean, "../")
}

func contentType(ref string) string {
	switch strings.ToLower(path.Ext(ref)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

// ProgressReader структура для отслеживания прогресса чтения
type ProgressReader struct {
	io.Reader
	Size       int64
	OnProgress func(int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil {
		pr.OnProgress(pr.bytesRead)
	}
	return n, err
}
