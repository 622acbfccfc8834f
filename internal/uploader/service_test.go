package uploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/hazadus/go-remixer/internal/catalog"
	"github.com/hazadus/go-remixer/internal/data"
	"github.com/hazadus/go-remixer/internal/metadata"
	"github.com/hazadus/go-remixer/internal/s3"
)

// memoryStorage хранилище объектов в памяти
type memoryStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) Upload(_ context.Context, reader io.Reader, key, contentType string) (string, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.objects[key] = body
	m.types[key] = contentType
	return "https://storage.example.com/" + key, nil
}

func (m *memoryStorage) Download(_ context.Context, key string) ([]byte, error) {
	body, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, s3.ErrNotFound)
	}
	return body, nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memoryStorage) catalog(t *testing.T, key string) data.Catalog {
	t.Helper()
	songs, err := data.DecodeCatalog(bytes.NewReader(m.objects[key]))
	if err != nil {
		t.Fatalf("Ошибка разбора каталога: %v", err)
	}
	return songs
}

// fakeExtractor возвращает размер файла и фиксированную длительность
type fakeExtractor struct {
	video     metadata.SongInfo
	videoErr  error
	lookedUp  string
	durations time.Duration
}

func (f *fakeExtractor) SingerName(filePath string) string {
	return "tag:" + filepath.Base(filePath)
}

func (f *fakeExtractor) GetFileInfo(filePath string) (*metadata.FileInfo, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	return &metadata.FileInfo{Size: stat.Size(), Duration: f.durations}, nil
}

func (f *fakeExtractor) LookupVideo(_ context.Context, url string) (metadata.SongInfo, error) {
	f.lookedUp = url
	return f.video, f.videoErr
}

// writeBundle создает каталог пакета песни с описанием и аудиофайлами
func writeBundle(t *testing.T, slug, detail string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), slug)
	if err := os.MkdirAll(filepath.Join(dir, "stems"), 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"bgm.mp3":     "backing",
		"stems/a.wav": "vocal-a",
		"stems/b.wav": "vocal-b",
	}
	files[slug+".json"] = detail
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const bundleDetail = `{
  "bgm": "bgm.mp3",
  "vocals": ["stems/a.wav", "stems/b.wav"],
  "artists": ["Alice", "Bob"],
  "segments": [{"start": 0, "end": 10, "singers": [0]}, {"start": 10, "end": 20, "singers": [0, 1]}]
}`

func TestPublish(t *testing.T) {
	storage := newMemoryStorage()
	extractor := &fakeExtractor{durations: 20 * time.Second}
	service := NewService(storage, extractor, "songs")
	dir := writeBundle(t, "duet", bundleDetail)

	progressed := map[string]bool{}
	result, err := service.Publish(context.Background(), dir, Options{
		Title:  "Duet",
		Artist: "Group",
		OnProgress: func(file string, bytesRead, total int64) {
			if bytesRead == total {
				progressed[file] = true
			}
		},
	})
	if err != nil {
		t.Fatalf("Ошибка публикации: %v", err)
	}

	for _, key := range []string{"songs/duet/bgm.mp3", "songs/duet/stems/a.wav", "songs/duet/stems/b.wav", "songs/duet/duet.json", "songs/list.json"} {
		if _, ok := storage.objects[key]; !ok {
			t.Errorf("Объект %s не загружен", key)
		}
	}
	if storage.types["songs/duet/bgm.mp3"] != "audio/mpeg" || storage.types["songs/duet/stems/a.wav"] != "audio/wav" {
		t.Errorf("Неверные типы содержимого: %v", storage.types)
	}
	if string(storage.objects["songs/duet/stems/b.wav"]) != "vocal-b" {
		t.Error("Содержимое дорожки загружено неверно")
	}

	if len(result.Files) != 3 || result.Files[0].Size != int64(len("backing")) || result.Files[0].Duration != 20 {
		t.Errorf("Неверные сведения о файлах: %+v", result.Files)
	}
	if result.DetailURL != "https://storage.example.com/songs/duet/duet.json" {
		t.Errorf("Неверный адрес описания: %s", result.DetailURL)
	}
	if len(progressed) != 3 {
		t.Errorf("Ожидался прогресс по 3 файлам, получено %v", progressed)
	}

	detail, err := data.DecodeDetail(bytes.NewReader(storage.objects["songs/duet/duet.json"]))
	if err != nil {
		t.Fatalf("Опубликованное описание некорректно: %v", err)
	}
	if detail.Vocals[1] != "stems/b.wav" {
		t.Errorf("Ссылки в описании должны оставаться относительными: %v", detail.Vocals)
	}

	songs := storage.catalog(t, "songs/list.json")
	expected := data.SongInfo{Title: "Duet", Artist: "Group", Slug: "duet"}
	if len(songs) != 1 || songs[0] != expected {
		t.Errorf("Неверный каталог: %+v", songs)
	}
}

func TestPublishUpdatesExistingEntry(t *testing.T) {
	storage := newMemoryStorage()
	storage.objects["list.json"] = []byte(`[{"title":"Other","artist":"X","slug":"other"},{"title":"Old","artist":"Y","slug":"duet"}]`)
	service := NewService(storage, &fakeExtractor{}, "")
	dir := writeBundle(t, "duet", bundleDetail)

	if _, err := service.Publish(context.Background(), dir, Options{Title: "New"}); err != nil {
		t.Fatalf("Ошибка публикации: %v", err)
	}

	songs := storage.catalog(t, "list.json")
	if len(songs) != 2 {
		t.Fatalf("Ожидалось 2 песни, получено %d", len(songs))
	}
	if songs[1].Title != "New" || songs[1].Artist != "Alice, Bob" {
		t.Errorf("Запись должна заменяться: %+v", songs[1])
	}
}

func TestPublishFromVideoAndTags(t *testing.T) {
	storage := newMemoryStorage()
	extractor := &fakeExtractor{video: metadata.SongInfo{Title: "Video Title", Artist: "Channel"}}
	service := NewService(storage, extractor, "")
	dir := writeBundle(t, "duet", `{"bgm":"bgm.mp3","vocals":["stems/a.wav","stems/b.wav"],"segments":[]}`)

	result, err := service.Publish(context.Background(), dir, Options{Artist: "Group", YouTubeURL: "https://youtu.be/dQw4w9WgXcQ"})
	if err != nil {
		t.Fatalf("Ошибка публикации: %v", err)
	}
	if extractor.lookedUp != "https://youtu.be/dQw4w9WgXcQ" {
		t.Error("Ожидался запрос сведений о видео")
	}
	if result.Info.Title != "Video Title" || result.Info.Artist != "Group" {
		t.Errorf("Заданные параметры важнее видео: %+v", result.Info)
	}

	detail, err := data.DecodeDetail(bytes.NewReader(storage.objects["duet/duet.json"]))
	if err != nil {
		t.Fatalf("Опубликованное описание некорректно: %v", err)
	}
	if len(detail.Artists) != 2 || detail.Artists[0] != "tag:a.wav" {
		t.Errorf("Имена исполнителей должны браться из тегов: %v", detail.Artists)
	}
}

func TestPublishRejectsInvalidBundles(t *testing.T) {
	tests := []struct {
		name   string
		slug   string
		detail string
		want   error
	}{
		{"неверный идентификатор", "bad slug", bundleDetail, catalog.ErrInvalidSlug},
		{"ссылка за пределы пакета", "duet", `{"bgm":"../bgm.mp3","vocals":["stems/a.wav"],"artists":["A"],"segments":[]}`, data.ErrInvalidDetail},
		{"внешняя ссылка", "duet", `{"bgm":"https://cdn.example.com/bgm.mp3","vocals":["stems/a.wav"],"artists":["A"],"segments":[]}`, data.ErrInvalidDetail},
		{"перекрытие отрезков", "duet", `{"bgm":"bgm.mp3","vocals":["stems/a.wav"],"artists":["A"],"segments":[{"start":0,"end":5,"singers":[0]},{"start":4,"end":6,"singers":[0]}]}`, data.ErrInvalidDetail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newMemoryStorage()
			service := NewService(storage, &fakeExtractor{}, "")
			dir := writeBundle(t, tt.slug, tt.detail)

			_, err := service.Publish(context.Background(), dir, Options{})
			if !errors.Is(err, tt.want) {
				t.Errorf("Ожидалась ошибка %v, получено %v", tt.want, err)
			}
			if len(storage.objects) != 0 {
				t.Errorf("При ошибке ничего не должно загружаться: %v", storage.objects)
			}
		})
	}
}

func TestUnpublish(t *testing.T) {
	storage := newMemoryStorage()
	service := NewService(storage, &fakeExtractor{}, "songs/")
	dir := writeBundle(t, "duet", bundleDetail)
	if _, err := service.Publish(context.Background(), dir, Options{}); err != nil {
		t.Fatalf("Ошибка публикации: %v", err)
	}

	deleted, err := service.Unpublish(context.Background(), "duet")
	if err != nil {
		t.Fatalf("Ошибка снятия с публикации: %v", err)
	}
	if deleted != 4 {
		t.Errorf("Ожидалось удаление 4 объектов, удалено %d", deleted)
	}
	if len(storage.objects) != 1 {
		t.Errorf("Должен остаться только каталог: %v", storage.objects)
	}
	if songs := storage.catalog(t, "songs/list.json"); len(songs) != 0 {
		t.Errorf("Каталог должен быть пуст: %+v", songs)
	}

	if _, err := service.Unpublish(context.Background(), "duet"); !errors.Is(err, ErrNotPublished) {
		t.Errorf("Ожидалась ErrNotPublished, получено %v", err)
	}
	if _, err := service.Unpublish(context.Background(), "../x"); !errors.Is(err, catalog.ErrInvalidSlug) {
		t.Errorf("Ожидалась ErrInvalidSlug, получено %v", err)
	}
}
