package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/hazadus/go-remixer/internal/streaming"
)

const testList = `[
  {"title": "Song A", "artist": "Group", "slug": "song-a"},
  {"title": "Song B", "artist": "Group", "slug": "song-b"}
]`

const testDetail = `{
  "bgm": "bgm.mp3",
  "vocals": ["v0.mp3", "https://cdn.example.com/v1.mp3"],
  "artists": ["Alice", "Bob"],
  "segments": [
    {"start": 0, "end": 5, "singers": [0]},
    {"start": 5, "end": 9.5, "singers": [0, 1]}
  ]
}`

// createTestCatalog создает каталог на диске
func createTestCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ListFile), []byte(testList), 0644); err != nil {
		t.Fatal(err)
	}
	songDir := filepath.Join(dir, "song-a")
	if err := os.MkdirAll(songDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(songDir, "song-a.json"), []byte(testDetail), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(songDir, "bgm.mp3"), []byte("bgm"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestValidSlug(t *testing.T) {
	valid := []string{"song-a", "abc_123", "v1.2"}
	invalid := []string{"", "../etc", "a/b", "a\\b", ".hidden", "a..b", "песня"}

	for _, slug := range valid {
		if !ValidSlug(slug) {
			t.Errorf("Идентификатор %q должен быть допустимым", slug)
		}
	}
	for _, slug := range invalid {
		if ValidSlug(slug) {
			t.Errorf("Идентификатор %q должен быть недопустимым", slug)
		}
	}
}

func TestListAndFind(t *testing.T) {
	client, err := New(createTestCatalog(t))
	if err != nil {
		t.Fatalf("Ошибка создания клиента: %v", err)
	}

	songs, err := client.List(context.Background())
	if err != nil {
		t.Fatalf("Ошибка загрузки списка: %v", err)
	}
	if len(songs) != 2 || songs[1].Slug != "song-b" {
		t.Errorf("Неверный список песен: %+v", songs)
	}

	info, err := client.Find(context.Background(), "song-a")
	if err != nil {
		t.Fatalf("Ошибка поиска: %v", err)
	}
	if info.Title != "Song A" {
		t.Errorf("Ожидалось название 'Song A', получено %q", info.Title)
	}

	if _, err := client.Find(context.Background(), "missing"); !errors.Is(err, ErrSongNotFound) {
		t.Errorf("Ожидалась ErrSongNotFound, получено %v", err)
	}
	if _, err := client.Find(context.Background(), ""); !errors.Is(err, ErrInvalidSlug) {
		t.Errorf("Ожидалась ErrInvalidSlug, получено %v", err)
	}
}

func TestDetailResolvesReferences(t *testing.T) {
	dir := createTestCatalog(t)
	client, _ := New(dir)

	detail, err := client.Detail(context.Background(), "song-a")
	if err != nil {
		t.Fatalf("Ошибка загрузки описания: %v", err)
	}

	if detail.BGM != filepath.Join(dir, "song-a", "bgm.mp3") {
		t.Errorf("Ссылка на фон разрешена неверно: %s", detail.BGM)
	}
	if detail.Vocals[0] != filepath.Join(dir, "song-a", "v0.mp3") {
		t.Errorf("Ссылка на вокал разрешена неверно: %s", detail.Vocals[0])
	}
	if detail.Vocals[1] != "https://cdn.example.com/v1.mp3" {
		t.Errorf("Абсолютная ссылка не должна меняться: %s", detail.Vocals[1])
	}
	if len(detail.Segments) != 2 || detail.Segments[1].End != 9.5 {
		t.Errorf("Неверные отрезки: %+v", detail.Segments)
	}

	rc, err := client.OpenAudio(context.Background(), detail.BGM)
	if err != nil {
		t.Fatalf("Ошибка открытия аудио: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "bgm" {
		t.Errorf("Ожидалось содержимое 'bgm', получено %q", body)
	}
}

func TestDetailErrors(t *testing.T) {
	dir := createTestCatalog(t)
	client, _ := New(dir)

	if _, err := client.Detail(context.Background(), "song-b"); !errors.Is(err, ErrSongNotFound) {
		t.Errorf("Для отсутствующего описания ожидалась ErrSongNotFound, получено %v", err)
	}
	if _, err := client.Detail(context.Background(), "../song-a"); !errors.Is(err, ErrInvalidSlug) {
		t.Errorf("Ожидалась ErrInvalidSlug, получено %v", err)
	}

	bad := filepath.Join(dir, "broken")
	_ = os.MkdirAll(bad, 0755)
	_ = os.WriteFile(filepath.Join(bad, "broken.json"), []byte(`{"bgm": "", "vocals": []}`), 0644)
	if _, err := client.Detail(context.Background(), "broken"); err == nil {
		t.Error("Ожидалась ошибка для некорректного описания")
	}
}

func TestDetailOverHTTPIsCached(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/songs/list.json":
			_, _ = w.Write([]byte(testList))
		case "/songs/song-a/song-a.json":
			_, _ = w.Write([]byte(testDetail))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := NewWithOpener(server.URL+"/songs/", streaming.Open)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		detail, err := client.Detail(context.Background(), "song-a")
		if err != nil {
			t.Fatalf("Ошибка загрузки описания: %v", err)
		}
		if detail.BGM != server.URL+"/songs/song-a/bgm.mp3" {
			t.Errorf("Ссылка на фон разрешена неверно: %s", detail.BGM)
		}
	}
	if requests.Load() != 1 {
		t.Errorf("Описание должно загружаться один раз, запросов: %d", requests.Load())
	}

	if _, err := client.Detail(context.Background(), "song-b"); !errors.Is(err, ErrSongNotFound) {
		t.Errorf("Для 404 ожидалась ErrSongNotFound, получено %v", err)
	}
}
