package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/song/a.mp3" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	rc, err := Open(context.Background(), server.URL+"/song/a.mp3")
	if err != nil {
		t.Fatalf("Ошибка открытия: %v", err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("Ошибка чтения: %v", err)
	}
	if string(body) != "audio-bytes" {
		t.Errorf("Ожидалось 'audio-bytes', получено %q", body)
	}

	_, err = Open(context.Background(), server.URL+"/missing.mp3")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Для 404 ожидалась ErrNotFound, получено %v", err)
	}
}

func TestOpenHTTPServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := Open(context.Background(), server.URL); err == nil {
		t.Error("Ожидалась ошибка для ответа 500")
	}
}

func TestOpenLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.wav")
	if err := os.WriteFile(path, []byte("wav"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, ref := range []string{path, "file://" + filepath.ToSlash(path)} {
		rc, err := Open(context.Background(), ref)
		if err != nil {
			t.Fatalf("Ошибка открытия %s: %v", ref, err)
		}
		body, _ := io.ReadAll(rc)
		rc.Close()
		if string(body) != "wav" {
			t.Errorf("%s: ожидалось 'wav', получено %q", ref, body)
		}
	}

	_, err := Open(context.Background(), filepath.Join(dir, "missing.wav"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Для отсутствующего файла ожидалась ErrNotFound, получено %v", err)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		base, ref, expected string
	}{
		{"https://cdn.example.com/songs/abc/abc.json", "bgm.mp3", "https://cdn.example.com/songs/abc/bgm.mp3"},
		{"https://cdn.example.com/songs/abc/abc.json", "../shared/bgm.mp3", "https://cdn.example.com/songs/shared/bgm.mp3"},
		{"https://cdn.example.com/songs/abc/abc.json", "https://other.example.com/v.mp3", "https://other.example.com/v.mp3"},
		{"file:///data/songs/abc/abc.json", "v1.wav", "file:///data/songs/abc/v1.wav"},
		{filepath.Join("data", "abc", "abc.json"), "v1.wav", filepath.Join("data", "abc", "v1.wav")},
	}

	for _, tt := range tests {
		got, err := Resolve(tt.base, tt.ref)
		if err != nil {
			t.Fatalf("Resolve(%q, %q): %v", tt.base, tt.ref, err)
		}
		if got != tt.expected {
			t.Errorf("Resolve(%q, %q) = %q, ожидалось %q", tt.base, tt.ref, got, tt.expected)
		}
	}
}
