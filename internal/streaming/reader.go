// Package streaming содержит компоненты для чтения каталога и аудио по сети или с диска
package streaming

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBufferSize размер буфера чтения
const DefaultBufferSize = 256 * 1024

// ErrNotFound возвращается, если ресурс отсутствует
var ErrNotFound = os.ErrNotExist

// Reader представляет буферизованный поток для чтения ответа HTTP
type Reader struct {
	reader *bufio.Reader
	resp   *http.Response
}

var client = &http.Client{
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       300 * time.Second,
		MaxIdleConns:          10,
		// Стемы песни загружаются параллельно с одного хоста
		MaxIdleConnsPerHost:   8,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

// NewReader выполняет GET-запрос и возвращает буферизованный поток ответа
func NewReader(ctx context.Context, url string, bufferSize int) (*Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("User-Agent", "go-remixer/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("ошибка HTTP: %s", resp.Status)
	}

	return &Reader{
		reader: bufio.NewReaderSize(resp.Body, bufferSize),
		resp:   resp,
	}, nil
}

// Read реализует интерфейс io.Reader
func (sr *Reader) Read(p []byte) (n int, err error) {
	return sr.reader.Read(p)
}

// Close закрывает соединение
func (sr *Reader) Close() error {
	return sr.resp.Body.Close()
}

// Open открывает ресурс по ссылке: http(s)://, file:// или путь на диске
func Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if IsRemote(ref) {
		return NewReader(ctx, ref, DefaultBufferSize)
	}

	f, err := os.Open(LocalPath(ref))
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	return f, nil
}

// IsRemote сообщает, указывает ли ссылка на HTTP-ресурс
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// LocalPath превращает file:// ссылку в путь на диске
func LocalPath(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Scheme == "file" {
		return filepath.FromSlash(u.Path)
	}
	return ref
}

// Resolve разрешает ссылку ref относительно ресурса base
func Resolve(base, ref string) (string, error) {
	if IsRemote(ref) || strings.HasPrefix(ref, "file://") || filepath.IsAbs(ref) {
		return ref, nil
	}

	if IsRemote(base) || strings.HasPrefix(base, "file://") {
		b, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("ошибка разбора адреса %q: %w", base, err)
		}
		r, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("ошибка разбора ссылки %q: %w", ref, err)
		}
		return b.ResolveReference(r).String(), nil
	}

	return filepath.Join(filepath.Dir(base), filepath.FromSlash(ref)), nil
}
