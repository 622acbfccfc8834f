// Package catalog загружает список песен и описания песен из каталога
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hazadus/go-remixer/internal/data"
	"github.com/hazadus/go-remixer/internal/streaming"
)

var (
	// ErrInvalidSlug возвращается для пустого или недопустимого идентификатора песни
	ErrInvalidSlug = errors.New("недопустимый идентификатор песни")
	// ErrSongNotFound возвращается, если песни нет в каталоге
	ErrSongNotFound = errors.New("песня не найдена")
)

// ListFile имя файла со списком песен
const ListFile = "list.json"

// DefaultCacheSize количество описаний песен в кэше
const DefaultCacheSize = 32

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidSlug проверяет, что идентификатор - один сегмент пути
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug) && !strings.Contains(slug, "..")
}

// OpenFunc открывает ресурс по ссылке
type OpenFunc func(ctx context.Context, ref string) (io.ReadCloser, error)

// Client читает каталог по адресу http(s)://, file:// или из каталога на диске
type Client struct {
	base  string
	open  OpenFunc
	cache *lru.Cache[string, *data.SongDetail]
}

// New создает клиент каталога
func New(base string) (*Client, error) {
	return NewWithOpener(base, streaming.Open)
}

// NewWithOpener создает клиент каталога с заданной функцией открытия ресурсов
func NewWithOpener(base string, open OpenFunc) (*Client, error) {
	if base == "" {
		return nil, errors.New("адрес каталога не задан")
	}
	cache, err := lru.New[string, *data.SongDetail](DefaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания кэша: %w", err)
	}
	return &Client{base: base, open: open, cache: cache}, nil
}

// Base возвращает адрес каталога
func (c *Client) Base() string {
	return c.base
}

// List загружает список песен
func (c *Client) List(ctx context.Context) (data.Catalog, error) {
	rc, err := c.open(ctx, c.join(ListFile))
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки списка песен: %w", err)
	}
	defer rc.Close()

	catalog, err := data.DecodeCatalog(rc)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора списка песен: %w", err)
	}
	return catalog, nil
}

// Find ищет песню в списке по идентификатору
func (c *Client) Find(ctx context.Context, slug string) (*data.SongInfo, error) {
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("%q: %w", slug, ErrInvalidSlug)
	}
	catalog, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	info, ok := catalog.Find(slug)
	if !ok {
		return nil, fmt.Errorf("%q: %w", slug, ErrSongNotFound)
	}
	return info, nil
}

// Detail загружает описание песни. Ссылки на аудио в результате уже
// разрешены относительно расположения описания.
func (c *Client) Detail(ctx context.Context, slug string) (*data.SongDetail, error) {
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("%q: %w", slug, ErrInvalidSlug)
	}
	if detail, ok := c.cache.Get(slug); ok {
		return detail, nil
	}

	location := c.DetailLocation(slug)
	rc, err := c.open(ctx, location)
	if err != nil {
		if errors.Is(err, streaming.ErrNotFound) {
			return nil, fmt.Errorf("%q: %w", slug, ErrSongNotFound)
		}
		return nil, fmt.Errorf("ошибка загрузки описания песни: %w", err)
	}
	defer rc.Close()

	detail, err := data.DecodeDetail(rc)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора описания песни %q: %w", slug, err)
	}

	if detail.BGM, err = streaming.Resolve(location, detail.BGM); err != nil {
		return nil, err
	}
	for i, ref := range detail.Vocals {
		if detail.Vocals[i], err = streaming.Resolve(location, ref); err != nil {
			return nil, err
		}
	}

	c.cache.Add(slug, detail)
	return detail, nil
}

// DetailLocation возвращает расположение описания песни
func (c *Client) DetailLocation(slug string) string {
	return c.join(slug, slug+".json")
}

// OpenAudio открывает аудиофайл по разрешенной ссылке
func (c *Client) OpenAudio(ctx context.Context, ref string) (io.ReadCloser, error) {
	return c.open(ctx, ref)
}

func (c *Client) join(parts ...string) string {
	if streaming.IsRemote(c.base) || strings.HasPrefix(c.base, "file://") {
		return strings.TrimSuffix(c.base, "/") + "/" + strings.Join(parts, "/")
	}
	return filepath.Join(append([]string{c.base}, parts...)...)
}
