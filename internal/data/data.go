// Package data описывает форматы каталога песен и детальной информации о песне
package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidDetail возвращается, если детальная информация о песне некорректна
var ErrInvalidDetail = errors.New("некорректное описание песни")

// SongInfo запись каталога (list.json)
type SongInfo struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Slug   string `json:"slug"`
}

// SegmentInfo отрезок песни с исходным набором поющих
type SegmentInfo struct {
	Start   float64 `json:"start"`   // Начало в секундах
	End     float64 `json:"end"`     // Конец в секундах
	Singers []int   `json:"singers"` // Индексы исполнителей
}

// SongDetail детальная информация о песне ({slug}/{slug}.json)
type SongDetail struct {
	BGM      string        `json:"bgm"`     // Ссылка на минусовку
	Vocals   []string      `json:"vocals"`  // Ссылки на вокальные дорожки
	Artists  []string      `json:"artists"` // Имена исполнителей, по одному на дорожку
	Segments []SegmentInfo `json:"segments"`
}

// Catalog список песен
type Catalog []SongInfo

// DecodeCatalog читает каталог из JSON
func DecodeCatalog(r io.Reader) (Catalog, error) {
	var catalog Catalog
	if err := json.NewDecoder(r).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("ошибка разбора каталога: %w", err)
	}
	return catalog, nil
}

// DecodeDetail читает и проверяет детальную информацию о песне
func DecodeDetail(r io.Reader) (*SongDetail, error) {
	detail := &SongDetail{}
	if err := json.NewDecoder(r).Decode(detail); err != nil {
		return nil, fmt.Errorf("ошибка разбора описания песни: %w", err)
	}
	if err := detail.Validate(); err != nil {
		return nil, err
	}
	return detail, nil
}

// Find возвращает запись каталога по slug
func (c Catalog) Find(slug string) (*SongInfo, bool) {
	for i := range c {
		if c[i].Slug == slug {
			return &c[i], true
		}
	}
	return nil, false
}

// Upsert добавляет запись или заменяет существующую с тем же slug
func (c Catalog) Upsert(info SongInfo) Catalog {
	for i := range c {
		if c[i].Slug == info.Slug {
			c[i] = info
			return c
		}
	}
	return append(c, info)
}

// Remove удаляет запись по slug и сообщает, была ли она найдена
func (c Catalog) Remove(slug string) (Catalog, bool) {
	for i := range c {
		if c[i].Slug == slug {
			return append(c[:i:i], c[i+1:]...), true
		}
	}
	return c, false
}

// SingerCount возвращает количество исполнителей
func (d *SongDetail) SingerCount() int {
	return len(d.Vocals)
}

// Validate проверяет инварианты описания песни
func (d *SongDetail) Validate() error {
	if d.BGM == "" {
		return fmt.Errorf("%w: не указана минусовка", ErrInvalidDetail)
	}
	if len(d.Vocals) == 0 {
		return fmt.Errorf("%w: нет вокальных дорожек", ErrInvalidDetail)
	}
	if len(d.Artists) != len(d.Vocals) {
		return fmt.Errorf("%w: исполнителей %d, дорожек %d", ErrInvalidDetail, len(d.Artists), len(d.Vocals))
	}

	prevEnd := 0.0
	for i, seg := range d.Segments {
		if seg.Start < 0 || seg.Start >= seg.End {
			return fmt.Errorf("%w: отрезок %d [%.3f, %.3f)", ErrInvalidDetail, i, seg.Start, seg.End)
		}
		if seg.Start < prevEnd {
			return fmt.Errorf("%w: отрезок %d перекрывает предыдущий", ErrInvalidDetail, i)
		}
		for _, singer := range seg.Singers {
			if singer < 0 || singer >= len(d.Vocals) {
				return fmt.Errorf("%w: отрезок %d ссылается на исполнителя %d", ErrInvalidDetail, i, singer)
			}
		}
		prevEnd = seg.End
	}
	return nil
}

// HasSinger сообщает, поет ли исполнитель в отрезке по умолчанию
func (s SegmentInfo) HasSinger(singer int) bool {
	for _, v := range s.Singers {
		if v == singer {
			return true
		}
	}
	return false
}
