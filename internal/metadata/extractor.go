// Package metadata извлекает сведения о дорожках песни перед публикацией:
// имена исполнителей из тегов, длительность и размер файлов, название песни по видео
package metadata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dhowden/tag"
	gowav "github.com/go-audio/wav"
	"github.com/gopxl/beep/mp3"
	"github.com/kkdai/youtube/v2"
)

// FileInfo содержит информацию о файле дорожки
type FileInfo struct {
	Size     int64
	Duration time.Duration
}

// SongInfo название и исполнитель песни
type SongInfo struct {
	Title  string
	Artist string
}

// VideoFetcher получает описание видео по идентификатору
type VideoFetcher interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
}

// Extractor извлекает метаданные из аудио файлов и видео
type Extractor struct {
	videos VideoFetcher
}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{videos: &youtube.Client{}}
}

// NewExtractorWithFetcher создает экстрактор с заданным источником видео
func NewExtractorWithFetcher(videos VideoFetcher) *Extractor {
	return &Extractor{videos: videos}
}

// SingerName возвращает имя исполнителя дорожки: тег исполнителя,
// затем тег названия, затем имя файла
func (e *Extractor) SingerName(filePath string) string {
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		if m, err := tag.ReadFrom(file); err == nil {
			if artist := strings.TrimSpace(m.Artist()); artist != "" {
				return artist
			}
			if title := strings.TrimSpace(m.Title()); title != "" {
				return title
			}
		}
	}
	return fileNameWithoutExt(filePath)
}

// GetDuration получает длительность MP3 или WAV файла
func (e *Extractor) GetDuration(filePath string) (time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(filePath), ".wav") {
		decoder := gowav.NewDecoder(file)
		if !decoder.IsValidFile() {
			return 0, fmt.Errorf("ошибка декодирования WAV: некорректный файл %s", filePath)
		}
		if err := decoder.FwdToPCM(); err != nil {
			return 0, fmt.Errorf("ошибка декодирования WAV: %w", err)
		}
		bytesPerSecond := int64(decoder.SampleRate) * int64(decoder.NumChans) * int64(decoder.BitDepth) / 8
		if bytesPerSecond == 0 {
			return 0, fmt.Errorf("ошибка декодирования WAV: пустой формат в %s", filePath)
		}
		return time.Duration(float64(decoder.PCMLen()) / float64(bytesPerSecond) * float64(time.Second)), nil
	}

	streamer, format, err := mp3.Decode(file)
	if err != nil {
		return 0, fmt.Errorf("ошибка декодирования MP3: %w", err)
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// GetFileInfo получает информацию о файле (размер и длительность)
func (e *Extractor) GetFileInfo(filePath string) (*FileInfo, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}

	duration, err := e.GetDuration(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения длительности: %w", err)
	}

	return &FileInfo{
		Size:     fileInfo.Size(),
		Duration: duration,
	}, nil
}

// LookupVideo возвращает название и автора видео YouTube по ссылке или идентификатору
func (e *Extractor) LookupVideo(ctx context.Context, url string) (SongInfo, error) {
	id, err := ExtractVideoID(url)
	if err != nil {
		return SongInfo{}, err
	}

	video, err := e.videos.GetVideoContext(ctx, id)
	if err != nil {
		return SongInfo{}, fmt.Errorf("ошибка получения информации о видео youtube: %w", err)
	}

	return SongInfo{
		Title:  strings.TrimSpace(video.Title),
		Artist: strings.TrimSpace(video.Author),
	}, nil
}

var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/v/)([a-zA-Z0-9_-]{11})`),
}

var videoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ExtractVideoID извлекает ID видео из различных форматов YouTube URL
func ExtractVideoID(url string) (string, error) {
	for _, re := range videoURLPatterns {
		if matches := re.FindStringSubmatch(url); len(matches) > 1 {
			return matches[1], nil
		}
	}

	// Строка может быть самим идентификатором
	if videoIDPattern.MatchString(url) {
		return url, nil
	}

	return "", fmt.Errorf("ошибка извлечения ID видео из %q", url)
}

// fileNameWithoutExt возвращает имя файла без расширения
func fileNameWithoutExt(filePath string) string {
	fileName := filepath.Base(filePath)
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
