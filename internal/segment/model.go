package segment

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/hazadus/go-remixer/internal/data"
)

// Model хранит текущую разбивку песни, изменяемую пользователем
type Model struct {
	detail   *data.SongDetail
	segments []Segment
	rng      *rand.Rand
}

// NewModel создает модель с разбивкой по умолчанию
func NewModel(detail *data.SongDetail, rng *rand.Rand) *Model {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	segments, _ := Build(Preset{Mode: Default}, detail, rng)
	return &Model{
		detail:   detail,
		segments: segments,
		rng:      rng,
	}
}

// Apply заменяет разбивку целиком по предустановке
func (m *Model) Apply(preset Preset) error {
	segments, err := Build(preset, m.detail, m.rng)
	if err != nil {
		return err
	}
	m.segments = segments
	return nil
}

// Toggle переключает слышимость одного исполнителя в одном отрезке
func (m *Model) Toggle(segmentIndex, singerIndex int) error {
	if segmentIndex < 0 || segmentIndex >= len(m.segments) {
		return fmt.Errorf("%w: отрезок %d из %d", ErrIndexOutOfRange, segmentIndex, len(m.segments))
	}
	flags := m.segments[segmentIndex].Flags
	if singerIndex < 0 || singerIndex >= len(flags) {
		return fmt.Errorf("%w: исполнитель %d из %d", ErrIndexOutOfRange, singerIndex, len(flags))
	}
	flags[singerIndex] = !flags[singerIndex]
	return nil
}

// Segments возвращает текущие отрезки без копирования; вызывающий не должен их менять
func (m *Model) Segments() []Segment {
	return m.segments
}

// Len возвращает количество отрезков
func (m *Model) Len() int {
	return len(m.segments)
}

// SingerCount возвращает количество исполнителей
func (m *Model) SingerCount() int {
	return m.detail.SingerCount()
}
