// Package segment содержит модель разбивки песни на отрезки и выбор поющих исполнителей
package segment

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/hazadus/go-remixer/internal/data"
)

// ErrIndexOutOfRange возвращается при обращении к несуществующему отрезку или исполнителю
var ErrIndexOutOfRange = errors.New("индекс вне диапазона")

// Бонусы непрерывности для ShuffleMarkov
const (
	markovBonusPrev1 = 0.8
	markovBonusPrev2 = 0.4
)

// Segment отрезок с флагами слышимости исполнителей
type Segment struct {
	Start float64
	End   float64
	Flags []bool // По одному флагу на исполнителя, true - слышен
}

// Contains сообщает, попадает ли момент времени в [Start, End)
func (s Segment) Contains(t float64) bool {
	return s.Start <= t && t < s.End
}

// AudibleCount возвращает количество слышимых исполнителей
func (s Segment) AudibleCount() int {
	count := 0
	for _, f := range s.Flags {
		if f {
			count++
		}
	}
	return count
}

// Mode режим предустановки
type Mode int

const (
	// Default - исходный состав исполнителей
	Default Mode = iota
	// Clear - все исполнители выключены
	Clear
	// Solo - только один исполнитель во всех отрезках
	Solo
	// ShuffleIndependent - случайный состав в каждом отрезке независимо
	ShuffleIndependent
	// ShuffleMarkov - случайный состав с тяготением к предыдущим отрезкам
	ShuffleMarkov
	// ShufflePermute - одна случайная перестановка исполнителей на всю песню
	ShufflePermute
)

func (m Mode) String() string {
	switch m {
	case Default:
		return "Default"
	case Clear:
		return "Clear"
	case Solo:
		return "Solo"
	case ShuffleIndependent:
		return "Shuffle 2"
	case ShuffleMarkov:
		return "Shuffle 1"
	case ShufflePermute:
		return "Shuffle 3"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Preset предустановка; Singer используется только в режиме Solo
type Preset struct {
	Mode   Mode
	Singer int
}

// Build строит отображаемые отрезки по предустановке
func Build(preset Preset, detail *data.SongDetail, rng *rand.Rand) ([]Segment, error) {
	singers := detail.SingerCount()
	segments := make([]Segment, len(detail.Segments))

	switch preset.Mode {
	case Default:
		for i, seg := range detail.Segments {
			segments[i] = newSegment(seg, singers, seg.HasSinger)
		}

	case Clear:
		for i, seg := range detail.Segments {
			segments[i] = newSegment(seg, singers, func(int) bool { return false })
		}

	case Solo:
		if preset.Singer < 0 || preset.Singer >= singers {
			return nil, fmt.Errorf("%w: исполнитель %d из %d", ErrIndexOutOfRange, preset.Singer, singers)
		}
		for i, seg := range detail.Segments {
			segments[i] = newSegment(seg, singers, func(j int) bool { return j == preset.Singer })
		}

	case ShuffleIndependent:
		for i, seg := range detail.Segments {
			chosen := rng.Perm(singers)[:defaultCount(seg, singers)]
			segments[i] = newSegment(seg, singers, memberOf(chosen))
		}

	case ShuffleMarkov:
		var prev1, prev2 []int
		for i, seg := range detail.Segments {
			scores := make([]float64, singers)
			for j := range scores {
				scores[j] = rng.Float64()
				if contains(prev1, j) {
					scores[j] += markovBonusPrev1
				}
				if contains(prev2, j) {
					scores[j] += markovBonusPrev2
				}
			}
			chosen := topK(scores, defaultCount(seg, singers))
			prev2, prev1 = prev1, chosen
			segments[i] = newSegment(seg, singers, memberOf(chosen))
		}

	case ShufflePermute:
		perm := rng.Perm(singers)
		for i, seg := range detail.Segments {
			segments[i] = newSegment(seg, singers, func(j int) bool { return seg.HasSinger(perm[j]) })
		}

	default:
		return nil, fmt.Errorf("неизвестный режим предустановки: %v", preset.Mode)
	}

	return segments, nil
}

// ActiveAt возвращает индекс первого отрезка, содержащего момент t.
// На точной границе выбирается более поздний отрезок.
func ActiveAt(segments []Segment, t float64) (int, bool) {
	for i, seg := range segments {
		if t < seg.Start {
			break
		}
		if seg.Contains(t) {
			return i, true
		}
	}
	return -1, false
}

// Gains вычисляет громкости вокальных дорожек для отрезка (равная мощность)
func Gains(seg Segment, masterVolume float64) []float64 {
	gains := make([]float64, len(seg.Flags))
	count := seg.AudibleCount()
	if count == 0 {
		return gains
	}
	gain := masterVolume / math.Sqrt(float64(count))
	for i, f := range seg.Flags {
		if f {
			gains[i] = gain
		}
	}
	return gains
}

// Clone возвращает глубокую копию списка отрезков
func Clone(segments []Segment) []Segment {
	result := make([]Segment, len(segments))
	for i, seg := range segments {
		result[i] = Segment{Start: seg.Start, End: seg.End, Flags: append([]bool(nil), seg.Flags...)}
	}
	return result
}

// defaultCount возвращает число различных исполнителей отрезка по умолчанию
func defaultCount(seg data.SegmentInfo, singers int) int {
	count := 0
	for j := 0; j < singers; j++ {
		if seg.HasSinger(j) {
			count++
		}
	}
	return count
}

func newSegment(seg data.SegmentInfo, singers int, audible func(int) bool) Segment {
	flags := make([]bool, singers)
	for j := range flags {
		flags[j] = audible(j)
	}
	return Segment{Start: seg.Start, End: seg.End, Flags: flags}
}

// topK возвращает индексы k наибольших значений
func topK(scores []float64, k int) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if k > len(order) {
		k = len(order)
	}
	return order[:k]
}

func memberOf(set []int) func(int) bool {
	return func(j int) bool { return contains(set, j) }
}

func contains(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
