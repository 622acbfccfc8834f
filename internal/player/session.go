package player

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// session набор одноразовых потоков, созданных одним запуском воспроизведения.
// Сессию нельзя перезапустить: пауза и перемотка создают новую.
type session struct {
	id     uuid.UUID
	mixer  beep.Mixer
	vocals []*effects.Gain

	disposed bool        // изменяется только под блокировкой выхода
	ended    atomic.Bool // фон доигран до конца
}

// newSession строит потоки, начиная с кадра from. Фон звучит с громкостью
// master, вокал начинает с нулевой громкости.
func newSession(from int, master float64, backing *beep.Buffer, vocals []*beep.Buffer) *session {
	s := &session{id: uuid.New()}

	backingStream := beep.Seq(
		oneShot(backing, from),
		beep.Callback(func() { s.ended.Store(true) }),
	)
	s.mixer.Add(&effects.Gain{Streamer: backingStream, Gain: master - 1})

	s.vocals = make([]*effects.Gain, len(vocals))
	for i, buf := range vocals {
		node := &effects.Gain{Streamer: oneShot(buf, from), Gain: -1}
		s.vocals[i] = node
		s.mixer.Add(node)
	}
	return s
}

// oneShot возвращает поток буфера с кадра from до конца
func oneShot(buf *beep.Buffer, from int) beep.Streamer {
	if from > buf.Len() {
		from = buf.Len()
	}
	if from < 0 {
		from = 0
	}
	return buf.Streamer(from, buf.Len())
}

// setGains задает громкость вокала (вызывается под блокировкой выхода)
func (s *session) setGains(gains []float64) {
	for i, node := range s.vocals {
		if i < len(gains) {
			node.Gain = gains[i] - 1
		}
	}
}

// dispose отключает сессию от шины (вызывается под блокировкой выхода)
func (s *session) dispose() {
	s.disposed = true
}

// Stream реализует beep.Streamer. Отключенная сессия иссякает и удаляется из шины.
func (s *session) Stream(samples [][2]float64) (int, bool) {
	if s.disposed {
		return 0, false
	}
	return s.mixer.Stream(samples)
}

// Err реализует beep.Streamer
func (s *session) Err() error {
	return nil
}
