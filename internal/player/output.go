package player

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Output звуковой выход, которому плеер отдает свою шину
type Output interface {
	// Init готовит выход к работе и возвращает фактическую частоту дискретизации
	Init(rate beep.SampleRate) (beep.SampleRate, error)
	// Play подключает поток к выходу
	Play(s beep.Streamer)
	// Lock блокирует поток вывода, пока изменяется граф потоков
	Lock()
	Unlock()
}

// SpeakerOutput выход на динамики через beep/speaker
type SpeakerOutput struct {
	bufferSize time.Duration

	mutex         sync.Mutex
	isInitialized bool
	rate          beep.SampleRate
}

// NewSpeakerOutput создает выход на динамики с заданным размером буфера
func NewSpeakerOutput(bufferSize time.Duration) *SpeakerOutput {
	if bufferSize <= 0 {
		bufferSize = 100 * time.Millisecond
	}
	return &SpeakerOutput{bufferSize: bufferSize}
}

// Init инициализирует динамики. Инициализация выполняется только один раз,
// повторные вызовы возвращают уже выбранную частоту.
func (o *SpeakerOutput) Init(rate beep.SampleRate) (beep.SampleRate, error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.isInitialized {
		return o.rate, nil
	}
	if err := speaker.Init(rate, rate.N(o.bufferSize)); err != nil {
		return 0, fmt.Errorf("ошибка инициализации динамиков: %w", err)
	}
	o.isInitialized = true
	o.rate = rate
	return rate, nil
}

// Play подключает поток к динамикам
func (o *SpeakerOutput) Play(s beep.Streamer) {
	speaker.Play(s)
}

// Lock блокирует вывод звука
func (o *SpeakerOutput) Lock() {
	speaker.Lock()
}

// Unlock разблокирует вывод звука
func (o *SpeakerOutput) Unlock() {
	speaker.Unlock()
}
