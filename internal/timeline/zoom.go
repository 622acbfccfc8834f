// Package timeline содержит логику окна масштабирования шкалы времени
package timeline

// Минимальная ширина окна при перетаскивании границ, в секундах
const minHandleGap = 1.0

// DefaultWidth ширина окна по умолчанию, в секундах
const DefaultWidth = 30.0

// Window окно масштабирования [Start, End] в секундах
type Window struct {
	Start float64
	End   float64
}

// Width возвращает ширину окна
func (w Window) Width() float64 {
	return w.End - w.Start
}

// Contains сообщает, лежит ли позиция внутри окна (границы включены)
func (w Window) Contains(pos float64) bool {
	return w.Start <= pos && pos <= w.End
}

// DragMode объект, который перетаскивает пользователь
type DragMode int

const (
	// DragNone - перетаскивания нет
	DragNone DragMode = iota
	// DragBar - перемещение окна целиком
	DragBar
	// DragStart - перемещение левой границы
	DragStart
	// DragEnd - перемещение правой границы
	DragEnd
)

// Zoom управляет окном масштабирования поверх всей длительности песни
type Zoom struct {
	window   Window
	duration float64
	drag     DragMode
}

// NewZoom создает окно [0, width], ограниченное длительностью
func NewZoom(duration, width float64) *Zoom {
	if width <= 0 {
		width = DefaultWidth
	}
	z := &Zoom{window: Window{Start: 0, End: width}}
	z.SetDuration(duration)
	return z
}

// SetDuration задает длительность песни и приводит окно к допустимому виду
func (z *Zoom) SetDuration(duration float64) {
	if duration < 0 {
		duration = 0
	}
	z.duration = duration
	if duration == 0 {
		return
	}
	width := z.window.Width()
	if width > duration {
		width = duration
	}
	z.window = z.clamp(z.window.Start, width)
}

// Window возвращает текущее окно
func (z *Zoom) Window() Window {
	return z.window
}

// Duration возвращает длительность песни
func (z *Zoom) Duration() float64 {
	return z.duration
}

// Follow сдвигает окно вслед за воспроизведением. Окно перемещается,
// только если позиция только что пересекла его границу: prev внутри, cur снаружи.
func (z *Zoom) Follow(prev, cur float64) bool {
	if z.duration == 0 {
		return false
	}
	if z.window.Contains(cur) || !z.window.Contains(prev) {
		return false
	}
	z.window = z.clamp(cur, z.window.Width())
	return true
}

// Recenter ставит позицию в центр окна, если она вне окна
func (z *Zoom) Recenter(pos float64) bool {
	if z.duration == 0 || z.window.Contains(pos) {
		return false
	}
	width := z.window.Width()
	z.window = z.clamp(pos-width/2, width)
	return true
}

// Pan центрирует окно на позиции, сохраняя ширину
func (z *Zoom) Pan(center float64) {
	if z.duration == 0 {
		return
	}
	width := z.window.Width()
	z.window = z.clamp(center-width/2, width)
}

// PanBy сдвигает окно на долю его ширины
func (z *Zoom) PanBy(fraction float64) {
	if z.duration == 0 {
		return
	}
	width := z.window.Width()
	z.window = z.clamp(z.window.Start+width*fraction, width)
}

// MoveStart перемещает левую границу: не ближе 1 секунды к правой и не меньше 0
func (z *Zoom) MoveStart(pos float64) {
	if z.duration == 0 {
		return
	}
	start := pos
	if start > z.window.End-minHandleGap {
		start = z.window.End - minHandleGap
	}
	if start < 0 {
		start = 0
	}
	z.window.Start = start
}

// MoveEnd перемещает правую границу: не ближе 1 секунды к левой и не больше длительности
func (z *Zoom) MoveEnd(pos float64) {
	if z.duration == 0 {
		return
	}
	end := pos
	if end < z.window.Start+minHandleGap {
		end = z.window.Start + minHandleGap
	}
	if end > z.duration {
		end = z.duration
	}
	z.window.End = end
}

// BeginDrag начинает перетаскивание
func (z *Zoom) BeginDrag(mode DragMode) {
	z.drag = mode
}

// Dragging возвращает текущий режим перетаскивания
func (z *Zoom) Dragging() DragMode {
	return z.drag
}

// DragTo применяет перетаскивание к позиции указателя на обзорной шкале
func (z *Zoom) DragTo(fraction float64) {
	if z.duration == 0 {
		return
	}
	pos := z.TimeAt(fraction)
	switch z.drag {
	case DragBar:
		z.Pan(pos)
	case DragStart:
		z.MoveStart(pos)
	case DragEnd:
		z.MoveEnd(pos)
	}
}

// EndDrag завершает перетаскивание
func (z *Zoom) EndDrag() {
	z.drag = DragNone
}

// TimeAt переводит долю ширины обзорной шкалы во время
func (z *Zoom) TimeAt(fraction float64) float64 {
	return z.duration * clampFraction(fraction)
}

// ZoomTimeAt переводит долю ширины детальной шкалы во время
func (z *Zoom) ZoomTimeAt(fraction float64) float64 {
	return z.window.Start + z.window.Width()*clampFraction(fraction)
}

// Fraction переводит время в долю ширины обзорной шкалы
func (z *Zoom) Fraction(t float64) float64 {
	if z.duration == 0 {
		return 0
	}
	return t / z.duration
}

// ZoomFraction переводит время в долю ширины детальной шкалы
func (z *Zoom) ZoomFraction(t float64) float64 {
	width := z.window.Width()
	if width <= 0 {
		return 0
	}
	return (t - z.window.Start) / width
}

// clamp строит окно заданной ширины, начинающееся в start и лежащее в [0, duration]
func (z *Zoom) clamp(start, width float64) Window {
	if start < 0 {
		start = 0
	}
	end := start + width
	if end > z.duration {
		end = z.duration
		start = z.duration - width
	}
	return Window{Start: start, End: end}
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
