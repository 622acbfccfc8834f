package player

import "github.com/hazadus/go-remixer/internal/timeline"

const (
	// Ширина колонки с именами исполнителей
	gutterWidth = 12
	// Строки заголовка перед шкалами
	headerLines   = 3
	minTrackWidth = 10
)

// layout сопоставляет координаты экрана с областями шкал
type layout struct {
	width   int // ширина дорожки в колонках
	singers int
}

func newLayout(screenWidth, singers int) layout {
	width := screenWidth - gutterWidth - 1
	if width < minTrackWidth {
		width = minTrackWidth
	}
	return layout{width: width, singers: singers}
}

// Номера строк областей
func (l layout) overviewRuler() int { return headerLines }
func (l layout) zoomBar() int       { return headerLines + 1 + l.singers }
func (l layout) zoomRuler() int     { return l.zoomBar() + 2 }

// overviewRow возвращает исполнителя для строки обзорной шкалы
func (l layout) overviewRow(y int) (int, bool) {
	singer := y - l.overviewRuler() - 1
	return singer, singer >= 0 && singer < l.singers
}

// zoomRow возвращает исполнителя для строки детальной шкалы
func (l layout) zoomRow(y int) (int, bool) {
	singer := y - l.zoomRuler() - 1
	return singer, singer >= 0 && singer < l.singers
}

// fraction переводит колонку экрана в долю ширины дорожки
func (l layout) fraction(x int) (float64, bool) {
	col := x - gutterWidth
	if col < 0 || col >= l.width {
		return clampFraction((float64(col) + 0.5) / float64(l.width)), false
	}
	return (float64(col) + 0.5) / float64(l.width), true
}

// column переводит долю ширины в колонку дорожки
func (l layout) column(f float64) int {
	col := int(f * float64(l.width))
	if col < 0 {
		return 0
	}
	if col >= l.width {
		return l.width - 1
	}
	return col
}

// handleAt определяет, за что взялся указатель на полосе окна
func (l layout) handleAt(x int, window timeline.Window, duration float64) timeline.DragMode {
	if duration <= 0 {
		return timeline.DragNone
	}
	col := x - gutterWidth
	startCol := l.column(window.Start / duration)
	endCol := l.column(window.End / duration)

	startDist := abs(col - startCol)
	endDist := abs(col - endCol)
	switch {
	case startDist <= 1 && startDist <= endDist:
		return timeline.DragStart
	case endDist <= 1:
		return timeline.DragEnd
	default:
		return timeline.DragBar
	}
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

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
