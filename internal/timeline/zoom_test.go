package timeline

import (
	"math/rand/v2"
	"testing"
)

func newTestZoom(start, end float64) *Zoom {
	z := NewZoom(120, end-start)
	z.window = Window{Start: start, End: end}
	return z
}

func assertWindow(t *testing.T, z *Zoom, start, end float64) {
	t.Helper()
	w := z.Window()
	if w.Start != start || w.End != end {
		t.Errorf("Ожидалось окно [%v, %v], получено [%v, %v]", start, end, w.Start, w.End)
	}
}

func assertInvariant(t *testing.T, z *Zoom) {
	t.Helper()
	w := z.Window()
	if !(0 <= w.Start && w.Start < w.End && w.End <= z.Duration()) {
		t.Fatalf("Нарушен инвариант окна: [%v, %v] при длительности %v", w.Start, w.End, z.Duration())
	}
}

func TestNewZoomClampsToDuration(t *testing.T) {
	assertWindow(t, NewZoom(120, 30), 0, 30)
	assertWindow(t, NewZoom(12, 30), 0, 12)
	assertWindow(t, NewZoom(120, 0), 0, DefaultWidth)
}

func TestFollowCrossingEdge(t *testing.T) {
	z := newTestZoom(10, 40)

	if !z.Follow(39, 41) {
		t.Fatal("Follow должен сдвинуть окно при пересечении границы")
	}
	assertWindow(t, z, 41, 71)
}

func TestFollowIgnoresJumps(t *testing.T) {
	z := newTestZoom(10, 40)

	// Предыдущая позиция уже вне окна - это был переход, а не пересечение
	if z.Follow(80, 81) {
		t.Error("Follow не должен реагировать, если предыдущая позиция вне окна")
	}
	if z.Follow(20, 30) {
		t.Error("Follow не должен реагировать, пока позиция внутри окна")
	}
	assertWindow(t, z, 10, 40)
}

func TestFollowClampsAtEnd(t *testing.T) {
	z := newTestZoom(80, 110)

	z.Follow(109, 111)
	assertWindow(t, z, 90, 120)
}

func TestFollowBackToStart(t *testing.T) {
	z := newTestZoom(80, 110)

	// Остановка возвращает позицию в 0
	z.Follow(100, 0)
	assertWindow(t, z, 0, 30)
}

func TestRecenter(t *testing.T) {
	z := newTestZoom(10, 40)

	if z.Recenter(25) {
		t.Error("Recenter не должен двигать окно, если позиция внутри")
	}
	assertWindow(t, z, 10, 40)

	z.Recenter(60)
	assertWindow(t, z, 45, 75)

	z.Recenter(5)
	assertWindow(t, z, 0, 30)

	z.Recenter(119)
	assertWindow(t, z, 90, 120)
}

func TestDragHandles(t *testing.T) {
	z := newTestZoom(40, 70)

	// Левая граница не может подойти к правой ближе чем на 1 секунду
	z.MoveStart(75)
	assertWindow(t, z, 69, 70)

	z.MoveStart(-10)
	assertWindow(t, z, 0, 70)

	z.MoveEnd(-5)
	assertWindow(t, z, 0, 1)

	z.MoveEnd(500)
	assertWindow(t, z, 0, 120)
}

func TestDragBar(t *testing.T) {
	z := newTestZoom(10, 40)

	z.BeginDrag(DragBar)
	z.DragTo(0.5)
	assertWindow(t, z, 45, 75)

	z.DragTo(0)
	assertWindow(t, z, 0, 30)

	z.DragTo(1)
	assertWindow(t, z, 90, 120)
	z.EndDrag()

	if z.Dragging() != DragNone {
		t.Error("После EndDrag перетаскивания быть не должно")
	}

	z.DragTo(0)
	assertWindow(t, z, 90, 120)
}

func TestDragStartHandleScenario(t *testing.T) {
	z := newTestZoom(40, 70)
	z.BeginDrag(DragStart)

	// 75 секунд из 120
	z.DragTo(75.0 / 120.0)
	assertWindow(t, z, 69, 70)
}

func TestZeroDurationIsNoop(t *testing.T) {
	z := NewZoom(0, 30)
	before := z.Window()

	z.BeginDrag(DragBar)
	z.DragTo(0.5)
	z.Recenter(100)
	z.Follow(10, 40)
	z.Pan(50)
	z.PanBy(1)
	z.MoveStart(10)
	z.MoveEnd(10)

	if z.Window() != before {
		t.Errorf("При нулевой длительности окно не должно меняться: %+v", z.Window())
	}
	if z.Fraction(10) != 0 || z.TimeAt(0.5) != 0 {
		t.Error("При нулевой длительности преобразования должны возвращать 0")
	}
}

func TestFractionMapping(t *testing.T) {
	z := newTestZoom(30, 60)

	if got := z.TimeAt(0.25); got != 30 {
		t.Errorf("TimeAt(0.25) = %v", got)
	}
	if got := z.ZoomTimeAt(0.5); got != 45 {
		t.Errorf("ZoomTimeAt(0.5) = %v", got)
	}
	if got := z.TimeAt(1.5); got != 120 {
		t.Errorf("TimeAt должен ограничивать долю: %v", got)
	}
	if got := z.Fraction(60); got != 0.5 {
		t.Errorf("Fraction(60) = %v", got)
	}
	if got := z.ZoomFraction(45); got != 0.5 {
		t.Errorf("ZoomFraction(45) = %v", got)
	}
}

func TestInvariantUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	z := NewZoom(120, 30)
	prev := 0.0

	for i := 0; i < 5000; i++ {
		pos := rng.Float64()*140 - 10
		switch rng.IntN(7) {
		case 0:
			z.Follow(prev, pos)
		case 1:
			z.Recenter(pos)
		case 2:
			z.MoveStart(pos)
		case 3:
			z.MoveEnd(pos)
		case 4:
			z.Pan(pos)
		case 5:
			z.PanBy(rng.Float64()*2 - 1)
		case 6:
			z.BeginDrag(DragMode(rng.IntN(4)))
			z.DragTo(rng.Float64())
		}
		prev = pos
		assertInvariant(t, z)
	}
}
