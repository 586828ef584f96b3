package ink

import "testing"

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow(7)
	for i := 0; i < 9; i++ {
		w.Push(Point{X: float64(i)})
	}

	if w.Len() != 7 {
		t.Fatalf("Len = %d, want 7", w.Len())
	}
	if got := w.At(0).X; got != 2 {
		t.Errorf("oldest X = %v, want 2", got)
	}
	if p, _ := w.Newest(); p.X != 8 {
		t.Errorf("newest X = %v, want 8", p.X)
	}
}

func TestWindowInsertKeepsCapacity(t *testing.T) {
	w := NewWindow(3)
	w.Push(Point{X: 1})
	w.Push(Point{X: 2})
	w.Push(Point{X: 3})

	w.Insert(1, Point{X: 1.5})

	got := w.Points()
	want := []Point{{X: 1.5}, {X: 2}, {X: 3}}
	if len(got) != len(want) {
		t.Fatalf("Points = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Points[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWindowInsertClampsIndex(t *testing.T) {
	w := NewWindow(4)
	w.Insert(-3, Point{X: 1})
	w.Insert(99, Point{X: 2})

	if w.At(0).X != 1 || w.At(1).X != 2 {
		t.Errorf("Points = %v, want [1 2]", w.Points())
	}
}

func TestWindowReset(t *testing.T) {
	w := NewWindow(7)
	w.Push(Point{X: 1})
	w.Reset()

	if w.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", w.Len())
	}
	if _, ok := w.Newest(); ok {
		t.Error("Expected no newest point after Reset")
	}
}

func TestPointsReturnsCopy(t *testing.T) {
	w := NewWindow(2)
	w.Push(Point{X: 1})

	pts := w.Points()
	pts[0].X = 42

	if w.At(0).X != 1 {
		t.Error("Mutating Points() result changed the window")
	}
}
