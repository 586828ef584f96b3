package ink

import (
	"math"
	"testing"
	"time"

	"github.com/lixenwraith/inktrail/hand"
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// pinchFrame builds a frame with a pinched hand whose index tip is at (x, y)
func pinchFrame(x, y float64) hand.Frame {
	return hand.Frame{Hands: []hand.Hand{hand.Synthesize(hand.Landmark{X: x, Y: y}, true)}}
}

func openFrame(x, y float64) hand.Frame {
	return hand.Frame{Hands: []hand.Hand{hand.Synthesize(hand.Landmark{X: x, Y: y}, false)}}
}

func TestEarlyFramesEmitNothing(t *testing.T) {
	tr := NewTrail(DefaultConfig())
	for i := 0; i < 4; i++ {
		if _, ok := tr.AddPoint(Point{X: float64(i), Y: 0}, epoch); ok {
			t.Fatalf("Segment emitted with only %d points buffered", i+1)
		}
	}
	if tr.Len() != 0 {
		t.Errorf("Len = %d, want 0", tr.Len())
	}
}

func TestScriptedStrokeThenFade(t *testing.T) {
	tr := NewTrail(DefaultConfig())
	now := epoch

	for i := 0; i < 6; i++ {
		tr.Observe(pinchFrame(0.5+float64(i)*0.001, 0.5), now)
		now = now.Add(33 * time.Millisecond)
	}

	if tr.Len() != 2 {
		t.Fatalf("Len after 6 pinch frames = %d, want 2", tr.Len())
	}

	if live := tr.Tick(now); len(live) != 2 {
		t.Errorf("Tick before horizon returned %d segments, want 2", len(live))
	}

	if live := tr.Tick(now.Add(6001 * time.Millisecond)); len(live) != 0 {
		t.Errorf("Tick after horizon returned %d segments, want 0", len(live))
	}
	if tr.Len() != 0 {
		t.Errorf("Len after horizon = %d, want 0", tr.Len())
	}
}

func TestSegmentUsesLookbackPoint(t *testing.T) {
	tr := NewTrail(DefaultConfig())
	for i := 0; i < 5; i++ {
		tr.AddPoint(Point{X: float64(i * 10), Y: 1}, epoch)
	}

	segs := tr.Segments()
	if len(segs) != 1 {
		t.Fatalf("Len = %d, want 1", len(segs))
	}
	s := segs[0]
	if s.X1 != 10 || s.X2 != 40 {
		t.Errorf("Segment = (%v -> %v), want (10 -> 40)", s.X1, s.X2)
	}
	if s.Opacity != 1 || !s.CreatedAt.Equal(epoch) {
		t.Errorf("Segment not stamped fresh: %+v", s)
	}
}

func TestLargeGapInsertsMidpoint(t *testing.T) {
	tr := NewTrail(DefaultConfig())
	for _, x := range []float64{0, 1, 2, 3} {
		tr.AddPoint(Point{X: x}, epoch)
	}

	seg, ok := tr.AddPoint(Point{X: 200}, epoch)
	if !ok {
		t.Fatal("Expected a segment on the fifth point")
	}
	if seg.X1 != 1 || seg.X2 != 200 {
		t.Errorf("Segment = (%v -> %v), want (1 -> 200)", seg.X1, seg.X2)
	}

	want := []float64{0, 1, 2, 100.5, 3, 200}
	got := tr.Window()
	if len(got) != len(want) {
		t.Fatalf("Window = %v, want X %v", got, want)
	}
	for i := range want {
		if got[i].X != want[i] {
			t.Errorf("Window[%d].X = %v, want %v", i, got[i].X, want[i])
		}
	}
	if tr.Stats().Interpolated != 1 {
		t.Errorf("Interpolated = %d, want 1", tr.Stats().Interpolated)
	}
}

func TestSmallGapInsertsNothing(t *testing.T) {
	tr := NewTrail(DefaultConfig())
	for _, x := range []float64{0, 10, 20, 30, 40} {
		tr.AddPoint(Point{X: x}, epoch)
	}
	// 40 - 10 = 30, under the gap
	if n := len(tr.Window()); n != 5 {
		t.Errorf("Window depth = %d, want 5", n)
	}
}

func TestWindowStaysBoundedUnderRepeatedInterpolation(t *testing.T) {
	tr := NewTrail(DefaultConfig())
	for i := 0; i < 30; i++ {
		tr.AddPoint(Point{X: float64(i * 100)}, epoch)
		if n := len(tr.Window()); n > 7 {
			t.Fatalf("Window depth %d exceeds capacity after %d points", n, i+1)
		}
	}
}

func TestReleaseClearsWindow(t *testing.T) {
	tr := NewTrail(DefaultConfig())
	now := epoch

	for i := 0; i < 5; i++ {
		tr.Observe(pinchFrame(0.5+float64(i)*0.001, 0.5), now)
	}
	if tr.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tr.Len())
	}

	u := tr.Observe(openFrame(0.6, 0.5), now)
	if !u.Released || u.Pinching {
		t.Errorf("Update on release = %+v", u)
	}
	if n := len(tr.Window()); n != 0 {
		t.Fatalf("Window depth after release = %d, want 0", n)
	}

	// Four points after the gap are not enough to bridge it
	for i := 0; i < 4; i++ {
		tr.Observe(pinchFrame(0.2+float64(i)*0.001, 0.2), now)
	}
	if tr.Len() != 1 {
		t.Errorf("Segment synthesized across release gap: Len = %d", tr.Len())
	}

	tr.Observe(pinchFrame(0.204, 0.2), now)
	segs := tr.Segments()
	if len(segs) != 2 {
		t.Fatalf("Len = %d, want 2", len(segs))
	}
	// New stroke starts entirely inside the second region
	if math.Abs(segs[1].Y1-216) > 1e-9 {
		t.Errorf("Second stroke starts at Y=%v, want 216", segs[1].Y1)
	}
}

func TestMissingHandIsNotARelease(t *testing.T) {
	tr := NewTrail(DefaultConfig())
	for i := 0; i < 3; i++ {
		tr.Observe(pinchFrame(0.5, 0.5), epoch)
	}

	u := tr.Observe(hand.Frame{}, epoch)
	if u.Visible || u.Released {
		t.Errorf("Update for empty frame = %+v", u)
	}
	if n := len(tr.Window()); n != 3 {
		t.Errorf("Window depth = %d, want 3", n)
	}
	if !tr.Drawing() {
		t.Error("Expected drawing state to persist while hand is out of view")
	}
}

func TestPinchStartFlag(t *testing.T) {
	tr := NewTrail(DefaultConfig())

	if u := tr.Observe(openFrame(0.5, 0.5), epoch); u.Started {
		t.Error("Open hand reported pinch start")
	}
	if u := tr.Observe(pinchFrame(0.5, 0.5), epoch); !u.Started {
		t.Error("Expected pinch start")
	}
	if u := tr.Observe(pinchFrame(0.5, 0.5), epoch); u.Started {
		t.Error("Continued pinch reported as start")
	}
}

func TestClearIgnoresAge(t *testing.T) {
	tr := NewTrail(DefaultConfig())
	for i := 0; i < 8; i++ {
		tr.AddPoint(Point{X: float64(i)}, epoch.Add(time.Duration(i)*time.Second))
	}
	if tr.Len() == 0 {
		t.Fatal("Expected segments before clear")
	}

	tr.Clear()

	if tr.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", tr.Len())
	}
	if live := tr.Tick(epoch); len(live) != 0 {
		t.Errorf("Tick after Clear returned %d segments", len(live))
	}
	if tr.Stats().Cleared != 4 {
		t.Errorf("Cleared = %d, want 4", tr.Stats().Cleared)
	}
}

func TestTickEvictsOnlyExpired(t *testing.T) {
	tr := NewTrail(DefaultConfig())
	for i := 0; i < 7; i++ {
		tr.AddPoint(Point{X: float64(i)}, epoch.Add(time.Duration(i)*time.Second))
	}
	// Segments created at t=4s, 5s, 6s
	live := tr.Tick(epoch.Add(10*time.Second + 500*time.Millisecond))
	if len(live) != 2 {
		t.Fatalf("live = %d, want 2", len(live))
	}
	if !live[0].CreatedAt.Before(live[1].CreatedAt) {
		t.Error("Tick did not preserve creation order")
	}
	if tr.Stats().Expired != 1 {
		t.Errorf("Expired = %d, want 1", tr.Stats().Expired)
	}
}

func TestHorizonBoundary(t *testing.T) {
	tr := NewTrail(DefaultConfig())
	for i := 0; i < 5; i++ {
		tr.AddPoint(Point{X: float64(i)}, epoch)
	}

	live := tr.Tick(epoch.Add(6000 * time.Millisecond))
	if len(live) != 1 {
		t.Fatalf("Segment at exactly the horizon was removed")
	}
	if live[0].Opacity != 0 {
		t.Errorf("Opacity at horizon = %v, want 0", live[0].Opacity)
	}

	if live := tr.Tick(epoch.Add(6001 * time.Millisecond)); len(live) != 0 {
		t.Error("Segment past the horizon survived")
	}
}

func TestOpacityMonotonic(t *testing.T) {
	horizon := 6000 * time.Millisecond
	s := newSegment(Point{}, Point{X: 1}, epoch)

	prev := 2.0
	for ms := 0; ms <= 7000; ms += 125 {
		o := s.OpacityAt(epoch.Add(time.Duration(ms)*time.Millisecond), horizon)
		if o > prev {
			t.Fatalf("Opacity increased at %dms: %v > %v", ms, o, prev)
		}
		if o < 0 || o > 1 {
			t.Fatalf("Opacity %v out of range at %dms", o, ms)
		}
		prev = o
	}

	if o := s.OpacityAt(epoch, horizon); o != 1 {
		t.Errorf("Opacity at creation = %v, want 1", o)
	}
	if o := s.OpacityAt(epoch.Add(3*time.Second), horizon); o != 0.5 {
		t.Errorf("Opacity at half horizon = %v, want 0.5", o)
	}
	if o := s.OpacityAt(epoch.Add(horizon), horizon); o != 0 {
		t.Errorf("Opacity at horizon = %v, want 0", o)
	}
}

func TestSegmentControlPoint(t *testing.T) {
	s := newSegment(Point{X: 0, Y: 10}, Point{X: 20, Y: 30}, epoch)
	if c := s.Control(); c != (Point{X: 10, Y: 20}) {
		t.Errorf("Control = %v, want (10, 20)", c)
	}
}
