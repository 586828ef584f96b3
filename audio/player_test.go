package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"go.uber.org/zap"

	"github.com/lixenwraith/inktrail/constants"
)

// drain counts samples until the stream ends, failing on endless streams
func drain(t *testing.T, s beep.Streamer) (samples int, peak float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	for i := 0; i < 1000; i++ {
		n, ok := s.Stream(buf)
		for _, v := range buf[:n] {
			peak = max(peak, v[0], -v[0])
		}
		samples += n
		if !ok {
			return samples, peak
		}
	}
	t.Fatal("stream did not end")
	return 0, 0
}

func TestCueLengths(t *testing.T) {
	tests := []struct {
		name string
		s    beep.Streamer
		want time.Duration
	}{
		{"pen", CreatePenSound(SampleRate, 0.5), constants.PenSoundDuration},
		{"whoosh", CreateWhooshSound(SampleRate, 0.5), constants.WhooshSoundDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, peak := drain(t, tt.s)
			if want := SampleRate.N(tt.want); n != want {
				t.Errorf("samples = %d, want %d", n, want)
			}
			if peak <= 0 || peak > 1 {
				t.Errorf("peak = %v, want in (0, 1]", peak)
			}
		})
	}
}

func TestSilentVolume(t *testing.T) {
	_, peak := drain(t, CreatePenSound(SampleRate, 0))
	if peak != 0 {
		t.Errorf("peak = %v, want silence", peak)
	}
}

func TestPlayerThrottlesRepeats(t *testing.T) {
	var played []beep.Streamer
	p := newPlayer(0.5, func(s beep.Streamer) { played = append(played, s) }, zap.NewNop())

	now := time.Unix(100, 0)
	p.now = func() time.Time { return now }

	if !p.Play(CuePenDown) {
		t.Fatal("first cue throttled")
	}
	if p.Play(CuePenDown) {
		t.Error("repeat inside the gap was played")
	}
	if !p.Play(CueClear) {
		t.Error("different cue throttled")
	}

	now = now.Add(constants.MinCueGap)
	if !p.Play(CuePenDown) {
		t.Error("cue after the gap throttled")
	}

	if len(played) != 3 {
		t.Errorf("played %d cues, want 3", len(played))
	}
}

func TestNilPlayer(t *testing.T) {
	var p *Player
	if p.Play(CuePenDown) {
		t.Error("nil player reported playing")
	}
	p.PenDown()
	p.Cleared()
	p.Close()
}
