// Package audio plays short feedback cues for stroke start and clear
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/inktrail/constants"
)

// SampleRate is the speaker rate used for every cue
const SampleRate = beep.SampleRate(44100)

// Cue identifies a feedback sound
type Cue uint8

const (
	CuePenDown Cue = iota
	CueClear
	cueCount
)

// Player queues cues on the speaker
// Repeats of the same cue closer than MinCueGap are dropped
type Player struct {
	mu     sync.Mutex
	volume float64
	sink   func(beep.Streamer)
	last   [cueCount]time.Time
	now    func() time.Time
	closer func()
	log    *zap.Logger
}

// NewPlayer initializes the speaker
// On failure the caller continues without audio
func NewPlayer(volume float64, log *zap.Logger) (*Player, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := speaker.Init(SampleRate, SampleRate.N(constants.AudioBufferDuration)); err != nil {
		return nil, errors.Wrap(err, "speaker init")
	}
	p := newPlayer(volume, func(s beep.Streamer) { speaker.Play(s) }, log)
	p.closer = speaker.Close
	return p, nil
}

func newPlayer(volume float64, sink func(beep.Streamer), log *zap.Logger) *Player {
	return &Player{
		volume: volume,
		sink:   sink,
		now:    time.Now,
		log:    log.Named("audio"),
	}
}

// Play queues a cue, returns false if throttled
func (p *Player) Play(c Cue) bool {
	if p == nil || c >= cueCount {
		return false
	}

	p.mu.Lock()
	now := p.now()
	if !p.last[c].IsZero() && now.Sub(p.last[c]) < constants.MinCueGap {
		p.mu.Unlock()
		return false
	}
	p.last[c] = now
	p.mu.Unlock()

	var s beep.Streamer
	switch c {
	case CuePenDown:
		s = CreatePenSound(SampleRate, p.volume)
	case CueClear:
		s = CreateWhooshSound(SampleRate, p.volume)
	}
	p.sink(s)
	return true
}

// PenDown plays the stroke start cue
func (p *Player) PenDown() { p.Play(CuePenDown) }

// Cleared plays the clear cue
func (p *Player) Cleared() { p.Play(CueClear) }

// Close releases the speaker
func (p *Player) Close() {
	if p != nil && p.closer != nil {
		p.closer()
		p.log.Debug("speaker closed")
	}
}
