// Package engine runs the frame loop that owns the trail
//
// Recognizer frames, redraw ticks and terminal events are multiplexed on one
// goroutine, so the trail is mutated without locks.
package engine

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/inktrail/capture"
	"github.com/lixenwraith/inktrail/constants"
	"github.com/lixenwraith/inktrail/hand"
	"github.com/lixenwraith/inktrail/ink"
	"github.com/lixenwraith/inktrail/render"
)

// Cues receives feedback hooks, implemented by audio.Player
type Cues interface {
	PenDown()
	Cleared()
}

type noCues struct{}

func (noCues) PenDown() {}
func (noCues) Cleared() {}

// OpenFunc acquires the landmark source, called once in the background
type OpenFunc func(ctx context.Context) (capture.Source, error)

// Options configures an App
type Options struct {
	Trail         ink.Config
	Style         render.Style
	StatusBar     bool
	FrameInterval time.Duration
}

// App is the stateful drawing session
type App struct {
	screen   tcell.Screen
	trail    *ink.Trail
	renderer *render.Renderer
	clock    Clock
	cues     Cues
	log      *zap.Logger
	interval time.Duration

	source  capture.Source
	frames  <-chan hand.Frame
	pointer *capture.PointerSource
	state   render.SourceState

	// FPS tracking
	frameCount int
	lastFPS    time.Time
	fps        int
}

// NewApp creates an app drawing on screen
// clock, cues and log may be nil
func NewApp(screen tcell.Screen, opts Options, clock Clock, cues Cues, log *zap.Logger) *App {
	if clock == nil {
		clock = NewTimeProvider()
	}
	if cues == nil {
		cues = noCues{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = constants.FrameUpdateInterval
	}

	cols, rows := screen.Size()
	return &App{
		screen:   screen,
		trail:    ink.NewTrail(opts.Trail),
		renderer: render.NewRenderer(opts.Trail.Surface, opts.Style, opts.StatusBar, cols, rows),
		clock:    clock,
		cues:     cues,
		log:      log.Named("engine"),
		interval: opts.FrameInterval,
		state:    render.SourceConnecting,
		lastFPS:  clock.Now(),
	}
}

// Trail exposes the owned trail, only safe to use from the loop goroutine
func (a *App) Trail() *ink.Trail {
	return a.trail
}

// State returns the current source state
func (a *App) State() render.SourceState {
	return a.state
}

// UsePointer switches input to the terminal mouse
func (a *App) UsePointer() {
	cols, rows := a.renderer.CanvasCells()
	a.pointer = capture.NewPointerSource(a.trail.Config().Surface, cols, rows)
	a.screen.EnableMouse()
	a.attach(a.pointer)
	a.state = render.SourcePointer
}

// attach starts consuming a source
func (a *App) attach(src capture.Source) {
	a.source = src
	a.frames = src.Frames()
}

// sourceOpened applies the outcome of the background open
// Failure is terminal for drawing; the fade loop keeps running
func (a *App) sourceOpened(src capture.Source, err error) {
	if err != nil {
		a.log.Error("camera acquisition failed", zap.Error(err))
		a.state = render.SourceUnavailable
		return
	}
	a.attach(src)
	a.state = render.SourceLive
	a.log.Info("landmark source attached")
}

// Observe feeds one recognizer frame into the trail
func (a *App) Observe(f hand.Frame) ink.Update {
	u := a.trail.Observe(f, a.clock.Now())
	if u.Started {
		a.cues.PenDown()
	}
	return u
}

// Frame runs one fade step and redraws the whole surface
func (a *App) Frame() {
	now := a.clock.Now()

	a.frameCount++
	if elapsed := now.Sub(a.lastFPS); elapsed >= time.Second {
		a.fps = int(float64(a.frameCount) / elapsed.Seconds())
		a.frameCount = 0
		a.lastFPS = now
	}

	a.renderer.Draw(a.trail.Tick(now))
	a.renderer.Present(a.screen, a.status())
}

// Clear empties the trail and blanks the surface at once, bypassing the fade
func (a *App) Clear() {
	a.trail.Clear()
	a.renderer.Draw(nil)
	a.renderer.Present(a.screen, a.status())
	a.cues.Cleared()
	a.log.Debug("trail cleared")
}

func (a *App) status() render.Status {
	st := render.Status{
		Source:   a.state,
		Drawing:  a.trail.Drawing(),
		Segments: a.trail.Len(),
		FPS:      a.fps,
	}
	if a.source != nil {
		st.Dropped = a.source.Stats().Dropped
	}
	return st
}

// HandleEvent processes a terminal event, returns false to quit
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return false
			case 'c', 'C':
				a.Clear()
			}
		}

	case *tcell.EventResize:
		a.screen.Sync()
		cols, rows := a.screen.Size()
		a.renderer.Resize(cols, rows)
		if a.pointer != nil {
			a.pointer.Resize(a.renderer.CanvasCells())
		}

	case *tcell.EventMouse:
		if a.pointer != nil {
			a.pointer.HandleMouse(ev)
		}
	}
	return true
}

// Run drives the loop until quit or ctx ends
// open may be nil when a source was attached beforehand; its context is
// cancelled when Run returns
func (a *App) Run(ctx context.Context, open OpenFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		src capture.Source
		err error
	}
	var opened chan result
	if open != nil {
		opened = make(chan result, 1)
		go func() {
			src, err := open(ctx)
			opened <- result{src, err}
		}()
	}

	events := make(chan tcell.Event, constants.EventQueueSize)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return // Screen finalized
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	defer func() {
		if a.source != nil {
			a.source.Close()
		}
		// A source still opening is closed as soon as it arrives
		if opened != nil {
			go func(ch <-chan result) {
				if r := <-ch; r.src != nil {
					r.src.Close()
				}
			}(opened)
		}
	}()

	a.Frame()

	for {
		select {
		case <-ctx.Done():
			return nil

		case r := <-opened:
			opened = nil
			a.sourceOpened(r.src, r.err)

		case f, ok := <-a.frames:
			if !ok {
				a.frames = nil
				if a.state == render.SourceLive {
					a.log.Warn("landmark source ended")
					a.state = render.SourceUnavailable
				}
				continue
			}
			a.Observe(f)

		case ev := <-events:
			if !a.HandleEvent(ev) {
				return nil
			}

		case <-ticker.C:
			a.Frame()
		}
	}
}
