// Package engine runs the DX-Light render loop: one dedicated goroutine
// that captures or generates a frame, smooths it, encodes it, and streams
// it to the device at the configured rate.
package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mauros/dxlight/internal/led"
	"github.com/mauros/dxlight/internal/proto"
	"github.com/mauros/dxlight/internal/render"
)

// Mode selects what feeds the strip each tick.
type Mode string

const (
	ModeAmbilight Mode = "ambilight"
	ModeGaming    Mode = "gaming"
	ModeFilm      Mode = "film"
	ModeStatic    Mode = "static"
	ModeRainbow   Mode = "rainbow"
	ModeBreathing Mode = "breathing"
	ModeCycle     Mode = "cycle"
)

// Capture reports whether the mode samples screen content rather than
// running a procedural effect.
func (m Mode) Capture() bool {
	switch m {
	case ModeAmbilight, ModeGaming, ModeFilm:
		return true
	}
	return false
}

// Snapshot is the immutable per-tick view of the engine configuration.
// The UI side builds a fresh value and swaps it in whole; the loop reads
// exactly one snapshot per tick, so a tick never sees a half-updated
// config. The engine assumes values are already clamped at the config
// boundary.
type Snapshot struct {
	Mode       Mode
	Brightness float64 // 0..1
	Alpha      float64 // smoothing factor, 0..1
	FPS        int     // target frame rate, >= 1
	EdgePct    float64 // edge sampling depth, fraction of the short dimension
	Speed      float64 // effect speed, 1.0 at the UI midpoint
	Mirror     bool
	Base       render.Color
	Crop       render.CropRegion
}

// State of the loop lifecycle.
type State int32

const (
	Idle State = iota
	Connecting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return "unknown"
}

var (
	// ErrAlreadyRunning is returned by Start when the loop is not idle.
	ErrAlreadyRunning = errors.New("engine: already running")
	// ErrStopTimeout means the worker did not exit within the join timeout.
	ErrStopTimeout = errors.New("engine: worker did not stop in time")
)

// joinTimeout bounds how long Stop blocks on the worker. One in-flight
// tick can legitimately still be running when stop is requested.
const joinTimeout = 2 * time.Second

// fpsWindow is how many tick durations feed the observed-fps figure.
const fpsWindow = 30

// Engine owns the device session and the frame counter while running.
// Config comes in through an atomically swapped snapshot; observability
// (current frame, observed fps) goes out under a small mutex. Everything
// else is private to the worker goroutine.
type Engine struct {
	open led.Opener
	src  Source
	log  zerolog.Logger

	cfg   atomic.Pointer[Snapshot]
	state atomic.Int32

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	mu   sync.Mutex
	leds render.Frame
	fps  float64
}

// Source matches capture.Source; declared here so the engine depends only
// on what it calls.
type Source interface {
	Grab() (*render.Image, error)
}

// New wires an engine. src may be nil when only effect modes are used.
func New(open led.Opener, src Source, cfg Snapshot, log zerolog.Logger) *Engine {
	e := &Engine{open: open, src: src, log: log}
	e.cfg.Store(&cfg)
	return e
}

// SetConfig swaps in a new configuration snapshot. Takes effect on the
// next tick; visual parameters tolerate the one-tick lag.
func (e *Engine) SetConfig(s Snapshot) { e.cfg.Store(&s) }

// Config returns the snapshot the next tick will use.
func (e *Engine) Config() Snapshot { return *e.cfg.Load() }

// State returns the current lifecycle state.
func (e *Engine) State() State { return State(e.state.Load()) }

// Leds returns the most recently sent frame, for previews.
func (e *Engine) Leds() render.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.leds
}

// FPS returns the observed frame rate over the last 30 ticks.
func (e *Engine) FPS() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fps
}

// Start opens the device and launches the worker. It fails fast with
// led.ErrNotFound when no device is attached, leaving the engine idle.
func (e *Engine) Start() error {
	if !e.state.CompareAndSwap(int32(Idle), int32(Connecting)) {
		return ErrAlreadyRunning
	}
	tr, err := e.open()
	if err != nil {
		e.state.Store(int32(Idle))
		return err
	}
	e.stop = make(chan struct{})
	e.stopOnce = sync.Once{}
	e.done = make(chan struct{})
	e.state.Store(int32(Running))
	e.log.Info().Msg("engine started")
	go e.loop(tr)
	return nil
}

// Stop requests a cooperative shutdown and waits for the worker, bounded
// by the join timeout. It is a no-op when the loop is not running.
func (e *Engine) Stop() error {
	if State(e.state.Load()) != Running {
		return nil
	}
	e.stopOnce.Do(func() { close(e.stop) })
	select {
	case <-e.done:
		return nil
	case <-time.After(joinTimeout):
		return ErrStopTimeout
	}
}

// loop is the worker. It exits on a stop request or on the first transport
// error; either way it tries to black out the strip, closes the session,
// and returns the engine to Idle.
func (e *Engine) loop(tr led.Transport) {
	defer close(e.done)

	var (
		cur     render.Frame // smoothed output, persists across ticks
		held    render.Frame // last good pre-smoothing frame, for capture dropouts
		counter uint8
		start   = time.Now()
		window  []time.Duration
	)

	for {
		select {
		case <-e.stop:
			e.shutdown(tr, counter)
			return
		default:
		}

		t0 := time.Now()
		snap := e.cfg.Load()

		next := e.produce(snap, time.Since(start).Seconds(), &held)
		cur = render.Smooth(&cur, &next, snap.Alpha)

		reports := proto.Encode(&cur, counter, snap.Mirror)
		counter++ // wraps at 256 by type
		for i := range reports {
			if err := tr.Send(reports[i][:]); err != nil {
				e.log.Error().Err(err).Msg("send failed, stopping session")
				e.shutdown(tr, counter)
				return
			}
		}

		elapsed := time.Since(t0)
		window = append(window, elapsed)
		if len(window) > fpsWindow {
			window = window[1:]
		}
		e.publish(cur, window)

		budget := time.Second / time.Duration(maxInt(1, snap.FPS))
		if wait := budget - elapsed; wait > 0 {
			select {
			case <-e.stop:
				e.shutdown(tr, counter)
				return
			case <-time.After(wait):
			}
		}
	}
}

// produce computes this tick's pre-smoothing frame. Capture failures are
// transient: the previous good frame is reused so the strip holds steady
// instead of flashing black.
func (e *Engine) produce(snap *Snapshot, elapsed float64, held *render.Frame) render.Frame {
	if snap.Mode.Capture() {
		if e.src == nil {
			return *held
		}
		img, err := e.src.Grab()
		if err != nil {
			e.log.Debug().Err(err).Msg("frame grab failed, holding last frame")
			return *held
		}
		*held = render.Sample(img, snap.Crop, snap.EdgePct, snap.Brightness)
		return *held
	}

	p := render.EffectParams{
		Elapsed:    elapsed,
		Speed:      snap.Speed,
		Brightness: snap.Brightness,
		Base:       snap.Base,
	}
	switch snap.Mode {
	case ModeStatic:
		*held = render.Static(p)
	case ModeRainbow:
		*held = render.Rainbow(p)
	case ModeBreathing:
		*held = render.Breathing(p)
	case ModeCycle:
		*held = render.Cycle(p)
	default:
		*held = render.Frame{}
	}
	return *held
}

func (e *Engine) publish(f render.Frame, window []time.Duration) {
	var sum time.Duration
	for _, d := range window {
		sum += d
	}
	avg := sum.Seconds() / float64(len(window))
	if avg < 0.001 {
		avg = 0.001
	}
	e.mu.Lock()
	e.leds = f
	e.fps = 1.0 / avg
	e.mu.Unlock()
}

// shutdown blacks out the strip best-effort and closes the session. A
// failed blackout is logged and ignored; the device may already be gone.
func (e *Engine) shutdown(tr led.Transport, counter uint8) {
	e.state.Store(int32(Stopping))
	var black render.Frame
	reports := proto.Encode(&black, counter, false)
	for i := range reports {
		if err := tr.Send(reports[i][:]); err != nil {
			e.log.Debug().Err(err).Msg("blackout send failed")
			break
		}
	}
	if err := tr.Close(); err != nil {
		e.log.Debug().Err(err).Msg("close failed")
	}
	e.mu.Lock()
	e.leds = render.Frame{}
	e.mu.Unlock()
	e.state.Store(int32(Idle))
	e.log.Info().Msg("engine stopped")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
