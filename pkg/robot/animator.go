package robot

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	// Step is how far the phase advances per frame.
	Step = 0.02

	// DefaultFPS is the display-refresh cadence the animation is tuned for.
	DefaultFPS = 60
)

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// FrameMsg advances an Animator by one frame.
type FrameMsg struct {
	ID  int
	tag int
}

// Animator drives the scene's phase. It follows the bubbles spinner pattern:
// every frame message carries the animator's ID and a tag, and exactly one tick
// is outstanding while it runs.
type Animator struct {
	id      int
	tag     int
	fps     int
	phase   float64
	running bool

	scene  Scene
	canvas *Canvas
}

// Option configures an Animator.
type Option func(*Animator)

// WithFPS sets the frame rate. Non-positive values keep DefaultFPS.
func WithFPS(fps int) Option {
	return func(a *Animator) {
		if fps > 0 {
			a.fps = fps
		}
	}
}

// WithScene replaces the default scene.
func WithScene(s Scene) Option {
	return func(a *Animator) {
		a.scene = s
	}
}

// NewAnimator creates a stopped Animator rendering onto width x height cells.
func NewAnimator(width, height int, opts ...Option) Animator {
	a := Animator{
		id:     nextID(),
		fps:    DefaultFPS,
		scene:  DefaultScene(),
		canvas: NewCanvas(width, height),
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// ID identifies the animator's frame messages.
func (a Animator) ID() int { return a.id }

// Phase is the current animation phase.
func (a Animator) Phase() float64 { return a.phase }

// Running reports whether a tick loop is active.
func (a Animator) Running() bool { return a.running }

// Interval is the delay between frames.
func (a Animator) Interval() time.Duration {
	return time.Second / time.Duration(a.fps)
}

// Resize replaces the canvas with one of width x height cells.
func (a Animator) Resize(width, height int) Animator {
	if width == a.canvas.Width() && height == a.canvas.Height() {
		return a
	}
	a.canvas = NewCanvas(width, height)
	return a
}

// Start begins the tick loop. Starting a running animator does nothing.
func (a Animator) Start() (Animator, tea.Cmd) {
	if a.running {
		return a, nil
	}
	a.running = true
	a.tag++
	return a, a.tick()
}

// Stop ends the tick loop. The outstanding tick is dropped when it arrives.
func (a Animator) Stop() Animator {
	a.running = false
	a.tag++
	return a
}

// Init schedules the next frame of a running animator. Bubble Tea discards
// state changed in Init, so call Start before handing the animator over.
func (a Animator) Init() tea.Cmd {
	if !a.running {
		return nil
	}
	return a.tick()
}

// Update advances the phase on this animator's current frame message and
// schedules the next one.
func (a Animator) Update(msg tea.Msg) (Animator, tea.Cmd) {
	m, ok := msg.(FrameMsg)
	if !ok || m.ID != a.id || m.tag != a.tag || !a.running {
		return a, nil
	}

	a.phase += Step
	a.tag++
	return a, a.tick()
}

// View draws the scene at the current phase.
func (a Animator) View() string {
	a.scene.Draw(a.canvas, a.phase)
	return a.canvas.String()
}

// Canvas draws the scene at the current phase and returns the raster.
func (a Animator) Canvas() *Canvas {
	a.scene.Draw(a.canvas, a.phase)
	return a.canvas
}

func (a Animator) tick() tea.Cmd {
	id, tag := a.id, a.tag
	return tea.Tick(a.Interval(), func(time.Time) tea.Msg {
		return FrameMsg{ID: id, tag: tag}
	})
}
