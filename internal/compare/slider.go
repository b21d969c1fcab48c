// Package compare holds the before/after comparison slider state machine.
// It has no DOM dependency; cmd/slider binds it to the browser.
package compare

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// InitialPosition is the divider position of a freshly mounted slider.
const InitialPosition = 50.0

// State is the drag state of the slider.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Rect is the horizontal extent of the frame in client coordinates.
type Rect struct {
	Left  float64
	Width float64
}

// Frame measures the element the images are stacked in. ok is false while
// the element is not mounted.
type Frame interface {
	Bounds() (rect Rect, ok bool)
}

// Listeners attaches and detaches the document-level move and release handlers.
type Listeners interface {
	Acquire()
	Release()
}

// View is everything needed to paint the slider for the current position.
type View struct {
	Before      string
	After       string
	Position    float64
	DividerLeft string
	Clip        string
}

var ErrMissingImage = errors.New("before and after images are required")

// Slider tracks the divider position. All methods are safe for concurrent use.
type Slider struct {
	before, after string
	frame         Frame
	listeners     Listeners

	mu       sync.Mutex
	state    State
	position float64
	attached bool
}

// New returns an idle slider at the initial position. listeners may be nil.
func New(before, after string, frame Frame, listeners Listeners) (*Slider, error) {
	if before == "" || after == "" {
		return nil, ErrMissingImage
	}
	return &Slider{
		before:    before,
		after:     after,
		frame:     frame,
		listeners: listeners,
		position:  InitialPosition,
	}, nil
}

// Percent converts a client x coordinate into a clamped percentage of rect.
// ok is false when the rect has no measurable width.
func Percent(clientX float64, rect Rect) (float64, bool) {
	if rect.Width <= 0 {
		return 0, false
	}
	p := (clientX - rect.Left) / rect.Width * 100
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return p, true
}

// Press starts a drag.
func (s *Slider) Press() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Dragging
	s.attach()
}

// Move updates the position while dragging. Moves while idle or while the
// frame cannot be measured are ignored.
func (s *Slider) Move(clientX float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Dragging || s.frame == nil {
		return
	}
	rect, ok := s.frame.Bounds()
	if !ok {
		return
	}
	if p, ok := Percent(clientX, rect); ok {
		s.position = p
	}
}

// Release ends a drag. It may arrive from anywhere in the document.
func (s *Slider) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Idle
	s.detach()
}

// Close tears the slider down and drops any global listeners.
func (s *Slider) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Idle
	s.detach()
}

// State reports the current drag state.
func (s *Slider) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Position reports the divider position in percent.
func (s *Slider) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// View derives the divider offset and the clip inset from one position.
func (s *Slider) View() View {
	s.mu.Lock()
	p := s.position
	s.mu.Unlock()

	return View{
		Before:      s.before,
		After:       s.after,
		Position:    p,
		DividerLeft: formatPercent(p),
		Clip:        fmt.Sprintf("inset(0 %s 0 0)", formatPercent(100-p)),
	}
}

func (s *Slider) attach() {
	if s.attached || s.listeners == nil {
		return
	}
	s.listeners.Acquire()
	s.attached = true
}

func (s *Slider) detach() {
	if !s.attached || s.listeners == nil {
		return
	}
	s.listeners.Release()
	s.attached = false
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
