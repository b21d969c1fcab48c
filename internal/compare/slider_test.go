package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFrame struct {
	rect    Rect
	mounted bool
}

func (f *fakeFrame) Bounds() (Rect, bool) { return f.rect, f.mounted }

type countingListeners struct {
	acquired int
	released int
}

func (l *countingListeners) Acquire() { l.acquired++ }
func (l *countingListeners) Release() { l.released++ }

func (l *countingListeners) active() int { return l.acquired - l.released }

func newSlider(t *testing.T, frame Frame, listeners Listeners) *Slider {
	t.Helper()
	s, err := New("before.png", "after.png", frame, listeners)
	require.NoError(t, err)
	return s
}

func TestNew_RequiresBothImages(t *testing.T) {
	_, err := New("", "after.png", nil, nil)
	assert.ErrorIs(t, err, ErrMissingImage)
	_, err = New("before.png", "", nil, nil)
	assert.ErrorIs(t, err, ErrMissingImage)
}

func TestSlider_StartsIdleAtFifty(t *testing.T) {
	s := newSlider(t, &fakeFrame{}, nil)
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 50.0, s.Position())
}

func TestPercent(t *testing.T) {
	rect := Rect{Left: 100, Width: 400}
	tests := []struct {
		name    string
		clientX float64
		want    float64
	}{
		{"left edge", 100, 0},
		{"quarter", 200, 25},
		{"middle", 300, 50},
		{"right edge", 500, 100},
		{"far left clamps", -1000, 0},
		{"far right clamps", 5000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Percent(tt.clientX, rect)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, ok := Percent(10, Rect{Left: 0, Width: 0})
	assert.False(t, ok)
}

func TestSlider_MoveAlwaysStaysInRange(t *testing.T) {
	frame := &fakeFrame{rect: Rect{Left: 20, Width: 300}, mounted: true}
	s := newSlider(t, frame, nil)
	s.Press()

	for x := -500.0; x <= 900; x += 13.7 {
		s.Move(x)
		p := s.Position()
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
	}
}

func TestSlider_ViewUsesOnePosition(t *testing.T) {
	frame := &fakeFrame{rect: Rect{Left: 0, Width: 200}, mounted: true}
	s := newSlider(t, frame, nil)
	s.Press()
	s.Move(50)

	v := s.View()
	assert.Equal(t, 25.0, v.Position)
	assert.Equal(t, "25%", v.DividerLeft)
	assert.Equal(t, "inset(0 75% 0 0)", v.Clip)
	assert.Equal(t, "before.png", v.Before)
	assert.Equal(t, "after.png", v.After)

	initial := newSlider(t, frame, nil).View()
	assert.Equal(t, "50%", initial.DividerLeft)
	assert.Equal(t, "inset(0 50% 0 0)", initial.Clip)
}

func TestSlider_MoveWhileIdleIsIgnored(t *testing.T) {
	frame := &fakeFrame{rect: Rect{Left: 0, Width: 100}, mounted: true}
	s := newSlider(t, frame, nil)

	s.Move(10)
	assert.Equal(t, 50.0, s.Position())

	s.Press()
	s.Move(10)
	s.Release()
	s.Move(90)
	assert.Equal(t, 10.0, s.Position())
	assert.Equal(t, Idle, s.State())
}

func TestSlider_UnmountedFrameIsNoOp(t *testing.T) {
	frame := &fakeFrame{rect: Rect{Left: 0, Width: 100}}
	s := newSlider(t, frame, nil)
	s.Press()

	assert.NotPanics(t, func() { s.Move(80) })
	assert.Equal(t, 50.0, s.Position())

	frame.mounted = true
	frame.rect.Width = 0
	s.Move(80)
	assert.Equal(t, 50.0, s.Position())

	frame.rect.Width = 100
	s.Move(80)
	assert.Equal(t, 80.0, s.Position())
}

func TestSlider_NilFrameIsNoOp(t *testing.T) {
	s := newSlider(t, nil, nil)
	s.Press()
	assert.NotPanics(t, func() { s.Move(80) })
	assert.Equal(t, 50.0, s.Position())
}

func TestSlider_ListenersHeldOnlyWhileDragging(t *testing.T) {
	l := &countingListeners{}
	s := newSlider(t, &fakeFrame{mounted: true, rect: Rect{Width: 10}}, l)

	assert.Equal(t, 0, l.active())
	s.Press()
	assert.Equal(t, 1, l.active())
	s.Press()
	assert.Equal(t, 1, l.acquired)

	s.Release()
	assert.Equal(t, 0, l.active())
	s.Release()
	assert.Equal(t, 1, l.released)
}

func TestSlider_CloseReleasesListeners(t *testing.T) {
	l := &countingListeners{}
	s := newSlider(t, &fakeFrame{}, l)

	s.Press()
	s.Close()
	assert.Equal(t, 0, l.active())
	assert.Equal(t, Idle, s.State())

	s.Close()
	assert.Equal(t, 1, l.released)

	idle := newSlider(t, &fakeFrame{}, l)
	idle.Close()
	assert.Equal(t, 0, l.active())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "dragging", Dragging.String())
	assert.Equal(t, "State(7)", State(7).String())
}
