package app

import (
	"math"

	"github.com/andewx/diesel2d"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	keyCount         = int(glfw.KeyLast) + 1
	mouseButtonCount = int(glfw.MouseButtonLast) + 1

	// minDragDistance is how far, in pixels, the cursor must move with a
	// button held before the motion counts as a drag.
	minDragDistance = 2.0
)

// Position is a point in physical pixels, origin at the window's top left.
type Position struct {
	X, Y float64
}

func (p Position) sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Position) add(q Position) Position {
	return Position{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Position) length() float64 {
	return math.Hypot(p.X, p.Y)
}

// MouseDragState describes a drag in progress or one that just finished.
type MouseDragState struct {
	BeginPosition         Position
	EndPosition           Position
	PreviousFrameDelta    Position
	AccumulatedFrameDelta Position
}

type mouseButtonState struct {
	down bool

	justDownPosition *Position
	justUpPosition   *Position
	justClicked      *Position
	downPosition     *Position

	dragInProgress *MouseDragState
	dragJustDone   *MouseDragState
}

// InputState is the keyboard and mouse state as of the latest frame. The
// "just" queries report edges that happened since the previous EndFrame.
type InputState struct {
	windowSize  diesel2d.PhysicalSize
	scaleFactor float64

	keyDown     [keyCount]bool
	keyJustDown [keyCount]bool
	keyJustUp   [keyCount]bool

	mousePosition   Position
	mouseWheelDelta Position
	buttons         [mouseButtonCount]mouseButtonState
}

func NewInputState(size diesel2d.PhysicalSize, scaleFactor float64) *InputState {
	return &InputState{windowSize: size, scaleFactor: scaleFactor}
}

func (s *InputState) WindowSize() diesel2d.PhysicalSize {
	return s.windowSize
}

func (s *InputState) ScaleFactor() float64 {
	return s.scaleFactor
}

func validKey(key glfw.Key) bool {
	return key >= 0 && int(key) < keyCount
}

func validButton(button glfw.MouseButton) bool {
	return button >= 0 && int(button) < mouseButtonCount
}

func (s *InputState) IsKeyDown(key glfw.Key) bool {
	return validKey(key) && s.keyDown[key]
}

func (s *InputState) IsKeyJustDown(key glfw.Key) bool {
	return validKey(key) && s.keyJustDown[key]
}

func (s *InputState) IsKeyJustUp(key glfw.Key) bool {
	return validKey(key) && s.keyJustUp[key]
}

func (s *InputState) MousePosition() Position {
	return s.mousePosition
}

// MouseWheelDelta is the scroll offset accumulated this frame.
func (s *InputState) MouseWheelDelta() Position {
	return s.mouseWheelDelta
}

func (s *InputState) IsMouseDown(button glfw.MouseButton) bool {
	return validButton(button) && s.buttons[button].down
}

func (s *InputState) IsMouseJustDown(button glfw.MouseButton) bool {
	_, ok := s.MouseJustDownPosition(button)
	return ok
}

func (s *InputState) MouseJustDownPosition(button glfw.MouseButton) (Position, bool) {
	if !validButton(button) {
		return Position{}, false
	}
	return deref(s.buttons[button].justDownPosition)
}

func (s *InputState) IsMouseJustUp(button glfw.MouseButton) bool {
	_, ok := s.MouseJustUpPosition(button)
	return ok
}

func (s *InputState) MouseJustUpPosition(button glfw.MouseButton) (Position, bool) {
	if !validButton(button) {
		return Position{}, false
	}
	return deref(s.buttons[button].justUpPosition)
}

// IsMouseJustClicked reports a press and release without a drag between.
func (s *InputState) IsMouseJustClicked(button glfw.MouseButton) bool {
	_, ok := s.MouseJustClickedPosition(button)
	return ok
}

func (s *InputState) MouseJustClickedPosition(button glfw.MouseButton) (Position, bool) {
	if !validButton(button) {
		return Position{}, false
	}
	return deref(s.buttons[button].justClicked)
}

func (s *InputState) IsMouseDragInProgress(button glfw.MouseButton) bool {
	_, ok := s.MouseDragInProgress(button)
	return ok
}

func (s *InputState) MouseDragInProgress(button glfw.MouseButton) (MouseDragState, bool) {
	if !validButton(button) {
		return MouseDragState{}, false
	}
	return deref(s.buttons[button].dragInProgress)
}

func (s *InputState) IsMouseDragJustFinished(button glfw.MouseButton) bool {
	_, ok := s.MouseDragJustFinished(button)
	return ok
}

func (s *InputState) MouseDragJustFinished(button glfw.MouseButton) (MouseDragState, bool) {
	if !validButton(button) {
		return MouseDragState{}, false
	}
	return deref(s.buttons[button].dragJustDone)
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

func ptr[T any](v T) *T {
	return &v
}

// EndFrame clears the per-frame edges. Call it after the update step.
func (s *InputState) EndFrame() {
	s.keyJustDown = [keyCount]bool{}
	s.keyJustUp = [keyCount]bool{}
	s.mouseWheelDelta = Position{}
	for i := range s.buttons {
		b := &s.buttons[i]
		b.justDownPosition = nil
		b.justUpPosition = nil
		b.justClicked = nil
		b.dragJustDone = nil
		if b.dragInProgress != nil {
			b.dragInProgress.PreviousFrameDelta = Position{}
		}
	}
}

func (s *InputState) handleResize(size diesel2d.PhysicalSize) {
	s.windowSize = size
}

func (s *InputState) handleScale(scale float64) {
	s.scaleFactor = scale
}

func (s *InputState) handleKey(key glfw.Key, action glfw.Action) {
	if !validKey(key) {
		diesel2d.Logger().Debug("ignoring key outside the known range", "key", int(key))
		return
	}
	switch action {
	case glfw.Press:
		s.keyDown[key] = true
		s.keyJustDown[key] = true
	case glfw.Release:
		s.keyDown[key] = false
		s.keyJustUp[key] = true
	}
}

func (s *InputState) handleMouseButton(button glfw.MouseButton, action glfw.Action) {
	if !validButton(button) {
		return
	}
	b := &s.buttons[button]
	pos := s.mousePosition
	switch action {
	case glfw.Press:
		b.down = true
		b.justDownPosition = ptr(pos)
		b.downPosition = ptr(pos)
	case glfw.Release:
		b.down = false
		b.justUpPosition = ptr(pos)
		if b.dragInProgress != nil {
			done := *b.dragInProgress
			done.EndPosition = pos
			b.dragJustDone = &done
			b.dragInProgress = nil
		} else if b.downPosition != nil {
			b.justClicked = ptr(pos)
		}
		b.downPosition = nil
	}
}

func (s *InputState) handleMouseMove(pos Position) {
	previous := s.mousePosition
	s.mousePosition = pos
	for i := range s.buttons {
		b := &s.buttons[i]
		if b.downPosition == nil {
			continue
		}
		if b.dragInProgress != nil {
			delta := pos.sub(previous)
			d := b.dragInProgress
			d.EndPosition = pos
			d.PreviousFrameDelta = d.PreviousFrameDelta.add(delta)
			d.AccumulatedFrameDelta = d.AccumulatedFrameDelta.add(delta)
			continue
		}
		moved := pos.sub(*b.downPosition)
		if moved.length() > minDragDistance {
			b.dragInProgress = &MouseDragState{
				BeginPosition:         *b.downPosition,
				EndPosition:           pos,
				PreviousFrameDelta:    moved,
				AccumulatedFrameDelta: moved,
			}
		}
	}
}

func (s *InputState) handleScroll(dx, dy float64) {
	s.mouseWheelDelta = s.mouseWheelDelta.add(Position{X: dx, Y: dy})
}
