package view

import (
	"errors"
	"fmt"
	"math"

	"github.com/BrugadaSyndrome/bslogger"
)

var (
	ErrCapacity    = errors.New("view history is full")
	ErrInvalidZoom = errors.New("invalid zoom factor")
	ErrOutOfBounds = errors.New("pixel outside the view")
)

const DefaultCapacity = 1024

// Stack is the navigation history. The current view is always the top and the root can never be popped.
type Stack struct {
	capacity  int
	clickZoom float64
	logger    bslogger.Logger
	parking   bool
	views     []*View
}

type Option func(*Stack)

// WithClickZoom sets the factor PushZoomAt multiplies the zoom by. The default of 1 only recenters.
func WithClickZoom(factor float64) Option {
	return func(s *Stack) {
		if factor > 0 && !math.IsInf(factor, 0) {
			s.clickZoom = factor
		}
	}
}

// WithParking controls whether covered views keep their pixels compressed instead of in full.
func WithParking(enabled bool) Option {
	return func(s *Stack) {
		s.parking = enabled
	}
}

func NewStack(root *View, capacity int, opts ...Option) *Stack {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &Stack{
		capacity:  capacity,
		clickZoom: 1,
		logger:    bslogger.NewLogger("ViewStack", bslogger.Normal, nil),
		parking:   true,
		views:     make([]*View, 0, min(capacity, 64)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.views = append(s.views, root)
	return s
}

func (s *Stack) Current() *View {
	return s.views[len(s.views)-1]
}

func (s *Stack) Depth() int {
	return len(s.views)
}

func (s *Stack) Capacity() int {
	return s.capacity
}

// PushZoom pushes a copy of the current view with its zoom multiplied by factor.
func (s *Stack) PushZoom(factor float64) (*View, error) {
	if err := s.checkPush(factor); err != nil {
		return nil, err
	}
	next := s.Current().Copy()
	next.Zoom *= factor
	s.push(next)
	return next, nil
}

// PushZoomAt pushes a copy of the current view centered on pixel (px, py), mapped with the current view's frame.
func (s *Stack) PushZoomAt(px int, py int) (*View, error) {
	top := s.Current()
	if px < 0 || py < 0 || px >= top.Width || py >= top.Height {
		return nil, fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfBounds, px, py, top.Width, top.Height)
	}
	if err := s.checkPush(s.clickZoom); err != nil {
		return nil, err
	}
	next := top.Copy()
	next.CenterX, next.CenterY = top.Frame().PlaneCoordinate(px, py)
	next.Zoom *= s.clickZoom
	s.push(next)
	return next, nil
}

// Pop discards the current view and returns to the previous one. It reports false at the root.
func (s *Stack) Pop() bool {
	if len(s.views) <= 1 {
		return false
	}
	last := len(s.views) - 1
	s.views[last].Release()
	s.views[last] = nil
	s.views = s.views[:last]

	if err := s.Current().unpark(); err != nil {
		s.logger.Warningf("Recomputing %s: %s", s.Current().String(), err)
	}
	return true
}

func (s *Stack) checkPush(factor float64) error {
	if len(s.views) >= s.capacity {
		return fmt.Errorf("%w: %d views", ErrCapacity, s.capacity)
	}
	zoom := s.Current().Zoom * factor
	if !(factor > 0) || math.IsInf(factor, 0) || !(zoom > 0) || math.IsInf(zoom, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidZoom, factor)
	}
	return nil
}

func (s *Stack) push(next *View) {
	if s.parking {
		s.Current().park()
	}
	s.views = append(s.views, next)
	s.logger.Debugf("Pushed %s (depth %d)", next.String(), len(s.views))
}
