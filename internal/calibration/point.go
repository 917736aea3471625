package calibration

import (
	"fmt"

	"chart-digitizer/pkg/geometry"
)

// MaxPoints is the number of reference points a calibration needs.
const MaxPoints = 2

// Point is a calibration reference point. ScreenX/ScreenY are canvas pixels at
// click time; ImageX/ImageY are the rounded position in the unscaled image.
type Point struct {
	ScreenX, ScreenY float64
	ImageX, ImageY   int

	exact geometry.Point2D // unrounded image position
	view  ViewState        // view at click time
}

func newPoint(canvas geometry.Point2D, v ViewState) Point {
	exact := v.CanvasToImage(canvas)
	rounded := exact.Round()
	return Point{
		ScreenX: canvas.X,
		ScreenY: canvas.Y,
		ImageX:  rounded.X,
		ImageY:  rounded.Y,
		exact:   exact,
		view:    v,
	}
}

// Label returns the marker label for the point at zero-based index i.
func Label(i int) string {
	return fmt.Sprintf("P%d", i+1)
}

// markerAt returns where the point's marker belongs under view v. Under the
// click-time view that is exactly where the user clicked.
func (p Point) markerAt(v ViewState) geometry.Point2D {
	if v == p.view {
		return geometry.Point2D{X: p.ScreenX, Y: p.ScreenY}
	}
	return v.ImageToCanvas(p.exact)
}

// State is the calibration progress.
type State int

const (
	StateEmpty State = iota
	StateOnePoint
	StateTwoPoints
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateOnePoint:
		return "OnePoint"
	case StateTwoPoints:
		return "TwoPoints"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Set is an ordered list of at most MaxPoints points.
type Set struct {
	points []Point
}

// Len returns the number of points.
func (s *Set) Len() int { return len(s.points) }

// Full reports whether no more points can be added.
func (s *Set) Full() bool { return len(s.points) >= MaxPoints }

// Points returns a copy of the points in click order.
func (s *Set) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// State returns the calibration progress.
func (s *Set) State() State {
	return State(len(s.points))
}

// add appends p, refusing when full.
func (s *Set) add(p Point) bool {
	if s.Full() {
		return false
	}
	s.points = append(s.points, p)
	return true
}

func (s *Set) clear() {
	s.points = nil
}
