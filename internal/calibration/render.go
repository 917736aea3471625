package calibration

import (
	"image"
	"image/color"

	"chart-digitizer/pkg/colorutil"
	"chart-digitizer/pkg/geometry"
)

// Style controls how the canvas is painted.
type Style struct {
	Background  color.Color
	Grid        color.Color
	GridSpacing int
	GridDash    int

	Marker         color.Color
	CrosshairSize  float64
	CrosshairWidth int
	LabelOffset    geometry.Point2D
}

// DefaultStyle returns the standard light grid with red markers.
func DefaultStyle() Style {
	return Style{
		Background:     colorutil.Background,
		Grid:           colorutil.Grid,
		GridSpacing:    50,
		GridDash:       5,
		Marker:         colorutil.Marker,
		CrosshairSize:  30,
		CrosshairWidth: 2,
		LabelOffset:    geometry.Point2D{X: 18, Y: -5},
	}
}

// DrawBackground fills the surface and draws the dashed placeholder grid.
func DrawBackground(s Surface, st Style) {
	w, h := s.Size()
	s.FillRect(geometry.NewRect(0, 0, float64(w), float64(h)), st.Background)

	spacing := st.GridSpacing
	if spacing <= 0 {
		return
	}
	line := Stroke{Color: st.Grid, Width: 1}
	if st.GridDash > 0 {
		line.Dash = []int{st.GridDash, st.GridDash}
	}
	for x := 0; x <= w; x += spacing {
		s.StrokeLine(float64(x), 0, float64(x), float64(h), line)
	}
	for y := 0; y <= h; y += spacing {
		s.StrokeLine(0, float64(y), float64(w), float64(y), line)
	}
}

// DrawCrosshair draws the marker for the point at zero-based index i.
func DrawCrosshair(s Surface, st Style, at geometry.Point2D, i int) {
	half := st.CrosshairSize / 2
	line := Stroke{Color: st.Marker, Width: st.CrosshairWidth}

	s.StrokeLine(at.X-half, at.Y, at.X+half, at.Y, line)
	s.StrokeLine(at.X, at.Y-half, at.X, at.Y+half, line)
	s.FillText(Label(i), at.X+st.LabelOffset.X, at.Y+st.LabelOffset.Y, st.Marker)
}

// Redraw repaints the image and every point marker. Without an image it
// paints the background grid instead.
func Redraw(s Surface, st Style, img image.Image, v ViewState, points []Point) {
	if img == nil {
		DrawBackground(s, st)
		return
	}

	s.Clear()
	s.DrawImage(img, v.ImageRect())
	for i, p := range points {
		DrawCrosshair(s, st, p.markerAt(v), i)
	}
}
