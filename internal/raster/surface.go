// Package raster provides an in-memory RGBA drawing surface for the calibration canvas.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"chart-digitizer/internal/calibration"
	"chart-digitizer/pkg/geometry"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Surface is a calibration.Surface backed by an *image.RGBA. It is safe to read
// snapshots from a render goroutine while the controller draws.
type Surface struct {
	mu     sync.RWMutex
	img    *image.RGBA
	face   font.Face
	scaler xdraw.Scaler
}

var _ calibration.Surface = (*Surface)(nil)

// New creates a transparent surface of the given size.
func New(w, h int) *Surface {
	return &Surface{
		img:    image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0))),
		face:   basicfont.Face7x13,
		scaler: xdraw.ApproxBiLinear,
	}
}

// Size returns the backing resolution.
func (s *Surface) Size() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize replaces the backing image; contents are discarded.
func (s *Surface) Resize(w, h int) {
	s.mu.Lock()
	s.img = image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	s.mu.Unlock()
}

// Clear makes every pixel transparent.
func (s *Surface) Clear() {
	s.mu.Lock()
	clear(s.img.Pix)
	s.mu.Unlock()
}

// FillRect fills r, clipped to the surface.
func (s *Surface) FillRect(r geometry.Rect, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.img, r.ToImageRect(), image.NewUniform(c), image.Point{}, draw.Over)
}

// StrokeLine draws a line of the given width, optionally dashed.
func (s *Surface) StrokeLine(x1, y1, x2, y2 float64, st calibration.Stroke) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drawLine(s.img,
		int(math.Round(x1)), int(math.Round(y1)),
		int(math.Round(x2)), int(math.Round(y2)),
		st.Color, st.Width, st.Dash)
}

// DrawImage draws img scaled into dst.
func (s *Surface) DrawImage(img image.Image, dst geometry.Rect) {
	if img == nil || dst.Empty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scaler.Scale(s.img, dst.ToImageRect(), img, img.Bounds(), draw.Over, nil)
}

// FillText draws text with its baseline origin at (x, y).
func (s *Surface) FillText(text string, x, y float64, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: s.face,
		Dot:  fixed.P(int(math.Round(x)), int(math.Round(y))),
	}
	d.DrawString(text)
}

// Snapshot returns a copy of the current pixels.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// drawLine draws a Bresenham line stamped with a square pen of the given
// width. dash alternates on/off run lengths counted in steps along the line.
func drawLine(dst *image.RGBA, x1, y1, x2, y2 int, col color.Color, width int, dash []int) {
	if width <= 0 {
		width = 1
	}
	bounds := dst.Bounds()
	lo := -(width / 2)
	hi := lo + width - 1

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	period := 0
	for _, d := range dash {
		period += d
	}

	err := dx - dy
	for step := 0; ; step++ {
		if dashOn(dash, period, step) {
			for t := lo; t <= hi; t++ {
				for u := lo; u <= hi; u++ {
					p := image.Pt(x1+u, y1+t)
					if p.In(bounds) {
						dst.Set(p.X, p.Y, col)
					}
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// dashOn reports whether the pen is down at the given step.
func dashOn(dash []int, period, step int) bool {
	if period <= 0 {
		return true
	}
	pos := step % period
	for i, d := range dash {
		if pos < d {
			return i%2 == 0
		}
		pos -= d
	}
	return true
}
