package calibration

import (
	"math"

	"chart-digitizer/pkg/geometry"
)

// DefaultMargin is the total space, in canvas pixels, left around a fitted image
// in each dimension.
const DefaultMargin = 40

// ViewState maps image space to canvas space: the image is scaled by Scale and
// drawn with its top-left corner at Offset. It is derived from the canvas and
// image sizes and only built by NewViewState.
type ViewState struct {
	scale  float64
	offset geometry.Point2D
	canvas geometry.Size
	image  geometry.Size
}

// FitScale returns the largest scale no greater than 1 at which an image of
// size img fits inside area less margin.
func FitScale(img, area geometry.Size, margin float64) float64 {
	if img.Empty() {
		return 1
	}
	maxW := math.Max(float64(area.Width)-margin, 1)
	maxH := math.Max(float64(area.Height)-margin, 1)
	return math.Min(math.Min(maxW/float64(img.Width), maxH/float64(img.Height)), 1)
}

// NewViewState fits an image into the canvas and centers it.
func NewViewState(canvas, img geometry.Size, margin float64) ViewState {
	scale := FitScale(img, canvas, margin)
	return ViewState{
		scale: scale,
		offset: geometry.Point2D{
			X: (float64(canvas.Width) - float64(img.Width)*scale) / 2,
			Y: (float64(canvas.Height) - float64(img.Height)*scale) / 2,
		},
		canvas: canvas,
		image:  img,
	}
}

// Scale returns the image-to-canvas scale factor.
func (v ViewState) Scale() float64 { return v.scale }

// Offset returns the canvas position of the image's top-left corner.
func (v ViewState) Offset() geometry.Point2D { return v.offset }

// CanvasSize returns the canvas size the view was computed for.
func (v ViewState) CanvasSize() geometry.Size { return v.canvas }

// ImageSize returns the unscaled image size.
func (v ViewState) ImageSize() geometry.Size { return v.image }

// ImageRect returns the box the scaled image occupies on the canvas.
func (v ViewState) ImageRect() geometry.Rect {
	return geometry.NewRect(v.offset.X, v.offset.Y,
		float64(v.image.Width)*v.scale, float64(v.image.Height)*v.scale)
}

// Contains reports whether a canvas point lies on the drawn image, edges included.
func (v ViewState) Contains(p geometry.Point2D) bool {
	return !v.image.Empty() && v.ImageRect().Contains(p)
}

// Transform returns the image-to-canvas transform.
func (v ViewState) Transform() geometry.AffineTransform {
	return geometry.Translation(v.offset.X, v.offset.Y).Compose(geometry.Scale(v.scale, v.scale))
}

// ImageToCanvas maps an image-space point to canvas space.
func (v ViewState) ImageToCanvas(p geometry.Point2D) geometry.Point2D {
	return v.Transform().Apply(p)
}

// CanvasToImage maps a canvas point to unrounded image coordinates as
// (canvas - offset) / scale, the value rounded to obtain image pixels.
func (v ViewState) CanvasToImage(p geometry.Point2D) geometry.Point2D {
	if v.scale <= 0 {
		return geometry.Point2D{}
	}
	return geometry.Point2D{
		X: (p.X - v.offset.X) / v.scale,
		Y: (p.Y - v.offset.Y) / v.scale,
	}
}

// ClientToCanvas converts a pointer position in display coordinates to canvas
// pixels. display is where the canvas is shown; backing is its pixel resolution.
// The two differ when the surface is stretched for display.
func ClientToCanvas(client geometry.Point2D, display geometry.Rect, backing geometry.Size) geometry.Point2D {
	sx, sy := 1.0, 1.0
	if display.Width > 0 {
		sx = float64(backing.Width) / display.Width
	}
	if display.Height > 0 {
		sy = float64(backing.Height) / display.Height
	}
	return geometry.Point2D{
		X: (client.X - display.X) * sx,
		Y: (client.Y - display.Y) * sy,
	}
}

// CanvasSizeFor returns the canvas size for a container width: the full width,
// and a height of ratio times the width but never below minHeight.
func CanvasSizeFor(containerWidth, minHeight int, ratio float64) geometry.Size {
	if containerWidth < 0 {
		containerWidth = 0
	}
	h := int(math.Max(float64(minHeight), float64(containerWidth)*ratio))
	return geometry.NewSize(containerWidth, h)
}
