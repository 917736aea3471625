package calibration

import (
	"image"
	"image/color"

	"chart-digitizer/pkg/geometry"
)

// Stroke describes how a line is drawn. Dash holds alternating on/off run
// lengths in pixels; an empty Dash draws a solid line.
type Stroke struct {
	Color color.Color
	Width int
	Dash  []int
}

// Surface is the 2D raster the controller draws on. Its size is the backing
// resolution in canvas pixels, which may differ from the size it is displayed at.
type Surface interface {
	Size() (w, h int)
	// Resize sets the backing resolution. Contents are discarded.
	Resize(w, h int)
	// Clear makes every pixel transparent.
	Clear()
	FillRect(r geometry.Rect, c color.Color)
	StrokeLine(x1, y1, x2, y2 float64, s Stroke)
	// DrawImage draws img scaled into dst.
	DrawImage(img image.Image, dst geometry.Rect)
	// FillText draws text with its baseline origin at (x, y).
	FillText(text string, x, y float64, c color.Color)
}

// Host is the set of page elements the controller writes to.
type Host interface {
	SetField(name, value string)
	SetHelpVisible(visible bool)
	Alert(message string)
}
