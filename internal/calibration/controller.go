// Package calibration implements the calibration canvas: an image fitted into a
// resizable drawing surface on which the user clicks two reference points.
// Clicks are mapped from display coordinates to canvas pixels and then to the
// image's own pixel grid, and the result is written into form fields.
package calibration

import (
	"image"
	"log"
	"strconv"
	"sync"

	"chart-digitizer/internal/config"
	"chart-digitizer/internal/form"
	"chart-digitizer/pkg/colorutil"
	"chart-digitizer/pkg/geometry"
)

// User-facing messages.
const (
	MsgNoImage       = "Please upload an image first"
	MsgNeedTwoPoints = "Please select two calibration points on the y-axis"
)

// ExtraClickPolicy decides what a click does once both points are placed.
type ExtraClickPolicy int

const (
	// IgnoreExtraClicks drops clicks once the set is full.
	IgnoreExtraClicks ExtraClickPolicy = iota
	// RestartOnExtraClick discards both points and starts over with the click as P1.
	RestartOnExtraClick
)

// Options configures a Controller.
type Options struct {
	Margin      float64
	MinHeight   int
	HeightRatio float64
	Baseline    string
	ExtraClicks ExtraClickPolicy
	Style       Style
	Debug       bool
}

// DefaultOptions returns the standard canvas behaviour.
func DefaultOptions() Options {
	return Options{
		Margin:      DefaultMargin,
		MinHeight:   400,
		HeightRatio: 0.6,
		Baseline:    form.DefaultBaseline,
		ExtraClicks: IgnoreExtraClicks,
		Style:       DefaultStyle(),
	}
}

// OptionsFromConfig builds Options from a validated config. Unparseable colors
// keep their defaults.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.Margin = cfg.Margin
	opts.MinHeight = cfg.MinHeight
	opts.HeightRatio = cfg.HeightRatio
	opts.Baseline = cfg.Baseline
	opts.Debug = cfg.Debug
	if cfg.ExtraClickPolicy == config.PolicyRestart {
		opts.ExtraClicks = RestartOnExtraClick
	}

	st := &opts.Style
	st.GridSpacing = cfg.GridSpacing
	st.GridDash = cfg.GridDash
	st.CrosshairSize = cfg.CrosshairSize
	st.CrosshairWidth = cfg.CrosshairWidth
	st.LabelOffset = geometry.Point2D{X: cfg.LabelOffsetX, Y: cfg.LabelOffsetY}
	if c, err := colorutil.ParseHex(cfg.BackgroundColor); err == nil {
		st.Background = c
	}
	if c, err := colorutil.ParseHex(cfg.GridColor); err == nil {
		st.Grid = c
	}
	if c, err := colorutil.ParseHex(cfg.MarkerColor); err == nil {
		st.Marker = c
	}
	return opts
}

// Controller owns the image, view and calibration points for one canvas.
// All inputs go through Dispatch and are serialized by the controller lock.
type Controller struct {
	mu sync.Mutex

	surface Surface
	host    Host
	opts    Options

	img    image.Image
	view   ViewState
	points Set
}

// NewController creates a controller drawing on surface and writing to host.
// The canvas is not sized until the first resize event.
func NewController(surface Surface, host Host, opts Options) *Controller {
	return &Controller{
		surface: surface,
		host:    host,
		opts:    opts,
	}
}

// Dispatch routes an event through the handler table. Unknown kinds are ignored.
func (c *Controller) Dispatch(ev Event) bool {
	h, ok := handlers[ev.Kind]
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return h(c, ev)
}

// Resize sizes the canvas for a container width. It reports whether the canvas
// changed; an unchanged size draws nothing.
func (c *Controller) Resize(containerWidth int) bool {
	return c.Dispatch(ResizeEvent(containerWidth))
}

// LoadImage replaces the image and discards all points. A nil image is ignored.
func (c *Controller) LoadImage(img image.Image) bool {
	return c.Dispatch(ImageLoadedEvent(img))
}

// Click handles a pointer click at client position (x, y) on a canvas shown in
// display. It reports whether a point was added.
func (c *Controller) Click(x, y float64, display geometry.Rect) bool {
	return c.Dispatch(ClickEvent(x, y, display))
}

// Reset clears all points and fields.
func (c *Controller) Reset() {
	c.Dispatch(Event{Kind: EventReset})
}

// Submit reports whether the form may be submitted.
func (c *Controller) Submit() bool {
	return c.Dispatch(Event{Kind: EventSubmit})
}

// Points returns the placed points in click order.
func (c *Controller) Points() []Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.points.Points()
}

// State returns the calibration progress.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.points.State()
}

// View returns the current view.
func (c *Controller) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// HasImage reports whether an image is loaded.
func (c *Controller) HasImage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.img != nil
}

func (c *Controller) resize(containerWidth int) bool {
	size := CanvasSizeFor(containerWidth, c.opts.MinHeight, c.opts.HeightRatio)
	w, h := c.surface.Size()
	if size.Width == w && size.Height == h {
		return false
	}

	c.surface.Resize(size.Width, size.Height)
	DrawBackground(c.surface, c.opts.Style)
	if c.img != nil {
		c.view = NewViewState(size, imageSize(c.img), c.opts.Margin)
		c.redraw()
	}
	return true
}

func (c *Controller) loadImage(img image.Image) bool {
	if img == nil {
		return false
	}

	c.host.SetHelpVisible(false)
	c.img = img
	c.view = NewViewState(c.canvasSize(), imageSize(img), c.opts.Margin)
	c.clearPoints()
	c.redraw()

	if c.opts.Debug {
		log.Printf("calibration: image %dx%d scale=%.4f offset=(%.1f,%.1f)",
			c.view.image.Width, c.view.image.Height, c.view.scale, c.view.offset.X, c.view.offset.Y)
	}
	return true
}

func (c *Controller) click(client geometry.Point2D, display geometry.Rect) bool {
	if c.img == nil {
		c.host.Alert(MsgNoImage)
		return false
	}

	p := ClientToCanvas(client, display, c.canvasSize())
	if !c.view.Contains(p) {
		return false
	}

	if c.points.Full() {
		if c.opts.ExtraClicks != RestartOnExtraClick {
			if c.opts.Debug {
				log.Printf("calibration: ignoring click at (%.1f,%.1f), both points placed", p.X, p.Y)
			}
			return false
		}
		c.clearPoints()
		c.redraw()
	}

	i := c.points.Len()
	DrawCrosshair(c.surface, c.opts.Style, p, i)

	pt := newPoint(p, c.view)
	c.points.add(pt)

	switch c.points.Len() {
	case 1:
		c.host.SetField(form.FieldX1, strconv.Itoa(pt.ImageX))
		c.host.SetField(form.FieldY1, strconv.Itoa(pt.ImageY))
		c.host.SetField(form.FieldBaseline, c.opts.Baseline)
	case 2:
		c.host.SetField(form.FieldX2, strconv.Itoa(pt.ImageX))
		c.host.SetField(form.FieldY2, strconv.Itoa(pt.ImageY))
	}

	if c.opts.Debug {
		log.Printf("calibration: %s canvas=(%.1f,%.1f) image=(%d,%d)", Label(i), p.X, p.Y, pt.ImageX, pt.ImageY)
	}
	return true
}

func (c *Controller) reset() {
	c.clearPoints()
	c.surface.Clear()
	if c.img != nil {
		c.redraw()
		return
	}
	DrawBackground(c.surface, c.opts.Style)
	c.host.SetHelpVisible(true)
}

func (c *Controller) submit() bool {
	if c.points.Len() < MaxPoints {
		c.host.Alert(MsgNeedTwoPoints)
		return false
	}
	return true
}

// clearPoints empties the set and the four coordinate fields.
func (c *Controller) clearPoints() {
	c.points.clear()
	for _, name := range form.CoordinateFields {
		c.host.SetField(name, "")
	}
}

func (c *Controller) redraw() {
	Redraw(c.surface, c.opts.Style, c.img, c.view, c.points.points)
}

func (c *Controller) canvasSize() geometry.Size {
	w, h := c.surface.Size()
	return geometry.NewSize(w, h)
}

func imageSize(img image.Image) geometry.Size {
	b := img.Bounds()
	return geometry.NewSize(b.Dx(), b.Dy())
}
