// Package canvas provides the calibration canvas widget.
package canvas

import (
	"image"
	"sync"

	"chart-digitizer/internal/calibration"
	"chart-digitizer/internal/raster"
	"chart-digitizer/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// Fields receives form updates and alerts from the canvas.
type Fields interface {
	SetField(name, value string)
	Alert(message string)
}

// CalibrationCanvas displays a chart image and records two calibration clicks.
// The drawing is rendered into an RGBA surface sized from the widget width and
// shown through a raster at the top of the widget.
type CalibrationCanvas struct {
	widget.BaseWidget

	surface *raster.Surface
	ctrl    *calibration.Controller
	opts    calibration.Options
	fields  Fields

	// Display state
	raster *fynecanvas.Raster
	help   *helpOverlay

	mu         sync.Mutex
	canvasSize fyne.Size // raster area in widget coordinates

	// Callbacks
	onPointsChange func(points []calibration.Point)
}

var _ calibration.Host = (*canvasHost)(nil)

// canvasHost routes controller output: fields and alerts to the form, help
// visibility to the overlay.
type canvasHost struct {
	cc *CalibrationCanvas
}

func (h canvasHost) SetField(name, value string) {
	if h.cc.fields != nil {
		h.cc.fields.SetField(name, value)
	}
}

func (h canvasHost) SetHelpVisible(visible bool) {
	h.cc.help.SetVisible(visible)
}

func (h canvasHost) Alert(message string) {
	if h.cc.fields != nil {
		h.cc.fields.Alert(message)
	}
}

// NewCalibrationCanvas creates a canvas writing to fields.
func NewCalibrationCanvas(fields Fields, opts calibration.Options) *CalibrationCanvas {
	cc := &CalibrationCanvas{
		surface:    raster.New(0, 0),
		opts:       opts,
		fields:     fields,
		help:       newHelpOverlay(),
		canvasSize: fyne.NewSize(0, float32(opts.MinHeight)),
	}
	cc.ctrl = calibration.NewController(cc.surface, canvasHost{cc: cc}, opts)

	cc.raster = fynecanvas.NewRaster(cc.draw)
	cc.raster.ScaleMode = fynecanvas.ImageScalePixels

	cc.ExtendBaseWidget(cc)
	return cc
}

// Controller returns the underlying controller.
func (cc *CalibrationCanvas) Controller() *calibration.Controller {
	return cc.ctrl
}

// Surface returns the drawing surface.
func (cc *CalibrationCanvas) Surface() *raster.Surface {
	return cc.surface
}

// OnPointsChange sets a callback invoked after a click places a point or after
// the points are cleared.
func (cc *CalibrationCanvas) OnPointsChange(callback func(points []calibration.Point)) {
	cc.onPointsChange = callback
}

// SetImage shows img and discards any placed points.
func (cc *CalibrationCanvas) SetImage(img image.Image) {
	if cc.ctrl.LoadImage(img) {
		cc.refreshRaster()
		cc.notifyPoints()
	}
}

// Reset clears the points and redraws.
func (cc *CalibrationCanvas) Reset() {
	cc.ctrl.Reset()
	cc.refreshRaster()
	cc.notifyPoints()
}

// Submit reports whether both points are placed, alerting otherwise.
func (cc *CalibrationCanvas) Submit() bool {
	return cc.ctrl.Submit()
}

// HelpVisible reports whether the upload hint is showing.
func (cc *CalibrationCanvas) HelpVisible() bool {
	return cc.help.Visible()
}

// Tapped handles left-click events.
func (cc *CalibrationCanvas) Tapped(ev *fyne.PointEvent) {
	cc.mu.Lock()
	size := cc.canvasSize
	cc.mu.Unlock()

	display := geometry.NewRect(0, 0, float64(size.Width), float64(size.Height))
	if cc.ctrl.Click(float64(ev.Position.X), float64(ev.Position.Y), display) {
		cc.refreshRaster()
		cc.notifyPoints()
	}
}

// MinSize keeps room for the minimum canvas height.
func (cc *CalibrationCanvas) MinSize() fyne.Size {
	return fyne.NewSize(200, float32(cc.opts.MinHeight))
}

// layout sizes the canvas from the widget width and returns the raster area.
func (cc *CalibrationCanvas) layout(size fyne.Size) fyne.Size {
	width := int(size.Width)
	cs := calibration.CanvasSizeFor(width, cc.opts.MinHeight, cc.opts.HeightRatio)
	area := fyne.NewSize(float32(cs.Width), float32(cs.Height))

	cc.mu.Lock()
	cc.canvasSize = area
	cc.mu.Unlock()

	cc.ctrl.Resize(width)
	return area
}

func (cc *CalibrationCanvas) draw(w, h int) image.Image {
	return cc.surface.Snapshot()
}

func (cc *CalibrationCanvas) refreshRaster() {
	cc.raster.Refresh()
}

func (cc *CalibrationCanvas) notifyPoints() {
	if cc.onPointsChange != nil {
		cc.onPointsChange(cc.ctrl.Points())
	}
}

// CreateRenderer implements fyne.Widget.
func (cc *CalibrationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &calibrationCanvasRenderer{canvas: cc}
}

type calibrationCanvasRenderer struct {
	canvas *CalibrationCanvas
}

func (r *calibrationCanvasRenderer) Layout(size fyne.Size) {
	area := r.canvas.layout(size)
	r.canvas.raster.Move(fyne.NewPos(0, 0))
	r.canvas.raster.Resize(area)
	r.canvas.help.Layout(area)
	r.canvas.raster.Refresh()
}

func (r *calibrationCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.MinSize()
}

func (r *calibrationCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
	r.canvas.help.Refresh()
}

func (r *calibrationCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster, r.canvas.help.label}
}

func (r *calibrationCanvasRenderer) Destroy() {}
