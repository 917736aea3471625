package calibration

import (
	"image"
	"testing"

	"chart-digitizer/internal/config"
	"chart-digitizer/internal/form"
	"chart-digitizer/pkg/colorutil"
	"chart-digitizer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A 1000 px container gives a 1000x600 canvas; a 1920x1080 image is drawn
// at scale 0.5 with its corner at (20, 30).
var fullDisplay = geometry.NewRect(0, 0, 1000, 600)

func chartImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 1920, 1080))
}

func newTestController(opts Options) (*Controller, *recordingSurface, *recordingHost) {
	s := &recordingSurface{}
	h := newRecordingHost()
	c := NewController(s, h, opts)
	c.Resize(1000)
	return c, s, h
}

func loadedController(t *testing.T, opts Options) (*Controller, *recordingSurface, *recordingHost) {
	t.Helper()
	c, s, h := newTestController(opts)
	require.True(t, c.LoadImage(chartImage()))
	return c, s, h
}

func TestController_ResizeSizesCanvasAndDrawsGrid(t *testing.T) {
	c, s, _ := newTestController(DefaultOptions())

	assert.Equal(t, 1000, s.w)
	assert.Equal(t, 600, s.h)
	// 21 vertical and 13 horizontal grid lines.
	assert.Equal(t, 34, countOps(s.ops, "line"))
	assert.Equal(t, 1, countOps(s.ops, "fill"))
	assert.False(t, c.HasImage())

	assert.True(t, c.Resize(400))
	assert.Equal(t, 400, s.w)
	assert.Equal(t, 400, s.h)
}

func TestController_ResizeUnchangedIsNoop(t *testing.T) {
	c, s, _ := loadedController(t, DefaultOptions())
	n := len(s.ops)

	assert.False(t, c.Resize(1000))
	assert.Empty(t, s.since(n))
}

func TestController_LoadImage(t *testing.T) {
	c, s, h := newTestController(DefaultOptions())
	h.fields[form.FieldX1] = "17"
	n := len(s.ops)

	require.True(t, c.LoadImage(chartImage()))

	assert.False(t, h.helpVisible)
	assert.Equal(t, "", h.fields[form.FieldX1])
	assert.Equal(t, StateEmpty, c.State())
	assert.Equal(t, 0.5, c.View().Scale())

	ops := s.since(n)
	require.Len(t, ops, 2)
	assert.Equal(t, "clear", ops[0].kind)
	assert.Equal(t, "image", ops[1].kind)
	assert.Equal(t, geometry.NewRect(20, 30, 960, 540), ops[1].rect)
}

func TestController_LoadNilImageIsNoop(t *testing.T) {
	c, s, h := newTestController(DefaultOptions())
	n := len(s.ops)

	assert.False(t, c.LoadImage(nil))
	assert.Empty(t, s.since(n))
	assert.True(t, h.helpVisible)
}

func TestController_ClickWithoutImageAlerts(t *testing.T) {
	c, s, h := newTestController(DefaultOptions())
	n := len(s.ops)

	assert.False(t, c.Click(520, 430, fullDisplay))

	assert.Equal(t, []string{MsgNoImage}, h.alerts)
	assert.Empty(t, c.Points())
	assert.Empty(t, s.since(n))
}

func TestController_TwoClicksFillFieldsInOrder(t *testing.T) {
	c, _, h := loadedController(t, DefaultOptions())

	require.True(t, c.Click(520, 430, fullDisplay))
	assert.Equal(t, StateOnePoint, c.State())
	assert.Equal(t, "1000", h.fields[form.FieldX1])
	assert.Equal(t, "800", h.fields[form.FieldY1])
	assert.Equal(t, form.DefaultBaseline, h.fields[form.FieldBaseline])
	assert.Equal(t, "", h.fields[form.FieldX2])

	require.True(t, c.Click(530, 130, fullDisplay))
	assert.Equal(t, StateTwoPoints, c.State())
	assert.Equal(t, "1020", h.fields[form.FieldX2])
	assert.Equal(t, "200", h.fields[form.FieldY2])

	pts := c.Points()
	require.Len(t, pts, 2)
	assert.Equal(t, Point{ScreenX: 520, ScreenY: 430, ImageX: 1000, ImageY: 800}, stripHidden(pts[0]))
	assert.Equal(t, Point{ScreenX: 530, ScreenY: 130, ImageX: 1020, ImageY: 200}, stripHidden(pts[1]))
	assert.Empty(t, h.alerts)
}

func TestController_ClickRoundsImageCoordinates(t *testing.T) {
	c, _, h := loadedController(t, DefaultOptions())

	// (100.3-20)/0.5 = 160.6, (200.2-30)/0.5 = 340.4
	require.True(t, c.Click(100.3, 200.2, fullDisplay))
	assert.Equal(t, "161", h.fields[form.FieldX1])
	assert.Equal(t, "340", h.fields[form.FieldY1])
}

func TestController_ClickCorrectsDisplayScaling(t *testing.T) {
	c, _, h := loadedController(t, DefaultOptions())

	// Canvas shown at half size at (100, 50): client (360, 265) is canvas (520, 430).
	require.True(t, c.Click(360, 265, geometry.NewRect(100, 50, 500, 300)))
	assert.Equal(t, "1000", h.fields[form.FieldX1])
	assert.Equal(t, "800", h.fields[form.FieldY1])
}

func TestController_ClickOutsideImageIsIgnored(t *testing.T) {
	c, s, h := loadedController(t, DefaultOptions())
	n := len(s.ops)

	assert.False(t, c.Click(10, 300, fullDisplay))
	assert.False(t, c.Click(500, 575, fullDisplay))

	assert.Empty(t, c.Points())
	assert.Empty(t, h.alerts)
	assert.Empty(t, s.since(n))
}

func TestController_ClickOnImageEdgeIsAccepted(t *testing.T) {
	c, _, h := loadedController(t, DefaultOptions())

	require.True(t, c.Click(980, 570, fullDisplay))
	assert.Equal(t, "1920", h.fields[form.FieldX1])
	assert.Equal(t, "1080", h.fields[form.FieldY1])
}

func TestController_ClickDrawsSameMarkerAsRedraw(t *testing.T) {
	c, s, _ := loadedController(t, DefaultOptions())
	n := len(s.ops)

	require.True(t, c.Click(520, 430, fullDisplay))
	immediate := s.since(n)

	var full recordingSurface
	full.w, full.h = s.w, s.h
	Redraw(&full, DefaultStyle(), chartImage(), c.View(), c.Points())

	// Redraw paints clear + image first, then the same marker ops.
	assert.Equal(t, immediate, full.ops[2:])
	assert.Equal(t, geometry.NewPoint2D(520, 430), markers(immediate)["P1"])
}

func TestController_ExtraClickIgnoredByDefault(t *testing.T) {
	c, s, h := loadedController(t, DefaultOptions())
	require.True(t, c.Click(520, 430, fullDisplay))
	require.True(t, c.Click(530, 130, fullDisplay))
	n := len(s.ops)

	assert.False(t, c.Click(600, 300, fullDisplay))

	assert.Len(t, c.Points(), MaxPoints)
	assert.Equal(t, "1000", h.fields[form.FieldX1])
	assert.Equal(t, "1020", h.fields[form.FieldX2])
	assert.Empty(t, s.since(n))
}

func TestController_ExtraClickRestarts(t *testing.T) {
	opts := DefaultOptions()
	opts.ExtraClicks = RestartOnExtraClick
	c, s, h := loadedController(t, opts)
	require.True(t, c.Click(520, 430, fullDisplay))
	require.True(t, c.Click(530, 130, fullDisplay))
	h.fields[form.FieldBaseline] = "12"
	n := len(s.ops)

	require.True(t, c.Click(120, 80, fullDisplay))

	assert.Equal(t, StateOnePoint, c.State())
	assert.Equal(t, "200", h.fields[form.FieldX1])
	assert.Equal(t, "100", h.fields[form.FieldY1])
	assert.Equal(t, "", h.fields[form.FieldX2])
	assert.Equal(t, "", h.fields[form.FieldY2])
	assert.Equal(t, form.DefaultBaseline, h.fields[form.FieldBaseline])

	got := markers(s.since(n))
	assert.Equal(t, map[string]geometry.Point2D{"P1": geometry.NewPoint2D(120, 80)}, got)
}

func TestController_ResetAfterTwoPoints(t *testing.T) {
	c, s, h := loadedController(t, DefaultOptions())
	require.True(t, c.Click(520, 430, fullDisplay))
	require.True(t, c.Click(530, 130, fullDisplay))
	n := len(s.ops)

	c.Reset()

	assert.Equal(t, StateEmpty, c.State())
	for _, name := range form.CoordinateFields {
		assert.Equal(t, "", h.fields[name], name)
	}
	ops := s.since(n)
	assert.Equal(t, 1, countOps(ops, "image"))
	assert.Equal(t, 0, countOps(ops, "text"))
	assert.False(t, h.helpVisible)
}

func TestController_ResetWithoutImageShowsPlaceholder(t *testing.T) {
	c, s, h := newTestController(DefaultOptions())
	h.helpVisible = false
	n := len(s.ops)

	c.Reset()

	assert.True(t, h.helpVisible)
	ops := s.since(n)
	assert.Equal(t, "clear", ops[0].kind)
	assert.Equal(t, "fill", ops[1].kind)
	assert.Equal(t, 0, countOps(ops, "image"))
}

func TestController_SubmitGuard(t *testing.T) {
	c, _, h := loadedController(t, DefaultOptions())

	assert.False(t, c.Submit())
	require.True(t, c.Click(520, 430, fullDisplay))
	assert.False(t, c.Submit())
	assert.Equal(t, []string{MsgNeedTwoPoints, MsgNeedTwoPoints}, h.alerts)

	require.True(t, c.Click(530, 130, fullDisplay))
	assert.True(t, c.Submit())
	assert.Len(t, h.alerts, 2)
}

func TestController_NewImageDiscardsPoints(t *testing.T) {
	c, _, h := loadedController(t, DefaultOptions())
	require.True(t, c.Click(520, 430, fullDisplay))
	require.True(t, c.Click(530, 130, fullDisplay))

	require.True(t, c.LoadImage(image.NewRGBA(image.Rect(0, 0, 300, 200))))

	assert.Equal(t, StateEmpty, c.State())
	assert.Equal(t, "", h.fields[form.FieldX2])
	assert.Equal(t, 1.0, c.View().Scale())
	assert.Equal(t, geometry.NewPoint2D(350, 200), c.View().Offset())
}

func TestController_ResizeReprojectsMarkers(t *testing.T) {
	c, s, _ := loadedController(t, DefaultOptions())
	require.True(t, c.Click(520, 430, fullDisplay))
	n := len(s.ops)

	require.True(t, c.Resize(1500))

	v := c.View()
	assert.InDelta(t, 1460.0/1920.0, v.Scale(), 1e-12)
	want := v.ImageToCanvas(geometry.NewPoint2D(1000, 800))
	got := markers(s.since(n))["P1"]
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)

	// The point itself is unchanged.
	assert.Equal(t, 520.0, c.Points()[0].ScreenX)
}

func TestController_DispatchUnknownKind(t *testing.T) {
	c, s, _ := newTestController(DefaultOptions())
	n := len(s.ops)

	assert.False(t, c.Dispatch(Event{Kind: EventKind(99)}))
	assert.Empty(t, s.since(n))
}

func TestController_DispatchSyntheticEvents(t *testing.T) {
	c, _, h := newTestController(DefaultOptions())

	require.True(t, c.Dispatch(ImageLoadedEvent(chartImage())))
	require.True(t, c.Dispatch(ClickEvent(520, 430, fullDisplay)))
	require.True(t, c.Dispatch(ClickEvent(530, 130, fullDisplay)))
	assert.True(t, c.Dispatch(Event{Kind: EventSubmit}))
	assert.Equal(t, "200", h.fields[form.FieldY2])
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ExtraClickPolicy = config.PolicyRestart
	cfg.MarkerColor = "#00ff00"
	cfg.GridColor = "not-a-color"
	cfg.Baseline = "1.00"

	opts := OptionsFromConfig(cfg)

	assert.Equal(t, RestartOnExtraClick, opts.ExtraClicks)
	assert.Equal(t, colorutil.Green, opts.Style.Marker)
	assert.Equal(t, colorutil.Grid, opts.Style.Grid)
	assert.Equal(t, "1.00", opts.Baseline)
	assert.Equal(t, geometry.NewPoint2D(18, -5), opts.Style.LabelOffset)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "TwoPoints", StateTwoPoints.String())
	assert.Equal(t, "click", EventClick.String())
}

func stripHidden(p Point) Point {
	return Point{ScreenX: p.ScreenX, ScreenY: p.ScreenY, ImageX: p.ImageX, ImageY: p.ImageY}
}
