package canvas

import (
	"image"
	"sync"
	"testing"

	"chart-digitizer/internal/calibration"
	"chart-digitizer/internal/form"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFields struct {
	mu     sync.Mutex
	values map[string]string
	alerts []string
}

func newRecordingFields() *recordingFields {
	return &recordingFields{values: map[string]string{}}
}

func (f *recordingFields) SetField(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[name] = value
}

func (f *recordingFields) Alert(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, message)
}

func newTestCanvas(t *testing.T) (*CalibrationCanvas, *recordingFields) {
	t.Helper()
	test.NewApp()
	fields := newRecordingFields()
	cc := NewCalibrationCanvas(fields, calibration.DefaultOptions())
	cc.Resize(fyne.NewSize(1000, 700))
	return cc, fields
}

func TestCalibrationCanvas_LayoutSizesSurface(t *testing.T) {
	cc, _ := newTestCanvas(t)

	w, h := cc.Surface().Size()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 600, h)
	assert.True(t, cc.HelpVisible())
}

func TestCalibrationCanvas_ClickWithoutImageAlerts(t *testing.T) {
	cc, fields := newTestCanvas(t)

	test.TapAt(cc, fyne.NewPos(100, 100))

	assert.Equal(t, []string{calibration.MsgNoImage}, fields.alerts)
	assert.Empty(t, cc.Controller().Points())
}

func TestCalibrationCanvas_TwoClicksFillFields(t *testing.T) {
	cc, fields := newTestCanvas(t)
	var changes int
	cc.OnPointsChange(func([]calibration.Point) { changes++ })

	cc.SetImage(image.NewRGBA(image.Rect(0, 0, 1920, 1080)))
	assert.False(t, cc.HelpVisible())

	test.TapAt(cc, fyne.NewPos(520, 430))
	test.TapAt(cc, fyne.NewPos(530, 130))

	assert.Equal(t, "1000", fields.values[form.FieldX1])
	assert.Equal(t, "800", fields.values[form.FieldY1])
	assert.Equal(t, form.DefaultBaseline, fields.values[form.FieldBaseline])
	assert.Equal(t, "1020", fields.values[form.FieldX2])
	assert.Equal(t, "200", fields.values[form.FieldY2])
	assert.Equal(t, 3, changes)
	assert.True(t, cc.Submit())
}

func TestCalibrationCanvas_ClickOutsideImageIgnored(t *testing.T) {
	cc, fields := newTestCanvas(t)
	cc.SetImage(image.NewRGBA(image.Rect(0, 0, 1920, 1080)))

	// Margin left of the image, and below the raster area.
	test.TapAt(cc, fyne.NewPos(10, 300))
	test.TapAt(cc, fyne.NewPos(500, 650))

	assert.Empty(t, cc.Controller().Points())
	assert.Empty(t, fields.alerts)
}

func TestCalibrationCanvas_ResetClearsFields(t *testing.T) {
	cc, fields := newTestCanvas(t)
	cc.SetImage(image.NewRGBA(image.Rect(0, 0, 1920, 1080)))
	test.TapAt(cc, fyne.NewPos(520, 430))
	require.Len(t, cc.Controller().Points(), 1)

	cc.Reset()

	assert.Empty(t, cc.Controller().Points())
	for _, name := range form.CoordinateFields {
		assert.Empty(t, fields.values[name], name)
	}
	assert.False(t, cc.HelpVisible())
	assert.False(t, cc.Submit())
	assert.Equal(t, []string{calibration.MsgNeedTwoPoints}, fields.alerts)
}

func TestCalibrationCanvas_WidthChangeResizesCanvas(t *testing.T) {
	cc, _ := newTestCanvas(t)
	cc.SetImage(image.NewRGBA(image.Rect(0, 0, 1920, 1080)))

	cc.Resize(fyne.NewSize(500, 500))

	w, h := cc.Surface().Size()
	assert.Equal(t, 500, w)
	assert.Equal(t, 400, h)
	assert.InDelta(t, 0.2395, cc.Controller().View().Scale(), 1e-3)
}
