package calibration

import (
	"image"
	"image/color"

	"chart-digitizer/pkg/geometry"
)

type surfaceOp struct {
	kind string
	rect geometry.Rect
	line [4]float64
	text string
	at   geometry.Point2D
}

// recordingSurface records draw calls instead of rasterizing them.
type recordingSurface struct {
	w, h int
	ops  []surfaceOp
}

func (s *recordingSurface) Size() (int, int) { return s.w, s.h }

func (s *recordingSurface) Resize(w, h int) {
	s.w, s.h = w, h
	s.ops = append(s.ops, surfaceOp{kind: "resize"})
}

func (s *recordingSurface) Clear() {
	s.ops = append(s.ops, surfaceOp{kind: "clear"})
}

func (s *recordingSurface) FillRect(r geometry.Rect, _ color.Color) {
	s.ops = append(s.ops, surfaceOp{kind: "fill", rect: r})
}

func (s *recordingSurface) StrokeLine(x1, y1, x2, y2 float64, _ Stroke) {
	s.ops = append(s.ops, surfaceOp{kind: "line", line: [4]float64{x1, y1, x2, y2}})
}

func (s *recordingSurface) DrawImage(_ image.Image, dst geometry.Rect) {
	s.ops = append(s.ops, surfaceOp{kind: "image", rect: dst})
}

func (s *recordingSurface) FillText(text string, x, y float64, _ color.Color) {
	s.ops = append(s.ops, surfaceOp{kind: "text", text: text, at: geometry.Point2D{X: x, Y: y}})
}

// since returns the ops recorded after the first n.
func (s *recordingSurface) since(n int) []surfaceOp {
	return s.ops[n:]
}

// markers returns the crosshair centers keyed by label, derived from label
// positions in ops. Later markers with the same label win.
func markers(ops []surfaceOp) map[string]geometry.Point2D {
	st := DefaultStyle()
	out := make(map[string]geometry.Point2D)
	for _, op := range ops {
		if op.kind == "text" {
			out[op.text] = geometry.Point2D{X: op.at.X - st.LabelOffset.X, Y: op.at.Y - st.LabelOffset.Y}
		}
	}
	return out
}

func countOps(ops []surfaceOp, kind string) int {
	n := 0
	for _, op := range ops {
		if op.kind == kind {
			n++
		}
	}
	return n
}

// recordingHost records field writes, help visibility and alerts.
type recordingHost struct {
	fields      map[string]string
	helpVisible bool
	alerts      []string
}

func newRecordingHost() *recordingHost {
	return &recordingHost{fields: make(map[string]string), helpVisible: true}
}

func (h *recordingHost) SetField(name, value string) { h.fields[name] = value }
func (h *recordingHost) SetHelpVisible(visible bool) { h.helpVisible = visible }
func (h *recordingHost) Alert(message string)        { h.alerts = append(h.alerts, message) }
