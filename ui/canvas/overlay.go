package canvas

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// HelpText is shown over the empty canvas.
const HelpText = "Upload a chart image, then click two points on the y-axis"

// helpOverlay is a hint centered over the canvas while no image is loaded.
type helpOverlay struct {
	mu      sync.Mutex
	visible bool
	label   *widget.Label
}

func newHelpOverlay() *helpOverlay {
	label := widget.NewLabel(HelpText)
	label.Alignment = fyne.TextAlignCenter
	label.Wrapping = fyne.TextWrapWord
	return &helpOverlay{visible: true, label: label}
}

// SetVisible shows or hides the hint.
func (o *helpOverlay) SetVisible(visible bool) {
	o.mu.Lock()
	o.visible = visible
	o.mu.Unlock()

	if visible {
		o.label.Show()
	} else {
		o.label.Hide()
	}
}

// Visible reports whether the hint is shown.
func (o *helpOverlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

// Layout centers the label vertically over area.
func (o *helpOverlay) Layout(area fyne.Size) {
	ms := o.label.MinSize()
	o.label.Resize(fyne.NewSize(area.Width, ms.Height))
	o.label.Move(fyne.NewPos(0, (area.Height-ms.Height)/2))
}

func (o *helpOverlay) Refresh() {
	o.label.Refresh()
}
