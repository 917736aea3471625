package calibration

import (
	"image"

	"chart-digitizer/pkg/geometry"
)

// EventKind identifies an input the controller reacts to.
type EventKind int

const (
	EventResize EventKind = iota
	EventImageLoaded
	EventClick
	EventReset
	EventSubmit
)

func (k EventKind) String() string {
	switch k {
	case EventResize:
		return "resize"
	case EventImageLoaded:
		return "image-loaded"
	case EventClick:
		return "click"
	case EventReset:
		return "reset"
	case EventSubmit:
		return "submit"
	default:
		return "unknown"
	}
}

// Event is a controller input. Only the payload field for Kind is read.
type Event struct {
	Kind EventKind

	// EventResize
	ContainerWidth int

	// EventImageLoaded
	Image image.Image

	// EventClick
	Client  geometry.Point2D // pointer position in display coordinates
	Display geometry.Rect    // where the canvas is displayed, same coordinates
}

// ResizeEvent returns a resize event for the given container width.
func ResizeEvent(width int) Event {
	return Event{Kind: EventResize, ContainerWidth: width}
}

// ImageLoadedEvent returns an event announcing a decoded image.
func ImageLoadedEvent(img image.Image) Event {
	return Event{Kind: EventImageLoaded, Image: img}
}

// ClickEvent returns a click at client position (x, y) on a canvas displayed in display.
func ClickEvent(x, y float64, display geometry.Rect) Event {
	return Event{Kind: EventClick, Client: geometry.Point2D{X: x, Y: y}, Display: display}
}

// handler processes one event with the controller lock held. The result
// reports whether the event changed anything or, for submit, was accepted.
type handler func(c *Controller, ev Event) bool

// handlers is the dispatch table.
var handlers = map[EventKind]handler{
	EventResize: func(c *Controller, ev Event) bool {
		return c.resize(ev.ContainerWidth)
	},
	EventImageLoaded: func(c *Controller, ev Event) bool {
		return c.loadImage(ev.Image)
	},
	EventClick: func(c *Controller, ev Event) bool {
		return c.click(ev.Client, ev.Display)
	},
	EventReset: func(c *Controller, _ Event) bool {
		c.reset()
		return true
	},
	EventSubmit: func(c *Controller, _ Event) bool {
		return c.submit()
	},
}
