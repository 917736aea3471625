// Package app provides application lifecycle management, configuration, and events.
package app

import (
	"context"
	"fmt"
	goimage "image"
	"io"
	"log"
	"os"
	"sync"

	"chart-digitizer/internal/axis"
	"chart-digitizer/internal/config"
	"chart-digitizer/internal/form"
	"chart-digitizer/internal/image"
)

// State holds the application state: the current chart image, configuration
// and the last accepted calibration.
type State struct {
	mu sync.RWMutex

	Config *config.Config

	// Image
	ImageName string
	Image     goimage.Image

	// Last accepted submission
	Calibration *Calibration

	decoder *image.Decoder

	// Event listeners
	listeners map[EventType][]EventListener
}

// Calibration is a validated submission together with its axis mapping.
type Calibration struct {
	Submission form.Submission
	Axis       axis.Axis
}

// EventType identifies different application events.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventImageFailed
	EventCalibrated
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state.
func NewState(cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &State{
		Config:    cfg,
		decoder:   image.NewDecoder(),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// OpenImage starts decoding the image at path. See DecodeImage.
func (s *State) OpenImage(ctx context.Context, path string) error {
	if path == "" {
		return image.ErrNoFile
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	return s.DecodeImage(ctx, path, f)
}

// DecodeImage decodes r in the background. On success the image is stored and
// EventImageLoaded is emitted with the image; on failure EventImageFailed is
// emitted with the error. Starting another decode supersedes this one.
// A nil reader returns image.ErrNoFile and changes nothing.
func (s *State) DecodeImage(ctx context.Context, name string, r io.ReadCloser) error {
	_, err := s.decoder.Decode(ctx, name, r, func(res image.Result) {
		if res.Err != nil {
			log.Printf("image: %v", res.Err)
			s.Emit(EventImageFailed, res.Err)
			return
		}

		s.mu.Lock()
		s.ImageName = res.Name
		s.Image = res.Image
		s.Calibration = nil
		s.mu.Unlock()

		b := res.Image.Bounds()
		log.Printf("image: loaded %s (%s, %dx%d)", res.Name, res.Format, b.Dx(), b.Dy())
		s.Emit(EventImageLoaded, res.Image)
	})
	return err
}

// WaitForImage blocks until pending decodes have finished.
func (s *State) WaitForImage() {
	s.decoder.Wait()
}

// Submit parses and validates form values and, if they pass, computes the axis
// mapping and emits EventCalibrated with the *Calibration.
func (s *State) Submit(values form.Values) (*Calibration, error) {
	sub, err := form.Parse(values)
	if err != nil {
		return nil, err
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	ax, err := axis.FromPoints(float64(sub.Y1), sub.Baseline, float64(sub.Y2), sub.SecondValue)
	if err != nil {
		return nil, err
	}

	cal := &Calibration{Submission: sub, Axis: ax}
	s.mu.Lock()
	s.Calibration = cal
	s.mu.Unlock()

	log.Printf("calibration: y%d=%.2f y%d=%.2f, %.4f per pixel",
		sub.Y1, sub.Baseline, sub.Y2, sub.SecondValue, ax.ValuePerPixel())
	s.Emit(EventCalibrated, cal)
	return cal, nil
}

// Summary returns a human-readable description of the calibration.
func (c *Calibration) Summary() string {
	sub := c.Submission
	return fmt.Sprintf("P1 (%d, %d) = %.2f\nP2 (%d, %d) = %.2f\nValue per pixel: %.4f",
		sub.X1, sub.Y1, sub.Baseline,
		sub.X2, sub.Y2, sub.SecondValue,
		c.Axis.ValuePerPixel())
}
