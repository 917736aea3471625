// Package colorutil provides shared color utilities for the digitizer.
package colorutil

import (
	"fmt"
	"image/color"
	"strings"
)

// Canvas colors.
var (
	Transparent = color.RGBA{}
	Background  = color.RGBA{R: 0xf8, G: 0xf9, B: 0xfa, A: 255} // #f8f9fa
	Grid        = color.RGBA{R: 0xde, G: 0xe2, B: 0xe6, A: 255} // #dee2e6
	Marker      = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Black       = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Green       = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa" (leading '#' optional).
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")

	var r, g, b uint8
	a := uint8(255)
	var err error
	switch len(s) {
	case 3:
		_, err = fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b)
		r, g, b = r*17, g*17, b*17
	case 6:
		_, err = fmt.Sscanf(s, "%2x%2x%2x", &r, &g, &b)
	case 8:
		_, err = fmt.Sscanf(s, "%2x%2x%2x%2x", &r, &g, &b, &a)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// Hex formats c as "#rrggbb", or "#rrggbbaa" when not fully opaque.
func Hex(c color.Color) string {
	r, g, b, a := c.RGBA()
	if a == 0xffff {
		return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", r>>8, g>>8, b>>8, a>>8)
}
