// Command calibrate runs the calibration canvas headless: it loads an image,
// replays clicks, prints the resulting form fields and axis mapping and
// optionally writes the rendered canvas to a PNG.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"sort"
	"strconv"
	"strings"

	"chart-digitizer/internal/app"
	"chart-digitizer/internal/calibration"
	"chart-digitizer/internal/config"
	"chart-digitizer/internal/form"
	"chart-digitizer/internal/image"
	"chart-digitizer/internal/raster"
	"chart-digitizer/pkg/geometry"
)

// clickList collects repeated -click x,y flags in canvas pixels.
type clickList []geometry.Point2D

func (c *clickList) String() string {
	parts := make([]string, len(*c))
	for i, p := range *c {
		parts[i] = fmt.Sprintf("%g,%g", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

func (c *clickList) Set(s string) error {
	x, y, ok := strings.Cut(s, ",")
	if !ok {
		return fmt.Errorf("expected x,y, got %q", s)
	}
	px, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
	if err != nil {
		return fmt.Errorf("bad x in %q: %w", s, err)
	}
	py, err := strconv.ParseFloat(strings.TrimSpace(y), 64)
	if err != nil {
		return fmt.Errorf("bad y in %q: %w", s, err)
	}
	*c = append(*c, geometry.Point2D{X: px, Y: py})
	return nil
}

// host records fields and prints alerts.
type host struct {
	values form.Values
}

func (h *host) SetField(name, value string) { h.values[name] = value }
func (h *host) SetHelpVisible(bool)         {}
func (h *host) Alert(msg string)            { fmt.Fprintf(os.Stderr, "alert: %s\n", msg) }

func main() {
	var clicks clickList
	imgPath := flag.String("i", "", "Path to chart image")
	width := flag.Int("w", 1000, "Container width in pixels")
	configPath := flag.String("config", "", "Path to JSON config")
	second := flag.String("v", "", "Value at the second point")
	out := flag.String("o", "", "Write the rendered canvas to this PNG")
	flag.Var(&clicks, "click", "Click at x,y in canvas pixels (repeatable)")
	flag.Parse()

	if *imgPath == "" {
		fmt.Println("Usage: calibrate -i <image> [-w width] -click x,y -click x,y [-v value] [-o preview.png]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config: %v\n", err)
	}

	img, err := image.Load(*imgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}

	h := &host{values: form.Values{}}
	surface := raster.New(0, 0)
	ctrl := calibration.NewController(surface, h, calibration.OptionsFromConfig(cfg))
	ctrl.Resize(*width)
	ctrl.LoadImage(img)

	v := ctrl.View()
	cw, ch := surface.Size()
	b := img.Bounds()
	fmt.Printf("=== Canvas ===\n")
	fmt.Printf("image %dx%d on canvas %dx%d, scale %.4f, offset (%.1f, %.1f)\n",
		b.Dx(), b.Dy(), cw, ch, v.Scale(), v.Offset().X, v.Offset().Y)

	display := geometry.NewRect(0, 0, float64(cw), float64(ch))
	for _, c := range clicks {
		if !ctrl.Click(c.X, c.Y, display) {
			fmt.Printf("click (%g, %g): ignored\n", c.X, c.Y)
		}
	}

	fmt.Printf("\n=== Points (%s) ===\n", ctrl.State())
	for i, p := range ctrl.Points() {
		fmt.Printf("%s canvas (%.1f, %.1f) image (%d, %d)\n",
			calibration.Label(i), p.ScreenX, p.ScreenY, p.ImageX, p.ImageY)
	}

	if *second != "" {
		h.values[form.FieldSecondValue] = *second
	}
	names := make([]string, 0, len(h.values))
	for name := range h.values {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("\n=== Fields ===\n")
	for _, name := range names {
		fmt.Printf("%s=%s\n", name, h.values[name])
	}

	if *out != "" {
		if err := writePNG(*out, surface); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write preview: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nPreview written to %s\n", *out)
	}

	if !ctrl.Submit() {
		os.Exit(2)
	}

	state := app.NewState(cfg)
	cal, err := state.Submit(h.values)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("\n=== Axis ===\n%s\n", cal.Summary())
}

func writePNG(path string, s *raster.Surface) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, s.Snapshot()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
