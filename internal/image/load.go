// Package image provides chart image loading and asynchronous decoding.
package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNoFile is returned when no file was selected.
var ErrNoFile = errors.New("no file selected")

// Extensions lists the file extensions offered in file pickers.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Supported reports whether path has an extension in Extensions.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Decode decodes an image in any registered format.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Load loads an image from the specified path.
func Load(path string) (image.Image, error) {
	if path == "" {
		return nil, ErrNoFile
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := Decode(file)
	return img, err
}

// Result is the outcome of an asynchronous decode.
type Result struct {
	Name       string
	Image      image.Image
	Format     string
	Err        error
	Generation uint64
}

// Decoder decodes images off the caller's goroutine. Only the most recent
// request is delivered: starting a new decode cancels the previous one and any
// late completion of an older request is dropped.
type Decoder struct {
	mu     sync.Mutex // guards gen and cancel
	gen    uint64
	cancel context.CancelFunc

	// deliver serializes completions so an older result can never be handed
	// over after a newer one. mu is not held while done runs.
	deliver sync.Mutex

	wg sync.WaitGroup
}

// NewDecoder creates a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode starts decoding r and returns the request's generation. done is called
// at most once, from another goroutine, and only if no newer request has been
// started by then. done may call Decode or Cancel but must not call Wait. r is
// closed when reading finishes. A nil r returns ErrNoFile and leaves any pending
// request alone.
func (d *Decoder) Decode(ctx context.Context, name string, r io.ReadCloser, done func(Result)) (uint64, error) {
	if r == nil {
		return 0, ErrNoFile
	}

	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	d.gen++
	gen := d.gen
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		res := decode(ctx, name, r)
		res.Generation = gen

		d.deliver.Lock()
		defer d.deliver.Unlock()

		d.mu.Lock()
		if gen != d.gen || ctx.Err() != nil {
			d.mu.Unlock()
			return
		}
		d.cancel = nil
		d.mu.Unlock()

		cancel()
		done(res)
	}()
	return gen, nil
}

// Cancel abandons the pending request, if any.
func (d *Decoder) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.gen++
}

// Wait blocks until every started decode has finished or been dropped.
func (d *Decoder) Wait() {
	d.wg.Wait()
}

func decode(ctx context.Context, name string, r io.ReadCloser) Result {
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return Result{Name: name, Err: fmt.Errorf("failed to read %s: %w", name, err)}
	}
	if err := ctx.Err(); err != nil {
		return Result{Name: name, Err: err}
	}

	img, format, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Result{Name: name, Err: fmt.Errorf("%s: %w", name, err)}
	}
	return Result{Name: name, Image: img, Format: format}
}
