// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"image"
	"log"
	"path/filepath"

	"chart-digitizer/internal/app"
	"chart-digitizer/internal/calibration"
	"chart-digitizer/internal/form"
	pkgimage "chart-digitizer/internal/image"
	"chart-digitizer/internal/version"
	"chart-digitizer/ui/canvas"
	"chart-digitizer/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const appTitle = "Chart Digitizer"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	state  *app.State
	prefs  *prefs.Prefs
	canvas *canvas.CalibrationCanvas

	// Form fields keyed by name
	entries   map[string]*widget.Entry
	statusBar *widget.Label

	ctx    context.Context
	cancel context.CancelFunc
}

var _ canvas.Fields = (*MainWindow)(nil)

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	ctx, cancel := context.WithCancel(context.Background())
	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		state:   state,
		prefs:   p,
		entries: make(map[string]*widget.Entry),
		ctx:     ctx,
		cancel:  cancel,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	mw.Resize(fyne.NewSize(
		float32(p.FloatWithFallback(prefs.KeyWindowWidth, 1100)),
		float32(p.FloatWithFallback(prefs.KeyWindowHeight, 850)),
	))
	mw.SetOnDropped(mw.onDropped)
	mw.SetOnClosed(mw.onClosed)

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewCalibrationCanvas(mw, calibration.OptionsFromConfig(mw.state.Config))
	mw.canvas.OnPointsChange(mw.onPointsChange)

	mw.statusBar = widget.NewLabel("Ready")

	// Coordinate fields are filled from clicks only.
	for _, name := range form.CoordinateFields {
		e := widget.NewEntry()
		e.Disable()
		mw.entries[name] = e
	}
	baseline := widget.NewEntry()
	baseline.SetPlaceHolder(form.DefaultBaseline)
	mw.entries[form.FieldBaseline] = baseline

	second := widget.NewEntry()
	second.SetPlaceHolder("Value at P2")
	mw.entries[form.FieldSecondValue] = second

	fields := widget.NewForm(
		widget.NewFormItem("P1 x", mw.entries[form.FieldX1]),
		widget.NewFormItem("P1 y", mw.entries[form.FieldY1]),
		widget.NewFormItem("P1 value", baseline),
		widget.NewFormItem("P2 x", mw.entries[form.FieldX2]),
		widget.NewFormItem("P2 y", mw.entries[form.FieldY2]),
		widget.NewFormItem("P2 value", second),
	)

	openBtn := widget.NewButton("Open Image...", mw.onOpenImage)
	resetBtn := widget.NewButton("Reset", mw.onReset)
	analyzeBtn := widget.NewButton("Analyze", mw.onAnalyze)
	analyzeBtn.Importance = widget.HighImportance

	sidePanel := container.NewVBox(
		widget.NewLabelWithStyle("Calibration", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		fields,
		container.NewGridWithColumns(2, resetBtn, analyzeBtn),
	)

	toolbar := container.NewHBox(openBtn)

	canvasArea := container.NewBorder(
		toolbar,   // top
		nil,       // bottom
		nil,       // left
		nil,       // right
		mw.canvas, // center
	)

	split := container.NewHSplit(canvasArea, container.NewPadded(sidePanel))
	split.SetOffset(0.75)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Reset Points", mw.onReset),
		fyne.NewMenuItem("Analyze", mw.onAnalyze),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		img, ok := data.(image.Image)
		if !ok {
			return
		}
		mw.canvas.SetImage(img)
		name := mw.state.ImageName
		if filepath.IsAbs(name) {
			mw.prefs.RememberImage(name)
		}
		mw.SetTitle(appTitle + " - " + filepath.Base(name))
		b := img.Bounds()
		mw.updateStatus(fmt.Sprintf("Image loaded (%dx%d). Click the first calibration point.", b.Dx(), b.Dy()))
	})

	mw.state.On(app.EventImageFailed, func(data interface{}) {
		if err, ok := data.(error); ok {
			dialog.ShowError(err, mw.Window)
			mw.updateStatus("Failed to load image")
		}
	})

	mw.state.On(app.EventCalibrated, func(data interface{}) {
		if cal, ok := data.(*app.Calibration); ok {
			mw.updateStatus(fmt.Sprintf("Calibrated: %.4f per pixel", cal.Axis.ValuePerPixel()))
		}
	})
}

// SetField writes a form field. Unknown names are ignored.
func (mw *MainWindow) SetField(name, value string) {
	if e, ok := mw.entries[name]; ok {
		e.SetText(value)
	}
}

// Alert shows a modal message.
func (mw *MainWindow) Alert(message string) {
	dialog.ShowInformation("Calibration", message, mw.Window)
}

// FormValues returns the current form contents.
func (mw *MainWindow) FormValues() form.Values {
	v := make(form.Values, len(mw.entries))
	for name, e := range mw.entries {
		v[name] = e.Text
	}
	return v
}

// OpenImage starts loading the image at path. It is remembered for the next
// session once it has decoded.
func (mw *MainWindow) OpenImage(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if err := mw.state.OpenImage(mw.ctx, path); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateStatus("Loading " + filepath.Base(path) + "...")
}

// RestoreLastImage reopens the image from the previous session, if any.
func (mw *MainWindow) RestoreLastImage() {
	path := mw.prefs.String(prefs.KeyLastImage)
	if path == "" {
		return
	}
	if err := mw.state.OpenImage(mw.ctx, path); err != nil {
		log.Printf("restore last image: %v", err)
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.LastDir()
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) onPointsChange(points []calibration.Point) {
	switch len(points) {
	case 0:
		if mw.canvas.Controller().HasImage() {
			mw.updateStatus("Click the first calibration point.")
		}
	case 1:
		mw.updateStatus("Click the second calibration point on the same axis.")
	default:
		mw.updateStatus("Enter the value at P2 and press Analyze.")
	}
}

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if reader == nil {
			return
		}
		uri := reader.URI()
		// File paths are kept so a successful load can be remembered.
		name := uri.Name()
		if uri.Scheme() == "file" {
			name = uri.Path()
		}
		if err := mw.state.DecodeImage(mw.ctx, name, reader); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Loading " + uri.Name() + "...")
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter(pkgimage.Extensions))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onDropped(_ fyne.Position, uris []fyne.URI) {
	for _, uri := range uris {
		if uri.Scheme() == "file" && pkgimage.Supported(uri.Path()) {
			mw.OpenImage(uri.Path())
			return
		}
	}
	mw.updateStatus("Dropped file is not a supported image")
}

func (mw *MainWindow) onReset() {
	mw.canvas.Reset()
}

func (mw *MainWindow) onAnalyze() {
	cal, err := mw.analyze()
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	if cal != nil {
		dialog.ShowInformation("Calibration", cal.Summary(), mw.Window)
	}
}

// analyze submits the form. It returns nil, nil when the canvas blocked the
// submission, in which case the canvas has already alerted.
func (mw *MainWindow) analyze() (*app.Calibration, error) {
	if !mw.canvas.Submit() {
		return nil, nil
	}
	return mw.state.Submit(mw.FormValues())
}

func (mw *MainWindow) onClosed() {
	mw.cancel()
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	if err := mw.prefs.SaveIfChanged(); err != nil {
		log.Printf("save preferences: %v", err)
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Calibrate a bar chart's value axis from two reference points.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
