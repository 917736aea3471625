package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// DigitizerTheme provides a custom theme for the application.
type DigitizerTheme struct{}

var _ fyne.Theme = (*DigitizerTheme)(nil)

func (t *DigitizerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x0D, G: 0x6E, B: 0xFD, A: 0xFF} // Blue for actions
	case theme.ColorNameError:
		return color.NRGBA{R: 0xDC, G: 0x35, B: 0x45, A: 0xFF} // Matches the marker red
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *DigitizerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *DigitizerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *DigitizerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameInputBorder:
		return 2
	default:
		return theme.DefaultTheme().Size(name)
	}
}
