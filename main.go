// Package main provides the entry point for the Chart Digitizer application.
package main

import (
	"flag"
	"log"

	"chart-digitizer/internal/app"
	"chart-digitizer/internal/config"
	"chart-digitizer/internal/version"
	"chart-digitizer/ui/mainwindow"
	"chart-digitizer/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const (
	appID    = "io.github.chart-digitizer"
	appTitle = "Chart Digitizer"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config (default $"+config.EnvConfigPath+")")
	writeConfig := flag.String("write-config", "", "Write the effective config as JSON to this path and exit")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.String())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("Config: %v", err)
	}
	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			log.Fatalf("Write config: %v", err)
		}
		log.Printf("Config written to %s", *writeConfig)
		return
	}

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.DigitizerTheme{})

	appState := app.NewState(cfg)
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appState, appPrefs)

	// Handle command line arguments
	if flag.NArg() > 0 {
		win.OpenImage(flag.Arg(0))
	} else {
		win.RestoreLastImage()
	}

	win.ShowAndRun()
}
