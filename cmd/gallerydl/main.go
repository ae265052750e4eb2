// Command gallerydl is the desktop entrypoint: it wires the logger,
// config manager, task store, scheduler, and control server, then
// hands the whole thing to Wails for the GUI shell and to systray for
// the background tray icon.
package main

import (
	"context"
	"embed"
	"os"

	"github.com/getlantern/systray"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"gallerydl/internal/app"
	"gallerydl/internal/control"
	"gallerydl/internal/logger"
)

//go:embed all:frontend/dist
var assets embed.FS

//go:embed build/appicon.png
var appIcon []byte

func main() {
	startHidden := false
	for _, arg := range os.Args {
		if arg == "--minimized" {
			startHidden = true
		}
	}

	log, wailsHandler, err := logger.New(os.Stdout)
	if err != nil {
		println("Error initializing logger:", err.Error())
		return
	}

	a, err := app.NewApp(log)
	if err != nil {
		log.Error("Error initializing app", "error", err)
		println("Error initializing app:", err.Error())
		return
	}

	// Background control API, independent of whether a GUI window is
	// ever shown; bound to loopback only.
	controlCtx, stopControl := context.WithCancel(context.Background())
	defer stopControl()
	controlServer := control.New(a.Scheduler(), a.Store(), a.Config(), a.HistorySink(), a.Audit(), os.Getenv("GALLERYDL_CONTROL_TOKEN"))
	go func() {
		if err := controlServer.ListenAndServe(controlCtx, 45621); err != nil {
			log.Error("control server stopped", "error", err)
		}
	}()

	// Start System Tray (run in a goroutine; blocks on its own loop).
	go func() {
		systray.Run(func() {
			systray.SetIcon(appIcon)
			systray.SetTitle("gallerydl")
			systray.SetTooltip("gallerydl")

			mOpen := systray.AddMenuItem("Open gallerydl", "Restore the window")
			systray.AddSeparator()
			mQuit := systray.AddMenuItem("Quit", "Quit the application")

			go func() {
				for {
					select {
					case <-mOpen.ClickedCh:
						a.ShowApp()
					case <-mQuit.ClickedCh:
						a.QuitApp()
					}
				}
			}()
		}, func() {})
	}()

	appMenu := menu.NewMenu()
	fileMenu := appMenu.AddSubmenu("File")
	fileMenu.AddText("Open gallerydl", keys.CmdOrCtrl("o"), func(_ *menu.CallbackData) {
		a.ShowApp()
	})
	fileMenu.AddSeparator()
	fileMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
		a.QuitApp()
	})

	err = wails.Run(&options.App{
		Title:  "gallerydl",
		Width:  1100,
		Height: 760,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup: func(ctx context.Context) {
			wailsHandler.SetContext(ctx)
			a.Startup(ctx)
			log.Info("gallerydl started")
		},
		OnBeforeClose: a.BeforeClose,
		StartHidden:   startHidden,
		Menu:          appMenu,
		Bind: []interface{}{
			a,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
