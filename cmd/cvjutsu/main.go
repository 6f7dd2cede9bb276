package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/ayusman/cvjutsu/internal/app"
	"github.com/ayusman/cvjutsu/internal/capture"
	"github.com/ayusman/cvjutsu/internal/config"
	"github.com/ayusman/cvjutsu/internal/seal"
	"github.com/ayusman/cvjutsu/internal/server"
	"github.com/ayusman/cvjutsu/internal/store"
	"github.com/ayusman/cvjutsu/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	flag.Parse()

	fmt.Println("CVJutsu - Hand Seal Recognition")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.Paths.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(cfg.Paths.DataDir, "cvjutsu.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// First run: persist the built-in jutsu catalog.
	if seeded, err := st.Jutsu().Seed(seal.DefaultCatalog()); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	} else if seeded {
		log.Println("Seeded jutsu catalog")
	}

	catalog, err := st.Jutsu().Catalog()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	application, err := app.New(app.Config{
		Store:        st,
		Tracker:      cfg.TrackerConfig(catalog),
		MotionThresh: cfg.Motion.Threshold,
		IdleFPS:      cfg.Camera.IdleFPS,
		ActiveFPS:    cfg.Camera.ActiveFPS,
		PluginDir:    cfg.Paths.PluginDir,
		AssetsDir:    cfg.Paths.AssetsDir,
		ModelPath:    filepath.Join(cfg.Paths.DataDir, "model.json"),
		CameraConfig: capture.Config{
			Device: cfg.Camera.Device,
			Width:  cfg.Camera.Width,
			Height: cfg.Camera.Height,
			FPS:    cfg.Camera.IdleFPS,
		},
	})
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	} else {
		log.Printf("Discovered %d plugins", len(application.PluginManager().List()))
	}

	srv := server.New(server.Config{
		StaticDir:      findWebDir(cfg.Paths.DataDir),
		Store:          st,
		Camera:         application.Camera(),
		Overlay:        application.Overlay(),
		Train:          application.TrainFromStore,
		ResetTracker:   application.ResetTracker,
		CatalogChanged: application.ReloadCatalog,
	})
	application.SetStatePublisher(srv.States().Publish)

	go func() {
		log.Printf("Starting server on %s", cfg.Server.Bind)
		if err := srv.ListenAndServe(cfg.Server.Bind); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start recognition pipeline: %v", err)
	}
	enabled := loadEnabled(st)
	application.SetEnabled(enabled)
	defer application.Stop()

	if *noTray {
		select {}
	}

	runTray(application, st, enabled, cfg.Server.Bind)
}

// loadEnabled restores the recognition toggle from the last run.
func loadEnabled(st *store.Store) bool {
	value, err := st.Settings().Get("enabled")
	if err != nil {
		return true
	}
	return value != "false"
}

// runTray blocks on the system tray event loop.
func runTray(application *app.App, st *store.Store, enabled bool, bind string) {
	t := tray.New()
	t.SetEnabled(enabled)

	application.SetMatchHook(func(j seal.Jutsu) {
		t.SetLastJutsu(j.Display)
		t.SetSequence(j.Seals)
	})

	t.OnToggle(func(enabled bool) {
		application.SetEnabled(enabled)
		value := "true"
		if !enabled {
			value = "false"
		}
		if err := st.Settings().Set("enabled", value); err != nil {
			log.Printf("Failed to persist toggle: %v", err)
		}
	})
	t.OnReset(application.ResetTracker)
	t.OnSettings(func() {
		openBrowser("http://" + bind)
	})
	t.OnQuit(application.Stop)

	t.Run()
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web UI directory in common locations.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
