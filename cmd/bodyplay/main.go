package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"

	"github.com/ayusman/bodyplay/internal/app"
	"github.com/ayusman/bodyplay/internal/detector"
	"github.com/ayusman/bodyplay/internal/pose"
	"github.com/ayusman/bodyplay/internal/replay"
	"github.com/ayusman/bodyplay/internal/server"
	"github.com/ayusman/bodyplay/internal/store"
	"github.com/ayusman/bodyplay/internal/tray"
)

func main() {
	fmt.Println("Bodyplay - Motion Games")

	dataDir := os.Getenv("BODYPLAY_DATA_DIR")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dataDir = filepath.Join(homeDir, ".bodyplay")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize the store
	st, err := store.New(filepath.Join(dataDir, "bodyplay.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	cfg := app.DefaultConfig()
	cfg.Store = st
	cfg.PluginDir = filepath.Join(dataDir, "plugins")
	cfg.Camera.DeviceID = envInt("BODYPLAY_CAMERA", 0)
	cfg.Detector.DataDir = dataDir

	application := app.New(cfg)
	if err := application.DiscoverPlugins(); err != nil {
		log.Printf("Failed to discover plugins: %v", err)
	}

	// A recorded session, built in or from a file, replaces the pose detector
	// for demos.
	if path := os.Getenv("BODYPLAY_REPLAY"); path != "" {
		rec, err := loadRecording(path)
		if err != nil {
			log.Fatalf("Failed to load replay: %v", err)
		}
		application.SetDetector(detector.NewReplayDetector(rec, true))
		fmt.Printf("Replaying %s\n", rec.Name)
	}

	hub := server.NewSnapshotHub()
	application.SetPublisher(hub)

	webDir := findWebDir(dataDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Games:     application,
		Frames:    application.JPEGs(),
		Hub:       hub,
	})

	addr := os.Getenv("BODYPLAY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	go func() {
		fmt.Printf("Starting server on %s\n", addr)
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if os.Getenv("BODYPLAY_TRAY") != "" {
		runTray(application, dashboardURL(addr))
	} else {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
	}

	application.Stop()
	fmt.Println("Bye")
}

// runTray blocks in the tray event loop until Quit is chosen.
func runTray(application *app.App, url string) {
	t := tray.New()
	application.SetEnabled(t.IsEnabled())

	t.OnToggle(func(enabled bool) {
		application.SetEnabled(enabled)
		if enabled {
			if err := application.Start(); err != nil {
				log.Printf("Failed to start tracking: %v", err)
			}
		}
	})
	t.OnDashboard(func() {
		if err := openBrowser(url); err != nil {
			log.Printf("Failed to open dashboard: %v", err)
		}
	})
	t.OnStopGame(func() {
		if err := application.StopGame(); err != nil {
			log.Printf("Stop game: %v", err)
		}
	})
	application.OnSessionEnd(t.SetLastResult)

	t.Run()
}

// loadRecording resolves a built-in recording name or a JSON file path.
func loadRecording(nameOrPath string) (*pose.Recording, error) {
	if rec, err := replay.LoadRecording(nameOrPath); err == nil {
		return rec, nil
	}
	data, err := os.ReadFile(nameOrPath)
	if err != nil {
		return nil, err
	}
	return pose.ParseRecording(data)
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", name, v, err)
		return def
	}
	return n
}

func dashboardURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
