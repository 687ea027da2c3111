package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	logger "github.com/beka-birhanu/vinom-common/log"

	"github.com/ayusman/pinchmaze/internal/app"
	"github.com/ayusman/pinchmaze/internal/capture"
	"github.com/ayusman/pinchmaze/internal/config"
	"github.com/ayusman/pinchmaze/internal/render"
	"github.com/ayusman/pinchmaze/internal/server"
	"github.com/ayusman/pinchmaze/internal/store"
	"github.com/ayusman/pinchmaze/internal/tray"
)

const windowTitle = "PinchMaze"

var appLogger app.Logger

func newLogger(prefix, color string) app.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	return l
}

func main() {
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error(fmt.Sprintf("Loading configuration: %v", err))
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		appLogger.Error(fmt.Sprintf("Creating data directory: %v", err))
		os.Exit(1)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		appLogger.Error(fmt.Sprintf("Opening store: %v", err))
		os.Exit(1)
	}
	defer st.Close()

	if _, err := st.EnsureDefaultMaze(); err != nil {
		appLogger.Error(fmt.Sprintf("Seeding default maze: %v", err))
		os.Exit(1)
	}
	maze, err := st.ActiveMaze(cfg.Maze)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Loading maze %q: %v", cfg.Maze, err))
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("Loaded maze %q with %d obstacles", maze.Name(), len(maze.Layout.Obstacles)))

	a, err := app.New(app.Config{
		Store:    st,
		Layout:   maze.Layout,
		CameraID: cfg.CameraID,
		Capture: capture.Options{
			Width:  cfg.FrameWidth,
			Height: cfg.FrameHeight,
			FPS:    cfg.FPS,
			Mirror: cfg.Mirror,
		},
		PinchThreshold: cfg.PinchThreshold,
		MotionThresh:   cfg.MotionThreshold,
		PluginDir:      cfg.PluginDir,
		HookTimeout:    int(cfg.HookTimeout.Milliseconds()),
		PublishFrames:  cfg.HTTPAddr != "",
		Logger:         newLogger("GAME", config.ColorCyan),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating app: %v", err))
		os.Exit(1)
	}
	defer a.Close()

	if err := a.DiscoverPlugins(); err != nil {
		appLogger.Warning(fmt.Sprintf("Discovering plugins in %s: %v", cfg.PluginDir, err))
	} else {
		appLogger.Info(fmt.Sprintf("Discovered %d plugins", len(a.PluginManager().List())))
	}

	var srv *server.Server
	if cfg.HTTPAddr != "" {
		srv = server.New(server.Config{
			StaticDir: findWebDir(cfg.WebDir),
			Store:     st,
			Game:      a,
			Plugins:   a.PluginManager(),
			Logger:    newLogger("SERVER", config.ColorBlue),
		})
		go func() {
			appLogger.Info(fmt.Sprintf("Serving dashboard at %s", cfg.HTTPAddr))
			if err := srv.ListenAndServe(cfg.HTTPAddr); err != nil {
				appLogger.Error(fmt.Sprintf("Serving HTTP: %v", err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := run(ctx, cfg, a)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Warning(fmt.Sprintf("Shutting down server: %v", err))
		}
		cancel()
	}

	if runErr != nil {
		appLogger.Error(runErr.Error())
		a.Close()
		st.Close()
		if errors.Is(runErr, app.ErrCaptureFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	appLogger.Info("Bye")
}

// run drives the game loop with the configured display. Window and tray
// displays own the main goroutine.
func run(ctx context.Context, cfg config.Config, a *app.App) error {
	switch cfg.Display {
	case config.DisplayWindow:
		win := render.NewWindow(windowTitle)
		defer win.Close()
		appLogger.Info("Press 'r' to reset, 'q' to quit")
		return a.Run(ctx, win)

	case config.DisplayTray:
		t := tray.New(a)
		if cfg.HTTPAddr != "" {
			url := dashboardURL(cfg.HTTPAddr)
			t.OnDashboard(func() {
				if err := exec.Command("open", url).Start(); err != nil {
					appLogger.Warning(fmt.Sprintf("Opening %s: %v", url, err))
				}
			})
		}

		return t.Run(func() error { return a.Run(ctx, nil) })

	default:
		return a.Run(ctx, nil)
	}
}

// dashboardURL turns a listen address into a browsable URL.
func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// findWebDir returns the first existing directory among dir and its parents'
// copies, or "" when the dashboard files are missing.
func findWebDir(dir string) string {
	candidates := []string{dir}
	if !filepath.IsAbs(dir) {
		candidates = append(candidates, filepath.Join("..", dir), filepath.Join("..", "..", dir))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	appLogger.Warning(fmt.Sprintf("Web directory %q not found, dashboard disabled", dir))
	return ""
}
