package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"

	"github.com/1broseidon/multibox/internal/actionlog"
	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/discovery"
	"github.com/1broseidon/multibox/internal/engine"
	"github.com/1broseidon/multibox/internal/hotkeys"
	"github.com/1broseidon/multibox/internal/input"
	"github.com/1broseidon/multibox/internal/ipc"
	"github.com/1broseidon/multibox/internal/overlay"
	"github.com/1broseidon/multibox/internal/platform"
	"github.com/1broseidon/multibox/internal/state"
	"github.com/1broseidon/multibox/internal/x11"
)

// ErrNoAutoFindTargets is returned by AutoFind when neither executables nor
// classes are configured.
var ErrNoAutoFindTargets = errors.New("auto_find has no executables or classes configured")

// Daemon owns the engine and everything wired around it.
type Daemon struct {
	// reload serialises Reload calls from SIGHUP and IPC.
	reload sync.Mutex
	// hotkeysMu guards cfg and serialises hotkey rebinds.
	hotkeysMu sync.Mutex
	cfg       *config.Config

	backend  *platform.LinuxBackend
	keys     *x11.Keys
	binder   *hotkeys.Binder
	router   *hotkeys.Router
	overlay  *overlay.Manager
	detector *discovery.Detector
	engine   *engine.Engine
	actions  *actionlog.Logger
	logger   *slog.Logger
}

// Run starts the daemon and blocks in the X event loop. It only returns on
// startup errors; shutdown happens from the signal handler.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	d := &Daemon{cfg: cfg}
	d.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLogLevel(cfg.LogLevel),
	}))

	if cfg.Display != "" {
		os.Setenv("DISPLAY", cfg.Display)
	}
	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
	backend, err := platform.OpenLinuxBackend(cfg.Display)
	if err != nil {
		return err
	}
	defer backend.Disconnect()
	d.backend = backend
	conn := backend.Connection()
	d.keys = x11.NewKeys(conn)

	grabber, err := x11.NewGrabber(conn, func(ev input.Event) bool {
		return d.router.Handle(ev)
	})
	if err != nil {
		return err
	}

	if cfg.Overlay.Enabled {
		colors, err := overlay.ParseColors(cfg.Overlay.Colors)
		if err != nil {
			return err
		}
		d.overlay = overlay.NewManager(backend.XUtil(), backend.RootWindow(), colors, cfg.Overlay.Thickness)
		defer d.overlay.Cleanup()
	}

	store, saved := loadState()

	d.actions, err = actionlog.New(actionlog.FromConfig(cfg))
	if err != nil {
		log.Printf("Warning: action log disabled: %v", err)
		d.actions = nil
	}
	defer d.actions.Close()

	opts, err := engine.ResolveOptions(cfg, d.keys)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if saved.Groups > opts.Groups {
		opts.Groups = saved.Groups
	}
	if saved.LastPreset > 0 {
		opts.LastPreset = saved.LastPreset
	}
	if p, ok := saved.Priority(); ok {
		opts.Priority = p
	}

	deps := engine.Deps{
		Poster:   backend,
		Windows:  backend,
		Focus:    grabber,
		Hook:     grabber,
		Recorder: d.actions,
		Logger:   d.logger,
	}
	if store != nil {
		deps.Settings = store
	}
	if d.overlay != nil {
		deps.Overlay = d.overlay
	}
	d.engine, err = engine.New(deps, opts)
	if err != nil {
		return err
	}
	d.engine.Subscribe(NewChangeLogger(d.logger))
	d.engine.Subscribe(engine.ObserverFunc(func(c engine.Change) {
		if c.Kind == engine.ChangeFocus {
			d.rebindHotkeys()
		}
	}))

	d.router = hotkeys.NewRouter(d.engine)
	d.binder = hotkeys.NewBinder(backend.XUtil(), backend.RootWindow(), d.router.Handle)
	d.detector = discovery.NewDetector(cfg.AutoFind.Executables, cfg.AutoFind.Classes)

	if n := d.engine.Restore(saved.Snapshot()); n > 0 {
		log.Printf("Restored %d controller assignment(s)", n)
	}
	d.rebindHotkeys()
	err = backend.WatchActiveWindow(func(w platform.WindowID) {
		d.engine.SetFocusedWindow(w)
	})
	if err != nil {
		log.Printf("Warning: focus tracking disabled, local hotkeys stay ungrabbed: %v", err)
	}

	ipcServer, err := ipc.NewServer(d.engine, ipc.Hooks{Reload: d.Reload, AutoFind: d.AutoFind})
	if err != nil {
		return err
	}
	if err := ipcServer.Start(); err != nil {
		return err
	}
	defer ipcServer.Stop()

	reconciler := NewReconciler(ReconcilerConfig{Logger: d.logger}, d.engine)
	reconciler.ReconcileNow()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reconciler.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				log.Println("Received SIGHUP, reloading config...")
				if err := d.Reload(); err != nil {
					log.Printf("Config reload failed: %v", err)
				}
				continue
			}
			log.Println("Shutting down multibox daemon...")
			cancel()
			d.engine.ReleaseFocus()
			if d.overlay != nil {
				d.overlay.Cleanup()
			}
			d.actions.Close()
			ipcServer.Stop()
			os.Exit(0)
		}
	}()

	log.Println("multibox daemon started, entering event loop...")
	backend.EventLoop()
	return nil
}

// loadState opens the runtime state store. Problems are logged and the
// daemon runs without persisted state.
func loadState() (*state.Store, *state.State) {
	path, err := state.DefaultPath()
	if err != nil {
		log.Printf("Warning: runtime state disabled: %v", err)
		return nil, &state.State{}
	}
	store := state.NewStore(path)
	st, err := store.Load()
	if err != nil {
		log.Printf("Warning: ignoring unreadable state %s: %v", path, err)
		return store, &state.State{}
	}
	return store, st
}

func (d *Daemon) hotkeyActions() Actions {
	return Actions{
		AutoFind: func() {
			if _, err := d.AutoFind(); err != nil {
				log.Printf("Auto-find failed: %v", err)
			}
		},
		TogglePriority: func() {
			p := d.engine.ToggleLayoutPriority()
			log.Printf("Layout priority: %s", p)
		},
		Palette: launchPalette,
		ApplyPreset: func(n int) {
			if err := d.engine.ApplyLayoutPreset(n); err != nil {
				log.Printf("Preset %d: %v", n, err)
			}
		},
	}
}

// AutoFind assigns unowned client windows to empty controller slots.
func (d *Daemon) AutoFind() (int, error) {
	if d.detector.Empty() {
		return 0, ErrNoAutoFindTargets
	}
	windows, err := d.detector.Find(d.backend, d.engine.Windows())
	if err != nil {
		return 0, fmt.Errorf("failed to list windows: %w", err)
	}
	return d.engine.AutoFind(windows), nil
}

// Reload re-reads the configuration and applies it to every component.
func (d *Daemon) Reload() error {
	d.reload.Lock()
	defer d.reload.Unlock()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts, err := engine.ResolveOptions(cfg, d.keys)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if d.overlay != nil {
		colors, err := overlay.ParseColors(cfg.Overlay.Colors)
		if err != nil {
			return err
		}
		d.overlay.SetColors(colors, cfg.Overlay.Thickness)
	}

	d.engine.UpdateOptions(opts)
	d.detector.Update(cfg.AutoFind.Executables, cfg.AutoFind.Classes)
	d.hotkeysMu.Lock()
	d.cfg = cfg
	d.hotkeysMu.Unlock()
	d.rebindHotkeys()
	log.Println("Config reloaded successfully")
	return nil
}

// rebindHotkeys re-grabs every hotkey for the current config and focus
// scope.
func (d *Daemon) rebindHotkeys() {
	d.hotkeysMu.Lock()
	defer d.hotkeysMu.Unlock()
	BindHotkeys(d.cfg, d.keys, d.binder, d.router, d.hotkeyActions(), d.engine.ManagedWindowFocused())
}

// launchPalette runs "multibox palette" detached from the event loop.
func launchPalette() {
	exe, err := os.Executable()
	if err != nil {
		log.Printf("Palette: failed to find executable: %v", err)
		return
	}
	cmd := exec.Command(exe, "palette")
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		log.Printf("Palette: failed to launch: %v", err)
		return
	}
	go cmd.Wait()
}
