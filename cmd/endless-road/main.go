package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/endless-road/audio"
	"github.com/lixenwraith/endless-road/catalog"
	"github.com/lixenwraith/endless-road/config"
	"github.com/lixenwraith/endless-road/engine"
	"github.com/lixenwraith/endless-road/render"
	"github.com/lixenwraith/endless-road/road"
	"github.com/lixenwraith/endless-road/stream"
)

var (
	configFlag   = flag.String("config", "", "Path to a TOML config file")
	debugFlag    = flag.Bool("debug", false, "Write debug logs to logs/endless-road.log")
	headlessFlag = flag.Bool("headless", false, "Run without a terminal UI")
	ticksFlag    = flag.Uint64("ticks", 0, "Stop after this many ticks in headless mode (0 runs until interrupted)")
	scaleFlag    = flag.Float64("scale", 2, "World units per terminal row")
)

const frameInterval = 33 * time.Millisecond

func main() {
	// Panic Recovery: print the trace after the terminal was restored by the deferred Fini
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n\x1b[31mENDLESS-ROAD CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "endless-road: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.Default()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}

	lib := catalog.Builtin()
	if cfg.CatalogPath != "" {
		if lib, err = catalog.LoadFile(cfg.CatalogPath); err != nil {
			return err
		}
	}

	rd, err := road.New(lib,
		road.WithLogger(logger.With("component", "road")),
		road.WithRandomSource(catalog.NewRandomSource(cfg.Seed)),
	)
	if err != nil {
		return err
	}
	rd.OnPieceAdded(func(s road.Snapshot) {
		logger.Debug("piece added", "id", s.ID, "template", s.TemplateID)
	})

	// Audio is optional; failures are logged and the track keeps running
	audioCfg := audio.DefaultConfig()
	audioCfg.Enabled = cfg.Audio
	audioCfg.ApplyEnv(os.LookupEnv)
	cues := audio.NewCues(audioCfg, logger.With("component", "audio"))
	if err := cues.Initialize(); err != nil {
		logger.Warn("audio initialization failed, continuing without audio", "error", err)
	} else {
		rd.Subscribe(cues)
		defer cues.Close()
	}

	if err := rd.Initialize(cfg.RoadSettings()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.StreamAddr != "" {
		hub := stream.NewHub(rd, stream.WithLogger(logger.With("component", "stream")))
		rd.Subscribe(hub)
		srv := &http.Server{Addr: cfg.StreamAddr, Handler: hub.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("stream server failed", "addr", cfg.StreamAddr, "error", err)
			}
		}()
		logger.Info("stream listening", "addr", cfg.StreamAddr)
		defer func() {
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	opts := []engine.DriverOption{
		engine.WithTickRate(cfg.TickRate),
		engine.WithMaxCatchUp(cfg.MaxCatchUp),
		engine.WithDriverLogger(logger.With("component", "driver")),
	}

	if *headlessFlag {
		return runHeadless(ctx, rd, opts, logger)
	}
	return runTerminal(ctx, rd, opts)
}

// runHeadless drives the track until interrupted or the tick limit is reached
func runHeadless(ctx context.Context, rd *road.Road, opts []engine.DriverOption, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limit := *ticksFlag
	opts = append(opts, engine.WithAfterTick(func(ticks uint64) {
		if limit > 0 && ticks >= limit {
			cancel()
		}
	}))
	driver := engine.NewDriver(rd, opts...)

	err := driver.Run(ctx)
	s := rd.Stats()
	logger.Info("headless run finished", "run", s.Run, "ticks", s.Ticks, "recycles", s.Recycles, "distance", s.Distance, "dropped", driver.Dropped())
	fmt.Printf("run %s ticks %d recycles %d distance %.1f\n", s.Run, s.Ticks, s.Recycles, s.Distance)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runTerminal renders the track in a tcell screen and handles keys
// q/Esc quit, p pauses, r resets, +/- zoom, up/down change speed
func runTerminal(ctx context.Context, rd *road.Road, opts []engine.DriverOption) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	view := render.NewTopDown(screen, *scaleFlag)
	driver := engine.NewDriver(rd, opts...)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		_ = driver.Run(ctx)
	}()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	frameTicker := time.NewTicker(frameInterval)
	defer frameTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-eventChan:
			if !handleKey(ev, screen, view, driver, rd) {
				return nil
			}
		case <-frameTicker.C:
			view.Draw(rd.Snapshot(), driver.IsPaused())
		}
	}
}

// handleKey returns false when the user asked to quit
func handleKey(ev tcell.Event, screen tcell.Screen, view *render.TopDown, driver *engine.Driver, rd *road.Road) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			_ = rd.SetSpeed(rd.Snapshot().Speed + 5)
		case tcell.KeyDown:
			_ = rd.SetSpeed(max(rd.Snapshot().Speed-5, 0))
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'p':
				driver.TogglePause()
			case 'r':
				driver.RequestReset()
			case '+', '=':
				view.Zoom(0.5)
			case '-':
				view.Zoom(2)
			}
		}
	case *tcell.EventResize:
		screen.Sync()
	}
	return true
}
