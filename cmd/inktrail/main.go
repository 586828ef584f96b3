package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/inktrail/audio"
	"github.com/lixenwraith/inktrail/capture"
	"github.com/lixenwraith/inktrail/config"
	"github.com/lixenwraith/inktrail/engine"
	"github.com/lixenwraith/inktrail/render"
)

var (
	configFlag = flag.String("config", "inktrail.toml", "Path to the TOML configuration file")
	addrFlag   = flag.String("addr", "", "Recognizer sidecar host:port, empty draws with the mouse")
	debugFlag  = flag.Bool("debug", false, "Write JSON logs to logs/inktrail.log")
	audioFlag  = flag.Bool("audio", false, "Enable pen and clear sound cues")
	printFlag  = flag.Bool("print-config", false, "Print the effective configuration as TOML and exit")
)

func main() {
	var screen tcell.Screen

	// Panic Recovery: Ensure terminal is reset even if the loop crashes
	defer func() {
		if r := recover(); r != nil {
			if screen != nil {
				screen.Fini()
			}
			fmt.Fprintf(os.Stderr, "\n\x1b[31mINKTRAIL CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// The default path may be absent, an explicit one may not
	cfg, err := config.Load(*configFlag, !set["config"])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if set["addr"] {
		cfg.Capture.Address = *addrFlag
	}
	if *audioFlag {
		cfg.Audio.Enabled = true
	}
	if *printFlag {
		if err := printConfig(os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to print configuration: %v\n", err)
			os.Exit(1)
		}
		return
	}

	log, logFile := setupLogging(*debugFlag)
	if logFile != nil {
		defer logFile.Close()
	}
	defer log.Sync()

	style, err := render.NewStyle(cfg.Render.InkColor, cfg.Render.BackgroundColor, cfg.Render.LineWidth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid render style: %v\n", err)
		os.Exit(1)
	}

	screen, err = tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create terminal screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	// Normal exit terminal cleanup
	defer screen.Fini()
	screen.HideCursor()

	var cues engine.Cues
	if cfg.Audio.Enabled {
		player, err := audio.NewPlayer(cfg.Audio.Volume, log)
		if err != nil {
			log.Warn("audio unavailable, continuing silently", zap.Error(err))
		} else {
			defer player.Close()
			cues = player
		}
	}

	app := engine.NewApp(screen, engine.Options{
		Trail:         cfg.TrailConfig(),
		Style:         style,
		StatusBar:     cfg.Render.StatusBar,
		FrameInterval: time.Duration(cfg.Render.FrameInterval),
	}, nil, cues, log)

	var open engine.OpenFunc
	if cfg.Capture.Address == "" {
		log.Info("no recognizer address, drawing with the mouse")
		app.UsePointer()
	} else {
		open = openCamera(cfg, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, open); err != nil {
		log.Error("frame loop stopped", zap.Error(err))
	}
}

// printConfig writes cfg as TOML
func printConfig(w io.Writer, cfg *config.Config) error {
	data, err := config.Encode(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// openCamera returns the one-shot acquisition of the recognizer stream
func openCamera(cfg *config.Config, log *zap.Logger) engine.OpenFunc {
	return func(ctx context.Context) (capture.Source, error) {
		ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Capture.ReadyTimeout))
		defer cancel()

		req := capture.DefaultRequest()
		req.Width = uint16(cfg.Surface.Width)
		req.Height = uint16(cfg.Surface.Height)

		log.Info("opening camera", zap.String("addr", cfg.Capture.Address))
		session, err := capture.Open(ctx, cfg.NetworkConfig(), req, log, capture.WithPinchThreshold(cfg.Trail.PinchThreshold))
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}
