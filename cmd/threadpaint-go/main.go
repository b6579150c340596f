// Package main provides the threadpaint-go command: a paint window with
// undo/redo, zoom and scroll, backed by the threadpaint library.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-threadpaint/internal/profiling"
	"github.com/opd-ai/go-threadpaint/pkg/threadpaint"
)

// Version is the current version of threadpaint-go.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	version    bool
	imagePath  string
	exportPath string
	backend    string
	logLevel   string
	debug      bool
	jsonLog    bool
	expvar     bool
	cpuProfile string
	memProfile string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("threadpaint-go", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "c", "", "Path to configuration file (TOML or Lua)")
	fs.BoolVar(&o.version, "v", false, "Print version and exit")
	fs.StringVar(&o.imagePath, "i", "", "Open this image as the canvas")
	fs.StringVar(&o.exportPath, "o", "", "Save the canvas here on exit (.png or .pdf)")
	fs.StringVar(&o.backend, "backend", "", "Display backend: ebiten, x11 or headless")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	fs.BoolVar(&o.debug, "debug", false, "Debug logging with source locations")
	fs.BoolVar(&o.jsonLog, "json-log", false, "Write logs as JSON")
	fs.BoolVar(&o.expvar, "expvar", false, "Publish metrics through expvar")
	fs.StringVar(&o.cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	fs.StringVar(&o.memProfile, "memprofile", "", "Write memory profile to file")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

func newLogger(o options, w io.Writer) (threadpaint.Logger, error) {
	level, err := threadpaint.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	if o.debug && !o.jsonLog {
		return threadpaint.DebugLogger(), nil
	}
	if o.debug {
		level = slog.LevelDebug
	}
	if o.jsonLog {
		return threadpaint.JSONLogger(w, level), nil
	}
	return threadpaint.TextLogger(w, level), nil
}

func newPainter(o options, opts *threadpaint.Options) (threadpaint.Painter, error) {
	if o.configPath == "" {
		return threadpaint.NewDefault(opts), nil
	}
	if _, err := os.Stat(o.configPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found: %s", o.configPath)
		}
		return nil, fmt.Errorf("access configuration file %s: %w", o.configPath, err)
	}
	return threadpaint.New(o.configPath, opts)
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if o.version {
		fmt.Fprintf(stdout, "threadpaint-go version %s\n", Version)
		return 0
	}

	logger, err := newLogger(o, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	prof := profiling.Config{CPUProfilePath: o.cpuProfile, MemProfilePath: o.memProfile}
	if prof.Enabled() {
		session, err := profiling.Start(prof)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to start profiling: %v\n", err)
			return 1
		}
		defer func() {
			if err := session.Stop(); err != nil {
				fmt.Fprintf(stderr, "Warning: failed to stop profiling: %v\n", err)
			}
		}()
	}

	opts := threadpaint.DefaultOptions()
	opts.Logger = logger
	opts.Backend = o.backend
	opts.WatchConfig = o.configPath != ""
	opts.Metrics = threadpaint.NewMetrics()
	if o.expvar {
		opts.Metrics.RegisterExpvar()
	}

	p, err := newPainter(o, &opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating painter: %v\n", err)
		return 1
	}

	p.SetErrorHandler(func(err error) {
		logger.Warn("painter error", "category", threadpaint.CategoryOf(err).String(), "error", err)
	})
	p.SetEventHandler(func(e threadpaint.Event) {
		logger.Debug("event", "type", e.Type.String(), "message", e.Message, "command", e.CommandID)
	})

	if err := p.Start(); err != nil {
		fmt.Fprintf(stderr, "Failed to start: %v\n", err)
		return 1
	}
	logger.Info("threadpaint-go started", "version", Version, "backend", p.Status().Backend)

	if o.imagePath != "" {
		if err := p.LoadImage(o.imagePath); err != nil {
			fmt.Fprintf(stderr, "Failed to open image: %v\n", err)
			_ = p.Stop()
			return 1
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	code := wait(p, sigCh, logger)
	return finish(p, o.exportPath, logger, stderr, code)
}

// wait blocks until the painter stops on its own or a terminating signal
// arrives. SIGHUP reloads the configuration.
func wait(p threadpaint.Painter, sigCh <-chan os.Signal, logger threadpaint.Logger) int {
	for {
		select {
		case <-p.Done():
			logger.Info("window closed")
			return 0
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				logger.Info("received SIGHUP, reloading configuration")
				if err := p.ReloadConfig(); err != nil && !errors.Is(err, threadpaint.ErrNoConfigLoader) {
					logger.Error("reload failed", "error", err)
				}
				continue
			}
			logger.Info("shutting down", "signal", sig.String())
			return 0
		}
	}
}

// finish stops the painter and saves the canvas when an export path is set.
func finish(p threadpaint.Painter, exportPath string, logger threadpaint.Logger, stderr io.Writer, code int) int {
	if err := p.Stop(); err != nil && !errors.Is(err, threadpaint.ErrNotRunning) {
		fmt.Fprintf(stderr, "Stop error: %v\n", err)
		code = 1
	}
	if exportPath != "" {
		if err := p.Save(exportPath); err != nil {
			fmt.Fprintf(stderr, "Failed to save canvas: %v\n", err)
			return 1
		}
		logger.Info("canvas saved", "path", exportPath)
	}
	return code
}
