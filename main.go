// ABOUTME: Entry point for the modbridge tracker module player
// ABOUTME: Parses CLI flags, loads config and logging, and runs one playback session
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/modbridge/modbridge/internal/app"
	"github.com/modbridge/modbridge/internal/bridge"
	"github.com/modbridge/modbridge/internal/config"
	"github.com/modbridge/modbridge/internal/logging"
	"github.com/modbridge/modbridge/internal/ui"
	"github.com/modbridge/modbridge/internal/version"
	"github.com/modbridge/modbridge/pkg/audio"
	"github.com/modbridge/modbridge/pkg/audio/output"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// options holds the parsed command line
type options struct {
	useTUI     bool
	configFile string
	version    bool
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *options) {
	opts := &options{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Values reach the player through config.Load, which reads set flags
	fs.Int("volume", audio.DefaultVolume, "Playback volume (0-100)")
	fs.String("on-end", "silence", "End of track behaviour: stop, loop or silence")
	fs.String("backend", output.BackendMalgo, "Audio backend: malgo, oto, portaudio or discard")
	fs.String("log-file", config.DefaultLogFile, "Log file path")
	fs.Bool("debug", false, "Log at debug level to stderr as well")

	fs.BoolVar(&opts.useTUI, "tui", false, "Show the terminal UI instead of waiting for Enter")
	fs.StringVar(&opts.configFile, "config", "", "Config file (default: ./modbridge.yaml or ~/.config/modbridge/modbridge.yaml)")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	return fs, opts
}

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout))
}

// run executes the player for args (program name first) and returns the exit
// code. Extra app options are applied after the defaults.
func run(args []string, stdin io.Reader, stdout io.Writer, extra ...app.Option) int {
	fs, cli := newFlagSet(args[0], os.Stderr)
	if err := fs.Parse(args[1:]); err != nil {
		return 1
	}

	if cli.version {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(stdout, "Usage: %s <filename>\n", args[0])
		return app.ExitCode(app.ErrUsage)
	}
	path := fs.Arg(0)

	cfg, err := config.Load(cli.configFile, fs)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Debug, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger.Desugar())

	logger.Infow("Starting", "version", version.Version, "path", path, "backend", cfg.Backend)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tuiEnabled := cli.useTUI
	if tuiEnabled && !(term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))) {
		logger.Warn("Terminal UI needs an interactive terminal, falling back to line mode")
		fmt.Fprintln(os.Stderr, "Warning: -tui needs a terminal, waiting for Enter instead")
		tuiEnabled = false
	}

	appConfig := app.Config{
		Path:      path,
		Volume:    cfg.Volume,
		EndPolicy: cfg.EndPolicy,
		Backend:   cfg.Backend,
		Quiet:     tuiEnabled,
	}

	// Closed once Run returns, ending the UI helpers
	runDone := make(chan struct{})

	opts := []app.Option{app.WithLogger(logger), app.WithOutput(stdout)}

	var tui *tuiSession
	if tuiEnabled {
		tui = newTUISession(cfg, logger)
		opts = append(opts,
			app.WithStop(tui.volumeCtrl.Quit),
			app.OnStart(func(s *bridge.Session) { tui.start(s, runDone) }))
	} else {
		opts = append(opts, app.WithStop(app.WaitForLine(stdin)))
	}
	opts = append(opts, extra...)

	player := app.New(appConfig, opts...)
	err = player.Run(ctx)
	close(runDone)

	if tui != nil {
		tui.stop()
	}

	if err != nil {
		logger.Errorw("Playback failed", "error", err)
		fmt.Fprintln(stdout, app.UserMessage(err))
		return app.ExitCode(err)
	}

	logger.Info("Player stopped")
	return 0
}

// tuiSession runs the terminal UI alongside one playback session
type tuiSession struct {
	cfg        config.Config
	logger     *zap.SugaredLogger
	volumeCtrl *ui.VolumeControl
	program    *tea.Program
	done       chan struct{}
}

func newTUISession(cfg config.Config, logger *zap.SugaredLogger) *tuiSession {
	volumeCtrl := ui.NewVolumeControl()
	return &tuiSession{
		cfg:        cfg,
		logger:     logger.Named("tui"),
		volumeCtrl: volumeCtrl,
		program:    ui.Run(volumeCtrl, cfg.Volume),
	}
}

// start shows the UI once the device is playing
func (t *tuiSession) start(session *bridge.Session, runDone <-chan struct{}) {
	t.done = make(chan struct{})
	go func() {
		defer close(t.done)
		if _, err := t.program.Run(); err != nil {
			t.logger.Errorw("TUI failed", "error", err)
		}
		t.volumeCtrl.RequestQuit()
	}()

	info := session.Info()
	format := session.Format()
	t.program.Send(ui.StatusMsg{
		Title:      info.Title,
		Format:     info.Format,
		Path:       info.Path,
		Backend:    t.cfg.Backend,
		Policy:     session.Policy().String(),
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		BitDepth:   format.BitDepth,
	})

	go handleVolumeControl(session, t.volumeCtrl, runDone, t.logger)
	go statsUpdateLoop(session, t.program.Send, runDone)
}

// stop closes the UI and waits for the terminal to be restored
func (t *tuiSession) stop() {
	if t.done == nil {
		return
	}
	t.program.Quit()
	<-t.done
}

// handleVolumeControl applies volume changes from the TUI to the session
func handleVolumeControl(session *bridge.Session, volumeCtrl *ui.VolumeControl, done <-chan struct{}, logger *zap.SugaredLogger) {
	for {
		select {
		case vol := <-volumeCtrl.Changes:
			logger.Debugw("Volume change", "volume", vol.Volume, "muted", vol.Muted)
			effective := vol.Volume
			if vol.Muted {
				effective = 0
			}
			session.SetVolume(effective)
		case <-done:
			return
		}
	}
}

// statsUpdateLoop periodically updates the TUI with playback progress
func statsUpdateLoop(session *bridge.Session, send func(tea.Msg), done <-chan struct{}) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	// Runtime stats stop the world briefly; sample them less often
	runtimeStatsTicker := time.NewTicker(2 * time.Second)
	defer runtimeStatsTicker.Stop()

	var lastGoroutines int
	var lastMemAlloc uint64

	for {
		select {
		case <-done:
			return
		case <-runtimeStatsTicker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			lastGoroutines = runtime.NumGoroutine()
			lastMemAlloc = m.Alloc
		case <-ticker.C:
			send(ui.StatusMsg{
				Frames:     session.Frames(),
				Elapsed:    session.Elapsed(),
				Ended:      session.Ended(),
				Goroutines: lastGoroutines,
				MemAlloc:   lastMemAlloc,
			})
		}
	}
}
