// ABOUTME: Offline renderer for tracker modules
// ABOUTME: Plays a module through the WAV device into a file without a sound card
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/modbridge/modbridge/internal/app"
	"github.com/modbridge/modbridge/internal/bridge"
	"github.com/modbridge/modbridge/internal/logging"
	"github.com/modbridge/modbridge/pkg/audio"
	"github.com/modbridge/modbridge/pkg/audio/output"
	"go.uber.org/zap"
)

var (
	outPath = flag.String("o", "", "Output WAV file (default: <module basename>.wav)")
	seconds = flag.Int("seconds", 0, "Stop after this many seconds; 0 renders to the end of the song")
	volume  = flag.Int("volume", audio.DefaultVolume, "Render volume (0-100)")
	loop    = flag.Bool("loop", false, "Loop the song; requires -seconds")
	debug   = flag.Bool("debug", false, "Log at debug level")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if flag.NArg() < 1 {
		fmt.Printf("Usage: %s [-o out.wav] [-seconds N] [-volume V] <filename>\n", os.Args[0])
		return app.ExitCode(app.ErrUsage)
	}
	path := flag.Arg(0)

	if *volume < 0 || *volume > audio.MaxVolume {
		fmt.Printf("Error: invalid volume %d (range: 0-%d)\n", *volume, audio.MaxVolume)
		return 1
	}
	if *seconds < 0 {
		fmt.Printf("Error: invalid duration %d\n", *seconds)
		return 1
	}
	if *loop && *seconds == 0 {
		fmt.Println("Error: -loop needs -seconds to end the render")
		return 1
	}

	// Logs go to stderr; the renderer has no interactive terminal to protect
	logger, err := logging.New(*debug, "")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger.Desugar())

	dest := *outPath
	if dest == "" {
		dest = DefaultOutput(path)
	}

	policy := bridge.EndStop
	if *loop {
		policy = bridge.EndLoop
	}

	format := audio.DefaultFormat()
	wavDevice := output.NewWAV(dest, uint64(*seconds)*uint64(format.SampleRate))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	player := app.New(app.Config{
		Path:      path,
		Volume:    *volume,
		EndPolicy: policy,
		Backend:   "wav",
		Quiet:     true,
	},
		app.WithLogger(logger),
		app.WithDevice(func() (output.Device, error) { return wavDevice, nil }),
	)

	if err := player.Run(ctx); err != nil {
		logger.Errorw("Render failed", "error", err)
		fmt.Println(app.UserMessage(err))
		return app.ExitCode(err)
	}

	frames := wavDevice.Frames()
	fmt.Printf("Wrote %s (%s)\n", dest, format.FramesToDuration(frames))
	return 0
}

// DefaultOutput names the WAV file after the module, in the working directory
func DefaultOutput(modulePath string) string {
	base := filepath.Base(modulePath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".wav"
}
