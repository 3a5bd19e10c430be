package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Recorder writes audio captured from an input device to path. Record returns
// once the recording is complete: the maximum duration elapsed or ctx was
// cancelled. A cancelled context is a normal way to finish, not an error.
type Recorder interface {
	Record(ctx context.Context, path string) error
}

// RecorderConfig describes an ffmpeg based microphone capture.
type RecorderConfig struct {
	// Binary is the recorder executable, "ffmpeg" when empty.
	Binary string

	// Format is ffmpeg's input format, e.g. "alsa", "pulse", "avfoundation", "dshow".
	Format string

	// Device is the input device for Format, e.g. "default" or ":0".
	Device string

	// MaxDuration bounds a single utterance.
	MaxDuration time.Duration
}

// ExecRecorder records by running ffmpeg.
type ExecRecorder struct {
	config RecorderConfig
	logger *zap.Logger
}

// NewExecRecorder creates an ExecRecorder, filling in defaults.
func NewExecRecorder(config RecorderConfig, logger *zap.Logger) *ExecRecorder {
	if config.Binary == "" {
		config.Binary = "ffmpeg"
	}
	if config.Format == "" {
		config.Format = "alsa"
	}
	if config.Device == "" {
		config.Device = "default"
	}
	if config.MaxDuration <= 0 {
		config.MaxDuration = 15 * time.Second
	}

	return &ExecRecorder{config: config, logger: logger}
}

// Available reports whether the recorder binary can be found on PATH.
func (r *ExecRecorder) Available() bool {
	_, err := exec.LookPath(r.config.Binary)
	return err == nil
}

// Args returns the command line arguments used to record into path.
func (r *ExecRecorder) Args(path string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", r.config.Format,
		"-i", r.config.Device,
		"-t", strconv.FormatFloat(r.config.MaxDuration.Seconds(), 'f', -1, 64),
		"-ac", "1",
		"-ar", "16000",
		path,
	}
}

// Record runs the recorder until it finishes or ctx is cancelled. Cancellation
// interrupts ffmpeg so it can finalize the file.
func (r *ExecRecorder) Record(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, r.config.Binary, r.Args(path)...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = 3 * time.Second

	r.logger.Debug("starting speech capture",
		zap.String("binary", r.config.Binary),
		zap.String("format", r.config.Format),
		zap.String("device", r.config.Device),
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		// ffmpeg exits non-zero when interrupted; what it wrote is still usable.
		if ctx.Err() != nil {
			return nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("running `%s`: %w: %s", r.config.Binary, err, truncate(string(out), 200))
		}
		return fmt.Errorf("running `%s`: %w", r.config.Binary, err)
	}

	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
