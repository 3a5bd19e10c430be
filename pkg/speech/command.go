package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// CommandRecognizer captures an utterance with a Recorder and transcribes it
// with a Transcriber.
type CommandRecognizer struct {
	recorder    Recorder
	transcriber Transcriber
	logger      *zap.Logger
	tempDir     string

	mu     sync.Mutex
	cancel context.CancelFunc // non-nil while capturing
}

// NewCommandRecognizer creates a CommandRecognizer.
func NewCommandRecognizer(recorder Recorder, transcriber Transcriber, logger *zap.Logger) *CommandRecognizer {
	return &CommandRecognizer{
		recorder:    recorder,
		transcriber: transcriber,
		logger:      logger,
		tempDir:     os.TempDir(),
	}
}

// Supported always reports true; use Detect to fall back to Unsupported when no
// recorder is installed.
func (r *CommandRecognizer) Supported() bool {
	return true
}

// Start begins recording on a new goroutine.
func (r *CommandRecognizer) Start(ctx context.Context, cb Callbacks) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return ErrBusy
	}

	f, err := os.CreateTemp(r.tempDir, "medchat-utterance-*.wav")
	if err != nil {
		return fmt.Errorf("creating capture file: %w", err)
	}
	path := f.Name()
	f.Close()

	// The recording context only ends the capture; transcription keeps the
	// parent context so Stop still yields a transcript.
	captureCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	go r.capture(ctx, captureCtx, path, cb)

	return nil
}

// Stop interrupts the running capture.
func (r *CommandRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}

	return nil
}

func (r *CommandRecognizer) capture(ctx, captureCtx context.Context, path string, cb Callbacks) {
	defer func() {
		r.mu.Lock()
		r.cancel()
		r.cancel = nil
		r.mu.Unlock()

		os.Remove(path)
		cb.finish()
	}()

	if err := r.recorder.Record(captureCtx, path); err != nil {
		r.logger.Error("speech capture failed", zap.Error(err))
		cb.fail(fmt.Errorf("recording: %w", err))
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		r.logger.Debug("speech capture produced no audio", zap.String("path", filepath.Base(path)))
		return
	}

	text, err := r.transcriber.Transcribe(ctx, path)
	if err != nil {
		r.logger.Error("speech transcription failed", zap.Error(err))
		cb.fail(fmt.Errorf("transcribing audio file: %w", err))
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	r.logger.Debug("speech captured", zap.Int("chars", len(text)))
	cb.deliver(text)
}

// Detect returns a CommandRecognizer when the recorder binary is available and
// Unsupported otherwise.
func Detect(recorder *ExecRecorder, transcriber Transcriber, logger *zap.Logger) Recognizer {
	if transcriber == nil || !recorder.Available() {
		logger.Info("speech capture unavailable",
			zap.String("binary", recorder.config.Binary),
			zap.Bool("transcriber", transcriber != nil),
		)
		return Unsupported()
	}

	return NewCommandRecognizer(recorder, transcriber, logger)
}
