// Package speech provides single-utterance speech-to-text capture.
//
// A Recognizer is injected wherever voice input is offered. Environments without
// a usable capture device get the Unsupported variant instead of a nil check.
package speech

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by Start on a recognizer that cannot capture speech.
var ErrUnsupported = errors.New("speech recognition is not supported")

// ErrBusy is returned by Start while a capture is already running.
var ErrBusy = errors.New("speech capture already in progress")

// Callbacks receive the outcome of a capture. For every successful Start exactly
// one of OnResult or OnError fires (OnResult is skipped when nothing was heard),
// followed by OnEnd. Callbacks run on a goroutine owned by the recognizer.
type Callbacks struct {
	OnResult func(transcript string)
	OnError  func(err error)
	OnEnd    func()
}

func (cb Callbacks) deliver(transcript string) {
	if cb.OnResult != nil {
		cb.OnResult(transcript)
	}
}

func (cb Callbacks) fail(err error) {
	if cb.OnError != nil {
		cb.OnError(err)
	}
}

func (cb Callbacks) finish() {
	if cb.OnEnd != nil {
		cb.OnEnd()
	}
}

// Recognizer captures a single utterance and reports its transcript.
type Recognizer interface {
	// Supported reports whether this environment can capture speech at all.
	Supported() bool

	// Start begins a capture. The capture ends on its own (silence, max
	// duration) or when Stop is called.
	Start(ctx context.Context, cb Callbacks) error

	// Stop ends the running capture early. Audio captured so far is still
	// transcribed. Stop on an idle recognizer is a no-op.
	Stop() error
}

// Transcriber turns a recorded audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type unsupported struct{}

// Unsupported returns a Recognizer for environments without speech capture.
func Unsupported() Recognizer {
	return unsupported{}
}

func (unsupported) Supported() bool { return false }

func (unsupported) Start(context.Context, Callbacks) error { return ErrUnsupported }

func (unsupported) Stop() error { return nil }
