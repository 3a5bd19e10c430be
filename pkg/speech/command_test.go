package speech_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/medchat/pkg/speech"
)

// fakeRecorder writes audio into the capture file. When block is set it waits
// for the capture to be stopped first.
type fakeRecorder struct {
	audio []byte
	block bool
	err   error
}

func (r *fakeRecorder) Record(ctx context.Context, path string) error {
	if r.block {
		<-ctx.Done()
	}
	if r.err != nil {
		return r.err
	}
	return os.WriteFile(path, r.audio, 0o600)
}

type fakeTranscriber struct {
	text string
	err  error
}

func (t *fakeTranscriber) Transcribe(_ context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", err
	}
	return t.text, t.err
}

// events records callback invocations in order.
type events struct {
	mu   sync.Mutex
	seen []string
	text string
	err  error
}

func (e *events) callbacks() speech.Callbacks {
	return speech.Callbacks{
		OnResult: func(text string) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.seen = append(e.seen, "result")
			e.text = text
		},
		OnError: func(err error) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.seen = append(e.seen, "error")
			e.err = err
		},
		OnEnd: func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.seen = append(e.seen, "end")
		},
	}
}

func (e *events) Seen() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.seen...)
}

var _ = Describe("Unsupported", func() {
	It("reports no support and refuses to start", func() {
		r := speech.Unsupported()

		Expect(r.Supported()).To(BeFalse())
		Expect(r.Start(context.Background(), speech.Callbacks{})).To(MatchError(speech.ErrUnsupported))
		Expect(r.Stop()).To(Succeed())
	})
})

var _ = Describe("CommandRecognizer", func() {
	var (
		ctx context.Context
		ev  *events
	)

	BeforeEach(func() {
		ctx = context.Background()
		ev = &events{}
	})

	It("delivers the transcript and then ends", func() {
		r := speech.NewCommandRecognizer(
			&fakeRecorder{audio: []byte("wav")},
			&fakeTranscriber{text: "  I have a fever  "},
			zap.NewNop(),
		)

		Expect(r.Supported()).To(BeTrue())
		Expect(r.Start(ctx, ev.callbacks())).To(Succeed())

		Eventually(ev.Seen).Should(Equal([]string{"result", "end"}))
		Expect(ev.text).To(Equal("I have a fever"))
	})

	It("still transcribes what was captured when stopped early", func() {
		r := speech.NewCommandRecognizer(
			&fakeRecorder{audio: []byte("wav"), block: true},
			&fakeTranscriber{text: "chest pain"},
			zap.NewNop(),
		)

		Expect(r.Start(ctx, ev.callbacks())).To(Succeed())
		Consistently(ev.Seen, 50*time.Millisecond).Should(BeEmpty())

		Expect(r.Stop()).To(Succeed())
		Eventually(ev.Seen).Should(Equal([]string{"result", "end"}))
		Expect(ev.text).To(Equal("chest pain"))
	})

	It("refuses a second start while capturing", func() {
		r := speech.NewCommandRecognizer(
			&fakeRecorder{audio: []byte("wav"), block: true},
			&fakeTranscriber{text: "x"},
			zap.NewNop(),
		)

		Expect(r.Start(ctx, ev.callbacks())).To(Succeed())
		Expect(r.Start(ctx, speech.Callbacks{})).To(MatchError(speech.ErrBusy))

		Expect(r.Stop()).To(Succeed())
		Eventually(ev.Seen).Should(ContainElement("end"))

		// Idle again, so starting works.
		Eventually(func() error {
			err := r.Start(ctx, speech.Callbacks{})
			if err == nil {
				_ = r.Stop()
			}
			return err
		}).Should(Succeed())
	})

	It("reports recorder failures as an error followed by end", func() {
		r := speech.NewCommandRecognizer(
			&fakeRecorder{err: errors.New("no microphone")},
			&fakeTranscriber{text: "unused"},
			zap.NewNop(),
		)

		Expect(r.Start(ctx, ev.callbacks())).To(Succeed())

		Eventually(ev.Seen).Should(Equal([]string{"error", "end"}))
		Expect(ev.err).To(MatchError(ContainSubstring("no microphone")))
	})

	It("reports transcription failures as an error followed by end", func() {
		r := speech.NewCommandRecognizer(
			&fakeRecorder{audio: []byte("wav")},
			&fakeTranscriber{err: errors.New("quota exceeded")},
			zap.NewNop(),
		)

		Expect(r.Start(ctx, ev.callbacks())).To(Succeed())

		Eventually(ev.Seen).Should(Equal([]string{"error", "end"}))
		Expect(ev.err).To(MatchError(ContainSubstring("quota exceeded")))
	})

	It("only ends when nothing was recorded", func() {
		r := speech.NewCommandRecognizer(
			&fakeRecorder{audio: nil},
			&fakeTranscriber{text: "unused"},
			zap.NewNop(),
		)

		Expect(r.Start(ctx, ev.callbacks())).To(Succeed())

		Eventually(ev.Seen).Should(Equal([]string{"end"}))
	})

	It("only ends when the transcript is blank", func() {
		r := speech.NewCommandRecognizer(
			&fakeRecorder{audio: []byte("wav")},
			&fakeTranscriber{text: "   "},
			zap.NewNop(),
		)

		Expect(r.Start(ctx, ev.callbacks())).To(Succeed())

		Eventually(ev.Seen).Should(Equal([]string{"end"}))
	})

	It("treats Stop on an idle recognizer as a no-op", func() {
		r := speech.NewCommandRecognizer(&fakeRecorder{}, &fakeTranscriber{}, zap.NewNop())

		Expect(r.Stop()).To(Succeed())
	})
})

var _ = Describe("Detect", func() {
	It("falls back to Unsupported when the recorder binary is missing", func() {
		rec := speech.NewExecRecorder(speech.RecorderConfig{Binary: "medchat-no-such-recorder"}, zap.NewNop())

		r := speech.Detect(rec, &fakeTranscriber{}, zap.NewNop())
		Expect(r.Supported()).To(BeFalse())
	})

	It("falls back to Unsupported without a transcriber", func() {
		rec := speech.NewExecRecorder(speech.RecorderConfig{}, zap.NewNop())

		r := speech.Detect(rec, nil, zap.NewNop())
		Expect(r.Supported()).To(BeFalse())
	})
})

var _ = Describe("ExecRecorder", func() {
	It("records mono 16kHz audio bounded by the max duration", func() {
		rec := speech.NewExecRecorder(speech.RecorderConfig{
			Format:      "pulse",
			Device:      "default",
			MaxDuration: 8 * time.Second,
		}, zap.NewNop())

		args := rec.Args("/tmp/out.wav")
		Expect(args).To(ContainElements("-f", "pulse", "-i", "default"))
		Expect(args).To(ContainElements("-t", "8", "-ac", "1", "-ar", "16000"))
		Expect(args[len(args)-1]).To(Equal("/tmp/out.wav"))
	})

	It("defaults to ffmpeg with alsa", func() {
		rec := speech.NewExecRecorder(speech.RecorderConfig{}, zap.NewNop())

		args := rec.Args("out.wav")
		Expect(args).To(ContainElements("-f", "alsa", "-t", "15"))
	})
})
