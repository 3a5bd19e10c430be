package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/papercomputeco/medchat/pkg/api"
	"github.com/papercomputeco/medchat/pkg/speech"
)

const (
	// Greeting seeds every new conversation.
	Greeting = "Hello! I'm your AI medical assistant with vision and voice capabilities. " +
		"You can type, speak, or upload medical images for analysis."

	// ImageOnlyLabel is the user message content when only an image was sent.
	ImageOnlyLabel = "Analyzing image..."

	// SpeechUnsupportedNotice is shown when voice input is requested without a
	// usable speech capability.
	SpeechUnsupportedNotice = "Speech recognition is not supported in this environment. " +
		"Install ffmpeg and configure a transcriber to use voice input."
)

// ErrImageDiscarded resolves a SelectImage future whose result was superseded
// by a later selection or a removal.
var ErrImageDiscarded = errors.New("image selection was superseded")

// ConnectionFailureNotice is the bot reply substituted for any failed request.
func ConnectionFailureNotice(baseURL string) string {
	return "Sorry, I'm having trouble connecting to the server. " +
		"Please make sure the backend is running at " + baseURL
}

// Asker sends a question to the answer-generation backend.
type Asker interface {
	Ask(ctx context.Context, req api.AskRequest) (*api.AskResponse, error)
	BaseURL() string
}

// Notifier surfaces a notice to the user.
type Notifier interface {
	Notify(notice string)
}

// NotifierFunc adapts a func to Notifier.
type NotifierFunc func(notice string)

// Notify calls f.
func (f NotifierFunc) Notify(notice string) { f(notice) }

// Controller owns the conversation log, the staged input and the pending and
// recording flags. It is safe for concurrent use: the UI, speech callbacks and
// request goroutines all call into it.
type Controller struct {
	asker      Asker
	recognizer speech.Recognizer
	notifier   Notifier
	logger     *zap.Logger

	log     *Log
	changes chan struct{}

	mu         sync.Mutex
	text       string
	image      *Image
	imageGen   uint64
	pending    bool
	recording  bool
	captureGen uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithoutGreeting starts the log empty.
func WithoutGreeting() Option {
	return func(c *Controller) {
		c.log = NewLog()
	}
}

// New creates a Controller. A nil recognizer is treated as speech.Unsupported().
func New(asker Asker, recognizer speech.Recognizer, notifier Notifier, logger *zap.Logger, opts ...Option) *Controller {
	if recognizer == nil {
		recognizer = speech.Unsupported()
	}
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}

	c := &Controller{
		asker:      asker,
		recognizer: recognizer,
		notifier:   notifier,
		logger:     logger,
		changes:    make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = NewLog()
		c.log.Append(RoleBot, Greeting, nil, nil)
	}

	return c
}

// Changes receives a value after any state change, including ones made by
// background goroutines. Notifications coalesce; read state after receiving.
func (c *Controller) Changes() <-chan struct{} {
	return c.changes
}

func (c *Controller) changed() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// UpdateText replaces the staged text.
func (c *Controller) UpdateText(value string) {
	c.mu.Lock()
	c.text = value
	c.mu.Unlock()

	c.changed()
}

// SelectImage loads the file at path and stages it as the image to send. An
// empty path means nothing was chosen and is a no-op. The future resolves with
// the staged image, the read error, or ErrImageDiscarded when a later selection
// or RemoveImage superseded this one.
func (c *Controller) SelectImage(path string) *Future[*Image] {
	if path == "" {
		return resolvedFuture[*Image](nil, nil)
	}

	c.mu.Lock()
	c.imageGen++
	gen := c.imageGen
	c.mu.Unlock()

	f := newFuture[*Image]()

	go func() {
		img, err := LoadImage(path)
		if err != nil {
			c.logger.Warn("failed to load image", zap.String("path", path), zap.Error(err))
			f.resolve(nil, err)
			return
		}

		c.mu.Lock()
		current := gen == c.imageGen
		if current {
			c.image = img
		}
		c.mu.Unlock()

		if !current {
			f.resolve(nil, ErrImageDiscarded)
			return
		}

		c.logger.Debug("image staged",
			zap.String("name", img.Name),
			zap.String("mime_type", img.MIMEType),
			zap.Int("size", img.Size),
		)
		c.changed()
		f.resolve(img.clone(), nil)
	}()

	return f
}

// RemoveImage clears the staged image and discards any selection still loading.
func (c *Controller) RemoveImage() {
	c.mu.Lock()
	c.image = nil
	c.imageGen++
	c.mu.Unlock()

	c.changed()
}

// SpeechSupported reports whether voice input is available.
func (c *Controller) SpeechSupported() bool {
	return c.recognizer.Supported()
}

// ToggleRecording starts or stops a single-utterance capture. Without speech
// support it only surfaces SpeechUnsupportedNotice.
func (c *Controller) ToggleRecording(ctx context.Context) {
	if !c.recognizer.Supported() {
		c.notifier.Notify(SpeechUnsupportedNotice)
		return
	}

	c.mu.Lock()
	if c.recording {
		c.recording = false
		c.captureGen++
		c.mu.Unlock()

		if err := c.recognizer.Stop(); err != nil {
			c.logger.Warn("failed to stop speech capture", zap.Error(err))
		}
		c.changed()
		return
	}

	c.recording = true
	c.captureGen++
	gen := c.captureGen
	c.mu.Unlock()

	err := c.recognizer.Start(ctx, speech.Callbacks{
		OnResult: func(transcript string) {
			c.mu.Lock()
			c.text = transcript
			c.endCapture(gen)
			c.mu.Unlock()
			c.changed()
		},
		OnError: func(err error) {
			c.logger.Error("speech recognition error", zap.Error(err))
			c.mu.Lock()
			c.endCapture(gen)
			c.mu.Unlock()
			c.changed()
		},
		OnEnd: func() {
			c.mu.Lock()
			c.endCapture(gen)
			c.mu.Unlock()
			c.changed()
		},
	})
	if err != nil {
		c.mu.Lock()
		c.endCapture(gen)
		c.mu.Unlock()

		// The stopped capture is still transcribing; its result is on the way.
		if errors.Is(err, speech.ErrBusy) {
			c.logger.Debug("previous capture still finishing")
		} else {
			c.logger.Error("failed to start speech capture", zap.Error(err))
			c.notifier.Notify(fmt.Sprintf("Voice input could not be started: %v", err))
		}
	}

	c.changed()
}

// endCapture clears the recording flag if gen is still the current capture.
// Callers hold c.mu.
func (c *Controller) endCapture(gen uint64) {
	if gen == c.captureGen {
		c.recording = false
	}
}

// Submit sends the staged input. It reports false, doing nothing, when there is
// neither text nor an image staged or when a request is already pending.
// Otherwise the user message is appended, staging is cleared and exactly one
// request is sent; the future resolves with the bot message once it has been
// appended and the pending flag cleared. Failures never surface as errors: the
// bot message then carries ConnectionFailureNotice.
func (c *Controller) Submit(ctx context.Context) (*Future[Message], bool) {
	c.mu.Lock()
	if c.pending || (strings.TrimSpace(c.text) == "" && c.image == nil) {
		c.mu.Unlock()
		return nil, false
	}

	text, image := c.text, c.image
	content := text
	if content == "" {
		content = ImageOnlyLabel
	}

	c.log.Append(RoleUser, content, nil, image)
	c.text = ""
	c.image = nil
	c.pending = true
	c.mu.Unlock()

	c.changed()

	var dataURL string
	if image != nil {
		dataURL = image.DataURL
	}
	req := api.NewAskRequest(text, dataURL)

	f := newFuture[Message]()
	go func() {
		reply := c.exchange(ctx, req)

		c.mu.Lock()
		msg := c.log.Append(RoleBot, reply.Answer, reply.Sources, nil)
		c.pending = false
		c.mu.Unlock()

		c.changed()
		f.resolve(msg, nil)
	}()

	return f, true
}

// exchange performs the request, substituting the connectivity notice on failure.
func (c *Controller) exchange(ctx context.Context, req api.AskRequest) api.AskResponse {
	c.logger.Info("sending question",
		zap.Int("query_chars", len(req.Query)),
		zap.Bool("image", req.ImageBase64 != nil),
	)

	resp, err := c.asker.Ask(ctx, req)
	if err != nil {
		c.logger.Error("failed to get answer", zap.Error(err))
		return api.AskResponse{Answer: ConnectionFailureNotice(c.asker.BaseURL())}
	}

	c.logger.Info("answer received", zap.Int("sources", len(resp.Sources)))
	return *resp
}

// Messages returns a copy of the conversation log.
func (c *Controller) Messages() []Message {
	return c.log.Messages()
}

// Version changes whenever a message is appended.
func (c *Controller) Version() uint64 {
	return c.log.Version()
}

// Verify checks the log's hash chain.
func (c *Controller) Verify() error {
	return c.log.Verify()
}

// Text returns the staged text.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Image returns the staged image, nil when none is staged.
func (c *Controller) Image() *Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.image.clone()
}

// Pending reports whether a request is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Recording reports whether a speech capture is active.
func (c *Controller) Recording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// State is a consistent view of the controller, taken under one lock.
type State struct {
	Messages  []Message
	Version   uint64
	Text      string
	Image     *Image
	Pending   bool
	Recording bool
}

// Snapshot returns the whole state at once.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Messages:  c.log.Messages(),
		Version:   c.log.Version(),
		Text:      c.text,
		Image:     c.image.clone(),
		Pending:   c.pending,
		Recording: c.recording,
	}
}
