// Package backendtest runs a fake medical chatbot backend on a loopback listener
// for tests.
package backendtest

import (
	"net"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/medchat/pkg/api"
)

// T is the subset of testing.TB (and GinkgoT()) the backend needs.
type T interface {
	Helper()
	Fatalf(format string, args ...any)
	Cleanup(func())
}

// AskHandler decides the status code and body for an /ask request.
type AskHandler func(req api.AskRequest) (int, any)

// Backend is a fake backend. Handlers may be swapped while it runs.
type Backend struct {
	URL string

	app *fiber.App

	mu          sync.Mutex
	askHandler  AskHandler
	gate        chan struct{}
	asks        []api.AskRequest
	transcripts []api.TranscribeRequest
	transcript  string
}

// Start runs a Backend that answers every question with answer and sources.
// It is shut down when the test finishes.
func Start(t T, answer string, sources ...string) *Backend {
	t.Helper()

	if sources == nil {
		sources = []string{}
	}

	b := &Backend{
		askHandler: func(api.AskRequest) (int, any) {
			return fiber.StatusOK, api.AskResponse{Answer: answer, Sources: sources}
		},
		transcript: "transcribed speech",
	}

	b.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	b.app.Post("/ask", b.handleAsk)
	b.app.Post("/transcribe", b.handleTranscribe)
	b.app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(api.StatusResponse{
			Message:  "Multimodal Medical RAG Chatbot is running.",
			Status:   "active",
			Features: []string{"text", "vision", "voice"},
			Endpoints: map[string]string{
				"ask":        "/ask",
				"transcribe": "/transcribe",
				"docs":       "/docs",
			},
		})
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	go func() {
		_ = b.app.Listener(listener)
	}()

	b.URL = "http://" + listener.Addr().String()
	t.Cleanup(func() {
		b.Release()
		_ = b.app.Shutdown()
	})

	return b
}

// OnAsk replaces the /ask handler.
func (b *Backend) OnAsk(h AskHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.askHandler = h
}

// Fail makes /ask answer with status and a FastAPI style error body.
func (b *Backend) Fail(status int, detail string) {
	b.OnAsk(func(api.AskRequest) (int, any) {
		return status, api.ErrorResponse{Detail: detail}
	})
}

// Hold blocks /ask responses until Release is called.
func (b *Backend) Hold() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gate = make(chan struct{})
}

// Release unblocks held /ask responses.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gate != nil {
		close(b.gate)
		b.gate = nil
	}
}

// SetTranscript sets the text /transcribe answers with.
func (b *Backend) SetTranscript(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transcript = text
}

// Asks returns the /ask requests received so far.
func (b *Backend) Asks() []api.AskRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.AskRequest(nil), b.asks...)
}

// Transcriptions returns the /transcribe requests received so far.
func (b *Backend) Transcriptions() []api.TranscribeRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.TranscribeRequest(nil), b.transcripts...)
}

func (b *Backend) handleAsk(c *fiber.Ctx) error {
	var req api.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(api.ErrorResponse{Detail: "invalid request body"})
	}

	b.mu.Lock()
	b.asks = append(b.asks, req)
	handler := b.askHandler
	gate := b.gate
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}

	status, body := handler(req)
	return c.Status(status).JSON(body)
}

func (b *Backend) handleTranscribe(c *fiber.Ctx) error {
	var req api.TranscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(api.ErrorResponse{Detail: "invalid request body"})
	}

	b.mu.Lock()
	b.transcripts = append(b.transcripts, req)
	text := b.transcript
	b.mu.Unlock()

	return c.JSON(api.TranscribeResponse{Text: text})
}
