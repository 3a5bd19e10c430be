package speech_test

import (
	"context"
	"encoding/base64"
	"net"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/medchat/internal/backendtest"
	"github.com/papercomputeco/medchat/pkg/client"
	"github.com/papercomputeco/medchat/pkg/speech"
)

var _ = Describe("RemoteTranscriber", func() {
	It("uploads the recording to the backend", func() {
		backend := backendtest.Start(GinkgoT(), "unused")
		backend.SetTranscript("shortness of breath")

		audioPath := filepath.Join(GinkgoT().TempDir(), "utterance.wav")
		Expect(os.WriteFile(audioPath, []byte("RIFFdata"), 0o600)).To(Succeed())

		t := speech.NewRemoteTranscriber(client.New(backend.URL, zap.NewNop()))
		text, err := t.Transcribe(context.Background(), audioPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("shortness of breath"))

		reqs := backend.Transcriptions()
		Expect(reqs).To(HaveLen(1))
		Expect(reqs[0].AudioBase64).To(Equal(base64.StdEncoding.EncodeToString([]byte("RIFFdata"))))
	})

	It("fails when the recording is missing", func() {
		backend := backendtest.Start(GinkgoT(), "unused")

		t := speech.NewRemoteTranscriber(client.New(backend.URL, zap.NewNop()))
		_, err := t.Transcribe(context.Background(), filepath.Join(GinkgoT().TempDir(), "missing.wav"))
		Expect(err).To(MatchError(ContainSubstring("reading audio file")))
		Expect(backend.Transcriptions()).To(BeEmpty())
	})
})

var _ = Describe("WhisperTranscriber", func() {
	It("posts the recording to the transcription API", func() {
		models := make(chan string, 1)

		app := fiber.New(fiber.Config{DisableStartupMessage: true})
		app.Post("/v1/audio/transcriptions", func(c *fiber.Ctx) error {
			models <- c.FormValue("model")
			return c.JSON(map[string]string{"text": "my knee hurts"})
		})

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		go func() {
			_ = app.Listener(listener)
		}()
		DeferCleanup(func() {
			_ = app.Shutdown()
		})

		audioPath := filepath.Join(GinkgoT().TempDir(), "utterance.wav")
		Expect(os.WriteFile(audioPath, []byte("RIFFdata"), 0o600)).To(Succeed())

		t := speech.NewWhisperTranscriber("test-token", "http://"+listener.Addr().String()+"/v1", "")
		text, err := t.Transcribe(context.Background(), audioPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("my knee hurts"))
		Expect(models).To(Receive(Equal("whisper-1")))
	})
})
