package cliconfig

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/medchat/pkg/client"
	"github.com/papercomputeco/medchat/pkg/config"
	"github.com/papercomputeco/medchat/pkg/speech"
)

var _ = Describe("Resolve", func() {
	var (
		tmpDir     string
		configPath string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "medchat-cliconfig-test-*")
		Expect(err).NotTo(HaveOccurred())
		configPath = filepath.Join(tmpDir, "config.toml")
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	parse := func(args ...string) *cobra.Command {
		cmd := &cobra.Command{Use: "medchat"}
		AddPersistentFlags(cmd)
		Expect(cmd.ParseFlags(append([]string{"--config", configPath}, args...))).To(Succeed())
		return cmd
	}

	It("uses defaults when the file is missing", func() {
		cfg, path, err := Resolve(parse())
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(configPath))
		Expect(cfg.Endpoint).To(Equal(client.DefaultBaseURL))
		Expect(cfg.LogFile).To(HaveSuffix(filepath.Join(".medchat", "medchat.log")))
	})

	It("lets flags override the file", func() {
		Expect(os.WriteFile(configPath, []byte("endpoint = \"http://file:8000\"\ndebug = true\n"), 0o600)).To(Succeed())

		cfg, _, err := Resolve(parse("--endpoint", "http://flag:9000", "--log-file", "/tmp/medchat-test.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Endpoint).To(Equal("http://flag:9000"))
		Expect(cfg.Debug).To(BeTrue())
		Expect(cfg.LogFile).To(Equal("/tmp/medchat-test.log"))
	})

	It("keeps file values for flags that were not given", func() {
		Expect(os.WriteFile(configPath, []byte("endpoint = \"http://file:8000\"\n"), 0o600)).To(Succeed())

		cfg, _, err := Resolve(parse("--debug"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Endpoint).To(Equal("http://file:8000"))
		Expect(cfg.Debug).To(BeTrue())
	})

	It("rejects an invalid endpoint flag", func() {
		_, _, err := Resolve(parse("--endpoint", "localhost"))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid flags"))
	})

	It("re-applies flags to a reloaded config", func() {
		cmd := parse("--endpoint", "http://flag:9000")
		next := config.Default()
		next.Endpoint = "http://reloaded:8000"

		Expect(ApplyFlags(cmd, &next)).To(Succeed())
		Expect(next.Endpoint).To(Equal("http://flag:9000"))
	})

	It("works on commands without the persistent flags", func() {
		cfg := config.Default()
		Expect(ApplyFlags(&cobra.Command{Use: "bare"}, &cfg)).To(Succeed())
		Expect(cfg.Endpoint).To(Equal(client.DefaultBaseURL))
	})
})

var _ = Describe("Transcriber", func() {
	backend := client.New(client.DefaultBaseURL, zap.NewNop())

	It("posts to the backend by default", func() {
		Expect(Transcriber(config.Default(), backend)).To(BeAssignableToTypeOf(&speech.RemoteTranscriber{}))
	})

	It("uses Whisper when configured", func() {
		cfg := config.Default()
		cfg.Speech.Backend = config.SpeechWhisper
		cfg.Speech.OpenAIKey = "sk-test"
		Expect(Transcriber(cfg, backend)).To(BeAssignableToTypeOf(&speech.WhisperTranscriber{}))
	})

	It("returns nil when voice input is disabled", func() {
		cfg := config.Default()
		cfg.Speech.Backend = config.SpeechNone
		Expect(Transcriber(cfg, backend)).To(BeNil())
	})
})

var _ = Describe("Recorder", func() {
	It("passes the capture settings to ffmpeg", func() {
		cfg := config.Default()
		cfg.Speech.Format = "pulse"
		cfg.Speech.Device = "mic0"

		args := Recorder(cfg, zap.NewNop()).Args("/tmp/out.wav")
		Expect(args).To(ContainElements("pulse", "mic0", "/tmp/out.wav"))
	})
})
