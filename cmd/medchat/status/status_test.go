package statuscmder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/medchat/cmd/medchat/cliconfig"
	"github.com/papercomputeco/medchat/internal/backendtest"
)

var _ = Describe("Status Command", func() {
	var (
		ctx        context.Context
		tmpDir     string
		configPath string
		stdout     *bytes.Buffer
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		tmpDir, err = os.MkdirTemp("", "medchat-status-test-*")
		Expect(err).NotTo(HaveOccurred())
		configPath = filepath.Join(tmpDir, "config.toml")
		stdout = &bytes.Buffer{}
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	execute := func(args ...string) error {
		root := &cobra.Command{Use: "medchat", SilenceUsage: true, SilenceErrors: true}
		cliconfig.AddPersistentFlags(root)
		root.AddCommand(NewStatusCmd())
		root.SetOut(stdout)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(append([]string{"status", "--config", configPath}, args...))
		return root.ExecuteContext(ctx)
	}

	It("prints the backend status, features and endpoints", func() {
		backend := backendtest.Start(GinkgoT(), "unused")

		Expect(execute("--endpoint", backend.URL)).To(Succeed())

		out := stdout.String()
		Expect(out).To(ContainSubstring("Multimodal Medical RAG Chatbot is running."))
		Expect(out).To(ContainSubstring("Backend:   " + backend.URL + "\n"))
		Expect(out).To(ContainSubstring("Status:    active\n"))
		Expect(out).To(ContainSubstring("Features:  text, vision, voice\n"))
		Expect(out).To(ContainSubstring("Endpoints:\n"))
		Expect(out).To(MatchRegexp(`(?s)ask\s+/ask\n.*docs\s+/docs\n.*transcribe\s+/transcribe\n`))
	})

	It("fails when the backend is unreachable", func() {
		err := execute("--endpoint", "http://127.0.0.1:1")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("could not reach backend at http://127.0.0.1:1"))
		Expect(stdout.String()).To(BeEmpty())
	})

	It("rejects extra arguments", func() {
		Expect(execute("now")).NotTo(Succeed())
	})
})
