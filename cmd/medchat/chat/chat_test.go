package chatcmder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/medchat/cmd/medchat/cliconfig"
)

var _ = Describe("Chat Command", func() {
	var (
		ctx        context.Context
		tmpDir     string
		configPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		tmpDir, err = os.MkdirTemp("", "medchat-chat-test-*")
		Expect(err).NotTo(HaveOccurred())
		configPath = filepath.Join(tmpDir, "config.toml")
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	execute := func(args ...string) error {
		root := &cobra.Command{Use: "medchat", SilenceUsage: true, SilenceErrors: true}
		cliconfig.AddPersistentFlags(root)
		root.AddCommand(NewChatCmd())
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(append([]string{"chat", "--config", configPath}, args...))
		return root.ExecuteContext(ctx)
	}

	It("registers its flags", func() {
		cmd := NewChatCmd()
		Expect(cmd.Flags().Lookup("no-robot")).NotTo(BeNil())
		Expect(cmd.Use).To(Equal("chat"))
	})

	It("fails before starting when the endpoint is invalid", func() {
		err := execute("--endpoint", "ftp://example.com")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("endpoint"))
	})

	It("fails before starting when the config file is malformed", func() {
		Expect(os.WriteFile(configPath, []byte("endpoint = [\n"), 0o600)).To(Succeed())

		err := execute()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("could not load config"))
	})

	It("fails when the log file cannot be opened", func() {
		blocker := filepath.Join(tmpDir, "not-a-dir")
		Expect(os.WriteFile(blocker, nil, 0o600)).To(Succeed())

		err := execute("--log-file", filepath.Join(blocker, "medchat.log"))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("could not open log file"))
	})

	It("rejects arguments", func() {
		Expect(execute("hello")).NotTo(Succeed())
	})
})
