package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/medchat/cmd/medchat/ask"
	chatcmder "github.com/papercomputeco/medchat/cmd/medchat/chat"
	"github.com/papercomputeco/medchat/cmd/medchat/cliconfig"
	configcmder "github.com/papercomputeco/medchat/cmd/medchat/config"
	statuscmder "github.com/papercomputeco/medchat/cmd/medchat/status"
	transcribecmder "github.com/papercomputeco/medchat/cmd/medchat/transcribe"
)

const rootLongDesc string = `medchat is a terminal client for a multimodal RAG medical chatbot.

Ask questions by typing, speaking or attaching a medical image. Answers
come from the chatbot backend together with the documents they cite.

Settings are read from ~/.medchat/config.toml, then MEDCHAT_* environment
variables, then command line flags.`

const rootShortDesc string = "Multimodal RAG medical chatbot client"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "medchat",
		Short:         rootShortDesc,
		Long:          rootLongDesc,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return chatcmder.Run(cmd)
		},
	}

	cliconfig.AddPersistentFlags(cmd)

	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(transcribecmder.NewTranscribeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
