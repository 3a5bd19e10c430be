package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/medchat/cmd/medchat/cliconfig"
	"github.com/papercomputeco/medchat/pkg/client"
	"github.com/papercomputeco/medchat/pkg/conversation"
	"github.com/papercomputeco/medchat/pkg/logger"
	"github.com/papercomputeco/medchat/pkg/speech"
)

const askLongDesc string = `Ask the medical assistant a single question.

The question is sent to the backend's /ask endpoint, optionally with
an image, and the answer is printed with its referenced sources.
On a terminal the answer is rendered as markdown.

The command exits non-zero when the backend cannot be reached.

Examples:
  medchat ask what are the early symptoms of diabetes
  medchat ask --image ~/scans/chest.png "is there anything unusual here?"
  medchat ask --image rash.jpg`

const askShortDesc string = "Ask a single question"

// ErrUnreachable is returned when the backend could not answer.
var ErrUnreachable = errors.New("backend unreachable")

type askCommander struct {
	image string
}

// NewAskCmd creates the ask command.
func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	cmd.Flags().StringVarP(&cmder.image, "image", "i", "", "Image file to send with the question")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg, _, err := cliconfig.Resolve(cmd)
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Debug, cmd.ErrOrStderr())
	defer func() { _ = log.Sync() }()

	backend := client.New(cfg.Endpoint, log)
	ctrl := conversation.New(backend, speech.Unsupported(), conversation.NotifierFunc(func(notice string) {
		log.Warn(notice)
	}), log, conversation.WithoutGreeting())

	if c.image != "" {
		if _, err := ctrl.SelectImage(c.image).Await(ctx); err != nil {
			return fmt.Errorf("could not load image %s: %w", c.image, err)
		}
	}

	ctrl.UpdateText(strings.Join(args, " "))

	reply, ok := ctrl.Submit(ctx)
	if !ok {
		return errors.New("nothing to ask: give a question or an --image")
	}

	msg, err := reply.Await(ctx)
	if err != nil {
		return fmt.Errorf("could not get an answer: %w", err)
	}

	if err := ctrl.Verify(); err != nil {
		log.Error("conversation log failed verification", zap.Error(err))
		return fmt.Errorf("could not verify the conversation: %w", err)
	}
	log.Debug("conversation verified", zap.Int("messages", len(ctrl.Messages())))

	if msg.Content == conversation.ConnectionFailureNotice(backend.BaseURL()) {
		fmt.Fprintln(cmd.ErrOrStderr(), msg.Content)
		return ErrUnreachable
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render(out, msg.Content, log))

	if msg.HasSources() {
		fmt.Fprintln(out, "\nReferenced Sources:")
		for _, src := range msg.Sources {
			fmt.Fprintf(out, "  - %s\n", src)
		}
	}

	return nil
}

// render formats the answer as markdown when out is a terminal.
func render(out io.Writer, content string, log *zap.Logger) string {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return content
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(width, 100)),
	)
	if err != nil {
		log.Debug("markdown renderer unavailable", zap.Error(err))
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		log.Debug("could not render answer", zap.Error(err))
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
