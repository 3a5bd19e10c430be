package transcribecmder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/medchat/cmd/medchat/cliconfig"
	"github.com/papercomputeco/medchat/pkg/client"
	"github.com/papercomputeco/medchat/pkg/logger"
)

const transcribeLongDesc string = `Transcribe a recorded audio file.

Sends the file through the configured transcriber (the backend's
/transcribe endpoint, or OpenAI Whisper when speech.backend is
"whisper") and prints the recognized text.

Examples:
  medchat transcribe question.wav
  MEDCHAT_SPEECH_BACKEND=whisper medchat transcribe question.wav`

const transcribeShortDesc string = "Transcribe an audio file"

// ErrSpeechDisabled is returned when speech.backend is "none".
var ErrSpeechDisabled = errors.New("voice input is disabled in the config")

type transcribeCommander struct{}

// NewTranscribeCmd creates the transcribe command.
func NewTranscribeCmd() *cobra.Command {
	cmder := &transcribeCommander{}

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: transcribeShortDesc,
		Long:  transcribeLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	return cmd
}

func (c *transcribeCommander) run(ctx context.Context, cmd *cobra.Command, audioPath string) error {
	cfg, _, err := cliconfig.Resolve(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(audioPath); err != nil {
		return fmt.Errorf("could not read audio file: %w", err)
	}

	log := logger.NewLogger(cfg.Debug, cmd.ErrOrStderr())
	defer func() { _ = log.Sync() }()

	transcriber := cliconfig.Transcriber(cfg, client.New(cfg.Endpoint, log))
	if transcriber == nil {
		return ErrSpeechDisabled
	}

	text, err := transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("could not transcribe %s: %w", audioPath, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
