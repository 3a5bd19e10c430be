package chatcmder

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/medchat/cmd/medchat/cliconfig"
	"github.com/papercomputeco/medchat/pkg/client"
	"github.com/papercomputeco/medchat/pkg/config"
	"github.com/papercomputeco/medchat/pkg/conversation"
	"github.com/papercomputeco/medchat/pkg/logger"
	"github.com/papercomputeco/medchat/pkg/speech"
	"github.com/papercomputeco/medchat/tui"
)

const chatLongDesc string = `Chat with the medical assistant in the terminal.

Type a question and press enter. Attach a medical image with ctrl+o,
record a spoken question with ctrl+r. Answers show the documents
they were drawn from.

The session logs to ~/.medchat/medchat.log unless --log-file is given,
and the backend endpoint is reloaded when the config file changes.

Examples:
  medchat
  medchat chat --endpoint http://10.0.0.5:8000
  medchat chat --no-robot`

const chatShortDesc string = "Start the interactive chat"

type chatCommander struct {
	noRobot bool
}

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().BoolVar(&cmder.noRobot, "no-robot", false, "Hide the animated assistant")

	return cmd
}

// Run starts the chat with default options. The root command uses it when no
// subcommand is given.
func Run(cmd *cobra.Command) error {
	cmder := &chatCommander{}
	return cmder.run(cmd.Context(), cmd)
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command) (err error) {
	cfg, configPath, err := cliconfig.Resolve(cmd)
	if err != nil {
		return err
	}
	if c.noRobot {
		cfg.ShowRobot = false
	}

	log, closeLog, err := logger.NewFileLogger(cfg.Debug, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("could not open log file %s: %w", cfg.LogFile, err)
	}

	log.Info("medchat starting",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("config", configPath),
		zap.String("speech", cfg.Speech.Backend),
	)

	backend := client.New(cfg.Endpoint, log)
	recognizer := speech.Detect(cliconfig.Recorder(cfg, log), cliconfig.Transcriber(cfg, backend), log)
	notices := tui.NewNoticeBoard()
	ctrl := conversation.New(backend, recognizer, notices, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher, werr := config.Watch(ctx, configPath, func(next config.Config) {
		if err := cliconfig.ApplyFlags(cmd, &next); err != nil {
			log.Warn("ignoring reloaded config", zap.Error(err))
			return
		}
		if next.Endpoint != backend.BaseURL() {
			log.Info("backend endpoint changed", zap.String("endpoint", next.Endpoint))
			backend.SetBaseURL(next.Endpoint)
		}
	}, log)
	if werr != nil {
		log.Warn("config reload disabled", zap.Error(werr))
	}

	defer func() {
		var result *multierror.Error
		if err != nil {
			result = multierror.Append(result, err)
		}
		if serr := recognizer.Stop(); serr != nil {
			result = multierror.Append(result, fmt.Errorf("could not stop speech capture: %w", serr))
		}
		cancel()
		if watcher != nil {
			if werr := watcher.Close(); werr != nil {
				result = multierror.Append(result, fmt.Errorf("could not stop config watcher: %w", werr))
			}
		}
		if verr := ctrl.Verify(); verr != nil {
			log.Error("conversation log failed verification", zap.Error(verr))
		}
		log.Info("medchat stopped", zap.Int("messages", len(ctrl.Messages())))
		_ = log.Sync()
		if cerr := closeLog(); cerr != nil {
			result = multierror.Append(result, fmt.Errorf("could not close log file: %w", cerr))
		}
		if result != nil && len(result.Errors) == 1 {
			err = result.Errors[0]
			return
		}
		err = result.ErrorOrNil()
	}()

	return tui.Run(ctx, ctrl, notices, tui.Config{
		ShowRobot: cfg.ShowRobot,
		RobotFPS:  cfg.RobotFPS,
	}, log)
}
