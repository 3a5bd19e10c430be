// Package cliconfig resolves the medchat configuration for a command from the
// config file, the environment and the root command's persistent flags.
package cliconfig

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/medchat/pkg/config"
	"github.com/papercomputeco/medchat/pkg/speech"
)

const (
	configFlag   = "config"
	endpointFlag = "endpoint"
	debugFlag    = "debug"
	logFileFlag  = "log-file"
)

// AddPersistentFlags registers the flags shared by every medchat command on cmd.
func AddPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(configFlag, "c", "", "Path to the config file (default ~/.medchat/config.toml)")
	cmd.PersistentFlags().StringP(endpointFlag, "e", "", "Base URL of the chatbot backend")
	cmd.PersistentFlags().Bool(debugFlag, false, "Enable debug logging")
	cmd.PersistentFlags().String(logFileFlag, "", "File receiving the chat session's logs")
}

// ConfigPath returns the --config value, or the default path when unset.
func ConfigPath(cmd *cobra.Command) (string, error) {
	if f := cmd.Flag(configFlag); f != nil && f.Value.String() != "" {
		return f.Value.String(), nil
	}

	path, err := config.DefaultPath()
	if err != nil {
		return "", fmt.Errorf("could not resolve config path: %w", err)
	}
	return path, nil
}

// Resolve loads the configuration for cmd and returns it with the config file
// path it was read from.
func Resolve(cmd *cobra.Command) (config.Config, string, error) {
	path, err := ConfigPath(cmd)
	if err != nil {
		return config.Config{}, "", err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("could not load config: %w", err)
	}

	if err := ApplyFlags(cmd, &cfg); err != nil {
		return config.Config{}, "", err
	}

	return cfg, path, nil
}

// ApplyFlags overrides cfg with the persistent flags set on the command line
// and fills in the default log file. It is also applied to every reloaded
// config so flags keep precedence.
func ApplyFlags(cmd *cobra.Command, cfg *config.Config) error {
	Override(cmd, cfg)

	if cfg.LogFile == "" {
		path, err := config.DefaultLogFile()
		if err != nil {
			return fmt.Errorf("could not resolve log file: %w", err)
		}
		cfg.LogFile = path
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// Override copies only the persistent flags given on the command line into cfg.
func Override(cmd *cobra.Command, cfg *config.Config) {
	if f := cmd.Flag(endpointFlag); f != nil && f.Changed {
		cfg.Endpoint = f.Value.String()
	}
	if f := cmd.Flag(debugFlag); f != nil && f.Changed {
		cfg.Debug = f.Value.String() == "true"
	}
	if f := cmd.Flag(logFileFlag); f != nil && f.Changed {
		cfg.LogFile = f.Value.String()
	}
}

// Recorder builds the microphone recorder described by cfg.
func Recorder(cfg config.Config, logger *zap.Logger) *speech.ExecRecorder {
	return speech.NewExecRecorder(speech.RecorderConfig{
		Binary:      cfg.Speech.Recorder,
		Format:      cfg.Speech.Format,
		Device:      cfg.Speech.Device,
		MaxDuration: cfg.Speech.MaxDuration.Duration,
	}, logger)
}

// Transcriber builds the transcriber selected by cfg. It returns nil when voice
// input is disabled.
func Transcriber(cfg config.Config, backend speech.BackendClient) speech.Transcriber {
	switch cfg.Speech.Backend {
	case config.SpeechWhisper:
		return speech.NewWhisperTranscriber(cfg.Speech.OpenAIKey, cfg.Speech.WhisperURL, cfg.Speech.WhisperModel)
	case config.SpeechNone:
		return nil
	default:
		return speech.NewRemoteTranscriber(backend)
	}
}
