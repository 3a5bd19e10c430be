// Package config loads medchat settings.
//
// Values are layered: built-in defaults, then the TOML file
// (~/.medchat/config.toml), then MEDCHAT_* environment variables. Command line
// flags are applied on top by the commands themselves.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"

	"github.com/papercomputeco/medchat/pkg/client"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "MEDCHAT_"

// Transcription backends.
const (
	SpeechBackend = "backend"
	SpeechWhisper = "whisper"
	SpeechNone    = "none"
)

// Duration is a time.Duration written as "15s" in files and environment.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the medchat configuration.
type Config struct {
	// Endpoint is the base URL of the chatbot backend.
	Endpoint string `toml:"endpoint" env:"ENDPOINT"`

	Debug bool `toml:"debug" env:"DEBUG"`

	// LogFile receives the chat session's logs. Empty means
	// ~/.medchat/medchat.log.
	LogFile string `toml:"log_file" env:"LOG_FILE"`

	RobotFPS  int  `toml:"robot_fps" env:"ROBOT_FPS"`
	ShowRobot bool `toml:"show_robot" env:"SHOW_ROBOT"`

	Speech SpeechConfig `toml:"speech" envPrefix:"SPEECH_"`
}

// SpeechConfig configures voice input.
type SpeechConfig struct {
	// Backend selects the transcriber: "backend" posts to the chatbot's
	// /transcribe endpoint, "whisper" uses OpenAI, "none" disables voice input.
	Backend string `toml:"backend" env:"BACKEND"`

	// Recorder is the capture binary, ffmpeg by default.
	Recorder    string   `toml:"recorder" env:"RECORDER"`
	Format      string   `toml:"format" env:"FORMAT"`
	Device      string   `toml:"device" env:"DEVICE"`
	MaxDuration Duration `toml:"max_duration" env:"MAX_DURATION"`

	OpenAIKey    string `toml:"openai_key" env:"OPENAI_KEY"`
	WhisperURL   string `toml:"whisper_url" env:"WHISPER_URL"`
	WhisperModel string `toml:"whisper_model" env:"WHISPER_MODEL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Endpoint:  client.DefaultBaseURL,
		RobotFPS:  60,
		ShowRobot: true,
		Speech: SpeechConfig{
			Backend:     SpeechBackend,
			Recorder:    "ffmpeg",
			Format:      "alsa",
			Device:      "default",
			MaxDuration: Duration{15 * time.Second},
		},
	}
}

// Dir returns ~/.medchat.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}
	return filepath.Join(home, ".medchat"), nil
}

// DefaultPath returns ~/.medchat/config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultLogFile returns ~/.medchat/medchat.log.
func DefaultLogFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "medchat.log"), nil
}

// Load layers the file at path and the process environment over the defaults.
// A missing file is not an error.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil environ reads the
// process environment.
func LoadWithEnv(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := LoadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := ApplyEnv(&cfg, environ); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFile decodes the TOML file at path over cfg. Keys absent from the file
// keep their current values. A missing file is not an error.
func LoadFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with MEDCHAT_* variables that are set.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "# medchat configuration")
	fmt.Fprintln(f)

	return Encode(f, cfg)
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var result *multierror.Error

	u, err := url.Parse(c.Endpoint)
	switch {
	case err != nil:
		result = multierror.Append(result, fmt.Errorf("endpoint: %w", err))
	case u.Scheme != "http" && u.Scheme != "https", u.Host == "":
		result = multierror.Append(result, fmt.Errorf("endpoint: %q is not an http(s) URL", c.Endpoint))
	}

	if c.RobotFPS < 1 || c.RobotFPS > 240 {
		result = multierror.Append(result, fmt.Errorf("robot_fps: %d is outside 1-240", c.RobotFPS))
	}

	switch c.Speech.Backend {
	case SpeechBackend, SpeechNone:
	case SpeechWhisper:
		if c.Speech.OpenAIKey == "" {
			result = multierror.Append(result, errors.New("speech.openai_key: required by the whisper backend"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("speech.backend: unknown backend %q", c.Speech.Backend))
	}

	if c.Speech.MaxDuration.Duration <= 0 {
		result = multierror.Append(result, fmt.Errorf("speech.max_duration: %s is not positive", c.Speech.MaxDuration))
	}

	return result.ErrorOrNil()
}
