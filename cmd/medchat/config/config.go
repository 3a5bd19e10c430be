package configcmder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/medchat/cmd/medchat/cliconfig"
	"github.com/papercomputeco/medchat/pkg/config"
)

const configLongDesc string = `Manage the medchat config file.

The file lives at ~/.medchat/config.toml unless --config is given.
Settings from MEDCHAT_* environment variables and flags are layered
on top of it at startup.`

const configShortDesc string = "Manage the config file"

const initLongDesc string = `Write a config file with the built-in defaults.

Flags given on the command line (such as --endpoint) are written into
the file. An existing file is kept unless --force is given.

Examples:
  medchat config init
  medchat config init --endpoint http://10.0.0.5:8000
  medchat config init --config ./medchat.toml --force`

const initShortDesc string = "Write a default config file"

const showLongDesc string = `Print the configuration in effect.

Shows the result of layering the config file, MEDCHAT_* environment
variables and flags. The OpenAI key is masked.

Examples:
  medchat config show
  MEDCHAT_ENDPOINT=http://10.0.0.5:8000 medchat config show`

const showShortDesc string = "Print the effective configuration"

const maskedSecret = "********"

// ErrConfigExists is returned by init when the file already exists.
var ErrConfigExists = errors.New("config file already exists, use --force to overwrite")

type initCommander struct {
	force bool
}

type showCommander struct{}

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newShowCmd())

	return cmd
}

func newInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().BoolVarP(&cmder.force, "force", "f", false, "Overwrite an existing config file")

	return cmd
}

func (c *initCommander) run(_ context.Context, cmd *cobra.Command) error {
	path, err := cliconfig.ConfigPath(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !c.force {
		return fmt.Errorf("could not write %s: %w", path, ErrConfigExists)
	}

	cfg := config.Default()
	cliconfig.Override(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func newShowCmd() *cobra.Command {
	cmder := &showCommander{}

	return &cobra.Command{
		Use:   "show",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}
}

func (c *showCommander) run(_ context.Context, cmd *cobra.Command) error {
	cfg, path, err := cliconfig.Resolve(cmd)
	if err != nil {
		return err
	}

	if cfg.Speech.OpenAIKey != "" {
		cfg.Speech.OpenAIKey = maskedSecret
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s\n", path)
	if err := config.Encode(out, cfg); err != nil {
		return fmt.Errorf("could not print config: %w", err)
	}
	return nil
}
