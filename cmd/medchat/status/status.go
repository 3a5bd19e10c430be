package statuscmder

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/medchat/cmd/medchat/cliconfig"
	"github.com/papercomputeco/medchat/pkg/client"
	"github.com/papercomputeco/medchat/pkg/logger"
)

const statusLongDesc string = `Check that the chatbot backend is running.

Fetches the backend's status page and prints its state, the
features it offers and the endpoints it serves.

Examples:
  medchat status
  medchat status --endpoint http://10.0.0.5:8000`

const statusShortDesc string = "Show the backend status"

type statusCommander struct{}

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	return cmd
}

func (c *statusCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, _, err := cliconfig.Resolve(cmd)
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Debug, cmd.ErrOrStderr())
	defer func() { _ = log.Sync() }()

	backend := client.New(cfg.Endpoint, log)

	status, err := backend.Status(ctx)
	if err != nil {
		return fmt.Errorf("could not reach backend at %s: %w", backend.BaseURL(), err)
	}

	out := cmd.OutOrStdout()
	if status.Message != "" {
		fmt.Fprintln(out, status.Message)
	}
	fmt.Fprintf(out, "Backend:   %s\n", backend.BaseURL())
	fmt.Fprintf(out, "Status:    %s\n", status.Status)
	fmt.Fprintf(out, "Features:  %s\n", strings.Join(status.Features, ", "))

	if len(status.Endpoints) > 0 {
		fmt.Fprintln(out, "Endpoints:")
		names := make([]string, 0, len(status.Endpoints))
		for name := range status.Endpoints {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %-12s %s\n", name, status.Endpoints[name])
		}
	}

	return nil
}
