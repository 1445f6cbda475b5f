package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/skyhook-labs/cloudgate/internal/app"
	"github.com/skyhook-labs/cloudgate/pkg/config"
	"github.com/skyhook-labs/cloudgate/pkg/gateway"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <command string>",
	Short: "Run one command through the gateway pipeline",
	Long: `Run a single cloud CLI command through validate -> execute -> normalize
and print the normalized result. Useful for smoke-testing policy changes.

Example:
  cloudgate run "aws s3 ls"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		a, err := app.Build(cfg)
		if err != nil {
			return err
		}

		code, err := runOnce(cmd.Context(), a, cmd.OutOrStdout(), cmd.ErrOrStderr(), strings.Join(args, " "))
		// Close before exiting: os.Exit skips deferred cleanup and would
		// leave the audit log handle open.
		a.Close()
		if err != nil {
			return err
		}
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

// runOnce sends one raw command through its provider gateway and prints the
// normalized result. The returned code is the process exit status: 0 on
// success, 1 when the command ran and failed, 2 when the policy rejected it.
func runOnce(ctx context.Context, a *app.App, out, errOut io.Writer, raw string) (int, error) {
	gw, err := gatewayForCommand(a, raw)
	if err != nil {
		return 0, err
	}

	resp, err := gw.Run(ctx, raw)
	if err != nil {
		var rejection *gateway.RejectionError
		if errors.As(err, &rejection) {
			fmt.Fprintf(errOut, "rejected: %s\n", rejection.Reason)
			return 2, nil
		}
		return 0, err
	}

	fmt.Fprintln(out, resp.Text)
	if resp.Status != gateway.StatusSuccess {
		return 1, nil
	}
	return 0, nil
}

// gatewayForCommand picks the provider gateway by the command's first word.
func gatewayForCommand(a *app.App, raw string) (*gateway.Gateway, error) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return nil, errors.New("empty command")
	}
	switch fields[0] {
	case "aws":
		return a.Gateways[gateway.ProviderAWS], nil
	case "az":
		return a.Gateways[gateway.ProviderAzure], nil
	case "gcloud":
		return a.Gateways[gateway.ProviderGCP], nil
	}
	return nil, fmt.Errorf("unknown provider token %q (want aws, az or gcloud)", fields[0])
}
