package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/skyhook-labs/cloudgate/internal/app"
	"github.com/skyhook-labs/cloudgate/pkg/config"
	"github.com/skyhook-labs/cloudgate/pkg/gateway"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check provider CLI install and auth status",
	Long: `Run each provider's version and configuration commands through the
executor and report what the gateway would actually be able to serve.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		a, err := app.Build(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		return runDoctor(cmd.Context(), a, cmd.OutOrStdout())
	},
}

// runDoctor executes every descriptor status command and prints a summary.
// Returns an error only if no provider CLI is usable at all.
func runDoctor(ctx context.Context, a *app.App, out io.Writer) error {
	healthy := 0
	for _, p := range gateway.Providers() {
		gw := a.Gateways[p]
		fmt.Fprintf(out, "== %s\n", p)

		ok := true
		for _, tail := range gw.StatusCommands() {
			resp, err := gw.RunStatus(ctx, tail)
			label := strings.Join(tail, " ")
			if err != nil {
				fmt.Fprintf(out, "  [FAIL] %s: %v\n", label, err)
				ok = false
				break
			}
			if resp.Status != gateway.StatusSuccess {
				fmt.Fprintf(out, "  [WARN] %s: %s\n", label, firstLine(resp.Text))
				ok = false
				continue
			}
			fmt.Fprintf(out, "  [ OK ] %s: %s\n", label, firstLine(resp.Text))
		}
		if ok {
			healthy++
		}
	}

	if healthy == 0 {
		return fmt.Errorf("no provider CLI is installed and configured")
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
