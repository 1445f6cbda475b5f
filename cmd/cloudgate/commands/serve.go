package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skyhook-labs/cloudgate/internal/app"
	"github.com/skyhook-labs/cloudgate/internal/server"
	"github.com/skyhook-labs/cloudgate/internal/version"
	"github.com/skyhook-labs/cloudgate/pkg/config"
	"github.com/skyhook-labs/cloudgate/pkg/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	Long: `Serve the provider gateways over HTTP.

Example:
  cloudgate serve --listen :8080 --timeout 30s`,
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

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if !cfg.SkipTelemetry {
			shutdown, err := telemetry.Init(ctx, version.AppName, version.Current, cfg.OtelEndpoint)
			if err != nil {
				a.Logger.Warn("telemetry init failed, continuing without traces", "error", err)
			} else {
				defer shutdown(context.Background())
			}
		}

		if verify, _ := cmd.Flags().GetBool("verify"); verify {
			if err := runDoctor(ctx, a, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("provider verification failed: %w", err)
			}
		}

		srv := server.New(cfg, a.Gateways, a.Logger)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("listen", config.DefaultListen, "HTTP listen address")
	serveCmd.Flags().Bool("verify", false, "Run provider CLI checks before serving")
	_ = viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}
