package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/skyhook-labs/cloudgate/internal/version"
	"github.com/skyhook-labs/cloudgate/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cloudgate",
	Short: "Guarded execution gate for cloud CLI commands",
	Long: `cloudgate - Read-Only Cloud Command Gateway

Validate. Execute. Normalize.

Accepts aws/az/gcloud command strings, rejects anything mutating or
shell-tainted, runs the rest against the live account and returns
structured output.`,
	Version: version.Current,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent Flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.cloudgate.yaml)")
	rootCmd.PersistentFlags().Duration("timeout", config.DefaultTimeout, "Per-command execution timeout")
	rootCmd.PersistentFlags().String("rules-file", "", "YAML file with CEL deny rules")
	rootCmd.PersistentFlags().String("audit-log", "", "Audit log path (default ~/.cloudgate/audit.log)")
	rootCmd.PersistentFlags().String("default-region", config.DefaultRegion, "Default AWS region")
	rootCmd.PersistentFlags().String("default-project", "", "Default GCP project")
	rootCmd.PersistentFlags().String("otel-endpoint", "", "OTLP HTTP endpoint for traces")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit JSON logs")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	bindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(policyCmd)
}

// bindFlags maps persistent flags onto viper keys so precedence is
// flag > env > config file > default.
func bindFlags(flags *pflag.FlagSet) {
	keys := map[string]string{
		"timeout":         "timeout",
		"rules-file":      "rules_file",
		"audit-log":       "audit_log",
		"default-region":  "default_region",
		"default-project": "default_project",
		"otel-endpoint":   "otel_endpoint",
		"json-logs":       "json_logs",
		"verbose":         "verbose",
	}
	for flag, key := range keys {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.SetConfigFile(filepath.Join(home, ".cloudgate.yaml"))
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("CLOUDGATE")
	viper.AutomaticEnv()
	if err := readConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to parse config file %s: %v\n", viper.ConfigFileUsed(), err)
	}
}

// readConfig loads the config file if one is present. A missing file means
// run on defaults; a file that exists but does not parse is surfaced so a
// typo cannot silently fall back to defaults.
func readConfig() error {
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
