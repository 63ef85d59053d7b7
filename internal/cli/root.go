package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentx-labs/extbuild/internal/branding"
	"github.com/agentx-labs/extbuild/internal/config"
	"github.com/agentx-labs/extbuild/internal/logging"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	logLevel     string
	logFormat    string
	traceEnabled bool
	configFile   string
	envFile      string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", envOr(branding.EnvVar("log_level"), "info"), "log level: debug, info, warn or error")
	pf.StringVar(&logFormat, "log-format", envOr(branding.EnvVar("log_format"), "text"), "log format: text or json")
	pf.BoolVar(&traceEnabled, "trace", false, "export pipeline spans to stderr")
	pf.StringVar(&configFile, "config", "", "config file (default "+config.FilePath()+")")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file read for settings when present")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` fetches a single extension's source, stamps its release into the
version module, runs the extension's build tool and deploys the resulting
package, installer and metadata to a target directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(logging.New(logLevel, logFormat, cmd.ErrOrStderr()))
	},
}

// Execute runs the root command with build info injected via ldflags.
// Interrupts cancel the running build.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func envOr(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return fallback
}

// loadOptions returns the settings sources selected by the global flags.
func loadOptions(cmd *cobra.Command) config.LoadOptions {
	return config.LoadOptions{
		ConfigFile: configFile,
		DotEnvFile: envFile,
		Flags:      cmd.Flags(),
	}
}
