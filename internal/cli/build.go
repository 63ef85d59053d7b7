package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agentx-labs/extbuild/internal/branding"
	"github.com/agentx-labs/extbuild/internal/config"
	"github.com/agentx-labs/extbuild/internal/pipeline"
	"github.com/agentx-labs/extbuild/internal/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func init() {
	addSettingFlags(buildCmd.Flags())
	rootCmd.AddCommand(buildCmd)
}

// addSettingFlags registers one flag per setting key.
func addSettingFlags(f *pflag.FlagSet) {
	for _, key := range config.Keys() {
		if def, ok := config.Default(key).(bool); ok {
			f.Bool(config.FlagName(key), def, config.Usage(key))
			continue
		}
		f.String(config.FlagName(key), "", config.Usage(key))
	}
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch, patch, build and deploy an extension",
	Long: `Run the full pipeline for one extension.

Every setting can also be supplied as an environment variable (the flag name
upper-cased with underscores, e.g. GITHUB_REPOSITORY), in the dotenv file, or
in the user config file. Flags win over the environment, the environment over
the dotenv file, and the dotenv file over the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := config.Load(loadOptions(cmd))
		if err != nil {
			return err
		}

		shutdown, err := telemetry.InitTracer(traceEnabled, cmd.ErrOrStderr(), branding.CLIName(), buildVersion)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("flushing traces", "error", err)
			}
		}()

		res, err := pipeline.New(req, slog.Default()).Run(cmd.Context())
		if err != nil {
			return err
		}

		slog.Info(fmt.Sprintf("deployed %s %s to %s", res.Name, res.Release, res.DeployPath),
			"build_id", res.BuildID,
			"artifacts", res.Artifacts,
		)
		return nil
	},
}
