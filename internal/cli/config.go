package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/selwalk/internal/configloader"
	"github.com/yaklabco/selwalk/pkg/config"
)

func newConfigCommand(globals *globalFlags) *cobra.Command {
	var showEnv bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration selwalk would use in the current directory, after
merging defaults, the user config, the project .selwalk.yml, --config, and
SELWALK_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if showEnv {
				for _, kv := range configloader.ListEnvVars() {
					_, _ = fmt.Fprintf(out, "%-26s %s\n", kv[0], kv[1])
				}
				return nil
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			_, cfg, err := loadConfig(ctx, cmd, globals, &config.Config{})
			if err != nil {
				return err
			}

			data, err := cfg.ToYAML()
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&showEnv, "env", false, "list the supported environment variables instead")

	return cmd
}
