package cli

import (
	"fmt"

	"github.com/example/lockscan/internal/config"
	"github.com/spf13/cobra"
)

func newInitCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Validate the execution environment and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			cfg, err := loader.Load(overrides)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if len(cfg.Formats) > 0 {
				if err := ensureOutputDir(cfg.OutputDir); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Environment looks good. Artifacts will be stored in %s\n", cfg.OutputDir)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Environment looks good. No artifact formats configured; results go to stdout only.")
			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)

	return cmd
}
