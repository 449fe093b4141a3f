package main

import (
	"fmt"

	"github.com/danmuck/zusictl/internal/config"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check a zusictl.toml",
	}
	cmd.AddCommand(configInitCmd(), configValidateCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a documented default config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(output, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "zusictl.toml", "Config file to write")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Load and validate a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadClientConfig(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (address=%s client=%s cab_displays=%d program_data=%d cab_operation=%t)\n",
				args[0], cfg.Address, cfg.ClientName, len(cfg.CabDisplays), len(cfg.ProgramData), cfg.CabOperation)
			return nil
		},
	}
}

// loadClientConfig resolves the client config with the build version as
// the default client_version. An empty path yields the defaults.
func loadClientConfig(path string) (config.ClientConfig, error) {
	base := config.DefaultClientConfig()
	base.ClientVersion = version
	if path == "" {
		return base, nil
	}
	return config.Load(path, base)
}
