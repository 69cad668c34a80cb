/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowdb/pkg/config"
)

func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and catalog",
		Long: `Create a configuration file with a generated API key and an empty
table catalog in the data directory.

Examples:
  rowdb init
  rowdb init --data-dir ./mydata --config ./rowdb.yaml --print-key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			printKey, _ := cmd.Flags().GetBool("print-key")
			env := envFrom(cmd)
			out := cmd.OutOrStdout()

			if config.ConfigExists(env.configPath) && !force {
				fmt.Fprintf(out, "Configuration already exists at %s. Use --force to regenerate it.\n", env.configPath)
				return nil
			}

			cfg, err := config.BootstrapConfig(env.configPath, env.cfg.DataDir)
			if err != nil {
				return err
			}
			env.cfg = cfg

			store, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			if err := store.Close(); err != nil {
				return err
			}

			fmt.Fprintf(out, "✅ Configuration created at %s\n", env.configPath)
			fmt.Fprintf(out, "📁 Data directory: %s\n", cfg.DataDir)
			if printKey {
				fmt.Fprintf(out, "🔑 API key: %s\n", cfg.Security.APIKey)
			}
			return nil
		},
	}

	initCmd.Flags().Bool("force", false, "Regenerate the configuration even if it exists")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")

	return initCmd
}
