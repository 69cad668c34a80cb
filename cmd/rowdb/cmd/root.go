/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ssargent/rowdb/pkg/catalog"
	"github.com/ssargent/rowdb/pkg/config"
	"github.com/ssargent/rowdb/pkg/di"
	"github.com/ssargent/rowdb/pkg/logging"
)

var container *di.Container

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

type envKey struct{}

// environment is resolved once per invocation from the config file and flags
type environment struct {
	cfg        *config.Config
	configPath string
	log        *logrus.Logger
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rowdb",
		Short: "RowDB - typed row-encoding table store",
		Long: `RowDB stores rows of typed fields in fixed-width binary layouts.
Scalars and short strings live inline in each row; long strings and blobs
live in an append-only heap per table.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadEnvironment,
	}

	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory (overrides the config file)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides the config file)")

	rootCmd.AddCommand(
		newInitCmd(),
		newCreateCmd(),
		newInsertCmd(),
		newGetCmd(),
		newDescribeCmd(),
		newListCmd(),
		newDropCmd(),
		newServeCmd(),
		newServiceCmd(),
	)

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func loadEnvironment(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}

	log, err := logging.NewWithOutput(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, envKey{}, &environment{
		cfg:        cfg,
		configPath: configPath,
		log:        log,
	}))
	return nil
}

func envFrom(cmd *cobra.Command) *environment {
	env, _ := cmd.Context().Value(envKey{}).(*environment)
	return env
}

// openCatalog opens the catalog under the configured data directory
func openCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	if container == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	env := envFrom(cmd)

	if err := os.MkdirAll(env.cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	store, err := container.GetCatalogOpener().OpenCatalog(env.cfg.DataDir, logging.Component(env.log, "cli"))
	if err != nil {
		return nil, err
	}
	return store, nil
}
