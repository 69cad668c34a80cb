/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowdb/pkg/api"
	"github.com/ssargent/rowdb/pkg/logging"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the RowDB REST API server. Settings come from the config file;
flags override them. Inserted rows are flushed to the catalog on request
and when the server shuts down.

Examples:
  rowdb serve
  rowdb serve --port 9000 --bind 0.0.0.0
  rowdb serve --api-key mysecretkey --data-dir ./data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFrom(cmd)
			cfg := env.cfg

			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("bind") {
				cfg.Bind, _ = cmd.Flags().GetString("bind")
			}
			if cmd.Flags().Changed("api-key") {
				cfg.Security.APIKey, _ = cmd.Flags().GetString("api-key")
			}

			if cfg.Security.APIKey == "" || cfg.Security.APIKey == "auto" {
				return fmt.Errorf("no API key configured: run 'rowdb init' or pass --api-key")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			store, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			starter := container.GetServerFactory().CreateServerStarter()
			return starter.StartServer(ctx, store, api.ServerConfig{
				Port:         cfg.Port,
				Bind:         cfg.Bind,
				APIKey:       cfg.Security.APIKey,
				HeapCapacity: cfg.Storage.HeapInitialSize,
			}, logging.Component(env.log, "server"))
		},
	}

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().String("api-key", "", "API key for client authentication")

	return serveCmd
}
