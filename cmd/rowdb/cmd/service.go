/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowdb/pkg/config"
)

const (
	serviceName     = "rowdb.service"
	defaultUnitPath = "/etc/systemd/system/rowdb.service"
)

func newServiceCmd() *cobra.Command {
	serviceCmd := &cobra.Command{
		Use:   "service",
		Short: "Manage RowDB as a systemd service",
		Long: `Manage RowDB as a systemd service. The unit runs 'rowdb serve' with
the given config file and restarts on failure.`,
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install RowDB as a systemd service",
		Long: `Write the systemd unit, bootstrapping the config if needed, then
reload systemd and enable the service.

Examples:
  sudo rowdb service install
  sudo rowdb service install --data-dir /var/lib/rowdb --user rowdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFrom(cmd)
			user, _ := cmd.Flags().GetString("user")
			unitPath, _ := cmd.Flags().GetString("unit-path")
			binary, _ := cmd.Flags().GetString("binary")
			skipSystemctl, _ := cmd.Flags().GetBool("skip-systemctl")
			startNow, _ := cmd.Flags().GetBool("start")
			out := cmd.OutOrStdout()

			if !config.ConfigExists(env.configPath) {
				cfg, err := config.BootstrapConfig(env.configPath, env.cfg.DataDir)
				if err != nil {
					return err
				}
				env.cfg = cfg
				fmt.Fprintf(out, "✅ Created new configuration at %s\n", env.configPath)
			}

			unit := renderUnit(env.cfg, env.configPath, user, binary)
			if err := os.WriteFile(unitPath, []byte(unit), 0600); err != nil {
				return fmt.Errorf("failed to write unit file: %w", err)
			}
			fmt.Fprintf(out, "✅ Wrote %s\n", unitPath)

			if skipSystemctl {
				return nil
			}
			if err := runSystemctlCommand("daemon-reload"); err != nil {
				return fmt.Errorf("failed to reload systemd: %w", err)
			}
			if err := runSystemctlCommand("enable", serviceName); err != nil {
				return fmt.Errorf("failed to enable service: %w", err)
			}
			if startNow {
				if err := runSystemctlCommand("start", serviceName); err != nil {
					return fmt.Errorf("failed to start service: %w", err)
				}
			}

			fmt.Fprintf(out, "To check status: sudo systemctl status %s\n", serviceName)
			fmt.Fprintf(out, "To view logs: sudo journalctl -u %s -f\n", serviceName)
			return nil
		},
	}
	installCmd.Flags().String("user", "rowdb", "User to run the service as")
	installCmd.Flags().String("unit-path", defaultUnitPath, "Where to write the unit file")
	installCmd.Flags().String("binary", "/usr/local/bin/rowdb", "Path of the rowdb binary")
	installCmd.Flags().Bool("skip-systemctl", false, "Only write the unit file")
	installCmd.Flags().Bool("start", true, "Start the service after installation")

	serviceCmd.AddCommand(installCmd)
	for _, action := range []string{"start", "stop", "restart", "status"} {
		serviceCmd.AddCommand(systemctlCmd(action))
	}

	return serviceCmd
}

func systemctlCmd(action string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: fmt.Sprintf("Run systemctl %s for the RowDB service", action),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSystemctlCommand(action, serviceName)
		},
	}
}

// renderUnit builds the systemd unit for the server
func renderUnit(cfg *config.Config, configPath, user, binary string) string {
	return fmt.Sprintf(`[Unit]
Description=RowDB Server
After=network-online.target
Wants=network-online.target

[Service]
User=%s
Group=%s
ExecStart=%s serve --config %s
Restart=on-failure
NoNewPrivileges=true
UMask=0077
ReadWritePaths=%s
ReadWritePaths=%s

[Install]
WantedBy=multi-user.target
`, user, user, binary, configPath, cfg.DataDir, filepath.Dir(configPath))
}

// runSystemctlCommand runs a systemctl command
func runSystemctlCommand(args ...string) error {
	c := exec.Command("systemctl", args...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
