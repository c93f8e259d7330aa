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

	"github.com/ssargent/siliconv/pkg/config"
)

const (
	serviceName = "siliconv.service"
	unitDir     = "/etc/systemd/system"
)

// serviceCmd represents the service command
var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Run the API server as a systemd service",
	Long: `Install and control the siliconv API server as a systemd service.

Examples:
  sudo siliconv service install --user siliconv
  sudo siliconv service logs -f`,
}

var installServiceCmd = &cobra.Command{
	Use:   "install",
	Short: "Install siliconv serve as a systemd service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		user, _ := cmd.Flags().GetString("user")
		binary, _ := cmd.Flags().GetString("binary")
		startNow, _ := cmd.Flags().GetBool("start")

		if os.Geteuid() != 0 {
			return fmt.Errorf("service install requires root privileges")
		}
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		// persist the effective settings so the unit sees the same flags
		if err := config.SaveConfig(cfg, configPath); err != nil {
			return err
		}

		unitPath := filepath.Join(unitDir, serviceName)
		if err := writeSystemdUnit(unitPath, cfg, configPath, user, binary); err != nil {
			return fmt.Errorf("failed to create systemd unit: %w", err)
		}

		steps := [][]string{{"daemon-reload"}, {"enable", serviceName}}
		if startNow {
			steps = append(steps, []string{"start", serviceName})
		}
		for _, step := range steps {
			if err := runCommand("systemctl", step...); err != nil {
				return fmt.Errorf("systemctl %s failed: %w", step[0], err)
			}
		}

		cmd.Printf("Installed %s\n", serviceName)
		cmd.Printf("Config: %s\n", configPath)
		cmd.Printf("Data: %s\n", cfg.DataDir)
		cmd.Printf("Listening on: %s\n", cfg.Addr())
		return nil
	},
}

var uninstallServiceCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the systemd service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Geteuid() != 0 {
			return fmt.Errorf("service uninstall requires root privileges")
		}

		_ = runCommand("systemctl", "stop", serviceName) // may already be stopped
		if err := runCommand("systemctl", "disable", serviceName); err != nil {
			cmd.Printf("Warning: could not disable service: %v\n", err)
		}

		unitPath := filepath.Join(unitDir, serviceName)
		if err := os.Remove(unitPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove unit file: %w", err)
		}
		if err := runCommand("systemctl", "daemon-reload"); err != nil {
			return fmt.Errorf("systemctl daemon-reload failed: %w", err)
		}

		cmd.Printf("Uninstalled %s. Configuration and library were not removed.\n", serviceName)
		return nil
	},
}

var logsServiceCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show service logs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		follow, _ := cmd.Flags().GetBool("follow")
		lines, _ := cmd.Flags().GetInt("lines")
		return runCommand("journalctl", journalArgs(follow, lines)...)
	},
}

// systemctlCmd builds a subcommand that forwards to systemctl
func systemctlCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runCommand("systemctl", action, serviceName); err != nil {
				return fmt.Errorf("systemctl %s failed: %w", action, err)
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(serviceCmd)

	serviceCmd.AddCommand(
		installServiceCmd,
		uninstallServiceCmd,
		logsServiceCmd,
		systemctlCmd("start", "Start the service"),
		systemctlCmd("stop", "Stop the service"),
		systemctlCmd("restart", "Restart the service"),
		systemctlCmd("status", "Show service status"),
	)

	installServiceCmd.Flags().String("user", "siliconv", "User to run the service as")
	installServiceCmd.Flags().String("binary", "/usr/local/bin/siliconv", "Path to the siliconv binary")
	installServiceCmd.Flags().Bool("start", true, "Start the service after installation")

	logsServiceCmd.Flags().BoolP("follow", "f", false, "Follow log output")
	logsServiceCmd.Flags().IntP("lines", "n", 0, "Number of lines to show")
}

// renderSystemdUnit returns the unit file running siliconv serve
func renderSystemdUnit(cfg *config.Config, configPath, user, binary string) string {
	return fmt.Sprintf(`[Unit]
Description=siliconv replay API
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
`, user, user, binary, configPath, cfg.DataDir, cfg.OutputDir)
}

func writeSystemdUnit(unitPath string, cfg *config.Config, configPath, user, binary string) error {
	return os.WriteFile(unitPath, []byte(renderSystemdUnit(cfg, configPath, user, binary)), 0600)
}

func journalArgs(follow bool, lines int) []string {
	args := []string{"-u", serviceName}
	if follow {
		args = append(args, "-f")
	}
	if lines > 0 {
		args = append(args, fmt.Sprintf("-n%d", lines))
	}
	return args
}

// runCommand runs a system command attached to the terminal
func runCommand(command string, args ...string) error {
	c := exec.Command(command, args...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
