/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/siliconv/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file for siliconv.

This command will:
- Create the config directory
- Write default paths, port and logging settings
- Optionally generate an API key for the server

Examples:
  siliconv init
  siliconv init --with-api-key --config ./siliconv.yaml`,
	Args: cobra.NoArgs,
	// the config being created may not exist yet, so skip loading it
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		withKey, _ := cmd.Flags().GetBool("with-api-key")
		force, _ := cmd.Flags().GetBool("force")

		dataDir := ""
		if cmd.Flags().Changed("data-dir") {
			dataDir, _ = cmd.Flags().GetString("data-dir")
		}

		written, path, err := initConfig(configPath, dataDir, withKey, force)
		if err != nil {
			return err
		}

		cmd.Printf("Configuration written to %s\n", path)
		cmd.Printf("Data directory: %s\n", written.DataDir)
		if written.Security.APIKey != "" {
			cmd.Printf("API key: %s\n", written.Security.APIKey)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("with-api-key", false, "Generate an API key for the server")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}

// initConfig bootstraps a configuration at path, or at the default location
// when path is empty. An existing file is only replaced when force is set.
func initConfig(path, dataDir string, withKey, force bool) (*config.Config, string, error) {
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	if config.ConfigExists(path) && !force {
		return nil, "", fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	written, err := config.BootstrapConfig(path, dataDir, withKey)
	if err != nil {
		return nil, "", err
	}
	return written, path, nil
}
