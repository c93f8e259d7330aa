/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/siliconv/pkg/config"
	"github.com/ssargent/siliconv/pkg/logger"
)

// cfg is the effective configuration, resolved before any command runs
var cfg = config.DefaultConfig()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "siliconv",
	Short: "siliconv - Silicate replay converter",
	Long: `siliconv reads Silicate bot replays in any revision (slc1, slc2, slc3)
and rewrites them as slc3. Converted replays can be kept in a local library
and served over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		loaded, err := resolveConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-format") {
			cfg.Logging.Format, _ = cmd.Flags().GetString("log-format")
		}

		logger.Init(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.config/siliconv/config.yaml)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "./data", "Directory holding the replay library")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text or json)")
}

// resolveConfig loads the config at path. With no path the default location
// is used when it exists, otherwise built-in defaults apply.
func resolveConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.GetDefaultConfigPath()
		if !config.ConfigExists(path) {
			return config.DefaultConfig(), nil
		}
	}

	loaded, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return loaded, nil
}
